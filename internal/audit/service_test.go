package audit

import (
	"encoding/json"
	"testing"
	"time"

	"servis-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Undo, BeforeData/AfterData'yı ham model struct'larına çözer. Snapshot bu
// yüzden modelin kendisinden üretilir; formatlanmış response DTO'ları
// (örn. "2006-01-02 15:04") RFC3339 bekleyen time.Time alanlarına geri
// okunamaz ve undo her seferinde hata verirdi.
func TestVehicleSnapshotRoundTrip(t *testing.T) {
	eta := time.Date(2024, 1, 1, 11, 30, 0, 0, time.UTC)
	slot := 3
	original := models.Vehicle{
		ID:                    7,
		Plate:                 "34 ABC 123",
		Brand:                 "Renault",
		Model:                 "Clio",
		Year:                  2019,
		CustomerName:          "Ayşe Yılmaz",
		CustomerPhone:         "05551112233",
		Km:                    84000,
		ComplaintNote:         "Motorda ses var",
		Status:                models.VehicleStatusInProgress,
		EstimatedDeliveryDate: &eta,
		SlotNumber:            &slot,
		QRToken:               "c0ffee00-0000-0000-0000-000000000000",
		CreatedAt:             time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var restored models.Vehicle
	require.NoError(t, json.Unmarshal(data, &restored))

	assert.Equal(t, original.Plate, restored.Plate)
	assert.Equal(t, original.CustomerName, restored.CustomerName)
	assert.Equal(t, original.ComplaintNote, restored.ComplaintNote)
	assert.Equal(t, original.SlotNumber, restored.SlotNumber)
	require.NotNil(t, restored.EstimatedDeliveryDate)
	assert.True(t, eta.Equal(*restored.EstimatedDeliveryDate))
	assert.True(t, original.CreatedAt.Equal(restored.CreatedAt))
}

func TestServiceRecordSnapshotRoundTrip(t *testing.T) {
	minutes := 90
	original := models.ServiceRecord{
		ID:                       11,
		VehicleID:                7,
		ServiceDate:              time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		RecordStatus:             models.RecordStatusInProgress,
		Complaint:                "Fren sesi",
		WorkDone:                 "Balata değişimi",
		Technician:               "Mehmet",
		EstimatedDurationMinutes: &minutes,
		PartsCost:                1500,
		LaborCost:                500,
		CreatedAt:                time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var restored models.ServiceRecord
	require.NoError(t, json.Unmarshal(data, &restored))

	assert.Equal(t, original.RecordStatus, restored.RecordStatus)
	assert.Equal(t, original.Complaint, restored.Complaint)
	assert.Equal(t, original.EstimatedDurationMinutes, restored.EstimatedDurationMinutes)
	assert.Equal(t, original.PartsCost, restored.PartsCost)
	assert.True(t, original.ServiceDate.Equal(restored.ServiceDate))
}
