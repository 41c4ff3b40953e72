package backup

import (
	"testing"
	"time"

	"servis-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPayload() Payload {
	return Payload{
		Version: payloadVersion,
		Vehicles: []models.Vehicle{
			{ID: 1, Plate: "34 ABC 123"},
		},
		Records: []models.ServiceRecord{
			{VehicleID: 1, RecordStatus: models.RecordStatusDetected},
		},
		DTCCodes: []models.DTCCode{
			{Code: "P0301", Description: "Ateşleme hatası"},
		},
		Settings: []models.AppSetting{
			{Key: "servis_adi", Value: "Usta Oto"},
		},
	}
}

func TestPayloadValidate(t *testing.T) {
	p := validPayload()
	require.NoError(t, p.Validate())
}

func TestPayloadValidateRejectsBadInput(t *testing.T) {
	p := validPayload()
	p.Version = 99
	assert.Error(t, p.Validate(), "yanlış sürüm reddedilmeli")

	p = validPayload()
	p.Vehicles[0].Plate = ""
	assert.Error(t, p.Validate(), "plakasız araç reddedilmeli")

	p = validPayload()
	p.Records[0].VehicleID = 42
	assert.Error(t, p.Validate(), "bilinmeyen araca bağlı kayıt reddedilmeli")

	p = validPayload()
	p.DTCCodes[0].Code = ""
	assert.Error(t, p.Validate(), "kodsuz arıza kodu reddedilmeli")

	p = validPayload()
	p.Settings[0].Key = ""
	assert.Error(t, p.Validate(), "anahtarsız ayar reddedilmeli")
}

// Merge içe aktarma kayıtları bu anahtarla eşleştirir: aynı yedek iki kez
// yüklendiğinde her kayıt mevcut karşılığını bulmalı, kopya açılmamalı.
func TestRecordKeyMergeMatching(t *testing.T) {
	base := models.ServiceRecord{
		VehicleID:   1,
		ServiceDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Complaint:   "Fren sesi",
	}

	// Saat farkı ve maliyet alanları eşleşmeyi bozmaz
	sameDay := base
	sameDay.ServiceDate = time.Date(2024, 1, 1, 14, 30, 0, 0, time.UTC)
	sameDay.PartsCost = 1500
	assert.Equal(t, recordKey(base.VehicleID, &base), recordKey(sameDay.VehicleID, &sameDay))

	otherDay := base
	otherDay.ServiceDate = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	assert.NotEqual(t, recordKey(base.VehicleID, &base), recordKey(otherDay.VehicleID, &otherDay))

	otherComplaint := base
	otherComplaint.Complaint = "Motor ısınıyor"
	assert.NotEqual(t, recordKey(base.VehicleID, &base), recordKey(otherComplaint.VehicleID, &otherComplaint))

	// Aynı kayıt farklı araca bağlanınca eşleşmez
	assert.NotEqual(t, recordKey(1, &base), recordKey(2, &base))
}
