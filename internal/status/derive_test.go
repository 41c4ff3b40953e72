package status

import (
	"testing"
	"time"

	"servis-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minutes(n int) *int { return &n }

func rec(st models.RecordStatus, dur *int) models.ServiceRecord {
	return models.ServiceRecord{RecordStatus: st, EstimatedDurationMinutes: dur}
}

func TestDerive(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		records    []models.ServiceRecord
		peer       bool
		wantStatus models.VehicleStatus
		wantETA    *time.Time
	}{
		{
			name:       "kayıt yoksa yok",
			records:    nil,
			wantStatus: models.VehicleStatusIdle,
		},
		{
			name: "tüm kayıtlar tamamlandıysa tamamlandi",
			records: []models.ServiceRecord{
				rec(models.RecordStatusCompleted, nil),
				rec(models.RecordStatusCompleted, minutes(60)),
			},
			peer:       true,
			wantStatus: models.VehicleStatusCompleted,
		},
		{
			name: "devam kaydı her zaman islemde yapar",
			records: []models.ServiceRecord{
				rec(models.RecordStatusCompleted, nil),
				rec(models.RecordStatusInProgress, nil),
				rec(models.RecordStatusDetected, nil),
			},
			wantStatus: models.VehicleStatusInProgress,
		},
		{
			name: "sadece tespit + işlemdeki başka araç = sirada",
			records: []models.ServiceRecord{
				rec(models.RecordStatusDetected, nil),
			},
			peer:       true,
			wantStatus: models.VehicleStatusQueued,
		},
		{
			name: "sadece tespit + işlemde araç yoksa yok",
			records: []models.ServiceRecord{
				rec(models.RecordStatusDetected, nil),
			},
			peer:       false,
			wantStatus: models.VehicleStatusIdle,
		},
		{
			name: "tespit + tamamlandi karışımı da tespit gibi davranır",
			records: []models.ServiceRecord{
				rec(models.RecordStatusCompleted, nil),
				rec(models.RecordStatusDetected, nil),
			},
			peer:       true,
			wantStatus: models.VehicleStatusQueued,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, eta := Derive(tt.records, tt.peer, now)
			assert.Equal(t, tt.wantStatus, st)
			assert.Equal(t, tt.wantETA, eta)
		})
	}
}

func TestDeriveDeliveryDate(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	// 90 dakikalık devam kaydı: teslim 11:30
	records := []models.ServiceRecord{rec(models.RecordStatusInProgress, minutes(90))}
	st, eta := Derive(records, false, now)
	require.Equal(t, models.VehicleStatusInProgress, st)
	require.NotNil(t, eta)
	assert.Equal(t, time.Date(2024, 1, 1, 11, 30, 0, 0, time.UTC), *eta)

	// Süresi olmayan devam kaydı: teslim tarihi yok
	records = []models.ServiceRecord{rec(models.RecordStatusInProgress, nil)}
	st, eta = Derive(records, false, now)
	require.Equal(t, models.VehicleStatusInProgress, st)
	assert.Nil(t, eta)
}

func TestDeriveFirstInProgressWins(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	// Kayıtlar service_date azalan sıralı gelir; en yeni devam kaydının süresi geçerli
	records := []models.ServiceRecord{
		rec(models.RecordStatusInProgress, minutes(30)),
		rec(models.RecordStatusInProgress, minutes(240)),
	}
	st, eta := Derive(records, false, now)
	require.Equal(t, models.VehicleStatusInProgress, st)
	require.NotNil(t, eta)
	assert.Equal(t, now.Add(30*time.Minute), *eta)
}

func TestDeliveryDate(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	assert.Nil(t, DeliveryDate(nil, now))
	assert.Nil(t, DeliveryDate(minutes(0), now))
	assert.Nil(t, DeliveryDate(minutes(-15), now))

	eta := DeliveryDate(minutes(90), now)
	require.NotNil(t, eta)
	assert.Equal(t, time.Date(2024, 1, 1, 11, 30, 0, 0, time.UTC), *eta)
}
