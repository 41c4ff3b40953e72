package status

import (
	"time"

	"servis-backend/internal/models"
)

// Derive: aracın statüsünü servis kayıtlarından türetir.
// Öncelik sırası: tamamlandi > devam > tespit(+işlemde başka araç varsa sirada) > yok.
// records service_date'e göre azalan sıralı gelmelidir; ilk devam kaydı kazanır
// ve teslim tarihi onun tahmini süresinden hesaplanır.
func Derive(records []models.ServiceRecord, peerInProgress bool, now time.Time) (models.VehicleStatus, *time.Time) {
	if len(records) == 0 {
		return models.VehicleStatusIdle, nil
	}

	allCompleted := true
	for _, r := range records {
		if r.RecordStatus != models.RecordStatusCompleted {
			allCompleted = false
			break
		}
	}
	if allCompleted {
		return models.VehicleStatusCompleted, nil
	}

	for _, r := range records {
		if r.RecordStatus == models.RecordStatusInProgress {
			return models.VehicleStatusInProgress, DeliveryDate(r.EstimatedDurationMinutes, now)
		}
	}

	for _, r := range records {
		if r.RecordStatus == models.RecordStatusDetected {
			if peerInProgress {
				return models.VehicleStatusQueued, nil
			}
			break
		}
	}

	return models.VehicleStatusIdle, nil
}

// DeliveryDate: devam kaydının tahmini süresinden teslim tarihi hesaplar.
// Süre yoksa veya pozitif değilse nil döner.
func DeliveryDate(minutes *int, now time.Time) *time.Time {
	if minutes == nil || *minutes <= 0 {
		return nil
	}
	t := now.Add(time.Duration(*minutes) * time.Minute)
	return &t
}
