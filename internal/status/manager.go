package status

import (
	"fmt"
	"time"

	"servis-backend/internal/models"
)

// Manager: araç statülerini türeten ve kayıt değişikliklerinde yayan servis.
// Tüm statü kuralları tek yerde (Derive) durur; Calculate, HandleRecordStatusChange
// ve RecalculateAll aynı fonksiyonu kullanır.
type Manager struct {
	store Store
	now   func() time.Time
}

func NewManager(store Store) *Manager {
	return &Manager{store: store, now: time.Now}
}

// Calculate: tek aracın statüsünü kayıtlarından türetir, hiçbir şey yazmaz.
// Okuma hatası açıkça döner; "kayıt yok" ile "okunamadı" karıştırılmaz.
func (m *Manager) Calculate(vehicleID uint) (models.VehicleStatus, *time.Time, error) {
	records, err := m.store.RecordsByVehicle(vehicleID)
	if err != nil {
		return "", nil, fmt.Errorf("servis kayıtları okunamadı: %w", err)
	}

	// Başka araca bakmak sadece tespit'te kalan kayıtlar için gerekir
	peer := false
	if needsPeerCheck(records) {
		others, err := m.store.VehiclesByStatus(models.VehicleStatusInProgress, vehicleID)
		if err != nil {
			return "", nil, fmt.Errorf("işlemdeki araçlar okunamadı: %w", err)
		}
		peer = len(others) > 0
	}

	st, eta := Derive(records, peer, m.now())
	return st, eta, nil
}

// Recalculate: statüyü türetir ve araca yazar.
func (m *Manager) Recalculate(vehicleID uint) error {
	st, eta, err := m.Calculate(vehicleID)
	if err != nil {
		return err
	}
	if err := m.store.UpdateVehicleStatus(vehicleID, st, eta); err != nil {
		return fmt.Errorf("araç statüsü güncellenemedi: %w", err)
	}
	return nil
}

// HandleRecordStatusChange: bir iş kaydının statüsü değiştiğinde (oluşturma veya
// düzenleme) aracın ve gerekiyorsa beklemedeki diğer araçların statüsünü günceller.
//   - devam:      araç islemde olur, beklemedeki (yok) araçlardan tespit kaydı
//     olanlar sıraya alınır. Tüm yazmalar tek transaction içinde çalışır.
//   - tamamlandi: aracın statüsü kayıtlardan yeniden türetilir.
//   - tespit:     tek başına statü yaymaz.
func (m *Manager) HandleRecordStatusChange(vehicleID uint, newStatus models.RecordStatus, estimatedMinutes *int) error {
	switch newStatus {
	case models.RecordStatusInProgress:
		return m.store.Transaction(func(tx Store) error {
			eta := DeliveryDate(estimatedMinutes, m.now())
			if err := tx.UpdateVehicleStatus(vehicleID, models.VehicleStatusInProgress, eta); err != nil {
				return fmt.Errorf("araç statüsü güncellenemedi: %w", err)
			}

			idle, err := tx.VehiclesByStatus(models.VehicleStatusIdle, vehicleID)
			if err != nil {
				return fmt.Errorf("beklemedeki araçlar okunamadı: %w", err)
			}
			for _, v := range idle {
				records, err := tx.RecordsByVehicle(v.ID)
				if err != nil {
					return fmt.Errorf("servis kayıtları okunamadı: %w", err)
				}
				if hasDetected(records) {
					if err := tx.UpdateVehicleStatus(v.ID, models.VehicleStatusQueued, nil); err != nil {
						return fmt.Errorf("araç sıraya alınamadı: %w", err)
					}
				}
			}
			return nil
		})

	case models.RecordStatusCompleted:
		return m.Recalculate(vehicleID)

	default:
		return nil
	}
}

// RecalculateAll: tüm araçların statüsünü kayıtlardan yeniden türetir.
// Cascade'lerin veya elle yapılan düzenlemelerin bıraktığı tutarsızlıkları
// onaran mekanizmadır; araç listesi yüklenirken çağrılır.
func (m *Manager) RecalculateAll() error {
	ids, err := m.store.AllVehicleIDs()
	if err != nil {
		return fmt.Errorf("araç listesi okunamadı: %w", err)
	}

	// 1. geçiş: herhangi bir araçta devam eden iş var mı
	hasInProgress := false
	for _, id := range ids {
		records, err := m.store.RecordsByVehicle(id)
		if err != nil {
			return fmt.Errorf("servis kayıtları okunamadı: %w", err)
		}
		for _, r := range records {
			if r.RecordStatus == models.RecordStatusInProgress {
				hasInProgress = true
				break
			}
		}
		if hasInProgress {
			break
		}
	}

	// 2. geçiş: her araca aynı kuralları uygula, sonucu koşulsuz yaz
	now := m.now()
	for _, id := range ids {
		records, err := m.store.RecordsByVehicle(id)
		if err != nil {
			return fmt.Errorf("servis kayıtları okunamadı: %w", err)
		}
		st, eta := Derive(records, hasInProgress, now)
		if err := m.store.UpdateVehicleStatus(id, st, eta); err != nil {
			return fmt.Errorf("araç statüsü güncellenemedi: %w", err)
		}
	}

	return nil
}

// needsPeerCheck: sadece tespit'te kalan (devam'ı olmayan) kayıt setleri için
// başka araçların statüsüne bakılır
func needsPeerCheck(records []models.ServiceRecord) bool {
	hasDetectedRecord := false
	for _, r := range records {
		switch r.RecordStatus {
		case models.RecordStatusInProgress:
			return false
		case models.RecordStatusDetected:
			hasDetectedRecord = true
		}
	}
	return hasDetectedRecord
}

func hasDetected(records []models.ServiceRecord) bool {
	for _, r := range records {
		if r.RecordStatus == models.RecordStatusDetected {
			return true
		}
	}
	return false
}
