package status

import (
	"time"

	"servis-backend/internal/models"

	"gorm.io/gorm"
)

// Store: statü hesaplarının veritabanı sınırı.
// Transaction içinde verilen Store aynı transaction üzerinde çalışır.
type Store interface {
	// RecordsByVehicle: aracın kayıtları, service_date azalan sıralı
	RecordsByVehicle(vehicleID uint) ([]models.ServiceRecord, error)
	// VehiclesByStatus: verilen statüdeki araçlar, excludeID hariç (0 = hariç yok)
	VehiclesByStatus(st models.VehicleStatus, excludeID uint) ([]models.Vehicle, error)
	AllVehicleIDs() ([]uint, error)
	UpdateVehicleStatus(vehicleID uint, st models.VehicleStatus, eta *time.Time) error
	Transaction(fn func(Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) RecordsByVehicle(vehicleID uint) ([]models.ServiceRecord, error) {
	var records []models.ServiceRecord
	err := s.db.
		Where("vehicle_id = ?", vehicleID).
		Order("service_date desc, id desc").
		Find(&records).Error
	return records, err
}

func (s *gormStore) VehiclesByStatus(st models.VehicleStatus, excludeID uint) ([]models.Vehicle, error) {
	var vehicles []models.Vehicle
	q := s.db.Where("status = ?", st)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Find(&vehicles).Error
	return vehicles, err
}

func (s *gormStore) AllVehicleIDs() ([]uint, error) {
	var ids []uint
	err := s.db.Model(&models.Vehicle{}).Order("id asc").Pluck("id", &ids).Error
	return ids, err
}

func (s *gormStore) UpdateVehicleStatus(vehicleID uint, st models.VehicleStatus, eta *time.Time) error {
	return s.db.Model(&models.Vehicle{}).Where("id = ?", vehicleID).Updates(map[string]interface{}{
		"status":                  st,
		"estimated_delivery_date": eta,
	}).Error
}

func (s *gormStore) Transaction(fn func(Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}
