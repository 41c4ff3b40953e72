package models

import (
	"fmt"
	"time"
)

type RecordStatus string

const (
	RecordStatusDetected   RecordStatus = "tespit"     // arıza tespit edildi, iş açık
	RecordStatusInProgress RecordStatus = "devam"      // iş üzerinde çalışılıyor
	RecordStatusCompleted  RecordStatus = "tamamlandi" // iş bitti
)

func ParseRecordStatus(s string) (RecordStatus, error) {
	switch RecordStatus(s) {
	case RecordStatusDetected, RecordStatusInProgress, RecordStatusCompleted:
		return RecordStatus(s), nil
	default:
		return "", fmt.Errorf("geçersiz kayıt durumu: %s", s)
	}
}

// ServiceRecord: Araca açılan tek bir iş/arıza kaydı
type ServiceRecord struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	VehicleID uint    `gorm:"index;not null" json:"vehicle_id"`
	Vehicle   Vehicle `json:"-"`

	ServiceDate  time.Time    `gorm:"index;not null" json:"service_date"`
	RecordStatus RecordStatus `gorm:"size:20;index;not null" json:"record_status"`

	Complaint  string `gorm:"size:500" json:"complaint"`  // şikayet / tespit edilen arıza
	WorkDone   string `gorm:"size:500" json:"work_done"`  // yapılan işlem
	Technician string `gorm:"size:100" json:"technician"` // işi yapan usta

	EstimatedDurationMinutes *int `json:"estimated_duration_minutes"` // sadece devam için anlamlı

	PartsCost float64 `json:"parts_cost"`
	LaborCost float64 `json:"labor_cost"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
