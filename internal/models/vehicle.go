package models

import "time"

type VehicleStatus string

const (
	VehicleStatusInProgress VehicleStatus = "islemde"    // serviste işlem görüyor
	VehicleStatusQueued     VehicleStatus = "sirada"     // sırada bekliyor
	VehicleStatusCompleted  VehicleStatus = "tamamlandi" // tüm işler bitti
	VehicleStatusIdle       VehicleStatus = "yok"        // açık iş yok / beklemede
)

// Vehicle: Servise kabul edilen araç.
// Status alanı araç kayıtlarından türetilir, elle yazılmaz (internal/status).
type Vehicle struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	Plate         string `gorm:"size:20;uniqueIndex;not null" json:"plate"` // plaka (örn: 34 ABC 123)
	Brand         string `gorm:"size:50" json:"brand"`
	Model         string `gorm:"size:50" json:"model"`
	Year          int    `json:"year"`
	CustomerName  string `gorm:"size:100;not null" json:"customer_name"`
	CustomerPhone string `gorm:"size:20" json:"customer_phone"`
	Km            int    `json:"km"`
	ComplaintNote string `gorm:"size:500" json:"complaint_note"` // kabul sırasındaki müşteri şikayeti

	Status                VehicleStatus `gorm:"size:20;index;not null;default:yok" json:"status"`
	EstimatedDeliveryDate *time.Time    `json:"estimated_delivery_date"` // sadece islemde iken dolu

	SlotNumber *int   `gorm:"index" json:"slot_number"`                     // servis peteği / lift numarası
	QRToken    string `gorm:"size:36;uniqueIndex;not null" json:"qr_token"` // QR etiketindeki token

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Records []ServiceRecord `gorm:"foreignKey:VehicleID;constraint:OnDelete:CASCADE" json:"records,omitempty"`
}
