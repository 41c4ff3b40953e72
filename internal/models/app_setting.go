package models

import "time"

// AppSetting: anahtar/değer uygulama ayarları (servis adı, çalışma saatleri, AI modeli)
type AppSetting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"size:100;uniqueIndex;not null" json:"key"`
	Value     string    `gorm:"size:500" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
