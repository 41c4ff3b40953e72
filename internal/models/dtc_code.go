package models

import "time"

// DTCCode: OBD-II arıza kodu sözlüğü (örn: P0301)
type DTCCode struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Code        string    `gorm:"size:10;uniqueIndex;not null" json:"code"`
	Description string    `gorm:"size:500;not null" json:"description"` // Türkçe açıklama
	Category    string    `gorm:"size:50" json:"category"`              // motor, şanzıman, ABS...
	Severity    string    `gorm:"size:20" json:"severity"`              // dusuk / orta / yuksek
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
