package database

import (
	"log"

	"servis-backend/internal/config"
	"servis-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Veritabanına bağlanılamadı: %v", err)
	}

	err = DB.AutoMigrate(
		&models.User{},
		&models.Vehicle{},
		&models.ServiceRecord{},
		&models.DTCCode{},
		&models.AppSetting{},
		&models.AuditLog{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate hatası: %v", err)
	}

	// QR token migration: qr_token kolonu eklenmeden önce oluşturulmuş araçlara
	// token üret (uniqueIndex NULL/boş değerlerle patlamasın diye)
	var missing []models.Vehicle
	if err := DB.Where("qr_token IS NULL OR qr_token = ''").Find(&missing).Error; err == nil && len(missing) > 0 {
		log.Printf("QR token'ı olmayan %d araç bulundu, token üretiliyor...", len(missing))
		for i := range missing {
			missing[i].QRToken = uuid.NewString()
			if err := DB.Model(&models.Vehicle{}).Where("id = ?", missing[i].ID).
				Update("qr_token", missing[i].QRToken).Error; err != nil {
				log.Printf("Araç %d için QR token yazılamadı: %v", missing[i].ID, err)
			}
		}
		log.Println("QR token migration tamamlandı")
	}

	log.Println("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
}
