package backup

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"servis-backend/internal/database"
	"servis-backend/internal/models"
	"servis-backend/internal/status"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GET /api/admin/backup/export
// Tüm verinin JSON dökümü; dosya olarak iner.
func ExportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := Payload{
			Version:    payloadVersion,
			ExportedAt: time.Now().Format(time.RFC3339),
		}

		if err := database.DB.Order("id asc").Find(&payload.Vehicles).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Araçlar okunamadı")
		}
		if err := database.DB.Order("id asc").Find(&payload.Records).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Servis kayıtları okunamadı")
		}
		if err := database.DB.Order("code asc").Find(&payload.DTCCodes).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Arıza kodları okunamadı")
		}
		if err := database.DB.Order("key asc").Find(&payload.Settings).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ayarlar okunamadı")
		}

		filename := fmt.Sprintf("servis-yedek-%s.json", time.Now().Format("2006-01-02"))
		c.Set("Content-Disposition", "attachment; filename="+filename)
		return c.JSON(payload)
	}
}

// POST /api/admin/backup/import?mode=replace|merge
// Yedekten geri yükleme. replace tabloları sıfırlar, merge doğal anahtarlara göre
// günceller. Tüm yazmalar tek transaction içinde; sonunda statüler yeniden türetilir.
func ImportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		mode := c.Query("mode", "merge")
		if mode != "replace" && mode != "merge" {
			return fiber.NewError(fiber.StatusBadRequest, "mode 'replace' veya 'merge' olmalı")
		}

		var payload Payload
		if err := json.Unmarshal(c.Body(), &payload); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Yedek dosyası çözümlenemedi: "+err.Error())
		}

		if err := payload.Validate(); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Yedek dosyası geçersiz: "+err.Error())
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if mode == "replace" {
				// Önce kayıtlar (FK), sonra araçlar
				if err := tx.Where("1 = 1").Delete(&models.ServiceRecord{}).Error; err != nil {
					return fmt.Errorf("servis kayıtları silinemedi: %w", err)
				}
				if err := tx.Where("1 = 1").Delete(&models.Vehicle{}).Error; err != nil {
					return fmt.Errorf("araçlar silinemedi: %w", err)
				}
				if err := tx.Where("1 = 1").Delete(&models.DTCCode{}).Error; err != nil {
					return fmt.Errorf("arıza kodları silinemedi: %w", err)
				}
				if err := tx.Where("1 = 1").Delete(&models.AppSetting{}).Error; err != nil {
					return fmt.Errorf("ayarlar silinemedi: %w", err)
				}
			}

			// Araçlar: plakaya göre eşleştir
			idMap := make(map[uint]uint, len(payload.Vehicles)) // yedekteki ID -> yeni ID
			for i := range payload.Vehicles {
				v := payload.Vehicles[i]
				oldID := v.ID
				v.Records = nil

				var existing models.Vehicle
				if mode == "merge" && tx.First(&existing, "plate = ?", v.Plate).Error == nil {
					v.ID = existing.ID
					if err := tx.Save(&v).Error; err != nil {
						return fmt.Errorf("araç güncellenemedi (%s): %w", v.Plate, err)
					}
				} else {
					v.ID = 0
					if err := tx.Create(&v).Error; err != nil {
						return fmt.Errorf("araç oluşturulamadı (%s): %w", v.Plate, err)
					}
				}
				if oldID != 0 {
					idMap[oldID] = v.ID
				}
			}

			// Kayıtlar: araç eşleşmesi üzerinden yeniden bağlanır. Merge'de doğal
			// anahtara göre eşleşen kayıt güncellenir, yenisi açılmaz.
			existingKeys := map[string]uint{}
			if mode == "merge" {
				var existingRecords []models.ServiceRecord
				if err := tx.Find(&existingRecords).Error; err != nil {
					return fmt.Errorf("mevcut servis kayıtları okunamadı: %w", err)
				}
				for i := range existingRecords {
					r := &existingRecords[i]
					existingKeys[recordKey(r.VehicleID, r)] = r.ID
				}
			}
			for i := range payload.Records {
				r := payload.Records[i]
				if newID, ok := idMap[r.VehicleID]; ok {
					r.VehicleID = newID
				}
				if id, ok := existingKeys[recordKey(r.VehicleID, &r)]; ok {
					r.ID = id
					if err := tx.Save(&r).Error; err != nil {
						return fmt.Errorf("servis kaydı güncellenemedi: %w", err)
					}
					continue
				}
				r.ID = 0
				if err := tx.Create(&r).Error; err != nil {
					return fmt.Errorf("servis kaydı oluşturulamadı: %w", err)
				}
			}

			// Arıza kodları: koda göre
			for i := range payload.DTCCodes {
				d := payload.DTCCodes[i]
				var existing models.DTCCode
				if mode == "merge" && tx.First(&existing, "code = ?", d.Code).Error == nil {
					d.ID = existing.ID
					if err := tx.Save(&d).Error; err != nil {
						return fmt.Errorf("arıza kodu güncellenemedi (%s): %w", d.Code, err)
					}
				} else {
					d.ID = 0
					if err := tx.Create(&d).Error; err != nil {
						return fmt.Errorf("arıza kodu oluşturulamadı (%s): %w", d.Code, err)
					}
				}
			}

			// Ayarlar: anahtara göre
			for i := range payload.Settings {
				s := payload.Settings[i]
				var existing models.AppSetting
				if mode == "merge" && tx.First(&existing, "key = ?", s.Key).Error == nil {
					existing.Value = s.Value
					if err := tx.Save(&existing).Error; err != nil {
						return fmt.Errorf("ayar güncellenemedi (%s): %w", s.Key, err)
					}
				} else {
					s.ID = 0
					if err := tx.Create(&s).Error; err != nil {
						return fmt.Errorf("ayar oluşturulamadı (%s): %w", s.Key, err)
					}
				}
			}

			return nil
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Geri yükleme başarısız: "+err.Error())
		}

		// Yedekteki statü alanları ne olursa olsun kayıtlardan yeniden türetilir
		if err := status.NewManager(status.NewGormStore(database.DB)).RecalculateAll(); err != nil {
			log.Printf("Geri yükleme sonrası statü hesaplaması başarısız: %v", err)
		}

		return c.JSON(fiber.Map{
			"message":         "Geri yükleme tamamlandı",
			"vehicles":        len(payload.Vehicles),
			"service_records": len(payload.Records),
			"dtc_codes":       len(payload.DTCCodes),
			"settings":        len(payload.Settings),
		})
	}
}
