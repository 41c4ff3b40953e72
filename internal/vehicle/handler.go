package vehicle

import (
	"fmt"
	"log"
	"strings"

	"servis-backend/internal/audit"
	"servis-backend/internal/auth"
	"servis-backend/internal/database"
	"servis-backend/internal/models"
	"servis-backend/internal/status"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VehicleResponse struct {
	ID                    uint                 `json:"id"`
	Plate                 string               `json:"plate"`
	Brand                 string               `json:"brand"`
	Model                 string               `json:"model"`
	Year                  int                  `json:"year"`
	CustomerName          string               `json:"customer_name"`
	CustomerPhone         string               `json:"customer_phone"`
	Km                    int                  `json:"km"`
	ComplaintNote         string               `json:"complaint_note"`
	Status                models.VehicleStatus `json:"status"`
	EstimatedDeliveryDate *string              `json:"estimated_delivery_date"`
	SlotNumber            *int                 `json:"slot_number"`
	QRToken               string               `json:"qr_token"`
	CreatedAt             string               `json:"created_at"`
}

type CreateVehicleRequest struct {
	Plate         string `json:"plate"`
	Brand         string `json:"brand"`
	Model         string `json:"model"`
	Year          int    `json:"year"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	Km            int    `json:"km"`
	ComplaintNote string `json:"complaint_note"`
	SlotNumber    *int   `json:"slot_number"`
}

type UpdateVehicleRequest struct {
	Plate         *string `json:"plate"`
	Brand         *string `json:"brand"`
	Model         *string `json:"model"`
	Year          *int    `json:"year"`
	CustomerName  *string `json:"customer_name"`
	CustomerPhone *string `json:"customer_phone"`
	Km            *int    `json:"km"`
	ComplaintNote *string `json:"complaint_note"`
}

type AssignSlotRequest struct {
	SlotNumber *int `json:"slot_number"` // null gönderilirse petek boşaltılır
}

func toResponse(v *models.Vehicle) VehicleResponse {
	var eta *string
	if v.EstimatedDeliveryDate != nil {
		formatted := v.EstimatedDeliveryDate.Format("2006-01-02 15:04")
		eta = &formatted
	}
	return VehicleResponse{
		ID:                    v.ID,
		Plate:                 v.Plate,
		Brand:                 v.Brand,
		Model:                 v.Model,
		Year:                  v.Year,
		CustomerName:          v.CustomerName,
		CustomerPhone:         v.CustomerPhone,
		Km:                    v.Km,
		ComplaintNote:         v.ComplaintNote,
		Status:                v.Status,
		EstimatedDeliveryDate: eta,
		SlotNumber:            v.SlotNumber,
		QRToken:               v.QRToken,
		CreatedAt:             v.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func statusManager() *status.Manager {
	return status.NewManager(status.NewGormStore(database.DB))
}

// -------------------------
// Yardımcı: Kullanıcı bilgilerini al
// -------------------------
func getUserInfo(c *fiber.Ctx) (uint, string, error) {
	userIDVal := c.Locals(auth.CtxUserIDKey)
	userID, ok := userIDVal.(uint)
	if !ok {
		return 0, "", fiber.NewError(fiber.StatusForbidden, "Kullanıcı bilgisi alınamadı")
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return 0, "", fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı bulunamadı")
	}

	return userID, user.Name, nil
}

// POST /api/vehicles
// Araç kabul: yeni araç yok statüsüyle açılır, QR token'ı burada üretilir.
func CreateVehicleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateVehicleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Plate = strings.ToUpper(strings.TrimSpace(body.Plate))
		body.CustomerName = strings.TrimSpace(body.CustomerName)

		if body.Plate == "" || body.CustomerName == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Plaka ve müşteri adı zorunlu")
		}

		// Aynı plaka var mı?
		var count int64
		database.DB.Model(&models.Vehicle{}).Where("plate = ?", body.Plate).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "Bu plakayla kayıtlı bir araç zaten var")
		}

		vehicle := models.Vehicle{
			Plate:         body.Plate,
			Brand:         strings.TrimSpace(body.Brand),
			Model:         strings.TrimSpace(body.Model),
			Year:          body.Year,
			CustomerName:  body.CustomerName,
			CustomerPhone: strings.TrimSpace(body.CustomerPhone),
			Km:            body.Km,
			ComplaintNote: body.ComplaintNote,
			Status:        models.VehicleStatusIdle,
			SlotNumber:    body.SlotNumber,
			QRToken:       uuid.NewString(),
		}

		if err := database.DB.Create(&vehicle).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Araç kaydedilemedi")
		}

		// Audit log yaz
		userID, userName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "vehicle",
				EntityID:    vehicle.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Araç kabul edildi: %s", vehicle.Plate),
				Before:      nil,
				After:       vehicle,
			}); logErr != nil {
				// Log hatası kritik değil, sadece log'la
				log.Printf("Audit log yazılamadı: %v", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(toResponse(&vehicle))
	}
}

// GET /api/vehicles?status=islemde&plate=34
// Liste yüklenirken tüm statüler kayıtlardan yeniden türetilir.
func ListVehiclesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := statusManager().RecalculateAll(); err != nil {
			// Liste yine de dönmeli; eski statüyle devam et
			log.Printf("Toplu statü hesaplaması başarısız: %v", err)
		}

		dbq := database.DB.Model(&models.Vehicle{})

		if st := c.Query("status"); st != "" {
			dbq = dbq.Where("status = ?", st)
		}
		if plate := c.Query("plate"); plate != "" {
			dbq = dbq.Where("plate LIKE ?", "%"+strings.ToUpper(strings.TrimSpace(plate))+"%")
		}

		var vehicles []models.Vehicle
		if err := dbq.Order("created_at desc").Find(&vehicles).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Araçlar listelenemedi")
		}

		resp := make([]VehicleResponse, 0, len(vehicles))
		for i := range vehicles {
			resp = append(resp, toResponse(&vehicles[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/vehicles/:id
func GetVehicleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var vehicle models.Vehicle
		if err := database.DB.Preload("Records", func(db *gorm.DB) *gorm.DB {
			return db.Order("service_date desc, id desc")
		}).First(&vehicle, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Araç bulunamadı")
		}

		return c.JSON(fiber.Map{
			"vehicle": toResponse(&vehicle),
			"records": vehicle.Records,
		})
	}
}

// PUT /api/vehicles/:id
// Kabul alanlarını günceller; status türetilmiş alan olduğu için buradan yazılamaz.
func UpdateVehicleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var vehicle models.Vehicle
		if err := database.DB.First(&vehicle, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Araç bulunamadı")
		}

		// Undo ham model alanlarını geri yüklediği için snapshot model olarak tutulur
		before := vehicle

		var body UpdateVehicleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.Plate != nil {
			plate := strings.ToUpper(strings.TrimSpace(*body.Plate))
			if plate == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Plaka boş olamaz")
			}
			vehicle.Plate = plate
		}
		if body.Brand != nil {
			vehicle.Brand = strings.TrimSpace(*body.Brand)
		}
		if body.Model != nil {
			vehicle.Model = strings.TrimSpace(*body.Model)
		}
		if body.Year != nil {
			vehicle.Year = *body.Year
		}
		if body.CustomerName != nil {
			name := strings.TrimSpace(*body.CustomerName)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Müşteri adı boş olamaz")
			}
			vehicle.CustomerName = name
		}
		if body.CustomerPhone != nil {
			vehicle.CustomerPhone = strings.TrimSpace(*body.CustomerPhone)
		}
		if body.Km != nil {
			vehicle.Km = *body.Km
		}
		if body.ComplaintNote != nil {
			vehicle.ComplaintNote = *body.ComplaintNote
		}

		if err := database.DB.Save(&vehicle).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Araç güncellenemedi")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "vehicle",
				EntityID:    vehicle.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Araç güncellendi: %s", vehicle.Plate),
				Before:      before,
				After:       vehicle,
			}); logErr != nil {
				log.Printf("Audit log yazılamadı: %v", logErr)
			}
		}

		return c.JSON(toResponse(&vehicle))
	}
}

// DELETE /api/vehicles/:id
func DeleteVehicleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var vehicle models.Vehicle
		if err := database.DB.First(&vehicle, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Araç bulunamadı")
		}

		// Kayıtlar FK cascade ile birlikte silinir
		if err := database.DB.Delete(&vehicle).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Araç silinemedi")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "vehicle",
				EntityID:    vehicle.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Araç silindi: %s", vehicle.Plate),
				Before:      vehicle,
				After:       vehicle,
			}); logErr != nil {
				log.Printf("Audit log yazılamadı: %v", logErr)
			}
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// PUT /api/vehicles/:id/slot
func AssignSlotHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var vehicle models.Vehicle
		if err := database.DB.First(&vehicle, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Araç bulunamadı")
		}

		var body AssignSlotRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.SlotNumber != nil {
			if *body.SlotNumber <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Petek numarası pozitif olmalı")
			}
			// Petek başka bir araçta mı?
			var count int64
			database.DB.Model(&models.Vehicle{}).
				Where("slot_number = ? AND id <> ?", *body.SlotNumber, vehicle.ID).
				Count(&count)
			if count > 0 {
				return fiber.NewError(fiber.StatusConflict, "Bu petekte başka bir araç var")
			}
		}

		if err := database.DB.Model(&vehicle).Update("slot_number", body.SlotNumber).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Petek atanamadı")
		}
		vehicle.SlotNumber = body.SlotNumber

		return c.JSON(toResponse(&vehicle))
	}
}
