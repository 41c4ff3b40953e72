package servicerecord

import (
	"fmt"
	"log"
	"strings"
	"time"

	"servis-backend/internal/audit"
	"servis-backend/internal/auth"
	"servis-backend/internal/database"
	"servis-backend/internal/models"
	"servis-backend/internal/status"

	"github.com/gofiber/fiber/v2"
)

type CreateRecordRequest struct {
	ServiceDate              string  `json:"service_date"` // "2025-12-09"
	RecordStatus             string  `json:"record_status"`
	Complaint                string  `json:"complaint"`
	WorkDone                 string  `json:"work_done"`
	Technician               string  `json:"technician"`
	EstimatedDurationMinutes *int    `json:"estimated_duration_minutes"`
	PartsCost                float64 `json:"parts_cost"`
	LaborCost                float64 `json:"labor_cost"`
}

type UpdateRecordRequest struct {
	ServiceDate              *string  `json:"service_date"`
	RecordStatus             *string  `json:"record_status"`
	Complaint                *string  `json:"complaint"`
	WorkDone                 *string  `json:"work_done"`
	Technician               *string  `json:"technician"`
	EstimatedDurationMinutes *int     `json:"estimated_duration_minutes"`
	PartsCost                *float64 `json:"parts_cost"`
	LaborCost                *float64 `json:"labor_cost"`
}

type UpdateRecordStatusRequest struct {
	RecordStatus             string `json:"record_status"`
	EstimatedDurationMinutes *int   `json:"estimated_duration_minutes"`
}

type RecordResponse struct {
	ID                       uint                `json:"id"`
	VehicleID                uint                `json:"vehicle_id"`
	ServiceDate              string              `json:"service_date"`
	RecordStatus             models.RecordStatus `json:"record_status"`
	Complaint                string              `json:"complaint"`
	WorkDone                 string              `json:"work_done"`
	Technician               string              `json:"technician"`
	EstimatedDurationMinutes *int                `json:"estimated_duration_minutes"`
	PartsCost                float64             `json:"parts_cost"`
	LaborCost                float64             `json:"labor_cost"`
	CreatedAt                string              `json:"created_at"`
}

func toResponse(r *models.ServiceRecord) RecordResponse {
	return RecordResponse{
		ID:                       r.ID,
		VehicleID:                r.VehicleID,
		ServiceDate:              r.ServiceDate.Format("2006-01-02"),
		RecordStatus:             r.RecordStatus,
		Complaint:                r.Complaint,
		WorkDone:                 r.WorkDone,
		Technician:               r.Technician,
		EstimatedDurationMinutes: r.EstimatedDurationMinutes,
		PartsCost:                r.PartsCost,
		LaborCost:                r.LaborCost,
		CreatedAt:                r.CreatedAt.Format("2006-01-02 15:04:05"),
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

// POST /api/vehicles/:id/records
// Yeni iş kaydı açar; kaydın statüsü araca (ve gerekiyorsa sıradaki araçlara) yayılır.
func CreateRecordHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		vehicleID := c.Params("id")

		var vehicle models.Vehicle
		if err := database.DB.First(&vehicle, "id = ?", vehicleID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Araç bulunamadı")
		}

		var body CreateRecordRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if strings.TrimSpace(body.Complaint) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Şikayet/tespit açıklaması zorunlu")
		}

		// Varsayılan: yeni iş tespit olarak açılır
		if body.RecordStatus == "" {
			body.RecordStatus = string(models.RecordStatusDetected)
		}
		recordStatus, err := models.ParseRecordStatus(body.RecordStatus)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "record_status geçersiz: tespit, devam veya tamamlandi olmalı")
		}

		serviceDate := time.Now()
		if body.ServiceDate != "" {
			d, err := time.Parse("2006-01-02", body.ServiceDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
			}
			serviceDate = d
		}

		record := models.ServiceRecord{
			VehicleID:                vehicle.ID,
			ServiceDate:              serviceDate,
			RecordStatus:             recordStatus,
			Complaint:                strings.TrimSpace(body.Complaint),
			WorkDone:                 body.WorkDone,
			Technician:               strings.TrimSpace(body.Technician),
			EstimatedDurationMinutes: body.EstimatedDurationMinutes,
			PartsCost:                body.PartsCost,
			LaborCost:                body.LaborCost,
		}

		if err := database.DB.Create(&record).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Servis kaydı oluşturulamadı")
		}

		// Statü yayılımı: kaydın statüsü aracın türetilmiş statüsünü değiştirebilir
		if err := statusManager().HandleRecordStatusChange(vehicle.ID, recordStatus, body.EstimatedDurationMinutes); err != nil {
			// Kayıt oluştu; statü bir sonraki toplu hesaplamada düzelir
			log.Printf("Statü yayılımı başarısız (araç %d): %v", vehicle.ID, err)
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "service_record",
				EntityID:    record.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Servis kaydı açıldı: %s - %s", vehicle.Plate, record.Complaint),
				Before:      nil,
				After:       record,
			}); logErr != nil {
				log.Printf("Audit log yazılamadı: %v", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(toResponse(&record))
	}
}

// GET /api/vehicles/:id/records
func ListRecordsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		vehicleID := c.Params("id")

		var vehicle models.Vehicle
		if err := database.DB.First(&vehicle, "id = ?", vehicleID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Araç bulunamadı")
		}

		var records []models.ServiceRecord
		if err := database.DB.
			Where("vehicle_id = ?", vehicle.ID).
			Order("service_date desc, id desc").
			Find(&records).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Servis kayıtları listelenemedi")
		}

		resp := make([]RecordResponse, 0, len(records))
		for i := range records {
			resp = append(resp, toResponse(&records[i]))
		}
		return c.JSON(resp)
	}
}

// PUT /api/records/:id
// Kayıt alanlarını günceller; record_status değişmişse yayılım tetiklenir.
func UpdateRecordHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var record models.ServiceRecord
		if err := database.DB.First(&record, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Servis kaydı bulunamadı")
		}

		// Undo ham model alanlarını geri yüklediği için snapshot model olarak tutulur
		before := record
		oldStatus := record.RecordStatus

		var body UpdateRecordRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.ServiceDate != nil {
			d, err := time.Parse("2006-01-02", *body.ServiceDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
			}
			record.ServiceDate = d
		}
		if body.RecordStatus != nil {
			st, err := models.ParseRecordStatus(*body.RecordStatus)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "record_status geçersiz: tespit, devam veya tamamlandi olmalı")
			}
			record.RecordStatus = st
		}
		if body.Complaint != nil {
			complaint := strings.TrimSpace(*body.Complaint)
			if complaint == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Şikayet/tespit açıklaması boş olamaz")
			}
			record.Complaint = complaint
		}
		if body.WorkDone != nil {
			record.WorkDone = *body.WorkDone
		}
		if body.Technician != nil {
			record.Technician = strings.TrimSpace(*body.Technician)
		}
		if body.EstimatedDurationMinutes != nil {
			record.EstimatedDurationMinutes = body.EstimatedDurationMinutes
		}
		if body.PartsCost != nil {
			record.PartsCost = *body.PartsCost
		}
		if body.LaborCost != nil {
			record.LaborCost = *body.LaborCost
		}

		if err := database.DB.Save(&record).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Servis kaydı güncellenemedi")
		}

		if record.RecordStatus != oldStatus {
			if err := statusManager().HandleRecordStatusChange(record.VehicleID, record.RecordStatus, record.EstimatedDurationMinutes); err != nil {
				log.Printf("Statü yayılımı başarısız (araç %d): %v", record.VehicleID, err)
			}
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "service_record",
				EntityID:    record.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Servis kaydı güncellendi: #%d", record.ID),
				Before:      before,
				After:       record,
			}); logErr != nil {
				log.Printf("Audit log yazılamadı: %v", logErr)
			}
		}

		return c.JSON(toResponse(&record))
	}
}

// PUT /api/records/:id/status
// Durum butonu: kaydın statüsünü değiştirir ve yayılımı tetikler.
func UpdateRecordStatusHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var record models.ServiceRecord
		if err := database.DB.First(&record, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Servis kaydı bulunamadı")
		}

		var body UpdateRecordStatusRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		newStatus, err := models.ParseRecordStatus(body.RecordStatus)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "record_status geçersiz: tespit, devam veya tamamlandi olmalı")
		}

		before := record

		updates := map[string]interface{}{"record_status": newStatus}
		if body.EstimatedDurationMinutes != nil {
			updates["estimated_duration_minutes"] = body.EstimatedDurationMinutes
			record.EstimatedDurationMinutes = body.EstimatedDurationMinutes
		}
		if err := database.DB.Model(&record).Updates(updates).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kayıt durumu güncellenemedi")
		}
		record.RecordStatus = newStatus

		if err := statusManager().HandleRecordStatusChange(record.VehicleID, newStatus, record.EstimatedDurationMinutes); err != nil {
			log.Printf("Statü yayılımı başarısız (araç %d): %v", record.VehicleID, err)
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "service_record",
				EntityID:    record.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Kayıt durumu değişti: #%d -> %s", record.ID, newStatus),
				Before:      before,
				After:       record,
			}); logErr != nil {
				log.Printf("Audit log yazılamadı: %v", logErr)
			}
		}

		return c.JSON(toResponse(&record))
	}
}

// DELETE /api/records/:id
// Kayıt silinince aracın statüsü kalan kayıtlardan yeniden türetilir.
func DeleteRecordHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var record models.ServiceRecord
		if err := database.DB.First(&record, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Servis kaydı bulunamadı")
		}

		if err := database.DB.Delete(&record).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Servis kaydı silinemedi")
		}

		if err := statusManager().Recalculate(record.VehicleID); err != nil {
			log.Printf("Araç statüsü yeniden hesaplanamadı (araç %d): %v", record.VehicleID, err)
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "service_record",
				EntityID:    record.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Servis kaydı silindi: #%d", record.ID),
				Before:      record,
				After:       record,
			}); logErr != nil {
				log.Printf("Audit log yazılamadı: %v", logErr)
			}
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
