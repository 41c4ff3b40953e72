package vehicle

import (
	"servis-backend/internal/database"
	"servis-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type QRRecordSummary struct {
	Complaint    string              `json:"complaint"`
	WorkDone     string              `json:"work_done"`
	RecordStatus models.RecordStatus `json:"record_status"`
	ServiceDate  string              `json:"service_date"`
}

type QRLookupResponse struct {
	Plate                 string               `json:"plate"`
	Brand                 string               `json:"brand"`
	Model                 string               `json:"model"`
	Status                models.VehicleStatus `json:"status"`
	EstimatedDeliveryDate *string              `json:"estimated_delivery_date"`
	SlotNumber            *int                 `json:"slot_number"`
	Records               []QRRecordSummary    `json:"records"`
}

// GET /api/public/qr/:token
// Araca yapıştırılan QR etiketi üzerinden müşteriye açık durum sorgusu.
// Token tahmin edilemez (uuid), bu yüzden auth istemez; müşteri bilgisi dönülmez.
func QRLookupHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Params("token")
		if token == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Token eksik")
		}

		var vehicle models.Vehicle
		if err := database.DB.Preload("Records", func(db *gorm.DB) *gorm.DB {
			return db.Order("service_date desc, id desc")
		}).First(&vehicle, "qr_token = ?", token).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Araç bulunamadı")
		}

		var eta *string
		if vehicle.EstimatedDeliveryDate != nil {
			formatted := vehicle.EstimatedDeliveryDate.Format("2006-01-02 15:04")
			eta = &formatted
		}

		records := make([]QRRecordSummary, 0, len(vehicle.Records))
		for _, r := range vehicle.Records {
			records = append(records, QRRecordSummary{
				Complaint:    r.Complaint,
				WorkDone:     r.WorkDone,
				RecordStatus: r.RecordStatus,
				ServiceDate:  r.ServiceDate.Format("2006-01-02"),
			})
		}

		return c.JSON(QRLookupResponse{
			Plate:                 vehicle.Plate,
			Brand:                 vehicle.Brand,
			Model:                 vehicle.Model,
			Status:                vehicle.Status,
			EstimatedDeliveryDate: eta,
			SlotNumber:            vehicle.SlotNumber,
			Records:               records,
		})
	}
}
