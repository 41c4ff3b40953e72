package admin

import (
	"strings"

	"servis-backend/internal/database"
	"servis-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type SettingResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type UpdateSettingRequest struct {
	Value string `json:"value"`
}

// Bilinen ayar anahtarları; serbest anahtar kabul edilmez
var allowedSettingKeys = map[string]bool{
	"servis_adi":       true,
	"calisma_saatleri": true,
	"ai_model":         true,
}

// GET /api/admin/settings
func ListSettingsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var settings []models.AppSetting
		if err := database.DB.Order("key asc").Find(&settings).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ayarlar listelenemedi")
		}

		res := make([]SettingResponse, 0, len(settings))
		for _, s := range settings {
			res = append(res, SettingResponse{Key: s.Key, Value: s.Value})
		}
		return c.JSON(res)
	}
}

// PUT /api/admin/settings/:key
func UpdateSettingHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := strings.TrimSpace(c.Params("key"))
		if !allowedSettingKeys[key] {
			return fiber.NewError(fiber.StatusBadRequest, "Bilinmeyen ayar anahtarı: "+key)
		}

		var body UpdateSettingRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		var setting models.AppSetting
		if err := database.DB.First(&setting, "key = ?", key).Error; err == nil {
			setting.Value = body.Value
			if err := database.DB.Save(&setting).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Ayar güncellenemedi")
			}
		} else {
			setting = models.AppSetting{Key: key, Value: body.Value}
			if err := database.DB.Create(&setting).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Ayar kaydedilemedi")
			}
		}

		return c.JSON(SettingResponse{Key: setting.Key, Value: setting.Value})
	}
}
