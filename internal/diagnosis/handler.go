package diagnosis

import (
	"fmt"
	"log"
	"strings"

	"servis-backend/internal/audit"
	"servis-backend/internal/auth"
	"servis-backend/internal/database"
	"servis-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

type DTCCodeResponse struct {
	ID          uint   `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Severity    string `json:"severity"`
}

type ImportResultResponse struct {
	Imported int      `json:"imported"`
	Updated  int      `json:"updated"`
	Skipped  []string `json:"skipped"` // işlenemeyen satırların kodları/nedenleri
}

type DiagnosisRequest struct {
	VehicleID *uint    `json:"vehicle_id"` // verilirse marka/model/yıl araçtan alınır
	Brand     string   `json:"brand"`
	Model     string   `json:"model"`
	Year      int      `json:"year"`
	Complaint string   `json:"complaint"`
	DTCCodes  []string `json:"dtc_codes"`
}

type DiagnosisResponse struct {
	Suggestion string            `json:"suggestion"`
	Codes      []DTCCodeResponse `json:"codes"`    // sözlükte bulunan kodlar
	Unknown    []string          `json:"unknown"`  // sözlükte olmayan kodlar
}

func toDTCResponse(d *models.DTCCode) DTCCodeResponse {
	return DTCCodeResponse{
		ID:          d.ID,
		Code:        d.Code,
		Description: d.Description,
		Category:    d.Category,
		Severity:    d.Severity,
	}
}

// GET /api/dtc-codes?code=P0301&q=ateşleme
func ListDTCCodesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.DTCCode{})

		if codeStr := c.Query("code"); codeStr != "" {
			code, err := NormalizeDTCCode(codeStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Arıza kodu formatı geçersiz (örn: P0301)")
			}
			dbq = dbq.Where("code = ?", code)
		}
		if q := c.Query("q"); q != "" {
			dbq = dbq.Where("description ILIKE ?", "%"+strings.TrimSpace(q)+"%")
		}

		var codes []models.DTCCode
		if err := dbq.Order("code asc").Limit(100).Find(&codes).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Arıza kodları listelenemedi")
		}

		resp := make([]DTCCodeResponse, 0, len(codes))
		for i := range codes {
			resp = append(resp, toDTCResponse(&codes[i]))
		}
		return c.JSON(resp)
	}
}

// POST /api/admin/dtc-codes/import
// Excel'den toplu arıza kodu yükleme. Beklenen kolonlar:
// kod | açıklama | kategori | önem (ilk satır başlıksa atlanır)
func ImportDTCCodesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dosya yüklenemedi: "+err.Error())
		}

		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "Sadece .xlsx dosyaları yüklenebilir")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Dosya açılamadı: "+err.Error())
		}
		defer file.Close()

		excelFile, err := excelize.OpenReader(file)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyası okunamadı: "+err.Error())
		}
		defer excelFile.Close()

		sheetList := excelFile.GetSheetList()
		if len(sheetList) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyasında sheet bulunamadı")
		}

		rows, err := excelFile.GetRows(sheetList[0])
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Sheet okunamadı: "+err.Error())
		}
		if len(rows) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyası boş")
		}

		// İlk satır başlık mı? (KOD / CODE gibi kelimeler varsa atla)
		startIndex := 0
		if len(rows[0]) > 0 {
			firstCell := strings.ToUpper(strings.TrimSpace(rows[0][0]))
			if strings.Contains(firstCell, "KOD") || strings.Contains(firstCell, "CODE") {
				startIndex = 1
			}
		}

		result := ImportResultResponse{Skipped: make([]string, 0)}

		for i := startIndex; i < len(rows); i++ {
			row := rows[i]
			if len(row) < 2 {
				result.Skipped = append(result.Skipped, fmt.Sprintf("satır %d: eksik kolon", i+1))
				continue
			}

			code, err := NormalizeDTCCode(row[0])
			if err != nil {
				result.Skipped = append(result.Skipped, fmt.Sprintf("satır %d: %s", i+1, row[0]))
				continue
			}

			description := strings.TrimSpace(row[1])
			if description == "" {
				result.Skipped = append(result.Skipped, fmt.Sprintf("satır %d: açıklama boş", i+1))
				continue
			}

			category := ""
			if len(row) > 2 {
				category = strings.TrimSpace(row[2])
			}
			severity := ""
			if len(row) > 3 {
				severity = parseSeverity(row[3])
			}

			// Kod varsa güncelle, yoksa oluştur
			var existing models.DTCCode
			if err := database.DB.First(&existing, "code = ?", code).Error; err == nil {
				existing.Description = description
				existing.Category = category
				existing.Severity = severity
				if err := database.DB.Save(&existing).Error; err != nil {
					result.Skipped = append(result.Skipped, fmt.Sprintf("satır %d: %s kaydedilemedi", i+1, code))
					continue
				}
				result.Updated++
			} else {
				entry := models.DTCCode{
					Code:        code,
					Description: description,
					Category:    category,
					Severity:    severity,
				}
				if err := database.DB.Create(&entry).Error; err != nil {
					result.Skipped = append(result.Skipped, fmt.Sprintf("satır %d: %s kaydedilemedi", i+1, code))
					continue
				}
				result.Imported++
			}
		}

		// Audit log yaz
		userIDVal := c.Locals(auth.CtxUserIDKey)
		if userID, ok := userIDVal.(uint); ok {
			var user models.User
			if err := database.DB.First(&user, "id = ?", userID).Error; err == nil {
				if logErr := audit.WriteLog(audit.LogOptions{
					UserID:      userID,
					UserName:    user.Name,
					EntityType:  "dtc_code",
					EntityID:    0,
					Action:      models.AuditActionCreate,
					Description: fmt.Sprintf("Arıza kodu içe aktarma: %d yeni, %d güncellendi", result.Imported, result.Updated),
					Before:      nil,
					After:       result,
				}); logErr != nil {
					log.Printf("Audit log yazılamadı: %v", logErr)
				}
			}
		}

		return c.JSON(result)
	}
}

// POST /api/diagnosis
// AI destekli arıza teşhisi. Hiçbir şey persist edilmez; sadece öneri döner.
func DiagnoseHandler(ai *AIClient) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ai == nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "AI destekli teşhis devre dışı (OPENAI_API_KEY tanımlanmamış)")
		}

		var body DiagnosisRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if strings.TrimSpace(body.Complaint) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Şikayet açıklaması zorunlu")
		}

		brand, model, year := body.Brand, body.Model, body.Year
		if body.VehicleID != nil {
			var vehicle models.Vehicle
			if err := database.DB.First(&vehicle, "id = ?", *body.VehicleID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Araç bulunamadı")
			}
			brand, model, year = vehicle.Brand, vehicle.Model, vehicle.Year
		}

		// Kodları sözlükten zenginleştir
		known := make([]models.DTCCode, 0, len(body.DTCCodes))
		unknown := make([]string, 0)
		for _, raw := range body.DTCCodes {
			code, err := NormalizeDTCCode(raw)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Arıza kodu formatı geçersiz: "+raw)
			}
			var entry models.DTCCode
			if err := database.DB.First(&entry, "code = ?", code).Error; err == nil {
				known = append(known, entry)
			} else {
				unknown = append(unknown, code)
			}
		}

		// Ayarlardan model geçersiz kılma (boşsa config varsayılanı)
		var modelOverride string
		var setting models.AppSetting
		if err := database.DB.First(&setting, "key = ?", "ai_model").Error; err == nil {
			modelOverride = setting.Value
		}

		prompt := buildPrompt(brand, model, year, strings.TrimSpace(body.Complaint), known, unknown)

		suggestion, err := ai.Suggest(c.UserContext(), modelOverride, prompt)
		if err != nil {
			log.Printf("AI teşhis çağrısı başarısız: %v", err)
			return fiber.NewError(fiber.StatusBadGateway, "AI servisine ulaşılamadı, daha sonra tekrar deneyin")
		}

		codes := make([]DTCCodeResponse, 0, len(known))
		for i := range known {
			codes = append(codes, toDTCResponse(&known[i]))
		}

		return c.JSON(DiagnosisResponse{
			Suggestion: suggestion,
			Codes:      codes,
			Unknown:    unknown,
		})
	}
}
