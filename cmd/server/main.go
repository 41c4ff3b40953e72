package main

import (
	"log"
	"strings"

	"servis-backend/internal/admin"
	"servis-backend/internal/audit"
	"servis-backend/internal/auth"
	"servis-backend/internal/backup"
	"servis-backend/internal/config"
	"servis-backend/internal/database"
	"servis-backend/internal/diagnosis"
	"servis-backend/internal/models"
	"servis-backend/internal/servicerecord"
	"servis-backend/internal/vehicle"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	aiClient := diagnosis.NewAIClient(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Beklenmeyen sunucu hatası",
			})
		},
	})

	// CORS origins'i virgülle ayrılmış string'den array'e çevir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// QR etiketi üzerinden müşteriye açık durum sorgusu
	api.Get("/public/qr/:token", vehicle.QRLookupHandler())

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Araç kabul & takip
	protected.Post("/vehicles", vehicle.CreateVehicleHandler())
	protected.Get("/vehicles", vehicle.ListVehiclesHandler())
	protected.Get("/vehicles/:id", vehicle.GetVehicleHandler())
	protected.Put("/vehicles/:id", vehicle.UpdateVehicleHandler())
	protected.Delete("/vehicles/:id", vehicle.DeleteVehicleHandler())
	protected.Put("/vehicles/:id/slot", vehicle.AssignSlotHandler())

	// Servis kayıtları
	protected.Post("/vehicles/:id/records", servicerecord.CreateRecordHandler())
	protected.Get("/vehicles/:id/records", servicerecord.ListRecordsHandler())
	protected.Put("/records/:id", servicerecord.UpdateRecordHandler())
	protected.Put("/records/:id/status", servicerecord.UpdateRecordStatusHandler())
	protected.Delete("/records/:id", servicerecord.DeleteRecordHandler())

	// Arıza kodu sözlüğü & AI teşhis
	protected.Get("/dtc-codes", diagnosis.ListDTCCodesHandler())
	protected.Post("/diagnosis", diagnosis.DiagnoseHandler(aiClient))

	// Audit logs
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())

	// Admin routes
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))

	// Kullanıcı yönetimi
	adminRoutes.Post("/users", admin.CreateTechnicianHandler())
	adminRoutes.Get("/users", admin.ListUsersHandler())
	adminRoutes.Delete("/users/:id", admin.DeleteUserHandler())

	// Uygulama ayarları
	adminRoutes.Get("/settings", admin.ListSettingsHandler())
	adminRoutes.Put("/settings/:key", admin.UpdateSettingHandler())

	// Arıza kodu içe aktarma
	adminRoutes.Post("/dtc-codes/import", diagnosis.ImportDTCCodesHandler())

	// Yedekleme
	adminRoutes.Get("/backup/export", backup.ExportHandler())
	adminRoutes.Post("/backup/import", backup.ImportHandler())

	// Geri alma sadece admin
	adminRoutes.Post("/audit-logs/:id/undo", audit.UndoAuditLogHandler())

	log.Println("Server çalışıyor port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
