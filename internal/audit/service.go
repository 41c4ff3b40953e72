package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"servis-backend/internal/database"
	"servis-backend/internal/models"
)

type LogOptions struct {
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

func WriteLog(opts LogOptions) error {
	// PostgreSQL jsonb için boş string yerine "null" JSON string'i kullanmalıyız
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	log := models.AuditLog{
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
		Undone:      false,
		IsUndone:    false,
	}

	if err := database.DB.Create(&log).Error; err != nil {
		return fmt.Errorf("audit log kaydedilemedi: %w", err)
	}

	return nil
}

// UndoLog - Bir audit log'u geri al
func UndoLog(logID uint, userID uint, userName string) error {
	var log models.AuditLog
	if err := database.DB.First(&log, "id = ?", logID).Error; err != nil {
		return fmt.Errorf("log bulunamadı: %w", err)
	}

	if log.IsUndone {
		return fmt.Errorf("bu işlem zaten geri alınmış")
	}

	switch log.Action {
	case models.AuditActionCreate:
		// Create ise entity'yi sil
		if err := deleteEntity(log.EntityType, log.EntityID); err != nil {
			return fmt.Errorf("entity silinemedi: %w", err)
		}

	case models.AuditActionUpdate:
		// Update ise önceki haline geri döndür
		if err := restoreEntity(log.EntityType, log.EntityID, log.BeforeData); err != nil {
			return fmt.Errorf("entity geri yüklenemedi: %w", err)
		}

	case models.AuditActionDelete:
		// Delete ise entity'yi geri oluştur
		if err := recreateEntity(log.EntityType, log.AfterData); err != nil {
			return fmt.Errorf("entity geri oluşturulamadı: %w", err)
		}

	default:
		return fmt.Errorf("bu işlem türü geri alınamaz")
	}

	now := time.Now()
	log.IsUndone = true
	log.UndoneBy = &userID
	log.UndoneAt = &now

	if err := database.DB.Save(&log).Error; err != nil {
		return fmt.Errorf("log güncellenemedi: %w", err)
	}

	undoLog := models.AuditLog{
		UserID:      userID,
		UserName:    userName,
		EntityType:  log.EntityType,
		EntityID:    log.EntityID,
		Action:      models.AuditActionUndo,
		Description: fmt.Sprintf("Geri alındı: %s", log.Description),
		BeforeData:  log.AfterData,
		AfterData:   log.BeforeData,
		Undone:      true,
		IsUndone:    false,
	}

	if err := database.DB.Create(&undoLog).Error; err != nil {
		return fmt.Errorf("undo log kaydedilemedi: %w", err)
	}

	return nil
}

func deleteEntity(entityType string, entityID uint) error {
	switch entityType {
	case "vehicle":
		// Araç silinince kayıtları da gider (FK cascade)
		return database.DB.Delete(&models.Vehicle{}, "id = ?", entityID).Error
	case "service_record":
		return database.DB.Delete(&models.ServiceRecord{}, "id = ?", entityID).Error
	case "dtc_code":
		return database.DB.Delete(&models.DTCCode{}, "id = ?", entityID).Error
	default:
		return fmt.Errorf("bilinmeyen entity tipi: %s", entityType)
	}
}

func recreateEntity(entityType string, dataJSON string) error {
	switch entityType {
	case "vehicle":
		var vehicle models.Vehicle
		if err := json.Unmarshal([]byte(dataJSON), &vehicle); err != nil {
			return err
		}
		vehicle.ID = 0 // Yeni entity oluştur
		vehicle.Records = nil
		return database.DB.Create(&vehicle).Error

	case "service_record":
		var record models.ServiceRecord
		if err := json.Unmarshal([]byte(dataJSON), &record); err != nil {
			return err
		}
		record.ID = 0
		return database.DB.Create(&record).Error

	case "dtc_code":
		var code models.DTCCode
		if err := json.Unmarshal([]byte(dataJSON), &code); err != nil {
			return err
		}
		code.ID = 0
		return database.DB.Create(&code).Error

	default:
		return fmt.Errorf("bilinmeyen entity tipi: %s", entityType)
	}
}

func restoreEntity(entityType string, entityID uint, dataJSON string) error {
	switch entityType {
	case "vehicle":
		var vehicle models.Vehicle
		if err := json.Unmarshal([]byte(dataJSON), &vehicle); err != nil {
			return err
		}
		// Status ve teslim tarihi türetilmiş alanlardır, undo onları yazmaz;
		// bir sonraki toplu hesaplama doğru değeri üretir
		return database.DB.Model(&models.Vehicle{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"plate":          vehicle.Plate,
			"brand":          vehicle.Brand,
			"model":          vehicle.Model,
			"year":           vehicle.Year,
			"customer_name":  vehicle.CustomerName,
			"customer_phone": vehicle.CustomerPhone,
			"km":             vehicle.Km,
			"complaint_note": vehicle.ComplaintNote,
			"slot_number":    vehicle.SlotNumber,
		}).Error

	case "service_record":
		var record models.ServiceRecord
		if err := json.Unmarshal([]byte(dataJSON), &record); err != nil {
			return err
		}
		return database.DB.Model(&models.ServiceRecord{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"service_date":               record.ServiceDate,
			"record_status":              record.RecordStatus,
			"complaint":                  record.Complaint,
			"work_done":                  record.WorkDone,
			"technician":                 record.Technician,
			"estimated_duration_minutes": record.EstimatedDurationMinutes,
			"parts_cost":                 record.PartsCost,
			"labor_cost":                 record.LaborCost,
		}).Error

	case "dtc_code":
		var code models.DTCCode
		if err := json.Unmarshal([]byte(dataJSON), &code); err != nil {
			return err
		}
		return database.DB.Model(&models.DTCCode{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"code":        code.Code,
			"description": code.Description,
			"category":    code.Category,
			"severity":    code.Severity,
		}).Error

	default:
		return fmt.Errorf("bilinmeyen entity tipi: %s", entityType)
	}
}
