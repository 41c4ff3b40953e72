package backup

import (
	"fmt"

	"servis-backend/internal/models"
)

const payloadVersion = 1

// Payload: yedek dosyasının JSON şekli. Export bunu üretir, import bunu bekler.
type Payload struct {
	Version    int                    `json:"version"`
	ExportedAt string                 `json:"exported_at"`
	Vehicles   []models.Vehicle       `json:"vehicles"`
	Records    []models.ServiceRecord `json:"service_records"`
	DTCCodes   []models.DTCCode       `json:"dtc_codes"`
	Settings   []models.AppSetting    `json:"settings"`
}

// recordKey: servis kaydının merge eşleşmesinde kullanılan doğal anahtarı.
// Yedekler arasında ID'ler korunmadığı için eşleşme araç + gün + şikayet
// üzerinden yapılır; aynı yedek iki kez yüklendiğinde kayıtlar çoğalmaz.
func recordKey(vehicleID uint, r *models.ServiceRecord) string {
	return fmt.Sprintf("%d|%s|%s", vehicleID, r.ServiceDate.Format("2006-01-02"), r.Complaint)
}

// Validate: içe aktarmadan önce yedek dosyasının tutarlılığını kontrol eder
func (p *Payload) Validate() error {
	if p.Version != payloadVersion {
		return fmt.Errorf("desteklenmeyen yedek sürümü: %d (beklenen: %d)", p.Version, payloadVersion)
	}

	vehicleIDs := make(map[uint]bool, len(p.Vehicles))
	for i, v := range p.Vehicles {
		if v.Plate == "" {
			return fmt.Errorf("araç %d: plaka boş", i+1)
		}
		if v.ID != 0 {
			vehicleIDs[v.ID] = true
		}
	}

	for i, r := range p.Records {
		if r.VehicleID == 0 {
			return fmt.Errorf("servis kaydı %d: vehicle_id boş", i+1)
		}
		if len(vehicleIDs) > 0 && !vehicleIDs[r.VehicleID] {
			return fmt.Errorf("servis kaydı %d: bilinmeyen araç %d", i+1, r.VehicleID)
		}
	}

	for i, d := range p.DTCCodes {
		if d.Code == "" {
			return fmt.Errorf("arıza kodu %d: kod boş", i+1)
		}
	}

	for i, s := range p.Settings {
		if s.Key == "" {
			return fmt.Errorf("ayar %d: anahtar boş", i+1)
		}
	}

	return nil
}
