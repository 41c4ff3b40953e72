package diagnosis

import (
	"fmt"
	"regexp"
	"strings"
)

// OBD-II kod formatı: P0301, C1234, B0100, U0121
var dtcCodePattern = regexp.MustCompile(`^[PBCU][0-9]{4}$`)

// NormalizeDTCCode: kullanıcı girdisini standart kod formatına çevirir
// ("p0301 " -> "P0301"); format tutmazsa hata döner.
func NormalizeDTCCode(s string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	if !dtcCodePattern.MatchString(code) {
		return "", fmt.Errorf("geçersiz arıza kodu: %s", s)
	}
	return code, nil
}

// parseSeverity: içe aktarma dosyasındaki serbest metni bilinen değerlere indirger
func parseSeverity(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dusuk", "düşük", "low":
		return "dusuk"
	case "orta", "medium":
		return "orta"
	case "yuksek", "yüksek", "high":
		return "yuksek"
	default:
		return ""
	}
}
