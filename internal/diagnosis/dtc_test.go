package diagnosis

import (
	"testing"

	"servis-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDTCCode(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"P0301", "P0301", false},
		{" p0301 ", "P0301", false},
		{"u0121", "U0121", false},
		{"b0100", "B0100", false},
		{"X0301", "", true},
		{"P301", "", true},
		{"P03011", "", true},
		{"", "", true},
		{"P0A01", "", true},
	}

	for _, tt := range tests {
		got, err := NormalizeDTCCode(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "girdi: %q", tt.in)
			continue
		}
		require.NoError(t, err, "girdi: %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseSeverity(t *testing.T) {
	assert.Equal(t, "dusuk", parseSeverity("Düşük"))
	assert.Equal(t, "orta", parseSeverity(" orta "))
	assert.Equal(t, "yuksek", parseSeverity("HIGH"))
	assert.Equal(t, "", parseSeverity("bilinmiyor"))
}

func TestBuildPrompt(t *testing.T) {
	codes := []models.DTCCode{
		{Code: "P0301", Description: "1. silindir ateşleme hatası"},
	}

	prompt := buildPrompt("Renault", "Clio", 2018, "Rölantide titreme var", codes, []string{"P0420"})

	assert.Contains(t, prompt, "Renault Clio (2018)")
	assert.Contains(t, prompt, "Rölantide titreme var")
	assert.Contains(t, prompt, "P0301: 1. silindir ateşleme hatası")
	assert.Contains(t, prompt, "P0420 (sözlükte yok)")

	// Araç bilgisi yoksa istem yine de kurulur
	prompt = buildPrompt("", "", 0, "Fren sesi", nil, nil)
	assert.Contains(t, prompt, "bilinmiyor")
	assert.NotContains(t, prompt, "arıza kodları")
}
