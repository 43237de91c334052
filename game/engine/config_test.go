package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, 2, s.EmbarkDoubleMovement)
	assert.Equal(t, 9, s.MaxUnitsPerLocation)
	assert.NoError(t, ValidateSettings(s))
}

func TestSettings_WithDefaults(t *testing.T) {
	assert.Equal(t, DefaultSettings(), Settings{}.WithDefaults())

	s := Settings{EmbarkDoubleMovement: 4}.WithDefaults()
	assert.Equal(t, 4, s.EmbarkDoubleMovement)
	assert.Equal(t, DefaultMaxUnitsPerLocation, s.MaxUnitsPerLocation)
}

func TestValidateSettings(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		errMsg   string
	}{
		{"zero embark allowed", Settings{EmbarkDoubleMovement: 0, MaxUnitsPerLocation: 9}, ""},
		{"negative embark", Settings{EmbarkDoubleMovement: -1, MaxUnitsPerLocation: 9}, "embark_double_movement"},
		{"huge embark", Settings{EmbarkDoubleMovement: 101, MaxUnitsPerLocation: 9}, "embark_double_movement"},
		{"no units", Settings{EmbarkDoubleMovement: 2, MaxUnitsPerLocation: 0}, "max_units_per_location"},
		{"too many units", Settings{EmbarkDoubleMovement: 2, MaxUnitsPerLocation: 101}, "max_units_per_location"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSettings(tt.settings)
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.True(t, strings.Contains(err.Error(), tt.errMsg), err.Error())
			}
		})
	}
}
