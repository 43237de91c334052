package engine

import "fmt"

// Default content-tunable values
const (
	DefaultEmbarkDoubleMovement = 2
	DefaultMaxUnitsPerLocation  = 9

	MaxEmbarkDoubleMovement = 100
	MaxUnitsPerLocationCap  = 100
)

// Settings are the overland movement values a ruleset may tune
type Settings struct {
	EmbarkDoubleMovement int `json:"embark_double_movement" yaml:"embark_double_movement"`
	MaxUnitsPerLocation  int `json:"max_units_per_location" yaml:"max_units_per_location"`
}

// DefaultSettings returns one full movement point to embark and nine units per location
func DefaultSettings() Settings {
	return Settings{
		EmbarkDoubleMovement: DefaultEmbarkDoubleMovement,
		MaxUnitsPerLocation:  DefaultMaxUnitsPerLocation,
	}
}

// WithDefaults fills zero fields from DefaultSettings
func (s Settings) WithDefaults() Settings {
	d := DefaultSettings()
	if s.EmbarkDoubleMovement == 0 {
		s.EmbarkDoubleMovement = d.EmbarkDoubleMovement
	}
	if s.MaxUnitsPerLocation == 0 {
		s.MaxUnitsPerLocation = d.MaxUnitsPerLocation
	}
	return s
}

// ValidateSettings checks settings for usable values
func ValidateSettings(s Settings) error {
	if s.EmbarkDoubleMovement < 0 || s.EmbarkDoubleMovement > MaxEmbarkDoubleMovement {
		return fmt.Errorf("settings validation: embark_double_movement must be between 0 and %d, got %d",
			MaxEmbarkDoubleMovement, s.EmbarkDoubleMovement)
	}
	if s.MaxUnitsPerLocation < 1 || s.MaxUnitsPerLocation > MaxUnitsPerLocationCap {
		return fmt.Errorf("settings validation: max_units_per_location must be between 1 and %d, got %d",
			MaxUnitsPerLocationCap, s.MaxUnitsPerLocation)
	}
	return nil
}
