package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wricardo/realm-movement/game/combat"
	"github.com/wricardo/realm-movement/game/database"
	"github.com/wricardo/realm-movement/game/engine"
)

// Extensions lists the file extensions rulesets are read from, in lookup order
var Extensions = []string{".json", ".yaml", ".yml"}

// Ruleset is the reference data and tunable values for one game variant. The
// database sections sit at the top level of the file. Rulesets hold lookup
// indexes and must be passed by pointer.
type Ruleset struct {
	Name          string               `json:"name" yaml:"name"`
	Description   string               `json:"description,omitempty" yaml:"description,omitempty"`
	Settings      engine.Settings      `json:"settings" yaml:"settings"`
	CastingRange  combat.RangeSettings `json:"casting_range" yaml:"casting_range"`

	// FogTileTypeID is used for unexplored cells when a cost matrix is built
	// from remembered terrain
	FogTileTypeID string `json:"fog_tile_type_id,omitempty" yaml:"fog_tile_type_id,omitempty"`

	database.Database `yaml:",inline"`
}

// RulesetInfo summarises a ruleset for listings
type RulesetInfo struct {
	Filename        string `json:"filename"`
	RulesetID       string `json:"ruleset_id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	TileTypes       int    `json:"tile_types"`
	CombatTileTypes int    `json:"combat_tile_types"`
	Units           int    `json:"units"`
	WardSpells      int    `json:"ward_spells"`
}

// Info summarises r as stored under filename
func (r *Ruleset) Info(filename string) *RulesetInfo {
	return &RulesetInfo{
		Filename:        filename,
		RulesetID:       strings.TrimSuffix(filename, filepath.Ext(filename)),
		Name:            r.Name,
		Description:     r.Description,
		TileTypes:       len(r.TileTypes),
		CombatTileTypes: len(r.CombatTileTypes),
		Units:           len(r.Units),
		WardSpells:      len(r.WardSpells),
	}
}

// ApplyDefaults fills unset settings
func (r *Ruleset) ApplyDefaults() {
	r.Settings = r.Settings.WithDefaults()
	r.CastingRange = r.CastingRange.WithDefaults()
}

// Validate checks the settings, the reference data and every ward expression
func (r *Ruleset) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("ruleset name is required")
	}
	if err := engine.ValidateSettings(r.Settings); err != nil {
		return err
	}
	if err := r.CastingRange.Validate(); err != nil {
		return err
	}
	if err := r.Database.Validate(); err != nil {
		return err
	}
	if r.FogTileTypeID != "" {
		if _, err := r.FindTileType(r.FogTileTypeID); err != nil {
			return fmt.Errorf("fog_tile_type_id: %w", err)
		}
	}
	return engine.NewExprWardMatcher(&r.Database).Compile()
}

// Decode parses a ruleset in the format given by ext (".json", ".yaml" or ".yml")
func Decode(data []byte, ext string) (*Ruleset, error) {
	var r Ruleset
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("failed to parse ruleset: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("failed to parse ruleset: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported ruleset format %q", ext)
	}
	return &r, nil
}

// Encode renders a ruleset in the format given by ext
func Encode(r *Ruleset, ext string) ([]byte, error) {
	switch strings.ToLower(ext) {
	case ".json":
		return json.MarshalIndent(r, "", "  ")
	case ".yaml", ".yml":
		return yaml.Marshal(r)
	default:
		return nil, fmt.Errorf("unsupported ruleset format %q", ext)
	}
}

// LoadFile reads, defaults and validates a ruleset file
func LoadFile(path string) (*Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrRulesetNotFound
		}
		return nil, fmt.Errorf("failed to read ruleset file: %w", err)
	}

	r, err := Decode(data, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	r.ApplyDefaults()

	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRuleset, err)
	}
	return r, nil
}
