package database

import "sync"

// TileType is an overland terrain classification
type TileType struct {
	ID          string `json:"id" yaml:"id"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// MovementRateRule decides the overland rate for units matching it. Rules are
// evaluated in the order they appear; the first match wins. An empty
// UnitSkillID or TileTypeID matches anything. A nil DoubleMovement means the
// matching units cannot enter the tile type.
type MovementRateRule struct {
	UnitSkillID    string `json:"unit_skill_id,omitempty" yaml:"unit_skill_id,omitempty"`
	TileTypeID     string `json:"tile_type_id,omitempty" yaml:"tile_type_id,omitempty"`
	DoubleMovement *int   `json:"double_movement,omitempty" yaml:"double_movement,omitempty"`
}

// CombatTileType is a tile type that can appear in any layer of a combat tile.
// DoubleMovement is nil when the tile type has no movement cost of its own,
// which lets lower layers decide.
type CombatTileType struct {
	ID             string `json:"id" yaml:"id"`
	Description    string `json:"description,omitempty" yaml:"description,omitempty"`
	DoubleMovement *int   `json:"double_movement,omitempty" yaml:"double_movement,omitempty"`
	BlocksMovement bool   `json:"blocks_movement,omitempty" yaml:"blocks_movement,omitempty"`
}

// BorderBlocking is the blocking category of a combat tile border
type BorderBlocking string

const (
	BorderDoesNotBlock         BorderBlocking = "no"
	BorderCannotCrossSpecified BorderBlocking = "cannot_cross_specified_borders"
	BorderWholeTileImpassable  BorderBlocking = "whole_tile_impassable"
)

// Valid reports whether b is a known category
func (b BorderBlocking) Valid() bool {
	switch b {
	case BorderDoesNotBlock, BorderCannotCrossSpecified, BorderWholeTileImpassable:
		return true
	}
	return false
}

// CombatTileBorder is a wall, fence or other edge feature on combat tiles
type CombatTileBorder struct {
	ID             string         `json:"id" yaml:"id"`
	Description    string         `json:"description,omitempty" yaml:"description,omitempty"`
	BlocksMovement BorderBlocking `json:"blocks_movement" yaml:"blocks_movement"`
}

// UnitType classifies unit definitions (normal, hero, summoned...)
type UnitType struct {
	ID          string `json:"id" yaml:"id"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// UnitDefinition is the static description of a kind of unit
type UnitDefinition struct {
	ID                string   `json:"id" yaml:"id"`
	UnitTypeID        string   `json:"unit_type_id" yaml:"unit_type_id"`
	Description       string   `json:"description,omitempty" yaml:"description,omitempty"`
	Skills            []string `json:"skills,omitempty" yaml:"skills,omitempty"`
	TransportCapacity int      `json:"transport_capacity,omitempty" yaml:"transport_capacity,omitempty"`
}

// UnitSkill names a skill; skills flagged StackWide grant their movement
// benefits to every unit moving in the same stack.
type UnitSkill struct {
	ID          string `json:"id" yaml:"id"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	StackWide   bool   `json:"stack_wide,omitempty" yaml:"stack_wide,omitempty"`
}

// WardSpell is a spell that keeps stacks out of the location it is cast on.
// HostileWhen is an expression deciding whether the ward applies to a moving
// stack; empty means it applies to every stack not owned by the caster.
type WardSpell struct {
	ID          string `json:"id" yaml:"id"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	HostileWhen string `json:"hostile_when,omitempty" yaml:"hostile_when,omitempty"`
}

// Database is the full set of reference data for one ruleset
type Database struct {
	TileTypes         []TileType         `json:"tile_types" yaml:"tile_types"`
	MovementRateRules []MovementRateRule `json:"movement_rate_rules" yaml:"movement_rate_rules"`
	CombatTileTypes   []CombatTileType   `json:"combat_tile_types" yaml:"combat_tile_types"`
	CombatTileBorders []CombatTileBorder `json:"combat_tile_borders" yaml:"combat_tile_borders"`
	UnitTypes         []UnitType         `json:"unit_types" yaml:"unit_types"`
	Units             []UnitDefinition   `json:"units" yaml:"units"`
	UnitSkills        []UnitSkill        `json:"unit_skills" yaml:"unit_skills"`
	WardSpells        []WardSpell        `json:"ward_spells" yaml:"ward_spells"`

	once  sync.Once
	index *index
}

type index struct {
	tileTypes       map[string]*TileType
	combatTileTypes map[string]*CombatTileType
	borders         map[string]*CombatTileBorder
	unitTypes       map[string]*UnitType
	units           map[string]*UnitDefinition
	skills          map[string]*UnitSkill
	wards           map[string]*WardSpell
}
