package database

import (
	"errors"
	"fmt"
)

// ErrInvalidDatabase is wrapped by every Validate failure
var ErrInvalidDatabase = errors.New("invalid database")

// Validate checks the reference data for empty or duplicate ids, unknown
// categories, negative costs and references to records that do not exist.
func (db *Database) Validate() error {
	if err := checkIDs("tile_types", len(db.TileTypes), func(i int) string { return db.TileTypes[i].ID }); err != nil {
		return err
	}
	if err := checkIDs("combat_tile_types", len(db.CombatTileTypes), func(i int) string { return db.CombatTileTypes[i].ID }); err != nil {
		return err
	}
	if err := checkIDs("combat_tile_borders", len(db.CombatTileBorders), func(i int) string { return db.CombatTileBorders[i].ID }); err != nil {
		return err
	}
	if err := checkIDs("unit_types", len(db.UnitTypes), func(i int) string { return db.UnitTypes[i].ID }); err != nil {
		return err
	}
	if err := checkIDs("units", len(db.Units), func(i int) string { return db.Units[i].ID }); err != nil {
		return err
	}
	if err := checkIDs("unit_skills", len(db.UnitSkills), func(i int) string { return db.UnitSkills[i].ID }); err != nil {
		return err
	}
	if err := checkIDs("ward_spells", len(db.WardSpells), func(i int) string { return db.WardSpells[i].ID }); err != nil {
		return err
	}

	if len(db.TileTypes) == 0 {
		return fmt.Errorf("%w: at least one tile type is required", ErrInvalidDatabase)
	}

	for i, rule := range db.MovementRateRules {
		if rule.UnitSkillID != "" {
			if _, err := db.FindUnitSkill(rule.UnitSkillID); err != nil {
				return fmt.Errorf("%w: movement_rate_rules[%d]: %v", ErrInvalidDatabase, i, err)
			}
		}
		if rule.TileTypeID != "" {
			if _, err := db.FindTileType(rule.TileTypeID); err != nil {
				return fmt.Errorf("%w: movement_rate_rules[%d]: %v", ErrInvalidDatabase, i, err)
			}
		}
		if rule.DoubleMovement != nil && *rule.DoubleMovement < 0 {
			return fmt.Errorf("%w: movement_rate_rules[%d]: double_movement must not be negative, got %d",
				ErrInvalidDatabase, i, *rule.DoubleMovement)
		}
	}

	for _, ct := range db.CombatTileTypes {
		if ct.DoubleMovement != nil && *ct.DoubleMovement < 0 {
			return fmt.Errorf("%w: combat tile type %q: double_movement must not be negative, got %d",
				ErrInvalidDatabase, ct.ID, *ct.DoubleMovement)
		}
	}

	for _, b := range db.CombatTileBorders {
		if !b.BlocksMovement.Valid() {
			return fmt.Errorf("%w: combat tile border %q: unknown blocks_movement %q",
				ErrInvalidDatabase, b.ID, b.BlocksMovement)
		}
	}

	for _, u := range db.Units {
		if _, err := db.FindUnitType(u.UnitTypeID); err != nil {
			return fmt.Errorf("%w: unit %q: %v", ErrInvalidDatabase, u.ID, err)
		}
		for _, skill := range u.Skills {
			if _, err := db.FindUnitSkill(skill); err != nil {
				return fmt.Errorf("%w: unit %q: %v", ErrInvalidDatabase, u.ID, err)
			}
		}
		if u.TransportCapacity < 0 {
			return fmt.Errorf("%w: unit %q: transport_capacity must not be negative, got %d",
				ErrInvalidDatabase, u.ID, u.TransportCapacity)
		}
	}

	return nil
}

func checkIDs(section string, n int, id func(int) string) error {
	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		v := id(i)
		if v == "" {
			return fmt.Errorf("%w: %s[%d]: id is required", ErrInvalidDatabase, section, i)
		}
		if seen[v] {
			return fmt.Errorf("%w: %s: duplicate id %q", ErrInvalidDatabase, section, v)
		}
		seen[v] = true
	}
	return nil
}
