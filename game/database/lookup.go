package database

import (
	"errors"
	"fmt"
)

var (
	ErrTileTypeNotFound       = errors.New("tile type not found")
	ErrCombatTileTypeNotFound = errors.New("combat tile type not found")
	ErrBorderNotFound         = errors.New("combat tile border not found")
	ErrUnitNotFound           = errors.New("unit not found")
	ErrUnitTypeNotFound       = errors.New("unit type not found")
	ErrUnitSkillNotFound      = errors.New("unit skill not found")
	ErrWardSpellNotFound      = errors.New("ward spell not found")
)

// IsLookupFailure reports whether err is a reference to a record the database
// does not contain
func IsLookupFailure(err error) bool {
	for _, sentinel := range []error{
		ErrTileTypeNotFound, ErrCombatTileTypeNotFound, ErrBorderNotFound,
		ErrUnitNotFound, ErrUnitTypeNotFound, ErrUnitSkillNotFound, ErrWardSpellNotFound,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// idx builds the lookup maps on first use. Later duplicates win; Validate
// reports duplicates as errors.
func (db *Database) idx() *index {
	db.once.Do(func() {
		ix := &index{
			tileTypes:       make(map[string]*TileType, len(db.TileTypes)),
			combatTileTypes: make(map[string]*CombatTileType, len(db.CombatTileTypes)),
			borders:         make(map[string]*CombatTileBorder, len(db.CombatTileBorders)),
			unitTypes:       make(map[string]*UnitType, len(db.UnitTypes)),
			units:           make(map[string]*UnitDefinition, len(db.Units)),
			skills:          make(map[string]*UnitSkill, len(db.UnitSkills)),
			wards:           make(map[string]*WardSpell, len(db.WardSpells)),
		}
		for i := range db.TileTypes {
			ix.tileTypes[db.TileTypes[i].ID] = &db.TileTypes[i]
		}
		for i := range db.CombatTileTypes {
			ix.combatTileTypes[db.CombatTileTypes[i].ID] = &db.CombatTileTypes[i]
		}
		for i := range db.CombatTileBorders {
			ix.borders[db.CombatTileBorders[i].ID] = &db.CombatTileBorders[i]
		}
		for i := range db.UnitTypes {
			ix.unitTypes[db.UnitTypes[i].ID] = &db.UnitTypes[i]
		}
		for i := range db.Units {
			ix.units[db.Units[i].ID] = &db.Units[i]
		}
		for i := range db.UnitSkills {
			ix.skills[db.UnitSkills[i].ID] = &db.UnitSkills[i]
		}
		for i := range db.WardSpells {
			ix.wards[db.WardSpells[i].ID] = &db.WardSpells[i]
		}
		db.index = ix
	})
	return db.index
}

// FindTileType looks up an overland tile type
func (db *Database) FindTileType(id string) (*TileType, error) {
	if tt, ok := db.idx().tileTypes[id]; ok {
		return tt, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrTileTypeNotFound, id)
}

// FindCombatTileType looks up a combat tile type
func (db *Database) FindCombatTileType(id string) (*CombatTileType, error) {
	if ct, ok := db.idx().combatTileTypes[id]; ok {
		return ct, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrCombatTileTypeNotFound, id)
}

// FindCombatTileBorder looks up a combat tile border
func (db *Database) FindCombatTileBorder(id string) (*CombatTileBorder, error) {
	if b, ok := db.idx().borders[id]; ok {
		return b, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrBorderNotFound, id)
}

// FindUnitType looks up a unit-type classification
func (db *Database) FindUnitType(id string) (*UnitType, error) {
	if ut, ok := db.idx().unitTypes[id]; ok {
		return ut, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnitTypeNotFound, id)
}

// FindUnit looks up a unit definition
func (db *Database) FindUnit(id string) (*UnitDefinition, error) {
	if u, ok := db.idx().units[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnitNotFound, id)
}

// FindUnitSkill looks up a unit skill
func (db *Database) FindUnitSkill(id string) (*UnitSkill, error) {
	if s, ok := db.idx().skills[id]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnitSkillNotFound, id)
}

// FindWardSpell looks up a ward spell
func (db *Database) FindWardSpell(id string) (*WardSpell, error) {
	if w, ok := db.idx().wards[id]; ok {
		return w, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrWardSpellNotFound, id)
}
