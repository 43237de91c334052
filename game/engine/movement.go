package engine

import (
	"fmt"

	"github.com/wricardo/realm-movement/game/database"
	"github.com/wricardo/realm-movement/game/movement"
)

// MovementCapability answers how much it costs one unit to enter a tile type,
// returning movement.Impassable when the unit cannot enter it at all. Lookup
// failures for unknown units, unit types or tile types are returned as errors.
type MovementCapability interface {
	DoubleMovementToEnter(u Unit, stackSkills SkillSet, tileTypeID string) (movement.DoubleMovement, error)
}

// RuleMovement evaluates the database's ordered movement rate rules
type RuleMovement struct {
	db *database.Database
}

// NewRuleMovement creates the database-driven capability function
func NewRuleMovement(db *database.Database) *RuleMovement {
	return &RuleMovement{db: db}
}

// DoubleMovementToEnter implements MovementCapability. The first rule whose
// tile type matches and whose skill the unit holds (itself or granted by the
// stack) decides; no matching rule means the unit cannot enter.
func (m *RuleMovement) DoubleMovementToEnter(u Unit, stackSkills SkillSet, tileTypeID string) (movement.DoubleMovement, error) {
	def, err := m.db.FindUnit(u.UnitID)
	if err != nil {
		return movement.Impassable, fmt.Errorf("unit %d: %w", u.ID, err)
	}
	if _, err := m.db.FindUnitType(def.UnitTypeID); err != nil {
		return movement.Impassable, fmt.Errorf("unit %d (%s): %w", u.ID, u.UnitID, err)
	}
	if _, err := m.db.FindTileType(tileTypeID); err != nil {
		return movement.Impassable, err
	}

	has := unitSkills(u, def)
	for _, rule := range m.db.MovementRateRules {
		if rule.TileTypeID != "" && rule.TileTypeID != tileTypeID {
			continue
		}
		if rule.UnitSkillID != "" && !has(rule.UnitSkillID) && !stackSkills.Has(rule.UnitSkillID) {
			continue
		}
		return movement.FromRate(rule.DoubleMovement), nil
	}
	return movement.Impassable, nil
}

func unitSkills(u Unit, def *database.UnitDefinition) func(string) bool {
	if u.Skills != nil {
		return func(id string) bool {
			_, ok := u.Skills[id]
			return ok
		}
	}
	own := NewSkillSet(def.Skills...)
	return own.Has
}

// StackSkills collects the stack-wide skills held by any unit in the stack
func StackSkills(db *database.Database, stack Stack) (SkillSet, error) {
	skills := make(SkillSet)
	for _, u := range stack.Units {
		def, err := db.FindUnit(u.UnitID)
		if err != nil {
			return nil, fmt.Errorf("unit %d: %w", u.ID, err)
		}
		ids := def.Skills
		if u.Skills != nil {
			ids = make([]string, 0, len(u.Skills))
			for id := range u.Skills {
				ids = append(ids, id)
			}
		}
		for _, id := range ids {
			skill, err := db.FindUnitSkill(id)
			if err != nil {
				return nil, fmt.Errorf("unit %d: %w", u.ID, err)
			}
			if skill.StackWide {
				skills[id] = true
			}
		}
	}
	return skills, nil
}
