package engine

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/wricardo/realm-movement/game/database"
)

// defaultHostileWhen applies a ward to everyone but its caster
const defaultHostileWhen = `Ward.CasterID != Stack.OwnerID`

// WardMatcher decides whether an active ward keeps a stack out
type WardMatcher interface {
	IsHostile(w ActiveWard, stack Stack) (bool, error)
}

// WardEnv is the environment hostile_when expressions are evaluated against
type WardEnv struct {
	Ward  WardView
	Stack StackView
}

// WardView exposes the ward being checked
type WardView struct {
	SpellID  string
	CasterID int
	X        int
	Y        int
	Plane    int
}

// StackView exposes the moving stack
type StackView struct {
	OwnerID int
	Size    int
	UnitIDs []string
	skills  SkillSet
}

// HasSkill reports whether any unit in the stack has the skill
func (s StackView) HasSkill(id string) bool {
	return s.skills.Has(id)
}

// HasUnit reports whether the stack contains a unit of the given definition
func (s StackView) HasUnit(unitID string) bool {
	for _, id := range s.UnitIDs {
		if id == unitID {
			return true
		}
	}
	return false
}

// ExprWardMatcher compiles each ward spell's hostile_when expression once and
// evaluates it per check. Safe for concurrent use.
type ExprWardMatcher struct {
	db       *database.Database
	mu       sync.Mutex
	programs map[string]*vm.Program
}

// NewExprWardMatcher creates the default ward matcher
func NewExprWardMatcher(db *database.Database) *ExprWardMatcher {
	return &ExprWardMatcher{db: db, programs: make(map[string]*vm.Program)}
}

// Compile checks every ward spell expression in the database
func (m *ExprWardMatcher) Compile() error {
	for _, w := range m.db.WardSpells {
		if _, err := m.program(w.ID); err != nil {
			return err
		}
	}
	return nil
}

func (m *ExprWardMatcher) program(spellID string) (*vm.Program, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.programs[spellID]; ok {
		return p, nil
	}
	spell, err := m.db.FindWardSpell(spellID)
	if err != nil {
		return nil, err
	}
	src := spell.HostileWhen
	if src == "" {
		src = defaultHostileWhen
	}
	p, err := expr.Compile(src, expr.Env(WardEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile hostile_when for ward %q: %w", spellID, err)
	}
	m.programs[spellID] = p
	return p, nil
}

// IsHostile implements WardMatcher
func (m *ExprWardMatcher) IsHostile(w ActiveWard, stack Stack) (bool, error) {
	p, err := m.program(w.SpellID)
	if err != nil {
		return false, err
	}
	env := WardEnv{
		Ward: WardView{
			SpellID:  w.SpellID,
			CasterID: w.CastingPlayerID,
			X:        w.Location.X,
			Y:        w.Location.Y,
			Plane:    w.Location.Plane,
		},
		Stack: m.stackView(stack),
	}
	out, err := vm.Run(p, env)
	if err != nil {
		return false, fmt.Errorf("evaluate hostile_when for ward %q: %w", w.SpellID, err)
	}
	hostile, _ := out.(bool)
	return hostile, nil
}

// stackView falls back to definition skills for units without modified skills.
// Unknown unit ids contribute no skills; the capability function reports them.
func (m *ExprWardMatcher) stackView(stack Stack) StackView {
	v := StackView{
		OwnerID: stack.OwnerID,
		Size:    stack.Size(),
		UnitIDs: make([]string, 0, len(stack.Units)),
		skills:  make(SkillSet),
	}
	for _, u := range stack.Units {
		v.UnitIDs = append(v.UnitIDs, u.UnitID)
		if u.Skills != nil {
			for id := range u.Skills {
				v.skills[id] = true
			}
			continue
		}
		if def, err := m.db.FindUnit(u.UnitID); err == nil {
			for _, id := range def.Skills {
				v.skills[id] = true
			}
		}
	}
	return v
}
