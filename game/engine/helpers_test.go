package engine

import (
	"sync"
	"sync/atomic"

	"github.com/wricardo/realm-movement/game/database"
	"github.com/wricardo/realm-movement/game/movement"
	"github.com/wricardo/realm-movement/game/topology"
)

func intPtr(v int) *int { return &v }

func createTestDatabase() *database.Database {
	return &database.Database{
		TileTypes: []database.TileType{
			{ID: "TT_GRASS"},
			{ID: "TT_HILLS"},
			{ID: "TT_SWAMP"},
			{ID: "TT_MOUNTAIN"},
			{ID: "TT_OCEAN"},
		},
		MovementRateRules: []database.MovementRateRule{
			{UnitSkillID: "US_FLYING", DoubleMovement: intPtr(2)},
			{UnitSkillID: "US_SAILING", TileTypeID: "TT_OCEAN", DoubleMovement: intPtr(2)},
			{UnitSkillID: "US_SAILING"},
			{UnitSkillID: "US_PATHFINDING", TileTypeID: "TT_SWAMP", DoubleMovement: intPtr(2)},
			{TileTypeID: "TT_GRASS", DoubleMovement: intPtr(2)},
			{TileTypeID: "TT_HILLS", DoubleMovement: intPtr(4)},
			{TileTypeID: "TT_SWAMP", DoubleMovement: intPtr(6)},
			{TileTypeID: "TT_MOUNTAIN"},
			{TileTypeID: "TT_OCEAN"},
		},
		UnitTypes: []database.UnitType{{ID: "N"}, {ID: "S"}},
		UnitSkills: []database.UnitSkill{
			{ID: "US_FLYING"},
			{ID: "US_SAILING"},
			{ID: "US_PATHFINDING", StackWide: true},
		},
		Units: []database.UnitDefinition{
			{ID: "UN_SPEARMEN", UnitTypeID: "N"},
			{ID: "UN_EAGLES", UnitTypeID: "S", Skills: []string{"US_FLYING"}},
			{ID: "UN_RANGERS", UnitTypeID: "N", Skills: []string{"US_PATHFINDING"}},
			{ID: "UN_TRIREME", UnitTypeID: "N", Skills: []string{"US_SAILING"}, TransportCapacity: 2},
			{ID: "UN_GHOST", UnitTypeID: "X"},
		},
		WardSpells: []database.WardSpell{
			{ID: "SP_SPELL_WARD"},
			{ID: "SP_SKY_WARD", HostileWhen: `Ward.CasterID != Stack.OwnerID && Stack.HasSkill("US_FLYING")`},
		},
	}
}

func row(width int) topology.CoordinateSystem {
	return topology.CoordinateSystem{Type: topology.Square, Width: width, Height: 1, Depth: 1}
}

func at(x int) topology.Coords {
	return topology.Coords{X: x}
}

func stackOf(owner int, unitIDs ...string) Stack {
	s := Stack{OwnerID: owner}
	for i, id := range unitIDs {
		s.Units = append(s.Units, Unit{ID: i + 1, UnitID: id, OwnerID: owner})
	}
	return s
}

func terrainRow(sys topology.CoordinateSystem, tileTypeIDs ...string) *TerrainVolume {
	v := NewTerrainVolume(sys)
	for x, id := range tileTypeIDs {
		if id != "" {
			v.Set(at(x), &TerrainData{TileTypeID: id})
		}
	}
	return v
}

// fakeCapability answers from a fixed table keyed by unit id then tile type.
// Pairs missing from the table cannot enter.
type fakeCapability struct {
	rates map[string]map[string]movement.DoubleMovement
	err   error
	calls atomic.Int64

	mu     sync.Mutex
	byTile map[string]int
}

func (f *fakeCapability) DoubleMovementToEnter(u Unit, _ SkillSet, tileTypeID string) (movement.DoubleMovement, error) {
	f.calls.Add(1)
	f.mu.Lock()
	if f.byTile == nil {
		f.byTile = make(map[string]int)
	}
	f.byTile[tileTypeID]++
	f.mu.Unlock()

	if f.err != nil {
		return movement.Impassable, f.err
	}
	if rate, ok := f.rates[u.UnitID][tileTypeID]; ok {
		return rate, nil
	}
	return movement.Impassable, nil
}

func (f *fakeCapability) callsFor(tileTypeID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byTile[tileTypeID]
}
