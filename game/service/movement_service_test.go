package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/realm-movement/game/combat"
	"github.com/wricardo/realm-movement/game/config"
	"github.com/wricardo/realm-movement/game/engine"
	"github.com/wricardo/realm-movement/game/movement"
	"github.com/wricardo/realm-movement/game/service"
	"github.com/wricardo/realm-movement/game/topology"
)

const testRuleset = `{
  "name": "test",
  "tile_types": [{"id": "TT_GRASS"}, {"id": "TT_HILLS"}, {"id": "TT_OCEAN"}],
  "movement_rate_rules": [
    {"unit_skill_id": "US_SAILING", "tile_type_id": "TT_OCEAN", "double_movement": 2},
    {"unit_skill_id": "US_SAILING"},
    {"unit_skill_id": "US_PATHFINDING", "double_movement": 1},
    {"tile_type_id": "TT_GRASS", "double_movement": 2},
    {"tile_type_id": "TT_HILLS", "double_movement": 6},
    {"tile_type_id": "TT_OCEAN"}
  ],
  "combat_tile_types": [
    {"id": "CTL_GRASS", "double_movement": 2},
    {"id": "CTR_ROAD", "double_movement": 1},
    {"id": "CTB_HOUSE", "blocks_movement": true}
  ],
  "combat_tile_borders": [
    {"id": "CTB_STONE_WALL", "blocks_movement": "cannot_cross_specified_borders"}
  ],
  "unit_types": [{"id": "N"}],
  "unit_skills": [{"id": "US_SAILING"}, {"id": "US_PATHFINDING", "stack_wide": true}],
  "units": [
    {"id": "UN_SPEARMEN", "unit_type_id": "N"},
    {"id": "UN_RANGERS", "unit_type_id": "N", "skills": ["US_PATHFINDING"]},
    {"id": "UN_TRIREME", "unit_type_id": "N", "skills": ["US_SAILING"], "transport_capacity": 2}
  ],
  "ward_spells": [{"id": "SP_SPELL_WARD"}]
}`

// MockRulesetManager implements service.RulesetManager for testing
type MockRulesetManager struct {
	rulesets map[string]*config.Ruleset
	saved    map[string]*config.Ruleset
}

func NewMockRulesetManager(t *testing.T) *MockRulesetManager {
	t.Helper()
	r, err := config.Decode([]byte(testRuleset), ".json")
	require.NoError(t, err)
	r.ApplyDefaults()
	require.NoError(t, r.Validate())

	return &MockRulesetManager{
		rulesets: map[string]*config.Ruleset{"test": r},
		saved:    make(map[string]*config.Ruleset),
	}
}

func (m *MockRulesetManager) LoadRuleset(name string) (*config.Ruleset, error) {
	r, ok := m.rulesets[name]
	if !ok {
		return nil, config.ErrRulesetNotFound
	}
	return r, nil
}

func (m *MockRulesetManager) ListRulesets() ([]*config.RulesetInfo, error) {
	var infos []*config.RulesetInfo
	for name, r := range m.rulesets {
		infos = append(infos, r.Info(name+".json"))
	}
	return infos, nil
}

func (m *MockRulesetManager) GetDefault() *config.Ruleset {
	return m.rulesets["test"]
}

func (m *MockRulesetManager) SaveRuleset(name string, r *config.Ruleset) error {
	if err := r.Validate(); err != nil {
		return errors.Join(config.ErrInvalidRuleset, err)
	}
	m.saved[name] = r
	return nil
}

func newTestService(t *testing.T) (service.MovementService, *MockRulesetManager) {
	t.Helper()
	m := NewMockRulesetManager(t)
	return service.NewMovementService(m, nil), m
}

func rowMap(width int) topology.CoordinateSystem {
	return topology.CoordinateSystem{Type: topology.Square, Width: width, Height: 1, Depth: 1}
}

func stack(owner int, unitIDs ...string) engine.Stack {
	s := engine.Stack{OwnerID: owner}
	for i, id := range unitIDs {
		s.Units = append(s.Units, engine.Unit{ID: i + 1, UnitID: id, OwnerID: owner})
	}
	return s
}

func TestListAndGetRulesets(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	infos, err := svc.ListRulesets(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "test", infos[0].RulesetID)

	r, err := svc.GetRuleset(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "test", r.Name)

	_, err = svc.GetRuleset(ctx, "nope")
	assert.True(t, service.IsNotFound(err))
}

func TestSaveRuleset(t *testing.T) {
	svc, m := newTestService(t)
	ctx := context.Background()

	err := svc.SaveRuleset(ctx, "copy", m.rulesets["test"])
	require.NoError(t, err)
	assert.Contains(t, m.saved, "copy")

	assert.True(t, service.IsBadRequest(svc.SaveRuleset(ctx, "nil", nil)))
	assert.True(t, service.IsBadRequest(svc.SaveRuleset(ctx, "empty", &config.Ruleset{Name: "empty"})))
}

func TestOverlandCostMatrix(t *testing.T) {
	svc, _ := newTestService(t)

	resp, err := svc.OverlandCostMatrix(context.Background(), "test", &service.CostMatrixRequest{
		Map:               rowMap(5),
		Stack:             stack(1, "UN_SPEARMEN", "UN_SPEARMEN"),
		Terrain:           [][][]string{{{"TT_GRASS", "", "TT_HILLS", "TT_OCEAN", "TT_OCEAN"}}},
		TransportCapacity: [][][]int{{{0, 0, 0, 2, 1}}},
		ActiveWards: []engine.ActiveWard{
			{SpellID: "SP_SPELL_WARD", CastingPlayerID: 2, Location: topology.Coords{X: 2}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "test", resp.Ruleset)
	assert.Equal(t, [][][]movement.DoubleMovement{{{2, -1, -1, 2, -1}}}, resp.Matrix)
	assert.Equal(t, movement.DoubleMovement(6), resp.Rates["TT_HILLS"])
	assert.Equal(t, 5, resp.Stats.CellsEvaluated)
	assert.Equal(t, 1, resp.Stats.WardRejections)
	assert.Equal(t, 1, resp.Stats.Embarkations)
}

func TestOverlandCostMatrix_StackWideSkills(t *testing.T) {
	svc, _ := newTestService(t)

	resp, err := svc.OverlandCostMatrix(context.Background(), "", &service.CostMatrixRequest{
		Map:     rowMap(2),
		Stack:   stack(1, "UN_SPEARMEN", "UN_RANGERS"),
		Terrain: [][][]string{{{"TT_GRASS", "TT_HILLS"}}},
	})
	require.NoError(t, err)
	assert.Equal(t, [][][]movement.DoubleMovement{{{1, 1}}}, resp.Matrix)
}

func TestOverlandCostMatrix_PlacedUnits(t *testing.T) {
	svc, _ := newTestService(t)

	resp, err := svc.OverlandCostMatrix(context.Background(), "test", &service.CostMatrixRequest{
		Map:     rowMap(3),
		Stack:   stack(1, "UN_SPEARMEN", "UN_SPEARMEN"),
		Terrain: [][][]string{{{"TT_GRASS", "TT_OCEAN", "TT_OCEAN"}}},
		PlacedUnits: []engine.PlacedUnit{
			{Unit: engine.Unit{ID: 10, UnitID: "UN_TRIREME", OwnerID: 1}, Location: topology.Coords{X: 1}},
			{Unit: engine.Unit{ID: 11, UnitID: "UN_TRIREME", OwnerID: 2}, Location: topology.Coords{X: 2}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, [][][]movement.DoubleMovement{{{2, 2, -1}}}, resp.Matrix)
}

func TestOverlandCostMatrix_RememberedTerrain(t *testing.T) {
	svc, m := newTestService(t)
	m.rulesets["test"].FogTileTypeID = "TT_HILLS"
	ctx := context.Background()

	req := &service.CostMatrixRequest{
		Map:     rowMap(3),
		Stack:   stack(1, "UN_SPEARMEN"),
		Terrain: [][][]string{{{"TT_GRASS", "", "TT_OCEAN"}}},
	}

	resp, err := svc.OverlandCostMatrix(ctx, "test", req)
	require.NoError(t, err)
	assert.Equal(t, [][][]movement.DoubleMovement{{{2, -1, -1}}}, resp.Matrix)
	assert.Equal(t, 1, resp.Stats.UnknownTerrain)

	// unexplored cells take the fog tile type's rate
	req.Resolve = "remembered"
	resp, err = svc.OverlandCostMatrix(ctx, "test", req)
	require.NoError(t, err)
	assert.Equal(t, [][][]movement.DoubleMovement{{{2, 6, -1}}}, resp.Matrix)
	assert.Equal(t, 0, resp.Stats.UnknownTerrain)
}

func TestOverlandCostMatrix_Errors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		rs    string
		req   *service.CostMatrixRequest
		check func(error) bool
	}{
		{"nil request", "test", nil, service.IsBadRequest},
		{"unknown ruleset", "nope", &service.CostMatrixRequest{}, service.IsNotFound},
		{"bad map", "test", &service.CostMatrixRequest{Map: topology.CoordinateSystem{Type: "cube"}}, service.IsBadRequest},
		{"terrain shape", "test", &service.CostMatrixRequest{
			Map: rowMap(3), Stack: stack(1, "UN_SPEARMEN"), Terrain: [][][]string{{{"TT_GRASS"}}},
		}, service.IsBadRequest},
		{"transport shape", "test", &service.CostMatrixRequest{
			Map: rowMap(1), Stack: stack(1, "UN_SPEARMEN"), Terrain: [][][]string{{{"TT_GRASS"}}},
			TransportCapacity: [][][]int{{{1, 2}}},
		}, service.IsBadRequest},
		{"empty stack", "test", &service.CostMatrixRequest{
			Map: rowMap(1), Terrain: [][][]string{{{"TT_GRASS"}}},
		}, service.IsBadRequest},
		{"unknown tile type", "test", &service.CostMatrixRequest{
			Map: rowMap(1), Stack: stack(1, "UN_SPEARMEN"), Terrain: [][][]string{{{"TT_LAVA"}}},
		}, service.IsDataIntegrity},
		{"bad resolve mode", "test", &service.CostMatrixRequest{
			Map: rowMap(1), Stack: stack(1, "UN_SPEARMEN"), Terrain: [][][]string{{{"TT_GRASS"}}},
			Resolve: "guessed",
		}, service.IsBadRequest},
		{"unknown unit", "test", &service.CostMatrixRequest{
			Map: rowMap(1), Stack: stack(1, "UN_DRAGON"), Terrain: [][][]string{{{"TT_GRASS"}}},
		}, service.IsDataIntegrity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.OverlandCostMatrix(ctx, tt.rs, tt.req)
			require.Error(t, err)
			assert.True(t, tt.check(err), err.Error())
		})
	}
}

func TestCombatQueries(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	grass := combat.Tile{Layers: []combat.Layer{{Kind: combat.LayerTerrain, TileTypeID: "CTL_GRASS"}}}
	walled := grass
	walled.BorderIDs = []string{"CTB_STONE_WALL"}
	walled.BorderDirections = "3"
	road := combat.Tile{Layers: []combat.Layer{
		{Kind: combat.LayerRoad, TileTypeID: "CTR_ROAD"},
		{Kind: combat.LayerTerrain, TileTypeID: "CTL_GRASS"},
	}}

	cost, err := svc.CombatCostToEnter(ctx, "test", &service.CostToEnterRequest{Tile: road})
	require.NoError(t, err)
	assert.Equal(t, movement.DoubleMovement(1), cost.Cost)
	assert.True(t, cost.Enterable)
	assert.Equal(t, "½", cost.Display)

	cm := service.CombatMap{Type: topology.Square, Tiles: [][]combat.Tile{{walled, road, grass}}}

	cross, err := svc.CombatCanCross(ctx, "test", &service.CanCrossRequest{Map: cm, X: 0, Y: 0, Direction: 3})
	require.NoError(t, err)
	assert.False(t, cross.CanCross)

	cross, err = svc.CombatCanCross(ctx, "test", &service.CanCrossRequest{Map: cm, X: 1, Y: 0, Direction: 3})
	require.NoError(t, err)
	assert.True(t, cross.CanCross)

	step, err := svc.CombatMoveCost(ctx, "test", &service.MoveCostRequest{Map: cm, X: 2, Y: 0, Direction: 7})
	require.NoError(t, err)
	assert.Equal(t, topology.Coords{X: 1}, step.To)
	assert.Equal(t, movement.DoubleMovement(1), step.Cost)

	_, err = svc.CombatCanCross(ctx, "test", &service.CanCrossRequest{Map: cm, X: 0, Y: 0, Direction: 9})
	assert.True(t, service.IsBadRequest(err))

	_, err = svc.CombatCanCross(ctx, "test", &service.CanCrossRequest{Map: service.CombatMap{Type: topology.Square}})
	assert.True(t, service.IsBadRequest(err))

	_, err = svc.CombatCostToEnter(ctx, "test", &service.CostToEnterRequest{
		Tile: combat.Tile{Layers: []combat.Layer{{Kind: combat.LayerTerrain, TileTypeID: "CTL_LAVA"}}},
	})
	assert.True(t, service.IsDataIntegrity(err))
}

func TestCastingRangePenalty(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	world := topology.CoordinateSystem{Type: topology.Square, Width: 60, Height: 40, Depth: 2, WrapsLeftToRight: true}

	resp, err := svc.CastingRangePenalty(ctx, "test", &service.CastingPenaltyRequest{
		Map:      world,
		Combat:   topology.Coords{X: 10, Y: 10},
		Fortress: &topology.Coords{X: 22, Y: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, resp.Penalty)
	assert.Equal(t, 2.0, resp.Multiplier)

	resp, err = svc.CastingRangePenalty(ctx, "test", &service.CastingPenaltyRequest{Map: world, Combat: topology.Coords{X: 10, Y: 10}})
	require.NoError(t, err)
	assert.Equal(t, 6, resp.Penalty)

	_, err = svc.CastingRangePenalty(ctx, "test", &service.CastingPenaltyRequest{})
	assert.True(t, service.IsBadRequest(err))
}
