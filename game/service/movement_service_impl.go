package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/wricardo/realm-movement/game/combat"
	"github.com/wricardo/realm-movement/game/config"
	"github.com/wricardo/realm-movement/game/engine"
	"github.com/wricardo/realm-movement/game/topology"
)

// movementServiceImpl implements the MovementService interface
type movementServiceImpl struct {
	rulesets RulesetManager
	log      logrus.FieldLogger
}

// NewMovementService creates a new movement service instance
func NewMovementService(rulesets RulesetManager, log logrus.FieldLogger) MovementService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &movementServiceImpl{rulesets: rulesets, log: log}
}

// ruleset resolves a ruleset name, empty meaning the default
func (s *movementServiceImpl) ruleset(name string) (*config.Ruleset, error) {
	if name == "" {
		if r := s.rulesets.GetDefault(); r != nil {
			return r, nil
		}
		return nil, fmt.Errorf("%w: no default ruleset", config.ErrRulesetNotFound)
	}
	r, err := s.rulesets.LoadRuleset(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load ruleset %s: %w", name, err)
	}
	return r, nil
}

// ListRulesets returns the available rulesets
func (s *movementServiceImpl) ListRulesets(ctx context.Context) ([]*config.RulesetInfo, error) {
	return s.rulesets.ListRulesets()
}

// GetRuleset returns one ruleset
func (s *movementServiceImpl) GetRuleset(ctx context.Context, name string) (*config.Ruleset, error) {
	return s.ruleset(name)
}

// SaveRuleset validates and stores a ruleset
func (s *movementServiceImpl) SaveRuleset(ctx context.Context, name string, r *config.Ruleset) error {
	if r == nil {
		return fmt.Errorf("%w: ruleset body is required", ErrBadRequest)
	}
	return s.rulesets.SaveRuleset(name, r)
}

// OverlandCostMatrix builds the cost matrix for a stack
func (s *movementServiceImpl) OverlandCostMatrix(ctx context.Context, name string, req *CostMatrixRequest) (*CostMatrixResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request body is required", ErrBadRequest)
	}
	r, err := s.ruleset(name)
	if err != nil {
		return nil, err
	}

	b, err := engine.NewBuilder(req.Map, &r.Database, r.Settings,
		engine.WithResolver(engine.TerrainResolver{FogTileTypeID: r.FogTileTypeID}),
		engine.WithLogger(s.log.WithField("ruleset", r.Name)),
	)
	if err != nil {
		return nil, err
	}

	q, err := s.buildQuery(b, r, req)
	if err != nil {
		return nil, err
	}

	res, err := b.Build(q)
	if err != nil {
		return nil, err
	}

	resp := &CostMatrixResponse{
		Ruleset: r.Name,
		Rates:   res.Rates,
		Stats:   res.Stats,
	}
	for p := 0; p < req.Map.Depth; p++ {
		resp.Matrix = append(resp.Matrix, res.Matrix.Plane(p))
	}
	return resp, nil
}

func (s *movementServiceImpl) buildQuery(b *engine.Builder, r *config.Ruleset, req *CostMatrixRequest) (*engine.MovementQuery, error) {
	sys := b.System()

	mode, err := engine.ParseResolveMode(req.Resolve)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	terrain, err := terrainVolume(sys, req.Terrain)
	if err != nil {
		return nil, err
	}
	transport, err := intVolume(sys, "transport_capacity", req.TransportCapacity)
	if err != nil {
		return nil, err
	}
	count, err := intVolume(sys, "friendly_unit_count", req.FriendlyUnitCount)
	if err != nil {
		return nil, err
	}

	if transport == nil && count == nil && len(req.PlacedUnits) > 0 {
		transport, count, err = b.OccupancyGrids(req.Stack.OwnerID, req.PlacedUnits, terrain)
		if err != nil {
			return nil, err
		}
	}

	skills, err := engine.StackSkills(&r.Database, req.Stack)
	if err != nil {
		return nil, err
	}

	return &engine.MovementQuery{
		Stack:             req.Stack,
		StackSkills:       skills,
		Plane:             req.Plane,
		Resolve:           mode,
		Terrain:           terrain,
		TransportCapacity: transport,
		FriendlyUnitCount: count,
		SeedRates:         req.SeedRates,
		IgnoreWards:       req.IgnoreWards,
		ActiveWards:       req.ActiveWards,
	}, nil
}

// CombatCostToEnter prices one combat tile
func (s *movementServiceImpl) CombatCostToEnter(ctx context.Context, name string, req *CostToEnterRequest) (*CostToEnterResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request body is required", ErrBadRequest)
	}
	r, err := s.ruleset(name)
	if err != nil {
		return nil, err
	}

	cost, err := combat.CostToEnter(&req.Tile, &r.Database)
	if err != nil {
		return nil, err
	}
	return &CostToEnterResponse{Cost: cost, Enterable: cost.Enterable(), Display: cost.String()}, nil
}

// CombatCanCross checks one edge of a combat tile
func (s *movementServiceImpl) CombatCanCross(ctx context.Context, name string, req *CanCrossRequest) (*CanCrossResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request body is required", ErrBadRequest)
	}
	r, err := s.ruleset(name)
	if err != nil {
		return nil, err
	}
	m, err := combatMap(req.Map)
	if err != nil {
		return nil, err
	}

	ok, err := combat.CanCross(m, req.Map.Type, req.X, req.Y, req.Direction, &r.Database)
	if err != nil {
		return nil, err
	}
	return &CanCrossResponse{CanCross: ok}, nil
}

// CombatMoveCost prices one step on a combat map
func (s *movementServiceImpl) CombatMoveCost(ctx context.Context, name string, req *MoveCostRequest) (*MoveCostResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request body is required", ErrBadRequest)
	}
	r, err := s.ruleset(name)
	if err != nil {
		return nil, err
	}
	m, err := combatMap(req.Map)
	if err != nil {
		return nil, err
	}

	step, err := combat.MoveCost(m, req.X, req.Y, req.Direction, &r.Database)
	if err != nil {
		return nil, err
	}
	return &MoveCostResponse{
		From:      topology.Coords{X: req.X, Y: req.Y},
		To:        step.To,
		Cost:      step.Cost,
		Enterable: step.Cost.Enterable(),
	}, nil
}

// CastingRangePenalty prices a combat spell by distance from the fortress
func (s *movementServiceImpl) CastingRangePenalty(ctx context.Context, name string, req *CastingPenaltyRequest) (*CastingPenaltyResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request body is required", ErrBadRequest)
	}
	r, err := s.ruleset(name)
	if err != nil {
		return nil, err
	}
	if err := req.Map.Validate(); err != nil {
		return nil, err
	}

	penalty := combat.CastingRangePenalty(req.Map, combat.CastingContext{
		Combat:    req.Combat,
		Fortress:  req.Fortress,
		Channeler: req.Channeler,
	}, r.CastingRange)

	return &CastingPenaltyResponse{Penalty: penalty, Multiplier: float64(penalty) / combat.NoPenalty}, nil
}

func terrainVolume(sys topology.CoordinateSystem, planes [][][]string) (*engine.TerrainVolume, error) {
	if err := checkShape(sys, "terrain", len(planes), func(p int) int { return len(planes[p]) }, func(p, y int) int { return len(planes[p][y]) }); err != nil {
		return nil, err
	}
	v := engine.NewTerrainVolume(sys)
	for p, rows := range planes {
		for y, row := range rows {
			for x, id := range row {
				if id != "" {
					v.Set(topology.Coords{X: x, Y: y, Plane: p}, &engine.TerrainData{TileTypeID: id})
				}
			}
		}
	}
	return v, nil
}

func intVolume(sys topology.CoordinateSystem, field string, planes [][][]int) (*engine.IntVolume, error) {
	if planes == nil {
		return nil, nil
	}
	if err := checkShape(sys, field, len(planes), func(p int) int { return len(planes[p]) }, func(p, y int) int { return len(planes[p][y]) }); err != nil {
		return nil, err
	}
	v := engine.NewIntVolume(sys)
	for p, rows := range planes {
		for y, row := range rows {
			for x, n := range row {
				v.Set(topology.Coords{X: x, Y: y, Plane: p}, n)
			}
		}
	}
	return v, nil
}

func checkShape(sys topology.CoordinateSystem, field string, depth int, height func(p int) int, width func(p, y int) int) error {
	if depth != sys.Depth {
		return fmt.Errorf("%w: %s has %d planes, map has %d", engine.ErrShapeMismatch, field, depth, sys.Depth)
	}
	for p := 0; p < depth; p++ {
		if height(p) != sys.Height {
			return fmt.Errorf("%w: %s plane %d has %d rows, map has %d", engine.ErrShapeMismatch, field, p, height(p), sys.Height)
		}
		for y := 0; y < sys.Height; y++ {
			if width(p, y) != sys.Width {
				return fmt.Errorf("%w: %s plane %d row %d has %d columns, map has %d",
					engine.ErrShapeMismatch, field, p, y, width(p, y), sys.Width)
			}
		}
	}
	return nil
}

func combatMap(cm CombatMap) (*combat.Map, error) {
	if len(cm.Tiles) == 0 {
		return nil, fmt.Errorf("%w: combat map has no tiles", ErrBadRequest)
	}
	sys := topology.CoordinateSystem{
		Type:             cm.Type,
		WrapsLeftToRight: cm.WrapsLeftToRight,
		WrapsTopToBottom: cm.WrapsTopToBottom,
	}
	m, err := combat.NewMapFromRows(sys, cm.Tiles)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return m, nil
}
