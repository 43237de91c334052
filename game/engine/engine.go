package engine

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/realm-movement/game/database"
	"github.com/wricardo/realm-movement/game/movement"
	"github.com/wricardo/realm-movement/game/topology"
)

// MovementQuery is everything one cost matrix build needs besides the map
// shape and reference data held by the Builder
type MovementQuery struct {
	Stack       Stack
	StackSkills SkillSet

	// Plane limits the build to one plane; nil builds all planes
	Plane *int

	// Resolve selects how Terrain is read. In remembered mode Terrain is the
	// moving player's memory of the map.
	Resolve ResolveMode

	Terrain           *TerrainVolume
	TransportCapacity *IntVolume
	FriendlyUnitCount *IntVolume

	// SeedRates are stack-level rates known in advance; tile types listed here
	// skip the per-unit capability lookups
	SeedRates map[string]movement.DoubleMovement

	IgnoreWards bool
	ActiveWards []ActiveWard
}

// BuildStats counts what happened during one build
type BuildStats struct {
	CellsEvaluated     int `json:"cells_evaluated"`
	Enterable          int `json:"enterable"`
	UnknownTerrain     int `json:"unknown_terrain"`
	RatesDerived       int `json:"rates_derived"`
	RatesSeeded        int `json:"rates_seeded"`
	Embarkations       int `json:"embarkations"`
	StackingRejections int `json:"stacking_rejections"`
	WardRejections     int `json:"ward_rejections"`
}

func (s *BuildStats) add(o BuildStats) {
	s.CellsEvaluated += o.CellsEvaluated
	s.Enterable += o.Enterable
	s.UnknownTerrain += o.UnknownTerrain
	s.RatesDerived += o.RatesDerived
	s.RatesSeeded += o.RatesSeeded
	s.Embarkations += o.Embarkations
	s.StackingRejections += o.StackingRejections
	s.WardRejections += o.WardRejections
}

// BuildResult is a cost matrix plus the rates resolved while building it
type BuildResult struct {
	Matrix *CostMatrix
	Rates  map[string]movement.DoubleMovement
	Stats  BuildStats
}

// Builder produces overland cost matrices for one map shape and ruleset.
// A Builder holds no per-query state and may be shared between goroutines.
type Builder struct {
	sys        topology.CoordinateSystem
	db         *database.Database
	stacking   StackingChecker
	capability MovementCapability
	resolver   TileTypeResolver
	wards      WardMatcher
	log        logrus.FieldLogger
}

// Option customises a Builder
type Option func(*Builder)

// WithCapability replaces the database-driven unit movement capability function
func WithCapability(c MovementCapability) Option {
	return func(b *Builder) { b.capability = c }
}

// WithResolver replaces the default tile type resolver
func WithResolver(r TileTypeResolver) Option {
	return func(b *Builder) { b.resolver = r }
}

// WithWardMatcher replaces the expression-based ward matcher
func WithWardMatcher(w WardMatcher) Option {
	return func(b *Builder) { b.wards = w }
}

// WithLogger sets the logger; the logrus standard logger is used otherwise
func WithLogger(l logrus.FieldLogger) Option {
	return func(b *Builder) { b.log = l }
}

// NewBuilder creates a builder for maps shaped like sys
func NewBuilder(sys topology.CoordinateSystem, db *database.Database, settings Settings, opts ...Option) (*Builder, error) {
	if err := sys.Validate(); err != nil {
		return nil, err
	}
	if db == nil {
		return nil, fmt.Errorf("database cannot be nil")
	}
	if err := ValidateSettings(settings); err != nil {
		return nil, err
	}

	b := &Builder{
		sys: sys,
		db:  db,
		stacking: StackingChecker{
			EmbarkDoubleMovement: settings.EmbarkDoubleMovement,
			MaxUnitsPerLocation:  settings.MaxUnitsPerLocation,
		},
		capability: NewRuleMovement(db),
		resolver:   TerrainResolver{},
		wards:      NewExprWardMatcher(db),
		log:        logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// System returns the coordinate system the builder works on
func (b *Builder) System() topology.CoordinateSystem {
	return b.sys
}

// BuildCostMatrix computes the cost for the query's stack to enter every
// location. Locations on planes excluded by the query stay impassable.
func (b *Builder) BuildCostMatrix(q *MovementQuery) (*CostMatrix, error) {
	res, err := b.Build(q)
	if err != nil {
		return nil, err
	}
	return res.Matrix, nil
}

// Build is BuildCostMatrix with the resolved rates and statistics
func (b *Builder) Build(q *MovementQuery) (*BuildResult, error) {
	if err := b.checkQuery(q); err != nil {
		return nil, err
	}

	wardsAt, err := b.indexWards(q)
	if err != nil {
		return nil, err
	}

	planes := make([]int, 0, b.sys.Depth)
	if q.Plane != nil {
		planes = append(planes, *q.Plane)
	} else {
		for p := 0; p < b.sys.Depth; p++ {
			planes = append(planes, p)
		}
	}

	matrix := NewCostMatrix(b.sys)
	cache := NewMovementRateCache(q.SeedRates)
	stats := make([]BuildStats, len(planes))

	g, ctx := errgroup.WithContext(context.Background())
	for i, plane := range planes {
		g.Go(func() error {
			return b.buildPlane(ctx, q, plane, matrix, cache, wardsAt, &stats[i])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := BuildStats{RatesSeeded: len(q.SeedRates)}
	for _, s := range stats {
		total.add(s)
	}

	b.log.WithFields(logrus.Fields{
		"owner":      q.Stack.OwnerID,
		"stack_size": q.Stack.Size(),
		"planes":     len(planes),
		"resolve":    q.Resolve.String(),
		"cells":      total.CellsEvaluated,
		"enterable":  total.Enterable,
		"derived":    total.RatesDerived,
		"seeded":     total.RatesSeeded,
		"embarked":   total.Embarkations,
		"over_stack": total.StackingRejections,
		"warded":     total.WardRejections,
		"tile_types": len(cache.Snapshot()),
	}).Debug("cost matrix built")

	return &BuildResult{Matrix: matrix, Rates: cache.Snapshot(), Stats: total}, nil
}

func (b *Builder) checkQuery(q *MovementQuery) error {
	if q == nil {
		return fmt.Errorf("query cannot be nil")
	}
	if q.Stack.Size() == 0 {
		return ErrEmptyStack
	}
	if q.Terrain == nil {
		return fmt.Errorf("%w: terrain is required", ErrShapeMismatch)
	}
	if !sameShape(q.Terrain.System(), b.sys) {
		return fmt.Errorf("%w: terrain", ErrShapeMismatch)
	}
	if q.TransportCapacity != nil && !sameShape(q.TransportCapacity.System(), b.sys) {
		return fmt.Errorf("%w: transport capacity", ErrShapeMismatch)
	}
	if q.FriendlyUnitCount != nil && !sameShape(q.FriendlyUnitCount.System(), b.sys) {
		return fmt.Errorf("%w: friendly unit count", ErrShapeMismatch)
	}
	if q.Plane != nil && (*q.Plane < 0 || *q.Plane >= b.sys.Depth) {
		return fmt.Errorf("%w: plane %d", ErrOutOfBounds, *q.Plane)
	}
	return nil
}

// indexWards groups the query's wards by location and fails early on
// unknown spells, so impassable cells cannot hide a data error
func (b *Builder) indexWards(q *MovementQuery) (map[topology.Coords][]ActiveWard, error) {
	if q.IgnoreWards || len(q.ActiveWards) == 0 {
		return nil, nil
	}
	wardsAt := make(map[topology.Coords][]ActiveWard, len(q.ActiveWards))
	for _, w := range q.ActiveWards {
		if _, err := b.db.FindWardSpell(w.SpellID); err != nil {
			return nil, err
		}
		if !b.sys.Contains(w.Location) {
			return nil, fmt.Errorf("%w: ward %q at %v", ErrOutOfBounds, w.SpellID, w.Location)
		}
		wardsAt[w.Location] = append(wardsAt[w.Location], w)
	}
	return wardsAt, nil
}

func (b *Builder) buildPlane(ctx context.Context, q *MovementQuery, plane int, matrix *CostMatrix, cache *MovementRateCache,
	wardsAt map[topology.Coords][]ActiveWard, stats *BuildStats) error {

	for y := 0; y < b.sys.Height; y++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for x := 0; x < b.sys.Width; x++ {
			c := topology.Coords{X: x, Y: y, Plane: plane}
			cost, err := b.evaluateCell(q, c, cache, wardsAt[c], stats)
			if err != nil {
				return fmt.Errorf("cell %v: %w", c, err)
			}
			stats.CellsEvaluated++
			if cost.Enterable() {
				stats.Enterable++
			}
			matrix.set(c, cost)
		}
	}
	return nil
}

func (b *Builder) evaluateCell(q *MovementQuery, c topology.Coords, cache *MovementRateCache,
	wards []ActiveWard, stats *BuildStats) (movement.DoubleMovement, error) {

	tileTypeID, known := b.resolver.ResolveTileType(q.Terrain.At(c), q.Resolve)
	if !known {
		stats.UnknownTerrain++
		return movement.Impassable, nil
	}

	cost, err := b.stackRate(q, tileTypeID, cache, stats)
	if err != nil {
		return movement.Impassable, err
	}

	size := q.Stack.Size()
	if !cost.Enterable() {
		cost = b.stacking.Embark(q.TransportCapacity.At(c), size)
		if !cost.Enterable() {
			return movement.Impassable, nil
		}
		stats.Embarkations++
	}

	if !b.stacking.Admits(q.FriendlyUnitCount.At(c), size) {
		stats.StackingRejections++
		return movement.Impassable, nil
	}

	for _, w := range wards {
		hostile, err := b.wards.IsHostile(w, q.Stack)
		if err != nil {
			return movement.Impassable, err
		}
		if hostile {
			stats.WardRejections++
			return movement.Impassable, nil
		}
	}

	return cost, nil
}

// stackRate returns the rate at which the whole stack enters a tile type: the
// slowest member's rate, or Impassable if any member cannot enter. Every
// member is looked up so a bad unit fails the same way on any terrain.
func (b *Builder) stackRate(q *MovementQuery, tileTypeID string, cache *MovementRateCache, stats *BuildStats) (movement.DoubleMovement, error) {
	if rate, ok := cache.Get(tileTypeID); ok {
		return rate, nil
	}

	slowest := movement.DoubleMovement(0)
	blocked := false
	for _, u := range q.Stack.Units {
		rate, err := b.capability.DoubleMovementToEnter(u, q.StackSkills, tileTypeID)
		if err != nil {
			return movement.Impassable, err
		}
		if !rate.Enterable() {
			blocked = true
			continue
		}
		if rate > slowest {
			slowest = rate
		}
	}
	if blocked {
		slowest = movement.Impassable
	}

	rate, inserted := cache.Put(tileTypeID, slowest)
	if inserted {
		stats.RatesDerived++
	}
	return rate, nil
}

func sameShape(a, b topology.CoordinateSystem) bool {
	return a.Width == b.Width && a.Height == b.Height && a.Depth == b.Depth
}
