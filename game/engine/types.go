package engine

import (
	"errors"

	"github.com/wricardo/realm-movement/game/movement"
	"github.com/wricardo/realm-movement/game/topology"
)

var (
	ErrEmptyStack    = errors.New("stack has no units")
	ErrShapeMismatch = errors.New("grid shape does not match coordinate system")
	ErrOutOfBounds   = errors.New("coordinates out of bounds")
)

// TerrainData is what is known about one overland location. An empty
// TileTypeID means the tile type has never been resolved.
type TerrainData struct {
	TileTypeID   string `json:"tile_type_id,omitempty" yaml:"tile_type_id,omitempty"`
	MapFeatureID string `json:"map_feature_id,omitempty" yaml:"map_feature_id,omitempty"`
	NodeOwnerID  int    `json:"node_owner_id,omitempty" yaml:"node_owner_id,omitempty"`
}

// TerrainVolume is a dense plane x row x column grid of terrain; nil entries
// are locations nothing is known about
type TerrainVolume struct {
	sys   topology.CoordinateSystem
	cells []*TerrainData
}

// NewTerrainVolume allocates an empty terrain volume shaped like sys
func NewTerrainVolume(sys topology.CoordinateSystem) *TerrainVolume {
	return &TerrainVolume{sys: sys, cells: make([]*TerrainData, sys.Size())}
}

// At returns the terrain at c, or nil when unknown or off the map
func (v *TerrainVolume) At(c topology.Coords) *TerrainData {
	if v == nil || !v.sys.Contains(c) {
		return nil
	}
	return v.cells[v.sys.Index(c)]
}

// Set stores terrain at c; it is a no-op off the map
func (v *TerrainVolume) Set(c topology.Coords, t *TerrainData) {
	if v.sys.Contains(c) {
		v.cells[v.sys.Index(c)] = t
	}
}

// System returns the coordinate system the volume was shaped for
func (v *TerrainVolume) System() topology.CoordinateSystem {
	return v.sys
}

// IntVolume is a dense plane x row x column grid of counters, used for
// transport capacity and friendly unit counts. A nil *IntVolume reads as zero
// everywhere.
type IntVolume struct {
	sys    topology.CoordinateSystem
	values []int
}

// NewIntVolume allocates a zeroed volume shaped like sys
func NewIntVolume(sys topology.CoordinateSystem) *IntVolume {
	return &IntVolume{sys: sys, values: make([]int, sys.Size())}
}

// At returns the value at c, or 0 when off the map
func (v *IntVolume) At(c topology.Coords) int {
	if v == nil || !v.sys.Contains(c) {
		return 0
	}
	return v.values[v.sys.Index(c)]
}

// Set stores value at c
func (v *IntVolume) Set(c topology.Coords, value int) {
	if v.sys.Contains(c) {
		v.values[v.sys.Index(c)] = value
	}
}

// Add adds delta to the value at c
func (v *IntVolume) Add(c topology.Coords, delta int) {
	if v.sys.Contains(c) {
		v.values[v.sys.Index(c)] += delta
	}
}

// System returns the coordinate system the volume was shaped for
func (v *IntVolume) System() topology.CoordinateSystem {
	return v.sys
}

// CostMatrix is the output of one builder invocation: the double movement cost
// to enter every location, or movement.Impassable
type CostMatrix struct {
	sys    topology.CoordinateSystem
	values []movement.DoubleMovement
}

// NewCostMatrix allocates a matrix with every location impassable
func NewCostMatrix(sys topology.CoordinateSystem) *CostMatrix {
	values := make([]movement.DoubleMovement, sys.Size())
	for i := range values {
		values[i] = movement.Impassable
	}
	return &CostMatrix{sys: sys, values: values}
}

// CostMatrixFromPlanes rebuilds a matrix from [plane][row][column] costs such
// as those returned by Plane. Missing cells stay impassable.
func CostMatrixFromPlanes(sys topology.CoordinateSystem, planes [][][]movement.DoubleMovement) *CostMatrix {
	m := NewCostMatrix(sys)
	for p, rows := range planes {
		for y, row := range rows {
			for x, cost := range row {
				c := topology.Coords{X: x, Y: y, Plane: p}
				if sys.Contains(c) {
					m.set(c, cost)
				}
			}
		}
	}
	return m
}

// At returns the cost at c; off-map locations are impassable
func (m *CostMatrix) At(c topology.Coords) movement.DoubleMovement {
	if !m.sys.Contains(c) {
		return movement.Impassable
	}
	return m.values[m.sys.Index(c)]
}

func (m *CostMatrix) set(c topology.Coords, d movement.DoubleMovement) {
	m.values[m.sys.Index(c)] = d
}

// System returns the coordinate system the matrix covers
func (m *CostMatrix) System() topology.CoordinateSystem {
	return m.sys
}

// Plane returns one plane as rows of costs
func (m *CostMatrix) Plane(plane int) [][]movement.DoubleMovement {
	rows := make([][]movement.DoubleMovement, m.sys.Height)
	for y := range rows {
		start := m.sys.Index(topology.Coords{X: 0, Y: y, Plane: plane})
		rows[y] = append([]movement.DoubleMovement(nil), m.values[start:start+m.sys.Width]...)
	}
	return rows
}

// SkillSet is a set of unit skill ids
type SkillSet map[string]bool

// Has reports whether id is in the set; a nil set is empty
func (s SkillSet) Has(id string) bool {
	return s[id]
}

// NewSkillSet builds a set from ids
func NewSkillSet(ids ...string) SkillSet {
	s := make(SkillSet, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}

// Unit is one unit in a moving stack. Skills holds the unit's modified skill
// values; nil falls back to the skills of its definition.
type Unit struct {
	ID      int            `json:"id" yaml:"id"`
	UnitID  string         `json:"unit_id" yaml:"unit_id"`
	OwnerID int            `json:"owner_id" yaml:"owner_id"`
	Skills  map[string]int `json:"skills,omitempty" yaml:"skills,omitempty"`
}

// Stack is a group of units moving together
type Stack struct {
	OwnerID int    `json:"owner_id" yaml:"owner_id"`
	Units   []Unit `json:"units" yaml:"units"`
}

// Size is the number of units in the stack
func (s Stack) Size() int {
	return len(s.Units)
}

// ActiveWard is a ward spell cast on an overland location
type ActiveWard struct {
	SpellID         string          `json:"spell_id" yaml:"spell_id"`
	CastingPlayerID int             `json:"casting_player_id" yaml:"casting_player_id"`
	Location        topology.Coords `json:"location" yaml:"location"`
}

// PlacedUnit is a unit already standing somewhere on the map
type PlacedUnit struct {
	Unit     Unit            `json:"unit" yaml:"unit"`
	Location topology.Coords `json:"location" yaml:"location"`
}
