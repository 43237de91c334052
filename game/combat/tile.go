package combat

import (
	"errors"
	"fmt"

	"github.com/wricardo/realm-movement/game/topology"
)

var (
	ErrInvalidDirection = errors.New("invalid direction")
	ErrOutOfBounds      = errors.New("coordinates out of bounds")
	ErrInvalidLayer     = errors.New("invalid layer kind")
)

// LayerKind identifies a combat tile layer. Higher kinds take priority.
type LayerKind int

const (
	LayerTerrain LayerKind = iota
	LayerRoad
	LayerBuildingsAndFeatures
)

var layerNames = map[LayerKind]string{
	LayerTerrain:              "terrain",
	LayerRoad:                 "road",
	LayerBuildingsAndFeatures: "buildings_and_features",
}

func (k LayerKind) String() string {
	if name, ok := layerNames[k]; ok {
		return name
	}
	return fmt.Sprintf("LayerKind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler
func (k LayerKind) MarshalText() ([]byte, error) {
	name, ok := layerNames[k]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLayer, int(k))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *LayerKind) UnmarshalText(text []byte) error {
	for kind, name := range layerNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidLayer, string(text))
}

// Layer assigns a combat tile type to one layer of a tile
type Layer struct {
	Kind       LayerKind `json:"kind" yaml:"kind"`
	TileTypeID string    `json:"tile_type_id" yaml:"tile_type_id"`
}

// Tile is one location on a combat map. BorderDirections lists the edges the
// borders run along as direction digits, e.g. "123".
type Tile struct {
	Layers           []Layer  `json:"layers,omitempty" yaml:"layers,omitempty"`
	BorderIDs        []string `json:"border_ids,omitempty" yaml:"border_ids,omitempty"`
	BorderDirections string   `json:"border_directions,omitempty" yaml:"border_directions,omitempty"`
	OffMapEdge       bool     `json:"off_map_edge,omitempty" yaml:"off_map_edge,omitempty"`
}

// Layer returns the tile type on the given layer
func (t *Tile) Layer(kind LayerKind) (string, bool) {
	if t == nil {
		return "", false
	}
	for _, l := range t.Layers {
		if l.Kind == kind {
			return l.TileTypeID, true
		}
	}
	return "", false
}

// SetLayer puts a tile type on a layer, replacing what was there
func (t *Tile) SetLayer(kind LayerKind, tileTypeID string) {
	for i := range t.Layers {
		if t.Layers[i].Kind == kind {
			t.Layers[i].TileTypeID = tileTypeID
			return
		}
	}
	t.Layers = append(t.Layers, Layer{Kind: kind, TileTypeID: tileTypeID})
}

// RemoveLayer clears a layer
func (t *Tile) RemoveLayer(kind LayerKind) {
	kept := t.Layers[:0]
	for _, l := range t.Layers {
		if l.Kind != kind {
			kept = append(kept, l)
		}
	}
	t.Layers = kept
}

// HasBorderDirection reports whether the tile's borders run along edge d
func (t *Tile) HasBorderDirection(d topology.Direction) bool {
	if t == nil || d < 1 || d > 9 {
		return false
	}
	digit := rune('0' + int(d))
	for _, r := range t.BorderDirections {
		if r == digit {
			return true
		}
	}
	return false
}

// Map is a single-plane grid of combat tiles
type Map struct {
	sys   topology.CoordinateSystem
	tiles []*Tile
}

// NewMap allocates a map of empty tiles. Only the first plane is used.
func NewMap(sys topology.CoordinateSystem) (*Map, error) {
	sys.Depth = 1
	if err := sys.Validate(); err != nil {
		return nil, err
	}
	tiles := make([]*Tile, sys.Size())
	for i := range tiles {
		tiles[i] = &Tile{}
	}
	return &Map{sys: sys, tiles: tiles}, nil
}

// NewMapFromRows builds a map from rows of tiles; every row must be sys.Width long
func NewMapFromRows(sys topology.CoordinateSystem, rows [][]Tile) (*Map, error) {
	sys.Height = len(rows)
	if len(rows) > 0 {
		sys.Width = len(rows[0])
	}
	m, err := NewMap(sys)
	if err != nil {
		return nil, err
	}
	for y, row := range rows {
		if len(row) != sys.Width {
			return nil, fmt.Errorf("row %d has %d tiles, expected %d", y, len(row), sys.Width)
		}
		for x := range row {
			tile := row[x]
			m.tiles[m.sys.Index(topology.Coords{X: x, Y: y})] = &tile
		}
	}
	return m, nil
}

// System returns the map's coordinate system
func (m *Map) System() topology.CoordinateSystem {
	return m.sys
}

// Contains reports whether (x, y) is on the map
func (m *Map) Contains(x, y int) bool {
	return m.sys.Contains(topology.Coords{X: x, Y: y})
}

// At returns the tile at (x, y), or nil off the map
func (m *Map) At(x, y int) *Tile {
	if !m.Contains(x, y) {
		return nil
	}
	return m.tiles[m.sys.Index(topology.Coords{X: x, Y: y})]
}
