package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wricardo/realm-movement/game/movement"
	"github.com/wricardo/realm-movement/game/topology"
)

func TestMatrixHelpers(t *testing.T) {
	sys := topology.CoordinateSystem{Type: topology.Square, Width: 5, Height: 1, Depth: 1, WrapsLeftToRight: true}
	m := NewCostMatrix(sys)

	assert.Equal(t, 0, CountEnterable(m, 0))
	_, ok := CheapestCost(m, 0)
	assert.False(t, ok, "no cheapest cost on an impassable plane")
	_, _, ok = NearestEnterable(m, at(0))
	assert.False(t, ok)

	m.set(at(2), 4)
	m.set(at(4), 3)

	assert.Equal(t, 2, CountEnterable(m, 0))
	cheapest, ok := CheapestCost(m, 0)
	assert.True(t, ok)
	assert.Equal(t, movement.DoubleMovement(3), cheapest)

	// wraps left to right, so x=4 is one step from x=0
	nearest, distance, ok := NearestEnterable(m, at(0))
	assert.True(t, ok)
	assert.Equal(t, at(4), nearest)
	assert.Equal(t, 1.0, distance)

	assert.Equal(t, [][]string{{"-", "-", "2", "-", "1½"}}, PlaneStrings(m, 0))
}

func TestCostMatrixFromPlanes(t *testing.T) {
	sys := topology.CoordinateSystem{Type: topology.Square, Width: 3, Height: 2, Depth: 1}
	m := CostMatrixFromPlanes(sys, [][][]movement.DoubleMovement{
		{{2, movement.Impassable, 4}, {1}},
	})

	assert.Equal(t, movement.DoubleMovement(4), m.At(topology.Coords{X: 2, Y: 0}))
	assert.Equal(t, movement.DoubleMovement(1), m.At(topology.Coords{X: 0, Y: 1}))
	// short rows leave the rest impassable
	assert.Equal(t, movement.Impassable, m.At(topology.Coords{X: 1, Y: 1}))
	assert.Equal(t, 3, CountEnterable(m, 0))
}

func TestTerrainResolver(t *testing.T) {
	r := TerrainResolver{}
	_, ok := r.ResolveTileType(nil, ResolveAuthoritative)
	assert.False(t, ok, "nil terrain is unknown")
	_, ok = r.ResolveTileType(&TerrainData{}, ResolveRemembered)
	assert.False(t, ok, "empty terrain is unknown without a fog tile type")

	id, ok := r.ResolveTileType(&TerrainData{TileTypeID: "TT_GRASS"}, ResolveAuthoritative)
	assert.True(t, ok)
	assert.Equal(t, "TT_GRASS", id)

	fog := TerrainResolver{FogTileTypeID: "TT_FOG"}
	_, ok = fog.ResolveTileType(nil, ResolveAuthoritative)
	assert.False(t, ok, "authoritative mode never uses the fog tile type")

	id, ok = fog.ResolveTileType(nil, ResolveRemembered)
	assert.True(t, ok)
	assert.Equal(t, "TT_FOG", id)
}

func TestParseResolveMode(t *testing.T) {
	tests := []struct {
		in      string
		want    ResolveMode
		wantErr bool
	}{
		{in: "", want: ResolveAuthoritative},
		{in: "authoritative", want: ResolveAuthoritative},
		{in: "remembered", want: ResolveRemembered},
		{in: "guessed", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseResolveMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
