package combat

import (
	"fmt"

	"github.com/wricardo/realm-movement/game/database"
	"github.com/wricardo/realm-movement/game/movement"
	"github.com/wricardo/realm-movement/game/topology"
)

// CostToEnter returns the double movement cost of entering a combat tile, or
// movement.Impassable. Checks run in a fixed order: the map edge, borders that
// close the whole tile, a blocking building or feature, a road, and finally
// the terrain. Borders that only block some edges are left to CanCross.
func CostToEnter(tile *Tile, db *database.Database) (movement.DoubleMovement, error) {
	if tile == nil || tile.OffMapEdge {
		return movement.Impassable, nil
	}

	for _, id := range tile.BorderIDs {
		border, err := db.FindCombatTileBorder(id)
		if err != nil {
			return movement.Impassable, err
		}
		if border.BlocksMovement == database.BorderWholeTileImpassable {
			return movement.Impassable, nil
		}
	}

	if id, ok := tile.Layer(LayerBuildingsAndFeatures); ok {
		building, err := db.FindCombatTileType(id)
		if err != nil {
			return movement.Impassable, err
		}
		if building.BlocksMovement {
			return movement.Impassable, nil
		}
	}

	if id, ok := tile.Layer(LayerRoad); ok {
		road, err := db.FindCombatTileType(id)
		if err != nil {
			return movement.Impassable, err
		}
		if !road.BlocksMovement && road.DoubleMovement != nil {
			return movement.FromRate(road.DoubleMovement), nil
		}
	}

	id, ok := tile.Layer(LayerTerrain)
	if !ok {
		return movement.Impassable, nil
	}
	terrain, err := db.FindCombatTileType(id)
	if err != nil {
		return movement.Impassable, err
	}
	if terrain.BlocksMovement {
		return movement.Impassable, nil
	}
	return movement.FromRate(terrain.DoubleMovement), nil
}

// CanCross reports whether a unit on (x, y) may leave through edge d. It is
// refused only when d is one of the tile's border directions and at least one
// of its borders cannot be crossed on those edges.
func CanCross(m *Map, sysType topology.CoordinateSystemType, x, y int, d topology.Direction, db *database.Database) (bool, error) {
	if !topology.ValidDirection(sysType, d) {
		return false, fmt.Errorf("%w: %d for %s maps", ErrInvalidDirection, d, sysType)
	}
	if !m.Contains(x, y) {
		return false, fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, x, y)
	}

	tile := m.At(x, y)
	if !tile.HasBorderDirection(d) {
		return true, nil
	}

	for _, id := range tile.BorderIDs {
		border, err := db.FindCombatTileBorder(id)
		if err != nil {
			return false, err
		}
		if border.BlocksMovement == database.BorderCannotCrossSpecified {
			return false, nil
		}
	}
	return true, nil
}

// Step is the outcome of one move on a combat map
type Step struct {
	To   topology.Coords         `json:"to"`
	Cost movement.DoubleMovement `json:"cost"`
}

// MoveCost prices one step from (x, y) in direction d. The step is refused
// when either tile has a blocking border on the shared edge, when it would
// leave the map, or when the destination cannot be entered.
func MoveCost(m *Map, x, y int, d topology.Direction, db *database.Database) (Step, error) {
	sys := m.System()
	from := topology.Coords{X: x, Y: y}

	ok, err := CanCross(m, sys.Type, x, y, d, db)
	if err != nil || !ok {
		return Step{To: from, Cost: movement.Impassable}, err
	}

	to, ok := sys.Move(from, d)
	if !ok {
		return Step{To: from, Cost: movement.Impassable}, nil
	}

	ok, err = CanCross(m, sys.Type, to.X, to.Y, sys.Opposite(d), db)
	if err != nil || !ok {
		return Step{To: to, Cost: movement.Impassable}, err
	}

	cost, err := CostToEnter(m.At(to.X, to.Y), db)
	if err != nil {
		return Step{To: to, Cost: movement.Impassable}, err
	}
	return Step{To: to, Cost: cost}, nil
}
