package engine

import (
	"fmt"

	"github.com/wricardo/realm-movement/game/movement"
)

// StackingChecker decides whether a destination can physically take an
// incoming stack
type StackingChecker struct {
	EmbarkDoubleMovement int
	MaxUnitsPerLocation  int
}

// Embark returns the cost of boarding transports at a location whose
// remaining capacity is given, or Impassable when the stack does not fit
func (s StackingChecker) Embark(capacity, stackSize int) movement.DoubleMovement {
	if capacity >= stackSize {
		return movement.DoubleMovement(s.EmbarkDoubleMovement)
	}
	return movement.Impassable
}

// Admits reports whether existing units plus the incoming stack stay within
// the per-location limit
func (s StackingChecker) Admits(existing, stackSize int) bool {
	return existing+stackSize <= s.MaxUnitsPerLocation
}

// OccupancyGrids derives the transport capacity and friendly unit count grids
// from the units already on the map. Only units owned by ownerID count. A unit
// with transport capacity adds its capacity; a unit standing on terrain it
// could not enter by itself is taken to be aboard a transport and uses one slot.
func (b *Builder) OccupancyGrids(ownerID int, units []PlacedUnit, terrain *TerrainVolume) (*IntVolume, *IntVolume, error) {
	transport := NewIntVolume(b.sys)
	count := NewIntVolume(b.sys)

	for _, pu := range units {
		if pu.Unit.OwnerID != ownerID {
			continue
		}
		if !b.sys.Contains(pu.Location) {
			return nil, nil, fmt.Errorf("%w: unit %d at %v", ErrOutOfBounds, pu.Unit.ID, pu.Location)
		}
		def, err := b.db.FindUnit(pu.Unit.UnitID)
		if err != nil {
			return nil, nil, fmt.Errorf("unit %d: %w", pu.Unit.ID, err)
		}

		count.Add(pu.Location, 1)

		if def.TransportCapacity > 0 {
			transport.Add(pu.Location, def.TransportCapacity)
			continue
		}

		tileTypeID, known := b.resolver.ResolveTileType(terrain.At(pu.Location), ResolveAuthoritative)
		if !known {
			continue
		}
		rate, err := b.capability.DoubleMovementToEnter(pu.Unit, nil, tileTypeID)
		if err != nil {
			return nil, nil, err
		}
		if !rate.Enterable() {
			transport.Add(pu.Location, -1)
		}
	}

	return transport, count, nil
}
