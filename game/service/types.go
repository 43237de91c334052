package service

import (
	"github.com/wricardo/realm-movement/game/combat"
	"github.com/wricardo/realm-movement/game/engine"
	"github.com/wricardo/realm-movement/game/movement"
	"github.com/wricardo/realm-movement/game/topology"
)

// CostMatrixRequest asks for the overland cost matrix of one stack. Grids are
// indexed [plane][row][column]. An empty terrain string is an unknown tile.
type CostMatrixRequest struct {
	Map   topology.CoordinateSystem `json:"map" yaml:"map"`
	Stack engine.Stack              `json:"stack" yaml:"stack"`
	Plane *int                      `json:"plane,omitempty" yaml:"plane,omitempty"`

	// Resolve is "authoritative" (default) or "remembered". Remembered
	// terrain is the player's memory; its empty cells resolve to the
	// ruleset's fog tile type when one is set.
	Resolve string `json:"resolve,omitempty" yaml:"resolve,omitempty"`

	Terrain           [][][]string `json:"terrain" yaml:"terrain"`
	TransportCapacity [][][]int    `json:"transport_capacity,omitempty" yaml:"transport_capacity,omitempty"`
	FriendlyUnitCount [][][]int    `json:"friendly_unit_count,omitempty" yaml:"friendly_unit_count,omitempty"`

	// PlacedUnits derives both occupancy grids when neither is given
	PlacedUnits []engine.PlacedUnit `json:"placed_units,omitempty" yaml:"placed_units,omitempty"`

	SeedRates   map[string]movement.DoubleMovement `json:"seed_rates,omitempty" yaml:"seed_rates,omitempty"`
	IgnoreWards bool                               `json:"ignore_wards,omitempty" yaml:"ignore_wards,omitempty"`
	ActiveWards []engine.ActiveWard                `json:"active_wards,omitempty" yaml:"active_wards,omitempty"`
}

// CostMatrixResponse is the cost for the stack to enter every location,
// -1 meaning it cannot
type CostMatrixResponse struct {
	Ruleset string                             `json:"ruleset" yaml:"ruleset"`
	Matrix  [][][]movement.DoubleMovement      `json:"matrix" yaml:"matrix"`
	Rates   map[string]movement.DoubleMovement `json:"rates" yaml:"rates"`
	Stats   engine.BuildStats                  `json:"stats" yaml:"stats"`
}

// CombatMap is a combat map on the wire
type CombatMap struct {
	Type             topology.CoordinateSystemType `json:"type" yaml:"type"`
	WrapsLeftToRight bool                          `json:"wraps_left_to_right,omitempty" yaml:"wraps_left_to_right,omitempty"`
	WrapsTopToBottom bool                          `json:"wraps_top_to_bottom,omitempty" yaml:"wraps_top_to_bottom,omitempty"`
	Tiles            [][]combat.Tile               `json:"tiles" yaml:"tiles"`
}

// CostToEnterRequest prices one combat tile
type CostToEnterRequest struct {
	Tile combat.Tile `json:"tile" yaml:"tile"`
}

// CostToEnterResponse is the entry cost of a combat tile
type CostToEnterResponse struct {
	Cost      movement.DoubleMovement `json:"cost" yaml:"cost"`
	Enterable bool                    `json:"enterable" yaml:"enterable"`
	Display   string                  `json:"display" yaml:"display"`
}

// CanCrossRequest asks whether a unit may leave a tile through one edge
type CanCrossRequest struct {
	Map       CombatMap          `json:"map" yaml:"map"`
	X         int                `json:"x" yaml:"x"`
	Y         int                `json:"y" yaml:"y"`
	Direction topology.Direction `json:"direction" yaml:"direction"`
}

// CanCrossResponse answers a CanCrossRequest
type CanCrossResponse struct {
	CanCross bool `json:"can_cross" yaml:"can_cross"`
}

// MoveCostRequest prices one step on a combat map
type MoveCostRequest = CanCrossRequest

// MoveCostResponse is the destination and cost of one combat step
type MoveCostResponse struct {
	From      topology.Coords         `json:"from" yaml:"from"`
	To        topology.Coords         `json:"to" yaml:"to"`
	Cost      movement.DoubleMovement `json:"cost" yaml:"cost"`
	Enterable bool                    `json:"enterable" yaml:"enterable"`
}

// CastingPenaltyRequest describes a spell cast in combat. A missing fortress
// means the caster is banished.
type CastingPenaltyRequest struct {
	Map       topology.CoordinateSystem `json:"map" yaml:"map"`
	Combat    topology.Coords           `json:"combat" yaml:"combat"`
	Fortress  *topology.Coords          `json:"fortress,omitempty" yaml:"fortress,omitempty"`
	Channeler bool                      `json:"channeler,omitempty" yaml:"channeler,omitempty"`
}

// CastingPenaltyResponse carries the doubled penalty and the plain multiplier
type CastingPenaltyResponse struct {
	Penalty    int     `json:"penalty" yaml:"penalty"`
	Multiplier float64 `json:"multiplier" yaml:"multiplier"`
}
