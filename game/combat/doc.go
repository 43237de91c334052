// Package combat evaluates movement on tactical battle maps.
//
// A combat Tile stacks up to three layers (terrain, road, buildings and
// features) and may carry borders such as walls along some of its edges.
// CostToEnter prices a tile as a whole; CanCross decides whether a unit may
// leave a tile through one of its edges. MoveCost combines the two for a
// single step. CastingRangePenalty prices spells cast far from the caster's
// fortress.
package combat
