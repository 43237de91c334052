// Package engine builds overland movement cost matrices.
//
// A Builder is created once per map shape and ruleset and answers queries of
// the form "what does it cost this stack to enter each location". For every
// location the builder:
//   - resolves the tile type from the terrain, read as the true map or, in
//     remembered mode, as the player's fog-of-war memory
//   - derives the stack's rate for that tile type from its slowest unit,
//     caching it for the rest of the invocation
//   - falls back to boarding friendly transports where the stack cannot move
//     on its own
//   - rejects locations that would exceed the per-location unit limit
//   - rejects locations under a ward hostile to the stack
//
// Usage:
//
//	b, err := engine.NewBuilder(sys, db, engine.DefaultSettings())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	matrix, err := b.BuildCostMatrix(&engine.MovementQuery{
//		Stack:   stack,
//		Terrain: terrain,
//	})
//
// Costs are in double movement points; movement.Impassable marks a location
// the stack cannot enter. Reference data errors such as an unknown tile type
// are returned as errors and never folded into Impassable.
package engine
