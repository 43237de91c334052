// Package database holds the reference data the movement rules are evaluated
// against: overland tile types and their movement rate rules, combat tile types,
// combat tile borders, unit definitions, unit-type classifications, unit skills
// and ward spells.
//
// All identifiers are opaque strings. Every Find method reports a missing
// record with an error wrapping one of the package's sentinel errors, so callers
// can tell a content bug apart from ordinary impassable terrain:
//
//	tt, err := db.FindTileType("TT01")
//	if errors.Is(err, database.ErrTileTypeNotFound) {
//		// the map references a tile type the ruleset does not define
//	}
package database
