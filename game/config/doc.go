// Package config loads rulesets from disk.
//
// A ruleset is one JSON or YAML file holding the reference data the movement
// engine works from (tile types, movement rate rules, combat tile types and
// borders, units, skills and ward spells) together with the tunable settings:
//
//	name: standard
//	settings:
//	  embark_double_movement: 2
//	  max_units_per_location: 9
//	casting_range:
//	  max_penalty: 6
//	  bands:
//	    - {max_distance: 5, penalty: 2}
//	tile_types:
//	  - id: TT_GRASS
//	movement_rate_rules:
//	  - {tile_type_id: TT_GRASS, double_movement: 2}
//
// Usage:
//
//	manager, err := config.NewManager("rulesets", logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	ruleset, err := manager.LoadRuleset("standard")
//
// Rulesets are validated when loaded: dangling references, negative costs,
// out of range settings and ward expressions that do not compile are all
// rejected with ErrInvalidRuleset.
package config
