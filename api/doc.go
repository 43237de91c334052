// Package api provides the HTTP REST API for movement queries.
//
// Every query names the ruleset it runs against. The name "default" selects
// the server's default ruleset.
//
// Endpoints:
//
// Rulesets:
//   - GET /api/rulesets - List available rulesets
//   - GET /api/rulesets/{name} - Get a ruleset
//   - PUT /api/rulesets/{name} - Validate and store a ruleset
//
// Overland:
//   - POST /api/rulesets/{name}/overland/cost-matrix - Cost for a stack to
//     enter every map location. "resolve": "remembered" reads the terrain as
//     the player's memory, with empty cells taking the ruleset's fog tile type.
//
// Combat:
//   - POST /api/rulesets/{name}/combat/cost-to-enter - Entry cost of one tile
//   - POST /api/rulesets/{name}/combat/can-cross - Whether a tile edge can be crossed
//   - POST /api/rulesets/{name}/combat/move-cost - Destination and cost of one step
//   - POST /api/rulesets/{name}/combat/casting-penalty - Spell cost multiplier
//     by distance from the caster's fortress
//
// Other:
//   - GET /api/health - Liveness check
//   - GET /ws?ruleset={name}&battle={id} - WebSocket for combat queries
//
// Costs are double movement points: 2 is one movement point and -1 means the
// location cannot be entered.
//
// Error Handling:
//
// Errors are returned as JSON:
//
//	{"error": "error message"}
//
// Status codes:
//   - 400: malformed request, shape mismatch, bad coordinates or direction
//   - 404: unknown ruleset
//   - 422: the request references data the ruleset does not contain
//   - 500: anything else
package api
