// Package mcp exposes the movement REST API as Model Context Protocol tools.
//
// The client holds no game logic. Each tool call is forwarded to the REST
// server and the JSON answer is rendered as text for the agent.
//
// MCP Tools:
//   - list_rulesets: List available rulesets
//   - overland_cost_matrix: Cost for a stack to enter every overland location
//   - combat_cost_to_enter: Entry cost of one combat tile
//   - combat_can_cross: Whether a combat tile edge can be crossed
//   - combat_move_cost: Destination and cost of one combat step
//   - casting_range_penalty: Spell cost multiplier by distance from the fortress
//
// Every tool takes an optional ruleset argument. Without it the server's
// default ruleset is used.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
