package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/realm-movement/game/config"
	"github.com/wricardo/realm-movement/game/movement"
	"github.com/wricardo/realm-movement/game/service"
	"github.com/wricardo/realm-movement/game/topology"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Realm Movement",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Realm Movement - MCP Interface

This is a thin client that proxies all requests to the REST API server.

Costs are double movement points: 2 is one movement point, 1 is half a point
and -1 means the location cannot be entered.

AVAILABLE TOOLS:
- list_rulesets: List rulesets (tile types, units, ward spells)
- overland_cost_matrix: Cost for a stack to enter every overland location
- combat_cost_to_enter: Entry cost of one combat tile
- combat_can_cross: Whether a unit may leave a combat tile through one edge
- combat_move_cost: Destination and cost of one combat step
- casting_range_penalty: Spell cost multiplier by distance from the fortress

Directions are numbered clockwise from 1. Square and diamond maps have 8,
hex maps have 6.`),
	)

	c.registerTools()
}

var rulesetProperty = map[string]interface{}{
	"type":        "string",
	"description": "Ruleset name (optional, defaults to the server's default ruleset)",
}

var combatMapProperty = map[string]interface{}{
	"type": "object",
	"description": "Combat map: {type: square|diamond|hex, wraps_left_to_right, wraps_top_to_bottom, " +
		"tiles: rows of {layers: [{kind: terrain|road|buildings_and_features, tile_type_id}], " +
		"border_ids, border_directions, off_map_edge}}",
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_rulesets",
		Description: "List the available rulesets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListRulesets)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "overland_cost_matrix",
		Description: "Compute the cost for a stack to enter every location of an overland map",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"ruleset": rulesetProperty,
				"request": map[string]interface{}{
					"type": "object",
					"description": "Cost matrix request: {map: {type, width, height, depth, wraps_left_to_right, wraps_top_to_bottom}, " +
						"stack: {owner_id, units: [{id, unit_id, owner_id}]}, terrain: [plane][row][column] tile type ids, " +
						"plane, resolve (authoritative|remembered), transport_capacity, friendly_unit_count, placed_units, " +
						"seed_rates, ignore_wards, active_wards}",
				},
			},
			Required: []string{"request"},
		},
	}, c.handleCostMatrix)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "combat_cost_to_enter",
		Description: "Get the cost of entering one combat tile",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"ruleset": rulesetProperty,
				"tile": map[string]interface{}{
					"type":        "object",
					"description": "Combat tile: {layers: [{kind, tile_type_id}], border_ids, border_directions, off_map_edge}",
				},
			},
			Required: []string{"tile"},
		},
	}, c.handleCostToEnter)

	edgeProperties := map[string]interface{}{
		"ruleset": rulesetProperty,
		"map":     combatMapProperty,
		"x": map[string]interface{}{
			"type":        "number",
			"description": "X coordinate (column) of the tile (0-based)",
		},
		"y": map[string]interface{}{
			"type":        "number",
			"description": "Y coordinate (row) of the tile (0-based)",
		},
		"direction": map[string]interface{}{
			"type":        "number",
			"description": "Direction to leave the tile by, 1-8 (1-6 on hex maps)",
		},
	}

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "combat_can_cross",
		Description: "Check whether a unit on a combat tile may leave it through one edge",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: edgeProperties,
			Required:   []string{"map", "x", "y", "direction"},
		},
	}, c.handleCanCross)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "combat_move_cost",
		Description: "Get the destination and cost of one step on a combat map",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: edgeProperties,
			Required:   []string{"map", "x", "y", "direction"},
		},
	}, c.handleMoveCost)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "casting_range_penalty",
		Description: "Get the spell cost multiplier for casting in a combat at a distance from the caster's fortress",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"ruleset": rulesetProperty,
				"map": map[string]interface{}{
					"type":        "object",
					"description": "Overland map: {type, width, height, depth, wraps_left_to_right, wraps_top_to_bottom}",
				},
				"combat": map[string]interface{}{
					"type":        "object",
					"description": "Overland location of the combat: {x, y, plane}",
				},
				"fortress": map[string]interface{}{
					"type":        "object",
					"description": "Caster's fortress location {x, y, plane}; omit when banished",
				},
				"channeler": map[string]interface{}{
					"type":        "boolean",
					"description": "Caster ignores range penalties",
				},
			},
			Required: []string{"map", "combat"},
		},
	}, c.handleCastingPenalty)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// rulesetPath builds a path under /api/rulesets/{name}
func rulesetPath(args map[string]interface{}, suffix string) string {
	name, _ := args["ruleset"].(string)
	if name == "" {
		name = config.DefaultRulesetName
	}
	return "/api/rulesets/" + url.PathEscape(name) + suffix
}

// arguments returns the tool call arguments as a map
func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		args = map[string]interface{}{}
	}
	return args
}

// convert re-encodes decoded JSON arguments into a typed request
func convert(v interface{}, target interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}

// Tool handlers

func (c *Client) handleListRulesets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var rulesets []config.RulesetInfo
	err := c.apiCall(ctx, "GET", "/api/rulesets", nil, &rulesets)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Rulesets (%d):\n\n", len(rulesets))
	for _, r := range rulesets {
		result += fmt.Sprintf("- %s: %s (%d tile types, %d combat tile types, %d units, %d ward spells)\n",
			r.RulesetID, r.Name, r.TileTypes, r.CombatTileTypes, r.Units, r.WardSpells)
		if r.Description != "" {
			result += fmt.Sprintf("  %s\n", r.Description)
		}
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleCostMatrix(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	var body service.CostMatrixRequest
	if err := convert(args["request"], &body); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid request: %v", err)), nil
	}

	var resp service.CostMatrixResponse
	err := c.apiCall(ctx, "POST", rulesetPath(args, "/overland/cost-matrix"), body, &resp)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCostMatrix(&resp)), nil
}

func (c *Client) handleCostToEnter(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	var body service.CostToEnterRequest
	if err := convert(args["tile"], &body.Tile); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid tile: %v", err)), nil
	}

	var resp service.CostToEnterResponse
	err := c.apiCall(ctx, "POST", rulesetPath(args, "/combat/cost-to-enter"), body, &resp)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if !resp.Enterable {
		return mcp.NewToolResultText("The tile cannot be entered."), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Entering the tile costs %s movement (%d double movement).", resp.Display, resp.Cost)), nil
}

// edgeRequest reads the map, tile and direction shared by the edge tools
func edgeRequest(args map[string]interface{}) (*service.CanCrossRequest, error) {
	var req service.CanCrossRequest
	if err := convert(args["map"], &req.Map); err != nil {
		return nil, fmt.Errorf("invalid map: %v", err)
	}
	x, _ := args["x"].(float64)
	y, _ := args["y"].(float64)
	d, _ := args["direction"].(float64)
	req.X, req.Y, req.Direction = int(x), int(y), topology.Direction(d)
	return &req, nil
}

func (c *Client) handleCanCross(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	body, err := edgeRequest(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var resp service.CanCrossResponse
	err = c.apiCall(ctx, "POST", rulesetPath(args, "/combat/can-cross"), body, &resp)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if resp.CanCross {
		return mcp.NewToolResultText(fmt.Sprintf("A unit on (%d,%d) can leave in direction %d.", body.X, body.Y, body.Direction)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("A border blocks leaving (%d,%d) in direction %d.", body.X, body.Y, body.Direction)), nil
}

func (c *Client) handleMoveCost(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	body, err := edgeRequest(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var resp service.MoveCostResponse
	err = c.apiCall(ctx, "POST", rulesetPath(args, "/combat/move-cost"), body, &resp)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if !resp.Enterable {
		return mcp.NewToolResultText(fmt.Sprintf("Moving from (%d,%d) in direction %d is not possible.", body.X, body.Y, body.Direction)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Moving from (%d,%d) to (%d,%d) costs %s movement (%d double movement).",
		body.X, body.Y, resp.To.X, resp.To.Y, resp.Cost, resp.Cost)), nil
}

func (c *Client) handleCastingPenalty(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	var body service.CastingPenaltyRequest
	if err := convert(args, &body); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid request: %v", err)), nil
	}

	var resp service.CastingPenaltyResponse
	err := c.apiCall(ctx, "POST", rulesetPath(args, "/combat/casting-penalty"), body, &resp)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Spells cost x%g (penalty %d).", resp.Multiplier, resp.Penalty)), nil
}

// formatCostMatrix renders each plane as rows of costs in movement points
func formatCostMatrix(resp *service.CostMatrixResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ruleset: %s\n", resp.Ruleset)
	fmt.Fprintf(&b, "Cells: %d evaluated, %d enterable\n\n", resp.Stats.CellsEvaluated, resp.Stats.Enterable)

	for p, plane := range resp.Matrix {
		fmt.Fprintf(&b, "Plane %d:\n", p)
		for _, row := range plane {
			cells := make([]string, len(row))
			for x, cost := range row {
				if cost == movement.Impassable {
					cells[x] = "-"
				} else {
					cells[x] = cost.String()
				}
			}
			b.WriteString(strings.Join(cells, "\t"))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(resp.Rates) > 0 {
		b.WriteString("Rates:\n")
		ids := make([]string, 0, len(resp.Rates))
		for id := range resp.Rates {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			fmt.Fprintf(&b, "- %s: %s\n", id, resp.Rates[id])
		}
	}
	return b.String()
}
