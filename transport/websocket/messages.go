package websocket

import (
	"context"
	"fmt"

	"github.com/wricardo/realm-movement/game/combat"
	"github.com/wricardo/realm-movement/game/service"
	"github.com/wricardo/realm-movement/game/topology"
)

// Actions a client may send
const (
	ActionSetMap         = "set_map"
	ActionCostToEnter    = "cost_to_enter"
	ActionCanCross       = "can_cross"
	ActionMoveCost       = "move_cost"
	ActionCastingPenalty = "casting_penalty"
)

// Events sent to clients
const (
	EventMapSet         = "map_set"
	EventMapUpdated     = "map_updated"
	EventCostToEnter    = "cost_to_enter"
	EventCanCross       = "can_cross"
	EventMoveCost       = "move_cost"
	EventCastingPenalty = "casting_penalty"
	EventError          = "error"
)

// Request is a query from a client. Tile queries without an inline Tile use
// the tile at (X, Y) of the map set earlier with set_map.
type Request struct {
	ID        string                         `json:"id,omitempty"`
	Action    string                         `json:"action"`
	Map       *service.CombatMap             `json:"map,omitempty"`
	Tile      *combat.Tile                   `json:"tile,omitempty"`
	X         int                            `json:"x"`
	Y         int                            `json:"y"`
	Direction topology.Direction             `json:"direction,omitempty"`
	Casting   *service.CastingPenaltyRequest `json:"casting,omitempty"`
}

// Message is sent to clients, either as a reply carrying the request ID or as
// a room broadcast
type Message struct {
	ID    string      `json:"id,omitempty"`
	Room  string      `json:"room"`
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// HandleRequest answers one query from a client in room against the named
// ruleset. Tile queries read the room's battle map unless the request carries
// its own.
func (h *Hub) HandleRequest(ctx context.Context, ruleset, room string, req *Request) *Message {
	data, event, err := h.dispatch(ctx, ruleset, room, req)
	if err != nil {
		h.log.WithError(err).WithField("action", req.Action).Debug("query failed")
		return &Message{ID: req.ID, Event: EventError, Error: err.Error()}
	}
	return &Message{ID: req.ID, Event: event, Data: data}
}

func (h *Hub) dispatch(ctx context.Context, ruleset, room string, req *Request) (interface{}, string, error) {
	switch req.Action {
	case ActionSetMap:
		if req.Map == nil || len(req.Map.Tiles) == 0 {
			return nil, "", fmt.Errorf("set_map requires a map with tiles")
		}
		h.setBattleMap(room, req.Map)
		return map[string]int{"width": len(req.Map.Tiles[0]), "height": len(req.Map.Tiles)}, EventMapSet, nil

	case ActionCostToEnter:
		tile := req.Tile
		if tile == nil {
			m, err := h.currentMap(room, req)
			if err != nil {
				return nil, "", err
			}
			if req.Y < 0 || req.Y >= len(m.Tiles) || req.X < 0 || req.X >= len(m.Tiles[req.Y]) {
				return nil, "", fmt.Errorf("%w: (%d,%d)", combat.ErrOutOfBounds, req.X, req.Y)
			}
			tile = &m.Tiles[req.Y][req.X]
		}
		resp, err := h.service.CombatCostToEnter(ctx, ruleset, &service.CostToEnterRequest{Tile: *tile})
		return resp, EventCostToEnter, err

	case ActionCanCross:
		m, err := h.currentMap(room, req)
		if err != nil {
			return nil, "", err
		}
		resp, err := h.service.CombatCanCross(ctx, ruleset, &service.CanCrossRequest{
			Map: *m, X: req.X, Y: req.Y, Direction: req.Direction,
		})
		return resp, EventCanCross, err

	case ActionMoveCost:
		m, err := h.currentMap(room, req)
		if err != nil {
			return nil, "", err
		}
		resp, err := h.service.CombatMoveCost(ctx, ruleset, &service.MoveCostRequest{
			Map: *m, X: req.X, Y: req.Y, Direction: req.Direction,
		})
		return resp, EventMoveCost, err

	case ActionCastingPenalty:
		if req.Casting == nil {
			return nil, "", fmt.Errorf("casting_penalty requires casting")
		}
		resp, err := h.service.CastingRangePenalty(ctx, ruleset, req.Casting)
		return resp, EventCastingPenalty, err

	default:
		return nil, "", fmt.Errorf("unknown action %q", req.Action)
	}
}

// currentMap prefers a map sent with the request over the room's battle map
func (h *Hub) currentMap(room string, req *Request) (*service.CombatMap, error) {
	if req.Map != nil {
		return req.Map, nil
	}
	m := h.BattleMap(room)
	if m == nil {
		return nil, fmt.Errorf("%s needs a map: send set_map first", req.Action)
	}
	return m, nil
}

// BattleMap returns the combat map last set in room, or nil
func (h *Hub) BattleMap(room string) *service.CombatMap {
	h.mapsMu.RLock()
	defer h.mapsMu.RUnlock()
	return h.maps[room]
}

func (h *Hub) setBattleMap(room string, m *service.CombatMap) {
	h.mapsMu.Lock()
	h.maps[room] = m
	h.mapsMu.Unlock()
}

func (h *Hub) dropBattleMap(room string) {
	h.mapsMu.Lock()
	delete(h.maps, room)
	h.mapsMu.Unlock()
}
