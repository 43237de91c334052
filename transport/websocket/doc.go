// Package websocket provides the WebSocket query stream for tactical battle
// clients.
//
// The websocket package implements:
//   - Per-battle rooms of connected clients
//   - Combat queries answered over the socket
//   - Broadcast of combat map changes to everyone in the battle
//   - Connection lifecycle management
//
// Architecture:
//
// A central Hub owns every connection. Each client connection has a read
// goroutine that answers queries and a write goroutine that drains its send
// queue. The hub's event loop is the only code touching the room table; the
// battle maps sit behind a mutex since read goroutines query them.
//
// Message Protocol:
//
// Clients connect to /ws?ruleset=default&battle=b1 and send JSON requests:
//   - {"id": "1", "action": "set_map", "map": {"type": "diamond", "tiles": [[...]]}}
//   - {"id": "2", "action": "move_cost", "x": 3, "y": 4, "direction": 3}
//   - {"id": "3", "action": "cost_to_enter", "x": 3, "y": 6}
//   - {"id": "4", "action": "can_cross", "x": 3, "y": 4, "direction": 1}
//   - {"id": "5", "action": "casting_penalty", "casting": {...}}
//
// Replies echo the request id with the matching event name, or event "error".
// A set_map replaces the battle map shared by every client in the room and is
// broadcast to the room as "map_updated". The map is dropped when the last
// client leaves.
//
// Usage:
//
//	hub := websocket.NewHub(movementService, logger)
//	go hub.Run(ctx)
//
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("battle"), r.URL.Query().Get("ruleset"))
//	})
package websocket
