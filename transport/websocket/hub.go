package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/wricardo/realm-movement/game/service"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Combat maps travel in set_map.
	maxMessageSize = 256 * 1024

	// Time allowed to answer one query.
	queryTimeout = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client represents a WebSocket client
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	room    string
	ruleset string
}

// Hub maintains the set of active clients, answers their queries and
// broadcasts map changes to everyone in the same battle
type Hub struct {
	service service.MovementService
	log     logrus.FieldLogger

	// Registered clients by room
	rooms map[string]map[*Client]bool

	// Combat map shared by each room, read by the client goroutines
	maps   map[string]*service.CombatMap
	mapsMu sync.RWMutex

	// Outbound messages for whole rooms
	broadcast chan *Message

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Replies addressed to a single client
	direct chan envelope

	// Closed when Run returns
	done chan struct{}
}

type envelope struct {
	client *Client
	data   []byte
}

// NewHub creates a new WebSocket hub
func NewHub(svc service.MovementService, log logrus.FieldLogger) *Hub {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Hub{
		service:    svc,
		log:        log,
		rooms:      make(map[string]map[*Client]bool),
		maps:       make(map[string]*service.CombatMap),
		broadcast:  make(chan *Message),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		direct:     make(chan envelope),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop. It returns when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case env := <-h.direct:
			h.sendTo(env.client, env.data)

		case <-ctx.Done():
			for _, clients := range h.rooms {
				for client := range clients {
					h.unregisterClient(client)
				}
			}
			return
		}
	}
}

// ServeWS upgrades the request and joins the client to a battle room. Queries
// from the client are answered against the named ruleset.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, room, ruleset string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	client := &Client{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, 256),
		room:    room,
		ruleset: ruleset,
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// BroadcastEvent sends an event to every client in a room
func (h *Hub) BroadcastEvent(room, event string, data interface{}) {
	select {
	case h.broadcast <- &Message{Room: room, Event: event, Data: data}:
	case <-h.done:
	}
}

// registerClient adds a client to a room
func (h *Hub) registerClient(client *Client) {
	if h.rooms[client.room] == nil {
		h.rooms[client.room] = make(map[*Client]bool)
	}
	h.rooms[client.room][client] = true

	h.log.WithFields(logrus.Fields{
		"room":    client.room,
		"ruleset": client.ruleset,
		"clients": len(h.rooms[client.room]),
	}).Info("client registered")
}

// unregisterClient removes a client from its room
func (h *Hub) unregisterClient(client *Client) {
	if clients, ok := h.rooms[client.room]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)

			if len(clients) == 0 {
				delete(h.rooms, client.room)
				h.dropBattleMap(client.room)
			}

			h.log.WithFields(logrus.Fields{
				"room":      client.room,
				"remaining": len(clients),
			}).Info("client unregistered")
		}
	}
}

// broadcastMessage sends a message to all clients in a room
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.log.WithError(err).Error("failed to marshal broadcast message")
		return
	}

	if clients, ok := h.rooms[message.Room]; ok {
		for client := range clients {
			h.sendTo(client, data)
		}
	}
}

// sendTo queues data for a registered client, dropping clients that fall behind
func (h *Hub) sendTo(client *Client, data []byte) {
	if !h.rooms[client.room][client] {
		return
	}
	select {
	case client.send <- data:
	default:
		h.unregisterClient(client)
	}
}

// readPump answers queries read from the WebSocket connection
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.WithError(err).Warn("WebSocket error")
			}
			break
		}

		var req Request
		var reply *Message
		if err := json.Unmarshal(data, &req); err != nil {
			reply = &Message{Room: c.room, Event: EventError, Error: "invalid message: " + err.Error()}
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
			reply = c.hub.HandleRequest(ctx, c.ruleset, c.room, &req)
			cancel()
			reply.Room = c.room
		}

		out, err := json.Marshal(reply)
		if err != nil {
			c.hub.log.WithError(err).Error("failed to marshal reply")
			continue
		}
		select {
		case c.hub.direct <- envelope{client: c, data: out}:
		case <-c.hub.done:
			return
		}

		if reply.Event == EventMapSet {
			c.hub.BroadcastEvent(c.room, EventMapUpdated, c.hub.BattleMap(c.room))
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
