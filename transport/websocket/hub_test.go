package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/realm-movement/game/combat"
	"github.com/wricardo/realm-movement/game/config"
	"github.com/wricardo/realm-movement/game/service"
	"github.com/wricardo/realm-movement/game/topology"
)

const testRuleset = `{
  "name": "battle",
  "tile_types": [{"id": "TT_GRASS"}],
  "combat_tile_types": [
    {"id": "CTL_GRASS", "double_movement": 2},
    {"id": "CTL_ROUGH", "double_movement": 4},
    {"id": "CTB_HOUSE", "blocks_movement": true}
  ],
  "combat_tile_borders": [
    {"id": "CTB_STONE_WALL", "blocks_movement": "cannot_cross_specified_borders"}
  ]
}`

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "battle.json"), []byte(testRuleset), 0644))

	log, _ := test.NewNullLogger()
	rulesets, err := config.NewManager(dir, log)
	require.NoError(t, err)

	return NewHub(service.NewMovementService(rulesets, log), log)
}

func grassTile() combat.Tile {
	return combat.Tile{Layers: []combat.Layer{{Kind: combat.LayerTerrain, TileTypeID: "CTL_GRASS"}}}
}

func testMap() *service.CombatMap {
	walled := grassTile()
	walled.BorderIDs = []string{"CTB_STONE_WALL"}
	walled.BorderDirections = "3"
	rough := combat.Tile{Layers: []combat.Layer{{Kind: combat.LayerTerrain, TileTypeID: "CTL_ROUGH"}}}

	return &service.CombatMap{
		Type:  topology.Square,
		Tiles: [][]combat.Tile{{grassTile(), walled, rough}},
	}
}

func TestNewHub(t *testing.T) {
	hub := NewHub(nil, nil)

	require.NotNil(t, hub)
	assert.NotNil(t, hub.rooms)
	assert.NotNil(t, hub.broadcast)
	assert.NotNil(t, hub.register)
	assert.NotNil(t, hub.unregister)
	assert.NotNil(t, hub.log)
}

func TestHubUnregisterDropsBattleMap(t *testing.T) {
	hub := NewHub(nil, nil)
	a := &Client{hub: hub, room: "b1", send: make(chan []byte, 1)}
	b := &Client{hub: hub, room: "b1", send: make(chan []byte, 1)}
	hub.registerClient(a)
	hub.registerClient(b)
	hub.setBattleMap("b1", testMap())

	hub.unregisterClient(a)
	assert.NotNil(t, hub.BattleMap("b1"), "map stays while the battle has clients")

	hub.unregisterClient(b)
	assert.Nil(t, hub.BattleMap("b1"))
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub(nil, nil)
	client := &Client{hub: hub, room: "b1", send: make(chan []byte, 256)}

	hub.registerClient(client)
	assert.True(t, hub.rooms["b1"][client])

	hub.unregisterClient(client)
	_, exists := hub.rooms["b1"]
	assert.False(t, exists, "empty room should be removed")

	_, open := <-client.send
	assert.False(t, open, "send channel should be closed")
}

func TestHubBroadcastMessage(t *testing.T) {
	hub := NewHub(nil, nil)
	a := &Client{hub: hub, room: "b1", send: make(chan []byte, 1)}
	b := &Client{hub: hub, room: "b2", send: make(chan []byte, 1)}
	hub.registerClient(a)
	hub.registerClient(b)

	hub.broadcastMessage(&Message{Room: "b1", Event: EventMapUpdated})

	select {
	case data := <-a.send:
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, EventMapUpdated, msg.Event)
	default:
		t.Fatal("client in room should receive the broadcast")
	}
	assert.Len(t, b.send, 0)

	// a full queue drops the client
	a.send <- []byte("x")
	hub.broadcastMessage(&Message{Room: "b1", Event: EventMapUpdated})
	assert.False(t, hub.rooms["b1"][a])
}

func TestHandleRequest(t *testing.T) {
	hub := newTestHub(t)
	ctx := context.Background()

	reply := hub.HandleRequest(ctx, "battle", "b1", &Request{ID: "1", Action: ActionCanCross, X: 0, Y: 0, Direction: 3})
	assert.Equal(t, EventError, reply.Event)
	assert.Contains(t, reply.Error, "set_map")

	reply = hub.HandleRequest(ctx, "battle", "b1", &Request{ID: "2", Action: ActionSetMap, Map: testMap()})
	require.Equal(t, EventMapSet, reply.Event, reply.Error)
	assert.Equal(t, "2", reply.ID)
	require.NotNil(t, hub.BattleMap("b1"))
	assert.Nil(t, hub.BattleMap("b2"))

	reply = hub.HandleRequest(ctx, "battle", "b2", &Request{ID: "2b", Action: ActionMoveCost, X: 0, Y: 0, Direction: 3})
	assert.Equal(t, EventError, reply.Event, "other rooms do not see the map")

	reply = hub.HandleRequest(ctx, "battle", "b1", &Request{ID: "3", Action: ActionCanCross, X: 1, Y: 0, Direction: 3})
	require.Equal(t, EventCanCross, reply.Event, reply.Error)
	assert.False(t, reply.Data.(*service.CanCrossResponse).CanCross)

	reply = hub.HandleRequest(ctx, "battle", "b1", &Request{ID: "4", Action: ActionMoveCost, X: 0, Y: 0, Direction: 3})
	require.Equal(t, EventMoveCost, reply.Event, reply.Error)
	assert.Equal(t, 2, int(reply.Data.(*service.MoveCostResponse).Cost))

	reply = hub.HandleRequest(ctx, "battle", "b1", &Request{ID: "5", Action: ActionCostToEnter, X: 2, Y: 0})
	require.Equal(t, EventCostToEnter, reply.Event, reply.Error)
	assert.Equal(t, 4, int(reply.Data.(*service.CostToEnterResponse).Cost))

	house := combat.Tile{Layers: []combat.Layer{{Kind: combat.LayerBuildingsAndFeatures, TileTypeID: "CTB_HOUSE"}}}
	reply = hub.HandleRequest(ctx, "battle", "b1", &Request{ID: "6", Action: ActionCostToEnter, Tile: &house})
	require.Equal(t, EventCostToEnter, reply.Event, reply.Error)
	assert.False(t, reply.Data.(*service.CostToEnterResponse).Enterable)

	reply = hub.HandleRequest(ctx, "battle", "b1", &Request{ID: "7", Action: ActionCostToEnter, X: 9, Y: 0})
	assert.Equal(t, EventError, reply.Event)

	reply = hub.HandleRequest(ctx, "battle", "b1", &Request{ID: "8", Action: ActionCastingPenalty, Casting: &service.CastingPenaltyRequest{
		Map:    topology.CoordinateSystem{Type: topology.Square, Width: 60, Height: 40, Depth: 1},
		Combat: topology.Coords{X: 1, Y: 1},
	}})
	require.Equal(t, EventCastingPenalty, reply.Event, reply.Error)
	assert.Equal(t, 6, reply.Data.(*service.CastingPenaltyResponse).Penalty)

	reply = hub.HandleRequest(ctx, "battle", "b1", &Request{ID: "9", Action: "fly"})
	assert.Equal(t, EventError, reply.Event)

	reply = hub.HandleRequest(ctx, "missing", "b1", &Request{ID: "10", Action: ActionMoveCost, Direction: 3})
	assert.Equal(t, EventError, reply.Event)
}

func TestServeWS(t *testing.T) {
	hub := newTestHub(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, "b1", "battle")
	}))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() Message {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var msg Message
		require.NoError(t, conn.ReadJSON(&msg))
		return msg
	}

	require.NoError(t, conn.WriteJSON(Request{ID: "a", Action: ActionSetMap, Map: testMap()}))

	// the reply and the room broadcast can arrive in either order
	events := map[string]Message{}
	for i := 0; i < 2; i++ {
		msg := read()
		events[msg.Event] = msg
	}
	assert.Equal(t, "a", events[EventMapSet].ID)
	assert.Equal(t, "b1", events[EventMapUpdated].Room)

	require.NoError(t, conn.WriteJSON(Request{ID: "b", Action: ActionMoveCost, X: 0, Y: 0, Direction: 3}))
	msg := read()
	assert.Equal(t, "b", msg.ID)
	assert.Equal(t, EventMoveCost, msg.Event)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	msg = read()
	assert.Equal(t, EventError, msg.Event)
}

func TestServeWS_SharedBattleMap(t *testing.T) {
	hub := newTestHub(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("battle"), "battle")
	}))
	defer server.Close()

	dial := func(battle string) *websocket.Conn {
		t.Helper()
		url := "ws" + strings.TrimPrefix(server.URL, "http") + "?battle=" + battle
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		t.Cleanup(func() { conn.Close() })
		return conn
	}
	read := func(conn *websocket.Conn) Message {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var msg Message
		require.NoError(t, conn.ReadJSON(&msg))
		return msg
	}

	a := dial("b1")
	b := dial("b1")
	other := dial("b2")

	// a reply proves the connection is registered with the hub
	for _, conn := range []*websocket.Conn{a, b, other} {
		require.NoError(t, conn.WriteJSON(Request{ID: "warm", Action: ActionMoveCost, X: 0, Y: 0, Direction: 3}))
		msg := read(conn)
		require.Equal(t, EventError, msg.Event)
		assert.Contains(t, msg.Error, "set_map")
	}

	require.NoError(t, a.WriteJSON(Request{ID: "set", Action: ActionSetMap, Map: testMap()}))
	for i := 0; i < 2; i++ {
		read(a)
	}

	updated := read(b)
	require.Equal(t, EventMapUpdated, updated.Event)
	assert.Equal(t, "b1", updated.Room)

	require.NoError(t, b.WriteJSON(Request{ID: "q", Action: ActionMoveCost, X: 0, Y: 0, Direction: 3}))
	msg := read(b)
	require.Equal(t, EventMoveCost, msg.Event, msg.Error)
	assert.Equal(t, "q", msg.ID)

	require.NoError(t, b.WriteJSON(Request{ID: "w", Action: ActionCanCross, X: 1, Y: 0, Direction: 3}))
	msg = read(b)
	require.Equal(t, EventCanCross, msg.Event, msg.Error)
	data, ok := msg.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, false, data["can_cross"])

	require.NoError(t, other.WriteJSON(Request{ID: "x", Action: ActionMoveCost, X: 0, Y: 0, Direction: 3}))
	msg = read(other)
	assert.Equal(t, EventError, msg.Event, "a different battle keeps its own map")
}
