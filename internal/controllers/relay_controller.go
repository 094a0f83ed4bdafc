package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"fleetops/internal/live"
)

// relayUpgrader configures the WebSocket connection.
var relayUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all for development (restrict in production!)
	},
}

// relayMessage is a payload queued for fan-out, tagged with the sender so
// it is not echoed back.
type relayMessage struct {
	sender  *websocket.Conn
	payload []byte
}

// RelayHub manages active WebSocket connections and rebroadcasts every
// message from one client to all others, verbatim.
type RelayHub struct {
	clients   map[*websocket.Conn]string
	broadcast chan relayMessage
	mu        sync.Mutex
}

// NewRelayHub creates a hub and starts its broadcast goroutine.
func NewRelayHub() *RelayHub {
	hub := &RelayHub{
		clients:   make(map[*websocket.Conn]string),
		broadcast: make(chan relayMessage, 100),
	}
	go hub.run()
	return hub
}

// relayWriteTimeout bounds each fan-out write so one stalled client
// cannot hold up the broadcast loop.
const relayWriteTimeout = 5 * time.Second

// run drains the broadcast channel and fans each payload out to every
// connection except the sender. The client set is snapshotted so writes
// happen outside the lock and registration is never blocked.
func (h *RelayHub) run() {
	for msg := range h.broadcast {
		h.mu.Lock()
		targets := make(map[*websocket.Conn]string, len(h.clients))
		for conn, clientID := range h.clients {
			if conn != msg.sender {
				targets[conn] = clientID
			}
		}
		h.mu.Unlock()

		for conn, clientID := range targets {
			conn.SetWriteDeadline(time.Now().Add(relayWriteTimeout))
			err := conn.WriteMessage(websocket.TextMessage, msg.payload)
			if err == nil {
				continue
			}
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logrus.WithFields(logrus.Fields{
					"client_id": clientID,
					"conn_ptr":  fmt.Sprintf("%p", conn),
				}).Info("Relay client closed during broadcast, removing.")
			} else {
				logrus.WithError(err).WithField("client_id", clientID).Warn("Relay write failed, dropping client.")
			}
			h.mu.Lock()
			delete(h.clients, conn)
			h.mu.Unlock()
			conn.Close()
		}
	}
}

// Register adds a connection under a generated client id. The client may
// later announce its own id via a client-register message.
func (h *RelayHub) Register(conn *websocket.Conn) string {
	id := uuid.NewString()
	h.mu.Lock()
	h.clients[conn] = id
	h.mu.Unlock()
	logrus.WithFields(logrus.Fields{
		"client_id": id,
		"conn_ptr":  fmt.Sprintf("%p", conn),
	}).Info("Client registered with RelayHub.")
	return id
}

// Rename records the id a client announced for itself.
func (h *RelayHub) Rename(conn *websocket.Conn, id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		h.clients[conn] = id
	}
}

// Unregister removes a disconnected client from the hub.
func (h *RelayHub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	id := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()
	logrus.WithFields(logrus.Fields{
		"client_id": id,
		"conn_ptr":  fmt.Sprintf("%p", conn),
	}).Info("Client unregistered from RelayHub.")
}

// Publish queues a payload for fan-out. A full channel drops the message.
func (h *RelayHub) Publish(sender *websocket.Conn, payload []byte) {
	select {
	case h.broadcast <- relayMessage{sender: sender, payload: payload}:
	default:
		logrus.Warn("Relay broadcast channel full, dropping message.")
	}
}

var relayHub = NewRelayHub()

// StartRelayForwarding subscribes the hub to the collection change bus so
// dashboard clients hear about store mutations without polling.
func StartRelayForwarding() {
	if Bus == nil {
		return
	}
	events, _ := Bus.Subscribe()
	go func() {
		for ev := range events {
			payload, err := json.Marshal(gin.H{
				"type":       "collection-change",
				"collection": ev.Collection,
				"action":     ev.Action,
				"id":         ev.ID,
			})
			if err != nil {
				continue
			}
			relayHub.Publish(nil, payload)
		}
	}()
}

// HandleRelayWebSocket is the Gin handler for /ws/relay. Every JSON text
// message from one client is rebroadcast verbatim to all other clients;
// non-JSON payloads are wrapped before fan-out.
func HandleRelayWebSocket(c *gin.Context) {
	conn, err := relayUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Error("Failed to upgrade WebSocket connection.")
		return
	}
	clientID := relayHub.Register(conn)
	defer func() {
		relayHub.Unregister(conn)
		conn.Close()
	}()

	for {
		messageType, p, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithField("client_id", clientID).Info("Relay WebSocket closed.")
			} else {
				logrus.WithError(err).WithField("client_id", clientID).Error("Error reading relay WebSocket message.")
			}
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}
		processRelayMessage(conn, clientID, p)
	}
}

// processRelayMessage inspects one inbound payload, updates hub and cache
// state for the message types it knows, then queues it for fan-out.
func processRelayMessage(conn *websocket.Conn, clientID string, p []byte) {
	var msg map[string]interface{}
	if err := json.Unmarshal(p, &msg); err != nil {
		wrapped, err := json.Marshal(gin.H{"type": "message", "data": string(p)})
		if err != nil {
			return
		}
		relayHub.Publish(conn, wrapped)
		return
	}

	switch msg["type"] {
	case "client-register", "client-hello":
		if id := stringField(msg, "id", "clientId"); id != "" {
			relayHub.Rename(conn, id)
			logrus.WithFields(logrus.Fields{
				"client_id": id,
				"conn_ptr":  fmt.Sprintf("%p", conn),
			}).Debug("Relay client announced its id.")
		}
	case "position-update", "client-position":
		if pos, ok := positionFromMessage(msg); ok {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			Live.Set(ctx, pos)
			cancel()
		}
	case "client-stop":
		if id := stringField(msg, "id", "truckId", "clientId"); id != "" {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			Live.Clear(ctx, id)
			cancel()
		}
	}

	relayHub.Publish(conn, p)
}

// positionFromMessage pulls a GPS fix out of a position message. Both the
// short and long field names seen from clients are accepted.
func positionFromMessage(msg map[string]interface{}) (live.Position, bool) {
	id := stringField(msg, "id", "truckId")
	lat, okLat := numberField(msg, "lat", "latitude")
	lng, okLng := numberField(msg, "lng", "longitude")
	if id == "" || !okLat || !okLng {
		return live.Position{}, false
	}
	pos := live.Position{
		ID:        id,
		Lat:       lat,
		Lng:       lng,
		Timestamp: time.Now().UTC(),
	}
	if speed, ok := numberField(msg, "speed"); ok {
		pos.Speed = speed
	}
	if bearing, ok := numberField(msg, "bearing", "heading"); ok {
		pos.Bearing = bearing
	}
	if ts := stringField(msg, "timestamp"); ts != "" {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			pos.Timestamp = t
		}
	}
	return pos, true
}

func stringField(msg map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v, ok := msg[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func numberField(msg map[string]interface{}, keys ...string) (float64, bool) {
	for _, k := range keys {
		if v, ok := msg[k].(float64); ok {
			return v, true
		}
	}
	return 0, false
}
