// Package telemetry streams simulation frames to visualization clients over websockets.
package telemetry

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 64
)

// Message is the envelope of everything sent to clients.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub broadcasts messages to every connected websocket client. Slow clients are disconnected
// rather than blocking the broadcaster.
type Hub struct {
	mu       sync.Mutex
	clients  map[*client]struct{}
	greeting func() []Message
	upgrader websocket.Upgrader
	logger   kitlog.Logger
}

// NewHub returns a hub without clients.
func NewHub(logger kitlog.Logger) *Hub {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	return &Hub{
		clients:  make(map[*client]struct{}),
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		logger:   kitlog.With(logger, "subsys", "telemetry"),
	}
}

// OnConnect sets the messages sent to each client when it connects, before any broadcast.
func (h *Hub) OnConnect(f func() []Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.greeting = f
}

// ServeHTTP upgrades the request to a websocket and registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		level.Warn(h.logger).Log("remote", r.RemoteAddr, "err", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	if h.greeting != nil {
		for _, msg := range h.greeting() {
			if b, err := json.Marshal(msg); err == nil {
				select {
				case c.send <- b:
				default:
				}
			}
		}
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	level.Info(h.logger).Log("remote", r.RemoteAddr, "status", "connected")

	go h.writer(c)
	h.reader(c)
}

func (h *Hub) writer(c *client) {
	defer c.conn.Close()
	for b := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
			h.remove(c)
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// reader discards incoming messages and unregisters the client once the connection is gone.
func (h *Hub) reader(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				level.Debug(h.logger).Log("status", "read failed", "err", err)
			}
			h.remove(c)
			return
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Broadcast sends a message of the provided type to every client.
func (h *Hub) Broadcast(kind string, data any) error {
	b, err := json.Marshal(Message{Type: kind, Data: data})
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- b:
		default:
			level.Warn(h.logger).Log("status", "slow client dropped")
			h.removeLocked(c)
		}
	}
	return nil
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.removeLocked(c)
	}
}
