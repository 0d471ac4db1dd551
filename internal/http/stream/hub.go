// Package stream pushes conversation updates to browser clients over
// websockets.
package stream

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bprateek14/video-generation-platform/internal/infra"
	"github.com/bprateek14/video-generation-platform/internal/library"
)

const (
	EventMessage                      = "message"
	EventCredentialSelectionRequested = "credential_selection_requested"
)

const (
	sendBuffer = 32
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	pongWait   = 2 * pingPeriod
)

// Event is the JSON frame sent to clients.
type Event struct {
	Type    string           `json:"type"`
	Message *library.Message `json:"message,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans events out to every connected client. Slow clients whose buffer
// fills up are disconnected.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *infra.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewHub creates a Hub accepting connections from allowedOrigins. A "*" entry
// allows any origin; requests without an Origin header are always accepted.
func NewHub(allowedOrigins []string, logger *infra.Logger) *Hub {
	if logger == nil {
		logger = infra.NopLogger()
	}
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	h := &Hub{logger: logger, clients: make(map[*client]struct{})}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			if _, ok := allowed["*"]; ok {
				return true
			}
			_, ok := allowed[origin]
			return ok
		},
	}
	return h
}

// PublishMessage broadcasts a message change.
func (h *Hub) PublishMessage(msg library.Message) {
	h.broadcast(Event{Type: EventMessage, Message: &msg})
}

// PublishSelectionRequested asks clients to show the key selector.
func (h *Hub) PublishSelectionRequested() {
	h.broadcast(Event{Type: EventCredentialSelectionRequested})
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) broadcast(ev Event) {
	frame, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error().Err(err).Str("type", ev.Type).Msg("stream: encode event")
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- frame:
		default:
			h.logger.Warn().Msg("stream: dropping slow client")
			h.removeLocked(c)
		}
	}
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// ServeHTTP upgrades the request and streams events until the client leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug().Err(err).Msg("stream: upgrade failed")
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug().Str("remote", r.RemoteAddr).Msg("stream: client connected")

	go h.writeLoop(c)
	h.readLoop(c)
}

// readLoop drains client frames so control messages are processed, and
// unregisters the client once the connection fails.
func (h *Hub) readLoop(c *client) {
	defer func() {
		h.mu.Lock()
		h.removeLocked(c)
		h.mu.Unlock()
		_ = c.conn.Close()
	}()
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
