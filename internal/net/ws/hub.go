// Package ws serves the scene over websockets: every connected client gets
// the tick frames and overlay events, and may drive the avatar by sending
// key presses and releases.
package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"chosenoffset.com/roam/internal/controller"
	"chosenoffset.com/roam/internal/overlay"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 32
)

// client is one connection's outbound queue.
type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func newClient(id string, conn *websocket.Conn) *client {
	return &client{id: id, conn: conn, send: make(chan []byte, sendBuffer)}
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// writePump drains the queue onto the socket and closes the socket when the
// queue is closed or a write fails.
func (c *client) writePump() {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// Hub fans messages out to every connected client. A client whose queue is
// full is dropped.
type Hub struct {
	mu      sync.Mutex
	clients map[string]*client
	logger  *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{clients: make(map[string]*client), logger: logger}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c.id] = c
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("Client connected", zap.String("client", c.id), zap.Int("clients", n))
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	c, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
		c.close()
	}
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		h.logger.Info("Client disconnected", zap.String("client", id), zap.Int("clients", n))
	}
}

// sendTo queues data for one client.
func (h *Hub) sendTo(id string, data []byte) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[id]
	if !ok {
		return false
	}
	return h.enqueueLocked(c, data)
}

func (h *Hub) enqueueLocked(c *client, data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		delete(h.clients, c.id)
		c.close()
		h.logger.Warn("Dropping slow client", zap.String("client", c.id))
		return false
	}
}

// Broadcast marshals v once and queues it for every client.
func (h *Hub) Broadcast(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.clients {
		h.enqueueLocked(c, data)
	}
	return nil
}

// BroadcastFrame sends a tick frame to every client.
func (h *Hub) BroadcastFrame(f controller.Frame) {
	if err := h.Broadcast(frameMessage{Ver: ProtocolVersion, Type: TypeFrame, Frame: f}); err != nil {
		h.logger.Error("Failed to marshal frame", zap.Uint64("tick", f.Tick), zap.Error(err))
	}
}

// BroadcastEvent sends an overlay event to every client.
func (h *Hub) BroadcastEvent(ev overlay.Event) {
	if err := h.Broadcast(newEventMessage(ev)); err != nil {
		h.logger.Error("Failed to marshal event", zap.String("id", ev.ID), zap.Error(err))
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		delete(h.clients, id)
		c.close()
	}
}
