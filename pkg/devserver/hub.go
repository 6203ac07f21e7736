package devserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/autotrack/pkg/host"
	"github.com/vango-dev/autotrack/pkg/vdom"
)

// FrameType is the type of a websocket frame.
type FrameType string

const (
	FramePatches FrameType = "patches"
	FrameEvent   FrameType = "event"
	FrameError   FrameType = "error"
)

// Frame is a message sent to browsers.
type Frame struct {
	Type     FrameType    `json:"type"`
	Instance uint64       `json:"instance,omitempty"`
	Patches  []vdom.Patch `json:"patches,omitempty"`
	Code     string       `json:"code,omitempty"`
	Error    string       `json:"error,omitempty"`
}

// Event is a message received from browsers.
type Event struct {
	Type  FrameType `json:"type"`
	HID   string    `json:"hid"`
	Event string    `json:"event"`
	Value string    `json:"value,omitempty"`
}

// client is one connected browser. Writes are serialized by mu.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(data []byte, timeout time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(timeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub fans committed patches out to every connected browser. It
// implements host.Committer.
type Hub struct {
	clients      map[*client]bool
	mu           sync.RWMutex
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
	logger       *slog.Logger

	// onEvent handles frames read from a connection.
	onEvent func(c *client, ev Event)
}

// NewHub creates a hub.
func NewHub(logger *slog.Logger, writeTimeout time.Duration) *Hub {
	return &Hub{
		clients: make(map[*client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins in dev
			},
		},
		writeTimeout: writeTimeout,
		logger:       logger,
	}
}

// Commit implements host.Committer. Inserted and replaced nodes are
// rendered to HTML before the frame is broadcast.
func (h *Hub) Commit(inst *host.Instance, patches []vdom.Patch) {
	if err := inst.Tree().Renderer().RenderPatches(patches); err != nil {
		h.logger.Error("render patches", "instance", inst.ID(), "error", err)
		return
	}
	h.broadcast(Frame{
		Type:     FramePatches,
		Instance: inst.ID(),
		Patches:  patches,
	})
}

// HandleWebSocket upgrades the connection and reads event frames until
// the client disconnects.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn}

	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	h.logger.Debug("client connected", "remote", req.RemoteAddr)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				h.logger.Error("read error", "error", err)
			}
			break
		}

		var ev Event
		if err := json.Unmarshal(msg, &ev); err != nil || ev.Type != FrameEvent {
			h.send(c, Frame{Type: FrameError, Code: "E060", Error: "invalid event frame"})
			continue
		}
		if h.onEvent != nil {
			h.onEvent(c, ev)
		}
	}

	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	conn.Close()
}

// broadcast sends a frame to all clients. Clients that fail to accept it
// within the write timeout are dropped.
func (h *Hub) broadcast(frame Frame) {
	data, err := json.Marshal(frame)
	if err != nil {
		h.logger.Error("encode frame", "error", err)
		return
	}

	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.write(data, h.writeTimeout); err != nil {
			h.logger.Debug("dropping client", "error", err)
			h.mu.Lock()
			delete(h.clients, c)
			h.mu.Unlock()
			c.conn.Close()
		}
	}
}

// send writes a frame to one client.
func (h *Hub) send(c *client, frame Frame) {
	data, err := json.Marshal(frame)
	if err != nil {
		return
	}
	if err := c.write(data, h.writeTimeout); err != nil {
		h.logger.Debug("write failed", "error", err)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close closes all client connections.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		c.conn.Close()
		delete(h.clients, c)
	}
}
