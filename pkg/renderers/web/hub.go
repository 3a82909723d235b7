package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Event is one surface change pushed to connected pages.
type Event struct {
	Type   string `json:"type"`
	Region string `json:"region,omitempty"`
	Kind   string `json:"kind,omitempty"`
	Text   string `json:"text,omitempty"`
}

const (
	EventBanner     = "banner"
	EventBannerHide = "banner_hide"
	EventResult     = "result"
	EventClear      = "clear"
)

const (
	// writeWait bounds a single frame write to a page.
	writeWait = 10 * time.Second
	// sendBuffer is how many events may queue for a page before it is dropped.
	sendBuffer = 64
)

type clientConn struct {
	conn *websocket.Conn
	send chan Event
	done chan struct{}
	once sync.Once
}

func newClientConn(conn *websocket.Conn, buffer int) *clientConn {
	return &clientConn{
		conn: conn,
		send: make(chan Event, buffer),
		done: make(chan struct{}),
	}
}

// enqueue queues event without blocking and reports whether it fit.
func (c *clientConn) enqueue(event Event) bool {
	select {
	case c.send <- event:
		return true
	default:
		return false
	}
}

func (c *clientConn) close() {
	c.once.Do(func() {
		close(c.done)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}

// Hub fans surface events out to every connected page. Broadcast never
// waits on a page: each page has its own queue drained by a writer
// goroutine, and a page whose queue is full is disconnected.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *zap.Logger
	snapshot func() []Event

	mu      sync.RWMutex
	clients map[*clientConn]struct{}
}

// NewHub returns a hub. snapshot, when set, is replayed to each new client.
func NewHub(logger *zap.Logger, snapshot func() []Event) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
		logger:   logger,
		snapshot: snapshot,
		clients:  make(map[*clientConn]struct{}),
	}
}

// ServeHTTP upgrades the connection and keeps it registered until the page
// goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client, count := h.attach(conn)
	h.logger.Debug("page connected", zap.String("remote", r.RemoteAddr), zap.Int("active", count))

	go h.write(client)
	go h.read(client)
}

// attach takes the snapshot and registers the client under the hub lock, so
// every event broadcast after the snapshot reaches the new page.
func (h *Hub) attach(conn *websocket.Conn) (*clientConn, int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var replay []Event
	if h.snapshot != nil {
		replay = h.snapshot()
	}
	client := newClientConn(conn, sendBuffer+len(replay))
	for _, event := range replay {
		client.enqueue(event)
	}
	h.clients[client] = struct{}{}
	return client, len(h.clients)
}

// read drains client frames; pages never send anything meaningful.
func (h *Hub) read(client *clientConn) {
	defer h.drop(client)
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) write(client *clientConn) {
	defer h.drop(client)
	for {
		select {
		case <-client.done:
			return
		case event := <-client.send:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteJSON(event); err != nil {
				h.logger.Debug("push failed", zap.Error(err))
				return
			}
		}
	}
}

func (h *Hub) drop(client *clientConn) {
	h.mu.Lock()
	_, ok := h.clients[client]
	delete(h.clients, client)
	count := len(h.clients)
	h.mu.Unlock()
	client.close()
	if ok {
		h.logger.Debug("page disconnected", zap.Int("active", count))
	}
}

// Broadcast queues event for every client. Clients that cannot keep up are
// disconnected.
func (h *Hub) Broadcast(event Event) {
	var stalled []*clientConn
	h.mu.RLock()
	for client := range h.clients {
		if !client.enqueue(event) {
			stalled = append(stalled, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range stalled {
		h.logger.Warn("dropping page that stopped reading", zap.String("event", event.Type))
		h.drop(client)
	}
}

// Clients reports the number of connected pages.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
