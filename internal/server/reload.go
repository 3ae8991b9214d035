package server

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/seamui/seam/internal/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The reload socket is same-origin dev tooling.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ReloadHub fans a reload signal out to connected dev clients. Registered
// only when the server runs in dev mode.
type ReloadHub struct {
	log *logger.Logger

	mu    sync.Mutex
	conns map[*websocket.Conn]bool
}

// NewReloadHub creates an empty hub.
func NewReloadHub(log *logger.Logger) *ReloadHub {
	return &ReloadHub{log: log, conns: make(map[*websocket.Conn]bool)}
}

// Handler upgrades a request to a reload socket.
func (h *ReloadHub) Handler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnw("Reload socket upgrade failed", "error", err)
		return
	}

	h.mu.Lock()
	h.conns[conn] = true
	h.mu.Unlock()

	// Drain until the client goes away; the hub only ever pushes.
	go func() {
		defer h.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast tells every connected client to reload. Dead connections are
// dropped on write failure.
func (h *ReloadHub) Broadcast() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		if err := c.WriteMessage(websocket.TextMessage, []byte("reload")); err != nil {
			h.remove(c)
		}
	}
}

// Close disconnects every client.
func (h *ReloadHub) Close() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.conns = make(map[*websocket.Conn]bool)
	h.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
}

func (h *ReloadHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	conn.Close()
}
