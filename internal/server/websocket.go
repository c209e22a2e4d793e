package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/salinityengine/salinity/internal/core/events/bus"
	"github.com/salinityengine/salinity/internal/core/observability/log"
)

const (
	writeWait      = 10 * time.Second
	clientSendSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type client struct {
	conn   *websocket.Conn
	filter string
	send   chan bus.Event
}

// hub fans bus events out to websocket clients. A client whose buffer is full
// misses events rather than stalling the publisher.
type hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	logger  log.Log
}

func newHub(logger log.Log) *hub {
	return &hub{clients: make(map[*client]struct{}), logger: logger}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		_ = c.conn.Close()
	}
}

// broadcast is the bus handler.
func (h *hub) broadcast(evt bus.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if c.filter != "" && c.filter != evt.Type {
			continue
		}
		select {
		case c.send <- evt:
		default:
			h.logger.Warn("dropping event for slow client",
				log.String("event", evt.Type), log.String("remote", c.conn.RemoteAddr().String()))
		}
	}
	return nil
}

// handleWebSocket streams bus events as JSON frames. The optional "type" query
// parameter restricts the stream to one event type.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", log.Error(err))
		return
	}
	c := &client{conn: conn, filter: r.URL.Query().Get("type"), send: make(chan bus.Event, clientSendSize)}
	s.hub.add(c)
	s.logger.Debug("inspector connected", log.String("remote", conn.RemoteAddr().String()))

	go s.writePump(c)
	s.readPump(c)
}

// readPump drains control frames and unregisters the client once the
// connection drops.
func (s *Server) readPump(c *client) {
	defer func() {
		s.hub.remove(c)
		_ = c.conn.Close()
		s.logger.Debug("inspector disconnected", log.String("remote", c.conn.RemoteAddr().String()))
	}()
	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			return
		}
	}
}

func (s *Server) writePump(c *client) {
	for evt := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(evt); err != nil {
			_ = c.conn.Close()
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}
