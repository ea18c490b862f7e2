package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ari-dashboard/backend/internal/infrastructure/logging"
	"github.com/ari-dashboard/backend/internal/infrastructure/monitoring"
	"github.com/ari-dashboard/backend/internal/shared/types"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Config defines hub configuration.
type Config struct {
	// SendBuffer is the per-client queue length. Events beyond it are
	// dropped for that client.
	SendBuffer int
	// AllowedOrigins lists browser origins allowed to connect. "*" allows
	// any origin; requests without an Origin header are always allowed.
	AllowedOrigins []string
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub fans events out to every connected display.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{} // Protected by mu
	closed  bool                 // Protected by mu

	upgrader websocket.Upgrader
	buffer   int
	logger   *logging.Logger
	metrics  *monitoring.Metrics
}

// NewHub creates a hub with no clients.
func NewHub(cfg Config, logger *logging.Logger) *Hub {
	buffer := cfg.SendBuffer
	if buffer <= 0 {
		buffer = 64
	}
	h := &Hub{
		clients: make(map[*client]struct{}),
		buffer:  buffer,
		logger:  logger.Named("ws"),
	}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: originChecker(cfg.AllowedOrigins),
	}
	return h
}

// WithMetrics adds metrics tracking to the hub
func (h *Hub) WithMetrics(metrics *monitoring.Metrics) *Hub {
	h.metrics = metrics
	return h
}

func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := set["*"]; ok {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// Publish encodes event once and queues it for every client. It never
// blocks: a client whose queue is full misses the event.
func (h *Hub) Publish(event types.Event) {
	frame, err := sonic.Marshal(event)
	if err != nil {
		h.logger.Error("Failed to encode event", zap.String("event", string(event.Type)), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.metrics != nil {
		h.metrics.RecordEvent(string(event.Type))
	}
	for c := range h.clients {
		select {
		case c.send <- frame:
		default:
			h.logger.Warn("Dropping event for slow client",
				zap.String("client_id", c.id),
				zap.String("event", string(event.Type)),
			)
			if h.metrics != nil {
				h.metrics.RecordDropped(string(event.Type))
			}
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	if h.metrics != nil {
		h.metrics.IncWSConnections()
	}
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	if h.metrics != nil {
		h.metrics.DecWSConnections()
	}
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.unregister(c)
	}
}

// HandleConnection upgrades the request and serves the client until it
// disconnects.
func (h *Hub) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	cl := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, h.buffer),
	}
	if !h.register(cl) {
		conn.Close()
		return
	}
	h.logger.Info("Display connected",
		zap.String("client_id", cl.id),
		zap.String("remote", c.ClientIP()),
	)

	go h.writePump(cl)
	h.readPump(cl)
}

// readPump answers client pings until the connection fails.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		h.logger.Info("Display disconnected", zap.String("client_id", c.id))
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("WebSocket read error", zap.String("client_id", c.id), zap.Error(err))
			}
			return
		}

		var msg struct {
			Event string `json:"event"`
		}
		if err := sonic.Unmarshal(data, &msg); err != nil {
			continue
		}
		if msg.Event == "ping" {
			h.reply(c, types.Event{Type: "pong"})
		}
	}
}

func (h *Hub) reply(c *client, event types.Event) {
	frame, err := sonic.Marshal(event)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- frame:
	default:
	}
}

// writePump drains the client's queue onto the connection and keeps it
// alive with pings. It owns all writes to conn.
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
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
