package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/taskpulse-api/internal/config"
	"github.com/phrazzld/taskpulse-api/internal/events"
)

// ErrSlowConsumer is returned by Send when a connection's outbound buffer is
// full. The connection is closed and the frame is dropped.
var ErrSlowConsumer = errors.New("connection send buffer full")

// ErrHubClosed is returned when a connection is added after Close.
var ErrHubClosed = errors.New("hub closed")

// Hub tracks live websocket connections by connection id.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
	closed  bool

	cfg    config.RealtimeConfig
	logger *slog.Logger
}

// Ensure Hub implements events.Transport
var _ events.Transport = (*Hub)(nil)

// NewHub creates an empty Hub. Zero values in cfg fall back to defaults.
func NewHub(cfg config.RealtimeConfig, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 64
	}
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = 10 * time.Second
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = 60 * time.Second
	}
	if cfg.PingInterval <= 0 || cfg.PingInterval >= cfg.PongWait {
		cfg.PingInterval = cfg.PongWait * 9 / 10
	}
	return &Hub{
		clients: make(map[string]*client),
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "realtime_hub")),
	}
}

// Send implements events.Transport. It never blocks: the frame is queued on
// the connection's buffer for its write goroutine.
func (h *Hub) Send(_ context.Context, connID string, frame events.Frame) error {
	h.mu.RLock()
	c := h.clients[connID]
	h.mu.RUnlock()

	if c == nil {
		return events.ErrConnectionClosed
	}

	payload, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}

	return c.enqueue(payload)
}

// Count returns the number of live connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
	h.logger.Info("hub closed", slog.Int("connections", len(clients)))
}

// DisconnectToken closes every connection that authenticated with token and
// returns how many were closed. Their disconnect handling unregisters them.
func (h *Hub) DisconnectToken(token string) int {
	if token == "" {
		return 0
	}

	h.mu.RLock()
	var matched []*client
	for _, c := range h.clients {
		if c.token == token {
			matched = append(matched, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range matched {
		c.close()
	}
	if len(matched) > 0 {
		h.logger.Info("closed connections for revoked token", slog.Int("connections", len(matched)))
	}
	return len(matched)
}

func (h *Hub) add(c *client) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHubClosed
	}
	h.clients[c.id] = c
	return nil
}

func (h *Hub) remove(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, connID)
}
