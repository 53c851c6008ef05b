package realtime

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/phrazzld/taskpulse-api/internal/config"
	"github.com/phrazzld/taskpulse-api/internal/events"
)

// maxMessageSize bounds inbound client messages. Clients have nothing to say
// beyond control frames.
const maxMessageSize = 512

// client is one live websocket connection. identity is fixed at handshake.
type client struct {
	id       string
	identity uuid.UUID
	// token is the credential presented at handshake, kept so the
	// connection can be hung up when that token is revoked.
	token    string
	conn     *websocket.Conn
	cfg      config.RealtimeConfig
	logger   *slog.Logger

	mu     sync.Mutex
	send   chan []byte
	done   chan struct{}
	closed bool
}

func newClient(identity uuid.UUID, conn *websocket.Conn, cfg config.RealtimeConfig, logger *slog.Logger) *client {
	id := uuid.NewString()
	return &client{
		id:       id,
		identity: identity,
		conn:     conn,
		cfg:      cfg,
		logger: logger.With(
			slog.String("connection_id", id),
			slog.String("user_id", identity.String())),
		send: make(chan []byte, cfg.SendBuffer),
		done: make(chan struct{}),
	}
}

// enqueue queues payload for the write goroutine without blocking.
func (c *client) enqueue(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return events.ErrConnectionClosed
	}

	select {
	case c.send <- payload:
		return nil
	default:
		c.closeLocked()
		return ErrSlowConsumer
	}
}

// close signals the write goroutine to send a close frame and hang up.
// Safe to call more than once.
func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *client) closeLocked() {
	if !c.closed {
		c.closed = true
		close(c.done)
	}
}

// writePump owns every write to the connection.
func (c *client) writePump() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.logger.Debug("write failed", slog.String("error", err.Error()))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("ping failed", slog.String("error", err.Error()))
				return
			}
		case <-c.done:
			_ = c.conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
				time.Now().Add(c.cfg.WriteWait))
			return
		}
	}
}

// readPump discards client messages and returns when the connection drops.
// onClose runs exactly once, after the connection is gone.
func (c *client) readPump(onClose func()) {
	defer func() {
		c.close()
		_ = c.conn.Close()
		onClose()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("connection closed unexpectedly", slog.String("error", err.Error()))
			}
			return
		}
	}
}
