package realtime

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/phrazzld/taskpulse-api/internal/api/shared"
	"github.com/phrazzld/taskpulse-api/internal/events"
	"github.com/phrazzld/taskpulse-api/internal/platform/logger"
)

// ErrMissingToken is logged when an upgrade request carries no credential.
var ErrMissingToken = errors.New("no token presented")

// Verifier resolves a presented credential to the identity it belongs to.
type Verifier interface {
	Verify(ctx context.Context, token string) (uuid.UUID, error)
}

// Handler authenticates websocket upgrades and attaches the connection to
// the registry and hub.
type Handler struct {
	verifier Verifier
	registry *events.Registry
	hub      *Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a Handler. An empty allowedOrigins list accepts any origin.
func NewHandler(
	verifier Verifier,
	registry *events.Registry,
	hub *Hub,
	allowedOrigins []string,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		verifier: verifier,
		registry: registry,
		hub:      hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger.With(slog.String("component", "realtime_handler")),
	}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	token := TokenFromRequest(r)
	if token == "" {
		shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized,
			"Authentication error", ErrMissingToken, shared.WithElevatedLogLevel())
		return
	}

	identity, err := h.verifier.Verify(r.Context(), token)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized,
			"Authentication error", err, shared.WithElevatedLogLevel())
		return
	}

	// Upgrade writes its own HTTP error response on failure.
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug("websocket upgrade failed",
			slog.String("user_id", identity.String()),
			slog.String("error", err.Error()))
		return
	}

	c := newClient(identity, conn, h.hub.cfg, h.logger)
	c.token = token
	if err := h.hub.add(c); err != nil {
		log.Debug("rejecting connection", slog.String("error", err.Error()))
		_ = conn.Close()
		return
	}
	h.registry.Register(identity, c.id)

	log.Info("client connected",
		slog.String("user_id", identity.String()),
		slog.String("connection_id", c.id))

	go c.writePump()
	go c.readPump(func() {
		h.registry.UnregisterIf(identity, c.id)
		h.hub.remove(c.id)
		h.logger.Info("client disconnected",
			slog.String("user_id", identity.String()),
			slog.String("connection_id", c.id))
	})
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		set[strings.TrimRight(origin, "/")] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			// Non-browser clients do not send an Origin header.
			return true
		}
		_, ok := set[strings.TrimRight(origin, "/")]
		return ok
	}
}
