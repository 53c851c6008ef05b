package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskpulse-api/internal/platform/logger"
)

// Router delivers task events to the connections held in a Registry.
type Router struct {
	registry  *Registry
	transport Transport
	logger    *slog.Logger
}

// Ensure Router implements Notifier
var _ Notifier = (*Router)(nil)

// NewRouter creates a Router. registry and transport are required.
func NewRouter(registry *Registry, transport Transport, logger *slog.Logger) *Router {
	if registry == nil {
		panic("registry cannot be nil")
	}
	if transport == nil {
		panic("transport cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		registry:  registry,
		transport: transport,
		logger:    logger.With(slog.String("component", "event_router")),
	}
}

// Notify implements Notifier.
func (r *Router) Notify(ctx context.Context, events ...TaskEvent) {
	for _, ev := range events {
		r.route(ctx, ev)
	}
}

func (r *Router) route(ctx context.Context, ev TaskEvent) {
	log := logger.FromContextOrDefault(ctx, r.logger).With(
		slog.String("event", ev.Kind.String()),
		slog.String("task_id", ev.TaskID.String()))

	defer func() {
		if p := recover(); p != nil {
			log.Error("recovered panic while routing event", slog.Any("panic", p))
		}
	}()

	frame, err := frameFor(ev)
	if err != nil {
		log.Error("dropping malformed event", slog.String("error", err.Error()))
		return
	}

	switch ev.Kind {
	case Created, Updated, Deleted:
		entries := r.registry.Connections()
		log.Debug("broadcasting event", slog.Int("connection_count", len(entries)))
		for _, entry := range entries {
			r.deliver(ctx, log, entry, frame)
		}
	case Assigned:
		connID, ok := r.registry.Lookup(ev.Assignee)
		if !ok {
			log.Debug("assignee not connected, dropping event",
				slog.String("assignee_id", ev.Assignee.String()))
			return
		}
		r.deliver(ctx, log, Entry{Identity: ev.Assignee, ConnID: connID}, frame)
	default:
		log.Warn("unknown event kind", slog.Int("kind", int(ev.Kind)))
	}
}

// deliver pushes one frame and logs any failure. A panicking transport is
// contained to this recipient.
func (r *Router) deliver(ctx context.Context, log *slog.Logger, entry Entry, frame Frame) {
	err := func() (err error) {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("transport panic: %v", p)
			}
		}()
		return r.transport.Send(ctx, entry.ConnID, frame)
	}()
	if err == nil {
		return
	}

	attrs := []any{
		slog.String("connection_id", entry.ConnID),
		slog.String("user_id", entry.Identity.String()),
		slog.String("error", err.Error()),
	}
	if errors.Is(err, ErrConnectionClosed) {
		log.Debug("connection already closed", attrs...)
		return
	}
	log.Warn("failed to deliver event", attrs...)
}
