package middleware

import (
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/taskpulse-api/internal/redact"
)

// credentialParams are query parameters whose values are never logged.
// The websocket handshake accepts its token as ?token=.
var credentialParams = map[string]struct{}{
	"token":        {},
	"access_token": {},
}

// RequestLogger logs one structured line per request through logger.
// It replaces chi's middleware.Logger, which prints the raw request URI.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return chimw.RequestLogger(&requestLogFormatter{
		logger: logger.With(slog.String("component", "http")),
	})
}

type requestLogFormatter struct {
	logger *slog.Logger
}

// NewLogEntry implements chimw.LogFormatter.
func (f *requestLogFormatter) NewLogEntry(r *http.Request) chimw.LogEntry {
	attrs := []any{
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("remote_addr", r.RemoteAddr),
	}
	if query := redactQuery(r.URL.RawQuery); query != "" {
		attrs = append(attrs, slog.String("query", query))
	}
	if reqID := chimw.GetReqID(r.Context()); reqID != "" {
		attrs = append(attrs, slog.String("request_id", reqID))
	}
	return &requestLogEntry{logger: f.logger.With(attrs...)}
}

type requestLogEntry struct {
	logger *slog.Logger
}

// Write implements chimw.LogEntry.
func (e *requestLogEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ interface{}) {
	attrs := []any{
		slog.Int("status", status),
		slog.Int("bytes", bytes),
		slog.Int64("duration_ms", elapsed.Milliseconds()),
	}
	if status >= http.StatusInternalServerError {
		e.logger.Error("request completed", attrs...)
		return
	}
	e.logger.Info("request completed", attrs...)
}

// Panic implements chimw.LogEntry.
func (e *requestLogEntry) Panic(v interface{}, stack []byte) {
	e.logger.Error("request panicked",
		slog.Any("panic", v),
		slog.String("stack", string(stack)))
}

// redactQuery renders raw with credential values replaced and every other
// value passed through redact.String.
func redactQuery(raw string) string {
	if raw == "" {
		return ""
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return redact.RedactionPlaceholder
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		_, secret := credentialParams[strings.ToLower(k)]
		for _, v := range values[k] {
			if secret {
				v = redact.RedactedCredentialPlaceholder
			} else {
				v = redact.String(v)
			}
			parts = append(parts, k+"="+v)
		}
	}
	return strings.Join(parts, "&")
}
