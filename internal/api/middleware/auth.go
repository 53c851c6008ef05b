package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/taskpulse-api/internal/api/shared"
	"github.com/phrazzld/taskpulse-api/internal/platform/logger"
	"github.com/phrazzld/taskpulse-api/internal/realtime"
	"github.com/phrazzld/taskpulse-api/internal/service/auth"
)

// TokenCookieName is the cookie set by the login and register endpoints.
const TokenCookieName = realtime.TokenCookieName

// Verifier resolves a token to the identity it was issued to.
type Verifier interface {
	Verify(ctx context.Context, token string) (uuid.UUID, error)
}

// AuthMiddleware authenticates requests with the same verifier the
// websocket handshake uses.
type AuthMiddleware struct {
	verifier Verifier
	logger   *slog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(verifier Verifier, logger *slog.Logger) *AuthMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthMiddleware{
		verifier: verifier,
		logger:   logger.With(slog.String("component", "auth_middleware")),
	}
}

// Authenticate reads the token from the auth cookie, falling back to the
// Authorization header, and adds the user ID and token to the request
// context for authorized requests.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromRequest(r)
		if token == "" {
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized,
				"Authentication required", auth.ErrMissingToken, shared.WithElevatedLogLevel())
			return
		}

		userID, err := m.verifier.Verify(r.Context(), token)
		if err != nil {
			status, message := classify(err)
			if status == http.StatusInternalServerError {
				logger.FromContextOrDefault(r.Context(), m.logger).Error("failed to verify token",
					slog.String("path", r.URL.Path))
			}
			shared.RespondWithErrorAndLog(w, r, status, message, err, shared.WithElevatedLogLevel())
			return
		}

		ctx := shared.WithUserID(r.Context(), userID, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return http.StatusUnauthorized, "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrRevokedToken),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized, "Invalid or expired token"
	default:
		return http.StatusInternalServerError, "Authentication error"
	}
}

// tokenFromRequest prefers the cookie over the Authorization header.
func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(TokenCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}

// GetUserID extracts the user ID from the request context.
func GetUserID(r *http.Request) (uuid.UUID, bool) {
	return shared.GetUserID(r.Context())
}
