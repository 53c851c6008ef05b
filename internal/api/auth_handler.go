package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/taskpulse-api/internal/api/shared"
	"github.com/phrazzld/taskpulse-api/internal/domain"
	"github.com/phrazzld/taskpulse-api/internal/platform/logger"
	"github.com/phrazzld/taskpulse-api/internal/realtime"
	"github.com/phrazzld/taskpulse-api/internal/service"
	"github.com/phrazzld/taskpulse-api/internal/service/auth"
)

// TokenCookieName is the cookie carrying the auth token. The websocket
// handshake reads the same cookie.
const TokenCookieName = realtime.TokenCookieName

// TokenRevoker revokes an issued token.
type TokenRevoker interface {
	Revoke(ctx context.Context, token string) error
}

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	users         service.UserService
	tokens        auth.JWTService
	revoker       TokenRevoker
	secureCookies bool
	logger        *slog.Logger
	now           func() time.Time
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	users service.UserService,
	tokens auth.JWTService,
	revoker TokenRevoker,
	secureCookies bool,
	logger *slog.Logger,
) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		users:         users,
		tokens:        tokens,
		revoker:       revoker,
		secureCookies: secureCookies,
		logger:        logger.With(slog.String("component", "auth_handler")),
		now:           time.Now,
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req RegisterRequest
	if !parseAndValidateRequest(w, r, &req, log) {
		return
	}

	user, err := h.users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}

	h.respondWithToken(w, r, http.StatusCreated, user)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req LoginRequest
	if !parseAndValidateRequest(w, r, &req, log) {
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to authenticate user")
		return
	}

	h.respondWithToken(w, r, http.StatusOK, user)
}

// Profile handles GET /auth/profile.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := handleUserIDFromContext(w, r, nil)
	if !ok {
		return
	}

	user, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get profile")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, user)
}

// UpdateProfile handles PUT /auth/profile.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := handleUserIDFromContext(w, r, log)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if !parseAndValidateRequest(w, r, &req, log) {
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), userID, service.UpdateProfileInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update profile")
		return
	}

	log.Info("profile updated", slog.String("user_id", userID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, user)
}

// Logout handles POST /auth/logout. The token the request authenticated
// with is revoked and the cookie cleared.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := handleUserIDFromContext(w, r, log)
	if !ok {
		return
	}

	if err := h.revoker.Revoke(r.Context(), shared.GetToken(r.Context())); err != nil {
		HandleAPIError(w, r, err, "Failed to log out")
		return
	}

	http.SetCookie(w, h.cookie("", -1))
	log.Info("user logged out", slog.String("user_id", userID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, r *http.Request, status int, user *domain.User) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	token, expiresAt, err := h.tokens.GenerateToken(r.Context(), user.ID, user.Email)
	if err != nil {
		log.Error("failed to generate token",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate authentication token", err)
		return
	}

	maxAge := int(expiresAt.Sub(h.now()).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	http.SetCookie(w, h.cookie(token, maxAge))

	shared.RespondWithJSON(w, r, status, AuthResponse{
		User:      user.Summary(),
		Token:     token,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	})
}

// cookie builds the auth cookie. A negative maxAge deletes it.
func (h *AuthHandler) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     TokenCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	}
}
