package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taskpulse-api/internal/config"
	"github.com/stretchr/testify/require"
)

// DefaultJWTConfig returns a standard configuration for JWT authentication suitable for testing.
func DefaultJWTConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:            "test-jwt-secret-that-is-32-chars-long",
		TokenLifetimeMinutes: 60,
		BCryptCost:           4,
	}
}

// RequireTestJWTService creates a test JWT service and uses require to handle errors.
func RequireTestJWTService(t *testing.T) JWTService {
	t.Helper()
	service, err := NewJWTService(DefaultJWTConfig())
	require.NoError(t, err, "Failed to create test JWT service")
	return service
}

// RequireTestVerifier creates an IdentityVerifier backed by a test JWT service
// and an in-memory denylist.
func RequireTestVerifier(t *testing.T) (*IdentityVerifier, JWTService) {
	t.Helper()
	tokens := RequireTestJWTService(t)
	return NewIdentityVerifier(tokens, NewMemoryDenylist(), nil), tokens
}

// RequireToken issues a token for userID with the given service.
func RequireToken(t *testing.T, tokens JWTService, userID uuid.UUID) string {
	t.Helper()
	token, _, err := tokens.GenerateToken(context.Background(), userID, "test@example.com")
	require.NoError(t, err, "Failed to generate test token")
	return token
}
