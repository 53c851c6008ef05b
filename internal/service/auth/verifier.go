package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskpulse-api/internal/platform/logger"
)

// IdentityVerifier turns a bearer credential into the identity of the user
// it was issued to. Both the HTTP middleware and the websocket handshake use
// it, so a token accepted by one is accepted by the other.
type IdentityVerifier struct {
	tokens   JWTService
	denylist Denylist
	logger   *slog.Logger
	now      func() time.Time
}

// NewIdentityVerifier creates an IdentityVerifier. A nil denylist disables revocation.
func NewIdentityVerifier(tokens JWTService, denylist Denylist, logger *slog.Logger) *IdentityVerifier {
	if tokens == nil {
		panic("tokens cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &IdentityVerifier{
		tokens:   tokens,
		denylist: denylist,
		logger:   logger.With(slog.String("component", "identity_verifier")),
		now:      time.Now,
	}
}

// Verify validates token and returns the user identity it carries.
// Every failure is reported as one of the package's sentinel errors.
func (v *IdentityVerifier) Verify(ctx context.Context, token string) (uuid.UUID, error) {
	claims, err := v.claims(ctx, token)
	if err != nil {
		return uuid.Nil, err
	}
	return claims.UserID, nil
}

// Claims is Verify returning the full claim set.
func (v *IdentityVerifier) Claims(ctx context.Context, token string) (*Claims, error) {
	return v.claims(ctx, token)
}

func (v *IdentityVerifier) claims(ctx context.Context, token string) (*Claims, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	claims, err := v.tokens.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if v.denylist != nil && claims.ID != "" {
		revoked, err := v.denylist.Contains(ctx, claims.ID)
		if err != nil {
			// Fail closed: a token that cannot be checked is not accepted.
			logger.FromContextOrDefault(ctx, v.logger).Error("failed to check token denylist",
				slog.String("error", err.Error()))
			return nil, fmt.Errorf("%w: denylist unavailable", ErrInvalidToken)
		}
		if revoked {
			return nil, ErrRevokedToken
		}
	}

	return claims, nil
}

// Revoke denylists token until its natural expiry. Revoking a token that is
// already invalid is a no-op.
func (v *IdentityVerifier) Revoke(ctx context.Context, token string) error {
	claims, err := v.tokens.ValidateToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrExpiredToken) || errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrMissingToken) {
			return nil
		}
		return err
	}
	if v.denylist == nil || claims.ID == "" {
		return nil
	}

	ttl := claims.ExpiresAt.Sub(v.now())
	if err := v.denylist.Add(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	logger.FromContextOrDefault(ctx, v.logger).Info("token revoked",
		slog.String("user_id", claims.UserID.String()),
		slog.String("token_id", claims.ID))
	return nil
}
