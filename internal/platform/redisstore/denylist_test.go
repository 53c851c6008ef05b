package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenDenylist(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	client, err := NewClient(ctx, "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	d := NewTokenDenylist(client, nil)

	t.Run("unknown token is not revoked", func(t *testing.T) {
		ok, err := d.Contains(ctx, "unknown")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("revoked until ttl lapses", func(t *testing.T) {
		require.NoError(t, d.Add(ctx, "jti-1", time.Minute))

		ok, err := d.Contains(ctx, "jti-1")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, mr.Exists("taskpulse:revoked:jti-1"))

		mr.FastForward(2 * time.Minute)

		ok, err = d.Contains(ctx, "jti-1")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("non-positive ttl is ignored", func(t *testing.T) {
		require.NoError(t, d.Add(ctx, "jti-2", 0))
		assert.False(t, mr.Exists("taskpulse:revoked:jti-2"))
	})

	t.Run("server errors surface", func(t *testing.T) {
		mr.SetError("LOADING")
		defer mr.SetError("")

		_, err := d.Contains(ctx, "jti-1")
		assert.Error(t, err)
	})
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := NewClient(context.Background(), "://bad")
	assert.Error(t, err)
}
