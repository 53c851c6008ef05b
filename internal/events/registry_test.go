package events

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_LastConnectWins(t *testing.T) {
	r := NewRegistry()
	user := uuid.New()

	for i := 0; i < 5; i++ {
		r.Register(user, fmt.Sprintf("conn-%d", i))
	}

	connID, ok := r.Lookup(user)
	require.True(t, ok)
	assert.Equal(t, "conn-4", connID)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_UnregisterIsIdempotent(t *testing.T) {
	r := NewRegistry()
	user := uuid.New()
	other := uuid.New()
	r.Register(other, "other-conn")

	assert.NotPanics(t, func() { r.Unregister(user) }, "unknown identity")

	r.Register(user, "conn")
	r.Unregister(user)
	r.Unregister(user)

	_, ok := r.Lookup(user)
	assert.False(t, ok)

	connID, ok := r.Lookup(other)
	assert.True(t, ok, "other identities are untouched")
	assert.Equal(t, "other-conn", connID)
}

func TestRegistry_UnregisterIfKeepsNewerConnection(t *testing.T) {
	r := NewRegistry()
	user := uuid.New()

	r.Register(user, "old")
	r.Register(user, "new")

	// The replaced connection disconnects late.
	assert.False(t, r.UnregisterIf(user, "old"))
	connID, ok := r.Lookup(user)
	require.True(t, ok)
	assert.Equal(t, "new", connID)

	assert.True(t, r.UnregisterIf(user, "new"))
	assert.False(t, r.UnregisterIf(user, "new"), "second disconnect is a no-op")
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_ConnectionsIsSnapshot(t *testing.T) {
	r := NewRegistry()
	a, b := uuid.New(), uuid.New()
	r.Register(a, "a")
	r.Register(b, "b")

	snapshot := r.Connections()
	r.Unregister(a)

	assert.Len(t, snapshot, 2)
	assert.ElementsMatch(t, []Entry{{a, "a"}, {b, "b"}}, snapshot)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_ConcurrentUse(t *testing.T) {
	r := NewRegistry()
	users := make([]uuid.UUID, 20)
	for i := range users {
		users[i] = uuid.New()
	}

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := users[i%len(users)]
			connID := fmt.Sprintf("conn-%d", i)
			r.Register(user, connID)
			_, _ = r.Lookup(user)
			_ = r.Connections()
			r.UnregisterIf(user, connID)
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, r.Len(), len(users))
}
