package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_UniqueIDs(t *testing.T) {
	r := NewRegistry()
	a, _ := r.Register(context.Background(), "alice")
	b, _ := r.Register(context.Background(), "bob")

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "bob", b.User)
	assert.Equal(t, 2, r.Count())

	r.Unregister(a.ID)
	assert.Equal(t, 1, r.Count())
	r.Unregister(a.ID)
	assert.Equal(t, 1, r.Count())
}

func TestUnregister_CancelsContext(t *testing.T) {
	r := NewRegistry()
	h, ctx := r.Register(context.Background(), "alice")
	r.Unregister(h.ID)
	assert.Error(t, ctx.Err())
}

func TestShutdown_StopsGames(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < 3; i++ {
		h, ctx := r.Register(context.Background(), "p")
		go func() {
			<-ctx.Done()
			r.Unregister(h.ID)
		}()
	}

	assert.True(t, r.Shutdown(time.Second))
	assert.Zero(t, r.Count())

	_, ctx := r.Register(context.Background(), "late")
	assert.Error(t, ctx.Err(), "games registered after shutdown start cancelled")
	assert.Zero(t, r.Count())
}

func TestShutdown_Timeout(t *testing.T) {
	r := NewRegistry()
	_, ctx := r.Register(context.Background(), "stuck")

	require.False(t, r.Shutdown(50*time.Millisecond))
	assert.Error(t, ctx.Err())
	assert.Equal(t, 1, r.Count())
}
