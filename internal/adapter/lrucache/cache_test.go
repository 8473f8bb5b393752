package lrucache

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c := New(10, 0)

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	payload := []byte(`{"hours":4}`)
	require.NoError(t, c.Set(ctx, "cycle|g1", payload))
	payload[0] = 'X'

	got, ok, err := c.Get(ctx, "cycle|g1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"hours":4}`, string(got), "stored value must not alias the caller's slice")
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	c := New(2, 0)

	require.NoError(t, c.Set(ctx, "a", []byte("1")))
	require.NoError(t, c.Set(ctx, "b", []byte("2")))
	_, _, _ = c.Get(ctx, "a")
	require.NoError(t, c.Set(ctx, "c", []byte("3")))

	_, ok, _ := c.Get(ctx, "b")
	assert.False(t, ok, "b should be evicted")
	_, ok, _ = c.Get(ctx, "a")
	assert.True(t, ok)
	_, ok, _ = c.Get(ctx, "c")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestCache_UpdateExisting(t *testing.T) {
	ctx := context.Background()
	c := New(2, 0)

	require.NoError(t, c.Set(ctx, "a", []byte("1")))
	require.NoError(t, c.Set(ctx, "a", []byte("2")))

	got, ok, _ := c.Get(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, "2", string(got))
	assert.Equal(t, 1, c.Len())
}

func TestCache_Expiry(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	c := NewWithClock(10, time.Minute, clock)

	require.NoError(t, c.Set(ctx, "a", []byte("1")))
	clock.Advance(59 * time.Second)
	_, ok, _ := c.Get(ctx, "a")
	assert.True(t, ok)

	clock.Advance(time.Second)
	_, ok, _ = c.Get(ctx, "a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}
