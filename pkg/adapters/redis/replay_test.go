package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dexxiez/analog-nest-rpc/pkg/adapters/redis"
	"github.com/dexxiez/analog-nest-rpc/pkg/ports"
)

func newStore(t *testing.T, opts ...redis.Option) (*redis.ReplayStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	return redis.NewFromClient(client, opts...), mr
}

func TestReplayStoreRoundTrip(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ports.ErrReplayMiss)

	require.NoError(t, store.Set(ctx, "call-1", []byte(`"Hello, Ada"`)))

	got, err := store.Get(ctx, "call-1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`"Hello, Ada"`), got)
}

func TestReplayStoreUsesPrefixAndTTL(t *testing.T) {
	store, mr := newStore(t, redis.WithPrefix("rpc:"), redis.WithTTL(time.Minute))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v")))
	assert.True(t, mr.Exists("rpc:k"))

	// Entries expire after the configured TTL.
	mr.FastForward(2 * time.Minute)
	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, ports.ErrReplayMiss)
}
