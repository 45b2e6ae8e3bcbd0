package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"go-community/internal/model"
)

func newTestCache(t *testing.T) (*UserCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewUserCache(client), mr
}

func TestUserCacheRoundTrip(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	_, err := cache.GetUser(ctx, 42)
	require.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, cache.SetUser(ctx, model.User{ID: 42, Username: "alice"}, time.Minute))

	got, err := cache.GetUser(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, "alice", got.Username)
	require.Equal(t, time.Minute, mr.TTL("community:user:42"))

	mr.FastForward(2 * time.Minute)
	_, err = cache.GetUser(ctx, 42)
	require.ErrorIs(t, err, ErrCacheMiss)
}

func TestUserCacheSkipsNonPositiveTTL(t *testing.T) {
	cache, mr := newTestCache(t)

	require.NoError(t, cache.SetUser(context.Background(), model.User{ID: 1}, 0))
	require.False(t, mr.Exists("community:user:1"))
}

func TestUserCacheBackendError(t *testing.T) {
	cache, mr := newTestCache(t)
	mr.Close()

	_, err := cache.GetUser(context.Background(), 42)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrCacheMiss)
}
