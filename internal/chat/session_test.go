package chat

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisSessionStore(t *testing.T) (*RedisSessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisSessionStore(client, time.Hour), mr
}

func TestRedisSessionStoreRoundTrip(t *testing.T) {
	store, _ := newRedisSessionStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	want := &Session{Stage: StageAskSymptoms, Symptoms: "sore throat"}
	require.NoError(t, store.Put(ctx, "sess-1", want))

	got, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRedisSessionStoreExpiry(t *testing.T) {
	store, mr := newRedisSessionStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "sess-1", &Session{Stage: StageIllnessCheck}))
	mr.FastForward(2 * time.Hour)

	_, err := store.Get(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisSessionStorePutRefreshesTTL(t *testing.T) {
	store, mr := newRedisSessionStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "sess-1", &Session{Stage: StageIllnessCheck}))
	mr.FastForward(30 * time.Minute)
	require.NoError(t, store.Put(ctx, "sess-1", &Session{Stage: StageAskSymptoms}))
	mr.FastForward(45 * time.Minute)

	got, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, StageAskSymptoms, got.Stage)
}

func TestMemorySessionStoreReturnsCopies(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "sess-1", &Session{Stage: StageAskSymptoms}))

	got, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	got.Stage = StageRecommendDoctor

	again, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, StageAskSymptoms, again.Stage)
}
