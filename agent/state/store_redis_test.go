package state

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	leadx "github.com/tanpawarit/Chative-Voice-SDR/agent/lead"
	"golang.org/x/sync/errgroup"
)

func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStoreFromClient(client, "test:leads")
	t.Cleanup(func() { _ = store.Close() })
	return mr, store
}

func TestRedisStoreAppendUsesList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mr, store := setupMiniRedis(t)

	require.NoError(t, store.Append(ctx, sampleRecord("Ana", "chatbot", time.Now())))
	require.NoError(t, store.Append(ctx, sampleRecord("Bea", "crm", time.Now())))

	items, err := mr.List("test:leads")
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Contains(t, items[0], `"name":"Ana"`)
	require.Contains(t, items[0], `"company":null`)

	got, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "Bea", got[1].Get(leadx.FieldName))
}

func TestRedisStoreListSkipsMalformedEntries(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mr, store := setupMiniRedis(t)

	_, err := mr.RPush("test:leads", "garbage")
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, sampleRecord("Ana", "chatbot", time.Now())))

	got, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Ana", got[0].Get(leadx.FieldName))
}

func TestRedisStoreConcurrentAppends(t *testing.T) {
	t.Parallel()

	const n = 30
	_, store := setupMiniRedis(t)

	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			return store.Append(context.Background(), sampleRecord(fmt.Sprint(i), "x", time.Now()))
		})
	}
	require.NoError(t, g.Wait())

	got, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, n)
}

func TestNewRedisStorePingFailure(t *testing.T) {
	t.Parallel()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = NewRedisStore(context.Background(), RedisConfig{Addr: addr})
	require.Error(t, err)
}
