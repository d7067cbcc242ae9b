package state

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	leadx "github.com/tanpawarit/Chative-Voice-SDR/agent/lead"
	"golang.org/x/sync/errgroup"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "leads.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStoreAppendAndList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestSQLiteStore(t)
	at := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Append(ctx, sampleRecord("Ana", "chatbot", at)))
	require.NoError(t, store.Append(ctx, sampleRecord("Bea", "", at.Add(time.Second))))

	got, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	require.Equal(t, "Ana", got[0].Get(leadx.FieldName))
	require.Equal(t, "chatbot", got[0].Get(leadx.FieldUseCase))
	require.Nil(t, got[0].Company)
	require.True(t, got[0].Timestamp.Equal(at))

	require.Equal(t, "Bea", got[1].Get(leadx.FieldName))
	require.Nil(t, got[1].UseCase)
}

func TestSQLiteStoreReopenKeepsRecords(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "leads.db")

	first, err := NewSQLiteStore(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, first.Append(ctx, sampleRecord("Ana", "chatbot", time.Now())))
	require.NoError(t, first.Close())

	second, err := NewSQLiteStore(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	got, err := second.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestSQLiteStoreConcurrentAppends(t *testing.T) {
	t.Parallel()

	const n = 20
	store := newTestSQLiteStore(t)

	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			return store.Append(context.Background(), sampleRecord(fmt.Sprintf("lead-%d", i), "x", time.Now()))
		})
	}
	require.NoError(t, g.Wait())

	got, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, n)
}

func TestNewSQLiteStoreRequiresDSN(t *testing.T) {
	t.Parallel()

	_, err := NewSQLiteStore(context.Background(), "  ")
	require.ErrorIs(t, err, ErrStoreConfig)
}
