package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	leadx "github.com/tanpawarit/Chative-Voice-SDR/agent/lead"
)

func setupMockPostgres(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	store := NewPostgresStore(db)
	t.Cleanup(func() { _ = store.Close() })
	return store, mock
}

func TestPostgresStoreMigrateCreatesTable(t *testing.T) {
	t.Parallel()

	store, mock := setupMockPostgres(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS "lead_records"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.Migrate(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreAppendInsertsRow(t *testing.T) {
	t.Parallel()

	store, mock := setupMockPostgres(t)
	mock.ExpectExec(`INSERT INTO "lead_records"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := sampleRecord("Ana", "chatbot", time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC))
	require.NoError(t, store.Append(context.Background(), rec))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreAppendWrapsError(t *testing.T) {
	t.Parallel()

	store, mock := setupMockPostgres(t)
	boom := errors.New("connection reset")
	mock.ExpectExec(`INSERT INTO "lead_records"`).WillReturnError(boom)

	err := store.Append(context.Background(), sampleRecord("Ana", "chatbot", time.Now()))
	require.ErrorIs(t, err, boom)
}

func TestPostgresStoreListMapsRows(t *testing.T) {
	t.Parallel()

	store, mock := setupMockPostgres(t)
	at := time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "seq", "name", "company", "email", "use_case", "budget", "timeline", "captured_at"}).
		AddRow("a1", 1, "Ana", nil, "ana@acme.io", "chatbot", nil, nil, at).
		AddRow("b2", 2, "Bea", nil, nil, "voice bot", nil, nil, at.Add(-time.Hour))
	mock.ExpectQuery(`SELECT .* FROM "lead_records" AS "lr" ORDER BY "seq" ASC`).WillReturnRows(rows)

	got, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "Ana", got[0].Get(leadx.FieldName))
	require.Equal(t, "ana@acme.io", got[0].Get(leadx.FieldEmail))
	require.Nil(t, got[0].Company)
	require.True(t, got[0].Timestamp.Equal(at))
	// A later insert with an earlier timestamp stays second.
	require.Equal(t, "Bea", got[1].Get(leadx.FieldName))
	require.NoError(t, mock.ExpectationsWereMet())
}
