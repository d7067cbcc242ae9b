package state

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	leadx "github.com/tanpawarit/Chative-Voice-SDR/agent/lead"
)

type leadRow struct {
	bun.BaseModel `bun:"table:lead_records,alias:lr"`

	ID         string    `bun:"id,pk"`
	Seq        int64     `bun:"seq,autoincrement"`
	Name       *string   `bun:"name"`
	Company    *string   `bun:"company"`
	Email      *string   `bun:"email"`
	UseCase    *string   `bun:"use_case"`
	Budget     *string   `bun:"budget"`
	Timeline   *string   `bun:"timeline"`
	CapturedAt time.Time `bun:"captured_at,notnull"`
}

// PostgresStore persists leads through bun. Each Append is a single INSERT,
// so concurrent sessions are serialized by the database. List returns rows in
// insertion order via the seq column; captured_at can repeat or go backwards.
type PostgresStore struct {
	db *bun.DB
}

// OpenPostgresStore connects with pgdriver and creates the table when missing.
func OpenPostgresStore(ctx context.Context, dsn string, timeout time.Duration) (*PostgresStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("%w: postgres dsn is required", ErrStoreConfig)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(dsn),
		pgdriver.WithTimeout(timeout),
	))
	store := NewPostgresStore(sqldb)
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// NewPostgresStore wraps an already opened database handle.
func NewPostgresStore(sqldb *sql.DB) *PostgresStore {
	return &PostgresStore{db: bun.NewDB(sqldb, pgdialect.New())}
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().Model((*leadRow)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("create lead_records table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Backend() string { return BackendPostgres }

func (s *PostgresStore) Close() error { return s.db.Close() }

func (s *PostgresStore) Append(ctx context.Context, rec leadx.Record) error {
	rec = stamp(rec)
	row := &leadRow{
		ID:         uuid.NewString(),
		Name:       rec.Name,
		Company:    rec.Company,
		Email:      rec.Email,
		UseCase:    rec.UseCase,
		Budget:     rec.Budget,
		Timeline:   rec.Timeline,
		CapturedAt: rec.Timestamp,
	}
	if _, err := s.db.NewInsert().Model(row).Returning("NULL").Exec(ctx); err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]leadx.Record, error) {
	var rows []leadRow
	if err := s.db.NewSelect().Model(&rows).Order("seq ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("select leads: %w", err)
	}
	out := make([]leadx.Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, leadx.Record{
			Name:      r.Name,
			Company:   r.Company,
			Email:     r.Email,
			UseCase:   r.UseCase,
			Budget:    r.Budget,
			Timeline:  r.Timeline,
			Timestamp: r.CapturedAt.UTC(),
		})
	}
	return out, nil
}
