package state

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	leadx "github.com/tanpawarit/Chative-Voice-SDR/agent/lead"
	_ "modernc.org/sqlite"
)

// SQLiteStore writes one row per lead. A single connection serializes writers.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(ctx context.Context, dsn string) (*SQLiteStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("%w: sqlite dsn is required", ErrStoreConfig)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := migrateSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func migrateSQLite(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS leads (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    name TEXT,
    company TEXT,
    email TEXT,
    use_case TEXT,
    budget TEXT,
    timeline TEXT,
    captured_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_leads_captured_at ON leads(captured_at);
`)
	if err != nil {
		return fmt.Errorf("migrate sqlite lead store: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Backend() string { return BackendSQLite }

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Append(ctx context.Context, rec leadx.Record) error {
	rec = stamp(rec)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO leads(id, name, company, email, use_case, budget, timeline, captured_at) VALUES(?,?,?,?,?,?,?,?)`,
		uuid.NewString(),
		nullString(rec.Name),
		nullString(rec.Company),
		nullString(rec.Email),
		nullString(rec.UseCase),
		nullString(rec.Budget),
		nullString(rec.Timeline),
		rec.Timestamp.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]leadx.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, company, email, use_case, budget, timeline, captured_at FROM leads ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query leads: %w", err)
	}
	defer rows.Close()

	var out []leadx.Record
	for rows.Next() {
		var (
			name, company, email, useCase, budget, timeline sql.NullString
			capturedAt                                      string
		)
		if err := rows.Scan(&name, &company, &email, &useCase, &budget, &timeline, &capturedAt); err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, capturedAt)
		if err != nil {
			return nil, fmt.Errorf("parse captured_at %q: %w", capturedAt, err)
		}
		out = append(out, leadx.Record{
			Name:      fromNull(name),
			Company:   fromNull(company),
			Email:     fromNull(email),
			UseCase:   fromNull(useCase),
			Budget:    fromNull(budget),
			Timeline:  fromNull(timeline),
			Timestamp: ts,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leads: %w", err)
	}
	return out, nil
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func fromNull(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
