package state

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	leadx "github.com/tanpawarit/Chative-Voice-SDR/agent/lead"
)

var (
	ErrUnknownBackend = errors.New("unknown lead store backend")
	ErrStoreConfig    = errors.New("invalid lead store config")
)

const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendUpstash  = "upstash"

	defaultListKey       = "sdr:leads"
	maxResponseSizeBytes = 2 << 20
)

// Store is the append-only system of record for submitted leads.
// Implementations must be safe for concurrent Append calls from many sessions.
type Store interface {
	Append(ctx context.Context, rec leadx.Record) error
	List(ctx context.Context) ([]leadx.Record, error)
	Backend() string
	Close() error
}

// Config selects and configures a Store. Loaded with the LEAD_STORE prefix.
type Config struct {
	Backend       string        `envconfig:"BACKEND" default:"file"`
	FilePath      string        `split_words:"true" default:"leads_db.json"`
	SQLiteDSN     string        `envconfig:"SQLITE_DSN" default:"leads.db"`
	PostgresDSN   string        `envconfig:"POSTGRES_DSN"`
	RedisAddr     string        `split_words:"true" default:"localhost:6379"`
	RedisPassword string        `split_words:"true"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	ListKey       string        `split_words:"true" default:"sdr:leads"`
	UpstashURL    string        `split_words:"true"`
	UpstashToken  string        `split_words:"true"`
	Timeout       time.Duration `split_words:"true" default:"10s"`
}

// NewStore builds the Store named by cfg.Backend.
func NewStore(ctx context.Context, cfg Config) (Store, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if backend == "" {
		backend = BackendFile
	}

	switch backend {
	case BackendFile:
		return NewFileStore(cfg.FilePath)
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendSQLite:
		return NewSQLiteStore(ctx, cfg.SQLiteDSN)
	case BackendPostgres:
		return OpenPostgresStore(ctx, cfg.PostgresDSN, cfg.Timeout)
	case BackendRedis:
		return NewRedisStore(ctx, RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Key:      cfg.ListKey,
		})
	case BackendUpstash:
		return NewUpstashRedisStore(UpstashRedisConfig{
			URL:     cfg.UpstashURL,
			Token:   cfg.UpstashToken,
			Timeout: cfg.Timeout,
		}, WithListKey(cfg.ListKey))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// stamp fills a missing capture time so every stored record carries one.
func stamp(rec leadx.Record) leadx.Record {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	} else {
		rec.Timestamp = rec.Timestamp.UTC()
	}
	return rec
}
