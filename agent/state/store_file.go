package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	leadx "github.com/tanpawarit/Chative-Voice-SDR/agent/lead"
)

// fileLocks hands out one mutex per absolute path so that every FileStore
// pointing at the same file in this process shares the same critical section.
var fileLocks sync.Map

func lockFor(path string) *sync.Mutex {
	mu, _ := fileLocks.LoadOrStore(path, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// FileStore keeps every lead in a single JSON array on disk. Each Append reads the
// array, adds one record and rewrites the whole file while holding the path lock.
type FileStore struct {
	path string
	mu   *sync.Mutex
}

func NewFileStore(path string) (*FileStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: file path is required", ErrStoreConfig)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %q: %v", ErrStoreConfig, path, err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, fmt.Errorf("create lead store dir: %w", err)
	}
	return &FileStore{path: abs, mu: lockFor(abs)}, nil
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Backend() string { return BackendFile }

func (s *FileStore) Close() error { return nil }

func (s *FileStore) Append(ctx context.Context, rec leadx.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.readLocked(ctx)
	records = append(records, stamp(rec))
	if err := s.writeLocked(records); err != nil {
		return err
	}

	log.Ctx(ctx).Info().
		Str("backend", BackendFile).
		Str("path", s.path).
		Int("records", len(records)).
		Msg("lead saved")
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]leadx.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked(ctx), nil
}

// readLocked treats a missing, unreadable or malformed file as an empty store.
func (s *FileStore) readLocked(ctx context.Context) []leadx.Record {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Ctx(ctx).Warn().Err(err).Str("path", s.path).Msg("lead store unreadable, starting from empty")
		}
		return nil
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	var records []leadx.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("path", s.path).Msg("lead store corrupted, discarding previous content")
		return nil
	}
	return records
}

func (s *FileStore) writeLocked(records []leadx.Record) (err error) {
	if records == nil {
		records = []leadx.Record{}
	}
	payload, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal lead records: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp lead store: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write lead store: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync lead store: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close lead store: %w", err)
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace lead store: %w", err)
	}
	return nil
}
