package state

import (
	"context"
	"sync"

	leadx "github.com/tanpawarit/Chative-Voice-SDR/agent/lead"
)

// MemoryStore keeps leads in process memory. Used by `sdr chat` dry runs and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records []leadx.Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Backend() string { return BackendMemory }

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) Append(ctx context.Context, rec leadx.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, stamp(rec))
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]leadx.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]leadx.Record, len(s.records))
	copy(out, s.records)
	return out, nil
}
