package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	leadx "github.com/tanpawarit/Chative-Voice-SDR/agent/lead"
	"golang.org/x/sync/errgroup"
)

func sampleRecord(name, useCase string, at time.Time) leadx.Record {
	p := leadx.NewProfile()
	p.Update(leadx.Patch{Name: leadx.Str(name), UseCase: leadx.Str(useCase)})
	return p.Snapshot(at)
}

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "leads_db.json"))
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	return store
}

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	store := newTestFileStore(t)
	got, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("List() = %d records, want 0", len(got))
	}
}

func TestFileStoreAppendPreservesOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestFileStore(t)
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	want := []leadx.Record{
		sampleRecord("Ana", "chatbot", base),
		sampleRecord("Bea", "", base.Add(time.Minute)),
		sampleRecord("Cy", "voice agent", base.Add(2*time.Minute)),
	}
	for i, rec := range want {
		if err := store.Append(ctx, rec); err != nil {
			t.Fatalf("Append(%d) error = %v", i, err)
		}
		got, err := store.List(ctx)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if diff := cmp.Diff(want[:i+1], got); diff != "" {
			t.Fatalf("after append %d (-want +got):\n%s", i, diff)
		}
	}
}

func TestFileStoreWritesNullsAndIndentedArray(t *testing.T) {
	t.Parallel()

	store := newTestFileStore(t)
	rec := sampleRecord("Ana", "chatbot", time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC))
	if err := store.Append(context.Background(), rec); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	raw, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if !strings.HasPrefix(string(raw), "[\n    {") {
		t.Fatalf("file is not a 4-space indented array:\n%s", raw)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode file: %v", err)
	}
	if len(decoded) != 1 {
		t.Fatalf("records = %d, want 1", len(decoded))
	}
	for _, field := range []string{"company", "email", "budget", "timeline"} {
		v, ok := decoded[0][field]
		if !ok || v != nil {
			t.Fatalf("field %s = %v (present=%v), want null", field, v, ok)
		}
	}
	if decoded[0]["name"] != "Ana" || decoded[0]["use_case"] != "chatbot" {
		t.Fatalf("unexpected record: %v", decoded[0])
	}
	if decoded[0]["timestamp"] != "2026-05-01T09:00:00Z" {
		t.Fatalf("timestamp = %v", decoded[0]["timestamp"])
	}
}

func TestFileStoreCorruptedContentIsDiscarded(t *testing.T) {
	t.Parallel()

	for _, content := range []string{"{not json", `{"name":"Ana"}`, "   \n"} {
		content := content
		t.Run(fmt.Sprintf("%q", content), func(t *testing.T) {
			t.Parallel()

			store := newTestFileStore(t)
			if err := os.WriteFile(store.Path(), []byte(content), 0o644); err != nil {
				t.Fatalf("seed file: %v", err)
			}

			rec := sampleRecord("Ana", "chatbot", time.Now())
			if err := store.Append(context.Background(), rec); err != nil {
				t.Fatalf("Append() error = %v", err)
			}

			got, err := store.List(context.Background())
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(got) != 1 || got[0].Get(leadx.FieldName) != "Ana" {
				t.Fatalf("List() = %+v, want exactly the new record", got)
			}
		})
	}
}

func TestFileStoreConcurrentAppendsLoseNothing(t *testing.T) {
	t.Parallel()

	const n = 40
	path := filepath.Join(t.TempDir(), "leads_db.json")

	// Two handles on the same file must share one lock.
	first, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	second, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		store := first
		if i%2 == 1 {
			store = second
		}
		g.Go(func() error {
			return store.Append(context.Background(), sampleRecord(fmt.Sprintf("lead-%02d", i), "chatbot", time.Now()))
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent Append() error = %v", err)
	}

	got, err := first.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != n {
		t.Fatalf("List() = %d records, want %d", len(got), n)
	}
	seen := make(map[string]bool, n)
	for _, rec := range got {
		seen[rec.Get(leadx.FieldName)] = true
	}
	if len(seen) != n {
		t.Fatalf("distinct names = %d, want %d", len(seen), n)
	}
}

func TestFileStoreFillsMissingTimestamp(t *testing.T) {
	t.Parallel()

	store := newTestFileStore(t)
	if err := store.Append(context.Background(), leadx.Record{Name: leadx.Str("Ana")}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	got, _ := store.List(context.Background())
	if len(got) != 1 || got[0].Timestamp.IsZero() {
		t.Fatalf("timestamp not filled: %+v", got)
	}
}

func TestFileStoreCanceledContext(t *testing.T) {
	t.Parallel()

	store := newTestFileStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := store.Append(ctx, sampleRecord("Ana", "x", time.Now())); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestMemoryStoreConcurrentAppends(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.Append(context.Background(), sampleRecord(fmt.Sprint(i), "x", time.Now()))
		}(i)
	}
	wg.Wait()

	got, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 25 {
		t.Fatalf("List() = %d, want 25", len(got))
	}
}
