package seed

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type memoryStore struct {
	mu    sync.Mutex
	hosts map[string]struct{}
	calls atomic.Int32
	delay time.Duration
	err   error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{hosts: make(map[string]struct{})}
}

func (m *memoryStore) InsertHostnames(_ context.Context, hostnames []string) (int64, error) {
	m.calls.Add(1)
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if m.err != nil {
		return 0, m.err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var inserted int64
	for _, h := range hostnames {
		if _, ok := m.hosts[h]; ok {
			continue
		}
		m.hosts[h] = struct{}{}
		inserted++
	}
	return inserted, nil
}

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hostnames.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write seed file: %v", err)
	}
	return path
}

func TestParseHostnames(t *testing.T) {
	input := strings.Join([]string{
		"# allow-list",
		"",
		"  Example.COM  ",
		"a.example.com",
		"   # indented comment",
		"example.com",
		"\t",
		"B.Example.com",
	}, "\n")

	got, err := ParseHostnames(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseHostnames: %v", err)
	}

	want := []string{"example.com", "a.example.com", "b.example.com"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseHostnames = %v, want %v", got, want)
	}
}

func TestParseHostnamesEmpty(t *testing.T) {
	got, err := ParseHostnames(strings.NewReader("# nothing here\n\n"))
	if err != nil {
		t.Fatalf("ParseHostnames: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("ParseHostnames = %v, want empty", got)
	}
}

func TestImportCountsInsertedAndSkipped(t *testing.T) {
	store := newMemoryStore()
	store.hosts["already.example.com"] = struct{}{}
	importer := NewImporter(store)

	path := writeSeedFile(t, "example.com\nalready.example.com\nEXAMPLE.com\n# skip me\nnew.example.com\n")

	outcome, err := importer.Import(context.Background(), path)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if outcome.Parsed != 4 {
		t.Fatalf("Parsed = %d, want 4", outcome.Parsed)
	}
	if outcome.Inserted != 2 {
		t.Fatalf("Inserted = %d, want 2", outcome.Inserted)
	}
	if outcome.Skipped != 2 {
		t.Fatalf("Skipped = %d, want 2", outcome.Skipped)
	}

	again, err := importer.Import(context.Background(), path)
	if err != nil {
		t.Fatalf("second Import: %v", err)
	}
	if again.Inserted != 0 || again.Skipped != 4 {
		t.Fatalf("second Import = %+v, want everything skipped", again)
	}
}

func TestImportMissingFile(t *testing.T) {
	importer := NewImporter(newMemoryStore())
	_, err := importer.Import(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Import error = %v, want os.ErrNotExist", err)
	}
}

func TestImportPropagatesStoreError(t *testing.T) {
	store := newMemoryStore()
	store.err = errors.New("database is locked")
	importer := NewImporter(store)

	_, err := importer.Import(context.Background(), writeSeedFile(t, "example.com\n"))
	if !errors.Is(err, store.err) {
		t.Fatalf("Import error = %v, want store error", err)
	}
}

func TestImportWithoutStore(t *testing.T) {
	var importer Importer
	if _, err := importer.Import(context.Background(), "hostnames.txt"); err == nil {
		t.Fatal("expected error for importer without store")
	}
}

func TestImportCollapsesConcurrentCalls(t *testing.T) {
	store := newMemoryStore()
	store.delay = 50 * time.Millisecond
	importer := NewImporter(store)
	path := writeSeedFile(t, "example.com\n")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := importer.Import(context.Background(), path); err != nil {
				t.Errorf("Import: %v", err)
			}
		}()
	}
	wg.Wait()

	if calls := store.calls.Load(); calls >= 8 {
		t.Fatalf("store was called %d times, want concurrent imports to share runs", calls)
	}
}

func TestImportWithLeaderLockNeedsRedis(t *testing.T) {
	t.Setenv("REDIS_URL", "")
	importer := NewImporter(newMemoryStore())
	importer.UseLeaderLock = true

	if _, err := importer.Import(context.Background(), writeSeedFile(t, "example.com\n")); err == nil {
		t.Fatal("expected error when leader lock is requested without Redis")
	}
}
