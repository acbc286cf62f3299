package storage

import (
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "matches.json"))
}

func TestLoadAllMissingFile(t *testing.T) {
	store := newTestStore(t)

	records, err := store.LoadAll()
	if err != nil {
		t.Fatalf("Expected no error for missing file, got %v", err)
	}

	if records == nil {
		t.Fatal("Expected empty slice, got nil")
	}

	if len(records) != 0 {
		t.Errorf("Expected 0 records, got %d", len(records))
	}
}

func TestLoadAllCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matches.json")
	if err := os.WriteFile(path, []byte("{not valid json"), 0o644); err != nil {
		t.Fatalf("Failed to write corrupt file: %v", err)
	}

	store := NewFileStore(path)
	records, err := store.LoadAll()
	if err != nil {
		t.Fatalf("Expected no error for corrupt file, got %v", err)
	}

	if len(records) != 0 {
		t.Errorf("Expected 0 records from corrupt file, got %d", len(records))
	}
}

func TestAppendRoundTrip(t *testing.T) {
	store := newTestStore(t)

	matches := []string{"A vs B", "C vs D", "E vs F", "G vs H", "I vs J"}
	var ids []int64
	for _, m := range matches {
		record, err := store.Append(MatchRecord{Match: m, Date: "2026-09-01"})
		if err != nil {
			t.Fatalf("Append failed: %v", err)
		}
		if record.ID == 0 {
			t.Error("Expected assigned id, got 0")
		}
		if record.Status != StatusPending {
			t.Errorf("Expected status '%s', got '%s'", StatusPending, record.Status)
		}
		ids = append(ids, record.ID)
	}

	records, err := store.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}

	if len(records) != len(matches) {
		t.Fatalf("Expected %d records, got %d", len(matches), len(records))
	}

	for i, record := range records {
		if record.Match != matches[i] {
			t.Errorf("Expected match '%s' at position %d, got '%s'", matches[i], i, record.Match)
		}
		if record.ID != ids[i] {
			t.Errorf("Expected id %d at position %d, got %d", ids[i], i, record.ID)
		}
		if i > 0 && record.ID <= records[i-1].ID {
			t.Errorf("Expected ids to increase, got %d after %d", record.ID, records[i-1].ID)
		}
	}
}

func TestLoadAllIdempotent(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Append(MatchRecord{Match: "A vs B", Date: "2026-09-01"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	first, err := store.LoadAll()
	if err != nil {
		t.Fatalf("First LoadAll failed: %v", err)
	}

	second, err := store.LoadAll()
	if err != nil {
		t.Fatalf("Second LoadAll failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical results, got %v and %v", first, second)
	}
}

func TestConcurrentAppend(t *testing.T) {
	store := newTestStore(t)

	const workers = 20
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if _, err := store.Append(MatchRecord{Match: "A vs B", Date: "2026-09-01"}); err != nil {
				t.Errorf("Concurrent append failed: %v", err)
			}
		}()
	}
	wg.Wait()

	records, err := store.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}

	if len(records) != workers {
		t.Fatalf("Expected %d records after %d concurrent appends, got %d", workers, workers, len(records))
	}

	seen := make(map[int64]bool)
	for _, record := range records {
		if seen[record.ID] {
			t.Errorf("Duplicate id %d", record.ID)
		}
		seen[record.ID] = true
	}
}

func TestAppendPersistsAcrossRestarts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matches.json")

	first := NewFileStore(path)
	record, err := first.Append(MatchRecord{Match: "A vs B", Date: "2026-09-01"})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	// 新的存储实例要能看到之前的数据，且 ID 继续递增
	second := NewFileStore(path)
	records, err := second.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(records) != 1 || records[0].ID != record.ID {
		t.Fatalf("Expected record %d to survive restart, got %v", record.ID, records)
	}

	next, err := second.Append(MatchRecord{Match: "C vs D", Date: "2026-09-02"})
	if err != nil {
		t.Fatalf("Append after restart failed: %v", err)
	}
	if next.ID <= record.ID {
		t.Errorf("Expected id greater than %d after restart, got %d", record.ID, next.ID)
	}
}

func TestResolve(t *testing.T) {
	store := newTestStore(t)

	record, err := store.Append(MatchRecord{Match: "A vs B", Date: "2026-09-01"})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	resolved, err := store.Resolve(record.ID, "2-1")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if resolved.Status != StatusResolved {
		t.Errorf("Expected status '%s', got '%s'", StatusResolved, resolved.Status)
	}
	if resolved.Result != "2-1" {
		t.Errorf("Expected result '2-1', got '%s'", resolved.Result)
	}

	records, _ := store.LoadAll()
	if len(records) != 1 || records[0].Status != StatusResolved {
		t.Errorf("Expected persisted record to be resolved, got %v", records)
	}
}

func TestResolveNotFound(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Resolve(12345, "2-1"); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
