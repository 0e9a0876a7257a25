package index

import (
	"context"
	"sync"
	"testing"

	"github.com/MrSnakeDoc/pterostats/internal/domain"
)

func testSnapshot(id string, state domain.State) domain.ServerSnapshot {
	return domain.ServerSnapshot{
		Details:          domain.ServerDetails{ID: id, Name: "server-" + id},
		Usage:            domain.ResourceUsage{State: state, MemoryBytes: 1024},
		ObservedAtMillis: 1000,
	}
}

func count(t *testing.T, idx *MemoryIndex) int {
	t.Helper()
	ids, err := idx.IDs(context.Background())
	if err != nil {
		t.Fatalf("IDs() error = %v", err)
	}
	return len(ids)
}

func TestNewMemoryIndex(t *testing.T) {
	index := NewMemoryIndex()
	if index == nil {
		t.Fatal("NewMemoryIndex() returned nil")
	}
	if count(t, index) != 0 {
		t.Errorf("NewMemoryIndex() should start empty, got %d entries", count(t, index))
	}
}

func TestGetMiss(t *testing.T) {
	index := NewMemoryIndex()

	entry, err := index.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if entry != nil {
		t.Errorf("Get() on miss = %+v, want nil", entry)
	}
}

func TestPutOverwrites(t *testing.T) {
	ctx := context.Background()
	index := NewMemoryIndex()

	if err := index.Put(ctx, "a", testSnapshot("a", domain.StateRunning)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := index.Put(ctx, "a", testSnapshot("a", domain.StateOffline)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	entry, _ := index.Get(ctx, "a")
	if entry.Snapshot.Usage.State != domain.StateOffline {
		t.Errorf("Put() should overwrite, got state %q", entry.Snapshot.Usage.State)
	}
	if entry.LastState != domain.StateOffline {
		t.Errorf("Put() should set LastState, got %q", entry.LastState)
	}
}

func TestMarkStateKeepsSnapshot(t *testing.T) {
	ctx := context.Background()
	index := NewMemoryIndex()
	_ = index.Put(ctx, "a", testSnapshot("a", domain.StateRunning))

	if err := index.MarkState(ctx, "a", domain.StateMissing); err != nil {
		t.Fatalf("MarkState() error = %v", err)
	}
	if err := index.MarkState(ctx, "unknown", domain.StateMissing); err != nil {
		t.Fatalf("MarkState(unknown) error = %v", err)
	}

	entry, _ := index.Get(ctx, "a")
	if entry.Snapshot.Usage.State != domain.StateRunning {
		t.Errorf("MarkState() touched the snapshot: %q", entry.Snapshot.Usage.State)
	}
	if entry.LastState != domain.StateMissing {
		t.Errorf("MarkState() LastState = %q, want missing", entry.LastState)
	}
	if count(t, index) != 1 {
		t.Errorf("MarkState(unknown) should not create entries, got %d", count(t, index))
	}
}

func TestDeleteAndIDs(t *testing.T) {
	ctx := context.Background()
	index := NewMemoryIndex()
	_ = index.Put(ctx, "b", testSnapshot("b", domain.StateRunning))
	_ = index.Put(ctx, "a", testSnapshot("a", domain.StateRunning))

	ids, _ := index.IDs(ctx)
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("IDs() = %v, want [a b]", ids)
	}

	_ = index.Delete(ctx, "a")
	if entry, _ := index.Get(ctx, "a"); entry != nil {
		t.Error("Delete() did not remove entry")
	}
}

func TestConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	index := NewMemoryIndex()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = index.Put(ctx, "a", testSnapshot("a", domain.StateRunning))
		}()
		go func() {
			defer wg.Done()
			_, _ = index.Get(ctx, "a")
		}()
	}
	wg.Wait()

	if count(t, index) != 1 {
		t.Errorf("entries = %d, want 1", count(t, index))
	}
}
