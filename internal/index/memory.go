package index

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/MrSnakeDoc/pterostats/internal/domain"
	"github.com/MrSnakeDoc/pterostats/internal/store"
)

// Compile-time check that MemoryIndex satisfies store.SnapshotStore.
var _ store.SnapshotStore = (*MemoryIndex)(nil)

// MemoryIndex is an in-process snapshot cache.
// It does not survive restarts; use it for tests or throwaway runs.
type MemoryIndex struct {
	mu      sync.RWMutex
	entries map[string]domain.CacheEntry // server ID -> entry
	now     func() time.Time
}

// NewMemoryIndex creates an empty memory index
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		entries: make(map[string]domain.CacheEntry),
		now:     time.Now,
	}
}

// Get returns a copy of the entry for serverID, nil when absent.
func (idx *MemoryIndex) Get(_ context.Context, serverID string) (*domain.CacheEntry, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	entry, ok := idx.entries[serverID]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

// Put overwrites the snapshot for serverID
func (idx *MemoryIndex) Put(_ context.Context, serverID string, snapshot domain.ServerSnapshot) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.entries[serverID] = domain.CacheEntry{
		Snapshot:  snapshot,
		LastState: snapshot.Usage.State,
		UpdatedAt: idx.now(),
	}
	return nil
}

// MarkState records the state rendered for serverID without touching its snapshot
func (idx *MemoryIndex) MarkState(_ context.Context, serverID string, state domain.State) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	entry, ok := idx.entries[serverID]
	if !ok {
		return nil
	}
	entry.LastState = state
	entry.UpdatedAt = idx.now()
	idx.entries[serverID] = entry
	return nil
}

// Delete removes the entry for serverID
func (idx *MemoryIndex) Delete(_ context.Context, serverID string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	delete(idx.entries, serverID)
	return nil
}

// IDs returns all cached server ids, sorted
func (idx *MemoryIndex) IDs(_ context.Context) ([]string, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	ids := make([]string, 0, len(idx.entries))
	for id := range idx.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}


func (idx *MemoryIndex) Ping(context.Context) error { return nil }

func (idx *MemoryIndex) Close() error { return nil }
