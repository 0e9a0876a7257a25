package scheduler

import (
	"context"
	"testing"

	"github.com/MrSnakeDoc/pterostats/internal/domain"
	"github.com/MrSnakeDoc/pterostats/internal/index"
	"github.com/MrSnakeDoc/pterostats/internal/logger"
)

func TestGarbageCollector_Collect(t *testing.T) {
	ctx := context.Background()
	log := logger.New("error", false)
	memIndex := index.NewMemoryIndex()

	for _, id := range []string{"kept", "dropped", "also-dropped"} {
		_ = memIndex.Put(ctx, id, domain.ServerSnapshot{
			Details: domain.ServerDetails{ID: id, Name: id},
			Usage:   domain.ResourceUsage{State: domain.StateRunning},
		})
	}

	tracked := domain.NewTrackedSet([]string{"kept", "never-cached"})

	gc := NewGarbageCollector(memIndex, tracked, log, 0)

	deleted, err := gc.Collect(ctx)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("Expected 2 deletions, got %d", deleted)
	}

	ids, _ := memIndex.IDs(ctx)
	if len(ids) != 1 || ids[0] != "kept" {
		t.Errorf("Expected only tracked entry to remain, got %v", ids)
	}

	// Second pass is a no-op
	deleted, _ = gc.Collect(ctx)
	if deleted != 0 {
		t.Errorf("Expected idempotent collection, got %d deletions", deleted)
	}
}

func TestGarbageCollector_DefaultInterval(t *testing.T) {
	tracked := domain.NewTrackedSet(nil)
	gc := NewGarbageCollector(index.NewMemoryIndex(), tracked, logger.New("error", false), 0)
	if gc.interval != DefaultGCInterval {
		t.Errorf("Expected default interval %v, got %v", DefaultGCInterval, gc.interval)
	}
}
