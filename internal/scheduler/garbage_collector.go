package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/pterostats/internal/logger"
	"github.com/MrSnakeDoc/pterostats/internal/store"
)

const (
	// DefaultGCInterval is how often untracked cache entries are pruned
	DefaultGCInterval = time.Hour
)

// TrackedLister returns the ids currently tracked.
type TrackedLister interface {
	IDs() []string
}

// GarbageCollector removes cache entries for servers that are no longer
// tracked, e.g. ids dropped from the config between runs.
type GarbageCollector struct {
	store    store.SnapshotStore
	tracked  TrackedLister
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewGarbageCollector creates a new garbage collector
func NewGarbageCollector(
	cache store.SnapshotStore,
	tracked TrackedLister,
	log logger.Logger,
	interval time.Duration,
) *GarbageCollector {
	if interval <= 0 {
		interval = DefaultGCInterval
	}

	return &GarbageCollector{
		store:    cache,
		tracked:  tracked,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic garbage collection process
func (gc *GarbageCollector) Start(ctx context.Context) {
	// Run immediately on start
	if _, err := gc.Collect(ctx); err != nil {
		gc.logger.Warn("initial garbage collection failed",
			logger.Error(err))
	}

	ticker := time.NewTicker(gc.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := gc.Collect(ctx); err != nil {
					gc.logger.Error("garbage collection failed",
						logger.Error(err))
				}
			case <-gc.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the garbage collector
func (gc *GarbageCollector) Stop() {
	close(gc.stopCh)
}

// Collect deletes every cached snapshot whose id is not tracked and returns
// how many were removed.
func (gc *GarbageCollector) Collect(ctx context.Context) (int, error) {
	cached, err := gc.store.IDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list cached snapshots: %w", err)
	}

	tracked := make(map[string]bool)
	for _, id := range gc.tracked.IDs() {
		tracked[id] = true
	}

	deleted := 0
	for _, id := range cached {
		if tracked[id] {
			continue
		}
		if err := gc.store.Delete(ctx, id); err != nil {
			gc.logger.Warn("failed to delete untracked snapshot",
				logger.String("server_id", id),
				logger.Error(err))
			continue
		}
		gc.logger.Info("garbage collected untracked snapshot",
			logger.String("server_id", id))
		deleted++
	}

	if deleted == 0 {
		gc.logger.Debug("no snapshots to garbage collect")
	}
	return deleted, nil
}
