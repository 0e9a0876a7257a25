// Package store defines the snapshot cache contract shared by every driver.
package store

import (
	"context"
	"errors"

	"github.com/MrSnakeDoc/pterostats/internal/domain"
)

// ErrCorrupt is returned when a persisted entry cannot be decoded.
// Callers treat it as a cache miss.
var ErrCorrupt = errors.New("snapshot cache entry is corrupt")

// Supported driver names for cache.driver.
const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// SnapshotStore is the durable last-known-good snapshot cache.
//
// Get returns (nil, nil) on a miss. Put overwrites the snapshot and sets
// LastState to the snapshot's state. MarkState only moves LastState and is a
// no-op for unknown ids.
type SnapshotStore interface {
	Get(ctx context.Context, serverID string) (*domain.CacheEntry, error)
	Put(ctx context.Context, serverID string, snapshot domain.ServerSnapshot) error
	MarkState(ctx context.Context, serverID string, state domain.State) error
	Delete(ctx context.Context, serverID string) error
	IDs(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
	Close() error
}
