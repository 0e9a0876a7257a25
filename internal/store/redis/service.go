package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/MrSnakeDoc/pterostats/internal/domain"
	"github.com/MrSnakeDoc/pterostats/internal/store"
	"github.com/redis/go-redis/v9"
)

var _ store.SnapshotStore = (*Store)(nil)

// Store keeps the snapshot cache in Redis. Entries never expire; the
// collector prunes ids that are no longer tracked.
type Store struct {
	client *redis.Client
	now    func() time.Time
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
		now:    time.Now,
	}
}

// encodeEntry and decodeEntry are the wire format shared by Get/Put/MarkState
func encodeEntry(entry domain.CacheEntry) ([]byte, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return data, nil
}

func decodeEntry(data []byte) (*domain.CacheEntry, error) {
	var entry domain.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrCorrupt, err)
	}
	if entry.Snapshot.Details.ID == "" {
		return nil, fmt.Errorf("%w: missing server id", store.ErrCorrupt)
	}
	return &entry, nil
}

// Get retrieves a cache entry from Redis by server ID
func (s *Store) Get(ctx context.Context, serverID string) (*domain.CacheEntry, error) {
	data, err := s.client.Get(ctx, SnapshotKey(serverID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return decodeEntry(data)
}

// Put stores a snapshot and records its state as the last rendered state
func (s *Store) Put(ctx context.Context, serverID string, snapshot domain.ServerSnapshot) error {
	return s.write(ctx, serverID, domain.CacheEntry{
		Snapshot:  snapshot,
		LastState: snapshot.Usage.State,
		UpdatedAt: s.now(),
	})
}

// MarkState moves LastState without touching the stored snapshot
func (s *Store) MarkState(ctx context.Context, serverID string, state domain.State) error {
	entry, err := s.Get(ctx, serverID)
	if err != nil || entry == nil {
		return err
	}
	entry.LastState = state
	entry.UpdatedAt = s.now()
	return s.write(ctx, serverID, *entry)
}

func (s *Store) write(ctx context.Context, serverID string, entry domain.CacheEntry) error {
	data, err := encodeEntry(entry)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, SnapshotKey(serverID), data, 0)
	pipe.SAdd(ctx, AllSnapshotsKey(), serverID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Delete removes a cache entry from Redis
func (s *Store) Delete(ctx context.Context, serverID string) error {
	// Delete snapshot data
	if err := s.client.Del(ctx, SnapshotKey(serverID)).Err(); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}

	// Remove from set of all snapshots
	if err := s.client.SRem(ctx, AllSnapshotsKey(), serverID).Err(); err != nil {
		return fmt.Errorf("failed to remove snapshot from set: %w", err)
	}

	return nil
}

// IDs returns every cached server ID, sorted
func (s *Store) IDs(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, AllSnapshotsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot IDs: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}
