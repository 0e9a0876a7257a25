// Package sqlite implements the snapshot cache on an embedded SQLite file
// through gorm. It is the default cache driver.
package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/pterostats/internal/domain"
	"github.com/MrSnakeDoc/pterostats/internal/logger"
	"github.com/MrSnakeDoc/pterostats/internal/store"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

var _ store.SnapshotStore = (*GormStore)(nil)

// SnapshotRecord is one row per tracked server.
type SnapshotRecord struct {
	ServerID  string `gorm:"primaryKey"`
	Payload   []byte // JSON-encoded domain.ServerSnapshot
	LastState string
	UpdatedAt time.Time
}

func (SnapshotRecord) TableName() string { return "snapshots" }

type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// gormWriter routes gorm's printf-style logs to our logger.
type gormWriter struct {
	log logger.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.log.Warnf(format, args...)
}

// NewGormStore opens (or creates) the cache database at path.
// Use ":memory:" for a throwaway database.
func NewGormStore(path string, log logger.Logger) (*GormStore, error) {
	newLogger := gormlogger.New(
		gormWriter{log: log},
		gormlogger.Config{
			IgnoreRecordNotFoundError: true,
			LogLevel:                  gormlogger.Error,
		},
	)

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: newLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot cache %s: %w", path, err)
	}

	if err := db.AutoMigrate(&SnapshotRecord{}); err != nil {
		return nil, fmt.Errorf("error migrating database: %w", err)
	}

	return &GormStore{db: db, now: time.Now}, nil
}

func (s *GormStore) Get(ctx context.Context, serverID string) (*domain.CacheEntry, error) {
	var rec SnapshotRecord
	err := s.db.WithContext(ctx).First(&rec, "server_id = ?", serverID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	var snap domain.ServerSnapshot
	if err := json.Unmarshal(rec.Payload, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrCorrupt, err)
	}

	return &domain.CacheEntry{
		Snapshot:  snap,
		LastState: domain.State(rec.LastState),
		UpdatedAt: rec.UpdatedAt,
	}, nil
}

func (s *GormStore) Put(ctx context.Context, serverID string, snapshot domain.ServerSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	rec := SnapshotRecord{
		ServerID:  serverID,
		Payload:   payload,
		LastState: string(snapshot.Usage.State),
		UpdatedAt: s.now(),
	}

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "server_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "last_state", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// MarkState is a no-op for ids with no row.
func (s *GormStore) MarkState(ctx context.Context, serverID string, state domain.State) error {
	err := s.db.WithContext(ctx).
		Model(&SnapshotRecord{}).
		Where("server_id = ?", serverID).
		Updates(map[string]interface{}{
			"last_state": string(state),
			"updated_at": s.now(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update snapshot state: %w", err)
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, serverID string) error {
	if err := s.db.WithContext(ctx).Delete(&SnapshotRecord{}, "server_id = ?", serverID).Error; err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

func (s *GormStore) IDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).
		Model(&SnapshotRecord{}).
		Order("server_id").
		Pluck("server_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshot ids: %w", err)
	}
	return ids, nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
