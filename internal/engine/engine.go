// Package engine runs reconciliation cycles: fetch, compare, render, sync
// and notify. It owns the tracked set and exposes the mutation API.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/pterostats/internal/discord"
	"github.com/MrSnakeDoc/pterostats/internal/domain"
	"github.com/MrSnakeDoc/pterostats/internal/logger"
	"github.com/MrSnakeDoc/pterostats/internal/reconcile"
	"github.com/MrSnakeDoc/pterostats/internal/render"
	"github.com/MrSnakeDoc/pterostats/internal/store"
	"github.com/google/uuid"
)

// Reconciler produces one cycle's instructions and transitions.
type Reconciler interface {
	Reconcile(ctx context.Context, servers []domain.TrackedServer) reconcile.Result
}

// Syncer mirrors rendered messages into the display channel.
type Syncer interface {
	Sync(ctx context.Context, msgs []render.Message) (discord.SyncResult, error)
}

// TransitionSink consumes the state transition stream. Sinks must not block
// for long; they run after the channel sync of the same cycle.
type TransitionSink interface {
	Notify(ctx context.Context, t domain.StateTransition)
}

// Triggerer queues a cycle, returning false when one is already pending.
type Triggerer interface {
	Trigger() bool
}

// Status summarises the most recent completed cycle.
type Status struct {
	CycleID     string             `json:"cycle_id"`
	StartedAt   time.Time          `json:"started_at"`
	Duration    time.Duration      `json:"duration_ns"`
	Tracked     int                `json:"tracked"`
	Rendered    int                `json:"rendered"`
	Fetched     int                `json:"fetched"`
	Fallbacks   int                `json:"fallbacks"`
	Skipped     int                `json:"skipped"`
	Transitions int                `json:"transitions"`
	Sync        discord.SyncResult `json:"sync"`
	LastError   string             `json:"last_error,omitempty"`
	Hint        string             `json:"hint,omitempty"`
	Cycles      int64              `json:"cycles"`
}

type Engine struct {
	tracked    *domain.TrackedSet
	reconciler Reconciler
	renderer   *render.Renderer
	syncer     Syncer
	cache      store.SnapshotStore
	sinks      []TransitionSink
	log        logger.Logger

	cycleMu sync.Mutex // serialises RunCycle and untrack

	mu      sync.RWMutex
	trigger Triggerer
	status  Status
}

func New(
	tracked *domain.TrackedSet,
	reconciler Reconciler,
	renderer *render.Renderer,
	syncer Syncer,
	cache store.SnapshotStore,
	log logger.Logger,
	sinks ...TransitionSink,
) *Engine {
	return &Engine{
		tracked:    tracked,
		reconciler: reconciler,
		renderer:   renderer,
		syncer:     syncer,
		cache:      cache,
		sinks:      sinks,
		log:        log,
	}
}

// SetTrigger wires the scheduler. Without one, Trigger is a no-op.
func (e *Engine) SetTrigger(t Triggerer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.trigger = t
}

// Trigger requests a cycle through the scheduler.
func (e *Engine) Trigger() bool {
	e.mu.RLock()
	t := e.trigger
	e.mu.RUnlock()
	if t == nil {
		return false
	}
	return t.Trigger()
}

// RunCycle performs one full pass. Cycles never overlap.
func (e *Engine) RunCycle(ctx context.Context) error {
	e.cycleMu.Lock()
	defer e.cycleMu.Unlock()

	cycleID := uuid.NewString()
	log := e.log.With(logger.String("cycle_id", cycleID))
	ctx = logger.IntoContext(ctx, log)
	start := time.Now()

	servers := e.tracked.List()
	log.Debug("cycle started", logger.Int("tracked", len(servers)))

	res := e.reconciler.Reconcile(ctx, servers)
	msgs := e.renderer.RenderAll(res.Instructions)
	syncRes, syncErr := e.syncer.Sync(ctx, msgs)

	// Transitions go out even when the display sync failed.
	for _, t := range res.Transitions {
		for _, sink := range e.sinks {
			sink.Notify(ctx, t)
		}
	}

	st := Status{
		CycleID:     cycleID,
		StartedAt:   start,
		Duration:    time.Since(start),
		Tracked:     len(servers),
		Rendered:    len(msgs),
		Fetched:     res.Fetched,
		Fallbacks:   res.Fallbacks,
		Skipped:     res.Skipped,
		Transitions: len(res.Transitions),
		Sync:        syncRes,
	}
	if syncErr != nil {
		st.LastError = syncErr.Error()
		st.Hint = discord.Describe(syncErr)
	}
	e.recordStatus(st)

	log.Info("cycle completed",
		logger.Int("tracked", st.Tracked),
		logger.Int("rendered", st.Rendered),
		logger.Int("fallbacks", st.Fallbacks),
		logger.Int("transitions", st.Transitions),
		logger.Int("sent", syncRes.Sent),
		logger.Int("edited", syncRes.Edited),
		logger.Int("deleted", syncRes.Deleted),
		logger.Duration("elapsed", st.Duration))

	if syncErr != nil {
		return fmt.Errorf("channel sync: %w", syncErr)
	}
	return nil
}

func (e *Engine) recordStatus(st Status) {
	e.mu.Lock()
	defer e.mu.Unlock()
	st.Cycles = e.status.Cycles + 1
	e.status = st
}

// Status returns the last cycle summary.
func (e *Engine) Status() Status {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.status
}

// Ready reports whether at least one cycle completed.
func (e *Engine) Ready() bool {
	return e.Status().Cycles > 0
}

// Tracked returns the tracked ids in display order.
func (e *Engine) Tracked() []string {
	return e.tracked.IDs()
}

// AddTracked appends id to the tracked set and triggers a cycle.
func (e *Engine) AddTracked(id string) error {
	if err := e.tracked.Add(id); err != nil {
		return err
	}
	e.log.Info("server tracked", logger.String("server_id", id))
	e.Trigger()
	return nil
}

// RemoveTracked drops id from the tracked set, deletes its cached snapshot
// and triggers a cycle. It waits for an in-flight cycle so that cycle cannot
// write the snapshot back after the delete.
func (e *Engine) RemoveTracked(ctx context.Context, id string) error {
	if err := e.untrack(ctx, id); err != nil {
		return err
	}
	e.log.Info("server untracked", logger.String("server_id", id))
	e.Trigger()
	return nil
}

func (e *Engine) untrack(ctx context.Context, id string) error {
	e.cycleMu.Lock()
	defer e.cycleMu.Unlock()

	if err := e.tracked.Remove(id); err != nil {
		return err
	}
	if err := e.cache.Delete(ctx, id); err != nil {
		e.log.Warn("failed to delete snapshot of untracked server",
			logger.String("server_id", id),
			logger.Error(err))
	}
	return nil
}

// IsNotTracked reports whether err means the id was unknown.
func IsNotTracked(err error) bool { return errors.Is(err, domain.ErrNotTracked) }

// IsAlreadyTracked reports whether err means the id was a duplicate.
func IsAlreadyTracked(err error) bool { return errors.Is(err, domain.ErrAlreadyTracked) }
