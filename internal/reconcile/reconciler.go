// Package reconcile turns one polling cycle's panel observations into
// ordered render instructions and state transitions.
package reconcile

import (
	"context"
	"errors"
	"time"

	"github.com/MrSnakeDoc/pterostats/internal/domain"
	"github.com/MrSnakeDoc/pterostats/internal/logger"
	"github.com/MrSnakeDoc/pterostats/internal/panel"
	"github.com/MrSnakeDoc/pterostats/internal/store"
	"golang.org/x/sync/errgroup"
)

const DefaultFetchTimeout = 5 * time.Second

type Options struct {
	// FetchTimeout bounds each panel call. Zero means DefaultFetchTimeout.
	FetchTimeout time.Duration
	// Concurrency caps parallel per-server work. Zero means one task per server.
	Concurrency int
	// LogError attaches the raw upstream error to fetch diagnostics.
	LogError bool
}

type Reconciler struct {
	api   panel.API
	cache store.SnapshotStore
	opts  Options
	log   logger.Logger
	now   func() time.Time
}

func New(api panel.API, cache store.SnapshotStore, opts Options, log logger.Logger) *Reconciler {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	return &Reconciler{
		api:   api,
		cache: cache,
		opts:  opts,
		log:   log,
		now:   time.Now,
	}
}

// Result is the output of one cycle.
// Instructions follow tracked-list order and skip never-observed servers.
type Result struct {
	Instructions []domain.RenderInstruction
	Transitions  []domain.StateTransition

	// Fetched counts servers observed live this cycle, Fallbacks those
	// rendered from cache and Skipped those with nothing to show.
	Fetched   int
	Fallbacks int
	Skipped   int
}

// outcome is the per-server result slot, written by exactly one goroutine.
type outcome struct {
	instruction *domain.RenderInstruction
	transition  *domain.StateTransition
	fetched     bool
}

// Reconcile observes every server concurrently. A failing server never
// cancels or delays its siblings; results are collected by index.
func (r *Reconciler) Reconcile(ctx context.Context, servers []domain.TrackedServer) Result {
	outcomes := make([]outcome, len(servers))

	var g errgroup.Group
	if r.opts.Concurrency > 0 {
		g.SetLimit(r.opts.Concurrency)
	}
	for i, srv := range servers {
		g.Go(func() error {
			outcomes[i] = r.reconcileOne(ctx, srv.ID)
			return nil
		})
	}
	_ = g.Wait()

	res := Result{
		Instructions: make([]domain.RenderInstruction, 0, len(servers)),
	}
	for _, o := range outcomes {
		switch {
		case o.instruction == nil:
			res.Skipped++
			continue
		case o.fetched:
			res.Fetched++
		default:
			res.Fallbacks++
		}
		res.Instructions = append(res.Instructions, *o.instruction)
		if o.transition != nil {
			res.Transitions = append(res.Transitions, *o.transition)
		}
	}
	return res
}

func (r *Reconciler) reconcileOne(ctx context.Context, serverID string) outcome {
	log := logger.FromContext(ctx, r.log).With(logger.String("server_id", serverID))

	// Read before any write so the previous state survives this cycle's overwrite.
	prev := r.previous(ctx, serverID, log)

	snap, err := r.fetch(ctx, serverID)
	fetched := err == nil
	if err != nil {
		r.diagnose(log, err)
		if prev == nil {
			log.Warn("server unreachable and never observed, nothing to render")
			return outcome{}
		}
		snap = prev.Snapshot.AsMissing(r.now())
		if err := r.cache.MarkState(ctx, serverID, domain.StateMissing); err != nil {
			log.Error("failed to record missing state", logger.Error(err))
		}
	} else if err := r.cache.Put(ctx, serverID, snap); err != nil {
		log.Error("failed to write snapshot cache", logger.Error(err))
	}

	out := outcome{
		instruction: &domain.RenderInstruction{ServerID: serverID, Snapshot: snap},
		fetched:     fetched,
	}

	if prev != nil {
		if kind, ok := domain.DetectTransition(prev.LastState, true, snap.Usage.State); ok {
			out.transition = &domain.StateTransition{
				ServerID:   serverID,
				ServerName: snap.Details.Name,
				Kind:       kind,
				From:       prev.LastState,
				To:         snap.Usage.State,
				At:         snap.ObservedAt(),
			}
		}
	}
	return out
}

// previous returns the cached entry, or nil on a miss. Unreadable entries
// count as a miss.
func (r *Reconciler) previous(ctx context.Context, serverID string, log logger.Logger) *domain.CacheEntry {
	entry, err := r.cache.Get(ctx, serverID)
	if err != nil {
		if errors.Is(err, store.ErrCorrupt) {
			log.Warn("snapshot cache entry corrupt, treating as miss", logger.Error(err))
		} else {
			log.Error("snapshot cache read failed, treating as miss", logger.Error(err))
		}
		return nil
	}
	return entry
}

// fetch calls details and usage in parallel, each under its own timeout.
func (r *Reconciler) fetch(ctx context.Context, serverID string) (domain.ServerSnapshot, error) {
	var (
		details domain.ServerDetails
		usage   domain.ResourceUsage
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cctx, cancel := context.WithTimeout(gctx, r.opts.FetchTimeout)
		defer cancel()
		var err error
		details, err = r.api.FetchDetails(cctx, serverID)
		return err
	})
	g.Go(func() error {
		cctx, cancel := context.WithTimeout(gctx, r.opts.FetchTimeout)
		defer cancel()
		var err error
		usage, err = r.api.FetchUsage(cctx, serverID)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.ServerSnapshot{}, err
	}

	return domain.ServerSnapshot{
		Details:          details,
		Usage:            usage,
		ObservedAtMillis: r.now().UnixMilli(),
	}, nil
}

func (r *Reconciler) diagnose(log logger.Logger, err error) {
	kind := panel.KindOf(err)
	fields := []logger.Field{
		logger.String("kind", kind.String()),
		logger.String("category", string(kind.Category())),
		logger.String("hint", kind.Hint()),
	}
	if r.opts.LogError {
		fields = append(fields, logger.Error(err))
	}
	log.Warn("panel fetch failed", fields...)
}
