package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrSnakeDoc/pterostats/internal/logger"
)

// DefaultInterval is the polling period when none is configured.
const DefaultInterval = 10 * time.Second

// CycleRunner runs one reconciliation pass.
type CycleRunner interface {
	RunCycle(ctx context.Context) error
}

// Scheduler drives cycles serially: Idle -> Running -> Idle.
//
// Ticks and manual triggers share a single pending slot. A trigger that
// arrives while a cycle is running fills the slot; any further trigger is
// dropped until the slot is consumed, so a burst yields exactly one re-run.
type Scheduler struct {
	runner   CycleRunner
	logger   logger.Logger
	interval time.Duration

	pending  chan struct{}
	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	running  atomic.Bool
	cycles   atomic.Int64
}

// New creates a scheduler. Call Start to begin polling.
func New(runner CycleRunner, log logger.Logger, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		runner:   runner,
		logger:   log,
		interval: interval,
		pending:  make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start queues the initial cycle and begins the periodic loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.Trigger()
	go s.loop(ctx)
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Trigger()
		case <-s.pending:
			s.runOnce(ctx)
			// An overrunning cycle delays the next tick instead of stacking one.
			ticker.Reset(s.interval)
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	s.running.Store(true)
	defer s.running.Store(false)

	start := time.Now()
	err := s.runner.RunCycle(ctx)
	s.cycles.Add(1)

	if err != nil {
		s.logger.Error("cycle failed",
			logger.Duration("elapsed", time.Since(start)),
			logger.Error(err))
		return
	}
	s.logger.Debug("cycle finished", logger.Duration("elapsed", time.Since(start)))
}

// Trigger requests a cycle. It returns false when one is already pending.
func (s *Scheduler) Trigger() bool {
	select {
	case s.pending <- struct{}{}:
		return true
	default:
		return false
	}
}

// Running reports whether a cycle is in progress.
func (s *Scheduler) Running() bool {
	return s.running.Load()
}

// Cycles returns the number of completed cycles.
func (s *Scheduler) Cycles() int64 {
	return s.cycles.Load()
}

// Stop ends the loop and waits for an in-flight cycle to return.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	<-s.done
}
