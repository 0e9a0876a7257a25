package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrSnakeDoc/pterostats/internal/logger"
)

// gatedRunner blocks each cycle until release receives a value.
type gatedRunner struct {
	started chan struct{}
	release chan struct{}
	runs    atomic.Int32
	err     error
}

func newGatedRunner() *gatedRunner {
	return &gatedRunner{
		started: make(chan struct{}, 10),
		release: make(chan struct{}),
	}
}

func (g *gatedRunner) RunCycle(ctx context.Context) error {
	g.runs.Add(1)
	g.started <- struct{}{}
	select {
	case <-g.release:
	case <-ctx.Done():
	}
	return g.err
}

func waitFor(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestScheduler_InitialRun(t *testing.T) {
	runner := newGatedRunner()
	s := New(runner, logger.New("error", false), time.Hour)
	s.Start(context.Background())
	defer s.Stop()

	waitFor(t, runner.started, "initial cycle")
	if !s.Running() {
		t.Error("Expected scheduler to report Running during a cycle")
	}
	runner.release <- struct{}{}
}

func TestScheduler_CoalescesTriggers(t *testing.T) {
	runner := newGatedRunner()
	s := New(runner, logger.New("error", false), time.Hour)
	s.Start(context.Background())
	defer s.Stop()

	waitFor(t, runner.started, "initial cycle")

	// Two triggers while Running: first is queued, second is dropped
	if !s.Trigger() {
		t.Error("Expected first trigger during a cycle to be queued")
	}
	if s.Trigger() {
		t.Error("Expected second trigger during a cycle to be coalesced")
	}

	runner.release <- struct{}{}
	waitFor(t, runner.started, "coalesced re-run")
	runner.release <- struct{}{}

	// No further cycle should start
	select {
	case <-runner.started:
		t.Fatal("Expected exactly one additional cycle, got two")
	case <-time.After(100 * time.Millisecond):
	}

	if got := runner.runs.Load(); got != 2 {
		t.Errorf("Expected 2 cycles, got %d", got)
	}
}

func TestScheduler_TickerRuns(t *testing.T) {
	runner := newGatedRunner()
	close(runner.release)
	s := New(runner, logger.New("error", false), 20*time.Millisecond)
	s.Start(context.Background())

	waitFor(t, runner.started, "initial cycle")
	waitFor(t, runner.started, "ticked cycle")
	s.Stop()

	if s.Cycles() < 2 {
		t.Errorf("Expected at least 2 completed cycles, got %d", s.Cycles())
	}
}

func TestScheduler_FailedCycleKeepsLooping(t *testing.T) {
	runner := newGatedRunner()
	runner.err = errors.New("boom")
	close(runner.release)
	s := New(runner, logger.New("error", false), time.Hour)
	s.Start(context.Background())
	defer s.Stop()

	waitFor(t, runner.started, "initial cycle")
	// Wait until the first cycle returned and the slot is free again.
	deadline := time.Now().Add(2 * time.Second)
	for s.Cycles() < 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	s.Trigger()
	waitFor(t, runner.started, "cycle after failure")
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	runner := newGatedRunner()
	close(runner.release)
	s := New(runner, logger.New("error", false), 0)
	if s.interval != DefaultInterval {
		t.Errorf("Expected default interval, got %v", s.interval)
	}
	s.Start(context.Background())
	waitFor(t, runner.started, "initial cycle")
	s.Stop()
	s.Stop()
}
