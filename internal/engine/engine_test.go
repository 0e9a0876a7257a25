package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/pterostats/internal/discord"
	"github.com/MrSnakeDoc/pterostats/internal/domain"
	"github.com/MrSnakeDoc/pterostats/internal/index"
	"github.com/MrSnakeDoc/pterostats/internal/logger"
	"github.com/MrSnakeDoc/pterostats/internal/panel"
	"github.com/MrSnakeDoc/pterostats/internal/reconcile"
	"github.com/MrSnakeDoc/pterostats/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPanel struct {
	mu    sync.Mutex
	state map[string]domain.State
	down  map[string]bool

	// entered is closed on the first fetch, which then waits for release.
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (p *stubPanel) wait() {
	if p.release == nil {
		return
	}
	p.once.Do(func() { close(p.entered) })
	<-p.release
}

func (p *stubPanel) FetchDetails(_ context.Context, id string) (domain.ServerDetails, error) {
	p.wait()
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.down[id] {
		return domain.ServerDetails{}, &panel.Error{Kind: panel.KindConnRefused, ServerID: id}
	}
	return domain.ServerDetails{ID: id, Name: "srv-" + id}, nil
}

func (p *stubPanel) FetchUsage(_ context.Context, id string) (domain.ResourceUsage, error) {
	p.wait()
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.down[id] {
		return domain.ResourceUsage{}, &panel.Error{Kind: panel.KindConnRefused, ServerID: id}
	}
	return domain.ResourceUsage{State: p.state[id]}, nil
}

type recordingSyncer struct {
	calls [][]render.Message
	err   error
}

func (r *recordingSyncer) Sync(_ context.Context, msgs []render.Message) (discord.SyncResult, error) {
	r.calls = append(r.calls, msgs)
	return discord.SyncResult{Edited: len(msgs)}, r.err
}

type recordingSink struct {
	got []domain.StateTransition
}

func (r *recordingSink) Notify(_ context.Context, t domain.StateTransition) {
	r.got = append(r.got, t)
}

type countingTrigger struct{ n int }

func (c *countingTrigger) Trigger() bool { c.n++; return true }

type fixture struct {
	engine *Engine
	panel  *stubPanel
	syncer *recordingSyncer
	sinkA  *recordingSink
	sinkB  *recordingSink
	cache  *index.MemoryIndex
}

func newFixture(ids ...string) *fixture {
	log := logger.New("error", false)
	p := &stubPanel{state: map[string]domain.State{}, down: map[string]bool{}}
	for _, id := range ids {
		p.state[id] = domain.StateRunning
	}
	cache := index.NewMemoryIndex()
	f := &fixture{
		panel:  p,
		syncer: &recordingSyncer{},
		sinkA:  &recordingSink{},
		sinkB:  &recordingSink{},
		cache:  cache,
	}
	f.engine = New(
		domain.NewTrackedSet(ids),
		reconcile.New(p, cache, reconcile.Options{}, log),
		render.New(render.DisplayConfig{PanelURL: "https://panel", StatusOnline: "up", StatusOffline: "down"}),
		f.syncer,
		cache,
		log,
		f.sinkA, f.sinkB,
	)
	return f
}

func TestRunCycleRendersInTrackedOrder(t *testing.T) {
	f := newFixture("b", "a", "c")

	require.NoError(t, f.engine.RunCycle(context.Background()))

	require.Len(t, f.syncer.calls, 1)
	var got []string
	for _, m := range f.syncer.calls[0] {
		got = append(got, m.ServerID)
	}
	assert.Equal(t, []string{"b", "a", "c"}, got)

	st := f.engine.Status()
	assert.NotEmpty(t, st.CycleID)
	assert.Equal(t, 3, st.Rendered)
	assert.Equal(t, int64(1), st.Cycles)
	assert.True(t, f.engine.Ready())
}

func TestRunCycleFeedsEverySink(t *testing.T) {
	ctx := context.Background()
	f := newFixture("a")

	require.NoError(t, f.engine.RunCycle(ctx))
	f.panel.down["a"] = true
	require.NoError(t, f.engine.RunCycle(ctx))
	require.NoError(t, f.engine.RunCycle(ctx))

	require.Len(t, f.sinkA.got, 1)
	require.Len(t, f.sinkB.got, 1)
	assert.Equal(t, domain.WentDown, f.sinkA.got[0].Kind)
	assert.Equal(t, "srv-a", f.sinkA.got[0].ServerName)

	last := f.syncer.calls[2][0]
	assert.Equal(t, "down", last.Fields[0].Value)
}

func TestRunCycleSyncErrorStillNotifies(t *testing.T) {
	ctx := context.Background()
	f := newFixture("a")
	require.NoError(t, f.engine.RunCycle(ctx))

	f.syncer.err = discord.ErrChannelAccessDenied
	f.panel.down["a"] = true
	err := f.engine.RunCycle(ctx)

	require.Error(t, err)
	assert.True(t, errors.Is(err, discord.ErrChannelAccessDenied))
	assert.Len(t, f.sinkA.got, 1)
	assert.NotEmpty(t, f.engine.Status().LastError)
	assert.NotEmpty(t, f.engine.Status().Hint)
}

func TestAddTracked(t *testing.T) {
	f := newFixture("a")
	trig := &countingTrigger{}
	f.engine.SetTrigger(trig)

	require.NoError(t, f.engine.AddTracked("b"))
	assert.Equal(t, []string{"a", "b"}, f.engine.Tracked())
	assert.Equal(t, 1, trig.n)

	err := f.engine.AddTracked("a")
	assert.True(t, IsAlreadyTracked(err))
	assert.Equal(t, 1, trig.n, "rejected mutation does not trigger")
}

func TestRemoveTrackedDeletesCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture("a", "b")
	trig := &countingTrigger{}
	f.engine.SetTrigger(trig)
	require.NoError(t, f.engine.RunCycle(ctx))

	require.NoError(t, f.engine.RemoveTracked(ctx, "a"))

	entry, err := f.cache.Get(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, entry)
	assert.Equal(t, []string{"b"}, f.engine.Tracked())
	assert.Equal(t, 1, trig.n)

	assert.True(t, IsNotTracked(f.engine.RemoveTracked(ctx, "a")))
}

func TestRemoveTrackedWaitsForInFlightCycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture("a")
	f.panel.entered = make(chan struct{})
	f.panel.release = make(chan struct{})

	cycleDone := make(chan error, 1)
	go func() { cycleDone <- f.engine.RunCycle(ctx) }()
	<-f.panel.entered

	removed := make(chan error, 1)
	go func() { removed <- f.engine.RemoveTracked(ctx, "a") }()

	select {
	case <-removed:
		t.Fatal("RemoveTracked returned while a cycle was still fetching")
	case <-time.After(50 * time.Millisecond):
	}

	close(f.panel.release)
	require.NoError(t, <-cycleDone)
	require.NoError(t, <-removed)

	entry, err := f.cache.Get(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, entry, "cycle must not leave a snapshot for an untracked server")
	assert.Empty(t, f.engine.Tracked())
}

func TestTriggerWithoutScheduler(t *testing.T) {
	f := newFixture()
	assert.False(t, f.engine.Trigger())
	assert.False(t, f.engine.Ready())
}
