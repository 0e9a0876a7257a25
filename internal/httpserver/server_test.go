package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/pterostats/internal/domain"
	"github.com/MrSnakeDoc/pterostats/internal/engine"
	"github.com/MrSnakeDoc/pterostats/internal/httpserver/deps"
	"github.com/MrSnakeDoc/pterostats/internal/logger"
)

type fakeEngine struct {
	mu       sync.Mutex
	status   engine.Status
	tracked  *domain.TrackedSet
	pending  bool
	removed  []string
	triggers int
}

func newFakeEngine(ids ...string) *fakeEngine {
	return &fakeEngine{tracked: domain.NewTrackedSet(ids)}
}

func (f *fakeEngine) Status() engine.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *fakeEngine) Ready() bool { return f.Status().Cycles > 0 }

func (f *fakeEngine) Trigger() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.triggers++
	if f.pending {
		return false
	}
	f.pending = true
	return true
}

func (f *fakeEngine) Tracked() []string { return f.tracked.IDs() }

func (f *fakeEngine) AddTracked(id string) error { return f.tracked.Add(id) }

func (f *fakeEngine) RemoveTracked(_ context.Context, id string) error {
	if err := f.tracked.Remove(id); err != nil {
		return err
	}
	f.mu.Lock()
	f.removed = append(f.removed, id)
	f.mu.Unlock()
	return nil
}

type fakeCache struct{ err error }

func (c fakeCache) Ping(context.Context) error { return c.err }

func testDeps(e *fakeEngine) deps.Deps {
	return deps.Deps{
		Logger:      logger.Nop(),
		StartTime:   time.Now().Add(-time.Minute),
		Version:     "v1.2.3",
		Engine:      e,
		Cache:       fakeCache{},
		CacheDriver: "memory",
		Refresh:     10 * time.Second,
	}
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	h := NewRouter(logger.Nop(), testDeps(newFakeEngine()))

	rec := do(t, h, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "v1.2.3", body["version"])
	assert.Greater(t, body["uptime_seconds"].(float64), 0.0)
}

func TestReadyzBeforeAndAfterFirstCycle(t *testing.T) {
	e := newFakeEngine("a")
	h := NewRouter(logger.Nop(), testDeps(e))

	rec := do(t, h, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	e.status = engine.Status{Cycles: 1}
	rec = do(t, h, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ready":true,"cycles":1}`, rec.Body.String())
}

func TestStatusReportsComponents(t *testing.T) {
	e := newFakeEngine("a", "b")
	e.status = engine.Status{
		Cycles:    3,
		StartedAt: time.Now(),
		LastError: "channel sync: access denied",
		Hint:      "check permissions",
	}
	h := NewRouter(logger.Nop(), testDeps(e))

	rec := do(t, h, http.MethodGet, "/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Mode       string   `json:"mode"`
		Tracked    []string `json:"tracked"`
		Components map[string]struct {
			OK     bool   `json:"ok"`
			Impact string `json:"impact"`
		} `json:"components"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "critical", body.Mode)
	assert.Equal(t, []string{"a", "b"}, body.Tracked)
	assert.False(t, body.Components["channel"].OK)
	assert.Equal(t, "check permissions", body.Components["channel"].Impact)
	assert.True(t, body.Components["cache"].OK)
	assert.True(t, body.Components["loop"].OK)
}

func TestStatusDegradedWhenCacheDownOrLoopStalled(t *testing.T) {
	e := newFakeEngine()
	e.status = engine.Status{Cycles: 1, StartedAt: time.Now().Add(-time.Hour)}
	d := testDeps(e)
	d.Cache = fakeCache{err: assert.AnError}
	h := NewRouter(logger.Nop(), d)

	rec := do(t, h, http.MethodGet, "/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Mode       string `json:"mode"`
		Components map[string]struct {
			OK   bool   `json:"ok"`
			Mode string `json:"mode"`
		} `json:"components"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Mode)
	assert.False(t, body.Components["cache"].OK)
	assert.Equal(t, "stalled", body.Components["loop"].Mode)
}

func TestRefreshQueuesOnce(t *testing.T) {
	e := newFakeEngine()
	h := NewRouter(logger.Nop(), testDeps(e))

	rec := do(t, h, http.MethodPost, "/refresh", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = do(t, h, http.MethodPost, "/refresh", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, 2, e.triggers)
}

func TestServersCRUD(t *testing.T) {
	e := newFakeEngine("a")
	h := NewRouter(logger.Nop(), testDeps(e))

	rec := do(t, h, http.MethodGet, "/servers", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"servers":["a"]}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/servers", `{"id":" b "}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"servers":["a","b"]}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/servers", `{"id":"a"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/servers", `{"id":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/servers", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodDelete, "/servers/a", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"a"}, e.removed)

	rec = do(t, h, http.MethodDelete, "/servers/a", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, []string{"b"}, e.Tracked())
}

func TestEmptyServerListIsArray(t *testing.T) {
	h := NewRouter(logger.Nop(), testDeps(newFakeEngine()))

	rec := do(t, h, http.MethodGet, "/servers", "")
	assert.JSONEq(t, `{"servers":[]}`, rec.Body.String())
}

func TestCIDRFilter(t *testing.T) {
	d := testDeps(newFakeEngine())
	d.AllowedCIDRs = []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}
	h := NewRouter(logger.Nop(), d)

	// httptest requests come from 192.0.2.1.
	rec := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
