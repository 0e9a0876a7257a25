package deps

import (
	"context"
	"net/netip"
	"time"

	"github.com/MrSnakeDoc/pterostats/internal/engine"
	"github.com/MrSnakeDoc/pterostats/internal/logger"
)

// Engine is the part of *engine.Engine the HTTP surface drives.
type Engine interface {
	Status() engine.Status
	Ready() bool
	Trigger() bool
	Tracked() []string
	AddTracked(id string) error
	RemoveTracked(ctx context.Context, id string) error
}

// Pinger reports backend health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time // for testing, defaults to time.Now
	AllowedCIDRs []netip.Prefix   // callers allowed on every route, empty = no filter
	TrustProxy   bool             // true if running behind a trusted reverse proxy
	Engine       Engine
	Cache        Pinger // snapshot cache backend
	CacheDriver  string
	Refresh      time.Duration // cycle interval, used to flag a stalled loop
}

// Now returns TimeNow() or time.Now().
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
