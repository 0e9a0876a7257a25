package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/pterostats/internal/engine"
	"github.com/MrSnakeDoc/pterostats/internal/httpserver/deps"
)

type componentStatus struct {
	OK     bool   `json:"ok"`
	Mode   string `json:"mode,omitempty"`
	Impact string `json:"impact,omitempty"`
	Error  string `json:"error,omitempty"`
}

type statusResponse struct {
	Mode       string                     `json:"mode"`
	Tracked    []string                   `json:"tracked"`
	LastCycle  engine.Status              `json:"last_cycle"`
	Components map[string]componentStatus `json:"components"`
}

// Status reports the last cycle and the health of each component.
func Status(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := d.Engine.Status()

		components := map[string]componentStatus{
			"cache":   checkCache(r.Context(), d),
			"channel": checkChannel(st),
			"loop":    checkLoop(d, st),
		}

		writeJSON(w, d.Logger, http.StatusOK, statusResponse{
			Mode:       determineMode(components),
			Tracked:    d.Engine.Tracked(),
			LastCycle:  st,
			Components: components,
		})
	}
}

func determineMode(components map[string]componentStatus) string {
	if ch, ok := components["channel"]; ok && !ch.OK {
		return "critical" // nothing reaches Discord
	}
	for _, c := range components {
		if !c.OK {
			return "degraded"
		}
	}
	return "ok"
}

func checkCache(ctx context.Context, d deps.Deps) componentStatus {
	if d.Cache == nil {
		return componentStatus{OK: false, Error: "cache not initialized"}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.Cache.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   d.CacheDriver,
			Impact: "fallback-disabled",
			Error:  err.Error(),
		}
	}
	return componentStatus{OK: true, Mode: d.CacheDriver}
}

func checkChannel(st engine.Status) componentStatus {
	if st.LastError != "" {
		return componentStatus{OK: false, Impact: st.Hint, Error: st.LastError}
	}
	if st.Cycles == 0 {
		return componentStatus{OK: true, Mode: "pending"}
	}
	return componentStatus{OK: true, Mode: "synced"}
}

// checkLoop flags a loop that has not finished a cycle in three intervals.
func checkLoop(d deps.Deps, st engine.Status) componentStatus {
	if st.Cycles == 0 || d.Refresh <= 0 {
		return componentStatus{OK: true, Mode: "starting"}
	}
	last := st.StartedAt.Add(st.Duration)
	if age := d.Now().Sub(last); age > 3*d.Refresh {
		return componentStatus{OK: false, Mode: "stalled", Error: "last cycle finished " + age.Round(time.Second).String() + " ago"}
	}
	return componentStatus{OK: true, Mode: "running"}
}
