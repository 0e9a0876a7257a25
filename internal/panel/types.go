package panel

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/MrSnakeDoc/pterostats/internal/domain"
)

// flexInt accepts a JSON number, a numeric string or null.
// Anything else decodes to 0. Negative values mean "unlimited" on the
// panel side (swap: -1) and are clamped to 0.
type flexInt int64

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexInt(clamp(n))
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexInt(clamp(int64(n)))
	return nil
}

func clamp(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}

// --- API response types ---

type detailsEnvelope struct {
	Attributes struct {
		Identifier string `json:"identifier"`
		UUID       string `json:"uuid"`
		Name       string `json:"name"`
		Limits     struct {
			Memory  flexInt `json:"memory"`
			Swap    flexInt `json:"swap"`
			Disk    flexInt `json:"disk"`
			IO      flexInt `json:"io"`
			CPU     flexInt `json:"cpu"`
			Threads flexInt `json:"threads"`
		} `json:"limits"`
	} `json:"attributes"`
}

type resourcesEnvelope struct {
	Attributes struct {
		CurrentState string `json:"current_state"`
		IsSuspended  bool   `json:"is_suspended"`
		Resources    struct {
			MemoryBytes    flexInt `json:"memory_bytes"`
			CPUAbsolute    float64 `json:"cpu_absolute"`
			DiskBytes      flexInt `json:"disk_bytes"`
			NetworkRxBytes flexInt `json:"network_rx_bytes"`
			NetworkTxBytes flexInt `json:"network_tx_bytes"`
			Uptime         flexInt `json:"uptime"`
		} `json:"resources"`
	} `json:"attributes"`
}

func (e detailsEnvelope) toDomain(serverID string) domain.ServerDetails {
	a := e.Attributes
	return domain.ServerDetails{
		ID:   serverID,
		UUID: a.UUID,
		Name: a.Name,
		Limits: domain.Limits{
			Memory:  int64(a.Limits.Memory),
			Swap:    int64(a.Limits.Swap),
			Disk:    int64(a.Limits.Disk),
			IO:      int64(a.Limits.IO),
			CPU:     int64(a.Limits.CPU),
			Threads: int64(a.Limits.Threads),
		},
	}
}

func (e resourcesEnvelope) toDomain() domain.ResourceUsage {
	a := e.Attributes
	cpu := a.Resources.CPUAbsolute
	if cpu < 0 {
		cpu = 0
	}
	return domain.ResourceUsage{
		State:       domain.ParseState(a.CurrentState),
		MemoryBytes: int64(a.Resources.MemoryBytes),
		DiskBytes:   int64(a.Resources.DiskBytes),
		CPUAbsolute: cpu,
		NetworkRx:   int64(a.Resources.NetworkRxBytes),
		NetworkTx:   int64(a.Resources.NetworkTxBytes),
		UptimeMs:    int64(a.Resources.Uptime),
	}
}
