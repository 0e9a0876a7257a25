package domain

import "strings"

// State is the lifecycle state reported by the panel for a server.
type State string

const (
	StateRunning  State = "running"
	StateStarting State = "starting"
	StateStopping State = "stopping"
	StateOffline  State = "offline"
	// StateMissing is the sentinel for a server the panel could not be
	// reached for, or that no longer exists.
	StateMissing State = "missing"
)

// ParseState maps a raw panel state string to a State.
// Unknown values are treated as offline.
func ParseState(raw string) State {
	switch State(strings.ToLower(strings.TrimSpace(raw))) {
	case StateRunning:
		return StateRunning
	case StateStarting:
		return StateStarting
	case StateStopping:
		return StateStopping
	case StateMissing:
		return StateMissing
	default:
		return StateOffline
	}
}

// Online reports whether the state belongs to the online set {running, starting}.
func (s State) Online() bool {
	return s == StateRunning || s == StateStarting
}

// TrackedServer is a server whose identifier is in the monitored set.
type TrackedServer struct {
	// ID is the panel-assigned identifier (short id or UUID).
	ID string
}

// Limits holds the resource limits of a server. A zero value means unlimited.
type Limits struct {
	Memory  int64 `json:"memory"`  // MiB
	Swap    int64 `json:"swap"`    // MiB
	Disk    int64 `json:"disk"`    // MiB
	IO      int64 `json:"io"`      // weight
	CPU     int64 `json:"cpu"`     // percent, 100 = one core
	Threads int64 `json:"threads"` // pinned thread count
}

// ServerDetails is the immutable-per-fetch metadata of a server.
type ServerDetails struct {
	ID     string `json:"id"`
	UUID   string `json:"uuid,omitempty"`
	Name   string `json:"name"`
	Limits Limits `json:"limits"`
}

// Reference returns the identifier used for operator cross-reference:
// the panel UUID when known, the configured identifier otherwise.
func (d ServerDetails) Reference() string {
	if d.UUID != "" {
		return d.UUID
	}
	return d.ID
}

// ResourceUsage is a point-in-time resource reading.
type ResourceUsage struct {
	State       State   `json:"state"`
	MemoryBytes int64   `json:"memory_bytes"`
	DiskBytes   int64   `json:"disk_bytes"`
	CPUAbsolute float64 `json:"cpu_absolute"`
	NetworkRx   int64   `json:"network_rx_bytes"`
	NetworkTx   int64   `json:"network_tx_bytes"`
	UptimeMs    int64   `json:"uptime"`
}

// MissingUsage returns the usage shown for a server that could not be reached:
// state missing, every counter zeroed.
func MissingUsage() ResourceUsage {
	return ResourceUsage{State: StateMissing}
}
