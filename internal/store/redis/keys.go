package redis

const (
	// KeyPrefixSnapshot is the prefix for snapshot cache keys
	KeyPrefixSnapshot = "pss:snapshot:"
	// KeyAllSnapshots is the key for the set of all cached server IDs
	KeyAllSnapshots = "pss:snapshots:all"
)

// SnapshotKey returns the Redis key for a server's cache entry
func SnapshotKey(serverID string) string {
	return KeyPrefixSnapshot + serverID
}

// AllSnapshotsKey returns the key for the set of all cached server IDs
func AllSnapshotsKey() string {
	return KeyAllSnapshots
}

