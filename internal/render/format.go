package render

import (
	"fmt"
	"strings"
)

const infinity = "∞"

var byteUnits = []string{"B", "KB", "MB", "GB", "TB", "PB"}

// FormatBytes renders n on a 1024 ladder with two decimals: 1536 -> "1.50 KB".
func FormatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	v := float64(n)
	unit := 0
	for v >= 1024 && unit < len(byteUnits)-1 {
		v /= 1024
		unit++
	}
	return fmt.Sprintf("%.2f %s", v, byteUnits[unit])
}

// FormatLimitMiB renders a limit expressed in MiB. Zero means unlimited.
func FormatLimitMiB(mib int64) string {
	if mib <= 0 {
		return infinity
	}
	return FormatBytes(mib * 1024 * 1024)
}

// FormatUptime renders milliseconds as "2 days, 3 hours and 15 seconds".
// Zero units above seconds are omitted; seconds always close the list.
func FormatUptime(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	days := ms / 86_400_000
	hours := (ms / 3_600_000) % 24
	minutes := (ms / 60_000) % 60
	seconds := (ms / 1000) % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%d days", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%d hours", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%d minutes", minutes))
	}

	secs := fmt.Sprintf("%d seconds", seconds)
	if len(parts) == 0 {
		return secs
	}
	return strings.Join(parts, ", ") + " and " + secs
}

// FormatCPU renders an absolute cpu reading against its limit (percent, 0 = unlimited).
func FormatCPU(absolute float64, limit int64) string {
	if absolute < 0 {
		absolute = 0
	}
	max := infinity
	if limit > 0 {
		max = fmt.Sprintf("%d%%", limit)
	}
	return fmt.Sprintf("`%.2f%%` / `%s`", absolute, max)
}

// ShortID keeps the first 8 and last 4 characters of long identifiers.
func ShortID(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[:8] + "..." + id[len(id)-4:]
}
