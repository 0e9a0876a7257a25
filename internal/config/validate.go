package config

import (
	"errors"
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"github.com/MrSnakeDoc/pterostats/internal/discord"
	"github.com/MrSnakeDoc/pterostats/internal/notify"
)

// ParseColor parses a hex color with or without a leading '#' or "0x".
func ParseColor(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "#")
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil || n > 0xFFFFFF {
		return 0, fmt.Errorf("invalid color %q: expected hex RRGGBB", raw)
	}
	return int(n), nil
}

// Validate reports every problem in the file at once.
func (f *File) Validate() error {
	var errs []error

	if f.Version != CurrentVersion {
		errs = append(errs, fmt.Errorf("unsupported config version %d (expected %d)", f.Version, CurrentVersion))
	}
	if f.Refresh <= 0 {
		errs = append(errs, fmt.Errorf("refresh must be > 0 seconds, got %d", f.Refresh))
	}
	if f.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be > 0 seconds, got %d", f.Timeout))
	}
	if f.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("concurrency must be >= 0, got %d", f.Concurrency))
	}
	if _, err := ParseColor(f.Embed.Color); err != nil {
		errs = append(errs, fmt.Errorf("embed.color: %w", err))
	}

	p := discord.Presence{Text: f.Presence.Text, Type: f.Presence.Type, Status: f.Presence.Status}
	if err := p.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("presence: %w", err))
	}

	if f.Notifier.Enable && f.Notifier.Webhook != "" {
		if _, _, err := notify.ParseWebhookURL(f.Notifier.Webhook); err != nil {
			errs = append(errs, fmt.Errorf("notifier.webhook: %w", err))
		}
	}

	switch f.Cache.Driver {
	case "sqlite":
		if strings.TrimSpace(f.Cache.Path) == "" {
			errs = append(errs, errors.New("cache.path is required for the sqlite driver"))
		}
	case "redis", "memory":
	default:
		errs = append(errs, fmt.Errorf("unknown cache.driver %q (sqlite, redis, memory)", f.Cache.Driver))
	}

	if f.HTTP.Enable {
		if strings.TrimSpace(f.HTTP.Listen) == "" {
			errs = append(errs, errors.New("http.listen is required when http is enabled"))
		}
		if _, err := f.HTTP.Prefixes(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Prefixes parses AllowedCIDRs. Bare addresses are accepted as single hosts.
func (h HTTPConfig) Prefixes() ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(h.AllowedCIDRs))
	for _, raw := range h.AllowedCIDRs {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		if strings.Contains(s, "/") {
			p, err := netip.ParsePrefix(s)
			if err != nil {
				return nil, fmt.Errorf("http.allowed_cidrs: invalid CIDR %q: %w", s, err)
			}
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(s)
		if err != nil {
			return nil, fmt.Errorf("http.allowed_cidrs: invalid IP %q: %w", s, err)
		}
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

// MergedServerIDs merges file and environment ids, dropping blanks.
func (c *Config) MergedServerIDs(env *Env) []string {
	ids := make([]string, 0, len(c.File.ServerIDs))
	for _, id := range c.File.ServerIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if env != nil {
		ids = append(ids, env.ServerIDs...)
	}
	return ids
}
