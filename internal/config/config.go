package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Env holds secrets and process settings read from the environment.
// Display and behaviour options live in the config file (see File).
type Env struct {
	ConfigFile      string        // path to config.yml
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Panel
	PanelURL string // ex: "https://panel.example.com"
	PanelKey string // client API key (ptlc_...)

	// Discord
	DiscordToken   string
	DiscordChannel string

	// ServerIDs are appended to the file's server_ids.
	ServerIDs []string

	TelegramToken string // optional, enables the telegram sink with notifier.telegram

	// Redis, only read when cache.driver is redis
	RedisAddr           string
	RedisUser           string
	RedisPassword       string
	RedisDB             int
	RedisConnectTimeout time.Duration
	RedisRetryInterval  time.Duration
	RedisMaxWait        time.Duration
	RedisPingTimeout    time.Duration
}

// LoadProcess reads the settings every command needs. It never panics.
func LoadProcess() *Env {
	return &Env{
		ConfigFile:      getenv("PSS_CONFIG", "config.yml"),
		ShutdownTimeout: mustDuration("PSS_SHUTDOWN_TIMEOUT", 5*time.Second),
		LogLevel:        getenv("PSS_LOG_LEVEL", "info"),
		PrettyLog:       mustBool("PSS_PRETTY_LOG", true),
	}
}

// LoadEnv reads the full environment. Missing credentials are fatal.
func LoadEnv() *Env {
	env := LoadProcess()

	// Panel
	env.PanelURL = strings.TrimRight(requireEnv("PSS_PANEL_URL"), "/")
	env.PanelKey = requireEnv("PSS_PANEL_KEY")

	// Discord
	env.DiscordToken = requireEnv("PSS_DISCORD_TOKEN")
	env.DiscordChannel = requireEnv("PSS_DISCORD_CHANNEL")

	env.ServerIDs = splitAndTrim(getenv("PSS_SERVER_IDS", ""))
	env.TelegramToken = getenv("PSS_TELEGRAM_TOKEN", "")

	// Redis settings
	env.RedisAddr = getenv("PSS_REDIS_ADDR", "localhost:6379")
	env.RedisUser = getenv("PSS_REDIS_USERNAME", "")
	env.RedisPassword = getenv("PSS_REDIS_PASSWORD", "")
	env.RedisDB = getenvInt("PSS_REDIS_DB", 0)
	env.RedisConnectTimeout = mustDuration("PSS_REDIS_CONNECT_TIMEOUT", 30*time.Second)
	env.RedisRetryInterval = mustDuration("PSS_REDIS_RETRY_INTERVAL", time.Second)
	env.RedisMaxWait = mustDuration("PSS_REDIS_MAX_WAIT", 8*time.Second)
	env.RedisPingTimeout = mustDuration("PSS_REDIS_PING_TIMEOUT", 2*time.Second)

	// Log env only in debug mode with redacted secrets
	if env.LogLevel == "debug" {
		envCopy := *env
		envCopy.PanelKey = "***REDACTED***"
		envCopy.DiscordToken = "***REDACTED***"
		if env.TelegramToken != "" {
			envCopy.TelegramToken = "***REDACTED***"
		}
		if env.RedisPassword != "" {
			envCopy.RedisPassword = "***REDACTED***"
		}
		log.Printf("[DEBUG] env: %+v\n", envCopy)
	}

	return env
}

// Validate checks credential shapes without contacting any service.
func (e *Env) Validate() error {
	var errs []error

	u, err := url.Parse(e.PanelURL)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("PSS_PANEL_URL: %w", err))
	case u.Scheme != "http" && u.Scheme != "https":
		errs = append(errs, fmt.Errorf("PSS_PANEL_URL must start with http:// or https://, got %q", e.PanelURL))
	case u.Host == "":
		errs = append(errs, fmt.Errorf("PSS_PANEL_URL has no host: %q", e.PanelURL))
	}

	if _, err := strconv.ParseUint(e.DiscordChannel, 10, 64); err != nil {
		errs = append(errs, fmt.Errorf("PSS_DISCORD_CHANNEL must be a numeric channel id, got %q", e.DiscordChannel))
	}

	return errors.Join(errs...)
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
