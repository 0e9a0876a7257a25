// Package redis opens the connection used by the redis snapshot cache driver.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/pterostats/internal/logger"
	"github.com/redis/go-redis/v9"
)

// ConnectOptions defines the cache connection and its startup retry policy.
type ConnectOptions struct {
	Addr     string // host:port
	Username string
	Password string
	DB       int

	ConnectTimeout time.Duration // total time allowed for startup attempts
	RetryInterval  time.Duration // first wait between attempts, doubles each time
	MaxWait        time.Duration // cap on the wait between attempts
	PingTimeout    time.Duration // per-attempt ping deadline
}

// DefaultConnectOptions returns the retry policy used when the config only names an address.
func DefaultConnectOptions(addr string) ConnectOptions {
	return ConnectOptions{
		Addr:           addr,
		ConnectTimeout: 30 * time.Second,
		RetryInterval:  time.Second,
		MaxWait:        8 * time.Second,
		PingTimeout:    2 * time.Second,
	}
}

func (o ConnectOptions) validate() error {
	switch {
	case o.Addr == "":
		return fmt.Errorf("redis address is empty")
	case o.ConnectTimeout <= 0:
		return fmt.Errorf("ConnectTimeout must be > 0, got %v", o.ConnectTimeout)
	case o.RetryInterval <= 0:
		return fmt.Errorf("RetryInterval must be > 0, got %v", o.RetryInterval)
	case o.MaxWait < o.RetryInterval:
		return fmt.Errorf("MaxWait (%v) must be >= RetryInterval (%v)", o.MaxWait, o.RetryInterval)
	case o.PingTimeout <= 0:
		return fmt.Errorf("PingTimeout must be > 0, got %v", o.PingTimeout)
	}
	return nil
}

// Connect pings the server until it answers or ConnectTimeout elapses.
// The snapshot cache is required at startup, so an unreachable server is
// reported as an error rather than retried forever.
func Connect(ctx context.Context, opts ConnectOptions, log logger.Logger) (*redis.Client, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Username: opts.Username,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()

	log = log.With(logger.String("addr", opts.Addr))
	log.Info("connecting to snapshot cache", logger.Duration("timeout", opts.ConnectTimeout))

	start := time.Now()
	wait := opts.RetryInterval
	for attempt := 1; ; attempt++ {
		pingCtx, pingCancel := context.WithTimeout(ctx, opts.PingTimeout)
		err := client.Ping(pingCtx).Err()
		pingCancel()

		if err == nil {
			log.Info("snapshot cache connected",
				logger.Int("attempts", attempt),
				logger.Duration("elapsed", time.Since(start)))
			return client, nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			_ = client.Close()
			log.Error("snapshot cache unreachable", logger.Int("attempts", attempt), logger.Error(err))
			return nil, fmt.Errorf("redis unavailable at %s after %d attempts: %w", opts.Addr, attempt, err)
		case <-timer.C:
			log.Warn("snapshot cache ping failed, retrying",
				logger.Int("attempt", attempt),
				logger.Duration("next_retry_in", wait),
				logger.Error(err))
			wait = nextBackoff(wait, opts.MaxWait)
		}
	}
}

func nextBackoff(wait, max time.Duration) time.Duration {
	wait *= 2
	if wait > max {
		return max
	}
	return wait
}
