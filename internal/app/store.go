package app

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/pterostats/internal/config"
	"github.com/MrSnakeDoc/pterostats/internal/index"
	"github.com/MrSnakeDoc/pterostats/internal/logger"
	"github.com/MrSnakeDoc/pterostats/internal/redis"
	"github.com/MrSnakeDoc/pterostats/internal/store"
	redisstore "github.com/MrSnakeDoc/pterostats/internal/store/redis"
	"github.com/MrSnakeDoc/pterostats/internal/store/sqlite"
)

// openStore builds the snapshot cache selected by cache.driver.
func openStore(ctx context.Context, env *config.Env, cfg *config.Config, log logger.Logger) (store.SnapshotStore, error) {
	switch cfg.Cache.Driver {
	case store.DriverSQLite:
		log.Info("opening sqlite snapshot cache", logger.String("path", cfg.Cache.Path))
		s, err := sqlite.NewGormStore(cfg.Cache.Path, log)
		if err != nil {
			return nil, err
		}
		return s, nil

	case store.DriverRedis:
		opts := redis.DefaultConnectOptions(env.RedisAddr)
		opts.Username = env.RedisUser
		opts.Password = env.RedisPassword
		opts.DB = env.RedisDB
		opts.ConnectTimeout = env.RedisConnectTimeout
		opts.RetryInterval = env.RedisRetryInterval
		opts.MaxWait = env.RedisMaxWait
		opts.PingTimeout = env.RedisPingTimeout

		log.Infof("Connecting to Redis at %s", env.RedisAddr)
		client, err := redis.Connect(ctx, opts, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		log.Info("Redis initialized successfully")
		return redisstore.NewStore(client), nil

	case store.DriverMemory:
		log.Warn("using in-memory snapshot cache, fallbacks reset on restart")
		return index.NewMemoryIndex(), nil

	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Cache.Driver)
	}
}
