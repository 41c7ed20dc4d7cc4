package memcache_fx

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"pka/internal/infra"
	"pka/pkg/config"
	mem "pka/pkg/memcache"
)

const attemptsCleanupInterval = 5 * time.Minute

var Module = fx.Provide(provideRedisClient, provideAttemptStore)

func provideRedisClient(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (*redis.Client, error) {
	client, err := infra.InitRedis(cfg.Redis, logger)
	if err != nil || client == nil {
		return nil, err
	}
	lc.Append(fx.StopHook(client.Close))
	return client, nil
}

// provideAttemptStore shares login counters through Redis when it is configured,
// otherwise keeps them in this process and prunes them periodically.
func provideAttemptStore(lc fx.Lifecycle, client *redis.Client) mem.AttemptStore {
	if client != nil {
		return mem.NewRedisAttempts(client, "pka:ratelimit:")
	}

	store := mem.NewAttempts()
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				ticker := time.NewTicker(attemptsCleanupInterval)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						store.Cleanup()
					}
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
	return store
}
