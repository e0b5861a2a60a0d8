package ratelimit

import (
	"context"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/dashboard/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("rate.limit",
	fx.Provide(newClient),
	fx.Provide(NewSignInLimiter),
	fx.Provide(NewLocker),
)

// newClient returns nil when REDIS_ADDR is unset; every consumer then runs
// without limits or locks.
func newClient(lc fx.Lifecycle, cfg config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return client
}
