package viewcache

import (
	"context"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/dashboard/internal/clock"
	"github.com/smallbiznis/dashboard/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("viewcache",
	fx.Provide(New),
)

// New uses Redis when REDIS_ADDR is set and process memory otherwise.
func New(lc fx.Lifecycle, cfg config.Config, clk clock.Clock, log *zap.Logger) Cache {
	if cfg.RedisAddr == "" {
		log.Info("view cache using memory backend")
		return NewMemory(cfg.ViewCacheTTL, clk)
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

	log.Info("view cache using redis backend", zap.String("addr", cfg.RedisAddr))
	return NewRedis(client, cfg.ViewCacheTTL, log)
}
