package viewcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	keyGeneration = "viewcache:gen:%s"
	keyEntry      = "viewcache:%s:%d:%s"
)

// Redis shares the view cache across replicas. Revalidate bumps the route
// generation with INCR so older entries are never read again and expire on
// their own.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedis(client *redis.Client, ttl time.Duration, log *zap.Logger) *Redis {
	return &Redis{client: client, ttl: ttl, log: log.Named("viewcache.redis")}
}

func (r *Redis) Get(ctx context.Context, route, key string) ([]byte, int64, bool) {
	gen, err := r.generation(ctx, route)
	if err != nil {
		r.log.Warn("generation lookup failed", zap.String("route", route), zap.Error(err))
		return nil, -1, false
	}
	value, err := r.client.Get(ctx, fmt.Sprintf(keyEntry, route, gen, key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.Warn("cache get failed", zap.String("route", route), zap.Error(err))
		}
		return nil, gen, false
	}
	return value, gen, true
}

// Set writes under the generation the value was computed for. After a
// Revalidate that key is never read again and expires with its TTL.
func (r *Redis) Set(ctx context.Context, route, key string, generation int64, value []byte) {
	if generation < 0 {
		return
	}
	if err := r.client.Set(ctx, fmt.Sprintf(keyEntry, route, generation, key), value, r.ttl).Err(); err != nil {
		r.log.Warn("cache set failed", zap.String("route", route), zap.Error(err))
	}
}

func (r *Redis) Revalidate(ctx context.Context, route string) error {
	return r.client.Incr(ctx, fmt.Sprintf(keyGeneration, route)).Err()
}

func (r *Redis) generation(ctx context.Context, route string) (int64, error) {
	gen, err := r.client.Get(ctx, fmt.Sprintf(keyGeneration, route)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}
