package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still holds the caller's
// token, so an expired lock taken over by another holder is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) ~= ARGV[1] then
  return 0
end
return redis.call("DEL", KEYS[1])
`)

var (
	ErrLockUnavailable = errors.New("lock client not configured")
	ErrLockSettings    = errors.New("lock key and positive ttl are required")
)

// Locker hands out single-holder locks stored as Redis keys with a TTL.
// Each lock is tagged with a random token that Release must present.
type Locker struct {
	client *redis.Client
}

func NewLocker(client *redis.Client) *Locker {
	if client == nil {
		return nil
	}
	return &Locker{client: client}
}

// TryLock takes key for ttl. ok is false when another holder has it.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error) {
	if l == nil || l.client == nil {
		return "", false, ErrLockUnavailable
	}
	if key == "" || ttl <= 0 {
		return "", false, ErrLockSettings
	}
	token = uuid.NewString()
	ok, err = l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

// Release is a no-op for an empty token or a lock already lost.
func (l *Locker) Release(ctx context.Context, key, token string) error {
	if l == nil || l.client == nil || key == "" || token == "" {
		return nil
	}
	return releaseScript.Run(ctx, l.client, []string{key}, token).Err()
}
