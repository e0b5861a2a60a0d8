package ratelimit

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// refillScript refills a bucket hash {tokens, ts} from Redis server time and
// takes one token when available. Tokens come back as a string so the
// fractional part survives the Lua to Redis number conversion.
const refillScript = `
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now_parts = redis.call("TIME")
local now = now_parts[1] * 1000 + math.floor(now_parts[2] / 1000)

local state = redis.call("HMGET", KEYS[1], "tokens", "ts")
local tokens = tonumber(state[1]) or burst
local last = tonumber(state[2]) or now
if now > last then
  tokens = math.min(burst, tokens + (now - last) / 1000 * rate)
end

local taken = 0
if tokens >= 1 then
  tokens = tokens - 1
  taken = 1
end

redis.call("HSET", KEYS[1], "tokens", tokens, "ts", now)
redis.call("PEXPIRE", KEYS[1], ARGV[3])
return {taken, tostring(tokens), now}
`

var (
	ErrBucketUnavailable = errors.New("rate limiter not configured")
	ErrBucketSettings    = errors.New("rate limiter key, rate and burst are required")
	errBucketReply       = errors.New("unexpected rate limit script reply")
)

// RateLimitResult describes one attempt against a bucket.
type RateLimitResult struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// TokenBucket keeps per-key buckets in Redis so every instance shares them.
type TokenBucket struct {
	client *redis.Client
	script *redis.Script
}

func NewTokenBucket(client *redis.Client) *TokenBucket {
	if client == nil {
		return nil
	}
	return &TokenBucket{client: client, script: redis.NewScript(refillScript)}
}

// Allow takes one token from key, refilling at rate tokens per second up to
// burst.
func (t *TokenBucket) Allow(ctx context.Context, key string, rate float64, burst int) (*RateLimitResult, error) {
	denied := &RateLimitResult{Limit: burst}
	if t == nil || t.client == nil {
		return denied, ErrBucketUnavailable
	}
	if key == "" || rate <= 0 || burst <= 0 {
		return denied, ErrBucketSettings
	}

	ttl := defaultBucketTTL(rate, burst)
	reply, err := t.script.Run(ctx, t.client, []string{key}, rate, burst, ttl.Milliseconds()).Slice()
	if err != nil {
		return denied, err
	}
	if len(reply) != 3 {
		return denied, errBucketReply
	}

	tokens := asFloat(reply[1])
	at := time.UnixMilli(asInt(reply[2]))
	res := &RateLimitResult{
		Allowed:   asInt(reply[0]) == 1,
		Limit:     burst,
		Remaining: int(tokens),
		ResetTime: at,
	}
	if !res.Allowed && tokens < 1 {
		res.RetryAfter = time.Duration((1 - tokens) / rate * float64(time.Second))
		res.ResetTime = at.Add(res.RetryAfter)
	}
	return res, nil
}

// defaultBucketTTL keeps an idle bucket for twice its full refill time.
func defaultBucketTTL(rate float64, burst int) time.Duration {
	if rate <= 0 || burst <= 0 {
		return time.Second
	}
	seconds := math.Max(1, math.Ceil(2*float64(burst)/rate))
	return time.Duration(seconds) * time.Second
}

func asInt(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case string:
		parsed, _ := strconv.ParseInt(n, 10, 64)
		return parsed
	}
	return 0
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0
		}
		return parsed
	}
	return 0
}
