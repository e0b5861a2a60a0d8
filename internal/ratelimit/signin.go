package ratelimit

import (
	"context"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/dashboard/internal/config"
)

const keySignIn = "signin:addr:%s"

// SignInLimiter throttles credential sign-in attempts per client address.
type SignInLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

// NewSignInLimiter returns nil when limiting is disabled or Redis is absent.
func NewSignInLimiter(cfg config.Config, client *redis.Client) *SignInLimiter {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled || client == nil {
		return nil
	}
	if limitCfg.SignInRate <= 0 || limitCfg.SignInBurst <= 0 {
		return nil
	}
	return &SignInLimiter{
		bucket: NewTokenBucket(client),
		rate:   limitCfg.SignInRate,
		burst:  limitCfg.SignInBurst,
	}
}

func (l *SignInLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

func (l *SignInLimiter) Allow(ctx context.Context, addr string) (*RateLimitResult, error) {
	if !l.Enabled() {
		return &RateLimitResult{Allowed: true}, nil
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		addr = "unknown"
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keySignIn, addr), l.rate, l.burst)
}
