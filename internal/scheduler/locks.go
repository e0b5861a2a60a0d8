package scheduler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// SweepLockKey guards the asset sweep across instances.
const SweepLockKey = "assets:sweep:lock"

// ErrSweepInProgress is returned when another instance holds the sweep lock.
var ErrSweepInProgress = errors.New("sweep_in_progress")

// Locker is a single-holder lock released by the token that took it.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	Release(ctx context.Context, key, token string) error
}

// acquire takes key for the job. Without a Locker every caller proceeds and
// release is a no-op.
func (s *Scheduler) acquire(ctx context.Context, key string) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}

	token, ok, err := s.locker.TryLock(ctx, key, s.cfg.LockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSweepInProgress
	}

	return func() {
		// the job context may already be cancelled
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.locker.Release(releaseCtx, key, token); err != nil {
			s.logger(ctx).Warn("release lock failed", zap.String("key", key), zap.Error(err))
		}
	}, nil
}
