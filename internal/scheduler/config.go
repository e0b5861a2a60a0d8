package scheduler

import (
	"time"

	"github.com/smallbiznis/dashboard/internal/config"
)

// Config controls the background sweep.
type Config struct {
	SweepInterval time.Duration
	SweepTimeout  time.Duration
	LockTTL       time.Duration
}

func DefaultConfig() Config {
	return Config{
		SweepTimeout: 2 * time.Minute,
		LockTTL:      5 * time.Minute,
	}
}

func ProvideConfig(cfg config.Config) Config {
	return Config{SweepInterval: cfg.Assets.SweepInterval}.withDefaults()
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.SweepInterval < 0 {
		c.SweepInterval = 0
	}
	if c.SweepTimeout <= 0 {
		c.SweepTimeout = defaults.SweepTimeout
	}
	if c.LockTTL <= 0 {
		c.LockTTL = defaults.LockTTL
	}
	// the lock must outlive the job it guards
	if c.LockTTL < c.SweepTimeout {
		c.LockTTL = c.SweepTimeout
	}
	return c
}
