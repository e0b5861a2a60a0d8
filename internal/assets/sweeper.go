package assets

import (
	"context"
	"time"

	"github.com/smallbiznis/dashboard/internal/clock"
	"github.com/smallbiznis/dashboard/internal/config"
	"go.uber.org/zap"
)

// DefaultGracePeriod keeps fresh uploads whose row insert may still be in flight.
const DefaultGracePeriod = time.Hour

// ReferenceSource lists the image references currently held by customers.
type ReferenceSource interface {
	ImageURLs(ctx context.Context) ([]string, error)
}

type SweepResult struct {
	Scanned int `json:"scanned"`
	Deleted int `json:"deleted"`
}

// Sweeper removes customer images that no customer row references.
type Sweeper struct {
	log    *zap.Logger
	store  Store
	refs   ReferenceSource
	clock  clock.Clock
	prefix string
	grace  time.Duration
}

func NewSweeper(log *zap.Logger, cfg config.Config, store Store, refs ReferenceSource, clk clock.Clock) *Sweeper {
	return &Sweeper{
		log:    log.Named("assets.sweeper"),
		store:  store,
		refs:   refs,
		clock:  clk,
		prefix: cfg.Assets.PublicPrefix,
		grace:  DefaultGracePeriod,
	}
}

func (s *Sweeper) Sweep(ctx context.Context) (SweepResult, error) {
	urls, err := s.refs.ImageURLs(ctx)
	if err != nil {
		return SweepResult{}, err
	}
	referenced := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		if key, ok := KeyFromPublicPath(s.prefix, u); ok {
			referenced[key] = struct{}{}
		}
	}

	objects, err := s.store.List(ctx, CustomerPrefix)
	if err != nil {
		return SweepResult{}, err
	}

	result := SweepResult{Scanned: len(objects)}
	cutoff := s.clock.Now().Add(-s.grace)
	for _, obj := range objects {
		if _, ok := referenced[obj.Key]; ok {
			continue
		}
		if obj.ModTime.After(cutoff) {
			continue
		}
		if err := s.store.Delete(ctx, obj.Key); err != nil {
			s.log.Warn("orphan delete failed", zap.String("key", obj.Key), zap.Error(err))
			continue
		}
		result.Deleted++
	}

	s.log.Info("asset sweep finished",
		zap.Int("scanned", result.Scanned),
		zap.Int("deleted", result.Deleted),
	)
	return result, nil
}
