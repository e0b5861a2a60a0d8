package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/dashboard/internal/assets"
	auditdomain "github.com/smallbiznis/dashboard/internal/audit/domain"
	"github.com/smallbiznis/dashboard/internal/clock"
	obsmetrics "github.com/smallbiznis/dashboard/internal/observability/metrics"
	"github.com/smallbiznis/dashboard/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const jobSweepAssets = "sweep_assets"

// Triggers recorded on each sweep run.
const (
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
)

var ErrInvalidConfig = errors.New("invalid_scheduler_config")

// Sweeper removes unreferenced uploads.
type Sweeper interface {
	Sweep(ctx context.Context) (assets.SweepResult, error)
}

type Params struct {
	fx.In

	Log     *zap.Logger
	Sweeper *assets.Sweeper
	GenID   *snowflake.Node
	Clock   clock.Clock
	Config  Config              `optional:"true"`
	Locker  *ratelimit.Locker   `optional:"true"`
	Audit   auditdomain.Service `optional:"true"`
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type Scheduler struct {
	log     *zap.Logger
	cfg     Config
	genID   *snowflake.Node
	clock   clock.Clock
	sweeper Sweeper
	locker  Locker
	audit   auditdomain.Service
	metrics *obsmetrics.Metrics
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Sweeper == nil || p.GenID == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	s := &Scheduler{
		log:     p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:     p.Config.withDefaults(),
		genID:   p.GenID,
		clock:   p.Clock,
		sweeper: p.Sweeper,
		audit:   p.Audit,
		metrics: p.Metrics,
	}
	// a nil *Locker means Redis is not configured
	if p.Locker != nil {
		s.locker = p.Locker
	}
	return s, nil
}

// RunForever sweeps once per interval until ctx is cancelled.
func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		_, err := s.RunSweep(withSystemActor(ctx), TriggerSchedule)
		switch {
		case err == nil:
		case errors.Is(err, ErrSweepInProgress):
			s.log.Debug("sweep skipped, another instance holds the lock")
		default:
			s.log.Warn("scheduled sweep failed", zap.Error(err))
		}
	}
}

// RunSweep removes orphaned uploads under the sweep lock and records the
// run in the audit trail. It returns ErrSweepInProgress when the lock is
// held elsewhere.
func (s *Scheduler) RunSweep(ctx context.Context, trigger string) (assets.SweepResult, error) {
	var result assets.SweepResult
	err := s.runJob(ctx, jobSweepAssets, trigger, s.cfg.SweepTimeout, func(ctx context.Context, run *jobRun) error {
		release, err := s.acquire(ctx, SweepLockKey)
		if err != nil {
			return err
		}
		defer release()

		result, err = s.sweeper.Sweep(ctx)
		if err != nil {
			return err
		}
		run.AddProcessed(result.Deleted)
		s.recordSweep(ctx, trigger, result)
		return nil
	})
	return result, err
}

func (s *Scheduler) runJob(
	parent context.Context,
	name string,
	trigger string,
	timeout time.Duration,
	fn func(ctx context.Context, run *jobRun) error,
) error {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	run := s.newJobRun(name, trigger)
	log := s.logger(ctx).With(zap.String("job", name), zap.String("run_id", run.runID))
	s.logJobStart(ctx, run)

	err := fn(ctx, run)
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrSweepInProgress):
		outcome = "skipped"
	case errors.Is(err, context.DeadlineExceeded):
		outcome = "timeout"
		run.IncError()
		log.Warn("job timed out", zap.Duration("timeout", timeout))
	default:
		outcome = "error"
		run.IncError()
		log.Error("job failed", zap.Error(err))
	}

	s.logJobFinish(ctx, run)
	s.metrics.RecordJob(ctx, name, outcome, s.clock.Now().Sub(run.startedAt))
	return err
}

func (s *Scheduler) recordSweep(ctx context.Context, trigger string, result assets.SweepResult) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, auditdomain.Entry{
		Action:     auditdomain.ActionAssetSweep,
		TargetType: "assets",
		TargetID:   assets.CustomerPrefix,
		Metadata: map[string]any{
			"trigger": trigger,
			"scanned": result.Scanned,
			"deleted": result.Deleted,
		},
	})
	if err != nil {
		s.logger(ctx).Warn("audit record failed", zap.String("action", auditdomain.ActionAssetSweep), zap.Error(err))
	}
}
