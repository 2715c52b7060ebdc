package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	authdomain "github.com/smallbiznis/orderdesk/internal/auth/domain"
	"github.com/smallbiznis/orderdesk/internal/clock"
	historydomain "github.com/smallbiznis/orderdesk/internal/history/domain"
	ledgerdomain "github.com/smallbiznis/orderdesk/internal/ledger/domain"
	obsmetrics "github.com/smallbiznis/orderdesk/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrInvalidConfig = errors.New("scheduler: invalid configuration")

type Params struct {
	fx.In

	Log        *zap.Logger
	Clock      clock.Clock
	HistorySvc historydomain.Service
	LedgerSvc  ledgerdomain.Service
	AuthSvc    authdomain.Service
	Config     Config `optional:"true"`
}

// Scheduler runs the recurring hygiene sweeps: retention purge,
// orphan reconciliation and session cleanup.
type Scheduler struct {
	log        *zap.Logger
	cfg        Config
	clock      clock.Clock
	historySvc historydomain.Service
	ledgerSvc  ledgerdomain.Service
	authSvc    authdomain.Service
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Clock == nil || p.HistorySvc == nil || p.LedgerSvc == nil || p.AuthSvc == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:        p.Log.Named("scheduler"),
		cfg:        p.Config.withDefaults(),
		clock:      p.Clock,
		historySvc: p.HistorySvc,
		ledgerSvc:  p.LedgerSvc,
		authSvc:    p.AuthSvc,
	}, nil
}

func (s *Scheduler) runJob(parent context.Context, name string, fn func(ctx context.Context) error) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	schedMetrics := obsmetrics.Scheduler()
	schedMetrics.IncJobRun(name)

	err := fn(ctx)
	schedMetrics.ObserveJobDuration(name, time.Since(start))
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		schedMetrics.IncJobTimeout(name)
		s.log.Warn("job timed out", zap.String("job", name), zap.Error(err))
		return nil
	}

	schedMetrics.IncJobError(name, err)
	return fmt.Errorf("%s: %w", name, err)
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	var err error
	err = errors.Join(err, s.runJob(parent, "purge_history", s.PurgeHistoryJob))
	err = errors.Join(err, s.runJob(parent, "reconcile_orphans", s.ReconcileOrphansJob))
	err = errors.Join(err, s.runJob(parent, "expire_sessions", s.ExpireSessionsJob))
	return err
}

// RunForever runs one sweep immediately, then keeps sweeping on the
// configured interval until the context is cancelled.
func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()
	nextRun := s.clock.Now().Add(s.cfg.RunInterval)
	schedMetrics := obsmetrics.Scheduler()

	for {
		runLag := time.Since(nextRun)
		if runLag > 0 {
			schedMetrics.ObserveRunLoopLag(runLag)
		}
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}
		nextRun = nextRun.Add(s.cfg.RunInterval)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// PurgeHistoryJob deletes archived snapshots older than the retention
// window. Active rows are never eligible regardless of age.
func (s *Scheduler) PurgeHistoryJob(ctx context.Context) error {
	deleted, err := s.historySvc.PurgeOlderThan(ctx, s.cfg.RetentionDays)
	if err != nil {
		return err
	}
	obsmetrics.Scheduler().AddRowsPurged("purge_history", deleted)
	if deleted > 0 {
		s.log.Info("retention purge completed",
			zap.Int64("deleted", deleted),
			zap.Int("retention_days", s.cfg.RetentionDays),
		)
	}
	return nil
}

// ReconcileOrphansJob drops ledger rows and snapshots that point at
// customers or products deleted out from under them.
func (s *Scheduler) ReconcileOrphansJob(ctx context.Context) error {
	ledgerRows, err := s.ledgerSvc.DeleteOrphans(ctx)
	if err != nil {
		return err
	}
	historyRows, err := s.historySvc.DeleteOrphans(ctx)
	if err != nil {
		return err
	}
	if ledgerRows > 0 || historyRows > 0 {
		s.log.Info("orphan reconciliation completed",
			zap.Int64("ledger_rows", ledgerRows),
			zap.Int64("history_rows", historyRows),
		)
	}
	return nil
}

func (s *Scheduler) ExpireSessionsJob(ctx context.Context) error {
	deleted, err := s.authSvc.DeleteExpiredSessions(ctx)
	if err != nil {
		return err
	}
	if deleted > 0 {
		s.log.Info("expired sessions removed", zap.Int64("deleted", deleted))
	}
	return nil
}
