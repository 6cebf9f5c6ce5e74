// Package scheduler runs the promotion sweep on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/promotion"
)

// SweepRunner performs one sweep pass. ran is false when another replica holds the lease.
type SweepRunner interface {
	RunSweep(ctx context.Context) (report promotion.SweepReport, ran bool, err error)
}

// Scheduler wraps robfig/cron and never lets two passes overlap in this process.
type Scheduler struct {
	cron   *cron.Cron
	runner SweepRunner
	spec   string
	logger *logger.Logger

	job cron.Job
	// inflight tracks the startup pass; cron tracks its own ticks.
	inflight sync.WaitGroup
	runCtx   context.Context
	cancel   context.CancelFunc
}

// New validates spec and prepares the scheduler. Nothing runs until Start.
func New(runner SweepRunner, spec string, log *logger.Logger) (*Scheduler, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(spec); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", spec, err)
	}

	log = log.Named("Scheduler")
	cl := cronLogger{log: log}
	s := &Scheduler{
		cron:   cron.New(cron.WithParser(parser), cron.WithLogger(cl)),
		runner: runner,
		spec:   spec,
		logger: log,
	}
	s.runCtx, s.cancel = context.WithCancel(context.Background())
	s.job = cron.NewChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)).Then(cron.FuncJob(s.runPass))
	return s, nil
}

// Start registers the sweep and runs one pass immediately so expired
// promotions left over from downtime are cleared without waiting for a tick.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddJob(s.spec, s.job); err != nil {
		return fmt.Errorf("cron.AddJob: %w", err)
	}
	s.cron.Start()
	s.logger.Info("Sweep scheduler started", zap.String("spec", s.spec))

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		s.job.Run()
	}()
	return nil
}

// Stop stops accepting ticks and waits for the in-flight pass. When ctx ends
// first, the pass is cancelled and ctx's error is returned.
func (s *Scheduler) Stop(ctx context.Context) error {
	cronDone := s.cron.Stop()
	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		s.logger.Info("Sweep scheduler stopped")
		return nil
	case <-ctx.Done():
		s.cancel()
		s.logger.Warn("Sweep scheduler stop timed out; in-flight pass cancelled", zap.Error(ctx.Err()))
		return ctx.Err()
	}
}

func (s *Scheduler) runPass() {
	if s.runCtx.Err() != nil {
		return
	}

	start := time.Now()
	report, ran, err := s.runner.RunSweep(s.runCtx)
	switch {
	case err != nil:
		s.logger.Error("Sweep pass failed", zap.Duration("duration", time.Since(start)), zap.Error(err))
	case !ran:
		s.logger.Debug("Sweep pass skipped; lease held elsewhere")
	default:
		s.logger.Info("Sweep pass completed",
			zap.Duration("duration", time.Since(start)),
			zap.Int("scanned", report.Scanned),
			zap.Int("bumped", report.Bumped),
			zap.Int("expired", report.Expired),
			zap.Int("presence_expired", report.PresenceExpired))
	}
}

// cronLogger routes robfig/cron's key-value logging to zap.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
