package recovery

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the recovery scan on an in-process cron schedule. It is
// optional: deployments that prefer an external scheduler leave the
// schedule empty and hit the recovery endpoint instead.
type Scheduler struct {
	cron     *cron.Cron
	runner   *Runner
	schedule string
	logger   *slog.Logger
}

func NewScheduler(runner *Runner, schedule string, logger *slog.Logger) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger)))

	return &Scheduler{
		cron:     c,
		runner:   runner,
		schedule: schedule,
		logger:   logger,
	}
}

// Start registers the scan job and starts the cron loop.
func (s *Scheduler) Start() {
	if _, err := s.cron.AddFunc(s.schedule, s.runScan); err != nil {
		s.logger.Error("failed to schedule recovery scan", "schedule", s.schedule, "error", err)
		return
	}
	s.logger.Info("scheduled recovery scan", "schedule", s.schedule)
	s.cron.Start()
}

// Stop gracefully stops the cron loop.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) runScan() {
	ctx := context.Background()

	report, err := s.runner.Run(ctx)
	if err != nil {
		s.logger.Error("scheduled recovery scan failed", "error", err)
		return
	}
	s.logger.Info("scheduled recovery scan finished", "summary", report.Describe())
}
