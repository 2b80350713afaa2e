// Package scheduler runs scraping on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// RunFunc performs one scheduled run.
type RunFunc func(ctx context.Context)

// Scheduler wraps robfig/cron and owns the run loop.
type Scheduler struct {
	spec   string // cron spec, e.g. "@every 6h"
	run    RunFunc
	logger *slog.Logger
}

// New creates a scheduler that calls run on every tick of spec.
func New(spec string, run RunFunc, logger *slog.Logger) *Scheduler {
	return &Scheduler{spec: spec, run: run, logger: logger}
}

// Run performs one immediate run, then one per tick, until ctx is
// cancelled. Ticks that fire while a run is still going are skipped. It
// returns nil on graceful shutdown, after the current run finishes.
func (s *Scheduler) Run(ctx context.Context) error {
	logger := cronLogger{s.logger}
	c := cron.New(cron.WithLogger(logger), cron.WithChain(cron.SkipIfStillRunning(logger)))
	if _, err := c.AddFunc(s.spec, func() { s.run(ctx) }); err != nil {
		return fmt.Errorf("schedule %q: %w", s.spec, err)
	}

	s.logger.Info("starting scheduler", "schedule", s.spec)
	s.run(ctx)

	c.Start()
	<-ctx.Done()

	s.logger.Info("shutting down scheduler")
	<-c.Stop().Done()
	return nil
}

// cronLogger adapts slog to the cron.Logger interface.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
