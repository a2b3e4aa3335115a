// Package scheduler runs the in-process subscription renewal job.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"creatememe/internal/domain"
	"creatememe/internal/logger"

	"github.com/robfig/cron/v3"
)

// Renewer is implemented by service.SubscriptionService.
type Renewer interface {
	RenewDue(ctx context.Context, now time.Time) (domain.RenewalReport, error)
}

// jobTimeout bounds a single renewal pass.
const jobTimeout = 5 * time.Minute

type Scheduler struct {
	cron *cron.Cron
	log  *slog.Logger
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error(msg, append(keysAndValues, "error", err)...)
}

// New schedules renewer on spec, a standard 5-field cron expression or a
// descriptor such as "@every 1h". Overlapping runs are skipped.
func New(spec string, renewer Renewer) (*Scheduler, error) {
	log := logger.With("component", "scheduler")
	cl := cronLogger{l: log}

	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		report, err := renewer.RenewDue(ctx, time.Now())
		if err != nil {
			log.Error("renewal pass failed", "error", err)
			return
		}
		log.Info("renewal pass finished",
			"scanned", report.Scanned,
			"renewed", report.Renewed,
			"skipped", report.Skipped,
			"failed", report.Failed,
		)
	})
	if err != nil {
		return nil, err
	}
	return &Scheduler{cron: c, log: log}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started")
}

// Stop prevents new runs and waits up to ctx for a running one.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out")
	}
}
