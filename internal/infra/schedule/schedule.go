// Package schedule runs periodic passes on robfig/cron. A pass that is still
// running when its next tick fires delays that tick instead of overlapping.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

type Scheduler struct {
	c   *cron.Cron
	log *slog.Logger
	ctx context.Context

	ids []cron.EntryID
}

func New(log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	l := cronLogger{log.With("component", "cron")}
	return &Scheduler{
		c:   cron.New(cron.WithLogger(l), cron.WithChain(cron.Recover(l), cron.DelayIfStillRunning(l))),
		log: log,
		ctx: context.Background(),
	}
}

// Every registers job to run every d, and once right after Start.
func (s *Scheduler) Every(name string, d time.Duration, job func(ctx context.Context)) error {
	if d <= 0 {
		return fmt.Errorf("schedule %s: interval must be positive, got %s", name, d)
	}
	id, err := s.c.AddFunc("@every "+d.String(), func() {
		start := time.Now()
		job(s.ctx)
		s.log.Debug("job finished", "job", name, "elapsed", time.Since(start))
	})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	s.ids = append(s.ids, id)
	return nil
}

// Start begins ticking and kicks every job once. Jobs see ctx.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx = ctx
	s.c.Start()
	for _, id := range s.ids {
		go s.c.Entry(id).WrappedJob.Run()
	}
}

// Stop waits for running jobs to return.
func (s *Scheduler) Stop() {
	<-s.c.Stop().Done()
}

func (s *Scheduler) Len() int { return len(s.c.Entries()) }

type cronLogger struct{ l *slog.Logger }

func (c cronLogger) Info(msg string, kv ...any) {
	c.l.Debug(msg, kv...)
}

func (c cronLogger) Error(err error, msg string, kv ...any) {
	c.l.Error(msg, append(kv, "err", err)...)
}
