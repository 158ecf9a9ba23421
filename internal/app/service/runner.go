package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/remeh/sizedwaitgroup"

	"github.com/jose-valero/erlc-compliance-bot/internal/domain"
)

const DefaultGuildConcurrency = 20

// GuildRunner fans a per-guild task out under a concurrency cap that applies
// to each Run separately. A failing or panicking guild never affects the others.
type GuildRunner struct {
	limit int
	log   *slog.Logger
}

func NewGuildRunner(limit int, log *slog.Logger) *GuildRunner {
	if limit <= 0 {
		limit = DefaultGuildConcurrency
	}
	if log == nil {
		log = slog.Default()
	}
	return &GuildRunner{limit: limit, log: log}
}

type RunStats struct {
	Total  int
	Failed int
	// Peak is the highest number of this run's guild tasks seen at once.
	Peak    int
	Elapsed time.Duration
}

// gauge counts the tasks of one run in flight and remembers the maximum.
type gauge struct {
	cur, max atomic.Int64
}

func (g *gauge) enter() {
	n := g.cur.Add(1)
	for {
		m := g.max.Load()
		if n <= m || g.max.CompareAndSwap(m, n) {
			return
		}
	}
}

func (g *gauge) leave() { g.cur.Add(-1) }

func (r *GuildRunner) Run(ctx context.Context, pass string, guilds []domain.GuildSettings, fn func(context.Context, domain.GuildSettings) error) RunStats {
	start := time.Now()
	log := r.log.With("pass", pass)

	var (
		failed, done atomic.Int64
		inFlight     gauge
	)
	wg := sizedwaitgroup.New(r.limit)
	for i, g := range guilds {
		if (i+1)%10 == 0 {
			log.Debug("dispatching guilds", "dispatched", i+1, "total", len(guilds))
		}
		wg.Add()
		go func(g domain.GuildSettings) {
			defer wg.Done()
			if err := r.runOne(ctx, pass, &inFlight, g, fn); err != nil {
				failed.Add(1)
				log.Warn("guild check failed", "guild", g.GuildID, "err", err)
			}
			if n := done.Add(1); n%10 == 0 {
				log.Info("guild checks progress", "done", n, "total", len(guilds))
			}
		}(g)
	}
	wg.Wait()

	st := RunStats{
		Total:   len(guilds),
		Failed:  int(failed.Load()),
		Peak:    int(inFlight.max.Load()),
		Elapsed: time.Since(start),
	}
	passDuration.WithLabelValues(pass).Observe(st.Elapsed.Seconds())
	log.Info("pass finished", "guilds", st.Total, "failed", st.Failed, "peak", st.Peak, "elapsed", st.Elapsed)
	return st
}

func (r *GuildRunner) runOne(ctx context.Context, pass string, inFlight *gauge, g domain.GuildSettings, fn func(context.Context, domain.GuildSettings) error) (err error) {
	inFlight.enter()
	guildsInFlight.WithLabelValues(pass).Inc()
	defer func() {
		inFlight.leave()
		guildsInFlight.WithLabelValues(pass).Dec()
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		guildChecksRun.WithLabelValues(pass, outcome).Inc()
	}()
	return fn(ctx, g)
}
