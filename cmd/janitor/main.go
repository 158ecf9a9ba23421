package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Event is the scheduled invocation payload. Zero fields fall back to the
// default retention.
type Event struct {
	LoaRetentionDays   int `json:"loa_retention_days"`
	ShiftRetentionDays int `json:"shift_retention_days"`
}

const defaultRetentionDays = 90

type purge struct {
	name  string
	query string
	days  int
}

func (e Event) purges() []purge {
	return []purge{
		{
			name:  "loas",
			query: `DELETE FROM loas WHERE (expired OR denied OR user_rolled) AND expiry < $1`,
			days:  orDefault(e.LoaRetentionDays),
		},
		{
			name:  "shifts",
			query: `DELETE FROM shifts WHERE ended_at IS NOT NULL AND ended_at < $1`,
			days:  orDefault(e.ShiftRetentionDays),
		},
	}
}

func orDefault(days int) int {
	if days <= 0 {
		return defaultRetentionDays
	}
	return days
}

type Result struct {
	Deleted map[string]int64 `json:"deleted"`
}

func handler(ctx context.Context, ev Event) (Result, error) {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("component", "janitor")
	res := Result{Deleted: map[string]int64{}}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return res, errors.New("DATABASE_URL not set")
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return res, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = 2
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return res, fmt.Errorf("pool: %w", err)
	}
	defer pool.Close()

	now := time.Now()
	for _, p := range ev.purges() {
		cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		tag, err := pool.Exec(cctx, p.query, now.AddDate(0, 0, -p.days))
		cancel()
		if err != nil {
			log.Error("purge failed", "table", p.name, "err", err)
			return res, fmt.Errorf("purge %s: %w", p.name, err)
		}
		res.Deleted[p.name] = tag.RowsAffected()
		log.Info("purged", "table", p.name, "rows", tag.RowsAffected(), "retention_days", p.days)
	}
	return res, nil
}

func main() { lambda.Start(handler) }
