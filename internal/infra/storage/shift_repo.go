package storage

import (
	"context"
	"database/sql"
)

type ShiftRepo struct{ db *sql.DB }

func NewShiftRepo(db *sql.DB) *ShiftRepo { return &ShiftRepo{db: db} }

// CountOnDuty counts open shifts, breaks included.
func (r *ShiftRepo) CountOnDuty(ctx context.Context, guildID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
SELECT count(*) FROM shifts WHERE guild_id = $1 AND ended_at IS NULL
`, guildID).Scan(&n)
	return n, err
}

func (r *ShiftRepo) CountOnBreak(ctx context.Context, guildID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
SELECT count(*) FROM shifts WHERE guild_id = $1 AND ended_at IS NULL AND on_break
`, guildID).Scan(&n)
	return n, err
}
