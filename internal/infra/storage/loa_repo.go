package storage

import (
	"context"
	"database/sql"

	"github.com/jose-valero/erlc-compliance-bot/internal/domain"
)

type LoaRepo struct{ db *sql.DB }

func NewLoaRepo(db *sql.DB) *LoaRepo { return &LoaRepo{db: db} }

// ListPending returns accepted records that are neither denied nor closed.
func (r *LoaRepo) ListPending(ctx context.Context, f domain.GuildFilter) ([]domain.LoaRecord, error) {
	filter, args := guildFilterClause("guild_id", f, 1)
	rows, err := r.db.QueryContext(ctx, `
SELECT id, guild_id, user_id, type, started_at, expiry,
       accepted, denied, expired, user_rolled, started
  FROM loas
 WHERE accepted AND NOT denied AND NOT expired AND NOT user_rolled
   AND `+filter+`
 ORDER BY id
`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.LoaRecord
	for rows.Next() {
		var l domain.LoaRecord
		if err := rows.Scan(&l.ID, &l.GuildID, &l.UserID, &l.Type, &l.StartedAt, &l.Expiry,
			&l.Accepted, &l.Denied, &l.Expired, &l.UserRolled, &l.Started); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// MarkStarted is true only for the caller that flipped the flag.
func (r *LoaRepo) MarkStarted(ctx context.Context, id int64) (bool, error) {
	return r.flip(ctx, `UPDATE loas SET started = TRUE WHERE id = $1 AND NOT started AND NOT expired`, id)
}

// MarkExpired is true only for the caller that flipped the flag.
func (r *LoaRepo) MarkExpired(ctx context.Context, id int64) (bool, error) {
	return r.flip(ctx, `UPDATE loas SET expired = TRUE WHERE id = $1 AND NOT expired`, id)
}

func (r *LoaRepo) flip(ctx context.Context, query string, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// CountOtherActive counts the user's other active records of the same type.
func (r *LoaRepo) CountOtherActive(ctx context.Context, rec domain.LoaRecord) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
SELECT count(*)
  FROM loas
 WHERE guild_id = $1 AND user_id = $2 AND type = $3 AND id <> $4
   AND accepted AND NOT denied AND NOT expired AND NOT user_rolled
`, rec.GuildID, rec.UserID, rec.Type, rec.ID).Scan(&n)
	return n, err
}
