package storage

import (
	"context"
	"database/sql"
)

// LinkRepo maps Roblox accounts to Discord users.
type LinkRepo struct{ db *sql.DB }

func NewLinkRepo(db *sql.DB) *LinkRepo { return &LinkRepo{db: db} }

// Lookup returns the Discord user most recently linked to robloxUsername.
func (r *LinkRepo) Lookup(ctx context.Context, robloxUsername string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `
SELECT discord_user_id
  FROM roblox_links
 WHERE lower(roblox_username) = lower($1)
 ORDER BY linked_at DESC
 LIMIT 1
`, robloxUsername).Scan(&id)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return id, err
}
