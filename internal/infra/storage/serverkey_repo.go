package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ServerKeyRepo serves deployment keys to the ERLC client. Keys are read on
// every API call, so they are cached briefly.
type ServerKeyRepo struct {
	db    *sql.DB
	cache *expirable.LRU[string, string]
}

func NewServerKeyRepo(db *sql.DB) *ServerKeyRepo {
	return &ServerKeyRepo{db: db, cache: expirable.NewLRU[string, string](4096, nil, time.Minute)}
}

func (r *ServerKeyRepo) ServerKey(ctx context.Context, guildID string) (string, error) {
	if k, ok := r.cache.Get(guildID); ok {
		return k, nil
	}
	var key string
	err := r.db.QueryRowContext(ctx, `SELECT api_key FROM server_keys WHERE guild_id = $1`, guildID).Scan(&key)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	r.cache.Add(guildID, key)
	return key, nil
}
