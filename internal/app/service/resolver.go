package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/jose-valero/erlc-compliance-bot/internal/domain"
	"github.com/jose-valero/erlc-compliance-bot/internal/infra/storage"
)

// NameIndex maps lowercased usernames, nicks and global names to members.
type NameIndex map[string]domain.Member

// BuildNameIndex skips bots. Earlier members win on collisions.
func BuildNameIndex(members []domain.Member) NameIndex {
	idx := make(NameIndex, len(members)*2)
	for _, m := range members {
		if m.Bot {
			continue
		}
		for _, name := range []string{m.Username, m.Nick, m.GlobalName} {
			if name == "" {
				continue
			}
			key := strings.ToLower(name)
			if _, ok := idx[key]; !ok {
				idx[key] = m
			}
		}
	}
	return idx
}

const (
	linkCacheSize = 10_000
	linkCacheTTL  = 5 * time.Minute
)

// Resolver maps an in-game username to a guild member. Tiers run in order:
// name index, link registry, live member search. Failures mean "no match".
type Resolver struct {
	platform      Platform
	links         LinkRegistry
	linkCache     *expirable.LRU[string, string]
	searchTimeout time.Duration
	log           *slog.Logger
}

func NewResolver(platform Platform, links LinkRegistry, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{
		platform:      platform,
		links:         links,
		linkCache:     expirable.NewLRU[string, string](linkCacheSize, nil, linkCacheTTL),
		searchTimeout: 5 * time.Second,
		log:           log.With("component", "resolver"),
	}
}

func (r *Resolver) Resolve(ctx context.Context, guildID string, idx NameIndex, username string) *domain.Member {
	key := strings.ToLower(username)
	if m, ok := idx[key]; ok {
		resolverHits.WithLabelValues("index").Inc()
		return &m
	}

	if userID := r.linkedUser(ctx, key); userID != "" {
		m, err := r.platform.Member(ctx, guildID, userID)
		switch {
		case err == nil:
			resolverHits.WithLabelValues("link").Inc()
			return m
		case !errors.Is(err, ErrMemberNotFound):
			r.log.Debug("linked member fetch failed", "guild", guildID, "user", userID, "err", err)
		}
	}

	sctx, cancel := context.WithTimeout(ctx, r.searchTimeout)
	defer cancel()
	found, err := r.platform.SearchMembers(sctx, guildID, username, 1)
	if err != nil {
		r.log.Debug("member search failed", "guild", guildID, "username", username, "err", err)
		return nil
	}
	if len(found) == 0 || found[0].Bot {
		resolverHits.WithLabelValues("miss").Inc()
		return nil
	}
	resolverHits.WithLabelValues("search").Inc()
	return &found[0]
}

// linkedUser returns "" when no link exists. Only found links are cached so
// an account linked mid-session resolves on the next pass.
func (r *Resolver) linkedUser(ctx context.Context, key string) string {
	if r.links == nil {
		return ""
	}
	if id, ok := r.linkCache.Get(key); ok {
		return id
	}
	id, err := r.links.Lookup(ctx, key)
	switch {
	case err == nil:
		r.linkCache.Add(key, id)
		return id
	case !errors.Is(err, storage.ErrNotFound):
		r.log.Debug("link lookup failed", "username", key, "err", err)
	}
	return ""
}
