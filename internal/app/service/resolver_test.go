package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jose-valero/erlc-compliance-bot/internal/domain"
)

func TestBuildNameIndex(t *testing.T) {
	idx := BuildNameIndex([]domain.Member{
		{ID: "1", Username: "first", Nick: "Shared"},
		{ID: "2", Username: "second", GlobalName: "shared"},
		{ID: "3", Username: "robot", Bot: true},
	})
	assert.Equal(t, "1", idx["shared"].ID)
	assert.Equal(t, "2", idx["second"].ID)
	_, ok := idx["robot"]
	assert.False(t, ok)
}

func TestResolverTiers(t *testing.T) {
	platform := newFakePlatform()
	platform.members["g1"] = []domain.Member{
		{ID: "u1", Username: "indexed"},
		{ID: "u2", Username: "linked_discord"},
	}
	platform.searchable["SearchOnly"] = domain.Member{ID: "u3", Username: "searchonly_x"}
	links := &fakeLinks{links: map[string]string{"roblox_linked": "u2", "left_guild": "u404"}}
	r := NewResolver(platform, links, nil)
	idx := BuildNameIndex(platform.members["g1"])
	ctx := context.Background()

	m := r.Resolve(ctx, "g1", idx, "INDEXED")
	require.NotNil(t, m)
	assert.Equal(t, "u1", m.ID)
	assert.Zero(t, links.calls)

	m = r.Resolve(ctx, "g1", idx, "Roblox_Linked")
	require.NotNil(t, m)
	assert.Equal(t, "u2", m.ID)
	assert.Zero(t, platform.searches)

	m = r.Resolve(ctx, "g1", idx, "SearchOnly")
	require.NotNil(t, m)
	assert.Equal(t, "u3", m.ID)

	assert.Nil(t, r.Resolve(ctx, "g1", idx, "left_guild"))
	assert.Nil(t, r.Resolve(ctx, "g1", idx, "nobody"))
}

func TestResolverCachesLinks(t *testing.T) {
	platform := newFakePlatform()
	platform.members["g1"] = []domain.Member{{ID: "u2", Username: "discord_name"}}
	links := &fakeLinks{links: map[string]string{"roblox_name": "u2"}}
	r := NewResolver(platform, links, nil)
	ctx := context.Background()

	require.NotNil(t, r.Resolve(ctx, "g1", nil, "roblox_name"))
	require.NotNil(t, r.Resolve(ctx, "g1", nil, "roblox_name"))
	assert.Equal(t, 1, links.calls)
}

func TestResolverSeesLinkAddedAfterMiss(t *testing.T) {
	platform := newFakePlatform()
	platform.members["g1"] = []domain.Member{{ID: "u7", Username: "discord_name"}}
	links := &fakeLinks{links: map[string]string{}}
	r := NewResolver(platform, links, nil)
	ctx := context.Background()

	assert.Nil(t, r.Resolve(ctx, "g1", nil, "NewlyLinked"))

	links.mu.Lock()
	links.links["newlylinked"] = "u7"
	links.mu.Unlock()

	m := r.Resolve(ctx, "g1", nil, "NewlyLinked")
	require.NotNil(t, m)
	assert.Equal(t, "u7", m.ID)
	assert.Equal(t, 2, links.calls)
}
