package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jose-valero/erlc-compliance-bot/internal/domain"
)

func TestPlaceholdersAndRender(t *testing.T) {
	players := []domain.Player{
		{Permission: domain.PermissionNormal},
		{Permission: domain.PermissionModerator},
		{Permission: domain.PermissionAdministrator},
		{Permission: "Server Owner"},
	}
	ph := Placeholders(players, domain.ServerStatus{CurrentPlayers: 4, MaxPlayers: 40, JoinKey: "abcd"}, 2, 7)
	assert.Equal(t, "3", ph["staff"])
	assert.Equal(t, "1", ph["mods"])
	assert.Equal(t, "1", ph["admins"])

	got := RenderFormat("{players}/{max_players} | {join_code} | q{queue} | duty {onduty} | {unknown}", ph)
	assert.Equal(t, "4/40 | abcd | q2 | duty 7 | {unknown}", got)
}

func TestStatisticsRenamesOnlyOnChange(t *testing.T) {
	game := newFakeGame()
	game.status = domain.ServerStatus{CurrentPlayers: 12, MaxPlayers: 40}
	platform := newFakePlatform()
	platform.channels["s1"] = "old"
	platform.channels["s2"] = "Staff: 0"
	settings := &fakeSettings{guilds: []domain.GuildSettings{{
		GuildID: "g1",
		ERLC: domain.ERLCSettings{Statistics: map[string]domain.StatisticsChannel{
			"s1":      {Format: "Players: {players}/{max_players}"},
			"s2":      {Format: "Staff: {staff}"},
			"missing": {Format: "{queue}"},
		}},
	}}}
	svc := NewStatisticsService(settings, game, platform, fakeShifts{onDuty: 3}, NewGuildRunner(0, nil), domain.GuildFilter{}, nil)

	st, err := svc.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, st.Failed)
	assert.Equal(t, "Players: 12/40", platform.channels["s1"])
	assert.Equal(t, 1, platform.renames["s1"])
	assert.Zero(t, platform.renames["s2"])

	_, err = svc.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, platform.renames["s1"])
}
