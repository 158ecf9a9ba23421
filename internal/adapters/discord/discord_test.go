package discord

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jose-valero/erlc-compliance-bot/internal/app/condition"
)

func TestMemberFromDiscord(t *testing.T) {
	m := memberFromDiscord(&discordgo.Member{
		Nick:  "Nick",
		Roles: []string{"r1"},
		User:  &discordgo.User{ID: "1", Username: "user", GlobalName: "Global", Bot: true},
	})
	assert.Equal(t, "1", m.ID)
	assert.Equal(t, "Nick", m.DisplayName())
	assert.Equal(t, "Global", m.GlobalName)
	assert.True(t, m.Bot)
	assert.True(t, m.HasRole("r1"))

	ms := membersFromDiscord([]*discordgo.Member{nil, {User: &discordgo.User{ID: "2"}}})
	require.Len(t, ms, 1)
	assert.Equal(t, "2", ms[0].ID)
}

func TestRestCode(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &discordgo.RESTError{
		Message: &discordgo.APIErrorMessage{Code: discordgo.ErrCodeCannotSendMessagesToThisUser},
	})
	assert.Equal(t, discordgo.ErrCodeCannotSendMessagesToThisUser, restCode(err))
	assert.Zero(t, restCode(errors.New("plain")))
	assert.Zero(t, restCode(nil))
}

func TestIsAdmin(t *testing.T) {
	state := discordgo.NewState()
	require.NoError(t, state.GuildAdd(&discordgo.Guild{ID: "g1", OwnerID: "owner"}))
	s := &discordgo.Session{State: state}

	ic := func(userID string, perms int64) *discordgo.InteractionCreate {
		return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
			GuildID: "g1",
			Member:  &discordgo.Member{User: &discordgo.User{ID: userID}, Permissions: perms},
		}}
	}
	assert.True(t, isAdmin(s, ic("owner", 0)))
	assert.True(t, isAdmin(s, ic("mod", discordgo.PermissionManageGuild)))
	assert.True(t, isAdmin(s, ic("admin", discordgo.PermissionAdministrator)))
	assert.False(t, isAdmin(s, ic("pleb", discordgo.PermissionSendMessages)))
	assert.False(t, isAdmin(s, &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{GuildID: "g1"}}))
}

func TestUserLimiter(t *testing.T) {
	now := time.Unix(1000, 0)
	l := newUserLimiter(5 * time.Second)
	l.now = func() time.Time { return now }

	ok, _ := l.Allow("u1")
	assert.True(t, ok)

	now = now.Add(2 * time.Second)
	ok, wait := l.Allow("u1")
	assert.False(t, ok)
	assert.Equal(t, 3*time.Second, wait)

	ok, _ = l.Allow("u2")
	assert.True(t, ok)

	now = now.Add(4 * time.Second)
	ok, _ = l.Allow("u1")
	assert.True(t, ok)
}

func TestUserLimiterSweepsExpired(t *testing.T) {
	now := time.Unix(1000, 0)
	l := newUserLimiter(time.Second)
	l.now = func() time.Time { return now }
	for i := 0; i < sweepAt; i++ {
		l.Allow(fmt.Sprintf("u%d", i))
	}
	require.Equal(t, sweepAt, l.Len())

	now = now.Add(2 * time.Second)
	l.Allow("fresh")
	assert.Equal(t, 1, l.Len())
}

func TestCommandArgs(t *testing.T) {
	args := commandArgs([]*discordgo.ApplicationCommandInteractionDataOption{
		{Name: "expression", Type: discordgo.ApplicationCommandOptionString, Value: "  ERLC_Players > 1 "},
		{Name: "count", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(3)},
	})
	assert.Equal(t, map[string]string{"expression": "ERLC_Players > 1"}, args)
}

func TestConditionEmbed(t *testing.T) {
	e := conditionEmbed("ERLC_Players > 1", true, nil)
	require.Len(t, e.Fields, 2)
	assert.Equal(t, "✅ true", e.Fields[1].Value)

	e = conditionEmbed("nope", false, condition.ErrSyntax)
	assert.Equal(t, "Error", e.Fields[1].Name)

	e = conditionEmbed("OnDuty > 1", false, nil)
	assert.Equal(t, "❌ false", e.Fields[1].Value)
}

func TestRouterCommandTable(t *testing.T) {
	r := NewRouter(&discordgo.Session{State: discordgo.NewState()}, nil, nil, nil, nil)
	for _, name := range []string{"ping", "condition", "discordcheck"} {
		_, ok := r.byName[name]
		assert.True(t, ok, name)
	}
	assert.True(t, r.byName["condition"].AdminOnly)
	assert.False(t, r.byName["ping"].AdminOnly)
}
