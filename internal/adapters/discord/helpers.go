package discord

import (
	"errors"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/erlc-compliance-bot/internal/domain"
)

// commandArgs collects the string options of a slash command.
func commandArgs(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]string {
	args := make(map[string]string, len(opts))
	for _, o := range opts {
		if o.Type == discordgo.ApplicationCommandOptionString {
			args[o.Name] = strings.TrimSpace(o.StringValue())
		}
	}
	return args
}

func memberFromDiscord(m *discordgo.Member) domain.Member {
	out := domain.Member{Nick: m.Nick, Roles: m.Roles}
	if m.User != nil {
		out.ID = m.User.ID
		out.Username = m.User.Username
		out.GlobalName = m.User.GlobalName
		out.Bot = m.User.Bot
	}
	return out
}

func membersFromDiscord(ms []*discordgo.Member) []domain.Member {
	out := make([]domain.Member, 0, len(ms))
	for _, m := range ms {
		if m == nil {
			continue
		}
		out = append(out, memberFromDiscord(m))
	}
	return out
}

func restCode(err error) int {
	var rerr *discordgo.RESTError
	if errors.As(err, &rerr) && rerr.Message != nil {
		return rerr.Message.Code
	}
	return 0
}

func interactionUserID(ic *discordgo.InteractionCreate) string {
	switch {
	case ic.Member != nil && ic.Member.User != nil:
		return ic.Member.User.ID
	case ic.User != nil:
		return ic.User.ID
	}
	return ""
}
