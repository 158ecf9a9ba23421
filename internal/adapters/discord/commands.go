package discord

import "github.com/bwmarrin/discordgo"

var (
	adminPerms  int64 = discordgo.PermissionManageGuild
	guildOnly         = false
	conditionOp       = &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "expression",
		Description: "e.g. ERLC_Players >= 20 or ERLC_X_InGame Username == true",
		Required:    true,
	}
)

// commands returns the slash commands this router serves.
func (r *Router) commands() []Command {
	return []Command{
		{
			Def: &discordgo.ApplicationCommand{
				Name:        "ping",
				Description: "Check that the bot is alive",
			},
			Handler: r.handlePing,
		},
		{
			Def: &discordgo.ApplicationCommand{
				Name:                     "condition",
				Description:              "Evaluate a condition against this server's live state",
				DefaultMemberPermissions: &adminPerms,
				DMPermission:             &guildOnly,
				Options:                  []*discordgo.ApplicationCommandOption{conditionOp},
			},
			AdminOnly: true,
			Handler:   r.handleCondition,
		},
		{
			Def: &discordgo.ApplicationCommand{
				Name:                     "discordcheck",
				Description:              "Run the automatic Discord check for this server now",
				DefaultMemberPermissions: &adminPerms,
				DMPermission:             &guildOnly,
			},
			AdminOnly: true,
			Handler:   r.handleDiscordCheck,
		},
	}
}
