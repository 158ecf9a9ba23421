package discord

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

// Ctx is the per-interaction state handed to command handlers.
type Ctx struct {
	Log     *slog.Logger
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
	GuildID string
	UserID  string
	// Args holds trimmed string options keyed by option name.
	Args map[string]string
}

// CommandHandler returns the ephemeral reply: plain content, embeds or both.
type CommandHandler func(ctx context.Context, c *Ctx) (string, []*discordgo.MessageEmbed)

type Command struct {
	Def       *discordgo.ApplicationCommand
	AdminOnly bool
	Handler   CommandHandler
}
