package discord

import (
	"context"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/erlc-compliance-bot/internal/app/service"
)

type Router struct {
	s   *discordgo.Session
	log *slog.Logger

	conditions *service.ConditionService
	checks     *service.DiscordCheckService
	settings   service.SettingsRepo
	limiter    *userLimiter

	byName map[string]Command
}

func NewRouter(
	s *discordgo.Session,
	conditions *service.ConditionService,
	checks *service.DiscordCheckService,
	settings service.SettingsRepo,
	log *slog.Logger,
) *Router {
	if log == nil {
		log = slog.Default()
	}
	r := &Router{
		s:          s,
		log:        log.With("component", "router"),
		conditions: conditions,
		checks:     checks,
		settings:   settings,
		limiter:    newUserLimiter(5 * time.Second),
	}
	r.byName = make(map[string]Command)
	for _, c := range r.commands() {
		r.byName[c.Def.Name] = c
	}
	return r
}

// Register upserts the global slash commands.
func (r *Router) Register() error {
	appID := r.s.State.User.ID
	defs := make([]*discordgo.ApplicationCommand, 0, len(r.byName))
	for _, c := range r.commands() {
		defs = append(defs, c.Def)
	}
	_, err := r.s.ApplicationCommandBulkOverwrite(appID, "", defs)
	return err
}

func (r *Router) Handlers() {
	r.s.AddHandler(func(s *discordgo.Session, ic *discordgo.InteractionCreate) {
		if ic.Type != discordgo.InteractionApplicationCommand {
			return
		}
		r.handleSlashCommand(s, ic)
	})
}

func (r *Router) handleSlashCommand(s *discordgo.Session, ic *discordgo.InteractionCreate) {
	data := ic.ApplicationCommandData()
	c := &Ctx{
		Session: s,
		Event:   ic,
		GuildID: ic.GuildID,
		UserID:  interactionUserID(ic),
		Args:    commandArgs(data.Options),
	}
	c.Log = r.log.With("cmd", data.Name, "guild", c.GuildID, "user", c.UserID)
	c.Log.Info("slash command")

	defer func() {
		if rec := recover(); rec != nil {
			c.Log.Error("panic in slash command", "panic", rec)
			ReplyEphemeral(s, ic, c.Log, "❌ Something went wrong while running this command.")
		}
	}()

	_ = DeferEphemeral(s, ic, c.Log)

	cmd, ok := r.byName[data.Name]
	if !ok {
		ReplyEphemeral(s, ic, c.Log, "Unknown command.")
		return
	}
	if cmd.AdminOnly && !isAdmin(s, ic) {
		ReplyEphemeral(s, ic, c.Log, "🔒 You need Manage Server to use this command.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 12*time.Second)
	defer cancel()
	content, embeds := cmd.Handler(ctx, c)
	ReplyEphemeral(s, ic, c.Log, content, embeds...)
}
