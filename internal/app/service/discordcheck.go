package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sasha-s/go-deadlock"

	"github.com/jose-valero/erlc-compliance-bot/internal/domain"
)

const embedColor = 0x2B2D31

// ErrCheckRunning is returned by CheckGuild while the same guild is already
// being checked.
var ErrCheckRunning = errors.New("discord check already running for this guild")

// guildLocks is a set of per-guild try-locks.
type guildLocks struct {
	mu   deadlock.Mutex
	held map[string]struct{}
}

func (l *guildLocks) tryLock(guildID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[guildID]; ok {
		return false
	}
	l.held[guildID] = struct{}{}
	return true
}

func (l *guildLocks) unlock(guildID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, guildID)
}

// DiscordCheckService finds in-game players that are not members of the
// guild's Discord, warns or loads them, and kicks repeat offenders.
type DiscordCheckService struct {
	settings    SettingsRepo
	game        GameAPI
	platform    Platform
	resolver    *Resolver
	infractions InfractionStore
	runner      *GuildRunner
	filter      domain.GuildFilter
	timeout     time.Duration
	running     *guildLocks
	log         *slog.Logger
}

func NewDiscordCheckService(settings SettingsRepo, game GameAPI, platform Platform, resolver *Resolver,
	infractions InfractionStore, runner *GuildRunner, filter domain.GuildFilter, log *slog.Logger) *DiscordCheckService {
	if log == nil {
		log = slog.Default()
	}
	return &DiscordCheckService{
		settings:    settings,
		game:        game,
		platform:    platform,
		resolver:    resolver,
		infractions: infractions,
		runner:      runner,
		filter:      filter,
		timeout:     5 * time.Second,
		running:     &guildLocks{held: make(map[string]struct{})},
		log:         log.With("component", "discord_checks"),
	}
}

// RunOnce checks every eligible guild.
func (s *DiscordCheckService) RunOnce(ctx context.Context) (RunStats, error) {
	guilds, err := s.settings.DiscordCheckGuilds(ctx, s.filter)
	if err != nil {
		return RunStats{}, fmt.Errorf("list discord check guilds: %w", err)
	}
	s.log.Info("starting discord check pass", "guilds", len(guilds))
	return s.runner.Run(ctx, "discord_checks", guilds, func(ctx context.Context, g domain.GuildSettings) error {
		err := s.CheckGuild(ctx, g)
		if errors.Is(err, ErrCheckRunning) {
			s.log.Debug("guild already being checked, skipping", "guild", g.GuildID)
			return nil
		}
		return err
	}), nil
}

// CheckOutcome lists the usernames acted on for one guild.
type CheckOutcome struct {
	Lesser []domain.Player
	Kicked []domain.Player
}

// CheckGuild runs one check for g. Concurrent checks of one guild would each
// count an infraction, so a second caller gets ErrCheckRunning.
func (s *DiscordCheckService) CheckGuild(ctx context.Context, g domain.GuildSettings) error {
	_, err := s.checkGuild(ctx, g)
	return err
}

func (s *DiscordCheckService) checkGuild(ctx context.Context, g domain.GuildSettings) (CheckOutcome, error) {
	var out CheckOutcome
	if !s.running.tryLock(g.GuildID) {
		return out, ErrCheckRunning
	}
	defer s.running.unlock(g.GuildID)

	cfg := g.ERLC.DiscordChecks
	if !cfg.Channel.Valid() {
		return out, nil
	}
	log := s.log.With("guild", g.GuildID)

	rctx, cancel := context.WithTimeout(ctx, s.timeout)
	players, err := s.game.ServerPlayers(rctx, g.GuildID)
	cancel()
	if err != nil {
		return out, fmt.Errorf("fetch roster: %w", err)
	}

	// Users who left the roster lose their infractions, empty roster included.
	defer func() {
		removed, err := s.infractions.Cleanup(ctx, g.GuildID, domain.UsernameSet(players))
		if err != nil {
			log.Warn("infraction cleanup failed", "err", err)
		} else if len(removed) > 0 {
			log.Debug("infractions cleared for absent users", "count", len(removed))
		}
	}()
	if len(players) == 0 {
		return out, nil
	}

	members, err := s.platform.GuildMembers(ctx, g.GuildID)
	if err != nil {
		log.Warn("guild members unavailable, resolving without index", "err", err)
	}
	idx := BuildNameIndex(members)

	for _, p := range players {
		key := strings.ToLower(p.Username)
		if s.resolver.Resolve(ctx, g.GuildID, idx, p.Username) != nil {
			playersClassified.WithLabelValues("compliant").Inc()
			if err := s.infractions.Reset(ctx, g.GuildID, key); err != nil {
				log.Debug("infraction reset failed", "username", key, "err", err)
			}
			continue
		}
		playersClassified.WithLabelValues("missing").Inc()

		if s.shouldKick(ctx, log, g.GuildID, key, cfg) {
			out.Kicked = append(out.Kicked, p)
			continue
		}
		out.Lesser = append(out.Lesser, p)
	}

	s.issueCommands(ctx, log, g.GuildID, cfg, out)
	if len(out.Lesser)+len(out.Kicked) > 0 {
		s.sendSummary(ctx, log, cfg, out)
	}
	return out, nil
}

// shouldKick applies the escalation policy and updates the infraction count.
func (s *DiscordCheckService) shouldKick(ctx context.Context, log *slog.Logger, guildID, key string, cfg domain.DiscordCheckSettings) bool {
	if !cfg.Escalates() {
		return false
	}
	n, err := s.infractions.Get(ctx, guildID, key)
	if err != nil {
		log.Warn("infraction lookup failed", "username", key, "err", err)
		return false
	}
	if n+1 >= int(cfg.KickAfterInfractions) {
		if err := s.infractions.Reset(ctx, guildID, key); err != nil {
			log.Warn("infraction reset failed", "username", key, "err", err)
		}
		return true
	}
	if _, err := s.infractions.Increment(ctx, guildID, key); err != nil {
		log.Warn("infraction increment failed", "username", key, "err", err)
	}
	return false
}

func (s *DiscordCheckService) issueCommands(ctx context.Context, log *slog.Logger, guildID string, cfg domain.DiscordCheckSettings, out CheckOutcome) {
	if len(out.Lesser) > 0 {
		users := joinUsernames(out.Lesser)
		switch {
		case cfg.Load:
			s.run(ctx, log, guildID, "load", ":load "+users)
		case cfg.WarnEnabled():
			s.run(ctx, log, guildID, "pm", ":pm "+users+" "+cfg.MessageOrDefault())
		}
	}
	if len(out.Kicked) > 0 {
		s.run(ctx, log, guildID, "kick", ":kick "+joinUsernames(out.Kicked))
	}
}

func (s *DiscordCheckService) run(ctx context.Context, log *slog.Logger, guildID, verb, command string) {
	if err := s.game.RunCommand(ctx, guildID, command); err != nil {
		log.Warn("game command failed", "verb", verb, "err", err)
		return
	}
	commandsIssued.WithLabelValues(verb).Inc()
}

func (s *DiscordCheckService) sendSummary(ctx context.Context, log *slog.Logger, cfg domain.DiscordCheckSettings, out CheckOutcome) {
	channelID := cfg.Channel.String()
	if !s.platform.HasChannel(ctx, channelID) {
		log.Warn("discord check channel not found", "channel", channelID)
		return
	}
	if err := s.platform.SendMessage(ctx, channelID, summaryMessage(cfg, out)); err != nil {
		log.Warn("discord check summary failed", "channel", channelID, "err", err)
	}
}

func summaryMessage(cfg domain.DiscordCheckSettings, out CheckOutcome) *discordgo.MessageSend {
	footer := "PM has been sent to the users"
	switch {
	case cfg.Load:
		footer = "Users have been loaded"
	case !cfg.WarnEnabled():
		footer = "No in-game action was taken"
	}
	embed := &discordgo.MessageEmbed{
		Title:       "Automatic Discord Checks",
		Color:       embedColor,
		Description: profileLines(out.Lesser),
		Footer:      &discordgo.MessageEmbedFooter{Text: footer},
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	if len(out.Kicked) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Kicked",
			Value: profileLines(out.Kicked),
		})
	}

	msg := &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{embed}}
	if roles := cfg.Mentionables.IDs(); len(roles) > 0 {
		mentions := make([]string, len(roles))
		for i, id := range roles {
			mentions[i] = "<@&" + id + ">"
		}
		msg.Content = strings.Join(mentions, " ")
		msg.AllowedMentions = &discordgo.MessageAllowedMentions{Roles: roles}
	}
	return msg
}

func profileLines(players []domain.Player) string {
	var b strings.Builder
	for _, p := range players {
		fmt.Fprintf(&b, "> [%s](%s)\n", p.Username, p.ProfileURL())
	}
	return b.String()
}

func joinUsernames(players []domain.Player) string {
	names := make([]string, len(players))
	for i, p := range players {
		names[i] = p.Username
	}
	return strings.Join(names, ",")
}
