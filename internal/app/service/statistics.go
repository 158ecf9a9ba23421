package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jose-valero/erlc-compliance-bot/internal/domain"
)

// StatisticsService renames configured channels with live server numbers.
type StatisticsService struct {
	settings      SettingsRepo
	game          GameAPI
	platform      Platform
	shifts        ShiftCounter
	runner        *GuildRunner
	filter        domain.GuildFilter
	gatherTimeout time.Duration
	renameTimeout time.Duration
	renameLimit   int
	log           *slog.Logger
}

func NewStatisticsService(settings SettingsRepo, game GameAPI, platform Platform, shifts ShiftCounter,
	runner *GuildRunner, filter domain.GuildFilter, log *slog.Logger) *StatisticsService {
	if log == nil {
		log = slog.Default()
	}
	return &StatisticsService{
		settings:      settings,
		game:          game,
		platform:      platform,
		shifts:        shifts,
		runner:        runner,
		filter:        filter,
		gatherTimeout: 10 * time.Second,
		renameTimeout: 5 * time.Second,
		renameLimit:   5,
		log:           log.With("component", "statistics"),
	}
}

func (s *StatisticsService) RunOnce(ctx context.Context) (RunStats, error) {
	guilds, err := s.settings.StatisticsGuilds(ctx, s.filter)
	if err != nil {
		return RunStats{}, fmt.Errorf("list statistics guilds: %w", err)
	}
	return s.runner.Run(ctx, "statistics", guilds, s.CheckGuild), nil
}

// Placeholders builds the {key} substitutions for channel name formats.
func Placeholders(players []domain.Player, status domain.ServerStatus, queue, onDuty int) map[string]string {
	var mods, admins, staff int
	for _, p := range players {
		switch p.Permission {
		case domain.PermissionModerator:
			mods++
		case domain.PermissionAdministrator:
			admins++
		}
		if p.Permission.IsStaff() {
			staff++
		}
	}
	return map[string]string{
		"onduty":      strconv.Itoa(onDuty),
		"staff":       strconv.Itoa(staff),
		"mods":        strconv.Itoa(mods),
		"admins":      strconv.Itoa(admins),
		"players":     strconv.Itoa(status.CurrentPlayers),
		"join_code":   status.JoinKey,
		"max_players": strconv.Itoa(status.MaxPlayers),
		"queue":       strconv.Itoa(queue),
	}
}

// RenderFormat replaces every {key} in format. Unknown keys are left as is.
func RenderFormat(format string, placeholders map[string]string) string {
	pairs := make([]string, 0, len(placeholders)*2)
	for k, v := range placeholders {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(format)
}

func (s *StatisticsService) CheckGuild(ctx context.Context, g domain.GuildSettings) error {
	if len(g.ERLC.Statistics) == 0 {
		return nil
	}
	log := s.log.With("guild", g.GuildID)

	var (
		players []domain.Player
		status  domain.ServerStatus
		queue   int
		onDuty  int
	)
	gctx, cancel := context.WithTimeout(ctx, s.gatherTimeout)
	eg, ectx := errgroup.WithContext(gctx)
	eg.Go(func() (err error) {
		players, err = s.game.ServerPlayers(ectx, g.GuildID)
		return err
	})
	eg.Go(func() (err error) {
		status, err = s.game.ServerStatus(ectx, g.GuildID)
		return err
	})
	eg.Go(func() (err error) {
		queue, err = s.game.ServerQueue(ectx, g.GuildID)
		return err
	})
	eg.Go(func() (err error) {
		onDuty, err = s.shifts.CountOnDuty(ectx, g.GuildID)
		return err
	})
	err := eg.Wait()
	cancel()
	if err != nil {
		return fmt.Errorf("gather statistics: %w", err)
	}

	placeholders := Placeholders(players, status, queue, onDuty)

	var rg errgroup.Group
	rg.SetLimit(s.renameLimit)
	for channelID, stat := range g.ERLC.Statistics {
		channelID, stat := channelID, stat
		rg.Go(func() error {
			s.updateChannel(ctx, log, channelID, RenderFormat(stat.Format, placeholders))
			return nil
		})
	}
	_ = rg.Wait()
	log.Debug("statistics updated", "channels", len(g.ERLC.Statistics))
	return nil
}

func (s *StatisticsService) updateChannel(ctx context.Context, log *slog.Logger, channelID, name string) {
	ctx, cancel := context.WithTimeout(ctx, s.renameTimeout)
	defer cancel()

	current, err := s.platform.ChannelName(ctx, channelID)
	if err != nil {
		log.Warn("statistics channel unavailable", "channel", channelID, "err", err)
		return
	}
	if current == name {
		return
	}
	if err := s.platform.RenameChannel(ctx, channelID, name); err != nil {
		log.Warn("statistics channel rename failed", "channel", channelID, "err", err)
	}
}
