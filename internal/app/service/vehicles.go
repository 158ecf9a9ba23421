package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/sync/errgroup"

	"github.com/jose-valero/erlc-compliance-bot/internal/domain"
)

const (
	// VehicleAlertCeiling is the PM count at which staff get an alert.
	VehicleAlertCeiling = 4
	vehicleThrottleTTL  = time.Hour
)

var modelYear = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// NormalizeVehicle lowercases name, strips its first model year and
// collapses whitespace. year is "" when none is present.
func NormalizeVehicle(name string) (base, year string) {
	name = strings.ToLower(strings.TrimSpace(name))
	if loc := modelYear.FindStringIndex(name); loc != nil {
		year = name[loc[0]:loc[1]]
		name = name[:loc[0]] + " " + name[loc[1]:]
	}
	return strings.Join(strings.Fields(name), " "), year
}

// VehicleRestricted reports whether vehicle matches any restricted entry. A
// missing year on either side matches any year.
func VehicleRestricted(vehicle string, restricted []string) bool {
	name, year := NormalizeVehicle(vehicle)
	for _, r := range restricted {
		rname, ryear := NormalizeVehicle(r)
		if name == rname && (year == "" || ryear == "" || year == ryear) {
			return true
		}
	}
	return false
}

type VehicleService struct {
	settings SettingsRepo
	game     GameAPI
	platform Platform
	resolver *Resolver
	throttle ThrottleStore
	runner   *GuildRunner
	filter   domain.GuildFilter
	timeout  time.Duration
	now      func() time.Time
	log      *slog.Logger
}

func NewVehicleService(settings SettingsRepo, game GameAPI, platform Platform, resolver *Resolver,
	throttle ThrottleStore, runner *GuildRunner, filter domain.GuildFilter, log *slog.Logger) *VehicleService {
	if log == nil {
		log = slog.Default()
	}
	return &VehicleService{
		settings: settings,
		game:     game,
		platform: platform,
		resolver: resolver,
		throttle: throttle,
		runner:   runner,
		filter:   filter,
		timeout:  5 * time.Second,
		now:      time.Now,
		log:      log.With("component", "vehicle_restrictions"),
	}
}

func (s *VehicleService) RunOnce(ctx context.Context) (RunStats, error) {
	if n, err := s.throttle.Purge(ctx, s.now().Add(-vehicleThrottleTTL)); err != nil {
		s.log.Warn("throttle purge failed", "err", err)
	} else if n > 0 {
		s.log.Debug("throttle entries purged", "count", n)
	}

	guilds, err := s.settings.VehicleRestrictionGuilds(ctx, s.filter)
	if err != nil {
		return RunStats{}, fmt.Errorf("list vehicle restriction guilds: %w", err)
	}
	return s.runner.Run(ctx, "vehicle_restrictions", guilds, s.CheckGuild), nil
}

func (s *VehicleService) CheckGuild(ctx context.Context, g domain.GuildSettings) error {
	cfg := g.ERLC.VehicleRestrictions
	if !cfg.Enabled || !cfg.Channel.Valid() || len(cfg.Cars) == 0 {
		return nil
	}
	log := s.log.With("guild", g.GuildID)

	var exempt []string
	for _, id := range cfg.Roles.IDs() {
		if s.platform.HasRole(ctx, g.GuildID, id) {
			exempt = append(exempt, id)
		}
	}
	if len(exempt) == 0 {
		log.Debug("no exempt roles exist, skipping")
		return nil
	}
	alertChannel := cfg.Channel.String()
	if !s.platform.HasChannel(ctx, alertChannel) {
		log.Debug("alert channel missing, skipping", "channel", alertChannel)
		return nil
	}

	var (
		players  []domain.Player
		vehicles []domain.Vehicle
	)
	gctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	eg, ectx := errgroup.WithContext(gctx)
	eg.Go(func() (err error) {
		players, err = s.game.ServerPlayers(ectx, g.GuildID)
		return err
	})
	eg.Go(func() (err error) {
		vehicles, err = s.game.ServerVehicles(ectx, g.GuildID)
		return err
	})
	if err := eg.Wait(); err != nil {
		return fmt.Errorf("fetch players and vehicles: %w", err)
	}

	byName := make(map[string]domain.Player, len(players))
	for _, p := range players {
		byName[strings.ToLower(p.Username)] = p
	}

	var idx NameIndex
	for _, v := range vehicles {
		p, ok := byName[strings.ToLower(v.Owner)]
		if !ok || !VehicleRestricted(v.Name, cfg.Cars) {
			continue
		}
		if idx == nil {
			members, err := s.platform.GuildMembers(ctx, g.GuildID)
			if err != nil {
				log.Warn("guild members unavailable, resolving without index", "err", err)
			}
			idx = BuildNameIndex(members)
		}
		if m := s.resolver.Resolve(ctx, g.GuildID, idx, p.Username); m != nil && m.HasAnyRole(exempt) {
			continue
		}
		s.warn(ctx, log, g.GuildID, alertChannel, p, cfg.MessageOrDefault())
	}
	return nil
}

func (s *VehicleService) warn(ctx context.Context, log *slog.Logger, guildID, channelID string, p domain.Player, message string) {
	if err := s.game.RunCommand(ctx, guildID, ":pm "+p.Username+" "+message); err != nil {
		log.Warn("vehicle pm failed", "username", p.Username, "err", err)
	} else {
		commandsIssued.WithLabelValues("pm").Inc()
	}

	subject := guildID + "/" + strings.ToLower(p.Username)
	n, err := s.throttle.Bump(ctx, subject, s.now())
	if err != nil {
		log.Warn("throttle bump failed", "username", p.Username, "err", err)
		return
	}
	if n < VehicleAlertCeiling {
		return
	}

	if err := s.platform.SendMessage(ctx, channelID, vehicleAlert(p, n-1)); err != nil {
		log.Warn("vehicle alert failed", "username", p.Username, "err", err)
	} else {
		vehicleAlerts.Inc()
	}
	if err := s.throttle.Remove(ctx, subject); err != nil {
		log.Warn("throttle reset failed", "username", p.Username, "err", err)
	}
}

func vehicleAlert(p domain.Player, warned int) *discordgo.MessageSend {
	return &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{{
		Title: "Whitelisted Vehicle Warning",
		Description: fmt.Sprintf("> I've PM'd [%s](%s) %d times that they are in a whitelisted vehicle without the required role.",
			p.Username, p.ProfileURL(), warned),
		Color:     embedColor,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}}}
}
