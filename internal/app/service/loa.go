package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/erlc-compliance-bot/internal/domain"
)

const loaRoleFailureNotice = "**Alert:** ⚠️ Failed to remove LOA role due to discord issues.\nContact your Management to manually remove the role!"

// LoaService advances LOA records through activation and expiry. Each record
// gets at most one transition per pass and the persisted flag is flipped with
// a conditional update, so overlapping passes act once.
type LoaService struct {
	loas     LoaRepo
	settings SettingsRepo
	platform Platform
	filter   domain.GuildFilter
	now      func() time.Time
	log      *slog.Logger
}

func NewLoaService(loas LoaRepo, settings SettingsRepo, platform Platform, filter domain.GuildFilter, log *slog.Logger) *LoaService {
	if log == nil {
		log = slog.Default()
	}
	return &LoaService{
		loas:     loas,
		settings: settings,
		platform: platform,
		filter:   filter,
		now:      time.Now,
		log:      log.With("component", "loa"),
	}
}

type LoaPassStats struct {
	Activated int
	Expired   int
}

func (s *LoaService) RunOnce(ctx context.Context) (LoaPassStats, error) {
	var st LoaPassStats
	recs, err := s.loas.ListPending(ctx, s.filter)
	if err != nil {
		return st, fmt.Errorf("list pending loas: %w", err)
	}
	now := s.now()
	for _, rec := range recs {
		switch domain.NextState(rec, now) {
		case domain.LoaActivate:
			ok, err := s.activate(ctx, rec)
			if err != nil {
				s.log.Warn("loa activation failed", "loa", rec.ID, "err", err)
			} else if ok {
				st.Activated++
			}
		case domain.LoaExpire:
			ok, err := s.expire(ctx, rec)
			if err != nil {
				s.log.Warn("loa expiry failed", "loa", rec.ID, "err", err)
			} else if ok {
				st.Expired++
			}
		}
	}
	if st.Activated+st.Expired > 0 {
		s.log.Info("loa pass finished", "activated", st.Activated, "expired", st.Expired)
	}
	return st, nil
}

func (s *LoaService) activate(ctx context.Context, rec domain.LoaRecord) (bool, error) {
	changed, err := s.loas.MarkStarted(ctx, rec.ID)
	if err != nil || !changed {
		return false, err
	}
	loaTransitions.WithLabelValues(domain.LoaActivate.String()).Inc()
	log := s.log.With("loa", rec.ID, "guild", rec.GuildID, "user", rec.UserID)

	if s.soleActive(ctx, log, rec) {
		for _, role := range s.loaRoles(ctx, log, rec.GuildID) {
			if err := s.platform.AddRole(ctx, rec.GuildID, rec.UserID, role, "LOA Started"); err != nil {
				log.Warn("loa role grant failed", "role", role, "err", err)
			}
		}
	}

	s.dm(ctx, log, rec.UserID, &discordgo.MessageEmbed{
		Title:       rec.Type + " Started!",
		Description: fmt.Sprintf("Your %s has started in **%s**.", rec.Type, s.platform.GuildName(ctx, rec.GuildID)),
		Color:       embedColor,
	})
	return true, nil
}

func (s *LoaService) expire(ctx context.Context, rec domain.LoaRecord) (bool, error) {
	changed, err := s.loas.MarkExpired(ctx, rec.ID)
	if err != nil || !changed {
		return false, err
	}
	loaTransitions.WithLabelValues(domain.LoaExpire.String()).Inc()
	log := s.log.With("loa", rec.ID, "guild", rec.GuildID, "user", rec.UserID)

	failed := false
	if s.soleActive(ctx, log, rec) {
		for _, role := range s.loaRoles(ctx, log, rec.GuildID) {
			if err := s.platform.RemoveRole(ctx, rec.GuildID, rec.UserID, role, "LOA Expired"); err != nil {
				log.Warn("loa role revoke failed", "role", role, "err", err)
				failed = true
			}
		}
	}

	desc := fmt.Sprintf("Your %s has expired in **%s**.", rec.Type, s.platform.GuildName(ctx, rec.GuildID))
	if failed {
		desc += "\n" + loaRoleFailureNotice
	}
	s.dm(ctx, log, rec.UserID, &discordgo.MessageEmbed{
		Title:       rec.Type + " Expired",
		Description: desc,
		Color:       embedColor,
	})
	return true, nil
}

// soleActive is false when another active record of the same type keeps the
// roles in place. Lookup failures leave roles untouched.
func (s *LoaService) soleActive(ctx context.Context, log *slog.Logger, rec domain.LoaRecord) bool {
	n, err := s.loas.CountOtherActive(ctx, rec)
	if err != nil {
		log.Warn("loa overlap check failed", "err", err)
		return false
	}
	return n == 0
}

// loaRoles returns the configured roles that still exist in the guild.
func (s *LoaService) loaRoles(ctx context.Context, log *slog.Logger, guildID string) []string {
	g, err := s.settings.Get(ctx, guildID)
	if err != nil {
		log.Debug("no settings for loa guild", "err", err)
		return nil
	}
	var out []string
	for _, id := range g.StaffManagement.LOARole.IDs() {
		if s.platform.HasRole(ctx, guildID, id) {
			out = append(out, id)
		}
	}
	return out
}

func (s *LoaService) dm(ctx context.Context, log *slog.Logger, userID string, embed *discordgo.MessageEmbed) {
	if err := s.platform.SendDM(ctx, userID, embed); err != nil {
		log.Debug("loa dm failed", "err", err)
	}
}
