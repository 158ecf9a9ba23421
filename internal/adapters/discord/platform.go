package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/erlc-compliance-bot/internal/app/service"
	"github.com/jose-valero/erlc-compliance-bot/internal/domain"
)

const membersPageSize = 1000

// Platform implements service.Platform. Reads try the gateway state cache
// first and fall back to REST.
type Platform struct {
	s   *discordgo.Session
	log *slog.Logger
}

var _ service.Platform = (*Platform)(nil)

func NewPlatform(s *discordgo.Session, log *slog.Logger) *Platform {
	if log == nil {
		log = slog.Default()
	}
	return &Platform{s: s, log: log.With("component", "discord")}
}

func (p *Platform) BotID() string {
	if p.s.State != nil && p.s.State.User != nil {
		return p.s.State.User.ID
	}
	return ""
}

func (p *Platform) GuildName(ctx context.Context, guildID string) string {
	if g, err := p.s.State.Guild(guildID); err == nil && g.Name != "" {
		return g.Name
	}
	g, err := p.s.Guild(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return guildID
	}
	return g.Name
}

func (p *Platform) GuildMembers(ctx context.Context, guildID string) ([]domain.Member, error) {
	if g, err := p.s.State.Guild(guildID); err == nil && len(g.Members) > 0 {
		return membersFromDiscord(g.Members), nil
	}

	var out []domain.Member
	after := ""
	for {
		page, err := p.s.GuildMembers(guildID, after, membersPageSize, discordgo.WithContext(ctx))
		if err != nil {
			return out, fmt.Errorf("guild members %s: %w", guildID, err)
		}
		out = append(out, membersFromDiscord(page)...)
		if len(page) < membersPageSize {
			return out, nil
		}
		after = page[len(page)-1].User.ID
	}
}

func (p *Platform) Member(ctx context.Context, guildID, userID string) (*domain.Member, error) {
	if m, err := p.s.State.Member(guildID, userID); err == nil {
		dm := memberFromDiscord(m)
		return &dm, nil
	}
	m, err := p.s.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		if restCode(err) == discordgo.ErrCodeUnknownMember {
			return nil, service.ErrMemberNotFound
		}
		return nil, err
	}
	_ = p.s.State.MemberAdd(m)
	dm := memberFromDiscord(m)
	return &dm, nil
}

func (p *Platform) SearchMembers(ctx context.Context, guildID, query string, limit int) ([]domain.Member, error) {
	ms, err := p.s.GuildMembersSearch(guildID, query, limit, discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return membersFromDiscord(ms), nil
}

func (p *Platform) HasRole(ctx context.Context, guildID, roleID string) bool {
	if r, err := p.s.State.Role(guildID, roleID); err == nil && r != nil {
		return true
	}
	roles, err := p.s.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		p.log.Debug("guild roles unavailable", "guild", guildID, "err", err)
		return false
	}
	for _, r := range roles {
		if r.ID == roleID {
			return true
		}
	}
	return false
}

func (p *Platform) HasChannel(ctx context.Context, channelID string) bool {
	_, err := p.channel(ctx, channelID)
	return err == nil
}

func (p *Platform) AddRole(ctx context.Context, guildID, userID, roleID, reason string) error {
	return p.s.GuildMemberRoleAdd(guildID, userID, roleID,
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
}

func (p *Platform) RemoveRole(ctx context.Context, guildID, userID, roleID, reason string) error {
	return p.s.GuildMemberRoleRemove(guildID, userID, roleID,
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
}

// SendDM treats closed DMs as success.
func (p *Platform) SendDM(ctx context.Context, userID string, embed *discordgo.MessageEmbed) error {
	ch, err := p.s.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("open dm %s: %w", userID, err)
	}
	_, err = p.s.ChannelMessageSendEmbed(ch.ID, embed, discordgo.WithContext(ctx))
	if restCode(err) == discordgo.ErrCodeCannotSendMessagesToThisUser {
		p.log.Debug("dm closed", "user", userID)
		return nil
	}
	return err
}

func (p *Platform) SendMessage(ctx context.Context, channelID string, msg *discordgo.MessageSend) error {
	_, err := p.s.ChannelMessageSendComplex(channelID, msg, discordgo.WithContext(ctx))
	return err
}

func (p *Platform) ChannelName(ctx context.Context, channelID string) (string, error) {
	ch, err := p.channel(ctx, channelID)
	if err != nil {
		return "", err
	}
	return ch.Name, nil
}

func (p *Platform) RenameChannel(ctx context.Context, channelID, name string) error {
	ch, err := p.s.ChannelEdit(channelID, &discordgo.ChannelEdit{Name: name}, discordgo.WithContext(ctx))
	if err != nil {
		return err
	}
	_ = p.s.State.ChannelAdd(ch)
	return nil
}

func (p *Platform) channel(ctx context.Context, id string) (*discordgo.Channel, error) {
	if ch, err := p.s.State.Channel(id); err == nil && ch != nil {
		return ch, nil
	}
	ch, err := p.s.Channel(id, discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	_ = p.s.State.ChannelAdd(ch)
	return ch, nil
}
