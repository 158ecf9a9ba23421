package service

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/erlc-compliance-bot/internal/domain"
)

// ErrMemberNotFound is returned by Platform.Member when the user is not in the guild.
var ErrMemberNotFound = errors.New("member not found")

// Implemented by internal/adapters/erlc.Client
type GameAPI interface {
	ServerPlayers(ctx context.Context, guildID string) ([]domain.Player, error)
	ServerVehicles(ctx context.Context, guildID string) ([]domain.Vehicle, error)
	ServerStatus(ctx context.Context, guildID string) (domain.ServerStatus, error)
	ServerQueue(ctx context.Context, guildID string) (int, error)
	RunCommand(ctx context.Context, guildID, command string) error
}

// Implemented by internal/adapters/discord.Platform
type Platform interface {
	BotID() string
	GuildName(ctx context.Context, guildID string) string
	GuildMembers(ctx context.Context, guildID string) ([]domain.Member, error)
	Member(ctx context.Context, guildID, userID string) (*domain.Member, error)
	SearchMembers(ctx context.Context, guildID, query string, limit int) ([]domain.Member, error)
	HasRole(ctx context.Context, guildID, roleID string) bool
	HasChannel(ctx context.Context, channelID string) bool
	AddRole(ctx context.Context, guildID, userID, roleID, reason string) error
	RemoveRole(ctx context.Context, guildID, userID, roleID, reason string) error
	SendDM(ctx context.Context, userID string, embed *discordgo.MessageEmbed) error
	SendMessage(ctx context.Context, channelID string, msg *discordgo.MessageSend) error
	ChannelName(ctx context.Context, channelID string) (string, error)
	RenameChannel(ctx context.Context, channelID, name string) error
}

// Implemented by internal/infra/storage.SettingsRepo
type SettingsRepo interface {
	DiscordCheckGuilds(ctx context.Context, f domain.GuildFilter) ([]domain.GuildSettings, error)
	VehicleRestrictionGuilds(ctx context.Context, f domain.GuildFilter) ([]domain.GuildSettings, error)
	StatisticsGuilds(ctx context.Context, f domain.GuildFilter) ([]domain.GuildSettings, error)
	Get(ctx context.Context, guildID string) (domain.GuildSettings, error)
}

// Implemented by internal/infra/storage.LinkRepo
type LinkRegistry interface {
	Lookup(ctx context.Context, robloxUsername string) (string, error)
}

// Implemented by internal/infra/storage.ShiftRepo
type ShiftCounter interface {
	CountOnDuty(ctx context.Context, guildID string) (int, error)
	CountOnBreak(ctx context.Context, guildID string) (int, error)
}

// Implemented by internal/infra/storage.LoaRepo
type LoaRepo interface {
	ListPending(ctx context.Context, f domain.GuildFilter) ([]domain.LoaRecord, error)
	MarkStarted(ctx context.Context, id int64) (bool, error)
	MarkExpired(ctx context.Context, id int64) (bool, error)
	CountOtherActive(ctx context.Context, rec domain.LoaRecord) (int, error)
}

// Implemented by internal/infra/tracker mem and redis stores
type InfractionStore interface {
	Increment(ctx context.Context, guildID, username string) (int, error)
	Get(ctx context.Context, guildID, username string) (int, error)
	Reset(ctx context.Context, guildID, username string) error
	Cleanup(ctx context.Context, guildID string, active map[string]struct{}) ([]string, error)
}

type ThrottleStore interface {
	Bump(ctx context.Context, subject string, now time.Time) (int, error)
	Remove(ctx context.Context, subject string) error
	Purge(ctx context.Context, olderThan time.Time) (int, error)
}
