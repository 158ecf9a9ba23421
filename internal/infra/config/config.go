package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/jose-valero/erlc-compliance-bot/internal/domain"
)

type Config struct {
	DatabaseURL  string
	DiscordToken string
	RedisURL     string // optional, in-memory stores when empty
	HTTPAddr     string
	LogLevel     string

	ERLCBaseURL       string
	ERLCGlobalKey     string
	ERLCRatePerSecond float64

	// ENVIRONMENT=CUSTOM pins every pass to CustomGuildID.
	Environment   string
	CustomGuildID string

	GuildConcurrency     int
	DiscordCheckInterval time.Duration
	VehicleCheckInterval time.Duration
	StatisticsInterval   time.Duration
	LoaInterval          time.Duration
}

var errMissing = errors.New("missing required env")

// Load reads .env (if present) and the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ERLC_API_BASE", "https://api.policeroleplay.community/v1")
	v.SetDefault("ERLC_RATE_PER_SECOND", 30.0)
	v.SetDefault("GUILD_CONCURRENCY", 20)
	v.SetDefault("DISCORD_CHECK_INTERVAL", "2m")
	v.SetDefault("VEHICLE_CHECK_INTERVAL", "10m")
	v.SetDefault("STATISTICS_INTERVAL", "15m")
	v.SetDefault("LOA_INTERVAL", "1m")

	cfg := Config{
		DatabaseURL:          v.GetString("DATABASE_URL"),
		DiscordToken:         v.GetString("DISCORD_BOT_TOKEN"),
		RedisURL:             v.GetString("REDIS_URL"),
		HTTPAddr:             v.GetString("HTTP_ADDR"),
		LogLevel:             v.GetString("LOG_LEVEL"),
		ERLCBaseURL:          v.GetString("ERLC_API_BASE"),
		ERLCGlobalKey:        v.GetString("ERLC_GLOBAL_KEY"),
		ERLCRatePerSecond:    v.GetFloat64("ERLC_RATE_PER_SECOND"),
		Environment:          v.GetString("ENVIRONMENT"),
		CustomGuildID:        v.GetString("CUSTOM_GUILD_ID"),
		GuildConcurrency:     v.GetInt("GUILD_CONCURRENCY"),
		DiscordCheckInterval: v.GetDuration("DISCORD_CHECK_INTERVAL"),
		VehicleCheckInterval: v.GetDuration("VEHICLE_CHECK_INTERVAL"),
		StatisticsInterval:   v.GetDuration("STATISTICS_INTERVAL"),
		LoaInterval:          v.GetDuration("LOA_INTERVAL"),
	}

	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("%w: DATABASE_URL", errMissing)
	}
	if cfg.DiscordToken == "" {
		return cfg, fmt.Errorf("%w: DISCORD_BOT_TOKEN", errMissing)
	}
	if cfg.Custom() && cfg.CustomGuildID == "" {
		return cfg, fmt.Errorf("%w: CUSTOM_GUILD_ID (ENVIRONMENT=CUSTOM)", errMissing)
	}
	return cfg, nil
}

func (c Config) Custom() bool { return strings.EqualFold(c.Environment, "CUSTOM") }

// GuildFilter scopes every periodic pass for this deployment.
func (c Config) GuildFilter() domain.GuildFilter {
	if c.Custom() {
		return domain.GuildFilter{Only: []string{c.CustomGuildID}}
	}
	return domain.GuildFilter{}
}
