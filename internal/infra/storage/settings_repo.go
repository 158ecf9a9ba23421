package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jose-valero/erlc-compliance-bot/internal/domain"
)

type SettingsRepo struct {
	db  *sql.DB
	log *slog.Logger
}

func NewSettingsRepo(db *sql.DB, log *slog.Logger) *SettingsRepo {
	if log == nil {
		log = slog.Default()
	}
	return &SettingsRepo{db: db, log: log.With("component", "settings_repo")}
}

const (
	discordChecksEnabled = `COALESCE(s.erlc->'discord_checks'->>'channel', '') NOT IN ('', '0')`
	vehiclesEnabled      = `s.erlc->'vehicle_restrictions'->'enabled' = 'true'::jsonb`
	statisticsEnabled    = `jsonb_typeof(s.erlc->'statistics') = 'object' AND s.erlc->'statistics' <> '{}'::jsonb`
)

// DiscordCheckGuilds lists guilds with a discord check channel and a server key.
func (r *SettingsRepo) DiscordCheckGuilds(ctx context.Context, f domain.GuildFilter) ([]domain.GuildSettings, error) {
	return r.listKeyed(ctx, discordChecksEnabled, f)
}

func (r *SettingsRepo) VehicleRestrictionGuilds(ctx context.Context, f domain.GuildFilter) ([]domain.GuildSettings, error) {
	return r.listKeyed(ctx, vehiclesEnabled, f)
}

func (r *SettingsRepo) StatisticsGuilds(ctx context.Context, f domain.GuildFilter) ([]domain.GuildSettings, error) {
	return r.listKeyed(ctx, statisticsEnabled, f)
}

func (r *SettingsRepo) listKeyed(ctx context.Context, cond string, f domain.GuildFilter) ([]domain.GuildSettings, error) {
	filter, args := guildFilterClause("s.guild_id", f, 1)
	rows, err := r.db.QueryContext(ctx, `
SELECT s.guild_id, s.erlc, s.staff_management
  FROM guild_settings s
  JOIN server_keys k ON k.guild_id = s.guild_id
 WHERE `+cond+`
   AND `+filter+`
 ORDER BY s.guild_id
`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return decodeRows(rows, r.log)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// decodeRows skips guilds whose documents do not decode so one broken
// document cannot hold back every other guild.
func decodeRows(rows rowScanner, log *slog.Logger) ([]domain.GuildSettings, error) {
	var out []domain.GuildSettings
	for rows.Next() {
		var (
			id          string
			erlc, staff []byte
		)
		if err := rows.Scan(&id, &erlc, &staff); err != nil {
			return nil, err
		}
		g, err := decodeSettings(id, erlc, staff)
		if err != nil {
			log.Warn("skipping guild with malformed settings", "guild", id, "err", err)
			continue
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *SettingsRepo) Get(ctx context.Context, guildID string) (domain.GuildSettings, error) {
	var erlc, staff []byte
	err := r.db.QueryRowContext(ctx, `
SELECT erlc, staff_management
  FROM guild_settings
 WHERE guild_id = $1
`, guildID).Scan(&erlc, &staff)
	if err == sql.ErrNoRows {
		return domain.GuildSettings{}, ErrNotFound
	}
	if err != nil {
		return domain.GuildSettings{}, err
	}
	return decodeSettings(guildID, erlc, staff)
}

// Put replaces both settings documents of a guild.
func (r *SettingsRepo) Put(ctx context.Context, g domain.GuildSettings) error {
	erlc, err := json.Marshal(g.ERLC)
	if err != nil {
		return err
	}
	staff, err := json.Marshal(g.StaffManagement)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO guild_settings (guild_id, erlc, staff_management)
VALUES ($1, $2, $3)
ON CONFLICT (guild_id) DO UPDATE SET
  erlc             = EXCLUDED.erlc,
  staff_management = EXCLUDED.staff_management,
  updated_at       = NOW()
`, g.GuildID, erlc, staff)
	return err
}

func decodeSettings(guildID string, erlc, staff []byte) (domain.GuildSettings, error) {
	g := domain.GuildSettings{GuildID: guildID}
	if len(erlc) > 0 {
		if err := json.Unmarshal(erlc, &g.ERLC); err != nil {
			return g, fmt.Errorf("guild %s erlc settings: %w", guildID, err)
		}
	}
	if len(staff) > 0 {
		if err := json.Unmarshal(staff, &g.StaffManagement); err != nil {
			return g, fmt.Errorf("guild %s staff settings: %w", guildID, err)
		}
	}
	return g, nil
}
