package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Snowflake is a Discord id. Settings documents store ids either as JSON
// numbers or strings, so both decode.
type Snowflake string

func (s *Snowflake) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*s = ""
	case len(b) > 0 && b[0] == '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = Snowflake(v)
	default:
		if _, err := strconv.ParseUint(string(b), 10, 64); err != nil {
			return fmt.Errorf("snowflake: %s is not an id", b)
		}
		*s = Snowflake(b)
	}
	return nil
}

// Valid is false for empty and zero ids; zero is how an unset channel is stored.
func (s Snowflake) Valid() bool { return s != "" && s != "0" }

func (s Snowflake) String() string { return string(s) }

// Snowflakes accepts either a single id or a list of ids.
type Snowflakes []Snowflake

func (s *Snowflakes) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var list []Snowflake
		if err := json.Unmarshal(b, &list); err != nil {
			return err
		}
		*s = list
		return nil
	}
	var one Snowflake
	if err := json.Unmarshal(b, &one); err != nil {
		return err
	}
	if one.Valid() {
		*s = Snowflakes{one}
	} else {
		*s = nil
	}
	return nil
}

// IDs returns the valid ids as strings.
func (s Snowflakes) IDs() []string {
	out := make([]string, 0, len(s))
	for _, id := range s {
		if id.Valid() {
			out = append(out, string(id))
		}
	}
	return out
}

// Count decodes from a JSON number or a numeric string.
type Count int

func (c *Count) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*c = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		b = []byte(v)
	}
	n, err := strconv.Atoi(string(bytes.TrimSpace(b)))
	if err != nil {
		return fmt.Errorf("count: %s is not an integer", b)
	}
	*c = Count(n)
	return nil
}

// VehicleNames is a list of vehicle names where numeric entries such as a
// bare model year are kept as their decimal text.
type VehicleNames []string

func (v *VehicleNames) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("vehicle names: %w", err)
	}
	out := make(VehicleNames, 0, len(raw))
	for _, r := range raw {
		r = bytes.TrimSpace(r)
		switch {
		case bytes.Equal(r, []byte("null")):
		case len(r) > 0 && r[0] == '"':
			var name string
			if err := json.Unmarshal(r, &name); err != nil {
				return err
			}
			out = append(out, name)
		default:
			var n json.Number
			if err := json.Unmarshal(r, &n); err != nil {
				return fmt.Errorf("vehicle names: %s is not a name", r)
			}
			out = append(out, n.String())
		}
	}
	*v = out
	return nil
}

// GuildSettings is the per-guild configuration document.
type GuildSettings struct {
	GuildID         string
	ERLC            ERLCSettings
	StaffManagement StaffManagementSettings
}

type ERLCSettings struct {
	DiscordChecks       DiscordCheckSettings         `json:"discord_checks"`
	VehicleRestrictions VehicleRestrictionSettings   `json:"vehicle_restrictions"`
	Statistics          map[string]StatisticsChannel `json:"statistics"`
}

const DefaultDiscordCheckMessage = "You are not in the communication server. Please join the server to avoid being kicked."

type DiscordCheckSettings struct {
	Channel              Snowflake  `json:"channel"`
	Message              string     `json:"message"`
	Warn                 *bool      `json:"warn"`
	Kick                 bool       `json:"kick"`
	Load                 bool       `json:"load"`
	KickAfterInfractions Count      `json:"kick_after_infractions"`
	Mentionables         Snowflakes `json:"mentionables"`
}

// WarnEnabled defaults to true; older documents have no warn key.
func (d DiscordCheckSettings) WarnEnabled() bool { return d.Warn == nil || *d.Warn }

// Escalates reports whether a kick can ever be reached.
func (d DiscordCheckSettings) Escalates() bool { return d.Kick && d.KickAfterInfractions > 0 }

func (d DiscordCheckSettings) MessageOrDefault() string {
	if d.Message == "" {
		return DefaultDiscordCheckMessage
	}
	return d.Message
}

const DefaultVehicleAlertMessage = "You do not have the required role to use this vehicle."

type VehicleRestrictionSettings struct {
	Enabled bool         `json:"enabled"`
	Roles   Snowflakes   `json:"roles"`
	Cars    VehicleNames `json:"cars"`
	Channel Snowflake    `json:"channel"`
	Message string       `json:"message"`
}

func (v VehicleRestrictionSettings) MessageOrDefault() string {
	if v.Message == "" {
		return DefaultVehicleAlertMessage
	}
	return v.Message
}

type StatisticsChannel struct {
	Format string `json:"format"`
}

type StaffManagementSettings struct {
	LOARole Snowflakes `json:"loa_role"`
}

// GuildFilter narrows which guilds a pass may touch. A non-empty Only list
// pins the pass to those guilds; otherwise whitelabel guilds are skipped.
type GuildFilter struct {
	Only []string
}
