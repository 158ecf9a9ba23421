package condition

import (
	"fmt"
	"strings"

	"github.com/jose-valero/erlc-compliance-bot/internal/domain"
)

// Future names callers provide for a guild.
const (
	FuturePlayers = "players"
	FutureQueue   = "queue"
	FutureOnDuty  = "onduty"
	FutureOnBreak = "onbreak"
	FutureGuildID = "guild_id"
	FutureBotID   = "bot_id"
)

// Default returns an evaluator with the ERLC and shift variables.
func Default() *Evaluator {
	countPlayers := func(keep func(domain.Player) bool) Variable {
		return Variable{
			Requires: []string{FuturePlayers},
			Fn: func(in []any, _ []string) (any, error) {
				players, err := playersOf(in[0])
				if err != nil {
					return nil, err
				}
				n := 0
				for _, p := range players {
					if keep(p) {
						n++
					}
				}
				return n, nil
			},
		}
	}
	owners := countPlayers(func(p domain.Player) bool { return p.Permission.IsOwnerLike() })

	return New(map[string]Variable{
		"ERLC_Players":    countPlayers(func(domain.Player) bool { return true }),
		"ERLC_Moderators": countPlayers(func(p domain.Player) bool { return p.Permission == domain.PermissionModerator }),
		"ERLC_Admins":     countPlayers(func(p domain.Player) bool { return p.Permission == domain.PermissionAdministrator }),
		"ERLC_Owner":      owners,
		"ERLC_Owners":     owners,
		"ERLC_Staff":      countPlayers(func(p domain.Player) bool { return p.Permission.IsStaff() }),
		"ERLC_Queue":      passThrough(FutureQueue),
		"OnDuty":          passThrough(FutureOnDuty),
		"OnBreak":         passThrough(FutureOnBreak),
		"ERLC_X_InGame": {
			Requires: []string{FuturePlayers},
			Fn: func(in []any, args []string) (any, error) {
				if len(args) == 0 {
					return nil, fmt.Errorf("%w: ERLC_X_InGame needs a username", ErrMissingArgument)
				}
				players, err := playersOf(in[0])
				if err != nil {
					return nil, err
				}
				for _, p := range players {
					if strings.EqualFold(p.Username, args[0]) {
						return true, nil
					}
				}
				return false, nil
			},
		},
	})
}

func passThrough(key string) Variable {
	return Variable{
		Requires: []string{key},
		Fn: func(in []any, _ []string) (any, error) {
			return in[0], nil
		},
	}
}

func playersOf(v any) ([]domain.Player, error) {
	players, ok := v.([]domain.Player)
	if !ok {
		return nil, fmt.Errorf("condition: players future returned %T", v)
	}
	return players, nil
}
