package service

import (
	"context"
	"log/slog"

	"github.com/jose-valero/erlc-compliance-bot/internal/app/condition"
)

// ConditionService evaluates condition expressions against a guild's live state.
type ConditionService struct {
	eval     *condition.Evaluator
	game     GameAPI
	shifts   ShiftCounter
	platform Platform
	log      *slog.Logger
}

func NewConditionService(eval *condition.Evaluator, game GameAPI, shifts ShiftCounter, platform Platform, log *slog.Logger) *ConditionService {
	if eval == nil {
		eval = condition.Default()
	}
	if log == nil {
		log = slog.Default()
	}
	return &ConditionService{eval: eval, game: game, shifts: shifts, platform: platform, log: log.With("component", "conditions")}
}

// Futures returns the lazily fetched inputs for guildID.
func (s *ConditionService) Futures(guildID string) *condition.Futures {
	return condition.NewFutures(map[string]condition.Future{
		condition.FuturePlayers: func(ctx context.Context) (any, error) {
			return s.game.ServerPlayers(ctx, guildID)
		},
		condition.FutureQueue: func(ctx context.Context) (any, error) {
			return s.game.ServerQueue(ctx, guildID)
		},
		condition.FutureOnDuty: func(ctx context.Context) (any, error) {
			return s.shifts.CountOnDuty(ctx, guildID)
		},
		condition.FutureOnBreak: func(ctx context.Context) (any, error) {
			return s.shifts.CountOnBreak(ctx, guildID)
		},
		condition.FutureGuildID: func(context.Context) (any, error) {
			return guildID, nil
		},
		condition.FutureBotID: func(context.Context) (any, error) {
			return s.platform.BotID(), nil
		},
	})
}

func (s *ConditionService) Evaluate(ctx context.Context, guildID, expr string) (bool, error) {
	ok, err := s.eval.Evaluate(ctx, expr, s.Futures(guildID))
	if err != nil {
		s.log.Debug("condition failed", "guild", guildID, "expr", expr, "err", err)
	}
	return ok, err
}
