package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/erlc-compliance-bot/internal/app/condition"
	"github.com/jose-valero/erlc-compliance-bot/internal/app/service"
	"github.com/jose-valero/erlc-compliance-bot/internal/infra/storage"
)

func (r *Router) handlePing(context.Context, *Ctx) (string, []*discordgo.MessageEmbed) {
	return "🏓 Pong!", nil
}

func (r *Router) handleCondition(ctx context.Context, c *Ctx) (string, []*discordgo.MessageEmbed) {
	expr := c.Args["expression"]
	if expr == "" {
		return "Pass an expression, e.g. `ERLC_Players >= 20`.", nil
	}
	if ok, wait := r.limiter.Allow(c.UserID); !ok {
		return fmt.Sprintf("⏳ Slow down, try again in %ds.", int(wait.Seconds())+1), nil
	}

	stop := step(c.Log, "condition.evaluate", "expression", expr)
	ok, err := r.conditions.Evaluate(ctx, c.GuildID, expr)
	stop()
	return "", []*discordgo.MessageEmbed{conditionEmbed(expr, ok, err)}
}

func conditionEmbed(expr string, ok bool, err error) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title: "Condition",
		Color: 0x2B2D31,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Expression", Value: "`" + expr + "`"},
		},
	}
	switch {
	case errors.Is(err, condition.ErrSyntax):
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: "Error", Value: "Expected `<value> <operator> <value>`."})
	case err != nil:
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: "Error", Value: err.Error()})
	case ok:
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: "Result", Value: "✅ true"})
	default:
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: "Result", Value: "❌ false"})
	}
	return e
}

func (r *Router) handleDiscordCheck(ctx context.Context, c *Ctx) (string, []*discordgo.MessageEmbed) {
	g, err := r.settings.Get(ctx, c.GuildID)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && !g.ERLC.DiscordChecks.Channel.Valid()) {
		return "ℹ️ Discord checks are not configured for this server.", nil
	}
	if err != nil {
		return "⚠️ Could not load settings: " + err.Error(), nil
	}
	err = r.checks.CheckGuild(ctx, g)
	if errors.Is(err, service.ErrCheckRunning) {
		return "⏳ A Discord check is already running for this server.", nil
	}
	if err != nil {
		return fmt.Sprintf("⚠️ Discord check failed: %v", err), nil
	}
	return "✅ Discord check finished. Results were posted to <#" + g.ERLC.DiscordChecks.Channel.String() + ">.", nil
}
