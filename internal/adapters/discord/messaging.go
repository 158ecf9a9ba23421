package discord

import (
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

// DeferEphemeral acknowledges an interaction that needs more than 3s.
func DeferEphemeral(s *discordgo.Session, ic *discordgo.InteractionCreate, log *slog.Logger) error {
	err := s.InteractionRespond(ic.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Warn("defer interaction failed", "err", err)
	}
	return err
}

func ReplyEphemeral(s *discordgo.Session, ic *discordgo.InteractionCreate, log *slog.Logger, content string, embeds ...*discordgo.MessageEmbed) {
	_, err := s.FollowupMessageCreate(ic.Interaction, true, &discordgo.WebhookParams{
		Content:         content,
		Embeds:          embeds,
		Flags:           discordgo.MessageFlagsEphemeral,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	})
	if err == nil {
		return
	}
	// Unknown webhook: nothing was deferred yet, answer directly.
	if restCode(err) == discordgo.ErrCodeUnknownWebhook {
		_ = s.InteractionRespond(ic.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: content,
				Flags:   discordgo.MessageFlagsEphemeral,
				Embeds:  embeds,
			},
		})
		return
	}
	log.Warn("reply failed", "err", err)
}
