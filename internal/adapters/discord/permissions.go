package discord

import "github.com/bwmarrin/discordgo"

// isAdmin accepts the guild owner and members with Administrator or Manage Server.
func isAdmin(s *discordgo.Session, ic *discordgo.InteractionCreate) bool {
	if ic.Member == nil {
		return false
	}
	if g, _ := s.State.Guild(ic.GuildID); g != nil && ic.Member.User != nil && ic.Member.User.ID == g.OwnerID {
		return true
	}
	return hasAdminBits(ic.Member.Permissions)
}

func hasAdminBits(perms int64) bool {
	return perms&discordgo.PermissionAdministrator != 0 || perms&discordgo.PermissionManageGuild != 0
}
