package domain

import "strings"

// Permission is the in-game permission tier reported by the server API.
type Permission string

const (
	PermissionNormal        Permission = "Normal"
	PermissionModerator     Permission = "Server Moderator"
	PermissionAdministrator Permission = "Server Administrator"
)

// IsOwnerLike reports whether p is anything other than the three known tiers.
// The API has no dedicated owner value, so unknown strings count as ownership.
func (p Permission) IsOwnerLike() bool {
	switch p {
	case PermissionNormal, PermissionModerator, PermissionAdministrator:
		return false
	}
	return true
}

// IsStaff reports whether p is above Normal.
func (p Permission) IsStaff() bool { return p != PermissionNormal }

// Player is one entry of a server roster.
type Player struct {
	Username   string
	ID         string
	Permission Permission
	Team       string
	Callsign   string
}

// ProfileURL links to the player's Roblox profile.
func (p Player) ProfileURL() string {
	return "https://roblox.com/users/" + p.ID + "/profile"
}

type Vehicle struct {
	Owner   string
	Name    string
	Texture string
}

type ServerStatus struct {
	Name           string
	CurrentPlayers int
	MaxPlayers     int
	JoinKey        string
}

// UsernameSet returns the lowercased usernames of players.
func UsernameSet(players []Player) map[string]struct{} {
	out := make(map[string]struct{}, len(players))
	for _, p := range players {
		out[strings.ToLower(p.Username)] = struct{}{}
	}
	return out
}
