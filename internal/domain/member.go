package domain

// Member is the slice of a Discord guild member the checks care about.
type Member struct {
	ID         string
	Username   string
	Nick       string
	GlobalName string
	Bot        bool
	Roles      []string
}

// DisplayName follows Discord's precedence: nick, then global name, then username.
func (m Member) DisplayName() string {
	if m.Nick != "" {
		return m.Nick
	}
	if m.GlobalName != "" {
		return m.GlobalName
	}
	return m.Username
}

func (m Member) HasRole(roleID string) bool {
	for _, r := range m.Roles {
		if r == roleID {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the member holds at least one of roleIDs.
func (m Member) HasAnyRole(roleIDs []string) bool {
	for _, id := range roleIDs {
		if m.HasRole(id) {
			return true
		}
	}
	return false
}
