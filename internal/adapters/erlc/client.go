package erlc

import (
	"context"
	"net/http"
	"strings"

	"github.com/jose-valero/erlc-compliance-bot/internal/domain"
)

// ServerPlayers returns the live roster.
func (c *Client) ServerPlayers(ctx context.Context, guildID string) ([]domain.Player, error) {
	var dto []playerDTO
	if err := c.doJSON(ctx, guildID, http.MethodGet, "/server/players", nil, &dto); err != nil {
		return nil, err
	}
	out := make([]domain.Player, 0, len(dto))
	for _, p := range dto {
		name, id, _ := strings.Cut(p.Player, ":")
		out = append(out, domain.Player{
			Username:   name,
			ID:         id,
			Permission: domain.Permission(p.Permission),
			Team:       p.Team,
			Callsign:   p.Callsign,
		})
	}
	return out, nil
}

func (c *Client) ServerVehicles(ctx context.Context, guildID string) ([]domain.Vehicle, error) {
	var dto []vehicleDTO
	if err := c.doJSON(ctx, guildID, http.MethodGet, "/server/vehicles", nil, &dto); err != nil {
		return nil, err
	}
	out := make([]domain.Vehicle, 0, len(dto))
	for _, v := range dto {
		out = append(out, domain.Vehicle{Owner: v.Owner, Name: v.Name, Texture: v.Texture})
	}
	return out, nil
}

func (c *Client) ServerStatus(ctx context.Context, guildID string) (domain.ServerStatus, error) {
	var dto serverDTO
	if err := c.doJSON(ctx, guildID, http.MethodGet, "/server", nil, &dto); err != nil {
		return domain.ServerStatus{}, err
	}
	return domain.ServerStatus{
		Name:           dto.Name,
		CurrentPlayers: dto.CurrentPlayers,
		MaxPlayers:     dto.MaxPlayers,
		JoinKey:        dto.JoinKey,
	}, nil
}

// ServerQueue returns how many players are waiting to join.
func (c *Client) ServerQueue(ctx context.Context, guildID string) (int, error) {
	var ids []int64
	if err := c.doJSON(ctx, guildID, http.MethodGet, "/server/queue", nil, &ids); err != nil {
		return 0, err
	}
	return len(ids), nil
}

// RunCommand executes an in-game command such as ":pm a,b hello".
func (c *Client) RunCommand(ctx context.Context, guildID, command string) error {
	return c.doJSON(ctx, guildID, http.MethodPost, "/server/command", commandDTO{Command: command}, nil)
}
