package storage

import (
	"fmt"

	pq "github.com/lib/pq"

	"github.com/jose-valero/erlc-compliance-bot/internal/domain"
)

// guildFilterClause renders f as a predicate on col. next is the number of
// the first free placeholder.
func guildFilterClause(col string, f domain.GuildFilter, next int) (string, []any) {
	if len(f.Only) > 0 {
		return fmt.Sprintf("%s = ANY($%d)", col, next), []any{pq.Array(f.Only)}
	}
	return col + " NOT IN (SELECT guild_id FROM whitelabel_guilds)", nil
}
