package accounts

import (
	"context"
	"fmt"

	"github.com/fastprodman/guildledger/internal/economy"
	"github.com/fastprodman/guildledger/internal/repos/accounts"
)

const (
	topCurrency = `
		SELECT RANK() OVER (ORDER BY balance DESC)::INTEGER, user_id, balance
		FROM accounts
		WHERE guild_id = $1 AND balance > 0
		ORDER BY balance DESC, account_seq
		LIMIT $2`
	topBumps = `
		SELECT RANK() OVER (ORDER BY bumps DESC)::INTEGER, user_id, bumps
		FROM accounts
		WHERE guild_id = $1 AND bumps > 0
		ORDER BY bumps DESC, account_seq
		LIMIT $2`
	topXP = `
		SELECT RANK() OVER (ORDER BY xp DESC)::INTEGER, user_id, xp
		FROM accounts
		WHERE guild_id = $1 AND xp > 0
		ORDER BY xp DESC, account_seq
		LIMIT $2`
	topLevel = `
		SELECT RANK() OVER (ORDER BY level DESC)::INTEGER, user_id, level::BIGINT
		FROM accounts
		WHERE guild_id = $1 AND level > 0
		ORDER BY level DESC, account_seq
		LIMIT $2`
)

// Top ranks the guild by stat. Accounts with a zero value are not ranked.
// Equal values share a rank; within a rank the older account is listed first.
func (r *accountsRepo) Top(ctx context.Context, guild economy.GuildID, stat economy.Stat, limit int) ([]accounts.Ranked, error) {
	var query string

	switch stat {
	case economy.StatCurrency:
		query = topCurrency
	case economy.StatBumps:
		query = topBumps
	case economy.StatXP:
		query = topXP
	case economy.StatLevel:
		query = topLevel
	default:
		return nil, fmt.Errorf("%w: unknown stat %q", economy.ErrInvalidInput, stat)
	}

	rows, err := r.db.QueryContext(ctx, query, guild, limit)
	if err != nil {
		return nil, fmt.Errorf("top %s: %w", stat, err)
	}
	defer rows.Close()

	out := make([]accounts.Ranked, 0, limit)

	for rows.Next() {
		var rk accounts.Ranked

		err = rows.Scan(&rk.Rank, &rk.UserID, &rk.Value)
		if err != nil {
			return nil, fmt.Errorf("scan top %s: %w", stat, err)
		}

		out = append(out, rk)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate top %s: %w", stat, err)
	}

	return out, nil
}
