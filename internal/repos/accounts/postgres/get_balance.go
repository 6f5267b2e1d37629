package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/guildledger/internal/economy"
)

// GetBalance returns the cash balance; an absent account reads as 0.
func (r *accountsRepo) GetBalance(ctx context.Context, user economy.UserID, guild economy.GuildID) (int64, error) {
	var balance int64

	err := r.db.QueryRowContext(ctx, `
		SELECT balance
		FROM accounts
		WHERE guild_id = $1 AND user_id = $2
	`, guild, user).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}

		return 0, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}

func (r *accountsRepo) TotalBalance(ctx context.Context, guild economy.GuildID) (int64, error) {
	var total int64

	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(balance), 0)::BIGINT
		FROM accounts
		WHERE guild_id = $1
	`, guild).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total balance: %w", err)
	}

	return total, nil
}
