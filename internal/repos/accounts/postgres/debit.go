package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/guildledger/internal/economy"
	"github.com/fastprodman/guildledger/internal/repos/accounts"
)

// Debit subtracts amount iff the balance covers it. The check and the write are
// one statement, so concurrent debits of the same row serialize on the row lock
// and each re-evaluates the predicate.
func (r *accountsRepo) Debit(ctx context.Context, tx *sql.Tx, user economy.UserID, guild economy.GuildID, amount int64) (int64, error) {
	var balance int64

	err := tx.QueryRowContext(ctx, `
		UPDATE accounts
		SET balance = balance - $3,
		    updated_at = now()
		WHERE guild_id = $1
		  AND user_id = $2
		  AND balance >= $3
		RETURNING balance
	`, guild, user, amount).Scan(&balance)
	if err != nil {
		// missing account and short balance look the same: no row
		if errors.Is(err, sql.ErrNoRows) {
			return 0, accounts.ErrInsufficientFunds
		}

		return 0, fmt.Errorf("debit: %w", err)
	}

	return balance, nil
}
