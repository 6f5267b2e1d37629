package accounts

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/guildledger/internal/economy"
	"github.com/fastprodman/guildledger/internal/infra/pgutils"
	"github.com/fastprodman/guildledger/internal/repos/accounts"
)

// Ensure creates the account with a zero balance if it does not exist yet.
func (r *accountsRepo) Ensure(ctx context.Context, tx *sql.Tx, user economy.UserID, guild economy.GuildID) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO accounts (guild_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (guild_id, user_id) DO NOTHING
	`, guild, user)
	if err != nil {
		return fmt.Errorf("ensure account: %w", err)
	}

	return nil
}

// Credit adds amount to the balance, creating the account on first write.
func (r *accountsRepo) Credit(ctx context.Context, tx *sql.Tx, user economy.UserID, guild economy.GuildID, amount int64) (int64, error) {
	var balance int64

	err := tx.QueryRowContext(ctx, `
		INSERT INTO accounts (guild_id, user_id, balance)
		VALUES ($1, $2, $3)
		ON CONFLICT (guild_id, user_id) DO UPDATE
		SET balance = accounts.balance + EXCLUDED.balance,
		    updated_at = now()
		RETURNING balance
	`, guild, user, amount).Scan(&balance)
	if err != nil {
		if pgutils.PgCode(err) == pgutils.CodeNumericOutOfRange {
			return 0, accounts.ErrBalanceOverflow
		}

		return 0, fmt.Errorf("credit: %w", err)
	}

	return balance, nil
}
