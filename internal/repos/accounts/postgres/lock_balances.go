package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/fastprodman/guildledger/internal/economy"
)

// LockBalances takes row locks on the given accounts in ascending user order
// and returns their balances. Absent accounts are not locked and not returned;
// call Ensure first when a lock is required.
func (r *accountsRepo) LockBalances(
	ctx context.Context,
	tx *sql.Tx,
	guild economy.GuildID,
	users ...economy.UserID,
) (map[economy.UserID]int64, error) {
	ordered := slices.Clone(users)
	slices.Sort(ordered)
	ordered = slices.Compact(ordered)

	out := make(map[economy.UserID]int64, len(ordered))

	// one statement per row keeps the lock order explicit
	for _, u := range ordered {
		var balance int64

		err := tx.QueryRowContext(ctx, `
			SELECT balance
			FROM accounts
			WHERE guild_id = $1 AND user_id = $2
			FOR UPDATE
		`, guild, u).Scan(&balance)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}

			return nil, fmt.Errorf("lock balance of %s: %w", u, err)
		}

		out[u] = balance
	}

	return out, nil
}

func (r *accountsRepo) SetBalance(ctx context.Context, tx *sql.Tx, user economy.UserID, guild economy.GuildID, balance int64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO accounts (guild_id, user_id, balance)
		VALUES ($1, $2, $3)
		ON CONFLICT (guild_id, user_id) DO UPDATE
		SET balance = EXCLUDED.balance,
		    updated_at = now()
	`, guild, user, balance)
	if err != nil {
		return fmt.Errorf("set balance: %w", err)
	}

	return nil
}
