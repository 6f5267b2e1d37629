package accounts

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/guildledger/internal/economy"
	"github.com/fastprodman/guildledger/internal/infra/pgutils"
	"github.com/fastprodman/guildledger/internal/repos/accounts"
)

// LockTaxable locks and returns every account of the guild whose balance is
// strictly above threshold, in user order.
func (r *accountsRepo) LockTaxable(ctx context.Context, tx *sql.Tx, guild economy.GuildID, threshold int64) ([]accounts.Holding, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT user_id, balance
		FROM accounts
		WHERE guild_id = $1 AND balance > $2
		ORDER BY user_id
		FOR UPDATE
	`, guild, threshold)
	if err != nil {
		return nil, fmt.Errorf("select taxable: %w", err)
	}
	defer rows.Close()

	var out []accounts.Holding

	for rows.Next() {
		var h accounts.Holding

		err = rows.Scan(&h.UserID, &h.Balance)
		if err != nil {
			return nil, fmt.Errorf("scan taxable: %w", err)
		}

		out = append(out, h)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate taxable: %w", err)
	}

	return out, nil
}

// SetBalances overwrites the balances of existing accounts in multi-row statements.
func (r *accountsRepo) SetBalances(ctx context.Context, tx *sql.Tx, guild economy.GuildID, holdings []accounts.Holding) error {
	const cols = 2

	chunk := pgutils.ChunkRows(cols)

	for start := 0; start < len(holdings); start += chunk {
		part := holdings[start:min(start+chunk, len(holdings))]

		args := make([]any, 0, len(part)*cols+1)
		for _, h := range part {
			args = append(args, int64(h.UserID), h.Balance)
		}

		args = append(args, guild)

		// $N is the guild, after all row parameters
		query := fmt.Sprintf(`
			UPDATE accounts AS a
			SET balance = v.balance, updated_at = now()
			FROM (VALUES %s) AS v(user_id, balance)
			WHERE a.guild_id = $%d AND a.user_id = v.user_id
		`, pgutils.ValuesList(len(part), "BIGINT", "BIGINT"), len(part)*cols+1)

		_, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("set balances: %w", err)
		}
	}

	return nil
}
