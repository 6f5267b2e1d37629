package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/guildledger/internal/economy"
	"github.com/fastprodman/guildledger/internal/infra/pgutils"
	"github.com/fastprodman/guildledger/internal/repos/accounts"
)

// Every stat maps to a fixed statement; column names are never interpolated.

func (r *accountsRepo) GetStat(ctx context.Context, user economy.UserID, guild economy.GuildID, stat economy.Stat) (int64, error) {
	var query string

	switch stat {
	case economy.StatCurrency:
		return r.GetBalance(ctx, user, guild)
	case economy.StatBumps:
		query = `SELECT bumps FROM accounts WHERE guild_id = $1 AND user_id = $2`
	case economy.StatXP:
		query = `SELECT xp FROM accounts WHERE guild_id = $1 AND user_id = $2`
	case economy.StatLevel:
		query = `SELECT level::BIGINT FROM accounts WHERE guild_id = $1 AND user_id = $2`
	default:
		return 0, economy.ErrStatNotAdjustable
	}

	var v int64

	err := r.db.QueryRowContext(ctx, query, guild, user).Scan(&v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}

		return 0, fmt.Errorf("get %s: %w", stat, err)
	}

	return v, nil
}

func (r *accountsRepo) IncrementStat(
	ctx context.Context,
	user economy.UserID,
	guild economy.GuildID,
	stat economy.Stat,
	amount int64,
) (int64, error) {
	var query string

	switch stat {
	case economy.StatBumps:
		query = `
			INSERT INTO accounts (guild_id, user_id, bumps)
			VALUES ($1, $2, $3)
			ON CONFLICT (guild_id, user_id) DO UPDATE
			SET bumps = accounts.bumps + EXCLUDED.bumps, updated_at = now()
			RETURNING bumps`
	case economy.StatXP:
		query = `
			INSERT INTO accounts (guild_id, user_id, xp)
			VALUES ($1, $2, $3)
			ON CONFLICT (guild_id, user_id) DO UPDATE
			SET xp = accounts.xp + EXCLUDED.xp, updated_at = now()
			RETURNING xp`
	default:
		return 0, economy.ErrStatNotAdjustable
	}

	var v int64

	err := r.db.QueryRowContext(ctx, query, guild, user, amount).Scan(&v)
	if err != nil {
		if pgutils.PgCode(err) == pgutils.CodeNumericOutOfRange {
			return 0, accounts.ErrBalanceOverflow
		}

		return 0, fmt.Errorf("increment %s: %w", stat, err)
	}

	return v, nil
}

// DecrementStat lowers xp iff it covers amount. Bumps never go down.
func (r *accountsRepo) DecrementStat(
	ctx context.Context,
	user economy.UserID,
	guild economy.GuildID,
	stat economy.Stat,
	amount int64,
) (int64, error) {
	if stat != economy.StatXP {
		return 0, economy.ErrStatNotAdjustable
	}

	var v int64

	err := r.db.QueryRowContext(ctx, `
		UPDATE accounts
		SET xp = xp - $3, updated_at = now()
		WHERE guild_id = $1 AND user_id = $2 AND xp >= $3
		RETURNING xp
	`, guild, user, amount).Scan(&v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, accounts.ErrInsufficientFunds
		}

		return 0, fmt.Errorf("decrement %s: %w", stat, err)
	}

	return v, nil
}

// SetStat overwrites a counter. Lowering bumps is rejected by the storage trigger.
func (r *accountsRepo) SetStat(ctx context.Context, user economy.UserID, guild economy.GuildID, stat economy.Stat, value int64) error {
	var query string

	switch stat {
	case economy.StatBumps:
		query = `
			INSERT INTO accounts (guild_id, user_id, bumps)
			VALUES ($1, $2, $3)
			ON CONFLICT (guild_id, user_id) DO UPDATE
			SET bumps = EXCLUDED.bumps, updated_at = now()`
	case economy.StatXP:
		query = `
			INSERT INTO accounts (guild_id, user_id, xp)
			VALUES ($1, $2, $3)
			ON CONFLICT (guild_id, user_id) DO UPDATE
			SET xp = EXCLUDED.xp, updated_at = now()`
	default:
		return economy.ErrStatNotAdjustable
	}

	_, err := r.db.ExecContext(ctx, query, guild, user, value)
	if err != nil {
		if pgutils.PgCode(err) == pgutils.CodeCheckViolation {
			return fmt.Errorf("%w: %s cannot decrease", economy.ErrStatNotAdjustable, stat)
		}

		return fmt.Errorf("set %s: %w", stat, err)
	}

	return nil
}
