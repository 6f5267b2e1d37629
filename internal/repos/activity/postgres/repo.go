package activity

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	"github.com/fastprodman/guildledger/internal/economy"
	"github.com/fastprodman/guildledger/internal/infra/pgutils"
	"github.com/fastprodman/guildledger/internal/repos/activity"
)

var _ activity.Activity = (*activityRepo)(nil)

type activityRepo struct{ db *sql.DB }

func New(db *sql.DB) *activityRepo {
	return &activityRepo{db: db}
}

// Touch records activity. Timestamps never move backwards.
func (r *activityRepo) Touch(ctx context.Context, user economy.UserID, guild economy.GuildID, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_activity (guild_id, user_id, last_active_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (guild_id, user_id) DO UPDATE
		SET last_active_at = GREATEST(user_activity.last_active_at, EXCLUDED.last_active_at)
	`, guild, user, at)
	if err != nil {
		return fmt.Errorf("touch activity: %w", err)
	}

	return nil
}

func (r *activityRepo) TouchMany(ctx context.Context, guild economy.GuildID, users []economy.UserID, at time.Time) error {
	// ON CONFLICT cannot touch the same row twice in one statement
	ids := slices.Clone(users)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	chunk := pgutils.ChunkRows(1)

	for start := 0; start < len(ids); start += chunk {
		part := ids[start:min(start+chunk, len(ids))]

		args := make([]any, 0, len(part)+2)
		for _, u := range part {
			args = append(args, int64(u))
		}

		args = append(args, guild, at)
		n := len(part)

		query := fmt.Sprintf(`
			INSERT INTO user_activity (guild_id, user_id, last_active_at)
			SELECT $%d::BIGINT, v.user_id, $%d::TIMESTAMPTZ
			FROM (VALUES %s) AS v(user_id)
			ON CONFLICT (guild_id, user_id) DO UPDATE
			SET last_active_at = GREATEST(user_activity.last_active_at, EXCLUDED.last_active_at)
		`, n+1, n+2, pgutils.ValuesList(n, "BIGINT"))

		err := pgutils.WithTx(ctx, r.db, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, query, args...)
			return err
		})
		if err != nil {
			return fmt.Errorf("touch many: %w", err)
		}
	}

	return nil
}

func (r *activityRepo) ActiveUsers(ctx context.Context, guild economy.GuildID, since time.Time) ([]economy.UserID, error) {
	return r.listUsers(ctx, `
		SELECT user_id
		FROM user_activity
		WHERE guild_id = $1 AND last_active_at >= $2
		ORDER BY last_active_at DESC, user_id
	`, guild, since)
}

func (r *activityRepo) InactiveUsers(ctx context.Context, guild economy.GuildID, since time.Time) ([]economy.UserID, error) {
	return r.listUsers(ctx, `
		SELECT user_id
		FROM user_activity
		WHERE guild_id = $1 AND last_active_at < $2
		ORDER BY last_active_at, user_id
	`, guild, since)
}

func (r *activityRepo) listUsers(ctx context.Context, query string, args ...any) ([]economy.UserID, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	var out []economy.UserID

	for rows.Next() {
		var u economy.UserID

		err = rows.Scan(&u)
		if err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}

		out = append(out, u)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate activity: %w", err)
	}

	return out, nil
}
