package positions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/guildledger/internal/economy"
	"github.com/fastprodman/guildledger/internal/repos/positions"
)

var _ positions.Positions = (*positionsRepo)(nil)

type positionsRepo struct{ db *sql.DB }

func New(db *sql.DB) *positionsRepo {
	return &positionsRepo{db: db}
}

const positionColumns = `position_id, guild_id, user_id, symbol, collateral, notional, opened_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanPosition(s scanner) (positions.Position, error) {
	var p positions.Position

	err := s.Scan(&p.ID, &p.GuildID, &p.UserID, &p.Symbol, &p.Collateral, &p.Notional, &p.OpenedAt)

	return p, err
}

func (r *positionsRepo) Open(ctx context.Context, p positions.Position) (positions.Position, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO positions (guild_id, user_id, symbol, collateral, notional)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+positionColumns,
		p.GuildID, p.UserID, p.Symbol, p.Collateral, p.Notional)

	out, err := scanPosition(row)
	if err != nil {
		return positions.Position{}, fmt.Errorf("open position: %w", err)
	}

	return out, nil
}

func (r *positionsRepo) Get(ctx context.Context, id economy.PositionID) (positions.Position, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+positionColumns+`
		FROM positions
		WHERE position_id = $1
	`, id)

	p, err := scanPosition(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return positions.Position{}, positions.ErrPositionNotFound
		}

		return positions.Position{}, fmt.Errorf("get position: %w", err)
	}

	return p, nil
}

func (r *positionsRepo) ListByUser(ctx context.Context, user economy.UserID, guild economy.GuildID) ([]positions.Position, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+positionColumns+`
		FROM positions
		WHERE guild_id = $1 AND user_id = $2
		ORDER BY position_id
	`, guild, user)
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}

	return collect(rows)
}

func (r *positionsRepo) LockTaxable(
	ctx context.Context,
	tx *sql.Tx,
	guild economy.GuildID,
	threshold int64,
) ([]positions.Position, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT `+positionColumns+`
		FROM positions
		WHERE guild_id = $1 AND collateral > $2
		ORDER BY position_id
		FOR UPDATE
	`, guild, threshold)
	if err != nil {
		return nil, fmt.Errorf("select taxable positions: %w", err)
	}

	return collect(rows)
}

func (r *positionsRepo) UpdateSize(ctx context.Context, tx *sql.Tx, id economy.PositionID, collateral, notional int64) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE positions
		SET collateral = $2, notional = $3
		WHERE position_id = $1
	`, id, collateral, notional)
	if err != nil {
		return fmt.Errorf("update position size: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update position size: %w", err)
	}

	if n == 0 {
		return positions.ErrPositionNotFound
	}

	return nil
}

func collect(rows *sql.Rows) ([]positions.Position, error) {
	defer rows.Close()

	var out []positions.Position

	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}

		out = append(out, p)
	}

	err := rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate positions: %w", err)
	}

	return out, nil
}
