package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/fastprodman/guildledger/internal/economy"
	"github.com/fastprodman/guildledger/internal/repos/ledger"
)

func (r *ledgerRepo) ListByGuild(
	ctx context.Context,
	guild economy.GuildID,
	beforeID int64,
	limit int,
) ([]economy.LedgerEvent, error) {
	if beforeID <= 0 {
		beforeID = math.MaxInt64
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT event_id, guild_id, event_type, event_reason,
		       sender_kind, sender_id, receiver_kind, receiver_id,
		       amount, initiator_id, position_id, batch_id, created_at
		FROM ledger_events
		WHERE guild_id = $1 AND event_id < $2
		ORDER BY event_id DESC
		LIMIT $3
	`, guild, beforeID, limit)
	if err != nil {
		return nil, fmt.Errorf("list ledger events: %w", err)
	}
	defer rows.Close()

	out := make([]economy.LedgerEvent, 0, limit)

	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}

		out = append(out, e)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate ledger events: %w", err)
	}

	return out, nil
}

func scanEvent(rows *sql.Rows) (economy.LedgerEvent, error) {
	var (
		e                    economy.LedgerEvent
		typ, reason          string
		senderKind, recvKind string
		senderID, recvID     sql.NullInt64
		amount               int64
		pos                  sql.NullInt64
		batch                sql.NullString
	)

	err := rows.Scan(&e.ID, &e.GuildID, &typ, &reason,
		&senderKind, &senderID, &recvKind, &recvID,
		&amount, &e.Initiator, &pos, &batch, &e.CreatedAt)
	if err != nil {
		return economy.LedgerEvent{}, fmt.Errorf("scan ledger event: %w", err)
	}

	e.Type, err = economy.ParseEventType(typ)
	if err != nil {
		return economy.LedgerEvent{}, fmt.Errorf("event %d: %w", e.ID, err)
	}

	e.Reason, err = economy.ParseReason(reason)
	if err != nil {
		return economy.LedgerEvent{}, fmt.Errorf("event %d: %w", e.ID, err)
	}

	e.Sender, err = economy.ParseParticipant(senderKind, nullPtr(senderID))
	if err != nil {
		return economy.LedgerEvent{}, fmt.Errorf("event %d sender: %w", e.ID, err)
	}

	e.Receiver, err = economy.ParseParticipant(recvKind, nullPtr(recvID))
	if err != nil {
		return economy.LedgerEvent{}, fmt.Errorf("event %d receiver: %w", e.ID, err)
	}

	e.Amount = uint64(amount)

	if pos.Valid {
		p := economy.PositionID(pos.Int64)
		e.Position = &p
	}

	if batch.Valid {
		b, err := uuid.Parse(batch.String)
		if err != nil {
			return economy.LedgerEvent{}, fmt.Errorf("event %d batch id: %w", e.ID, err)
		}

		e.BatchID = &b
	}

	return e, nil
}

func nullPtr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}

	return &n.Int64
}

// CashSupply sums value minted into and burned out of user accounts.
// Burns sent by the collateral pool never touched a balance and are excluded.
func (r *ledgerRepo) CashSupply(ctx context.Context, guild economy.GuildID) (ledger.Supply, error) {
	var s ledger.Supply

	err := r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE event_type = 'MINT'), 0)::BIGINT,
			COALESCE(SUM(amount) FILTER (WHERE event_type = 'BURN' AND sender_kind = 'USER'), 0)::BIGINT
		FROM ledger_events
		WHERE guild_id = $1
	`, guild).Scan(&s.Minted, &s.Burned)
	if err != nil {
		return ledger.Supply{}, fmt.Errorf("cash supply: %w", err)
	}

	return s, nil
}

// ReplayBalance recomputes one balance from the log alone.
func (r *ledgerRepo) ReplayBalance(ctx context.Context, user economy.UserID, guild economy.GuildID) (int64, error) {
	var balance int64

	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(
			CASE WHEN receiver_kind = 'USER' AND receiver_id = $2 THEN amount ELSE 0 END
			- CASE WHEN sender_kind = 'USER' AND sender_id = $2 THEN amount ELSE 0 END
		), 0)::BIGINT
		FROM ledger_events
		WHERE guild_id = $1 AND (sender_id = $2 OR receiver_id = $2)
	`, guild, user).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("replay balance: %w", err)
	}

	return balance, nil
}

// Reconcile reads the balance total and the cash supply in one statement, so
// both see the same committed state.
func (r *ledgerRepo) Reconcile(ctx context.Context, guild economy.GuildID) (ledger.Reconciliation, error) {
	var rec ledger.Reconciliation

	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COALESCE(SUM(balance), 0) FROM accounts WHERE guild_id = $1)::BIGINT,
			COALESCE(SUM(amount) FILTER (WHERE event_type = 'MINT'), 0)::BIGINT,
			COALESCE(SUM(amount) FILTER (WHERE event_type = 'BURN' AND sender_kind = 'USER'), 0)::BIGINT
		FROM ledger_events
		WHERE guild_id = $1
	`, guild).Scan(&rec.BalanceSum, &rec.Supply.Minted, &rec.Supply.Burned)
	if err != nil {
		return ledger.Reconciliation{}, fmt.Errorf("reconcile: %w", err)
	}

	return rec, nil
}
