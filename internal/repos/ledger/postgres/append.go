package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/guildledger/internal/economy"
	"github.com/fastprodman/guildledger/internal/infra/pgutils"
)

// Append writes one event inside tx and returns it with its id and timestamp.
func (r *ledgerRepo) Append(ctx context.Context, tx *sql.Tx, event economy.LedgerEvent) (economy.LedgerEvent, error) {
	err := tx.QueryRowContext(ctx, `
		INSERT INTO ledger_events (`+eventColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING event_id, created_at
	`, eventArgs(event)...).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return economy.LedgerEvent{}, fmt.Errorf("append ledger event: %w", err)
	}

	return event, nil
}

// BulkAppend writes events in multi-row statements inside tx.
func (r *ledgerRepo) BulkAppend(ctx context.Context, tx *sql.Tx, events []economy.LedgerEvent) error {
	cols := len(eventCasts)
	chunk := pgutils.ChunkRows(cols)

	for start := 0; start < len(events); start += chunk {
		part := events[start:min(start+chunk, len(events))]

		args := make([]any, 0, len(part)*cols)
		for _, e := range part {
			args = append(args, eventArgs(e)...)
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO ledger_events (`+eventColumns+`) VALUES `+pgutils.ValuesList(len(part), eventCasts...),
			args...)
		if err != nil {
			return fmt.Errorf("bulk append ledger events: %w", err)
		}
	}

	return nil
}
