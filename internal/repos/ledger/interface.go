package ledger

import (
	"context"
	"database/sql"

	"github.com/fastprodman/guildledger/internal/economy"
)

// Supply is the cash supply implied by the log.
type Supply struct {
	Minted int64
	Burned int64
}

// Net is what the balances of the guild should sum to.
func (s Supply) Net() int64 { return s.Minted - s.Burned }

// Reconciliation pairs the balance total with the supply, read from one snapshot.
type Reconciliation struct {
	BalanceSum int64
	Supply     Supply
}

// Log is the append-only record of currency movements. It has no update or
// delete operation; storage rejects both.
type Log interface {
	Append(ctx context.Context, tx *sql.Tx, event economy.LedgerEvent) (economy.LedgerEvent, error)
	BulkAppend(ctx context.Context, tx *sql.Tx, events []economy.LedgerEvent) error

	// ListByGuild returns up to limit events older than beforeID, newest first.
	// beforeID 0 starts from the newest event.
	ListByGuild(ctx context.Context, guild economy.GuildID, beforeID int64, limit int) ([]economy.LedgerEvent, error)
	CashSupply(ctx context.Context, guild economy.GuildID) (Supply, error)
	Reconcile(ctx context.Context, guild economy.GuildID) (Reconciliation, error)
	ReplayBalance(ctx context.Context, user economy.UserID, guild economy.GuildID) (int64, error)
}
