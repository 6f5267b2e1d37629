package ledger

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fastprodman/guildledger/internal/economy"
)

// TaxThreshold is the balance (and collateral) at or below which the wealth
// tax does not apply.
const TaxThreshold = 10

// SetResult describes an administrative balance overwrite.
type SetResult struct {
	Previous int64
	Current  int64
	Delta    int64
	// Event is nil when the balance was already at the target.
	Event *economy.LedgerEvent
}

// TaxResult summarises one wealth-tax pass over a guild.
type TaxResult struct {
	BatchID           uuid.UUID
	AffectedUsers     []economy.UserID
	TotalRemoved      int64
	CashRemoved       int64
	CollateralRemoved int64
	AccountsTaxed     int
	PositionsTaxed    int
	// PositionsSkipped counts positions whose rescaled notional would fall below 1.
	PositionsSkipped int
}

func (r TaxResult) AffectedCount() int { return len(r.AffectedUsers) }

// AuditReport compares current balances with the cash supply replayed from the log.
type AuditReport struct {
	GuildID    economy.GuildID
	BalanceSum int64
	Minted     int64
	Burned     int64
}

func (a AuditReport) Drift() int64   { return a.BalanceSum - (a.Minted - a.Burned) }
func (a AuditReport) Balanced() bool { return a.Drift() == 0 }

// FaultError is a storage or transaction failure. The transaction it
// happened in has been rolled back; nothing was applied.
type FaultError struct {
	Op  string
	Err error
}

func (e *FaultError) Error() string { return fmt.Sprintf("ledger %s: %v", e.Op, e.Err) }
func (e *FaultError) Unwrap() error { return e.Err }

// IsFault reports whether err is a storage fault rather than a caller error.
func IsFault(err error) bool {
	var f *FaultError
	return errors.As(err, &f)
}
