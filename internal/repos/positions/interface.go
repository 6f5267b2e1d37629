package positions

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fastprodman/guildledger/internal/economy"
)

var ErrPositionNotFound = errors.New("position not found")

// Position is a leveraged holding owned by the trading subsystem. The ledger
// only reads it and, during a wealth-tax pass, resizes it.
type Position struct {
	ID         economy.PositionID
	GuildID    economy.GuildID
	UserID     economy.UserID
	Symbol     string
	Collateral int64
	Notional   int64
	OpenedAt   time.Time
}

type Positions interface {
	Open(ctx context.Context, p Position) (Position, error)
	Get(ctx context.Context, id economy.PositionID) (Position, error)
	ListByUser(ctx context.Context, user economy.UserID, guild economy.GuildID) ([]Position, error)

	// LockTaxable locks every position of the guild whose collateral is above threshold.
	LockTaxable(ctx context.Context, tx *sql.Tx, guild economy.GuildID, threshold int64) ([]Position, error)
	UpdateSize(ctx context.Context, tx *sql.Tx, id economy.PositionID, collateral, notional int64) error
}
