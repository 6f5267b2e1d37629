package accounts

import (
	"context"
	"database/sql"

	"github.com/fastprodman/guildledger/internal/economy"
)

var (
	ErrInsufficientFunds = economy.ErrInsufficientFunds
	ErrBalanceOverflow   = economy.ErrBalanceOverflow
)

// Holding is one account's cash balance.
type Holding struct {
	UserID  economy.UserID
	Balance int64
}

// Ranked is one leaderboard row.
type Ranked struct {
	Rank   int
	UserID economy.UserID
	Value  int64
}

// Accounts is the balance store. Rows are created by the first write to an
// (user, guild) pair and are never deleted. Methods taking a *sql.Tx must be
// called inside the transaction that also writes the matching ledger events.
type Accounts interface {
	GetBalance(ctx context.Context, user economy.UserID, guild economy.GuildID) (int64, error)
	TotalBalance(ctx context.Context, guild economy.GuildID) (int64, error)

	Ensure(ctx context.Context, tx *sql.Tx, user economy.UserID, guild economy.GuildID) error
	Credit(ctx context.Context, tx *sql.Tx, user economy.UserID, guild economy.GuildID, amount int64) (int64, error)
	Debit(ctx context.Context, tx *sql.Tx, user economy.UserID, guild economy.GuildID, amount int64) (int64, error)
	LockBalances(ctx context.Context, tx *sql.Tx, guild economy.GuildID, users ...economy.UserID) (map[economy.UserID]int64, error)
	SetBalance(ctx context.Context, tx *sql.Tx, user economy.UserID, guild economy.GuildID, balance int64) error

	LockTaxable(ctx context.Context, tx *sql.Tx, guild economy.GuildID, threshold int64) ([]Holding, error)
	SetBalances(ctx context.Context, tx *sql.Tx, guild economy.GuildID, holdings []Holding) error

	GetStat(ctx context.Context, user economy.UserID, guild economy.GuildID, stat economy.Stat) (int64, error)
	IncrementStat(ctx context.Context, user economy.UserID, guild economy.GuildID, stat economy.Stat, amount int64) (int64, error)
	DecrementStat(ctx context.Context, user economy.UserID, guild economy.GuildID, stat economy.Stat, amount int64) (int64, error)
	SetStat(ctx context.Context, user economy.UserID, guild economy.GuildID, stat economy.Stat, value int64) error
	Top(ctx context.Context, guild economy.GuildID, stat economy.Stat, limit int) ([]Ranked, error)
}
