package ledger

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/fastprodman/guildledger/internal/economy"
	"github.com/fastprodman/guildledger/internal/events"
	"github.com/fastprodman/guildledger/internal/infra/logging"
	"github.com/fastprodman/guildledger/internal/infra/pgutils"
	"github.com/fastprodman/guildledger/internal/repos/accounts"
	pgaccounts "github.com/fastprodman/guildledger/internal/repos/accounts/postgres"
	"github.com/fastprodman/guildledger/internal/repos/ledger"
	pgledger "github.com/fastprodman/guildledger/internal/repos/ledger/postgres"
	"github.com/fastprodman/guildledger/internal/repos/positions"
	pgpositions "github.com/fastprodman/guildledger/internal/repos/positions/postgres"
)

// Service is the only writer of balances and ledger events. Every public
// operation runs in exactly one database transaction: the balance writes and
// the events documenting them commit together or not at all.
type Service struct {
	db        *sql.DB
	accounts  accounts.Accounts
	log       ledger.Log
	positions positions.Positions
	publisher events.Publisher
}

type Option func(*Service)

// WithPublisher hands committed events to p.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithLog replaces the Postgres ledger log.
func WithLog(l ledger.Log) Option {
	return func(s *Service) { s.log = l }
}

func WithAccounts(a accounts.Accounts) Option {
	return func(s *Service) { s.accounts = a }
}

func WithPositions(p positions.Positions) Option {
	return func(s *Service) { s.positions = p }
}

func New(dbx *sql.DB, opts ...Option) *Service {
	s := &Service{
		db:        dbx,
		accounts:  pgaccounts.New(dbx),
		log:       pgledger.New(dbx),
		positions: pgpositions.New(dbx),
		publisher: events.Noop{},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// inTx runs fn in one transaction. Insufficient funds and caller errors pass
// through unchanged; anything else is logged after rollback and returned as a
// *FaultError.
func (s *Service) inTx(ctx context.Context, op string, fn func(tx *sql.Tx) error, attrs ...any) error {
	err := pgutils.WithTx(ctx, s.db, fn)
	if err == nil {
		return nil
	}

	if errors.Is(err, economy.ErrInsufficientFunds) ||
		errors.Is(err, economy.ErrInvalidInput) {
		return err
	}

	logging.FromContext(ctx).Error("ledger transaction rolled back",
		append([]any{slog.String("op", op), slog.Any("err", err)}, attrs...)...)

	return &FaultError{Op: op, Err: err}
}

func (s *Service) publish(ctx context.Context, evs ...economy.LedgerEvent) {
	if len(evs) == 0 {
		return
	}

	s.publisher.Publish(context.WithoutCancel(ctx), evs...)
}

func accountAttrs(user economy.UserID, guild economy.GuildID) []any {
	return []any{slog.String("guild_id", guild.String()), slog.String("user_id", user.String())}
}
