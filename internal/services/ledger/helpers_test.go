package ledger

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fastprodman/guildledger/internal/economy"
	"github.com/fastprodman/guildledger/internal/infra/pgtestutil"
	"github.com/fastprodman/guildledger/internal/repos/ledger"
	pgledger "github.com/fastprodman/guildledger/internal/repos/ledger/postgres"
)

const (
	g1    economy.GuildID = 1001
	u1    economy.UserID  = 2001
	u2    economy.UserID  = 2002
	u3    economy.UserID  = 2003
	admin economy.UserID  = 9
)

var errInjected = errors.New("injected ledger fault")

// brokenLog fails every write after the balance statement has already run.
type brokenLog struct {
	ledger.Log
}

func (brokenLog) Append(context.Context, *sql.Tx, economy.LedgerEvent) (economy.LedgerEvent, error) {
	return economy.LedgerEvent{}, errInjected
}

func (brokenLog) BulkAppend(context.Context, *sql.Tx, []economy.LedgerEvent) error {
	return errInjected
}

type recordingPublisher struct {
	mu  sync.Mutex
	got []economy.LedgerEvent
}

func (p *recordingPublisher) Publish(_ context.Context, evs ...economy.LedgerEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.got = append(p.got, evs...)
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) events() []economy.LedgerEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]economy.LedgerEvent(nil), p.got...)
}

func newService(t *testing.T, opts ...Option) (*Service, *sql.DB) {
	t.Helper()

	db, cleanup := pgtestutil.NewTestDB(t)
	t.Cleanup(cleanup)

	return New(db, opts...), db
}

func eventCount(t *testing.T, db *sql.DB, guild economy.GuildID) int {
	t.Helper()

	var n int
	err := db.QueryRow(`SELECT count(*) FROM ledger_events WHERE guild_id = $1`, guild).Scan(&n)
	require.NoError(t, err)

	return n
}

func balanceOf(t *testing.T, s *Service, user economy.UserID, guild economy.GuildID) uint64 {
	t.Helper()

	b, err := s.Balance(context.Background(), user, guild)
	require.NoError(t, err)

	return b
}

func requireBalanced(t *testing.T, s *Service, guild economy.GuildID) {
	t.Helper()

	rep, err := s.Audit(context.Background(), guild)
	require.NoError(t, err)
	require.Truef(t, rep.Balanced(), "ledger drift %d: %+v", rep.Drift(), rep)
}

func newLogWithFault(db *sql.DB) ledger.Log {
	return brokenLog{Log: pgledger.New(db)}
}
