package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/fastprodman/guildledger/internal/economy"
	"github.com/fastprodman/guildledger/internal/repos/accounts"
	"github.com/fastprodman/guildledger/internal/services/ledger"
)

type fakeLedger struct {
	balance   uint64
	burnOK    bool
	err       error
	gotReason economy.Reason
	gotFrom   economy.UserID
	gotTo     economy.UserID
	gotAmount uint64
	gotBefore int64
}

func (f *fakeLedger) Balance(context.Context, economy.UserID, economy.GuildID) (uint64, error) {
	return f.balance, f.err
}

func (f *fakeLedger) Mint(_ context.Context, _ economy.UserID, _ economy.GuildID, amount uint64, reason economy.Reason, _ economy.UserID) (uint64, error) {
	f.gotAmount, f.gotReason = amount, reason
	return f.balance + amount, f.err
}

func (f *fakeLedger) Burn(_ context.Context, _ economy.UserID, _ economy.GuildID, amount uint64, reason economy.Reason, _ economy.UserID) (uint64, bool, error) {
	f.gotAmount, f.gotReason = amount, reason
	return f.balance - amount, f.burnOK, f.err
}

func (f *fakeLedger) Transfer(_ context.Context, from, to economy.UserID, _ economy.GuildID, amount uint64) (bool, error) {
	f.gotFrom, f.gotTo, f.gotAmount = from, to, amount
	if f.err != nil {
		return false, f.err
	}

	if from == to {
		return false, economy.ErrSelfTransfer
	}

	return f.burnOK, nil
}

func (f *fakeLedger) SetBalance(_ context.Context, _ economy.UserID, _ economy.GuildID, balance uint64, _ economy.Reason, _ economy.UserID) (ledger.SetResult, error) {
	return ledger.SetResult{Previous: int64(f.balance), Current: int64(balance), Delta: int64(balance) - int64(f.balance)}, f.err
}

func (f *fakeLedger) ApplyWealthTax(context.Context, economy.GuildID, float64, economy.UserID) (ledger.TaxResult, error) {
	return ledger.TaxResult{BatchID: uuid.Nil, AffectedUsers: []economy.UserID{1}, TotalRemoved: 498, CashRemoved: 498}, f.err
}

func (f *fakeLedger) Audit(context.Context, economy.GuildID) (ledger.AuditReport, error) {
	return ledger.AuditReport{BalanceSum: 10, Minted: 12, Burned: 2}, f.err
}

func (f *fakeLedger) History(_ context.Context, _ economy.GuildID, before int64, _ int) ([]economy.LedgerEvent, error) {
	f.gotBefore = before
	e := economy.MintEvent(1001, 2001, 5, economy.ReasonAdminMint, 9)
	e.ID = 41

	return []economy.LedgerEvent{e}, f.err
}

type fakeBoard struct {
	touched []economy.UserID
	days    int
}

func (f *fakeBoard) Top(_ context.Context, _ economy.GuildID, _ economy.Stat, _ int) ([]accounts.Ranked, error) {
	return []accounts.Ranked{{Rank: 1, UserID: 2001, Value: 90}}, nil
}

func (f *fakeBoard) Active(_ context.Context, _ economy.GuildID, days int) ([]economy.UserID, error) {
	f.days = days
	return []economy.UserID{2001}, nil
}

func (f *fakeBoard) Inactive(_ context.Context, _ economy.GuildID, days int) ([]economy.UserID, error) {
	if days <= 0 {
		return nil, economy.ErrInvalidWindow
	}

	return nil, nil
}

func (f *fakeBoard) Touch(_ context.Context, _ economy.GuildID, users ...economy.UserID) error {
	f.touched = users
	return nil
}

func (f *fakeBoard) Stat(context.Context, economy.UserID, economy.GuildID, economy.Stat) (int64, error) {
	return 7, nil
}

func (f *fakeBoard) AdjustStat(_ context.Context, _ economy.UserID, _ economy.GuildID, _ economy.Stat, delta int64) (int64, bool, error) {
	return 7 + delta, 7+delta >= 0, nil
}

func do(t *testing.T, h http.Handler, method, path, body string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}

	return rec.Code, out
}

func TestRouter_LedgerEndpoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		ledger     *fakeLedger
		method     string
		path       string
		body       string
		wantStatus int
		check      func(t *testing.T, f *fakeLedger, body map[string]any)
	}{
		{
			name:       "get balance",
			ledger:     &fakeLedger{balance: 100},
			method:     http.MethodGet,
			path:       "/guilds/1001/users/2001/balance",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, _ *fakeLedger, body map[string]any) {
				require.EqualValues(t, 100, body["balance"])
				require.Equal(t, "2001", body["userId"])
			},
		},
		{
			name:       "bad guild id",
			ledger:     &fakeLedger{},
			method:     http.MethodGet,
			path:       "/guilds/zero/users/2001/balance",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "mint parses reason case-insensitively",
			ledger:     &fakeLedger{balance: 1},
			method:     http.MethodPost,
			path:       "/guilds/1001/users/2001/mint",
			body:       `{"amount":5,"reason":"admin_mint","initiator":"9"}`,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, f *fakeLedger, body map[string]any) {
				require.Equal(t, economy.ReasonAdminMint, f.gotReason)
				require.EqualValues(t, 6, body["balance"])
			},
		},
		{
			name:       "unknown reason",
			ledger:     &fakeLedger{},
			method:     http.MethodPost,
			path:       "/guilds/1001/users/2001/mint",
			body:       `{"amount":5,"reason":"LOTTERY","initiator":"9"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "negative amount",
			ledger:     &fakeLedger{},
			method:     http.MethodPost,
			path:       "/guilds/1001/users/2001/mint",
			body:       `{"amount":-5,"reason":"ADMIN_MINT","initiator":"9"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown field",
			ledger:     &fakeLedger{},
			method:     http.MethodPost,
			path:       "/guilds/1001/users/2001/mint",
			body:       `{"amount":5,"reason":"ADMIN_MINT","initiator":"9","extra":1}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "burn with insufficient funds",
			ledger:     &fakeLedger{balance: 100, burnOK: false},
			method:     http.MethodPost,
			path:       "/guilds/1001/users/2001/burn",
			body:       `{"amount":150,"reason":"BLACKJACK_BET","initiator":"2001"}`,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "transfer",
			ledger:     &fakeLedger{burnOK: true},
			method:     http.MethodPost,
			path:       "/guilds/1001/transfers",
			body:       `{"from":"2001","to":"2002","amount":40}`,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, f *fakeLedger, _ map[string]any) {
				require.Equal(t, economy.UserID(2001), f.gotFrom)
				require.Equal(t, economy.UserID(2002), f.gotTo)
				require.EqualValues(t, 40, f.gotAmount)
			},
		},
		{
			name:       "self transfer",
			ledger:     &fakeLedger{burnOK: true},
			method:     http.MethodPost,
			path:       "/guilds/1001/transfers",
			body:       `{"from":"2001","to":"2001","amount":40}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "storage fault hides detail",
			ledger:     &fakeLedger{err: &ledger.FaultError{Op: "mint", Err: context.DeadlineExceeded}},
			method:     http.MethodPost,
			path:       "/guilds/1001/users/2001/mint",
			body:       `{"amount":5,"reason":"ADMIN_MINT","initiator":"9"}`,
			wantStatus: http.StatusInternalServerError,
			check: func(t *testing.T, _ *fakeLedger, body map[string]any) {
				require.Equal(t, "internal error", body["error"])
			},
		},
		{
			name:       "set balance",
			ledger:     &fakeLedger{balance: 100},
			method:     http.MethodPut,
			path:       "/guilds/1001/users/2001/balance",
			body:       `{"balance":60,"reason":"ADMIN_SET","initiator":"9"}`,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, _ *fakeLedger, body map[string]any) {
				require.EqualValues(t, -40, body["delta"])
			},
		},
		{
			name:       "wealth tax",
			ledger:     &fakeLedger{},
			method:     http.MethodPost,
			path:       "/guilds/1001/wealth-tax",
			body:       `{"exponent":0.9,"initiator":"9"}`,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, _ *fakeLedger, body map[string]any) {
				require.EqualValues(t, 498, body["totalRemoved"])
				require.EqualValues(t, 1, body["affectedUsers"])
			},
		},
		{
			name:       "events page",
			ledger:     &fakeLedger{},
			method:     http.MethodGet,
			path:       "/guilds/1001/events?before=50&limit=1",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, f *fakeLedger, body map[string]any) {
				require.EqualValues(t, 50, f.gotBefore)
				require.Equal(t, "41", body["next"])
			},
		},
		{
			name:       "audit",
			ledger:     &fakeLedger{},
			method:     http.MethodGet,
			path:       "/guilds/1001/audit",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, _ *fakeLedger, body map[string]any) {
				require.Equal(t, true, body["balanced"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := NewRouter(tt.ledger, &fakeBoard{})

			status, body := do(t, h, tt.method, tt.path, tt.body)
			require.Equal(t, tt.wantStatus, status, body)

			if tt.check != nil {
				tt.check(t, tt.ledger, body)
			}
		})
	}
}

func TestRouter_BoardEndpoints(t *testing.T) {
	t.Parallel()

	board := &fakeBoard{}
	h := NewRouter(&fakeLedger{}, board)

	status, body := do(t, h, http.MethodGet, "/guilds/1001/leaderboard?stat=xp", "")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "xp", body["stat"])

	status, _ = do(t, h, http.MethodGet, "/guilds/1001/leaderboard?stat=karma", "")
	require.Equal(t, http.StatusBadRequest, status)

	status, body = do(t, h, http.MethodGet, "/guilds/1001/users/active", "")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 30, board.days)
	require.Equal(t, []any{"2001"}, body["users"])

	status, _ = do(t, h, http.MethodGet, "/guilds/1001/users/inactive?days=0", "")
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, h, http.MethodPost, "/guilds/1001/activity", `{"users":["1","2"]}`)
	require.Equal(t, http.StatusNoContent, status)
	require.Equal(t, []economy.UserID{1, 2}, board.touched)

	status, _ = do(t, h, http.MethodPost, "/guilds/1001/users/5/stats/xp", `{"delta":-10}`)
	require.Equal(t, http.StatusConflict, status)

	status, body = do(t, h, http.MethodPost, "/guilds/1001/users/5/stats/xp", `{"delta":3}`)
	require.Equal(t, http.StatusOK, status)
	require.EqualValues(t, 10, body["value"])

	status, _ = do(t, h, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, status)
}
