package accounts

import (
	"context"
	"database/sql"
	"testing"

	"github.com/fastprodman/guildledger/internal/economy"
	"github.com/fastprodman/guildledger/internal/infra/pgtestutil"
)

func TestAccounts_Top_TiesShareRankOldestFirst(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	// insertion order defines creation order
	seedBalance(t, db, carol, 50)
	seedBalance(t, db, alice, 80)
	seedBalance(t, db, bob, 50)

	repo := New(db)

	got, err := repo.Top(context.Background(), guild, economy.StatCurrency, 10)
	if err != nil {
		t.Fatalf("top: %v", err)
	}

	want := []struct {
		rank int
		user economy.UserID
	}{{1, alice}, {2, carol}, {2, bob}}

	if len(got) != len(want) {
		t.Fatalf("want %d rows, got %d", len(want), len(got))
	}

	for i, w := range want {
		if got[i].Rank != w.rank || got[i].UserID != w.user {
			t.Fatalf("row %d: want %+v, got %+v", i, w, got[i])
		}
	}

	limited, err := repo.Top(context.Background(), guild, economy.StatCurrency, 1)
	if err != nil {
		t.Fatalf("top limited: %v", err)
	}

	if len(limited) != 1 || limited[0].UserID != alice {
		t.Fatalf("limit not applied: %+v", limited)
	}
}

func TestAccounts_Top_SkipsZeroValues(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)
	ctx := context.Background()

	seedBalance(t, db, alice, 0)
	seedBalance(t, db, bob, 30)

	inTx(t, db, func(tx *sql.Tx) {
		err := repo.Ensure(ctx, tx, carol, guild)
		if err != nil {
			t.Fatalf("ensure: %v", err)
		}
	})

	_, err := repo.IncrementStat(ctx, alice, guild, economy.StatXP, 50)
	if err != nil {
		t.Fatalf("xp: %v", err)
	}

	tests := []struct {
		stat economy.Stat
		want []economy.UserID
	}{
		{economy.StatCurrency, []economy.UserID{bob}},
		{economy.StatBumps, nil},
		{economy.StatXP, []economy.UserID{alice}},
		{economy.StatLevel, []economy.UserID{alice}},
	}

	for _, tt := range tests {
		got, err := repo.Top(ctx, guild, tt.stat, 10)
		if err != nil {
			t.Fatalf("top %s: %v", tt.stat, err)
		}

		if len(got) != len(tt.want) {
			t.Fatalf("top %s: want %v, got %+v", tt.stat, tt.want, got)
		}

		for i, u := range tt.want {
			if got[i].UserID != u || got[i].Rank != i+1 {
				t.Fatalf("top %s row %d: want %s, got %+v", tt.stat, i, u, got[i])
			}
		}
	}
}
