package accounts

import (
	"context"
	"database/sql"
	"testing"

	"github.com/fastprodman/guildledger/internal/infra/pgtestutil"
	"github.com/fastprodman/guildledger/internal/repos/accounts"
)

func TestAccounts_LockTaxableAndSetBalances(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	seedBalance(t, db, alice, 1000)
	seedBalance(t, db, bob, 10)
	seedBalance(t, db, carol, 11)

	repo := New(db)
	ctx := context.Background()

	inTx(t, db, func(tx *sql.Tx) {
		got, err := repo.LockTaxable(ctx, tx, guild, 10)
		if err != nil {
			t.Fatalf("lock taxable: %v", err)
		}

		if len(got) != 2 || got[0].UserID != alice || got[1].UserID != carol {
			t.Fatalf("unexpected taxable rows: %+v", got)
		}

		err = repo.SetBalances(ctx, tx, guild, []accounts.Holding{
			{UserID: alice, Balance: 502},
			{UserID: carol, Balance: 9},
		})
		if err != nil {
			t.Fatalf("set balances: %v", err)
		}
	})

	total, err := repo.TotalBalance(ctx, guild)
	if err != nil {
		t.Fatalf("total: %v", err)
	}

	if total != 502+10+9 {
		t.Fatalf("total: want %d, got %d", 502+10+9, total)
	}
}
