package pgutils_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/fastprodman/guildledger/internal/infra/pgtestutil"
	"github.com/fastprodman/guildledger/internal/infra/pgutils"
)

func countAccounts(t *testing.T, db *sql.DB) int {
	t.Helper()

	var n int

	err := db.QueryRow(`SELECT count(*) FROM accounts`).Scan(&n)
	if err != nil {
		t.Fatalf("count: %v", err)
	}

	return n
}

func TestWithTx(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	ctx := context.Background()
	insert := func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO accounts (guild_id, user_id) VALUES (1, 1)`)
		return err
	}

	errBoom := errors.New("boom")

	err := pgutils.WithTx(ctx, db, func(tx *sql.Tx) error {
		if err := insert(tx); err != nil {
			return err
		}

		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("want fn error, got %v", err)
	}

	if n := countAccounts(t, db); n != 0 {
		t.Fatalf("error must roll back, found %d rows", n)
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("panic was swallowed")
			}
		}()

		_ = pgutils.WithTx(ctx, db, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, `SELECT 1 FROM accounts FOR UPDATE`)
			if err != nil {
				return err
			}

			if err = insert(tx); err != nil {
				return err
			}

			panic("fn panicked")
		})
	}()

	if n := countAccounts(t, db); n != 0 {
		t.Fatalf("panic must roll back, found %d rows", n)
	}

	if inUse := db.Stats().InUse; inUse != 0 {
		t.Fatalf("transaction still holds %d connections", inUse)
	}

	err = pgutils.WithTx(ctx, db, insert)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	if n := countAccounts(t, db); n != 1 {
		t.Fatalf("want 1 row after commit, got %d", n)
	}
}
