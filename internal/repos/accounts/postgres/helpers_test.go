package accounts

import (
	"context"
	"database/sql"
	"testing"

	"github.com/fastprodman/guildledger/internal/economy"
)

const (
	guild  economy.GuildID = 1001
	alice  economy.UserID  = 2001
	bob    economy.UserID  = 2002
	carol  economy.UserID  = 2003
	intMax                 = int64(^uint64(0) >> 1)
)

func seedBalance(t *testing.T, db *sql.DB, user economy.UserID, balance int64) {
	t.Helper()

	_, err := db.Exec(`INSERT INTO accounts (guild_id, user_id, balance) VALUES ($1, $2, $3)`, guild, user, balance)
	if err != nil {
		t.Fatalf("seed account %s: %v", user, err)
	}
}

func inTx(t *testing.T, db *sql.DB, fn func(tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}

	fn(tx)

	err = tx.Commit()
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
}
