package ledger

import (
	"database/sql"

	"github.com/fastprodman/guildledger/internal/economy"
	"github.com/fastprodman/guildledger/internal/repos/ledger"
)

var _ ledger.Log = (*ledgerRepo)(nil)

type ledgerRepo struct{ db *sql.DB }

func New(db *sql.DB) *ledgerRepo {
	return &ledgerRepo{db: db}
}

// participantArgs splits a participant into its stored kind and nullable id.
func participantArgs(p economy.Participant) (string, sql.NullInt64) {
	id, ok := p.UserID()
	if !ok {
		return string(p.Kind), sql.NullInt64{}
	}

	return string(p.Kind), sql.NullInt64{Int64: int64(id), Valid: true}
}

func eventArgs(e economy.LedgerEvent) []any {
	sk, sid := participantArgs(e.Sender)
	rk, rid := participantArgs(e.Receiver)

	var pos sql.NullInt64
	if e.Position != nil {
		pos = sql.NullInt64{Int64: int64(*e.Position), Valid: true}
	}

	var batch sql.NullString
	if e.BatchID != nil {
		batch = sql.NullString{String: e.BatchID.String(), Valid: true}
	}

	return []any{
		int64(e.GuildID), string(e.Type), string(e.Reason),
		sk, sid, rk, rid,
		int64(e.Amount), int64(e.Initiator), pos, batch,
	}
}

const eventColumns = `guild_id, event_type, event_reason,
	sender_kind, sender_id, receiver_kind, receiver_id,
	amount, initiator_id, position_id, batch_id`

// eventCasts types every placeholder of a multi-row insert.
var eventCasts = []string{
	"BIGINT", "TEXT", "TEXT",
	"TEXT", "BIGINT", "TEXT", "BIGINT",
	"BIGINT", "BIGINT", "BIGINT", "UUID",
}
