package economy

import (
	"time"

	"github.com/google/uuid"
)

// LedgerEvent is one immutable entry of the currency ledger.
type LedgerEvent struct {
	ID        int64
	GuildID   GuildID
	Type      EventType
	Reason    Reason
	Sender    Participant
	Receiver  Participant
	Amount    uint64
	Initiator UserID
	// Position is set only for collateral burns.
	Position *PositionID
	// BatchID groups the events written by one wealth-tax run.
	BatchID   *uuid.UUID
	CreatedAt time.Time
}

// MintEvent documents value created into user's account.
func MintEvent(guild GuildID, user UserID, amount uint64, reason Reason, initiator UserID) LedgerEvent {
	return LedgerEvent{
		GuildID:   guild,
		Type:      EventMint,
		Reason:    reason,
		Sender:    System,
		Receiver:  User(user),
		Amount:    amount,
		Initiator: initiator,
	}
}

// BurnEvent documents value destroyed from user's account.
func BurnEvent(guild GuildID, user UserID, amount uint64, reason Reason, initiator UserID) LedgerEvent {
	return LedgerEvent{
		GuildID:   guild,
		Type:      EventBurn,
		Reason:    reason,
		Sender:    User(user),
		Receiver:  System,
		Amount:    amount,
		Initiator: initiator,
	}
}

func TransferEvent(guild GuildID, from, to UserID, amount uint64) LedgerEvent {
	return LedgerEvent{
		GuildID:   guild,
		Type:      EventTransfer,
		Reason:    ReasonP2PTransfer,
		Sender:    User(from),
		Receiver:  User(to),
		Amount:    amount,
		Initiator: from,
	}
}

// SignedDelta returns the effect of the event on user's cash balance.
func (e LedgerEvent) SignedDelta(user UserID) int64 {
	var d int64
	if e.Receiver == User(user) {
		d += int64(e.Amount)
	}

	if e.Sender == User(user) {
		d -= int64(e.Amount)
	}

	return d
}
