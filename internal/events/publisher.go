package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fastprodman/guildledger/internal/economy"
)

// Publisher receives ledger events after their transaction has committed.
// Delivery is best effort; a failed publish never affects the ledger.
type Publisher interface {
	Publish(ctx context.Context, events ...economy.LedgerEvent)
	Close() error
}

type Noop struct{}

func (Noop) Publish(context.Context, ...economy.LedgerEvent) {}
func (Noop) Close() error                                    { return nil }

// Message is the wire form of a published ledger event.
type Message struct {
	EventID    int64      `json:"event_id"`
	GuildID    string     `json:"guild_id"`
	Type       string     `json:"type"`
	Reason     string     `json:"reason"`
	Sender     string     `json:"sender"`
	Receiver   string     `json:"receiver"`
	Amount     uint64     `json:"amount"`
	Initiator  string     `json:"initiator"`
	PositionID *string    `json:"position_id,omitempty"`
	BatchID    *uuid.UUID `json:"batch_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func NewMessage(e economy.LedgerEvent) Message {
	m := Message{
		EventID:   e.ID,
		GuildID:   e.GuildID.String(),
		Type:      string(e.Type),
		Reason:    string(e.Reason),
		Sender:    e.Sender.String(),
		Receiver:  e.Receiver.String(),
		Amount:    e.Amount,
		Initiator: e.Initiator.String(),
		BatchID:   e.BatchID,
		CreatedAt: e.CreatedAt,
	}

	if e.Position != nil {
		p := e.Position.String()
		m.PositionID = &p
	}

	return m
}
