package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/fastprodman/guildledger/internal/economy"
	"github.com/fastprodman/guildledger/internal/events"
)

var _ events.Publisher = (*Publisher)(nil)

// Publisher writes ledger events to a topic keyed by guild, so one guild's
// events stay ordered within a partition. Writes are asynchronous.
type Publisher struct {
	writer *kafka.Writer
	log    *slog.Logger
}

func NewPublisher(brokers []string, topic string, batchTimeout time.Duration, log *slog.Logger) *Publisher {
	p := &Publisher{log: log}

	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: batchTimeout,
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		Completion:   p.completed,
	}

	return p
}

func (p *Publisher) Publish(ctx context.Context, evs ...economy.LedgerEvent) {
	msgs := make([]kafka.Message, 0, len(evs))

	for _, e := range evs {
		msg, err := encode(e)
		if err != nil {
			p.log.Error("encode ledger event", slog.Int64("event_id", e.ID), slog.Any("err", err))
			continue
		}

		msgs = append(msgs, msg)
	}

	if len(msgs) == 0 {
		return
	}

	// async writer: errors arrive in completed
	err := p.writer.WriteMessages(ctx, msgs...)
	if err != nil {
		p.log.Error("enqueue ledger events", slog.Int("count", len(msgs)), slog.Any("err", err))
	}
}

func (p *Publisher) completed(msgs []kafka.Message, err error) {
	if err != nil {
		p.log.Error("publish ledger events", slog.Int("count", len(msgs)), slog.Any("err", err))
	}
}

// Close flushes pending messages.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

func encode(e economy.LedgerEvent) (kafka.Message, error) {
	data, err := json.Marshal(events.NewMessage(e))
	if err != nil {
		return kafka.Message{}, err
	}

	return kafka.Message{
		Key:   []byte(e.GuildID.String()),
		Value: data,
		Time:  e.CreatedAt,
	}, nil
}
