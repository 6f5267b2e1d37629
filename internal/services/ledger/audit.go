package ledger

import (
	"context"
	"fmt"

	"github.com/fastprodman/guildledger/internal/economy"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)

// Audit compares the guild's balances with the supply replayed from the log.
// Both sums come from one snapshot.
func (s *Service) Audit(ctx context.Context, guild economy.GuildID) (AuditReport, error) {
	if guild == 0 {
		return AuditReport{}, economy.ErrInvalidID
	}

	rec, err := s.log.Reconcile(ctx, guild)
	if err != nil {
		return AuditReport{}, fmt.Errorf("reconcile: %w", err)
	}

	return AuditReport{
		GuildID:    guild,
		BalanceSum: rec.BalanceSum,
		Minted:     rec.Supply.Minted,
		Burned:     rec.Supply.Burned,
	}, nil
}

// VerifyAccount replays user's events and reports the stored and replayed balances.
func (s *Service) VerifyAccount(ctx context.Context, user economy.UserID, guild economy.GuildID) (stored, replayed int64, err error) {
	err = economy.ValidateAccount(user, guild)
	if err != nil {
		return 0, 0, err
	}

	stored, err = s.accounts.GetBalance(ctx, user, guild)
	if err != nil {
		return 0, 0, fmt.Errorf("get balance: %w", err)
	}

	replayed, err = s.log.ReplayBalance(ctx, user, guild)
	if err != nil {
		return 0, 0, fmt.Errorf("replay balance: %w", err)
	}

	return stored, replayed, nil
}

// History pages through the guild's events, newest first. Pass the smallest
// event id of the previous page as before to continue.
func (s *Service) History(ctx context.Context, guild economy.GuildID, before int64, limit int) ([]economy.LedgerEvent, error) {
	if guild == 0 {
		return nil, economy.ErrInvalidID
	}

	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}

	evs, err := s.log.ListByGuild(ctx, guild, before, limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	return evs, nil
}
