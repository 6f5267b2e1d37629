package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/fastprodman/guildledger/internal/economy"
)

func (s *Service) Stat(ctx context.Context, user economy.UserID, guild economy.GuildID, stat economy.Stat) (int64, error) {
	err := economy.ValidateAccount(user, guild)
	if err != nil {
		return 0, err
	}

	v, err := s.accounts.GetStat(ctx, user, guild, stat)
	if err != nil {
		return 0, fmt.Errorf("get stat: %w", err)
	}

	return v, nil
}

// AdjustStat adds delta to a bumps or xp counter. It returns ok false when a
// decrement would take xp below zero. Currency is never adjusted here.
func (s *Service) AdjustStat(
	ctx context.Context,
	user economy.UserID,
	guild economy.GuildID,
	stat economy.Stat,
	delta int64,
) (value int64, ok bool, err error) {
	err = economy.ValidateAccount(user, guild)
	if err != nil {
		return 0, false, err
	}

	switch {
	case !stat.Adjustable():
		return 0, false, economy.ErrStatNotAdjustable
	case delta == 0:
		return 0, false, economy.ErrNonPositiveAmount
	case delta == math.MinInt64:
		return 0, false, economy.ErrAmountOverflow
	case delta < 0 && !stat.Decrementable():
		return 0, false, economy.ErrStatNotAdjustable
	}

	if delta > 0 {
		value, err = s.accounts.IncrementStat(ctx, user, guild, stat, delta)
	} else {
		value, err = s.accounts.DecrementStat(ctx, user, guild, stat, -delta)
	}

	switch {
	case err == nil:
		return value, true, nil
	case errors.Is(err, economy.ErrInsufficientFunds):
		return 0, false, nil
	default:
		return 0, false, fmt.Errorf("adjust %s: %w", stat, err)
	}
}
