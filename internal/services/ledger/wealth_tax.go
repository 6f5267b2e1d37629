package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/fastprodman/guildledger/internal/economy"
	"github.com/fastprodman/guildledger/internal/infra/logging"
	"github.com/fastprodman/guildledger/internal/repos/accounts"
)

// ApplyWealthTax shrinks every balance and position collateral above
// TaxThreshold to ceil(v^exponent) in a single transaction. Notional is scaled
// by the same ratio as collateral. A position whose scaled notional would drop
// below 1 in magnitude is left untouched.
//
// The whole guild is taxed or nothing is. Concurrent writes to the taxed rows
// wait for the pass to finish.
func (s *Service) ApplyWealthTax(
	ctx context.Context,
	guild economy.GuildID,
	exponent float64,
	initiator economy.UserID,
) (TaxResult, error) {
	err := economy.ValidateAccount(initiator, guild)
	if err != nil {
		return TaxResult{}, err
	}

	err = economy.ValidateExponent(exponent)
	if err != nil {
		return TaxResult{}, err
	}

	var (
		res    TaxResult
		events []economy.LedgerEvent
	)

	res.BatchID = uuid.New()
	batch := res.BatchID

	err = s.inTx(ctx, "wealth_tax", func(tx *sql.Tx) error {
		affected := make(map[economy.UserID]struct{})

		holdings, err := s.accounts.LockTaxable(ctx, tx, guild, TaxThreshold)
		if err != nil {
			return fmt.Errorf("lock balances: %w", err)
		}

		updates := make([]accounts.Holding, 0, len(holdings))

		for _, h := range holdings {
			next := shrink(h.Balance, exponent)
			removed := h.Balance - next

			if removed <= 0 {
				continue
			}

			updates = append(updates, accounts.Holding{UserID: h.UserID, Balance: next})
			affected[h.UserID] = struct{}{}
			res.CashRemoved += removed

			ev := economy.BurnEvent(guild, h.UserID, uint64(removed), economy.ReasonWealthTax, initiator)
			ev.BatchID = &batch
			events = append(events, ev)
		}

		err = s.accounts.SetBalances(ctx, tx, guild, updates)
		if err != nil {
			return fmt.Errorf("write balances: %w", err)
		}

		res.AccountsTaxed = len(updates)

		held, err := s.positions.LockTaxable(ctx, tx, guild, TaxThreshold)
		if err != nil {
			return fmt.Errorf("lock positions: %w", err)
		}

		for _, p := range held {
			next := shrink(p.Collateral, exponent)
			removed := p.Collateral - next

			if removed <= 0 {
				continue
			}

			notional := rescale(p.Notional, p.Collateral, next)
			if notional > -1 && notional < 1 {
				res.PositionsSkipped++
				continue
			}

			err = s.positions.UpdateSize(ctx, tx, p.ID, next, notional)
			if err != nil {
				return fmt.Errorf("resize position %s: %w", p.ID, err)
			}

			affected[p.UserID] = struct{}{}
			res.CollateralRemoved += removed
			res.PositionsTaxed++

			id := p.ID
			events = append(events, economy.LedgerEvent{
				GuildID:   guild,
				Type:      economy.EventBurn,
				Reason:    economy.ReasonWealthTaxCollateral,
				Sender:    economy.CollateralPool,
				Receiver:  economy.System,
				Amount:    uint64(removed),
				Initiator: initiator,
				Position:  &id,
				BatchID:   &batch,
			})
		}

		err = s.log.BulkAppend(ctx, tx, events)
		if err != nil {
			return fmt.Errorf("append events: %w", err)
		}

		res.TotalRemoved = res.CashRemoved + res.CollateralRemoved

		res.AffectedUsers = make([]economy.UserID, 0, len(affected))
		for u := range affected {
			res.AffectedUsers = append(res.AffectedUsers, u)
		}

		slices.Sort(res.AffectedUsers)

		return nil
	}, slog.String("guild_id", guild.String()), slog.String("batch_id", batch.String()))
	if err != nil {
		return TaxResult{}, err
	}

	logging.FromContext(ctx).Info("wealth tax applied",
		slog.String("guild_id", guild.String()),
		slog.String("batch_id", batch.String()),
		slog.Float64("exponent", exponent),
		slog.Int("affected", res.AffectedCount()),
		slog.Int64("removed", res.TotalRemoved),
		slog.Int("positions_skipped", res.PositionsSkipped))

	s.publish(ctx, events...)

	return res, nil
}
