package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/guildledger/internal/economy"
)

func validateMovement(user economy.UserID, guild economy.GuildID, amount uint64, reason economy.Reason, initiator economy.UserID) error {
	err := economy.ValidateAccount(user, guild)
	if err != nil {
		return err
	}

	err = economy.ValidateAmount(amount)
	if err != nil {
		return err
	}

	if !reason.Valid() {
		return fmt.Errorf("%w: %q", economy.ErrUnknownReason, reason)
	}

	return economy.ValidateAccount(initiator, guild)
}

// Mint creates amount in user's account and returns the new balance.
func (s *Service) Mint(
	ctx context.Context,
	user economy.UserID,
	guild economy.GuildID,
	amount uint64,
	reason economy.Reason,
	initiator economy.UserID,
) (uint64, error) {
	err := validateMovement(user, guild, amount, reason, initiator)
	if err != nil {
		return 0, err
	}

	var (
		balance int64
		event   economy.LedgerEvent
	)

	err = s.inTx(ctx, "mint", func(tx *sql.Tx) error {
		var err error

		balance, err = s.accounts.Credit(ctx, tx, user, guild, int64(amount))
		if err != nil {
			return fmt.Errorf("credit: %w", err)
		}

		event, err = s.log.Append(ctx, tx, economy.MintEvent(guild, user, amount, reason, initiator))
		if err != nil {
			return fmt.Errorf("append event: %w", err)
		}

		return nil
	}, accountAttrs(user, guild)...)
	if err != nil {
		return 0, err
	}

	s.publish(ctx, event)

	return uint64(balance), nil
}

// Burn destroys amount from user's account iff the balance covers it.
// ok is false, with a nil error, when funds are insufficient; nothing is
// written in that case.
func (s *Service) Burn(
	ctx context.Context,
	user economy.UserID,
	guild economy.GuildID,
	amount uint64,
	reason economy.Reason,
	initiator economy.UserID,
) (balance uint64, ok bool, err error) {
	err = validateMovement(user, guild, amount, reason, initiator)
	if err != nil {
		return 0, false, err
	}

	var (
		left  int64
		event economy.LedgerEvent
	)

	err = s.inTx(ctx, "burn", func(tx *sql.Tx) error {
		var err error

		left, err = s.accounts.Debit(ctx, tx, user, guild, int64(amount))
		if err != nil {
			return fmt.Errorf("debit: %w", err)
		}

		event, err = s.log.Append(ctx, tx, economy.BurnEvent(guild, user, amount, reason, initiator))
		if err != nil {
			return fmt.Errorf("append event: %w", err)
		}

		return nil
	}, accountAttrs(user, guild)...)
	if errors.Is(err, economy.ErrInsufficientFunds) {
		return 0, false, nil
	}

	if err != nil {
		return 0, false, err
	}

	s.publish(ctx, event)

	return uint64(left), true, nil
}

// Transfer moves amount from sender to receiver. It returns false, with a nil
// error, when the sender cannot cover it; neither account changes then.
func (s *Service) Transfer(
	ctx context.Context,
	sender, receiver economy.UserID,
	guild economy.GuildID,
	amount uint64,
) (bool, error) {
	err := economy.ValidateAccount(sender, guild)
	if err != nil {
		return false, err
	}

	err = economy.ValidateAccount(receiver, guild)
	if err != nil {
		return false, err
	}

	err = economy.ValidateAmount(amount)
	if err != nil {
		return false, err
	}

	if sender == receiver {
		return false, economy.ErrSelfTransfer
	}

	lo, hi := min(sender, receiver), max(sender, receiver)

	var event economy.LedgerEvent

	err = s.inTx(ctx, "transfer", func(tx *sql.Tx) error {
		// rows exist and are locked in user order before either is written
		for _, u := range []economy.UserID{lo, hi} {
			err := s.accounts.Ensure(ctx, tx, u, guild)
			if err != nil {
				return fmt.Errorf("ensure account: %w", err)
			}
		}

		_, err := s.accounts.LockBalances(ctx, tx, guild, lo, hi)
		if err != nil {
			return fmt.Errorf("lock accounts: %w", err)
		}

		_, err = s.accounts.Debit(ctx, tx, sender, guild, int64(amount))
		if err != nil {
			return fmt.Errorf("debit sender: %w", err)
		}

		_, err = s.accounts.Credit(ctx, tx, receiver, guild, int64(amount))
		if err != nil {
			return fmt.Errorf("credit receiver: %w", err)
		}

		event, err = s.log.Append(ctx, tx, economy.TransferEvent(guild, sender, receiver, amount))
		if err != nil {
			return fmt.Errorf("append event: %w", err)
		}

		return nil
	}, accountAttrs(sender, guild)...)
	if errors.Is(err, economy.ErrInsufficientFunds) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	s.publish(ctx, event)

	return true, nil
}

// SetBalance overwrites user's balance and logs the difference as a MINT or
// BURN. Setting the current value writes no event.
func (s *Service) SetBalance(
	ctx context.Context,
	user economy.UserID,
	guild economy.GuildID,
	newBalance uint64,
	reason economy.Reason,
	initiator economy.UserID,
) (SetResult, error) {
	err := economy.ValidateAccount(user, guild)
	if err != nil {
		return SetResult{}, err
	}

	err = economy.ValidateBalance(newBalance)
	if err != nil {
		return SetResult{}, err
	}

	if !reason.Valid() {
		return SetResult{}, fmt.Errorf("%w: %q", economy.ErrUnknownReason, reason)
	}

	err = economy.ValidateAccount(initiator, guild)
	if err != nil {
		return SetResult{}, err
	}

	res := SetResult{Current: int64(newBalance)}

	err = s.inTx(ctx, "set_balance", func(tx *sql.Tx) error {
		err := s.accounts.Ensure(ctx, tx, user, guild)
		if err != nil {
			return fmt.Errorf("ensure account: %w", err)
		}

		locked, err := s.accounts.LockBalances(ctx, tx, guild, user)
		if err != nil {
			return fmt.Errorf("lock account: %w", err)
		}

		res.Previous = locked[user]
		res.Delta = res.Current - res.Previous

		if res.Delta == 0 {
			return nil
		}

		err = s.accounts.SetBalance(ctx, tx, user, guild, res.Current)
		if err != nil {
			return fmt.Errorf("write balance: %w", err)
		}

		ev := economy.MintEvent(guild, user, uint64(res.Delta), reason, initiator)
		if res.Delta < 0 {
			ev = economy.BurnEvent(guild, user, uint64(-res.Delta), reason, initiator)
		}

		ev, err = s.log.Append(ctx, tx, ev)
		if err != nil {
			return fmt.Errorf("append event: %w", err)
		}

		res.Event = &ev

		return nil
	}, accountAttrs(user, guild)...)
	if err != nil {
		return SetResult{}, err
	}

	if res.Event != nil {
		s.publish(ctx, *res.Event)
	}

	return res, nil
}

// Balance returns user's current balance; an unknown account has 0.
func (s *Service) Balance(ctx context.Context, user economy.UserID, guild economy.GuildID) (uint64, error) {
	err := economy.ValidateAccount(user, guild)
	if err != nil {
		return 0, err
	}

	balance, err := s.accounts.GetBalance(ctx, user, guild)
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}

	return uint64(balance), nil
}
