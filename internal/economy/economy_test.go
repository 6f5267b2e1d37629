package economy

import (
	"errors"
	"math"
	"testing"
)

func TestParseReason(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Reason
		wantErr bool
	}{
		{in: "ADMIN_MINT", want: ReasonAdminMint},
		{in: " wealth_tax ", want: ReasonWealthTax},
		{in: "blackjack_surrender_return", want: ReasonBlackjackSurrenderReturn},
		{in: "FREE_MONEY", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseReason(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownReason) || !errors.Is(err, ErrInvalidInput) {
					t.Fatalf("want ErrUnknownReason, got %v", err)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.want {
				t.Fatalf("want %s, got %s", tt.want, got)
			}
		})
	}
}

func TestValidateAmount(t *testing.T) {
	t.Parallel()

	if err := ValidateAmount(0); !errors.Is(err, ErrNonPositiveAmount) {
		t.Fatalf("zero: want ErrNonPositiveAmount, got %v", err)
	}

	if err := ValidateAmount(math.MaxInt64 + 1); !errors.Is(err, ErrAmountOverflow) {
		t.Fatalf("overflow: want ErrAmountOverflow, got %v", err)
	}

	if err := ValidateAmount(1); err != nil {
		t.Fatalf("one: unexpected %v", err)
	}

	if err := ValidateBalance(0); err != nil {
		t.Fatalf("zero balance must be valid, got %v", err)
	}
}

func TestValidateExponent(t *testing.T) {
	t.Parallel()

	for _, exp := range []float64{0, -0.5, 1.0001, math.NaN(), math.Inf(1)} {
		if err := ValidateExponent(exp); !errors.Is(err, ErrInvalidExponent) {
			t.Fatalf("exponent %v: want ErrInvalidExponent, got %v", exp, err)
		}
	}

	for _, exp := range []float64{0.0001, 0.9, 1} {
		if err := ValidateExponent(exp); err != nil {
			t.Fatalf("exponent %v: unexpected %v", exp, err)
		}
	}
}

func TestParseParticipant(t *testing.T) {
	t.Parallel()

	id := int64(42)

	p, err := ParseParticipant("USER", &id)
	if err != nil || p != User(42) {
		t.Fatalf("user: got %v, %v", p, err)
	}

	p, err = ParseParticipant("SYSTEM", nil)
	if err != nil || p != System {
		t.Fatalf("system: got %v, %v", p, err)
	}

	p, err = ParseParticipant("COLLATERAL_POOL", nil)
	if err != nil || p != CollateralPool {
		t.Fatalf("pool: got %v, %v", p, err)
	}

	if _, err = ParseParticipant("USER", nil); err == nil {
		t.Fatal("user without id must fail")
	}

	if _, err = ParseParticipant("BANK", nil); err == nil {
		t.Fatal("unknown kind must fail")
	}

	if _, ok := System.UserID(); ok {
		t.Fatal("system has no user id")
	}
}

func TestSignedDelta(t *testing.T) {
	t.Parallel()

	const guild = GuildID(7)

	tests := []struct {
		name string
		ev   LedgerEvent
		user UserID
		want int64
	}{
		{"mint_receiver", MintEvent(guild, 1, 100, ReasonAdminMint, 9), 1, 100},
		{"burn_sender", BurnEvent(guild, 1, 30, ReasonAdminRemove, 9), 1, -30},
		{"transfer_sender", TransferEvent(guild, 1, 2, 40), 1, -40},
		{"transfer_receiver", TransferEvent(guild, 1, 2, 40), 2, 40},
		{"unrelated", TransferEvent(guild, 1, 2, 40), 3, 0},
	}

	for _, tt := range tests {
		if got := tt.ev.SignedDelta(tt.user); got != tt.want {
			t.Fatalf("%s: want %d, got %d", tt.name, tt.want, got)
		}
	}
}

func TestStatRules(t *testing.T) {
	t.Parallel()

	if StatCurrency.Adjustable() {
		t.Fatal("currency must only move through the ledger")
	}

	if StatBumps.Decrementable() {
		t.Fatal("bumps are append-only")
	}

	if StatLevel.Adjustable() {
		t.Fatal("level is derived from xp")
	}

	if st, err := ParseStat(" Level "); err != nil || st != StatLevel {
		t.Fatalf("parse level: got %q, %v", st, err)
	}

	if _, err := ParseStat("karma"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("want invalid input, got %v", err)
	}
}
