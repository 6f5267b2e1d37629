package economy

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is the root of every caller contract violation. Such errors are
// raised before a transaction is opened.
var ErrInvalidInput = errors.New("invalid input")

var (
	ErrNonPositiveAmount = fmt.Errorf("%w: amount must be > 0", ErrInvalidInput)
	ErrAmountOverflow    = fmt.Errorf("%w: amount out of range", ErrInvalidInput)
	ErrSelfTransfer      = fmt.Errorf("%w: sender and receiver are the same account", ErrInvalidInput)
	ErrUnknownReason     = fmt.Errorf("%w: unknown event reason", ErrInvalidInput)
	ErrInvalidExponent   = fmt.Errorf("%w: exponent must be in (0, 1]", ErrInvalidInput)
	ErrInvalidID         = fmt.Errorf("%w: id must be positive", ErrInvalidInput)
	ErrStatNotAdjustable = fmt.Errorf("%w: stat cannot be adjusted this way", ErrInvalidInput)
	ErrInvalidWindow     = fmt.Errorf("%w: window must be positive", ErrInvalidInput)
	ErrBalanceOverflow   = fmt.Errorf("%w: resulting balance out of range", ErrInvalidInput)
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// MaxAmount is the largest value representable by the BIGINT columns.
const MaxAmount = uint64(math.MaxInt64)

// ValidateAmount checks a mint/burn/transfer amount.
func ValidateAmount(amount uint64) error {
	if amount == 0 {
		return ErrNonPositiveAmount
	}

	if amount > MaxAmount {
		return ErrAmountOverflow
	}

	return nil
}

// ValidateBalance checks a target balance for set operations. Zero is allowed.
func ValidateBalance(balance uint64) error {
	if balance > MaxAmount {
		return ErrAmountOverflow
	}

	return nil
}

func ValidateAccount(user UserID, guild GuildID) error {
	if user == 0 || guild == 0 || uint64(user) > MaxAmount || uint64(guild) > MaxAmount {
		return ErrInvalidID
	}

	return nil
}

// ValidateExponent accepts the wealth-tax exponent range (0, 1].
func ValidateExponent(exp float64) error {
	if math.IsNaN(exp) || exp <= 0 || exp > 1 {
		return ErrInvalidExponent
	}

	return nil
}
