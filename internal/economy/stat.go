package economy

import (
	"fmt"
	"strings"
)

// Stat names a per-account counter that can be ranked on a leaderboard.
type Stat string

const (
	StatCurrency Stat = "currency"
	StatBumps    Stat = "bumps"
	StatXP       Stat = "xp"

	// StatLevel is derived from xp by the store and is read-only.
	StatLevel Stat = "level"
)

func ParseStat(s string) (Stat, error) {
	switch st := Stat(strings.ToLower(strings.TrimSpace(s))); st {
	case StatCurrency, StatBumps, StatXP, StatLevel:
		return st, nil
	default:
		return "", fmt.Errorf("%w: unknown stat %q", ErrInvalidInput, s)
	}
}

// Adjustable reports whether the stat may be changed through the generic stat API.
// Currency only moves through the ledger.
func (s Stat) Adjustable() bool {
	return s == StatBumps || s == StatXP
}

// Decrementable reports whether the stat may ever go down. Bumps are append-only.
func (s Stat) Decrementable() bool {
	return s == StatXP
}
