package ledger

import (
	"math"

	"github.com/shopspring/decimal"
)

// shrink returns ceil(v^exp), never more than v.
func shrink(v int64, exp float64) int64 {
	f := math.Ceil(math.Pow(float64(v), exp))
	if f >= float64(v) {
		return v
	}

	if f < 0 {
		return 0
	}

	return int64(f)
}

// rescale returns notional*newCollateral/oldCollateral truncated toward zero,
// keeping the position's leverage.
func rescale(notional, oldCollateral, newCollateral int64) int64 {
	q, _ := decimal.NewFromInt(notional).
		Mul(decimal.NewFromInt(newCollateral)).
		QuoRem(decimal.NewFromInt(oldCollateral), 0)

	return q.IntPart()
}
