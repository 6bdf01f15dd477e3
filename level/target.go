// Copyright (c) 2025 BVK Chaitanya

package level

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
)

// Stop-profit policy types.
const (
	TargetRate = "rate"
	TargetFix  = "fix"
)

var fallbackRate = decimal.RequireFromString("1.008")

// Target computes the exit price for the given average entry price.
//
// With TargetRate the stopProfit value is a multiplier and the result is
// floored to the tick size. With TargetFix it is an absolute offset added to
// the average price. Any other type falls back to a 0.8% markup floored to
// the tick size; the returned price is still usable, but a non-nil error
// reports the misconfiguration so that callers can flag it.
func Target(avg decimal.Decimal, typ string, stopProfit, tick decimal.Decimal) (decimal.Decimal, error) {
	switch typ {
	case TargetRate:
		return FloorToTick(avg.Mul(stopProfit), tick), nil
	case TargetFix:
		return avg.Add(stopProfit), nil
	}
	p := FloorToTick(avg.Mul(fallbackRate), tick)
	return p, fmt.Errorf("unrecognized stop profit type %q: %w", typ, os.ErrInvalid)
}
