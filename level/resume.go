// Copyright (c) 2025 BVK Chaitanya

package level

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
)

// StartLevel returns the ladder level from which resting buy orders should
// be reposted when resuming with a previously accumulated position.
//
// Levels are consumed with linear weights here (level i accounts for
// firstSize*i contracts), unlike the geometric weights used by the ladder
// itself. The two weightings disagree on purpose; see Rebuild for the
// geometric walk.
func StartLevel(remaining, firstSize int64) (int, error) {
	if firstSize <= 0 {
		return 0, fmt.Errorf("first contract size %d must be positive: %w", firstSize, os.ErrInvalid)
	}
	if remaining < firstSize {
		return 0, fmt.Errorf("remaining quantity %d is below the first contract size %d: %w", remaining, firstSize, os.ErrInvalid)
	}
	level := 0
	for remaining > 0 {
		level++
		remaining -= firstSize * int64(level)
	}
	return level, nil
}

// RebuildAverage reconstructs the average entry price of a resumed
// position, assuming the entry order filled at firstPrice and the deeper
// ladder levels filled fully and in sequence at their resting prices. The
// assumption ignores partial level fills, so the result is an
// approximation.
func RebuildAverage(firstPrice, priceRange decimal.Decimal, firstSize, position int64) decimal.Decimal {
	if position <= 0 {
		return decimal.Zero
	}
	cost := firstPrice.Mul(decimal.NewFromInt(firstSize))
	remaining := position - firstSize
	for i := 1; remaining > 0; i++ {
		size := Size(firstSize, i)
		price := Price(firstPrice, priceRange, i)
		cost = cost.Add(price.Mul(decimal.NewFromInt(size)))
		remaining -= size
	}
	return cost.Div(decimal.NewFromInt(position))
}
