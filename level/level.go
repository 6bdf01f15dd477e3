// Copyright (c) 2025 BVK Chaitanya

// Package level holds the pure arithmetic of the geometric grid ladder.
//
// Ladder levels are numbered from one. Level i rests priceRange*(2^i - 1)
// below the base price and holds firstSize*2^(i-1) contracts, so each level
// doubles the size of the previous one while the gaps between levels double
// as well.
package level

import (
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// pow2 returns 2^n as a decimal. Valid for 0 <= n < 63.
func pow2(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(1) << n)
}

// Price returns the resting price of the given ladder level below the base
// price, i.e. base - priceRange*(2^level - 1).
func Price(base, priceRange decimal.Decimal, level int) decimal.Decimal {
	return base.Sub(priceRange.Mul(pow2(level).Sub(one)))
}

// Size returns the contract size of the given ladder level, which doubles
// with every level starting from firstSize at level one.
func Size(firstSize int64, level int) int64 {
	return firstSize << (level - 1)
}

// FloorToTick rounds price down to an integral multiple of the tick size.
// Returns the price unchanged when the tick size is not positive.
func FloorToTick(price, tick decimal.Decimal) decimal.Decimal {
	if tick.Sign() <= 0 {
		return price
	}
	return price.Sub(price.Mod(tick))
}
