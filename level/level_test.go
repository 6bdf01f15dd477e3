// Copyright (c) 2025 BVK Chaitanya

package level

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestPriceAndSize(t *testing.T) {
	base, priceRange := d("3000"), d("10")

	tests := []struct {
		level int
		price string
		size  int64
	}{
		{1, "2990", 10},
		{2, "2970", 20},
		{3, "2930", 40},
		{4, "2850", 80},
	}
	for _, tc := range tests {
		if p := Price(base, priceRange, tc.level); !p.Equal(d(tc.price)) {
			t.Errorf("level %d: price is %s, want %s", tc.level, p, tc.price)
		}
		if s := Size(10, tc.level); s != tc.size {
			t.Errorf("level %d: size is %d, want %d", tc.level, s, tc.size)
		}
	}
}

func TestLevelGapsDouble(t *testing.T) {
	base, priceRange := d("3000"), d("10")
	gap := priceRange
	for i := 2; i < 10; i++ {
		gap = gap.Mul(d("2"))
		diff := Price(base, priceRange, i-1).Sub(Price(base, priceRange, i))
		if !diff.Equal(gap) {
			t.Errorf("gap between level %d and %d is %s, want %s", i-1, i, diff, gap)
		}
	}
}

func TestFloorToTick(t *testing.T) {
	if p := FloorToTick(d("105.3"), d("0.5")); !p.Equal(d("105")) {
		t.Errorf("floor of 105.3 at tick 0.5 is %s, want 105", p)
	}
	if p := FloorToTick(d("105.5"), d("0.5")); !p.Equal(d("105.5")) {
		t.Errorf("floor of 105.5 at tick 0.5 is %s, want 105.5", p)
	}
	if p := FloorToTick(d("105.3"), decimal.Zero); !p.Equal(d("105.3")) {
		t.Errorf("zero tick must leave price unchanged, got %s", p)
	}
}
