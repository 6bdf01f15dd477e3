// Copyright (c) 2025 BVK Chaitanya

package grid

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
)

// Options holds the strategy parameters, normally loaded from the grid.json
// file in the data directory.
type Options struct {
	// Symbol is the instrument identifier, e.g. "ETHPFC".
	Symbol string `json:"symbol"`

	// PriceRange is the gap between the base price and ladder level one.
	// Deeper levels double the gap of the previous level.
	PriceRange decimal.Decimal `json:"priceRange"`

	// FirstContractSize is the entry order size in whole contracts.
	FirstContractSize int64 `json:"firstContractSize"`

	// OrderLevel is the ladder depth, counting the entry level. Ladder buy
	// orders are placed for levels 1 through OrderLevel-1.
	OrderLevel int `json:"orderLevel"`

	// StopProfitType selects how the exit price is derived from the
	// average price ("rate" or "fix").
	StopProfitType string `json:"stopProfitType"`

	// StopProfit is the multiplier (rate) or absolute offset (fix).
	StopProfit decimal.Decimal `json:"stopProfit"`

	// TickSize is the venue's minimum price increment.
	TickSize decimal.Decimal `json:"tickSize"`

	// Fee is the taker/maker fee rate, recorded in profit journal entries.
	Fee decimal.Decimal `json:"fee"`

	// ContractMultiplier converts contracts into underlying units for
	// profit arithmetic (e.g. 0.01 for a 0.01-coin contract).
	ContractMultiplier decimal.Decimal `json:"contractMultiplier"`

	// TickIntervalSecs is the pause between engine ticks.
	TickIntervalSecs int `json:"tickIntervalSecs"`

	// ResumeQuantity and ResumePrice optionally seed the engine with a
	// position accumulated by an earlier run. ResumePrice is the price of
	// the earlier run's entry order fill.
	ResumeQuantity int64           `json:"remainingQty"`
	ResumePrice    decimal.Decimal `json:"remainingFirstOrderPrice"`
}

func (v *Options) setDefaults() {
	if v.TickIntervalSecs == 0 {
		v.TickIntervalSecs = 1
	}
	if v.ContractMultiplier.IsZero() {
		v.ContractMultiplier = decimal.RequireFromString("0.01")
	}
}

func (v *Options) Check() error {
	if v.Symbol == "" {
		return fmt.Errorf("symbol cannot be empty: %w", os.ErrInvalid)
	}
	if v.PriceRange.Sign() <= 0 {
		return fmt.Errorf("price range must be positive: %w", os.ErrInvalid)
	}
	if v.FirstContractSize <= 0 {
		return fmt.Errorf("first contract size must be positive: %w", os.ErrInvalid)
	}
	if v.OrderLevel < 2 {
		return fmt.Errorf("order level must be at least 2: %w", os.ErrInvalid)
	}
	if v.TickSize.Sign() <= 0 {
		return fmt.Errorf("tick size must be positive: %w", os.ErrInvalid)
	}
	if v.StopProfit.Sign() <= 0 {
		return fmt.Errorf("stop profit value must be positive: %w", os.ErrInvalid)
	}
	if v.ResumeQuantity < 0 {
		return fmt.Errorf("resume quantity cannot be negative: %w", os.ErrInvalid)
	}
	// An unrecognized StopProfitType is deliberately not rejected here; the
	// engine falls back to a default markup and logs the misconfiguration.
	return nil
}

// TickInterval returns the engine cadence as a duration.
func (v *Options) TickInterval() time.Duration {
	return time.Duration(v.TickIntervalSecs) * time.Second
}

// OptionsFromFile loads strategy options from a JSON file.
func OptionsFromFile(file string) (*Options, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("could not read options file: %w", err)
	}
	opts := new(Options)
	if err := json.Unmarshal(data, opts); err != nil {
		return nil, fmt.Errorf("could not unmarshal options file: %w", err)
	}
	return opts, nil
}
