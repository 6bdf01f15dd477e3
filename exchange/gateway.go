// Copyright (c) 2025 BVK Chaitanya

// Package exchange defines the boundary between the grid engine and a
// derivatives venue. Implementations live in their own packages (e.g. btse).
package exchange

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// OrderID is an exchange-assigned order identifier.
type OrderID string

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Orderbook holds the top of the book for a product.
type Orderbook struct {
	Symbol  string
	BestBid decimal.Decimal
	BestAsk decimal.Decimal
	Time    RemoteTime
}

// Fill reports an execution against one of our resting orders. Size counts
// whole contracts.
type Fill struct {
	OrderID OrderID
	Side    Side
	Price   decimal.Decimal
	Size    int64
	Time    RemoteTime
}

// Gateway is implemented by exchange adapters. Methods are safe for
// concurrent use and block until the venue responds or ctx is canceled.
type Gateway interface {
	// ExchangeName returns a human-readable venue name.
	ExchangeName() string

	// GetOrderbook returns the current top of the book for the product.
	// Returns nil with no error when the book is empty or not yet known.
	GetOrderbook(ctx context.Context, symbol string) (*Orderbook, error)

	// SubmitOrder places a limit order for the given number of contracts
	// and returns the exchange-assigned order id.
	SubmitOrder(ctx context.Context, clientOrderID, symbol string, side Side, price decimal.Decimal, size int64) (OrderID, error)

	// CancelOrder cancels an open order.
	CancelOrder(ctx context.Context, symbol string, id OrderID) error

	// GetFills returns the fills for the product whose execution time falls
	// in the half-open window [from, to). Implementations must return every
	// fill of the window exactly once; the engine does no deduplication.
	GetFills(ctx context.Context, symbol string, from, to time.Time) ([]*Fill, error)
}
