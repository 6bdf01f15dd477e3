// Copyright (c) 2025 BVK Chaitanya

package btse

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ysfang/gridbot/btse/internal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestGetPriceUpdates(t *testing.T) {
	ctx := context.Background()
	e := new(Exchange)

	r1, err := e.GetPriceUpdates("ETHPFC")
	if err != nil {
		t.Fatal(err)
	}
	defer r1.Close()

	e.onQuote(ctx, &internal.QuoteUpdate{
		Symbol:    "ETHPFC",
		Bid:       d("3000"),
		Ask:       d("3000.5"),
		Timestamp: time.Now().UnixMilli(),
	})

	book, err := r1.Receive()
	if err != nil {
		t.Fatal(err)
	}
	if book.Symbol != "ETHPFC" {
		t.Errorf("symbol = %q, want ETHPFC", book.Symbol)
	}
	if !book.BestBid.Equal(d("3000")) || !book.BestAsk.Equal(d("3000.5")) {
		t.Errorf("quote = %s/%s, want 3000/3000.5", book.BestBid, book.BestAsk)
	}

	// The most recent quote is replayed to late subscribers.
	r2, err := e.GetPriceUpdates("ETHPFC")
	if err != nil {
		t.Fatal(err)
	}
	defer r2.Close()

	book, err = r2.Receive()
	if err != nil {
		t.Fatal(err)
	}
	if !book.BestBid.Equal(d("3000")) {
		t.Errorf("replayed best bid = %s, want 3000", book.BestBid)
	}
}

func TestFillsWindowBounds(t *testing.T) {
	from := time.UnixMilli(1700000000000)
	to := from.Add(time.Second)

	trade := func(id string, at time.Time) *internal.TradeHistory {
		return &internal.TradeHistory{
			TradeID:   "t-" + id,
			OrderID:   id,
			Symbol:    "ETHPFC",
			Side:      "BUY",
			Price:     d("3000"),
			Size:      1,
			Timestamp: at.UnixMilli(),
		}
	}
	trades := []*internal.TradeHistory{
		trade("before", from.Add(-time.Millisecond)),
		trade("begin", from),
		trade("last", to.Add(-time.Millisecond)),
		trade("end", to),
	}

	fills := fillsInWindow(trades, from, to)
	if len(fills) != 2 {
		t.Fatalf("fills = %d, want 2", len(fills))
	}
	if fills[0].OrderID != "begin" || fills[1].OrderID != "last" {
		t.Errorf("fills = %q, %q, want begin, last", fills[0].OrderID, fills[1].OrderID)
	}

	// A fill stamped exactly at the window end belongs to the next window,
	// so consecutive windows see it exactly once.
	next := fillsInWindow(trades, to, to.Add(time.Second))
	if len(next) != 1 {
		t.Fatalf("next window fills = %d, want 1", len(next))
	}
	if next[0].OrderID != "end" {
		t.Errorf("next window fill = %q, want end", next[0].OrderID)
	}
}
