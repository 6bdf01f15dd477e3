// Copyright (c) 2025 BVK Chaitanya

package grid

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/ysfang/gridbot/exchange"
	"github.com/ysfang/gridbot/level"
)

// placeEntry opens a new cycle by resting a buy for the first contract size
// just above the best bid. A stale entry order from an earlier tick is
// cancelled first; the replacement waits for the next tick if the cancel
// fails.
func (g *Grid) placeEntry(ctx context.Context) {
	if g.firstOrderID != "" {
		if err := g.gateway.CancelOrder(ctx, g.opts.Symbol, g.firstOrderID); err != nil {
			slog.WarnContext(ctx, "could not cancel stale entry order (will retry)", "uid", g.uid, "order", g.firstOrderID, "err", err)
			g.notify(ctx, fmt.Sprintf("%s: could not cancel stale entry order %s: %v", g.uid, g.firstOrderID, err))
		} else {
			g.firstOrderID = ""
			g.dirty = true
		}
	}
	if g.firstOrderID != "" || g.stopProfitOrderID != "" {
		return
	}

	book, err := g.gateway.GetOrderbook(ctx, g.opts.Symbol)
	if err != nil {
		slog.WarnContext(ctx, "could not fetch orderbook (will retry)", "uid", g.uid, "err", err)
		return
	}
	if book == nil {
		return
	}

	price := book.BestBid.Add(g.opts.TickSize)
	id, err := g.submit(ctx, exchange.SideBuy, price, g.opts.FirstContractSize)
	if err != nil {
		slog.ErrorContext(ctx, "could not place entry order (will retry)", "uid", g.uid, "price", price, "err", err)
		g.notify(ctx, fmt.Sprintf("%s: could not place entry order at %s: %v", g.uid, price, err))
		return
	}
	g.firstOrderID = id
	slog.InfoContext(ctx, "placed entry order", "uid", g.uid, "order", id, "price", price, "size", g.opts.FirstContractSize)
}

// placeLadder rests buy orders for ladder levels startLevel through
// OrderLevel-1 below the base price. A rejected level is logged and skipped;
// the remaining levels are still placed.
func (g *Grid) placeLadder(ctx context.Context, startLevel int, base decimal.Decimal) {
	for i := startLevel; i < g.opts.OrderLevel; i++ {
		price := level.Price(base, g.opts.PriceRange, i)
		size := level.Size(g.opts.FirstContractSize, i)
		id, err := g.submit(ctx, exchange.SideBuy, price, size)
		if err != nil {
			slog.ErrorContext(ctx, "could not place ladder order (skipped)", "uid", g.uid, "level", i, "price", price, "err", err)
			g.notify(ctx, fmt.Sprintf("%s: could not place ladder level %d at %s: %v", g.uid, i, price, err))
			continue
		}
		g.gridOrderIDs[id] = struct{}{}
		slog.InfoContext(ctx, "placed ladder order", "uid", g.uid, "order", id, "level", i, "price", price, "size", size)
	}
}

// cancelLadder cancels every outstanding ladder order and clears the order
// id set. Cancel failures are ignored; the ids do not outlive the cycle.
func (g *Grid) cancelLadder(ctx context.Context) {
	for id := range g.gridOrderIDs {
		if err := g.gateway.CancelOrder(ctx, g.opts.Symbol, id); err != nil {
			slog.WarnContext(ctx, "could not cancel ladder order (ignored)", "uid", g.uid, "order", id, "err", err)
		}
	}
	clear(g.gridOrderIDs)
	g.dirty = true
}

// placeStopProfit rests the exit sell for the quantity above the first
// contract size at the current target price. No order is placed while that
// quantity is zero.
func (g *Grid) placeStopProfit(ctx context.Context) {
	size := g.position - g.opts.FirstContractSize
	if size <= 0 {
		return
	}
	id, err := g.submit(ctx, exchange.SideSell, g.targetPrice, size)
	if err != nil {
		slog.ErrorContext(ctx, "could not place exit order (will retry on next fill)", "uid", g.uid, "price", g.targetPrice, "err", err)
		g.notify(ctx, fmt.Sprintf("%s: could not place exit order at %s: %v", g.uid, g.targetPrice, err))
		return
	}
	g.stopProfitOrderID = id
	slog.InfoContext(ctx, "placed exit order", "uid", g.uid, "order", id, "price", g.targetPrice, "size", size)
}
