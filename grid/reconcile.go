// Copyright (c) 2025 BVK Chaitanya

package grid

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/bvkgo/kv"
	"github.com/shopspring/decimal"

	"github.com/ysfang/gridbot/exchange"
	"github.com/ysfang/gridbot/gobs"
	"github.com/ysfang/gridbot/kvutil"
)

// reconcile pulls the fills of the window [fillsFrom, now) and folds them
// into the engine state. The window advances only when the fetch succeeds,
// so a failed fetch loses nothing and is retried on the next tick.
func (g *Grid) reconcile(ctx context.Context, db kv.Database) {
	now := time.Now()
	fills, err := g.gateway.GetFills(ctx, g.opts.Symbol, g.fillsFrom, now)
	if err != nil {
		slog.WarnContext(ctx, "could not fetch fills (will retry)", "uid", g.uid, "err", err)
		return
	}
	g.fillsFrom = now

	for _, fill := range fills {
		g.applyFill(ctx, db, fill)
	}
}

// applyFill folds one fill into the engine state. Fills whose order id is
// neither a ladder order nor the exit order are discarded.
func (g *Grid) applyFill(ctx context.Context, db kv.Database, fill *exchange.Fill) {
	// The exit order id is empty when no exit order is outstanding, so a
	// fill without an order id must never match it.
	if fill.OrderID == "" {
		return
	}
	if fill.OrderID != g.stopProfitOrderID {
		if _, ok := g.gridOrderIDs[fill.OrderID]; !ok {
			return
		}
	}
	g.dirty = true

	switch {
	case g.position < g.opts.FirstContractSize:
		g.applyBuy(fill)
		if g.position == g.opts.FirstContractSize {
			slog.InfoContext(ctx, "entry quantity reached; laddering", "uid", g.uid, "avgPrice", g.avgPrice)
			g.notify(ctx, fmt.Sprintf("%s: entry filled at %s, placing ladder", g.uid, g.avgPrice))
			g.targetPrice = g.target(ctx, g.avgPrice)
			g.placeLadder(ctx, 1, g.avgPrice)
		} else {
			slog.InfoContext(ctx, "partial entry fill", "uid", g.uid, "position", g.position)
			g.notify(ctx, fmt.Sprintf("%s: partial entry fill, position %d", g.uid, g.position))
		}

	case fill.OrderID == g.stopProfitOrderID:
		g.applyExit(ctx, db, fill)

	default:
		g.applyLadderFill(ctx, fill)
	}
}

// applyBuy folds a buy fill into position and average price as a weighted
// average update.
func (g *Grid) applyBuy(fill *exchange.Fill) {
	total := decimal.NewFromInt(g.position + fill.Size)
	cost := g.avgPrice.Mul(decimal.NewFromInt(g.position)).Add(fill.Price.Mul(decimal.NewFromInt(fill.Size)))
	g.avgPrice = cost.Div(total)
	g.position += fill.Size
}

// applyExit handles a fill of the exit order. When the fill brings the
// position back down to exactly the first contract size the cycle is
// complete: the fill price becomes the new cost basis and the ladder is
// rebuilt under it.
func (g *Grid) applyExit(ctx context.Context, db kv.Database, fill *exchange.Fill) {
	g.position -= fill.Size

	profit := fill.Price.Sub(g.avgPrice).Mul(decimal.NewFromInt(fill.Size)).Mul(g.opts.ContractMultiplier)
	g.realizedProfit = g.realizedProfit.Add(profit)

	partial := g.position != g.opts.FirstContractSize
	g.journal(ctx, db, fill, profit, partial)

	if partial {
		slog.InfoContext(ctx, "partial exit fill", "uid", g.uid, "size", fill.Size, "position", g.position, "profit", profit)
		g.notify(ctx, fmt.Sprintf("%s: partial exit fill of %d at %s, profit %s", g.uid, fill.Size, fill.Price, profit))
		return
	}

	g.numCycles++
	slog.InfoContext(ctx, "cycle complete", "uid", g.uid, "fillPrice", fill.Price, "profit", profit, "totalProfit", g.realizedProfit, "cycles", g.numCycles)
	g.notify(ctx, fmt.Sprintf("%s: cycle %d complete at %s, profit %s (total %s)", g.uid, g.numCycles, fill.Price, profit, g.realizedProfit))

	g.stopProfitOrderID = ""
	g.avgPrice = fill.Price
	g.targetPrice = g.target(ctx, g.avgPrice)
	g.cancelLadder(ctx)
	g.placeLadder(ctx, 1, g.avgPrice)
}

// applyLadderFill folds a ladder buy fill and refreshes the exit order for
// the new size and target. The stale exit order must cancel cleanly before
// a replacement is posted; otherwise the stale id is kept and the refresh
// waits for the next fill.
func (g *Grid) applyLadderFill(ctx context.Context, fill *exchange.Fill) {
	g.applyBuy(fill)
	slog.InfoContext(ctx, "ladder fill", "uid", g.uid, "order", fill.OrderID, "price", fill.Price, "size", fill.Size, "position", g.position, "avgPrice", g.avgPrice)
	g.notify(ctx, fmt.Sprintf("%s: ladder fill of %d at %s, position %d avg %s", g.uid, fill.Size, fill.Price, g.position, g.avgPrice))

	if g.stopProfitOrderID != "" {
		if err := g.gateway.CancelOrder(ctx, g.opts.Symbol, g.stopProfitOrderID); err != nil {
			slog.ErrorContext(ctx, "could not cancel stale exit order; bookkeeping may diverge from the venue", "uid", g.uid, "order", g.stopProfitOrderID, "err", err)
			g.notify(ctx, fmt.Sprintf("%s: could not cancel stale exit order %s: %v", g.uid, g.stopProfitOrderID, err))
		} else {
			g.stopProfitOrderID = ""
		}
	}

	g.targetPrice = g.target(ctx, g.avgPrice)
	if g.stopProfitOrderID == "" {
		g.placeStopProfit(ctx)
	}
}

// journal appends a profit record for an exit fill. Journal failures are
// logged and ignored; the journal is for reporting only.
func (g *Grid) journal(ctx context.Context, db kv.Database, fill *exchange.Fill, profit decimal.Decimal, partial bool) {
	at := fill.Time.Time
	if at.IsZero() {
		at = time.Now()
	}
	notional := fill.Price.Mul(decimal.NewFromInt(fill.Size)).Mul(g.opts.ContractMultiplier)
	rec := &gobs.CycleRecord{
		UID:       g.uid,
		Symbol:    g.opts.Symbol,
		FilledAt:  at,
		FillPrice: fill.Price,
		Size:      fill.Size,
		Profit:    profit,
		Fee:       notional.Mul(g.opts.Fee),
		Partial:   partial,
	}
	key := path.Join(ProfitsKeyspace, g.uid, at.UTC().Format(time.RFC3339Nano))
	if err := kvutil.SetDB(ctx, db, key, rec); err != nil {
		slog.WarnContext(ctx, "could not append profit journal record (ignored)", "uid", g.uid, "err", err)
	}
}
