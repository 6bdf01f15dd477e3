// Copyright (c) 2025 BVK Chaitanya

package grid

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bvkgo/kv"

	"github.com/ysfang/gridbot/ctxutil"
	"github.com/ysfang/gridbot/kvutil"
	"github.com/ysfang/gridbot/level"
)

// Run drives the engine until the context is canceled. State changes are
// checkpointed to the database after every tick that mutated state.
func (g *Grid) Run(ctx context.Context, db kv.Database) error {
	slog.InfoContext(ctx, "starting grid engine", "uid", g.uid, "exchange", g.gateway.ExchangeName(), "symbol", g.opts.Symbol)

	if !g.resumed {
		g.resumed = true
		if g.opts.ResumeQuantity != 0 {
			if err := g.resume(ctx); err != nil {
				slog.ErrorContext(ctx, "could not resume from configured remainder; starting flat", "uid", g.uid, "err", err)
				g.notify(ctx, fmt.Sprintf("%s: could not resume with remainder %d: %v", g.uid, g.opts.ResumeQuantity, err))
			}
		}
	}

	for ctx.Err() == nil {
		g.tick(ctx, db)

		if g.dirty {
			if err := kvutil.SetDB(ctx, db, CheckpointKey(g.uid), g.checkpoint()); err != nil {
				slog.WarnContext(ctx, "could not save engine checkpoint (will retry)", "uid", g.uid, "err", err)
			} else {
				g.dirty = false
			}
		}

		ctxutil.Sleep(ctx, g.opts.TickInterval())
	}
	return context.Cause(ctx)
}

// tick runs one iteration of the control loop.
func (g *Grid) tick(ctx context.Context, db kv.Database) {
	g.reconcile(ctx, db)
	if g.position == 0 {
		g.placeEntry(ctx)
	} else {
		g.checkPriceCross(ctx)
	}
}

// checkPriceCross rebases the cycle when the first order has filled, nothing
// deeper has filled, and the best bid has already crossed the target price.
// The crossing itself is taken as the exit signal: no sell is attempted, the
// target simply becomes the new cost basis and the ladder is rebuilt.
func (g *Grid) checkPriceCross(ctx context.Context) {
	if g.position != g.opts.FirstContractSize || g.stopProfitOrderID != "" {
		return
	}
	book, err := g.gateway.GetOrderbook(ctx, g.opts.Symbol)
	if err != nil {
		slog.WarnContext(ctx, "could not fetch orderbook (will retry)", "uid", g.uid, "err", err)
		return
	}
	if book == nil || book.BestBid.LessThan(g.targetPrice) {
		return
	}

	slog.InfoContext(ctx, "best bid crossed the target; rebasing cycle", "uid", g.uid, "bestBid", book.BestBid, "target", g.targetPrice)
	g.notify(ctx, fmt.Sprintf("%s: bid %s crossed target %s, rebasing", g.uid, book.BestBid, g.targetPrice))

	g.cancelLadder(ctx)
	g.avgPrice = g.targetPrice
	g.targetPrice = g.target(ctx, g.avgPrice)
	g.placeLadder(ctx, 1, g.avgPrice)
	g.dirty = true
}

// resume seeds the engine with a position accumulated by an earlier run,
// reconstructing the cost basis from the configured remainder and entry
// price, then rests the exit order and the untouched ladder levels.
func (g *Grid) resume(ctx context.Context) error {
	startLevel, err := level.StartLevel(g.opts.ResumeQuantity, g.opts.FirstContractSize)
	if err != nil {
		return fmt.Errorf("could not determine resume start level: %w", err)
	}

	g.position = g.opts.ResumeQuantity
	g.avgPrice = level.RebuildAverage(g.opts.ResumePrice, g.opts.PriceRange, g.opts.FirstContractSize, g.position)
	g.targetPrice = g.target(ctx, g.avgPrice)
	g.dirty = true

	slog.InfoContext(ctx, "resuming with prior position", "uid", g.uid, "position", g.position, "avgPrice", g.avgPrice, "target", g.targetPrice, "startLevel", startLevel)
	g.notify(ctx, fmt.Sprintf("%s: resumed with position %d, avg %s", g.uid, g.position, g.avgPrice))

	g.placeStopProfit(ctx)
	g.placeLadder(ctx, startLevel, g.opts.ResumePrice)
	return nil
}
