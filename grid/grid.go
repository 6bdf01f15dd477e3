// Copyright (c) 2025 BVK Chaitanya

// Package grid implements the geometric grid trading engine.
//
// The engine accumulates a position through a ladder of resting buy orders
// whose sizes double and whose price gaps double with depth, and exits the
// accumulated quantity above the entry size through a single resting sell
// order at a computed target price. One engine instance trades one symbol on
// one exchange; all state is mutated inside the single-threaded tick loop.
package grid

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ysfang/gridbot/exchange"
	"github.com/ysfang/gridbot/gobs"
	"github.com/ysfang/gridbot/idgen"
	"github.com/ysfang/gridbot/kvutil"
	"github.com/ysfang/gridbot/level"
)

// Keyspaces holding engine checkpoints and profit journal records.
const (
	GridsKeyspace   = "/grids/"
	ProfitsKeyspace = "/profits/"
)

// CheckpointKey returns the database key of the engine checkpoint.
func CheckpointKey(uid string) string {
	return path.Join(GridsKeyspace, uid)
}

// ProfitRange returns the key range covering the profit journal of an
// engine instance.
func ProfitRange(uid string) (begin, end string) {
	return kvutil.PathRange(path.Join(ProfitsKeyspace, uid))
}

// Notifier carries best-effort operator alerts. Send failures never affect
// the engine's control flow.
type Notifier interface {
	SendMessage(ctx context.Context, at time.Time, msg string) error
}

// Grid is the trading engine. Use New to create instances.
type Grid struct {
	uid  string
	opts Options

	gateway  exchange.Gateway
	notifier Notifier

	idgen *idgen.Generator

	// Engine state below is owned by the tick loop.
	position    int64
	avgPrice    decimal.Decimal
	targetPrice decimal.Decimal

	firstOrderID      exchange.OrderID
	stopProfitOrderID exchange.OrderID
	gridOrderIDs      map[exchange.OrderID]struct{}

	// fillsFrom is the lower bound of the next fill poll window. It
	// advances only after a successful fetch so that no window is lost.
	fillsFrom time.Time

	realizedProfit decimal.Decimal
	numCycles      int64

	resumed bool
	dirty   bool
}

// New creates a grid engine for the given symbol options. The notifier may
// be nil.
func New(uid string, gateway exchange.Gateway, notifier Notifier, opts *Options) (*Grid, error) {
	if uid == "" {
		return nil, fmt.Errorf("uid cannot be empty")
	}
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}
	g := &Grid{
		uid:          uid,
		opts:         *opts,
		gateway:      gateway,
		notifier:     notifier,
		idgen:        idgen.New(uid, 0),
		gridOrderIDs: make(map[exchange.OrderID]struct{}),
		fillsFrom:    time.Now(),
	}
	return g, nil
}

func (g *Grid) UID() string {
	return g.uid
}

// target computes the exit price for the given average price, logging the
// stop-profit misconfiguration when the fallback markup had to be used.
func (g *Grid) target(ctx context.Context, avg decimal.Decimal) decimal.Decimal {
	p, err := level.Target(avg, g.opts.StopProfitType, g.opts.StopProfit, g.opts.TickSize)
	if err != nil {
		slog.ErrorContext(ctx, "stop profit type is misconfigured; using fallback markup", "uid", g.uid, "err", err)
	}
	return p
}

func (g *Grid) notify(ctx context.Context, msg string) {
	if g.notifier == nil {
		return
	}
	if err := g.notifier.SendMessage(ctx, time.Now(), msg); err != nil {
		slog.WarnContext(ctx, "could not send notification (ignored)", "uid", g.uid, "err", err)
	}
}

// submit places a limit order with a deterministic client order id.
func (g *Grid) submit(ctx context.Context, side exchange.Side, price decimal.Decimal, size int64) (exchange.OrderID, error) {
	clientID := g.idgen.NextID()
	id, err := g.gateway.SubmitOrder(ctx, clientID.String(), g.opts.Symbol, side, price, size)
	if err != nil {
		g.idgen.RevertID()
		return "", err
	}
	g.dirty = true
	return id, nil
}

func (g *Grid) checkpoint() *gobs.GridState {
	ids := make([]string, 0, len(g.gridOrderIDs))
	for id := range g.gridOrderIDs {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)
	return &gobs.GridState{
		UID:               g.uid,
		Exchange:          g.gateway.ExchangeName(),
		Symbol:            g.opts.Symbol,
		Position:          g.position,
		AveragePrice:      g.avgPrice,
		TargetPrice:       g.targetPrice,
		FirstOrderID:      string(g.firstOrderID),
		StopProfitOrderID: string(g.stopProfitOrderID),
		GridOrderIDs:      ids,
		RealizedProfit:    g.realizedProfit,
		NumCycles:         g.numCycles,
		UpdatedAt:         time.Now(),
	}
}
