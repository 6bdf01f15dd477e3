// Copyright (c) 2025 BVK Chaitanya

package grid

import (
	"context"
	"fmt"
	"testing"

	"github.com/bvkgo/kv"
	"github.com/bvkgo/kv/kvmemdb"

	"github.com/ysfang/gridbot/exchange"
	"github.com/ysfang/gridbot/gobs"
	"github.com/ysfang/gridbot/kvutil"
)

// Only ladder order ids and the exit order id pass the fill filter. The
// entry order's id is never added to either set, so its fills are dropped;
// this matches the behavior of the venue bookkeeping this engine was
// reconciled against and is pinned here on purpose.
func TestReconcileDropsEntryOrderFills(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	gw := &fakeGateway{
		book: &exchange.Orderbook{Symbol: "ETHPFC", BestBid: d("3000"), BestAsk: d("3000.5")},
	}
	g, err := New("test-grid", gw, nil, testOptions())
	if err != nil {
		t.Fatal(err)
	}

	g.tick(ctx, db)
	entry := g.firstOrderID
	if entry == "" {
		t.Fatal("entry order was not placed")
	}

	gw.addFill(entry, exchange.SideBuy, "3000.5", 10)
	g.tick(ctx, db)

	if g.position != 0 {
		t.Errorf("position = %d, want 0: entry order fills must not pass the filter", g.position)
	}
	for _, o := range gw.openOrders() {
		if o.side == exchange.SideSell {
			t.Errorf("unexpected exit order %q", o.id)
		}
	}
}

// A fill without an order id must never pass the filter. The exit order id
// is empty while no exit order is outstanding, so without this check such a
// fill would compare equal to it and corrupt position and average price.
func TestReconcileDropsFillsWithoutOrderID(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	gw := &fakeGateway{
		book: &exchange.Orderbook{Symbol: "ETHPFC", BestBid: d("3000"), BestAsk: d("3000.5")},
	}
	g, err := New("test-grid", gw, nil, testOptions())
	if err != nil {
		t.Fatal(err)
	}

	g.tick(ctx, db)
	if g.stopProfitOrderID != "" {
		t.Fatal("no exit order must be outstanding before the entry fills")
	}

	gw.addFill("", exchange.SideBuy, "3000", 7)
	g.tick(ctx, db)

	if g.position != 0 {
		t.Errorf("position = %d, want 0: a fill with an empty order id must not pass the filter", g.position)
	}
	if !g.avgPrice.IsZero() {
		t.Errorf("avgPrice = %s, want 0", g.avgPrice)
	}
}

func TestFillWindowAdvancesOnlyOnSuccess(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	gw := &fakeGateway{}
	opts := testOptions()
	opts.ResumeQuantity = 10
	opts.ResumePrice = d("3000")

	g, err := New("test-grid", gw, nil, opts)
	if err != nil {
		t.Fatal(err)
	}
	if err := g.resume(ctx); err != nil {
		t.Fatal(err)
	}

	gw.addFill(gw.orders[0].id, exchange.SideBuy, "2990", 10)

	// The fetch fails; the window must not advance past the fill.
	gw.fillsErr = fmt.Errorf("venue unavailable")
	g.tick(ctx, db)
	if g.position != 10 {
		t.Fatalf("position = %d, want 10 while fetches fail", g.position)
	}

	gw.fillsErr = nil
	g.tick(ctx, db)
	if g.position != 20 {
		t.Fatalf("position = %d, want 20 after the retried window", g.position)
	}

	// The window advanced past the fill; re-ticking must not double count.
	g.tick(ctx, db)
	if g.position != 20 {
		t.Errorf("position = %d, want 20: fills must not be reapplied", g.position)
	}
}

func TestCheckpointSaved(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	gw := &fakeGateway{
		book: &exchange.Orderbook{Symbol: "ETHPFC", BestBid: d("3000"), BestAsk: d("3000.5")},
	}
	g, err := New("test-grid", gw, nil, testOptions())
	if err != nil {
		t.Fatal(err)
	}

	g.tick(ctx, db)
	if err := kvutil.SetDB(ctx, db, CheckpointKey(g.uid), g.checkpoint()); err != nil {
		t.Fatal(err)
	}

	state, err := kvutil.GetDB[gobs.GridState](ctx, db, CheckpointKey("test-grid"))
	if err != nil {
		t.Fatal(err)
	}
	if state.Symbol != "ETHPFC" || state.FirstOrderID == "" {
		t.Errorf("unexpected checkpoint %+v", state)
	}
}

func TestProfitJournal(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	gw := &fakeGateway{}
	opts := testOptions()
	opts.ResumeQuantity = 30
	opts.ResumePrice = d("3000")

	g, err := New("test-grid", gw, nil, opts)
	if err != nil {
		t.Fatal(err)
	}
	if err := g.resume(ctx); err != nil {
		t.Fatal(err)
	}

	// A partial exit fill of 5 contracts.
	gw.addFill(g.stopProfitOrderID, exchange.SideSell, "3100", 5)
	g.tick(ctx, db)

	if g.position != 25 {
		t.Fatalf("position = %d, want 25", g.position)
	}
	if g.stopProfitOrderID == "" {
		t.Fatal("partial exit fill must keep the exit order")
	}

	var recs []*gobs.CycleRecord
	begin, end := ProfitRange("test-grid")
	if err := kvutil.AscendDB(ctx, db, begin, end, func(ctx context.Context, r kv.Reader, k string, v *gobs.CycleRecord) error {
		recs = append(recs, v)
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 {
		t.Fatalf("journal records = %d, want 1", len(recs))
	}
	if !recs[0].Partial {
		t.Error("journal record must be marked partial")
	}
	if recs[0].Size != 5 {
		t.Errorf("journal size = %d, want 5", recs[0].Size)
	}
}
