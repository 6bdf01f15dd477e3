// Copyright (c) 2025 BVK Chaitanya

package grid

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bvkgo/kv/kvmemdb"
	"github.com/shopspring/decimal"

	"github.com/ysfang/gridbot/exchange"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fakeOrder struct {
	id       exchange.OrderID
	clientID string
	side     exchange.Side
	price    decimal.Decimal
	size     int64
	open     bool
}

type fakeGateway struct {
	nextID int
	book   *exchange.Orderbook
	orders []*fakeOrder
	fills  []*exchange.Fill

	canceled []exchange.OrderID

	submitErr error
	cancelErr error
	fillsErr  error
}

func (f *fakeGateway) ExchangeName() string {
	return "fake"
}

func (f *fakeGateway) GetOrderbook(ctx context.Context, symbol string) (*exchange.Orderbook, error) {
	return f.book, nil
}

func (f *fakeGateway) SubmitOrder(ctx context.Context, clientOrderID, symbol string, side exchange.Side, price decimal.Decimal, size int64) (exchange.OrderID, error) {
	if f.submitErr != nil {
		return "", f.submitErr
	}
	f.nextID++
	order := &fakeOrder{
		id:       exchange.OrderID(fmt.Sprintf("order-%d", f.nextID)),
		clientID: clientOrderID,
		side:     side,
		price:    price,
		size:     size,
		open:     true,
	}
	f.orders = append(f.orders, order)
	return order.id, nil
}

func (f *fakeGateway) CancelOrder(ctx context.Context, symbol string, id exchange.OrderID) error {
	if f.cancelErr != nil {
		return f.cancelErr
	}
	f.canceled = append(f.canceled, id)
	for _, o := range f.orders {
		if o.id == id {
			o.open = false
		}
	}
	return nil
}

func (f *fakeGateway) GetFills(ctx context.Context, symbol string, from, to time.Time) ([]*exchange.Fill, error) {
	if f.fillsErr != nil {
		return nil, f.fillsErr
	}
	var fills []*exchange.Fill
	for _, fill := range f.fills {
		t := fill.Time.Time
		if !t.Before(from) && t.Before(to) {
			fills = append(fills, fill)
		}
	}
	return fills, nil
}

func (f *fakeGateway) addFill(id exchange.OrderID, side exchange.Side, price string, size int64) {
	f.fills = append(f.fills, &exchange.Fill{
		OrderID: id,
		Side:    side,
		Price:   d(price),
		Size:    size,
		Time:    exchange.RemoteTime{Time: time.Now()},
	})
}

func (f *fakeGateway) openOrders() []*fakeOrder {
	var open []*fakeOrder
	for _, o := range f.orders {
		if o.open {
			open = append(open, o)
		}
	}
	return open
}

type fakeNotifier struct {
	msgs []string
}

func (f *fakeNotifier) SendMessage(ctx context.Context, at time.Time, msg string) error {
	f.msgs = append(f.msgs, msg)
	return nil
}

func testOptions() *Options {
	return &Options{
		Symbol:             "ETHPFC",
		PriceRange:         d("10"),
		FirstContractSize:  10,
		OrderLevel:         4,
		StopProfitType:     "fix",
		StopProfit:         d("5"),
		TickSize:           d("0.5"),
		ContractMultiplier: d("1"),
	}
}

func TestEntryPlacement(t *testing.T) {
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

	open := gw.openOrders()
	if len(open) != 1 {
		t.Fatalf("open orders = %d, want 1", len(open))
	}
	if open[0].side != exchange.SideBuy {
		t.Errorf("entry side = %s, want BUY", open[0].side)
	}
	if !open[0].price.Equal(d("3000.5")) {
		t.Errorf("entry price = %s, want bestBid+tick = 3000.5", open[0].price)
	}
	if open[0].size != 10 {
		t.Errorf("entry size = %d, want 10", open[0].size)
	}
	if g.firstOrderID != open[0].id {
		t.Errorf("firstOrderID = %q, want %q", g.firstOrderID, open[0].id)
	}
}

func TestEntryReplacedEachTick(t *testing.T) {
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
	first := g.firstOrderID

	gw.book.BestBid = d("2999")
	g.tick(ctx, db)

	if len(gw.canceled) != 1 || gw.canceled[0] != first {
		t.Fatalf("stale entry %q was not canceled: %v", first, gw.canceled)
	}
	open := gw.openOrders()
	if len(open) != 1 {
		t.Fatalf("open orders = %d, want 1", len(open))
	}
	if !open[0].price.Equal(d("2999.5")) {
		t.Errorf("replacement entry price = %s, want 2999.5", open[0].price)
	}
}

func TestResumeEntersArmed(t *testing.T) {
	ctx := context.Background()

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

	if g.position != 30 {
		t.Errorf("position = %d, want 30", g.position)
	}
	// Linear weighting consumes levels one (10) and two (20) for a
	// remainder of 30, so resting orders resume from level two.
	var sells, buys []*fakeOrder
	for _, o := range gw.openOrders() {
		if o.side == exchange.SideSell {
			sells = append(sells, o)
		} else {
			buys = append(buys, o)
		}
	}
	if len(sells) != 1 {
		t.Fatalf("exit orders = %d, want 1", len(sells))
	}
	if sells[0].size != 20 {
		t.Errorf("exit size = %d, want position-first = 20", sells[0].size)
	}
	if !sells[0].price.Equal(g.targetPrice) {
		t.Errorf("exit price = %s, want target %s", sells[0].price, g.targetPrice)
	}
	if len(buys) != 2 {
		t.Fatalf("ladder orders = %d, want levels 2..3", len(buys))
	}
	if !buys[0].price.Equal(d("2970")) || buys[0].size != 20 {
		t.Errorf("level 2 = (%s, %d), want (2970, 20)", buys[0].price, buys[0].size)
	}
	if !buys[1].price.Equal(d("2930")) || buys[1].size != 40 {
		t.Errorf("level 3 = (%s, %d), want (2930, 40)", buys[1].price, buys[1].size)
	}
}

func TestResumeBelowFirstSizeAborts(t *testing.T) {
	ctx := context.Background()

	gw := &fakeGateway{}
	opts := testOptions()
	opts.ResumeQuantity = 5
	opts.ResumePrice = d("3000")

	g, err := New("test-grid", gw, nil, opts)
	if err != nil {
		t.Fatal(err)
	}
	if err := g.resume(ctx); err == nil {
		t.Fatal("resume with remainder below the first contract size must fail")
	}
	if g.position != 0 {
		t.Errorf("position = %d, want 0 after aborted resume", g.position)
	}
	if len(gw.orders) != 0 {
		t.Errorf("no orders must be placed after aborted resume, got %d", len(gw.orders))
	}
}

func TestLadderFillRefreshesExit(t *testing.T) {
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
	// Position equals the first contract size, so no exit order rests yet.
	if g.stopProfitOrderID != "" {
		t.Fatalf("unexpected exit order %q", g.stopProfitOrderID)
	}

	// Level one (10 @ 2990) fills.
	gw.addFill(gw.orders[0].id, exchange.SideBuy, "2990", 10)
	g.tick(ctx, db)

	if g.position != 20 {
		t.Errorf("position = %d, want 20", g.position)
	}
	if !g.avgPrice.Equal(d("2995")) {
		t.Errorf("avgPrice = %s, want 2995", g.avgPrice)
	}
	if g.stopProfitOrderID == "" {
		t.Fatal("exit order was not placed after ladder fill")
	}
	var exit *fakeOrder
	for _, o := range gw.openOrders() {
		if o.side == exchange.SideSell {
			exit = o
		}
	}
	if exit == nil {
		t.Fatal("no open exit order")
	}
	if exit.size != 10 {
		t.Errorf("exit size = %d, want 10", exit.size)
	}
	if !exit.price.Equal(d("3000")) {
		t.Errorf("exit price = %s, want target 2995+5 = 3000", exit.price)
	}
}

func TestExitCancelFailureKeepsStaleOrder(t *testing.T) {
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
	stale := g.stopProfitOrderID
	if stale == "" {
		t.Fatal("resume did not place an exit order")
	}

	// A deeper ladder fill arrives but the stale exit cannot be canceled;
	// the stale id must be kept and no replacement posted this tick.
	gw.cancelErr = fmt.Errorf("venue unavailable")
	var ladderID exchange.OrderID
	for id := range g.gridOrderIDs {
		ladderID = id
		break
	}
	gw.addFill(ladderID, exchange.SideBuy, "2970", 20)
	nsubmitted := len(gw.orders)
	g.tick(ctx, db)

	if g.stopProfitOrderID != stale {
		t.Errorf("stopProfitOrderID = %q, want stale %q", g.stopProfitOrderID, stale)
	}
	if len(gw.orders) != nsubmitted {
		t.Errorf("no replacement order may be submitted while the stale exit stands")
	}
}

func TestCycleReset(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	gw := &fakeGateway{}
	notifier := &fakeNotifier{}
	opts := testOptions()
	opts.ResumeQuantity = 10
	opts.ResumePrice = d("3000")

	g, err := New("test-grid", gw, nil, opts)
	if err != nil {
		t.Fatal(err)
	}
	g.notifier = notifier
	if err := g.resume(ctx); err != nil {
		t.Fatal(err)
	}

	// Ladder level one fills, arming the exit order.
	gw.addFill(gw.orders[0].id, exchange.SideBuy, "2990", 10)
	g.tick(ctx, db)
	exitID := g.stopProfitOrderID
	if exitID == "" {
		t.Fatal("exit order was not placed")
	}

	// The exit fills in full, closing the cycle.
	gw.addFill(exitID, exchange.SideSell, "3000", 10)
	g.tick(ctx, db)

	if g.position != 10 {
		t.Errorf("position = %d, want first contract size 10", g.position)
	}
	if g.stopProfitOrderID != "" {
		t.Errorf("stopProfitOrderID = %q, want empty after reset", g.stopProfitOrderID)
	}
	if !g.avgPrice.Equal(d("3000")) {
		t.Errorf("avgPrice = %s, want exit fill price 3000", g.avgPrice)
	}
	if !g.targetPrice.Equal(d("3005")) {
		t.Errorf("targetPrice = %s, want 3005", g.targetPrice)
	}
	// Profit is (3000 - 2995) * 10 contracts.
	if !g.realizedProfit.Equal(d("50")) {
		t.Errorf("realizedProfit = %s, want 50", g.realizedProfit)
	}
	if g.numCycles != 1 {
		t.Errorf("numCycles = %d, want 1", g.numCycles)
	}

	// The ladder is rebuilt from level one under the new cost basis.
	var buys []*fakeOrder
	for _, o := range gw.openOrders() {
		if o.side == exchange.SideBuy {
			buys = append(buys, o)
		}
	}
	if len(buys) != 3 {
		t.Fatalf("ladder orders = %d, want 3", len(buys))
	}
	if !buys[0].price.Equal(d("2990")) || !buys[1].price.Equal(d("2970")) || !buys[2].price.Equal(d("2930")) {
		t.Errorf("rebuilt ladder prices = %s %s %s, want 2990 2970 2930", buys[0].price, buys[1].price, buys[2].price)
	}
	if len(g.gridOrderIDs) != 3 {
		t.Errorf("gridOrderIDs has %d entries, want 3", len(g.gridOrderIDs))
	}
	if len(notifier.msgs) == 0 {
		t.Error("cycle completion must notify the operator")
	}
}

func TestPriceCrossRebases(t *testing.T) {
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
	oldTarget := g.targetPrice
	oldLadder := len(g.gridOrderIDs)
	if oldLadder == 0 {
		t.Fatal("resume did not place ladder orders")
	}

	// The bid crosses the target with only the entry quantity held; the
	// crossing rebases the cycle without a sell.
	gw.book = &exchange.Orderbook{Symbol: "ETHPFC", BestBid: oldTarget.Add(d("1")), BestAsk: oldTarget.Add(d("1.5"))}
	g.tick(ctx, db)

	if !g.avgPrice.Equal(oldTarget) {
		t.Errorf("avgPrice = %s, want old target %s", g.avgPrice, oldTarget)
	}
	if !g.targetPrice.Equal(oldTarget.Add(d("5"))) {
		t.Errorf("targetPrice = %s, want %s", g.targetPrice, oldTarget.Add(d("5")))
	}
	if len(gw.canceled) != oldLadder {
		t.Errorf("canceled %d ladder orders, want %d", len(gw.canceled), oldLadder)
	}
	if got := len(g.gridOrderIDs); got != 3 {
		t.Errorf("rebuilt ladder has %d orders, want 3", got)
	}
	if g.position != 10 {
		t.Errorf("position = %d, want unchanged 10", g.position)
	}
}
