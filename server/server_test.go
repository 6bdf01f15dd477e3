// Copyright (c) 2025 BVK Chaitanya

package server

import (
	"context"
	"path"
	"testing"
	"time"

	"github.com/bvkgo/kv"
	"github.com/bvkgo/kv/kvmemdb"
	"github.com/shopspring/decimal"

	"github.com/ysfang/gridbot/gobs"
	"github.com/ysfang/gridbot/grid"
	"github.com/ysfang/gridbot/kvutil"
	"github.com/ysfang/gridbot/timerange"
)

func addRecord(t *testing.T, ctx context.Context, db kv.Database, uid string, at time.Time, profit string, partial bool) {
	t.Helper()
	rec := &gobs.CycleRecord{
		UID:       uid,
		Symbol:    "ETHPFC",
		FilledAt:  at,
		FillPrice: decimal.NewFromInt(3000),
		Size:      10,
		Profit:    decimal.RequireFromString(profit),
		Partial:   partial,
	}
	key := path.Join(grid.ProfitsKeyspace, uid, at.UTC().Format(time.RFC3339Nano))
	if err := kvutil.SetDB(ctx, db, key, rec); err != nil {
		t.Fatal(err)
	}
}

func TestSummarize(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()
	uid := "btse/ETHPFC"

	now := time.Now()
	addRecord(t, ctx, db, uid, now, "50", false)
	addRecord(t, ctx, db, uid, now.Add(-time.Minute), "25.5", true)
	addRecord(t, ctx, db, uid, now.AddDate(-1, 0, 0), "100", false)

	// Another job's records must not be counted.
	addRecord(t, ctx, db, "btse/BTCPFC", now, "999", false)

	vs, err := Summarize(ctx, db, uid, timerange.Today(time.Local), timerange.Lifetime(time.Local))
	if err != nil {
		t.Fatal(err)
	}

	today, lifetime := vs[0], vs[1]
	if want := decimal.RequireFromString("75.5"); !today.Profit.Equal(want) {
		t.Errorf("today profit: want %s, got %s", want, today.Profit)
	}
	if today.NumCycles != 1 || today.NumPartials != 1 {
		t.Errorf("today counts: want 1 cycle and 1 partial, got %d and %d", today.NumCycles, today.NumPartials)
	}
	if want := decimal.RequireFromString("175.5"); !lifetime.Profit.Equal(want) {
		t.Errorf("lifetime profit: want %s, got %s", want, lifetime.Profit)
	}
	if lifetime.SoldSize != 30 {
		t.Errorf("lifetime sold size: want 30, got %d", lifetime.SoldSize)
	}
}
