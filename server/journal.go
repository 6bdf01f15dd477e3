// Copyright (c) 2025 BVK Chaitanya

package server

import (
	"context"

	"github.com/bvkgo/kv"
	"github.com/shopspring/decimal"

	"github.com/ysfang/gridbot/gobs"
	"github.com/ysfang/gridbot/grid"
	"github.com/ysfang/gridbot/kvutil"
	"github.com/ysfang/gridbot/timerange"
)

// Summary aggregates the profit journal records of one trade job over a
// time period.
type Summary struct {
	NumCycles   int64
	NumPartials int64

	SoldSize int64

	Profit decimal.Decimal
	Fees   decimal.Decimal
}

// Summarize scans the profit journal once and aggregates the records into
// one summary per requested period.
func Summarize(ctx context.Context, db kv.Database, uid string, periods ...*timerange.Range) ([]*Summary, error) {
	summaries := make([]*Summary, len(periods))
	for i := range periods {
		summaries[i] = new(Summary)
	}

	begin, end := grid.ProfitRange(uid)
	collect := func(ctx context.Context, r kv.Reader, key string, rec *gobs.CycleRecord) error {
		for i, period := range periods {
			if !period.InRange(rec.FilledAt) {
				continue
			}
			sum := summaries[i]
			if rec.Partial {
				sum.NumPartials++
			} else {
				sum.NumCycles++
			}
			sum.SoldSize += rec.Size
			sum.Profit = sum.Profit.Add(rec.Profit)
			sum.Fees = sum.Fees.Add(rec.Fee)
		}
		return nil
	}
	if err := kvutil.AscendDB(ctx, db, begin, end, collect); err != nil {
		return nil, err
	}
	return summaries, nil
}
