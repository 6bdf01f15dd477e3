// Copyright (c) 2025 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/bvkgo/kv"
	"github.com/visvasity/cli"

	"github.com/ysfang/gridbot/gobs"
	"github.com/ysfang/gridbot/grid"
	"github.com/ysfang/gridbot/kvutil"
	"github.com/ysfang/gridbot/server"
	"github.com/ysfang/gridbot/subcmds/cmdutil"
	"github.com/ysfang/gridbot/timerange"
)

type Profit struct {
	cmdutil.DBFlags

	beginTime, endTime string
}

func (c *Profit) Purpose() string {
	return "Profit prints realized profit summaries from the profit journal"
}

func (c *Profit) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("profit", flag.ContinueOnError)
	c.DBFlags.SetFlags(fset)
	fset.StringVar(&c.beginTime, "begin-time", "", "Begin time for the profit time period")
	fset.StringVar(&c.endTime, "end-time", "", "End time for the profit time period")
	return "profit", fset, cli.CmdFunc(c.run)
}

func (c *Profit) run(ctx context.Context, args []string) error {
	db, closer, err := c.DBFlags.GetDatabase(ctx)
	if err != nil {
		return err
	}
	defer closer()

	uids := args
	if len(uids) == 0 {
		begin, end := kvutil.PathRange(grid.GridsKeyspace)
		collect := func(ctx context.Context, r kv.Reader, key string, v *gobs.GridState) error {
			uids = append(uids, v.UID)
			return nil
		}
		if err := kvutil.AscendDB(ctx, db, begin, end, collect); err != nil {
			return fmt.Errorf("could not scan trade job checkpoints: %w", err)
		}
	}
	if len(uids) == 0 {
		fmt.Println("no trade jobs found")
		return nil
	}

	now := time.Now()
	parseTime := func(s string) (time.Time, error) {
		if d, err := time.ParseDuration(s); err == nil {
			return now.Add(d), nil
		}
		if v, err := time.Parse("2006-01-02", s); err == nil {
			return v, nil
		}
		return time.Parse(time.RFC3339, s)
	}

	var period timerange.Range
	if len(c.beginTime) > 0 {
		v, err := parseTime(c.beginTime)
		if err != nil {
			return err
		}
		period.Begin = v
	}
	if len(c.endTime) > 0 {
		v, err := parseTime(c.endTime)
		if err != nil {
			return err
		}
		period.End = v
	}

	if !period.IsZero() {
		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 1, ' ', tabwriter.AlignRight)
		fmt.Fprintf(tw, "UID\tCycles\tPartials\tSoldSize\tFees\tProfit\t\n")
		for _, uid := range uids {
			vs, err := server.Summarize(ctx, db, uid, &period)
			if err != nil {
				return err
			}
			s := vs[0]
			fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\t%s\t\n", uid, s.NumCycles, s.NumPartials, s.SoldSize, s.Fees.StringFixed(3), s.Profit.StringFixed(3))
		}
		return tw.Flush()
	}

	periods := []*timerange.Range{
		timerange.Today(time.Local),
		timerange.Yesterday(time.Local),
		timerange.ThisWeek(time.Local),
		timerange.ThisMonth(time.Local),
		timerange.ThisYear(time.Local),
		timerange.Lifetime(time.Local),
	}
	titles := []string{"Today", "Yesterday", "This Week", "This Month", "This Year", "Lifetime"}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 1, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "UID\tPeriod\tCycles\tPartials\tSoldSize\tFees\tProfit\t\n")
	for _, uid := range uids {
		vs, err := server.Summarize(ctx, db, uid, periods...)
		if err != nil {
			return err
		}
		for i, s := range vs {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\t%s\t\n", uid, titles[i], s.NumCycles, s.NumPartials, s.SoldSize, s.Fees.StringFixed(3), s.Profit.StringFixed(3))
		}
	}
	return tw.Flush()
}
