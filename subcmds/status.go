// Copyright (c) 2023 BVK Chaitanya

package subcmds

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path"
	"text/tabwriter"
	"time"

	"github.com/bvkgo/kv"
	"github.com/visvasity/cli"

	"github.com/ysfang/gridbot/gobs"
	"github.com/ysfang/gridbot/grid"
	"github.com/ysfang/gridbot/job"
	"github.com/ysfang/gridbot/kvutil"
	"github.com/ysfang/gridbot/server"
	"github.com/ysfang/gridbot/subcmds/cmdutil"
)

type Status struct {
	cmdutil.DBFlags
}

func (c *Status) Purpose() string {
	return "Status prints a summary of the trade jobs in the database"
}

func (c *Status) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("status", flag.ContinueOnError)
	c.DBFlags.SetFlags(fset)
	return "status", fset, cli.CmdFunc(c.run)
}

func (c *Status) run(ctx context.Context, args []string) error {
	db, closer, err := c.DBFlags.GetDatabase(ctx)
	if err != nil {
		return err
	}
	defer closer()

	var states []*gobs.GridState
	begin, end := kvutil.PathRange(grid.GridsKeyspace)
	collect := func(ctx context.Context, r kv.Reader, key string, v *gobs.GridState) error {
		if len(args) > 0 {
			found := false
			for _, arg := range args {
				if v.UID == arg {
					found = true
					break
				}
			}
			if !found {
				return nil
			}
		}
		states = append(states, v)
		return nil
	}
	if err := kvutil.AscendDB(ctx, db, begin, end, collect); err != nil {
		return fmt.Errorf("could not scan trade job checkpoints: %w", err)
	}
	if len(states) == 0 {
		fmt.Println("no trade jobs found")
		return nil
	}

	jobState := func(uid string) string {
		v, err := kvutil.GetDB[gobs.JobState](ctx, db, path.Join(server.JobsKeyspace, uid))
		if err != nil || len(v.State) == 0 {
			if err != nil && !errors.Is(err, os.ErrNotExist) {
				return "UNKNOWN"
			}
			return string(job.Paused)
		}
		return v.State
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 1, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "UID\tState\tSymbol\tPosition\tAvgPrice\tTarget\tOpenOrders\tProfit\tCycles\tUpdated\t\n")
	for _, s := range states {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%d\t%s\t%d\t%s\t\n",
			s.UID, jobState(s.UID), s.Symbol, s.Position,
			s.AveragePrice.StringFixed(3), s.TargetPrice.StringFixed(3),
			len(s.GridOrderIDs), s.RealizedProfit.StringFixed(3), s.NumCycles,
			s.UpdatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}
