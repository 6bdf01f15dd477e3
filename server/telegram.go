// Copyright (c) 2025 BVK Chaitanya

package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/visvasity/cli"

	"github.com/ysfang/gridbot/gobs"
	"github.com/ysfang/gridbot/grid"
	"github.com/ysfang/gridbot/kvutil"
	"github.com/ysfang/gridbot/telegram"
	"github.com/ysfang/gridbot/timerange"
)

var profitPeriods = []struct {
	name  string
	title string
	rangf func(*time.Location) *timerange.Range
}{
	{"today", "Today", timerange.Today},
	{"yesterday", "Yesterday", timerange.Yesterday},
	{"this-week", "This Week", timerange.ThisWeek},
	{"last-week", "Last Week", timerange.LastWeek},
	{"this-month", "This Month", timerange.ThisMonth},
	{"last-month", "Last Month", timerange.LastMonth},
	{"this-year", "This Year", timerange.ThisYear},
	{"last-year", "Last Year", timerange.LastYear},
	{"lifetime", "Lifetime", timerange.Lifetime},
}

func (s *Server) AddTelegramCommand(ctx context.Context, name, purpose string, handler telegram.CmdFunc) error {
	if s.telegramClient != nil {
		return s.telegramClient.AddCommand(ctx, name, purpose, handler)
	}
	return nil // Ignored
}

func (s *Server) registerTelegramCommands(ctx context.Context) error {
	if err := s.AddTelegramCommand(ctx, "profit", "Prints realized profit over standard time periods", s.profitTelegramCmd); err != nil {
		return err
	}
	if err := s.AddTelegramCommand(ctx, "status", "Prints current trade job status", s.statusTelegramCmd); err != nil {
		return err
	}
	return nil
}

func (s *Server) profitTelegramCmd(ctx context.Context, args []string) error {
	stdout := cli.Stdout(ctx)

	if len(args) == 0 {
		var periods []*timerange.Range
		for _, p := range profitPeriods {
			periods = append(periods, p.rangf(time.Local))
		}
		vs, err := Summarize(ctx, s.db, s.uid, periods...)
		if err != nil {
			return err
		}
		for i, p := range profitPeriods {
			fmt.Fprintf(stdout, "%s: %s\n", p.title, vs[i].Profit.StringFixed(3))
		}
		return nil
	}

	name := strings.ToLower(args[0])
	for _, p := range profitPeriods {
		if p.name == name {
			vs, err := Summarize(ctx, s.db, s.uid, p.rangf(time.Local))
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "%s\n", vs[0].Profit.StringFixed(3))
			return nil
		}
	}
	return fmt.Errorf("invalid/unsupported profit period %q", args[0])
}

func (s *Server) statusTelegramCmd(ctx context.Context, args []string) error {
	stdout := cli.Stdout(ctx)

	fmt.Fprintf(stdout, "Job: %s\n", s.uid)
	fmt.Fprintf(stdout, "State: %s\n", s.job.State())

	state, err := kvutil.GetDB[gobs.GridState](ctx, s.db, grid.CheckpointKey(s.uid))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		fmt.Fprintf(stdout, "No checkpoint saved yet\n")
		return nil
	}

	fmt.Fprintf(stdout, "Position: %d\n", state.Position)
	fmt.Fprintf(stdout, "Average Price: %s\n", state.AveragePrice.StringFixed(3))
	fmt.Fprintf(stdout, "Target Price: %s\n", state.TargetPrice.StringFixed(3))
	fmt.Fprintf(stdout, "Open Grid Orders: %d\n", len(state.GridOrderIDs))
	fmt.Fprintf(stdout, "Realized Profit: %s\n", state.RealizedProfit.StringFixed(3))
	fmt.Fprintf(stdout, "Completed Cycles: %d\n", state.NumCycles)
	fmt.Fprintf(stdout, "Updated: %s\n", state.UpdatedAt.Format(time.RFC3339))
	return nil
}
