// Copyright (c) 2023 BVK Chaitanya

// Package job implements subcommands to control the trade job over the
// gridbot daemon's http api.
package job

import (
	"context"
	"flag"
	"fmt"

	"github.com/visvasity/cli"

	"github.com/ysfang/gridbot/api"
	"github.com/ysfang/gridbot/subcmds/cmdutil"
)

type Pause struct {
	cmdutil.ClientFlags
}

func (c *Pause) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("command takes no arguments")
	}

	req := &api.JobPauseRequest{}
	resp, err := cmdutil.Post[api.JobPauseResponse](ctx, &c.ClientFlags, api.JobPausePath, req)
	if err != nil {
		return fmt.Errorf("could not pause the trade job: %w", err)
	}
	fmt.Printf("job state: %s\n", resp.FinalState)
	return nil
}

func (c *Pause) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := new(flag.FlagSet)
	c.ClientFlags.SetFlags(fset)
	return "pause", fset, cli.CmdFunc(c.run)
}

func (c *Pause) Purpose() string {
	return "Pauses the trade job on the gridbot daemon"
}
