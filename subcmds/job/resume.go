// Copyright (c) 2023 BVK Chaitanya

package job

import (
	"context"
	"flag"
	"fmt"

	"github.com/visvasity/cli"

	"github.com/ysfang/gridbot/api"
	"github.com/ysfang/gridbot/subcmds/cmdutil"
)

type Resume struct {
	cmdutil.ClientFlags
}

func (c *Resume) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("command takes no arguments")
	}

	req := &api.JobResumeRequest{}
	resp, err := cmdutil.Post[api.JobResumeResponse](ctx, &c.ClientFlags, api.JobResumePath, req)
	if err != nil {
		return fmt.Errorf("could not resume the trade job: %w", err)
	}
	fmt.Printf("job state: %s\n", resp.FinalState)
	return nil
}

func (c *Resume) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := new(flag.FlagSet)
	c.ClientFlags.SetFlags(fset)
	return "resume", fset, cli.CmdFunc(c.run)
}

func (c *Resume) Purpose() string {
	return "Resumes the trade job on the gridbot daemon"
}
