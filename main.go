// Copyright (c) 2023 BVK Chaitanya

package main

import (
	"context"
	"log"
	"os"

	"github.com/visvasity/cli"

	"github.com/ysfang/gridbot/subcmds"
	"github.com/ysfang/gridbot/subcmds/db"
	"github.com/ysfang/gridbot/subcmds/job"
)

func main() {
	dbCmds := []cli.Command{
		new(db.Get),
		new(db.Set),
		new(db.Edit),
		new(db.Delete),
		new(db.List),
		new(db.Backup),
		new(db.Restore),
	}

	jobCmds := []cli.Command{
		new(job.Pause),
		new(job.Resume),
	}

	cmds := []cli.Command{
		new(subcmds.Run),
		new(subcmds.Status),
		new(subcmds.Profit),
		new(subcmds.Setup),
		new(subcmds.IDGen),
		cli.NewGroup("job", "Control the trade job", jobCmds...),
		cli.NewGroup("db", "View/update database directly", dbCmds...),
	}
	if err := cli.Run(context.Background(), cmds, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
