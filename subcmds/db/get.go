// Copyright (c) 2023 BVK Chaitanya

// Package db implements subcommands to view and update the database
// directly.
package db

import (
	"context"
	"encoding/gob"
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/visvasity/cli"

	"github.com/ysfang/gridbot/gobs"
	"github.com/ysfang/gridbot/subcmds/cmdutil"
)

type Get struct {
	cmdutil.DBFlags

	valueType string
}

func (c *Get) Run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("needs one (key) argument")
	}

	db, closer, err := c.DBFlags.GetDatabase(ctx)
	if err != nil {
		return err
	}
	defer closer()

	snap, err := db.NewSnapshot(ctx)
	if err != nil {
		return err
	}
	defer snap.Discard(ctx)

	v, err := snap.Get(ctx, args[0])
	if err != nil {
		return err
	}

	if len(c.valueType) == 0 {
		data, err := io.ReadAll(v)
		if err != nil {
			return err
		}
		fmt.Printf("%x\n", data)
		return nil
	}

	value, err := gobs.NewByTypename(c.valueType)
	if err != nil {
		return fmt.Errorf("invalid value-type %q: %w", c.valueType, err)
	}
	if err := gob.NewDecoder(v).Decode(value); err != nil {
		return fmt.Errorf("could not gob-decode value at key %q: %w", args[0], err)
	}
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Printf("%s\n", data)
	return nil
}

func (c *Get) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := new(flag.FlagSet)
	c.DBFlags.SetFlags(fset)
	fset.StringVar(&c.valueType, "value-type", "", "when non-empty value is printed as json of the selected type")
	return "get", fset, cli.CmdFunc(c.Run)
}

func (c *Get) Purpose() string {
	return "Prints the value of a key in the database"
}
