package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/questline/maptiles/archive"
)

type detectCmd struct{}

func (detectCmd) Name() string     { return "detect" }
func (detectCmd) Synopsis() string { return "print the detected archive root" }
func (detectCmd) Usage() string    { return "maptiles detect\n" }

func (detectCmd) SetFlags(*flag.FlagSet) {}

func (detectCmd) Execute(context.Context, *flag.FlagSet, ...any) subcommands.ExitStatus {
	root, ok := archive.DetectRoot()
	if !ok {
		fmt.Println("no archive root detected")
		return subcommands.ExitFailure
	}
	fmt.Println(root)
	return subcommands.ExitSuccess
}
