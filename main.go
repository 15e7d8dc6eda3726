// Package main is the command-line interface to the ELSIE, an LC-3 simulator and tool suite.
package main

import (
	"context"
	"os"

	"github.com/coriolis-labs/lc3/internal/cli"
	"github.com/coriolis-labs/lc3/internal/cli/cmd"
)

var (
	commands = []cli.Command{
		cmd.Assembler(),
		cmd.Runner(),
		cmd.Executor(),
	}
)

// Entry point.
func main() {
	result :=
		cli.New(context.Background()).
			WithLogger(os.Stderr).
			WithCommands(commands).
			WithHelp(cmd.Help(commands)).
			Execute(os.Args[1:])

	os.Exit(result)
}
