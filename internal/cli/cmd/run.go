package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/coriolis-labs/lc3/internal/cli"
	"github.com/coriolis-labs/lc3/internal/encoding"
	"github.com/coriolis-labs/lc3/internal/log"
	"github.com/coriolis-labs/lc3/internal/tty"
	"github.com/coriolis-labs/lc3/internal/vm"
)

// Runner is the command that loads an assembled object image and executes it.
//
//	elsie run [-hex] [-timeout duration] a.o
func Runner() cli.Command {
	return &runner{timeout: 10 * time.Second}
}

type runner struct {
	hex     bool
	timeout time.Duration
}

func (runner) Description() string {
	return "run an executable image"
}

func (runner) Usage(out io.Writer) error {
	var err error
	_, err = fmt.Fprintln(out, `run [-hex] [-timeout duration] image

Loads an object image and runs it to completion.`)

	return err
}

func (r *runner) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	fs.BoolVar(&r.hex, "hex", false, "image is in the Intel-Hex-like text format")
	fs.DurationVar(&r.timeout, "timeout", r.timeout, "abort the machine after `duration`")

	return fs
}

// Run loads and executes the image named in args[0].
func (r *runner) Run(ctx context.Context, args []string, _ io.Writer, logger *log.Logger) int {
	if len(args) == 0 {
		logger.Error("no image given")
		return 1
	}

	code, err := r.loadImage(args[0])
	if err != nil {
		logger.Error("load failed", "file", args[0], "err", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	console, restore := r.consoleIO(logger)
	if restore != nil {
		defer restore()
	}

	machine := vm.New(vm.WithLogger(logger), vm.WithIO(console))
	loader := vm.NewLoader(machine)

	for i := range code {
		if _, err := loader.Load(code[i]); err != nil {
			logger.Error("load failed", "err", err)
			return 1
		}
	}

	machine.PC = vm.ProgramCounter(code[0].Orig)

	err = machine.Run(ctx)

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		logger.Error("run timed out")
		return 2
	case err != nil:
		logger.Error("run failed", "err", err)
		return 2
	default:
		return 0
	}
}

// loadImage reads object code from a file, either the primary big-endian format or, with -hex, the
// supplemental Intel-Hex-like text format.
func (r *runner) loadImage(fn string) ([]vm.ObjectCode, error) {
	b, err := os.ReadFile(fn)
	if err != nil {
		return nil, err
	}

	if r.hex {
		var h encoding.HexEncoding
		if err := h.UnmarshalText(b); err != nil {
			return nil, err
		}

		return h.Code(), nil
	}

	obj, err := vm.ReadObjectCode(b)
	if err != nil {
		return nil, err
	}

	return []vm.ObjectCode{obj}, nil
}

// consoleIO puts the terminal in raw mode for GETC/IN when stdin is a terminal, falling back to
// buffered reads from os.Stdin otherwise.
func (r *runner) consoleIO(logger *log.Logger) (vm.IO, func()) {
	console, err := tty.NewConsole(os.Stdin, os.Stdout)
	if err != nil {
		logger.Debug("console unavailable, using buffered I/O", "err", err)
		return vm.NewStdIO(), nil
	}

	return console, console.Restore
}
