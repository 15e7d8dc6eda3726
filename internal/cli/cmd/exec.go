package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/coriolis-labs/lc3/internal/asm"
	"github.com/coriolis-labs/lc3/internal/cli"
	"github.com/coriolis-labs/lc3/internal/log"
	"github.com/coriolis-labs/lc3/internal/vm"
)

// Executor is the combined command that assembles source code and immediately runs it, for the
// common case where the intermediate object file is of no interest.
//
//	elsie exec [-timeout duration] file.asm
func Executor() cli.Command {
	return &executor{timeout: 10 * time.Second}
}

type executor struct {
	timeout time.Duration
}

func (executor) Description() string {
	return "assemble and run a program in one step"
}

func (executor) Usage(out io.Writer) error {
	var err error
	_, err = fmt.Fprintln(out, `exec [-timeout duration] file.asm

Assembles source code and runs the resulting image to completion.`)

	return err
}

func (ex *executor) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("exec", flag.ExitOnError)
	fs.DurationVar(&ex.timeout, "timeout", ex.timeout, "abort the machine after `duration`")

	return fs
}

// Run assembles args[0] and executes the result.
func (ex *executor) Run(ctx context.Context, args []string, _ io.Writer, logger *log.Logger) int {
	if len(args) == 0 {
		logger.Error("no source file given")
		return 1
	}

	obj, err := ex.assemble(args[0], logger)
	if err != nil {
		logger.Error("assemble failed", "file", args[0], "err", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(ctx, ex.timeout)
	defer cancel()

	console, restore := (&runner{}).consoleIO(logger)
	if restore != nil {
		defer restore()
	}

	machine := vm.New(vm.WithLogger(logger), vm.WithIO(console))
	loader := vm.NewLoader(machine)

	if _, err := loader.Load(obj); err != nil {
		logger.Error("load failed", "err", err)
		return 1
	}

	machine.PC = vm.ProgramCounter(obj.Orig)

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

func (ex *executor) assemble(fn string, logger *log.Logger) (vm.ObjectCode, error) {
	f, err := os.Open(fn)
	if err != nil {
		return vm.ObjectCode{}, err
	}
	defer f.Close()

	parser := asm.NewParser(logger)
	parser.Parse(f)

	if parser.Err() != nil {
		return vm.ObjectCode{}, parser.Err()
	}

	enc := asm.NewEncoder(parser.Symbols(), parser.Tokens())

	return enc.Encode()
}
