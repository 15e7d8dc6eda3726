package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/coriolis-labs/lc3/internal/asm"
	"github.com/coriolis-labs/lc3/internal/cli"
	"github.com/coriolis-labs/lc3/internal/log"
)

// Assembler is the command that translates LCASM source code into executable object code.
//
//	elsie asm -o a.o FILE.asm
func Assembler() cli.Command {
	return new(assembler)
}

type assembler struct {
	debug  bool
	output string
}

func (assembler) Description() string {
	return "assemble source code into object code"
}

func (assembler) Usage(out io.Writer) error {
	var err error
	_, err = fmt.Fprintln(out, `asm [-o file.o] file.asm

Assemble source into object code.`)

	return err
}

func (a *assembler) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("asm", flag.ExitOnError)
	fs.BoolVar(&a.debug, "debug", false, "enable debug logging")
	fs.StringVar(&a.output, "o", "a.o", "output `filename`")

	return fs
}

// Run calls the assembler to assemble the assembly.
func (a *assembler) Run(_ context.Context, args []string, _ io.Writer, logger *log.Logger) int {
	if a.debug {
		log.LogLevel.Set(log.Debug)
	}

	if len(args) == 0 {
		logger.Error("no source file given")
		return 1
	}

	if len(args) > 1 {
		logger.Error("asm takes a single source file", "args", args)
		return 1
	}

	f, err := os.Open(args[0])
	if err != nil {
		logger.Error("open failed", "file", args[0], "err", err)
		return 1
	}
	defer f.Close()

	parser := asm.NewParser(logger)
	parser.Parse(f)

	logger.Debug("parsed source", "symbols", len(parser.Symbols()), "err", parser.Err())

	if parser.Err() != nil {
		logger.Error("parse error", "err", parser.Err())
		return 1
	}

	out, err := os.Create(a.output)
	if err != nil {
		logger.Error("create failed", "out", a.output, "err", err)
		return 1
	}
	defer out.Close()

	enc := asm.NewEncoder(parser.Symbols(), parser.Tokens())

	wrote, err := enc.WriteTo(out)
	if err != nil {
		logger.Error("encode error", "out", a.output, "err", err)
		return 1
	}

	logger.Debug("wrote object", "out", a.output, "bytes", wrote)

	return 0
}
