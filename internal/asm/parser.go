package asm

// parser.go wires together the syntax screen, lexer, and semantic checker into the single entry
// point the driver uses to turn source text into tokens and a symbol table ready for encoding.

import (
	"bufio"
	"io"
	"strings"

	"github.com/coriolis-labs/lc3/internal/log"
)

// Parser runs the syntax screen, lexer, and semantic checker over a source file. An instance may
// be reused across files: each call to Parse resets prior results.
type Parser struct {
	lexer   *Lexer
	checker *Checker
	log     *log.Logger

	tokens  []Token
	symbols SymbolTable
	errs    []error
}

// NewParser creates a Parser that logs to the given logger.
func NewParser(logger *log.Logger) *Parser {
	if logger == nil {
		logger = log.DefaultLogger()
	}

	return &Parser{
		lexer:   NewLexer(),
		checker: NewChecker(),
		log:     logger,
	}
}

// Parse reads source from in, runs it through the syntax screen, lexer, and semantic checker, and
// records the results. Later stages only run if the earlier one reported no errors: a malformed
// line never reaches the lexer, and a broken token stream never reaches the checker.
func (p *Parser) Parse(in io.Reader) {
	p.tokens = nil
	p.symbols = nil
	p.errs = nil

	source, screenErrs := p.screen(in)
	p.errs = append(p.errs, screenErrs...)

	if len(screenErrs) > 0 {
		p.log.Error("syntax screen failed", "errors", len(screenErrs))
		return
	}

	tokens, lexErrs := p.lexer.Lex(source)
	p.tokens = tokens
	p.errs = append(p.errs, lexErrs...)

	if len(lexErrs) > 0 {
		p.log.Error("lexer failed", "errors", len(lexErrs))
		return
	}

	symbols, semErrs := p.checker.Check(tokens)
	p.symbols = symbols
	p.errs = append(p.errs, semErrs...)

	if len(semErrs) > 0 {
		p.log.Error("semantic check failed", "errors", len(semErrs))
		return
	}

	p.log.Info("parsed", "tokens", len(tokens), "symbols", len(symbols))
}

// screen reads in line by line, running the syntax screen over each. Lines that fail screening are
// blanked out (preserving line numbers) rather than dropped, so the lexer's line/column accounting
// for the surviving lines stays correct.
func (p *Parser) screen(in io.Reader) (string, []error) {
	var (
		out  strings.Builder
		errs []error
		n    int
	)

	scanner := bufio.NewScanner(in)

	for scanner.Scan() {
		n++
		line := scanner.Text()

		if _, err := Screen(n, line); err != nil {
			errs = append(errs, err)
			out.WriteByte('\n')

			continue
		}

		out.WriteString(line)
		out.WriteByte('\n')
	}

	return out.String(), errs
}

// Tokens returns the flat token stream produced by the lexer.
func (p *Parser) Tokens() []Token {
	return p.tokens
}

// Symbols returns the symbol table produced by the semantic checker.
func (p *Parser) Symbols() SymbolTable {
	return p.symbols
}

// Err returns the first error recorded during Parse, or nil if none occurred.
func (p *Parser) Err() error {
	if len(p.errs) == 0 {
		return nil
	}

	return p.errs[0]
}

// Errs returns every error recorded during Parse, across all stages that ran.
func (p *Parser) Errs() []error {
	return p.errs
}
