package asm

// syntax.go is the syntax screen: a line-level regex classifier that rejects obviously malformed
// lines before the lexer runs. It never mutates state and never resolves symbols; it only gates
// what reaches the lexer.

import (
	"regexp"
)

// LineKind identifies the shape of a source line.
type LineKind uint8

const (
	LineIgnorable LineKind = iota
	LineDirective
	LineInstruction
)

var (
	identifier = `[A-Za-z_][A-Za-z0-9_]*`
	reg        = `[Rr][0-7]`
	imm        = `#-?[0-9]+|[xX][-]?[0-9A-Fa-f]+`
	operand    = `(?:` + reg + `|` + imm + `|` + identifier + `)`
	str        = `"(?:[^"\\]|\\.)*"?`

	commentPattern     = regexp.MustCompile(`^\s*;.*$`)
	blankPattern       = regexp.MustCompile(`^\s*$`)
	labelPrefix        = `(?:(` + identifier + `)\s+)?`
	directiveLine      = regexp.MustCompile(`^\s*` + labelPrefix + `(\.[A-Za-z]+)(?:\s+(` + operand + `|` + str + `))?\s*(;.*)?$`)
	instructionLine    = regexp.MustCompile(`^\s*` + labelPrefix + `([A-Za-z]+)(?:\s+(` + operand + `(?:\s*,\s*` + operand + `){0,2}))?\s*(;.*)?$`)
)

// Screen classifies a single line of source, returning its LineKind. A line matching neither
// LineDirective nor LineInstruction nor being blank/comment-only is a SyntaxError.
func Screen(lineNo int, line string) (LineKind, error) {
	switch {
	case blankPattern.MatchString(line), commentPattern.MatchString(line):
		return LineIgnorable, nil
	case directiveLine.MatchString(line):
		return LineDirective, nil
	case instructionLine.MatchString(line):
		return LineInstruction, nil
	default:
		return LineIgnorable, &SyntaxError{
			SourceCode: CodeSyntaxGeneric,
			Line:       lineNo,
			LineText:   line,
			Msg:        "line does not match any recognised shape",
		}
	}
}
