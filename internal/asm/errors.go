package asm

// errors.go defines the five assembler error kinds. Each records the line number and text of the
// offending source line. SyntaxError, LabelError and LogicalError carry their own stable code;
// OperandError always reports CodeOperandKind and BoundError always reports CodeBoundNumber.
// SyntaxError and OperandError have From/To column fields, which the passes leave at zero. Error
// renders
//
//	[CODE] Kind: on line N, message
//		line contents
//
// and no caret underline is produced.

import "fmt"

// Code is a stable, short diagnostic identifier, independent of the human-readable message.
type Code string

const (
	CodeSyntaxGeneric   Code = "SX000"
	CodeSyntaxString    Code = "SX010"
	CodeSyntaxToken     Code = "SX020"
	CodeOperandKind     Code = "SM010"
	CodeOperandMissing  Code = "SM011"
	CodeLabelRedefined  Code = "SM005"
	CodeLabelUndefined  Code = "SM014"
	CodeLogicalOrig     Code = "SM020"
	CodeLogicalEnd      Code = "SM021"
	CodeLogicalEmpty    Code = "SM022"
	CodeBoundNumber     Code = "SM015"
)

// SyntaxError is reported by the syntax screen and the lexer for malformed input that cannot be
// classified at all: an unmatched line shape, an unterminated string, or an unrecognisable token.
type SyntaxError struct {
	SourceCode Code
	Line       int
	LineText   string
	From, To   int
	Msg        string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("[%s] SyntaxError: on line %d, %s\n\t%s", e.SourceCode, e.Line, e.Msg, e.LineText)
}

func (e *SyntaxError) Is(target error) bool {
	_, ok := target.(*SyntaxError)
	return ok
}

// OperandError is reported by the semantic checker when a token appears where an operand of a
// different kind, or no operand at all, was expected.
type OperandError struct {
	Line     int
	LineText string
	From, To int
	Msg      string
}

func (e *OperandError) Error() string {
	return fmt.Sprintf("[%s] OperandError: on line %d, %s\n\t%s", CodeOperandKind, e.Line, e.Msg, e.LineText)
}

func (e *OperandError) Is(target error) bool {
	_, ok := target.(*OperandError)
	return ok
}

// LabelError is reported for duplicate definitions and references to undefined labels.
type LabelError struct {
	SourceCode Code
	Line       int
	LineText   string
	Label      string
	Msg        string
}

func (e *LabelError) Error() string {
	return fmt.Sprintf("[%s] LabelError: on line %d, %s\n\t%s", e.SourceCode, e.Line, e.Msg, e.LineText)
}

func (e *LabelError) Is(target error) bool {
	_, ok := target.(*LabelError)
	return ok
}

// LogicalError is reported for structural violations: a missing or misplaced .ORIG, a missing
// .END, or an empty token stream.
type LogicalError struct {
	SourceCode Code
	Line       int
	LineText   string
	Msg        string
}

func (e *LogicalError) Error() string {
	return fmt.Sprintf("[%s] LogicalError: on line %d, %s\n\t%s", e.SourceCode, e.Line, e.Msg, e.LineText)
}

func (e *LogicalError) Is(target error) bool {
	_, ok := target.(*LogicalError)
	return ok
}

// BoundError is reported when a numeric operand does not fit in the immediate width of its
// instruction or directive.
type BoundError struct {
	Line     int
	LineText string
	Value    int16
	Width    uint8
	Msg      string
}

func (e *BoundError) Error() string {
	return fmt.Sprintf("[%s] BoundError: on line %d, %s\n\t%s", CodeBoundNumber, e.Line, e.Msg, e.LineText)
}

func (e *BoundError) Is(target error) bool {
	_, ok := target.(*BoundError)
	return ok
}
