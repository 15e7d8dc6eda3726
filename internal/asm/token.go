// token.go defines the lexical tokens produced by the lexer and consumed by the semantic checker
// and encoder.
package asm

import (
	"fmt"

	"github.com/coriolis-labs/lc3/internal/vm"
)

// Kind identifies the syntactic category of a Token.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindLabel
	KindInstruction
	KindDirective
	KindNumber
	KindRegister
	KindString
)

//go:generate stringer -type=Kind

// Op identifies an instruction mnemonic. BR carries its condition flags and TRAP its vector inline
// so a single token fully describes the operation.
type Op uint8

const (
	OpADD Op = iota
	OpAND
	OpBR
	OpJMP
	OpJSR
	OpJSRR
	OpLD
	OpLDI
	OpLDR
	OpLEA
	OpNOT
	OpRET
	OpRTI
	OpST
	OpSTI
	OpSTR
	OpTRAP
)

//go:generate stringer -type=Op

// Dir identifies an assembler directive.
type Dir uint8

const (
	DirORIG Dir = iota
	DirFILL
	DirBLKW
	DirSTRINGZ
	DirEND
)

//go:generate stringer -type=Dir

// Span locates a token in the source: the 1-based line number, the column range relative to the
// start of that line, the byte range relative to the start of the file, and the original lexeme.
type Span struct {
	Line           int
	LineFrom, LineTo int
	From, To       int
	Text           string
}

// Token is a single lexical unit of LC-3 assembly source, tagged by Kind with variant-specific
// payload fields. Only the fields relevant to Kind are meaningful; the rest are zero.
type Token struct {
	Kind Kind
	Span Span

	// KindInstruction
	Op  Op
	N, Z, P bool // BR condition flags
	Vec vm.Word  // TRAP vector

	// KindDirective
	Dir Dir

	// KindNumber
	Number int16

	// KindRegister
	Reg vm.GPR

	// KindLabel, KindString, KindInvalid
	Text string
}

func (t Token) String() string {
	switch t.Kind {
	case KindLabel:
		return fmt.Sprintf("LABEL(%s)", t.Text)
	case KindInstruction:
		if t.Op == OpBR {
			return fmt.Sprintf("BR(n=%t,z=%t,p=%t)", t.N, t.Z, t.P)
		} else if t.Op == OpTRAP {
			return fmt.Sprintf("TRAP(%s)", t.Vec)
		}
		return fmt.Sprintf("INSTR(%s)", t.Op)
	case KindDirective:
		return fmt.Sprintf("DIR(%s)", t.Dir)
	case KindNumber:
		return fmt.Sprintf("NUM(%d)", t.Number)
	case KindRegister:
		return fmt.Sprintf("REG(R%d)", t.Reg)
	case KindString:
		return fmt.Sprintf("STR(%q)", t.Text)
	default:
		return fmt.Sprintf("INVALID(%q)", t.Text)
	}
}

// trapVectors maps recognised trap mnemonic aliases to their fixed vector.
var trapVectors = map[string]vm.Word{
	"GETC": 0x20,
	"OUT":  0x21,
	"PUTS": 0x22,
	"IN":   0x23,
	"HALT": 0x25,
}

// mnemonics maps an instruction mnemonic (upper-cased, BR suffix stripped) to its Op.
var mnemonics = map[string]Op{
	"ADD":  OpADD,
	"AND":  OpAND,
	"BR":   OpBR,
	"JMP":  OpJMP,
	"JSR":  OpJSR,
	"JSRR": OpJSRR,
	"LD":   OpLD,
	"LDI":  OpLDI,
	"LDR":  OpLDR,
	"LEA":  OpLEA,
	"NOT":  OpNOT,
	"RET":  OpRET,
	"RTI":  OpRTI,
	"ST":   OpST,
	"STI":  OpSTI,
	"STR":  OpSTR,
}

// directives maps a directive keyword (including the leading dot, upper-cased) to its Dir.
var directives = map[string]Dir{
	".ORIG":    DirORIG,
	".FILL":    DirFILL,
	".BLKW":    DirBLKW,
	".STRINGZ": DirSTRINGZ,
	".END":     DirEND,
}
