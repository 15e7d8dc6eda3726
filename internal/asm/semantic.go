package asm

// semantic.go is the single forward pass that resolves label addresses, validates operand kinds
// and ranges, and produces the symbol table the encoder needs for its second pass.

import (
	"fmt"

	"github.com/coriolis-labs/lc3/internal/vm"
)

// OperandKind classifies what an instruction or directive expects in a given operand position.
type OperandKind uint8

const (
	OperandReg OperandKind = iota
	OperandLabel
	OperandImm
	OperandRegOrImm
	OperandString
)

// Symbol is a resolved label: its memory address and the token that defined it.
type Symbol struct {
	Addr  vm.Word
	Token Token
}

// SymbolTable maps label name (case-sensitive) to its resolved Symbol.
type SymbolTable map[string]Symbol

// Offset computes the PC-relative offset from pc (the address of the instruction *after* the one
// referencing sym) to sym's address, and range-checks it against an n-bit two's-complement field.
func (st SymbolTable) Offset(sym string, pc vm.Word, n uint8) (vm.Word, error) {
	entry, ok := st[sym]
	if !ok {
		return 0, fmt.Errorf("undefined label %q", sym)
	}

	delta := int32(entry.Addr) - int32(pc)
	lo, hi := -(int32(1) << (n - 1)), int32(1)<<(n-1)-1

	if delta < lo || delta > hi {
		return 0, fmt.Errorf("offset %d out of range for %d-bit field", delta, n)
	}

	bottom := vm.Word(^(int16(-1) << n))

	return vm.Word(delta) & bottom, nil
}

// immediateWidth is the two's-complement field width, in bits, used for range checks.
var immediateWidth = map[Op]uint8{
	OpADD: 5,
	OpAND: 5,
	OpLDR: 6,
	OpSTR: 6,
	OpBR:  9,
	OpLD:  9,
	OpLDI: 9,
	OpLEA: 9,
	OpST:  9,
	OpSTI: 9,
	OpJSR: 11,
}

// operandKinds returns the FIFO of operand kinds expected for an instruction token.
func operandKinds(t Token) []OperandKind {
	switch t.Op {
	case OpADD, OpAND:
		return []OperandKind{OperandReg, OperandReg, OperandRegOrImm}
	case OpBR, OpJSR:
		return []OperandKind{OperandLabel}
	case OpJMP, OpJSRR:
		return []OperandKind{OperandReg}
	case OpLD, OpLDI, OpLEA, OpST, OpSTI:
		return []OperandKind{OperandReg, OperandLabel}
	case OpLDR, OpSTR:
		return []OperandKind{OperandReg, OperandReg, OperandImm}
	case OpNOT:
		return []OperandKind{OperandReg, OperandReg}
	case OpRET, OpRTI, OpTRAP:
		return nil
	default:
		return nil
	}
}

// directiveKinds returns the FIFO of operand kinds expected for a directive token.
func directiveKinds(d Dir) []OperandKind {
	switch d {
	case DirORIG, DirFILL, DirBLKW:
		return []OperandKind{OperandImm}
	case DirSTRINGZ:
		return []OperandKind{OperandString}
	case DirEND:
		return nil
	default:
		return nil
	}
}

// Checker runs the semantic pass over a token stream.
type Checker struct {
	pc          vm.Word
	symbols     SymbolTable
	usedLabels  map[string][]Token
	errs        []error
	sawOrig     bool
	sawEnd      bool
	checkedHead bool
}

// NewChecker creates a Checker ready to run Check.
func NewChecker() *Checker {
	return &Checker{
		symbols:    SymbolTable{},
		usedLabels: map[string][]Token{},
	}
}

// Check walks tokens once, returning the resolved symbol table and any errors. The Checker may be
// reused: internal state resets on each call.
func (c *Checker) Check(tokens []Token) (SymbolTable, []error) {
	c.pc = 0
	c.symbols = SymbolTable{}
	c.usedLabels = map[string][]Token{}
	c.errs = nil
	c.sawOrig = false
	c.sawEnd = false
	c.checkedHead = false

	if len(tokens) == 0 {
		c.fail(&LogicalError{SourceCode: CodeLogicalEmpty, Line: 0, Msg: "empty token stream"})
		return c.symbols, c.errs
	}

	i := 0
	for i < len(tokens) {
		tok := tokens[i]

		switch tok.Kind {
		case KindLabel:
			i = c.defineLabel(tokens, i)
		case KindDirective:
			c.requireOrigFirst(tok, tok.Dir == DirORIG)
			i = c.consumeHead(tokens, i, nil, directiveKinds(tok.Dir))
		case KindInstruction:
			c.requireOrigFirst(tok, false)
			i = c.consumeHead(tokens, i, nil, operandKinds(tok))
		case KindInvalid:
			i++
		default:
			c.fail(&OperandError{
				Line: tok.Span.Line, LineText: tok.Span.Text,
				Msg: fmt.Sprintf("unexpected token %s outside of an instruction or directive", tok),
			})
			i++
		}
	}

	if !c.sawOrig && !c.checkedHead {
		c.fail(&LogicalError{SourceCode: CodeLogicalOrig, Msg: ".ORIG directive never seen"})
	}

	if !c.sawEnd {
		c.fail(&LogicalError{SourceCode: CodeLogicalEnd, Msg: ".END directive never seen"})
	}

	for name, refs := range c.usedLabels {
		if _, ok := c.symbols[name]; !ok {
			for _, ref := range refs {
				c.fail(&LabelError{
					SourceCode: CodeLabelUndefined, Line: ref.Span.Line, LineText: ref.Span.Text,
					Label: name, Msg: fmt.Sprintf("undefined label %q", name),
				})
			}
		}
	}

	return c.symbols, c.errs
}

// requireOrigFirst checks, once, that the first meaningful head token (directive or instruction)
// is .ORIG. Later calls are no-ops: only the first meaningful head token matters.
func (c *Checker) requireOrigFirst(tok Token, isOrig bool) {
	if c.checkedHead {
		return
	}

	c.checkedHead = true

	if !isOrig {
		c.fail(&LogicalError{
			SourceCode: CodeLogicalOrig, Line: tok.Span.Line, LineText: tok.Span.Text,
			Msg: ".ORIG must be the first meaningful token",
		})
	}
}

// defineLabel records a label token appearing in head position and continues with whatever head
// follows it on the same logical line.
func (c *Checker) defineLabel(tokens []Token, i int) int {
	label := tokens[i]

	if _, dup := c.symbols[label.Text]; dup {
		c.fail(&LabelError{
			SourceCode: CodeLabelRedefined, Line: label.Span.Line, LineText: label.Span.Text,
			Label: label.Text, Msg: fmt.Sprintf("label %q redefined", label.Text),
		})
	} else {
		c.symbols[label.Text] = Symbol{Addr: c.pc, Token: label}
	}

	i++

	if i >= len(tokens) {
		return i
	}

	next := tokens[i]

	switch next.Kind {
	case KindDirective:
		c.requireOrigFirst(next, next.Dir == DirORIG)
		return c.consumeHead(tokens, i, &label, directiveKinds(next.Dir))
	case KindInstruction:
		c.requireOrigFirst(next, false)
		return c.consumeHead(tokens, i, &label, operandKinds(next))
	default:
		return i
	}
}

// consumeHead consumes the operands for the head token at i (an instruction or directive),
// advances pc, and returns the index of the token following the consumed operands.
func (c *Checker) consumeHead(tokens []Token, i int, _ *Token, expected []OperandKind) int {
	head := tokens[i]
	i++

	var operands []Token

	for _, kind := range expected {
		// A label on the head's own line is an operand; any other head-kind token starts a new line.
		sameLineLabel := i < len(tokens) && tokens[i].Kind == KindLabel && tokens[i].Span.Line == head.Span.Line
		if i >= len(tokens) || (isHead(tokens[i]) && !sameLineLabel) {
			c.fail(&OperandError{
				Line: head.Span.Line, LineText: head.Span.Text,
				Msg: fmt.Sprintf("missing operand for %s", head),
			})

			break
		}

		if err := c.checkOperand(head, tokens[i], kind); err != nil {
			c.fail(err)
		}

		operands = append(operands, tokens[i])
		i++
	}

	c.advance(head, operands)

	return i
}

func isHead(t Token) bool {
	return t.Kind == KindLabel || t.Kind == KindInstruction || t.Kind == KindDirective
}

// checkOperand validates a single operand's kind and, for numeric operands, its range.
func (c *Checker) checkOperand(head, operand Token, kind OperandKind) error {
	switch kind {
	case OperandReg:
		if operand.Kind != KindRegister {
			return &OperandError{
				Line: operand.Span.Line, LineText: operand.Span.Text,
				Msg: fmt.Sprintf("expected register, got %s", operand),
			}
		}
	case OperandLabel:
		if operand.Kind != KindLabel {
			return &OperandError{
				Line: operand.Span.Line, LineText: operand.Span.Text,
				Msg: fmt.Sprintf("expected label, got %s", operand),
			}
		}

		c.usedLabels[operand.Text] = append(c.usedLabels[operand.Text], operand)
	case OperandImm:
		if operand.Kind != KindNumber {
			return &OperandError{
				Line: operand.Span.Line, LineText: operand.Span.Text,
				Msg: fmt.Sprintf("expected immediate, got %s", operand),
			}
		}

		return c.checkRange(head, operand)
	case OperandRegOrImm:
		if operand.Kind == KindRegister {
			return nil
		} else if operand.Kind != KindNumber {
			return &OperandError{
				Line: operand.Span.Line, LineText: operand.Span.Text,
				Msg: fmt.Sprintf("expected register or immediate, got %s", operand),
			}
		}

		return c.checkRange(head, operand)
	case OperandString:
		if operand.Kind != KindString {
			return &OperandError{
				Line: operand.Span.Line, LineText: operand.Span.Text,
				Msg: fmt.Sprintf("expected string, got %s", operand),
			}
		}
	}

	return nil
}

// checkRange validates a numeric operand against the immediate width of its instruction. .ORIG,
// .FILL, and .BLKW use the full 16-bit architectural range instead of an instruction field width.
func (c *Checker) checkRange(head, operand Token) error {
	if head.Kind == KindDirective {
		if head.Dir == DirBLKW && operand.Number < 0 {
			return &BoundError{
				Line: operand.Span.Line, LineText: operand.Span.Text,
				Value: operand.Number, Width: 16, Msg: ".BLKW count must not be negative",
			}
		}

		return nil
	}

	width, ok := immediateWidth[head.Op]
	if !ok {
		return nil
	}

	lo, hi := -(int32(1) << (width - 1)), int32(1)<<(width-1)-1
	if int32(operand.Number) < lo || int32(operand.Number) > hi {
		return &BoundError{
			Line: operand.Span.Line, LineText: operand.Span.Text,
			Value: operand.Number, Width: width,
			Msg: fmt.Sprintf("value %d does not fit in %d-bit field", operand.Number, width),
		}
	}

	return nil
}

// advance moves pc past the head token according to the address-advancement rules: instructions
// and .FILL advance by one, .BLKW by n, .STRINGZ by the NUL-terminated code-unit length of its
// string operand, .ORIG sets pc from its operand, and .END does not advance.
func (c *Checker) advance(head Token, operands []Token) {
	switch head.Kind {
	case KindInstruction:
		c.pc++
	case KindDirective:
		switch head.Dir {
		case DirORIG:
			c.sawOrig = true

			if len(operands) == 1 {
				c.pc = vm.Word(uint16(operands[0].Number))
			}
		case DirFILL:
			c.pc++
		case DirBLKW:
			if len(operands) == 1 {
				c.pc += vm.Word(operands[0].Number)
			}
		case DirSTRINGZ:
			if len(operands) == 1 {
				c.pc += vm.Word(len([]rune(operands[0].Text))) + 1 // +1 for the NUL terminator
			}
		case DirEND:
			c.sawEnd = true
		}
	}
}

func (c *Checker) fail(err error) {
	c.errs = append(c.errs, err)
}
