package asm

// encoder.go is the second pass: given a semantically valid token stream and its resolved symbol
// table, emit the 16-bit words of the memory image.

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/coriolis-labs/lc3/internal/log"
	"github.com/coriolis-labs/lc3/internal/vm"
)

// Encoder walks a token stream a second time, with label addresses already known, and produces
// the instruction and data words of the memory image.
type Encoder struct {
	pc      vm.Word
	symbols SymbolTable
	tokens  []Token
	log     *log.Logger
}

// NewEncoder creates an Encoder for the given symbol table and token stream.
func NewEncoder(symbols SymbolTable, tokens []Token) *Encoder {
	return &Encoder{symbols: symbols, tokens: tokens, log: log.DefaultLogger()}
}

// Encode produces the origin address and the words that follow it. Precondition: tokens is
// semantically valid (the Checker reported no errors for it).
func (e *Encoder) Encode() (vm.ObjectCode, error) {
	var obj vm.ObjectCode

	i := 0
	for i < len(e.tokens) {
		tok := e.tokens[i]

		switch tok.Kind {
		case KindLabel:
			i++
		case KindDirective:
			words, consumed, err := e.encodeDirective(i)
			if err != nil {
				return obj, err
			}

			if tok.Dir == DirORIG {
				obj.Orig = e.pc
			} else {
				obj.Code = append(obj.Code, words...)
				e.pc += vm.Word(len(words))
			}

			i = consumed
		case KindInstruction:
			e.pc++ // pc-relative offsets target the address after this instruction

			word, consumed, err := e.encodeInstruction(i)
			if err != nil {
				return obj, err
			}

			obj.Code = append(obj.Code, word)
			i = consumed
		default:
			i++
		}
	}

	return obj, nil
}

// WriteTo writes the origin word followed by the data words, big-endian, with no header.
func (e *Encoder) WriteTo(out io.Writer) (int64, error) {
	obj, err := e.Encode()
	if err != nil {
		return 0, err
	}

	var buf bytes.Buffer

	if err := binary.Write(&buf, binary.BigEndian, obj.Orig); err != nil {
		return 0, err
	}

	if err := binary.Write(&buf, binary.BigEndian, obj.Code); err != nil {
		return int64(buf.Len()), err
	}

	n, err := out.Write(buf.Bytes())

	return int64(n), err
}

func (e *Encoder) encodeDirective(i int) ([]vm.Word, int, error) {
	head := e.tokens[i]
	i++

	switch head.Dir {
	case DirORIG:
		operand := e.tokens[i]
		e.pc = vm.Word(uint16(operand.Number))

		return nil, i + 1, nil
	case DirFILL:
		operand := e.tokens[i]

		return []vm.Word{vm.Word(uint16(operand.Number))}, i + 1, nil
	case DirBLKW:
		operand := e.tokens[i]
		n := operand.Number

		return make([]vm.Word, n), i + 1, nil
	case DirSTRINGZ:
		operand := e.tokens[i]
		runes := []rune(operand.Text)
		words := make([]vm.Word, len(runes)+1)

		for j, r := range runes {
			words[j] = vm.Word(r)
		}

		words[len(runes)] = 0 // NUL terminator

		return words, i + 1, nil
	case DirEND:
		return nil, i, nil
	default:
		return nil, i, fmt.Errorf("encoder: unknown directive %s", head.Dir)
	}
}

func (e *Encoder) encodeInstruction(i int) (vm.Word, int, error) {
	head := e.tokens[i]
	i++

	operands := operandKinds(head)
	args := e.tokens[i : i+len(operands)]
	i += len(operands)

	word, err := e.encode(head, args)

	return word, i, err
}

// encode computes the bit layout for a single instruction, per the project's documented encoding
// table. PC-relative fields are resolved through the symbol table using e.pc, the address of the
// instruction *following* this one.
func (e *Encoder) encode(head Token, args []Token) (vm.Word, error) {
	switch head.Op {
	case OpADD, OpAND:
		opcode := vm.AND
		if head.Op == OpADD {
			opcode = vm.ADD
		}

		dr, sr1 := args[0].Reg, args[1].Reg

		if args[2].Kind == KindRegister {
			return vm.NewInstruction(opcode, uint16(dr)<<9|uint16(sr1)<<6|uint16(args[2].Reg)).Encode(), nil
		}

		imm := vm.Word(uint16(args[2].Number))
		imm.Zext(5)

		return vm.NewInstruction(opcode, uint16(dr)<<9|uint16(sr1)<<6|0x0020|uint16(imm)).Encode(), nil

	case OpBR:
		offset, err := e.offsetOf(args[0], 9)
		if err != nil {
			return 0, err
		}

		nzp := b2i(head.N)<<2 | b2i(head.Z)<<1 | b2i(head.P)

		return vm.NewInstruction(vm.BR, uint16(nzp)<<9|uint16(offset)).Encode(), nil

	case OpJMP:
		return vm.NewInstruction(vm.JMP, uint16(args[0].Reg)<<6).Encode(), nil

	case OpRET:
		return vm.NewInstruction(vm.JMP, uint16(vm.RETP)<<6).Encode(), nil

	case OpJSR:
		offset, err := e.offsetOf(args[0], 11)
		if err != nil {
			return 0, err
		}

		return vm.NewInstruction(vm.JSR, 0x0800|uint16(offset)).Encode(), nil

	case OpJSRR:
		return vm.NewInstruction(vm.JSR, uint16(args[0].Reg)<<6).Encode(), nil

	case OpLD, OpLDI, OpLEA, OpST, OpSTI:
		offset, err := e.offsetOf(args[1], 9)
		if err != nil {
			return 0, err
		}

		opcode := map[Op]vm.Opcode{OpLD: vm.LD, OpLDI: vm.LDI, OpLEA: vm.LEA, OpST: vm.ST, OpSTI: vm.STI}[head.Op]

		return vm.NewInstruction(opcode, uint16(args[0].Reg)<<9|uint16(offset)).Encode(), nil

	case OpLDR, OpSTR:
		opcode := vm.LDR
		if head.Op == OpSTR {
			opcode = vm.STR
		}

		offset := vm.Word(uint16(args[2].Number))
		offset.Zext(6)

		return vm.NewInstruction(opcode, uint16(args[0].Reg)<<9|uint16(args[1].Reg)<<6|uint16(offset)).Encode(), nil

	case OpNOT:
		return vm.NewInstruction(vm.NOT, uint16(args[0].Reg)<<9|uint16(args[1].Reg)<<6|0x003f).Encode(), nil

	case OpRTI:
		return vm.NewInstruction(vm.RTI, 0).Encode(), nil

	case OpTRAP:
		return vm.NewInstruction(vm.TRAP, uint16(head.Vec)&0x00ff).Encode(), nil

	default:
		return 0, fmt.Errorf("encoder: unknown op %s", head.Op)
	}
}

// offsetOf resolves a label operand to a PC-relative offset, reporting range violations as a
// BoundError so callers can match on error kind uniformly with the semantic checker's.
func (e *Encoder) offsetOf(label Token, width uint8) (vm.Word, error) {
	offset, err := e.symbols.Offset(label.Text, e.pc, width)
	if err != nil {
		return 0, &BoundError{
			Line: label.Span.Line, LineText: label.Span.Text, Width: width,
			Msg: err.Error(),
		}
	}

	return offset, nil
}

func b2i(b bool) uint16 {
	if b {
		return 1
	}

	return 0
}
