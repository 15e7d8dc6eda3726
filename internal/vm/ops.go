package vm

// ops.go defines the CPU operations and their semantics.

import (
	"errors"
	"fmt"
)

// An Opcode identifies the instruction to be executed by the CPU. The ISA has 15 distinct
// opcodes, plus one reserved value that is undefined.
type Opcode uint16

// Opcode constants.
const (
	BR Opcode = iota
	ADD
	LD
	ST
	JSR
	AND
	LDR
	STR
	RTI
	NOT
	LDI
	STI
	JMP
	RESV
	LEA
	TRAP

	// Two synthetic opcodes used for printing special cases of the above.
	JSRR = Opcode(JSR | 0x0f00)
	RET  = Opcode(JMP | 0x0f00)
)

func (op Opcode) String() string {
	switch op {
	case BR:
		return "BR"
	case ADD:
		return "ADD"
	case LD:
		return "LD"
	case ST:
		return "ST"
	case JSR:
		return "JSR"
	case AND:
		return "AND"
	case LDR:
		return "LDR"
	case STR:
		return "STR"
	case RTI:
		return "RTI"
	case NOT:
		return "NOT"
	case LDI:
		return "LDI"
	case STI:
		return "STI"
	case JMP:
		return "JMP"
	case RESV:
		return "RESV"
	case LEA:
		return "LEA"
	case TRAP:
		return "TRAP"
	default:
		return fmt.Sprintf("OP(%#x)", uint16(op))
	}
}

type mo struct {
	vm  *LC3
	err error
}

func (op mo) Err() error      { return op.err }
func (op *mo) Fail(err error) { op.err = err }

func (op mo) String() string {
	return fmt.Sprintf("ins: %s", op.vm.IR.Opcode())
}

// BR: Conditional branch
//
// | 0000 | NZP | OFFSET9 |
// |------+-----+---------|
// |15  12|11  9|8       0|
type br struct {
	mo
	cond   Condition
	offset Word
}

func (op br) String() string {
	return fmt.Sprintf("%s[cond:%s offset:%s]", op.mo.String(), op.cond.String(), op.offset.String())
}

var _ executable = &br{}

func (op *br) Decode(vm *LC3) {
	*op = br{
		mo:     mo{vm: vm},
		cond:   vm.IR.Cond(),
		offset: vm.IR.Offset(OFFSET9),
	}
}

func (op *br) Execute() {
	if op.cond == 0 {
		return // nzp=000 is a no-op, not an unconditional branch.
	}

	if op.vm.PSR.Any(op.cond) {
		op.vm.PC = ProgramCounter(int16(op.vm.PC) + int16(op.offset))
	}
}

// NOT: Bitwise complement operation
//
// | 1001 | DR | SR | 1 | 1 1111 |
// |------+----+----+---+--------|
// |15  12|11 9|8  6| 5 |4      0|
type not struct {
	mo
	dr GPR
	sr GPR
}

var _ executable = &not{}

func (op *not) Decode(vm *LC3) {
	*op = not{
		mo: mo{vm: vm},
		sr: vm.IR.SR1(),
		dr: vm.IR.DR(),
	}
}

func (op *not) Execute() {
	op.vm.REG[op.dr] = op.vm.REG[op.sr] ^ 0xffff
	op.vm.PSR.Set(op.vm.REG[op.dr])
}

// AND: Bitwise AND binary operator (registers)
//
// | 0101 | DR | SR1 | 0 | 00 | SR2 |
// |------+----+-----+---+----+-----|
// |15  12|11 9|8   6| 5 |4  3|2   0|
//
// | 0101 | DR  | SR | 1 | IMM5 | (immediate)
// |------+-----+----+---+------|
// |15  12|11  9|8  6| 5 |4    0|
type and struct {
	mo
	dest GPR
	sr1  GPR
	sr2  GPR
}

func (op *and) String() string {
	return fmt.Sprintf("%s[dr:R%d sr1:R%d sr2:R%d]", op.mo.String(), op.dest, op.sr1, op.sr2)
}

func (a *and) Decode(vm *LC3) {
	*a = and{
		mo:   mo{vm: vm},
		dest: vm.IR.DR(),
		sr1:  vm.IR.SR1(),
		sr2:  vm.IR.SR2(),
	}
}

func (op *and) Execute() {
	op.vm.REG[op.dest] = op.vm.REG[op.sr1]
	op.vm.REG[op.dest] &= op.vm.REG[op.sr2]
	op.vm.PSR.Set(op.vm.REG[op.dest])
}

type andImm struct {
	mo
	dr  GPR
	sr  GPR
	lit Word
}

func (op *andImm) String() string {
	return fmt.Sprintf("%s[dr:R%d sr:R%d lit:%s]", op.mo.String(), op.dr, op.sr, op.lit)
}

func (a *andImm) Decode(vm *LC3) {
	*a = andImm{
		mo:  mo{vm: vm},
		dr:  vm.IR.DR(),
		sr:  vm.IR.SR1(),
		lit: vm.IR.Literal(IMM5),
	}
}

func (op *andImm) Execute() {
	op.vm.REG[op.dr] = op.vm.REG[op.sr] & Register(op.lit)
	op.vm.PSR.Set(op.vm.REG[op.dr])
}

// ADD: Arithmetic addition operator
//
// | 0001 | DR | SR1 | 000 | SR2 |  (register mode)
// |------+----+-----+-----+-----|
// |15  12|11 9|8   6| 5  3|2   0|
//
// ADD: Arithmetic addition operator (immediate mode)
//
// | 0001 | DR  | SR | 1 | 11111 |
// |------+-----+----+---+-------|
// |15  12|11  9|8  6| 5 |4     0|
type add struct {
	mo
	dr  GPR
	sr1 GPR
	sr2 GPR
}

var _ executable = &add{}

func (op *add) Decode(vm *LC3) {
	*op = add{
		mo:  mo{vm: vm},
		dr:  vm.IR.DR(),
		sr1: vm.IR.SR1(),
		sr2: vm.IR.SR2(),
	}
}

func (op *add) Execute() {
	op.vm.REG[op.dr] = Register(int16(op.vm.REG[op.sr1]) + int16(op.vm.REG[op.sr2]))
	op.vm.PSR.Set(op.vm.REG[op.dr])
}

type addImm struct {
	mo
	dr  GPR
	sr  GPR
	lit Word
}

var _ executable = &addImm{}

func (op *addImm) Decode(vm *LC3) {
	*op = addImm{
		mo:  mo{vm: vm},
		dr:  vm.IR.DR(),
		sr:  vm.IR.SR1(),
		lit: vm.IR.Literal(IMM5),
	}
}

func (op *addImm) Execute() {
	op.vm.REG[op.dr] = Register(int16(op.vm.REG[op.sr]) + int16(op.lit))
	op.vm.PSR.Set(op.vm.REG[op.dr])
}

// LD: Load word from memory.
//
// | 0010 | DR  | OFFSET9 |
// |------+-----+---------|
// |15  12|11  9|8       0|
type ld struct {
	mo
	dr     GPR
	offset Word
}

var (
	_ addressable = &ld{}
	_ fetchable   = &ld{}
)

func (op *ld) Decode(vm *LC3) {
	*op = ld{
		mo:     mo{vm: vm},
		dr:     vm.IR.DR(),
		offset: vm.IR.Offset(OFFSET9),
	}
}

func (op *ld) EvalAddress() {
	op.vm.Mem.MAR = Register(int16(op.vm.PC) + int16(op.offset))
}

func (op *ld) FetchOperands() {
	op.vm.REG[op.dr] = op.vm.Mem.MDR
}

func (op *ld) Execute() {
	op.vm.PSR.Set(op.vm.REG[op.dr])
}

// LDI: Load indirect
//
// | 1010 | DR | OFFSET9 |
// |------+--------------|
// |15  12|11 9|8       0|
type ldi struct {
	mo
	dr     GPR
	offset Word
}

var (
	_ addressable = &ldi{}
	_ fetchable   = &ldi{}
)

func (op *ldi) Decode(vm *LC3) {
	*op = ldi{
		mo:     mo{vm: vm},
		dr:     vm.IR.DR(),
		offset: vm.IR.Offset(OFFSET9),
	}
}

func (op *ldi) EvalAddress() {
	op.vm.Mem.MAR = Register(int16(op.vm.PC) + int16(op.offset))
}

func (op *ldi) FetchOperands() {
	op.vm.Mem.MAR = op.vm.Mem.MDR

	if err := op.vm.Mem.Fetch(); err != nil {
		op.Fail(err)
		return
	}

	op.vm.REG[op.dr] = op.vm.Mem.MDR
}

func (op *ldi) Execute() {
	op.vm.PSR.Set(op.vm.REG[op.dr])
}

func (op *ldi) String() string {
	return fmt.Sprintf("OP: LDI (R%d+%s)", op.dr, op.offset)
}

// LDR: Load Relative
//
// | 0110 | DR | BASE | OFFSET6 |
// |------+----+------+---------|
// |15  12|11 9|8    6|5       0|
type ldr struct {
	mo
	dr     GPR
	base   GPR
	offset Word
}

var (
	_ addressable = &ldr{}
	_ fetchable   = &ldr{}
)

func (op *ldr) Decode(vm *LC3) {
	*op = ldr{
		mo:     mo{vm: vm},
		dr:     vm.IR.DR(),
		base:   vm.IR.SR1(),
		offset: vm.IR.Offset(OFFSET6),
	}
}

func (op *ldr) EvalAddress() {
	op.vm.Mem.MAR = Register(int16(op.vm.REG[op.base]) + int16(op.offset))
}

func (op *ldr) FetchOperands() {
	op.vm.REG[op.dr] = op.vm.Mem.MDR
}

func (op *ldr) Execute() {
	op.vm.PSR.Set(op.vm.REG[op.dr])
}

// LEA: Load effective address. Unlike most DR-writing instructions, LEA does not touch the
// condition flags in the revised LC-3 ISA this simulator targets.
//
// | 1110 | DR | OFFSET9 |
// |------+--------------|
// |15  12|11 9|8       0|
type lea struct {
	mo
	dr     GPR
	offset Word
}

var _ addressable = &lea{}

func (op *lea) Decode(vm *LC3) {
	*op = lea{
		mo:     mo{vm: vm},
		dr:     vm.IR.DR(),
		offset: vm.IR.Offset(OFFSET9),
	}
}

func (op *lea) EvalAddress() {
	op.vm.Mem.MAR = Register(int16(op.vm.PC) + int16(op.offset))
	op.vm.REG[op.dr] = op.vm.Mem.MAR
}

// ST: Store word in memory.
//
// | 0011 | SR  | OFFSET9 |
// |------+-----+---------|
// |15  12|11  9|8       0|
type st struct {
	mo
	sr     GPR
	offset Word
}

var (
	_ addressable = &st{}
	_ storable    = &st{}
)

func (op *st) Decode(vm *LC3) {
	*op = st{
		mo:     mo{vm: vm},
		sr:     vm.IR.SR(),
		offset: vm.IR.Offset(OFFSET9),
	}
}

func (op *st) EvalAddress() {
	op.vm.Mem.MAR = Register(int16(op.vm.PC) + int16(op.offset))
}

func (op *st) StoreResult() {
	op.vm.Mem.MDR = op.vm.REG[op.sr]
}

// STI: Store Indirect.
//
// | 1011 | SR  | OFFSET9 |
// |------+-----+---------|
// |15  12|11  9|8       0|
type sti struct {
	mo
	sr     GPR
	offset Word
}

var (
	_ addressable = &sti{}
	_ fetchable   = &sti{}
	_ storable    = &sti{}
)

func (op *sti) Decode(vm *LC3) {
	*op = sti{
		mo:     mo{vm: vm},
		sr:     vm.IR.SR(),
		offset: vm.IR.Offset(OFFSET9),
	}
}

func (op *sti) EvalAddress() {
	op.vm.Mem.MAR = Register(int16(op.vm.PC) + int16(op.offset))
}

func (op *sti) FetchOperands() {
	op.vm.Mem.MAR = op.vm.Mem.MDR
}

func (op *sti) StoreResult() {
	op.vm.Mem.MDR = op.vm.REG[op.sr]
}

// STR: Store Relative.
//
// | 0111 | SR | GPR | OFFSET6 |
// |------+----+-----+---------|
// |15  12|11 9|8   6|5       0|
type str struct {
	mo
	sr     GPR
	base   GPR
	offset Word
}

var (
	_ addressable = &str{}
	_ storable    = &str{}
)

func (op *str) Decode(vm *LC3) {
	*op = str{
		mo:     mo{vm: vm},
		sr:     vm.IR.SR(),
		base:   vm.IR.SR1(),
		offset: vm.IR.Offset(OFFSET6),
	}
}

func (op *str) EvalAddress() {
	op.vm.Mem.MAR = Register(int16(op.vm.REG[op.base]) + int16(op.offset))
}

func (op *str) StoreResult() {
	op.vm.Mem.MDR = op.vm.REG[op.sr]
}

// JMP: Unconditional branch
//
// | 1100 | 000 | SR | 00 00000 |
// |------+-----+----+----------|
// |15  12|11  9|8  6|5        0|
//
// RET: Return from subroutine
//
// | 1100 | 000 | 111 | 00 00000 |
// |------+-----+-----+----------|
// |15  12|11  9|8   6|5        0|
type jmp struct {
	mo
	sr GPR
}

var _ executable = &jmp{}

func (op *jmp) Decode(vm *LC3) {
	*op = jmp{
		mo: mo{vm: vm},
		sr: vm.IR.SR1(),
	}
}

func (op *jmp) Execute() {
	op.vm.PC = ProgramCounter(op.vm.REG[op.sr])
}

// JSR: Jump to subroutine (relative mode)
//
// | 0100 |  1 | OFFSET11 |
// |------+----+----------|
// |15  12| 11 |10       0|
//
// JSRR: Jump to subroutine (register mode)
//
// | 0100 |  0 | SR | 00 0000 |
// |------+----+----+---------|
// |15  12| 11 |8  6|5       0|
type jsr struct {
	mo
	offset Word
}

var _ executable = &jsr{}

func (op *jsr) Decode(vm *LC3) {
	*op = jsr{
		mo:     mo{vm: vm},
		offset: Word(vm.IR & 0x07ff),
	}
	op.offset.Sext(11)
}

func (op *jsr) Execute() {
	op.vm.REG[RETP] = Register(op.vm.PC)
	op.vm.PC = ProgramCounter(int16(op.vm.PC) + int16(op.offset))
}

type jsrr struct {
	mo
	sr GPR
}

var _ executable = &jsrr{}

func (op *jsrr) Decode(vm *LC3) {
	*op = jsrr{
		mo: mo{vm: vm},
		sr: vm.IR.SR1(),
	}
}

func (op *jsrr) Execute() {
	op.vm.REG[RETP] = Register(op.vm.PC)
	op.vm.PC = ProgramCounter(op.vm.REG[op.sr])
}

// Trap vectors implemented by this subset of the architecture.
const (
	TrapGETC Word = 0x20
	TrapOUT  Word = 0x21
	TrapPUTS Word = 0x22
	TrapIN   Word = 0x23
	TrapHALT Word = 0x25
)

// TrapError reports a TRAP to an unimplemented vector.
type TrapError struct {
	Vec Word
}

func (e *TrapError) Error() string {
	return fmt.Sprintf("trap: unimplemented vector %s", e.Vec)
}

// TRAP: System call.
//
// | 1111 | 0000 | VECTOR8 |
// |------+------+---------|
// |15  12|11   8|7       0|
//
// Traps are dispatched directly to the machine's IO capability. The base LC-3 ISA routes TRAP
// through a vector table of service routine addresses loaded at boot; this simulator drops that
// indirection since it does not implement privileged code or the supervisor/user stack switch the
// real routines rely on.
type trap struct {
	mo
	vec Word
}

func (op *trap) String() string {
	return fmt.Sprintf("TRAP: %s", op.vec)
}

var _ executable = &trap{}

func (op *trap) Decode(vm *LC3) {
	*op = trap{
		mo:  mo{vm: vm},
		vec: vm.IR.Vector(VECTOR8),
	}
}

func (op *trap) Execute() {
	switch op.vec {
	case TrapGETC:
		b, err := op.vm.IO.ReadByte()
		if err != nil {
			op.Fail(fmt.Errorf("trap getc: %w", err))
			return
		}

		op.vm.REG[R0] = Register(b)

	case TrapOUT:
		if err := op.vm.IO.WriteByte(byte(op.vm.REG[R0])); err != nil {
			op.Fail(fmt.Errorf("trap out: %w", err))
		}

	case TrapPUTS:
		addr := Word(op.vm.REG[R0])

		for {
			word := op.vm.Mem.cell[addr]
			if word == 0 {
				break
			}

			if err := op.vm.IO.WriteByte(byte(word)); err != nil {
				op.Fail(fmt.Errorf("trap puts: %w", err))
				return
			}

			addr++
		}

	case TrapIN:
		const prompt = "Input a character: "

		for i := 0; i < len(prompt); i++ {
			if err := op.vm.IO.WriteByte(prompt[i]); err != nil {
				op.Fail(fmt.Errorf("trap in: %w", err))
				return
			}
		}

		b, err := op.vm.IO.ReadByte()
		if err != nil {
			op.Fail(fmt.Errorf("trap in: %w", err))
			return
		}

		op.vm.REG[R0] = Register(b)

		if err := op.vm.IO.WriteByte(b); err != nil {
			op.Fail(fmt.Errorf("trap in: echo: %w", err))
		}

	case TrapHALT:
		op.vm.MCR &^= ControlRunning

	default:
		op.Fail(&TrapError{Vec: op.vec})
	}
}

// RTI: Return from trap or interrupt. This build does not implement privileged execution, the
// supervisor stack, or an interrupt vector table, so RTI has nothing to return from: it is
// always a fatal fault.
//
// | 1000 | 0000 0000 0000 |
// |------+----------------|
// |15  12|11             0|
type rti struct{ mo }

var _ executable = &rti{}

func (op *rti) Decode(vm *LC3) {
	op.vm = vm
}

func (op *rti) Execute() {
	op.Fail(ErrRTI)
}

// ErrRTI is returned when RTI is executed. This subset of the architecture has no privileged mode
// for RTI to return from, so it always faults.
var ErrRTI = errors.New("rti: illegal outside of an interrupt or exception handler")

// RESV: Reserved opcode.
//
// | 1101 | 0000 0000 0000 |
// |------+----------------|
// |15  12|11             0|
type resv struct{ mo }

var _ executable = &resv{}

func (op *resv) Decode(vm *LC3) {
	op.vm = vm
}

func (op *resv) Execute() {
	op.Fail(ErrReserved)
}
