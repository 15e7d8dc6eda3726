package vm

// vm.go defines the virtual machine and assembles it from smaller parts.

import (
	"fmt"
	"strings"

	"github.com/coriolis-labs/lc3/internal/log"
)

// LC3 is a computer simulated in software.
type LC3 struct {
	PC  ProgramCounter  // Instruction Pointer.
	IR  Instruction     // Instruction Register.
	PSR ProcessorStatus // Processor Status Register: condition flags only.
	MCR ControlRegister // Master Control Register: the RUN/HALT flag.
	REG RegisterFile    // General-purpose Register File.
	Mem Memory          // All the memory you'll ever need!

	IO IO // I/O capability used by GETC, OUT, PUTS, IN.

	log *log.Logger // A record of where we've been.
}

// New creates and initializes a virtual machine. Initial state can be adjusted by passing a
// sequence of OptionFn.
func New(opts ...OptionFn) *LC3 {
	vm := LC3{
		Mem: NewMemory(),
		IO:  NewStdIO(),
	}

	vm.initializeRegisters()
	vm.updateLogger(log.DefaultLogger())

	for _, fn := range opts {
		fn(&vm)
	}

	return &vm
}

func (vm *LC3) String() string {
	return fmt.Sprintf("PC:  %s IR:  %s \nPSR: %s MCR: %s\nMAR: %s MDR: %s",
		vm.PC.String(), vm.IR.String(), vm.PSR.String(), vm.MCR.String(),
		vm.Mem.MAR.String(), vm.Mem.MDR.String())
}

// initializeRegisters sets the initial values of the virtual machine.
func (vm *LC3) initializeRegisters() {
	// No condition codes are set initially, though this is architecturally undefined.
	vm.PSR = ProcessorStatus(0)

	vm.PC = 0 // Callers set PC to the image's origin before Run is called; Loader does not.
	vm.MCR = ControlRegister(0x8000) // Set the RUN flag.

	copy(vm.REG[:], []Register{
		0x0000, 0x0000,
		0x0000, 0x0000,
		0x0000, 0x0000,
		0x0000, 0x0000,
	})
}

// ProgramCounter is a special-purpose register that points to the next instruction in memory.
type ProgramCounter Register

func (p ProgramCounter) String() string {
	return Word(p).String()
}

// ProcessorStatus is a special-purpose register that records the CPU's condition flags.
//
// | 0000 0000 0000 0 | COND |
// +------------------+------+
// |15               3|2    0|
type ProcessorStatus Register

// Status flags in the PSR.
const (
	StatusPositive  ProcessorStatus = 0x0001
	StatusZero      ProcessorStatus = 0x0002
	StatusNegative  ProcessorStatus = 0x0004
	StatusCondition ProcessorStatus = StatusNegative | StatusZero | StatusPositive
)

func (ps ProcessorStatus) String() string {
	return fmt.Sprintf("%s (N:%t Z:%t P:%t)", Word(ps), ps.Negative(), ps.Zero(), ps.Positive())
}

// Cond returns the condition codes from the status register.
func (ps ProcessorStatus) Cond() Condition {
	return Condition(ps & StatusCondition)
}

// Any returns true if any of the flags in cond are set in the status register.
func (ps ProcessorStatus) Any(cond Condition) bool {
	return ps.Cond()&cond != 0
}

// Set sets the condition flags from the sign of a register value.
func (ps *ProcessorStatus) Set(reg Register) {
	*ps &= ^StatusCondition

	switch {
	case reg == 0:
		*ps |= StatusZero
	case int16(reg) > 0:
		*ps |= StatusPositive
	default:
		*ps |= StatusNegative
	}
}

// Positive returns true if the P flag is set.
func (ps ProcessorStatus) Positive() bool {
	return ps&StatusPositive != 0
}

// Negative returns true if the N flag is set.
func (ps ProcessorStatus) Negative() bool {
	return ps&StatusNegative != 0
}

// Zero returns true if the Z flag is set.
func (ps ProcessorStatus) Zero() bool {
	return ps&StatusZero != 0
}

// RegisterFile is the set of general purpose registers.
type RegisterFile [NumGPR]Register

func (rf RegisterFile) String() string {
	b := strings.Builder{}
	for i := 0; i < len(rf)/2; i++ {
		fmt.Fprintf(&b, "R%d:  %s R%d: %s\n",
			i, rf[i], i+len(rf)/2, rf[i+len(rf)/2])
	}

	return b.String()
}

func (rf RegisterFile) LogValue() log.Value {
	return log.GroupValue(
		log.String("R0", rf[R0].String()),
		log.String("R1", rf[R1].String()),
		log.String("R2", rf[R2].String()),
		log.String("R3", rf[R3].String()),
		log.String("R4", rf[R4].String()),
		log.String("R5", rf[R5].String()),
		log.String("R6", rf[R6].String()),
		log.String("R7", rf[R7].String()),
	)
}

// An OptionFn modifies the machine during initialization.
type OptionFn func(machine *LC3)

// WithIO configures the machine's I/O capability, used to service GETC, OUT, PUTS and IN traps.
func WithIO(io IO) OptionFn {
	return func(vm *LC3) {
		vm.IO = io
	}
}
