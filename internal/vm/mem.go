package vm

// mem.go contains the machine's memory controller.

import (
	"errors"
	"fmt"

	"github.com/coriolis-labs/lc3/internal/log"
)

// Memory represents the machine's flat, 65,536-word address space. The microarchitecture's data
// path uses two control registers, the address register (MAR) and a data register (MDR), to
// mediate access to memory.
type Memory struct {
	// Memory address register.
	MAR Register

	// Memory data register.
	MDR Register

	// Physical memory backing the logical address space.
	cell PhysicalMemory

	log *log.Logger
}

// AddrSpace is the size of the logical address space; 65,536 addressable words.
const AddrSpace = 1 << 16

// PhysicalMemory is the machine's entire addressable memory.
type PhysicalMemory [AddrSpace]Word

// NewMemory initializes a memory controller.
func NewMemory() Memory {
	return Memory{
		MAR:  0xffff,
		MDR:  0x0ff0,
		cell: PhysicalMemory{},
		log:  log.DefaultLogger(),
	}
}

// Fetch loads the data register from the address in the address register.
func (mem *Memory) Fetch() error {
	if err := mem.load(Word(mem.MAR), &mem.MDR); err != nil {
		return fmt.Errorf("%w: fetch: %w", &MemoryError{Addr: Word(mem.MAR)}, err)
	}

	return nil
}

// Store writes the word in the data register to the word in the address register.
func (mem *Memory) Store() error {
	if err := mem.store(Word(mem.MAR), Word(mem.MDR)); err != nil {
		return fmt.Errorf("%w: store: %w", &MemoryError{Addr: Word(mem.MAR)}, err)
	}

	return nil
}

// View returns a copy of the memory cells. It is intended as a debugging and development tool and
// is quite expensive computationally.
func (mem *Memory) View() PhysicalMemory {
	var view PhysicalMemory

	copy(view[:], mem.cell[:])

	return view
}

// load reads a word directly, without using the address and data registers.
func (mem *Memory) load(addr Word, reg *Register) error {
	*reg = Register(mem.cell[addr])

	return nil
}

// store writes a word directly, without using the address and data registers.
func (mem *Memory) store(addr Word, cell Word) error {
	mem.cell[addr] = cell

	return nil
}

// MemoryError is returned to provide the address of a wrapped ErrMemory.
type MemoryError struct {
	Addr Word
}

func (me *MemoryError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMemory, me.Addr)
}

func (me *MemoryError) Is(err error) bool {
	if err == ErrMemory { //nolint:errorlint
		return true
	}

	_, ok := err.(*MemoryError)

	return ok
}

var ErrMemory = errors.New("memory error")
