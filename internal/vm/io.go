package vm

// io.go defines the machine's I/O capability, used by the TRAP instructions.

import (
	"bufio"
	"os"
)

// IO is the capability the machine uses to service GETC, OUT, PUTS and IN traps. It is
// deliberately minimal: this simulator does not model memory-mapped device registers or
// asynchronous interrupts, so traps talk to IO directly instead of going through an ISR.
type IO interface {
	// ReadByte blocks until a single byte is available and returns it.
	ReadByte() (byte, error)

	// WriteByte writes a single byte.
	WriteByte(b byte) error
}

// stdIO is the default IO capability, reading from standard input and writing to standard
// output.
type stdIO struct {
	in  *bufio.Reader
	out *os.File
}

// NewStdIO returns an IO capability backed by the process's standard streams.
func NewStdIO() IO {
	return &stdIO{
		in:  bufio.NewReader(os.Stdin),
		out: os.Stdout,
	}
}

func (s *stdIO) ReadByte() (byte, error) {
	return s.in.ReadByte()
}

func (s *stdIO) WriteByte(b byte) error {
	_, err := s.out.Write([]byte{b})
	return err
}
