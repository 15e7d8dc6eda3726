package vm

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/coriolis-labs/lc3/internal/log"
)

type testHarness struct {
	*testing.T
}

func NewTestHarness(tt *testing.T) *testHarness {
	return &testHarness{tt}
}

func makeTestLogger() *log.Logger {
	return slog.New(slog.NewTextHandler(new(bytes.Buffer), nil))
}

// Make creates a machine for testing, with PC set to the start of user space and a silent logger.
func (*testHarness) Make() *LC3 {
	cpu := New(WithLogger(makeTestLogger()))
	cpu.PC = 0x3000

	return cpu
}

// fakeIO is a canned IO capability for TRAP tests: ReadByte returns bytes from in, in order;
// WriteByte appends to out.
type fakeIO struct {
	in  []byte
	out bytes.Buffer
}

func (f *fakeIO) ReadByte() (byte, error) {
	if len(f.in) == 0 {
		return 0, bytes.ErrTooLarge // any sentinel error; no test expects a successful read past EOF
	}

	b := f.in[0]
	f.in = f.in[1:]

	return b, nil
}

func (f *fakeIO) WriteByte(b byte) error {
	return f.out.WriteByte(b)
}
