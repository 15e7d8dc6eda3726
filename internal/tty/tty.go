// Package tty adapts a Unix terminal[^1] into the machine's [vm.IO] capability, so that GETC, OUT,
// PUTS and IN read and write the user's actual console instead of a buffered stream.
//
// [1]: See: tty(4), termios(4).
package tty

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/coriolis-labs/lc3/internal/vm"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// ErrNoTTY is returned if standard input is not a terminal. Raw-mode console I/O is not available
// in that case.
var ErrNoTTY error = errors.New("console: not a TTY")

// Console is a synchronous, raw-mode serial console implementing [vm.IO] directly against the
// process's standard input and output.
type Console struct {
	in    *os.File
	out   *os.File
	fd    int
	state *term.State
}

var _ vm.IO = (*Console)(nil)

// NewConsole puts stdin into raw mode and returns a [Console] reading and writing it. Callers are
// responsible for calling [Console.Restore] to return the terminal to its initial state. If stdin
// is not a terminal, ErrNoTTY is returned.
func NewConsole(stdin, stdout *os.File) (*Console, error) {
	fd := int(stdin.Fd())

	if !term.IsTerminal(fd) {
		return nil, ErrNoTTY
	}

	saved, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoTTY, err)
	}

	c := &Console{
		fd:    fd,
		in:    stdin,
		out:   stdout,
		state: saved,
	}

	if err := c.setTerminalParams(1, 0); err != nil {
		_ = term.Restore(fd, saved)
		return nil, err
	}

	return c, nil
}

// ReadByte blocks for a single byte of raw terminal input.
func (c *Console) ReadByte() (byte, error) {
	var buf [1]byte

	if _, err := c.in.Read(buf[:]); err != nil {
		return 0, err
	}

	return buf[0], nil
}

// WriteByte writes a single byte to the terminal.
func (c *Console) WriteByte(b byte) error {
	_, err := c.out.Write([]byte{b})
	return err
}

// Restore returns the terminal to the state it was in before [NewConsole] put it into raw mode.
func (c *Console) Restore() {
	_ = term.Restore(c.fd, c.state)
}

// setTerminalParams configures the terminal to return a read as soon as vmin bytes are available,
// without waiting vtime deciseconds for more.
func (c *Console) setTerminalParams(vmin, vtime byte) error {
	_ = syscall.SetNonblock(c.fd, false)

	termIO, err := unix.IoctlGetTermios(c.fd, getTermiosIoctl)
	if err != nil {
		return err
	}

	termIO.Cc[unix.VMIN] = vmin
	termIO.Cc[unix.VTIME] = vtime

	return unix.IoctlSetTermios(c.fd, setTermiosIoctl, termIO)
}
