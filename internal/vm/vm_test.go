package vm

import (
	"errors"
	"testing"
)

func TestSext(tt *testing.T) {
	tt.Parallel()

	tcs := []struct {
		name string
		in   Word
		n    uint8
		want Word
	}{
		{"positive 5-bit", 0x000f, 5, 0x000f},
		{"negative 5-bit", 0x0010, 5, 0xfff0},
		{"positive 9-bit", 0x00ff, 9, 0x00ff},
		{"negative 9-bit", 0x0100, 9, 0xff00},
		{"zero", 0x0000, 5, 0x0000},
	}

	for _, tc := range tcs {
		tc := tc

		tt.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			w := tc.in
			w.Sext(tc.n)

			if w != tc.want {
				t.Errorf("Sext(%s, %d): want: %s, got: %s", tc.in, tc.n, tc.want, w)
			}
		})
	}
}

func TestRESV(tt *testing.T) {
	tt.Parallel()

	t := NewTestHarness(tt)
	cpu := t.Make()

	if err := cpu.Mem.store(Word(cpu.PC), Word(NewInstruction(RESV, 0))); err != nil {
		t.Fatal(err)
	}

	err := cpu.Step()
	if !errors.Is(err, ErrReserved) {
		t.Errorf("reserved opcode: want: %s, got: %s", ErrReserved, err)
	}
}

type insCase struct {
	name   string
	setup  func(cpu *LC3)
	ins    Instruction
	check  func(t *testing.T, cpu *LC3)
	expErr error
}

func TestInstructions(tt *testing.T) {
	tt.Parallel()

	tcs := []insCase{{
		name: "BR taken",
		setup: func(cpu *LC3) {
			cpu.PSR.Set(Register(1)) // P
		},
		ins: NewInstruction(BR, 0x0200|0x0005),
		check: func(t *testing.T, cpu *LC3) {
			if cpu.PC != 0x3001+5 {
				t.Errorf("PC: want: %s, got: %s", Word(0x3001+5), Word(cpu.PC))
			}
		},
	}, {
		name: "BR not taken",
		setup: func(cpu *LC3) {
			cpu.PSR.Set(Register(0)) // Z
		},
		ins: NewInstruction(BR, 0x0800|0x0005), // cond: N
		check: func(t *testing.T, cpu *LC3) {
			if cpu.PC != 0x3001 {
				t.Errorf("PC: want: %s, got: %s", Word(0x3001), Word(cpu.PC))
			}
		},
	}, {
		name: "BR nzp=000 is a no-op",
		setup: func(cpu *LC3) {
			cpu.PSR.Set(Register(0)) // Z; cond 000 tests no flag, so the branch is not taken
		},
		ins: NewInstruction(BR, 0x0000|0x0005),
		check: func(t *testing.T, cpu *LC3) {
			if cpu.PC != 0x3001 {
				t.Errorf("PC: want: %s, got: %s", Word(0x3001), Word(cpu.PC))
			}
		},
	}, {
		name: "NOT",
		setup: func(cpu *LC3) {
			cpu.REG[R1] = 0x00ff
		},
		ins: NewInstruction(NOT, uint16(R0)<<9|uint16(R1)<<6|0x003f),
		check: func(t *testing.T, cpu *LC3) {
			if cpu.REG[R0] != 0xff00 {
				t.Errorf("R0: want: %s, got: %s", Word(0xff00), Word(cpu.REG[R0]))
			}

			if !cpu.PSR.Negative() {
				t.Error("expected N flag set")
			}
		},
	}, {
		name: "AND",
		setup: func(cpu *LC3) {
			cpu.REG[R1] = 0x00ff
			cpu.REG[R2] = 0x000f
		},
		ins: NewInstruction(AND, uint16(R0)<<9|uint16(R1)<<6|uint16(R2)),
		check: func(t *testing.T, cpu *LC3) {
			if cpu.REG[R0] != 0x000f {
				t.Errorf("R0: want: %s, got: %s", Word(0x000f), Word(cpu.REG[R0]))
			}
		},
	}, {
		name: "AND immediate",
		setup: func(cpu *LC3) {
			cpu.REG[R1] = 0x00ff
		},
		ins: NewInstruction(AND, uint16(R0)<<9|uint16(R1)<<6|0x0020|0x000f),
		check: func(t *testing.T, cpu *LC3) {
			if cpu.REG[R0] != 0x000f {
				t.Errorf("R0: want: %s, got: %s", Word(0x000f), Word(cpu.REG[R0]))
			}
		},
	}, {
		name: "ADD",
		setup: func(cpu *LC3) {
			cpu.REG[R1] = 2
			cpu.REG[R2] = 3
		},
		ins: NewInstruction(ADD, uint16(R0)<<9|uint16(R1)<<6|uint16(R2)),
		check: func(t *testing.T, cpu *LC3) {
			if cpu.REG[R0] != 5 {
				t.Errorf("R0: want: 5, got: %s", Word(cpu.REG[R0]))
			}

			if !cpu.PSR.Positive() {
				t.Error("expected P flag set")
			}
		},
	}, {
		name: "ADD immediate",
		setup: func(cpu *LC3) {
			cpu.REG[R1] = 2
		},
		ins: NewInstruction(ADD, uint16(R0)<<9|uint16(R1)<<6|0x0020|0x001e), // +(-2)
		check: func(t *testing.T, cpu *LC3) {
			if cpu.REG[R0] != 0 {
				t.Errorf("R0: want: 0, got: %s", Word(cpu.REG[R0]))
			}

			if !cpu.PSR.Zero() {
				t.Error("expected Z flag set")
			}
		},
	}, {
		name: "LD",
		setup: func(cpu *LC3) {
			if err := cpu.Mem.store(Word(cpu.PC)+1+5, 0x1234); err != nil {
				panic(err)
			}
		},
		ins: NewInstruction(LD, uint16(R0)<<9|0x0005),
		check: func(t *testing.T, cpu *LC3) {
			if cpu.REG[R0] != 0x1234 {
				t.Errorf("R0: want: %s, got: %s", Word(0x1234), Word(cpu.REG[R0]))
			}
		},
	}, {
		name: "LDI",
		setup: func(cpu *LC3) {
			if err := cpu.Mem.store(Word(cpu.PC)+1+5, 0x4000); err != nil {
				panic(err)
			}

			if err := cpu.Mem.store(0x4000, 0x5678); err != nil {
				panic(err)
			}
		},
		ins: NewInstruction(LDI, uint16(R0)<<9|0x0005),
		check: func(t *testing.T, cpu *LC3) {
			if cpu.REG[R0] != 0x5678 {
				t.Errorf("R0: want: %s, got: %s", Word(0x5678), Word(cpu.REG[R0]))
			}
		},
	}, {
		name: "LDR",
		setup: func(cpu *LC3) {
			cpu.REG[R1] = 0x4000

			if err := cpu.Mem.store(0x4000+3, 0x0011); err != nil {
				panic(err)
			}
		},
		ins: NewInstruction(LDR, uint16(R0)<<9|uint16(R1)<<6|0x0003),
		check: func(t *testing.T, cpu *LC3) {
			if cpu.REG[R0] != 0x0011 {
				t.Errorf("R0: want: %s, got: %s", Word(0x0011), Word(cpu.REG[R0]))
			}
		},
	}, {
		name: "LEA does not touch memory or condition flags",
		setup: func(cpu *LC3) {
			cpu.PSR.Set(Register(0x8000)) // N set beforehand
		},
		ins: NewInstruction(LEA, uint16(R0)<<9|0x0005),
		check: func(t *testing.T, cpu *LC3) {
			if cpu.REG[R0] != Register(0x3001+5) {
				t.Errorf("R0: want: %s, got: %s", Word(0x3001+5), Word(cpu.REG[R0]))
			}

			if !cpu.PSR.Negative() {
				t.Error("LEA must not change condition flags")
			}
		},
	}, {
		name: "ST",
		setup: func(cpu *LC3) {
			cpu.REG[R0] = 0x00aa
		},
		ins: NewInstruction(ST, uint16(R0)<<9|0x0005),
		check: func(t *testing.T, cpu *LC3) {
			if got := cpu.Mem.cell[0x3001+5]; got != 0x00aa {
				t.Errorf("stored value: want: %s, got: %s", Word(0x00aa), got)
			}
		},
	}, {
		name: "STI",
		setup: func(cpu *LC3) {
			cpu.REG[R0] = 0x00bb

			if err := cpu.Mem.store(Word(cpu.PC)+1+5, 0x4000); err != nil {
				panic(err)
			}
		},
		ins: NewInstruction(STI, uint16(R0)<<9|0x0005),
		check: func(t *testing.T, cpu *LC3) {
			if got := cpu.Mem.cell[0x4000]; got != 0x00bb {
				t.Errorf("stored value: want: %s, got: %s", Word(0x00bb), got)
			}
		},
	}, {
		name: "STR",
		setup: func(cpu *LC3) {
			cpu.REG[R0] = 0x00cc
			cpu.REG[R1] = 0x4000
		},
		ins: NewInstruction(STR, uint16(R0)<<9|uint16(R1)<<6|0x0003),
		check: func(t *testing.T, cpu *LC3) {
			if got := cpu.Mem.cell[0x4000+3]; got != 0x00cc {
				t.Errorf("stored value: want: %s, got: %s", Word(0x00cc), got)
			}
		},
	}, {
		name: "JMP",
		setup: func(cpu *LC3) {
			cpu.REG[R1] = 0x5000
		},
		ins: NewInstruction(JMP, uint16(R1)<<6),
		check: func(t *testing.T, cpu *LC3) {
			if cpu.PC != 0x5000 {
				t.Errorf("PC: want: %s, got: %s", Word(0x5000), Word(cpu.PC))
			}
		},
	}, {
		name: "RET",
		setup: func(cpu *LC3) {
			cpu.REG[RETP] = 0x5050
		},
		ins: NewInstruction(JMP, uint16(RETP)<<6),
		check: func(t *testing.T, cpu *LC3) {
			if cpu.PC != 0x5050 {
				t.Errorf("PC: want: %s, got: %s", Word(0x5050), Word(cpu.PC))
			}
		},
	}, {
		name: "JSR",
		ins:  NewInstruction(JSR, 0x0800|0x0010),
		check: func(t *testing.T, cpu *LC3) {
			if cpu.REG[RETP] != 0x3001 {
				t.Errorf("R7: want: %s, got: %s", Word(0x3001), Word(cpu.REG[RETP]))
			}

			if cpu.PC != 0x3001+0x10 {
				t.Errorf("PC: want: %s, got: %s", Word(0x3001+0x10), Word(cpu.PC))
			}
		},
	}, {
		name: "JSRR",
		setup: func(cpu *LC3) {
			cpu.REG[R2] = 0x6000
		},
		ins: NewInstruction(JSR, uint16(R2)<<6),
		check: func(t *testing.T, cpu *LC3) {
			if cpu.REG[RETP] != 0x3001 {
				t.Errorf("R7: want: %s, got: %s", Word(0x3001), Word(cpu.REG[RETP]))
			}

			if cpu.PC != 0x6000 {
				t.Errorf("PC: want: %s, got: %s", Word(0x6000), Word(cpu.PC))
			}
		},
	}}

	for _, tc := range tcs {
		tc := tc

		tt.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			th := NewTestHarness(t)
			cpu := th.Make()

			if tc.setup != nil {
				tc.setup(cpu)
			}

			if err := cpu.Mem.store(Word(cpu.PC), Word(tc.ins)); err != nil {
				t.Fatal(err)
			}

			err := cpu.Step()

			switch {
			case tc.expErr == nil && err != nil:
				t.Fatal("unexpected error:", err)
			case tc.expErr != nil && !errors.Is(err, tc.expErr):
				t.Fatalf("want error: %s, got: %s", tc.expErr, err)
			}

			if tc.check != nil {
				tc.check(t, cpu)
			}
		})
	}
}

func TestTrap(tt *testing.T) {
	tt.Parallel()

	tt.Run("GETC", func(t *testing.T) {
		t.Parallel()

		th := NewTestHarness(t)
		cpu := th.Make()
		cpu.IO = &fakeIO{in: []byte{'x'}}

		if err := cpu.Mem.store(Word(cpu.PC), Word(NewInstruction(TRAP, uint16(TrapGETC)))); err != nil {
			t.Fatal(err)
		}

		if err := cpu.Step(); err != nil {
			t.Fatal(err)
		}

		if cpu.REG[R0] != Register('x') {
			t.Errorf("R0: want: %s, got: %s", Word('x'), Word(cpu.REG[R0]))
		}
	})

	tt.Run("OUT", func(t *testing.T) {
		t.Parallel()

		th := NewTestHarness(t)
		cpu := th.Make()

		io := &fakeIO{}
		cpu.IO = io
		cpu.REG[R0] = Register('y')

		if err := cpu.Mem.store(Word(cpu.PC), Word(NewInstruction(TRAP, uint16(TrapOUT)))); err != nil {
			t.Fatal(err)
		}

		if err := cpu.Step(); err != nil {
			t.Fatal(err)
		}

		if io.out.String() != "y" {
			t.Errorf("output: want: %q, got: %q", "y", io.out.String())
		}
	})

	tt.Run("PUTS", func(t *testing.T) {
		t.Parallel()

		th := NewTestHarness(t)
		cpu := th.Make()

		io := &fakeIO{}
		cpu.IO = io
		cpu.REG[R0] = 0x4000

		msg := "hi\x00"
		for i, r := range []byte(msg) {
			if err := cpu.Mem.store(0x4000+Word(i), Word(r)); err != nil {
				t.Fatal(err)
			}
		}

		if err := cpu.Mem.store(Word(cpu.PC), Word(NewInstruction(TRAP, uint16(TrapPUTS)))); err != nil {
			t.Fatal(err)
		}

		if err := cpu.Step(); err != nil {
			t.Fatal(err)
		}

		if io.out.String() != "hi" {
			t.Errorf("output: want: %q, got: %q", "hi", io.out.String())
		}
	})

	tt.Run("IN", func(t *testing.T) {
		t.Parallel()

		th := NewTestHarness(t)
		cpu := th.Make()
		cpu.IO = &fakeIO{in: []byte{'z'}}

		if err := cpu.Mem.store(Word(cpu.PC), Word(NewInstruction(TRAP, uint16(TrapIN)))); err != nil {
			t.Fatal(err)
		}

		if err := cpu.Step(); err != nil {
			t.Fatal(err)
		}

		if cpu.REG[R0] != Register('z') {
			t.Errorf("R0: want: %s, got: %s", Word('z'), Word(cpu.REG[R0]))
		}
	})

	tt.Run("HALT", func(t *testing.T) {
		t.Parallel()

		th := NewTestHarness(t)
		cpu := th.Make()

		if err := cpu.Mem.store(Word(cpu.PC), Word(NewInstruction(TRAP, uint16(TrapHALT)))); err != nil {
			t.Fatal(err)
		}

		if err := cpu.Step(); err != nil {
			t.Fatal(err)
		}

		if cpu.MCR.Running() {
			t.Error("expected machine to be stopped after HALT")
		}
	})

	tt.Run("unimplemented vector faults", func(t *testing.T) {
		t.Parallel()

		th := NewTestHarness(t)
		cpu := th.Make()

		if err := cpu.Mem.store(Word(cpu.PC), Word(NewInstruction(TRAP, 0x50))); err != nil {
			t.Fatal(err)
		}

		err := cpu.Step()

		var trapErr *TrapError
		if !errors.As(err, &trapErr) {
			t.Fatalf("want *TrapError, got: %v", err)
		}
	})
}

func TestRTI(tt *testing.T) {
	tt.Parallel()

	th := NewTestHarness(tt)
	cpu := th.Make()

	if err := cpu.Mem.store(Word(cpu.PC), Word(NewInstruction(RTI, 0))); err != nil {
		tt.Fatal(err)
	}

	err := cpu.Step()
	if !errors.Is(err, ErrRTI) {
		tt.Errorf("RTI: want: %s, got: %s", ErrRTI, err)
	}
}
