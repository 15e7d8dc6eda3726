package asm_test

import (
	"testing"

	. "github.com/coriolis-labs/lc3/internal/asm"
	"github.com/coriolis-labs/lc3/internal/vm"
)

func assemble(tt *testing.T, src string) vm.ObjectCode {
	tt.Helper()

	toks := tokens(src)

	c := NewChecker()

	symbols, errs := c.Check(toks)
	if len(errs) != 0 {
		tt.Fatalf("semantic errors: %v", errs)
	}

	enc := NewEncoder(symbols, toks)

	obj, err := enc.Encode()
	if err != nil {
		tt.Fatalf("encode error: %v", err)
	}

	return obj
}

func TestEncoder_AddRegisters(tt *testing.T) {
	obj := assemble(tt, ".ORIG x3000\nADD R2,R1,R1\nHALT\n.END\n")

	if obj.Orig != 0x3000 {
		tt.Fatalf("want origin x3000, got %s", obj.Orig)
	}

	if len(obj.Code) != 2 {
		tt.Fatalf("want 2 words, got %d: %v", len(obj.Code), obj.Code)
	}

	want := vm.Word(0b0001_010_001_000_001)
	if obj.Code[0] != want {
		tt.Errorf("want %016b, got %016b", want, obj.Code[0])
	}
}

func TestEncoder_Fill(tt *testing.T) {
	obj := assemble(tt, ".ORIG x3000\n.FILL x000A\n.FILL #1999\n.END\n")

	want := []vm.Word{0x000A, 0x07CF}

	if len(obj.Code) != len(want) {
		tt.Fatalf("want %d words, got %d", len(want), len(obj.Code))
	}

	for i, w := range want {
		if obj.Code[i] != w {
			tt.Errorf("word %d: want %#04x, got %#04x", i, w, obj.Code[i])
		}
	}
}

func TestEncoder_Stringz(tt *testing.T) {
	obj := assemble(tt, `.ORIG x3000`+"\n"+`.STRINGZ "HELP ME!"`+"\n.END\n")

	if len(obj.Code) != 9 {
		tt.Fatalf("want 9 words (8 chars + NUL), got %d", len(obj.Code))
	}

	if obj.Code[0] != vm.Word('H') {
		tt.Errorf("word 0: want 'H', got %s", obj.Code[0])
	}

	if obj.Code[7] != vm.Word('!') {
		tt.Errorf("word 7: want '!', got %s", obj.Code[7])
	}

	if obj.Code[8] != 0 {
		tt.Errorf("want trailing NUL, got %s", obj.Code[8])
	}
}

func TestEncoder_EmptyStringz(tt *testing.T) {
	obj := assemble(tt, `.ORIG x3000`+"\n"+`.STRINGZ ""`+"\n.END\n")

	if len(obj.Code) != 1 || obj.Code[0] != 0 {
		tt.Fatalf("want a single NUL word, got %v", obj.Code)
	}
}

func TestEncoder_BlkwZero(tt *testing.T) {
	obj := assemble(tt, ".ORIG x3000\n.BLKW #0\n.FILL #1\n.END\n")

	if len(obj.Code) != 1 || obj.Code[0] != 1 {
		tt.Fatalf("want a single word, got %v", obj.Code)
	}
}

func TestEncoder_BranchLoop(tt *testing.T) {
	obj := assemble(tt, ".ORIG x3000\nLOOP ADD R1,R1,#-1\nBRp LOOP\nHALT\n.END\n")

	if len(obj.Code) != 3 {
		tt.Fatalf("want 3 words, got %d: %v", len(obj.Code), obj.Code)
	}
}

func TestEncoder_LeaPuts(tt *testing.T) {
	obj := assemble(tt, ".ORIG x3000\nLEA R0,MSG\nPUTS\nHALT\nMSG .STRINGZ \"Hi\"\n.END\n")

	if len(obj.Code) != 3+3 {
		tt.Fatalf("want 6 words, got %d: %v", len(obj.Code), obj.Code)
	}

	lea := obj.Code[0]
	if lea.String() == "" {
		tt.Fatal("unexpected")
	}
}
