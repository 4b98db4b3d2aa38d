package vm

import (
	"errors"
	"math"
	"testing"

	"exprvm/pkg/asm"
)

func load(t *testing.T, m *Machine, src string) {
	t.Helper()
	prog, err := asm.Parse(src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	m.Load(prog)
}

func TestMachine_Arithmetic(t *testing.T) {
	tests := []struct {
		name string
		src  string
		reg  int
		want int32
	}{
		{"add", "add r0 r0 7\nadd r1 r0 r0", 1, 14},
		{"sub", "sub r0 3 10", 0, -7},
		{"mul", "add r0 r0 -6\nmul r1 r0 7", 1, -42},
		{"div truncates", "div r0 -7 2", 0, -3},
		{"rem sign", "rem r0 -7 2", 0, -1},
		{"div by zero", "add r0 r0 9\ndiv r0 r0 r1", 0, 0},
		{"rem by zero", "rem r0 9 0", 0, 0},
		{"overflow wraps", "add r0 2147483647 1", 0, math.MinInt32},
		{"release zeroes", "add r3 r3 42\nsub r3 r3 r3", 3, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := New(DefaultConfig())
			load(t, m, tc.src)
			if err := m.Run(); err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			if got := m.Regs[tc.reg]; got != tc.want {
				t.Errorf("r%d = %d, want %d", tc.reg, got, tc.want)
			}
		})
	}
}

func TestMachine_Memory(t *testing.T) {
	m := New(DefaultConfig())
	load(t, m, "add r0 r0 -2\nstore [8] r0\nload r5 [8]\nstore [0] r5")
	if err := m.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if z, _ := m.Var(2); z != -2 {
		t.Errorf("z = %d, want -2", z)
	}
	if x, _ := m.Var(0); x != -2 {
		t.Errorf("x = %d, want -2", x)
	}
	if m.Memory[8] != 0xFE || m.Memory[11] != 0xFF {
		t.Errorf("word at [8] is not little-endian: % X", m.Memory[8:12])
	}
	if m.Steps != 4 || m.PC != 4 || !m.Halted {
		t.Errorf("steps %d pc %d halted %v", m.Steps, m.PC, m.Halted)
	}
}

func TestMachine_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		src  string
		want error
	}{
		{"store past end", DefaultConfig(), "store [254] r0", ErrBadAddress},
		{"load past end", Config{Registers: 4, MemorySize: 8}, "load r0 [8]", ErrBadAddress},
		{"destination register", Config{Registers: 4}, "add r5 r0 1", ErrBadRegister},
		{"source register", Config{Registers: 4}, "add r0 r9 1", ErrBadRegister},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := New(tc.cfg)
			load(t, m, tc.src)
			err := m.Run()
			if !errors.Is(err, tc.want) {
				t.Fatalf("Run = %v, want %v", err, tc.want)
			}
			if !m.Halted {
				t.Errorf("machine kept running after a fault")
			}
		})
	}
}

func TestMachine_LoadResumes(t *testing.T) {
	m := New(DefaultConfig())
	if !m.Halted {
		t.Fatal("a machine without a program must start halted")
	}
	load(t, m, "add r0 r0 5\nstore [0] r0")
	if err := m.Run(); err != nil {
		t.Fatal(err)
	}
	load(t, m, "add r1 r0 1\nstore [4] r1")
	if m.Halted {
		t.Fatal("Load did not resume the machine")
	}
	if err := m.Run(); err != nil {
		t.Fatal(err)
	}
	if y, _ := m.Var(1); y != 6 {
		t.Errorf("y = %d, want 6", y)
	}

	m.Reset()
	if m.PC != 0 || m.Regs[0] != 0 || m.Memory[0] != 0 || m.Halted {
		t.Errorf("Reset left pc %d r0 %d mem %d halted %v", m.PC, m.Regs[0], m.Memory[0], m.Halted)
	}
}

func TestMachine_StepWhenHalted(t *testing.T) {
	m := New(DefaultConfig())
	if err := m.Step(); err != nil {
		t.Errorf("Step on an empty machine = %v", err)
	}
	if m.Steps != 0 {
		t.Errorf("Steps = %d", m.Steps)
	}
}
