// Package vm interprets register machine programs produced by the compiler:
// a flat list of load/store/arithmetic instructions over a file of 32-bit
// registers and a small little-endian byte memory.
package vm

import (
	"encoding/binary"
	"errors"
	"fmt"

	"exprvm/pkg/asm"
)

const (
	DefaultRegisters  = 256
	DefaultMemorySize = 256
	wordSize          = 4
)

var (
	ErrBadRegister = errors.New("register out of range")
	ErrBadAddress  = errors.New("address out of range")
)

// Config sizes a Machine.
type Config struct {
	Registers  int
	MemorySize int
}

func DefaultConfig() Config {
	return Config{Registers: DefaultRegisters, MemorySize: DefaultMemorySize}
}

// Machine executes a loaded program one instruction per Step. Registers and
// memory start zeroed; a program can be appended to with Load and resumed.
type Machine struct {
	Regs   []int32
	Memory []byte

	Program []asm.Instruction
	PC      int // index of the next instruction
	Halted  bool

	Steps int // instructions executed since New or Reset
}

func New(cfg Config) *Machine {
	if cfg.Registers <= 0 {
		cfg.Registers = DefaultRegisters
	}
	if cfg.MemorySize <= 0 {
		cfg.MemorySize = DefaultMemorySize
	}
	return &Machine{
		Regs:   make([]int32, cfg.Registers),
		Memory: make([]byte, cfg.MemorySize),
		Halted: true,
	}
}

// Load appends prog to the program and clears Halted so Run continues from
// the first new instruction.
func (m *Machine) Load(prog []asm.Instruction) {
	m.Program = append(m.Program, prog...)
	m.Halted = m.PC >= len(m.Program)
}

// Reset zeroes registers and memory and rewinds to the first instruction.
func (m *Machine) Reset() {
	clear(m.Regs)
	clear(m.Memory)
	m.PC = 0
	m.Steps = 0
	m.Halted = len(m.Program) == 0
}

// Word reads the 32-bit word at addr.
func (m *Machine) Word(addr int) (int32, error) {
	if addr < 0 || addr+wordSize > len(m.Memory) {
		return 0, fmt.Errorf("read [%d]: %w", addr, ErrBadAddress)
	}
	return int32(binary.LittleEndian.Uint32(m.Memory[addr:])), nil
}

// SetWord writes the 32-bit word at addr.
func (m *Machine) SetWord(addr int, v int32) error {
	if addr < 0 || addr+wordSize > len(m.Memory) {
		return fmt.Errorf("write [%d]: %w", addr, ErrBadAddress)
	}
	binary.LittleEndian.PutUint32(m.Memory[addr:], uint32(v))
	return nil
}

func (m *Machine) reg(id int) (*int32, error) {
	if id < 0 || id >= len(m.Regs) {
		return nil, fmt.Errorf("r%d: %w", id, ErrBadRegister)
	}
	return &m.Regs[id], nil
}

func (m *Machine) operand(o asm.Operand) (int32, error) {
	if !o.IsReg {
		return o.Value, nil
	}
	r, err := m.reg(int(o.Value))
	if err != nil {
		return 0, err
	}
	return *r, nil
}

// Step executes the instruction at PC. It is a no-op once halted.
func (m *Machine) Step() error {
	if m.Halted {
		return nil
	}
	if m.PC >= len(m.Program) {
		m.Halted = true
		return nil
	}

	in := m.Program[m.PC]
	if err := m.exec(in); err != nil {
		m.Halted = true
		if in.Line > 0 {
			return fmt.Errorf("line %d: %s: %w", in.Line, in, err)
		}
		return fmt.Errorf("pc %d: %s: %w", m.PC, in, err)
	}
	m.PC++
	m.Steps++
	if m.PC >= len(m.Program) {
		m.Halted = true
	}
	return nil
}

func (m *Machine) exec(in asm.Instruction) error {
	dst, err := m.reg(in.Reg)
	if err != nil {
		return err
	}

	switch in.Op {
	case asm.OpLoad:
		v, err := m.Word(in.Addr)
		if err != nil {
			return err
		}
		*dst = v
		return nil

	case asm.OpStore:
		return m.SetWord(in.Addr, *dst)
	}

	a, err := m.operand(in.A)
	if err != nil {
		return err
	}
	b, err := m.operand(in.B)
	if err != nil {
		return err
	}

	switch in.Op {
	case asm.OpAdd:
		*dst = a + b
	case asm.OpSub:
		*dst = a - b
	case asm.OpMul:
		*dst = a * b
	case asm.OpDiv:
		if b == 0 {
			*dst = 0
		} else {
			*dst = a / b
		}
	case asm.OpRem:
		if b == 0 {
			*dst = 0
		} else {
			*dst = a % b
		}
	default:
		return fmt.Errorf("unknown opcode %d", in.Op)
	}
	return nil
}

// Run steps until the program ends or an instruction fails.
func (m *Machine) Run() error {
	for !m.Halted {
		if err := m.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Var reads the value of variable idx, stored at idx*4.
func (m *Machine) Var(idx int) (int32, error) {
	return m.Word(idx * wordSize)
}
