package asm

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// Opcode identifies a register machine instruction.
type Opcode uint8

const (
	OpLoad Opcode = iota + 1
	OpStore
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpRem
)

var opNames = [...]string{
	OpLoad:  "load",
	OpStore: "store",
	OpAdd:   "add",
	OpSub:   "sub",
	OpMul:   "mul",
	OpDiv:   "div",
	OpRem:   "rem",
}

var mnemonics = map[string]Opcode{
	"LOAD":  OpLoad,
	"STORE": OpStore,
	"ADD":   OpAdd,
	"SUB":   OpSub,
	"MUL":   OpMul,
	"DIV":   OpDiv,
	"REM":   OpRem,
}

func (op Opcode) String() string {
	if int(op) > 0 && int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("Opcode(%d)", int(op))
}

// IsArith reports whether op is one of the three-operand arithmetic forms.
func (op Opcode) IsArith() bool { return op >= OpAdd && op <= OpRem }

// MaxRegister is the highest register id the encoding can carry.
const MaxRegister = 0xFF

// MaxAddress is the highest memory address the encoding can carry.
const MaxAddress = 0xFFFF

// Operand is a source of an arithmetic instruction: a register or an
// immediate.
type Operand struct {
	IsReg bool
	Value int32 // register id when IsReg, immediate otherwise
}

func Reg(id int) Operand { return Operand{IsReg: true, Value: int32(id)} }

func Imm(v int32) Operand { return Operand{Value: v} }

func (o Operand) String() string {
	if o.IsReg {
		return fmt.Sprintf("r%d", o.Value)
	}
	return strconv.FormatInt(int64(o.Value), 10)
}

// Instruction is one decoded line of assembly.
//
//	load r<Reg> [<Addr>]
//	store [<Addr>] r<Reg>
//	<op> r<Reg> <A> <B>
type Instruction struct {
	Op   Opcode
	Reg  int // destination for load and arithmetic, source for store
	Addr int
	A, B Operand
	Line int // 1-based source line, 0 when decoded from binary
}

func (in Instruction) String() string {
	switch in.Op {
	case OpLoad:
		return fmt.Sprintf("load r%d [%d]", in.Reg, in.Addr)
	case OpStore:
		return fmt.Sprintf("store [%d] r%d", in.Addr, in.Reg)
	}
	return fmt.Sprintf("%s r%d %s %s", in.Op, in.Reg, in.A, in.B)
}

// Format renders a program one instruction per line.
func Format(prog []Instruction) string {
	var sb strings.Builder
	for _, in := range prog {
		sb.WriteString(in.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Parse reads assembly text. Blank lines and comments (";" or "//") are
// skipped; mnemonics and register prefixes are case-insensitive.
func Parse(text string) ([]Instruction, error) {
	var prog []Instruction
	for i, raw := range strings.Split(text, "\n") {
		in, ok, err := parseLine(raw, i+1)
		if err != nil {
			return nil, err
		}
		if ok {
			prog = append(prog, in)
		}
	}
	return prog, nil
}

func parseLine(raw string, lineNo int) (Instruction, bool, error) {
	line := strings.TrimSpace(stripComments(raw))
	if line == "" {
		return Instruction{}, false, nil
	}
	fields := strings.Fields(line)
	op, ok := mnemonics[strings.ToUpper(fields[0])]
	if !ok {
		return Instruction{}, false, fmt.Errorf("unknown instruction on line %d: %s", lineNo, fields[0])
	}
	ops := fields[1:]
	in := Instruction{Op: op, Line: lineNo}

	var err error
	switch {
	case op == OpLoad:
		if len(ops) != 2 {
			return in, false, fmt.Errorf("load expects 2 operands on line %d", lineNo)
		}
		if in.Reg, err = parseRegister(ops[0], lineNo); err != nil {
			return in, false, err
		}
		if in.Addr, err = parseAddress(ops[1], lineNo); err != nil {
			return in, false, err
		}

	case op == OpStore:
		if len(ops) != 2 {
			return in, false, fmt.Errorf("store expects 2 operands on line %d", lineNo)
		}
		if in.Addr, err = parseAddress(ops[0], lineNo); err != nil {
			return in, false, err
		}
		if in.Reg, err = parseRegister(ops[1], lineNo); err != nil {
			return in, false, err
		}

	default:
		if len(ops) != 3 {
			return in, false, fmt.Errorf("%s expects 3 operands on line %d", op, lineNo)
		}
		if in.Reg, err = parseRegister(ops[0], lineNo); err != nil {
			return in, false, err
		}
		if in.A, err = parseOperand(ops[1], lineNo); err != nil {
			return in, false, err
		}
		if in.B, err = parseOperand(ops[2], lineNo); err != nil {
			return in, false, err
		}
	}
	return in, true, nil
}

func stripComments(line string) string {
	semicolon := strings.Index(line, ";")
	doubleSlash := strings.Index(line, "//")

	cut := -1
	if semicolon >= 0 {
		cut = semicolon
	}
	if doubleSlash >= 0 && (cut == -1 || doubleSlash < cut) {
		cut = doubleSlash
	}
	if cut >= 0 {
		return line[:cut]
	}
	return line
}

func parseRegister(token string, lineNo int) (int, error) {
	if len(token) < 2 || (token[0] != 'r' && token[0] != 'R') {
		return 0, fmt.Errorf("invalid register '%s' on line %d", token, lineNo)
	}
	n, err := strconv.Atoi(token[1:])
	if err != nil || n < 0 || n > MaxRegister {
		return 0, fmt.Errorf("invalid register '%s' on line %d", token, lineNo)
	}
	return n, nil
}

func parseAddress(token string, lineNo int) (int, error) {
	if len(token) < 3 || token[0] != '[' || token[len(token)-1] != ']' {
		return 0, fmt.Errorf("invalid address '%s' on line %d", token, lineNo)
	}
	n, err := strconv.Atoi(token[1 : len(token)-1])
	if err != nil || n < 0 || n > MaxAddress {
		return 0, fmt.Errorf("invalid address '%s' on line %d", token, lineNo)
	}
	return n, nil
}

func parseOperand(token string, lineNo int) (Operand, error) {
	if token[0] == 'r' || token[0] == 'R' {
		n, err := parseRegister(token, lineNo)
		return Reg(n), err
	}
	v, err := strconv.ParseInt(token, 10, 32)
	if err != nil {
		return Operand{}, fmt.Errorf("invalid immediate '%s' on line %d", token, lineNo)
	}
	return Imm(int32(v)), nil
}

// Binary layout, little-endian:
//
//	load:  op, reg, addr(2)
//	store: op, reg, addr(2)
//	arith: op, reg, kinds, A, B   kinds bit0/bit1 set when A/B is a register;
//	                              registers take 1 byte, immediates 4
const (
	kindARegister = 1 << 0
	kindBRegister = 1 << 1
)

// Assemble parses text and encodes it. The returned map goes from byte
// offset to source line.
func Assemble(text string) ([]byte, map[int]int, error) {
	prog, err := Parse(text)
	if err != nil {
		return nil, nil, err
	}
	code, sourceMap := Encode(prog)
	return code, sourceMap, nil
}

// Encode serialises prog. The source map is keyed by byte offset.
func Encode(prog []Instruction) ([]byte, map[int]int) {
	code := make([]byte, 0, len(prog)*4)
	sourceMap := make(map[int]int)
	for _, in := range prog {
		if in.Line > 0 {
			sourceMap[len(code)] = in.Line
		}
		code = append(code, byte(in.Op), byte(in.Reg))
		switch in.Op {
		case OpLoad, OpStore:
			code = binary.LittleEndian.AppendUint16(code, uint16(in.Addr))
			continue
		}
		var kinds byte
		if in.A.IsReg {
			kinds |= kindARegister
		}
		if in.B.IsReg {
			kinds |= kindBRegister
		}
		code = append(code, kinds)
		code = appendOperand(code, in.A)
		code = appendOperand(code, in.B)
	}
	return code, sourceMap
}

func appendOperand(code []byte, o Operand) []byte {
	if o.IsReg {
		return append(code, byte(o.Value))
	}
	return binary.LittleEndian.AppendUint32(code, uint32(o.Value))
}

// Disassemble decodes a program produced by Encode.
func Disassemble(code []byte) ([]Instruction, error) {
	var prog []Instruction
	for pc := 0; pc < len(code); {
		if pc+2 > len(code) {
			return nil, fmt.Errorf("truncated instruction at offset %d", pc)
		}
		in := Instruction{Op: Opcode(code[pc]), Reg: int(code[pc+1])}
		start := pc
		pc += 2
		switch {
		case in.Op == OpLoad || in.Op == OpStore:
			if pc+2 > len(code) {
				return nil, fmt.Errorf("truncated address at offset %d", start)
			}
			in.Addr = int(binary.LittleEndian.Uint16(code[pc:]))
			pc += 2
		case in.Op.IsArith():
			if pc+1 > len(code) {
				return nil, fmt.Errorf("truncated operands at offset %d", start)
			}
			kinds := code[pc]
			pc++
			var err error
			if in.A, pc, err = readOperand(code, pc, kinds&kindARegister != 0); err != nil {
				return nil, fmt.Errorf("offset %d: %w", start, err)
			}
			if in.B, pc, err = readOperand(code, pc, kinds&kindBRegister != 0); err != nil {
				return nil, fmt.Errorf("offset %d: %w", start, err)
			}
		default:
			return nil, fmt.Errorf("unknown opcode 0x%02X at offset %d", byte(in.Op), start)
		}
		prog = append(prog, in)
	}
	return prog, nil
}

func readOperand(code []byte, pc int, isReg bool) (Operand, int, error) {
	if isReg {
		if pc+1 > len(code) {
			return Operand{}, pc, fmt.Errorf("truncated register operand")
		}
		return Reg(int(code[pc])), pc + 1, nil
	}
	if pc+4 > len(code) {
		return Operand{}, pc, fmt.Errorf("truncated immediate operand")
	}
	return Imm(int32(binary.LittleEndian.Uint32(code[pc:]))), pc + 4, nil
}
