package vm

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/oklog/ulid/v2"

	"exprvm/pkg/asm"
)

// snapshotState is the JSON part of a snapshot archive.
type snapshotState struct {
	ID        ulid.ULID `json:"id"`
	Taken     time.Time `json:"taken"`
	PC        int       `json:"pc"`
	Halted    bool      `json:"halted"`
	Steps     int       `json:"steps"`
	Registers int       `json:"registers"`
	Memory    int       `json:"memory"`
	// Live lists the non-zero registers for people reading the archive;
	// registers.bin is what Restore uses.
	Live map[string]int32 `json:"live"`
}

// Snapshot serialises the machine into a ZIP archive holding state.json,
// registers.bin, memory.bin and program.bin. The returned id identifies the
// snapshot.
func (m *Machine) Snapshot() ([]byte, ulid.ULID, error) {
	id := ulid.Make()
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	state := snapshotState{
		ID:        id,
		Taken:     ulid.Time(id.Time()).UTC(),
		PC:        m.PC,
		Halted:    m.Halted,
		Steps:     m.Steps,
		Registers: len(m.Regs),
		Memory:    len(m.Memory),
		Live:      make(map[string]int32),
	}
	for i, v := range m.Regs {
		if v != 0 {
			state.Live[fmt.Sprintf("r%d", i)] = v
		}
	}

	jsonData, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, id, fmt.Errorf("marshal state: %w", err)
	}
	if err := writeZipEntry(zw, "state.json", jsonData); err != nil {
		return nil, id, err
	}

	regs := make([]byte, len(m.Regs)*wordSize)
	for i, v := range m.Regs {
		binary.LittleEndian.PutUint32(regs[i*wordSize:], uint32(v))
	}
	if err := writeZipEntry(zw, "registers.bin", regs); err != nil {
		return nil, id, err
	}
	if err := writeZipEntry(zw, "memory.bin", m.Memory); err != nil {
		return nil, id, err
	}
	code, _ := asm.Encode(m.Program)
	if err := writeZipEntry(zw, "program.bin", code); err != nil {
		return nil, id, err
	}

	if err := zw.Close(); err != nil {
		return nil, id, fmt.Errorf("close zip: %w", err)
	}
	return buf.Bytes(), id, nil
}

// Restore replaces the machine state with a snapshot produced by Snapshot.
// Source line numbers of the program are not preserved.
func (m *Machine) Restore(data []byte) error {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}
	fileMap := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		fileMap[f.Name] = f
	}

	jsonData, err := readZipEntry(fileMap, "state.json")
	if err != nil {
		return err
	}
	var state snapshotState
	if err := json.Unmarshal(jsonData, &state); err != nil {
		return fmt.Errorf("unmarshal state: %w", err)
	}

	if state.Registers <= 0 || state.Registers > asm.MaxRegister+1 {
		return fmt.Errorf("invalid register count %d", state.Registers)
	}
	if state.Memory <= 0 {
		return fmt.Errorf("invalid memory size %d", state.Memory)
	}

	regData, err := readZipEntry(fileMap, "registers.bin")
	if err != nil {
		return err
	}
	if len(regData) != state.Registers*wordSize {
		return fmt.Errorf("registers.bin holds %d bytes, want %d", len(regData), state.Registers*wordSize)
	}
	memData, err := readZipEntry(fileMap, "memory.bin")
	if err != nil {
		return err
	}
	if len(memData) != state.Memory {
		return fmt.Errorf("memory.bin holds %d bytes, want %d", len(memData), state.Memory)
	}
	code, err := readZipEntry(fileMap, "program.bin")
	if err != nil {
		return err
	}
	prog, err := asm.Disassemble(code)
	if err != nil {
		return fmt.Errorf("decode program: %w", err)
	}

	if state.PC < 0 || state.PC > len(prog) {
		return fmt.Errorf("pc %d outside a %d instruction program", state.PC, len(prog))
	}

	m.Regs = make([]int32, state.Registers)
	for i := range m.Regs {
		m.Regs[i] = int32(binary.LittleEndian.Uint32(regData[i*wordSize:]))
	}
	m.Memory = memData
	m.Program = prog
	m.PC = state.PC
	m.Halted = state.Halted
	m.Steps = state.Steps
	return nil
}

// SnapshotToFile writes a snapshot archive to path.
func (m *Machine) SnapshotToFile(path string) (ulid.ULID, error) {
	data, id, err := m.Snapshot()
	if err != nil {
		return id, err
	}
	return id, os.WriteFile(path, data, 0o644)
}

// RestoreFromFile reads a snapshot archive from path.
func (m *Machine) RestoreFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return m.Restore(data)
}

func writeZipEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create zip entry %q: %w", name, err)
	}
	_, err = w.Write(data)
	return err
}

func readZipEntry(fileMap map[string]*zip.File, name string) ([]byte, error) {
	f, ok := fileMap[name]
	if !ok {
		return nil, fmt.Errorf("zip entry %q not found", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open zip entry %q: %w", name, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
