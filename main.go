//go:build !js

package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"exprvm/pkg/asm"
	"exprvm/pkg/compiler"
	"exprvm/pkg/utils"
	"exprvm/pkg/vm"
)

func main() {
	inPath := flag.String("in", "", "input source file, one statement per line (default: stdin)")
	asmPath := flag.String("asm", "", "write the assembly to this file instead of stdout")
	outPath := flag.String("out", "", "also assemble the output into this binary file")
	runProgram := flag.Bool("run", false, "run the compiled program on the virtual machine")
	runBinPath := flag.String("run-bin", "", "run an existing binary file on the virtual machine")
	snapshotPath := flag.String("snapshot", "", "after running, write a machine snapshot to this file")
	registers := flag.Int("registers", compiler.DefaultRegisters, "register file size")
	keepGoing := flag.Bool("keep-going", false, "continue with the next statement after a compile error")
	verbose := flag.Bool("v", false, "print detailed diagnostics to stderr")
	emit := flag.Bool("emit", false, "write <input>.asm and <input>.bin next to the -in file")
	flag.Parse()

	if *emit {
		if *inPath == "" {
			fmt.Fprintln(os.Stderr, "-emit needs an -in file")
			os.Exit(2)
		}
		if *asmPath == "" {
			*asmPath = utils.ReplaceExt(*inPath, ".asm")
		}
		if *outPath == "" {
			*outPath = utils.ReplaceExt(*inPath, ".bin")
		}
	}

	if *runProgram && *runBinPath != "" {
		fmt.Fprintln(os.Stderr, "use either -run or -run-bin, not both")
		os.Exit(2)
	}

	if err := checkRegisters(*registers); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	vmCfg := vm.Config{Registers: *registers, MemorySize: vm.DefaultMemorySize}

	if *runBinPath != "" {
		code, err := os.ReadFile(*runBinPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read binary file %q: %v\n", *runBinPath, err)
			os.Exit(1)
		}
		prog, err := asm.Disassemble(code)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to decode %q: %v\n", *runBinPath, err)
			os.Exit(1)
		}
		if err := runProgramOn(vmCfg, prog, *snapshotPath); err != nil {
			fmt.Fprintf(os.Stderr, "run failed for %q: %v\n", *runBinPath, err)
			os.Exit(1)
		}
		return
	}

	var in io.Reader = os.Stdin
	if *inPath != "" {
		f, err := os.Open(*inPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read input file %q: %v\n", *inPath, err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	cfg := compiler.DefaultConfig()
	cfg.Registers = *registers
	cfg.KeepGoing = *keepGoing
	cfg.Verbose = *verbose
	if *verbose {
		cfg.Logger = log.New(os.Stderr, "exprvm: ", 0)
	}

	// The assembly goes to its destination and to a buffer kept for -out / -run.
	var assembly bytes.Buffer
	var dst io.Writer = os.Stdout
	if *asmPath != "" {
		f, err := os.Create(*asmPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create %q: %v\n", *asmPath, err)
			os.Exit(1)
		}
		defer f.Close()
		dst = f
	}

	session := compiler.NewSession(cfg)
	compileErr := session.CompileStream(in, io.MultiWriter(dst, &assembly))
	if compileErr != nil && !*keepGoing {
		// The failure indicator is already in the output.
		os.Exit(1)
	}

	if *outPath != "" || *runProgram {
		prog, err := assemble(assembly.Bytes())
		if err != nil {
			fmt.Fprintf(os.Stderr, "assembly failed: %v\n", err)
			os.Exit(1)
		}

		if *outPath != "" {
			code, _ := asm.Encode(prog)
			if err := os.WriteFile(*outPath, code, 0o644); err != nil {
				fmt.Fprintf(os.Stderr, "failed to write binary file %q: %v\n", *outPath, err)
				os.Exit(1)
			}
			fmt.Fprintf(os.Stderr, "assembled %d instructions (%d bytes) -> %s\n", len(prog), len(code), *outPath)
		}

		if *runProgram {
			if err := runProgramOn(vmCfg, prog, *snapshotPath); err != nil {
				fmt.Fprintf(os.Stderr, "run failed: %v\n", err)
				os.Exit(1)
			}
		}
	}

	if compileErr != nil {
		os.Exit(1)
	}
}

// checkRegisters rejects register file sizes the binary encoding cannot address.
func checkRegisters(n int) error {
	if n <= 0 || n > asm.MaxRegister+1 {
		return fmt.Errorf("-registers must be between 1 and %d, got %d", asm.MaxRegister+1, n)
	}
	return nil
}

// assemble parses compiler output into a program. Failure indicators left by
// statements skipped under -keep-going are not instructions and are dropped.
func assemble(text []byte) ([]asm.Instruction, error) {
	text = bytes.ReplaceAll(text, []byte(compiler.FailureIndicator+"\n"), nil)
	return asm.Parse(string(text))
}

func runProgramOn(cfg vm.Config, prog []asm.Instruction, snapshotPath string) error {
	m := vm.New(cfg)
	m.Load(prog)
	if err := m.Run(); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "run complete: %d instructions", m.Steps)
	for v := 0; v < compiler.NumVars; v++ {
		val, err := m.Var(v)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, " %s=%d", compiler.VarName(v), val)
	}
	fmt.Fprintln(os.Stderr)

	if snapshotPath != "" {
		id, err := m.SnapshotToFile(snapshotPath)
		if err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
		fmt.Fprintf(os.Stderr, "snapshot %s -> %s\n", id, snapshotPath)
	}
	return nil
}
