package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"exprvm/pkg/asm"
	"exprvm/pkg/compiler"
	"exprvm/pkg/utils"
	"exprvm/pkg/vm"
)

const (
	banner      = "exprvm repl. Statements over x, y, z end with ';'. Type :help for commands."
	prompt      = "> "
	historyFile = ".exprvm_history"
)

// repl holds one compile session and the machine that runs its output.
// Every statement that compiles is appended to the machine's program and
// executed straight away, so :vars always reflects the program so far.
type repl struct {
	session *compiler.Session
	machine *vm.Machine
}

func newRepl() *repl {
	return &repl{
		session: compiler.NewSession(compiler.DefaultConfig()),
		machine: vm.New(vm.DefaultConfig()),
	}
}

func main() {
	os.Exit(run())
}

func run() int {
	fmt.Println(banner)

	histPath := utils.HomeFile(historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	r := newRepl()
	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Println()
			return 0
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		ln.AppendHistory(line)

		if strings.HasPrefix(strings.TrimSpace(line), ":") {
			if r.command(os.Stdout, strings.TrimSpace(line)) {
				return 0
			}
			continue
		}
		r.eval(os.Stdout, line)
	}
}

// command runs a ':' command and reports whether the repl should exit.
func (r *repl) command(w io.Writer, cmd string) (exit bool) {
	switch strings.ToLower(cmd) {
	case ":quit", ":q":
		return true
	case ":state":
		fmt.Fprint(w, r.session.State())
	case ":vars":
		r.printVars(w)
	case ":program":
		fmt.Fprint(w, asm.Format(r.machine.Program))
	case ":reset":
		r.session.Reset()
		r.machine = vm.New(vm.DefaultConfig())
		fmt.Fprintln(w, "session reset")
	case ":help":
		fmt.Fprintln(w, ":state    registers in use and variable bindings")
		fmt.Fprintln(w, ":vars     values of x, y and z after running the program")
		fmt.Fprintln(w, ":program  every instruction emitted so far")
		fmt.Fprintln(w, ":reset    start a new session")
		fmt.Fprintln(w, ":quit     exit")
	default:
		fmt.Fprintln(w, "unknown command. Type :help for commands.")
	}
	return false
}

// eval compiles one statement, prints its assembly and runs it.
func (r *repl) eval(w io.Writer, line string) {
	out, err := r.session.Compile(line)
	if err != nil {
		fmt.Fprintln(w, compiler.FailureIndicator)
		fmt.Fprintln(w, "  ", err)
		return
	}
	fmt.Fprint(w, out)

	prog, err := asm.Parse(out)
	if err != nil {
		fmt.Fprintln(w, "assembly error:", err)
		return
	}
	r.machine.Load(prog)
	if err := r.machine.Run(); err != nil {
		fmt.Fprintln(w, "run error:", err)
		return
	}
	r.printVars(w)
}

func (r *repl) printVars(w io.Writer) {
	parts := make([]string, 0, compiler.NumVars)
	for v := 0; v < compiler.NumVars; v++ {
		val, err := r.machine.Var(v)
		if err != nil {
			fmt.Fprintln(w, "run error:", err)
			return
		}
		parts = append(parts, fmt.Sprintf("%s=%d", compiler.VarName(v), val))
	}
	fmt.Fprintln(w, strings.Join(parts, " "))
}
