package compiler

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
)

// Config controls a Session.
type Config struct {
	// Registers is the size of the register pool.
	Registers int
	// MaxLineLength rejects longer input lines with a SyntaxError. Zero
	// disables the limit.
	MaxLineLength int
	// KeepGoing makes CompileStream continue past a failing statement
	// instead of stopping at the first error.
	KeepGoing bool
	// Verbose sends the detailed diagnostic of every failure to Logger.
	Verbose bool
	Logger  *log.Logger
}

// DefaultConfig matches the reference machine: 256 registers, lines of at
// most 200 characters, halt on the first error.
func DefaultConfig() Config {
	return Config{Registers: DefaultRegisters, MaxLineLength: 200}
}

// FailureIndicator is written to the instruction stream when a statement
// fails to compile.
const FailureIndicator = "Compile Error!"

// Session compiles a sequence of statements as one program. The register
// pool, variable bindings and pending deltas persist from one statement to
// the next, so statements must be compiled in order.
type Session struct {
	cfg  Config
	ctx  *Context
	log  *log.Logger
	line int // number of lines compiled so far
}

func NewSession(cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Session{cfg: cfg, ctx: NewContext(cfg.Registers), log: logger}
}

// Context exposes the session's machine state.
func (s *Session) Context() *Context { return s.ctx }

// State returns a snapshot of the session's machine state.
func (s *Session) State() State { return s.ctx.State() }

// Line returns the number of lines compiled so far.
func (s *Session) Line() int { return s.line }

// Reset drops all bindings, pending deltas and registers, as if the session
// had just been created.
func (s *Session) Reset() {
	s.ctx.restore(NewContext(s.cfg.Registers))
	s.line = 0
}

// Compile runs one line through the whole pipeline and returns its assembly.
// When any stage fails the session state is left exactly as it was before
// the call and no assembly is returned.
func (s *Session) Compile(src string) (string, error) {
	s.line++
	saved := s.ctx.clone()

	asm, err := s.compile(src)
	if err != nil {
		s.ctx.restore(saved)
		var ce *CompileError
		if errors.As(err, &ce) {
			ce.Line = s.line
		}
		return "", err
	}
	return asm, nil
}

func (s *Session) compile(src string) (string, error) {
	if s.cfg.MaxLineLength > 0 && len(src) > s.cfg.MaxLineLength {
		return "", errorf(SyntaxError, s.cfg.MaxLineLength+1, "line longer than %d characters", s.cfg.MaxLineLength)
	}
	tokens, err := Lex(src)
	if err != nil {
		return "", err
	}
	root, err := Parse(tokens)
	if err != nil {
		return "", err
	}
	if err := Check(root); err != nil {
		return "", err
	}
	return Generate(root, s.ctx)
}

// CompileStream is the driver loop: it compiles r line by line and writes
// each statement's assembly to w. A failing statement writes
// FailureIndicator to w and, with Verbose set, its diagnostic to the
// logger. Unless KeepGoing is set the loop stops there and returns the
// error; otherwise it returns the first error after consuming all input.
// Lines of any length are read; overlong ones fail as syntax errors.
func (s *Session) CompileStream(r io.Reader, w io.Writer) error {
	br := bufio.NewReader(r)
	var first error
	for {
		line, rerr := br.ReadString('\n')
		if rerr != nil && rerr != io.EOF {
			return fmt.Errorf("read input: %w", rerr)
		}
		if rerr == io.EOF && line == "" {
			return first
		}
		line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")

		asm, err := s.Compile(line)
		if err != nil {
			if _, werr := fmt.Fprintln(w, FailureIndicator); werr != nil {
				return werr
			}
			if s.cfg.Verbose {
				s.log.Printf("%v", err)
			}
			if !s.cfg.KeepGoing {
				return err
			}
			if first == nil {
				first = err
			}
		} else if _, werr := io.WriteString(w, asm); werr != nil {
			return werr
		}

		if rerr == io.EOF {
			return first
		}
	}
}
