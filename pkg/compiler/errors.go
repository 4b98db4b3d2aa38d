package compiler

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a compile failure by the stage that detected it.
type ErrorKind int

const (
	LexicalError ErrorKind = iota
	SyntaxError
	SemanticError
	ResourceError
)

func (k ErrorKind) String() string {
	switch k {
	case LexicalError:
		return "lexical"
	case SyntaxError:
		return "syntax"
	case SemanticError:
		return "semantic"
	case ResourceError:
		return "resource"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// ErrRegistersExhausted is wrapped by the ResourceError returned when the
// register pool has no free slot left.
var ErrRegistersExhausted = errors.New("register pool exhausted")

// CompileError is returned by every pipeline stage. Line is filled in by the
// Session; stages only know the column.
type CompileError struct {
	Kind ErrorKind
	Line int // 1-based input line, 0 when compiled outside a session
	Col  int // 1-based column, 0 when unknown
	Msg  string
	Err  error // optional cause
}

func (e *CompileError) Error() string {
	var where string
	switch {
	case e.Line > 0 && e.Col > 0:
		where = fmt.Sprintf("line %d, col %d: ", e.Line, e.Col)
	case e.Line > 0:
		where = fmt.Sprintf("line %d: ", e.Line)
	case e.Col > 0:
		where = fmt.Sprintf("col %d: ", e.Col)
	}
	return fmt.Sprintf("%s%s error: %s", where, e.Kind, e.Msg)
}

func (e *CompileError) Unwrap() error { return e.Err }

func errorf(kind ErrorKind, col int, format string, args ...any) *CompileError {
	return &CompileError{Kind: kind, Col: col, Msg: fmt.Sprintf(format, args...)}
}

// KindOf reports the ErrorKind carried by err, if any.
func KindOf(err error) (ErrorKind, bool) {
	var ce *CompileError
	if errors.As(err, &ce) {
		return ce.Kind, true
	}
	return 0, false
}
