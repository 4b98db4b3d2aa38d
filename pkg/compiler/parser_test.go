package compiler

import (
	"errors"
	"strings"
	"testing"
)

// asCompileError is errors.As with a shorter call site.
func asCompileError(err error, target **CompileError) bool {
	return errors.As(err, target)
}

func parseLine(t *testing.T, src string) Node {
	t.Helper()
	tokens, err := Lex(src)
	if err != nil {
		t.Fatalf("Lex(%q) failed: %v", src, err)
	}
	root, err := Parse(tokens)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", src, err)
	}
	return root
}

func TestParse_Shapes(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"x = 1;", "(ASSIGN x 1)"},
		{"x = y = 3;", "(ASSIGN x (ASSIGN y 3))"},
		{"x - y - z;", "(SUB (SUB x y) z)"},
		{"x / y * z;", "(MUL (DIV x y) z)"},
		{"z = 3 + 4 * 2;", "(ASSIGN z (ADD 3 (MUL 4 2)))"},
		{"x = -(y + 1) * 2;", "(ASSIGN x (MUL (MINUS (GROUP (ADD y 1))) 2))"},
		{"x = y+++z;", "(ASSIGN x (ADD (POSTINC y) z))"},
		{"x = y + ++z;", "(ASSIGN x (ADD y (PREINC z)))"},
		{"x = - -y;", "(ASSIGN x (MINUS (MINUS y)))"},
		{"x = +y % 2;", "(ASSIGN x (REM (PLUS y) 2))"},
		{"(x)++;", "(POSTINC (GROUP x))"},
		{"--x--;", "(PREDEC (POSTDEC x))"},
		{"x = ((y));", "(ASSIGN x (GROUP (GROUP y)))"},
		{"(x) = 2;", "(ASSIGN (GROUP x) 2)"},
	}
	for _, tc := range tests {
		t.Run(tc.src, func(t *testing.T) {
			root := parseLine(t, tc.src)
			if got := root.String(); got != tc.want {
				t.Errorf("Parse(%q) = %s, want %s", tc.src, got, tc.want)
			}
		})
	}
}

func TestParse_EmptyStatement(t *testing.T) {
	for _, src := range []string{"", ";", "  ;  "} {
		tokens, err := Lex(src)
		if err != nil {
			t.Fatalf("Lex(%q) failed: %v", src, err)
		}
		root, err := Parse(tokens)
		if err != nil {
			t.Errorf("Parse(%q) failed: %v", src, err)
		}
		if root != nil {
			t.Errorf("Parse(%q) = %v, want nil tree", src, root)
		}
	}
}

func TestParse_DoesNotMutateTokens(t *testing.T) {
	tokens, err := Lex("x - 1;")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Parse(tokens); err != nil {
		t.Fatal(err)
	}
	if tokens[1].Type != MINUS {
		t.Errorf("token 1 = %s after Parse, want MINUS", tokens[1].Type)
	}
}

func TestDisambiguate(t *testing.T) {
	tokens, err := Lex("-x - (-1) + y++ + +2;")
	if err != nil {
		t.Fatal(err)
	}
	got := Disambiguate(tokens)
	want := []TokenType{MINUS, IDENTIFIER, SUB, LPAREN, MINUS, CONSTANT, RPAREN, ADD, IDENTIFIER, PREINC, ADD, PLUS, CONSTANT, END}
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Type != want[i] {
			t.Errorf("token %d: got %s, want %s", i, got[i].Type, want[i])
		}
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		src     string
		col     int
		message string
	}{
		{"x = 3", 6, "expected ';'"},
		{"x = (y + 1;", 5, "unmatched '('"},
		{"x = y);", 6, "unmatched ')'"},
		{"x = y + ;", 9, "expected an expression"},
		{"= 3;", 1, "missing left operand"},
		{"x = * 3;", 5, "missing left operand"},
		{"x y;", 3, "unexpected"},
		{"x = ();", 6, "expected an expression"},
	}
	for _, tc := range tests {
		t.Run(tc.src, func(t *testing.T) {
			tokens, err := Lex(tc.src)
			if err != nil {
				t.Fatalf("Lex(%q) failed: %v", tc.src, err)
			}
			_, err = Parse(tokens)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want error", tc.src)
			}
			var ce *CompileError
			if !asCompileError(err, &ce) {
				t.Fatalf("expected *CompileError, got %T", err)
			}
			if ce.Kind != SyntaxError {
				t.Errorf("kind = %s, want syntax", ce.Kind)
			}
			if ce.Col != tc.col {
				t.Errorf("col = %d, want %d (%v)", ce.Col, tc.col, err)
			}
			if !strings.Contains(ce.Msg, tc.message) {
				t.Errorf("message %q does not contain %q", ce.Msg, tc.message)
			}
		})
	}
}
