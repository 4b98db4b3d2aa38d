package compiler

import (
	"strings"
	"testing"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		src     string
		wantErr string // empty when the statement is valid
	}{
		{"x = y + 1;", ""},
		{"(x) = 2;", ""},
		{"((y))++;", ""},
		{"++(z);", ""},
		{"x = y = z;", ""},
		{";", ""},
		{"1 = 2;", "lvalue required as left operand of assignment"},
		{"-x = 2;", "lvalue required as left operand of assignment"},
		{"x = (y = 1) = 2;", "lvalue required as left operand of assignment"},
		{"3++;", "lvalue required as operand of postfix increment"},
		{"x = (y + 1)--;", "lvalue required as operand of postfix decrement"},
		{"++5;", "lvalue required as operand of prefix increment"},
		{"--x--;", "lvalue required as operand of prefix decrement"},
		{"x = y * ++3;", "lvalue required as operand of prefix increment"},
	}
	for _, tc := range tests {
		t.Run(tc.src, func(t *testing.T) {
			err := Check(parseLine(t, tc.src))
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("Check(%q) = %v, want nil", tc.src, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Check(%q) succeeded, want %q", tc.src, tc.wantErr)
			}
			if kind, _ := KindOf(err); kind != SemanticError {
				t.Errorf("kind = %s, want semantic", kind)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q does not contain %q", err, tc.wantErr)
			}
		})
	}
}
