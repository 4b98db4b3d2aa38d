package compiler

import (
	"testing"
)

func TestLex(t *testing.T) {
	tokens, err := Lex("x = y++ + 3;")
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}

	expected := []struct {
		typ TokenType
		lex string
		col int
	}{
		{IDENTIFIER, "x", 1},
		{ASSIGN, "=", 3},
		{IDENTIFIER, "y", 5},
		{PREINC, "++", 6},
		{PLUS, "+", 9},
		{CONSTANT, "3", 11},
		{END, ";", 12},
	}

	if len(tokens) != len(expected) {
		t.Fatalf("Expected %d tokens, got %d: %v", len(expected), len(tokens), tokens)
	}
	for i, exp := range expected {
		tok := tokens[i]
		if tok.Type != exp.typ || tok.Lexeme != exp.lex || tok.Col != exp.col {
			t.Errorf("Token %d: expected %s %q col %d, got %s %q col %d",
				i, exp.typ, exp.lex, exp.col, tok.Type, tok.Lexeme, tok.Col)
		}
	}
	if tokens[2].Value != 1 {
		t.Errorf("Expected y to carry variable index 1, got %d", tokens[2].Value)
	}
	if tokens[5].Value != 3 {
		t.Errorf("Expected constant value 3, got %d", tokens[5].Value)
	}
}

func TestLex_GreedyIncDec(t *testing.T) {
	tests := []struct {
		src  string
		want []TokenType
	}{
		{"x+++y", []TokenType{IDENTIFIER, PREINC, PLUS, IDENTIFIER}},
		{"x---y", []TokenType{IDENTIFIER, PREDEC, MINUS, IDENTIFIER}},
		{"x+ +y", []TokenType{IDENTIFIER, PLUS, PLUS, IDENTIFIER}},
		{"----z", []TokenType{PREDEC, PREDEC, IDENTIFIER}},
		{"(z%2)/x*1", []TokenType{LPAREN, IDENTIFIER, REM, CONSTANT, RPAREN, DIV, IDENTIFIER, MUL, CONSTANT}},
	}
	for _, tc := range tests {
		t.Run(tc.src, func(t *testing.T) {
			tokens, err := Lex(tc.src)
			if err != nil {
				t.Fatalf("Lex(%q) failed: %v", tc.src, err)
			}
			if len(tokens) != len(tc.want) {
				t.Fatalf("Lex(%q) = %v, want types %v", tc.src, tokens, tc.want)
			}
			for i, tt := range tc.want {
				if tokens[i].Type != tt {
					t.Errorf("token %d: got %s, want %s", i, tokens[i].Type, tt)
				}
			}
		})
	}
}

func TestLex_EmptyLine(t *testing.T) {
	for _, src := range []string{"", "   ", "\t \t"} {
		tokens, err := Lex(src)
		if err != nil {
			t.Errorf("Lex(%q) failed: %v", src, err)
		}
		if len(tokens) != 0 {
			t.Errorf("Lex(%q) = %v, want no tokens", src, tokens)
		}
	}
}

func TestLex_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		col  int
	}{
		{"unknown variable", "x = a;", 5},
		{"unknown symbol", "x = 1 & 2;", 7},
		{"uppercase variable", "X = 1;", 1},
		{"constant overflow", "x = 99999999999;", 5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tokens, err := Lex(tc.src)
			if err == nil {
				t.Fatalf("Lex(%q) succeeded with %v, want error", tc.src, tokens)
			}
			if tokens != nil {
				t.Errorf("expected no tokens on error, got %v", tokens)
			}
			var ce *CompileError
			if !asCompileError(err, &ce) {
				t.Fatalf("expected *CompileError, got %T", err)
			}
			if ce.Kind != LexicalError {
				t.Errorf("kind = %s, want lexical", ce.Kind)
			}
			if ce.Col != tc.col {
				t.Errorf("col = %d, want %d", ce.Col, tc.col)
			}
		})
	}
}

func TestLex_LargestConstant(t *testing.T) {
	tokens, err := Lex("2147483647")
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}
	if tokens[0].Value != 2147483647 {
		t.Errorf("value = %d, want 2147483647", tokens[0].Value)
	}
}
