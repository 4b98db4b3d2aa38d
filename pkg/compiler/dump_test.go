package compiler

import "testing"

func TestFormatTree(t *testing.T) {
	got := FormatTree(parseLine(t, "x = -y + 1;"))
	want := lines(
		"ASSIGN",
		"|-IDENTIFIER <name = x>",
		"`-ADD",
		"  |-MINUS",
		"  | `-IDENTIFIER <name = y>",
		"  `-CONSTANT <value = 1>",
	)
	if got != want {
		t.Errorf("FormatTree:\n%s\nwant:\n%s", got, want)
	}

	if got := FormatTree(nil); got != "" {
		t.Errorf("FormatTree(nil) = %q, want empty", got)
	}
}

func TestFormatTokens(t *testing.T) {
	tokens, err := Lex("z=7-x;")
	if err != nil {
		t.Fatal(err)
	}
	got := FormatTokens(Disambiguate(tokens))
	want := lines(
		"<  0> IDENTIFIER name  = z",
		`<  1> ASSIGN     symbol "="`,
		"<  2> CONSTANT   value = 7",
		`<  3> SUB        symbol "-"`,
		"<  4> IDENTIFIER name  = x",
		"<  5> END",
	)
	if got != want {
		t.Errorf("FormatTokens:\n%s\nwant:\n%s", got, want)
	}
}
