package compiler

import "fmt"

// TokenType identifies the category of a lexed token or tree node.
type TokenType int

const (
	ASSIGN TokenType = iota // =

	// Binary arithmetic (produced by Disambiguate for + and -)
	ADD // +
	SUB // -
	MUL // *
	DIV // /
	REM // %

	// The lexer labels every "++" / "--" as prefix; the parser turns the
	// trailing ones into POSTINC / POSTDEC.
	PREINC // ++
	PREDEC // --

	IDENTIFIER // x, y or z
	CONSTANT   // decimal integer literal

	LPAREN // (
	RPAREN // )

	// Unary sign; Disambiguate rewrites the binary ones into ADD / SUB.
	PLUS  // +
	MINUS // -

	END // ;

	// Tree-only kinds, never produced by the lexer.
	POSTINC // x++
	POSTDEC // x--
	GROUP   // ( expr )
)

var tokenNames = [...]string{
	ASSIGN:     "ASSIGN",
	ADD:        "ADD",
	SUB:        "SUB",
	MUL:        "MUL",
	DIV:        "DIV",
	REM:        "REM",
	PREINC:     "PREINC",
	PREDEC:     "PREDEC",
	IDENTIFIER: "IDENTIFIER",
	CONSTANT:   "CONSTANT",
	LPAREN:     "LPAREN",
	RPAREN:     "RPAREN",
	PLUS:       "PLUS",
	MINUS:      "MINUS",
	END:        "END",
	POSTINC:    "POSTINC",
	POSTDEC:    "POSTDEC",
	GROUP:      "GROUP",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// mnemonic returns the assembly opcode for a binary arithmetic kind.
func (tt TokenType) mnemonic() string {
	switch tt {
	case ADD:
		return "add"
	case SUB:
		return "sub"
	case MUL:
		return "mul"
	case DIV:
		return "div"
	case REM:
		return "rem"
	}
	return ""
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Type   TokenType
	Lexeme string // the exact source text that was matched
	Value  int    // constant value, or variable index for identifiers
	Col    int    // 1-based column of the first character
}

func (t Token) String() string {
	return fmt.Sprintf("%-10s %-6q col %d", t.Type, t.Lexeme, t.Col)
}
