package compiler

import (
	"strconv"
	"unicode"
)

// Lexer holds all mutable state for a single scanning pass over one line.
type Lexer struct {
	src []rune
	pos int // index of the next rune to consume
}

func newLexer(src string) *Lexer {
	return &Lexer{src: []rune(src)}
}

// peek returns the rune at the current position without advancing.
func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

// advance consumes one rune and returns it.
func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	return r
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.src) && unicode.IsSpace(l.peek()) {
		l.advance()
	}
}

// scanConstant collects a maximal run of decimal digits.
// The first digit must still be at l.peek().
func (l *Lexer) scanConstant() (Token, error) {
	col := l.pos + 1
	start := l.pos
	for l.pos < len(l.src) && isDigit(l.peek()) {
		l.advance()
	}
	lexeme := string(l.src[start:l.pos])
	v, err := strconv.ParseInt(lexeme, 10, 32)
	if err != nil {
		return Token{}, errorf(LexicalError, col, "constant %s does not fit in a 32-bit word", lexeme)
	}
	return Token{Type: CONSTANT, Lexeme: lexeme, Value: int(v), Col: col}, nil
}

// nextToken skips whitespace and returns the next Token. ok is false at end
// of input.
func (l *Lexer) nextToken() (tok Token, ok bool, err error) {
	l.skipWhitespace()
	if l.pos >= len(l.src) {
		return Token{}, false, nil
	}

	ch := l.peek()
	col := l.pos + 1

	if isDigit(ch) {
		tok, err := l.scanConstant()
		return tok, err == nil, err
	}

	if idx, found := varIndex(ch); found {
		l.advance()
		return Token{Type: IDENTIFIER, Lexeme: string(ch), Value: idx, Col: col}, true, nil
	}

	l.advance() // consume the character before the switch
	switch ch {
	case '=':
		return Token{Type: ASSIGN, Lexeme: "=", Col: col}, true, nil
	case '+':
		if l.peek() == '+' {
			l.advance()
			return Token{Type: PREINC, Lexeme: "++", Col: col}, true, nil
		}
		return Token{Type: PLUS, Lexeme: "+", Col: col}, true, nil
	case '-':
		if l.peek() == '-' {
			l.advance()
			return Token{Type: PREDEC, Lexeme: "--", Col: col}, true, nil
		}
		return Token{Type: MINUS, Lexeme: "-", Col: col}, true, nil
	case '*':
		return Token{Type: MUL, Lexeme: "*", Col: col}, true, nil
	case '/':
		return Token{Type: DIV, Lexeme: "/", Col: col}, true, nil
	case '%':
		return Token{Type: REM, Lexeme: "%", Col: col}, true, nil
	case '(':
		return Token{Type: LPAREN, Lexeme: "(", Col: col}, true, nil
	case ')':
		return Token{Type: RPAREN, Lexeme: ")", Col: col}, true, nil
	case ';':
		return Token{Type: END, Lexeme: ";", Col: col}, true, nil
	}
	return Token{}, false, errorf(LexicalError, col, "unexpected character %q", ch)
}

// Lex tokenises one input line. A whitespace-only line yields an empty slice.
// On error no tokens are returned.
func Lex(line string) ([]Token, error) {
	l := newLexer(line)
	var tokens []Token
	for {
		tok, ok, err := l.nextToken()
		if err != nil {
			return nil, err
		}
		if !ok {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
