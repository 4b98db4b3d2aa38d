package compiler

// Parser splits an immutable token slice by half-open ranges, one grammar
// level at a time.
//
// Grammar, loosest binding first:
//
//	statement      = [ expression ] ";"
//	expression     = assignment
//	assignment     = unary "=" assignment | additive
//	additive       = additive ("+" | "-") multiplicative | multiplicative
//	multiplicative = multiplicative ("*" | "/" | "%") unary | unary
//	unary          = ("++" | "--" | "+" | "-") unary | postfix
//	postfix        = postfix ("++" | "--") | primary
//	primary        = "(" expression ")" | IDENTIFIER | CONSTANT
//
// Binary levels locate their operator by scanning for the first depth-0
// match (right to left for the left-associative ones), so parenthesised
// sub-ranges are never split.
type Parser struct {
	tokens []Token
}

type grammarLevel int

const (
	levelStatement grammarLevel = iota
	levelExpression
	levelAssignment
	levelAdditive
	levelMultiplicative
	levelUnary
	levelPostfix
	levelPrimary
)

// Parse disambiguates tokens and parses them as one statement. An empty
// token slice or a lone ";" yields a nil tree.
func Parse(tokens []Token) (Node, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	p := &Parser{tokens: Disambiguate(tokens)}
	return p.parse(0, len(p.tokens), levelStatement)
}

// Disambiguate returns a copy of tokens where every PLUS / MINUS that
// follows an operand (identifier, constant, "++", "--" or ")") becomes the
// binary ADD / SUB.
func Disambiguate(tokens []Token) []Token {
	out := make([]Token, len(tokens))
	copy(out, tokens)
	for i := 1; i < len(out); i++ {
		if out[i].Type != PLUS && out[i].Type != MINUS {
			continue
		}
		switch out[i-1].Type {
		case IDENTIFIER, CONSTANT, PREINC, PREDEC, RPAREN:
			if out[i].Type == PLUS {
				out[i].Type = ADD
			} else {
				out[i].Type = SUB
			}
		}
	}
	return out
}

// colAt returns the column of token i, falling back to the closest token
// when i is out of range (used for empty-range diagnostics).
func (p *Parser) colAt(i int) int {
	if len(p.tokens) == 0 {
		return 0
	}
	if i < 0 {
		i = 0
	}
	if i >= len(p.tokens) {
		i = len(p.tokens) - 1
	}
	return p.tokens[i].Col
}

func (p *Parser) parse(lo, hi int, level grammarLevel) (Node, error) {
	if lo >= hi {
		return nil, errorf(SyntaxError, p.colAt(lo), "expected an expression")
	}

	switch level {
	case levelStatement:
		return p.parseStatement(lo, hi)
	case levelExpression:
		return p.parse(lo, hi, levelAssignment)
	case levelAssignment:
		return p.parseAssignment(lo, hi)
	case levelAdditive:
		return p.parseBinary(lo, hi, level, isAdditive, levelMultiplicative)
	case levelMultiplicative:
		return p.parseBinary(lo, hi, level, isMultiplicative, levelUnary)
	case levelUnary:
		return p.parseUnary(lo, hi)
	case levelPostfix:
		return p.parsePostfix(lo, hi)
	case levelPrimary:
		return p.parsePrimary(lo, hi)
	}
	return nil, errorf(SyntaxError, p.colAt(lo), "unexpected grammar level %d", level)
}

func (p *Parser) parseStatement(lo, hi int) (Node, error) {
	last := p.tokens[hi-1]
	if last.Type != END {
		return nil, errorf(SyntaxError, last.Col+len(last.Lexeme), "expected ';' at end of statement")
	}
	if hi-lo == 1 {
		return nil, nil
	}
	if err := p.checkParens(lo, hi-1); err != nil {
		return nil, err
	}
	return p.parse(lo, hi-1, levelExpression)
}

// checkParens reports the first unmatched parenthesis in [lo, hi).
func (p *Parser) checkParens(lo, hi int) error {
	var open []int
	for i := lo; i < hi; i++ {
		switch p.tokens[i].Type {
		case LPAREN:
			open = append(open, i)
		case RPAREN:
			if len(open) == 0 {
				return errorf(SyntaxError, p.tokens[i].Col, "unmatched ')'")
			}
			open = open[:len(open)-1]
		}
	}
	if len(open) > 0 {
		return errorf(SyntaxError, p.tokens[open[0]].Col, "unmatched '('")
	}
	return nil
}

func (p *Parser) parseAssignment(lo, hi int) (Node, error) {
	at := p.findSection(lo, hi, false, func(tt TokenType) bool { return tt == ASSIGN })
	if at < 0 {
		return p.parse(lo, hi, levelAdditive)
	}
	if at == lo {
		return nil, errorf(SyntaxError, p.tokens[at].Col, "missing left operand of '='")
	}
	left, err := p.parse(lo, at, levelUnary)
	if err != nil {
		return nil, err
	}
	right, err := p.parse(at+1, hi, levelAssignment)
	if err != nil {
		return nil, err
	}
	return &Binary{Op: ASSIGN, Left: left, Right: right, Col: p.tokens[at].Col}, nil
}

// parseBinary peels the rightmost depth-0 operator so that chains group to
// the left: the left side recurses at the same level, the right side one
// level tighter.
func (p *Parser) parseBinary(lo, hi int, level grammarLevel, match func(TokenType) bool, next grammarLevel) (Node, error) {
	at := p.findSection(lo, hi, true, match)
	if at < 0 {
		return p.parse(lo, hi, next)
	}
	tok := p.tokens[at]
	if at == lo {
		return nil, errorf(SyntaxError, tok.Col, "missing left operand of %q", tok.Lexeme)
	}
	left, err := p.parse(lo, at, level)
	if err != nil {
		return nil, err
	}
	right, err := p.parse(at+1, hi, next)
	if err != nil {
		return nil, err
	}
	return &Binary{Op: tok.Type, Left: left, Right: right, Col: tok.Col}, nil
}

func (p *Parser) parseUnary(lo, hi int) (Node, error) {
	tok := p.tokens[lo]
	switch tok.Type {
	case PREINC, PREDEC, PLUS, MINUS:
		operand, err := p.parse(lo+1, hi, levelUnary)
		if err != nil {
			return nil, err
		}
		return &Unary{Op: tok.Type, Operand: operand, Col: tok.Col}, nil
	}
	return p.parse(lo, hi, levelPostfix)
}

func (p *Parser) parsePostfix(lo, hi int) (Node, error) {
	tok := p.tokens[hi-1]
	var op TokenType
	switch tok.Type {
	case PREINC:
		op = POSTINC
	case PREDEC:
		op = POSTDEC
	default:
		return p.parse(lo, hi, levelPrimary)
	}
	operand, err := p.parse(lo, hi-1, levelPostfix)
	if err != nil {
		return nil, err
	}
	return &Unary{Op: op, Operand: operand, Col: tok.Col}, nil
}

func (p *Parser) parsePrimary(lo, hi int) (Node, error) {
	tok := p.tokens[lo]
	if tok.Type == LPAREN && p.matchParen(lo, hi) == hi-1 {
		inner, err := p.parse(lo+1, hi-1, levelExpression)
		if err != nil {
			return nil, err
		}
		return &Unary{Op: GROUP, Operand: inner, Col: tok.Col}, nil
	}
	if hi-lo == 1 && (tok.Type == IDENTIFIER || tok.Type == CONSTANT) {
		return &Leaf{Type: tok.Type, Value: tok.Value, Col: tok.Col}, nil
	}
	if hi-lo == 1 {
		return nil, errorf(SyntaxError, tok.Col, "unexpected %q", tok.Lexeme)
	}
	return nil, errorf(SyntaxError, p.tokens[lo+1].Col, "unexpected %q after %q", p.tokens[lo+1].Lexeme, tok.Lexeme)
}

// matchParen returns the index of the ")" closing the "(" at open, or -1 if
// it is not closed before hi.
func (p *Parser) matchParen(open, hi int) int {
	depth := 0
	for i := open; i < hi; i++ {
		switch p.tokens[i].Type {
		case LPAREN:
			depth++
		case RPAREN:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// findSection returns the index of the first token in [lo, hi) satisfying
// match while outside every parenthesis, scanning backwards when reverse is
// set. It returns -1 if there is none.
func (p *Parser) findSection(lo, hi int, reverse bool, match func(TokenType) bool) int {
	opener, closer := LPAREN, RPAREN
	start, end, step := lo, hi, 1
	if reverse {
		opener, closer = RPAREN, LPAREN
		start, end, step = hi-1, lo-1, -1
	}
	depth := 0
	for i := start; i != end; i += step {
		tt := p.tokens[i].Type
		switch tt {
		case opener:
			depth++
		case closer:
			depth--
		}
		if depth == 0 && match(tt) {
			return i
		}
	}
	return -1
}

func isAdditive(tt TokenType) bool { return tt == ADD || tt == SUB }

func isMultiplicative(tt TokenType) bool { return tt == MUL || tt == DIV || tt == REM }
