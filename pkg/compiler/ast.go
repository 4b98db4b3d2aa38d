package compiler

import "fmt"

// Node is implemented by every tree node. The three concrete shapes keep
// the child-slot rules in the type system: binaries own two children,
// unaries own one, leaves own none.
type Node interface {
	node()
	Kind() TokenType
	Pos() int // 1-based column of the token that produced the node
	String() string
}

// Binary represents Left Op Right for ASSIGN, ADD, SUB, MUL, DIV and REM.
//
//	x = y + 1
//	  ^      Binary{Op: ASSIGN, Left: x, Right: (y + 1)}
type Binary struct {
	Op    TokenType
	Left  Node
	Right Node
	Col   int
}

func (*Binary) node()             {}
func (b *Binary) Kind() TokenType { return b.Op }
func (b *Binary) Pos() int        { return b.Col }
func (b *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Op, b.Left, b.Right)
}

// Unary represents a node with a single operand: PREINC, PREDEC, POSTINC,
// POSTDEC, PLUS, MINUS and GROUP.
type Unary struct {
	Op      TokenType
	Operand Node
	Col     int
}

func (*Unary) node()             {}
func (u *Unary) Kind() TokenType { return u.Op }
func (u *Unary) Pos() int        { return u.Col }
func (u *Unary) String() string  { return fmt.Sprintf("(%s %s)", u.Op, u.Operand) }

// Leaf is an IDENTIFIER (Value is the variable index) or a CONSTANT.
type Leaf struct {
	Type  TokenType
	Value int
	Col   int
}

func (*Leaf) node()             {}
func (l *Leaf) Kind() TokenType { return l.Type }
func (l *Leaf) Pos() int        { return l.Col }
func (l *Leaf) String() string {
	if l.Type == IDENTIFIER {
		return VarName(l.Value)
	}
	return fmt.Sprintf("%d", l.Value)
}

// stripGroups unwraps any chain of parentheses around n.
func stripGroups(n Node) Node {
	for {
		u, ok := n.(*Unary)
		if !ok || u.Op != GROUP {
			return n
		}
		n = u.Operand
	}
}

// asVariable reports the variable index when n, once unwrapped, is an
// identifier.
func asVariable(n Node) (int, bool) {
	leaf, ok := stripGroups(n).(*Leaf)
	if !ok || leaf.Type != IDENTIFIER {
		return 0, false
	}
	return leaf.Value, true
}

// asConstant reports the literal value when n is itself a constant leaf.
// Parenthesised constants do not count.
func asConstant(n Node) (int, bool) {
	leaf, ok := n.(*Leaf)
	if !ok || leaf.Type != CONSTANT {
		return 0, false
	}
	return leaf.Value, true
}
