package compiler

// Check verifies that every assignment and increment/decrement targets a
// variable, possibly wrapped in parentheses. A nil tree passes.
func Check(root Node) error {
	switch n := root.(type) {
	case nil:
		return nil

	case *Binary:
		if n.Op == ASSIGN {
			if _, ok := asVariable(n.Left); !ok {
				return errorf(SemanticError, n.Left.Pos(), "lvalue required as left operand of assignment")
			}
			return Check(n.Right)
		}
		if err := Check(n.Left); err != nil {
			return err
		}
		return Check(n.Right)

	case *Unary:
		switch n.Op {
		case PREINC, PREDEC:
			if _, ok := asVariable(n.Operand); !ok {
				return errorf(SemanticError, n.Col, "lvalue required as operand of prefix %s", incDecWord(n.Op))
			}
			return nil
		case POSTINC, POSTDEC:
			if _, ok := asVariable(n.Operand); !ok {
				return errorf(SemanticError, n.Col, "lvalue required as operand of postfix %s", incDecWord(n.Op))
			}
			return nil
		}
		return Check(n.Operand)
	}
	return nil
}

func incDecWord(op TokenType) string {
	if op == PREINC || op == POSTINC {
		return "increment"
	}
	return "decrement"
}
