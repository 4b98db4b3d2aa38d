package compiler

import (
	"fmt"
	"strings"
)

// FormatTokens renders one token per line with its index and payload.
func FormatTokens(tokens []Token) string {
	var sb strings.Builder
	for i, tok := range tokens {
		switch tok.Type {
		case CONSTANT:
			fmt.Fprintf(&sb, "<%3d> %-10s value = %d\n", i, tok.Type, tok.Value)
		case IDENTIFIER:
			fmt.Fprintf(&sb, "<%3d> %-10s name  = %s\n", i, tok.Type, VarName(tok.Value))
		case END:
			fmt.Fprintf(&sb, "<%3d> %s\n", i, tok.Type)
		default:
			fmt.Fprintf(&sb, "<%3d> %-10s symbol %q\n", i, tok.Type, tok.Lexeme)
		}
	}
	return sb.String()
}

// FormatTree renders the tree one node per line, children indented under
// their parent. A nil tree renders as the empty string.
func FormatTree(root Node) string {
	var sb strings.Builder
	writeTree(&sb, root, "", "")
	return sb.String()
}

func writeTree(sb *strings.Builder, n Node, head, indent string) {
	if n == nil {
		return
	}
	sb.WriteString(head)
	switch n := n.(type) {
	case *Leaf:
		if n.Type == IDENTIFIER {
			fmt.Fprintf(sb, "%s <name = %s>\n", n.Type, VarName(n.Value))
		} else {
			fmt.Fprintf(sb, "%s <value = %d>\n", n.Type, n.Value)
		}
	case *Binary:
		fmt.Fprintln(sb, n.Op)
		writeTree(sb, n.Left, indent+"|-", indent+"| ")
		writeTree(sb, n.Right, indent+"`-", indent+"  ")
	case *Unary:
		fmt.Fprintln(sb, n.Op)
		writeTree(sb, n.Operand, indent+"`-", indent+"  ")
	}
}
