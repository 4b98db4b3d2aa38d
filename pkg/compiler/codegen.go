package compiler

import (
	"errors"
	"fmt"
	"strings"
)

// Context is the machine-wide state shared by every statement of a session:
// the register pool, the register currently caching each variable, and the
// postfix updates not yet written back.
type Context struct {
	Regs     *RegisterPool
	bindings [NumVars]int // -1 when the variable is not cached
	deltas   [NumVars]int
}

// NewContext returns an empty context with a pool of the given size.
func NewContext(registers int) *Context {
	c := &Context{Regs: NewRegisterPool(registers)}
	for i := range c.bindings {
		c.bindings[i] = -1
	}
	return c
}

// Binding returns the register caching variable v.
func (c *Context) Binding(v int) (int, bool) {
	reg := c.bindings[v]
	return reg, reg >= 0
}

// Delta returns the pending postfix adjustment for variable v.
func (c *Context) Delta(v int) int { return c.deltas[v] }

// isBound reports whether reg caches any variable.
func (c *Context) isBound(reg int) bool {
	for _, b := range c.bindings {
		if b == reg {
			return true
		}
	}
	return false
}

// unalias drops every binding other than v's that shares reg, so that an
// in-place update of reg does not change what another variable reads.
func (c *Context) unalias(v, reg int) {
	for i, b := range c.bindings {
		if i != v && b == reg {
			c.bindings[i] = -1
		}
	}
}

func (c *Context) clone() *Context {
	return &Context{Regs: c.Regs.clone(), bindings: c.bindings, deltas: c.deltas}
}

// restore copies saved into c, keeping c and its pool at the same address.
func (c *Context) restore(saved *Context) {
	*c.Regs = *saved.Regs.clone()
	c.bindings = saved.bindings
	c.deltas = saved.deltas
}

// State is a read-only view of a Context.
type State struct {
	Registers []int          // allocated register ids
	Bindings  map[string]int // variable name -> caching register
	Deltas    map[string]int // variable name -> pending postfix delta
	Peak      int
}

func (c *Context) State() State {
	s := State{
		Registers: c.Regs.Used(),
		Bindings:  make(map[string]int),
		Deltas:    make(map[string]int),
		Peak:      c.Regs.Peak(),
	}
	for v := 0; v < NumVars; v++ {
		if reg, ok := c.Binding(v); ok {
			s.Bindings[VarName(v)] = reg
		}
		if d := c.deltas[v]; d != 0 {
			s.Deltas[VarName(v)] = d
		}
	}
	return s
}

func (s State) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "registers in use: %v (peak %d)\n", s.Registers, s.Peak)
	for v := 0; v < NumVars; v++ {
		name := VarName(v)
		if reg, ok := s.Bindings[name]; ok {
			fmt.Fprintf(&sb, "  %s -> r%d\n", name, reg)
		} else {
			fmt.Fprintf(&sb, "  %s -> [%d]\n", name, VarAddr(v))
		}
	}
	return sb.String()
}

// CodeGen walks one statement tree and emits register machine assembly.
type CodeGen struct {
	ctx *Context
	out strings.Builder
}

func newCodeGen(ctx *Context) *CodeGen {
	return &CodeGen{ctx: ctx}
}

// Generate emits the code for one checked statement, commits its postfix
// updates and frees the registers that no variable caches any more. ctx is
// updated in place; on error it may hold partial changes.
func Generate(root Node, ctx *Context) (string, error) {
	cg := newCodeGen(ctx)
	if root != nil {
		if _, err := cg.gen(root); err != nil {
			return "", err
		}
	}
	if err := cg.finalize(); err != nil {
		return "", err
	}
	cg.reclaim()
	return cg.out.String(), nil
}

func (cg *CodeGen) line(format string, args ...any) {
	fmt.Fprintf(&cg.out, format+"\n", args...)
}

func (cg *CodeGen) acquire(at Node) (int, error) {
	reg, err := cg.ctx.Regs.Acquire()
	if err != nil {
		var ce *CompileError
		if errors.As(err, &ce) && at != nil {
			ce.Col = at.Pos()
		}
		return -1, err
	}
	return reg, nil
}

// release frees reg and zeroes it on the machine.
func (cg *CodeGen) release(reg int) {
	cg.ctx.Regs.Release(reg)
	cg.line("sub r%d r%d r%d", reg, reg, reg)
}

// releaseTemp frees reg unless it caches a variable.
func (cg *CodeGen) releaseTemp(reg int) {
	if !cg.ctx.isBound(reg) {
		cg.release(reg)
	}
}

// gen evaluates n and returns the register holding its value.
func (cg *CodeGen) gen(n Node) (int, error) {
	switch n := n.(type) {
	case *Binary:
		if n.Op == ASSIGN {
			return cg.genAssign(n)
		}
		return cg.genArith(n)

	case *Unary:
		switch n.Op {
		case PREINC, PREDEC:
			return cg.genPrefix(n)
		case POSTINC, POSTDEC:
			return cg.genPostfix(n)
		case GROUP:
			return cg.gen(stripGroups(n))
		case PLUS:
			return cg.gen(n.Operand)
		case MINUS:
			src, err := cg.gen(n.Operand)
			if err != nil {
				return -1, err
			}
			dst, err := cg.acquire(n)
			if err != nil {
				return -1, err
			}
			cg.line("sub r%d 0 r%d", dst, src)
			return dst, nil
		}

	case *Leaf:
		switch n.Type {
		case IDENTIFIER:
			return cg.genLoad(n)
		case CONSTANT:
			reg, err := cg.acquire(n)
			if err != nil {
				return -1, err
			}
			cg.line("add r%d r%d %d", reg, reg, n.Value)
			return reg, nil
		}
	}
	return -1, errorf(SemanticError, posOf(n), "invalid node %v in tree", n)
}

// genLoad returns the register caching an identifier, loading it first when
// it is not cached yet.
func (cg *CodeGen) genLoad(n *Leaf) (int, error) {
	if reg, ok := cg.ctx.Binding(n.Value); ok {
		return reg, nil
	}
	reg, err := cg.acquire(n)
	if err != nil {
		return -1, err
	}
	cg.line("load r%d [%d]", reg, VarAddr(n.Value))
	cg.ctx.bindings[n.Value] = reg
	return reg, nil
}

// genArith emits one of the four operand forms depending on which sides are
// bare constants.
func (cg *CodeGen) genArith(n *Binary) (int, error) {
	op := n.Op.mnemonic()
	lv, lconst := asConstant(n.Left)
	rv, rconst := asConstant(n.Right)

	switch {
	case !lconst && !rconst:
		left, err := cg.gen(n.Left)
		if err != nil {
			return -1, err
		}
		right, err := cg.gen(n.Right)
		if err != nil {
			return -1, err
		}
		dst, err := cg.acquire(n)
		if err != nil {
			return -1, err
		}
		cg.line("%s r%d r%d r%d", op, dst, left, right)
		cg.releaseTemp(left)
		if right != left {
			cg.releaseTemp(right)
		}
		return dst, nil

	case lconst && !rconst:
		right, err := cg.gen(n.Right)
		if err != nil {
			return -1, err
		}
		dst, err := cg.acquire(n)
		if err != nil {
			return -1, err
		}
		cg.line("%s r%d %d r%d", op, dst, lv, right)
		cg.releaseTemp(right)
		return dst, nil

	case !lconst && rconst:
		left, err := cg.gen(n.Left)
		if err != nil {
			return -1, err
		}
		dst, err := cg.acquire(n)
		if err != nil {
			return -1, err
		}
		cg.line("%s r%d r%d %d", op, dst, left, rv)
		cg.releaseTemp(left)
		return dst, nil

	default:
		dst, err := cg.acquire(n)
		if err != nil {
			return -1, err
		}
		cg.line("%s r%d %d %d", op, dst, lv, rv)
		return dst, nil
	}
}

func (cg *CodeGen) genAssign(n *Binary) (int, error) {
	v, ok := asVariable(n.Left)
	if !ok {
		return -1, errorf(SemanticError, n.Left.Pos(), "lvalue required as left operand of assignment")
	}
	reg, err := cg.gen(n.Right)
	if err != nil {
		return -1, err
	}
	cg.line("store [%d] r%d", VarAddr(v), reg)
	cg.ctx.bindings[v] = reg
	return reg, nil
}

func (cg *CodeGen) genPrefix(n *Unary) (int, error) {
	v, ok := asVariable(n.Operand)
	if !ok {
		return -1, errorf(SemanticError, n.Col, "lvalue required as operand of prefix %s", incDecWord(n.Op))
	}
	reg, err := cg.gen(n.Operand)
	if err != nil {
		return -1, err
	}
	cg.ctx.unalias(v, reg)
	if n.Op == PREINC {
		cg.line("add r%d r%d 1", reg, reg)
	} else {
		cg.line("sub r%d r%d 1", reg, reg)
	}
	cg.line("store [%d] r%d", VarAddr(v), reg)
	return reg, nil
}

// genPostfix records the update for finalize and yields the current value.
func (cg *CodeGen) genPostfix(n *Unary) (int, error) {
	target := stripGroups(n.Operand)
	v, ok := asVariable(target)
	if !ok {
		return -1, errorf(SemanticError, n.Col, "lvalue required as operand of postfix %s", incDecWord(n.Op))
	}
	if n.Op == POSTINC {
		cg.ctx.deltas[v]++
	} else {
		cg.ctx.deltas[v]--
	}
	return cg.gen(target)
}

// finalize writes every pending postfix delta back to memory exactly once.
func (cg *CodeGen) finalize() error {
	for v := 0; v < NumVars; v++ {
		d := cg.ctx.deltas[v]
		if d == 0 {
			continue
		}
		reg, ok := cg.ctx.Binding(v)
		if !ok {
			var err error
			if reg, err = cg.acquire(nil); err != nil {
				return err
			}
			cg.line("load r%d [%d]", reg, VarAddr(v))
			cg.ctx.bindings[v] = reg
		}
		cg.ctx.unalias(v, reg)
		if d > 0 {
			cg.line("add r%d r%d %d", reg, reg, d)
		} else {
			cg.line("sub r%d r%d %d", reg, reg, -d)
		}
		cg.line("store [%d] r%d", VarAddr(v), reg)
		cg.ctx.deltas[v] = 0
	}
	return nil
}

// reclaim frees the registers left allocated by the statement that no
// variable caches: the unused result of an expression statement, operands
// of unary minus, and bindings displaced by a later assignment.
func (cg *CodeGen) reclaim() {
	for _, reg := range cg.ctx.Regs.Used() {
		cg.releaseTemp(reg)
	}
}

func posOf(n Node) int {
	if n == nil {
		return 0
	}
	return n.Pos()
}
