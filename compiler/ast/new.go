package ast

import "github.com/slowlang/mini/compiler/tp"

func NewProgram(line int, stmts ...*Stmt) *Program {
	p := &Program{Base: Base{Line: line}}

	if len(stmts) != 0 {
		p.Body = NewSeq(line, stmts...)
	}

	return p
}

func NewSeq(line int, stmts ...*Stmt) *Seq {
	return &Seq{Base: Base{Line: line}, Stmts: stmts}
}

// Add appends s keeping source order.
func (s *Seq) Add(x *Stmt) *Seq {
	s.Stmts = append(s.Stmts, x)

	return s
}

func NewStmt(line int, x Node) *Stmt {
	return &Stmt{Base: Base{Line: line}, X: x}
}

func NewDecl(line int, name string, of tp.Type) *Decl {
	return &Decl{Base: Base{Line: line}, Name: name, Of: of, Slot: -1}
}

func NewInt(line int, v string) *Lit {
	return &Lit{Base: Base{Line: line, Type: tp.Int}, Value: v}
}

func NewReal(line int, v string) *Lit {
	return &Lit{Base: Base{Line: line, Type: tp.Real}, Value: v}
}

func NewBool(line int, v bool) *Lit {
	x := &Lit{Base: Base{Line: line, Type: tp.Bool}, Value: "false"}

	if v {
		x.Value = "true"
	}

	return x
}

func NewString(line int, quoted string) *String {
	return &String{Base: Base{Line: line, Type: tp.String}, Value: quoted}
}

func NewIdent(line int, name string) *Ident {
	return &Ident{Base: Base{Line: line, Type: tp.Ident}, Name: name, Slot: -1}
}

func NewExpression(line int, x Expr) *Expression {
	return &Expression{Base: Base{Line: line}, X: x}
}

func NewAssign(line int, name string, x Expr) *Assign {
	return &Assign{Base: Base{Line: line}, Name: name, Slot: -1, X: x}
}

// NewBinary builds the node matching the operator precedence group of op.
func NewBinary(line int, op Op, l, r Expr) Expr {
	b := Base{Line: line}

	switch op {
	case OpOr, OpAnd:
		return &Logical{Base: b, Op: op, L: l, R: r}
	case OpLt, OpLe, OpGt, OpGe, OpEq, OpNe:
		return &Rel{Base: b, Op: op, L: l, R: r}
	case OpAdd, OpSub:
		return &Add{Base: b, Op: op, L: l, R: r}
	case OpMul, OpDiv:
		return &Mul{Base: b, Op: op, L: l, R: r}
	case OpBitOr, OpBitAnd:
		return &Bit{Base: b, Op: op, L: l, R: r}
	default:
		panic(op)
	}
}

func NewUnary(line int, op Op, x Expr) *Unary {
	return &Unary{Base: Base{Line: line}, Op: op, X: x}
}

func NewWiden(x Expr) *Widen {
	return &Widen{Base: Base{Line: Line(x), Type: tp.Real}, X: x}
}
