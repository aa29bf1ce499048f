package ast

import "github.com/slowlang/mini/compiler/tp"

type (
	// Node is implemented by the node types of this package only.
	Node interface {
		base() *Base
	}

	// Expr is a node producing a value on the evaluation stack.
	Expr interface {
		Node
		expr()
	}

	Base struct {
		Line int
		Type tp.Type
	}

	Op string

	Program struct {
		Base `tlog:",embed"`

		Body *Seq // nil for empty program
	}

	Seq struct {
		Base `tlog:",embed"`

		Stmts []*Stmt
	}

	// Stmt wraps a single statement.
	// Bare expressions leave nothing on the stack after it.
	Stmt struct {
		Base `tlog:",embed"`

		X Node
	}

	Decl struct {
		Base `tlog:",embed"`

		Name string
		Of   tp.Type
		Slot int
	}

	Write struct {
		Base `tlog:",embed"`

		X Expr
	}

	Read struct {
		Base `tlog:",embed"`

		X Expr
	}

	Block struct {
		Base `tlog:",embed"`

		Body *Seq // nil for {}
	}

	If struct {
		Base `tlog:",embed"`

		Cond Expr
		Then *Stmt
		Else *Stmt
	}

	While struct {
		Base `tlog:",embed"`

		Cond Expr
		Body *Stmt
	}

	Return struct {
		Base `tlog:",embed"`
	}

	Lit struct {
		Base `tlog:",embed"`

		Value string
	}

	String struct {
		Base `tlog:",embed"`

		Value string // quoted as in source
	}

	Ident struct {
		Base `tlog:",embed"`

		Name string
		Slot int
	}

	// Expression is a full expression: statement level, condition or parenthesised.
	Expression struct {
		Base `tlog:",embed"`

		X Expr
	}

	Assign struct {
		Base `tlog:",embed"`

		Name string
		Slot int
		X    Expr
	}

	Logical struct {
		Base `tlog:",embed"`

		Op   Op
		L, R Expr
	}

	Rel struct {
		Base `tlog:",embed"`

		Op   Op
		L, R Expr
	}

	Add struct {
		Base `tlog:",embed"`

		Op   Op
		L, R Expr
	}

	Mul struct {
		Base `tlog:",embed"`

		Op   Op
		L, R Expr
	}

	Bit struct {
		Base `tlog:",embed"`

		Op   Op
		L, R Expr
	}

	Unary struct {
		Base `tlog:",embed"`

		Op Op
		X  Expr
	}

	// Widen converts an int value to double.
	// Only the checker creates it.
	Widen struct {
		Base `tlog:",embed"`

		X Expr
	}
)

const (
	OpOr  Op = "||"
	OpAnd Op = "&&"

	OpLt Op = "<"
	OpLe Op = "<="
	OpGt Op = ">"
	OpGe Op = ">="
	OpEq Op = "=="
	OpNe Op = "!="

	OpAdd Op = "+"
	OpSub Op = "-"
	OpMul Op = "*"
	OpDiv Op = "/"

	OpBitOr  Op = "|"
	OpBitAnd Op = "&"

	OpNeg    Op = "-"
	OpBitNot Op = "~"
	OpNot    Op = "!"
	OpToInt  Op = "toI"
	OpToReal Op = "toD"
)

func (b *Base) base() *Base { return b }

func (*Lit) expr()        {}
func (*String) expr()     {}
func (*Ident) expr()      {}
func (*Expression) expr() {}
func (*Assign) expr()     {}
func (*Logical) expr()    {}
func (*Rel) expr()        {}
func (*Add) expr()        {}
func (*Mul) expr()        {}
func (*Bit) expr()        {}
func (*Unary) expr()      {}
func (*Widen) expr()      {}

func Line(n Node) int {
	return n.base().Line
}

func TypeOf(n Node) tp.Type {
	return n.base().Type
}

func SetType(n Node, t tp.Type) tp.Type {
	n.base().Type = t

	return t
}
