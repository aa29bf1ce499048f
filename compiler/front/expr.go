package front

import (
	"github.com/slowlang/mini/compiler/ast"
	"github.com/slowlang/mini/compiler/diag"
	"github.com/slowlang/mini/compiler/tp"
)

func (c *Front) checkExpr(x ast.Expr) tp.Type {
	switch x := x.(type) {
	case *ast.Lit:
		return x.Type
	case *ast.String:
		return ast.SetType(x, tp.String)
	case *ast.Ident:
		return c.checkIdent(x)
	case *ast.Expression:
		return ast.SetType(x, c.checkExpr(x.X))
	case *ast.Assign:
		return c.checkAssign(x)
	case *ast.Logical:
		return c.checkLogical(x)
	case *ast.Rel:
		return c.checkRel(x)
	case *ast.Add:
		t := c.checkArith(x, &x.L, &x.R)
		return ast.SetType(x, t)
	case *ast.Mul:
		t := c.checkArith(x, &x.L, &x.R)
		return ast.SetType(x, t)
	case *ast.Bit:
		return c.checkBit(x)
	case *ast.Unary:
		return c.checkUnary(x)
	case *ast.Widen:
		return x.Type
	default:
		panic(x)
	}
}

func (c *Front) checkIdent(x *ast.Ident) tp.Type {
	v, ok := c.Syms.Lookup(x.Name)
	if !ok {
		c.Diags.Add(x.Line, diag.UndeclaredVariable, "undeclared variable: %s", x.Name)

		return ast.SetType(x, tp.Error)
	}

	x.Slot = v.Slot

	return ast.SetType(x, v.Type)
}

func (c *Front) checkAssign(x *ast.Assign) tp.Type {
	v, declared := c.Syms.Lookup(x.Name)
	if !declared {
		c.Diags.Add(x.Line, diag.UndeclaredVariable, "undeclared variable: %s", x.Name)
	}

	t := c.checkExpr(x.X)

	if !declared || t == tp.Error {
		return ast.SetType(x, tp.Error)
	}

	x.Slot = v.Slot

	switch {
	case v.Type == tp.Real && t == tp.Int:
		x.X, t = c.widen(x.X, t)
	case v.Type == tp.Bool && t != tp.Bool:
		c.mismatch(x, "cannot assign %v to bool %s", t, x.Name)
		return ast.SetType(x, tp.Error)
	case t == tp.Bool && v.Type != tp.Bool:
		c.mismatch(x, "cannot assign bool to %v %s", v.Type, x.Name)
		return ast.SetType(x, tp.Error)
	}

	if t != v.Type {
		c.mismatch(x, "cannot assign %v to %v %s", t, v.Type, x.Name)
		return ast.SetType(x, tp.Error)
	}

	return ast.SetType(x, v.Type)
}

func (c *Front) checkLogical(x *ast.Logical) tp.Type {
	l := c.checkExpr(x.L)
	r := c.checkExpr(x.R)

	if l == tp.Error || r == tp.Error {
		return ast.SetType(x, tp.Error)
	}

	if l != tp.Bool || r != tp.Bool {
		c.mismatch(x, "operands of %s must be bool, got %v and %v", x.Op, l, r)
		return ast.SetType(x, tp.Error)
	}

	return ast.SetType(x, tp.Bool)
}

func (c *Front) checkRel(x *ast.Rel) tp.Type {
	l := c.checkExpr(x.L)
	r := c.checkExpr(x.R)

	if l == tp.Error || r == tp.Error {
		return ast.SetType(x, tp.Error)
	}

	if !l.Scalar() || !r.Scalar() {
		c.mismatch(x, "operands of %s must be int, double or bool, got %v and %v", x.Op, l, r)
		return ast.SetType(x, tp.Error)
	}

	switch x.Op {
	case ast.OpEq, ast.OpNe:
		if (l == tp.Bool) != (r == tp.Bool) {
			c.mismatch(x, "cannot compare %v with %v", l, r)
			return ast.SetType(x, tp.Error)
		}
	default:
		if l == tp.Bool || r == tp.Bool {
			c.mismatch(x, "operands of %s cannot be bool", x.Op)
			return ast.SetType(x, tp.Error)
		}
	}

	if _, ok := c.unify(x, &x.L, &x.R, l, r); !ok {
		return ast.SetType(x, tp.Error)
	}

	return ast.SetType(x, tp.Bool)
}

// checkArith checks + - * / operands, widening one side if needed.
func (c *Front) checkArith(x ast.Node, lp, rp *ast.Expr) tp.Type {
	l := c.checkExpr(*lp)
	r := c.checkExpr(*rp)

	if l == tp.Error || r == tp.Error {
		return tp.Error
	}

	if !l.Numeric() || !r.Numeric() {
		c.mismatch(x, "operands must be int or double, got %v and %v", l, r)
		return tp.Error
	}

	t, ok := c.unify(x, lp, rp, l, r)
	if !ok {
		return tp.Error
	}

	return t
}

func (c *Front) checkBit(x *ast.Bit) tp.Type {
	l := c.checkExpr(x.L)
	r := c.checkExpr(x.R)

	if l == tp.Error || r == tp.Error {
		return ast.SetType(x, tp.Error)
	}

	if l != tp.Int || r != tp.Int {
		c.mismatch(x, "operands of %s must be int, got %v and %v", x.Op, l, r)
		return ast.SetType(x, tp.Error)
	}

	return ast.SetType(x, tp.Int)
}

func (c *Front) checkUnary(x *ast.Unary) tp.Type {
	t := c.checkExpr(x.X)
	if t == tp.Error {
		return ast.SetType(x, tp.Error)
	}

	var ok bool

	switch x.Op {
	case ast.OpNeg:
		ok = t.Numeric()
	case ast.OpBitNot:
		ok = t == tp.Int
	case ast.OpNot:
		ok = t == tp.Bool
	case ast.OpToInt:
		ok = t.Scalar()
		t = tp.Int
	case ast.OpToReal:
		ok = t.Scalar()
		t = tp.Real
	default:
		panic(x.Op)
	}

	if !ok {
		c.mismatch(x, "bad operand of %s: %v", x.Op, ast.TypeOf(x.X))
		return ast.SetType(x, tp.Error)
	}

	return ast.SetType(x, t)
}

// unify makes both operand types equal by widening the int side.
// It reports a mismatch if they still differ.
func (c *Front) unify(at ast.Node, lp, rp *ast.Expr, l, r tp.Type) (tp.Type, bool) {
	switch {
	case l == tp.Int && r == tp.Real:
		*lp, l = c.widen(*lp, l)
	case l == tp.Real && r == tp.Int:
		*rp, r = c.widen(*rp, r)
	}

	if l != r {
		c.mismatch(at, "both operands must be of the same type, got %v and %v", l, r)
		return tp.Error, false
	}

	return l, true
}

// widen returns a replacement for x converting it to double.
func (c *Front) widen(x ast.Expr, t tp.Type) (ast.Expr, tp.Type) {
	if t != tp.Int {
		c.mismatch(x, "cannot convert %v to double", t)
		return x, tp.Error
	}

	w := ast.NewWiden(x)

	return w, w.Type
}
