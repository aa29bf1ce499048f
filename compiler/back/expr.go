package back

import (
	"github.com/slowlang/mini/compiler/ast"
	"github.com/slowlang/mini/compiler/il"
	"github.com/slowlang/mini/compiler/tp"
)

const (
	invariantCulture = "call class [mscorlib]System.Globalization.CultureInfo [mscorlib]System.Globalization.CultureInfo::get_InvariantCulture()"

	// RealFormat prints exactly six fractional digits.
	RealFormat = `"{0:0.000000}"`
)

func (c *Compiler) emitExpr(w *il.Writer, x ast.Expr) {
	switch x := x.(type) {
	case *ast.Lit:
		c.emitLit(w, x)
	case *ast.String:
		w.Op("ldstr %s", x.Value)
	case *ast.Ident:
		w.Op("ldloc %d", x.Slot)
	case *ast.Expression:
		c.emitExpr(w, x.X)
	case *ast.Assign:
		c.emitExpr(w, x.X)
		w.Op("stloc %d", x.Slot)
		w.Op("ldloc %d", x.Slot)
	case *ast.Logical:
		c.emitLogical(w, x)
	case *ast.Rel:
		c.emitExpr(w, x.L)
		c.emitExpr(w, x.R)
		emitRel(w, x.Op)
	case *ast.Add:
		c.emitExpr(w, x.L)
		c.emitExpr(w, x.R)

		if x.Op == ast.OpAdd {
			w.Op("add")
		} else {
			w.Op("sub")
		}
	case *ast.Mul:
		c.emitExpr(w, x.L)
		c.emitExpr(w, x.R)

		if x.Op == ast.OpMul {
			w.Op("mul")
		} else {
			w.Op("div")
		}
	case *ast.Bit:
		c.emitExpr(w, x.L)
		c.emitExpr(w, x.R)

		if x.Op == ast.OpBitOr {
			w.Op("or")
		} else {
			w.Op("and")
		}
	case *ast.Unary:
		c.emitExpr(w, x.X)
		emitUnary(w, x.Op)
	case *ast.Widen:
		c.emitExpr(w, x.X)
		w.Op("conv.r8")
	default:
		panic(x)
	}
}

func (c *Compiler) emitLit(w *il.Writer, x *ast.Lit) {
	switch x.Type {
	case tp.Int:
		w.Op("ldc.i4 %s", x.Value)
	case tp.Real:
		w.Op("ldc.r8 %s", x.Value)
	case tp.Bool:
		if x.Value == "true" {
			w.Op("ldc.i4.1")
		} else {
			w.Op("ldc.i4.0")
		}
	default:
		panic(x.Type)
	}
}

// emitLogical skips R when L already decides the result.
func (c *Compiler) emitLogical(w *il.Writer, x *ast.Logical) {
	n := c.labels.Next(il.Logic)
	done := il.Label{Name: "LOG_EX_noOp", N: n}

	known, unknown := 1, 0
	short := il.Label{Name: "LOG_EX_T", N: n}

	if x.Op == ast.OpAnd {
		known, unknown = 0, 1
		short = il.Label{Name: "LOG_EX_F", N: n}
	}

	c.emitExpr(w, x.L)
	w.Op("ldc.i4 %d", known)
	w.Op("beq %v", short)

	c.emitExpr(w, x.R)
	w.Op("ldc.i4 %d", known)
	w.Op("beq %v", short)

	w.Op("ldc.i4 %d", unknown)
	w.Op("br %v", done)

	w.Op("%v: ldc.i4 %d", short, known)
	w.Mark(done)
}

func emitRel(w *il.Writer, op ast.Op) {
	switch op {
	case ast.OpLt:
		w.Op("clt")
	case ast.OpGt:
		w.Op("cgt")
	case ast.OpLe:
		w.Op("cgt")
		emitNot(w)
	case ast.OpGe:
		w.Op("clt")
		emitNot(w)
	case ast.OpEq:
		w.Op("ceq")
	case ast.OpNe:
		w.Op("ceq")
		emitNot(w)
	default:
		panic(op)
	}
}

func emitUnary(w *il.Writer, op ast.Op) {
	switch op {
	case ast.OpNeg:
		w.Op("neg")
	case ast.OpBitNot:
		w.Op("not")
	case ast.OpNot:
		emitNot(w)
	case ast.OpToInt:
		w.Op("conv.i4")
	case ast.OpToReal:
		w.Op("conv.r8")
	default:
		panic(op)
	}
}

// emitNot negates a boolean on the stack.
func emitNot(w *il.Writer) {
	w.Op("ldc.i4 0")
	w.Op("ceq")
}

func (c *Compiler) emitWrite(w *il.Writer, x *ast.Write) {
	t := ast.TypeOf(x.X)

	if t == tp.Real {
		w.Op(invariantCulture)
		w.Op("ldstr %s", RealFormat)
		c.emitExpr(w, x.X)
		w.Op("box [mscorlib]System.Double")
		w.Op("call string [mscorlib]System.String::Format(class [mscorlib]System.IFormatProvider, string, object)")
		w.Op("call void [mscorlib]System.Console::Write(string)")

		return
	}

	c.emitExpr(w, x.X)
	w.Op("call void [mscorlib]System.Console::Write(%s)", typeName(t))
}

func (c *Compiler) emitRead(w *il.Writer, x *ast.Read) {
	id := x.X.(*ast.Ident)

	w.Op("call string [mscorlib]System.Console::ReadLine()")

	switch id.Type {
	case tp.Int:
		w.Op("call int32 [mscorlib]System.Int32::Parse(string)")
	case tp.Real:
		w.Op(invariantCulture)
		w.Op("call float64 [mscorlib]System.Double::Parse(string, class [mscorlib]System.IFormatProvider)")
	case tp.Bool:
		w.Op("call bool [mscorlib]System.Boolean::Parse(string)")
	default:
		panic(id.Type)
	}

	w.Op("stloc %d", id.Slot)
}
