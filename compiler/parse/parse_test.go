package parse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/mini/compiler/ast"
	"github.com/slowlang/mini/compiler/tp"
)

func TestProgram(t *testing.T) {
	ctx := context.Background()

	p, err := Parse(ctx, []byte(`// header
program {
	int x;
	double y;
	x = 2 + 3 * 4;
	if (x > 1) write x; else { write "no"; }
	while (x != 0) x = x - 1;
	read y;
	return;
}
`))
	require.NoError(t, err)

	assert.Equal(t, 2, p.Line)
	require.NotNil(t, p.Body)
	require.Len(t, p.Body.Stmts, 7)

	d, ok := p.Body.Stmts[0].X.(*ast.Decl)
	require.True(t, ok)
	assert.Equal(t, "x", d.Name)
	assert.Equal(t, tp.Int, d.Of)
	assert.Equal(t, 3, d.Line)

	e, ok := p.Body.Stmts[2].X.(*ast.Expression)
	require.True(t, ok)
	a, ok := e.X.(*ast.Assign)
	require.True(t, ok)
	add, ok := a.X.(*ast.Add)
	require.True(t, ok, "%T", a.X)
	_, ok = add.R.(*ast.Mul)
	assert.True(t, ok, "* binds tighter than +")

	i, ok := p.Body.Stmts[3].X.(*ast.If)
	require.True(t, ok)
	assert.Equal(t, 6, i.Line)
	require.NotNil(t, i.Else)
	blk, ok := i.Else.X.(*ast.Block)
	require.True(t, ok)
	w, ok := blk.Body.Stmts[0].X.(*ast.Write)
	require.True(t, ok)
	assert.Equal(t, &ast.String{Base: ast.Base{Line: 6, Type: tp.String}, Value: `"no"`}, w.X)

	_, ok = p.Body.Stmts[4].X.(*ast.While)
	assert.True(t, ok)

	r, ok := p.Body.Stmts[5].X.(*ast.Read)
	require.True(t, ok)
	assert.Equal(t, "y", r.X.(*ast.Ident).Name)

	_, ok = p.Body.Stmts[6].X.(*ast.Return)
	assert.True(t, ok)
}

func TestEmptyProgram(t *testing.T) {
	p, err := Parse(context.Background(), []byte("program {}"))
	require.NoError(t, err)

	assert.Nil(t, p.Body)
}

func TestPrecedence(t *testing.T) {
	ctx := context.Background()

	for _, tc := range []struct {
		src string
		exp string
	}{
		{"a || b && c", "((a || b) && c)"},
		{"a < b == c", "((a < b) == c)"},
		{"a + b < c", "((a + b) < c)"},
		{"a - b - c", "((a - b) - c)"},
		{"a * b | c", "(a * (b | c))"},
		{"-a * b", "((-a) * b)"},
		{"!a && b", "((!a) && b)"},
		{"(int)x + 1", "((toI x) + 1)"},
		{"(double)(a + b)", "(toD (a + b))"},
		{"a = b = 1 + 2", "(a = (b = (1 + 2)))"},
		{"a <= b", "(a <= b)"},
		{"x & y || z", "((x & y) || z)"},
	} {
		x, i, err := Full{}.Parse(ctx, []byte(tc.src), 0)
		require.NoError(t, err, tc.src)
		assert.Equal(t, len(tc.src), i, tc.src)

		assert.Equal(t, tc.exp, sexp(x.(ast.Expr)), tc.src)
	}
}

func TestLiterals(t *testing.T) {
	ctx := context.Background()

	x, _, err := Num{}.Parse(ctx, []byte("007"), 0)
	require.NoError(t, err)
	assert.Equal(t, "7", x.(*ast.Lit).Value)
	assert.Equal(t, tp.Int, x.(*ast.Lit).Type)

	x, _, err = Num{}.Parse(ctx, []byte("3.50"), 0)
	require.NoError(t, err)
	assert.Equal(t, "3.50", x.(*ast.Lit).Value)
	assert.Equal(t, tp.Real, x.(*ast.Lit).Type)

	_, _, err = Num{}.Parse(ctx, []byte("99999999999"), 0)
	assert.Error(t, err)

	_, _, err = Num{}.Parse(ctx, []byte("12ab"), 0)
	assert.Error(t, err)

	x, i, err := Bool{}.Parse(ctx, []byte("true"), 0)
	require.NoError(t, err)
	assert.Equal(t, 4, i)
	assert.Equal(t, "true", x.(*ast.Lit).Value)

	_, _, err = Bool{}.Parse(ctx, []byte("trueish"), 0)
	assert.Error(t, err)
}

func TestSyntaxErrors(t *testing.T) {
	ctx := context.Background()

	for _, src := range []string{
		"",
		"program {",
		"program { int; }",
		"program { x = ; }",
		"program { write \"abc; }",
		"program { if x write x; }",
		"program { int if; }",
		"program {} trailing",
	} {
		_, err := Parse(ctx, []byte(src))
		assert.Error(t, err, "%q", src)
	}
}

func TestPartialRead(t *testing.T) {
	_, err := Parse(context.Background(), []byte("program {\n}\n\nx"))
	require.Error(t, err)

	var pe PartialReadError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 4, pe.Line)
}

func TestLine(t *testing.T) {
	s := New("", []byte("a\nbc\n\nd"))

	assert.Equal(t, 1, s.Line(0))
	assert.Equal(t, 1, s.Line(1))
	assert.Equal(t, 2, s.Line(2))
	assert.Equal(t, 3, s.Line(5))
	assert.Equal(t, 4, s.Line(6))
}

func TestComments(t *testing.T) {
	p, err := Parse(context.Background(), []byte("program { // c1\n int x; // c2\n // c3\n x = 1; }"))
	require.NoError(t, err)

	require.Len(t, p.Body.Stmts, 2)
	assert.Equal(t, 2, p.Body.Stmts[0].Line)
	assert.Equal(t, 4, p.Body.Stmts[1].Line)
}

func sexp(x ast.Expr) string {
	switch x := x.(type) {
	case *ast.Expression:
		return sexp(x.X)
	case *ast.Lit:
		return x.Value
	case *ast.Ident:
		return x.Name
	case *ast.Assign:
		return "(" + x.Name + " = " + sexp(x.X) + ")"
	case *ast.Logical:
		return "(" + sexp(x.L) + " " + string(x.Op) + " " + sexp(x.R) + ")"
	case *ast.Rel:
		return "(" + sexp(x.L) + " " + string(x.Op) + " " + sexp(x.R) + ")"
	case *ast.Add:
		return "(" + sexp(x.L) + " " + string(x.Op) + " " + sexp(x.R) + ")"
	case *ast.Mul:
		return "(" + sexp(x.L) + " " + string(x.Op) + " " + sexp(x.R) + ")"
	case *ast.Bit:
		return "(" + sexp(x.L) + " " + string(x.Op) + " " + sexp(x.R) + ")"
	case *ast.Unary:
		if x.Op == ast.OpToInt || x.Op == ast.OpToReal {
			return "(" + string(x.Op) + " " + sexp(x.X) + ")"
		}

		return "(" + string(x.Op) + sexp(x.X) + ")"
	default:
		return "?"
	}
}
