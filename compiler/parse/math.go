package parse

import (
	"context"

	"tlog.app/go/errors"

	"github.com/slowlang/mini/compiler/ast"
)

type (
	// LeftToRight parses Arg {Op Arg} into a left leaning tree.
	LeftToRight struct {
		Op  Parser
		Arg Parser
	}

	// Expr is an assignment or an operator expression.
	Expr struct{}

	// Full is Expr wrapped into ast.Expression.
	Full struct{}

	Logical  struct{}
	Rel      struct{}
	Additive struct{}
	Mult     struct{}
	Bitwise  struct{}
	Unary    struct{}
	Primary  struct{}

	Assign struct{}

	// Cast is (int) or (double).
	Cast struct{}
)

func (p LeftToRight) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	x, i, err = p.Arg.Parse(ctx, b, st)
	if err != nil {
		return nil, i, errors.Wrap(err, "first arg")
	}

	for i < len(b) {
		opst := Blank{}.Skip(b, i)

		var op any
		op, i, err = Tok(p.Op).Parse(ctx, b, i)
		if err != nil {
			err = nil
			break
		}

		var r any
		r, i, err = p.Arg.Parse(ctx, b, i)
		if err != nil {
			return nil, i, errors.Wrap(err, "arg")
		}

		x = ast.NewBinary(lineAt(ctx, opst), ast.Op(op.(string)), x.(ast.Expr), r.(ast.Expr))
	}

	return
}

func (Expr) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	return AnyOf{Assign{}, Logical{}}.Parse(ctx, b, st)
}

func (Full) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	vst := Blank{}.Skip(b, st)

	x, i, err = Expr{}.Parse(ctx, b, st)
	if err != nil {
		return
	}

	return ast.NewExpression(lineAt(ctx, vst), x.(ast.Expr)), i, nil
}

func (Assign) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	vst := Blank{}.Skip(b, st)

	r := AllOf{
		Tok(Name{}),
		Tok(Op{"="}),
		Expr{},
	}

	x, i, err = r.Parse(ctx, b, st)
	if err != nil {
		return
	}

	xt := x.([]any)

	return ast.NewAssign(lineAt(ctx, vst), xt[0].(string), xt[2].(ast.Expr)), i, nil
}

func (Logical) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	return LeftToRight{Op: Op{"||", "&&"}, Arg: Rel{}}.Parse(ctx, b, st)
}

func (Rel) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	return LeftToRight{Op: Op{"<=", ">=", "==", "!=", "<", ">"}, Arg: Additive{}}.Parse(ctx, b, st)
}

func (Additive) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	return LeftToRight{Op: Op{"+", "-"}, Arg: Mult{}}.Parse(ctx, b, st)
}

func (Mult) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	return LeftToRight{Op: Op{"*", "/"}, Arg: Bitwise{}}.Parse(ctx, b, st)
}

func (Bitwise) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	return LeftToRight{Op: Op{"|", "&"}, Arg: Unary{}}.Parse(ctx, b, st)
}

func (Unary) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	vst := Blank{}.Skip(b, st)

	var op ast.Op

	r, i, err := AnyOf{Tok(Cast{}), Tok(Op{"-", "~", "!"})}.Parse(ctx, b, st)
	if err != nil {
		if i != st {
			return nil, i, err
		}

		return Primary{}.Parse(ctx, b, st)
	}

	switch r := r.(type) {
	case ast.Op:
		op = r
	case string:
		op = ast.Op(r)
	}

	x, i, err = Unary{}.Parse(ctx, b, i)
	if err != nil {
		return nil, i, errors.Wrap(err, "%s operand", op)
	}

	return ast.NewUnary(lineAt(ctx, vst), op, x.(ast.Expr)), i, nil
}

func (Cast) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	r := AllOf{
		Const("("),
		Tok(AnyOf{Keyword("int"), Keyword("double")}),
		Tok(Const(")")),
	}

	x, i, err = r.Parse(ctx, b, st)
	if err != nil {
		return nil, st, err
	}

	if x.([]any)[1] == Keyword("int") {
		return ast.OpToInt, i, nil
	}

	return ast.OpToReal, i, nil
}

func (Primary) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	vst := Blank{}.Skip(b, st)

	x, i, err = AnyOf{Num{}, Bool{}, Name{}, Const("(")}.Parse(ctx, b, vst)
	if err != nil {
		if i == vst {
			i = st
		}

		return nil, i, errors.Wrap(err, "primary")
	}

	switch v := x.(type) {
	case string:
		return ast.NewIdent(lineAt(ctx, vst), v), i, nil
	case Const:
		x, i, err = Full{}.Parse(ctx, b, i)
		if err != nil {
			return nil, i, errors.Wrap(err, "parenthesised")
		}

		_, i, err = Tok(Const(")")).Parse(ctx, b, i)
		if err != nil {
			return nil, i, err
		}

		return x, i, nil
	}

	return x, i, nil
}
