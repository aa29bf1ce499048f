package format

import (
	"context"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/mini/compiler/ast"
)

// Format appends canonical source text of x to b.
// x is a program, a statement or an expression.
func Format(ctx context.Context, b []byte, x ast.Node) (_ []byte, err error) {
	tr := tlog.SpanFromContext(ctx)

	st := len(b)

	defer func() {
		if tr.If("dump_format") {
			tr.Printw("formatted", "size", len(b)-st, "err", err)
		}
	}()

	switch x := x.(type) {
	case *ast.Program:
		b, err = formatProgram(ctx, b, x)
	case *ast.Stmt:
		b, err = formatStmt(ctx, b, x, 0)
		b = append(b, '\n')
	case ast.Expr:
		b, err = formatExpr(ctx, b, x, false)
	default:
		return nil, errors.New("unsupported node: %T", x)
	}

	return b, err
}

func formatProgram(ctx context.Context, b []byte, x *ast.Program) (_ []byte, err error) {
	b = append(b, "program {\n"...)

	b, err = formatSeq(ctx, b, x.Body, 1)
	if err != nil {
		return nil, err
	}

	b = append(b, "}\n"...)

	return b, nil
}

func formatSeq(ctx context.Context, b []byte, x *ast.Seq, d int) (_ []byte, err error) {
	if x == nil {
		return b, nil
	}

	for i, s := range x.Stmts {
		b, err = formatStmt(ctx, b, s, d)
		if err != nil {
			return nil, errors.Wrap(err, "stmt %d", i)
		}

		b = append(b, '\n')
	}

	return b, nil
}

func formatStmt(ctx context.Context, b []byte, x *ast.Stmt, d int) ([]byte, error) {
	b = app(b, d, "")

	return formatNode(ctx, b, x.X, d)
}

// formatNode does not indent the first line and does not end the last one.
func formatNode(ctx context.Context, b []byte, x ast.Node, d int) (_ []byte, err error) {
	switch x := x.(type) {
	case *ast.Decl:
		b = app(b, 0, "%v %s;", x.Of, x.Name)
	case *ast.Read:
		b = append(b, "read "...)

		b, err = formatExpr(ctx, b, x.X, false)
		if err != nil {
			return nil, errors.Wrap(err, "read")
		}

		b = append(b, ';')
	case *ast.Write:
		b = append(b, "write "...)

		b, err = formatExpr(ctx, b, x.X, false)
		if err != nil {
			return nil, errors.Wrap(err, "write")
		}

		b = append(b, ';')
	case *ast.Return:
		b = append(b, "return;"...)
	case *ast.Block:
		if x.Body == nil {
			return append(b, "{}"...), nil
		}

		b = append(b, "{\n"...)

		b, err = formatSeq(ctx, b, x.Body, d+1)
		if err != nil {
			return nil, err
		}

		b = app(b, d, "}")
	case *ast.If:
		return formatIf(ctx, b, x, d)
	case *ast.While:
		b = append(b, "while ("...)

		b, err = formatExpr(ctx, b, x.Cond, false)
		if err != nil {
			return nil, errors.Wrap(err, "cond")
		}

		b = append(b, ')')

		b, err = formatBranch(ctx, b, x.Body, d)
		if err != nil {
			return nil, errors.Wrap(err, "body")
		}
	case ast.Expr:
		b, err = formatExpr(ctx, b, x, false)
		if err != nil {
			return nil, err
		}

		b = append(b, ';')
	default:
		return nil, errors.New("unsupported stmt: %T", x)
	}

	return b, nil
}

func formatIf(ctx context.Context, b []byte, x *ast.If, d int) (_ []byte, err error) {
	b = append(b, "if ("...)

	b, err = formatExpr(ctx, b, x.Cond, false)
	if err != nil {
		return nil, errors.Wrap(err, "cond")
	}

	b = append(b, ')')

	b, err = formatBranch(ctx, b, x.Then, d)
	if err != nil {
		return nil, errors.Wrap(err, "then")
	}

	if x.Else == nil {
		return b, nil
	}

	if _, ok := x.Then.X.(*ast.Block); ok {
		b = append(b, " else"...)
	} else {
		b = append(b, '\n')
		b = app(b, d, "else")
	}

	b, err = formatBranch(ctx, b, x.Else, d)
	if err != nil {
		return nil, errors.Wrap(err, "else")
	}

	return b, nil
}

func formatBranch(ctx context.Context, b []byte, x *ast.Stmt, d int) ([]byte, error) {
	switch x.X.(type) {
	case *ast.Block, *ast.If:
		b = append(b, ' ')

		return formatNode(ctx, b, x.X, d)
	}

	b = append(b, '\n')

	return formatStmt(ctx, b, x, d+1)
}

func formatExpr(ctx context.Context, b []byte, x ast.Expr, nested bool) (_ []byte, err error) {
	switch x := x.(type) {
	case *ast.Lit:
		b = append(b, x.Value...)
	case *ast.String:
		b = append(b, x.Value...)
	case *ast.Ident:
		b = append(b, x.Name...)
	case *ast.Widen:
		return formatExpr(ctx, b, x.X, nested)
	case *ast.Expression:
		if nested {
			b = append(b, '(')
		}

		b, err = formatExpr(ctx, b, x.X, true)
		if err != nil {
			return nil, err
		}

		if nested {
			b = append(b, ')')
		}
	case *ast.Assign:
		b = app(b, 0, "%s = ", x.Name)

		return formatExpr(ctx, b, x.X, true)
	case *ast.Logical:
		return formatBinary(ctx, b, x.Op, x.L, x.R)
	case *ast.Rel:
		return formatBinary(ctx, b, x.Op, x.L, x.R)
	case *ast.Add:
		return formatBinary(ctx, b, x.Op, x.L, x.R)
	case *ast.Mul:
		return formatBinary(ctx, b, x.Op, x.L, x.R)
	case *ast.Bit:
		return formatBinary(ctx, b, x.Op, x.L, x.R)
	case *ast.Unary:
		switch x.Op {
		case ast.OpToInt:
			b = append(b, "(int)"...)
		case ast.OpToReal:
			b = append(b, "(double)"...)
		default:
			b = append(b, x.Op...)
		}

		return formatExpr(ctx, b, x.X, true)
	default:
		return nil, errors.New("unsupported expr: %T", x)
	}

	return b, nil
}

func formatBinary(ctx context.Context, b []byte, op ast.Op, l, r ast.Expr) (_ []byte, err error) {
	b, err = formatExpr(ctx, b, l, true)
	if err != nil {
		return nil, errors.Wrap(err, "left")
	}

	b = app(b, 0, " %s ", op)

	b, err = formatExpr(ctx, b, r, true)
	if err != nil {
		return nil, errors.Wrap(err, "right")
	}

	return b, nil
}

func app(b []byte, d int, f string, args ...any) []byte {
	const tabs = "\t\t\t\t\t\t\t\t\t\t\t\t\t\t\t"
	b = append(b, tabs[:d]...)
	b = hfmt.Appendf(b, f, args...)
	return b
}
