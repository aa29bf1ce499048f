package front

import (
	"context"

	"github.com/alecthomas/repr"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/mini/compiler/ast"
	"github.com/slowlang/mini/compiler/diag"
	"github.com/slowlang/mini/compiler/sym"
	"github.com/slowlang/mini/compiler/tp"
)

type (
	// Front holds the state of one checking run.
	Front struct {
		Syms  *sym.Table
		Diags *diag.List
	}
)

func New() *Front {
	return &Front{
		Syms:  sym.New(),
		Diags: &diag.List{},
	}
}

// Check resolves types of the whole program.
// It never stops at the first problem: every diagnostic lands in Diags.
// The result is tp.Error if any subtree failed.
func (c *Front) Check(ctx context.Context, p *ast.Program) (t tp.Type) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "front: check")
	defer func() {
		tr.Finish("type", t, "diags", c.Diags.Len())
	}()

	t = tp.Void

	if p.Body != nil && c.checkSeq(ctx, p.Body) == tp.Error {
		t = tp.Error
	}

	if tr.If("dump_syms") {
		for _, v := range c.Syms.Vars() {
			tr.Printw("var", "var", v)
		}
	}

	if tr.If("dump_ast") {
		tr.Printw("checked", "ast", repr.String(p, repr.Indent("  ")))
	}

	return ast.SetType(p, t)
}

// OK reports whether the checked program may be compiled.
func (c *Front) OK(p *ast.Program) bool {
	return c.Diags.Len() == 0 && p.Type != tp.Error
}

func (c *Front) checkSeq(ctx context.Context, s *ast.Seq) tp.Type {
	t := tp.Void

	for _, x := range s.Stmts {
		if c.checkStmt(ctx, x) == tp.Error {
			t = tp.Error
		}
	}

	return ast.SetType(s, t)
}

func (c *Front) checkStmt(ctx context.Context, s *ast.Stmt) tp.Type {
	if _, ok := s.X.(*ast.Decl); !ok {
		c.Syms.EndDeclarations()
	}

	t := tp.Void

	if c.checkNode(ctx, s.X) == tp.Error {
		t = tp.Error
	}

	return ast.SetType(s, t)
}

func (c *Front) checkNode(ctx context.Context, x ast.Node) tp.Type {
	switch x := x.(type) {
	case *ast.Decl:
		return c.checkDecl(x)
	case *ast.Seq:
		return c.checkSeq(ctx, x)
	case *ast.Write:
		if c.checkExpr(x.X) == tp.Error {
			return ast.SetType(x, tp.Error)
		}

		return ast.SetType(x, tp.Void)
	case *ast.Read:
		return c.checkRead(x)
	case *ast.Block:
		if x.Body == nil {
			return ast.SetType(x, tp.Void)
		}

		return ast.SetType(x, c.checkSeq(ctx, x.Body))
	case *ast.If:
		return c.checkIf(ctx, x)
	case *ast.While:
		return c.checkWhile(ctx, x)
	case *ast.Return:
		return ast.SetType(x, tp.Void)
	case ast.Expr:
		if c.checkExpr(x) == tp.Error {
			return tp.Error
		}

		return tp.Void
	default:
		panic(x)
	}
}

func (c *Front) checkDecl(x *ast.Decl) tp.Type {
	slot, err := c.Syms.Declare(x.Name, x.Of, x.Line)
	switch {
	case err == nil:
	case errors.Is(err, sym.ErrDuplicate):
		c.Diags.Add(x.Line, diag.DuplicateDeclaration, "variable already declared: %s", x.Name)

		return ast.SetType(x, tp.Error)
	case errors.Is(err, sym.ErrAfterStatement):
		c.Diags.Add(x.Line, diag.DeclarationAfterStatement, "variables must be declared at the beginning: %s", x.Name)

		x.Slot = slot

		return ast.SetType(x, tp.Error)
	default:
		panic(err)
	}

	x.Slot = slot

	return ast.SetType(x, tp.Void)
}

func (c *Front) checkRead(x *ast.Read) tp.Type {
	id, ok := x.X.(*ast.Ident)
	if !ok {
		if c.checkExpr(x.X) != tp.Error {
			c.mismatch(x, "read target must be an identifier")
		}

		return ast.SetType(x, tp.Error)
	}

	if c.checkExpr(id) == tp.Error {
		return ast.SetType(x, tp.Error)
	}

	return ast.SetType(x, tp.Void)
}

func (c *Front) checkIf(ctx context.Context, x *ast.If) tp.Type {
	ok := c.checkCond(x, x.Cond)

	if c.checkStmt(ctx, x.Then) == tp.Error {
		ok = false
	}

	if x.Else != nil && c.checkStmt(ctx, x.Else) == tp.Error {
		ok = false
	}

	if !ok {
		return ast.SetType(x, tp.Error)
	}

	return ast.SetType(x, tp.Void)
}

func (c *Front) checkWhile(ctx context.Context, x *ast.While) tp.Type {
	ok := c.checkCond(x, x.Cond)

	if c.checkStmt(ctx, x.Body) == tp.Error {
		ok = false
	}

	if !ok {
		return ast.SetType(x, tp.Error)
	}

	return ast.SetType(x, tp.Void)
}

func (c *Front) checkCond(at ast.Node, cond ast.Expr) bool {
	switch t := c.checkExpr(cond); t {
	case tp.Error:
		return false
	case tp.Bool:
		return true
	default:
		c.mismatch(at, "condition must be bool, got %v", t)

		return false
	}
}

func (c *Front) mismatch(at ast.Node, format string, args ...any) {
	c.Diags.Add(ast.Line(at), diag.TypeMismatch, "incorrect type: "+format, args...)
}
