package back

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/mini/compiler/ast"
	"github.com/slowlang/mini/compiler/config"
	"github.com/slowlang/mini/compiler/il"
	"github.com/slowlang/mini/compiler/set"
	"github.com/slowlang/mini/compiler/tp"
)

type (
	// Compiler holds the state of one generation run.
	Compiler struct {
		Config config.Config

		labels   il.Labels
		reserved set.Bitmap

		err error
	}
)

func New(cfg config.Config) *Compiler {
	return &Compiler{
		Config: cfg,
	}
}

// CompileProgram appends the whole program to b: prologue, p body and epilogue.
// p must be checked without errors.
func (c *Compiler) CompileProgram(ctx context.Context, b []byte, p *ast.Program) (_ []byte, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "back: compile program", "assembly", c.Config.Assembly)
	defer tr.Finish("err", &err)

	switch p.Type {
	case tp.Void:
	case tp.Error:
		return nil, errors.New("program has errors")
	default:
		return nil, errors.New("program is not checked: %v", p.Type)
	}

	c.labels.Reset()
	c.reserved.Reset()
	c.err = nil

	b = il.Prolog(b, c.Config)

	w := il.NewWriter(b)

	c.Emit(ctx, w, p)

	if c.err != nil {
		return nil, c.err
	}

	if n := c.reserved.Missing(); n >= 0 {
		return nil, errors.New("local slot %d is not declared", n)
	}

	b = il.Epilog(w.Bytes())

	tr.V("back_stat").Printw("emitted", "lines", w.Lines(), "locals", c.reserved.Size(), "reserved", c.reserved)

	return b, nil
}

// Emit writes p body ending with the exit to the epilogue.
func (c *Compiler) Emit(ctx context.Context, w *il.Writer, p *ast.Program) {
	if p.Body != nil {
		c.emitSeq(ctx, w, p.Body)
	}

	w.Leave()
}

func (c *Compiler) emitSeq(ctx context.Context, w *il.Writer, s *ast.Seq) {
	for _, x := range s.Stmts {
		c.emitStmt(ctx, w, x)
	}
}

func (c *Compiler) emitStmt(ctx context.Context, w *il.Writer, s *ast.Stmt) {
	c.emitNode(ctx, w, s.X)

	if _, ok := s.X.(ast.Expr); ok {
		w.Op("pop")
	}
}

func (c *Compiler) emitNode(ctx context.Context, w *il.Writer, x ast.Node) {
	switch x := x.(type) {
	case *ast.Decl:
		c.emitDecl(w, x)
	case *ast.Seq:
		c.emitSeq(ctx, w, x)
	case *ast.Write:
		c.emitWrite(w, x)
	case *ast.Read:
		c.emitRead(w, x)
	case *ast.Block:
		if x.Body != nil {
			c.emitSeq(ctx, w, x.Body)
		}
	case *ast.If:
		c.emitIf(ctx, w, x)
	case *ast.While:
		c.emitWhile(ctx, w, x)
	case *ast.Return:
		w.Leave()
	case ast.Expr:
		c.emitExpr(w, x)
	default:
		panic(x)
	}
}

func (c *Compiler) emitDecl(w *il.Writer, x *ast.Decl) {
	if x.Slot < 0 || !c.reserved.Add(x.Slot) {
		if c.err == nil {
			c.err = errors.New("line %d: local %s: slot %d is not free", x.Line, x.Name, x.Slot)
		}

		return
	}

	w.Op(".locals init ([%d] %s _%s)", x.Slot, typeName(x.Of), x.Name)
	w.Op("nop")
}

func (c *Compiler) emitIf(ctx context.Context, w *il.Writer, x *ast.If) {
	n := c.labels.Next(il.If)
	els := il.Label{Name: "ELSE", N: n}
	end := il.Label{Name: "END_IF", N: n}

	c.emitExpr(w, x.Cond)
	w.Op("brfalse %v", els)

	c.emitStmt(ctx, w, x.Then)
	w.Op("br %v", end)

	w.Mark(els)

	if x.Else != nil {
		c.emitStmt(ctx, w, x.Else)
	}

	w.Mark(end)
}

func (c *Compiler) emitWhile(ctx context.Context, w *il.Writer, x *ast.While) {
	n := c.labels.Next(il.While)
	start := il.Label{Name: "WHILE_START", N: n}
	end := il.Label{Name: "WHILE_END", N: n}

	w.Mark(start)

	c.emitExpr(w, x.Cond)
	w.Op("brfalse %v", end)

	c.emitStmt(ctx, w, x.Body)
	w.Op("br %v", start)

	w.Mark(end)
}

func typeName(t tp.Type) string {
	switch t {
	case tp.Int:
		return "int32"
	case tp.Real:
		return "float64"
	case tp.Bool:
		return "bool"
	case tp.String:
		return "string"
	default:
		panic(t)
	}
}
