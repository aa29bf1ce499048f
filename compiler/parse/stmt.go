package parse

import (
	"context"

	"tlog.app/go/errors"

	"github.com/slowlang/mini/compiler/ast"
	"github.com/slowlang/mini/compiler/tp"
)

type (
	Program struct{}

	Stmt struct{}

	Block struct{}

	If struct{}

	While struct{}

	Read struct{}

	Write struct{}

	Return struct{}

	VarDecl struct{}

	ExprStmt struct{}
)

func (Program) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	r := AllOf{
		Tok(Keyword("program")),
		Tok(Const("{")),
		Many{Of: Stmt{}},
		Tok(Const("}")),
	}

	vst := Blank{}.Skip(b, st)

	x, i, err = r.Parse(ctx, b, st)
	if err != nil {
		return
	}

	stmts := stmtList(x.([]any)[2])

	return ast.NewProgram(lineAt(ctx, vst), stmts...), i, nil
}

func (Stmt) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	vst := Blank{}.Skip(b, st)

	r := AnyOf{
		Block{},
		If{},
		While{},
		Read{},
		Write{},
		Return{},
		VarDecl{},
		ExprStmt{},
	}

	x, i, err = r.Parse(ctx, b, vst)
	if err != nil {
		if i == vst {
			i = st
		}

		return nil, i, err
	}

	return ast.NewStmt(lineAt(ctx, vst), x.(ast.Node)), i, nil
}

func (Block) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	r := AllOf{
		Const("{"),
		Many{Of: Stmt{}},
		Tok(Const("}")),
	}

	x, i, err = r.Parse(ctx, b, st)
	if err != nil {
		return
	}

	line := lineAt(ctx, st)
	res := &ast.Block{Base: ast.Base{Line: line}}

	if stmts := stmtList(x.([]any)[1]); len(stmts) != 0 {
		res.Body = ast.NewSeq(line, stmts...)
	}

	return res, i, nil
}

func (If) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	r := AllOf{
		Keyword("if"),
		Tok(Const("(")),
		Full{},
		Tok(Const(")")),
		Stmt{},
		Optional{AllOf{
			Tok(Keyword("else")),
			Stmt{},
		}},
	}

	x, i, err = r.Parse(ctx, b, st)
	if err != nil {
		return
	}

	xt := x.([]any)

	res := &ast.If{
		Base: ast.Base{Line: lineAt(ctx, st)},
		Cond: xt[2].(ast.Expr),
		Then: xt[4].(*ast.Stmt),
	}

	if e, ok := xt[5].([]any); ok {
		res.Else = e[1].(*ast.Stmt)
	}

	return res, i, nil
}

func (While) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	r := AllOf{
		Keyword("while"),
		Tok(Const("(")),
		Full{},
		Tok(Const(")")),
		Stmt{},
	}

	x, i, err = r.Parse(ctx, b, st)
	if err != nil {
		return
	}

	xt := x.([]any)

	return &ast.While{
		Base: ast.Base{Line: lineAt(ctx, st)},
		Cond: xt[2].(ast.Expr),
		Body: xt[4].(*ast.Stmt),
	}, i, nil
}

func (Read) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	r := AllOf{
		Keyword("read"),
		Tok(Name{}),
		Tok(Const(";")),
	}

	x, i, err = r.Parse(ctx, b, st)
	if err != nil {
		return
	}

	line := lineAt(ctx, st)
	name := x.([]any)[1].(string)

	return &ast.Read{
		Base: ast.Base{Line: line},
		X:    ast.NewIdent(line, name),
	}, i, nil
}

func (Write) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	r := AllOf{
		Keyword("write"),
		Tok(AnyOf{Str{}, Full{}}),
		Tok(Const(";")),
	}

	x, i, err = r.Parse(ctx, b, st)
	if err != nil {
		return
	}

	line := lineAt(ctx, st)
	res := &ast.Write{Base: ast.Base{Line: line}}

	switch v := x.([]any)[1].(type) {
	case string:
		res.X = ast.NewString(line, v)
	case ast.Expr:
		res.X = v
	default:
		return nil, st, NewTypeExpectedError(res.X)
	}

	return res, i, nil
}

func (Return) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	_, i, err = AllOf{Keyword("return"), Tok(Const(";"))}.Parse(ctx, b, st)
	if err != nil {
		return
	}

	return &ast.Return{Base: ast.Base{Line: lineAt(ctx, st)}}, i, nil
}

func (VarDecl) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	r := AllOf{
		AnyOf{Keyword("int"), Keyword("double"), Keyword("bool")},
		Tok(Name{}),
		Tok(Const(";")),
	}

	x, i, err = r.Parse(ctx, b, st)
	if err != nil {
		return
	}

	xt := x.([]any)

	t, ok := tp.Parse(string(xt[0].(Keyword)))
	if !ok {
		return nil, st, errors.New("unsupported type: %v", xt[0])
	}

	return ast.NewDecl(lineAt(ctx, st), xt[1].(string), t), i, nil
}

func (ExprStmt) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	r := AllOf{
		Full{},
		Tok(Const(";")),
	}

	x, i, err = r.Parse(ctx, b, st)
	if err != nil {
		return
	}

	return x.([]any)[0], i, nil
}

func stmtList(x any) (l []*ast.Stmt) {
	for _, s := range x.([]any) {
		l = append(l, s.(*ast.Stmt))
	}

	return l
}
