package compiler

import (
	"context"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/mini/compiler/ast"
	"github.com/slowlang/mini/compiler/back"
	"github.com/slowlang/mini/compiler/config"
	"github.com/slowlang/mini/compiler/front"
	"github.com/slowlang/mini/compiler/parse"
)

func CompileFile(ctx context.Context, name string, cfg config.Config) (obj []byte, err error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "size", len(text), "name", name)

	return Compile(ctx, name, text, cfg)
}

// Compile translates program text into an assembly listing.
// Checking problems are returned all together as *diag.Error.
func Compile(ctx context.Context, name string, text []byte, cfg config.Config) (obj []byte, err error) {
	p, _, err := Check(ctx, name, text)
	if err != nil {
		return nil, err
	}

	obj, err = back.New(cfg).CompileProgram(ctx, nil, p)
	if err != nil {
		return nil, errors.Wrap(err, "compile")
	}

	return obj, nil
}

// Check parses and checks text.
// The program is returned with the checker state even if it has problems.
func Check(ctx context.Context, name string, text []byte) (p *ast.Program, st *front.Front, err error) {
	p, err = parse.New(name, text).Parse(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "parse text")
	}

	st = front.New()

	st.Check(ctx, p)

	if !st.OK(p) {
		return p, st, st.Diags.Err()
	}

	return p, st, nil
}
