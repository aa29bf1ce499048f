package parse

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"sort"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/mini/compiler/ast"
)

type (
	State struct {
		b  []byte
		nl []int // newline offsets

		name string

		Grammar Parser
	}

	Parser interface {
		Parse(ctx context.Context, b []byte, st int) (x any, i int, err error)
	}

	TypeExpectedError struct {
		T any
	}

	PartialReadError struct {
		Line int
	}

	stateCtxKey struct{}
)

func ParseFile(ctx context.Context, name string) (*ast.Program, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	return New(name, data).Parse(ctx)
}

func Parse(ctx context.Context, text []byte) (*ast.Program, error) {
	return New("", text).Parse(ctx)
}

func New(name string, text []byte) *State {
	s := &State{
		b:       text,
		name:    name,
		Grammar: Program{},
	}

	for i, c := range text {
		if c == '\n' {
			s.nl = append(s.nl, i)
		}
	}

	return s
}

func (s *State) Parse(ctx context.Context) (p *ast.Program, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "parse", "name", s.name, "size", len(s.b))
	defer tr.Finish("err", &err)

	ctx = context.WithValue(ctx, stateCtxKey{}, s)

	x, i, err := s.Grammar.Parse(ctx, s.b, 0)
	if err != nil {
		return nil, errors.Wrap(err, "line %d", s.Line(i))
	}

	i = Blank{}.Skip(s.b, i)

	if i != len(s.b) {
		return nil, PartialReadError{Line: s.Line(i)}
	}

	p, ok := x.(*ast.Program)
	if !ok {
		return nil, NewTypeExpectedError(p)
	}

	return p, nil
}

// Line returns 1-based line number of byte offset pos.
func (s *State) Line(pos int) int {
	return sort.SearchInts(s.nl, pos) + 1
}

func (s *State) Text(pos, end int) []byte {
	return s.b[pos:end]
}

func StateFromContext(ctx context.Context) *State {
	s, _ := ctx.Value(stateCtxKey{}).(*State)

	return s
}

// lineAt works without State in context, then the line is 0.
func lineAt(ctx context.Context, pos int) int {
	s := StateFromContext(ctx)
	if s == nil {
		return 0
	}

	return s.Line(pos)
}

func NewTypeExpectedError(t any) TypeExpectedError {
	return TypeExpectedError{
		T: t,
	}
}

func (e TypeExpectedError) Error() string {
	return fmt.Sprintf("%v expected", reflect.TypeOf(e.T))
}

func (e PartialReadError) Error() string {
	return fmt.Sprintf("line %d: unexpected text after program end", e.Line)
}
