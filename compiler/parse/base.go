package parse

import (
	"context"
	"fmt"
	"strings"

	"tlog.app/go/errors"
)

type (
	None struct{}

	Optional struct {
		Parser
	}

	AllOf []Parser

	AnyOf []Parser

	// Many repeats Of until it fails without consuming input.
	Many struct {
		Of Parser
	}
)

func (None) Parse(ctx context.Context, b []byte, st int) (_ any, i int, err error) {
	return None{}, st, nil
}

func (p Optional) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	x, i, err = p.Parser.Parse(ctx, b, st)
	if err != nil && i == st {
		return None{}, st, nil
	}

	return
}

func (p AllOf) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	i = st

	res := make([]any, len(p))

	for j, r := range p {
		x, i, err = r.Parse(ctx, b, i)
		if err != nil {
			return nil, i, errors.Wrap(err, "%v (%d)", name(r), j)
		}

		res[j] = x
	}

	return res, i, nil
}

func (p AnyOf) Parse(ctx context.Context, b []byte, st int) (_ any, i int, err error) {
	for _, r := range p {
		x, j, e := r.Parse(ctx, b, st)
		if e == nil {
			return x, j, nil
		}
		if j == st {
			continue
		}
		if err == nil || j > i {
			i = j
			err = errors.Wrap(e, "%v", name(r))
		}
	}

	if err != nil {
		return
	}

	return nil, st, errors.New("expected %v", joinHuman(p...))
}

func (p Many) Parse(ctx context.Context, b []byte, st int) (_ any, i int, err error) {
	var res []any

	i = st

	for {
		x, j, err := p.Of.Parse(ctx, b, i)
		if err != nil {
			if j == i {
				return res, i, nil
			}

			return nil, j, err
		}

		if j == i {
			return res, i, nil
		}

		res = append(res, x)
		i = j
	}
}

func name(p Parser) string {
	switch p := p.(type) {
	case Const:
		return fmt.Sprintf("%q", string(p))
	case Keyword:
		return string(p)
	case Spacer:
		return name(p.Of)
	}

	s := fmt.Sprintf("%T", p)

	return strings.TrimPrefix(s, "parse.")
}

func joinHuman(l ...Parser) string {
	switch len(l) {
	case 0:
		return "<none>"
	case 1:
		return name(l[0])
	}

	var b strings.Builder

	for i, r := range l {
		if i+1 == len(l) {
			b.WriteString(" or ")
		} else if i != 0 {
			b.WriteString(", ")
		}

		b.WriteString(name(r))
	}

	return b.String()
}
