package parse

import (
	"bytes"
	"context"

	"tlog.app/go/errors"
)

type (
	Const []byte

	// Keyword is Const not followed by an ident char.
	Keyword string

	Ident []byte

	// Name is an Ident which is not a keyword.
	Name struct{}

	// Str is a double quoted string on a single line.
	Str struct{}

	// Op matches one of operators, not followed by a longer one.
	Op []string
)

var keywords = map[string]struct{}{
	"program": {},
	"if":      {},
	"else":    {},
	"while":   {},
	"read":    {},
	"write":   {},
	"return":  {},
	"int":     {},
	"double":  {},
	"bool":    {},
	"true":    {},
	"false":   {},
}

var longOps = map[string]struct{}{
	"||": {}, "&&": {},
	"<=": {}, ">=": {}, "==": {}, "!=": {},
}

func (p Const) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	if bytes.HasPrefix(b[st:], p) {
		return Const(b[st : st+len(p)]), st + len(p), nil
	}

	return nil, st, errors.New("%q expected", []byte(p))
}

func (p Keyword) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	i = st + len(p)

	if !bytes.HasPrefix(b[st:], []byte(p)) || i < len(b) && isIdentChar(b[i]) {
		return nil, st, errors.New("%s expected", string(p))
	}

	return p, i, nil
}

func (p Ident) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	if st == len(b) {
		return nil, st, errors.New("Ident expected")
	}

	i = st

	c := b[i]

	switch {
	case c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_':
		i++
	default:
		return nil, st, errors.New("Ident expected")
	}

	for i < len(b) && isIdentChar(b[i]) {
		i++
	}

	return Ident(b[st:i]), i, nil
}

func (Name) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	x, i, err = Ident{}.Parse(ctx, b, st)
	if err != nil {
		return nil, st, err
	}

	if _, ok := keywords[string(x.(Ident))]; ok {
		return nil, st, errors.New("name expected, got keyword %s", x)
	}

	return string(x.(Ident)), i, nil
}

func (Str) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	if st == len(b) || b[st] != '"' {
		return nil, st, errors.New("string expected")
	}

	for i = st + 1; i < len(b); i++ {
		switch b[i] {
		case '\\':
			i++
		case '\n':
			return nil, i, errors.New("newline in string")
		case '"':
			return string(b[st : i+1]), i + 1, nil
		}
	}

	return nil, i, errors.New("unterminated string")
}

func (p Op) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	for _, op := range p {
		if !bytes.HasPrefix(b[st:], []byte(op)) {
			continue
		}

		i = st + len(op)

		if len(op) == 1 && i < len(b) {
			if _, ok := longOps[op+string(b[i])]; ok {
				continue
			}
		}

		return op, i, nil
	}

	return nil, st, errors.New("one of %q expected", []string(p))
}

func isIdentChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}
