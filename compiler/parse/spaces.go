package parse

import (
	"bytes"
	"context"

	"tlog.app/go/errors"
)

type (
	Skipper interface {
		Skip(b []byte, st int) int
	}

	Spaces uint64

	// Blank skips spaces and // comments.
	Blank struct{}

	Spacer struct {
		Spaces Skipper
		Of     Parser
	}
)

var (
	SpaceAll = NewSpaces(' ', '\t', '\r', '\n')
)

func NewSpaces(skip ...byte) (ss Spaces) {
	for _, q := range skip {
		if q >= 64 {
			panic("too high char code")
		}

		ss |= 1 << q
	}

	return
}

func (s Spaces) Skip(b []byte, st int) (i int) {
	i = st

	for i < len(b) && b[i] < 64 && s&(1<<b[i]) != 0 {
		i++
	}

	return
}

func (Blank) Skip(b []byte, st int) (i int) {
	i = st

	for {
		i = SpaceAll.Skip(b, i)

		if !bytes.HasPrefix(b[i:], []byte("//")) {
			return i
		}

		for i < len(b) && b[i] != '\n' {
			i++
		}
	}
}

func Spaced(p Parser, ss Skipper) Spacer {
	return Spacer{
		Spaces: ss,
		Of:     p,
	}
}

// Tok is p preceded by blanks.
func Tok(p Parser) Spacer {
	return Spaced(p, Blank{})
}

func (p Spacer) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	vst := p.Spaces.Skip(b, st)

	x, i, err = p.Of.Parse(ctx, b, vst)
	if err != nil {
		if i == vst {
			i = st
		}

		err = errors.Wrap(err, "%v", name(p.Of))
	}

	return
}
