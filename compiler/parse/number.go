package parse

import (
	"context"
	"strconv"

	"tlog.app/go/errors"

	"github.com/slowlang/mini/compiler/ast"
)

type (
	// Num is an int or a double literal: digits [. digits].
	Num struct{}

	Bool struct{}
)

func (p Num) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	i = skipDigits(b, st)
	if i == st {
		return nil, st, errors.New("Num expected")
	}

	line := lineAt(ctx, st)

	if i+1 < len(b) && b[i] == '.' && isDigit(b[i+1]) {
		i = skipDigits(b, i+1)

		return ast.NewReal(line, string(b[st:i])), i, nil
	}

	if i < len(b) && isIdentChar(b[i]) {
		return nil, i, errors.New("bad number")
	}

	v, err := strconv.ParseInt(string(b[st:i]), 10, 32)
	if err != nil {
		return nil, i, errors.Wrap(err, "int literal")
	}

	return ast.NewInt(line, strconv.FormatInt(v, 10)), i, nil
}

func (Bool) Parse(ctx context.Context, b []byte, st int) (_ any, i int, err error) {
	for _, v := range []bool{true, false} {
		kw := Keyword(strconv.FormatBool(v))

		_, i, err = kw.Parse(ctx, b, st)
		if err == nil {
			return ast.NewBool(lineAt(ctx, st), v), i, nil
		}
	}

	return nil, st, errors.New("Bool expected")
}

func skipDigits(b []byte, i int) int {
	for i < len(b) && isDigit(b[i]) {
		i++
	}

	return i
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
