package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slowlang/mini/compiler/tp"
)

func TestNewBinary(t *testing.T) {
	l, r := NewIdent(1, "a"), NewInt(1, "2")

	assert.IsType(t, &Logical{}, NewBinary(1, OpAnd, l, r))
	assert.IsType(t, &Rel{}, NewBinary(1, OpLe, l, r))
	assert.IsType(t, &Add{}, NewBinary(1, OpSub, l, r))
	assert.IsType(t, &Mul{}, NewBinary(1, OpDiv, l, r))
	assert.IsType(t, &Bit{}, NewBinary(1, OpBitAnd, l, r))

	assert.Panics(t, func() { NewBinary(1, OpNot, l, r) })
}

func TestTypes(t *testing.T) {
	id := NewIdent(3, "a")

	assert.Equal(t, tp.Ident, TypeOf(id))
	assert.Equal(t, -1, id.Slot)
	assert.Equal(t, 3, Line(id))

	assert.Equal(t, tp.Int, SetType(id, tp.Int))
	assert.Equal(t, tp.Int, id.Type)

	w := NewWiden(id)
	assert.Equal(t, tp.Real, w.Type)
	assert.Equal(t, 3, w.Line)

	assert.Equal(t, "true", NewBool(1, true).Value)
	assert.Equal(t, tp.Bool, NewBool(1, false).Type)

	assert.Nil(t, NewProgram(1).Body)
	assert.Len(t, NewProgram(1, NewStmt(1, NewDecl(1, "x", tp.Int))).Body.Stmts, 1)
}
