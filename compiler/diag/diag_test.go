package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListSorted(t *testing.T) {
	var l List

	l.Add(5, TypeMismatch, "incorrect type: %s", "x")
	l.Add(2, UndeclaredVariable, "undeclared variable: %s", "y")
	l.Add(5, DuplicateDeclaration, "variable already declared: %s", "z")
	l.Add(1, DeclarationAfterStatement, "late")

	require.Equal(t, 4, l.Len())

	var lines []int
	var kinds []Kind

	for _, d := range l.Sorted() {
		lines = append(lines, d.Line)
		kinds = append(kinds, d.Kind)
	}

	assert.Equal(t, []int{1, 2, 5, 5}, lines)
	assert.Equal(t, []Kind{DeclarationAfterStatement, UndeclaredVariable, TypeMismatch, DuplicateDeclaration}, kinds)

	assert.Equal(t, 5, l.All()[0].Line, "All keeps report order")
}

func TestListErr(t *testing.T) {
	var l List

	assert.NoError(t, l.Err())

	var nl *List
	assert.Equal(t, 0, nl.Len())

	l.Add(3, UndeclaredVariable, "undeclared variable: %s", "y")
	l.Add(1, TypeMismatch, "incorrect type: cannot assign double to int x")

	err := l.Err()
	require.Error(t, err)

	assert.Equal(t, "2 errors detected\n"+
		"Line 1: incorrect type: cannot assign double to int x.\n"+
		"Line 3: undeclared variable: y.", err.Error())

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Len(t, e.Diags, 2)
}

func TestDiagnosticFrom(t *testing.T) {
	var l List

	l.Add(1, TypeMismatch, "x")

	name, _, _ := l.All()[0].From.NameFileLine()
	assert.Contains(t, name, "TestDiagnosticFrom")
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "UndeclaredVariable", UndeclaredVariable.String())
	assert.Equal(t, "Kind(10)", Kind(10).String())
}
