package sym

import (
	"tlog.app/go/errors"
	"tlog.app/go/tlog/tlwire"

	"github.com/slowlang/mini/compiler/tp"
)

type (
	// Table maps variable names to types.
	// Slot of a variable is its position in declaration order and never changes.
	Table struct {
		vars  []Var
		index map[string]int

		declaring bool
	}

	Var struct {
		Name string
		Type tp.Type
		Slot int
		Line int
	}
)

var (
	ErrDuplicate      = errors.New("variable already declared")
	ErrAfterStatement = errors.New("variables must be declared at the beginning")
)

func New() *Table {
	return &Table{
		index:     map[string]int{},
		declaring: true,
	}
}

// Declare records name.
// A declaration after the first statement is still recorded, but ErrAfterStatement is returned.
// A duplicate is not recorded and returns the slot of the first declaration.
func (t *Table) Declare(name string, typ tp.Type, line int) (slot int, err error) {
	if slot, ok := t.index[name]; ok {
		return slot, ErrDuplicate
	}

	slot = len(t.vars)

	t.vars = append(t.vars, Var{
		Name: name,
		Type: typ,
		Slot: slot,
		Line: line,
	})
	t.index[name] = slot

	if !t.declaring {
		return slot, ErrAfterStatement
	}

	return slot, nil
}

func (t *Table) Lookup(name string) (v Var, ok bool) {
	slot, ok := t.index[name]
	if !ok {
		return Var{}, false
	}

	return t.vars[slot], true
}

// SlotOf returns -1 for unknown names.
func (t *Table) SlotOf(name string) int {
	slot, ok := t.index[name]
	if !ok {
		return -1
	}

	return slot
}

// EndDeclarations closes the declaration window for good.
func (t *Table) EndDeclarations() {
	t.declaring = false
}

func (t *Table) Declaring() bool {
	return t.declaring
}

func (t *Table) Len() int {
	return len(t.vars)
}

// Vars returns variables in slot order.
func (t *Table) Vars() []Var {
	return t.vars
}

func (v Var) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	b = e.AppendMap(b, 3)
	b = e.AppendKeyString(b, "name", v.Name)
	b = e.AppendKeyString(b, "type", v.Type.String())
	b = e.AppendKeyInt(b, "slot", v.Slot)

	return b
}
