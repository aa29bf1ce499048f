package diag

import (
	"fmt"
	"strings"

	"nikand.dev/go/heap"
	"tlog.app/go/loc"
	"tlog.app/go/tlog"
	"tlog.app/go/tlog/tlwire"
)

type (
	Kind int

	Diagnostic struct {
		Line int
		Kind Kind
		Msg  string

		From loc.PC // where it was reported
		seq  int
	}

	// List accumulates diagnostics of one compilation.
	List struct {
		d []Diagnostic
	}

	// Error is returned by the driver when checking produced diagnostics.
	Error struct {
		Diags []Diagnostic
	}
)

const (
	TypeMismatch Kind = iota
	DuplicateDeclaration
	DeclarationAfterStatement
	UndeclaredVariable
)

var kindNames = []string{
	TypeMismatch:              "TypeMismatch",
	DuplicateDeclaration:      "DuplicateDeclaration",
	DeclarationAfterStatement: "DeclarationAfterStatement",
	UndeclaredVariable:        "UndeclaredVariable",
}

func (l *List) Add(line int, kind Kind, format string, args ...any) {
	d := Diagnostic{
		Line: line,
		Kind: kind,
		Msg:  fmt.Sprintf(format, args...),
		From: loc.Caller(1),
		seq:  len(l.d),
	}

	tlog.V("diag").Printw("diagnostic", "line", d.Line, "kind", d.Kind, "msg", d.Msg, "from", d.From)

	l.d = append(l.d, d)
}

func (l *List) Len() int {
	if l == nil {
		return 0
	}

	return len(l.d)
}

// All returns diagnostics in report order.
func (l *List) All() []Diagnostic {
	return l.d
}

// Sorted returns diagnostics ordered by line, keeping report order within a line.
func (l *List) Sorted() []Diagnostic {
	h := heap.Heap[Diagnostic]{Less: lineLess}

	for _, d := range l.d {
		h.Push(d)
	}

	r := make([]Diagnostic, 0, h.Len())

	for h.Len() != 0 {
		r = append(r, h.Pop())
	}

	return r
}

// Err returns nil if there are no diagnostics.
func (l *List) Err() error {
	if l.Len() == 0 {
		return nil
	}

	return &Error{Diags: l.Sorted()}
}

func lineLess(d []Diagnostic, i, j int) bool {
	if d[i].Line != d[j].Line {
		return d[i].Line < d[j].Line
	}

	return d[i].seq < d[j].seq
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("Line %d: %s.", d.Line, d.Msg)
}

func (d Diagnostic) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	b = e.AppendMap(b, 3)
	b = e.AppendKeyInt(b, "line", d.Line)
	b = e.AppendKeyString(b, "kind", d.Kind.String())
	b = e.AppendKeyString(b, "msg", d.Msg)

	return b
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}

	return kindNames[k]
}

func (e *Error) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%d errors detected", len(e.Diags))

	for _, d := range e.Diags {
		b.WriteString("\n")
		b.WriteString(d.String())
	}

	return b.String()
}
