package il

import (
	"bytes"
	"strconv"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/tlog/tlwire"
)

type (
	// Writer is an append-only sink of instruction lines.
	Writer struct {
		b     []byte
		lines int
	}

	// Label is a branch target: Name followed by the construct number.
	Label struct {
		Name string
		N    int
	}

	Kind int

	// Labels hands out construct numbers, one counter per Kind.
	Labels struct {
		next [kinds]int
	}
)

const (
	If Kind = iota
	While
	Logic

	kinds
)

// End is the label of the epilogue every exit leaves to.
const End = "EndMain"

func NewWriter(b []byte) *Writer {
	return &Writer{b: b}
}

// Op writes one instruction line.
func (w *Writer) Op(format string, args ...any) {
	w.b = hfmt.Appendf(w.b, format, args...)
	w.b = append(w.b, '\n')
	w.lines++
}

// Mark writes l as a branch target pointing at nop.
func (w *Writer) Mark(l Label) {
	w.Op("%v: nop", l)
}

func (w *Writer) Leave() {
	w.Op("leave %s", End)
}

func (w *Writer) Bytes() []byte {
	return w.b
}

func (w *Writer) Lines() int {
	return w.lines
}

// Next returns a fresh construct number of kind k starting from 1.
func (ls *Labels) Next(k Kind) int {
	ls.next[k]++

	return ls.next[k]
}

func (ls *Labels) Reset() {
	ls.next = [kinds]int{}
}

func (l Label) String() string {
	return l.Name + strconv.Itoa(l.N)
}

func (l Label) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder

	return e.AppendString(b, l.String())
}

// Body cuts lines written after the prologue and before the epilogue.
func Body(obj []byte) []byte {
	st := bytes.Index(obj, []byte(".maxstack "))
	if st < 0 {
		return nil
	}

	nl := bytes.IndexByte(obj[st:], '\n')
	if nl < 0 {
		return nil
	}

	st += nl + 1

	end := bytes.LastIndex(obj, []byte(epilogStart))
	if end < st {
		return nil
	}

	return obj[st:end]
}
