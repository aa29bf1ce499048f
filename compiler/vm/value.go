package vm

import (
	"strconv"

	"tlog.app/go/errors"
	"tlog.app/go/tlog/tlwire"
)

type (
	Kind int

	// Value is an evaluation stack or local slot entry.
	// Bools are Int32 as the runtime stores them.
	Value struct {
		Kind Kind

		I int32
		F float64
		S string
	}
)

const (
	Null Kind = iota
	Int32
	Float64
	String
	Object
)

var kindNames = []string{
	Null:    "null",
	Int32:   "int32",
	Float64: "float64",
	String:  "string",
	Object:  "object",
}

func Int(v int32) Value { return Value{Kind: Int32, I: v} }

func Float(v float64) Value { return Value{Kind: Float64, F: v} }

func Str(s string) Value { return Value{Kind: String, S: s} }

// True is the brfalse/brtrue interpretation of v.
func (v Value) True() bool {
	switch v.Kind {
	case Int32:
		return v.I != 0
	case Float64:
		return v.F != 0
	case Null:
		return false
	default:
		return true
	}
}

func equal(l, r Value) (bool, error) {
	if l.Kind != r.Kind {
		return false, errors.New("operand kinds differ: %v and %v", l.Kind, r.Kind)
	}

	switch l.Kind {
	case Int32:
		return l.I == r.I, nil
	case Float64:
		return l.F == r.F, nil
	default:
		return false, errors.New("unsupported operand %v", l.Kind)
	}
}

func (v Value) String() string {
	switch v.Kind {
	case Int32:
		return strconv.FormatInt(int64(v.I), 10)
	case Float64:
		return strconv.FormatFloat(v.F, 'g', -1, 64)
	case String, Object:
		return v.S
	default:
		return "null"
	}
}

func (v Value) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder

	return e.AppendString(b, v.Kind.String()+":"+v.String())
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}

	return "kind(" + strconv.Itoa(int(k)) + ")"
}
