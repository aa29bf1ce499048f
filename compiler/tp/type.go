package tp

import "tlog.app/go/tlog/tlwire"

type (
	// Type is a type tag attached to every node after checking.
	Type int
)

const (
	Unknown Type = iota

	Error // checking failed in the subtree
	Void  // statement checked fine
	Ident // identifier not yet resolved through the symbol table

	Int
	Real
	Bool

	String // string literals, write only
)

var names = []string{
	Unknown: "unknown",
	Error:   "error",
	Void:    "void",
	Ident:   "ident",
	Int:     "int",
	Real:    "double",
	Bool:    "bool",
	String:  "string",
}

// Parse returns the scalar type by its source keyword.
func Parse(s string) (Type, bool) {
	switch s {
	case "int":
		return Int, true
	case "double":
		return Real, true
	case "bool":
		return Bool, true
	}

	return Unknown, false
}

func (t Type) Scalar() bool {
	return t == Int || t == Real || t == Bool
}

func (t Type) Numeric() bool {
	return t == Int || t == Real
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(names) {
		return "type(?)"
	}

	return names[t]
}

func (t Type) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder

	return e.AppendString(b, t.String())
}
