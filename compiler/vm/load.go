package vm

import (
	"bytes"
	"strconv"
	"strings"

	"tlog.app/go/errors"
	"tlog.app/go/tlog/tlwire"

	"github.com/slowlang/mini/compiler/tp"
)

type (
	// Program is loaded instruction text ready to run.
	Program struct {
		code   []instr
		labels map[string]int

		// handler is the first catch instruction, -1 if none.
		handler int

		Locals   []Local
		MaxStack int
	}

	Local struct {
		Name string
		Type tp.Type
	}

	instr struct {
		line int
		op   string
		arg  string
	}

	SyntaxError struct {
		Line int
		Text string
		Err  error
	}
)

// Load parses instruction text of a single entry method.
// Directives are skipped except .locals and .maxstack.
func Load(text []byte) (p *Program, err error) {
	p = &Program{
		labels:  make(map[string]int),
		handler: -1,
	}

	for n, l := range bytes.Split(text, []byte("\n")) {
		line := n + 1
		s := strings.TrimSpace(string(l))

		if s == "" || strings.HasPrefix(s, "//") {
			continue
		}

		err = p.loadLine(line, s)
		if err != nil {
			return nil, SyntaxError{Line: line, Text: s, Err: err}
		}
	}

	for _, in := range p.code {
		if !isBranch(in.op) {
			continue
		}

		if _, ok := p.labels[in.arg]; !ok {
			return nil, SyntaxError{Line: in.line, Text: in.op + " " + in.arg, Err: errors.New("undefined label")}
		}
	}

	return p, nil
}

func (p *Program) loadLine(line int, s string) (err error) {
	switch {
	case s == "{" || s == "}" || s == ".try" || s == ".entrypoint":
		return nil
	case strings.HasPrefix(s, ".assembly") || strings.HasPrefix(s, ".method"):
		return nil
	case strings.HasPrefix(s, ".maxstack"):
		p.MaxStack, err = strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(s, ".maxstack")))
		if err != nil {
			return errors.Wrap(err, "maxstack")
		}

		return nil
	case strings.HasPrefix(s, ".locals"):
		return p.loadLocal(s)
	case strings.HasPrefix(s, "catch "):
		p.handler = len(p.code)
		return nil
	case strings.HasPrefix(s, "."):
		return errors.New("unsupported directive")
	}

	if lab, rest, ok := strings.Cut(s, ": "); ok && isLabel(lab) {
		if _, dup := p.labels[lab]; dup {
			return errors.New("duplicate label: %s", lab)
		}

		p.labels[lab] = len(p.code)
		s = rest
	}

	op, arg, _ := strings.Cut(s, " ")

	if _, ok := ops[op]; !ok {
		return errors.New("unsupported instruction: %s", op)
	}

	p.code = append(p.code, instr{line: line, op: op, arg: strings.TrimSpace(arg)})

	return nil
}

// loadLocal parses .locals init ([slot] type _name).
func (p *Program) loadLocal(s string) error {
	s = strings.TrimPrefix(s, ".locals")
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "init")
	s = strings.TrimSpace(s)

	if !strings.HasPrefix(s, "([") || !strings.HasSuffix(s, ")") {
		return errors.New("bad locals")
	}

	s = s[2 : len(s)-1]

	slot, rest, ok := strings.Cut(s, "]")
	if !ok {
		return errors.New("bad locals slot")
	}

	n, err := strconv.Atoi(slot)
	if err != nil || n < 0 {
		return errors.New("bad locals slot: %q", slot)
	}

	f := strings.Fields(rest)
	if len(f) != 2 {
		return errors.New("bad locals: %q", rest)
	}

	t, err := localType(f[0])
	if err != nil {
		return err
	}

	for len(p.Locals) <= n {
		p.Locals = append(p.Locals, Local{})
	}

	p.Locals[n] = Local{Name: strings.TrimPrefix(f[1], "_"), Type: t}

	return nil
}

func localType(s string) (tp.Type, error) {
	switch s {
	case "int32":
		return tp.Int, nil
	case "float64":
		return tp.Real, nil
	case "bool":
		return tp.Bool, nil
	case "string":
		return tp.String, nil
	default:
		return tp.Unknown, errors.New("unsupported local type: %s", s)
	}
}

func isLabel(s string) bool {
	if s == "" {
		return false
	}

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
		case c >= '0' && c <= '9' && i != 0:
		default:
			return false
		}
	}

	return true
}

func isBranch(op string) bool {
	switch op {
	case "br", "brfalse", "brtrue", "beq", "leave":
		return true
	}

	return false
}

// Len is the number of instructions.
func (p *Program) Len() int { return len(p.code) }

func (p *Program) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	b = e.AppendMap(b, -1)

	b = e.AppendKeyInt(b, "instrs", len(p.code))
	b = e.AppendKeyInt(b, "labels", len(p.labels))
	b = e.AppendKeyInt(b, "locals", len(p.Locals))
	b = e.AppendKeyInt(b, "handler", p.handler)

	return e.AppendBreak(b)
}

func (e SyntaxError) Error() string {
	return "line " + strconv.Itoa(e.Line) + ": " + e.Text + ": " + e.Err.Error()
}

func (e SyntaxError) Unwrap() error { return e.Err }
