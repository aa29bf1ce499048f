package vm

import (
	"strconv"
	"strings"

	"tlog.app/go/errors"
)

type builtin func(m *Machine, in instr) error

var builtins = map[string]builtin{
	"Console::Write(int32)": func(m *Machine, in instr) error {
		return m.write(func(v Value) string { return v.String() })
	},
	"Console::Write(float64)": func(m *Machine, in instr) error {
		return m.write(func(v Value) string { return v.String() })
	},
	"Console::Write(bool)": func(m *Machine, in instr) error {
		return m.write(func(v Value) string {
			if v.True() {
				return "True"
			}

			return "False"
		})
	},
	"Console::Write(string)": func(m *Machine, in instr) error {
		return m.write(func(v Value) string { return v.S })
	},
	"Console::WriteLine(string)": func(m *Machine, in instr) error {
		return m.write(func(v Value) string { return v.S + "\n" })
	},
	"Console::ReadLine()": func(m *Machine, in instr) error {
		v, err := m.readLine()
		if err != nil {
			return err
		}

		return m.push(v)
	},
	"Int32::Parse(string)": func(m *Machine, in instr) error {
		s, err := m.popString(in)
		if err != nil {
			return err
		}

		v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
		if errors.Is(err, strconv.ErrRange) {
			return &Exception{Line: in.line, Msg: "Value was either too large or too small for an Int32."}
		}
		if err != nil {
			return &Exception{Line: in.line, Msg: "Input string was not in a correct format."}
		}

		return m.push(Int(int32(v)))
	},
	"Double::Parse(string, class [mscorlib]System.IFormatProvider)": func(m *Machine, in instr) error {
		if _, err := m.pop(); err != nil {
			return err
		}

		s, err := m.popString(in)
		if err != nil {
			return err
		}

		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return &Exception{Line: in.line, Msg: "Input string was not in a correct format."}
		}

		return m.push(Float(v))
	},
	"Boolean::Parse(string)": func(m *Machine, in instr) error {
		s, err := m.popString(in)
		if err != nil {
			return err
		}

		switch t := strings.TrimSpace(s); {
		case strings.EqualFold(t, "true"):
			return m.push(Int(1))
		case strings.EqualFold(t, "false"):
			return m.push(Int(0))
		}

		return &Exception{Line: in.line, Msg: "String '" + s + "' was not recognized as a valid Boolean."}
	},
	"String::Format(class [mscorlib]System.IFormatProvider, string, object)": func(m *Machine, in instr) error {
		v, err := m.pop()
		if err != nil {
			return err
		}

		f, err := m.pop()
		if err != nil {
			return err
		}

		if _, err = m.pop(); err != nil {
			return err
		}

		s, ok := format(f.S, v)
		if !ok {
			return &Exception{Line: in.line, Msg: "Input string was not in a correct format."}
		}

		return m.push(Str(s))
	},
	"CultureInfo::get_InvariantCulture()": func(m *Machine, in instr) error {
		return m.push(Value{Kind: Object, S: "InvariantCulture"})
	},
	"Exception::get_Message()": func(m *Machine, in instr) error {
		v, err := m.pop()
		if err != nil {
			return err
		}

		return m.push(Str(v.S))
	},
}

func (m *Machine) call(in instr) error {
	key, ok := methodKey(in.arg)
	if !ok {
		return errors.New("line %d: bad method reference: %s", in.line, in.arg)
	}

	f, ok := builtins[key]
	if !ok {
		return errors.New("line %d: unsupported method: %s", in.line, key)
	}

	return f(m, in)
}

// methodKey reduces a method reference to Type::Method(params).
func methodKey(ref string) (string, bool) {
	i := strings.Index(ref, "::")
	if i < 0 {
		return "", false
	}

	head := ref[:i]
	j := strings.LastIndexAny(head, ".] ")

	return head[j+1:] + ref[i:], true
}

func (m *Machine) write(f func(v Value) string) error {
	v, err := m.pop()
	if err != nil {
		return err
	}

	_, err = m.out.WriteString(f(v))
	if err != nil {
		return errors.Wrap(err, "write")
	}

	return nil
}

func (m *Machine) popString(in instr) (string, error) {
	v, err := m.pop()
	if err != nil {
		return "", err
	}

	if v.Kind == Null {
		return "", &Exception{Line: in.line, Msg: "Value cannot be null."}
	}

	return v.S, nil
}

// format supports a single {0} or {0:0.000} placeholder.
func format(f string, v Value) (string, bool) {
	st := strings.Index(f, "{0")
	if st < 0 {
		return f, true
	}

	end := strings.IndexByte(f[st:], '}')
	if end < 0 {
		return "", false
	}

	end += st

	verb := f[st+2 : end]

	var s string

	switch {
	case verb == "":
		s = v.String()
	case strings.HasPrefix(verb, ":0"):
		prec := 0

		if frac, ok := strings.CutPrefix(verb, ":0."); ok {
			if strings.Trim(frac, "0") != "" {
				return "", false
			}

			prec = len(frac)
		} else if verb != ":0" {
			return "", false
		}

		x := v.F
		if v.Kind == Int32 {
			x = float64(v.I)
		}

		s = strconv.FormatFloat(x, 'f', prec, 64)
	default:
		return "", false
	}

	return f[:st] + s + f[end+1:], true
}
