package vm

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/mini/compiler/tp"
)

type (
	// Machine executes a loaded Program against text input and output.
	Machine struct {
		p *Program

		in  *bufio.Reader
		out *bufio.Writer

		// MaxSteps stops runaway loops. Zero is no limit.
		MaxSteps int

		locals []Value
		stack  []Value
		pc     int
		steps  int
	}

	// Exception is a runtime error raised by an instruction.
	// It is delivered to the catch handler if there is one.
	Exception struct {
		Line int
		Msg  string
	}
)

var (
	ErrStepLimit = errors.New("step limit exceeded")
	ErrUnderflow = errors.New("stack underflow")
	ErrOverflow  = errors.New("stack overflow")
)

var ops = map[string]struct{}{
	"nop": {}, "pop": {}, "ret": {}, "box": {},
	"ldc.i4": {}, "ldc.i4.0": {}, "ldc.i4.1": {}, "ldc.r8": {}, "ldstr": {},
	"ldloc": {}, "stloc": {},
	"add": {}, "sub": {}, "mul": {}, "div": {}, "neg": {},
	"and": {}, "or": {}, "not": {},
	"clt": {}, "cgt": {}, "ceq": {},
	"conv.i4": {}, "conv.r8": {},
	"br": {}, "brfalse": {}, "brtrue": {}, "beq": {}, "leave": {},
	"call": {}, "callvirt": {},
}

// Run loads and executes code.
func Run(ctx context.Context, code []byte, in io.Reader, out io.Writer) (err error) {
	p, err := Load(code)
	if err != nil {
		return errors.Wrap(err, "load")
	}

	return New(p, in, out).Run(ctx)
}

func New(p *Program, in io.Reader, out io.Writer) *Machine {
	return &Machine{
		p:   p,
		in:  bufio.NewReader(in),
		out: bufio.NewWriter(out),
	}
}

// Run executes the program from the first instruction until ret.
// Uncaught exceptions are returned as *Exception.
func (m *Machine) Run(ctx context.Context) (err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "vm: run", "program", m.p)
	defer func() {
		tr.Finish("steps", m.steps, "err", err)
	}()

	defer func() {
		e := m.out.Flush()
		if err == nil && e != nil {
			err = errors.Wrap(e, "flush")
		}
	}()

	m.reset()

	for m.pc < len(m.p.code) {
		if m.MaxSteps != 0 && m.steps >= m.MaxSteps {
			return ErrStepLimit
		}

		if m.steps&0xfff == 0 {
			if err = ctx.Err(); err != nil {
				return err
			}
		}

		m.steps++

		in := m.p.code[m.pc]
		m.pc++

		if tr.If("vm_exec") {
			tr.Printw("exec", "line", in.line, "op", in.op, "arg", in.arg, "depth", len(m.stack))
		}

		var done bool

		done, err = m.exec(in)
		if ex, ok := err.(*Exception); ok && m.p.handler >= 0 && m.pc <= m.p.handler {
			tr.V("vm_exec").Printw("exception caught", "line", ex.Line, "msg", ex.Msg)

			m.stack = append(m.stack[:0], Value{Kind: Object, S: ex.Msg})
			m.pc = m.p.handler
			err = nil

			continue
		}
		if err != nil {
			return err
		}

		if done {
			return nil
		}
	}

	return nil
}

func (m *Machine) reset() {
	m.locals = make([]Value, len(m.p.Locals))

	for i, l := range m.p.Locals {
		m.locals[i] = zero(l.Type)
	}

	m.stack = m.stack[:0]
	m.pc = 0
	m.steps = 0
}

func (m *Machine) exec(in instr) (done bool, err error) {
	switch in.op {
	case "nop", "box":
	case "ret":
		return true, nil
	case "pop":
		_, err = m.pop()
	case "ldc.i4":
		var v int64

		v, err = strconv.ParseInt(in.arg, 10, 32)
		if err != nil {
			return false, errors.Wrap(err, "line %d: ldc.i4", in.line)
		}

		err = m.push(Int(int32(v)))
	case "ldc.i4.0":
		err = m.push(Int(0))
	case "ldc.i4.1":
		err = m.push(Int(1))
	case "ldc.r8":
		var v float64

		v, err = strconv.ParseFloat(in.arg, 64)
		if err != nil {
			return false, errors.Wrap(err, "line %d: ldc.r8", in.line)
		}

		err = m.push(Float(v))
	case "ldstr":
		var s string

		s, err = strconv.Unquote(in.arg)
		if err != nil {
			return false, errors.Wrap(err, "line %d: ldstr", in.line)
		}

		err = m.push(Str(s))
	case "ldloc":
		var n int

		n, err = m.slot(in)
		if err != nil {
			return false, err
		}

		err = m.push(m.locals[n])
	case "stloc":
		var n int
		var v Value

		n, err = m.slot(in)
		if err != nil {
			return false, err
		}

		v, err = m.pop()
		if err != nil {
			return false, err
		}

		m.locals[n] = v
	case "add", "sub", "mul", "div", "and", "or", "clt", "cgt", "ceq":
		err = m.binary(in)
	case "neg", "not", "conv.i4", "conv.r8":
		err = m.unary(in)
	case "br", "leave":
		if in.op == "leave" {
			m.stack = m.stack[:0]
		}

		m.pc = m.p.labels[in.arg]
	case "brfalse", "brtrue":
		var v Value

		v, err = m.pop()
		if err != nil {
			return false, err
		}

		if v.True() == (in.op == "brtrue") {
			m.pc = m.p.labels[in.arg]
		}
	case "beq":
		var l, r Value

		r, err = m.pop()
		if err == nil {
			l, err = m.pop()
		}
		if err != nil {
			return false, err
		}

		var eq bool

		eq, err = equal(l, r)
		if err != nil {
			return false, errors.Wrap(err, "line %d: beq", in.line)
		}

		if eq {
			m.pc = m.p.labels[in.arg]
		}
	case "call", "callvirt":
		err = m.call(in)
	default:
		return false, errors.New("line %d: unsupported instruction: %s", in.line, in.op)
	}

	return false, err
}

func (m *Machine) slot(in instr) (int, error) {
	n, err := strconv.Atoi(in.arg)
	if err != nil {
		return 0, errors.Wrap(err, "line %d: %s", in.line, in.op)
	}

	if n < 0 || n >= len(m.locals) {
		return 0, errors.New("line %d: %s: undeclared local %d", in.line, in.op, n)
	}

	return n, nil
}

func (m *Machine) binary(in instr) error {
	r, err := m.pop()
	if err != nil {
		return err
	}

	l, err := m.pop()
	if err != nil {
		return err
	}

	if l.Kind != r.Kind {
		return errors.New("line %d: %s: operand kinds differ: %v and %v", in.line, in.op, l.Kind, r.Kind)
	}

	switch l.Kind {
	case Int32:
		return m.binaryInt(in, l.I, r.I)
	case Float64:
		return m.binaryFloat(in, l.F, r.F)
	}

	return errors.New("line %d: %s: unsupported operand %v", in.line, in.op, l.Kind)
}

func (m *Machine) binaryInt(in instr, l, r int32) error {
	var v int32

	switch in.op {
	case "add":
		v = l + r
	case "sub":
		v = l - r
	case "mul":
		v = l * r
	case "div":
		if r == 0 {
			return &Exception{Line: in.line, Msg: "Attempted to divide by zero."}
		}
		if r == -1 && l == -1<<31 {
			return &Exception{Line: in.line, Msg: "Arithmetic operation resulted in an overflow."}
		}

		v = l / r
	case "and":
		v = l & r
	case "or":
		v = l | r
	case "clt":
		v = b2i(l < r)
	case "cgt":
		v = b2i(l > r)
	case "ceq":
		v = b2i(l == r)
	}

	return m.push(Int(v))
}

func (m *Machine) binaryFloat(in instr, l, r float64) error {
	switch in.op {
	case "add":
		return m.push(Float(l + r))
	case "sub":
		return m.push(Float(l - r))
	case "mul":
		return m.push(Float(l * r))
	case "div":
		return m.push(Float(l / r))
	case "clt":
		return m.push(Int(b2i(l < r)))
	case "cgt":
		return m.push(Int(b2i(l > r)))
	case "ceq":
		return m.push(Int(b2i(l == r)))
	}

	return errors.New("line %d: %s: unsupported on float64", in.line, in.op)
}

func (m *Machine) unary(in instr) error {
	x, err := m.pop()
	if err != nil {
		return err
	}

	switch {
	case in.op == "conv.r8" && x.Kind == Int32:
		x = Float(float64(x.I))
	case in.op == "conv.r8" && x.Kind == Float64:
	case in.op == "conv.i4" && x.Kind == Float64:
		x = Int(int32(int64(x.F)))
	case in.op == "conv.i4" && x.Kind == Int32:
	case in.op == "neg" && x.Kind == Int32:
		x.I = -x.I
	case in.op == "neg" && x.Kind == Float64:
		x.F = -x.F
	case in.op == "not" && x.Kind == Int32:
		x.I = ^x.I
	default:
		return errors.New("line %d: %s: unsupported operand %v", in.line, in.op, x.Kind)
	}

	return m.push(x)
}

func (m *Machine) push(v Value) error {
	if m.p.MaxStack != 0 && len(m.stack) >= m.p.MaxStack {
		return ErrOverflow
	}

	m.stack = append(m.stack, v)

	return nil
}

func (m *Machine) pop() (v Value, err error) {
	if len(m.stack) == 0 {
		return v, ErrUnderflow
	}

	v = m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]

	return v, nil
}

// Depth is the evaluation stack size.
func (m *Machine) Depth() int { return len(m.stack) }

// Local returns the current value of slot n.
func (m *Machine) Local(n int) Value { return m.locals[n] }

func (m *Machine) readLine() (Value, error) {
	s, err := m.in.ReadString('\n')
	if errors.Is(err, io.EOF) && s == "" {
		return Value{Kind: Null}, nil
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return Value{}, errors.Wrap(err, "read line")
	}

	s = strings.TrimSuffix(s, "\n")
	s = strings.TrimSuffix(s, "\r")

	return Str(s), nil
}

func zero(t tp.Type) Value {
	switch t {
	case tp.Real:
		return Float(0)
	case tp.String:
		return Value{Kind: Null}
	default:
		return Int(0)
	}
}

func b2i(v bool) int32 {
	if v {
		return 1
	}

	return 0
}

func (e *Exception) Error() string {
	return "line " + strconv.Itoa(e.Line) + ": " + e.Msg
}
