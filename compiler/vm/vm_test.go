package vm

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/mini/compiler"
	"github.com/slowlang/mini/compiler/config"
)

func run(t *testing.T, src, in string) (string, error) {
	t.Helper()

	ctx := context.Background()

	obj, err := compiler.Compile(ctx, "test.mini", []byte(src), config.Default())
	require.NoError(t, err)

	p, err := Load(obj)
	require.NoError(t, err)

	var out bytes.Buffer

	m := New(p, strings.NewReader(in), &out)
	m.MaxSteps = 1_000_000

	err = m.Run(ctx)

	return out.String(), err
}

func TestArithmetic(t *testing.T) {
	out, err := run(t, `program {
	int x;
	double y;
	x = 2 + 3 * 4;
	write x;
	write " ";
	x = 7 / 2;
	write x;
	write " ";
	y = 7 / 2.0;
	write y;
	write " ";
	x = 2147483647 + 1;
	write x;
	write " ";
	x = 6 | 1 & 3;
	write x;
	write " ";
	write ~0;
	write " ";
	write (int)-2.7;
}`, "")
	require.NoError(t, err)

	assert.Equal(t, "14 3 3.500000 -2147483648 3 -1 -2", out)
}

func TestBools(t *testing.T) {
	out, err := run(t, `program {
	bool b;
	int x;
	b = 1 < 2 && 2.5 >= 2;
	write b;
	b = !b || x != 0;
	write b;
	write 1 == 1.0;
}`, "")
	require.NoError(t, err)

	assert.Equal(t, "TrueFalseTrue", out)
}

func TestShortCircuit(t *testing.T) {
	out, err := run(t, `program {
	int x;
	bool b;
	b = false && (x = 1) == 1;
	b = true || (x = 2) == 2;
	write x;
	b = true && (x = 3) == 3;
	write x;
}`, "")
	require.NoError(t, err)

	assert.Equal(t, "03", out)
}

func TestLoop(t *testing.T) {
	out, err := run(t, `program {
	int i;
	int s;
	i = 1;
	while (i <= 10) {
		s = s + i;
		i = i + 1;
	}
	write s;
	if (s > 50) write "big"; else write "small";
}`, "")
	require.NoError(t, err)

	assert.Equal(t, "55big", out)
}

func TestReturn(t *testing.T) {
	out, err := run(t, `program {
	write "a";
	return;
	write "b";
}`, "")
	require.NoError(t, err)

	assert.Equal(t, "a", out)
}

func TestRead(t *testing.T) {
	out, err := run(t, `program {
	int x;
	double y;
	bool b;
	read x;
	read y;
	read b;
	write x + 1;
	write " ";
	write y * 2;
	write " ";
	write !b;
}`, " 41 \n1.25\nTrue\n")
	require.NoError(t, err)

	assert.Equal(t, "42 2.500000 False", out)
}

func TestExceptionHandler(t *testing.T) {
	out, err := run(t, `program {
	int x;
	write "before";
	x = 1 / x;
	write "after";
}`, "")
	require.NoError(t, err)

	assert.Equal(t, "beforeAttempted to divide by zero.\n", out)

	out, err = run(t, `program {
	int x;
	read x;
}`, "abc\n")
	require.NoError(t, err)

	assert.Equal(t, "Input string was not in a correct format.\n", out)

	out, err = run(t, `program {
	bool b;
	read b;
}`, "")
	require.NoError(t, err)

	assert.Equal(t, "Value cannot be null.\n", out)
}

func TestStepLimit(t *testing.T) {
	ctx := context.Background()

	obj, err := compiler.Compile(ctx, "", []byte("program { while (true) {} }"), config.Default())
	require.NoError(t, err)

	p, err := Load(obj)
	require.NoError(t, err)

	m := New(p, strings.NewReader(""), &bytes.Buffer{})
	m.MaxSteps = 100

	err = m.Run(ctx)
	assert.ErrorIs(t, err, ErrStepLimit)
}

func TestRawInstructions(t *testing.T) {
	var out bytes.Buffer

	err := Run(context.Background(), []byte(`
.locals init ([0] int32 _x)
ldc.i4 5
stloc 0
L1: ldloc 0
brfalse L2
ldloc 0
call void [mscorlib]System.Console::Write(int32)
ldloc 0
ldc.i4 1
sub
stloc 0
br L1
L2: ret
`), strings.NewReader(""), &out)
	require.NoError(t, err)

	assert.Equal(t, "54321", out.String())
}

func TestUncaught(t *testing.T) {
	var out bytes.Buffer

	err := Run(context.Background(), []byte("ldc.i4 1\nldc.i4 0\ndiv\nret\n"), strings.NewReader(""), &out)
	require.Error(t, err)

	var ex *Exception
	require.ErrorAs(t, err, &ex)
	assert.Equal(t, 3, ex.Line)
}

func TestLoadErrors(t *testing.T) {
	for _, src := range []string{
		"br nowhere\n",
		"frobnicate\n",
		".locals init ([x] int32 _x)\n",
		".locals init ([0] int64 _x)\n",
		"L: nop\nL: nop\n",
		".custom\n",
	} {
		_, err := Load([]byte(src))
		assert.Error(t, err, "%q", src)
	}
}

func TestFormat(t *testing.T) {
	for _, tc := range []struct {
		f   string
		v   Value
		exp string
	}{
		{"{0:0.000000}", Float(1.5), "1.500000"},
		{"{0:0.00}", Float(-1.126), "-1.13"},
		{"x={0}!", Int(3), "x=3!"},
		{"{0:0}", Float(2.7), "3"},
		{"plain", Int(1), "plain"},
	} {
		s, ok := format(tc.f, tc.v)
		assert.True(t, ok, tc.f)
		assert.Equal(t, tc.exp, s, tc.f)
	}

	_, ok := format("{0:x}", Int(1))
	assert.False(t, ok)
}
