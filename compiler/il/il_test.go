package il

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slowlang/mini/compiler/config"
)

func TestWriter(t *testing.T) {
	w := NewWriter(nil)

	var ls Labels

	n := ls.Next(If)
	w.Op("ldc.i4 %d", 5)
	w.Op("brfalse %v", Label{Name: "ELSE", N: n})
	w.Mark(Label{Name: "ELSE", N: n})
	w.Leave()

	assert.Equal(t, "ldc.i4 5\nbrfalse ELSE1\nELSE1: nop\nleave EndMain\n", string(w.Bytes()))
	assert.Equal(t, 4, w.Lines())
}

func TestLabels(t *testing.T) {
	var ls Labels

	assert.Equal(t, 1, ls.Next(If))
	assert.Equal(t, 2, ls.Next(If))
	assert.Equal(t, 1, ls.Next(While))
	assert.Equal(t, 1, ls.Next(Logic))

	ls.Reset()

	assert.Equal(t, 1, ls.Next(If))
}

func TestFrame(t *testing.T) {
	b := Prolog(nil, config.Default())
	b = append(b, "ldc.i4 1\npop\nleave EndMain\n"...)
	b = Epilog(b)

	assert.Contains(t, string(b), ".assembly mini_lang { }\n")
	assert.Contains(t, string(b), ".maxstack 128\n")
	assert.Contains(t, string(b), "EndMain: ret\n")

	assert.Equal(t, "ldc.i4 1\npop\nleave EndMain\n", string(Body(b)))

	assert.Nil(t, Body([]byte("garbage")))
}
