package compiler

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	mdast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"tlog.app/go/errors"

	"github.com/slowlang/mini/compiler/config"
	"github.com/slowlang/mini/compiler/diag"
	"github.com/slowlang/mini/compiler/il"
	"github.com/slowlang/mini/compiler/vm"
)

type golden struct {
	Name string
	Line int

	Src    string
	Input  string
	Output *string
	Errors *string
	IL     *string
}

func TestGolden(t *testing.T) {
	files, err := filepath.Glob("testdata/*.md")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		data, err := os.ReadFile(file)
		require.NoError(t, err)

		cases, err := extractCases(data)
		require.NoError(t, err, file)

		for _, tc := range cases {
			tc := tc

			t.Run(filepath.Base(file)+"/"+tc.Name, func(t *testing.T) {
				runGolden(t, tc)
			})
		}
	}
}

func runGolden(t *testing.T, tc golden) {
	ctx := context.Background()

	obj, err := Compile(ctx, tc.Name, []byte(tc.Src), config.Default())

	if tc.Errors != nil {
		require.Error(t, err)

		var d *diag.Error
		require.True(t, errors.As(err, &d), "not diagnostics: %v", err)
		assert.Nil(t, obj)

		assert.Equal(t, *tc.Errors, err.Error())

		return
	}

	require.NoError(t, err)

	if tc.IL != nil {
		assert.Equal(t, *tc.IL, strings.TrimRight(string(il.Body(obj)), "\n"))
	}

	if tc.Output != nil {
		var out bytes.Buffer

		p, err := vm.Load(obj)
		require.NoError(t, err)

		m := vm.New(p, strings.NewReader(tc.Input), &out)
		m.MaxSteps = 1_000_000

		err = m.Run(ctx)
		require.NoError(t, err)

		assert.Equal(t, *tc.Output, out.String())
	}
}

// extractCases reads "## Test: name" sections with fenced blocks.
func extractCases(source []byte) (cases []golden, err error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var cur *golden

	flush := func() error {
		if cur == nil {
			return nil
		}

		if cur.Src == "" {
			return errors.New("test %q: no mini fence", cur.Name)
		}

		if cur.Output == nil && cur.Errors == nil && cur.IL == nil {
			return errors.New("test %q: no assertion fence", cur.Name)
		}

		cases = append(cases, *cur)
		cur = nil

		return nil
	}

	err = mdast.Walk(doc, func(n mdast.Node, entering bool) (mdast.WalkStatus, error) {
		if !entering {
			return mdast.WalkContinue, nil
		}

		switch n := n.(type) {
		case *mdast.Heading:
			title := nodeText(n, source)

			name, ok := strings.CutPrefix(title, "Test: ")
			if !ok {
				return mdast.WalkContinue, nil
			}

			if err := flush(); err != nil {
				return mdast.WalkStop, err
			}

			cur = &golden{Name: name, Line: lineOf(n, source)}
		case *mdast.FencedCodeBlock:
			lang := string(n.Language(source))
			content := fenceText(n, source)

			if cur == nil {
				return mdast.WalkStop, errors.New("%s fence outside of test", lang)
			}

			switch lang {
			case "mini":
				cur.Src = content
			case "input":
				cur.Input = content
			case "output":
				s := strings.TrimSuffix(content, "\n")
				cur.Output = &s
			case "errors":
				s := strings.TrimSuffix(content, "\n")
				cur.Errors = &s
			case "il":
				s := strings.TrimSuffix(content, "\n")
				cur.IL = &s
			default:
				return mdast.WalkStop, errors.New("test %q: unknown fence %q", cur.Name, lang)
			}
		}

		return mdast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	if err = flush(); err != nil {
		return nil, err
	}

	return cases, nil
}

func nodeText(n mdast.Node, source []byte) string {
	var b bytes.Buffer

	_ = mdast.Walk(n, func(n mdast.Node, entering bool) (mdast.WalkStatus, error) {
		if t, ok := n.(*mdast.Text); ok && entering {
			b.Write(t.Segment.Value(source))
		}

		return mdast.WalkContinue, nil
	})

	return b.String()
}

func fenceText(n *mdast.FencedCodeBlock, source []byte) string {
	var b bytes.Buffer

	for i := 0; i < n.Lines().Len(); i++ {
		l := n.Lines().At(i)
		b.Write(l.Value(source))
	}

	return b.String()
}

func lineOf(n mdast.Node, source []byte) int {
	if n.Lines().Len() == 0 {
		return 0
	}

	return bytes.Count(source[:n.Lines().At(0).Start], []byte("\n")) + 1
}

func TestCompileFile(t *testing.T) {
	ctx := context.Background()

	name := filepath.Join(t.TempDir(), "a.mini")

	err := os.WriteFile(name, []byte("program { int x; x = 1; write x; }"), 0o644)
	require.NoError(t, err)

	obj, err := CompileFile(ctx, name, config.Default())
	require.NoError(t, err)
	assert.Contains(t, string(obj), ".assembly mini_lang { }")

	_, err = CompileFile(ctx, filepath.Join(t.TempDir(), "missing.mini"), config.Default())
	assert.Error(t, err)
}

func TestCheck(t *testing.T) {
	ctx := context.Background()

	p, st, err := Check(ctx, "", []byte("program { int x; y = x; }"))
	require.Error(t, err)
	require.NotNil(t, p)
	require.NotNil(t, st)

	if assert.Len(t, st.Diags.All(), 1) {
		assert.Equal(t, diag.UndeclaredVariable, st.Diags.All()[0].Kind)
	}

	_, _, err = Check(ctx, "", []byte("program {"))
	require.Error(t, err)

	var d *diag.Error
	assert.False(t, errors.As(err, &d), "syntax errors are not diagnostics")
}
