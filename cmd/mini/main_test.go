package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tlog.app/go/errors"

	"github.com/slowlang/mini/compiler/config"
	"github.com/slowlang/mini/compiler/diag"
)

func TestCompileFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	src := filepath.Join(dir, "a.mini")
	dst := src + ".il"

	err := os.WriteFile(src, []byte("program { int x; x = 1; write x; }"), 0o644)
	require.NoError(t, err)

	err = compileFile(ctx, src, dst, config.Default())
	require.NoError(t, err)

	obj, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Contains(t, string(obj), "stloc 0")
}

func TestCompileFileRemovesStaleOutput(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	src := filepath.Join(dir, "a.mini")
	dst := src + ".il"

	err := os.WriteFile(dst, []byte("old listing"), 0o644)
	require.NoError(t, err)

	err = os.WriteFile(src, []byte("program { y = 1; }"), 0o644)
	require.NoError(t, err)

	err = compileFile(ctx, src, dst, config.Default())

	var de *diag.Error
	require.True(t, errors.As(err, &de), "%v", err)

	_, err = os.Stat(dst)
	assert.True(t, errors.Is(err, os.ErrNotExist), "%v", err)
}

func TestCompileFileNoOutputOnDiagnostics(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	src := filepath.Join(dir, "a.mini")
	dst := src + ".il"

	err := os.WriteFile(src, []byte("program { int x; int x; }"), 0o644)
	require.NoError(t, err)

	err = compileFile(ctx, src, dst, config.Default())
	require.Error(t, err)

	_, err = os.Stat(dst)
	assert.True(t, errors.Is(err, os.ErrNotExist), "%v", err)
}

func TestCheckOutput(t *testing.T) {
	assert.NoError(t, checkOutput("", 3))
	assert.NoError(t, checkOutput("a.il", 1))
	assert.NoError(t, checkOutput("-", 1))
	assert.Error(t, checkOutput("a.il", 2))
	assert.Error(t, checkOutput("-", 2))
}
