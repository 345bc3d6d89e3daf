package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

var page = filepath.Join("testdata", "page.html")

func TestInspect(t *testing.T) {
	out, _, err := execute(t, "inspect", page, "--push", "#dialog")
	require.NoError(t, err)
	assert.Equal(t, `<body>
  <nav id="nav"> inert
  <x-trap-focus id="dialog"> [top]
    #shadow-root (open)
      <slot>
        > <button id="ok">
`, out)
}

func TestInspectTransitions(t *testing.T) {
	out, _, err := execute(t, "inspect", page, "--push", "#dialog", "--push", "#ok", "--pop", "2", "--transitions")
	require.NoError(t, err)
	assert.NotContains(t, out, "inert\n")
	assert.Contains(t, out, `<nil> -> <x-trap-focus id="dialog">: released 0, blocked 1`)
	assert.Contains(t, out, `<x-trap-focus id="dialog"> -> <nil>: released 1, blocked 0`)
}

func TestInspectErrors(t *testing.T) {
	_, _, err := execute(t, "inspect", page, "--push", "#missing")
	assert.ErrorContains(t, err, `no element matches "#missing"`)

	_, _, err = execute(t, "inspect", filepath.Join("testdata", "nope.html"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, _, err = execute(t, "inspect")
	assert.Error(t, err)
}

func TestLogLevel(t *testing.T) {
	_, stderr, err := execute(t, "inspect", page, "--log-level", "debug", "--push", "#dialog", "--push", "#dialog")
	require.NoError(t, err)
	assert.Contains(t, stderr, "loaded")
	assert.Contains(t, stderr, "element already added to blocking elements")

	t.Setenv("BLOCKADE_LOG_LEVEL", "shouting")
	_, _, err = execute(t, "inspect", page)
	assert.ErrorContains(t, err, "unknown log level")
}

func TestRun(t *testing.T) {
	out, _, err := execute(t, "run", filepath.Join("testdata", "pass.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "PASS dialog traps focus (2 steps)\n", out)

	out, _, err = execute(t, "run", filepath.Join("testdata", "pass.yaml"), filepath.Join("testdata", "fail.yaml"))
	assert.EqualError(t, err, "1 of 2 scenarios failed")
	assert.Contains(t, out, "FAIL wrong expectation\n")
	assert.Contains(t, out, `interactive: <nav id="nav"> ("#nav") is inert`)
}

func TestRender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	out, _, err := execute(t, "render", page, "--push", "#dialog", "-o", path, "--width", "320")
	require.NoError(t, err)
	assert.Contains(t, out, "Rendered")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
