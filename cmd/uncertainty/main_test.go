package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := BuildRootCmd()
	var out strings.Builder
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

const session = `formula: x * y
variables:
  x: {average: 2, error: 0.1}
  y: {average: 3, error: 0.2}
`

func TestRunStdin(t *testing.T) {
	out, err := execute(t, session, "run")
	require.NoError(t, err)
	want := `-> formula result = 6
-> avg value of x = 2
-> avg value of y = 3
-> error for x = 0.1
-> error for y = 0.2
-> formula error = 0.5
`
	assert.Equal(t, want, out)
}

func TestRunFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, os.WriteFile(name, []byte(session), 0o600))
	out, err := execute(t, "", "run", name, "--scale", "5", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "result: 600000\n")
	assert.Contains(t, out, "scale: 5\n")
}

func TestRunFormulaFlag(t *testing.T) {
	out, err := execute(t, session, "run", "--formula", "x + y")
	require.NoError(t, err)
	assert.Contains(t, out, "-> formula result = 5\n")
	assert.Contains(t, out, "-> formula error = 0.223606797749979\n")
}

func TestRunPrompt(t *testing.T) {
	defer func(f func(io.Reader) bool) { isTerminal = f }(isTerminal)
	isTerminal = func(io.Reader) bool { return true }
	in := "x y\nyes\n\n1 2 3 4\n3\n\n0.2\n"
	out, err := execute(t, in, "run")
	require.NoError(t, err)
	assert.Contains(t, out, "-> formula = x * y\n")
	assert.Contains(t, out, "-> formula result = 7.5\n")
	assert.Contains(t, out, "-> formula error = 2\n")
}

func TestRunPromptTnpOverridesConfidence(t *testing.T) {
	defer func(f func(io.Reader) bool) { isTerminal = f }(isTerminal)
	isTerminal = func(io.Reader) bool { return true }
	// Default digits, tnp 2, then x measured four times.
	in := "\n2\nx\nyes\n\n1 2 3 4\n\n"
	out, err := execute(t, in, "run", "--ask", "--confidence", "0.95")
	require.NoError(t, err)
	assert.Contains(t, out, "-> tnp is set to 2\n")
	assert.Contains(t, out, "-> formula error = 1.29099444873581\n")
}

func TestRunErrors(t *testing.T) {
	_, err := execute(t, "variables:\n  x: {average: 1}\n", "run")
	assert.ErrorContains(t, err, "no formula")
	_, err = execute(t, "formula: x\nvariables:\n  x: {average: 1}\n", "run")
	assert.ErrorContains(t, err, `no error and 0 measurements for "x"`)
	_, err = execute(t, session, "run", "--precision", "0")
	assert.ErrorContains(t, err, "precision must be positive")
}

func TestEval(t *testing.T) {
	out, err := execute(t, "", "eval", "x^2 + y", "x=3", "y = 0.5")
	require.NoError(t, err)
	assert.Equal(t, "9.5\n", out)

	out, err = execute(t, "", "eval", "2 pi", "--precision", "5")
	require.NoError(t, err)
	assert.Equal(t, "6.2832\n", out)

	out, err = execute(t, "", "eval", "m(v-u)", "m=2", "v=5", "u=1")
	require.NoError(t, err)
	assert.Equal(t, "8\n", out)

	out, err = execute(t, "", "eval", "(a+b)(c+d)", "a=1", "b=2", "c=3", "d=4")
	require.NoError(t, err)
	assert.Equal(t, "21\n", out)

	_, err = execute(t, "", "eval", "2(x+1", "x=1")
	assert.ErrorContains(t, err, "bracket")

	_, err = execute(t, "", "eval", "x", "x")
	assert.ErrorContains(t, err, "name=value")
	_, err = execute(t, "", "eval", "x / y", "x=1", "y=0")
	assert.Error(t, err)
}

func TestDiff(t *testing.T) {
	out, err := execute(t, "", "diff", "x y")
	require.NoError(t, err)
	assert.Equal(t, "d/dx = y\nd/dy = x\n", out)

	out, err = execute(t, "", "diff", "x + y", "x")
	require.NoError(t, err)
	assert.Equal(t, "d/dx = 1\n", out)
}

func TestTValue(t *testing.T) {
	out, err := execute(t, "", "tvalue", "0.95", "5")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "2.776445"), "got %q", out)

	_, err = execute(t, "", "tvalue", "high", "5")
	assert.Error(t, err)
	_, err = execute(t, "", "tvalue", "0.95", "1")
	assert.Error(t, err)
}
