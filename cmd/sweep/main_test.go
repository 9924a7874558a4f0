package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-microbench/sweep"
)

const savedOutput = `SINGLE PRECISION TIMINGS
i has size 8, a and b have size 4
Addition loop: 1.500000000000e+00 s, 1.500e-09 s per operation

DOUBLE PRECISION TIMINGS
Addition loop: 3.000000000000e+00 s, 3.000e-09 s per operation
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInitWritesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.yaml")
	_, err := execute(t, "init", path)
	require.NoError(t, err)

	cfg, err := sweep.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, sweep.DefaultPrograms, cfg.Programs)
	assert.Len(t, cfg.Variants, len(sweep.DefaultVariants()))
}

func TestParseToStdout(t *testing.T) {
	input := filepath.Join(t.TempDir(), "arithmetic.txt")
	require.NoError(t, os.WriteFile(input, []byte(savedOutput), 0o644))

	out, err := execute(t, "parse", input)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "section,label,elapsed_s,per_operation_s", lines[0])
	assert.True(t, strings.HasPrefix(lines[2], "DOUBLE PRECISION TIMINGS,Addition loop,3,"))
}

func TestParseToFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "arithmetic.txt")
	output := filepath.Join(dir, "arithmetic.csv")
	require.NoError(t, os.WriteFile(input, []byte(savedOutput), 0o644))

	_, err := execute(t, "parse", input, "--output", output)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "SINGLE PRECISION TIMINGS,Addition loop,1.5,")
}

func TestParseMissingFile(t *testing.T) {
	_, err := execute(t, "parse", filepath.Join(t.TempDir(), "absent.txt"))
	assert.Error(t, err)
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := execute(t, "--log-level", "loud", "init", filepath.Join(t.TempDir(), "sweep.yaml"))
	assert.Error(t, err)
}
