package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestFiles(t *testing.T) (dir, program string) {
	dir = t.TempDir()
	lib := filepath.Join(dir, "lib")
	require.NoError(t, os.Mkdir(lib, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(lib, "L105.SPF"), []byte("; header\nPARAM:\nR54=2 R69=3\nR54=R54*R69\n"), 0644))

	program = filepath.Join(dir, "main.mpf")
	require.NoError(t, os.WriteFile(program, []byte("L105\nG0 X=R54 Z=R69\nG1 Z-(R69)\n"), 0644))
	return lib, program
}

func TestAnnotateCmd(t *testing.T) {
	lib, program := writeTestFiles(t)

	out, _, err := runCmd(t, "annotate", "--library", lib, program)
	require.NoError(t, err)
	assert.Equal(t, `L105
    ;> R54 = 2.000
    ;> R69 = 3.000
    ;> R54 = 6.000
G0 X=R54 Z=R69
    ;> G90 G0 X6.000 Z3.000
G1 Z-(R69)
    ;> G90 G1 X6.000 Z-3.000

`, out)
}

func TestAnnotateCmd_Diagnostics(t *testing.T) {
	_, program := writeTestFiles(t)

	_, stderr, err := runCmd(t, "annotate", program)
	require.NoError(t, err)
	assert.Contains(t, stderr, "SubprogramNotFound: line 1:")
	assert.Contains(t, stderr, "MissingRegister: line 2:")
}

func TestRegistersCmd(t *testing.T) {
	lib, program := writeTestFiles(t)

	out, _, err := runCmd(t, "registers", "--library", lib, program)
	require.NoError(t, err)
	assert.Equal(t, "R54 = 6.000\nR69 = 3.000\n", out)
}

func TestFlattenCmd(t *testing.T) {
	lib, program := writeTestFiles(t)

	out, _, err := runCmd(t, "flatten", "--library", lib, program)
	require.NoError(t, err)
	assert.Equal(t, "G90 G0 X6.000 Z3.000\nG90 G1 X6.000 Z-3.000\n", out)
}

func TestConfigFlagOverride(t *testing.T) {
	lib, program := writeTestFiles(t)
	cfgFile := filepath.Join(t.TempDir(), "cncview.hcl")
	require.NoError(t, os.WriteFile(cfgFile, []byte(`
interpreter {
  parameter_program = "L999"
}
library {
  path = "`+filepath.ToSlash(lib)+`"
}
`), 0644))

	out, _, err := runCmd(t, "registers", "--config", cfgFile, program)
	require.NoError(t, err)
	assert.Equal(t, "", out)

	out, _, err = runCmd(t, "registers", "--config", cfgFile, "--param-program", "L105", program)
	require.NoError(t, err)
	assert.Equal(t, "R54 = 6.000\nR69 = 3.000\n", out)
}
