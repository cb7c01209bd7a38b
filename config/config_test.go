package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mastercactapus/cncview/interp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
interpreter {
  parameter_program = "L200"
  hidden_mcodes     = ["M8"]
}
library {
  path = "programs"
}
server {
  debounce = "1s"
}
`), "test.hcl")
	require.NoError(t, err)

	assert.Equal(t, "L200", cfg.Interpreter.ParamProgram)
	assert.Equal(t, "MSG", cfg.Interpreter.HeaderMarker)
	assert.Equal(t, []string{"M8"}, cfg.Interpreter.HiddenMCodes)
	assert.Equal(t, "programs", cfg.LibraryPath)
	assert.Equal(t, ":8000", cfg.Addr)
	assert.Equal(t, time.Second, cfg.Debounce)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil, "empty.hcl")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, interp.DefaultConfig(), cfg.Interpreter)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte(`server { debounce = "soon" }`), "bad.hcl")
	assert.Error(t, err)

	_, err = Parse([]byte(`unknown { }`), "bad.hcl")
	assert.Error(t, err)

	_, err = Parse([]byte(`interpreter {`), "bad.hcl")
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cncview.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`server { addr = "127.0.0.1:9000" }`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)

	_, err = Load(filepath.Join(t.TempDir(), "missing.hcl"))
	assert.Error(t, err)
}
