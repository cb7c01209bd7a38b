// Package config loads cncview settings from an HCL file.
//
//	interpreter {
//	  parameter_program = "L105"
//	  header_marker     = "MSG"
//	  hidden_mcodes     = ["M7", "M8", "M9", "M29"]
//	}
//	library {
//	  path = "./programs"
//	}
//	server {
//	  addr     = ":8000"
//	  debounce = "300ms"
//	}
//
// Every block and attribute is optional; missing values keep their default.
package config

import (
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/mastercactapus/cncview/interp"
)

type Config struct {
	Interpreter interp.Config

	// LibraryPath is a program library file or directory. Empty means no
	// library.
	LibraryPath string

	Addr     string
	Debounce time.Duration
}

func Default() Config {
	return Config{
		Interpreter: interp.DefaultConfig(),
		Addr:        ":8000",
		Debounce:    300 * time.Millisecond,
	}
}

type hclFile struct {
	Interpreter *hclInterpreter `hcl:"interpreter,block"`
	Library     *hclLibrary     `hcl:"library,block"`
	Server      *hclServer      `hcl:"server,block"`
}

type hclInterpreter struct {
	ParameterProgram *string  `hcl:"parameter_program,optional"`
	HeaderMarker     *string  `hcl:"header_marker,optional"`
	HiddenMCodes     []string `hcl:"hidden_mcodes,optional"`
}

type hclLibrary struct {
	Path string `hcl:"path"`
}

type hclServer struct {
	Addr     *string `hcl:"addr,optional"`
	Debounce *string `hcl:"debounce,optional"`
}

// Load reads the config file at path on top of the defaults.
func Load(path string) (Config, error) {
	f, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, diags)
	}
	return decode(f, path)
}

// Parse reads config from src; filename is used in error messages.
func Parse(src []byte, filename string) (Config, error) {
	f, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", filename, diags)
	}
	return decode(f, filename)
}

func decode(f *hcl.File, filename string) (Config, error) {
	var parsed hclFile
	diags := gohcl.DecodeBody(f.Body, nil, &parsed)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to decode config file %s: %w", filename, diags)
	}

	cfg := Default()
	if in := parsed.Interpreter; in != nil {
		if in.ParameterProgram != nil {
			cfg.Interpreter.ParamProgram = *in.ParameterProgram
		}
		if in.HeaderMarker != nil {
			cfg.Interpreter.HeaderMarker = *in.HeaderMarker
		}
		if in.HiddenMCodes != nil {
			cfg.Interpreter.HiddenMCodes = in.HiddenMCodes
		}
	}
	if parsed.Library != nil {
		cfg.LibraryPath = parsed.Library.Path
	}
	if s := parsed.Server; s != nil {
		if s.Addr != nil {
			cfg.Addr = *s.Addr
		}
		if s.Debounce != nil {
			d, err := time.ParseDuration(*s.Debounce)
			if err != nil {
				return Config{}, fmt.Errorf("%s: server.debounce: %w", filename, err)
			}
			if d < 0 {
				return Config{}, fmt.Errorf("%s: server.debounce: negative duration %s", filename, d)
			}
			cfg.Debounce = d
		}
	}
	return cfg, nil
}
