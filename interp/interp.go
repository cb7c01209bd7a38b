// Package interp annotates R-parameter lathe programs line by line.
//
// Every source line is echoed as an Original line and followed by zero or
// more Interpreted lines describing its resolved effect: register values,
// absolute position, active motion code, feed, speed and M-codes.
// Interpretation is best effort. Problems are collected as diagnostics and
// never stop a pass.
package interp

import (
	"context"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/mastercactapus/cncview/coord"
	"github.com/mastercactapus/cncview/gcode"
	"github.com/mastercactapus/cncview/register"
	"github.com/mastercactapus/cncview/subprog"
	"github.com/mastercactapus/cncview/vm"
)

// Kind tells original source lines from annotations.
type Kind int

const (
	Original Kind = iota
	Interpreted
)

func (k Kind) String() string {
	if k == Interpreted {
		return "interpreted"
	}
	return "original"
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// AnnotatedLine is one line of interpreter output. Index refers to the
// source line that produced it.
type AnnotatedLine struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
	Kind  Kind   `json:"kind"`
}

// Config controls program conventions.
type Config struct {
	// ParamProgram is the subprogram whose register assignments are
	// resolved when it is called.
	ParamProgram string

	// HeaderMarker marks message header lines.
	HeaderMarker string

	// HiddenMCodes are tracked but left out of annotations.
	HiddenMCodes []string
}

// DefaultConfig returns the conventions of the L105 parameter program.
func DefaultConfig() Config {
	return Config{
		ParamProgram: "L105",
		HeaderMarker: "MSG",
		HiddenMCodes: []string{"M7", "M8", "M9", "M29"},
	}
}

// Result is the output of a full pass.
type Result struct {
	Lines       []AnnotatedLine `json:"lines"`
	Diagnostics []Diagnostic    `json:"diagnostics"`

	// Count is the number of source lines read.
	Count int `json:"count"`

	// state after the last line
	Registers []register.Register `json:"registers"`
	Position  coord.Point         `json:"position"`
}

// Interpreter owns the register store and machine state of one program
// pass. Passes are serialized; each one starts from a reset state.
type Interpreter struct {
	mx sync.Mutex

	cfg    Config
	hidden map[string]bool

	store    *register.Store
	machine  *vm.Machine
	resolver *subprog.Resolver

	paramsLoaded bool
	lines        int
	diags        []Diagnostic
}

// New creates an Interpreter that loads subprograms from l, which may be nil.
func New(l subprog.Loader, cfg Config) *Interpreter {
	def := DefaultConfig()
	if cfg.ParamProgram == "" {
		cfg.ParamProgram = def.ParamProgram
	}
	if cfg.HeaderMarker == "" {
		cfg.HeaderMarker = def.HeaderMarker
	}
	if cfg.HiddenMCodes == nil {
		cfg.HiddenMCodes = def.HiddenMCodes
	}
	cfg.HeaderMarker = strings.ToUpper(cfg.HeaderMarker)

	in := &Interpreter{
		cfg:     cfg,
		hidden:  make(map[string]bool, len(cfg.HiddenMCodes)),
		store:   register.NewStore(),
		machine: vm.NewMachine(),
	}
	for _, m := range cfg.HiddenMCodes {
		in.hidden[gcode.Word{W: 'M', Arg: strings.TrimPrefix(strings.ToUpper(m), "M")}.Code()] = true
	}
	in.resolver = subprog.NewResolver(l, in.store)
	return in
}

// Reset clears registers, machine state and counters.
func (in *Interpreter) Reset() {
	in.mx.Lock()
	in.reset()
	in.mx.Unlock()
}

func (in *Interpreter) reset() {
	in.store.Reset()
	in.machine.Reset()
	in.paramsLoaded = false
	in.lines = 0
	in.diags = nil
}

// ParseProgram interprets a whole program from a reset state and returns
// the annotated lines in source order. The only error is ErrInvalidInput.
func (in *Interpreter) ParseProgram(ctx context.Context, text string) (*Result, error) {
	if !utf8.ValidString(text) {
		return nil, ErrInvalidInput
	}
	return in.Run(ctx, gcode.NewLinesReader(text))
}

// Run interprets every line from r from a reset state.
func (in *Interpreter) Run(ctx context.Context, r gcode.Reader) (*Result, error) {
	in.mx.Lock()
	defer in.mx.Unlock()
	in.reset()

	res := &Result{Lines: []AnnotatedLine{}}
	for {
		l, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		in.lines++
		res.Lines = append(res.Lines, in.interpretLine(ctx, l)...)
	}

	res.Count = in.lines
	res.Diagnostics = append([]Diagnostic{}, in.diags...)
	res.Registers = in.store.All()
	res.Position = in.machine.Position()
	return res, nil
}
