package interp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mastercactapus/cncview/coord"
	"github.com/mastercactapus/cncview/gcode"
	"github.com/mastercactapus/cncview/subprog"
)

// Class is the category a source line is sorted into.
type Class int

const (
	ClassEmpty Class = iota
	ClassComment
	ClassHeader
	ClassSubprogramCall
	ClassCode
)

func (c Class) String() string {
	switch c {
	case ClassEmpty:
		return "empty"
	case ClassComment:
		return "comment"
	case ClassHeader:
		return "header"
	case ClassSubprogramCall:
		return "call"
	}
	return "code"
}

// Classify sorts a raw line, checking in priority order: blank, comment,
// message header, subprogram call, code.
func (in *Interpreter) Classify(raw string) Class {
	s := strings.TrimSpace(raw)
	switch {
	case s == "":
		return ClassEmpty
	case strings.HasPrefix(s, ";"):
		return ClassComment
	case in.isHeader(s):
		return ClassHeader
	}
	if _, ok := gcode.SubprogramCall(s); ok {
		return ClassSubprogramCall
	}
	return ClassCode
}

// isHeader reports whether the code part of s holds the header marker as a
// token: MSG(...) or :MSG. Text inside a ';' comment never counts.
func (in *Interpreter) isHeader(s string) bool {
	s = strings.ToUpper(gcode.StripComment(s))
	marker := in.cfg.HeaderMarker
	for i := 0; ; {
		n := strings.Index(s[i:], marker)
		if n < 0 {
			return false
		}
		start, end := i+n, i+n+len(marker)
		i = end

		if start > 0 {
			prev := s[start-1]
			if prev == ':' {
				return true
			}
			if prev >= 'A' && prev <= 'Z' || prev >= '0' && prev <= '9' {
				continue
			}
		}
		rest := strings.TrimLeft(s[end:], " \t")
		if strings.HasPrefix(rest, "(") {
			return true
		}
	}
}

func original(l gcode.Line) AnnotatedLine {
	return AnnotatedLine{Index: l.Index, Text: l.Raw, Kind: Original}
}

func interpreted(l gcode.Line, text string) AnnotatedLine {
	return AnnotatedLine{Index: l.Index, Text: text, Kind: Interpreted}
}

func (in *Interpreter) report(line int, err error) {
	for _, e := range split(err) {
		in.diags = append(in.diags, Diagnostic{Line: line, Err: e})
	}
}

// interpretLine returns the original line followed by its annotations.
func (in *Interpreter) interpretLine(ctx context.Context, l gcode.Line) []AnnotatedLine {
	out := []AnnotatedLine{original(l)}

	switch in.Classify(l.Raw) {
	case ClassSubprogramCall:
		return append(out, in.call(ctx, l)...)
	case ClassCode:
		return append(out, in.code(l)...)
	}
	return out
}

func (in *Interpreter) call(ctx context.Context, l gcode.Line) []AnnotatedLine {
	name, _ := gcode.SubprogramCall(l.Raw)
	if subprog.Key(name) != subprog.Key(in.cfg.ParamProgram) {
		return nil
	}
	// parameters are loaded once per pass
	if in.paramsLoaded {
		return nil
	}
	in.paramsLoaded = true

	res, diags, err := in.resolver.Resolve(ctx, name)
	for _, d := range diags {
		in.report(l.Index, d)
	}
	if err != nil {
		in.report(l.Index, err)
		return nil
	}

	out := make([]AnnotatedLine, 0, len(res))
	for _, a := range res {
		out = append(out, interpreted(l, a.String()))
	}
	return out
}

func (in *Interpreter) code(l gcode.Line) []AnnotatedLine {
	b, kws, err := gcode.ParseLine(l.Raw)
	if err == nil {
		err = b.Validate()
	}
	if err != nil {
		in.report(l.Index, fmt.Errorf("%w: %v", ErrMalformedLine, err))
		return nil
	}
	for _, k := range kws {
		in.report(l.Index, fmt.Errorf("%w: %s skipped", gcode.ErrUnsupportedWord, k))
	}

	var out []AnnotatedLine
	for _, w := range b.Assignments() {
		reg, err := in.store.Assign(w.Reg, w.Arg)
		in.report(l.Index, err)
		out = append(out, interpreted(l, reg.String()))
	}

	eval := func(expr string) float64 {
		v, err := in.store.Evaluate(expr)
		in.report(l.Index, err)
		return v
	}
	// Validate already passed, Run cannot fail here.
	_ = in.machine.Run(b, eval)

	switch {
	case b.HasMotion():
		out = append(out, interpreted(l, in.motionSummary(b)))
	case b.Has('M') || b.Has('S'):
		if s := in.spindleSummary(b); s != "" {
			out = append(out, interpreted(l, s))
		}
	}
	return out
}

func (in *Interpreter) visibleMCodes(b gcode.Block) []string {
	var res []string
	for _, w := range b.Words('M') {
		code := w.Code()
		if !in.hidden[code] {
			res = append(res, code)
		}
	}
	return res
}

// motionSummary renders the resolved absolute state of a motion block.
// The distance mode is always G90: the coordinates shown are absolute.
func (in *Interpreter) motionSummary(b gcode.Block) string {
	var parts []string
	if ok, n := b.Arg('N'); ok {
		parts = append(parts, "N"+n)
	}
	pos := in.machine.Position()
	parts = append(parts, "G90", in.machine.GCode(), "X"+coord.Format(pos.X), "Z"+coord.Format(pos.Z))

	if f, ok := in.machine.Feed(); ok && b.Has('F') {
		parts = append(parts, "F"+gcode.FormatFloat(f, coord.Precision))
	}
	if s, ok := in.machine.Speed(); ok && b.Has('S') {
		parts = append(parts, "S"+gcode.FormatFloat(s, coord.Precision))
	}
	parts = append(parts, in.visibleMCodes(b)...)
	return strings.Join(parts, " ")
}

// spindleSummary lists the M-codes of a block without coordinates and the
// speed while the spindle turns.
func (in *Interpreter) spindleSummary(b gcode.Block) string {
	parts := in.visibleMCodes(b)
	if s, ok := in.machine.Speed(); ok && in.machine.SpindleActive() {
		parts = append(parts, "S"+gcode.FormatFloat(s, coord.Precision))
	}
	return strings.Join(parts, " ")
}
