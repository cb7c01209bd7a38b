package gcode

import (
	"strconv"
	"strings"
)

// Word is a single address/operand pair from a block.
//
// Arg holds the operand text exactly as written (upper-cased). For literal
// words it is a number ("50", "-20.5"), for expression operands it is the
// expression without the leading '=' ("R54+2", "(462.2-40)").
type Word struct {
	W   byte
	Arg string

	// Reg is the register id of an assignment (W == 'R').
	Reg string
}

func (w Word) IsAxis() bool {
	switch w.W {
	case 'X', 'Z': // lathe axes only
		return true
	}
	return false
}

// IsAssign reports whether w is an R-register assignment.
func (w Word) IsAssign() bool { return w.W == 'R' && w.Reg != "" }

func (w Word) IsValid() bool {
	return w.W >= 'A' && w.W <= 'Z' && w.Arg != ""
}

// Number parses Arg as a plain decimal literal.
func (w Word) Number() (float64, bool) {
	v, err := strconv.ParseFloat(w.Arg, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// IsLiteral reports whether the operand is a plain number.
func (w Word) IsLiteral() bool {
	_, ok := w.Number()
	return ok
}

// Code is the canonical form of a G or M word, e.g. "G1" for "G01".
func (w Word) Code() string {
	v, ok := w.Number()
	if !ok {
		return w.String()
	}
	return string(w.W) + FormatFloat(v, 3)
}

// FormatFloat renders f with at most prec decimals and no trailing zeros.
func FormatFloat(f float64, prec int) string {
	s := strconv.FormatFloat(f, 'f', prec, 64)
	if strings.ContainsRune(s, '.') {
		s = strings.TrimRight(s, "0")
	}
	s = strings.TrimRight(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}

func (w Word) String() string {
	switch {
	case w.IsAssign():
		return "R" + w.Reg + "=" + w.Arg
	case w.IsLiteral():
		return string(w.W) + w.Arg
	default:
		return string(w.W) + "=" + w.Arg
	}
}
