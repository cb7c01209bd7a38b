package gcode

import (
	"io"
	"strings"
)

// Line is one immutable line of program source.
type Line struct {
	Index int
	Raw   string
}

type Reader interface {
	Read() (Line, error)
}

// LinesReader yields the lines of a program text in order. Blank lines are
// kept so that every source line has exactly one Line.
type LinesReader struct {
	Lines []string
	n     int
}

// NewLinesReader splits text on '\n'. A text ending in a newline has a
// final empty line; a trailing '\r' is stripped from every line.
func NewLinesReader(text string) *LinesReader {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return &LinesReader{Lines: lines}
}

func (r *LinesReader) Read() (Line, error) {
	if r.n == len(r.Lines) {
		return Line{}, io.EOF
	}

	r.n++
	return Line{Index: r.n - 1, Raw: r.Lines[r.n-1]}, nil
}
