package interp

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mastercactapus/cncview/gcode"
	"github.com/mastercactapus/cncview/register"
	"github.com/mastercactapus/cncview/subprog"
)

var (
	// ErrMalformedLine is reported for a line that cannot be tokenized. The
	// line is echoed without annotation and does not change any state.
	ErrMalformedLine = errors.New("malformed line")

	// ErrInvalidInput is returned when the program text is not UTF-8.
	ErrInvalidInput = errors.New("program text is not valid UTF-8")
)

// Diagnostic is an advisory problem found while interpreting a line.
type Diagnostic struct {
	// Line is the zero-based index of the source line.
	Line int
	Err  error
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("line %d: %v", d.Line+1, d.Err)
}

func (d Diagnostic) Unwrap() error { return d.Err }

// Kind names the diagnostic category.
func (d Diagnostic) Kind() string {
	switch {
	case errors.Is(d.Err, ErrMalformedLine):
		return "MalformedLine"
	case errors.Is(d.Err, gcode.ErrUnsupportedWord):
		return "UnsupportedWord"
	case errors.Is(d.Err, subprog.ErrSubprogramNotFound):
		return "SubprogramNotFound"
	case errors.Is(d.Err, register.ErrExpression):
		return "ExpressionError"
	case errors.Is(d.Err, register.ErrMissingRegister):
		return "MissingRegister"
	}
	return "Error"
}

func (d Diagnostic) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Line    int    `json:"line"`
		Kind    string `json:"kind"`
		Message string `json:"message"`
	}{d.Line, d.Kind(), d.Err.Error()})
}

// split flattens errors joined with errors.Join.
func split(err error) []error {
	if err == nil {
		return nil
	}
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		var res []error
		for _, e := range j.Unwrap() {
			res = append(res, split(e)...)
		}
		return res
	}
	return []error{err}
}
