// Package flatten turns an interpreted program into plain G-code that any
// controller can read: every register reference resolved, every motion
// block absolute.
package flatten

import (
	"errors"
	"fmt"
	"strings"

	gocnc "github.com/joushou/gocnc/gcode"
	"github.com/mastercactapus/cncview/interp"
)

// ErrInvalidOutput is returned when the flattened text is rejected by the
// G-code parser.
var ErrInvalidOutput = errors.New("flattened program is not valid G-code")

// Program is a flattened program.
type Program struct {
	Blocks []string

	// Source maps each block to the source line that produced it.
	Source []int
}

func (p *Program) String() string {
	if len(p.Blocks) == 0 {
		return ""
	}
	return strings.Join(p.Blocks, "\n") + "\n"
}

// Flatten collects the motion and spindle annotations of res as G-code
// blocks. Register assignments and block numbers are dropped.
func Flatten(res *interp.Result) (*Program, error) {
	p := &Program{}
	for _, l := range res.Lines {
		if l.Kind != interp.Interpreted || strings.Contains(l.Text, "=") {
			continue
		}
		var words []string
		for _, w := range strings.Fields(l.Text) {
			if w[0] == 'N' {
				continue
			}
			words = append(words, w)
		}
		if len(words) == 0 {
			continue
		}
		p.Blocks = append(p.Blocks, strings.Join(words, " "))
		p.Source = append(p.Source, l.Index)
	}

	if len(p.Blocks) == 0 {
		return p, nil
	}
	if err := Validate(p.String()); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate parses text with a standard G-code parser and reports whether
// every block holds only address/number words.
func Validate(text string) error {
	doc, err := gocnc.Parse(text)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	for i, b := range doc.Blocks {
		for _, n := range b.Nodes {
			if _, ok := n.(*gocnc.Word); !ok {
				return fmt.Errorf("%w: block %d: unexpected node %T", ErrInvalidOutput, i+1, n)
			}
		}
	}
	return nil
}
