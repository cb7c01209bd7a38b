package vm

import (
	"strings"

	"github.com/mastercactapus/cncview/coord"
	"github.com/mastercactapus/cncview/gcode"
)

// Mode is the distance mode used for axis operands.
type Mode int

const (
	Absolute Mode = iota // G90
	Relative             // G91
)

func (m Mode) String() string {
	if m == Relative {
		return "G91"
	}
	return "G90"
}

// Evaluator resolves an operand expression to a number. It must not fail;
// problems are reported out of band by the implementation.
type Evaluator func(expr string) float64

// Machine tracks the modal state of a lathe program: position, distance
// mode, active G-code, feed, speed, spindle and M-codes.
type Machine struct {
	pos coord.Point

	modal [256]float64

	feed, speed       float64
	hasFeed, hasSpeed bool
	spindle           bool

	mcodes []gcode.Word
}

// NewMachine constructs a new Machine with default state.
func NewMachine() *Machine {
	m := &Machine{}
	m.Reset()
	return m
}

// Reset returns the machine to its power-on state.
func (m *Machine) Reset() {
	*m = Machine{}

	m.modal[gcode.ModalGroupMotion] = 0
	m.modal[gcode.ModalGroupPlaneSelection] = 18
	m.modal[gcode.ModalGroupDistanceMode] = 90
	m.modal[gcode.ModalGroupFeedRateMode] = 95
	m.modal[gcode.ModalGroupSpindleMode] = 97
	m.modal[gcode.ModalGroupUnits] = 71
	m.modal[gcode.ModalGroupCoordinateSystem] = 500
	m.modal[gcode.ModalGroupSpindle] = 5
	m.modal[gcode.ModalGroupCoolant] = 9
}

func (m *Machine) Mode() Mode {
	if m.modal[gcode.ModalGroupDistanceMode] == 91 {
		return Relative
	}
	return Absolute
}

func (m *Machine) Position() coord.Point { return m.pos }

// GCode returns the active motion code, e.g. "G1".
func (m *Machine) GCode() string {
	return "G" + gcode.FormatFloat(m.modal[gcode.ModalGroupMotion], 3)
}

func (m *Machine) Feed() (float64, bool)  { return m.feed, m.hasFeed }
func (m *Machine) Speed() (float64, bool) { return m.speed, m.hasSpeed }
func (m *Machine) SpindleActive() bool    { return m.spindle }

// MCodes returns the active M-codes, one per modal group, in the order they
// were activated.
func (m *Machine) MCodes() []string {
	res := make([]string, len(m.mcodes))
	for i, w := range m.mcodes {
		res[i] = w.Code()
	}
	return res
}

func (m *Machine) activateM(w gcode.Word) {
	mg := w.ModalGroup()
	code := w.Code()
	for i, a := range m.mcodes {
		if a.Code() == code || (mg != gcode.ModalGroupNone && a.ModalGroup() == mg) {
			m.mcodes = append(m.mcodes[:i], m.mcodes[i+1:]...)
			break
		}
	}
	m.mcodes = append(m.mcodes, w)
}

// StripParens removes one layer of parentheses enclosing the whole
// expression, so "(1+2)" becomes "1+2" but "(1)+(2)" is left alone.
func StripParens(expr string) string {
	if len(expr) < 2 || expr[0] != '(' || expr[len(expr)-1] != ')' {
		return expr
	}
	depth := 0
	for i := 0; i < len(expr)-1; i++ {
		switch expr[i] {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth == 0 {
			return expr
		}
	}
	return strings.TrimSpace(expr[1 : len(expr)-1])
}

// Run applies a block to the machine state. Register assignments in the
// block are ignored; they must be applied before calling Run.
//
// An invalid block leaves the state untouched.
func (m *Machine) Run(b gcode.Block, eval Evaluator) error {
	err := b.Validate()
	if err != nil {
		return err
	}

	var spindleWords []gcode.Word
	for _, g := range b {
		mg := g.ModalGroup()
		switch {
		case g.W == 'F':
			m.feed, m.hasFeed = eval(g.Arg), true
		case g.W == 'S':
			m.speed, m.hasSpeed = eval(g.Arg), true
		case g.W == 'M':
			spindleWords = append(spindleWords, g)
		case mg != gcode.ModalGroupNone && mg != gcode.ModalGroupNonModal:
			v, _ := g.Number()
			m.modal[mg] = v
		}
	}

	// M-codes after S so that M5 always clears the speed of its own block.
	for _, g := range spindleWords {
		mg := g.ModalGroup()
		v, _ := g.Number()
		if mg != gcode.ModalGroupNone {
			m.modal[mg] = v
		}
		switch v {
		case 3, 4:
			m.spindle = true
		case 5:
			m.spindle = false
			m.speed, m.hasSpeed = 0, false
		}
		m.activateM(g)
	}

	// apply motion
	target := m.pos
	var delta coord.Point
	for _, g := range b {
		if !g.IsAxis() {
			continue
		}
		v := eval(StripParens(g.Arg))
		rel := m.Mode() == Relative
		switch {
		case g.W == 'X' && rel:
			delta.X = v
		case g.W == 'X':
			target.X = v
		case g.W == 'Z' && rel:
			delta.Z = v
		case g.W == 'Z':
			target.Z = v
		}
	}
	if b.HasMotion() {
		m.pos = target.Add(delta).Round()
	}

	return nil
}
