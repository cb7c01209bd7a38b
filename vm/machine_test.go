package vm

import (
	"strconv"
	"testing"

	"github.com/mastercactapus/cncview/coord"
	"github.com/mastercactapus/cncview/gcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func literal(expr string) float64 {
	v, _ := strconv.ParseFloat(expr, 64)
	return v
}

func run(t *testing.T, m *Machine, line string) {
	t.Helper()
	b, _, err := gcode.ParseLine(line)
	require.NoError(t, err)
	require.NoError(t, m.Run(b, literal))
}

func TestMachine_AbsoluteRelative(t *testing.T) {
	m := NewMachine()
	assert.Equal(t, Absolute, m.Mode())

	run(t, m, "G90 X50 Z-20")
	assert.Equal(t, coord.Point{X: 50, Z: -20}, m.Position())

	run(t, m, "G91 X10")
	assert.Equal(t, Relative, m.Mode())
	assert.Equal(t, coord.Point{X: 60, Z: -20}, m.Position())

	// mode is sticky
	run(t, m, "Z-5")
	assert.Equal(t, coord.Point{X: 60, Z: -25}, m.Position())

	run(t, m, "G90 Z1.5")
	assert.Equal(t, coord.Point{X: 60, Z: 1.5}, m.Position())
}

func TestMachine_Modal(t *testing.T) {
	m := NewMachine()
	assert.Equal(t, "G0", m.GCode())

	run(t, m, "G1 X1 F0.2")
	assert.Equal(t, "G1", m.GCode())
	f, ok := m.Feed()
	assert.True(t, ok)
	assert.Equal(t, 0.2, f)

	run(t, m, "X2")
	assert.Equal(t, "G1", m.GCode())
	f, _ = m.Feed()
	assert.Equal(t, 0.2, f)
}

func TestMachine_Spindle(t *testing.T) {
	m := NewMachine()

	run(t, m, "M3 S1000 M8")
	assert.True(t, m.SpindleActive())
	s, ok := m.Speed()
	assert.True(t, ok)
	assert.Equal(t, 1000.0, s)
	assert.Equal(t, []string{"M3", "M8"}, m.MCodes())

	run(t, m, "M5")
	assert.False(t, m.SpindleActive())
	_, ok = m.Speed()
	assert.False(t, ok)
	assert.Equal(t, []string{"M8", "M5"}, m.MCodes())
}

func TestMachine_InvalidBlock(t *testing.T) {
	m := NewMachine()
	run(t, m, "X5")

	err := m.Run(gcode.Block{{W: 'X', Arg: "1"}, {W: 'X', Arg: "2"}}, literal)
	assert.Error(t, err)
	assert.Equal(t, coord.Point{X: 5}, m.Position())
}

func TestMachine_Reset(t *testing.T) {
	m := NewMachine()
	run(t, m, "G91 G1 X5 M3 S200")
	m.Reset()

	assert.Equal(t, NewMachine(), m)
}

func TestStripParens(t *testing.T) {
	assert.Equal(t, "1+2", StripParens("(1+2)"))
	assert.Equal(t, "(1)+(2)", StripParens("(1)+(2)"))
	assert.Equal(t, "(1+2)", StripParens("((1+2))"))
	assert.Equal(t, "R1", StripParens("R1"))
}
