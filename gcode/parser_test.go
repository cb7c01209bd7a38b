package gcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	b, _, err := ParseLine("N10 G90 G1 X50 Z-20.5 F0.2 ; rough")
	require.NoError(t, err)
	assert.Equal(t, Block{
		{W: 'N', Arg: "10"},
		{W: 'G', Arg: "90"},
		{W: 'G', Arg: "1"},
		{W: 'X', Arg: "50"},
		{W: 'Z', Arg: "-20.5"},
		{W: 'F', Arg: "0.2"},
	}, b)
}

func TestParseLine_Compact(t *testing.T) {
	b, _, err := ParseLine("g1x10z-2")
	require.NoError(t, err)
	assert.Equal(t, "G1 X10 Z-2", b.String())
}

func TestParseLine_Expressions(t *testing.T) {
	b, _, err := ParseLine("G1 X=R54+2 Z=(462.2 - 40) F0.1")
	require.NoError(t, err)
	assert.Equal(t, Block{
		{W: 'G', Arg: "1"},
		{W: 'X', Arg: "R54+2"},
		{W: 'Z', Arg: "(462.2-40)"},
		{W: 'F', Arg: "0.1"},
	}, b)

	b, _, err = ParseLine("X(R1*2) Z-(R2)")
	require.NoError(t, err)
	assert.Equal(t, "(R1*2)", b[0].Arg)
	assert.Equal(t, "-(R2)", b[1].Arg)
}

func TestParseLine_Assignments(t *testing.T) {
	b, _, err := ParseLine("R54=R54*R69 R1 = 10 + 5 G0 X=R1")
	require.NoError(t, err)
	assert.Equal(t, Block{
		{W: 'R', Reg: "54", Arg: "R54*R69"},
		{W: 'R', Reg: "1", Arg: "10+5"},
		{W: 'G', Arg: "0"},
		{W: 'X', Arg: "R1"},
	}, b)
	assert.Len(t, b.Assignments(), 2)
	assert.True(t, b.HasMotion())
}

func TestParseLine_Errors(t *testing.T) {
	for _, s := range []string{
		"CYCLE95(1,2)",
		"G1 X",
		"R5",
		"R=3",
		"#1=2",
		"X=(1+2))",
	} {
		_, _, err := ParseLine(s)
		assert.Error(t, err, s)
	}
}

func TestParseLine_Keywords(t *testing.T) {
	b, kws, err := ParseLine("G96 S200 LIMS = 3000 G1 X10")
	require.NoError(t, err)
	assert.Equal(t, "G96 S200 G1 X10", b.String())
	assert.Equal(t, []Keyword{{Name: "LIMS", Arg: "3000"}}, kws)
	assert.Equal(t, "LIMS=3000", kws[0].String())

	_, _, err = ParseLine("CYCLE95(1,2)")
	assert.ErrorIs(t, err, ErrUnsupportedWord)
}

func TestAssignments(t *testing.T) {
	b := Assignments("N5 R01=12.5 R02 = R01 * 2 AR3=7 ; R9=1")
	assert.Equal(t, Block{
		{W: 'R', Reg: "01", Arg: "12.5"},
		{W: 'R', Reg: "02", Arg: "R01*2"},
	}, b)
}

func TestSubprogramCall(t *testing.T) {
	name, ok := SubprogramCall("N20 L105 ; params")
	assert.True(t, ok)
	assert.Equal(t, "L105", name)

	_, ok = SubprogramCall("G1 X10")
	assert.False(t, ok)
}

func TestBlock_Validate(t *testing.T) {
	assert.NoError(t, Block{{W: 'G', Arg: "90"}, {W: 'G', Arg: "1"}, {W: 'M', Arg: "3"}, {W: 'M', Arg: "8"}}.Validate())
	assert.Error(t, Block{{W: 'X', Arg: "1"}, {W: 'X', Arg: "2"}}.Validate())
	assert.Error(t, Block{{W: 'G', Arg: "0"}, {W: 'G', Arg: "1"}}.Validate())
	assert.Error(t, Block{{W: 'M', Arg: "3"}, {W: 'M', Arg: "5"}}.Validate())
}

func TestWord_Code(t *testing.T) {
	assert.Equal(t, "G1", Word{W: 'G', Arg: "01"}.Code())
	assert.Equal(t, "M3", Word{W: 'M', Arg: "3"}.Code())
	assert.Equal(t, ModalGroupCoolant, Word{W: 'M', Arg: "8"}.ModalGroup())
	assert.Equal(t, ModalGroupDistanceMode, Word{W: 'G', Arg: "91"}.ModalGroup())
}
