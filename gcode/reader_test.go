package gcode

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinesReader(t *testing.T) {
	r := NewLinesReader("G90 X1\r\n\nM3\n")

	l, err := r.Read()
	assert.NoError(t, err)
	assert.Equal(t, Line{Index: 0, Raw: "G90 X1"}, l)

	l, err = r.Read()
	assert.NoError(t, err)
	assert.Equal(t, Line{Index: 1, Raw: ""}, l)

	l, err = r.Read()
	assert.NoError(t, err)
	assert.Equal(t, Line{Index: 2, Raw: "M3"}, l)

	l, err = r.Read()
	assert.NoError(t, err)
	assert.Equal(t, Line{Index: 3, Raw: ""}, l)

	l, err = r.Read()
	assert.Error(t, err)
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, Line{}, l)
}

func TestLinesReader_Empty(t *testing.T) {
	r := NewLinesReader("")
	l, err := r.Read()
	assert.NoError(t, err)
	assert.Equal(t, "", l.Raw)

	_, err = r.Read()
	assert.Equal(t, io.EOF, err)
}
