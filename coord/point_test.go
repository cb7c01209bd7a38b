package coord

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoint_Add(t *testing.T) {
	a := Point{X: 1, Z: 3}
	b := Point{X: 4, Z: 6}

	assert.Equal(t, Point{X: 5, Z: 9}, a.Add(b))
	assert.Equal(t, a, a.Add(Point{}))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 1.235, Round(1.2346))
	assert.Equal(t, -1.235, Round(-1.2346))
	assert.Equal(t, 0.5, Round(0.49999999))
	assert.Equal(t, 422.2, Round(462.2-40))
	assert.Equal(t, 0.0, Round(-0.0001))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "422.200", Format(422.2))
	assert.Equal(t, "-20.000", Format(-20))
	assert.Equal(t, "0.000", Format(-0.0002))
}

func TestPoint_String(t *testing.T) {
	assert.Equal(t, "X60.000 Z-20.000", Point{X: 60, Z: -20}.String())
	assert.Equal(t, Point{X: 1, Z: 2}, Point{X: 1.00001, Z: 2}.Round())
	assert.Equal(t, Point{X: 0, Z: 1.235}, Point{X: -0.0001, Z: 1.2346}.Round())
}
