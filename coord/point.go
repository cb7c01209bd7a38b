package coord

import (
	"math"
	"strconv"
)

// Precision is the number of decimal digits every resolved value is rounded to.
const Precision = 3

// Point is an absolute lathe position. Only the X (diameter) and Z axes are modeled.
type Point struct{ X, Z float64 }

// Add will add the target values to p.
func (p Point) Add(target Point) Point {
	p.X += target.X
	p.Z += target.Z
	return p
}

// Round rounds both axes to Precision digits.
func (p Point) Round() Point {
	p.X = Round(p.X)
	p.Z = Round(p.Z)
	return p
}

func (p Point) String() string {
	return "X" + Format(p.X) + " Z" + Format(p.Z)
}

// Round rounds v to Precision decimal digits, half away from zero.
func Round(v float64) float64 {
	const scale = 1000
	r := math.Round(v*scale) / scale
	if r == 0 {
		// avoid "-0.000"
		return 0
	}
	return r
}

// Format renders v with exactly Precision decimals.
func Format(v float64) string {
	return strconv.FormatFloat(Round(v), 'f', Precision, 64)
}
