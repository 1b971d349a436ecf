package layout

import "math"

// Point is an absolute coordinate in layout units.
type Point struct {
	X float64
	Y float64
}

// Extent accumulates a horizontal min/max interval. The zero value is empty.
type Extent struct {
	min float64
	max float64
	set bool
}

// Add widens the extent to include every given coordinate.
func (e *Extent) Add(xs ...float64) {
	for _, x := range xs {
		if !e.set {
			e.min, e.max, e.set = x, x, true
			continue
		}
		if x < e.min {
			e.min = x
		}
		if x > e.max {
			e.max = x
		}
	}
}

// Empty reports whether nothing has been added yet.
func (e *Extent) Empty() bool { return !e.set }

// Min returns the smallest accumulated coordinate.
func (e *Extent) Min() float64 { return e.min }

// Max returns the largest accumulated coordinate.
func (e *Extent) Max() float64 { return e.max }

// roundUpTo rounds v up to the next multiple of step.
func roundUpTo(v, step float64) float64 {
	return math.Ceil(v/step) * step
}
