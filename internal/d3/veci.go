package d3

import "gonum.org/v1/gonum/spatial/r3"

// V3i indexes a point of an integer lattice.
type V3i [3]int

func (a V3i) Add(b V3i) V3i { return V3i{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }

// AddScalar adds s to every component.
func (a V3i) AddScalar(s int) V3i { return V3i{a[0] + s, a[1] + s, a[2] + s} }

func (a V3i) ToV3() r3.Vec { return r3.Vec{X: float64(a[0]), Y: float64(a[1]), Z: float64(a[2])} }
