package render

import (
	"github.com/soypat/implicit/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Triangle3 is a 3D triangle. Vertices are ordered counter-clockwise
// when viewed from the side the normal points to.
type Triangle3 struct {
	V [3]r3.Vec
}

// Normal returns the unit normal of the triangle.
func (t Triangle3) Normal() r3.Vec {
	e1 := r3.Sub(t.V[1], t.V[0])
	e2 := r3.Sub(t.V[2], t.V[0])
	return r3.Unit(r3.Cross(e1, e2))
}

// Degenerate returns true if two of the triangle's vertices are equal within tol.
func (t Triangle3) Degenerate(tol float64) bool {
	return d3.EqualWithin(t.V[0], t.V[1], tol) ||
		d3.EqualWithin(t.V[1], t.V[2], tol) ||
		d3.EqualWithin(t.V[2], t.V[0], tol)
}

// Centroid returns the mean of the triangle vertices.
func (t Triangle3) Centroid() r3.Vec {
	return r3.Scale(1./3., r3.Add(t.V[0], r3.Add(t.V[1], t.V[2])))
}

// Bounds returns the smallest box containing the triangle.
func (t Triangle3) Bounds() r3.Box {
	return r3.Box{
		Min: d3.MinElem(t.V[2], d3.MinElem(t.V[0], t.V[1])),
		Max: d3.MaxElem(t.V[2], d3.MaxElem(t.V[0], t.V[1])),
	}
}
