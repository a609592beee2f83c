package implicit

import "gonum.org/v1/gonum/spatial/r3"

// Normal returns the unit gradient direction of f at p (which doesn't need to
// be on the surface), computed by central differences over a box of side 2*eps
// centered on p. Fields that grow outward give outward normals.
func Normal(f Field, p r3.Vec, eps float64) r3.Vec {
	return r3.Unit(r3.Vec{
		X: f.Evaluate(r3.Add(p, r3.Vec{X: eps})) - f.Evaluate(r3.Add(p, r3.Vec{X: -eps})),
		Y: f.Evaluate(r3.Add(p, r3.Vec{Y: eps})) - f.Evaluate(r3.Add(p, r3.Vec{Y: -eps})),
		Z: f.Evaluate(r3.Add(p, r3.Vec{Z: eps})) - f.Evaluate(r3.Add(p, r3.Vec{Z: -eps})),
	})
}
