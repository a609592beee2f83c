package implicit

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/spatial/r3"
)

// sdfxField wraps an sdfx solid so it can be sampled like any other Field.
type sdfxField struct {
	s sdf.SDF3
}

// FromSDF3 adapts a github.com/deadsy/sdfx solid to the Field interface.
// sdfx solids are signed distance fields and follow the same
// negative-inside convention.
func FromSDF3(s sdf.SDF3) Field {
	if s == nil {
		panic("nil SDF3 argument")
	}
	return sdfxField{s: s}
}

func (f sdfxField) Evaluate(p r3.Vec) float64 {
	return f.s.Evaluate(v3.Vec{X: p.X, Y: p.Y, Z: p.Z})
}

// SDF3Bounds returns the bounding box of an sdfx solid.
func SDF3Bounds(s sdf.SDF3) r3.Box {
	bb := s.BoundingBox()
	return r3.Box{
		Min: r3.Vec{X: bb.Min.X, Y: bb.Min.Y, Z: bb.Min.Z},
		Max: r3.Vec{X: bb.Max.X, Y: bb.Max.Y, Z: bb.Max.Z},
	}
}
