package volume

import (
	"errors"
	"fmt"

	"github.com/soypat/implicit"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot/plotter"
)

// LineProfile evaluates f at evenly spaced points on the segment from-to.
// X holds the distance from the segment start, Y the field value.
func LineProfile(f implicit.Field, from, to r3.Vec, samples int) (plotter.XYs, error) {
	if samples < 2 {
		return nil, errors.New("profile needs at least 2 samples")
	}
	dir := r3.Sub(to, from)
	length := r3.Norm(dir)
	if length == 0 {
		return nil, errors.New("zero length profile segment")
	}
	xys := make(plotter.XYs, samples)
	for i := range xys {
		t := float64(i) / float64(samples-1)
		xys[i].X = t * length
		xys[i].Y = f.Evaluate(r3.Add(from, r3.Scale(t, dir)))
	}
	return xys, nil
}

// AxisSegment returns the segment through the center of bb parallel to
// axis "x", "y" or "z", spanning the box.
func AxisSegment(bb r3.Box, axis string) (from, to r3.Vec, err error) {
	center := r3.Scale(0.5, r3.Add(bb.Min, bb.Max))
	from, to = center, center
	switch axis {
	case "x":
		from.X, to.X = bb.Min.X, bb.Max.X
	case "y":
		from.Y, to.Y = bb.Min.Y, bb.Max.Y
	case "z":
		from.Z, to.Z = bb.Min.Z, bb.Max.Z
	default:
		return from, to, fmt.Errorf("invalid axis %q", axis)
	}
	return from, to, nil
}
