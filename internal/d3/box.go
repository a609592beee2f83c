package d3

import "gonum.org/v1/gonum/spatial/r3"

// Box is an axis aligned box with methods gonum's r3.Box lacks.
type Box r3.Box

// NewBox returns the box of the given size centered at center.
func NewBox(center, size r3.Vec) Box {
	half := r3.Scale(0.5, size)
	return Box{Min: r3.Sub(center, half), Max: r3.Add(center, half)}
}

// Cube returns a box centered at the origin spanning [-half, half] on every axis.
func Cube(half float64) Box {
	return Box{Min: Elem(-half), Max: Elem(half)}
}

func (a Box) Size() r3.Vec { return r3.Sub(a.Max, a.Min) }

func (a Box) Center() r3.Vec { return r3.Scale(0.5, r3.Add(a.Min, a.Max)) }

// ScaleAboutCenter scales the box size by k keeping its center.
func (a Box) ScaleAboutCenter(k float64) Box {
	return NewBox(a.Center(), r3.Scale(k, a.Size()))
}

// Contains reports whether v lies in the box, boundary included.
func (a Box) Contains(v r3.Vec) bool {
	return MinElem(a.Min, v) == a.Min && MaxElem(a.Max, v) == a.Max
}

// Degenerate reports whether the box has no volume along some axis,
// is inverted, or has non-finite bounds.
func (a Box) Degenerate() bool {
	if !IsFinite(a.Min) || !IsFinite(a.Max) {
		return true
	}
	return !(a.Min.X < a.Max.X && a.Min.Y < a.Max.Y && a.Min.Z < a.Max.Z)
}

// Vertices returns the 8 corners of the box. Bits 2, 1 and 0 of a corner's
// index select the maximum X, Y and Z coordinate respectively.
func (a Box) Vertices() []r3.Vec {
	v := make([]r3.Vec, 8)
	for i := range v {
		v[i] = a.Min
		if i&4 != 0 {
			v[i].X = a.Max.X
		}
		if i&2 != 0 {
			v[i].Y = a.Max.Y
		}
		if i&1 != 0 {
			v[i].Z = a.Max.Z
		}
	}
	return v
}
