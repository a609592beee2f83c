package render

import (
	"fmt"
	"image/color"
)

// Side selects which faces of a mesh are drawn.
type Side uint8

const (
	FrontSide Side = iota
	BackSide
	DoubleSide
)

func (s Side) String() string {
	switch s {
	case FrontSide:
		return "front"
	case BackSide:
		return "back"
	case DoubleSide:
		return "double"
	}
	return fmt.Sprintf("Side(%d)", uint8(s))
}

// Material describes how a mesh surface is shaded.
type Material struct {
	Name      string
	Color     color.RGBA
	Roughness float64
	Metalness float64
	Side      Side
	Wireframe bool

	disposed bool
}

// NewStandardMaterial returns a front-sided, non-metallic material.
func NewStandardMaterial(name string, c color.RGBA, roughness float64) *Material {
	return &Material{
		Name:      name,
		Color:     c,
		Roughness: roughness,
		Side:      FrontSide,
	}
}

// HexColor converts a 0xRRGGBB value to an opaque color.
func HexColor(hex uint32) color.RGBA {
	return color.RGBA{
		R: uint8(hex >> 16),
		G: uint8(hex >> 8),
		B: uint8(hex),
		A: 0xff,
	}
}

// DoubleSided reports whether both faces of a mesh using m are drawn.
func (m *Material) DoubleSided() bool { return m.Side == DoubleSide }

// Dispose marks the material as released. Calling Dispose more than once has no effect.
func (m *Material) Dispose() {
	if m == nil {
		return
	}
	m.disposed = true
}

// Disposed reports whether Dispose was called.
func (m *Material) Disposed() bool { return m != nil && m.disposed }
