// Package implicit defines scalar fields whose zero level-set is a surface
// of interest. Fields are pure: they hold their shape parameters by value and
// evaluate without side effects, so the same Surface may be sampled from
// any number of goroutines.
package implicit

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Field is the interface to a 3d scalar field. The surface described by
// a Field is the set of points where Evaluate returns zero. Points where
// Evaluate is negative are considered inside the surface.
type Field interface {
	Evaluate(p r3.Vec) float64
}

// FieldFunc adapts an ordinary function to the Field interface.
type FieldFunc func(x, y, z float64) float64

// Evaluate calls f(p.X, p.Y, p.Z).
func (f FieldFunc) Evaluate(p r3.Vec) float64 { return f(p.X, p.Y, p.Z) }

// Kind identifies which implicit surface a Surface describes.
type Kind uint8

const (
	KindSphere Kind = iota
	KindTorus
	KindHeart
	KindGoursat
	KindKleinBottle
	numKinds
)

var kindNames = [numKinds]string{
	KindSphere:      "sphere",
	KindTorus:       "torus",
	KindHeart:       "heart",
	KindGoursat:     "goursat",
	KindKleinBottle: "klein",
}

func (k Kind) String() string {
	if k >= numKinds {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return kindNames[k]
}

// ParseKind returns the Kind whose String representation matches s (case insensitive).
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown surface kind %q", s)
}

// Surface is a parametrized implicit surface. Only the parameters relevant
// to Kind are read during evaluation.
type Surface struct {
	Kind Kind
	// Sphere.
	Radius float64
	// Torus. MajorRadius is the distance from the center of the tube to the
	// center of the torus, MinorRadius the radius of the tube.
	MajorRadius, MinorRadius float64
	// Goursat coefficients.
	A, B, C float64
}

var _ Field = Surface{}

// NewSphere returns the sphere of radius r centered at the origin.
func NewSphere(r float64) Surface {
	return Surface{Kind: KindSphere, Radius: r}
}

// NewTorus returns a torus around the z axis.
func NewTorus(majorRadius, minorRadius float64) Surface {
	return Surface{Kind: KindTorus, MajorRadius: majorRadius, MinorRadius: minorRadius}
}

// NewHeart returns the heart surface.
func NewHeart() Surface { return Surface{Kind: KindHeart} }

// NewGoursat returns Goursat's quartic surface with coefficients a, b, c.
func NewGoursat(a, b, c float64) Surface {
	return Surface{Kind: KindGoursat, A: a, B: b, C: c}
}

// NewKleinBottle returns the quartic immersion of the Klein bottle.
func NewKleinBottle() Surface { return Surface{Kind: KindKleinBottle} }

// Evaluate returns the signed field value of the surface at p.
func (s Surface) Evaluate(p r3.Vec) float64 {
	switch s.Kind {
	case KindSphere:
		return Sphere(p.X, p.Y, p.Z, s.Radius)
	case KindTorus:
		return Torus(p.X, p.Y, p.Z, s.MajorRadius, s.MinorRadius)
	case KindHeart:
		return Heart(p.X, p.Y, p.Z)
	case KindGoursat:
		return Goursat(p.X, p.Y, p.Z, s.A, s.B, s.C)
	case KindKleinBottle:
		return KleinBottle(p.X, p.Y, p.Z)
	}
	panic("invalid surface kind " + s.Kind.String())
}

func (s Surface) String() string {
	switch s.Kind {
	case KindSphere:
		return fmt.Sprintf("sphere(r=%g)", s.Radius)
	case KindTorus:
		return fmt.Sprintf("torus(R=%g, r=%g)", s.MajorRadius, s.MinorRadius)
	case KindGoursat:
		return fmt.Sprintf("goursat(a=%g, b=%g, c=%g)", s.A, s.B, s.C)
	}
	return s.Kind.String()
}
