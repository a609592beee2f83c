package d3

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestBoxDegenerate(t *testing.T) {
	for _, test := range []struct {
		name string
		box  Box
		want bool
	}{
		{"cube", Cube(2), false},
		{"flat", Box{Min: r3.Vec{X: -1, Y: -1, Z: 0}, Max: r3.Vec{X: 1, Y: 1, Z: 0}}, true},
		{"inverted", Box{Min: Elem(1), Max: Elem(-1)}, true},
		{"nan", Box{Min: r3.Vec{X: math.NaN()}, Max: Elem(1)}, true},
		{"inf", Box{Min: Elem(-1), Max: r3.Vec{X: 1, Y: 1, Z: math.Inf(1)}}, true},
	} {
		if got := test.box.Degenerate(); got != test.want {
			t.Errorf("%s: Degenerate() = %v, want %v", test.name, got, test.want)
		}
	}
}

func TestBoxVertices(t *testing.T) {
	b := Box{Min: r3.Vec{X: -2, Y: 0, Z: 1}, Max: r3.Vec{X: 2, Y: 4, Z: 3}}
	v := b.Vertices()
	if v[0] != b.Min || v[7] != b.Max {
		t.Fatalf("first and last corners %v %v, want %v %v", v[0], v[7], b.Min, b.Max)
	}
	if want := (r3.Vec{X: 2, Y: 0, Z: 3}); v[5] != want {
		t.Errorf("corner 5 = %v, want %v", v[5], want)
	}
	for i, p := range v {
		if !b.Contains(p) {
			t.Errorf("corner %d %v not contained in box", i, p)
		}
	}
	if b.Contains(r3.Vec{X: 2.1, Y: 1, Z: 2}) {
		t.Error("point outside box reported as contained")
	}
}

func TestScaleAboutCenter(t *testing.T) {
	b := NewBox(r3.Vec{X: 1, Y: 2, Z: 3}, r3.Vec{X: 2, Y: 2, Z: 4})
	s := b.ScaleAboutCenter(1.5)
	if !EqualWithin(s.Center(), b.Center(), 1e-12) {
		t.Errorf("center moved from %v to %v", b.Center(), s.Center())
	}
	if want := (r3.Vec{X: 3, Y: 3, Z: 6}); !EqualWithin(s.Size(), want, 1e-12) {
		t.Errorf("scaled size %v, want %v", s.Size(), want)
	}
}
