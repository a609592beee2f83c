package render

import (
	"github.com/soypat/implicit/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// NewMeshFromTriangles returns a flat shaded mesh of tris.
func NewMeshFromTriangles(tris []Triangle3, mat *Material) *Mesh {
	m := &Mesh{
		Positions: make([]float32, 0, 9*len(tris)),
		Normals:   make([]float32, 0, 9*len(tris)),
		Material:  mat,
	}
	for _, t := range tris {
		n := t.Normal()
		for _, v := range t.V {
			m.appendVertex(v, n)
		}
	}
	return m
}

// boxFaces lists the corners of each box face as returned by d3.Box.Vertices,
// in perimeter order.
var boxFaces = [6][4]int{
	{0, 1, 3, 2}, {4, 5, 7, 6}, // -X, +X
	{0, 1, 5, 4}, {2, 3, 7, 6}, // -Y, +Y
	{0, 2, 6, 4}, {1, 3, 7, 5}, // -Z, +Z
}

// NewBoxMesh returns a box of the given size centered at the origin.
func NewBoxMesh(size r3.Vec, mat *Material) *Mesh {
	bb := d3.NewBox(r3.Vec{}, size)
	return NewMeshFromTriangles(quadTriangles(bb.Vertices(), boxFaces[:], bb.Center()), mat)
}

// NewPlaneMesh returns a width by depth rectangle in the XZ plane facing +Y.
func NewPlaneMesh(width, depth float64, mat *Material) *Mesh {
	w, d := width/2, depth/2
	corners := []r3.Vec{{X: -w, Z: -d}, {X: -w, Z: d}, {X: w, Z: d}, {X: w, Z: -d}}
	return NewMeshFromTriangles(quadTriangles(corners, [][4]int{{0, 1, 2, 3}}, r3.Vec{Y: -1}), mat)
}

// quadTriangles splits quads into triangles wound counter-clockwise seen
// from the side opposite to inside.
func quadTriangles(v []r3.Vec, quads [][4]int, inside r3.Vec) []Triangle3 {
	tris := make([]Triangle3, 0, 2*len(quads))
	for _, q := range quads {
		a, b, c, d := v[q[0]], v[q[1]], v[q[2]], v[q[3]]
		t1 := Triangle3{V: [3]r3.Vec{a, b, c}}
		t2 := Triangle3{V: [3]r3.Vec{a, c, d}}
		if r3.Dot(t1.Normal(), r3.Sub(t1.Centroid(), inside)) < 0 {
			t1.V[1], t1.V[2] = t1.V[2], t1.V[1]
			t2.V[1], t2.V[2] = t2.V[2], t2.V[1]
		}
		tris = append(tris, t1, t2)
	}
	return tris
}
