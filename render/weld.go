package render

import (
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	_ kdtree.Interface  = kdVertices{}
	_ kdtree.Comparable = kdVertex{}
)

// Weld merges triangle vertices that lie within tol of each other. It returns
// the unique vertices in order of first appearance and, for each triangle
// of model, the indices of its vertices.
func Weld(model []Triangle3, tol float64) (vertices []r3.Vec, faces [][3]int) {
	if len(model) == 0 {
		return nil, nil
	}
	pts := make(kdVertices, 0, 3*len(model))
	for i := range model {
		for j := range model[i].V {
			pts = append(pts, kdVertex{Vec: model[i].V[j], idx: 3*i + j})
		}
	}
	remap := make([]int, len(pts))
	for i := range remap {
		remap[i] = -1
	}
	// kdtree.New reorders pts. Each vertex carries its original index.
	tree := kdtree.New(pts, false)
	for i := range remap {
		if remap[i] >= 0 {
			continue
		}
		v := model[i/3].V[i%3]
		u := len(vertices)
		vertices = append(vertices, v)
		remap[i] = u
		keep := kdtree.NewDistKeeper(tol * tol)
		tree.NearestSet(keep, kdVertex{Vec: v})
		for _, c := range keep.Heap {
			if c.Comparable == nil {
				continue // sentinel
			}
			j := c.Comparable.(kdVertex).idx
			if remap[j] < 0 {
				remap[j] = u
			}
		}
	}
	faces = make([][3]int, len(model))
	for i := range faces {
		faces[i] = [3]int{remap[3*i], remap[3*i+1], remap[3*i+2]}
	}
	return vertices, faces
}

type kdVertex struct {
	r3.Vec
	idx int
}

// Compare returns the signed distance of a from the plane passing through
// b and perpendicular to the dimension d.
func (a kdVertex) Compare(b kdtree.Comparable, d kdtree.Dim) float64 {
	return kdComp(a.Vec, b.(kdVertex).Vec, int(d))
}

// Dims returns the number of dimensions described in the Comparable.
func (a kdVertex) Dims() int { return 3 }

// Distance returns the squared Euclidean distance between the receiver and
// the parameter.
func (a kdVertex) Distance(b kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(a.Vec, b.(kdVertex).Vec))
}

type kdVertices []kdVertex

func (k kdVertices) Index(i int) kdtree.Comparable { return k[i] }

// Len returns the length of the list.
func (k kdVertices) Len() int { return len(k) }

// Pivot partitions the list based on the dimension specified.
func (k kdVertices) Pivot(d kdtree.Dim) int {
	p := kdPlane{dim: int(d), vertices: k}
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

// Slice returns a slice of the list using zero-based half
// open indexing equivalent to built-in slice indexing.
func (k kdVertices) Slice(start, end int) kdtree.Interface {
	return k[start:end]
}

// c = a.dim - b.dim
func kdComp(a, b r3.Vec, dim int) (c float64) {
	switch dim {
	case 0:
		c = a.X - b.X
	case 1:
		c = a.Y - b.Y
	case 2:
		c = a.Z - b.Z
	}
	return c
}

type kdPlane struct {
	dim      int
	vertices kdVertices
}

func (p kdPlane) Less(i, j int) bool {
	return kdComp(p.vertices[i].Vec, p.vertices[j].Vec, p.dim) < 0
}
func (p kdPlane) Swap(i, j int) {
	p.vertices[i], p.vertices[j] = p.vertices[j], p.vertices[i]
}
func (p kdPlane) Len() int {
	return len(p.vertices)
}
func (p kdPlane) Slice(start, end int) kdtree.SortSlicer {
	p.vertices = p.vertices[start:end]
	return p
}
