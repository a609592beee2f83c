package render

import (
	"fmt"
	"io"
	"math"

	"github.com/soypat/implicit"
	"github.com/soypat/implicit/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

var _ Renderer = (*octree)(nil)

// octree streams marching cubes triangles, subdividing only cubes that may
// contain the surface.
type octree struct {
	lattice *lattice
	pending []octant
	spill   triangleQueue
}

// octant is a lattice aligned cube with side 1<<level lattice steps.
type octant struct {
	origin d3.V3i
	level  uint
}

// NewOctreeRenderer returns a Renderer that meshes the zero level set of a
// signed distance field over bb with meshCells cells along the longest axis.
// Empty octree cubes are skipped by comparing the distance at a cube's center
// to its half diagonal, so f must not overestimate the distance to its surface.
// Algebraic fields such as implicit.Surface do not meet this and should be
// sampled with MarchingCubes instead.
func NewOctreeRenderer(f implicit.Field, bb r3.Box, meshCells int) (Renderer, error) {
	if meshCells < 2 {
		return nil, fmt.Errorf("octree with %d mesh cells: %w", meshCells, ErrResolution)
	}
	// Grow the box slightly so no surface lies on its boundary.
	box := d3.Box(bb).ScaleAboutCenter(1.01)
	if box.Degenerate() {
		return nil, fmt.Errorf("octree bounds %v: degenerate box", bb)
	}
	longest := d3.Max(box.Size())
	// Leaf cubes span two lattice steps.
	step := 0.5 * longest / float64(meshCells)
	levels := uint(math.Ceil(math.Log2(longest/step))) + 1
	return &octree{
		lattice: newLattice(f, box.Min, step, levels),
		pending: []octant{{level: levels - 1}},
		spill:   triangleQueue{buf: make([]Triangle3, 0, marchingCubesMaxTriangles)},
	}, nil
}

// ReadTriangles fills dst with the next triangles of the surface.
func (oc *octree) ReadTriangles(dst []Triangle3) (int, error) {
	if len(dst) == 0 {
		return 0, io.ErrShortBuffer
	}
	n, _ := oc.spill.ReadTriangles(dst)
	for n < len(dst) && len(oc.pending) > 0 {
		next := oc.pending[0]
		oc.pending = oc.pending[1:]
		if next.level > 1 {
			oc.subdivide(next)
			continue
		}
		if room := dst[n:]; len(room) >= marchingCubesMaxTriangles {
			n += oc.leaf(room, next)
			continue
		}
		var tmp [marchingCubesMaxTriangles]Triangle3
		k := oc.leaf(tmp[:], next)
		c := copy(dst[n:], tmp[:k])
		oc.spill.push(tmp[c:k]...)
		n += c
	}
	if n == 0 && len(oc.pending) == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// subdivide queues the children of o that may intersect the surface.
func (oc *octree) subdivide(o octant) {
	level := o.level - 1
	side := 1 << level
	for _, off := range mcCornerOffsets {
		child := octant{
			origin: o.origin.Add(d3.V3i{side * off[0], side * off[1], side * off[2]}),
			level:  level,
		}
		if !oc.lattice.empty(child) {
			oc.pending = append(oc.pending, child)
		}
	}
}

// leaf polygonizes a finest level octant into dst.
func (oc *octree) leaf(dst []Triangle3, o octant) int {
	var (
		corners [8]r3.Vec
		values  [8]float64
	)
	for i, off := range mcCornerOffsets {
		corners[i], values[i] = oc.lattice.at(o.origin.Add(d3.V3i{2 * off[0], 2 * off[1], 2 * off[2]}))
	}
	return mcToTriangles(dst, corners, values, 0)
}

// lattice memoizes field values at integer lattice points. Neighbouring
// octants share corners so most lookups are cache hits.
type lattice struct {
	f      implicit.Field
	origin r3.Vec
	step   float64
	values map[d3.V3i]float64
	// halfDiag[l] is half the diagonal of an octant of level l.
	halfDiag []float64
}

func newLattice(f implicit.Field, origin r3.Vec, step float64, levels uint) *lattice {
	l := &lattice{
		f:        f,
		origin:   origin,
		step:     step,
		values:   make(map[d3.V3i]float64),
		halfDiag: make([]float64, levels),
	}
	for i := range l.halfDiag {
		side := math.Ldexp(step, i)
		l.halfDiag[i] = 0.5 * math.Sqrt(3) * side
	}
	return l
}

// at returns the position of lattice point p and the field value there.
func (l *lattice) at(p d3.V3i) (r3.Vec, float64) {
	pos := r3.Add(l.origin, r3.Scale(l.step, p.ToV3()))
	v, ok := l.values[p]
	if !ok {
		v = l.f.Evaluate(pos)
		l.values[p] = v
	}
	return pos, v
}

// empty reports whether the octant is too far from the surface to contain it.
func (l *lattice) empty(o octant) bool {
	_, d := l.at(o.origin.AddScalar(1 << (o.level - 1)))
	return math.Abs(d) >= l.halfDiag[o.level]
}
