package render

import (
	"fmt"
	"math"

	"github.com/soypat/implicit/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	marchingCubesMaxTriangles = 5
	// Below this distance to a corner value an edge vertex snaps to the corner.
	mcEpsilon = 1e-12
)

var _ Renderer = (*MarchingCubes)(nil)

// MarchingCubes extracts the isosurface of a cubic grid of scalar values.
// Grid cell (x,y,z) lies at Domain().Min + (x,y,z)/(N-1) * Domain().Size(),
// where N is the resolution.
//
// Cells with value below Isolation are inside the surface. Generated triangles
// are wound counter-clockwise seen from outside, so only one face is
// oriented toward the viewer; use a DoubleSide material for non-orientable surfaces.
type MarchingCubes struct {
	// Isolation is the field value of the extracted surface.
	Isolation float64

	resolution   int
	field        []float64
	domain       r3.Box
	enableUVs    bool
	enableColors bool
	mesh         *Mesh
	out          triangleQueue
}

type mcVertex struct {
	pos    r3.Vec
	normal r3.Vec
}

// NewMarchingCubes returns an extractor over a resolution³ grid spanning the ±1 cube.
// Generated meshes carry texture coordinates and vertex colors when enableUVs and
// enableColors are set. Vertex colors are taken from the material.
func NewMarchingCubes(resolution int, material *Material, enableUVs, enableColors bool) (*MarchingCubes, error) {
	if resolution < 2 {
		return nil, fmt.Errorf("marching cubes with %d cells per axis: %w", resolution, ErrResolution)
	}
	if material == nil {
		material = NewStandardMaterial("", HexColor(0xffffff), 1)
	}
	return &MarchingCubes{
		resolution:   resolution,
		field:        make([]float64, resolution*resolution*resolution),
		domain:       r3.Box(d3.Cube(1)),
		enableUVs:    enableUVs,
		enableColors: enableColors,
		mesh:         &Mesh{Material: material},
	}, nil
}

// Resolution returns the number of cells per axis.
func (mc *MarchingCubes) Resolution() int { return mc.resolution }

// SetDomain sets the world space box spanned by the grid.
func (mc *MarchingCubes) SetDomain(bb r3.Box) { mc.domain = bb }

// Domain returns the world space box spanned by the grid.
func (mc *MarchingCubes) Domain() r3.Box { return mc.domain }

// Mesh returns the mesh regenerated by Update. The same pointer is returned for
// the extractor's lifetime.
func (mc *MarchingCubes) Mesh() *Mesh { return mc.mesh }

// SetCell sets the field value at cell (x,y,z). It panics if the cell is out of range.
func (mc *MarchingCubes) SetCell(x, y, z int, value float64) {
	mc.field[mc.index(x, y, z)] = value
}

// Cell returns the field value at cell (x,y,z).
func (mc *MarchingCubes) Cell(x, y, z int) float64 {
	return mc.field[mc.index(x, y, z)]
}

func (mc *MarchingCubes) index(x, y, z int) int {
	n := mc.resolution
	if x < 0 || y < 0 || z < 0 || x >= n || y >= n || z >= n {
		panic(fmt.Sprintf("cell (%d,%d,%d) out of range for resolution %d", x, y, z, n))
	}
	return x + n*(y+n*z)
}

// Reset zeroes all cells and empties the mesh.
func (mc *MarchingCubes) Reset() {
	for i := range mc.field {
		mc.field[i] = 0
	}
	mc.clearMesh()
}

func (mc *MarchingCubes) clearMesh() {
	m := mc.mesh
	m.Positions = m.Positions[:0]
	m.Normals = m.Normals[:0]
	m.UVs = m.UVs[:0]
	m.Colors = m.Colors[:0]
	mc.out.reset()
}

// Update regenerates the mesh from the current cell values.
func (mc *MarchingCubes) Update() {
	mc.clearMesh()
	n := mc.resolution
	var (
		values   [8]float64
		verts    [12]mcVertex
		computed uint16
	)
	for z := 0; z < n-1; z++ {
		for y := 0; y < n-1; y++ {
			for x := 0; x < n-1; x++ {
				index := 0
				for i, off := range mcCornerOffsets {
					values[i] = mc.field[mc.index(x+off[0], y+off[1], z+off[2])]
					if values[i] < mc.Isolation {
						index |= 1 << i
					}
				}
				edges := mcTriangleTable[index]
				if len(edges) == 0 {
					continue
				}
				computed = 0
				for _, e := range edges {
					if computed&(1<<e) == 0 {
						verts[e] = mc.edgeVertex(d3.V3i{x, y, z}, e, &values)
						computed |= 1 << e
					}
				}
				// Table triangles are clockwise seen from outside.
				for i := 0; i < len(edges); i += 3 {
					a, b, c := verts[edges[i+2]], verts[edges[i+1]], verts[edges[i]]
					mc.emit(a, b, c)
				}
			}
		}
	}
}

// ReadTriangles reads the triangles generated by the last call to Update.
// Once all are read it returns io.EOF until the next Update.
func (mc *MarchingCubes) ReadTriangles(t []Triangle3) (int, error) {
	return mc.out.ReadTriangles(t)
}

func (mc *MarchingCubes) emit(a, b, c mcVertex) {
	// Vertices are stored in single precision, so triangles are checked after rounding.
	a.pos, b.pos, c.pos = roundF32(a.pos), roundF32(b.pos), roundF32(c.pos)
	t := Triangle3{V: [3]r3.Vec{a.pos, b.pos, c.pos}}
	if t.Degenerate(0) {
		return
	}
	face := t.Normal()
	if !d3.IsFinite(face) || r3.Norm2(face) == 0 {
		return // collinear vertices
	}
	m := mc.mesh
	size := d3.Box(mc.domain).Size()
	col := m.Material.Color
	for _, v := range [3]mcVertex{a, b, c} {
		normal := face
		if r3.Norm2(v.normal) > mcEpsilon*mcEpsilon {
			normal = r3.Unit(v.normal)
		}
		m.appendVertex(v.pos, normal)
		if mc.enableUVs {
			uv := d3.DivElem(r3.Sub(v.pos, mc.domain.Min), size)
			m.UVs = append(m.UVs, float32(uv.X), float32(uv.Z))
		}
		if mc.enableColors {
			m.Colors = append(m.Colors, float32(col.R)/255, float32(col.G)/255, float32(col.B)/255)
		}
	}
	mc.out.push(t)
}

// edgeVertex interpolates the surface crossing along a cube edge.
func (mc *MarchingCubes) edgeVertex(cube d3.V3i, edge int, values *[8]float64) mcVertex {
	c0, c1 := mcEdgeCorners[edge][0], mcEdgeCorners[edge][1]
	i0 := cube.Add(mcCornerOffsets[c0])
	i1 := cube.Add(mcCornerOffsets[c1])
	v0, v1 := values[c0], values[c1]
	// Interpolate from the lower corner so neighbouring cubes produce identical vertices.
	if i0[0]+i0[1]+i0[2] > i1[0]+i1[1]+i1[2] {
		i0, i1 = i1, i0
		v0, v1 = v1, v0
	}
	t := mcInterpolate(v0, v1, mc.Isolation)
	p0, p1 := mc.position(i0), mc.position(i1)
	g0, g1 := mc.gradient(i0), mc.gradient(i1)
	return mcVertex{
		pos:    r3.Add(p0, r3.Scale(t, r3.Sub(p1, p0))),
		normal: r3.Add(g0, r3.Scale(t, r3.Sub(g1, g0))),
	}
}

// mcInterpolate returns the fraction of the way from v1 to v2 at which the
// field crosses x.
func mcInterpolate(v1, v2, x float64) float64 {
	closeToV1 := math.Abs(x-v1) < mcEpsilon
	closeToV2 := math.Abs(x-v2) < mcEpsilon
	switch {
	case closeToV1 && !closeToV2:
		return 0
	case closeToV2 && !closeToV1:
		return 1
	case closeToV1 && closeToV2:
		return 0.5
	}
	return (x - v1) / (v2 - v1)
}

func (mc *MarchingCubes) position(i d3.V3i) r3.Vec {
	size := d3.Box(mc.domain).Size()
	n := float64(mc.resolution - 1)
	return r3.Vec{
		X: mc.domain.Min.X + float64(i[0])/n*size.X,
		Y: mc.domain.Min.Y + float64(i[1])/n*size.Y,
		Z: mc.domain.Min.Z + float64(i[2])/n*size.Z,
	}
}

// gradient returns the field gradient at a cell using central differences,
// falling back to one sided differences on the grid boundary.
func (mc *MarchingCubes) gradient(i d3.V3i) r3.Vec {
	size := d3.Box(mc.domain).Size()
	spacing := [3]float64{size.X, size.Y, size.Z}
	var g [3]float64
	for axis := 0; axis < 3; axis++ {
		lo, hi := i, i
		if lo[axis] > 0 {
			lo[axis]--
		}
		if hi[axis] < mc.resolution-1 {
			hi[axis]++
		}
		h := float64(hi[axis]-lo[axis]) * spacing[axis] / float64(mc.resolution-1)
		g[axis] = (mc.Cell(hi[0], hi[1], hi[2]) - mc.Cell(lo[0], lo[1], lo[2])) / h
	}
	return r3.Vec{X: g[0], Y: g[1], Z: g[2]}
}

func roundF32(v r3.Vec) r3.Vec {
	return r3.Vec{X: float64(float32(v.X)), Y: float64(float32(v.Y)), Z: float64(float32(v.Z))}
}

// mcToTriangles writes the triangles of a single cube with corner positions p
// and corner values v to dst, returning the number written. dst must have room
// for marchingCubesMaxTriangles triangles.
func mcToTriangles(dst []Triangle3, p [8]r3.Vec, v [8]float64, x float64) int {
	index := 0
	for i := range v {
		if v[i] < x {
			index |= 1 << i
		}
	}
	edges := mcTriangleTable[index]
	if len(edges) == 0 {
		return 0
	}
	var points [12]r3.Vec
	var computed uint16
	for _, e := range edges {
		if computed&(1<<e) != 0 {
			continue
		}
		c0, c1 := mcEdgeCorners[e][0], mcEdgeCorners[e][1]
		t := mcInterpolate(v[c0], v[c1], x)
		points[e] = r3.Add(p[c0], r3.Scale(t, r3.Sub(p[c1], p[c0])))
		computed |= 1 << e
	}
	n := 0
	for i := 0; i < len(edges); i += 3 {
		t := Triangle3{V: [3]r3.Vec{points[edges[i+2]], points[edges[i+1]], points[edges[i]]}}
		if !t.Degenerate(0) {
			dst[n] = t
			n++
		}
	}
	return n
}
