package render

import (
	"github.com/chewxy/math32"
	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh is a non-indexed triangle mesh stored in flat float32 buffers. Every
// three consecutive vertices form a triangle.
type Mesh struct {
	// Positions holds x,y,z for each vertex.
	Positions []float32
	// Normals holds the unit normal of each vertex. May be empty.
	Normals []float32
	// UVs holds u,v texture coordinates for each vertex. May be empty.
	UVs []float32
	// Colors holds r,g,b in [0,1] for each vertex. May be empty.
	Colors   []float32
	Material *Material
	// Rotation holds Euler angles in radians applied in X, Y, Z order.
	Rotation r3.Vec

	disposed bool
}

// VertexCount returns the number of vertices in the mesh.
func (m *Mesh) VertexCount() int {
	if m == nil {
		return 0
	}
	return len(m.Positions) / 3
}

// TriangleCount returns the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int { return m.VertexCount() / 3 }

// IsEmpty returns true if the mesh has no triangles.
func (m *Mesh) IsEmpty() bool { return m.TriangleCount() == 0 }

// Vertex returns the position of the i'th vertex.
func (m *Mesh) Vertex(i int) r3.Vec {
	p := m.Positions[3*i : 3*i+3]
	return r3.Vec{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}
}

// Normal returns the normal of the i'th vertex.
func (m *Mesh) Normal(i int) r3.Vec {
	n := m.Normals[3*i : 3*i+3]
	return r3.Vec{X: float64(n[0]), Y: float64(n[1]), Z: float64(n[2])}
}

// Triangles returns the mesh's triangles in world coordinates, without rotation applied.
func (m *Mesh) Triangles() []Triangle3 {
	nt := m.TriangleCount()
	tris := make([]Triangle3, nt)
	for i := range tris {
		tris[i] = Triangle3{V: [3]r3.Vec{
			m.Vertex(3 * i),
			m.Vertex(3*i + 1),
			m.Vertex(3*i + 2),
		}}
	}
	return tris
}

// Bounds returns the axis aligned bounding box of the vertices.
// An empty mesh returns the zero box.
func (m *Mesh) Bounds() r3.Box {
	if m.IsEmpty() {
		return r3.Box{}
	}
	min := [3]float32{math32.Inf(1), math32.Inf(1), math32.Inf(1)}
	max := [3]float32{math32.Inf(-1), math32.Inf(-1), math32.Inf(-1)}
	for i := 0; i < len(m.Positions); i += 3 {
		for j := 0; j < 3; j++ {
			min[j] = math32.Min(min[j], m.Positions[i+j])
			max[j] = math32.Max(max[j], m.Positions[i+j])
		}
	}
	return r3.Box{
		Min: r3.Vec{X: float64(min[0]), Y: float64(min[1]), Z: float64(min[2])},
		Max: r3.Vec{X: float64(max[0]), Y: float64(max[1]), Z: float64(max[2])},
	}
}

// Renderer returns a Renderer that reads the mesh's triangles once.
func (m *Mesh) Renderer() Renderer {
	return &triangleQueue{buf: m.Triangles()}
}

// Dispose releases the vertex buffers. Calling Dispose more than once has no effect.
func (m *Mesh) Dispose() {
	if m == nil || m.disposed {
		return
	}
	m.Positions = nil
	m.Normals = nil
	m.UVs = nil
	m.Colors = nil
	m.disposed = true
}

// Disposed reports whether Dispose was called.
func (m *Mesh) Disposed() bool { return m != nil && m.disposed }

// appendVertex adds a vertex to the mesh's buffers.
func (m *Mesh) appendVertex(p, n r3.Vec) {
	m.Positions = append(m.Positions, float32(p.X), float32(p.Y), float32(p.Z))
	m.Normals = append(m.Normals, float32(n.X), float32(n.Y), float32(n.Z))
}
