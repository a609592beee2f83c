package render

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/deadsy/sdfx/sdf"
	"github.com/soypat/implicit"
	"github.com/soypat/implicit/internal/d3"
	"github.com/soypat/implicit/volume"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestMarchingCubes(t *testing.T) {
	max := 0
	for _, tri := range mcTriangleTable {
		if len(tri) > max {
			max = len(tri)
		}
	}
	got := max / 3
	if got != marchingCubesMaxTriangles {
		t.Errorf("mismatch marching cubes max triangles. got %d. want %d", got, marchingCubesMaxTriangles)
	}
}

func TestMarchingCubesTableEdges(t *testing.T) {
	for index, edges := range mcTriangleTable {
		if len(edges)%3 != 0 {
			t.Errorf("case %d: %d edges do not form triangles", index, len(edges))
			continue
		}
		var crossing, used uint16
		for e, c := range mcEdgeCorners {
			if (index>>c[0])&1 != (index>>c[1])&1 {
				crossing |= 1 << e
			}
		}
		for _, e := range edges {
			used |= 1 << e
		}
		if crossing != used {
			t.Errorf("case %d: triangles use edges %012b, surface crosses edges %012b", index, used, crossing)
		}
	}
}

func TestMCInterpolate(t *testing.T) {
	for _, test := range []struct {
		v1, v2, x float64
		want      float64
	}{
		{v1: -1, v2: 1, x: 0, want: 0.5},
		{v1: -1, v2: 3, x: 0, want: 0.25},
		{v1: 0, v2: 1, x: 0, want: 0},
		{v1: -1, v2: 0, x: 0, want: 1},
		{v1: 0, v2: 0, x: 0, want: 0.5},
		{v1: 0.2, v2: -0.2, x: 0.1, want: 0.25},
	} {
		got := mcInterpolate(test.v1, test.v2, test.x)
		if math.Abs(got-test.want) > 1e-12 {
			t.Errorf("mcInterpolate(%g, %g, %g) = %g, want %g", test.v1, test.v2, test.x, got, test.want)
		}
	}
}

func unitSphereMesh(t testing.TB, resolution int) *MarchingCubes {
	t.Helper()
	mc, err := NewMarchingCubes(resolution, nil, false, false)
	if err != nil {
		t.Fatal(err)
	}
	g, err := volume.NewGrid(r3.Box(d3.Cube(1.2)), resolution)
	if err != nil {
		t.Fatal(err)
	}
	err = volume.Generate(mc, implicit.NewSphere(1), g)
	if err != nil {
		t.Fatal(err)
	}
	return mc
}

func TestSTLWriteReadback(t *testing.T) {
	mc := unitSphereMesh(t, 24)
	input, err := RenderAll(mc)
	if err != nil {
		t.Fatal(err)
	}
	var b bytes.Buffer
	err = WriteSTL(&b, input)
	if err != nil {
		t.Fatal(err)
	}
	if b.Len() != 84+50*len(input) {
		t.Fatalf("STL size %d, want %d", b.Len(), 84+50*len(input))
	}
	output, err := readBinarySTL(&b)
	if err != nil && !errors.Is(err, ErrNormalMismatch) {
		t.Fatal(err)
	}
	if len(output) != len(input) {
		t.Fatal("length of triangles written/read not equal")
	}
	// Extracted vertices are single precision so they survive the round trip exactly.
	for i := range input {
		if output[i] != input[i] {
			t.Fatalf("%dth triangle mismatch. got %v, want %v", i, output[i], input[i])
		}
	}
}

func TestWeldClosedSphere(t *testing.T) {
	mc := unitSphereMesh(t, 16)
	model := mc.Mesh().Triangles()
	vertices, faces := Weld(model, 1e-9)
	if len(faces) != len(model) {
		t.Fatalf("got %d faces, want %d", len(faces), len(model))
	}
	type edge [2]int
	directed := make(map[edge]int)
	for _, f := range faces {
		for i := 0; i < 3; i++ {
			directed[edge{f[i], f[(i+1)%3]}]++
		}
	}
	undirected := 0
	for e, count := range directed {
		if count != 1 {
			t.Fatalf("edge %v traversed %d times in the same direction", e, count)
		}
		if directed[edge{e[1], e[0]}] != 1 {
			t.Fatalf("edge %v has no opposite half edge, mesh is not closed", e)
		}
		undirected++
	}
	undirected /= 2
	euler := len(vertices) - undirected + len(faces)
	if euler != 2 {
		t.Errorf("sphere mesh Euler characteristic %d, want 2", euler)
	}
}

func TestWeldTolerance(t *testing.T) {
	model := []Triangle3{
		{V: [3]r3.Vec{{}, {X: 1}, {Y: 1}}},
		{V: [3]r3.Vec{{X: 1 + 1e-7}, {X: 1, Y: 1}, {Y: 1 - 1e-7}}},
	}
	vertices, faces := Weld(model, 1e-6)
	if len(vertices) != 4 {
		t.Fatalf("got %d vertices, want 4", len(vertices))
	}
	want := [][3]int{{0, 1, 2}, {1, 3, 2}}
	for i := range want {
		if faces[i] != want[i] {
			t.Errorf("face %d = %v, want %v", i, faces[i], want[i])
		}
	}
	vertices, _ = Weld(model, 0)
	if len(vertices) != 6 {
		t.Errorf("zero tolerance welded into %d vertices, want 6", len(vertices))
	}
}

func TestOctreeSphere(t *testing.T) {
	const cells = 40
	s, err := sdf.Sphere3D(1)
	if err != nil {
		t.Fatal(err)
	}
	f := implicit.FromSDF3(s)
	bb := implicit.SDF3Bounds(s)
	newOctree := func() Renderer {
		r, err := NewOctreeRenderer(f, bb, cells)
		if err != nil {
			t.Fatal(err)
		}
		return r
	}
	model, err := RenderAll(newOctree())
	if err != nil {
		t.Fatal(err)
	}
	if len(model) == 0 {
		t.Fatal("no triangles rendered")
	}
	tol := 2 * d3.Max(d3.Box(bb).Size()) / cells
	for _, tri := range model {
		for _, v := range tri.V {
			if math.Abs(r3.Norm(v)-1) > tol {
				t.Fatalf("vertex %v off the sphere surface", v)
			}
		}
	}
	// Small buffers exercise the spill over of cubes with more triangles than room.
	oc := newOctree()
	buf := make([]Triangle3, 7)
	var small []Triangle3
	for {
		n, err := oc.ReadTriangles(buf)
		small = append(small, buf[:n]...)
		if err == io.EOF {
			break
		} else if err != nil {
			t.Fatal(err)
		}
	}
	if len(small) != len(model) {
		t.Errorf("read %d triangles with small buffer, want %d", len(small), len(model))
	}
}

func TestOctreeResolution(t *testing.T) {
	_, err := NewOctreeRenderer(implicit.NewSphere(1), r3.Box(d3.Cube(1)), 1)
	if !errors.Is(err, ErrResolution) {
		t.Errorf("got error %v, want ErrResolution", err)
	}
}

func TestBoxMesh(t *testing.T) {
	size := r3.Vec{X: 1, Y: 2, Z: 3}
	m := NewBoxMesh(size, nil)
	if m.TriangleCount() != 12 {
		t.Fatalf("box has %d triangles, want 12", m.TriangleCount())
	}
	bb := m.Bounds()
	if !d3.EqualWithin(r3.Sub(bb.Max, bb.Min), size, 1e-6) {
		t.Errorf("box bounds %v, want size %v", bb, size)
	}
	for i, tri := range m.Triangles() {
		if r3.Dot(tri.Normal(), tri.Centroid()) <= 0 {
			t.Errorf("box triangle %d faces inward", i)
		}
	}
	_, faces := Weld(m.Triangles(), 1e-9)
	edges := make(map[[2]int]int)
	for _, f := range faces {
		for i := 0; i < 3; i++ {
			edges[[2]int{f[i], f[(i+1)%3]}]++
		}
	}
	for e, n := range edges {
		if n != 1 || edges[[2]int{e[1], e[0]}] != 1 {
			t.Fatalf("box edge %v not shared by two consistently wound triangles", e)
		}
	}
}

func TestPlaneMesh(t *testing.T) {
	m := NewPlaneMesh(10, 4, nil)
	if m.TriangleCount() != 2 {
		t.Fatalf("plane has %d triangles, want 2", m.TriangleCount())
	}
	for i := 0; i < m.VertexCount(); i++ {
		if n := m.Normal(i); n.Y < 0.999 {
			t.Errorf("plane vertex %d normal %v does not face +Y", i, n)
		}
	}
}
