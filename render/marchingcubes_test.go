package render_test

import (
	"errors"
	"math"
	"testing"

	"github.com/soypat/implicit"
	"github.com/soypat/implicit/internal/d3"
	"github.com/soypat/implicit/render"
	"github.com/soypat/implicit/volume"
	"gonum.org/v1/gonum/spatial/r3"
)

func generate(t testing.TB, f implicit.Field, half float64, resolution int, threshold float64, mat *render.Material) *render.MarchingCubes {
	t.Helper()
	mc, err := render.NewMarchingCubes(resolution, mat, true, true)
	if err != nil {
		t.Fatal(err)
	}
	mc.Isolation = threshold
	g, err := volume.NewGrid(r3.Box(d3.Cube(half)), resolution)
	if err != nil {
		t.Fatal(err)
	}
	if err := volume.Generate(mc, f, g); err != nil {
		t.Fatal(err)
	}
	return mc
}

func TestTorusNormals(t *testing.T) {
	f := implicit.NewTorus(0.8, 0.3)
	mesh := generate(t, f, 1.2, 32, 0, nil).Mesh()
	if mesh.IsEmpty() {
		t.Fatal("no vertices generated")
	}
	for i := 0; i < mesh.VertexCount(); i++ {
		want := implicit.Normal(f, mesh.Vertex(i), 1e-6)
		if r3.Dot(mesh.Normal(i), want) < 0.8 {
			t.Fatalf("vertex %d normal %v deviates from field normal %v", i, mesh.Normal(i), want)
		}
	}
}

func TestSphereSurface(t *testing.T) {
	const tol = 0.02
	mc := generate(t, implicit.NewSphere(1), 1.2, 16, 0, nil)
	mesh := mc.Mesh()
	nv := mesh.VertexCount()
	if nv == 0 {
		t.Fatal("no vertices generated")
	}
	if nv%3 != 0 {
		t.Fatalf("vertex count %d not a multiple of 3", nv)
	}
	for i := 0; i < nv; i++ {
		v := mesh.Vertex(i)
		if d := math.Abs(r3.Norm(v) - 1); d > tol {
			t.Fatalf("vertex %d at %v is %g away from the unit sphere", i, v, d)
		}
		n := mesh.Normal(i)
		if math.Abs(r3.Norm(n)-1) > 1e-5 {
			t.Fatalf("vertex %d normal %v is not unit length", i, n)
		}
		if r3.Dot(n, r3.Unit(v)) < 0.9 {
			t.Fatalf("vertex %d normal %v does not point outward", i, n)
		}
	}
	for i, tri := range mesh.Triangles() {
		if r3.Dot(tri.Normal(), r3.Unit(tri.Centroid())) <= 0 {
			t.Fatalf("triangle %d is wound inward", i)
		}
	}
}

func TestKleinBottleSurface(t *testing.T) {
	mat := render.NewStandardMaterial("klein", render.HexColor(0x3498db), 0.3)
	mat.Side = render.DoubleSide
	mc := generate(t, implicit.NewKleinBottle(), 12, 64, 0, mat)
	mesh := mc.Mesh()
	if mesh.IsEmpty() {
		t.Fatal("klein bottle generated no triangles")
	}
	if !mesh.Material.DoubleSided() {
		t.Error("klein bottle material is not double sided")
	}
}

func TestSurfacesAtReferenceSettings(t *testing.T) {
	for _, test := range []struct {
		f          implicit.Surface
		half       float64
		resolution int
		threshold  float64
	}{
		{f: implicit.NewSphere(1), half: 2, resolution: 32, threshold: 0.1},
		{f: implicit.NewTorus(0.8, 0.3), half: 2, resolution: 32, threshold: 0.1},
		{f: implicit.NewHeart(), half: 2, resolution: 32, threshold: 0.1},
		{f: implicit.NewGoursat(0, 1, -0.5), half: 12, resolution: 64, threshold: 0},
	} {
		mc := generate(t, test.f, test.half, test.resolution, test.threshold, nil)
		mesh := mc.Mesh()
		if mesh.IsEmpty() {
			t.Errorf("%s: no triangles generated", test.f)
			continue
		}
		bb := mesh.Bounds()
		domain := d3.Cube(test.half)
		if !domain.Contains(bb.Min) || !domain.Contains(bb.Max) {
			t.Errorf("%s: mesh bounds %v exceed the sampled domain", test.f, bb)
		}
	}
}

func TestResetRegenerate(t *testing.T) {
	const resolution = 20
	sphere := implicit.NewSphere(0.7)
	mc := generate(t, sphere, 1, resolution, 0, nil)
	first := mc.Mesh().VertexCount()
	g, _ := volume.NewGrid(r3.Box(d3.Cube(1)), resolution)
	if err := volume.Generate(mc, sphere, g); err != nil {
		t.Fatal(err)
	}
	if got := mc.Mesh().VertexCount(); got != first {
		t.Errorf("regenerated vertex count %d, want %d", got, first)
	}
	mc.Reset()
	if !mc.Mesh().IsEmpty() {
		t.Error("mesh not empty after reset")
	}
	if mc.Cell(3, 4, 5) != 0 {
		t.Error("cells not zeroed after reset")
	}
	mc.Update()
	if !mc.Mesh().IsEmpty() {
		t.Error("zeroed field at isolation 0 produced triangles")
	}
}

func TestMeshAttributes(t *testing.T) {
	mat := render.NewStandardMaterial("attr", render.HexColor(0x3498db), 0.3)
	mc := generate(t, implicit.NewTorus(0.8, 0.3), 2, 24, 0, mat)
	mesh := mc.Mesh()
	nv := mesh.VertexCount()
	if len(mesh.Normals) != 3*nv || len(mesh.UVs) != 2*nv || len(mesh.Colors) != 3*nv {
		t.Fatalf("attribute lengths normals=%d uvs=%d colors=%d for %d vertices", len(mesh.Normals), len(mesh.UVs), len(mesh.Colors), nv)
	}
	for i, uv := range mesh.UVs {
		if uv < 0 || uv > 1 {
			t.Fatalf("uv component %d = %g outside [0,1]", i, uv)
		}
	}
	want := [3]float32{0x34 / 255., 0x98 / 255., 0xdb / 255.}
	for i := 0; i < nv; i++ {
		got := [3]float32{mesh.Colors[3*i], mesh.Colors[3*i+1], mesh.Colors[3*i+2]}
		if got != want {
			t.Fatalf("vertex %d color %v, want %v", i, got, want)
		}
	}
}

func TestMarchingCubesReadTriangles(t *testing.T) {
	mc := generate(t, implicit.NewSphere(1), 1.2, 16, 0, nil)
	model, err := render.RenderAll(mc)
	if err != nil {
		t.Fatal(err)
	}
	if len(model) != mc.Mesh().TriangleCount() {
		t.Fatalf("read %d triangles, mesh has %d", len(model), mc.Mesh().TriangleCount())
	}
	again, err := render.RenderAll(mc)
	if err != nil || len(again) != 0 {
		t.Fatalf("second read got %d triangles and error %v, want none", len(again), err)
	}
	mc.Update()
	again, _ = render.RenderAll(mc)
	if len(again) != len(model) {
		t.Errorf("read %d triangles after update, want %d", len(again), len(model))
	}
}

func TestNewMarchingCubesResolution(t *testing.T) {
	for _, res := range []int{-1, 0, 1} {
		_, err := render.NewMarchingCubes(res, nil, false, false)
		if !errors.Is(err, render.ErrResolution) {
			t.Errorf("resolution %d: got error %v, want ErrResolution", res, err)
		}
	}
	mc, err := render.NewMarchingCubes(2, nil, false, false)
	if err != nil {
		t.Fatal(err)
	}
	if mc.Resolution() != 2 {
		t.Errorf("resolution %d, want 2", mc.Resolution())
	}
	if mc.Domain() != r3.Box(d3.Cube(1)) {
		t.Errorf("default domain %v, want the ±1 cube", mc.Domain())
	}
}

func TestDispose(t *testing.T) {
	mat := render.NewStandardMaterial("dispose", render.HexColor(0xff0000), 0.5)
	mc := generate(t, implicit.NewSphere(1), 1.2, 8, 0, mat)
	mesh := mc.Mesh()
	mesh.Dispose()
	mesh.Dispose()
	mat.Dispose()
	mat.Dispose()
	if !mesh.Disposed() || !mesh.IsEmpty() || mesh.Positions != nil {
		t.Error("mesh buffers not released")
	}
	if !mat.Disposed() {
		t.Error("material not disposed")
	}
}
