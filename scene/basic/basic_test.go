package basic

import (
	"testing"

	"github.com/soypat/implicit/scene"
)

func newScene(t *testing.T) (*Scene, *scene.Graph, *scene.Camera) {
	t.Helper()
	g := new(scene.Graph)
	cam := scene.DefaultCamera()
	return Setup(scene.Env{Graph: g, Camera: &cam}), g, &cam
}

func TestSetup(t *testing.T) {
	s, g, _ := newScene(t)
	if g.Len() != 4 {
		t.Errorf("graph has %d nodes, want lights, cube and floor", g.Len())
	}
	if n := s.Cube().TriangleCount(); n != 12 {
		t.Errorf("cube has %d triangles, want 12", n)
	}
	if n := s.Floor().TriangleCount(); n != 2 {
		t.Errorf("floor has %d triangles, want 2", n)
	}
	if m := s.Cube().Material; m.Roughness != 0.4 || m.Metalness != 0.6 {
		t.Errorf("unexpected cube material %+v", m)
	}
	if m := s.Floor().Material; m.Roughness != 0.8 || m.Metalness != 0.2 {
		t.Errorf("unexpected floor material %+v", m)
	}
}

func TestCameraKeys(t *testing.T) {
	s, _, cam := newScene(t)
	start := cam.Position
	for _, key := range []string{"w", "w", "a", "d", "d", "d", "s"} {
		s.OnKeyDown(scene.KeyEventFor(key))
	}
	s.OnKeyDown(scene.KeyEventFor("g"))
	s.OnKeyDown(scene.KeyEventFor("W"))
	dx := cam.Position.X - start.X
	dz := cam.Position.Z - start.Z
	const tol = 1e-9
	if dx < 2*MoveStep-tol || dx > 2*MoveStep+tol {
		t.Errorf("camera moved %g along X, want %g", dx, 2*MoveStep)
	}
	if dz > -2*MoveStep+tol || dz < -2*MoveStep-tol {
		t.Errorf("camera moved %g along Z, want %g", dz, -2*MoveStep)
	}
	if cam.Position.Y != start.Y {
		t.Error("camera height changed")
	}
}

func TestUpdateDestroy(t *testing.T) {
	s, _, _ := newScene(t)
	for i := 0; i < 100; i++ {
		s.Update()
	}
	rot := s.Cube().Rotation
	if rot.X < 0.999 || rot.X > 1.001 || rot.Y < 0.499 || rot.Y > 0.501 {
		t.Errorf("unexpected rotation after 100 frames: %v", rot)
	}
	if s.Stats().VertexCount != 36 {
		t.Errorf("unexpected stats %+v", s.Stats())
	}
	s.Destroy()
	if !s.Cube().Disposed() || !s.Cube().Material.Disposed() {
		t.Error("cube not disposed")
	}
	if s.Floor().Disposed() {
		t.Error("floor should not be disposed by the scene")
	}
}

func TestHostResetsCamera(t *testing.T) {
	r, err := scene.NewRegistry(Entry())
	if err != nil {
		t.Fatal(err)
	}
	h := scene.NewHost(r, nil)
	defer h.Close()
	if err := h.Load(ID); err != nil {
		t.Fatal(err)
	}
	h.KeyDown(scene.KeyEventFor("a"))
	if h.Camera().Position.X != -MoveStep {
		t.Fatalf("camera at %v after A", h.Camera().Position)
	}
	if err := h.Load(ID); err != nil {
		t.Fatal(err)
	}
	if h.Camera() != scene.DefaultCamera() {
		t.Errorf("camera not reset on load: %+v", h.Camera())
	}
}
