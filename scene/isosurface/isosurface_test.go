package isosurface

import (
	"errors"
	"math"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/soypat/implicit/render"
	"github.com/soypat/implicit/scene"
	"github.com/soypat/implicit/volume"
)

// coarse keeps scene tests fast.
func coarse(res int) map[string]Override {
	o := make(map[string]Override)
	for _, def := range Definitions() {
		o[def.ID] = Override{Resolution: res}
	}
	return o
}

func newEnv(t *testing.T) (scene.Env, *scene.Graph, *test.Hook) {
	t.Helper()
	g := new(scene.Graph)
	cam := scene.DefaultCamera()
	logger, hook := test.NewNullLogger()
	return scene.Env{Graph: g, Camera: &cam, Log: logger}, g, hook
}

func TestDefinitions(t *testing.T) {
	defs := Definitions()
	wantIDs := []string{"sphere", "torus", "heart", "goursat", "klein"}
	if len(defs) != len(wantIDs) {
		t.Fatalf("got %d definitions, want %d", len(defs), len(wantIDs))
	}
	for i, def := range defs {
		if def.ID != wantIDs[i] {
			t.Errorf("definition %d: got ID %q, want %q", i, def.ID, wantIDs[i])
		}
		if def.DoubleSided != (def.ID == "klein") {
			t.Errorf("%s: DoubleSided=%v", def.ID, def.DoubleSided)
		}
		if _, err := def.Grid(); err != nil {
			t.Errorf("%s: %s", def.ID, err)
		}
	}
	small, large := defs[0], defs[3]
	if small.Resolution != 32 || small.Threshold != 0.1 || small.Box.Max.X != 2 {
		t.Errorf("unexpected sphere definition %+v", small)
	}
	if large.Resolution != 64 || large.Threshold != 0 || large.Box.Min.Z != -12 {
		t.Errorf("unexpected goursat definition %+v", large)
	}
}

func TestGenerateSphere(t *testing.T) {
	def, ok := Lookup(Definitions(), "sphere")
	if !ok {
		t.Fatal("sphere not found")
	}
	mesh, err := Generate(def, nil)
	if err != nil {
		t.Fatal(err)
	}
	if mesh.IsEmpty() {
		t.Fatal("empty sphere mesh")
	}
	// Level set of x²+y²+z²-1 at 0.1.
	want := math.Sqrt(1.1)
	tol := 2 * def.Box.Max.X / float64(def.Resolution)
	for i := 0; i < mesh.VertexCount(); i++ {
		v := mesh.Vertex(i)
		r := math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
		if math.Abs(r-want) > tol {
			t.Fatalf("vertex %d at radius %g, want %g±%g", i, r, want, tol)
		}
	}
	if len(mesh.UVs) != 2*mesh.VertexCount() || len(mesh.Colors) != 3*mesh.VertexCount() {
		t.Error("surface mesh missing uv or color attributes")
	}
}

func TestGenerateAll(t *testing.T) {
	for _, def := range Definitions() {
		mesh, err := Generate(def, render.NewStandardMaterial(def.ID, render.HexColor(surfaceColor), surfaceRoughness))
		if err != nil {
			t.Fatal(err)
		}
		if mesh.IsEmpty() {
			t.Errorf("%s: empty mesh", def.ID)
		}
		if mesh.VertexCount()%3 != 0 {
			t.Errorf("%s: vertex count %d not a multiple of 3", def.ID, mesh.VertexCount())
		}
	}
}

func TestGenerateBadResolution(t *testing.T) {
	def := Definitions()[0]
	def.Resolution = 1
	_, err := Generate(def, nil)
	if !errors.Is(err, render.ErrResolution) && !errors.Is(err, volume.ErrResolution) {
		t.Errorf("expected resolution error, got %v", err)
	}
}

func TestApply(t *testing.T) {
	th := 0.5
	defs, err := Apply(Definitions(), map[string]Override{
		"torus": {Resolution: 16},
		"heart": {Threshold: &th},
	})
	if err != nil {
		t.Fatal(err)
	}
	torus, _ := Lookup(defs, "torus")
	heart, _ := Lookup(defs, "heart")
	if torus.Resolution != 16 || torus.Threshold != 0.1 {
		t.Errorf("torus override not applied: %+v", torus)
	}
	if heart.Resolution != 32 || heart.Threshold != 0.5 {
		t.Errorf("heart override not applied: %+v", heart)
	}
	if orig, _ := Lookup(Definitions(), "torus"); orig.Resolution != 32 {
		t.Error("Apply modified the reference definitions")
	}
	_, err = Apply(Definitions(), map[string]Override{"cube": {Resolution: 8}})
	if err == nil {
		t.Error("expected error for unknown surface override")
	}
}

func TestSetupEager(t *testing.T) {
	env, g, hook := newEnv(t)
	s, err := Setup(env, Options{Overrides: coarse(12)})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Destroy()
	for i := 0; i < s.Len(); i++ {
		if s.Mesh(i) == nil {
			t.Errorf("surface %d not generated at setup", i)
		}
	}
	st := s.Stats()
	if st.SurfaceName != "Sphere" || st.VertexCount == 0 || st.Wireframe {
		t.Errorf("unexpected initial stats %+v", st)
	}
	// Two lights and the sphere.
	if g.Len() != 3 || len(g.Meshes()) != 1 {
		t.Errorf("graph has %d nodes and %d meshes", g.Len(), len(g.Meshes()))
	}
	if e := hook.LastEntry(); e == nil || e.Data["surface"] != "Sphere" {
		t.Errorf("expected showing surface log entry, got %v", e)
	}
	klein := s.Mesh(4)
	if !klein.Material.DoubleSided() {
		t.Error("klein bottle must be double sided")
	}
	if s.Mesh(0).Material != s.Mesh(3).Material {
		t.Error("orientable surfaces should share a material")
	}
}

func TestSetupLazy(t *testing.T) {
	env, g, _ := newEnv(t)
	s, err := Setup(env, Options{Lazy: true, Overrides: coarse(12)})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Destroy()
	if s.Mesh(0) == nil {
		t.Fatal("first surface should be generated when shown")
	}
	for i := 1; i < s.Len(); i++ {
		if s.Mesh(i) != nil {
			t.Errorf("surface %d generated before selection", i)
		}
	}
	s.OnKeyDown(scene.KeyEventFor("g"))
	s.OnKeyDown(scene.KeyEventFor("5"))
	klein := s.Mesh(4)
	if klein == nil {
		t.Fatal("klein bottle not generated on selection")
	}
	if !klein.Material.Wireframe {
		t.Error("lazily generated surface should follow wireframe mode")
	}
	if got := g.Meshes(); len(got) != 1 || got[0] != klein {
		t.Error("graph should contain only the klein bottle")
	}
}

func TestSetupFailureDisposes(t *testing.T) {
	env, _, _ := newEnv(t)
	defs, err := Apply(Definitions(), coarse(8))
	if err != nil {
		t.Fatal(err)
	}
	errBroken := errors.New("broken surface")
	var generated []*render.Mesh
	gen := func(def Definition, mat *render.Material) (*render.Mesh, error) {
		if def.ID == "heart" {
			return nil, errBroken
		}
		m, err := Generate(def, mat)
		if err == nil {
			generated = append(generated, m)
		}
		return m, err
	}
	_, err = setup(env, defs, false, gen)
	if !errors.Is(err, errBroken) {
		t.Fatalf("got error %v, want %v", err, errBroken)
	}
	if len(generated) != 2 {
		t.Fatalf("generated %d surfaces before failing, want 2", len(generated))
	}
	for i, m := range generated {
		if !m.Disposed() || !m.Material.Disposed() {
			t.Errorf("surface %d not disposed after failed setup", i)
		}
	}
}

func TestSceneKeys(t *testing.T) {
	env, g, _ := newEnv(t)
	s, err := Setup(env, Options{Overrides: coarse(10)})
	if err != nil {
		t.Fatal(err)
	}
	for key, want := range map[string]string{"2": "Torus", "3": "Heart surface", "4": "Goursat surface", "1": "Sphere"} {
		s.OnKeyDown(scene.KeyEventFor(key))
		if got := s.Stats().SurfaceName; got != want {
			t.Errorf("key %s: showing %q, want %q", key, got, want)
		}
	}
	before := s.State()
	s.OnKeyDown(scene.KeyEventFor("6"))
	if s.State() != before {
		t.Error("key 6 should not change the selection")
	}
	mesh := s.ActiveMesh()
	s.Update()
	if mesh.Rotation.X != 0.01 || mesh.Rotation.Y != 0.005 {
		t.Errorf("unexpected rotation %v", mesh.Rotation)
	}
	s.Destroy()
	if len(g.Meshes()) != 0 {
		t.Error("destroy should remove the surface from the graph")
	}
	for i := 0; i < s.Len(); i++ {
		if !s.Mesh(i).Disposed() {
			t.Errorf("surface %d not disposed", i)
		}
	}
}

func TestEntry(t *testing.T) {
	e := Entry(Options{Overrides: map[string]Override{"cube": {}}})
	if e.Info.ID != ID || e.Info.Order != 3 {
		t.Errorf("unexpected info %+v", e.Info)
	}
	env, _, _ := newEnv(t)
	s, err := e.Setup(env)
	if err == nil || s != nil {
		t.Errorf("expected setup error and nil scene, got %v, %v", s, err)
	}
	r, err := scene.NewRegistry(Entry(Options{Overrides: coarse(8)}))
	if err != nil {
		t.Fatal(err)
	}
	h := scene.NewHost(r, nil)
	defer h.Close()
	if err := h.Load(ID); err != nil {
		t.Fatal(err)
	}
	st, ok := h.Stats()
	if !ok || st.SurfaceName != "Sphere" {
		t.Errorf("unexpected host stats %+v, %v", st, ok)
	}
}
