// Package isosurface implements the implicit surface scene: algebraic surfaces
// sampled over a grid and meshed with marching cubes, selected with keys 1 to 5.
package isosurface

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/soypat/implicit"
	"github.com/soypat/implicit/internal/d3"
	"github.com/soypat/implicit/render"
	"github.com/soypat/implicit/scene"
	"github.com/soypat/implicit/volume"
	"gonum.org/v1/gonum/spatial/r3"
)

// ID is the registry ID of the scene.
const ID = "implicit-surfaces"

const (
	surfaceColor     = 0x3498db
	surfaceRoughness = 0.3
)

// Definition is a recipe for one surface mesh.
type Definition struct {
	ID         string
	Name       string
	Surface    implicit.Surface
	Box        r3.Box
	Threshold  float64
	Resolution int
	// DoubleSided surfaces are drawn with a DoubleSide material. Used for
	// non-orientable surfaces.
	DoubleSided bool
}

// Grid returns the sampling grid of the definition.
func (def Definition) Grid() (volume.Grid, error) {
	return volume.NewGrid(def.Box, def.Resolution)
}

// Definitions returns the surfaces of the scene in selection order.
func Definitions() []Definition {
	small := r3.Box(d3.Cube(2))
	large := r3.Box(d3.Cube(12))
	return []Definition{
		{ID: "sphere", Name: "Sphere", Surface: implicit.NewSphere(1), Box: small, Threshold: 0.1, Resolution: 32},
		{ID: "torus", Name: "Torus", Surface: implicit.NewTorus(0.8, 0.3), Box: small, Threshold: 0.1, Resolution: 32},
		{ID: "heart", Name: "Heart surface", Surface: implicit.NewHeart(), Box: small, Threshold: 0.1, Resolution: 32},
		{ID: "goursat", Name: "Goursat surface", Surface: implicit.NewGoursat(0, 1, -0.5), Box: large, Threshold: 0, Resolution: 64},
		{ID: "klein", Name: "Klein bottle", Surface: implicit.NewKleinBottle(), Box: large, Threshold: 0, Resolution: 64, DoubleSided: true},
	}
}

// Lookup returns the definition with the given ID.
func Lookup(defs []Definition, id string) (Definition, bool) {
	for _, def := range defs {
		if def.ID == id {
			return def, true
		}
	}
	return Definition{}, false
}

// Generate samples the definition's surface and extracts its mesh.
func Generate(def Definition, mat *render.Material) (*render.Mesh, error) {
	mc, err := render.NewMarchingCubes(def.Resolution, mat, true, true)
	if err != nil {
		return nil, fmt.Errorf("surface %s: %w", def.ID, err)
	}
	mc.Isolation = def.Threshold
	g, err := def.Grid()
	if err != nil {
		return nil, fmt.Errorf("surface %s: %w", def.ID, err)
	}
	if err = volume.Generate(mc, def.Surface, g); err != nil {
		return nil, fmt.Errorf("surface %s: %w", def.ID, err)
	}
	return mc.Mesh(), nil
}

// Override replaces definition parameters. Zero Resolution and nil Threshold
// keep the definition's value.
type Override struct {
	Resolution int
	Threshold  *float64
}

// Options configure the scene.
type Options struct {
	// Lazy defers generating a surface until it is first selected.
	Lazy bool
	// Overrides by definition ID.
	Overrides map[string]Override
}

// Apply returns defs with overrides applied. Overrides for unknown IDs return an error.
func Apply(defs []Definition, overrides map[string]Override) ([]Definition, error) {
	out := append([]Definition(nil), defs...)
	for id, o := range overrides {
		found := false
		for i := range out {
			if out[i].ID != id {
				continue
			}
			found = true
			if o.Resolution != 0 {
				out[i].Resolution = o.Resolution
			}
			if o.Threshold != nil {
				out[i].Threshold = *o.Threshold
			}
		}
		if !found {
			return nil, fmt.Errorf("override for unknown surface %q", id)
		}
	}
	return out, nil
}

// Scene is the implicit surface scene.
type Scene struct {
	*scene.SurfaceDriver
	defs []Definition
}

// Definitions returns the definitions the scene was built from.
func (s *Scene) Definitions() []Definition { return s.defs }

// Entry returns the registry entry of the scene.
func Entry(opts Options) scene.Entry {
	return scene.Entry{
		Info: Info(),
		Setup: func(env scene.Env) (scene.Scene, error) {
			s, err := Setup(env, opts)
			if err != nil {
				return nil, err
			}
			return s, nil
		},
	}
}

// Setup adds lights and the surfaces to env's graph and shows the first surface.
// All surfaces are generated before Setup returns unless opts.Lazy is set.
func Setup(env scene.Env, opts Options) (*Scene, error) {
	defs, err := Apply(Definitions(), opts.Overrides)
	if err != nil {
		return nil, err
	}
	return setup(env, defs, opts.Lazy, Generate)
}

// setup builds the scene over defs using gen to extract each surface.
// When eager generation fails the meshes generated so far are disposed.
func setup(env scene.Env, defs []Definition, lazy bool, gen func(Definition, *render.Material) (*render.Mesh, error)) (*Scene, error) {
	if env.Log == nil {
		env.Log = logrus.StandardLogger()
	}
	env.Graph.Add(scene.StandardLights()...)
	front := render.NewStandardMaterial("implicit", render.HexColor(surfaceColor), surfaceRoughness)
	double := render.NewStandardMaterial("implicit-double", render.HexColor(surfaceColor), surfaceRoughness)
	double.Side = render.DoubleSide

	surfaces := make([]scene.DriverSurface, len(defs))
	for i := range defs {
		def := defs[i]
		mat := front
		if def.DoubleSided {
			mat = double
		}
		build := func() (*render.Mesh, error) { return gen(def, mat) }
		surfaces[i] = scene.DriverSurface{Name: def.Name, Build: build}
		if lazy {
			continue
		}
		mesh, err := build()
		if err != nil {
			for _, prev := range surfaces[:i] {
				prev.Mesh.Dispose()
			}
			front.Dispose()
			double.Dispose()
			return nil, err
		}
		surfaces[i].Mesh = mesh
		env.Log.WithField("surface", def.ID).WithField("vertices", mesh.VertexCount()).Debug("generated surface")
	}
	s := &Scene{
		SurfaceDriver: scene.NewSurfaceDriver(env.Graph, env.Log, surfaces),
		defs:          defs,
	}
	s.ShowSurface(0)
	return s, nil
}

// Info documents the scene.
func Info() scene.Info {
	return scene.Info{
		ID:              ID,
		Name:            "Implicit surface generator",
		Description:     "Surfaces defined by implicit functions",
		LongDescription: "Builds surfaces from implicit functions by sampling the function over a 3D grid and extracting the level set with marching cubes.",
		Category:        "Geometry",
		Order:           3,
		CodeExample:     codeExample,
		Controls: []scene.Control{
			{Key: "1-5", Action: "Switch surface"},
			{Key: "G", Action: "Toggle wireframe"},
		},
		Notes: []string{
			"Surfaces are the zero set of a scalar field sampled on a regular grid",
			"Marching cubes produces a triangle mesh from the sampled grid",
			"Grid resolution and threshold control surface detail",
			"The Klein bottle is non-orientable and is drawn double sided",
		},
	}
}

const codeExample = `// Sphere: x² + y² + z² - r² = 0
func Sphere(x, y, z, r float64) float64 {
	return x*x + y*y + z*z - r*r
}

// Torus: (√(x² + y²) - R)² + z² - r² = 0
func Torus(x, y, z, R, r float64) float64 {
	d := math.Hypot(x, y) - R
	return d*d + z*z - r*r
}

// Heart: (x² + 9y²/4 + z² - 1)³ - x²z³ - 9y²z³/80 = 0
func Heart(x, y, z float64) float64 {
	x2, y2, z2 := x*x, y*y, z*z
	t := x2 + 2.25*y2 + z2 - 1
	return t*t*t - x2*z2*z - 0.1125*y2*z2*z
}

// Goursat: x⁴ + y⁴ + z⁴ - a(x² + y² + z²)² - b(x² + y² + z²) + c = 0
func Goursat(x, y, z, a, b, c float64) float64 {
	r2 := x*x + y*y + z*z
	return x*x*x*x + y*y*y*y + z*z*z*z - a*r2*r2 - b*r2 + c
}

// Klein bottle:
// (r² + 2y - 1)[(r² - 2y - 1)² - 8z²] + 16xz(r² - 2y - 1) = 0
func KleinBottle(x, y, z float64) float64 {
	r2 := x*x + y*y + z*z
	t := r2 - 2*y - 1
	return (r2+2*y-1)*(t*t-8*z*z) + 16*x*z*t
}`
