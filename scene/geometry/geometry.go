// Package geometry implements the geometry showcase scene: a box, sphere,
// cylinder and torus modelled with sdfx and meshed by its marching cubes
// renderer.
package geometry

import (
	"fmt"
	"math"

	sdfrender "github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/sirupsen/logrus"
	"github.com/soypat/implicit/render"
	"github.com/soypat/implicit/scene"
	"gonum.org/v1/gonum/spatial/r3"
)

// ID is the registry ID of the scene.
const ID = "geometry"

// DefaultMeshCells is the number of marching cubes cells along the longest
// side of each solid's bounding box.
const DefaultMeshCells = 48

// Solid is a named sdfx solid.
type Solid struct {
	Name string
	SDF  sdf.SDF3
}

// Solids returns the showcase solids in selection order. The cylinder's axis
// is Y and the torus lies in the XY plane.
func Solids() ([]Solid, error) {
	box, err := sdf.Box3D(v3.Vec{X: 1, Y: 1, Z: 1}, 0)
	if err != nil {
		return nil, fmt.Errorf("box: %w", err)
	}
	sphere, err := sdf.Sphere3D(1)
	if err != nil {
		return nil, fmt.Errorf("sphere: %w", err)
	}
	cyl, err := sdf.Cylinder3D(2, 0.5, 0)
	if err != nil {
		return nil, fmt.Errorf("cylinder: %w", err)
	}
	cyl = sdf.Transform3D(cyl, sdf.RotateX(math.Pi/2))
	tor, err := Torus3D(1.5, 0.4)
	if err != nil {
		return nil, fmt.Errorf("torus: %w", err)
	}
	return []Solid{
		{Name: "Box", SDF: box},
		{Name: "Sphere", SDF: sphere},
		{Name: "Cylinder", SDF: cyl},
		{Name: "Torus", SDF: tor},
	}, nil
}

// torus is the exact distance field of a torus around the Z axis.
type torus struct {
	major, minor float64
	bb           sdf.Box3
}

// Torus3D returns a torus centered at the origin around the Z axis.
func Torus3D(major, minor float64) (sdf.SDF3, error) {
	if minor <= 0 || major < minor {
		return nil, fmt.Errorf("invalid torus radii %g, %g", major, minor)
	}
	r := major + minor
	return &torus{
		major: major,
		minor: minor,
		bb: sdf.Box3{
			Min: v3.Vec{X: -r, Y: -r, Z: -minor},
			Max: v3.Vec{X: r, Y: r, Z: minor},
		},
	}, nil
}

func (t *torus) Evaluate(p v3.Vec) float64 {
	q := math.Hypot(p.X, p.Y) - t.major
	return math.Hypot(q, p.Z) - t.minor
}

func (t *torus) BoundingBox() sdf.Box3 { return t.bb }

// Mesh tessellates s with sdfx's uniform marching cubes renderer.
func Mesh(s sdf.SDF3, meshCells int, mat *render.Material) (*render.Mesh, error) {
	if meshCells < 2 {
		return nil, fmt.Errorf("%d mesh cells: %w", meshCells, render.ErrResolution)
	}
	tris := sdfrender.ToTriangles(s, sdfrender.NewMarchingCubesUniform(meshCells))
	out := make([]render.Triangle3, 0, len(tris))
	for _, tri := range tris {
		var t render.Triangle3
		for j := range t.V {
			t.V[j] = r3.Vec{X: tri[j].X, Y: tri[j].Y, Z: tri[j].Z}
		}
		if t.Degenerate(0) {
			continue
		}
		out = append(out, t)
	}
	return render.NewMeshFromTriangles(out, mat), nil
}

// Options configure the scene.
type Options struct {
	// MeshCells defaults to DefaultMeshCells.
	MeshCells int
}

// Scene is the geometry showcase scene.
type Scene struct {
	*scene.SurfaceDriver
	material *render.Material
}

// Material returns the material shared by every solid.
func (s *Scene) Material() *render.Material { return s.material }

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

// Setup adds lights and the solids to env's graph and shows the box.
func Setup(env scene.Env, opts Options) (*Scene, error) {
	if opts.MeshCells == 0 {
		opts.MeshCells = DefaultMeshCells
	}
	if env.Log == nil {
		env.Log = logrus.StandardLogger()
	}
	solids, err := Solids()
	if err != nil {
		return nil, err
	}
	mat := render.NewStandardMaterial("geometry", render.HexColor(0x3498db), 0.3)
	surfaces := make([]scene.DriverSurface, len(solids))
	for i, solid := range solids {
		m, err := Mesh(solid.SDF, opts.MeshCells, mat)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", solid.Name, err)
		}
		env.Log.WithFields(logrus.Fields{"solid": solid.Name, "triangles": m.TriangleCount()}).Debug("meshed solid")
		surfaces[i] = scene.DriverSurface{Name: solid.Name, Mesh: m}
	}
	env.Graph.Add(scene.StandardLights()...)
	s := &Scene{
		SurfaceDriver: scene.NewSurfaceDriver(env.Graph, env.Log, surfaces),
		material:      mat,
	}
	s.ShowSurface(0)
	return s, nil
}

// Info documents the scene.
func Info() scene.Info {
	return scene.Info{
		ID:              ID,
		Name:            "Geometry showcase",
		Description:     "Basic solid primitives",
		LongDescription: "Shows basic solids: a box, a sphere, a cylinder and a torus, each modelled as a signed distance field and tessellated with marching cubes.",
		Category:        "Geometry",
		Order:           2,
		CodeExample:     codeExample,
		Controls: []scene.Control{
			{Key: "1-4", Action: "Switch solid"},
			{Key: "G", Action: "Toggle wireframe"},
		},
		Notes: []string{
			"Solids are signed distance fields",
			"Mesh detail is set by the marching cubes cell count",
			"All solids share one material",
			"Distance fields combine with boolean operations to build complex shapes",
		},
	}
}

const codeExample = `box, _ := sdf.Box3D(v3.Vec{X: 1, Y: 1, Z: 1}, 0)
sphere, _ := sdf.Sphere3D(1)
cylinder, _ := sdf.Cylinder3D(2, 0.5, 0)

tris := render.ToTriangles(sphere, render.NewMarchingCubesUniform(48))`
