// Package basic implements the introductory scene: a rotating cube above a
// floor with a camera moved by the WASD keys.
package basic

import (
	"github.com/soypat/implicit/render"
	"github.com/soypat/implicit/scene"
	"gonum.org/v1/gonum/spatial/r3"
)

// ID is the registry ID of the scene.
const ID = "basic"

// MoveStep is the camera displacement per key press.
const MoveStep = 0.1

// Scene is the basic scene.
type Scene struct {
	camera *scene.Camera
	cube   *render.Mesh
	floor  *render.Mesh
}

// Entry returns the registry entry of the scene.
func Entry() scene.Entry {
	return scene.Entry{
		Info: Info(),
		Setup: func(env scene.Env) (scene.Scene, error) {
			return Setup(env), nil
		},
	}
}

// Setup adds lights, the cube and the floor to env's graph.
func Setup(env scene.Env) *Scene {
	cubeMat := render.NewStandardMaterial("cube", render.HexColor(0x00ff00), 0.4)
	cubeMat.Metalness = 0.6
	floorMat := render.NewStandardMaterial("floor", render.HexColor(0x888888), 0.8)
	floorMat.Metalness = 0.2
	s := &Scene{
		camera: env.Camera,
		cube:   render.NewBoxMesh(r3.Vec{X: 1, Y: 1, Z: 1}, cubeMat),
		floor:  render.NewPlaneMesh(10, 10, floorMat),
	}
	env.Graph.Add(scene.StandardLights()...)
	env.Graph.Add(scene.NewMeshNode("cube", s.cube), scene.NewMeshNode("floor", s.floor))
	return s
}

// Cube returns the rotating cube.
func (s *Scene) Cube() *render.Mesh { return s.cube }

// Floor returns the floor plane.
func (s *Scene) Floor() *render.Mesh { return s.floor }

// ActiveMesh returns the cube.
func (s *Scene) ActiveMesh() *render.Mesh { return s.cube }

// Stats reports the cube.
func (s *Scene) Stats() scene.Stats {
	return scene.Stats{SurfaceName: "Cube", VertexCount: s.cube.VertexCount(), Wireframe: s.cube.Material.Wireframe}
}

// Update rotates the cube.
func (s *Scene) Update() {
	s.cube.Rotation.X += 0.01
	s.cube.Rotation.Y += 0.005
}

// OnKeyDown moves the camera with W, A, S and D. Keys are matched by
// physical key code so the layout and shift state do not matter.
func (s *Scene) OnKeyDown(ev scene.KeyEvent) {
	if s.camera == nil {
		return
	}
	switch ev.Code {
	case "KeyW":
		s.camera.Position.Z -= MoveStep
	case "KeyS":
		s.camera.Position.Z += MoveStep
	case "KeyA":
		s.camera.Position.X -= MoveStep
	case "KeyD":
		s.camera.Position.X += MoveStep
	}
}

// Destroy disposes the cube. The floor is released with the graph.
func (s *Scene) Destroy() {
	s.cube.Dispose()
	s.cube.Material.Dispose()
}

// Info documents the scene.
func Info() scene.Info {
	return scene.Info{
		ID:              ID,
		Name:            "Basic scene",
		Description:     "Core rendering concepts",
		LongDescription: "Shows the core components of a 3D application: the scene graph, the camera, the renderer, geometry and materials.",
		Category:        "Basics",
		Order:           1,
		CodeExample:     codeExample,
		Controls: []scene.Control{
			{Key: "W/A/S/D", Action: "Move camera"},
		},
		Notes: []string{
			"Coordinates are right handed with Y up",
			"The scene graph holds every object to draw",
			"The camera defines the point of view",
			"The renderer draws the 3D scene to a 2D image",
		},
	}
}

const codeExample = `mat := render.NewStandardMaterial("cube", render.HexColor(0x00ff00), 0.4)
cube := render.NewBoxMesh(r3.Vec{X: 1, Y: 1, Z: 1}, mat)
g.Add(scene.NewMeshNode("cube", cube))

for range ticker.C {
	cube.Rotation.X += 0.01
	cube.Rotation.Y += 0.005
}`
