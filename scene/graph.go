// Package scene hosts interchangeable 3D scenes. One scene is active at a
// time and draws into a render Graph shared by all scenes.
package scene

import (
	"image/color"

	"github.com/soypat/implicit/render"
	"gonum.org/v1/gonum/spatial/r3"
)

// LightKind distinguishes light sources.
type LightKind uint8

const (
	AmbientLight LightKind = iota
	DirectionalLight
)

func (k LightKind) String() string {
	switch k {
	case AmbientLight:
		return "ambient"
	case DirectionalLight:
		return "directional"
	}
	return "unknown"
}

// Light illuminates a scene. Position is only meaningful for directional lights,
// which shine from Position toward the origin.
type Light struct {
	Kind      LightKind
	Color     color.RGBA
	Intensity float64
	Position  r3.Vec
}

// Node is an object in the render graph. Exactly one of Mesh and Light is set.
type Node struct {
	Name     string
	Mesh     *render.Mesh
	Light    *Light
	Position r3.Vec
}

// NewMeshNode returns a node drawing m.
func NewMeshNode(name string, m *render.Mesh) *Node {
	return &Node{Name: name, Mesh: m}
}

// StandardLights returns the ambient and directional light pair used by the
// bundled scenes.
func StandardLights() []*Node {
	return []*Node{
		{Name: "ambient", Light: &Light{
			Kind:      AmbientLight,
			Color:     render.HexColor(0x404040),
			Intensity: 0.6,
		}},
		{Name: "directional", Light: &Light{
			Kind:      DirectionalLight,
			Color:     render.HexColor(0xffffff),
			Intensity: 0.8,
			Position:  r3.Vec{X: 5, Y: 5, Z: 5},
		}},
	}
}

// Graph is an ordered set of nodes. Scenes add and remove their nodes but do not own the graph.
type Graph struct {
	nodes []*Node
}

// Add appends nodes not already in the graph.
func (g *Graph) Add(nodes ...*Node) {
	for _, n := range nodes {
		if n != nil && !g.Contains(n) {
			g.nodes = append(g.nodes, n)
		}
	}
}

// Remove removes n from the graph and reports whether it was present.
func (g *Graph) Remove(n *Node) bool {
	for i := range g.nodes {
		if g.nodes[i] == n {
			g.nodes = append(g.nodes[:i], g.nodes[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether n is in the graph.
func (g *Graph) Contains(n *Node) bool {
	for _, node := range g.nodes {
		if node == n {
			return true
		}
	}
	return false
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int { return len(g.nodes) }

// Nodes returns a copy of the graph's nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	return append([]*Node(nil), g.nodes...)
}

// Meshes returns the meshes of all mesh nodes.
func (g *Graph) Meshes() []*render.Mesh {
	var meshes []*render.Mesh
	for _, n := range g.nodes {
		if n.Mesh != nil {
			meshes = append(meshes, n.Mesh)
		}
	}
	return meshes
}

// Clear removes every node.
func (g *Graph) Clear() { g.nodes = g.nodes[:0] }

// Camera is a perspective camera.
type Camera struct {
	Position r3.Vec `json:"position"`
	Target   r3.Vec `json:"target"`
	// Vertical field of view in degrees.
	Fovy float64 `json:"fovy"`
	Near float64 `json:"near"`
	Far  float64 `json:"far"`
}

// DefaultCamera is at (0,2,5) looking at the origin.
func DefaultCamera() Camera {
	return Camera{
		Position: r3.Vec{Y: 2, Z: 5},
		Fovy:     75,
		Near:     0.1,
		Far:      1000,
	}
}
