package scene

import (
	"github.com/sirupsen/logrus"
	"github.com/soypat/implicit/render"
)

// State is the selection state of a SurfaceDriver. Current is -1 when
// no surface is shown.
type State struct {
	Current   int  `json:"current"`
	Wireframe bool `json:"wireframe"`
}

// Show returns the state with surface i of n selected. If i is out of range
// s is returned unchanged and ok is false.
func Show(s State, i, n int) (next State, ok bool) {
	if i < 0 || i >= n {
		return s, false
	}
	s.Current = i
	return s, true
}

// Toggle returns s with wireframe mode flipped.
func Toggle(s State) State {
	s.Wireframe = !s.Wireframe
	return s
}

// DriverSurface is a surface a SurfaceDriver can show. Either Mesh is set or
// Build generates it the first time the surface is shown.
type DriverSurface struct {
	Name  string
	Mesh  *render.Mesh
	Build func() (*render.Mesh, error)

	node *Node
}

// SurfaceDriver shows one of a fixed list of surfaces at a time in a Graph.
// It implements Scene, StatsProvider and MeshProvider.
type SurfaceDriver struct {
	graph    *Graph
	log      logrus.FieldLogger
	surfaces []DriverSurface
	state    State
	torn     bool
}

// NewSurfaceDriver returns a driver showing no surface.
func NewSurfaceDriver(g *Graph, log logrus.FieldLogger, surfaces []DriverSurface) *SurfaceDriver {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &SurfaceDriver{
		graph:    g,
		log:      log,
		surfaces: surfaces,
		state:    State{Current: -1},
	}
}

// State returns the driver state.
func (d *SurfaceDriver) State() State { return d.state }

// Len returns the number of surfaces.
func (d *SurfaceDriver) Len() int { return len(d.surfaces) }

// Names returns the surface names in selection order.
func (d *SurfaceDriver) Names() []string {
	names := make([]string, len(d.surfaces))
	for i := range d.surfaces {
		names[i] = d.surfaces[i].Name
	}
	return names
}

// Mesh returns the mesh of surface i, or nil if it was not generated yet.
func (d *SurfaceDriver) Mesh(i int) *render.Mesh {
	if i < 0 || i >= len(d.surfaces) {
		return nil
	}
	return d.surfaces[i].Mesh
}

// ActiveMesh returns the mesh of the shown surface.
func (d *SurfaceDriver) ActiveMesh() *render.Mesh { return d.Mesh(d.state.Current) }

// ShowSurface replaces the shown surface with surface i. Meshes removed from
// the graph are kept for later selection. It is a no-op when i is out of range
// and reports whether surface i is now shown.
func (d *SurfaceDriver) ShowSurface(i int) bool {
	next, ok := Show(d.state, i, len(d.surfaces))
	if !ok || d.torn {
		return false
	}
	surf := &d.surfaces[i]
	if surf.Mesh == nil {
		if surf.Build == nil {
			return false
		}
		mesh, err := surf.Build()
		if err != nil {
			d.log.WithError(err).WithField("surface", surf.Name).Error("generating surface")
			return false
		}
		if mesh.Material != nil {
			mesh.Material.Wireframe = d.state.Wireframe
		}
		surf.Mesh = mesh
	}
	if surf.node == nil {
		surf.node = NewMeshNode(surf.Name, surf.Mesh)
	}
	if cur := d.activeNode(); cur != nil {
		d.graph.Remove(cur)
	}
	d.graph.Add(surf.node)
	d.state = next
	d.log.WithFields(logrus.Fields{
		"surface":  surf.Name,
		"vertices": surf.Mesh.VertexCount(),
	}).Info("showing surface")
	return true
}

func (d *SurfaceDriver) activeNode() *Node {
	if d.state.Current < 0 {
		return nil
	}
	return d.surfaces[d.state.Current].node
}

// ToggleWireframe flips wireframe mode on every generated surface's material.
// It has no effect after Teardown.
func (d *SurfaceDriver) ToggleWireframe() {
	if d.torn {
		return
	}
	d.state = Toggle(d.state)
	for _, surf := range d.surfaces {
		if surf.Mesh != nil && surf.Mesh.Material != nil {
			surf.Mesh.Material.Wireframe = d.state.Wireframe
		}
	}
	d.log.WithField("wireframe", d.state.Wireframe).Debug("toggled wireframe")
}

// Stats returns the shown surface's name and vertex count and the wireframe mode.
func (d *SurfaceDriver) Stats() Stats {
	st := Stats{Wireframe: d.state.Wireframe}
	if d.state.Current >= 0 {
		surf := d.surfaces[d.state.Current]
		st.SurfaceName = surf.Name
		st.VertexCount = surf.Mesh.VertexCount()
	}
	return st
}

// Update rotates the shown surface.
func (d *SurfaceDriver) Update() {
	m := d.ActiveMesh()
	if m == nil {
		return
	}
	m.Rotation.X += 0.01
	m.Rotation.Y += 0.005
}

// OnKeyDown selects a surface with keys 1 to 9 and toggles wireframe with g.
// Keys are ignored after Teardown.
func (d *SurfaceDriver) OnKeyDown(ev KeyEvent) {
	if d.torn {
		return
	}
	switch ev.Key {
	case "g", "G":
		d.ToggleWireframe()
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		d.ShowSurface(int(ev.Key[0] - '1'))
	}
}

// Teardown removes the shown surface from the graph and disposes every
// generated mesh and its material. Calling Teardown again has no effect.
func (d *SurfaceDriver) Teardown() {
	if d.torn {
		return
	}
	if cur := d.activeNode(); cur != nil {
		d.graph.Remove(cur)
	}
	for _, surf := range d.surfaces {
		if surf.Mesh != nil {
			surf.Mesh.Dispose()
			surf.Mesh.Material.Dispose()
		}
	}
	d.state = State{Current: -1, Wireframe: d.state.Wireframe}
	d.torn = true
}

// Destroy calls Teardown.
func (d *SurfaceDriver) Destroy() { d.Teardown() }
