package scene

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/soypat/implicit/render"
)

// Host loads one scene at a time into a shared graph and camera. Its methods
// are safe for concurrent use and never run concurrently with each other.
type Host struct {
	mu       sync.Mutex
	registry *Registry
	log      logrus.FieldLogger
	graph    Graph
	camera   Camera
	active   Scene
	current  Info
	frames   uint64
}

// NewHost returns a host with no active scene. A nil log uses the logrus standard logger.
func NewHost(r *Registry, log logrus.FieldLogger) *Host {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Host{
		registry: r,
		log:      log,
		camera:   DefaultCamera(),
	}
}

// Registry returns the scenes the host can load.
func (h *Host) Registry() *Registry { return h.registry }

// Load destroys the active scene, clears the graph, resets the camera and
// sets up scene id. If setup fails no scene is active afterwards.
func (h *Host) Load(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	e, ok := h.registry.Lookup(id)
	if !ok {
		return fmt.Errorf("load %q: %w", id, ErrUnknownScene)
	}
	h.unload()
	h.camera = DefaultCamera()
	log := h.log.WithField("scene", id)
	start := time.Now()
	s, err := e.Setup(Env{Graph: &h.graph, Camera: &h.camera, Log: log})
	if err != nil {
		h.graph.Clear()
		return fmt.Errorf("setup scene %q: %w", id, err)
	}
	h.active = s
	h.current = e.Info
	log.WithField("elapsed", time.Since(start)).Info("scene loaded")
	return nil
}

func (h *Host) unload() {
	if h.active != nil {
		h.active.Destroy()
		h.log.WithField("scene", h.current.ID).Debug("scene destroyed")
	}
	h.active = nil
	h.current = Info{}
	h.graph.Clear()
}

// Current returns the Info of the active scene.
func (h *Host) Current() (Info, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current, h.active != nil
}

// Tick advances the active scene by one frame.
func (h *Host) Tick() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.active != nil {
		h.active.Update()
		h.frames++
	}
}

// Frames returns the number of frames the active scenes were advanced.
func (h *Host) Frames() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frames
}

// Run ticks fps times a second until ctx is done.
func (h *Host) Run(ctx context.Context, fps int) error {
	if fps <= 0 {
		return fmt.Errorf("invalid frame rate %d", fps)
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			h.Tick()
		}
	}
}

// KeyDown forwards a key press to the active scene.
func (h *Host) KeyDown(ev KeyEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.active == nil {
		return
	}
	h.log.WithFields(logrus.Fields{"scene": h.current.ID, "key": ev.Key}).Debug("key down")
	h.active.OnKeyDown(ev)
}

// Stats returns the active scene's stats if it reports any.
func (h *Host) Stats() (Stats, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	sp, ok := h.active.(StatsProvider)
	if !ok {
		return Stats{}, false
	}
	return sp.Stats(), true
}

// ActiveMesh returns a copy of the active scene's displayed mesh. Buffers are
// shared with the scene and must not be modified.
func (h *Host) ActiveMesh() (render.Mesh, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	mp, ok := h.active.(MeshProvider)
	if !ok {
		return render.Mesh{}, false
	}
	m := mp.ActiveMesh()
	if m == nil || m.IsEmpty() {
		return render.Mesh{}, false
	}
	cp := *m
	if m.Material != nil {
		mat := *m.Material
		cp.Material = &mat
	}
	return cp, true
}

// Camera returns the camera state.
func (h *Host) Camera() Camera {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.camera
}

// Nodes returns the nodes in the render graph.
func (h *Host) Nodes() []*Node {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.graph.Nodes()
}

// Close destroys the active scene.
func (h *Host) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unload()
}
