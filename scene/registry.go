package scene

import (
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/soypat/implicit/render"
)

var (
	ErrUnknownScene   = errors.New("unknown scene")
	ErrDuplicateScene = errors.New("scene already registered")
)

// Control documents an input a scene responds to.
type Control struct {
	Key    string `json:"key"`
	Action string `json:"action"`
}

// Info documents a scene.
type Info struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	LongDescription string    `json:"longDescription"`
	Category        string    `json:"category"`
	Order           int       `json:"order"`
	CodeExample     string    `json:"codeExample"`
	Controls        []Control `json:"controls"`
	Notes           []string  `json:"notes"`
}

// KeyEvent is a key press. Key is the produced character, e.g. "g" or "1",
// Code the physical key, e.g. "KeyG" or "Digit1".
type KeyEvent struct {
	Key  string `json:"key"`
	Code string `json:"code"`
}

// KeyEventFor returns the event produced by pressing the key that types key.
func KeyEventFor(key string) KeyEvent {
	ev := KeyEvent{Key: key}
	if len(key) != 1 {
		ev.Code = key
		return ev
	}
	c := key[0]
	switch {
	case c >= '0' && c <= '9':
		ev.Code = "Digit" + key
	case c >= 'a' && c <= 'z':
		ev.Code = "Key" + string(c-'a'+'A')
	case c >= 'A' && c <= 'Z':
		ev.Code = "Key" + key
	}
	return ev
}

// Scene is an active scene.
type Scene interface {
	// Update advances the scene by one frame.
	Update()
	OnKeyDown(ev KeyEvent)
	// Destroy releases resources the scene created.
	Destroy()
}

// Stats is a snapshot of the displayed surface.
type Stats struct {
	SurfaceName string `json:"surfaceName"`
	VertexCount int    `json:"vertexCount"`
	Wireframe   bool   `json:"wireframe"`
}

// StatsProvider is implemented by scenes that report Stats.
type StatsProvider interface {
	Stats() Stats
}

// MeshProvider is implemented by scenes with a primary displayed mesh.
type MeshProvider interface {
	ActiveMesh() *render.Mesh
}

// Env is handed to a scene's setup.
type Env struct {
	Graph  *Graph
	Camera *Camera
	Log    logrus.FieldLogger
}

// Setup initializes a scene in env.
type Setup func(env Env) (Scene, error)

// Entry is a registered scene.
type Entry struct {
	Info  Info
	Setup Setup
}

// Registry holds the scenes a Host can load.
type Registry struct {
	entries map[string]Entry
}

// NewRegistry returns a registry with entries registered in order.
func NewRegistry(entries ...Entry) (*Registry, error) {
	r := &Registry{entries: make(map[string]Entry)}
	for _, e := range entries {
		if err := r.Register(e); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a scene.
func (r *Registry) Register(e Entry) error {
	switch {
	case e.Info.ID == "":
		return errors.New("scene ID must not be empty")
	case e.Setup == nil:
		return fmt.Errorf("scene %q: nil setup", e.Info.ID)
	}
	if _, ok := r.entries[e.Info.ID]; ok {
		return fmt.Errorf("scene %q: %w", e.Info.ID, ErrDuplicateScene)
	}
	r.entries[e.Info.ID] = e
	return nil
}

// Lookup returns the scene registered as id.
func (r *Registry) Lookup(id string) (Entry, bool) {
	e, ok := r.entries[id]
	return e, ok
}

// Entries returns scenes sorted by Info.Order, then ID.
func (r *Registry) Entries() []Entry {
	entries := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i].Info, entries[j].Info
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return a.ID < b.ID
	})
	return entries
}

// Infos returns the Info of every scene sorted like Entries.
func (r *Registry) Infos() []Info {
	entries := r.Entries()
	infos := make([]Info, len(entries))
	for i := range entries {
		infos[i] = entries[i].Info
	}
	return infos
}
