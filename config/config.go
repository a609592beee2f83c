// Package config loads isoshow settings from TOML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/soypat/implicit/scene"
	"github.com/soypat/implicit/scene/basic"
	"github.com/soypat/implicit/scene/geometry"
	"github.com/soypat/implicit/scene/isosurface"
)

// DefaultFile is the configuration file looked up in the working directory.
const DefaultFile = "isoshow.toml"

// Config holds isoshow settings. The zero value is not valid, start from Default.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `toml:"addr"`
	// FPS is the scene update rate of the server frame loop.
	FPS int `toml:"fps"`
	// DefaultScene is loaded on startup.
	DefaultScene string `toml:"default_scene"`
	// LazySurfaces defers surface generation until first selection.
	LazySurfaces bool `toml:"lazy_surfaces"`
	Verbose      bool `toml:"verbose"`
	// MeshCells sets geometry scene tessellation.
	MeshCells int `toml:"mesh_cells"`
	// Surfaces overrides implicit surface parameters by surface ID.
	Surfaces map[string]Surface `toml:"surfaces"`
}

// Surface overrides one implicit surface definition.
type Surface struct {
	Resolution int      `toml:"resolution,omitempty"`
	Threshold  *float64 `toml:"threshold,omitempty"`
}

// Default returns the built in configuration.
func Default() Config {
	return Config{
		Addr:         ":8080",
		FPS:          60,
		DefaultScene: isosurface.ID,
		MeshCells:    geometry.DefaultMeshCells,
	}
}

// Load reads the file at path over the defaults.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := Decode(bytes.NewReader(b))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadOptional is like Load but returns the defaults when path does not exist.
func LoadOptional(path string) (Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Decode reads TOML from r over the defaults and validates the result.
// Unknown keys are an error.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var serr *toml.StrictMissingError
		if errors.As(err, &serr) {
			return Config{}, fmt.Errorf("unknown configuration keys:\n%s", serr.String())
		}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return Config{}, fmt.Errorf("line %d column %d: %w", row, col, err)
		}
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Encode writes cfg as TOML.
func (cfg Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(cfg)
}

// Validate checks value ranges and that surface overrides name known surfaces.
func (cfg Config) Validate() error {
	if cfg.Addr == "" {
		return errors.New("empty listen address")
	}
	if cfg.FPS <= 0 || cfg.FPS > 240 {
		return fmt.Errorf("fps %d out of range [1,240]", cfg.FPS)
	}
	switch cfg.DefaultScene {
	case basic.ID, geometry.ID, isosurface.ID:
	default:
		return fmt.Errorf("default scene %q is not a known scene", cfg.DefaultScene)
	}
	if cfg.MeshCells < 2 {
		return fmt.Errorf("mesh cells %d must be 2 or larger", cfg.MeshCells)
	}
	for id, s := range cfg.Surfaces {
		if s.Resolution != 0 && s.Resolution < 2 {
			return fmt.Errorf("surface %s: resolution %d must be 2 or larger", id, s.Resolution)
		}
	}
	_, err := isosurface.Apply(isosurface.Definitions(), cfg.overrides())
	return err
}

func (cfg Config) overrides() map[string]isosurface.Override {
	if len(cfg.Surfaces) == 0 {
		return nil
	}
	o := make(map[string]isosurface.Override, len(cfg.Surfaces))
	for id, s := range cfg.Surfaces {
		o[id] = isosurface.Override{Resolution: s.Resolution, Threshold: s.Threshold}
	}
	return o
}

// IsosurfaceOptions returns the implicit surface scene options.
func (cfg Config) IsosurfaceOptions() isosurface.Options {
	return isosurface.Options{Lazy: cfg.LazySurfaces, Overrides: cfg.overrides()}
}

// GeometryOptions returns the geometry scene options.
func (cfg Config) GeometryOptions() geometry.Options {
	return geometry.Options{MeshCells: cfg.MeshCells}
}

// Registry returns a registry of every scene configured by cfg.
func (cfg Config) Registry() (*scene.Registry, error) {
	return scene.NewRegistry(
		basic.Entry(),
		geometry.Entry(cfg.GeometryOptions()),
		isosurface.Entry(cfg.IsosurfaceOptions()),
	)
}
