// Package volume samples scalar fields over regular 3D grids and feeds the
// samples to an isosurface extractor.
package volume

import (
	"errors"
	"fmt"

	"github.com/soypat/implicit"
	"github.com/soypat/implicit/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrResolution is returned for grids with fewer than 2 samples per axis.
	ErrResolution = errors.New("grid resolution must be 2 or larger")
	// ErrDegenerateBox is returned for bounding boxes with no volume or non-finite bounds.
	ErrDegenerateBox = errors.New("degenerate bounding box")
)

// CellSetter receives grid samples.
type CellSetter interface {
	SetCell(x, y, z int, value float64)
}

// Extractor is an isosurface extractor that is fed cell values by Generate.
type Extractor interface {
	CellSetter
	// Resolution returns the number of cells per axis the extractor holds.
	Resolution() int
	// SetDomain sets the world space box the extractor's grid spans.
	SetDomain(bb r3.Box)
	// Reset clears previously set cell values and generated geometry.
	Reset()
	// Update regenerates the extractor's output from the current cell values.
	Update()
}

// Grid is a cubic lattice of Resolution³ cells spanning Box.
// Cell (0,0,0) lies on Box.Min and cell (N-1,N-1,N-1) on Box.Max.
type Grid struct {
	Box        r3.Box
	Resolution int
}

// NewGrid returns a validated Grid.
func NewGrid(bb r3.Box, resolution int) (Grid, error) {
	g := Grid{Box: bb, Resolution: resolution}
	if err := g.Validate(); err != nil {
		return Grid{}, err
	}
	return g, nil
}

// Validate checks the grid can be sampled.
func (g Grid) Validate() error {
	if g.Resolution < 2 {
		return fmt.Errorf("resolution %d: %w", g.Resolution, ErrResolution)
	}
	if d3.Box(g.Box).Degenerate() {
		return fmt.Errorf("box %v: %w", g.Box, ErrDegenerateBox)
	}
	return nil
}

// Cells returns the amount of cells in the grid, Resolution³.
func (g Grid) Cells() int {
	return g.Resolution * g.Resolution * g.Resolution
}

// Spacing returns the distance between adjacent cells along each axis.
func (g Grid) Spacing() r3.Vec {
	return r3.Scale(1/float64(g.Resolution-1), d3.Box(g.Box).Size())
}

// Position returns the world position of cell (x,y,z).
func (g Grid) Position(x, y, z int) r3.Vec {
	size := d3.Box(g.Box).Size()
	n := float64(g.Resolution - 1)
	return r3.Vec{
		X: g.Box.Min.X + (float64(x)/n)*size.X,
		Y: g.Box.Min.Y + (float64(y)/n)*size.Y,
		Z: g.Box.Min.Z + (float64(z)/n)*size.Z,
	}
}

// Index returns the linear index of cell (x,y,z), x varying fastest.
func (g Grid) Index(x, y, z int) int {
	return x + g.Resolution*(y+g.Resolution*z)
}

// Sample evaluates f at every cell of g and writes the values into dst.
// It returns the number of evaluations performed. The grid is expected
// to be valid.
func Sample(dst CellSetter, f implicit.Field, g Grid) int {
	n := g.Resolution
	evals := 0
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			for z := 0; z < n; z++ {
				dst.SetCell(x, y, z, f.Evaluate(g.Position(x, y, z)))
				evals++
			}
		}
	}
	return evals
}

// Generate resets ext, samples f over g into it and triggers mesh
// regeneration. The extractor resolution must match the grid's.
func Generate(ext Extractor, f implicit.Field, g Grid) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if ext.Resolution() != g.Resolution {
		return fmt.Errorf("extractor resolution %d does not match grid resolution %d", ext.Resolution(), g.Resolution)
	}
	ext.SetDomain(g.Box)
	ext.Reset()
	Sample(ext, f, g)
	ext.Update()
	return nil
}

// Volume is a materialized set of grid samples.
type Volume struct {
	Grid
	Values []float64
}

// Materialize samples f over g into a new Volume.
func Materialize(f implicit.Field, g Grid) (*Volume, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	v := &Volume{Grid: g, Values: make([]float64, g.Cells())}
	Sample(v, f, g)
	return v, nil
}

// SetCell implements CellSetter.
func (v *Volume) SetCell(x, y, z int, value float64) {
	v.Values[v.Index(x, y, z)] = value
}

// At returns the sample at cell (x,y,z).
func (v *Volume) At(x, y, z int) float64 {
	return v.Values[v.Index(x, y, z)]
}

// Range returns the minimum and maximum sample values.
func (v *Volume) Range() (min, max float64) {
	if len(v.Values) == 0 {
		return 0, 0
	}
	min, max = v.Values[0], v.Values[0]
	for _, s := range v.Values[1:] {
		if s < min {
			min = s
		} else if s > max {
			max = s
		}
	}
	return min, max
}

// Crossings counts the cells whose value is below threshold, that is the
// cells inside the isosurface at that threshold.
func (v *Volume) Crossings(threshold float64) (below int) {
	for _, s := range v.Values {
		if s < threshold {
			below++
		}
	}
	return below
}
