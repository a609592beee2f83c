// Package render extracts triangle meshes from sampled scalar fields and
// exports them to files and images.
package render

import "errors"

// ErrResolution is returned when constructing an extractor with fewer than
// 2 cells per axis.
var ErrResolution = errors.New("extractor resolution must be 2 or larger")

// Renderer reads triangles into t. It returns io.EOF once no triangles remain.
type Renderer interface {
	ReadTriangles(t []Triangle3) (int, error)
}
