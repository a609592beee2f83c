package render

import (
	"errors"
	"image"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"gonum.org/v1/gonum/spatial/r3"
)

// PreviewConfig configures the software rendered preview of a mesh.
type PreviewConfig struct {
	// Width and Height of the output image in pixels.
	Width, Height int
	// Scale supersamples the render by this factor before downsampling.
	Scale int
	// Camera position, looked at point and up direction.
	Eye, Center, Up r3.Vec
	// Vertical field of view in degrees.
	Fovy      float64
	Near, Far float64
	// Light is the direction light travels from.
	Light      r3.Vec
	Background string
}

// DefaultPreviewConfig looks at the origin from (0,2,5) in a 640x480 image.
func DefaultPreviewConfig() PreviewConfig {
	return PreviewConfig{
		Width:      640,
		Height:     480,
		Scale:      2,
		Eye:        r3.Vec{Y: 2, Z: 5},
		Up:         r3.Vec{Y: 1},
		Fovy:       30,
		Near:       1,
		Far:        20,
		Light:      r3.Vec{X: 5, Y: 5, Z: 5},
		Background: "#FFF8E3",
	}
}

// Preview renders the mesh with Phong shading. The mesh is fit into a bi-unit
// cube at the origin after its rotation is applied. Wireframe and face culling
// follow the mesh material.
func Preview(m *Mesh, cfg PreviewConfig) (image.Image, error) {
	if m.IsEmpty() {
		return nil, errEmptyModel
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errors.New("preview size must be positive")
	}
	scale := max(cfg.Scale, 1)
	mesh := fauxglMesh(m)
	mesh.Transform(fauxgl.Identity().
		Rotate(fauxgl.V(1, 0, 0), m.Rotation.X).
		Rotate(fauxgl.V(0, 1, 0), m.Rotation.Y).
		Rotate(fauxgl.V(0, 0, 1), m.Rotation.Z))
	mesh.BiUnitCube()

	var (
		eye    = fauxglVec(cfg.Eye)
		center = fauxglVec(cfg.Center)
		up     = fauxglVec(cfg.Up)
		light  = fauxglVec(cfg.Light).Normalize()
		aspect = float64(cfg.Width) / float64(cfg.Height)
	)
	context := fauxgl.NewContext(cfg.Width*scale, cfg.Height*scale)
	context.ClearColorBufferWith(fauxgl.HexColor(cfg.Background))
	matrix := fauxgl.LookAt(eye, center, up).Perspective(cfg.Fovy, aspect, cfg.Near, cfg.Far)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = fauxgl.Color{R: 1, G: 1, B: 1, A: 1}
	mat := m.Material
	if mat != nil {
		shader.ObjectColor = fauxgl.Color{
			R: float64(mat.Color.R) / 255,
			G: float64(mat.Color.G) / 255,
			B: float64(mat.Color.B) / 255,
			A: 1,
		}
		context.Wireframe = mat.Wireframe
		switch mat.Side {
		case DoubleSide:
			context.Cull = fauxgl.CullNone
		case BackSide:
			context.Cull = fauxgl.CullFront
		default:
			context.Cull = fauxgl.CullBack
		}
	}
	context.Shader = shader
	context.DrawMesh(mesh)
	img := context.Image()
	if scale > 1 {
		img = resize.Resize(uint(cfg.Width), uint(cfg.Height), img, resize.Bilinear)
	}
	return img, nil
}

func fauxglMesh(m *Mesh) *fauxgl.Mesh {
	hasNormals := len(m.Normals) == len(m.Positions)
	triangles := make([]*fauxgl.Triangle, m.TriangleCount())
	for i := range triangles {
		var v [3]fauxgl.Vertex
		for j := range v {
			v[j].Position = fauxglVec(m.Vertex(3*i + j))
			if hasNormals {
				v[j].Normal = fauxglVec(m.Normal(3*i + j))
			}
		}
		triangles[i] = fauxgl.NewTriangle(v[0], v[1], v[2])
		if !hasNormals {
			triangles[i].FixNormals()
		}
	}
	return fauxgl.NewTriangleMesh(triangles)
}

func fauxglVec(v r3.Vec) fauxgl.Vector {
	return fauxgl.V(v.X, v.Y, v.Z)
}
