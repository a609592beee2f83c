package server

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/soypat/implicit/render"
	"github.com/soypat/implicit/scene"
	"github.com/soypat/implicit/scene/isosurface"
	"github.com/soypat/implicit/volume"
)

const (
	defaultProfileSamples = 200
	maxProfileSamples     = 10000
	maxPreviewSize        = 2048
	defaultWeldTolerance  = 1e-6
)

var errNoMesh = errors.New("active scene has no mesh")

type previewSettings struct {
	cfg render.PreviewConfig
}

func defaultPreviewSettings() previewSettings {
	return previewSettings{cfg: render.DefaultPreviewConfig()}
}

// CurrentResponse is the body of GET /api/current.
type CurrentResponse struct {
	Scene  scene.Info   `json:"scene"`
	Camera scene.Camera `json:"camera"`
	Stats  *scene.Stats `json:"stats,omitempty"`
	Frames uint64       `json:"frames"`
}

// SurfaceResponse describes one implicit surface definition.
type SurfaceResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Kind        string     `json:"kind"`
	Min         [3]float64 `json:"min"`
	Max         [3]float64 `json:"max"`
	Threshold   float64    `json:"threshold"`
	Resolution  int        `json:"resolution"`
	DoubleSided bool       `json:"doubleSided"`
}

func (s *Server) listScenes(c *gin.Context) {
	c.JSON(http.StatusOK, s.host.Registry().Infos())
}

func (s *Server) sceneInfo(c *gin.Context) {
	id := c.Param("id")
	e, ok := s.host.Registry().Lookup(id)
	if !ok {
		abortWithError(c, http.StatusNotFound, fmt.Errorf("scene %q: %w", id, scene.ErrUnknownScene))
		return
	}
	c.JSON(http.StatusOK, e.Info)
}

func (s *Server) loadScene(c *gin.Context) {
	id := c.Param("id")
	err := s.host.Load(id)
	switch {
	case errors.Is(err, scene.ErrUnknownScene):
		abortWithError(c, http.StatusNotFound, err)
		return
	case err != nil:
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}
	s.current(c)
}

func (s *Server) current(c *gin.Context) {
	info, ok := s.host.Current()
	if !ok {
		abortWithError(c, http.StatusNotFound, errors.New("no active scene"))
		return
	}
	resp := CurrentResponse{
		Scene:  info,
		Camera: s.host.Camera(),
		Frames: s.host.Frames(),
	}
	if st, ok := s.host.Stats(); ok {
		resp.Stats = &st
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) keyDown(c *gin.Context) {
	if _, ok := s.host.Current(); !ok {
		abortWithError(c, http.StatusConflict, errors.New("no active scene"))
		return
	}
	ev := scene.KeyEventFor(c.Param("key"))
	if code := c.Query("code"); code != "" {
		ev.Code = code
	}
	s.host.KeyDown(ev)
	s.current(c)
}

func (s *Server) stats(c *gin.Context) {
	st, ok := s.host.Stats()
	if !ok {
		abortWithError(c, http.StatusNotFound, errors.New("active scene reports no stats"))
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) activeMesh(c *gin.Context) (render.Mesh, bool) {
	m, ok := s.host.ActiveMesh()
	if !ok {
		abortWithError(c, http.StatusNotFound, errNoMesh)
	}
	return m, ok
}

func (s *Server) meshSTL(c *gin.Context) {
	m, ok := s.activeMesh(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := render.WriteSTL(&buf, m.Triangles()); err != nil {
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="mesh.stl"`)
	c.Data(http.StatusOK, "model/stl", buf.Bytes())
}

func (s *Server) meshOBJ(c *gin.Context) {
	m, ok := s.activeMesh(c)
	if !ok {
		return
	}
	tol, err := floatQuery(c, "tol", defaultWeldTolerance)
	if err != nil || tol < 0 {
		abortWithError(c, http.StatusBadRequest, fmt.Errorf("invalid weld tolerance %q", c.Query("tol")))
		return
	}
	var buf bytes.Buffer
	if err := render.WriteOBJ(&buf, m.Triangles(), tol); err != nil {
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="mesh.obj"`)
	c.Data(http.StatusOK, "model/obj", buf.Bytes())
}

func (s *Server) previewPNG(c *gin.Context) {
	m, ok := s.activeMesh(c)
	if !ok {
		return
	}
	cfg := s.preview.cfg
	var err error
	if cfg.Width, err = intQuery(c, "width", cfg.Width); err != nil || cfg.Width <= 0 || cfg.Width > maxPreviewSize {
		abortWithError(c, http.StatusBadRequest, fmt.Errorf("invalid width %q", c.Query("width")))
		return
	}
	if cfg.Height, err = intQuery(c, "height", cfg.Height); err != nil || cfg.Height <= 0 || cfg.Height > maxPreviewSize {
		abortWithError(c, http.StatusBadRequest, fmt.Errorf("invalid height %q", c.Query("height")))
		return
	}
	cam := s.host.Camera()
	cfg.Eye, cfg.Center = cam.Position, cam.Target
	img, err := render.Preview(&m, cfg)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (s *Server) listSurfaces(c *gin.Context) {
	out := make([]SurfaceResponse, len(s.defs))
	for i, def := range s.defs {
		out[i] = SurfaceResponse{
			ID:          def.ID,
			Name:        def.Name,
			Kind:        def.Surface.Kind.String(),
			Min:         [3]float64{def.Box.Min.X, def.Box.Min.Y, def.Box.Min.Z},
			Max:         [3]float64{def.Box.Max.X, def.Box.Max.Y, def.Box.Max.Z},
			Threshold:   def.Threshold,
			Resolution:  def.Resolution,
			DoubleSided: def.DoubleSided,
		}
	}
	c.JSON(http.StatusOK, out)
}

// surfaceProfile plots the surface's field along an axis through the center
// of its definition box.
func (s *Server) surfaceProfile(c *gin.Context) {
	id := c.Param("id")
	def, ok := isosurface.Lookup(s.defs, id)
	if !ok {
		abortWithError(c, http.StatusNotFound, fmt.Errorf("unknown surface %q", id))
		return
	}
	samples, err := intQuery(c, "samples", defaultProfileSamples)
	if err != nil || samples < 2 || samples > maxProfileSamples {
		abortWithError(c, http.StatusBadRequest, fmt.Errorf("invalid sample count %q", c.Query("samples")))
		return
	}
	from, to, err := volume.AxisSegment(def.Box, c.DefaultQuery("axis", "x"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	xys, err := volume.LineProfile(def.Surface, from, to, samples)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	var buf bytes.Buffer
	title := fmt.Sprintf("%s along %s", def.Name, c.DefaultQuery("axis", "x"))
	if err := render.WriteProfilePNG(&buf, xys, title); err != nil {
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func intQuery(c *gin.Context, key string, def int) (int, error) {
	v, ok := c.GetQuery(key)
	if !ok {
		return def, nil
	}
	return strconv.Atoi(v)
}

func floatQuery(c *gin.Context, key string, def float64) (float64, error) {
	v, ok := c.GetQuery(key)
	if !ok {
		return def, nil
	}
	return strconv.ParseFloat(v, 64)
}
