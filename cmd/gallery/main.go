// Command gallery renders every showcase surface and solid to STL and PNG
// and writes a markdown gallery page listing them.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"text/template"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/soypat/implicit"
	"github.com/soypat/implicit/render"
	"github.com/soypat/implicit/scene/geometry"
	"github.com/soypat/implicit/scene/isosurface"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// Scale down images relative to Full HD resolution.
	FHDscaler     = 0.4
	width, height = int(1920. * FHDscaler), int(1080. * FHDscaler) // output width and height in pixels
	figFolder     = "fig"
)

// entry is one gallery item. Exported fields are used by the template.
type entry struct {
	Name string
	ID   string
	mesh func() (*render.Mesh, error)

	// Following values set during execution

	PNGResult     string
	STLSize       string
	Triangles     int
	ExecutionTime string
}

var defaultTemplate = `# Gallery
{{range .}}
## {{.Name}}

![{{.Name}}]({{.PNGResult}})

{{.Triangles}} triangles, {{.STLSize}} STL, meshed in {{.ExecutionTime}}.
{{end}}`

func main() {
	var (
		outDir    = flag.String("o", "gallery", "output directory")
		tmplPath  = flag.String("template", "", "gallery page template, defaults to a builtin one")
		meshCells = flag.Int("cells", 96, "octree mesh cells for sdfx solids")
		verbose   = flag.Bool("verbose", false, "Verbose mode")
	)
	flag.Parse()
	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
	entries, err := gallery(*meshCells)
	if err != nil {
		logrus.Fatal(err)
	}
	tmpl := defaultTemplate
	if *tmplPath != "" {
		b, err := os.ReadFile(*tmplPath)
		if err != nil {
			logrus.Fatal(err)
		}
		tmpl = string(b)
	}
	if err := generate(*outDir, entries, tmpl, logrus.StandardLogger()); err != nil {
		logrus.Fatal(err)
	}
}

// gallery lists the implicit surfaces followed by the geometry solids. Solids
// are meshed with the octree renderer since sdfx solids are distance fields.
func gallery(meshCells int) ([]entry, error) {
	var entries []entry
	for _, def := range isosurface.Definitions() {
		mat := render.NewStandardMaterial(def.ID, render.HexColor(0x3498db), 0.3)
		if def.DoubleSided {
			mat.Side = render.DoubleSide
		}
		entries = append(entries, entry{
			Name: def.Name,
			ID:   def.ID,
			mesh: func() (*render.Mesh, error) { return isosurface.Generate(def, mat) },
		})
	}
	solids, err := geometry.Solids()
	if err != nil {
		return nil, err
	}
	for _, solid := range solids {
		entries = append(entries, entry{
			Name: solid.Name,
			ID:   "solid-" + solid.Name,
			mesh: func() (*render.Mesh, error) {
				r, err := render.NewOctreeRenderer(implicit.FromSDF3(solid.SDF), implicit.SDF3Bounds(solid.SDF), meshCells)
				if err != nil {
					return nil, err
				}
				tris, err := render.RenderAll(r)
				if err != nil {
					return nil, err
				}
				return render.NewMeshFromTriangles(tris, render.NewStandardMaterial(solid.Name, render.HexColor(0x3498db), 0.3)), nil
			},
		})
	}
	return entries, nil
}

func generate(dir string, entries []entry, tmpl string, log logrus.FieldLogger) error {
	t, err := template.New("gallery").Parse(tmpl)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(dir, figFolder), 0777); err != nil {
		return err
	}
	for i := range entries {
		e := &entries[i]
		tstart := time.Now()
		mesh, err := e.mesh()
		if err != nil {
			return fmt.Errorf("%s: %w", e.Name, err)
		}
		e.ExecutionTime = fmt.Sprintf("%gs", time.Since(tstart).Round(time.Millisecond).Seconds())
		e.Triangles = mesh.TriangleCount()
		stlName := filepath.Join(dir, e.ID+".stl")
		if err := render.CreateSTL(stlName, mesh.Renderer()); err != nil {
			return fmt.Errorf("%s: %w", e.Name, err)
		}
		e.STLSize, err = getHumanSize(stlName)
		if err != nil {
			return err
		}
		pngName := filepath.Join(figFolder, e.ID+".png")
		if err := meshToPNG(mesh, filepath.Join(dir, pngName)); err != nil {
			return fmt.Errorf("%s: %w", e.Name, err)
		}
		e.PNGResult = filepath.ToSlash(pngName)
		log.WithFields(logrus.Fields{"entry": e.ID, "triangles": e.Triangles, "elapsed": e.ExecutionTime}).Info("rendered")
	}
	output, err := os.Create(filepath.Join(dir, "GALLERY.md"))
	if err != nil {
		return err
	}
	defer output.Close()
	if err := t.Execute(output, entries); err != nil {
		return err
	}
	return output.Close()
}

// isoView looks at the mesh from the (1,1,1) diagonal with Z up.
func isoView() render.PreviewConfig {
	cfg := render.DefaultPreviewConfig()
	cfg.Width, cfg.Height = width, height
	cfg.Up = r3.Vec{Z: 1}
	cfg.Eye = r3.Vec{X: 2.4, Y: 2.4, Z: 2.4}
	cfg.Near, cfg.Far = 1, 10
	cfg.Light = r3.Vec{X: -0.75, Y: 1, Z: 0.25}
	return cfg
}

func meshToPNG(mesh *render.Mesh, outputname string) error {
	img, err := render.Preview(mesh, isoView())
	if err != nil {
		return err
	}
	fp, err := os.Create(outputname)
	if err != nil {
		return err
	}
	defer fp.Close()
	if err := png.Encode(fp, img); err != nil {
		return err
	}
	return fp.Close()
}

func getHumanSize(fileName string) (size string, err error) {
	const (
		kB = 1000
		MB = 1000 * kB
		GB = 1000 * MB
	)
	info, err := os.Stat(fileName)
	if err != nil {
		return "", err
	}
	bytes := info.Size()
	switch {
	case bytes < 10*kB:
		size = fmt.Sprintf("%dB", bytes)
	case bytes < 10*MB:
		size = fmt.Sprintf("%dkB", bytes/kB)
	case bytes < 10*GB:
		size = fmt.Sprintf("%dMB", bytes/MB)
	default:
		size = fmt.Sprintf("%dGB", bytes/GB)
	}
	return size, nil
}
