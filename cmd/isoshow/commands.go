package main

import (
	"bufio"
	"flag"
	"fmt"
	"image/png"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/soypat/implicit/render"
	"github.com/soypat/implicit/scene"
	"github.com/soypat/implicit/scene/isosurface"
	"github.com/soypat/implicit/server"
	"github.com/soypat/implicit/volume"
)

func runList(a *app, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(a.out)
	if err := fs.Parse(args); err != nil {
		return err
	}
	r, err := a.cfg.Registry()
	if err != nil {
		return err
	}
	defs, err := a.definitions()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tSCENE\tNAME\tDESCRIPTION")
	for _, info := range r.Infos() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", info.Order, info.ID, info.Name, info.Description)
	}
	fmt.Fprintln(tw, "\nKEY\tSURFACE\tRESOLUTION\tTHRESHOLD")
	for i, def := range defs {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%g\n", i+1, def.ID, def.Resolution, def.Threshold)
	}
	return tw.Flush()
}

func runServe(a *app, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(a.out)
	var (
		addr    = fs.String("addr", a.cfg.Addr, "listen address")
		fps     = fs.Int("fps", a.cfg.FPS, "scene updates per second")
		initial = fs.String("scene", a.cfg.DefaultScene, "scene loaded on startup")
		lazy    = fs.Bool("lazy", a.cfg.LazySurfaces, "generate surfaces on first selection")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	a.cfg.LazySurfaces = *lazy
	r, err := a.cfg.Registry()
	if err != nil {
		return err
	}
	defs, err := a.definitions()
	if err != nil {
		return err
	}
	host := scene.NewHost(r, a.log)
	defer host.Close()
	if err := host.Load(*initial); err != nil {
		return err
	}
	srv := server.New(host, a.log, server.Options{Surfaces: defs, Release: !a.log.IsLevelEnabled(logrus.DebugLevel)})
	ctx, cancel := signalContext()
	defer cancel()
	err = srv.Run(ctx, *addr, *fps)
	if ctx.Err() != nil {
		a.log.Info("shutting down")
	}
	return err
}

func runExport(a *app, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(a.out)
	var (
		surface = fs.String("surface", "sphere", "surface ID")
		format  = fs.String("format", "", "stl or obj, defaults to the output extension")
		output  = fs.String("o", "", "output file, defaults to <surface>.<format>")
		tol     = fs.Float64("tol", 1e-6, "OBJ vertex weld tolerance")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	f := strings.ToLower(*format)
	if f == "" {
		f = "stl"
		if strings.HasSuffix(strings.ToLower(*output), ".obj") {
			f = "obj"
		}
	}
	if f != "stl" && f != "obj" {
		return fmt.Errorf("unknown export format %q", *format)
	}
	path := *output
	if path == "" {
		path = *surface + "." + f
	}
	mesh, def, err := a.generate(*surface)
	if err != nil {
		return err
	}
	if f == "stl" {
		err = render.CreateSTL(path, mesh.Renderer())
	} else {
		err = writeFile(path, func(w *bufio.Writer) error {
			return render.WriteOBJ(w, mesh.Triangles(), *tol)
		})
	}
	if err != nil {
		return err
	}
	a.log.WithFields(logrus.Fields{"surface": def.ID, "triangles": mesh.TriangleCount(), "file": path}).Info("exported")
	return nil
}

func runPreview(a *app, args []string) error {
	fs := flag.NewFlagSet("preview", flag.ContinueOnError)
	fs.SetOutput(a.out)
	cfg := render.DefaultPreviewConfig()
	var (
		surface   = fs.String("surface", "sphere", "surface ID")
		output    = fs.String("o", "", "output PNG, defaults to <surface>.png")
		wireframe = fs.Bool("wireframe", false, "draw triangle edges only")
	)
	fs.IntVar(&cfg.Width, "width", cfg.Width, "image width")
	fs.IntVar(&cfg.Height, "height", cfg.Height, "image height")
	fs.Float64Var(&cfg.Fovy, "fovy", cfg.Fovy, "vertical field of view in degrees")
	if err := fs.Parse(args); err != nil {
		return err
	}
	mesh, _, err := a.generate(*surface)
	if err != nil {
		return err
	}
	mesh.Material.Wireframe = *wireframe
	img, err := render.Preview(mesh, cfg)
	if err != nil {
		return err
	}
	path := *output
	if path == "" {
		path = *surface + ".png"
	}
	return writeFile(path, func(w *bufio.Writer) error { return png.Encode(w, img) })
}

func runProfile(a *app, args []string) error {
	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	fs.SetOutput(a.out)
	var (
		surface = fs.String("surface", "sphere", "surface ID")
		axis    = fs.String("axis", "x", "profile axis: x, y or z")
		samples = fs.Int("samples", 200, "number of samples")
		output  = fs.String("o", "", "output PNG, defaults to <surface>-<axis>.png")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	def, err := a.definition(*surface)
	if err != nil {
		return err
	}
	from, to, err := volume.AxisSegment(def.Box, *axis)
	if err != nil {
		return err
	}
	xys, err := volume.LineProfile(def.Surface, from, to, *samples)
	if err != nil {
		return err
	}
	path := *output
	if path == "" {
		path = def.ID + "-" + *axis + ".png"
	}
	err = writeFile(path, func(w *bufio.Writer) error {
		return render.WriteProfilePNG(w, xys, def.Name+" along "+*axis)
	})
	if err != nil {
		return err
	}
	return printSampleSummary(a.out, def)
}

// printSampleSummary reports the range of the field over the definition's
// grid and how many cells lie inside the isosurface.
func printSampleSummary(w io.Writer, def isosurface.Definition) error {
	g, err := def.Grid()
	if err != nil {
		return err
	}
	v, err := volume.Materialize(def.Surface, g)
	if err != nil {
		return err
	}
	lo, hi := v.Range()
	_, err = fmt.Fprintf(w, "%s: field range [%.4g, %.4g], %d of %d cells inside at threshold %g\n",
		def.ID, lo, hi, v.Crossings(def.Threshold), g.Cells(), def.Threshold)
	return err
}

func (a *app) definitions() ([]isosurface.Definition, error) {
	return isosurface.Apply(isosurface.Definitions(), a.cfg.IsosurfaceOptions().Overrides)
}

func (a *app) definition(id string) (isosurface.Definition, error) {
	defs, err := a.definitions()
	if err != nil {
		return isosurface.Definition{}, err
	}
	def, ok := isosurface.Lookup(defs, id)
	if !ok {
		return def, fmt.Errorf("unknown surface %q", id)
	}
	return def, nil
}

func (a *app) generate(id string) (*render.Mesh, isosurface.Definition, error) {
	def, err := a.definition(id)
	if err != nil {
		return nil, def, err
	}
	mat := render.NewStandardMaterial(def.ID, render.HexColor(0x3498db), 0.3)
	if def.DoubleSided {
		mat.Side = render.DoubleSide
	}
	mesh, err := isosurface.Generate(def, mat)
	if err != nil {
		return nil, def, err
	}
	a.log.WithFields(logrus.Fields{"surface": def.ID, "vertices": mesh.VertexCount()}).Debug("generated surface")
	return mesh, def, nil
}

func writeFile(path string, write func(w *bufio.Writer) error) error {
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fp.Close()
	w := bufio.NewWriter(fp)
	if err := write(w); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return fp.Close()
}
