package render

import (
	"errors"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// WriteProfilePNG plots field values along a line and writes the chart to w as a PNG.
func WriteProfilePNG(w io.Writer, xys plotter.XYs, title string) error {
	if len(xys) == 0 {
		return errors.New("no profile samples to plot")
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "distance"
	p.Y.Label.Text = "field value"
	line, err := plotter.NewLine(xys)
	if err != nil {
		return err
	}
	zero, err := plotter.NewLine(plotter.XYs{{X: xys[0].X, Y: 0}, {X: xys[len(xys)-1].X, Y: 0}})
	if err != nil {
		return err
	}
	zero.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(plotter.NewGrid(), line, zero)
	wt, err := p.WriterTo(6*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
