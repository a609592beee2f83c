package render

import (
	"bufio"
	"fmt"
	"io"
)

// WriteOBJ writes model as a Wavefront OBJ with shared vertices. Vertices
// closer than tol are merged.
func WriteOBJ(w io.Writer, model []Triangle3, tol float64) error {
	if len(model) == 0 {
		return errEmptyModel
	}
	vertices, faces := Weld(model, tol)
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %d vertices, %d faces\n", len(vertices), len(faces))
	for _, v := range vertices {
		fmt.Fprintf(bw, "v %g %g %g\n", v.X, v.Y, v.Z)
	}
	for _, f := range faces {
		// OBJ indices start at 1.
		fmt.Fprintf(bw, "f %d %d %d\n", f[0]+1, f[1]+1, f[2]+1)
	}
	return bw.Flush()
}
