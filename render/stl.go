package render

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chewxy/math32"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	stlHeaderSize = 80
	stlRecordSize = 50
	// stlNormalTol is the per component tolerance when checking stored normals.
	stlNormalTol = 5e-2
	// maxNormalMismatches aborts reading files whose normals are mostly wrong.
	maxNormalMismatches = 10_000
)

var errEmptyModel = errors.New("empty triangle slice")

// ErrNormalMismatch is returned by ReadSTL when a stored triangle normal is not
// approximately equal to the normal calculated from its vertices.
var ErrNormalMismatch = errors.New("stored STL normal differs from normal calculated from vertices")

// CreateSTL streams the triangles read from r into a binary STL file at path.
// The triangle count in the header is filled in after r is drained.
func CreateSTL(path string, r Renderer) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	if _, err = file.Seek(stlHeaderSize+4, io.SeekStart); err != nil {
		return err
	}
	bw := bufio.NewWriterSize(file, 1<<16)
	var (
		buf   = make([]Triangle3, 1024)
		rec   [stlRecordSize]byte
		count uint32
	)
	for {
		n, rerr := r.ReadTriangles(buf)
		for _, t := range buf[:n] {
			recordFromTriangle(t).encode(rec[:])
			if _, err = bw.Write(rec[:]); err != nil {
				return err
			}
		}
		count += uint32(n)
		if errors.Is(rerr, io.EOF) {
			break
		} else if rerr != nil {
			return rerr
		}
	}
	if count == 0 {
		return errEmptyModel
	}
	if err = bw.Flush(); err != nil {
		return err
	}
	var header [stlHeaderSize + 4]byte
	binary.LittleEndian.PutUint32(header[stlHeaderSize:], count)
	_, err = file.WriteAt(header[:], 0)
	return err
}

// WriteSTL writes model to w in binary STL format.
func WriteSTL(w io.Writer, model []Triangle3) error {
	if len(model) == 0 {
		return errEmptyModel
	}
	bw := bufio.NewWriter(w)
	var header [stlHeaderSize + 4]byte
	binary.LittleEndian.PutUint32(header[stlHeaderSize:], uint32(len(model)))
	bw.Write(header[:])
	var rec [stlRecordSize]byte
	for _, t := range model {
		recordFromTriangle(t).encode(rec[:])
		bw.Write(rec[:])
	}
	return bw.Flush()
}

// ReadSTL reads a binary STL model. Triangles whose stored normal disagrees with
// the normal calculated from their vertices are still returned, alongside an error
// wrapping ErrNormalMismatch.
func ReadSTL(r io.Reader) ([]Triangle3, error) {
	return readBinarySTL(r)
}

func readBinarySTL(r io.Reader) ([]Triangle3, error) {
	var header [stlHeaderSize + 4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("reading STL header: %w", err)
	}
	count := binary.LittleEndian.Uint32(header[stlHeaderSize:])
	if count == 0 {
		return nil, errors.New("STL header indicates 0 triangles present")
	}
	var (
		rec        [stlRecordSize]byte
		model      = make([]Triangle3, 0, min(count, 1<<20))
		mismatches int
	)
	for i := uint32(0); i < count; i++ {
		if _, err := io.ReadFull(r, rec[:]); err != nil {
			return nil, fmt.Errorf("%d/%d STL triangles read: %w", i, count, err)
		}
		var d stlRecord
		d.decode(rec[:])
		err := d.validate()
		switch {
		case errors.Is(err, ErrNormalMismatch):
			mismatches++
			if mismatches > maxNormalMismatches {
				return model, fmt.Errorf("got too many normal vector mismatches (%d)", mismatches)
			}
		case err != nil:
			return nil, fmt.Errorf("STL triangle %d: %w", i, err)
		}
		model = append(model, d.triangle())
	}
	if mismatches > 0 {
		return model, fmt.Errorf("%d of %d triangles: %w", mismatches, count, ErrNormalMismatch)
	}
	return model, nil
}

// stlRecord holds the normal followed by the three vertices of an STL facet.
type stlRecord [4][3]float32

func recordFromTriangle(t Triangle3) (d stlRecord) {
	d[0] = f32(t.Normal())
	for i, v := range t.V {
		d[i+1] = f32(v)
	}
	return d
}

func (d stlRecord) triangle() Triangle3 {
	return Triangle3{V: [3]r3.Vec{vec(d[1]), vec(d[2]), vec(d[3])}}
}

// encode writes the record to b. The attribute byte count is always zero.
func (d stlRecord) encode(b []byte) {
	_ = b[stlRecordSize-1]
	for i, v := range d {
		for j, f := range v {
			binary.LittleEndian.PutUint32(b[12*i+4*j:], math32.Float32bits(f))
		}
	}
	binary.LittleEndian.PutUint16(b[48:], 0)
}

func (d *stlRecord) decode(b []byte) {
	_ = b[stlRecordSize-1]
	for i := range d {
		for j := range d[i] {
			d[i][j] = math32.Float32frombits(binary.LittleEndian.Uint32(b[12*i+4*j:]))
		}
	}
}

func (d stlRecord) validate() error {
	for i, v := range d {
		if !finite32(v) {
			if i == 0 {
				return errors.New("inf/NaN STL triangle normal")
			}
			return errors.New("inf/NaN STL triangle vertex")
		}
	}
	const degenerateTol = 1e-12
	if near32(d[1], d[2], degenerateTol) || near32(d[2], d[3], degenerateTol) || near32(d[3], d[1], degenerateTol) {
		return errors.New("triangle is degenerate")
	}
	// Vertices are scaled up so tiny facets still yield a usable cross product.
	a, b, c := r3.Scale(10, vec(d[1])), r3.Scale(10, vec(d[2])), r3.Scale(10, vec(d[3]))
	n := r3.Unit(r3.Cross(r3.Sub(b, a), r3.Sub(c, a)))
	calc := f32(n)
	flipped := f32(r3.Scale(-1, n))
	if !near32(calc, d[0], stlNormalTol) && !near32(flipped, d[0], stlNormalTol) {
		return ErrNormalMismatch
	}
	return nil
}

func f32(v r3.Vec) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}

func vec(f [3]float32) r3.Vec {
	return r3.Vec{X: float64(f[0]), Y: float64(f[1]), Z: float64(f[2])}
}

func finite32(f [3]float32) bool {
	for _, x := range f {
		if math32.IsNaN(x) || math32.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func near32(a, b [3]float32, tol float32) bool {
	return math32.Abs(a[0]-b[0]) <= tol &&
		math32.Abs(a[1]-b[1]) <= tol &&
		math32.Abs(a[2]-b[2]) <= tol
}
