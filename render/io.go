package render

import (
	"errors"
	"io"
)

// RenderAll drains r and returns every triangle it produced. Reaching io.EOF
// is not an error.
func RenderAll(r Renderer) ([]Triangle3, error) {
	result := make([]Triangle3, 0, 1<<12)
	buf := make([]Triangle3, 1024)
	for {
		n, err := r.ReadTriangles(buf)
		result = append(result, buf[:n]...)
		if errors.Is(err, io.EOF) {
			return result, nil
		} else if err != nil {
			return result, err
		}
	}
}

// triangleQueue is a FIFO of triangles that implements Renderer.
type triangleQueue struct {
	buf []Triangle3
}

func (q *triangleQueue) ReadTriangles(t []Triangle3) (int, error) {
	if len(q.buf) == 0 {
		return 0, io.EOF
	}
	n := copy(t, q.buf)
	q.buf = q.buf[n:]
	return n, nil
}

func (q *triangleQueue) push(t ...Triangle3) { q.buf = append(q.buf, t...) }

func (q *triangleQueue) Len() int { return len(q.buf) }

// reset empties the queue keeping its backing array.
func (q *triangleQueue) reset() { q.buf = q.buf[:0] }
