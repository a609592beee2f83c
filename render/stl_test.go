package render_test

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/soypat/implicit"
	"github.com/soypat/implicit/render"
)

func TestSTLCreateWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sphere.stl")
	mc := generate(t, implicit.NewSphere(1), 1.2, 20, 0, nil)
	err := render.CreateSTL(path, mc)
	if err != nil {
		t.Fatal(err)
	}
	bfile, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	model := mc.Mesh().Triangles()
	var b bytes.Buffer
	err = render.WriteSTL(&b, model)
	if err != nil {
		t.Fatal(err)
	}
	if b.Len() != len(bfile) {
		t.Fatal("WriteSTL and CreateSTL output length mismatch")
	}
	if b.String() != string(bfile) {
		t.Fatal("WriteSTL and CreateSTL output mismatch")
	}
	read, err := render.ReadSTL(&b)
	if err != nil {
		t.Logf("read with warning: %v", err)
	}
	if len(read) != len(model) {
		t.Errorf("read %d triangles, want %d", len(read), len(model))
	}
}

func TestSTLEmpty(t *testing.T) {
	var b bytes.Buffer
	if err := render.WriteSTL(&b, nil); err == nil {
		t.Error("expected error writing empty model")
	}
	mc, _ := render.NewMarchingCubes(4, nil, false, false)
	mc.Update()
	if err := render.CreateSTL(filepath.Join(t.TempDir(), "empty.stl"), mc); err == nil {
		t.Error("expected error creating STL of empty mesh")
	}
}

func TestWriteOBJ(t *testing.T) {
	mc := generate(t, implicit.NewSphere(1), 1.2, 12, 0, nil)
	model := mc.Mesh().Triangles()
	var b bytes.Buffer
	err := render.WriteOBJ(&b, model, 1e-9)
	if err != nil {
		t.Fatal(err)
	}
	vertices, _ := render.Weld(model, 1e-9)
	var nv, nf int
	sc := bufio.NewScanner(&b)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "v "):
			nv++
		case strings.HasPrefix(line, "f "):
			nf++
		}
	}
	if nv != len(vertices) {
		t.Errorf("wrote %d vertices, want %d", nv, len(vertices))
	}
	if nf != len(model) {
		t.Errorf("wrote %d faces, want %d", nf, len(model))
	}
	if nv >= 3*nf {
		t.Errorf("no vertices shared between %d faces", nf)
	}
}
