package step

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/geom"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/kernel"
)

func triangleMesh() *kernel.Mesh {
	return &kernel.Mesh{
		PartName: "wedge",
		Vertices: []float32{
			0, 0, 0,
			1, 0, 0,
			0, 1, 0,
		},
		Indices: []uint32{0, 1, 2},
	}
}

func TestWriteProducesHeaderDataFooter(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, triangleMesh(), "wedge"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "ISO-10303-21;\n") {
		t.Error("expected file to start with the ISO-10303-21 header")
	}
	if !strings.Contains(out, "DATA;\n") {
		t.Error("expected a DATA section")
	}
	if !strings.Contains(out, "ADVANCED_FACE(") {
		t.Error("expected at least one ADVANCED_FACE entity for the triangle")
	}
	if !strings.HasSuffix(out, "END-ISO-10303-21;\n") {
		t.Error("expected file to end with the END-ISO-10303-21 footer")
	}
}

func TestWriteEmptyMeshIsError(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, &kernel.Mesh{}, "empty"); err == nil {
		t.Fatal("expected an error for an empty mesh")
	}
}

func TestMeshConverterDedupesSharedVertex(t *testing.T) {
	tris := []triangle{
		{v0: geom.Vec3{}, v1: geom.Vec3{X: 1}, v2: geom.Vec3{Y: 1}},
		{v0: geom.Vec3{}, v1: geom.Vec3{Y: 1}, v2: geom.Vec3{X: -1}},
	}
	c := newMeshConverter()
	c.convert(tris, "shared")
	if got := len(c.pointCache); got != 4 {
		t.Errorf("distinct points = %d, want 4 (origin shared by both triangles)", got)
	}
}

func TestMeshConverterSkipsDegenerateTriangle(t *testing.T) {
	tris := []triangle{
		{v0: geom.Vec3{}, v1: geom.Vec3{X: 1}, v2: geom.Vec3{X: 2}}, // collinear
	}
	c := newMeshConverter()
	entities := c.convert(tris, "degenerate")
	for _, e := range entities {
		if _, ok := e.(*advancedFace); ok {
			t.Fatal("expected the degenerate triangle to produce no ADVANCED_FACE")
		}
	}
}
