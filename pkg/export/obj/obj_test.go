package obj

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/color"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/kernel"
)

func triMesh() *kernel.Mesh {
	return &kernel.Mesh{
		PartName: "wedge",
		Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Normals:  []float32{0, 0, 1, 0, 0, 1, 0, 0, 1},
		Indices:  []uint32{0, 1, 2},
	}
}

func TestWriteSingleTriangle(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, []Part{{Name: "wedge", Mesh: triMesh()}}, ""); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "o wedge\n") {
		t.Error("expected an o group for the part")
	}
	if strings.Count(out, "v ") != 3 {
		t.Errorf("expected 3 vertex lines, got output: %q", out)
	}
	if !strings.Contains(out, "f 1//1 2//2 3//3\n") {
		t.Errorf("expected a 1-based normal-indexed face line, got: %q", out)
	}
}

func TestWriteGlobalVertexOffsetAcrossParts(t *testing.T) {
	var buf bytes.Buffer
	parts := []Part{
		{Name: "a", Mesh: triMesh()},
		{Name: "b", Mesh: triMesh()},
	}
	if err := Write(&buf, parts, ""); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "f 4//4 5//5 6//6\n") {
		t.Errorf("expected the second part's face indices to continue from the first's vertex count, got: %q", out)
	}
}

func TestWriteEmptyPartsIsError(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, nil, ""); err == nil {
		t.Fatal("expected an error for an empty part list")
	}
}

func TestWriteMtllibReference(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, []Part{{Name: "wedge", Mesh: triMesh(), Material: "aluminum"}}, "model.mtl"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "mtllib model.mtl\n") {
		t.Error("expected a leading mtllib reference")
	}
	if !strings.Contains(out, "usemtl aluminum\n") {
		t.Error("expected a usemtl line for the part's material")
	}
}

func TestWriteMTLMaterialEntry(t *testing.T) {
	var buf bytes.Buffer
	err := WriteMTL(&buf, []MTLMaterial{{Name: "aluminum", Color: color.Opaque(0.83, 0.84, 0.85)}})
	if err != nil {
		t.Fatalf("WriteMTL() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "newmtl aluminum\n") {
		t.Error("expected a newmtl entry")
	}
	if !strings.Contains(out, "d 1\n") {
		t.Errorf("expected an opaque material's opacity to be 1, got: %q", out)
	}
}
