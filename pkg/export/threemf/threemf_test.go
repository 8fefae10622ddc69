package threemf

import (
	"bytes"
	"testing"

	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/color"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/kernel"
)

func boxMesh(name string) *kernel.Mesh {
	return &kernel.Mesh{
		PartName: name,
		Vertices: []float32{
			0, 0, 0,
			1, 0, 0,
			1, 1, 0,
			0, 1, 0,
		},
		Normals: []float32{
			0, 0, 1,
			0, 0, 1,
			0, 0, 1,
			0, 0, 1,
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}

func TestWriteNoPartsIsError(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, nil); err == nil {
		t.Fatal("expected an error for an empty part list")
	}
}

func TestWriteEmptyMeshIsError(t *testing.T) {
	var buf bytes.Buffer
	parts := []Part{{Name: "empty", Mesh: &kernel.Mesh{}}}
	if err := Write(&buf, parts); err == nil {
		t.Fatal("expected an error for a part with no geometry")
	}
}

func TestWriteDedupesIdenticalMaterial(t *testing.T) {
	var buf bytes.Buffer
	parts := []Part{
		{Name: "base", Mesh: boxMesh("base"), Color: color.Opaque(0.5, 0.5, 0.5), Material: "aluminum"},
		{Name: "lid", Mesh: boxMesh("lid"), Color: color.Opaque(0.5, 0.5, 0.5), Material: "aluminum"},
	}
	if err := Write(&buf, parts); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected archive bytes to be written")
	}
}

func TestWriteDistinctMaterialsProduceDistinctEntries(t *testing.T) {
	var buf bytes.Buffer
	parts := []Part{
		{Name: "base", Mesh: boxMesh("base"), Color: color.Opaque(0.83, 0.84, 0.85), Material: "aluminum"},
		{Name: "gasket", Mesh: boxMesh("gasket"), Color: color.Opaque(0.08, 0.08, 0.08), Material: "tpu-flexible"},
	}
	if err := Write(&buf, parts); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
}
