package main

import (
	"strings"
	"testing"

	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/build"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/spatial"
)

const boxDoc = `
schema_version: "1.0"
parts:
  box:
    type: box
    size: [10, 10, 10]
    origin_mode: center
export:
  default_part: box
  formats:
    - format: stl
      path: box.stl
`

func mustCompile(t *testing.T, src string) *build.CompileResult {
	t.Helper()
	d, report, ok := loadDocumentFromBytes([]byte(src))
	if !ok {
		t.Fatalf("loadDocumentFromBytes: %v", report.Errors)
	}
	result, ok := compileWithKernel(d, stubKernel{})
	if !ok {
		t.Fatalf("compile failed: %v", result.Report.Errors)
	}
	return result
}

func TestCompileWithKernelSimpleBox(t *testing.T) {
	result := mustCompile(t, boxDoc)
	if len(result.Registry.Names()) != 1 {
		t.Fatalf("expected 1 part, got %d", len(result.Registry.Names()))
	}
	if result.ExportPart != "box" {
		t.Errorf("ExportPart = %q, want box", result.ExportPart)
	}
}

func TestPartKindName(t *testing.T) {
	tests := []struct {
		kind spatial.PartKind
		want string
	}{
		{spatial.KindBox, "box"},
		{spatial.KindCylinder, "cylinder"},
		{spatial.KindSphere, "sphere"},
		{spatial.KindCone, "cone"},
		{spatial.KindOther, "other"},
	}
	for _, tt := range tests {
		if got := partKindName(tt.kind); got != tt.want {
			t.Errorf("partKindName(%v) = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestLoadDocumentMissingFile(t *testing.T) {
	_, report, ok := loadDocument("/nonexistent/path/does-not-exist.yaml")
	if ok {
		t.Fatal("expected loadDocument to fail for a missing file")
	}
	if report.OK() {
		t.Fatal("expected a non-OK report for a missing file")
	}
}

func TestExportFormatUnknownFormat(t *testing.T) {
	result := mustCompile(t, boxDoc)
	err := exportFormat(result, stubKernel{}, "dxf", "/dev/null", []string{"box"}, 0.1)
	if err == nil {
		t.Fatal("expected an error for an unsupported export format")
	}
	if !strings.Contains(err.Error(), "dxf") {
		t.Errorf("expected the error to name the unsupported format, got: %v", err)
	}
}
