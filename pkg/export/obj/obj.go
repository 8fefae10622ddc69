// Package obj writes a Wavefront OBJ mesh, with an optional MTL sidecar
// giving each part a material. Nothing in the dependency set reads or
// writes OBJ; it's a line-oriented text format documented well enough
// that this is a direct implementation against that grammar rather than
// a library wrapper.
package obj

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/color"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/kernel"
)

// Part is one exported solid: its mesh, and the material name referenced
// via usemtl (empty means no material is emitted for this part).
type Part struct {
	Name     string
	Mesh     *kernel.Mesh
	Material string
}

// Write encodes parts as a single Wavefront OBJ to w. Vertex indices are
// file-global and 1-based, per the format; each part is emitted as its
// own "o" group so a reader can still separate them. mtlFile, if
// non-empty, is referenced via a leading "mtllib" line.
func Write(w io.Writer, parts []Part, mtlFile string) error {
	if len(parts) == 0 {
		return fmt.Errorf("obj: no parts to export")
	}
	bw := newErrWriter(w)

	if mtlFile != "" {
		bw.printf("mtllib %s\n", mtlFile)
	}

	vertexBase := 1 // OBJ indices are 1-based
	for _, p := range parts {
		if p.Mesh == nil || p.Mesh.IsEmpty() {
			return fmt.Errorf("obj: part %q has no geometry", p.Name)
		}
		bw.printf("o %s\n", sanitizeName(p.Name))

		hasNormals := len(p.Mesh.Normals) == len(p.Mesh.Vertices)
		for i := 0; i < p.Mesh.VertexCount(); i++ {
			o := i * 3
			bw.printf("v %g %g %g\n", p.Mesh.Vertices[o], p.Mesh.Vertices[o+1], p.Mesh.Vertices[o+2])
		}
		if hasNormals {
			for i := 0; i < p.Mesh.VertexCount(); i++ {
				o := i * 3
				bw.printf("vn %g %g %g\n", p.Mesh.Normals[o], p.Mesh.Normals[o+1], p.Mesh.Normals[o+2])
			}
		}
		if p.Material != "" {
			bw.printf("usemtl %s\n", sanitizeName(p.Material))
		}
		for t := 0; t < p.Mesh.TriangleCount(); t++ {
			i0 := vertexBase + int(p.Mesh.Indices[t*3])
			i1 := vertexBase + int(p.Mesh.Indices[t*3+1])
			i2 := vertexBase + int(p.Mesh.Indices[t*3+2])
			if hasNormals {
				bw.printf("f %d//%d %d//%d %d//%d\n", i0, i0, i1, i1, i2, i2)
			} else {
				bw.printf("f %d %d %d\n", i0, i1, i2)
			}
		}
		vertexBase += p.Mesh.VertexCount()
	}
	return bw.err
}

// MTLMaterial is one named entry in a .mtl sidecar.
type MTLMaterial struct {
	Name  string
	Color color.RGBA
}

// WriteMTL encodes materials as a Wavefront MTL file to w.
func WriteMTL(w io.Writer, materials []MTLMaterial) error {
	bw := newErrWriter(w)
	for _, m := range materials {
		bw.printf("newmtl %s\n", sanitizeName(m.Name))
		bw.printf("Kd %g %g %g\n", m.Color.R, m.Color.G, m.Color.B)
		bw.printf("d %g\n", opacityOf(m.Color))
		bw.printf("illum 2\n")
	}
	return bw.err
}

func opacityOf(c color.RGBA) float64 {
	if c.A == 0 {
		return 1
	}
	return c.A
}

// WriteFiles writes parts and (if any part names a material) an adjacent
// .mtl file, both derived from basePath (".obj"/".mtl" are appended).
func WriteFiles(basePath string, parts []Part, materials []MTLMaterial) error {
	objPath := basePath + ".obj"
	mtlPath := basePath + ".mtl"
	mtlFile := ""
	if len(materials) > 0 {
		mtlFile = mtlBaseName(mtlPath)
	}

	f, err := os.Create(objPath)
	if err != nil {
		return fmt.Errorf("obj: %w", err)
	}
	if err := Write(f, parts, mtlFile); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	if len(materials) == 0 {
		return nil
	}
	mf, err := os.Create(mtlPath)
	if err != nil {
		return fmt.Errorf("obj: %w", err)
	}
	if err := WriteMTL(mf, materials); err != nil {
		mf.Close()
		return err
	}
	return mf.Close()
}

func mtlBaseName(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

// sanitizeName replaces whitespace, which OBJ's whitespace-delimited
// grammar can't carry in a name token.
func sanitizeName(name string) string {
	return strings.Join(strings.Fields(name), "_")
}

// errWriter collapses repeated write-error checks into one deferred
// check, mirroring the registry/diag report-accumulation style used
// elsewhere in the compiler.
type errWriter struct {
	w   io.Writer
	err error
}

func newErrWriter(w io.Writer) *errWriter { return &errWriter{w: w} }

func (e *errWriter) printf(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
