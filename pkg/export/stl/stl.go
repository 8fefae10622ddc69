// Package stl writes a kernel.Mesh as binary STL.
//
// No library in the dependency set reads or writes STL — it's a small,
// stable binary format with a 50-year-old fixed layout — so this is a
// direct encoding/binary implementation against the documented format:
// an 80-byte header, a little-endian uint32 triangle count, then per
// triangle a float32 normal, three float32 vertices, and a uint16
// attribute byte count that every consumer ignores.
package stl

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/kernel"
)

const headerSize = 80

// Write encodes mesh as binary STL to w. header is truncated or
// zero-padded to 80 bytes; an empty header is filled with the mesh's
// part name.
func Write(w io.Writer, mesh *kernel.Mesh, header string) error {
	if mesh.IsEmpty() {
		return fmt.Errorf("stl: mesh %q has no geometry", mesh.PartName)
	}
	if header == "" {
		header = "tiacad export: " + mesh.PartName
	}
	buf := make([]byte, headerSize)
	copy(buf, header)
	if _, err := w.Write(buf); err != nil {
		return err
	}

	triCount := uint32(mesh.TriangleCount())
	if err := binary.Write(w, binary.LittleEndian, triCount); err != nil {
		return err
	}

	var rec [50]byte
	for t := 0; t < int(triCount); t++ {
		i0 := mesh.Indices[t*3]
		i1 := mesh.Indices[t*3+1]
		i2 := mesh.Indices[t*3+2]

		putVec3(rec[0:12], faceNormal(mesh, i0, i1, i2, t))
		putVec3(rec[12:24], vertex(mesh, i0))
		putVec3(rec[24:36], vertex(mesh, i1))
		putVec3(rec[36:48], vertex(mesh, i2))
		rec[48], rec[49] = 0, 0

		if _, err := w.Write(rec[:]); err != nil {
			return err
		}
	}
	return nil
}

// WriteFile writes mesh as binary STL to path.
func WriteFile(path string, mesh *kernel.Mesh, header string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("stl: %w", err)
	}
	if err := Write(f, mesh, header); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func vertex(mesh *kernel.Mesh, i uint32) [3]float32 {
	o := i * 3
	return [3]float32{mesh.Vertices[o], mesh.Vertices[o+1], mesh.Vertices[o+2]}
}

// faceNormal prefers the mesh's own per-vertex normal (averaged across
// the triangle's three corners); it falls back to the geometric normal
// when the mesh carries none, which a degenerate or stub backend may
// produce.
func faceNormal(mesh *kernel.Mesh, i0, i1, i2 uint32, triangle int) [3]float32 {
	if len(mesh.Normals) >= int(i0+1)*3 && len(mesh.Normals) >= int(i2+1)*3 {
		n0 := normalAt(mesh, i0)
		n1 := normalAt(mesh, i1)
		n2 := normalAt(mesh, i2)
		avg := [3]float32{
			(n0[0] + n1[0] + n2[0]) / 3,
			(n0[1] + n1[1] + n2[1]) / 3,
			(n0[2] + n1[2] + n2[2]) / 3,
		}
		if l := length(avg); l > 1e-9 {
			return [3]float32{avg[0] / l, avg[1] / l, avg[2] / l}
		}
	}
	v0, v1, v2 := vertex(mesh, i0), vertex(mesh, i1), vertex(mesh, i2)
	e1 := sub(v1, v0)
	e2 := sub(v2, v0)
	n := cross(e1, e2)
	if l := length(n); l > 1e-9 {
		return [3]float32{n[0] / l, n[1] / l, n[2] / l}
	}
	return [3]float32{}
}

func normalAt(mesh *kernel.Mesh, i uint32) [3]float32 {
	o := i * 3
	return [3]float32{mesh.Normals[o], mesh.Normals[o+1], mesh.Normals[o+2]}
}

func sub(a, b [3]float32) [3]float32 {
	return [3]float32{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func cross(a, b [3]float32) [3]float32 {
	return [3]float32{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func length(v [3]float32) float32 {
	return float32(math.Sqrt(float64(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])))
}

func putVec3(dst []byte, v [3]float32) {
	binary.LittleEndian.PutUint32(dst[0:4], math.Float32bits(v[0]))
	binary.LittleEndian.PutUint32(dst[4:8], math.Float32bits(v[1]))
	binary.LittleEndian.PutUint32(dst[8:12], math.Float32bits(v[2]))
}
