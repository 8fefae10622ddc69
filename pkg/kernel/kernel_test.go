package kernel

import (
	"testing"

	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/geom"
)

// --- Mesh helper method tests ---

func TestMeshVertexCount(t *testing.T) {
	tests := []struct {
		name     string
		vertices []float32
		want     int
	}{
		{"empty", nil, 0},
		{"one vertex", []float32{1, 2, 3}, 1},
		{"four vertices", []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices}
			if got := m.VertexCount(); got != tt.want {
				t.Errorf("VertexCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshTriangleCount(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint32
		want    int
	}{
		{"empty", nil, 0},
		{"one triangle", []uint32{0, 1, 2}, 1},
		{"two triangles", []uint32{0, 1, 2, 2, 3, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Indices: tt.indices}
			if got := m.TriangleCount(); got != tt.want {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshIsEmpty(t *testing.T) {
	t.Run("empty mesh", func(t *testing.T) {
		m := &Mesh{}
		if !m.IsEmpty() {
			t.Error("IsEmpty() = false for empty mesh, want true")
		}
	})
	t.Run("non-empty mesh", func(t *testing.T) {
		m := &Mesh{Vertices: []float32{1, 2, 3}}
		if m.IsEmpty() {
			t.Error("IsEmpty() = true for non-empty mesh, want false")
		}
	})
}

// --- Compile-time interface check with a stub kernel ---
//
// stubKernel proves the expanded Kernel interface is satisfiable, and backs
// registry/operation-engine/exporter tests elsewhere so geometry semantics
// can be tested without invoking a real backend's tessellation.

type stubSolid struct {
	min, max geom.Vec3
}

func (s *stubSolid) BoundingBox() (min, max geom.Vec3) {
	return s.min, s.max
}

type stubSketch struct {
	min, max [2]float64
}

func (s *stubSketch) Bounds() (min, max [2]float64) {
	return s.min, s.max
}

type stubFace struct{ center, normal geom.Vec3 }
type stubEdge struct{ start, end geom.Vec3 }

// stubKernel is a minimal Kernel implementation used for testing
// orchestration code without a real CAD backend.
type stubKernel struct{}

func (k *stubKernel) Box(size geom.Vec3, origin OriginMode) Solid {
	if origin == OriginCenter {
		half := size.Scale(0.5)
		return &stubSolid{min: half.Scale(-1), max: half}
	}
	return &stubSolid{min: geom.Vec3{}, max: size}
}

func (k *stubKernel) Cylinder(radius, height float64, origin OriginMode) Solid {
	min := geom.Vec3{X: -radius, Y: -radius, Z: 0}
	max := geom.Vec3{X: radius, Y: radius, Z: height}
	if origin == OriginCenter {
		min.Z, max.Z = -height/2, height/2
	}
	return &stubSolid{min: min, max: max}
}

func (k *stubKernel) Sphere(radius float64) Solid {
	r := geom.Vec3{X: radius, Y: radius, Z: radius}
	return &stubSolid{min: r.Scale(-1), max: r}
}

func (k *stubKernel) Cone(radius1, radius2, height float64) Solid {
	r := radius1
	if radius2 > r {
		r = radius2
	}
	return &stubSolid{min: geom.Vec3{X: -r, Y: -r}, max: geom.Vec3{X: r, Y: r, Z: height}}
}

func (k *stubKernel) Torus(major, minor float64) Solid {
	r := major + minor
	return &stubSolid{min: geom.Vec3{X: -r, Y: -r, Z: -minor}, max: geom.Vec3{X: r, Y: r, Z: minor}}
}

func (k *stubKernel) Extrude(sketch Sketch, distance float64, direction geom.Vec3) (Solid, error) {
	min, max := sketch.Bounds()
	return &stubSolid{
		min: geom.Vec3{X: min[0], Y: min[1], Z: 0},
		max: geom.Vec3{X: max[0], Y: max[1], Z: distance},
	}, nil
}

func (k *stubKernel) Revolve(sketch Sketch, axis geom.Vec3, angle float64) (Solid, error) {
	min, max := sketch.Bounds()
	return &stubSolid{min: geom.Vec3{X: min[0], Y: min[1]}, max: geom.Vec3{X: max[0], Y: max[1]}}, nil
}

func (k *stubKernel) Sweep(sketch Sketch, path []geom.Vec3) (Solid, error) {
	return &stubSolid{}, nil
}

func (k *stubKernel) Loft(profiles []Sketch, ruled bool) (Solid, error) {
	return &stubSolid{}, nil
}

func (k *stubKernel) Union(solids ...Solid) Solid {
	if len(solids) == 0 {
		return &stubSolid{}
	}
	return solids[0]
}

func (k *stubKernel) Difference(base Solid, subtract ...Solid) Solid { return base }

func (k *stubKernel) Intersection(solids ...Solid) Solid {
	if len(solids) == 0 {
		return &stubSolid{}
	}
	return solids[0]
}

func (k *stubKernel) Hull(solids []Solid, tolerance float64) (Solid, error) {
	if len(solids) == 0 {
		return &stubSolid{}, nil
	}
	return solids[0], nil
}

func (k *stubKernel) Fillet(s Solid, edges []Edge, radius float64) (Solid, error) { return s, nil }
func (k *stubKernel) Chamfer(s Solid, edges []Edge, length float64, length2 *float64) (Solid, error) {
	return s, nil
}
func (k *stubKernel) Shell(s Solid, faces []Face, thickness float64) (Solid, error) { return s, nil }

func (k *stubKernel) Translate(s Solid, v geom.Vec3) Solid {
	ss := s.(*stubSolid)
	return &stubSolid{min: ss.min.Add(v), max: ss.max.Add(v)}
}

func (k *stubKernel) Transform(s Solid, m geom.Mat4) Solid {
	ss := s.(*stubSolid)
	return &stubSolid{min: m.Apply(ss.min), max: m.Apply(ss.max)}
}

func (k *stubKernel) SelectFaces(s Solid, selector string) ([]Face, error) {
	return []Face{&stubFace{}}, nil
}

func (k *stubKernel) SelectEdges(s Solid, selector string) ([]Edge, error) {
	return []Edge{&stubEdge{}}, nil
}

func (k *stubKernel) FaceCenter(f Face) geom.Vec3 { return f.(*stubFace).center }
func (k *stubKernel) FaceNormal(f Face) geom.Vec3 { return f.(*stubFace).normal }
func (k *stubKernel) EdgePointAt(e Edge, t float64) geom.Vec3 {
	se := e.(*stubEdge)
	return se.start.Add(se.end.Sub(se.start).Scale(t))
}
func (k *stubKernel) EdgeTangentAt(e Edge, t float64) geom.Vec3 {
	se := e.(*stubEdge)
	return se.end.Sub(se.start).Normalize()
}

func (k *stubKernel) Tessellate(s Solid, tolerance float64) (*Mesh, error) {
	return &Mesh{}, nil
}

// Compile-time checks that the stubs implement the interfaces.
var _ Solid = (*stubSolid)(nil)
var _ Sketch = (*stubSketch)(nil)
var _ Kernel = (*stubKernel)(nil)

func TestStubKernelBoxBoundingBox(t *testing.T) {
	var k Kernel = &stubKernel{}
	s := k.Box(geom.Vec3{X: 10, Y: 20, Z: 30}, OriginCorner)
	min, max := s.BoundingBox()
	if min != (geom.Vec3{}) {
		t.Errorf("Box min = %v, want zero", min)
	}
	if max != (geom.Vec3{X: 10, Y: 20, Z: 30}) {
		t.Errorf("Box max = %v, want (10,20,30)", max)
	}
}

func TestStubKernelToMesh(t *testing.T) {
	var k Kernel = &stubKernel{}
	s := k.Box(geom.Vec3{X: 1, Y: 1, Z: 1}, OriginCorner)
	m, err := k.Tessellate(s, 0.1)
	if err != nil {
		t.Fatalf("Tessellate() error = %v", err)
	}
	if m == nil {
		t.Fatal("Tessellate() returned nil mesh")
	}
	if !m.IsEmpty() {
		t.Error("stub Tessellate() should return an empty mesh")
	}
}
