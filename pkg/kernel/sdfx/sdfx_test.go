package sdfx

import (
	"math"
	"testing"

	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/geom"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/kernel"
)

func TestBox(t *testing.T) {
	k := New()
	box := k.Box(geom.Vec3{X: 100, Y: 50, Z: 25}, kernel.OriginCorner)
	mesh, err := k.Tessellate(box, 1.0)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	if mesh.VertexCount() == 0 {
		t.Fatal("expected non-zero vertex count")
	}
	triCount := mesh.TriangleCount()
	if triCount == 0 {
		t.Fatal("expected non-zero triangle count")
	}
	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
	}
	if len(mesh.Indices) != triCount*3 {
		t.Fatalf("indices length %d != triCount*3 %d", len(mesh.Indices), triCount*3)
	}
}

func TestTessellateDeduplicatesVertices(t *testing.T) {
	k := New()
	box := k.Box(geom.Vec3{X: 100, Y: 50, Z: 25}, kernel.OriginCorner)
	mesh, err := k.Tessellate(box, 1.0)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	triCount := mesh.TriangleCount()
	if mesh.VertexCount() >= triCount*3 {
		t.Fatalf("VertexCount() = %d, want fewer than triCount*3 = %d (vertices shared across adjacent triangles should be deduplicated)",
			mesh.VertexCount(), triCount*3)
	}
	seen := map[[3]float32]struct{}{}
	for i := 0; i < mesh.VertexCount(); i++ {
		key := [3]float32{mesh.Vertices[i*3], mesh.Vertices[i*3+1], mesh.Vertices[i*3+2]}
		if _, dup := seen[key]; dup {
			t.Fatalf("vertex %d at %v duplicates an earlier vertex's position", i, key)
		}
		seen[key] = struct{}{}
	}
}

func TestCylinder(t *testing.T) {
	k := New()
	cyl := k.Cylinder(10, 50, kernel.OriginCorner)
	mesh, err := k.Tessellate(cyl, 1.0)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	if mesh.TriangleCount() == 0 {
		t.Fatal("expected non-zero triangle count")
	}
}

func TestDifference(t *testing.T) {
	k := New()

	box := k.Box(geom.Vec3{X: 100, Y: 100, Z: 100}, kernel.OriginCorner)
	boxMesh, err := k.Tessellate(box, 1.0)
	if err != nil {
		t.Fatalf("Tessellate(box) failed: %v", err)
	}

	cyl := k.Translate(k.Cylinder(20, 120, kernel.OriginCorner), geom.Vec3{X: 50, Y: 50, Z: 50})
	diff := k.Difference(box, cyl)
	diffMesh, err := k.Tessellate(diff, 1.0)
	if err != nil {
		t.Fatalf("Tessellate(diff) failed: %v", err)
	}
	if diffMesh.IsEmpty() {
		t.Fatal("difference mesh is empty")
	}
	if diffMesh.TriangleCount() <= boxMesh.TriangleCount() {
		t.Fatalf("difference (%d triangles) should have more triangles than box (%d triangles)",
			diffMesh.TriangleCount(), boxMesh.TriangleCount())
	}
}

func TestUnion(t *testing.T) {
	k := New()
	box1 := k.Box(geom.Vec3{X: 50, Y: 50, Z: 50}, kernel.OriginCorner)
	box2 := k.Translate(k.Box(geom.Vec3{X: 50, Y: 50, Z: 50}, kernel.OriginCorner), geom.Vec3{X: 30})
	u := k.Union(box1, box2)
	mesh, err := k.Tessellate(u, 1.0)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("union mesh is empty")
	}
}

func TestTranslate(t *testing.T) {
	k := New()
	box := k.Box(geom.Vec3{X: 10, Y: 10, Z: 10}, kernel.OriginCorner)
	translated := k.Translate(box, geom.Vec3{X: 100, Y: 200, Z: 300})

	min, max := translated.BoundingBox()

	const tol = 0.5
	expectMin := geom.Vec3{X: 100, Y: 200, Z: 300}
	expectMax := geom.Vec3{X: 110, Y: 210, Z: 310}

	if !min.ApproxEqual(expectMin, tol) {
		t.Errorf("min = %v, expected ~%v", min, expectMin)
	}
	if !max.ApproxEqual(expectMax, tol) {
		t.Errorf("max = %v, expected ~%v", max, expectMax)
	}
}

func TestBoundingBox(t *testing.T) {
	k := New()
	box := k.Box(geom.Vec3{X: 100, Y: 50, Z: 25}, kernel.OriginCorner)
	min, max := box.BoundingBox()

	const tol = 0.01
	if !min.ApproxEqual(geom.Vec3{}, tol) {
		t.Errorf("min = %v, expected zero", min)
	}
	if !max.ApproxEqual(geom.Vec3{X: 100, Y: 50, Z: 25}, tol) {
		t.Errorf("max = %v, expected (100,50,25)", max)
	}
}

func TestIntersection(t *testing.T) {
	k := New()
	box1 := k.Box(geom.Vec3{X: 100, Y: 100, Z: 100}, kernel.OriginCorner)
	box2 := k.Translate(k.Box(geom.Vec3{X: 100, Y: 100, Z: 100}, kernel.OriginCorner), geom.Vec3{X: 50})
	inter := k.Intersection(box1, box2)
	mesh, err := k.Tessellate(inter, 1.0)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("intersection mesh is empty")
	}
}

func TestTransformRotation(t *testing.T) {
	k := New()
	box := k.Box(geom.Vec3{X: 100, Y: 10, Z: 10}, kernel.OriginCorner)

	// A long box along X rotated 90 degrees around Z should extend along Y instead.
	rotated := k.Transform(box, geom.RotationAbout(geom.WorldZ, math.Pi/2, geom.Vec3{}))
	min, max := rotated.BoundingBox()

	xExtent := max.X - min.X
	yExtent := max.Y - min.Y

	const tol = 1.0
	if math.Abs(xExtent-10) > tol {
		t.Errorf("rotated X extent = %f, expected ~10", xExtent)
	}
	if math.Abs(yExtent-100) > tol {
		t.Errorf("rotated Y extent = %f, expected ~100", yExtent)
	}
}

func TestSphereBoundingBox(t *testing.T) {
	k := New()
	s := k.Sphere(5)
	min, max := s.BoundingBox()
	if !min.ApproxEqual(geom.Vec3{X: -5, Y: -5, Z: -5}, 0.01) {
		t.Errorf("min = %v, want (-5,-5,-5)", min)
	}
	if !max.ApproxEqual(geom.Vec3{X: 5, Y: 5, Z: 5}, 0.01) {
		t.Errorf("max = %v, want (5,5,5)", max)
	}
}

func TestSelectFacesAxial(t *testing.T) {
	k := New()
	box := k.Box(geom.Vec3{X: 10, Y: 20, Z: 30}, kernel.OriginCorner)
	faces, err := k.SelectFaces(box, ">Z")
	if err != nil {
		t.Fatalf("SelectFaces(>Z) error = %v", err)
	}
	if len(faces) != 1 {
		t.Fatalf("SelectFaces(>Z) = %d faces, want 1", len(faces))
	}
	normal := k.FaceNormal(faces[0])
	if !normal.ApproxEqual(geom.WorldZ, 1e-9) {
		t.Errorf("FaceNormal(>Z) = %v, want +Z", normal)
	}
	center := k.FaceCenter(faces[0])
	if !center.ApproxEqual(geom.Vec3{X: 5, Y: 10, Z: 30}, 1e-9) {
		t.Errorf("FaceCenter(>Z) = %v, want (5,10,30)", center)
	}
}

func TestSelectFacesUnsupportedSelector(t *testing.T) {
	k := New()
	box := k.Box(geom.Vec3{X: 10, Y: 10, Z: 10}, kernel.OriginCorner)
	if _, err := k.SelectFaces(box, "parallel(Z)"); err == nil {
		t.Fatal("expected an error for an unsupported selector")
	}
}
