package build

import (
	"testing"

	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/geom"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/spatial"
)

func TestBuildPrimitiveBoxCorner(t *testing.T) {
	k := &stubKernel{}
	solid, explicit, kind, err := BuildPrimitive(k, "box", map[string]interface{}{
		"size": []interface{}{10.0, 20.0, 30.0},
	})
	if err != nil {
		t.Fatalf("BuildPrimitive() error = %v", err)
	}
	if kind != spatial.KindBox {
		t.Errorf("kind = %v, want KindBox", kind)
	}
	if !explicit.ApproxEqual(geom.Vec3{}, 1e-9) {
		t.Errorf("explicit origin = %v, want zero", explicit)
	}
	min, max := solid.BoundingBox()
	if !min.ApproxEqual(geom.Vec3{}, 1e-9) || !max.ApproxEqual(geom.Vec3{X: 10, Y: 20, Z: 30}, 1e-9) {
		t.Errorf("bounding box = %v..%v", min, max)
	}
}

func TestBuildPrimitiveBoxCenter(t *testing.T) {
	k := &stubKernel{}
	solid, _, _, err := BuildPrimitive(k, "box", map[string]interface{}{
		"size":        []interface{}{10.0, 10.0, 10.0},
		"origin_mode": "center",
	})
	if err != nil {
		t.Fatalf("BuildPrimitive() error = %v", err)
	}
	min, max := solid.BoundingBox()
	if !min.ApproxEqual(geom.Vec3{X: -5, Y: -5, Z: -5}, 1e-9) || !max.ApproxEqual(geom.Vec3{X: 5, Y: 5, Z: 5}, 1e-9) {
		t.Errorf("bounding box = %v..%v, want centered", min, max)
	}
}

func TestBuildPrimitiveExplicitOrigin(t *testing.T) {
	k := &stubKernel{}
	_, explicit, _, err := BuildPrimitive(k, "sphere", map[string]interface{}{
		"radius":      5.0,
		"origin_mode": map[string]interface{}{"explicit": []interface{}{1.0, 2.0, 3.0}},
	})
	if err != nil {
		t.Fatalf("BuildPrimitive() error = %v", err)
	}
	if !explicit.ApproxEqual(geom.Vec3{X: 1, Y: 2, Z: 3}, 1e-9) {
		t.Errorf("explicit origin = %v, want (1,2,3)", explicit)
	}
}

func TestBuildPrimitiveMissingField(t *testing.T) {
	k := &stubKernel{}
	if _, _, _, err := BuildPrimitive(k, "cylinder", map[string]interface{}{"radius": 5.0}); err == nil {
		t.Fatal("expected an error for a missing height field")
	}
}

func TestBuildPrimitiveUnknownType(t *testing.T) {
	k := &stubKernel{}
	if _, _, _, err := BuildPrimitive(k, "dodecahedron", map[string]interface{}{}); err == nil {
		t.Fatal("expected an error for an unknown primitive type")
	}
}

func TestBuildPrimitiveConeAndTorus(t *testing.T) {
	k := &stubKernel{}
	if _, _, kind, err := BuildPrimitive(k, "cone", map[string]interface{}{"radius1": 5.0, "radius2": 2.0, "height": 10.0}); err != nil || kind != spatial.KindCone {
		t.Errorf("cone: err = %v, kind = %v", err, kind)
	}
	if _, _, _, err := BuildPrimitive(k, "torus", map[string]interface{}{"major": 10.0, "minor": 2.0}); err != nil {
		t.Errorf("torus: err = %v", err)
	}
}
