package build

import (
	"fmt"

	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/geom"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/kernel"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/spatial"
)

// originMode decodes a part's origin_mode field. The "explicit" form is
// written `explicit: [x,y,z]` (a single-key map) rather than a bare enum
// value, since it carries a payload the other three modes don't.
func originMode(fields map[string]interface{}) (kernel.OriginMode, geom.Vec3, error) {
	raw, ok := fields["origin_mode"]
	if !ok {
		return kernel.OriginCorner, geom.Vec3{}, nil
	}
	switch v := raw.(type) {
	case string:
		switch v {
		case "center":
			return kernel.OriginCenter, geom.Vec3{}, nil
		case "corner", "base":
			return kernel.OriginCorner, geom.Vec3{}, nil
		default:
			return 0, geom.Vec3{}, fmt.Errorf("unknown origin_mode %q", v)
		}
	case map[string]interface{}:
		raw, ok := v["explicit"].([]interface{})
		if !ok || len(raw) != 3 {
			return 0, geom.Vec3{}, fmt.Errorf("origin_mode.explicit requires a 3-element array")
		}
		x, ok1 := toFloat(raw[0])
		y, ok2 := toFloat(raw[1])
		z, ok3 := toFloat(raw[2])
		if !ok1 || !ok2 || !ok3 {
			return 0, geom.Vec3{}, fmt.Errorf("origin_mode.explicit must be numeric")
		}
		return kernel.OriginCorner, geom.Vec3{X: x, Y: y, Z: z}, nil
	default:
		return 0, geom.Vec3{}, fmt.Errorf("origin_mode has unsupported shape %T", raw)
	}
}

// BuildPrimitive constructs a kernel.Solid for a box/cylinder/sphere/cone/
// torus part declaration and returns its initial world position (the
// explicit-origin offset, or the zero vector).
func BuildPrimitive(k kernel.Kernel, kind string, fields map[string]interface{}) (kernel.Solid, geom.Vec3, spatial.PartKind, error) {
	mode, explicit, err := originMode(fields)
	if err != nil {
		return nil, geom.Vec3{}, spatial.KindOther, err
	}
	switch kind {
	case "box":
		size, ok := vec3Field(fields, "size")
		if !ok {
			return nil, geom.Vec3{}, spatial.KindOther, fmt.Errorf("box requires a 3-element size")
		}
		return k.Box(size, mode), explicit, spatial.KindBox, nil
	case "cylinder":
		radius, ok1 := toFloat(fields["radius"])
		height, ok2 := toFloat(fields["height"])
		if !ok1 || !ok2 {
			return nil, geom.Vec3{}, spatial.KindOther, fmt.Errorf("cylinder requires numeric radius and height")
		}
		return k.Cylinder(radius, height, mode), explicit, spatial.KindCylinder, nil
	case "sphere":
		radius, ok := toFloat(fields["radius"])
		if !ok {
			return nil, geom.Vec3{}, spatial.KindOther, fmt.Errorf("sphere requires a numeric radius")
		}
		return k.Sphere(radius), explicit, spatial.KindSphere, nil
	case "cone":
		r1, ok1 := toFloat(fields["radius1"])
		r2, ok2 := toFloat(fields["radius2"])
		height, ok3 := toFloat(fields["height"])
		if !ok1 || !ok2 || !ok3 {
			return nil, geom.Vec3{}, spatial.KindOther, fmt.Errorf("cone requires numeric radius1, radius2, and height")
		}
		return k.Cone(r1, r2, height), explicit, spatial.KindCone, nil
	case "torus":
		major, ok1 := toFloat(fields["major"])
		minor, ok2 := toFloat(fields["minor"])
		if !ok1 || !ok2 {
			return nil, geom.Vec3{}, spatial.KindOther, fmt.Errorf("torus requires numeric major and minor radii")
		}
		return k.Torus(major, minor), explicit, spatial.KindOther, nil
	default:
		return nil, geom.Vec3{}, spatial.KindOther, fmt.Errorf("unknown primitive type %q", kind)
	}
}

func vec3Field(fields map[string]interface{}, key string) (geom.Vec3, bool) {
	raw, ok := fields[key].([]interface{})
	if !ok || len(raw) != 3 {
		return geom.Vec3{}, false
	}
	x, ok1 := toFloat(raw[0])
	y, ok2 := toFloat(raw[1])
	z, ok3 := toFloat(raw[2])
	if !ok1 || !ok2 || !ok3 {
		return geom.Vec3{}, false
	}
	return geom.Vec3{X: x, Y: y, Z: z}, true
}
