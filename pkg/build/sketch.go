// Package build implements the primitive/sketch builders, the operation
// engine, and the document compiler that ties them together with
// pkg/doc, pkg/param, pkg/color, pkg/spatial, and pkg/registry.
package build

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/llgcode/draw2d"

	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/diag"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/kernel"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/kernel/sdfx"
)

// SketchShape is one decoded entry of a sketch part's `shapes:` list.
type SketchShape struct {
	Kind   string // "line", "rectangle", "circle", "polygon", "arc", "text"
	Fields map[string]interface{}
}

// SketchPlane is the plane a sketch's 2D coordinates are drawn in, already
// resolved to a world-space frame by pkg/spatial when the plane comes from a
// face reference. XY/XZ/YZ are the three axis-aligned defaults.
type SketchPlane string

const (
	PlaneXY SketchPlane = "XY"
	PlaneXZ SketchPlane = "XZ"
	PlaneYZ SketchPlane = "YZ"
)

// BuildSketch compiles an ordered list of sketch shapes into a single
// kernel.Sketch, unioning every shape's 2D profile. Shapes are built in the
// sketch's own XY coordinate system; the caller (the primitive builder)
// applies the plane-to-world frame when the sketch is consumed.
func BuildSketch(shapes []SketchShape, fonts *FontRegistry) (kernel.Sketch, diag.Report) {
	var report diag.Report
	var profile sdf.SDF2
	for i, shape := range shapes {
		path := []string{"shapes", fmt.Sprint(i)}
		s, err := buildShape(shape, fonts, path, &report)
		if err != nil {
			report.AddError(diag.Diagnostic{Kind: diag.Schema, Path: path, Message: err.Error()})
			continue
		}
		if s == nil {
			continue
		}
		if profile == nil {
			profile = s
		} else {
			profile = sdf.Union2D(profile, s)
		}
	}
	if !report.OK() {
		return nil, report
	}
	if profile == nil {
		report.AddError(diag.Diagnostic{Kind: diag.Schema, Message: "sketch has no shapes"})
		return nil, report
	}
	return sdfx.WrapSketch2D(profile), report
}

func buildShape(shape SketchShape, fonts *FontRegistry, path []string, report *diag.Report) (sdf.SDF2, error) {
	switch shape.Kind {
	case "rectangle":
		return buildRectangle(shape.Fields)
	case "circle":
		return buildCircle(shape.Fields)
	case "polygon":
		return buildPolygon(shape.Fields)
	case "line":
		return buildLine(shape.Fields)
	case "arc":
		return buildArc(shape.Fields)
	case "text":
		return buildText(shape.Fields, fonts, path, report)
	default:
		return nil, fmt.Errorf("unknown sketch shape %q", shape.Kind)
	}
}

func vec2(f map[string]interface{}, key string) (v2.Vec, bool) {
	raw, ok := f[key].([]interface{})
	if !ok || len(raw) != 2 {
		return v2.Vec{}, false
	}
	x, ok1 := toFloat(raw[0])
	y, ok2 := toFloat(raw[1])
	if !ok1 || !ok2 {
		return v2.Vec{}, false
	}
	return v2.Vec{X: x, Y: y}, true
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func buildRectangle(f map[string]interface{}) (sdf.SDF2, error) {
	w, ok1 := toFloat(f["width"])
	h, ok2 := toFloat(f["height"])
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("rectangle requires numeric width and height")
	}
	round, _ := toFloat(f["round"])
	s, err := sdf.Box2D(v2.Vec{X: w, Y: h}, round)
	if err != nil {
		return nil, err
	}
	if center, ok := f["center"].([]interface{}); ok && len(center) == 2 {
		cv, _ := vec2(f, "center")
		s = sdf.Transform2D(s, sdf.Translate2d(cv))
	}
	return s, nil
}

func buildCircle(f map[string]interface{}) (sdf.SDF2, error) {
	r, ok := toFloat(f["radius"])
	if !ok {
		return nil, fmt.Errorf("circle requires a numeric radius")
	}
	s, err := sdf.Circle2D(r)
	if err != nil {
		return nil, err
	}
	if cv, ok := vec2(f, "center"); ok {
		s = sdf.Transform2D(s, sdf.Translate2d(cv))
	}
	return s, nil
}

func buildPolygon(f map[string]interface{}) (sdf.SDF2, error) {
	rawVerts, ok := f["vertices"].([]interface{})
	if !ok || len(rawVerts) < 3 {
		return nil, fmt.Errorf("polygon requires at least 3 vertices")
	}
	verts := make([]v2.Vec, len(rawVerts))
	for i, raw := range rawVerts {
		pair, ok := raw.([]interface{})
		if !ok || len(pair) != 2 {
			return nil, fmt.Errorf("polygon vertex %d is not a 2-element array", i)
		}
		x, ok1 := toFloat(pair[0])
		y, ok2 := toFloat(pair[1])
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("polygon vertex %d has non-numeric coordinates", i)
		}
		verts[i] = v2.Vec{X: x, Y: y}
	}
	return sdf.Polygon2D(verts)
}

// buildLine approximates a line segment as a thin rectangle of the given
// width (default 0.1), since the geometry backend has no zero-thickness
// curve primitive.
func buildLine(f map[string]interface{}) (sdf.SDF2, error) {
	from, ok1 := vec2(f, "from")
	to, ok2 := vec2(f, "to")
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("line requires from and to points")
	}
	width, ok := toFloat(f["width"])
	if !ok || width <= 0 {
		width = 0.1
	}
	delta := v2.Vec{X: to.X - from.X, Y: to.Y - from.Y}
	length := math.Hypot(delta.X, delta.Y)
	if length < 1e-9 {
		return nil, fmt.Errorf("line endpoints coincide")
	}
	box, err := sdf.Box2D(v2.Vec{X: length, Y: width}, 0)
	if err != nil {
		return nil, err
	}
	angle := math.Atan2(delta.Y, delta.X)
	mid := v2.Vec{X: (from.X + to.X) / 2, Y: (from.Y + to.Y) / 2}
	m := sdf.Translate2d(mid).Mul(sdf.Rotate2d(angle))
	return sdf.Transform2D(box, m), nil
}

// buildArc flattens the arc into a polygon fan (a filled pie wedge between
// startAngle and endAngle) when width is zero, or a ring segment strip when
// width is positive. Angles are in degrees. The arc itself is built and
// flattened to a polyline via draw2d's path builder rather than a
// hand-rolled angle loop, the same profile-to-path step the backend needs
// for every curved sketch primitive.
func buildArc(f map[string]interface{}) (sdf.SDF2, error) {
	radius, ok := toFloat(f["radius"])
	if !ok || radius <= 0 {
		return nil, fmt.Errorf("arc requires a positive numeric radius")
	}
	startDeg, _ := toFloat(f["start_angle"])
	endDeg, ok := toFloat(f["end_angle"])
	if !ok {
		return nil, fmt.Errorf("arc requires end_angle")
	}
	width, _ := toFloat(f["width"])
	center, _ := vec2(f, "center")

	start := startDeg * math.Pi / 180
	sweep := (endDeg - startDeg) * math.Pi / 180

	outer := flattenArc(0, 0, radius, radius, start, sweep)
	var verts []v2.Vec
	if width <= 0 {
		verts = append(verts, v2.Vec{})
		verts = append(verts, outer...)
	} else {
		inner := flattenArc(0, 0, radius-width, radius-width, start, sweep)
		verts = append(verts, outer...)
		for i := len(inner) - 1; i >= 0; i-- {
			verts = append(verts, inner[i])
		}
	}
	poly, err := sdf.Polygon2D(verts)
	if err != nil {
		return nil, err
	}
	if center.X != 0 || center.Y != 0 {
		poly = sdf.Transform2D(poly, sdf.Translate2d(center))
	}
	return poly, nil
}

// flattenArc builds a draw2d circular-arc path segment and flattens it to a
// polyline of v2.Vec points.
func flattenArc(cx, cy, rx, ry, startAngle, sweepAngle float64) []v2.Vec {
	path := new(draw2d.Path)
	path.ArcTo(cx, cy, rx, ry, startAngle, sweepAngle)
	collector := &vertexCollector{}
	draw2d.Flatten(path, collector, 1.0)
	return collector.verts
}

// vertexCollector implements draw2d.Flattener, gathering the flattened
// points draw2d produces for an arc/curve path component.
type vertexCollector struct {
	verts []v2.Vec
}

func (c *vertexCollector) MoveTo(x, y float64) {
	c.verts = append(c.verts, v2.Vec{X: x, Y: y})
}

func (c *vertexCollector) LineTo(x, y float64) {
	c.verts = append(c.verts, v2.Vec{X: x, Y: y})
}

func (c *vertexCollector) End() {}
