package build

import (
	"fmt"
	"math"

	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/diag"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/geom"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/kernel"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/registry"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/spatial"
)

// operationInputs returns the part names an operation of this type and
// field set consumes, for orphan-part tracking.
func operationInputs(opType string, fields map[string]interface{}) []string {
	switch opType {
	case "transform", "fillet", "chamfer", "shell":
		if s, ok := fields["input"].(string); ok {
			return []string{s}
		}
	case "extrude", "revolve", "sweep":
		if s, ok := fields["sketch"].(string); ok {
			return []string{s}
		}
	case "difference":
		var out []string
		if s, ok := fields["base"].(string); ok {
			out = append(out, s)
		}
		out = append(out, stringList(fields["subtract"])...)
		return out
	case "union", "intersection", "hull":
		return stringList(fields["inputs"])
	case "linear_pattern", "circular_pattern", "grid_pattern":
		if s, ok := fields["source"].(string); ok {
			return []string{s}
		}
	case "loft":
		return stringList(fields["profiles"])
	}
	return nil
}

func stringList(raw interface{}) []string {
	items, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// dispatchOperation runs one operations: entry against engine, per its
// type. Sketch-to-solid types (extrude/revolve/sweep/loft) consume a
// sketch name out of sketches and register the resulting solid; every
// other type is handled entirely by the Engine.
func (c *Compiler) dispatchOperation(engine *Engine, sketches map[string]sketchSpec, name, opType string, fields map[string]interface{}, path []string) error {
	switch opType {
	case "transform":
		input, _ := fields["input"].(string)
		steps, err := stepList(fields["steps"])
		if err != nil {
			return err
		}
		_, err = engine.Transform(name, input, steps, append(path, "steps"))
		return err

	case "union":
		_, err := engine.Union(name, stringList(fields["inputs"]))
		return err

	case "difference":
		base, _ := fields["base"].(string)
		_, err := engine.Difference(name, base, stringList(fields["subtract"]))
		return err

	case "intersection":
		_, err := engine.Intersection(name, stringList(fields["inputs"]))
		return err

	case "linear_pattern":
		return c.dispatchLinearPattern(engine, name, fields)

	case "circular_pattern":
		return c.dispatchCircularPattern(engine, name, fields)

	case "grid_pattern":
		return c.dispatchGridPattern(engine, name, fields)

	case "fillet":
		input, _ := fields["input"].(string)
		radius, _ := toFloat(fields["radius"])
		return engine.Fillet(input, radius, fields["edges"])

	case "chamfer":
		input, _ := fields["input"].(string)
		length, _ := toFloat(fields["length"])
		var length2 *float64
		if v, ok := toFloat(fields["length2"]); ok {
			length2 = &v
		}
		return engine.Chamfer(input, length, length2, fields["edges"])

	case "shell":
		input, _ := fields["input"].(string)
		thickness, _ := toFloat(fields["thickness"])
		return engine.Shell(input, thickness, fields["faces"])

	case "hull":
		tolerance, _ := toFloat(fields["tolerance"])
		_, err := engine.Hull(name, stringList(fields["inputs"]), tolerance)
		return err

	case "gusset":
		thickness, _ := toFloat(fields["thickness"])
		_, err := engine.Gusset(name, fields["face_a"], fields["face_b"], thickness)
		return err

	case "extrude":
		return c.dispatchExtrude(engine, sketches, name, fields)

	case "revolve":
		return c.dispatchRevolve(engine, sketches, name, fields)

	case "sweep":
		return c.dispatchSweep(engine, sketches, name, fields)

	case "loft":
		return c.dispatchLoft(engine, sketches, name, fields)

	default:
		return diag.Diagnostic{Kind: diag.Schema, Path: path, Message: fmt.Sprintf("unknown operation type %q", opType)}
	}
}

func stepList(raw interface{}) ([]map[string]interface{}, error) {
	items, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("transform requires a steps list")
	}
	out := make([]map[string]interface{}, 0, len(items))
	for i, it := range items {
		m, ok := it.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("steps[%d] must be a mapping", i)
		}
		out = append(out, m)
	}
	return out, nil
}

func (c *Compiler) dispatchLinearPattern(engine *Engine, name string, fields map[string]interface{}) error {
	source, _ := fields["source"].(string)
	countVals, countIsVec, err := shapedNumberField(fields["count"])
	if err != nil {
		return fmt.Errorf("count: %w", err)
	}
	spacingVals, spacingIsVec, err := shapedNumberField(fields["spacing"])
	if err != nil {
		return fmt.Errorf("spacing: %w", err)
	}
	if countIsVec != spacingIsVec || len(countVals) != len(spacingVals) {
		return diag.Diagnostic{Kind: diag.Operation, Message: fmt.Sprintf(
			"linear pattern count and spacing must have matching shape (count has %d dimension(s), spacing has %d)",
			len(countVals), len(spacingVals))}
	}
	counts := make([]int, len(countVals))
	for i, f := range countVals {
		counts[i] = int(f)
	}
	directions, err := directionsField(fields["direction"], len(counts))
	if err != nil {
		return fmt.Errorf("direction: %w", err)
	}
	_, err = engine.LinearPattern(name, source, counts, spacingVals, directions)
	return err
}

// shapedNumberField parses a field that may be either a single scalar or a
// list of scalars (one per pattern dimension), reporting which shape it
// took so callers can require count and spacing to agree exactly.
func shapedNumberField(raw interface{}) (values []float64, isVector bool, err error) {
	if list, ok := raw.([]interface{}); ok {
		out := make([]float64, len(list))
		for i, v := range list {
			f, ok := toFloat(v)
			if !ok {
				return nil, true, fmt.Errorf("element %d must be a number", i)
			}
			out[i] = f
		}
		return out, true, nil
	}
	f, ok := toFloat(raw)
	if !ok {
		return nil, false, fmt.Errorf("must be a number or a list of numbers")
	}
	return []float64{f}, false, nil
}

// directionsField parses the direction(s) for a linear pattern. A
// single-dimension pattern takes one direction (axis name or [x,y,z]); a
// pattern with more than one dimension requires a list of exactly dims
// directions, one per dimension.
func directionsField(raw interface{}, dims int) ([]geom.Vec3, error) {
	if dims <= 1 {
		d, err := directionVec(raw)
		if err != nil {
			return nil, err
		}
		return []geom.Vec3{d}, nil
	}
	list, ok := raw.([]interface{})
	if !ok || len(list) != dims {
		return nil, fmt.Errorf("must be a list of %d directions to match count/spacing", dims)
	}
	out := make([]geom.Vec3, dims)
	for i, v := range list {
		d, err := directionVec(v)
		if err != nil {
			return nil, fmt.Errorf("direction[%d]: %w", i, err)
		}
		out[i] = d
	}
	return out, nil
}

func (c *Compiler) dispatchCircularPattern(engine *Engine, name string, fields map[string]interface{}) error {
	source, _ := fields["source"].(string)
	count, _ := toFloat(fields["count"])
	radius, _ := toFloat(fields["radius"])
	axis, err := directionVec(fields["axis"])
	if err != nil {
		return err
	}
	center, _ := vecFromList(listOrZero(fields["center"]))
	start, _ := toFloat(fields["start_angle"])
	sweep, hasSweep := toFloat(fields["sweep_angle"])
	if !hasSweep {
		sweep = 360
	}
	_, err = engine.CircularPattern(name, source, int(count), radius, axis, center, start, sweep)
	return err
}

func (c *Compiler) dispatchGridPattern(engine *Engine, name string, fields map[string]interface{}) error {
	source, _ := fields["source"].(string)
	countX, _ := toFloat(fields["count_x"])
	countY, _ := toFloat(fields["count_y"])
	spacingX, _ := toFloat(fields["spacing_x"])
	spacingY, _ := toFloat(fields["spacing_y"])
	_, err := engine.GridPattern(name, source, int(countX), int(countY), spacingX, spacingY)
	return err
}

func directionVec(raw interface{}) (geom.Vec3, error) {
	if raw == nil {
		return geom.Vec3{}, fmt.Errorf("missing direction/axis")
	}
	if s, ok := raw.(string); ok {
		switch s {
		case "X":
			return geom.WorldX, nil
		case "Y":
			return geom.WorldY, nil
		case "Z":
			return geom.WorldZ, nil
		}
	}
	if list, ok := raw.([]interface{}); ok {
		return vecFromList(list)
	}
	return geom.Vec3{}, fmt.Errorf("unsupported direction/axis shape %T", raw)
}

func listOrZero(raw interface{}) []interface{} {
	if list, ok := raw.([]interface{}); ok {
		return list
	}
	return []interface{}{0.0, 0.0, 0.0}
}

func (c *Compiler) dispatchExtrude(engine *Engine, sketches map[string]sketchSpec, name string, fields map[string]interface{}) error {
	sketchName, _ := fields["sketch"].(string)
	spec, ok := sketches[sketchName]
	if !ok {
		return fmt.Errorf("unknown sketch %q", sketchName)
	}
	sk, report := BuildSketch(spec.shapes, c.Fonts)
	if !report.OK() {
		return report.Errors[0]
	}
	distance, _ := toFloat(fields["distance"])
	direction, err := optionalDirection(fields["direction"])
	if err != nil {
		return err
	}
	solid, err := c.Kernel.Extrude(sk, distance, direction)
	if err != nil {
		return err
	}
	solid, err = orientToPlane(c.Kernel, solid, spec.plane, engine)
	if err != nil {
		return err
	}
	_, err = engine.Registry.Register(name, solid, geom.Vec3{}, registry.Metadata{Kind: spatial.KindOther})
	return err
}

func (c *Compiler) dispatchRevolve(engine *Engine, sketches map[string]sketchSpec, name string, fields map[string]interface{}) error {
	sketchName, _ := fields["sketch"].(string)
	spec, ok := sketches[sketchName]
	if !ok {
		return fmt.Errorf("unknown sketch %q", sketchName)
	}
	sk, report := BuildSketch(spec.shapes, c.Fonts)
	if !report.OK() {
		return report.Errors[0]
	}
	axis, err := directionVec(fields["axis"])
	if err != nil {
		axis = geom.WorldZ
	}
	angleDeg, ok := toFloat(fields["angle"])
	if !ok {
		angleDeg = 360
	}
	solid, err := c.Kernel.Revolve(sk, axis, angleDeg*math.Pi/180)
	if err != nil {
		return err
	}
	solid, err = orientToPlane(c.Kernel, solid, spec.plane, engine)
	if err != nil {
		return err
	}
	_, err = engine.Registry.Register(name, solid, geom.Vec3{}, registry.Metadata{Kind: spatial.KindOther})
	return err
}

// dispatchSweep extrudes a sketch along an explicit polyline path, given as
// an ordered list of 3-element points.
func (c *Compiler) dispatchSweep(engine *Engine, sketches map[string]sketchSpec, name string, fields map[string]interface{}) error {
	sketchName, _ := fields["sketch"].(string)
	spec, ok := sketches[sketchName]
	if !ok {
		return fmt.Errorf("unknown sketch %q", sketchName)
	}
	sk, report := BuildSketch(spec.shapes, c.Fonts)
	if !report.OK() {
		return report.Errors[0]
	}
	rawPath, ok := fields["path"].([]interface{})
	if !ok || len(rawPath) < 2 {
		return fmt.Errorf("sweep requires a path of at least 2 points")
	}
	path := make([]geom.Vec3, len(rawPath))
	for i, raw := range rawPath {
		list, ok := raw.([]interface{})
		if !ok {
			return fmt.Errorf("sweep path[%d] must be a 3-element array", i)
		}
		v, err := vecFromList(list)
		if err != nil {
			return fmt.Errorf("sweep path[%d]: %w", i, err)
		}
		path[i] = v
	}
	solid, err := c.Kernel.Sweep(sk, path)
	if err != nil {
		return err
	}
	solid, err = orientToPlane(c.Kernel, solid, spec.plane, engine)
	if err != nil {
		return err
	}
	_, err = engine.Registry.Register(name, solid, geom.Vec3{}, registry.Metadata{Kind: spatial.KindOther})
	return err
}

// dispatchLoft builds a solid through an ordered list of sketch profiles,
// ruled (straight sections between consecutive profiles) unless the part
// sets `ruled: false`.
func (c *Compiler) dispatchLoft(engine *Engine, sketches map[string]sketchSpec, name string, fields map[string]interface{}) error {
	names := stringList(fields["profiles"])
	if len(names) < 2 {
		return fmt.Errorf("loft requires at least 2 profiles")
	}
	profiles := make([]kernel.Sketch, len(names))
	var plane interface{}
	for i, n := range names {
		spec, ok := sketches[n]
		if !ok {
			return fmt.Errorf("unknown sketch %q", n)
		}
		if i == 0 {
			plane = spec.plane
		}
		sk, report := BuildSketch(spec.shapes, c.Fonts)
		if !report.OK() {
			return report.Errors[0]
		}
		profiles[i] = sk
	}
	ruled := true
	if v, ok := fields["ruled"].(bool); ok {
		ruled = v
	}
	solid, err := c.Kernel.Loft(profiles, ruled)
	if err != nil {
		return err
	}
	solid, err = orientToPlane(c.Kernel, solid, plane, engine)
	if err != nil {
		return err
	}
	_, err = engine.Registry.Register(name, solid, geom.Vec3{}, registry.Metadata{Kind: spatial.KindOther})
	return err
}

// orientToPlane rotates a sketch-derived solid (built in the sketch's own
// XY coordinate system) into world space: XY is the identity, XZ/YZ rotate
// the sketch plane onto the corresponding world plane, and a face
// reference orients the solid onto that face's frame.
func orientToPlane(k kernel.Kernel, solid kernel.Solid, plane interface{}, engine *Engine) (kernel.Solid, error) {
	switch v := plane.(type) {
	case string:
		switch v {
		case "", "XY":
			return solid, nil
		case "XZ":
			return k.Transform(solid, geom.Rodrigues(geom.WorldX, math.Pi/2)), nil
		case "YZ":
			return k.Transform(solid, geom.Rodrigues(geom.WorldY, -math.Pi/2)), nil
		default:
			return nil, fmt.Errorf("unknown sketch plane %q", v)
		}
	default:
		ref, err := engine.Refs.Resolve(plane)
		if err != nil {
			return nil, err
		}
		frame := spatial.NewFrame(ref)
		m := frameMat4(frame.Origin, frame.X, frame.Y, frame.Z)
		return k.Transform(solid, m), nil
	}
}

func optionalDirection(raw interface{}) (geom.Vec3, error) {
	if raw == nil {
		return geom.Vec3{}, nil
	}
	return directionVec(raw)
}
