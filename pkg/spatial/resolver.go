package spatial

import (
	"fmt"
	"strings"

	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/diag"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/geom"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/kernel"
)

// PartKind narrows which auto-generated face names a part advertises, per
// the fixed per-kind table: boxes and cones expose the full six-face set,
// cylinders and spheres expose only face_top/face_bottom.
type PartKind int

const (
	KindBox PartKind = iota
	KindCylinder
	KindSphere
	KindCone
	KindOther
)

// PartState is the slice of registry state the resolver needs about one
// part: its current geometry handle, its kind (for the auto-reference
// table), and its current world position (the registry's tracked
// current_position, i.e. cumulative-transform applied to the part's
// initial position).
type PartState struct {
	Kind            PartKind
	Solid           kernel.Solid
	CurrentPosition geom.Vec3
}

// PartSource is the registry's lookup surface, as consumed by the
// resolver. pkg/registry implements it; defining it here (rather than
// importing pkg/registry) keeps the reference system free of a dependency
// on the registry's mutation API.
type PartSource interface {
	Part(name string) (PartState, bool)
	Names() []string
}

// autoFaceSelectors maps each auto-generated face name to the fixed axial
// selector spec.md's reference system pins it to.
var autoFaceSelectors = map[string]string{
	"face_top":    ">Z",
	"face_bottom": "<Z",
	"face_left":   "<X",
	"face_right":  ">X",
	"face_front":  ">Y",
	"face_back":   "<Y",
}

// limitedFaceNames restricts which auto face names are valid for
// cylinders and spheres, per the fixed per-kind table.
var limitedFaceNames = map[string]bool{"face_top": true, "face_bottom": true}

// Resolver turns a reference specification into a SpatialRef in world
// coordinates, against parts' current registry state. It caches resolved
// references by resolution key and detects cycles among user-declared
// entries with DFS coloring.
type Resolver struct {
	parts  PartSource
	kernel kernel.Kernel
	refs   map[string]interface{} // user-declared `references:` specs, raw decoded YAML

	cache     map[string]SpatialRef
	resolving map[string]bool
}

// NewResolver builds a Resolver over parts (the registry's lookup
// surface), k (used to resolve face/edge selectors against a part's
// geometry), and refs (the document's `references:` section, each value
// either an array literal, a dotted name string, or an inline mapping).
func NewResolver(parts PartSource, k kernel.Kernel, refs map[string]interface{}) *Resolver {
	return &Resolver{
		parts:     parts,
		kernel:    k,
		refs:      refs,
		cache:     make(map[string]SpatialRef),
		resolving: make(map[string]bool),
	}
}

// Invalidate flushes the resolution cache. Call after any operation that
// mutates a part's geometry or cumulative transform; this is the
// conservative (whole-cache) invalidation strategy spec.md accepts as
// correct in place of per-key dependency tracking.
func (r *Resolver) Invalidate() {
	r.cache = make(map[string]SpatialRef)
}

// Resolve turns spec into a world-coordinate SpatialRef. spec is a raw
// decoded YAML value: a 3-element array literal, a dotted name string
// ("part" or "part.refName" or a user-declared reference name), or an
// inline mapping (`{type: point|face|edge|axis, ...}`).
func (r *Resolver) Resolve(spec interface{}) (SpatialRef, error) {
	return r.resolve(spec, "")
}

// resolve is Resolve plus the name under which spec was reached (empty for
// inline, unnamed specs); the body does not read cacheKey.
func (r *Resolver) resolve(spec interface{}, cacheKey string) (SpatialRef, error) {
	switch v := spec.(type) {
	case []interface{}:
		vec, err := toVec3(v)
		if err != nil {
			return SpatialRef{}, err
		}
		return SpatialRef{Position: vec, RefType: Point}, nil
	case string:
		return r.resolveName(v)
	case map[string]interface{}:
		return r.resolveInline(v)
	default:
		return SpatialRef{}, diag.Diagnostic{
			Kind:    diag.Reference,
			Message: fmt.Sprintf("reference specification has an unsupported shape (%T)", spec),
		}
	}
}

// resolveName resolves a dotted name: either a user-declared entry under
// `references:`, or `part` / `part.autoRefName` against the registry.
func (r *Resolver) resolveName(name string) (SpatialRef, error) {
	if cached, ok := r.cache[name]; ok {
		return cached, nil
	}
	if r.resolving[name] {
		return SpatialRef{}, diag.Diagnostic{
			Kind:    diag.Reference,
			Path:    []string{"references", name},
			Message: fmt.Sprintf("reference cycle detected at %q", name),
		}
	}

	if spec, ok := r.refs[name]; ok {
		r.resolving[name] = true
		ref, err := r.resolve(spec, name)
		delete(r.resolving, name)
		if err != nil {
			return SpatialRef{}, err
		}
		r.cache[name] = ref
		return ref, nil
	}

	partName, autoName, hasDot := strings.Cut(name, ".")
	if !hasDot {
		// A bare part name with no trailing selector addresses the part's
		// tracked origin point.
		autoName = "origin"
	}
	part, ok := r.parts.Part(partName)
	if !ok {
		suggestion, _ := diag.NearestName(partName, r.parts.Names())
		return SpatialRef{}, diag.Diagnostic{
			Kind:       diag.Reference,
			Message:    fmt.Sprintf("unknown part %q", partName),
			Suggestion: suggestion,
		}
	}
	ref, err := r.autoRef(part, partName, autoName)
	if err != nil {
		return SpatialRef{}, err
	}
	r.cache[name] = ref
	return ref, nil
}

// autoRef resolves one of a part's fixed auto-generated local names.
func (r *Resolver) autoRef(part PartState, partName, autoName string) (SpatialRef, error) {
	switch {
	case autoName == "center":
		min, max := part.Solid.BoundingBox()
		return SpatialRef{Position: min.Add(max).Scale(0.5), RefType: Point}, nil
	case autoName == "origin":
		return SpatialRef{Position: part.CurrentPosition, RefType: Point}, nil
	case autoName == "axis_x" || autoName == "axis_y" || autoName == "axis_z":
		axis, _ := geom.AxisVec(autoName[len("axis_"):])
		min, max := part.Solid.BoundingBox()
		center := min.Add(max).Scale(0.5)
		return SpatialRef{Position: center, Orientation: &axis, RefType: Axis}, nil
	case autoFaceSelectors[autoName] != "":
		if (part.Kind == KindCylinder || part.Kind == KindSphere) && !limitedFaceNames[autoName] {
			return SpatialRef{}, diag.Diagnostic{
				Kind:    diag.Reference,
				Message: fmt.Sprintf("part %q does not expose %q", partName, autoName),
			}
		}
		selector := autoFaceSelectors[autoName]
		faces, err := r.kernel.SelectFaces(part.Solid, selector)
		if err != nil {
			return SpatialRef{}, diag.Diagnostic{Kind: diag.Reference, Message: err.Error()}
		}
		if len(faces) == 0 {
			return SpatialRef{}, diag.Diagnostic{
				Kind:    diag.Reference,
				Message: fmt.Sprintf("part %q has no face matching %q", partName, autoName),
			}
		}
		center := r.kernel.FaceCenter(faces[0])
		normal := r.kernel.FaceNormal(faces[0])
		return SpatialRef{Position: center, Orientation: &normal, RefType: Face}, nil
	default:
		candidates := []string{"center", "origin", "axis_x", "axis_y", "axis_z"}
		for name := range autoFaceSelectors {
			candidates = append(candidates, name)
		}
		suggestion, _ := diag.NearestName(autoName, candidates)
		return SpatialRef{}, diag.Diagnostic{
			Kind:       diag.Reference,
			Message:    fmt.Sprintf("part %q has no auto-generated reference %q", partName, autoName),
			Suggestion: suggestion,
		}
	}
}

// resolveInline resolves an inline `{type: ..., ...}` reference mapping.
func (r *Resolver) resolveInline(m map[string]interface{}) (SpatialRef, error) {
	kind, _ := m["type"].(string)
	switch kind {
	case "point":
		return r.resolvePoint(m)
	case "face":
		return r.resolveFace(m)
	case "edge":
		return r.resolveEdge(m)
	case "axis":
		return r.resolveAxis(m)
	default:
		return SpatialRef{}, diag.Diagnostic{
			Kind:    diag.Reference,
			Message: fmt.Sprintf("unknown reference type %q", kind),
		}
	}
}

func (r *Resolver) resolvePoint(m map[string]interface{}) (SpatialRef, error) {
	if raw, ok := m["value"]; ok {
		vec, err := toVec3Value(raw)
		if err != nil {
			return SpatialRef{}, err
		}
		return SpatialRef{Position: vec, RefType: Point}, nil
	}
	fromSpec, ok := m["from"]
	if !ok {
		return SpatialRef{}, diag.Diagnostic{Kind: diag.Reference, Message: "point reference needs either value or from"}
	}
	from, err := r.resolve(fromSpec, "")
	if err != nil {
		return SpatialRef{}, err
	}
	offset := geom.Vec3{}
	if raw, ok := m["offset"]; ok {
		offset, err = toVec3Value(raw)
		if err != nil {
			return SpatialRef{}, err
		}
	}
	if from.Orientation == nil && from.Tangent == nil {
		return SpatialRef{Position: from.Position.Add(offset), RefType: Point}, nil
	}
	frame := NewFrame(from)
	return SpatialRef{Position: frame.ToWorld(offset), RefType: Point}, nil
}

func (r *Resolver) resolveFace(m map[string]interface{}) (SpatialRef, error) {
	partName, _ := m["part"].(string)
	selector, _ := m["selector"].(string)
	if partName == "" || selector == "" {
		return SpatialRef{}, diag.Diagnostic{Kind: diag.Reference, Message: "face reference needs part and selector"}
	}
	part, ok := r.parts.Part(partName)
	if !ok {
		return SpatialRef{}, diag.Diagnostic{Kind: diag.Reference, Message: fmt.Sprintf("unknown part %q", partName)}
	}
	faces, err := r.kernel.SelectFaces(part.Solid, selector)
	if err != nil {
		return SpatialRef{}, diag.Diagnostic{Kind: diag.Reference, Message: err.Error()}
	}
	if len(faces) == 0 {
		return SpatialRef{}, diag.Diagnostic{Kind: diag.Reference, Message: fmt.Sprintf("selector %q matched no face on %q", selector, partName)}
	}
	center := r.kernel.FaceCenter(faces[0])
	normal := r.kernel.FaceNormal(faces[0])
	return SpatialRef{Position: center, Orientation: &normal, RefType: Face}, nil
}

func (r *Resolver) resolveEdge(m map[string]interface{}) (SpatialRef, error) {
	partName, _ := m["part"].(string)
	selector, _ := m["selector"].(string)
	if partName == "" || selector == "" {
		return SpatialRef{}, diag.Diagnostic{Kind: diag.Reference, Message: "edge reference needs part and selector"}
	}
	part, ok := r.parts.Part(partName)
	if !ok {
		return SpatialRef{}, diag.Diagnostic{Kind: diag.Reference, Message: fmt.Sprintf("unknown part %q", partName)}
	}
	edges, err := r.kernel.SelectEdges(part.Solid, selector)
	if err != nil {
		return SpatialRef{}, diag.Diagnostic{Kind: diag.Reference, Message: err.Error()}
	}
	if len(edges) == 0 {
		return SpatialRef{}, diag.Diagnostic{Kind: diag.Reference, Message: fmt.Sprintf("selector %q matched no edge on %q", selector, partName)}
	}
	at := 0.5
	if raw, ok := m["at"]; ok {
		switch v := raw.(type) {
		case string:
			switch v {
			case "start":
				at = 0.0
			case "midpoint":
				at = 0.5
			case "end":
				at = 1.0
			default:
				return SpatialRef{}, diag.Diagnostic{Kind: diag.Reference, Message: fmt.Sprintf("edge reference has unknown at %q (want start, midpoint, end, or a number)", v)}
			}
		default:
			if f, ok := toFloat(raw); ok {
				at = f
			}
		}
	}
	position := r.kernel.EdgePointAt(edges[0], at)
	tangent := r.kernel.EdgeTangentAt(edges[0], at)
	return SpatialRef{Position: position, Tangent: &tangent, RefType: Edge}, nil
}

func (r *Resolver) resolveAxis(m map[string]interface{}) (SpatialRef, error) {
	from, err := toVec3Value(m["from"])
	if err != nil {
		return SpatialRef{}, err
	}
	to, err := toVec3Value(m["to"])
	if err != nil {
		return SpatialRef{}, err
	}
	dir := to.Sub(from).Normalize()
	return SpatialRef{Position: from, Orientation: &dir, RefType: Axis}, nil
}

func toVec3Value(raw interface{}) (geom.Vec3, error) {
	arr, ok := raw.([]interface{})
	if !ok {
		return geom.Vec3{}, diag.Diagnostic{Kind: diag.Reference, Message: "expected a 3-element [x, y, z] array"}
	}
	return toVec3(arr)
}

func toVec3(arr []interface{}) (geom.Vec3, error) {
	if len(arr) != 3 {
		return geom.Vec3{}, diag.Diagnostic{Kind: diag.Reference, Message: fmt.Sprintf("expected 3 elements, got %d", len(arr))}
	}
	vals := make([]float64, 3)
	for i, item := range arr {
		f, ok := toFloat(item)
		if !ok {
			return geom.Vec3{}, diag.Diagnostic{Kind: diag.Reference, Message: fmt.Sprintf("element %d is not numeric", i)}
		}
		vals[i] = f
	}
	return geom.Vec3{X: vals[0], Y: vals[1], Z: vals[2]}, nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
