package build

import (
	"fmt"
	"math"
	"strings"

	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/diag"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/geom"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/kernel"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/registry"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/spatial"
)

// Engine runs the operation types dispatched by the document compiler
// (transform, union/difference/intersection, linear/circular/grid
// patterns, fillet/chamfer/shell, hull, gusset) against a shared kernel and
// registry. Every operation that can affect a reference's resolution
// (anything that mutates a part's geometry or cumulative transform)
// invalidates the resolver's cache before returning.
type Engine struct {
	Kernel   kernel.Kernel
	Registry *registry.Registry
	Refs     *spatial.Resolver
}

func (e *Engine) part(name string) (*registry.Part, error) {
	p, ok := e.Registry.Get(name)
	if !ok {
		candidates := e.Registry.Names()
		suggestion, _ := diag.NearestName(name, candidates)
		return nil, diag.Diagnostic{Kind: diag.Operation, Message: fmt.Sprintf("unknown part %q", name), Suggestion: suggestion}
	}
	return p, nil
}

// Transform executes a transform operation's ordered step list against
// input, registering the result under name. The input part is never
// mutated.
func (e *Engine) Transform(name, input string, steps []map[string]interface{}, path []string) (*registry.Part, error) {
	src, err := e.part(input)
	if err != nil {
		return nil, err
	}
	cumulative := src.Cumulative
	for i, step := range steps {
		stepPath := append(append([]string{}, path...), fmt.Sprint(i))
		m, err := e.transformStep(src, cumulative, step, stepPath)
		if err != nil {
			return nil, err
		}
		cumulative = geom.Mul(m, cumulative)
	}
	out, err := e.Registry.RegisterTransformed(name, src.Solid, src.InitialPosition, cumulative, src.Metadata)
	if err != nil {
		return nil, err
	}
	e.Refs.Invalidate()
	return out, nil
}

func (e *Engine) transformStep(src *registry.Part, cumulative geom.Mat4, step map[string]interface{}, path []string) (geom.Mat4, error) {
	switch {
	case step["translate"] != nil:
		return e.translateStep(src, cumulative, step["translate"], path)
	case step["rotate"] != nil:
		return e.rotateStep(src, cumulative, step["rotate"], path)
	case step["align_to_face"] != nil:
		return e.alignToFaceStep(src, cumulative, step["align_to_face"], path)
	case step["scale"] != nil:
		return e.scaleStep(step["scale"])
	default:
		return geom.Mat4{}, diag.Diagnostic{Kind: diag.Schema, Path: path, Message: "unknown transform step"}
	}
}

func (e *Engine) translateStep(src *registry.Part, cumulative geom.Mat4, raw interface{}, path []string) (geom.Mat4, error) {
	switch v := raw.(type) {
	case []interface{}:
		vec, err := vecFromList(v)
		if err != nil {
			return geom.Mat4{}, err
		}
		return geom.Translation(vec), nil
	case map[string]interface{}:
		ref, err := e.Refs.Resolve(v["to"])
		if err != nil {
			return geom.Mat4{}, err
		}
		var offset geom.Vec3
		if raw, ok := v["offset"].([]interface{}); ok {
			offset, err = vecFromList(raw)
			if err != nil {
				return geom.Mat4{}, err
			}
		}
		target := ref.Position.Add(offset)
		current := cumulative.Apply(src.InitialPosition)
		return geom.Translation(target.Sub(current)), nil
	default:
		return geom.Mat4{}, diag.Diagnostic{Kind: diag.Schema, Path: path, Message: "unsupported translate step shape"}
	}
}

func (e *Engine) rotateStep(src *registry.Part, cumulative geom.Mat4, raw interface{}, path []string) (geom.Mat4, error) {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return geom.Mat4{}, diag.Diagnostic{Kind: diag.Schema, Path: path, Message: "rotate step must be a mapping"}
	}
	angleDeg, ok := toFloat(m["angle"])
	if !ok {
		return geom.Mat4{}, diag.Diagnostic{Kind: diag.Schema, Path: path, Message: "rotate requires a numeric angle"}
	}
	angle := angleDeg * math.Pi / 180

	if around, ok := m["around"]; ok {
		ref, err := e.Refs.Resolve(around)
		if err != nil {
			return geom.Mat4{}, err
		}
		if ref.Orientation == nil {
			return geom.Mat4{}, diag.Diagnostic{Kind: diag.Reference, Path: path, Message: "rotate.around requires an oriented reference (face or axis)"}
		}
		return geom.RotationAbout(*ref.Orientation, angle, ref.Position), nil
	}

	axis, err := axisVec(m["axis"], e.Refs)
	if err != nil {
		return geom.Mat4{}, err
	}
	origin, err := e.rotateOrigin(src, cumulative, m["origin"], path)
	if err != nil {
		return geom.Mat4{}, err
	}
	return geom.RotationAbout(axis, angle, origin), nil
}

func (e *Engine) rotateOrigin(src *registry.Part, cumulative geom.Mat4, raw interface{}, path []string) (geom.Vec3, error) {
	switch v := raw.(type) {
	case string:
		switch v {
		case "current":
			return cumulative.Apply(src.InitialPosition), nil
		case "initial":
			return src.InitialPosition, nil
		default:
			ref, err := e.Refs.Resolve(v)
			if err != nil {
				return geom.Vec3{}, err
			}
			return ref.Position, nil
		}
	case []interface{}:
		return vecFromList(v)
	case nil:
		return geom.Vec3{}, diag.Diagnostic{Kind: diag.Schema, Path: path, Message: "rotate requires an origin"}
	default:
		ref, err := e.Refs.Resolve(v)
		if err != nil {
			return geom.Vec3{}, err
		}
		return ref.Position, nil
	}
}

func (e *Engine) alignToFaceStep(src *registry.Part, cumulative geom.Mat4, raw interface{}, path []string) (geom.Mat4, error) {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return geom.Mat4{}, diag.Diagnostic{Kind: diag.Schema, Path: path, Message: "align_to_face must be a mapping"}
	}
	ref, err := e.Refs.Resolve(m["face"])
	if err != nil {
		return geom.Mat4{}, err
	}
	if ref.Orientation == nil {
		return geom.Mat4{}, diag.Diagnostic{Kind: diag.Reference, Path: path, Message: "align_to_face.face must resolve to a face or axis"}
	}
	target := *ref.Orientation
	orientation, _ := m["orientation"].(string)
	if orientation == "reverse" {
		target = target.Scale(-1)
	}

	down := geom.WorldZ.Scale(-1)
	rot := alignRotation(down, target)

	offset, _ := toFloat(m["offset"])
	anchor := cumulative.Apply(src.InitialPosition)
	rotatedAnchor := rot.Apply(anchor)
	translation := ref.Position.Add(target.Scale(offset)).Sub(rotatedAnchor)

	return geom.Mul(geom.Translation(translation), rot), nil
}

// alignRotation returns the shortest rotation sending from to to, via
// Rodrigues on the cross product; when from and to are anti-parallel within
// tolerance (no well-defined cross product), it falls back to a 180° spin
// around any axis perpendicular to from.
func alignRotation(from, to geom.Vec3) geom.Mat4 {
	from = from.Normalize()
	to = to.Normalize()
	dot := clamp(from.Dot(to), -1, 1)
	if dot > 1-1e-9 {
		return geom.Identity()
	}
	axis := from.Cross(to)
	if axis.Length() < 1e-9 {
		perp := from.Cross(geom.WorldX)
		if perp.Length() < 1e-9 {
			perp = from.Cross(geom.WorldY)
		}
		return geom.Rodrigues(perp.Normalize(), math.Pi)
	}
	angle := math.Acos(dot)
	return geom.Rodrigues(axis.Normalize(), angle)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (e *Engine) scaleStep(raw interface{}) (geom.Mat4, error) {
	switch v := raw.(type) {
	case float64:
		return geom.Scaling(geom.Vec3{X: v, Y: v, Z: v}), nil
	case []interface{}:
		vec, err := vecFromList(v)
		if err != nil {
			return geom.Mat4{}, err
		}
		return geom.Scaling(vec), nil
	default:
		return geom.Mat4{}, diag.Diagnostic{Kind: diag.Schema, Message: "unsupported scale step shape"}
	}
}

func axisVec(raw interface{}, refs *spatial.Resolver) (geom.Vec3, error) {
	switch v := raw.(type) {
	case string:
		switch v {
		case "X":
			return geom.WorldX, nil
		case "Y":
			return geom.WorldY, nil
		case "Z":
			return geom.WorldZ, nil
		default:
			ref, err := refs.Resolve(v)
			if err != nil {
				return geom.Vec3{}, err
			}
			if ref.Orientation != nil {
				return *ref.Orientation, nil
			}
			return geom.Vec3{}, fmt.Errorf("reference %q has no orientation to use as an axis", v)
		}
	case []interface{}:
		return vecFromList(v)
	default:
		return geom.Vec3{}, fmt.Errorf("unsupported axis shape %T", raw)
	}
}

func vecFromList(raw []interface{}) (geom.Vec3, error) {
	if len(raw) != 3 {
		return geom.Vec3{}, fmt.Errorf("expected a 3-element array, got %d elements", len(raw))
	}
	x, ok1 := toFloat(raw[0])
	y, ok2 := toFloat(raw[1])
	z, ok3 := toFloat(raw[2])
	if !ok1 || !ok2 || !ok3 {
		return geom.Vec3{}, fmt.Errorf("array elements must be numeric")
	}
	return geom.Vec3{X: x, Y: y, Z: z}, nil
}

// Union, Difference, and Intersection register a new part whose appearance
// is inherited per registry.InheritAppearance (first input wins).
func (e *Engine) Union(name string, inputs []string) (*registry.Part, error) {
	parts, err := e.parts(inputs)
	if err != nil {
		return nil, err
	}
	solids := make([]kernel.Solid, len(parts))
	metas := make([]registry.Metadata, len(parts))
	for i, p := range parts {
		solids[i] = p.Solid
		metas[i] = p.Metadata
	}
	result := e.Kernel.Union(solids...)
	out, err := e.Registry.Register(name, result, parts[0].InitialPosition, registry.InheritAppearance(metas...))
	if err != nil {
		return nil, err
	}
	e.Refs.Invalidate()
	return out, nil
}

func (e *Engine) Difference(name, base string, subtract []string) (*registry.Part, error) {
	baseP, err := e.part(base)
	if err != nil {
		return nil, err
	}
	subs, err := e.parts(subtract)
	if err != nil {
		return nil, err
	}
	solids := make([]kernel.Solid, len(subs))
	for i, p := range subs {
		solids[i] = p.Solid
	}
	result := e.Kernel.Difference(baseP.Solid, solids...)
	out, err := e.Registry.Register(name, result, baseP.InitialPosition, baseP.Metadata)
	if err != nil {
		return nil, err
	}
	e.Refs.Invalidate()
	return out, nil
}

func (e *Engine) Intersection(name string, inputs []string) (*registry.Part, error) {
	parts, err := e.parts(inputs)
	if err != nil {
		return nil, err
	}
	solids := make([]kernel.Solid, len(parts))
	metas := make([]registry.Metadata, len(parts))
	for i, p := range parts {
		solids[i] = p.Solid
		metas[i] = p.Metadata
	}
	result := e.Kernel.Intersection(solids...)
	out, err := e.Registry.Register(name, result, parts[0].InitialPosition, registry.InheritAppearance(metas...))
	if err != nil {
		return nil, err
	}
	e.Refs.Invalidate()
	return out, nil
}

func (e *Engine) parts(names []string) ([]*registry.Part, error) {
	if len(names) == 0 {
		return nil, diag.Diagnostic{Kind: diag.Operation, Message: "operation requires at least one input part"}
	}
	out := make([]*registry.Part, len(names))
	for i, n := range names {
		p, err := e.part(n)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// LinearPattern generates copies of source along one or more directions,
// each with its own count and spacing. counts, spacings, and directions must
// have equal length: one entry per dimension. A 1D pattern (single
// dimension) registers copies as {name}_{k}; a 2D pattern as {name}_{i}_{j};
// and so on, with the last dimension varying fastest.
func (e *Engine) LinearPattern(name, source string, counts []int, spacings []float64, directions []geom.Vec3) ([]*registry.Part, error) {
	if len(counts) == 0 {
		return nil, diag.Diagnostic{Kind: diag.Operation, Message: "linear pattern requires at least one direction"}
	}
	if len(spacings) != len(counts) || len(directions) != len(counts) {
		return nil, diag.Diagnostic{Kind: diag.Operation, Message: "linear pattern count, spacing, and direction must have matching shape"}
	}
	src, err := e.part(source)
	if err != nil {
		return nil, err
	}
	total := 1
	dirs := make([]geom.Vec3, len(directions))
	for i, c := range counts {
		if c < 1 {
			return nil, diag.Diagnostic{Kind: diag.Operation, Message: "pattern count must be at least 1"}
		}
		total *= c
		dirs[i] = directions[i].Normalize()
	}

	out := make([]*registry.Part, 0, total)
	indices := make([]int, len(counts))
	for {
		offset := geom.Vec3{}
		suffixes := make([]string, len(indices))
		for i, k := range indices {
			offset = offset.Add(dirs[i].Scale(float64(k) * spacings[i]))
			suffixes[i] = fmt.Sprintf("%d", k)
		}
		partName := name + "_" + strings.Join(suffixes, "_")
		p, err := e.Registry.RegisterTransformed(partName, src.Solid, src.InitialPosition.Add(offset), src.Cumulative, src.Metadata)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
		if !advanceOdometer(indices, counts) {
			break
		}
	}
	e.Refs.Invalidate()
	return out, nil
}

// advanceOdometer increments the rightmost (fastest-varying) dimension,
// carrying into slower dimensions as each wraps. Reports whether another
// combination remains.
func advanceOdometer(indices, counts []int) bool {
	for i := len(indices) - 1; i >= 0; i-- {
		indices[i]++
		if indices[i] < counts[i] {
			return true
		}
		indices[i] = 0
	}
	return false
}

// CircularPattern arranges count copies of source on a circle of radius
// around center, rotating about axis, starting at startAngle (degrees) and
// sweeping sweepDeg degrees (360 for a full ring).
func (e *Engine) CircularPattern(name, source string, count int, radius float64, axis, center geom.Vec3, startDeg, sweepDeg float64) ([]*registry.Part, error) {
	src, err := e.part(source)
	if err != nil {
		return nil, err
	}
	if count < 1 {
		return nil, diag.Diagnostic{Kind: diag.Operation, Message: "pattern count must be at least 1"}
	}
	ax := axis.Normalize()
	step := sweepDeg
	if count > 1 {
		step = sweepDeg / float64(count)
	}
	radial := perpendicular(ax)
	out := make([]*registry.Part, count)
	for k := 0; k < count; k++ {
		angle := (startDeg + float64(k)*step) * math.Pi / 180
		rot := geom.Rodrigues(ax, angle)
		pos := center.Add(rot.ApplyDirection(radial.Scale(radius)))
		partName := fmt.Sprintf("%s_%d", name, k)
		p, err := e.Registry.RegisterTransformed(partName, src.Solid, pos, src.Cumulative, src.Metadata)
		if err != nil {
			return nil, err
		}
		out[k] = p
	}
	e.Refs.Invalidate()
	return out, nil
}

func perpendicular(axis geom.Vec3) geom.Vec3 {
	if math.Abs(axis.Dot(geom.WorldZ)) < 0.9 {
		return axis.Cross(geom.WorldZ).Normalize()
	}
	return axis.Cross(geom.WorldX).Normalize()
}

// GridPattern arranges countX*countY copies of source in the XY plane,
// registered as {name}_{i}_{j}.
func (e *Engine) GridPattern(name, source string, countX, countY int, spacingX, spacingY float64) ([]*registry.Part, error) {
	src, err := e.part(source)
	if err != nil {
		return nil, err
	}
	if countX < 1 || countY < 1 {
		return nil, diag.Diagnostic{Kind: diag.Operation, Message: "grid pattern counts must be at least 1"}
	}
	out := make([]*registry.Part, 0, countX*countY)
	for i := 0; i < countX; i++ {
		for j := 0; j < countY; j++ {
			offset := geom.Vec3{X: float64(i) * spacingX, Y: float64(j) * spacingY}
			partName := fmt.Sprintf("%s_%d_%d", name, i, j)
			p, err := e.Registry.RegisterTransformed(partName, src.Solid, src.InitialPosition.Add(offset), src.Cumulative, src.Metadata)
			if err != nil {
				return nil, err
			}
			out = append(out, p)
		}
	}
	e.Refs.Invalidate()
	return out, nil
}

// Fillet, Chamfer, and Shell modify input's geometry in place.
func (e *Engine) Fillet(input string, radius float64, edgeSpec interface{}) error {
	p, err := e.part(input)
	if err != nil {
		return err
	}
	edges, err := e.selectEdges(p.Solid, edgeSpec)
	if err != nil {
		return err
	}
	result, err := e.Kernel.Fillet(p.Solid, edges, radius)
	if err != nil {
		return err
	}
	if err := e.Registry.ReplaceGeometry(input, result); err != nil {
		return err
	}
	e.Refs.Invalidate()
	return nil
}

func (e *Engine) Chamfer(input string, length float64, length2 *float64, edgeSpec interface{}) error {
	p, err := e.part(input)
	if err != nil {
		return err
	}
	edges, err := e.selectEdges(p.Solid, edgeSpec)
	if err != nil {
		return err
	}
	result, err := e.Kernel.Chamfer(p.Solid, edges, length, length2)
	if err != nil {
		return err
	}
	if err := e.Registry.ReplaceGeometry(input, result); err != nil {
		return err
	}
	e.Refs.Invalidate()
	return nil
}

func (e *Engine) Shell(input string, thickness float64, faceSpec interface{}) error {
	p, err := e.part(input)
	if err != nil {
		return err
	}
	faces, err := e.selectFaces(p.Solid, faceSpec)
	if err != nil {
		return err
	}
	result, err := e.Kernel.Shell(p.Solid, faces, thickness)
	if err != nil {
		return err
	}
	if err := e.Registry.ReplaceGeometry(input, result); err != nil {
		return err
	}
	e.Refs.Invalidate()
	return nil
}

// selectFaces resolves the finishing-operation face selector grammar
// (`all`, `{direction: ...}`, `{selector: raw}`) against the backend's
// fixed six axial tokens.
func (e *Engine) selectFaces(solid kernel.Solid, spec interface{}) ([]kernel.Face, error) {
	tokens, err := faceTokens(spec)
	if err != nil {
		return nil, err
	}
	var faces []kernel.Face
	for _, tok := range tokens {
		fs, err := e.Kernel.SelectFaces(solid, tok)
		if err != nil {
			return nil, err
		}
		faces = append(faces, fs...)
	}
	if len(faces) == 0 {
		return nil, diag.Diagnostic{Kind: diag.Reference, Message: "face selector matched no faces"}
	}
	return faces, nil
}

// selectEdges resolves the finishing-operation edge selector grammar
// (`all`, `{direction: ...}`, `{parallel_to: ...}`, `{perpendicular_to:
// ...}`, `{selector: raw}`) against the backend's per-face edge lookup,
// further filtering parallel_to/perpendicular_to by each candidate edge's
// tangent direction.
func (e *Engine) selectEdges(solid kernel.Solid, spec interface{}) ([]kernel.Edge, error) {
	var filterAxis *geom.Vec3
	filterParallel := true

	if m, ok := spec.(map[string]interface{}); ok {
		if raw, ok := m["selector"].(string); ok {
			return e.Kernel.SelectEdges(solid, raw)
		}
		if axis, ok := m["parallel_to"]; ok {
			v, err := axisVec(axis, e.Refs)
			if err != nil {
				return nil, err
			}
			filterAxis = &v
			filterParallel = true
		} else if axis, ok := m["perpendicular_to"]; ok {
			v, err := axisVec(axis, e.Refs)
			if err != nil {
				return nil, err
			}
			filterAxis = &v
			filterParallel = false
		}
	}

	tokens, err := faceTokens(spec)
	if err != nil {
		return nil, err
	}
	var edges []kernel.Edge
	for _, tok := range tokens {
		es, err := e.Kernel.SelectEdges(solid, tok)
		if err != nil {
			return nil, err
		}
		edges = append(edges, es...)
	}
	if filterAxis == nil {
		return edges, nil
	}
	var filtered []kernel.Edge
	for _, edge := range edges {
		tangent := e.Kernel.EdgeTangentAt(edge, 0)
		aligned := math.Abs(tangent.Dot(*filterAxis)) > 0.99
		if aligned == filterParallel {
			filtered = append(filtered, edge)
		}
	}
	return filtered, nil
}

var allAxialTokens = []string{">X", "<X", ">Y", "<Y", ">Z", "<Z"}

// faceTokens translates the shared face/edge selector grammar into the
// backend's fixed axial token set.
func faceTokens(spec interface{}) ([]string, error) {
	switch v := spec.(type) {
	case string:
		if v == "all" {
			return allAxialTokens, nil
		}
		return []string{v}, nil
	case map[string]interface{}:
		if raw, ok := v["selector"].(string); ok {
			return []string{raw}, nil
		}
		if dir, ok := v["direction"]; ok {
			return directionTokens(dir)
		}
		if axis, ok := v["parallel_to"]; ok {
			return directionTokens(axis)
		}
		if axis, ok := v["perpendicular_to"]; ok {
			excluded, err := directionTokens(axis)
			if err != nil {
				return nil, err
			}
			excludeSet := map[string]bool{}
			for _, t := range excluded {
				excludeSet[t] = true
			}
			var out []string
			for _, t := range allAxialTokens {
				if !excludeSet[t] {
					out = append(out, t)
				}
			}
			return out, nil
		}
		return nil, fmt.Errorf("unrecognized selector mapping")
	default:
		return nil, fmt.Errorf("unsupported selector shape %T", spec)
	}
}

func directionTokens(raw interface{}) ([]string, error) {
	name, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("direction must name an axis (X, Y, or Z)")
	}
	switch strings.ToUpper(name) {
	case "X":
		return []string{">X", "<X"}, nil
	case "Y":
		return []string{">Y", "<Y"}, nil
	case "Z":
		return []string{">Z", "<Z"}, nil
	default:
		return nil, fmt.Errorf("unknown axis %q", name)
	}
}

// Hull computes the convex hull of every input's tessellated vertices at
// the given tolerance (0.1 default) and registers a new solid under name.
// Coplanar or near-degenerate inputs are rejected as DegenerateHull before
// reaching the backend, which has no 2D convex-hull fallback of its own.
func (e *Engine) Hull(name string, inputs []string, tolerance float64) (*registry.Part, error) {
	parts, err := e.parts(inputs)
	if err != nil {
		return nil, err
	}
	if tolerance <= 0 {
		tolerance = 0.1
	}
	if len(parts) > 1 {
		if deg, err := e.hullInputsDegenerate(parts, tolerance); err != nil {
			return nil, err
		} else if deg {
			return nil, diag.Diagnostic{Kind: diag.Operation, Message: "DegenerateHull: hull inputs are coplanar or nearly degenerate"}
		}
	}

	solids := make([]kernel.Solid, len(parts))
	for i, p := range parts {
		solids[i] = p.Solid
	}
	result, err := e.Kernel.Hull(solids, tolerance)
	if err != nil {
		return nil, err
	}
	out, err := e.Registry.Register(name, result, parts[0].InitialPosition, registry.InheritAppearance(collectMetadata(parts)...))
	if err != nil {
		return nil, err
	}
	e.Refs.Invalidate()
	return out, nil
}

func collectMetadata(parts []*registry.Part) []registry.Metadata {
	out := make([]registry.Metadata, len(parts))
	for i, p := range parts {
		out[i] = p.Metadata
	}
	return out
}

// hullInputsDegenerate reports whether the combined tessellated vertex set
// of parts is empty or has an axis-aligned bounding box thinner than 1e-6
// along any world axis. tolerance is used only for tessellation; a flat
// vertex set tilted off the world axes is not detected.
func (e *Engine) hullInputsDegenerate(parts []*registry.Part, tolerance float64) (bool, error) {
	var min, max geom.Vec3
	first := true
	for _, p := range parts {
		mesh, err := e.Kernel.Tessellate(p.Solid, tolerance)
		if err != nil {
			return false, &kernel.BackendFailure{Op: "hull", Message: err.Error()}
		}
		for i := 0; i+2 < len(mesh.Vertices); i += 3 {
			v := geom.Vec3{X: float64(mesh.Vertices[i]), Y: float64(mesh.Vertices[i+1]), Z: float64(mesh.Vertices[i+2])}
			if first {
				min, max, first = v, v, false
				continue
			}
			min = geom.Vec3{X: math.Min(min.X, v.X), Y: math.Min(min.Y, v.Y), Z: math.Min(min.Z, v.Z)}
			max = geom.Vec3{X: math.Max(max.X, v.X), Y: math.Max(max.Y, v.Y), Z: math.Max(max.Z, v.Z)}
		}
	}
	if first {
		return true, nil
	}
	const eps = 1e-6
	flat := 0
	if max.X-min.X < eps {
		flat++
	}
	if max.Y-min.Y < eps {
		flat++
	}
	if max.Z-min.Z < eps {
		flat++
	}
	return flat >= 1, nil
}

// Gusset builds a triangular reinforcing solid bridging two face
// references: a sketch on the plane containing both face centers
// (triangle: faceA center, faceB center, and the point with faceB center's
// X/Y and faceA center's Z), extruded to thickness.
func (e *Engine) Gusset(name string, faceA, faceB interface{}, thickness float64) (*registry.Part, error) {
	refA, err := e.Refs.Resolve(faceA)
	if err != nil {
		return nil, err
	}
	refB, err := e.Refs.Resolve(faceB)
	if err != nil {
		return nil, err
	}
	if refA.Orientation == nil || refB.Orientation == nil {
		return nil, diag.Diagnostic{Kind: diag.Reference, Message: "gusset requires two face references"}
	}

	third := geom.Vec3{X: refB.Position.X, Y: refB.Position.Y, Z: refA.Position.Z}
	a, b, c := refA.Position, refB.Position, third
	normal := b.Sub(a).Cross(c.Sub(a))
	if normal.Length() < 1e-9 {
		return nil, diag.Diagnostic{Kind: diag.Operation, Message: "gusset faces produce a degenerate triangle"}
	}

	frameX := b.Sub(a).Normalize()
	frameZ := normal.Normalize()
	frameY := frameZ.Cross(frameX).Normalize()
	to2D := func(p geom.Vec3) [2]float64 {
		rel := p.Sub(a)
		return [2]float64{rel.Dot(frameX), rel.Dot(frameY)}
	}
	va, vb, vc := to2D(a), to2D(b), to2D(c)

	sk, report := BuildSketch([]SketchShape{{
		Kind: "polygon",
		Fields: map[string]interface{}{
			"vertices": []interface{}{
				[]interface{}{va[0], va[1]},
				[]interface{}{vb[0], vb[1]},
				[]interface{}{vc[0], vc[1]},
			},
		},
	}}, nil)
	if !report.OK() {
		return nil, report.Errors[0]
	}

	solid, err := e.Kernel.Extrude(sk, thickness, geom.Vec3{})
	if err != nil {
		return nil, err
	}
	m := frameMat4(a, frameX, frameY, frameZ)
	solid = e.Kernel.Transform(solid, m)

	out, err := e.Registry.Register(name, solid, a, registry.Metadata{Kind: spatial.KindOther, SourceOperation: "gusset"})
	if err != nil {
		return nil, err
	}
	e.Refs.Invalidate()
	return out, nil
}

// frameMat4 builds the rigid transform carrying the world axes onto the
// frame (origin, x, y, z) — columns are the frame's basis vectors.
func frameMat4(origin, x, y, z geom.Vec3) geom.Mat4 {
	return geom.Mat4{
		x.X, y.X, z.X, origin.X,
		x.Y, y.Y, z.Y, origin.Y,
		x.Z, y.Z, z.Z, origin.Z,
		0, 0, 0, 1,
	}
}

