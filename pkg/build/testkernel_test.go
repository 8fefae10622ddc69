package build

import (
	"fmt"

	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/geom"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/kernel"
)

// stubSolid is a box-shaped kernel.Solid for tests that don't need real
// tessellated geometry, only bounding-box-derived selection and transform
// bookkeeping.
type stubSolid struct {
	min, max geom.Vec3
	tag      string
}

func (s *stubSolid) BoundingBox() (geom.Vec3, geom.Vec3) { return s.min, s.max }

type stubFace struct{ center, normal geom.Vec3 }
type stubEdge struct{ start, end geom.Vec3 }
type stubSketch struct{ minB, maxB [2]float64 }

func (s *stubSketch) Bounds() ([2]float64, [2]float64) { return s.minB, s.maxB }

// stubKernel implements kernel.Kernel with plain bounding-box arithmetic —
// enough to exercise the operation engine and compiler without pulling in
// the real marching-cubes backend.
type stubKernel struct {
	extrudeErr error
}

var _ kernel.Kernel = (*stubKernel)(nil)

func (k *stubKernel) Box(size geom.Vec3, origin kernel.OriginMode) kernel.Solid {
	if origin == kernel.OriginCenter {
		half := size.Scale(0.5)
		return &stubSolid{min: half.Scale(-1), max: half, tag: "box"}
	}
	return &stubSolid{max: size, tag: "box"}
}

func (k *stubKernel) Cylinder(radius, height float64, origin kernel.OriginMode) kernel.Solid {
	r := geom.Vec3{X: radius, Y: radius}
	if origin == kernel.OriginCenter {
		return &stubSolid{min: geom.Vec3{X: -radius, Y: -radius, Z: -height / 2}, max: geom.Vec3{X: radius, Y: radius, Z: height / 2}, tag: "cylinder"}
	}
	return &stubSolid{min: geom.Vec3{X: -r.X, Y: -r.Y}, max: geom.Vec3{X: r.X, Y: r.Y, Z: height}, tag: "cylinder"}
}

func (k *stubKernel) Sphere(radius float64) kernel.Solid {
	r := geom.Vec3{X: radius, Y: radius, Z: radius}
	return &stubSolid{min: r.Scale(-1), max: r, tag: "sphere"}
}

func (k *stubKernel) Cone(radius1, radius2, height float64) kernel.Solid {
	r := radius1
	if radius2 > r {
		r = radius2
	}
	return &stubSolid{min: geom.Vec3{X: -r, Y: -r}, max: geom.Vec3{X: r, Y: r, Z: height}, tag: "cone"}
}

func (k *stubKernel) Torus(major, minor float64) kernel.Solid {
	r := major + minor
	return &stubSolid{min: geom.Vec3{X: -r, Y: -r, Z: -minor}, max: geom.Vec3{X: r, Y: r, Z: minor}, tag: "torus"}
}

func (k *stubKernel) Extrude(sketch kernel.Sketch, distance float64, direction geom.Vec3) (kernel.Solid, error) {
	if k.extrudeErr != nil {
		return nil, k.extrudeErr
	}
	minB, maxB := sketch.Bounds()
	return &stubSolid{min: geom.Vec3{X: minB[0], Y: minB[1]}, max: geom.Vec3{X: maxB[0], Y: maxB[1], Z: distance}, tag: "extrude"}, nil
}

func (k *stubKernel) Revolve(sketch kernel.Sketch, axis geom.Vec3, angle float64) (kernel.Solid, error) {
	minB, maxB := sketch.Bounds()
	r := maxB[0]
	if -minB[0] > r {
		r = -minB[0]
	}
	return &stubSolid{min: geom.Vec3{X: -r, Y: -r}, max: geom.Vec3{X: r, Y: r, Z: maxB[1]}, tag: "revolve"}, nil
}

func (k *stubKernel) Sweep(sketch kernel.Sketch, path []geom.Vec3) (kernel.Solid, error) {
	return &stubSolid{tag: "sweep"}, nil
}

func (k *stubKernel) Loft(profiles []kernel.Sketch, ruled bool) (kernel.Solid, error) {
	return &stubSolid{tag: "loft"}, nil
}

func (k *stubKernel) Union(solids ...kernel.Solid) kernel.Solid {
	return unionBounds(solids, "union")
}

func (k *stubKernel) Difference(base kernel.Solid, subtract ...kernel.Solid) kernel.Solid {
	min, max := base.BoundingBox()
	return &stubSolid{min: min, max: max, tag: "difference"}
}

func (k *stubKernel) Intersection(solids ...kernel.Solid) kernel.Solid {
	return unionBounds(solids, "intersection")
}

func (k *stubKernel) Hull(solids []kernel.Solid, tolerance float64) (kernel.Solid, error) {
	if len(solids) == 0 {
		return nil, fmt.Errorf("hull requires at least one solid")
	}
	if len(solids) == 1 {
		return solids[0], nil
	}
	return unionBounds(solids, "hull"), nil
}

func unionBounds(solids []kernel.Solid, tag string) kernel.Solid {
	var min, max geom.Vec3
	for i, s := range solids {
		smin, smax := s.BoundingBox()
		if i == 0 {
			min, max = smin, smax
			continue
		}
		min = geom.Vec3{X: fMin(min.X, smin.X), Y: fMin(min.Y, smin.Y), Z: fMin(min.Z, smin.Z)}
		max = geom.Vec3{X: fMax(max.X, smax.X), Y: fMax(max.Y, smax.Y), Z: fMax(max.Z, smax.Z)}
	}
	return &stubSolid{min: min, max: max, tag: tag}
}

func fMin(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func fMax(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func (k *stubKernel) Fillet(s kernel.Solid, edges []kernel.Edge, radius float64) (kernel.Solid, error) {
	min, max := s.BoundingBox()
	return &stubSolid{min: min, max: max, tag: "fillet"}, nil
}

func (k *stubKernel) Chamfer(s kernel.Solid, edges []kernel.Edge, length float64, length2 *float64) (kernel.Solid, error) {
	min, max := s.BoundingBox()
	return &stubSolid{min: min, max: max, tag: "chamfer"}, nil
}

func (k *stubKernel) Shell(s kernel.Solid, faces []kernel.Face, thickness float64) (kernel.Solid, error) {
	min, max := s.BoundingBox()
	return &stubSolid{min: min, max: max, tag: "shell"}, nil
}

func (k *stubKernel) Translate(s kernel.Solid, v geom.Vec3) kernel.Solid {
	min, max := s.BoundingBox()
	return &stubSolid{min: min.Add(v), max: max.Add(v), tag: "translate"}
}

func (k *stubKernel) Transform(s kernel.Solid, m geom.Mat4) kernel.Solid {
	min, max := s.BoundingBox()
	return &stubSolid{min: m.Apply(min), max: m.Apply(max), tag: "transform"}
}

var stubAxialSelectors = map[string]geom.Vec3{
	">X": geom.WorldX, "<X": geom.WorldX.Scale(-1),
	">Y": geom.WorldY, "<Y": geom.WorldY.Scale(-1),
	">Z": geom.WorldZ, "<Z": geom.WorldZ.Scale(-1),
}

func (k *stubKernel) SelectFaces(s kernel.Solid, selector string) ([]kernel.Face, error) {
	dir, ok := stubAxialSelectors[selector]
	if !ok {
		return nil, &kernel.BackendFailure{Op: "select_faces", Message: "unsupported selector " + selector}
	}
	min, max := s.BoundingBox()
	center := min.Add(max).Scale(0.5)
	switch dir {
	case geom.WorldX:
		center.X = max.X
	case geom.WorldY:
		center.Y = max.Y
	case geom.WorldZ:
		center.Z = max.Z
	default:
		if dir.X < 0 {
			center.X = min.X
		} else if dir.Y < 0 {
			center.Y = min.Y
		} else if dir.Z < 0 {
			center.Z = min.Z
		}
	}
	return []kernel.Face{&stubFace{center: center, normal: dir}}, nil
}

// SelectEdges returns two synthetic edges per selected face: one running
// along each of the two in-plane axes, so parallel_to/perpendicular_to
// filtering in the operation engine has something to discriminate.
func (k *stubKernel) SelectEdges(s kernel.Solid, selector string) ([]kernel.Edge, error) {
	dir, ok := stubAxialSelectors[selector]
	if !ok {
		return nil, &kernel.BackendFailure{Op: "select_edges", Message: "unsupported selector " + selector}
	}
	min, _ := s.BoundingBox()
	var a, b geom.Vec3
	switch {
	case dir.X != 0:
		a, b = geom.WorldY, geom.WorldZ
	case dir.Y != 0:
		a, b = geom.WorldX, geom.WorldZ
	default:
		a, b = geom.WorldX, geom.WorldY
	}
	return []kernel.Edge{
		&stubEdge{start: min, end: min.Add(a)},
		&stubEdge{start: min, end: min.Add(b)},
	}, nil
}

func (k *stubKernel) FaceCenter(f kernel.Face) geom.Vec3  { return f.(*stubFace).center }
func (k *stubKernel) FaceNormal(f kernel.Face) geom.Vec3  { return f.(*stubFace).normal }
func (k *stubKernel) EdgePointAt(e kernel.Edge, t float64) geom.Vec3 {
	se := e.(*stubEdge)
	return se.start.Add(se.end.Sub(se.start).Scale(t))
}
func (k *stubKernel) EdgeTangentAt(e kernel.Edge, t float64) geom.Vec3 {
	se := e.(*stubEdge)
	return se.end.Sub(se.start).Normalize()
}

func (k *stubKernel) Tessellate(s kernel.Solid, tolerance float64) (*kernel.Mesh, error) {
	min, max := s.BoundingBox()
	corners := []geom.Vec3{
		{X: min.X, Y: min.Y, Z: min.Z}, {X: max.X, Y: min.Y, Z: min.Z},
		{X: max.X, Y: max.Y, Z: min.Z}, {X: min.X, Y: max.Y, Z: min.Z},
		{X: min.X, Y: min.Y, Z: max.Z}, {X: max.X, Y: min.Y, Z: max.Z},
		{X: max.X, Y: max.Y, Z: max.Z}, {X: min.X, Y: max.Y, Z: max.Z},
	}
	verts := make([]float32, 0, len(corners)*3)
	for _, c := range corners {
		verts = append(verts, float32(c.X), float32(c.Y), float32(c.Z))
	}
	return &kernel.Mesh{Vertices: verts}, nil
}
