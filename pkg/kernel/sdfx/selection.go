package sdfx

import (
	"fmt"
	"strings"

	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/geom"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/kernel"
)

// sdfxFace is a synthetic planar face of a solid's bounding box. An SDF
// carries no B-rep, so face/edge selection here resolves the small axial
// selector grammar (">X", "<Z", ...) against the six axis-aligned faces of
// the solid's bounding box — sufficient for the auto-generated part-local
// references (face_top/.../face_back) that are this system's primary
// consumer of face selection, at the cost of not resolving selectors
// against faces introduced by booleans or fillets.
type sdfxFace struct {
	center, normal geom.Vec3
}

// sdfxEdge is one of the twelve bounding-box edges, identified by its two
// endpoints.
type sdfxEdge struct {
	start, end geom.Vec3
}

// axialSelectors maps the six fixed selector strings spec.md §4.3 uses for
// auto-generated part-local references to an outward face normal.
var axialSelectors = map[string]geom.Vec3{
	">X": geom.WorldX,
	"<X": geom.WorldX.Scale(-1),
	">Y": geom.WorldY,
	"<Y": geom.WorldY.Scale(-1),
	">Z": geom.WorldZ,
	"<Z": geom.WorldZ.Scale(-1),
}

// SelectFaces resolves selector against s's bounding box. Only a single
// axial token (">X", "<Z", ...; surrounding whitespace ignored) is
// recognised; any other form, including tokens joined by " and ", returns
// a BackendFailure.
func (k *SdfxKernel) SelectFaces(s kernel.Solid, selector string) ([]kernel.Face, error) {
	dir, ok := axialSelectors[strings.TrimSpace(selector)]
	if !ok {
		return nil, &kernel.BackendFailure{Op: "select_faces", Message: fmt.Sprintf("unsupported selector %q", selector)}
	}
	min, max := s.BoundingBox()
	center := faceCenterFor(min, max, dir)
	return []kernel.Face{&sdfxFace{center: center, normal: dir}}, nil
}

// SelectEdges resolves selector to the bounding-box edges adjacent to the
// named face.
func (k *SdfxKernel) SelectEdges(s kernel.Solid, selector string) ([]kernel.Edge, error) {
	dir, ok := axialSelectors[strings.TrimSpace(selector)]
	if !ok {
		return nil, &kernel.BackendFailure{Op: "select_edges", Message: fmt.Sprintf("unsupported selector %q", selector)}
	}
	min, max := s.BoundingBox()
	corners := faceCorners(min, max, dir)
	edges := make([]kernel.Edge, 0, 4)
	for i := range corners {
		edges = append(edges, &sdfxEdge{start: corners[i], end: corners[(i+1)%len(corners)]})
	}
	return edges, nil
}

func faceCenterFor(min, max geom.Vec3, dir geom.Vec3) geom.Vec3 {
	center := min.Add(max).Scale(0.5)
	switch dir {
	case geom.WorldX:
		center.X = max.X
	case geom.WorldY:
		center.Y = max.Y
	case geom.WorldZ:
		center.Z = max.Z
	default:
		if dir == geom.WorldX.Scale(-1) {
			center.X = min.X
		} else if dir == geom.WorldY.Scale(-1) {
			center.Y = min.Y
		} else if dir == geom.WorldZ.Scale(-1) {
			center.Z = min.Z
		}
	}
	return center
}

// faceCorners returns the 4 bounding-box corners of the face whose outward
// normal is dir, in order around the face.
func faceCorners(min, max geom.Vec3, dir geom.Vec3) [4]geom.Vec3 {
	x := func(lo bool) float64 {
		if lo {
			return min.X
		}
		return max.X
	}
	y := func(lo bool) float64 {
		if lo {
			return min.Y
		}
		return max.Y
	}
	z := func(lo bool) float64 {
		if lo {
			return min.Z
		}
		return max.Z
	}
	switch dir {
	case geom.WorldZ:
		return [4]geom.Vec3{
			{X: x(true), Y: y(true), Z: z(false)}, {X: x(false), Y: y(true), Z: z(false)},
			{X: x(false), Y: y(false), Z: z(false)}, {X: x(true), Y: y(false), Z: z(false)},
		}
	case geom.WorldX:
		return [4]geom.Vec3{
			{X: x(false), Y: y(true), Z: z(true)}, {X: x(false), Y: y(false), Z: z(true)},
			{X: x(false), Y: y(false), Z: z(false)}, {X: x(false), Y: y(true), Z: z(false)},
		}
	case geom.WorldY:
		return [4]geom.Vec3{
			{X: x(true), Y: y(false), Z: z(true)}, {X: x(false), Y: y(false), Z: z(true)},
			{X: x(false), Y: y(false), Z: z(false)}, {X: x(true), Y: y(false), Z: z(false)},
		}
	default:
		neg := dir.Scale(-1)
		corners := faceCorners(min, max, neg)
		// Reverse winding for the opposite face so it still reads
		// outward-consistent; exact order doesn't matter for edge pairs.
		return [4]geom.Vec3{corners[3], corners[2], corners[1], corners[0]}
	}
}

// FaceCenter returns f's world-space center.
func (k *SdfxKernel) FaceCenter(f kernel.Face) geom.Vec3 {
	return f.(*sdfxFace).center
}

// FaceNormal returns f's outward unit normal.
func (k *SdfxKernel) FaceNormal(f kernel.Face) geom.Vec3 {
	return f.(*sdfxFace).normal
}

// EdgePointAt returns the point at parameter t (0..1) along e.
func (k *SdfxKernel) EdgePointAt(e kernel.Edge, t float64) geom.Vec3 {
	se := e.(*sdfxEdge)
	return se.start.Add(se.end.Sub(se.start).Scale(t))
}

// EdgeTangentAt returns e's unit tangent direction (constant for a straight
// bounding-box edge).
func (k *SdfxKernel) EdgeTangentAt(e kernel.Edge, t float64) geom.Vec3 {
	se := e.(*sdfxEdge)
	return se.end.Sub(se.start).Normalize()
}
