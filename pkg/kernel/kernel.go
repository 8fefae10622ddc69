// Package kernel defines the abstract geometry backend: a Kernel decouples
// the compiler's semantic operations (primitives, sketches, booleans,
// finishing, selection) from the underlying solid-modeling library. A
// concrete implementation lives in pkg/kernel/sdfx.
package kernel

import "github.com/Semantic-Infrastructure-Lab/tiacad/pkg/geom"

// OriginMode controls where a primitive's local origin sits relative to its
// bounding box.
type OriginMode int

const (
	// OriginCorner places the origin at the solid's minimum corner.
	OriginCorner OriginMode = iota
	// OriginCenter places the origin at the solid's centroid.
	OriginCenter
)

// Solid is a kernel-opaque handle to a piece of geometry. Implementations
// carry whatever representation their backend needs (an SDF, a B-rep, a
// mesh); the core never inspects a Solid directly.
type Solid interface {
	// BoundingBox returns the axis-aligned world-space bounding box.
	BoundingBox() (min, max geom.Vec3)
}

// Sketch is a kernel-opaque 2D profile used as input to extrude, revolve,
// sweep, and loft. Built by pkg/build/sketch from a document's sketch
// declarations.
type Sketch interface {
	// Bounds returns the profile's 2D bounding box in its own plane.
	Bounds() (min, max [2]float64)
}

// Face is a kernel-opaque reference to a selected face of a Solid.
type Face interface{}

// Edge is a kernel-opaque reference to a selected edge of a Solid.
type Edge interface{}

// BackendFailure wraps a geometry-kernel failure with the operation that
// triggered it. The core treats it as fatal for the operation it occurred
// in, but still attaches diag context at the caller boundary.
type BackendFailure struct {
	Op      string
	Message string
}

func (e *BackendFailure) Error() string {
	return "backend: " + e.Op + ": " + e.Message
}

// Kernel is the abstract geometry backend. All coordinates are world-space
// millimeters; all angles are radians unless documented otherwise.
type Kernel interface {
	// Primitive construction.
	Box(size geom.Vec3, origin OriginMode) Solid
	Cylinder(radius, height float64, origin OriginMode) Solid
	Sphere(radius float64) Solid
	Cone(radius1, radius2, height float64) Solid
	Torus(major, minor float64) Solid

	// Sketch-to-solid.
	Extrude(sketch Sketch, distance float64, direction geom.Vec3) (Solid, error)
	Revolve(sketch Sketch, axis geom.Vec3, angle float64) (Solid, error)
	Sweep(sketch Sketch, path []geom.Vec3) (Solid, error)
	Loft(profiles []Sketch, ruled bool) (Solid, error)

	// Booleans.
	Union(solids ...Solid) Solid
	Difference(base Solid, subtract ...Solid) Solid
	Intersection(solids ...Solid) Solid

	// Hull computes the convex hull of the combined vertex sets of solids,
	// tessellated at tolerance.
	Hull(solids []Solid, tolerance float64) (Solid, error)

	// Finishing (each returns a new Solid; the registry replaces the
	// part's geometry handle with it).
	Fillet(s Solid, edges []Edge, radius float64) (Solid, error)
	Chamfer(s Solid, edges []Edge, length float64, length2 *float64) (Solid, error)
	Shell(s Solid, faces []Face, thickness float64) (Solid, error)

	// Rigid transforms.
	Translate(s Solid, v geom.Vec3) Solid
	Transform(s Solid, m geom.Mat4) Solid

	// Selection. selector is the small axial/parallel/perpendicular DSL
	// described by directional/named face selectors (">X", "<Z",
	// "parallel(...)", "and", ...).
	SelectFaces(s Solid, selector string) ([]Face, error)
	SelectEdges(s Solid, selector string) ([]Edge, error)

	// Face/edge queries.
	FaceCenter(f Face) geom.Vec3
	FaceNormal(f Face) geom.Vec3 // outward, unit-length
	EdgePointAt(e Edge, t float64) geom.Vec3
	EdgeTangentAt(e Edge, t float64) geom.Vec3 // unit-length

	// Tessellate renders a solid to a triangle mesh at the given tolerance.
	// Implementations must deduplicate vertices shared by adjacent
	// triangles (same position within a fixed tolerance maps to one vertex
	// index) rather than emitting three fresh vertices per triangle.
	Tessellate(s Solid, tolerance float64) (*Mesh, error)
}
