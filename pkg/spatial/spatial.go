// Package spatial implements the spatial reference system: SpatialRef and
// Frame, and a Resolver that turns any reference specification (array
// literal, dotted name, or inline mapping) into world coordinates against
// the current state of the part registry.
package spatial

import (
	"math"

	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/geom"
)

// RefType classifies what a SpatialRef was resolved from.
type RefType int

const (
	Point RefType = iota
	Face
	Edge
	Axis
)

func (t RefType) String() string {
	switch t {
	case Point:
		return "point"
	case Face:
		return "face"
	case Edge:
		return "edge"
	case Axis:
		return "axis"
	default:
		return "unknown"
	}
}

// SpatialRef is a spatial reference resolved to world coordinates.
// Orientation is the outward normal for a face, the direction for an axis,
// or nil for a bare point. Tangent is set for edges (and any reference
// derived from one). The invariants from the reference system's contract:
// Face references always carry a unit Orientation; Edge references always
// carry a unit Tangent; Axis references always carry a unit Orientation.
type SpatialRef struct {
	Position    geom.Vec3
	Orientation *geom.Vec3
	Tangent     *geom.Vec3
	RefType     RefType
}

// Frame is a right-handed orthonormal local coordinate system attached to a
// SpatialRef, used to interpret offsets in the reference's local space.
type Frame struct {
	Origin, X, Y, Z geom.Vec3
}

// NewFrame derives ref's local frame. If ref carries an orientation, it
// becomes Z; if it carries (only) a tangent, that becomes X. Any axis left
// unset is completed by a deterministic perpendicular choice so the frame
// never depends on floating-point history: prefer crossing with world Z
// unless the primary axis is nearly parallel to world Z, in which case
// cross with world X instead.
func NewFrame(ref SpatialRef) Frame {
	f := Frame{Origin: ref.Position}

	switch {
	case ref.Orientation != nil:
		f.Z = ref.Orientation.Normalize()
		f.X = perpendicularTo(f.Z)
		f.Y = f.Z.Cross(f.X).Normalize()
	case ref.Tangent != nil:
		f.X = ref.Tangent.Normalize()
		f.Z = perpendicularTo(f.X)
		f.Y = f.Z.Cross(f.X).Normalize()
	default:
		f.X, f.Y, f.Z = geom.WorldX, geom.WorldY, geom.WorldZ
	}
	return f
}

// perpendicularTo returns a deterministic unit vector perpendicular to z,
// per the frame-completion rule: cross with world Z unless z is nearly
// parallel to it, in which case cross with world X.
func perpendicularTo(z geom.Vec3) geom.Vec3 {
	if math.Abs(z.Dot(geom.WorldZ)) < 0.9 {
		return z.Cross(geom.WorldZ).Normalize()
	}
	return z.Cross(geom.WorldX).Normalize()
}

// Orthonormal reports whether f satisfies the frame invariant: unit axes,
// pairwise orthogonal within eps, right-handed.
func (f Frame) Orthonormal(eps float64) bool {
	unit := func(v geom.Vec3) bool { return math.Abs(v.Length()-1) <= eps }
	if !unit(f.X) || !unit(f.Y) || !unit(f.Z) {
		return false
	}
	ortho := func(a, b geom.Vec3) bool { return math.Abs(a.Dot(b)) <= eps }
	if !ortho(f.X, f.Y) || !ortho(f.Y, f.Z) || !ortho(f.Z, f.X) {
		return false
	}
	det := f.X.Cross(f.Y).Dot(f.Z)
	return math.Abs(det-1) <= eps
}

// ToWorld converts a point expressed in f's local coordinates into world
// coordinates.
func (f Frame) ToWorld(local geom.Vec3) geom.Vec3 {
	return f.Origin.
		Add(f.X.Scale(local.X)).
		Add(f.Y.Scale(local.Y)).
		Add(f.Z.Scale(local.Z))
}
