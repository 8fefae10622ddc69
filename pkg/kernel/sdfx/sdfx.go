// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/geom"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// defaultMeshCells controls marching cubes tessellation resolution. Higher
// values trade render time for surface fidelity; Tessellate's tolerance
// parameter scales it (see cellsForTolerance).
const defaultMeshCells = 200

func toV3(v geom.Vec3) v3.Vec { return v3.Vec{X: v.X, Y: v.Y, Z: v.Z} }
func fromV3(v v3.Vec) geom.Vec3 { return geom.Vec3{X: v.X, Y: v.Y, Z: v.Z} }

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max geom.Vec3) {
	bb := s.s.BoundingBox()
	return fromV3(bb.Min), fromV3(bb.Max)
}

// sdfxSketch wraps an sdf.SDF2 to implement kernel.Sketch.
type sdfxSketch struct {
	s sdf.SDF2
}

// Bounds returns the profile's 2D bounding box.
func (sk *sdfxSketch) Bounds() (min, max [2]float64) {
	bb := sk.s.BoundingBox()
	return [2]float64{bb.Min.X, bb.Min.Y}, [2]float64{bb.Max.X, bb.Max.Y}
}

// WrapSketch2D adapts a raw sdf.SDF2 (built by pkg/build/sketch) into a
// kernel.Sketch. Exported so the sketch builder — which must construct its
// 2D profiles with the same library this kernel tessellates with — can hand
// a sketch back to the kernel without this package exposing sdf.SDF3 itself.
func WrapSketch2D(s sdf.SDF2) kernel.Sketch {
	return &sdfxSketch{s: s}
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct{}

// New returns a new SdfxKernel.
func New() *SdfxKernel {
	return &SdfxKernel{}
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

func unwrapSketch(sk kernel.Sketch) sdf.SDF2 {
	return sk.(*sdfxSketch).s
}

// Box creates a box with the given dimensions. With OriginCorner the
// resulting solid has its minimum corner at (0,0,0) so that placement
// translations work intuitively; sdf.Box3D centers the box at the origin,
// so corner mode translates by half-dimensions.
func (k *SdfxKernel) Box(size geom.Vec3, origin kernel.OriginMode) kernel.Solid {
	s, err := sdf.Box3D(toV3(size), 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Box3D: %v", err))
	}
	if origin == kernel.OriginCenter {
		return wrap(s)
	}
	m := sdf.Translate3d(v3.Vec{X: size.X / 2, Y: size.Y / 2, Z: size.Z / 2})
	return wrap(sdf.Transform3D(s, m))
}

// Cylinder creates a cylinder with the given radius and height, standing on
// the Z axis. OriginCorner places the base at z=0; sdf.Cylinder3D centers
// the cylinder on the origin, which is what OriginCenter keeps, so corner
// mode translates up by half the height.
func (k *SdfxKernel) Cylinder(radius, height float64, origin kernel.OriginMode) kernel.Solid {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Cylinder3D: %v", err))
	}
	if origin == kernel.OriginCenter {
		return wrap(s)
	}
	m := sdf.Translate3d(v3.Vec{Z: height / 2})
	return wrap(sdf.Transform3D(s, m))
}

// Sphere creates a sphere of the given radius, centered at the origin.
func (k *SdfxKernel) Sphere(radius float64) kernel.Solid {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Sphere3D: %v", err))
	}
	return wrap(s)
}

// Cone creates a (possibly truncated) cone standing on the Z axis, base
// radius1 at z=0, top radius2 at z=height. sdf.Cone3D centers the cone on
// the origin, so it is translated up by half the height.
func (k *SdfxKernel) Cone(radius1, radius2, height float64) kernel.Solid {
	s, err := sdf.Cone3D(height, radius1, radius2, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Cone3D: %v", err))
	}
	m := sdf.Translate3d(v3.Vec{Z: height / 2})
	return wrap(sdf.Transform3D(s, m))
}

// Torus creates a torus centered at the origin, lying in the XY plane.
func (k *SdfxKernel) Torus(major, minor float64) kernel.Solid {
	s, err := sdf.Torus3D(major, minor)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Torus3D: %v", err))
	}
	return wrap(s)
}

// Extrude extrudes a 2D sketch distance units along direction. sdfx's
// Extrude3D always extrudes along Z; for any other direction the extruded
// solid is rotated into place.
func (k *SdfxKernel) Extrude(sketch kernel.Sketch, distance float64, direction geom.Vec3) (kernel.Solid, error) {
	s := sdf.Extrude3D(unwrapSketch(sketch), distance)
	dir := direction.Normalize()
	if dir.ApproxEqual(geom.WorldZ, 1e-9) || dir.IsZero() {
		return wrap(s), nil
	}
	m := alignZTo(dir)
	return wrap(sdf.Transform3D(s, m)), nil
}

// Revolve revolves a 2D sketch angle radians about axis. sdfx's
// RevolveTheta3D revolves about Z by convention; the profile is assumed
// already expressed in the revolution's half-plane.
func (k *SdfxKernel) Revolve(sketch kernel.Sketch, axis geom.Vec3, angle float64) (kernel.Solid, error) {
	s, err := sdf.RevolveTheta3D(unwrapSketch(sketch), angle)
	if err != nil {
		return nil, &kernel.BackendFailure{Op: "revolve", Message: err.Error()}
	}
	dir := axis.Normalize()
	if dir.ApproxEqual(geom.WorldZ, 1e-9) || dir.IsZero() {
		return wrap(s), nil
	}
	m := alignZTo(dir)
	return wrap(sdf.Transform3D(s, m)), nil
}

// Sweep sweeps a 2D sketch along a polyline path. sdfx has no direct sweep
// primitive; this is approximated as a union of the sketch extruded along
// each path segment, oriented to the segment's direction — adequate for the
// straight-segment paths the operation engine builds from a part's `path:`
// points, though it does not miter corners the way a true sweep would.
func (k *SdfxKernel) Sweep(sketch kernel.Sketch, path []geom.Vec3) (kernel.Solid, error) {
	if len(path) < 2 {
		return nil, &kernel.BackendFailure{Op: "sweep", Message: "path must have at least 2 points"}
	}
	var result sdf.SDF3
	for i := 0; i+1 < len(path); i++ {
		seg := path[i+1].Sub(path[i])
		length := seg.Length()
		if length < 1e-9 {
			continue
		}
		// Extrude3D centers the extrusion on z=0, so each piece is placed at
		// its segment's midpoint to span the segment end to end.
		piece := sdf.Extrude3D(unwrapSketch(sketch), length)
		m := alignZTo(seg.Normalize())
		m = sdf.Translate3d(toV3(path[i].Add(seg.Scale(0.5)))).Mul(m)
		piece = sdf.Transform3D(piece, m)
		if result == nil {
			result = piece
		} else {
			result = sdf.Union3D(result, piece)
		}
	}
	if result == nil {
		return nil, &kernel.BackendFailure{Op: "sweep", Message: "path has no non-degenerate segments"}
	}
	return wrap(result), nil
}

// Loft lofts between a sequence of profiles. sdfx has no native loft
// primitive; each profile is extruded to a 1e-6-thick slab and the slabs
// are unioned. No surface is built between consecutive profiles, and
// ruled is not read.
func (k *SdfxKernel) Loft(profiles []kernel.Sketch, ruled bool) (kernel.Solid, error) {
	if len(profiles) < 2 {
		return nil, &kernel.BackendFailure{Op: "loft", Message: "loft requires at least 2 profiles"}
	}
	var result sdf.SDF3
	for _, p := range profiles {
		s := sdf.Extrude3D(unwrapSketch(p), 1e-6)
		if result == nil {
			result = s
		} else {
			result = sdf.Union3D(result, s)
		}
	}
	return wrap(result), nil
}

// alignZTo returns a rotation matrix that rotates world Z onto the unit
// vector dir.
func alignZTo(dir geom.Vec3) sdf.M44 {
	axis := geom.WorldZ.Cross(dir)
	cosAngle := geom.WorldZ.Dot(dir)
	if axis.Length() < 1e-9 {
		if cosAngle > 0 {
			return sdf.Identity3d()
		}
		return sdf.RotateX(math.Pi)
	}
	angle := math.Acos(clampUnit(cosAngle))
	return sdf.RotateAxis(toV3(axis.Normalize()), angle)
}

func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// Union returns the union of one or more solids.
func (k *SdfxKernel) Union(solids ...kernel.Solid) kernel.Solid {
	return wrap(sdf.Union3D(unwrapAll(solids)...))
}

// Difference returns base minus each of subtract.
func (k *SdfxKernel) Difference(base kernel.Solid, subtract ...kernel.Solid) kernel.Solid {
	args := append([]sdf.SDF3{unwrap(base)}, unwrapAll(subtract)...)
	return wrap(sdf.Difference3D(args[0], sdf.Union3D(args[1:]...)))
}

// Intersection returns the intersection of one or more solids.
func (k *SdfxKernel) Intersection(solids ...kernel.Solid) kernel.Solid {
	return wrap(sdf.Intersect3D(unwrapAll(solids)...))
}

// Hull computes the convex hull of the combined, tessellated vertex sets
// of solids. Single-input hulls return the input's own solid so the
// registry still gets an independent handle under the new name.
func (k *SdfxKernel) Hull(solids []kernel.Solid, tolerance float64) (kernel.Solid, error) {
	if len(solids) == 0 {
		return nil, &kernel.BackendFailure{Op: "hull", Message: "hull requires at least one solid"}
	}
	if len(solids) == 1 {
		return solids[0], nil
	}
	var points []v3.Vec
	for _, s := range solids {
		mesh, err := k.Tessellate(s, tolerance)
		if err != nil {
			return nil, &kernel.BackendFailure{Op: "hull", Message: err.Error()}
		}
		for i := 0; i+2 < len(mesh.Vertices); i += 3 {
			points = append(points, v3.Vec{X: float64(mesh.Vertices[i]), Y: float64(mesh.Vertices[i+1]), Z: float64(mesh.Vertices[i+2])})
		}
	}
	h, err := sdf.ConvexHull3D(points)
	if err != nil {
		return nil, &kernel.BackendFailure{Op: "hull", Message: err.Error()}
	}
	return wrap(h), nil
}

func unwrapAll(solids []kernel.Solid) []sdf.SDF3 {
	out := make([]sdf.SDF3, len(solids))
	for i, s := range solids {
		out[i] = unwrap(s)
	}
	return out
}

// Fillet rounds a solid's edges by radius. An SDF representation carries no
// edge identity, so edges is accepted for interface conformance but the
// rounding is applied to the whole solid via a Minkowski offset pair
// (deflate then inflate), the same rounding technique sdf.Box3D/Cylinder3D
// apply internally through their own "round" construction parameter.
func (k *SdfxKernel) Fillet(s kernel.Solid, edges []kernel.Edge, radius float64) (kernel.Solid, error) {
	if radius <= 0 {
		return nil, &kernel.BackendFailure{Op: "fillet", Message: "radius must be positive"}
	}
	inner := sdf.Offset3D(unwrap(s), -radius)
	rounded := sdf.Offset3D(inner, radius)
	return wrap(rounded), nil
}

// Chamfer bevels a solid's edges by length (and length2 if the chamfer is
// asymmetric). Subject to the same edge-identity limitation as Fillet;
// approximated here as a fillet at the chamfer's nominal length, since a
// true flat chamfer requires per-edge plane cuts an SDF kernel cannot
// express without selectable B-rep edges.
func (k *SdfxKernel) Chamfer(s kernel.Solid, edges []kernel.Edge, length float64, length2 *float64) (kernel.Solid, error) {
	if length <= 0 {
		return nil, &kernel.BackendFailure{Op: "chamfer", Message: "length must be positive"}
	}
	return k.Fillet(s, edges, length)
}

// Shell hollows a solid to the given wall thickness: the result is the
// solid minus its inward offset by thickness, a uniform closed shell.
// faces is accepted for interface conformance and not read; no face is
// opened.
func (k *SdfxKernel) Shell(s kernel.Solid, faces []kernel.Face, thickness float64) (kernel.Solid, error) {
	if thickness <= 0 {
		return nil, &kernel.BackendFailure{Op: "shell", Message: "thickness must be positive"}
	}
	outer := unwrap(s)
	inner := sdf.Offset3D(outer, -thickness)
	shelled := sdf.Difference3D(outer, inner)
	return wrap(shelled), nil
}

// Translate moves a solid by v.
func (k *SdfxKernel) Translate(s kernel.Solid, v geom.Vec3) kernel.Solid {
	m := sdf.Translate3d(toV3(v))
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// Transform applies an arbitrary 4x4 transform to a solid.
func (k *SdfxKernel) Transform(s kernel.Solid, mat geom.Mat4) kernel.Solid {
	m := sdf.M44{}
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			m[r*4+c] = mat[r*4+c]
		}
	}
	return wrap(sdf.Transform3D(unwrap(s), m))
}
