package main

import (
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/geom"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/kernel"
)

// stubSolid/stubSketch/stubKernel are a minimal kernel.Kernel good enough
// to exercise the CLI's compile-then-export path without pulling in the
// real tessellation backend: every solid is just a bounding box, and
// Tessellate turns that box into a triangulated mesh.
type stubSolid struct{ min, max geom.Vec3 }

func (s *stubSolid) BoundingBox() (geom.Vec3, geom.Vec3) { return s.min, s.max }

type stubSketch struct{}

func (stubSketch) Bounds() ([2]float64, [2]float64) { return [2]float64{}, [2]float64{1, 1} }

type stubKernel struct{}

var _ kernel.Kernel = stubKernel{}

func (stubKernel) Box(size geom.Vec3, origin kernel.OriginMode) kernel.Solid {
	if origin == kernel.OriginCenter {
		half := size.Scale(0.5)
		return &stubSolid{min: half.Scale(-1), max: half}
	}
	return &stubSolid{max: size}
}

func (stubKernel) Cylinder(radius, height float64, origin kernel.OriginMode) kernel.Solid {
	return &stubSolid{max: geom.Vec3{X: radius, Y: radius, Z: height}}
}
func (stubKernel) Sphere(radius float64) kernel.Solid {
	r := geom.Vec3{X: radius, Y: radius, Z: radius}
	return &stubSolid{min: r.Scale(-1), max: r}
}
func (stubKernel) Cone(radius1, radius2, height float64) kernel.Solid {
	return &stubSolid{max: geom.Vec3{X: radius1, Y: radius1, Z: height}}
}
func (stubKernel) Torus(major, minor float64) kernel.Solid {
	return &stubSolid{max: geom.Vec3{X: major, Y: major, Z: minor}}
}
func (stubKernel) Extrude(sketch kernel.Sketch, distance float64, direction geom.Vec3) (kernel.Solid, error) {
	return &stubSolid{max: geom.Vec3{X: 1, Y: 1, Z: distance}}, nil
}
func (stubKernel) Revolve(sketch kernel.Sketch, axis geom.Vec3, angle float64) (kernel.Solid, error) {
	return &stubSolid{max: geom.Vec3{X: 1, Y: 1, Z: 1}}, nil
}
func (stubKernel) Sweep(sketch kernel.Sketch, path []geom.Vec3) (kernel.Solid, error) {
	return &stubSolid{max: geom.Vec3{X: 1, Y: 1, Z: 1}}, nil
}
func (stubKernel) Loft(profiles []kernel.Sketch, ruled bool) (kernel.Solid, error) {
	return &stubSolid{max: geom.Vec3{X: 1, Y: 1, Z: 1}}, nil
}
func (stubKernel) Union(solids ...kernel.Solid) kernel.Solid          { return solids[0] }
func (stubKernel) Difference(base kernel.Solid, subtract ...kernel.Solid) kernel.Solid { return base }
func (stubKernel) Intersection(solids ...kernel.Solid) kernel.Solid   { return solids[0] }
func (stubKernel) Hull(solids []kernel.Solid, tolerance float64) (kernel.Solid, error) {
	return solids[0], nil
}
func (stubKernel) Fillet(s kernel.Solid, edges []kernel.Edge, radius float64) (kernel.Solid, error) {
	return s, nil
}
func (stubKernel) Chamfer(s kernel.Solid, edges []kernel.Edge, length float64, length2 *float64) (kernel.Solid, error) {
	return s, nil
}
func (stubKernel) Shell(s kernel.Solid, faces []kernel.Face, thickness float64) (kernel.Solid, error) {
	return s, nil
}
func (stubKernel) Translate(s kernel.Solid, v geom.Vec3) kernel.Solid { return s }
func (stubKernel) Transform(s kernel.Solid, m geom.Mat4) kernel.Solid { return s }
func (stubKernel) SelectFaces(s kernel.Solid, selector string) ([]kernel.Face, error) {
	return nil, nil
}
func (stubKernel) SelectEdges(s kernel.Solid, selector string) ([]kernel.Edge, error) {
	return nil, nil
}
func (stubKernel) FaceCenter(f kernel.Face) geom.Vec3              { return geom.Vec3{} }
func (stubKernel) FaceNormal(f kernel.Face) geom.Vec3              { return geom.WorldZ }
func (stubKernel) EdgePointAt(e kernel.Edge, t float64) geom.Vec3  { return geom.Vec3{} }
func (stubKernel) EdgeTangentAt(e kernel.Edge, t float64) geom.Vec3 { return geom.WorldX }

// Tessellate turns the solid's bounding box into a two-triangle-per-face
// box mesh, with flat per-vertex normals, enough for every exporter to
// have real (non-empty) geometry to write.
func (stubKernel) Tessellate(s kernel.Solid, tolerance float64) (*kernel.Mesh, error) {
	min, max := s.BoundingBox()
	if min == max {
		return nil, &kernel.BackendFailure{Op: "tessellate", Message: "degenerate solid"}
	}
	corners := [8]geom.Vec3{
		{X: min.X, Y: min.Y, Z: min.Z}, {X: max.X, Y: min.Y, Z: min.Z},
		{X: max.X, Y: max.Y, Z: min.Z}, {X: min.X, Y: max.Y, Z: min.Z},
		{X: min.X, Y: min.Y, Z: max.Z}, {X: max.X, Y: min.Y, Z: max.Z},
		{X: max.X, Y: max.Y, Z: max.Z}, {X: min.X, Y: max.Y, Z: max.Z},
	}
	faces := [6][4]int{
		{0, 1, 2, 3}, {4, 5, 6, 7}, {0, 1, 5, 4},
		{2, 3, 7, 6}, {1, 2, 6, 5}, {3, 0, 4, 7},
	}
	var verts, normals []float32
	var indices []uint32
	for _, f := range faces {
		a, b, c, d := corners[f[0]], corners[f[1]], corners[f[2]], corners[f[3]]
		n := b.Sub(a).Cross(c.Sub(a)).Normalize()
		base := uint32(len(verts) / 3)
		for _, v := range []geom.Vec3{a, b, c, d} {
			verts = append(verts, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, float32(n.X), float32(n.Y), float32(n.Z))
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return &kernel.Mesh{Vertices: verts, Normals: normals, Indices: indices}, nil
}
