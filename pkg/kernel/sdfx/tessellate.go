package sdfx

import (
	"github.com/deadsy/sdfx/render"

	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/kernel"
)

// Tessellate converts a solid to a triangle mesh using marching cubes.
// tolerance scales the cell count: a smaller tolerance increases
// resolution (at quadratic-in-2D / cubic-in-3D cost), matching the
// tolerance-to-resolution tradeoff the document compiler's BuildOptions
// exposes to callers.
func (k *SdfxKernel) Tessellate(s kernel.Solid, tolerance float64) (*kernel.Mesh, error) {
	sdf3 := unwrap(s)

	cells := cellsForTolerance(tolerance)
	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(sdf3, renderer)

	numTri := len(triangles)
	vertices := make([]float32, 0, numTri*9)
	normals := make([]float32, 0, numTri*9)
	indices := make([]uint32, 0, numTri*3)
	seen := make(map[vertexKey]uint32, numTri*3)

	for _, tri := range triangles {
		n := tri.Normal()
		nx, ny, nz := float32(n.X), float32(n.Y), float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			key := roundVertexKey(v.X, v.Y, v.Z)
			idx, ok := seen[key]
			if !ok {
				idx = uint32(len(vertices) / 3)
				vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
				normals = append(normals, nx, ny, nz)
				seen[key] = idx
			}
			indices = append(indices, idx)
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}

// vertexKey and roundVertexKey give the tessellation vertex cache
// exact-match lookup on a fixed-precision rounding of position, mirroring
// the STEP mesh converter's point cache. Marching cubes emits each shared
// vertex once per adjacent triangle; deduplicating here keeps vertex counts
// and mesh size stable regardless of triangle emission order.
type vertexKey [3]int64

func roundVertexKey(x, y, z float64) vertexKey {
	const scale = 1e6
	return vertexKey{int64(x * scale), int64(y * scale), int64(z * scale)}
}

// cellsForTolerance maps an export tolerance (mm) to a marching-cubes cell
// count. Smaller tolerances ask for more cells, clamped to a sane range so
// a mistyped tiny tolerance cannot make a build hang.
func cellsForTolerance(tolerance float64) int {
	if tolerance <= 0 {
		return defaultMeshCells
	}
	cells := int(100.0 / tolerance)
	if cells < 50 {
		cells = 50
	}
	if cells > 800 {
		cells = 800
	}
	return cells
}
