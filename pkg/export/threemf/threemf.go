// Package threemf assembles a multi-material 3MF archive from exported
// parts, using github.com/hpinc/go3mf for the model document and its
// underlying OPC/ZIP packaging.
//
// Material groups are deduplicated by an exact (color, material name) key:
// two parts sharing both produce one <base> entry and two <item>s bound to
// the same property id.
package threemf

import (
	"fmt"
	stdcolor "image/color"
	"io"

	"github.com/hpinc/go3mf"

	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/color"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/kernel"
)

// Part is one exported solid: its tessellated mesh plus the appearance
// used to place it in the shared material group.
type Part struct {
	Name     string
	Mesh     *kernel.Mesh
	Color    color.RGBA
	Material string // catalog or print-material name; empty is a valid key
}

// materialKey is the exact-match dedup key from spec §4.8: RGBA and
// material name identity, nothing fuzzier.
type materialKey struct {
	r, g, b, a float32
	material   string
}

func keyOf(p Part) materialKey {
	return materialKey{
		r:        float32(p.Color.R),
		g:        float32(p.Color.G),
		b:        float32(p.Color.B),
		a:        float32(p.Color.A),
		material: p.Material,
	}
}

// Write encodes parts as a 3MF archive to w. Parts are visited in the
// given order; the first part to introduce a new (color, material) pair
// assigns its property index, so output is deterministic for a fixed
// input order.
func Write(w io.Writer, parts []Part) error {
	if len(parts) == 0 {
		return fmt.Errorf("3mf: no parts to export")
	}

	materials := &go3mf.BaseMaterials{ID: 1}
	indexByKey := map[materialKey]uint32{}

	model := &go3mf.Model{Units: go3mf.UnitMillimeter}

	for _, p := range parts {
		if p.Mesh == nil || p.Mesh.IsEmpty() {
			return fmt.Errorf("3mf: part %q has no geometry", p.Name)
		}
		k := keyOf(p)
		pIndex, ok := indexByKey[k]
		if !ok {
			pIndex = uint32(len(materials.Materials))
			materials.Materials = append(materials.Materials, go3mf.Base{
				Name:  materialName(p),
				Color: toStdColor(p.Color),
			})
			indexByKey[k] = pIndex
		}

		obj, err := buildObject(model, p, materials.ID, pIndex)
		if err != nil {
			return fmt.Errorf("3mf: part %q: %w", p.Name, err)
		}
		model.Resources.Objects = append(model.Resources.Objects, obj)
		model.Build.Items = append(model.Build.Items, &go3mf.Item{
			ObjectID:  obj.ID,
			Transform: go3mf.Identity(),
		})
	}

	model.Resources.Assets = append(model.Resources.Assets, materials)

	return go3mf.NewEncoder(w).Encode(model)
}

func materialName(p Part) string {
	if p.Material != "" {
		return p.Material
	}
	return p.Name
}

func toStdColor(c color.RGBA) stdcolor.RGBA {
	clamp := func(v float64) uint8 {
		if v <= 0 {
			return 0
		}
		if v >= 1 {
			return 255
		}
		return uint8(v*255 + 0.5)
	}
	return stdcolor.RGBA{R: clamp(c.R), G: clamp(c.G), B: clamp(c.B), A: clamp(c.A)}
}

func buildObject(model *go3mf.Model, p Part, assetID, pIndex uint32) (*go3mf.Object, error) {
	mesh := &go3mf.Mesh{}
	builder := go3mf.NewMeshBuilder(mesh)

	vertIDs := make([]uint32, p.Mesh.VertexCount())
	for i := range vertIDs {
		o := i * 3
		vertIDs[i] = builder.AddVertex(go3mf.Point3D{
			p.Mesh.Vertices[o],
			p.Mesh.Vertices[o+1],
			p.Mesh.Vertices[o+2],
		})
	}

	for t := 0; t < p.Mesh.TriangleCount(); t++ {
		i0 := vertIDs[p.Mesh.Indices[t*3]]
		i1 := vertIDs[p.Mesh.Indices[t*3+1]]
		i2 := vertIDs[p.Mesh.Indices[t*3+2]]
		mesh.Triangles = append(mesh.Triangles, go3mf.Triangle{
			Indices: [3]uint32{i0, i1, i2},
		})
	}

	return &go3mf.Object{
		ID:            model.Resources.UnusedID(),
		Name:          p.Name,
		ObjectType:    go3mf.ObjectTypeModel,
		DefaultPID:    assetID,
		DefaultPIndex: pIndex,
		Mesh:          mesh,
	}, nil
}
