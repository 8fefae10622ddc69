package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/build"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/color"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/export/obj"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/export/step"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/export/stl"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/export/threemf"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/kernel"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/registry"
)

// exportSTL tessellates a single named part and writes it as binary STL.
// STL carries no per-part or multi-material structure, so a format spec
// naming more than one part is rejected rather than silently picking one.
func exportSTL(result *build.CompileResult, k kernel.Kernel, path string, names []string, tolerance float64) error {
	if len(names) != 1 {
		return fmt.Errorf("stl export takes exactly one part, got %d", len(names))
	}
	mesh, err := tessellatePart(result.Registry, k, names[0], tolerance)
	if err != nil {
		return err
	}
	return stl.WriteFile(path, mesh, "")
}

// exportSTEP tessellates a single named part and writes it as a STEP
// AP214 advanced-BREP representation, same single-solid constraint as STL.
func exportSTEP(result *build.CompileResult, k kernel.Kernel, path string, names []string, tolerance float64) error {
	if len(names) != 1 {
		return fmt.Errorf("step export takes exactly one part, got %d", len(names))
	}
	mesh, err := tessellatePart(result.Registry, k, names[0], tolerance)
	if err != nil {
		return err
	}
	return step.WriteFile(path, mesh, names[0])
}

// exportThreeMF tessellates every named part and writes a multi-material
// 3MF archive, one 3MF object per part, materials deduplicated by the
// exporter on (color, material name).
func exportThreeMF(result *build.CompileResult, k kernel.Kernel, path string, names []string, tolerance float64) error {
	parts := make([]threemf.Part, 0, len(names))
	for _, name := range names {
		mesh, err := tessellatePart(result.Registry, k, name, tolerance)
		if err != nil {
			return err
		}
		p, ok := result.Registry.Get(name)
		if !ok {
			return fmt.Errorf("part %q does not exist", name)
		}
		partColor, materialName := appearanceOf(result, p)
		parts = append(parts, threemf.Part{
			Name:     name,
			Mesh:     mesh,
			Color:    partColor,
			Material: materialName,
		})
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := threemf.Write(f, parts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// exportOBJ tessellates every named part and writes a Wavefront OBJ with
// an adjacent MTL sidecar when any part carries a material.
func exportOBJ(result *build.CompileResult, k kernel.Kernel, path string, names []string, tolerance float64) error {
	parts := make([]obj.Part, 0, len(names))
	seen := map[string]bool{}
	var materials []obj.MTLMaterial
	for _, name := range names {
		mesh, err := tessellatePart(result.Registry, k, name, tolerance)
		if err != nil {
			return err
		}
		p, ok := result.Registry.Get(name)
		if !ok {
			return fmt.Errorf("part %q does not exist", name)
		}
		partColor, materialName := appearanceOf(result, p)
		parts = append(parts, obj.Part{Name: name, Mesh: mesh, Material: materialName})
		if materialName != "" && !seen[materialName] {
			seen[materialName] = true
			materials = append(materials, obj.MTLMaterial{Name: materialName, Color: partColor})
		}
	}

	base := strings.TrimSuffix(path, ".obj")
	return obj.WriteFiles(base, parts, materials)
}

func tessellatePart(reg *registry.Registry, k kernel.Kernel, name string, tolerance float64) (*kernel.Mesh, error) {
	p, ok := reg.Get(name)
	if !ok {
		return nil, fmt.Errorf("part %q does not exist", name)
	}
	mesh, err := k.Tessellate(p.Solid, tolerance)
	if err != nil {
		return nil, fmt.Errorf("tessellating %q: %w", name, err)
	}
	mesh.PartName = name
	return mesh, nil
}

// appearanceOf resolves a part's export-facing color and material name: an
// explicit per-part color wins, falling back to the material's base color;
// the material name is empty when the part names no material.
func appearanceOf(result *build.CompileResult, p *registry.Part) (color.RGBA, string) {
	var materialName string
	c := color.Opaque(0.8, 0.8, 0.8)
	if p.Metadata.Material != nil {
		materialName = p.Metadata.Material.Name
		c = p.Metadata.Material.BaseColor
	}
	if p.Metadata.Color != nil {
		c = *p.Metadata.Color
	}
	return c, materialName
}
