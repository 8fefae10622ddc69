package build

import (
	"fmt"

	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/color"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/param"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/registry"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/spatial"
)

// buildPart resolves one parts: entry's parameter expressions and either
// registers a solid directly (primitives) or stashes a lazy sketch spec for
// a later extrude/revolve/sweep/loft operation to consume.
func (c *Compiler) buildPart(
	result *CompileResult,
	env *param.Env,
	palette map[string]color.RGBA,
	materials *color.Library,
	sketches map[string]sketchSpec,
	name string,
	raw interface{},
	path []string,
) error {
	resolved, err := env.Resolve(path, raw)
	if err != nil {
		return err
	}
	fields, ok := resolved.(map[string]interface{})
	if !ok {
		return fmt.Errorf("part %q must be a mapping", name)
	}
	kind, _ := fields["type"].(string)
	if kind == "" {
		return fmt.Errorf("part %q is missing a type", name)
	}

	if kind == "sketch" {
		spec, err := parseSketchSpec(fields)
		if err != nil {
			return err
		}
		sketches[name] = spec
		return nil
	}

	solid, explicit, partKind, err := BuildPrimitive(c.Kernel, kind, fields)
	if err != nil {
		return err
	}
	meta, err := metadataFromFields(fields, partKind, palette, materials, path)
	if err != nil {
		return err
	}
	_, err = result.Registry.Register(name, solid, explicit, meta)
	return err
}

// metadataFromFields reads a part's optional color/material keys into its
// registry appearance metadata. color: is parsed against the palette;
// material: names a Library entry.
func metadataFromFields(fields map[string]interface{}, kind spatial.PartKind, palette map[string]color.RGBA, materials *color.Library, path []string) (registry.Metadata, error) {
	meta := registry.Metadata{Kind: kind}
	if raw, ok := fields["color"]; ok {
		c, err := color.ParseValue(append(append([]string{}, path...), "color"), raw, palette)
		if err != nil {
			return registry.Metadata{}, err
		}
		meta.Color = &c
	}
	if name, ok := fields["material"].(string); ok {
		m, ok := materials.Lookup(name)
		if !ok {
			return registry.Metadata{}, fmt.Errorf("unknown material %q", name)
		}
		meta.Material = &m
	}
	return meta, nil
}

func parseSketchSpec(fields map[string]interface{}) (sketchSpec, error) {
	plane := fields["plane"]
	if plane == nil {
		plane = "XY"
	}
	rawShapes, ok := fields["shapes"].([]interface{})
	if !ok {
		return sketchSpec{}, fmt.Errorf("sketch requires a shapes list")
	}
	shapes := make([]SketchShape, 0, len(rawShapes))
	for i, raw := range rawShapes {
		m, ok := raw.(map[string]interface{})
		if !ok {
			return sketchSpec{}, fmt.Errorf("shapes[%d] must be a mapping", i)
		}
		shapeKind, _ := m["shape"].(string)
		if shapeKind == "" {
			return sketchSpec{}, fmt.Errorf("shapes[%d] is missing a shape type", i)
		}
		shapes = append(shapes, SketchShape{Kind: shapeKind, Fields: m})
	}
	return sketchSpec{plane: plane, shapes: shapes}, nil
}
