package build

import (
	"fmt"
	"sort"

	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/color"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/diag"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/doc"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/kernel"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/param"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/registry"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/spatial"
)

// sketchSpec is a parsed (but not yet kernel-built) sketch part: its plane
// and its ordered shape list. Consumed lazily by an extrude/revolve/sweep/
// loft operation.
type sketchSpec struct {
	plane  interface{} // "XY"/"XZ"/"YZ" or a face reference spec
	shapes []SketchShape
}

// Compiler runs the five-step document pipeline: parameters, palette and
// materials, parts, operations, export selection. Step 4 performs no
// retries, reorderings, or parallelism — a failing operation is fatal for
// the build.
type Compiler struct {
	Kernel kernel.Kernel
	Fonts  *FontRegistry
}

// CompileResult is everything a build produces: the populated registry, the
// resolved export target part name, and the accumulated diagnostic report
// (errors fatal, warnings advisory).
type CompileResult struct {
	Registry   *registry.Registry
	Palette    map[string]color.RGBA
	Materials  *color.Library
	ExportPart string
	Report     diag.Report
}

// Compile runs the pipeline over a parsed document.
func (c *Compiler) Compile(d *doc.Document) *CompileResult {
	result := &CompileResult{Registry: registry.New()}

	env, err := param.NewEnv(d.Parameters)
	if err != nil {
		result.Report.AddError(toDiagnostic(err))
		return result
	}

	palette, materials, report := buildPaletteAndMaterials(d, env)
	result.Palette = palette
	result.Materials = materials
	result.Report.Merge(report)
	if !result.Report.OK() {
		return result
	}

	refs := spatial.NewResolver(result.Registry, c.Kernel, d.References)
	sketches := map[string]sketchSpec{}
	consumed := map[string]bool{}

	for _, name := range sortedKeys(d.Parts) {
		raw := d.Parts[name]
		path := []string{"parts", name}
		if err := c.buildPart(result, env, palette, materials, sketches, name, raw, path); err != nil {
			result.Report.AddError(toDiagnostic(err))
		}
	}
	if !result.Report.OK() {
		return result
	}

	engine := &Engine{Kernel: c.Kernel, Registry: result.Registry, Refs: refs}
	var lastOutput string
	for i, op := range d.Operations {
		path := []string{"operations", fmt.Sprint(i), op.Name}
		resolved, err := env.Resolve(path, op.Fields)
		if err != nil {
			result.Report.AddError(toDiagnostic(err))
			break
		}
		fields, _ := resolved.(map[string]interface{})
		for _, in := range operationInputs(op.Type, fields) {
			consumed[in] = true
		}
		if err := c.dispatchOperation(engine, sketches, op.Name, op.Type, fields, path); err != nil {
			result.Report.AddError(toDiagnostic(err))
			break
		}
		lastOutput = op.Name
	}
	if !result.Report.OK() {
		return result
	}

	for _, orphan := range result.Registry.Orphans(consumed) {
		if orphan == d.Export.DefaultPart || orphan == lastOutput {
			continue
		}
		result.Report.AddWarning(diag.Warning{Path: []string{"parts", orphan}, Message: fmt.Sprintf("part %q is never consumed or exported", orphan)})
	}

	result.ExportPart = d.Export.DefaultPart
	if result.ExportPart == "" {
		result.ExportPart = lastOutput
	}
	if _, ok := result.Registry.Get(result.ExportPart); !ok {
		result.Report.AddError(diag.Diagnostic{Kind: diag.Operation, Path: []string{"export", "default_part"}, Message: fmt.Sprintf("export part %q does not exist", result.ExportPart)})
	}
	return result
}

func toDiagnostic(err error) diag.Diagnostic {
	if d, ok := err.(diag.Diagnostic); ok {
		return d
	}
	return diag.Diagnostic{Kind: diag.Operation, Message: err.Error()}
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func buildPaletteAndMaterials(d *doc.Document, env *param.Env) (map[string]color.RGBA, *color.Library, diag.Report) {
	var report diag.Report
	palette := map[string]color.RGBA{}
	for _, name := range sortedStringKeys(d.Colors) {
		path := []string{"colors", name}
		resolved, err := env.Resolve(path, d.Colors[name])
		if err != nil {
			report.AddError(toDiagnostic(err))
			continue
		}
		c, err := color.ParseValue(path, resolved, palette)
		if err != nil {
			report.AddError(toDiagnostic(err))
			continue
		}
		palette[name] = c
	}

	lib := color.NewLibrary()
	for _, name := range sortedMaterialKeys(d.Materials) {
		decl := d.Materials[name]
		path := []string{"materials", name}
		if lib.Collides(name) {
			report.AddWarning(diag.Warning{Path: path, Message: fmt.Sprintf("material %q shadows a built-in catalog entry", name)})
		}
		override, err := materialFromFields(path, decl.Fields, palette, env)
		if err != nil {
			report.AddError(toDiagnostic(err))
			continue
		}
		if err := lib.Define(name, decl.Base, override); err != nil {
			report.AddError(toDiagnostic(err))
		}
	}
	return palette, lib, report
}

func sortedStringKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedMaterialKeys(m map[string]doc.MaterialDecl) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func materialFromFields(path []string, fields map[string]interface{}, palette map[string]color.RGBA, env *param.Env) (color.Material, error) {
	var m color.Material
	resolved, err := env.Resolve(path, fields)
	if err != nil {
		return m, err
	}
	f, _ := resolved.(map[string]interface{})
	if raw, ok := f["base_color"]; ok {
		c, err := color.ParseValue(append(path, "base_color"), raw, palette)
		if err != nil {
			return m, err
		}
		m.BaseColor = c
	}
	if raw, ok := toFloat(f["metalness"]); ok {
		m.Metalness = raw
	}
	if raw, ok := toFloat(f["roughness"]); ok {
		m.Roughness = raw
	}
	if raw, ok := toFloat(f["opacity"]); ok {
		m.Opacity = raw
	}
	if raw, ok := toFloat(f["density"]); ok {
		m.Density = raw
	}
	if raw, ok := toFloat(f["cost"]); ok {
		m.Cost = raw
	}
	if s, ok := f["print_material"].(string); ok {
		m.PrintMaterial = s
	}
	if s, ok := f["finish"].(string); ok {
		if finish, ok := color.ParseFinish(s); ok {
			m.SetFinish(finish)
		}
	}
	if v, ok := f["cnc_suitable"].(bool); ok {
		m.SetCNCSuitable(v)
	}
	return m, nil
}
