// Package doc parses a TiaCAD YAML document into the compiler's input
// structures: an ordered parameter declaration list, raw color/material/
// reference/part specifications (left as generic decoded values for the
// downstream packages that know how to interpret them), an ordered
// operation list, and the export configuration.
package doc

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/diag"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/param"
)

// Document is the parsed (but not yet resolved or compiled) form of a
// document's top-level YAML keys.
type Document struct {
	SchemaVersion string
	Metadata      map[string]interface{}
	Parameters    []param.Declaration
	Colors        map[string]interface{}
	Materials     map[string]MaterialDecl
	References    map[string]interface{}
	Parts         map[string]interface{}
	Operations    []OperationDecl
	Export        ExportDecl
}

// MaterialDecl is one entry of the document's `materials:` section: an
// optional `base:` builtin-catalog name to extend, plus whatever other
// fields were declared (consumed by pkg/color.Library.Define).
type MaterialDecl struct {
	Base   string
	Fields map[string]interface{}
}

// OperationDecl is one entry of the document's ordered `operations:`
// list: a declared name, a dispatch `type`, and the type-specific fields.
type OperationDecl struct {
	Name   string
	Type   string
	Fields map[string]interface{}
}

// FormatSpec is one entry of `export.formats`.
type FormatSpec struct {
	Format    string // "stl", "3mf", "step", "obj"
	Path      string
	Tolerance float64 // 0 means "use the build default"
	Parts     []string
}

// ExportDecl is the document's `export:` section.
type ExportDecl struct {
	DefaultPart string
	Formats     []FormatSpec
}

// Parse decodes data into a Document, reporting every schema problem it
// finds (unknown top-level shape, missing required keys) rather than
// stopping at the first one.
func Parse(data []byte) (*Document, diag.Report) {
	var report diag.Report

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		report.AddError(diag.Diagnostic{Kind: diag.Schema, Message: fmt.Sprintf("invalid YAML: %v", err)})
		return nil, report
	}
	if len(root.Content) == 0 {
		report.AddError(diag.Diagnostic{Kind: diag.Schema, Message: "document is empty"})
		return nil, report
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		report.AddError(diag.Diagnostic{Kind: diag.Schema, Message: "document root must be a mapping"})
		return nil, report
	}

	d := &Document{
		Metadata:   map[string]interface{}{},
		Colors:     map[string]interface{}{},
		Materials:  map[string]MaterialDecl{},
		References: map[string]interface{}{},
		Parts:      map[string]interface{}{},
	}

	for i := 0; i+1 < len(top.Content); i += 2 {
		key := top.Content[i].Value
		value := top.Content[i+1]
		switch key {
		case "schema_version":
			_ = value.Decode(&d.SchemaVersion)
		case "metadata":
			if err := value.Decode(&d.Metadata); err != nil {
				report.AddError(diag.Diagnostic{Kind: diag.Schema, Path: []string{"metadata"}, Message: err.Error()})
			}
		case "parameters":
			decls, errs := decodeParameters(value)
			d.Parameters = decls
			report.Errors = append(report.Errors, errs...)
		case "colors":
			if err := value.Decode(&d.Colors); err != nil {
				report.AddError(diag.Diagnostic{Kind: diag.Schema, Path: []string{"colors"}, Message: err.Error()})
			}
		case "materials":
			mats, errs := decodeMaterials(value)
			d.Materials = mats
			report.Errors = append(report.Errors, errs...)
		case "references":
			if err := value.Decode(&d.References); err != nil {
				report.AddError(diag.Diagnostic{Kind: diag.Schema, Path: []string{"references"}, Message: err.Error()})
			}
		case "parts":
			if err := value.Decode(&d.Parts); err != nil {
				report.AddError(diag.Diagnostic{Kind: diag.Schema, Path: []string{"parts"}, Message: err.Error()})
			}
		case "operations":
			ops, errs := decodeOperations(value)
			d.Operations = ops
			report.Errors = append(report.Errors, errs...)
		case "export":
			export, errs := decodeExport(value)
			d.Export = export
			report.Errors = append(report.Errors, errs...)
		default:
			report.AddWarning(diag.Warning{Path: []string{key}, Message: fmt.Sprintf("unknown top-level key %q is ignored", key)})
		}
	}

	if len(d.Parts) == 0 {
		report.AddError(diag.Diagnostic{Kind: diag.Schema, Path: []string{"parts"}, Message: "at least one part is required"})
	}
	if d.Export.DefaultPart == "" && len(d.Export.Formats) == 0 {
		report.AddError(diag.Diagnostic{Kind: diag.Schema, Path: []string{"export"}, Message: "export section is required"})
	}

	if !report.OK() {
		return nil, report
	}
	return d, report
}

// decodeParameters walks a mapping node pair-by-pair to preserve source
// order — the parameter evaluator's dependency resolution depends on it.
func decodeParameters(node *yaml.Node) ([]param.Declaration, []diag.Diagnostic) {
	if node.Kind != yaml.MappingNode {
		return nil, []diag.Diagnostic{{Kind: diag.Schema, Path: []string{"parameters"}, Message: "parameters must be a mapping"}}
	}
	var decls []param.Declaration
	var errs []diag.Diagnostic
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		valueNode := node.Content[i+1]
		if valueNode.Kind != yaml.ScalarNode {
			errs = append(errs, diag.Diagnostic{Kind: diag.Schema, Path: []string{"parameters", name}, Message: "parameter value must be a scalar"})
			continue
		}
		decls = append(decls, param.Declaration{Name: name, Expr: exprText(valueNode.Value)})
	}
	return decls, errs
}

// exprText strips a `${...}` wrapper if present; parameter declarations
// may be written either bare (`w/2`) or wrapped (`${w/2}`).
func exprText(raw string) string {
	if strings.HasPrefix(raw, "${") && strings.HasSuffix(raw, "}") && len(raw) > 3 {
		return raw[2 : len(raw)-1]
	}
	return raw
}

func decodeMaterials(node *yaml.Node) (map[string]MaterialDecl, []diag.Diagnostic) {
	out := map[string]MaterialDecl{}
	if node.Kind == 0 {
		return out, nil
	}
	if node.Kind != yaml.MappingNode {
		return out, []diag.Diagnostic{{Kind: diag.Schema, Path: []string{"materials"}, Message: "materials must be a mapping"}}
	}
	var errs []diag.Diagnostic
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		var fields map[string]interface{}
		if err := node.Content[i+1].Decode(&fields); err != nil {
			errs = append(errs, diag.Diagnostic{Kind: diag.Schema, Path: []string{"materials", name}, Message: err.Error()})
			continue
		}
		base, _ := fields["base"].(string)
		delete(fields, "base")
		out[name] = MaterialDecl{Base: base, Fields: fields}
	}
	return out, errs
}

func decodeOperations(node *yaml.Node) ([]OperationDecl, []diag.Diagnostic) {
	if node.Kind == 0 {
		return nil, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, []diag.Diagnostic{{Kind: diag.Schema, Path: []string{"operations"}, Message: "operations must be a list"}}
	}
	var ops []OperationDecl
	var errs []diag.Diagnostic
	for i, item := range node.Content {
		var fields map[string]interface{}
		if err := item.Decode(&fields); err != nil {
			errs = append(errs, diag.Diagnostic{Kind: diag.Schema, Path: []string{"operations", fmt.Sprint(i)}, Message: err.Error()})
			continue
		}
		name, _ := fields["name"].(string)
		typ, _ := fields["type"].(string)
		if name == "" || typ == "" {
			errs = append(errs, diag.Diagnostic{Kind: diag.Schema, Path: []string{"operations", fmt.Sprint(i)}, Message: "operation requires name and type"})
			continue
		}
		delete(fields, "name")
		delete(fields, "type")
		ops = append(ops, OperationDecl{Name: name, Type: typ, Fields: fields})
	}
	return ops, errs
}

func decodeExport(node *yaml.Node) (ExportDecl, []diag.Diagnostic) {
	var raw struct {
		DefaultPart string                   `yaml:"default_part"`
		Formats     []map[string]interface{} `yaml:"formats"`
	}
	if err := node.Decode(&raw); err != nil {
		return ExportDecl{}, []diag.Diagnostic{{Kind: diag.Schema, Path: []string{"export"}, Message: err.Error()}}
	}
	out := ExportDecl{DefaultPart: raw.DefaultPart}
	var errs []diag.Diagnostic
	for i, f := range raw.Formats {
		format, _ := f["format"].(string)
		if format == "" {
			errs = append(errs, diag.Diagnostic{Kind: diag.Schema, Path: []string{"export", "formats", fmt.Sprint(i)}, Message: "format spec requires a format name"})
			continue
		}
		path, _ := f["path"].(string)
		tolerance, _ := toFloat(f["tolerance"])
		var parts []string
		if rawParts, ok := f["parts"].([]interface{}); ok {
			for _, p := range rawParts {
				if s, ok := p.(string); ok {
					parts = append(parts, s)
				}
			}
		}
		out.Formats = append(out.Formats, FormatSpec{Format: format, Path: path, Tolerance: tolerance, Parts: parts})
	}
	return out, errs
}

// toFloat accepts any of the numeric forms yaml.v3 decodes into
// interface{} (int-valued scalars decode as int, decimals as float64), so a
// document writing `tolerance: 1` parses the same as `tolerance: 1.0`.
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
