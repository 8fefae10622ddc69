package color

import (
	"fmt"

	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/diag"
)

// Finish is the surface-finish enum a Material carries.
type Finish int

const (
	Matte Finish = iota
	Satin
	Glossy
	Brushed
	Polished
	Anodized
	Metallic
)

func (f Finish) String() string {
	switch f {
	case Matte:
		return "matte"
	case Satin:
		return "satin"
	case Glossy:
		return "glossy"
	case Brushed:
		return "brushed"
	case Polished:
		return "polished"
	case Anodized:
		return "anodized"
	case Metallic:
		return "metallic"
	default:
		return fmt.Sprintf("Finish(%d)", int(f))
	}
}

var finishByName = map[string]Finish{
	"matte":    Matte,
	"satin":    Satin,
	"glossy":   Glossy,
	"brushed":  Brushed,
	"polished": Polished,
	"anodized": Anodized,
	"metallic": Metallic,
}

// ParseFinish looks up a finish by name.
func ParseFinish(name string) (Finish, bool) {
	f, ok := finishByName[name]
	return f, ok
}

// Material is a named PBR material bundle.
type Material struct {
	Name          string
	BaseColor     RGBA
	Finish        Finish
	Metalness     float64 // 0..1
	Roughness     float64 // 0..1
	Opacity       float64 // 0..1
	Density       float64 // g/cm^3
	Cost          float64 // per-unit-volume cost hint, currency-agnostic
	PrintMaterial string  // e.g. "PLA", "PETG", "resin"
	CNCSuitable   bool

	// finishSet/cncSet let Define's merge distinguish "explicitly set to
	// the zero value" from "not set" for the two fields whose zero value
	// (Matte, false) is also a legitimate explicit value. The document
	// layer sets these when building an override Material from YAML keys
	// that were actually present, even if the decoded value is the zero
	// value.
	finishSet bool
	cncSet    bool
}

// SetFinish marks Finish as explicitly provided (as opposed to defaulted),
// for use when building an override Material to pass to Library.Define.
func (m *Material) SetFinish(f Finish) {
	m.Finish = f
	m.finishSet = true
}

// SetCNCSuitable marks CNCSuitable as explicitly provided.
func (m *Material) SetCNCSuitable(v bool) {
	m.CNCSuitable = v
	m.cncSet = true
}

// Library resolves material names against a built-in catalog plus any
// user-defined entries from a document's `materials:` section. User entries
// may extend a built-in by name via Base, overriding only the fields they
// set.
type Library struct {
	materials map[string]Material
}

// NewLibrary returns a Library seeded with the built-in catalog.
func NewLibrary() *Library {
	lib := &Library{materials: make(map[string]Material, len(builtinCatalog))}
	for _, m := range builtinCatalog {
		lib.materials[m.Name] = m
	}
	return lib
}

// Lookup returns the named material.
func (l *Library) Lookup(name string) (Material, bool) {
	m, ok := l.materials[name]
	return m, ok
}

// Names returns every registered material name.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.materials))
	for name := range l.materials {
		names = append(names, name)
	}
	return names
}

// Define registers a user-defined material. If base is non-empty, the new
// entry starts as a copy of the named base material (which must already be
// registered — built-in or previously user-defined) and override supplies
// the fields to replace on top of it. If base is empty, override must be a
// complete Material.
func (l *Library) Define(name string, base string, override Material) error {
	result := override
	if base != "" {
		baseMat, ok := l.materials[base]
		if !ok {
			candidates := l.Names()
			suggestion, _ := diag.NearestName(base, candidates)
			return diag.Diagnostic{
				Kind:       diag.Schema,
				Path:       []string{"materials", name, "base"},
				Message:    fmt.Sprintf("unknown base material %q", base),
				Suggestion: suggestion,
			}
		}
		result = mergeMaterial(baseMat, override)
	}
	result.Name = name
	l.materials[name] = result
	return nil
}

// Collides reports whether name already names a registered material —
// callers use this before Define to raise a diag.Warning for a built-in
// shadowed by a user entry.
func (l *Library) Collides(name string) bool {
	_, ok := l.materials[name]
	return ok
}

// mergeMaterial overlays the non-zero-value fields of override on top of
// base. A field counts as "set" in override if it differs from the zero
// value of its type; this is the same shallow-merge idiom the document
// schema uses elsewhere for `base:`-extended entries.
func mergeMaterial(base, override Material) Material {
	out := base
	if override.BaseColor != (RGBA{}) {
		out.BaseColor = override.BaseColor
	}
	if override.Finish != 0 || override.finishSet {
		out.Finish = override.Finish
	}
	if override.Metalness != 0 {
		out.Metalness = override.Metalness
	}
	if override.Roughness != 0 {
		out.Roughness = override.Roughness
	}
	if override.Opacity != 0 {
		out.Opacity = override.Opacity
	}
	if override.Density != 0 {
		out.Density = override.Density
	}
	if override.Cost != 0 {
		out.Cost = override.Cost
	}
	if override.PrintMaterial != "" {
		out.PrintMaterial = override.PrintMaterial
	}
	if override.cncSet {
		out.CNCSuitable = override.CNCSuitable
	}
	return out
}
