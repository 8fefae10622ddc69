// Package registry implements the part registry and transform tracker: an
// append-only, insertion-order-preserved mapping from name to part, each
// carrying its geometry handle, initial and cumulative-transformed
// position, and appearance metadata.
package registry

import (
	"fmt"

	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/color"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/diag"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/geom"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/kernel"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/spatial"
)

// Metadata is the appearance/provenance bag attached to every registry
// entry: primitive kind (for the spatial resolver's per-kind face table),
// color, material, and the name of the operation that produced the part.
type Metadata struct {
	Kind            spatial.PartKind
	Color           *color.RGBA
	Material        *color.Material
	SourceOperation string
}

// Part is a named solid in the registry.
type Part struct {
	Name            string
	Solid           kernel.Solid
	InitialPosition geom.Vec3 // immutable, set at creation
	Cumulative      geom.Mat4 // identity at creation; left-multiplied per transform step
	Metadata        Metadata
}

// CurrentPosition returns the part's world-space origin after its
// cumulative transform: current_position = cumulative * initial_position.
func (p *Part) CurrentPosition() geom.Vec3 {
	return p.Cumulative.Apply(p.InitialPosition)
}

// Registry is the append-only, order-preserving map of named parts built
// during a compilation. Names are unique; registering a name twice is a
// fatal DuplicatePart. Finishing operations swap a part's geometry handle
// in place via ReplaceGeometry; every other operation registers a new
// name, per spec — the input part is never mutated by a transform.
type Registry struct {
	parts map[string]*Part
	order []string
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{parts: make(map[string]*Part)}
}

// Register adds a new part under name with an identity cumulative
// transform. It is the entry point for primitives, sketch-derived solids,
// and booleans/patterns/transforms (the last of which compute their own
// cumulative transform and pass it via RegisterTransformed).
func (r *Registry) Register(name string, solid kernel.Solid, initial geom.Vec3, meta Metadata) (*Part, error) {
	return r.register(name, solid, initial, geom.Identity(), meta)
}

// RegisterTransformed adds a new part under name whose cumulative
// transform is already known (the result of composing one or more
// transform steps against an input part's cumulative transform).
func (r *Registry) RegisterTransformed(name string, solid kernel.Solid, initial geom.Vec3, cumulative geom.Mat4, meta Metadata) (*Part, error) {
	return r.register(name, solid, initial, cumulative, meta)
}

func (r *Registry) register(name string, solid kernel.Solid, initial geom.Vec3, cumulative geom.Mat4, meta Metadata) (*Part, error) {
	if _, exists := r.parts[name]; exists {
		return nil, diag.Diagnostic{
			Kind:    diag.Operation,
			Path:    []string{"parts", name},
			Message: fmt.Sprintf("duplicate part name %q", name),
		}
	}
	p := &Part{Name: name, Solid: solid, InitialPosition: initial, Cumulative: cumulative, Metadata: meta}
	r.parts[name] = p
	r.order = append(r.order, name)
	return p, nil
}

// ReplaceGeometry swaps name's geometry handle in place — used by
// finishing operations (fillet, chamfer, shell), which modify a part
// under its existing name rather than registering a new one. The part's
// initial position, cumulative transform, and metadata are unchanged.
func (r *Registry) ReplaceGeometry(name string, solid kernel.Solid) error {
	p, ok := r.parts[name]
	if !ok {
		return diag.Diagnostic{Kind: diag.Operation, Message: fmt.Sprintf("unknown part %q", name)}
	}
	p.Solid = solid
	return nil
}

// Get returns the part registered under name.
func (r *Registry) Get(name string) (*Part, bool) {
	p, ok := r.parts[name]
	return p, ok
}

// Names returns every registered part name in insertion order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Part implements spatial.PartSource: it exposes the slice of registry
// state the reference resolver needs, without exposing registry
// mutation.
func (r *Registry) Part(name string) (spatial.PartState, bool) {
	p, ok := r.parts[name]
	if !ok {
		return spatial.PartState{}, false
	}
	return spatial.PartState{
		Kind:            p.Metadata.Kind,
		Solid:           p.Solid,
		CurrentPosition: p.CurrentPosition(),
	}, true
}

var _ spatial.PartSource = (*Registry)(nil)

// InheritAppearance implements the propagation rule shared by every
// boolean operation (union/difference/intersection all inherit the first
// input's appearance) and by pattern generation (every copy inherits the
// source part's appearance verbatim, with no per-instance override).
func InheritAppearance(inputs ...Metadata) Metadata {
	if len(inputs) == 0 {
		return Metadata{}
	}
	return inputs[0]
}

// Orphans returns the names of parts that were never exported and never
// consumed as input to another operation — an advisory signal, not an
// error, per spec.md's orphan-part design note. consumed is the set of
// part names observed as an operation input or export target.
func (r *Registry) Orphans(consumed map[string]bool) []string {
	var orphans []string
	for _, name := range r.order {
		if !consumed[name] {
			orphans = append(orphans, name)
		}
	}
	return orphans
}
