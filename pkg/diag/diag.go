// Package diag defines the diagnostic taxonomy produced while parsing,
// resolving, and compiling a document: blocking errors, advisory warnings,
// and the aggregate report a build returns to its caller.
package diag

import (
	"fmt"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// Kind classifies a Diagnostic by which stage of the pipeline raised it.
type Kind int

const (
	// Schema covers malformed or missing required YAML structure.
	Schema Kind = iota
	// Parameter covers expression evaluation failures: undefined names,
	// cycles, and parse errors in `${...}` expressions.
	Parameter
	// Reference covers unresolved or cyclic spatial/named references.
	Reference
	// Operation covers invalid operation arguments or preconditions.
	Operation
	// Backend covers failures reported by the geometry kernel itself.
	Backend
	// Export covers failures writing an output file format.
	Export
)

func (k Kind) String() string {
	switch k {
	case Schema:
		return "schema"
	case Parameter:
		return "parameter"
	case Reference:
		return "reference"
	case Operation:
		return "operation"
	case Backend:
		return "backend"
	case Export:
		return "export"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Diagnostic is a blocking finding: the document cannot be compiled as
// written. Path is the dotted location within the document (e.g.
// "parts.bracket.dimensions.width") that the finding concerns; it may be
// empty for document-level findings.
type Diagnostic struct {
	Kind       Kind
	Message    string
	Path       []string
	Suggestion string // nearest valid name, if applicable; empty otherwise
}

func (d Diagnostic) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] ", d.Kind)
	if len(d.Path) > 0 {
		fmt.Fprintf(&b, "%s: ", strings.Join(d.Path, "."))
	}
	b.WriteString(d.Message)
	if d.Suggestion != "" {
		fmt.Fprintf(&b, " (did you mean %q?)", d.Suggestion)
	}
	return b.String()
}

// Warning is a non-blocking advisory finding: the document still compiles,
// but the author likely wants to know about it (font fallback, coplanar
// hull input, an orphaned part, a material collision on an exported face).
type Warning struct {
	Path    []string
	Message string
}

func (w Warning) String() string {
	if len(w.Path) == 0 {
		return w.Message
	}
	return fmt.Sprintf("%s: %s", strings.Join(w.Path, "."), w.Message)
}

// Report aggregates every diagnostic produced by a build. A Report with no
// Errors is a successful build, regardless of how many Warnings it carries.
type Report struct {
	Errors   []Diagnostic
	Warnings []Warning
}

// OK reports whether the build succeeded (no blocking errors).
func (r Report) OK() bool {
	return len(r.Errors) == 0
}

// AddError appends a Diagnostic to the report.
func (r *Report) AddError(d Diagnostic) {
	r.Errors = append(r.Errors, d)
}

// AddWarning appends a Warning to the report.
func (r *Report) AddWarning(w Warning) {
	r.Warnings = append(r.Warnings, w)
}

// Merge appends another report's findings onto r.
func (r *Report) Merge(other Report) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// levenshteinOptions matches the library's recommended defaults: unit
// insertion/deletion/substitution cost, case-sensitive rune comparison.
var levenshteinOptions = levenshtein.Options{
	InsCost: 1,
	DelCost: 1,
	SubCost: 1,
	Matches: func(sourceCharacter, targetCharacter rune) bool {
		return sourceCharacter == targetCharacter
	},
}

// NearestName returns the candidate in candidates closest to name by edit
// distance, along with ok=false if candidates is empty or nothing is within
// a reasonable distance of name (more than half its length plus one edit
// away).
func NearestName(name string, candidates []string) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}
	source := []rune(name)
	best := ""
	bestDist := -1
	for _, candidate := range candidates {
		d := levenshtein.DistanceForStrings(source, []rune(candidate), levenshteinOptions)
		if bestDist == -1 || d < bestDist {
			bestDist = d
			best = candidate
		}
	}
	maxUseful := len(source)/2 + 1
	if bestDist > maxUseful {
		return "", false
	}
	return best, true
}
