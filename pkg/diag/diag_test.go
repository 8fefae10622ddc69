package diag

import "testing"

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{Schema, "schema"},
		{Parameter, "parameter"},
		{Reference, "reference"},
		{Operation, "operation"},
		{Backend, "backend"},
		{Export, "export"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("Kind.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDiagnosticError(t *testing.T) {
	d := Diagnostic{
		Kind:       Reference,
		Message:    "unknown part",
		Path:       []string{"operations", "2", "target"},
		Suggestion: "bracket",
	}
	want := `[reference] operations.2.target: unknown part (did you mean "bracket"?)`
	if got := d.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestDiagnosticErrorNoPathNoSuggestion(t *testing.T) {
	d := Diagnostic{Kind: Schema, Message: "missing schema_version"}
	want := "[schema] missing schema_version"
	if got := d.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestReportOK(t *testing.T) {
	var r Report
	if !r.OK() {
		t.Fatal("empty report should be OK")
	}
	r.AddWarning(Warning{Message: "orphan part"})
	if !r.OK() {
		t.Fatal("report with only warnings should still be OK")
	}
	r.AddError(Diagnostic{Kind: Operation, Message: "boom"})
	if r.OK() {
		t.Fatal("report with an error should not be OK")
	}
}

func TestReportMerge(t *testing.T) {
	var a, b Report
	a.AddError(Diagnostic{Kind: Schema, Message: "a"})
	b.AddWarning(Warning{Message: "b"})
	a.Merge(b)
	if len(a.Errors) != 1 || len(a.Warnings) != 1 {
		t.Fatalf("Merge() = %+v, want 1 error and 1 warning", a)
	}
}

func TestNearestName(t *testing.T) {
	candidates := []string{"bracket", "gusset", "bolt"}
	tests := []struct {
		name    string
		input   string
		want    string
		wantOK  bool
	}{
		{"typo", "brakcet", "bracket", true},
		{"exact", "gusset", "gusset", true},
		{"unrelated", "xyzxyzxyzxyz", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NearestName(tt.input, candidates)
			if ok != tt.wantOK {
				t.Fatalf("NearestName(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("NearestName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNearestNameEmptyCandidates(t *testing.T) {
	if _, ok := NearestName("anything", nil); ok {
		t.Fatal("NearestName with no candidates should return ok=false")
	}
}
