// Command tiacad compiles a TiaCAD document into solid geometry and
// exports it to one or more CAD file formats.
//
// Usage:
//
//	tiacad build <file.yaml> [--out dir] [--tolerance n]
//	tiacad validate <file.yaml>
//	tiacad validate-geometry <file.yaml>
//	tiacad info <file.yaml>
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/build"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/diag"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/doc"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/kernel"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/kernel/sdfx"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/spatial"
)

// exitInterrupted is returned to the shell when SIGINT/SIGTERM arrives
// while a verb runs, distinct from an ordinary validation or build
// failure. The verb itself is not cancelled: it runs to completion and the
// process then exits with this code instead of the verb's own.
const exitInterrupted = 130

func main() {
	log.SetFlags(0)
	log.SetPrefix("tiacad: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	verb := os.Args[1]
	args := os.Args[2:]

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var code int
	switch verb {
	case "build":
		code = runBuild(args)
	case "validate":
		code = runValidate(args)
	case "validate-geometry":
		code = runValidateGeometry(args)
	case "info":
		code = runInfo(args)
	case "-h", "--help", "help":
		usage()
		code = 0
	default:
		fmt.Fprintf(os.Stderr, "tiacad: unknown command %q\n\n", verb)
		usage()
		code = 1
	}

	select {
	case <-ctx.Done():
		os.Exit(exitInterrupted)
	default:
		os.Exit(code)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `tiacad: compile a declarative parametric model into solid geometry

Usage:
  tiacad build <file.yaml> [--out dir] [--tolerance n]
  tiacad validate <file.yaml>
  tiacad validate-geometry <file.yaml>
  tiacad info <file.yaml>

Exit codes: 0 success, 1 validation or build error, 130 interrupted.`)
}

// BuildOptions is the plain options struct a CLI invocation hands to the
// compiler: nothing here is persisted between runs, since the document
// itself is the only configuration a build has.
type BuildOptions struct {
	OutDir    string
	Tolerance float64
}

func runBuild(args []string) int {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	outDir := fs.String("out", ".", "output directory for exported files")
	tolerance := fs.Float64("tolerance", 0.1, "default tessellation tolerance")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "tiacad build: expected exactly one document path")
		return 1
	}
	opts := BuildOptions{OutDir: *outDir, Tolerance: *tolerance}

	d, report, ok := loadDocument(fs.Arg(0))
	printReport(report)
	if !ok {
		return 1
	}

	k := sdfx.New()
	result, ok := compileWithKernel(d, k)
	printReport(result.Report)
	if !ok {
		return 1
	}

	if err := exportAll(d, result, k, opts); err != nil {
		log.Printf("export failed: %v", err)
		return 1
	}
	return 0
}

func runValidate(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "tiacad validate: expected exactly one document path")
		return 1
	}
	d, report, ok := loadDocument(args[0])
	printReport(report)
	if !ok {
		return 1
	}
	result, ok := compileDocument(d)
	printReport(result.Report)
	if !ok {
		return 1
	}
	fmt.Println("ok")
	return 0
}

// runValidateGeometry performs a full compile and additionally tessellates
// every registered part, surfacing backend failures (self-intersecting
// sweeps, degenerate booleans) that schema and reference validation alone
// cannot catch.
func runValidateGeometry(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "tiacad validate-geometry: expected exactly one document path")
		return 1
	}
	d, report, ok := loadDocument(args[0])
	printReport(report)
	if !ok {
		return 1
	}
	k := sdfx.New()
	result, ok := compileWithKernel(d, k)
	printReport(result.Report)
	if !ok {
		return 1
	}

	var failed diag.Report
	for _, name := range result.Registry.Names() {
		p, _ := result.Registry.Get(name)
		if _, err := k.Tessellate(p.Solid, 0.1); err != nil {
			failed.AddError(diag.Diagnostic{Kind: diag.Backend, Path: []string{"parts", name}, Message: err.Error()})
		}
	}
	printReport(failed)
	if !failed.OK() {
		return 1
	}
	fmt.Println("ok")
	return 0
}

func runInfo(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "tiacad info: expected exactly one document path")
		return 1
	}
	d, report, ok := loadDocument(args[0])
	printReport(report)
	if !ok {
		return 1
	}
	result, ok := compileDocument(d)
	printReport(result.Report)
	if !ok {
		return 1
	}

	fmt.Printf("schema_version: %s\n", d.SchemaVersion)
	fmt.Printf("parts: %d\n", len(result.Registry.Names()))
	for _, name := range result.Registry.Names() {
		p, _ := result.Registry.Get(name)
		fmt.Printf("  - %s (%s)\n", name, partKindName(p.Metadata.Kind))
	}
	fmt.Printf("export_part: %s\n", result.ExportPart)
	for _, f := range d.Export.Formats {
		fmt.Printf("format: %s -> %s\n", f.Format, f.Path)
	}
	return 0
}

func partKindName(k spatial.PartKind) string {
	switch k {
	case spatial.KindBox:
		return "box"
	case spatial.KindCylinder:
		return "cylinder"
	case spatial.KindSphere:
		return "sphere"
	case spatial.KindCone:
		return "cone"
	default:
		return "other"
	}
}

func loadDocument(path string) (*doc.Document, diag.Report, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		var r diag.Report
		r.AddError(diag.Diagnostic{Kind: diag.Schema, Message: fmt.Sprintf("reading %s: %v", path, err)})
		return nil, r, false
	}
	return loadDocumentFromBytes(data)
}

func loadDocumentFromBytes(data []byte) (*doc.Document, diag.Report, bool) {
	d, report := doc.Parse(data)
	return d, report, report.OK()
}

func compileDocument(d *doc.Document) (*build.CompileResult, bool) {
	return compileWithKernel(d, sdfx.New())
}

func compileWithKernel(d *doc.Document, k kernel.Kernel) (*build.CompileResult, bool) {
	compiler := &build.Compiler{Kernel: k, Fonts: build.NewFontRegistry()}
	result := compiler.Compile(d)
	return result, result.Report.OK()
}

func printReport(r diag.Report) {
	for _, e := range r.Errors {
		fmt.Fprintf(os.Stderr, "error: %s\n", e.Error())
	}
	for _, w := range r.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w.String())
	}
}

func exportAll(d *doc.Document, result *build.CompileResult, k kernel.Kernel, opts BuildOptions) error {
	for _, spec := range d.Export.Formats {
		tolerance := spec.Tolerance
		if tolerance == 0 {
			tolerance = opts.Tolerance
		}
		names := spec.Parts
		if len(names) == 0 {
			names = []string{result.ExportPart}
		}
		outPath := spec.Path
		if !filepath.IsAbs(outPath) {
			outPath = filepath.Join(opts.OutDir, outPath)
		}
		if err := exportFormat(result, k, spec.Format, outPath, names, tolerance); err != nil {
			return fmt.Errorf("%s: %w", spec.Format, err)
		}
		log.Printf("wrote %s (%s)", outPath, spec.Format)
	}
	return nil
}

func exportFormat(result *build.CompileResult, k kernel.Kernel, format, path string, names []string, tolerance float64) error {
	switch strings.ToLower(format) {
	case "stl":
		return exportSTL(result, k, path, names, tolerance)
	case "3mf":
		return exportThreeMF(result, k, path, names, tolerance)
	case "step":
		return exportSTEP(result, k, path, names, tolerance)
	case "obj":
		return exportOBJ(result, k, path, names, tolerance)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

