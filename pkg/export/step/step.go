package step

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/kernel"
)

// Writer streams a mesh out as a STEP AP214 text file.
type Writer struct {
	w          *bufio.Writer
	fileName   string
	authorName string
	orgName    string
}

// NewWriter wraps w, tagging the FILE_NAME record with fileName.
func NewWriter(w io.Writer, fileName string) *Writer {
	return &Writer{
		w:          bufio.NewWriter(w),
		fileName:   fileName,
		authorName: "tiacad",
		orgName:    "tiacad",
	}
}

// SetAuthor sets the FILE_NAME author/organization fields.
func (w *Writer) SetAuthor(name, org string) {
	w.authorName = name
	w.orgName = org
}

// WriteMesh converts mesh to STEP entities and writes the full file:
// header, DATA section, footer.
func (w *Writer) WriteMesh(mesh *kernel.Mesh, name string) error {
	tris := trianglesFromMesh(mesh)
	entities := newMeshConverter().convert(tris, name)

	if err := w.writeHeader(); err != nil {
		return err
	}
	if err := w.writeData(entities); err != nil {
		return err
	}
	if err := w.writeFooter(); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *Writer) writeHeader() error {
	lines := []string{
		"ISO-10303-21;",
		"HEADER;",
		"FILE_DESCRIPTION(('STEP AP214'),'1');",
		fmt.Sprintf("FILE_NAME('%s','%s',('%s'),('%s'),'tiacad','tiacad','');",
			w.fileName, time.Now().Format("2006-01-02T15:04:05"), w.authorName, w.orgName),
		"FILE_SCHEMA(('AUTOMOTIVE_DESIGN'));",
		"ENDSEC;",
	}
	for _, line := range lines {
		if _, err := w.w.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeData(entities []entity) error {
	if _, err := w.w.WriteString("DATA;\n"); err != nil {
		return err
	}
	for _, e := range entities {
		s := e.String()
		if !strings.HasSuffix(s, "\n") {
			s += "\n"
		}
		if _, err := w.w.WriteString(s); err != nil {
			return err
		}
	}
	_, err := w.w.WriteString("ENDSEC;\n")
	return err
}

func (w *Writer) writeFooter() error {
	_, err := w.w.WriteString("END-ISO-10303-21;\n")
	return err
}

// Write encodes mesh as a STEP AP214 file to w under the given product
// name.
func Write(w io.Writer, mesh *kernel.Mesh, name string) error {
	if mesh.IsEmpty() {
		return fmt.Errorf("step: mesh %q has no geometry", mesh.PartName)
	}
	return NewWriter(w, name+".step").WriteMesh(mesh, name)
}

// WriteFile writes mesh as a STEP AP214 file to path.
func WriteFile(path string, mesh *kernel.Mesh, name string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("step: %w", err)
	}
	writer := NewWriter(f, filepath.Base(path))
	if err := writer.WriteMesh(mesh, name); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
