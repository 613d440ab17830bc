// Package fs writes entity exports to the local filesystem.
package fs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/seoentity/seoentity"
)

// Format is an export file format.
type Format string

// Export formats.
const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat returns the format named by s, or an EINVALID error.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV:
		return f, nil
	}
	return "", seoentity.Errorf(seoentity.EINVALID, "unknown export format %q: use json or csv", s)
}

// Encode writes entities to w in format f.
func Encode(w io.Writer, f Format, entities []seoentity.EnrichedEntity) error {
	switch f {
	case FormatJSON:
		return seoentity.WriteJSON(w, entities)
	case FormatCSV:
		return seoentity.WriteCSV(w, entities)
	}
	return seoentity.Errorf(seoentity.EINVALID, "unknown export format %q", f)
}

// Filename returns the default export file name for an analysis.
// Example: entities-3f2a.csv
func Filename(a *seoentity.Analysis, f Format) string {
	return fmt.Sprintf("entities-%s.%s", a.ID, f)
}

// Writer writes export files into a directory.
type Writer struct {
	baseDir string
}

// NewWriter creates a new Writer that writes to the given base directory.
func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir}
}

// WriteAnalysis exports the analysis entities under their default file name
// and returns the written path.
func (w *Writer) WriteAnalysis(a *seoentity.Analysis, f Format) (string, error) {
	path := filepath.Join(w.baseDir, Filename(a, f))
	if err := WriteFile(path, f, a.Entities); err != nil {
		return "", err
	}
	return path, nil
}

// WriteFile exports entities to path. Content goes to a temporary file in
// the same directory which is renamed into place, so readers never see a
// partial export. Parent directories are created as needed.
func WriteFile(path string, f Format, entities []seoentity.EnrichedEntity) error {
	if _, err := ParseFormat(string(f)); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, f, entities); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
