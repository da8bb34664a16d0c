package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// JSONWriter serialises export views as compact JSON files in the export
// directory.
type JSONWriter struct {
	dir string
}

// NewJSONWriter creates the export directory (and parents) if needed.
func NewJSONWriter(dir string) (*JSONWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("json: create export dir: %w", err)
	}
	return &JSONWriter{dir: dir}, nil
}

// Write marshals data without indentation and writes it UTF-8 encoded under
// the given file name.
func (w *JSONWriter) Write(name string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("json: marshal %s: %w", name, err)
	}

	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("json: write %q: %w", path, err)
	}
	return nil
}

// Path returns the absolute location a named export file is written to.
func (w *JSONWriter) Path(name string) string {
	return filepath.Join(w.dir, name)
}
