package persistence

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/storage"
)

// ExportPrefix is the file name stem of exported collections.
const ExportPrefix = "shareable-notes"

// maxImportSize bounds how much of an import file is read.
const maxImportSize = 32 << 20

// ExportFileName returns the download name for an export made at now.
func ExportFileName(now time.Time) string {
	return fmt.Sprintf("%s-%s.json", ExportPrefix, now.Format(time.DateOnly))
}

// Export writes notes to w as an indented JSON array.
func Export(w io.Writer, notes []models.Note) error {
	if notes == nil {
		notes = []models.Note{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(notes); err != nil {
		return fmt.Errorf("persistence: export: %w", err)
	}
	return nil
}

// ExportToFile writes an export document into dir and returns its path.
func ExportToFile(dir string, notes []models.Note, now time.Time) (string, error) {
	var buf bytes.Buffer
	if err := Export(&buf, notes); err != nil {
		return "", err
	}
	path := filepath.Join(dir, ExportFileName(now))
	if err := storage.WriteFileAtomic(path, buf.Bytes()); err != nil {
		return "", fmt.Errorf("persistence: export: %w", err)
	}
	return path, nil
}

// Import parses an export document. Records missing an id receive a fresh
// one and defaulted fields are filled; a record that breaks the encryption
// invariant rejects the whole document with apperr.ErrFormat.
// Merging into a store is the caller's job.
func Import(r io.Reader) ([]models.Note, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxImportSize))
	if err != nil {
		return nil, fmt.Errorf("persistence: read import: %w", err)
	}
	notes, err := Decode(data)
	if err != nil {
		return nil, err
	}
	for i := range notes {
		n := &notes[i]
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
		n.Normalize()
		if err := n.Validate(); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", apperr.ErrFormat, i, err)
		}
	}
	return notes, nil
}

// ImportFromFile opens path and parses it with Import.
func ImportFromFile(path string) ([]models.Note, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("persistence: open import: %w", err)
	}
	defer f.Close()
	return Import(f)
}
