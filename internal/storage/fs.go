package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/quire/internal/apperr"
)

// FileSlot implements Slot as a single JSON file inside a directory.
type FileSlot struct {
	dir  string // absolute directory
	name string
}

// NewFileSlot creates a slot stored at <dir>/<name>.json.
// The directory is created if missing.
func NewFileSlot(dir, name string) (*FileSlot, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return nil, fmt.Errorf("storage: invalid slot name %q", name)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage: mkdir: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: not a directory: %s", abs)
	}
	return &FileSlot{dir: abs, name: name}, nil
}

// Name returns the slot key.
func (f *FileSlot) Name() string { return f.name }

// Path returns the absolute path of the backing file.
func (f *FileSlot) Path() string {
	return filepath.Join(f.dir, f.name+".json")
}

// Dir returns the directory holding the backing file.
func (f *FileSlot) Dir() string { return f.dir }

// Read returns the file contents.
func (f *FileSlot) Read() ([]byte, error) {
	data, err := os.ReadFile(f.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("storage: read %s: %w", f.name, apperr.ErrSlotEmpty)
		}
		return nil, fmt.Errorf("storage: read %s: %w: %w", f.name, apperr.ErrStorageUnavailable, err)
	}
	return data, nil
}

// Write atomically writes data: tmp file → fsync → rename.
func (f *FileSlot) Write(data []byte) error {
	if err := WriteFileAtomic(f.Path(), data); err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrStorageUnavailable, err)
	}
	return nil
}

// Clear removes the backing file.
func (f *FileSlot) Clear() error {
	if err := os.Remove(f.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage: clear %s: %w: %w", f.name, apperr.ErrStorageUnavailable, err)
	}
	return nil
}

// WriteFileAtomic writes data to path through a temp file in the same
// directory so readers never observe a partial write.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".quire-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}
