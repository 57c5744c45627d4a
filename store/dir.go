package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// Dir keeps one JSON file per key inside a directory.
type Dir struct {
	root string
}

// NewDir returns a Dir rooted at path, creating it when needed. An empty path
// means the working directory.
func NewDir(path string) (*Dir, error) {
	if path == "" {
		path = "."
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("store: create dir: %w", err)
	}
	return &Dir{root: path}, nil
}

// Path is the file backing key.
func (d *Dir) Path(key string) string {
	return filepath.Join(d.root, filepath.Base(key))
}

func (d *Dir) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(d.Path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("store: read %s: %w", key, err)
	}
	return data, nil
}

func (d *Dir) Put(key string, data []byte) error {
	return writeAtomic(d.Path(key), data)
}

// Delete removes the file for key. Missing files are not an error.
func (d *Dir) Delete(key string) error {
	if err := os.Remove(d.Path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("store: delete %s: %w", key, err)
	}
	return nil
}

func (d *Dir) Close() error { return nil }

// WriteJSON encodes v with the store rules and atomically replaces path.
func WriteJSON(path string, v any) error {
	data, err := Encode(v)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("store: create dir: %w", err)
		}
	}
	return writeAtomic(path, data)
}

// writeAtomic writes to a sibling temp file and renames it over path so a
// crash never leaves a half-written document behind.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("store: create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("store: write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("store: sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: close %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("store: chmod %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("store: replace %s: %w", path, err)
	}
	return nil
}
