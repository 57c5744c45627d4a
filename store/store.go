// Package store holds the persistence primitives shared by the speaker
// registries, the suggestion cache and every JSON artifact the pipeline
// writes. Higher layers never touch files or tables directly; they go through
// Load and Save so the storage format lives in one place.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned by a Store when a key has never been written.
var ErrNotFound = errors.New("store: key not found")

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Store is a flat key/value space of raw JSON documents.
type Store interface {
	Get(key string) ([]byte, error)
	Put(key string, data []byte) error
	Delete(key string) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend    string
	Dir        string
	SQLitePath string
}

// Open builds the backend named in opts.
func Open(opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendJSON:
		return NewDir(opts.Dir)
	case BackendSQLite:
		return OpenSQLite(opts.SQLitePath)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("store: unknown backend %q", opts.Backend)
	}
}

// Load decodes the document stored under key. A missing key, a read error or
// malformed JSON all yield def; Load never fails.
func Load[T any](s Store, key string, def T) T {
	data, err := s.Get(key)
	if err != nil {
		return def
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return def
	}
	return v
}

// Save encodes v and writes it under key, reporting success instead of
// propagating the error.
func Save(s Store, key string, v any) bool {
	data, err := Encode(v)
	if err != nil {
		return false
	}
	return s.Put(key, data) == nil
}

// Encode renders v as two-space indented JSON. Non-ASCII text and HTML
// characters are written literally.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("store encode: %w", err)
	}
	return buf.Bytes(), nil
}
