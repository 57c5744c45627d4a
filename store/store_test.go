package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	s, err := NewDir(dir)
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}

	t.Run("missing file", func(t *testing.T) {
		got := Load(s, "missing.json", map[string]string{"x": "y"})
		if got["x"] != "y" {
			t.Errorf("expected default, got %v", got)
		}
	})

	t.Run("corrupt json", func(t *testing.T) {
		if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o644); err != nil {
			t.Fatal(err)
		}
		got := Load(s, "bad.json", map[string]string{})
		if got == nil || len(got) != 0 {
			t.Errorf("expected empty default, got %v", got)
		}
	})

	t.Run("wrong shape", func(t *testing.T) {
		if err := os.WriteFile(filepath.Join(dir, "list.json"), []byte(`["a","b"]`), 0o644); err != nil {
			t.Fatal(err)
		}
		got := Load(s, "list.json", map[string]string{"d": "1"})
		if got["d"] != "1" {
			t.Errorf("expected default, got %v", got)
		}
	})
}

func TestSaveRoundTripKeepsNonASCII(t *testing.T) {
	dir := t.TempDir()
	s, err := NewDir(dir)
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}

	in := map[string]string{"HABLANTE_1": "José Pérez <coordinador>"}
	if !Save(s, "hablantes.json", in) {
		t.Fatal("expected save to succeed")
	}

	raw, err := os.ReadFile(filepath.Join(dir, "hablantes.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "José Pérez <coordinador>") {
		t.Errorf("expected literal text in file, got %s", raw)
	}
	if !strings.Contains(string(raw), "\n  \"HABLANTE_1\"") {
		t.Errorf("expected two-space indentation, got %s", raw)
	}

	got := Load(s, "hablantes.json", map[string]string{})
	if got["HABLANTE_1"] != in["HABLANTE_1"] {
		t.Errorf("got %v", got)
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestSaveReportsFailure(t *testing.T) {
	m := NewMemory()
	m.FailPuts = true
	if Save(m, "k", map[string]string{"a": "b"}) {
		t.Error("expected save to report failure")
	}
	if Save(NewMemory(), "k", make(chan int)) {
		t.Error("expected unencodable value to report failure")
	}
}

func TestDirDelete(t *testing.T) {
	s, err := NewDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("never-written.json"); err != nil {
		t.Errorf("delete of missing key: %v", err)
	}
	Save(s, "k.json", 1)
	if err := s.Delete("k.json"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get("k.json"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestBackends(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		opts Options
	}{
		{"json", Options{Backend: BackendJSON, Dir: dir}},
		{"sqlite", Options{Backend: BackendSQLite, SQLitePath: filepath.Join(dir, "kv.db")}},
		{"memory", Options{Backend: BackendMemory}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, err := Open(tc.opts)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer s.Close()

			if _, err := s.Get("mapeo.json"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			if !Save(s, "mapeo.json", map[string]string{"SPEAKER_00": "HABLANTE_1"}) {
				t.Fatal("save failed")
			}
			if !Save(s, "mapeo.json", map[string]string{"SPEAKER_00": "HABLANTE_2"}) {
				t.Fatal("overwrite failed")
			}
			got := Load(s, "mapeo.json", map[string]string{})
			if got["SPEAKER_00"] != "HABLANTE_2" {
				t.Errorf("got %v", got)
			}
			if err := s.Delete("mapeo.json"); err != nil {
				t.Fatal(err)
			}
			if got := Load(s, "mapeo.json", map[string]string{}); len(got) != 0 {
				t.Errorf("expected empty after delete, got %v", got)
			}
		})
	}

	if _, err := Open(Options{Backend: "redis"}); err == nil {
		t.Error("expected unknown backend error")
	}
}

func TestWriteJSONCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "out.json")
	if err := WriteJSON(path, map[string]any{"articulos": map[string]string{}}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}
}
