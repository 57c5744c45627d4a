package orchestrator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mpgigat/actas-repfora/store"
)

const (
	transcriptSuffix = "_transcripcion.txt"
	manifestSuffix   = "_transcripcion.meta.json"
)

// outputPaths picks where the transcript and its manifest go: override when
// given, else <outputsRoot or audio dir>/<audio base>_transcripcion.txt.
func outputPaths(outputsRoot, audioPath, override string) (txt, meta string) {
	if override != "" {
		return override, strings.TrimSuffix(override, filepath.Ext(override)) + ".meta.json"
	}
	dir := outputsRoot
	if dir == "" {
		dir = filepath.Dir(audioPath)
	}
	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	return filepath.Join(dir, base+transcriptSuffix), filepath.Join(dir, base+manifestSuffix)
}

func persist(txtPath, metaPath, text string, manifest any) error {
	if err := os.MkdirAll(filepath.Dir(txtPath), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	if err := os.WriteFile(txtPath, []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing transcript: %w", err)
	}
	if err := store.WriteJSON(metaPath, manifest); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}
