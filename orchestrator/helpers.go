package orchestrator

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"lukechampine.com/blake3"

	"github.com/mpgigat/actas-repfora/clients"
	"github.com/mpgigat/actas-repfora/transcript"
)

func fromASR(source string, resp *clients.ASRResp) *Transcription {
	t := &Transcription{Source: source, Language: resp.Language, Diarized: resp.Diarized}
	t.Segments = make([]Segment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		if s.Speaker != "" {
			t.Diarized = true
		}
		t.Segments = append(t.Segments, Segment{Start: s.Start, End: s.End, Text: s.Text, Speaker: s.Speaker})
	}
	return t
}

func (t *Transcription) engineInput() []transcript.Segment {
	out := make([]transcript.Segment, 0, len(t.Segments))
	for _, s := range t.Segments {
		out = append(out, transcript.Segment{Start: s.Start, Text: s.Text, Speaker: s.Speaker})
	}
	return out
}

// adjustComputeType swaps float16 variants for float32 on CPU, where they
// fail to load.
func adjustComputeType(device, computeType string) string {
	if device == "cpu" && strings.Contains(computeType, "float16") {
		return "float32"
	}
	return computeType
}

// fingerprint is the hex BLAKE3-256 digest of the file at path.
func fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := blake3.New(32, nil)
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
