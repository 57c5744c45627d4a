package orchestrator

import (
	"time"

	"github.com/mpgigat/actas-repfora/metadata"
)

const (
	SourceHTTP     = "http"
	SourceWhisperX = "whisperx"
	SourceFile     = "file"
)

// Transcription is what a source hands to the formatting engine.
type Transcription struct {
	Source   string // "http/advanced", "whisperx/medium", "file"...
	Language string
	Diarized bool
	Segments []Segment
}

type Segment struct {
	Start   float64 // sec
	End     float64 // sec
	Text    string
	Speaker string // "SPEAKER_00"...
}

// Manifest is written next to every transcript.
type Manifest struct {
	RunID       string    `json:"run_id"`
	AudioPath   string    `json:"audio_path"`
	AudioBLAKE3 string    `json:"audio_blake3,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
	Source      string    `json:"source"`
	Language    string    `json:"language,omitempty"`
	Diarized    bool      `json:"diarized"`
	Segments    int       `json:"segments"`
	Groups      int       `json:"groups"`
	Turns       int       `json:"turns"`
	Minted      []string  `json:"minted,omitempty"`
	Fallback    bool      `json:"fallback"`
	Transcript  string    `json:"transcript"`

	Metadata metadata.Info `json:"metadata"`
}

// Report summarizes a finished run for the caller.
type Report struct {
	Manifest
	TranscriptPath string
	ManifestPath   string
	Text           string
	Duration       time.Duration
}

// PartsManifest is written next to the combined transcript of a split run.
type PartsManifest struct {
	RunID       string        `json:"run_id"`
	AudioPath   string        `json:"audio_path"`
	AudioBLAKE3 string        `json:"audio_blake3,omitempty"`
	GeneratedAt time.Time     `json:"generated_at"`
	Parts       []PartEntry   `json:"parts"`
	Failed      []int         `json:"failed,omitempty"`
	Speakers    []int         `json:"speakers"`
	Minted      []string      `json:"minted,omitempty"`
	Transcript  string        `json:"transcript"`
	Metadata    metadata.Info `json:"metadata"`
}

type PartEntry struct {
	Number     int    `json:"number"`
	Audio      string `json:"audio"`
	Transcript string `json:"transcript"`
	Manifest   string `json:"manifest"`
	Turns      int    `json:"turns"`
}

// PartsReport summarizes a split run.
type PartsReport struct {
	PartsManifest
	Reports      []*Report
	ManifestPath string
	Text         string
	Duration     time.Duration
}
