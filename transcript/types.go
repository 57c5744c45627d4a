// Package transcript turns timed, noisily labelled segments from the
// speech stack into a speaker-attributed transcript.
//
// Formatting runs in fixed steps: drop empty segments, resolve every local
// speaker label to a global id, smooth isolated misattributions by
// neighbourhood voting, merge consecutive turns, clean repetitions and render
// each turn as an "INTERVIENE <name>: <text>" block.
package transcript

import "strings"

// Segment is one timed piece of text as produced by the speech stack.
// Speaker is the diarization label local to one audio file, or empty.
type Segment struct {
	Start   float64 `json:"start"`
	Text    string  `json:"text"`
	Speaker string  `json:"speaker,omitempty"`
}

// Processed is a Segment after normalization and global id assignment.
// Index is the position of the source segment in the input.
type Processed struct {
	Index   int
	Start   float64
	Speaker string
	Text    string
}

// Group is a maximal run of consecutive segments with the same speaker.
type Group struct {
	Speaker string
	Texts   []string
	Start   float64
	Count   int
	// Text is the joined, cleaned text of the run.
	Text string
}

// Joined concatenates the member texts with single spaces.
func (g Group) Joined() string {
	return strings.Join(g.Texts, " ")
}

// Identities resolves local speaker labels to global ids, registering labels
// seen for the first time.
type Identities interface {
	Resolve(local string) string
}

// Names resolves a global id to the name printed in the transcript.
type Names interface {
	DisplayName(id string) string
}
