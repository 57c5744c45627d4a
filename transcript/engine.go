package transcript

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/mpgigat/actas-repfora/logging"
	"github.com/mpgigat/actas-repfora/speakers"
)

// minTurnRunes is the shortest cleaned turn text that is rendered; shorter
// turns are treated as noise.
const minTurnRunes = 4

// Engine formats segments of one audio file against the speaker registries.
type Engine struct {
	Identities Identities
	Names      Names
	Log        *logrus.Entry
}

// Result is a formatted transcript plus the intermediate data behind it.
type Result struct {
	Text      string
	Processed []Processed
	Groups    []Group
	// Turns is how many groups were rendered.
	Turns    int
	Fallback bool
}

// Format renders segs. When diarized is false every segment is attributed to
// the unknown speaker and the registry is left alone.
func (e *Engine) Format(segs []Segment, diarized bool) Result {
	log := logging.OrNop(e.Log)

	processed := e.process(segs, diarized)
	log.WithField("segments", len(processed)).Debug("segments normalized")

	labels := make([]string, len(processed))
	for i, p := range processed {
		labels[i] = p.Speaker
	}
	Smooth(labels)
	for i := range processed {
		processed[i].Speaker = labels[i]
	}

	groups := GroupTurns(processed)
	var blocks []string
	for i := range groups {
		groups[i].Text = Clean(groups[i].Joined())
		if utf8.RuneCountInString(groups[i].Text) < minTurnRunes {
			continue
		}
		name := e.Names.DisplayName(groups[i].Speaker)
		blocks = append(blocks, fmt.Sprintf("INTERVIENE %s: %s", name, groups[i].Text))
	}

	res := Result{Processed: processed, Groups: groups, Turns: len(blocks)}
	if len(blocks) == 0 {
		log.Warn("no speaker turns rendered, using single speaker fallback")
		res.Text = fallback(segs)
		res.Fallback = true
		return res
	}
	res.Text = strings.Join(blocks, "\n\n")
	return res
}

func (e *Engine) process(segs []Segment, diarized bool) []Processed {
	out := make([]Processed, 0, len(segs))
	for i, s := range segs {
		text := normalizeSpace(s.Text)
		if text == "" {
			continue
		}
		global := speakers.Unknown
		if diarized && s.Speaker != "" && s.Speaker != speakers.Unknown {
			global = e.Identities.Resolve(s.Speaker)
		}
		out = append(out, Processed{Index: i, Start: s.Start, Speaker: global, Text: text})
	}
	return out
}

// fallback puts every non-empty segment, in order, under the unknown speaker.
func fallback(segs []Segment) string {
	texts := make([]string, 0, len(segs))
	for _, s := range segs {
		if t := strings.TrimSpace(s.Text); t != "" {
			texts = append(texts, t)
		}
	}
	return strings.TrimSpace(fmt.Sprintf("INTERVIENE %s: %s", speakers.UnknownLabel, Clean(strings.Join(texts, " "))))
}
