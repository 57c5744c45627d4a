package transcript

import "github.com/mpgigat/actas-repfora/speakers"

// window is how many neighbours on each side vote in Smooth.
const window = 3

// Smooth relabels a segment when the majority of up to three labels before
// it and the majority of up to three after it agree on a different known
// speaker. It is one left-to-right pass over labels, in place, so a relabel
// is visible to the windows of later positions. Unknown positions are never
// relabelled.
func Smooth(labels []string) {
	for i := range labels {
		if labels[i] == speakers.Unknown {
			continue
		}
		before := labels[max(0, i-window):i]
		after := labels[i+1 : min(len(labels), i+1+window)]
		if len(before) == 0 || len(after) == 0 {
			continue
		}

		prev, next := majority(before), majority(after)
		if prev == next && prev != speakers.Unknown && labels[i] != prev {
			labels[i] = prev
		}
	}
}

// majority is the most frequent label; on ties the one seen first wins.
func majority(labels []string) string {
	counts := make(map[string]int, len(labels))
	best, bestCount := "", 0
	for _, l := range labels {
		counts[l]++
	}
	for _, l := range labels {
		if c := counts[l]; c > bestCount {
			best, bestCount = l, c
		}
	}
	return best
}

// GroupTurns merges consecutive segments with the same speaker.
func GroupTurns(segs []Processed) []Group {
	var groups []Group
	for _, s := range segs {
		if n := len(groups); n > 0 && groups[n-1].Speaker == s.Speaker {
			groups[n-1].Texts = append(groups[n-1].Texts, s.Text)
			groups[n-1].Count++
			continue
		}
		groups = append(groups, Group{
			Speaker: s.Speaker,
			Texts:   []string{s.Text},
			Start:   s.Start,
			Count:   1,
		})
	}
	return groups
}
