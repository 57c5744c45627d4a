package transcript

import (
	"regexp"
	"strings"
)

// fillers are backchannel tokens collapsed when repeated five or more times.
var fillers = []string{"no", "sí", "ah", "eh", "mm", "um"}

var (
	fillerRuns = compileFillerRuns(fillers)
	noRun      = regexp.MustCompile(`(?i)(?:no,?\s*){5,}`)
	commaRun   = regexp.MustCompile(`,\s*,\s*,+`)
	spaceRun   = regexp.MustCompile(`\s+`)
)

// RE2 has no backreferences, so each filler gets its own pattern.
func compileFillerRuns(tokens []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(tokens))
	for _, tok := range tokens {
		q := regexp.QuoteMeta(tok)
		out = append(out, regexp.MustCompile(`(?i)\b(`+q+`)\s*(?:`+q+`\s*){4,}`))
	}
	return out
}

// Clean collapses repeated fillers, runs of "no", comma runs and whitespace,
// in that order.
func Clean(text string) string {
	for _, re := range fillerRuns {
		text = re.ReplaceAllString(text, "${1} ")
	}
	text = noRun.ReplaceAllString(text, "no ")
	text = commaRun.ReplaceAllString(text, ", ")
	text = spaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// normalizeSpace trims and collapses internal whitespace.
func normalizeSpace(text string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(text, " "))
}
