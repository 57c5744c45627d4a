// Package suggest proposes display names for the speakers of a rendered
// transcript by looking for person names right after each turn marker.
package suggest

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mpgigat/actas-repfora/clients"
	"github.com/mpgigat/actas-repfora/logging"
	"github.com/mpgigat/actas-repfora/speakers"
)

const DefaultWindow = 40

var (
	markerRe = regexp.MustCompile(`(?i)INTERVIENE HABLANTE ([^:]+):`)
	// two or more capitalized words; the leading group stands in for \b,
	// which RE2 only understands for ASCII.
	capitalizedRe = regexp.MustCompile(`(?:^|[^\p{L}\p{N}_])([A-ZÁÉÍÓÚÑ][a-záéíóúñ]+(?:\s+[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+)+)`)
)

// Extractor finds person names in a short piece of text.
type Extractor interface {
	Names(ctx context.Context, text string) ([]string, error)
}

// Regex matches runs of capitalized words. It never fails.
type Regex struct{}

func (Regex) Names(_ context.Context, text string) ([]string, error) {
	var out []string
	for _, m := range capitalizedRe.FindAllStringSubmatch(text, -1) {
		out = append(out, m[1])
	}
	return out, nil
}

// Entities asks the NLP sidecar for named entities and keeps persons.
type Entities struct {
	Client   *clients.HTTP
	URL      string
	Language string
}

func (e Entities) Names(ctx context.Context, text string) ([]string, error) {
	if e.Client == nil || e.URL == "" {
		return nil, fmt.Errorf("entities: no nlp service configured")
	}
	res, err := e.Client.Entities(ctx, e.URL, text, e.Language)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, ent := range res.Entities {
		switch strings.ToUpper(ent.Label) {
		case "PER", "PERSON":
			out = append(out, ent.Text)
		}
	}
	return out, nil
}

// Chain tries its extractors in order. The first one that answers without an
// error decides, even with no names; a failing one is logged and skipped.
type Chain struct {
	Extractors []Extractor
	Log        *logrus.Entry
}

func (c Chain) Names(ctx context.Context, text string) ([]string, error) {
	log := logging.OrNop(c.Log)
	for _, ex := range c.Extractors {
		names, err := ex.Names(ctx, text)
		if err != nil {
			log.WithError(err).WithField("extractor", fmt.Sprintf("%T", ex)).Debug("name extraction failed")
			continue
		}
		return names, nil
	}
	return nil, nil
}

// NewChain prefers the NLP sidecar when url is set and falls back to Regex.
func NewChain(client *clients.HTTP, url, language string, log *logrus.Entry) Chain {
	var exs []Extractor
	if url != "" {
		exs = append(exs, Entities{Client: client, URL: url, Language: language})
	}
	exs = append(exs, Regex{})
	return Chain{Extractors: exs, Log: log}
}

// Suggest scans a rendered transcript and maps HABLANTE_<key> to the first
// name found within window words after one of that speaker's markers. Later
// markers are only looked at while no name was found. Unknown speakers are
// skipped. It never fails; a nil ex means Regex.
func Suggest(ctx context.Context, text string, window int, ex Extractor) map[string]string {
	if window <= 0 {
		window = DefaultWindow
	}
	if ex == nil {
		ex = Regex{}
	}

	out := map[string]string{}
	matches := markerRe.FindAllStringSubmatchIndex(text, -1)
	for i, m := range matches {
		key := strings.TrimSpace(text[m[2]:m[3]])
		if key == "" || strings.Contains(strings.ToUpper(key), speakers.Unknown) {
			continue
		}
		id := speakers.Prefix + key
		if _, done := out[id]; done {
			continue
		}

		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		words := strings.Fields(text[m[1]:end])
		if len(words) > window {
			words = words[:window]
		}

		names, err := ex.Names(ctx, strings.Join(words, " "))
		if err != nil {
			continue
		}
		if names = dedupe(names); len(names) > 0 {
			out[id] = names[0]
		}
	}
	return out
}

// File reads path and runs Suggest over it. Only an unreadable file is an
// error.
func File(ctx context.Context, path string, window int, ex Extractor) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading transcript: %w", err)
	}
	return Suggest(ctx, string(data), window, ex), nil
}

func dedupe(names []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
