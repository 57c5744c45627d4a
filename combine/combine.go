// Package combine joins the transcripts of a recording that was split into
// parts. Speaker ids are already global across parts, so the text is only
// concatenated.
package combine

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const Suffix = "_transcripcion.txt"

var (
	partRe    = regexp.MustCompile(`_parte_(\d+)`)
	speakerRe = regexp.MustCompile(`INTERVIENE HABLANTE (\d+):`)
)

// Part is one transcript file of a split recording.
type Part struct {
	Number int
	Path   string
}

// Combined is the joined text and the generic speaker numbers it mentions.
type Combined struct {
	Text     string
	Speakers []int
}

// Discover lists the part transcripts in dir, ordered by part number.
func Discover(dir string) ([]Part, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading parts dir: %w", err)
	}

	var parts []Part
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Suffix) {
			continue
		}
		m := partRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		parts = append(parts, Part{Number: n, Path: filepath.Join(dir, e.Name())})
	}
	sort.SliceStable(parts, func(i, j int) bool { return parts[i].Number < parts[j].Number })
	return parts, nil
}

func separator(n int) string {
	return fmt.Sprintf("\n\n\n--- CONTINUACIÓN PARTE %d ---\n\n\n", n)
}

// Join reads the parts in order and concatenates them.
func Join(parts []Part) (*Combined, error) {
	var b strings.Builder
	seen := map[int]bool{}
	out := &Combined{}

	for i, p := range parts {
		data, err := os.ReadFile(p.Path)
		if err != nil {
			return nil, fmt.Errorf("reading part %d: %w", p.Number, err)
		}
		if i > 0 {
			b.WriteString(separator(p.Number))
		}
		b.Write(data)

		for _, m := range speakerRe.FindAllStringSubmatch(string(data), -1) {
			n, err := strconv.Atoi(m[1])
			if err != nil || seen[n] {
				continue
			}
			seen[n] = true
			out.Speakers = append(out.Speakers, n)
		}
	}
	sort.Ints(out.Speakers)
	out.Text = b.String()
	return out, nil
}

// NameLookup reports whether a global id has a registered name.
type NameLookup interface {
	Get(id string) (string, bool)
}

// Unnamed returns the speaker numbers with no non-empty registered name.
// Hand-edited registries may key a speaker as "HABLANTE 3" instead of
// "HABLANTE_3"; both count.
func Unnamed(speakers []int, names NameLookup) []int {
	var out []int
	for _, n := range speakers {
		if !named(names, "HABLANTE_"+strconv.Itoa(n)) && !named(names, "HABLANTE "+strconv.Itoa(n)) {
			out = append(out, n)
		}
	}
	return out
}

func named(names NameLookup, key string) bool {
	name, ok := names.Get(key)
	return ok && strings.TrimSpace(name) != ""
}
