// Package reglamento turns the plain text of a regulation into numbered
// clauses keyed by chapter, article and numeral.
package reglamento

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/mpgigat/actas-repfora/store"
)

var (
	chapterRe = regexp.MustCompile(`(?i)^CAP[IÍ]TULO\s+([IVXLCDM]+|\d+)`)
	articleRe = regexp.MustCompile(`(?i)^ART[IÍ]CULO\s+(\d+)`)
	numeralRe = regexp.MustCompile(`^(\d+)[.º°²]?`)
)

// Document maps "CAPITULO <c> - Articulo <a> - Numeral <n>" to the numeral text.
type Document struct {
	Articulos map[string]string `json:"articulos"`
}

// Parse reads the regulation line by line. A numbered line becomes a clause
// only after both a chapter and an article heading have been seen.
func Parse(r io.Reader) (*Document, error) {
	doc := &Document{Articulos: map[string]string{}}
	var chapter, article string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if m := chapterRe.FindStringSubmatch(line); m != nil {
			chapter = "CAPITULO " + m[1]
			continue
		}
		if m := articleRe.FindStringSubmatch(line); m != nil {
			article = "Articulo " + m[1]
			continue
		}
		m := numeralRe.FindStringSubmatchIndex(line)
		if m == nil || chapter == "" || article == "" {
			continue
		}
		key := fmt.Sprintf("%s - %s - Numeral %s", chapter, article, line[m[2]:m[3]])
		doc.Articulos[key] = strings.TrimSpace(line[m[1]:])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading regulation: %w", err)
	}
	return doc, nil
}

// Write stores doc at path as indented UTF-8 JSON.
func Write(path string, doc *Document) error {
	return store.WriteJSON(path, doc)
}
