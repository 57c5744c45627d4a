// Package speakers tracks persistent speaker identities across transcription
// runs: the registry that maps diarization labels to global ids, and the
// names a human attaches to those ids.
package speakers

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	// Unknown marks a segment whose speaker could not be determined.
	Unknown = "DESCONOCIDO"
	// UnknownLabel is how an Unknown speaker is rendered.
	UnknownLabel = "HABLANTE DESCONOCIDO"
	// Prefix starts every global id.
	Prefix = "HABLANTE_"

	RegistryKey    = "mapeo_hablantes_global.json"
	NamesKey       = "hablantes.json"
	SuggestionsKey = "sugerencias.json"
)

// FormatID builds the global id for n.
func FormatID(n int) string {
	return Prefix + strconv.Itoa(n)
}

// Number extracts the positive numeric suffix of a global id.
func Number(id string) (int, bool) {
	if !strings.HasPrefix(id, Prefix) {
		return 0, false
	}
	n, err := strconv.Atoi(id[len(Prefix):])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// NextNumber is one past the highest id number among the mapping values, or 1
// for a mapping with no valid ids. It reads only the snapshot it is given.
func NextNumber(mapping map[string]string) int {
	highest := 0
	for _, id := range mapping {
		if n, ok := Number(id); ok && n > highest {
			highest = n
		}
	}
	return highest + 1
}

// GenericName is the display name of an id without a registered name.
func GenericName(id string) string {
	if i := strings.Index(id, "_"); i >= 0 {
		return fmt.Sprintf("HABLANTE %s", id[i+1:])
	}
	return fmt.Sprintf("HABLANTE %s", id)
}

// SortIDs orders ids by number; ids without a valid number go last.
func SortIDs(ids []string) {
	sort.SliceStable(ids, func(i, j int) bool {
		a, aok := Number(ids[i])
		b, bok := Number(ids[j])
		switch {
		case aok && bok:
			return a < b
		case aok != bok:
			return aok
		default:
			return ids[i] < ids[j]
		}
	})
}
