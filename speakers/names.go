package speakers

import (
	"github.com/sirupsen/logrus"

	"github.com/mpgigat/actas-repfora/logging"
	"github.com/mpgigat/actas-repfora/store"
)

// Names maps global ids to human-assigned display names.
type Names struct {
	store store.Store
	names map[string]string
	log   *logrus.Entry
}

func OpenNames(s store.Store, log *logrus.Entry) *Names {
	m := store.Load(s, NamesKey, map[string]string{})
	if m == nil {
		m = map[string]string{}
	}
	return &Names{store: s, names: m, log: logging.OrNop(log)}
}

func (n *Names) Get(id string) (string, bool) {
	name, ok := n.names[id]
	return name, ok
}

// Set records name for id in memory; call Save to persist.
func (n *Names) Set(id, name string) {
	n.names[id] = name
}

func (n *Names) Len() int { return len(n.names) }

// DisplayName resolves how id is shown in a transcript.
func (n *Names) DisplayName(id string) string {
	if id == "" || id == Unknown {
		return UnknownLabel
	}
	if name, ok := n.names[id]; ok {
		return name
	}
	return GenericName(id)
}

// Save persists the names and reports whether it succeeded.
func (n *Names) Save() bool {
	if !store.Save(n.store, NamesKey, n.names) {
		n.log.WithField("key", NamesKey).Warn("could not save speaker names")
		return false
	}
	return true
}

// LoadSuggestions reads the cached name suggestions.
func LoadSuggestions(s store.Store) map[string]string {
	m := store.Load(s, SuggestionsKey, map[string]string{})
	if m == nil {
		return map[string]string{}
	}
	return m
}

func SaveSuggestions(s store.Store, suggestions map[string]string) bool {
	return store.Save(s, SuggestionsKey, suggestions)
}
