package speakers

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/mpgigat/actas-repfora/logging"
	"github.com/mpgigat/actas-repfora/store"
)

// Registry maps file-local diarization labels to global ids. A mapping, once
// made, is never changed.
type Registry struct {
	store   store.Store
	mapping map[string]string
	minted  []string
	log     *logrus.Entry
}

// OpenRegistry loads the registry from s; a missing or unreadable document
// starts it empty.
func OpenRegistry(s store.Store, log *logrus.Entry) *Registry {
	m := store.Load(s, RegistryKey, map[string]string{})
	if m == nil {
		m = map[string]string{}
	}
	return &Registry{store: s, mapping: m, log: logging.OrNop(log)}
}

// Lookup returns the global id already assigned to local.
func (r *Registry) Lookup(local string) (string, bool) {
	id, ok := r.mapping[local]
	return id, ok
}

// Resolve returns the global id for local, minting and persisting a new one
// for a label never seen before. Empty and Unknown labels resolve to Unknown
// and are never registered.
func (r *Registry) Resolve(local string) string {
	if local == "" || local == Unknown {
		return Unknown
	}
	if id, ok := r.mapping[local]; ok {
		return id
	}

	id := FormatID(NextNumber(r.mapping))
	r.mapping[local] = id
	r.minted = append(r.minted, id)
	r.log.WithFields(logrus.Fields{"local": local, "global": id}).Info("new speaker detected")

	if !store.Save(r.store, RegistryKey, r.mapping) {
		r.log.WithField("key", RegistryKey).Warn("could not save speaker registry")
	}
	return id
}

// Minted lists the ids created by this Registry value, in order.
func (r *Registry) Minted() []string {
	return append([]string(nil), r.minted...)
}

// Globals lists each distinct global id once, numerically ordered.
func (r *Registry) Globals() []string {
	seen := map[string]bool{}
	var ids []string
	for _, id := range r.mapping {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	SortIDs(ids)
	return ids
}

// Aliases lists the local labels mapped to global, sorted.
func (r *Registry) Aliases(global string) []string {
	var out []string
	for local, id := range r.mapping {
		if id == global {
			out = append(out, local)
		}
	}
	sort.Strings(out)
	return out
}

// Len is the number of local labels registered.
func (r *Registry) Len() int { return len(r.mapping) }

// Snapshot returns a copy of the mapping.
func (r *Registry) Snapshot() map[string]string {
	out := make(map[string]string, len(r.mapping))
	for k, v := range r.mapping {
		out[k] = v
	}
	return out
}

// Reset deletes both the registry and the name registry from s. The next
// speaker detected afterwards becomes HABLANTE_1.
func Reset(s store.Store) error {
	if err := s.Delete(RegistryKey); err != nil {
		return err
	}
	return s.Delete(NamesKey)
}
