package speakers

import (
	"reflect"
	"testing"

	"github.com/mpgigat/actas-repfora/store"
)

func TestNextNumber(t *testing.T) {
	tests := []struct {
		name    string
		mapping map[string]string
		want    int
	}{
		{"empty", map[string]string{}, 1},
		{"nil", nil, 1},
		{"sequential", map[string]string{"A": "HABLANTE_1", "B": "HABLANTE_2"}, 3},
		{"hand edited max", map[string]string{"A": "HABLANTE_2", "B": "HABLANTE_5"}, 6},
		{"ignores malformed", map[string]string{"A": "HABLANTE_x", "B": "OTRO_9", "C": "HABLANTE_3"}, 4},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := NextNumber(tc.mapping); got != tc.want {
				t.Errorf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestResolveMintsMonotonically(t *testing.T) {
	s := store.NewMemory()
	r := OpenRegistry(s, nil)

	got := []string{
		r.Resolve("SPEAKER_00"),
		r.Resolve("SPEAKER_01"),
		r.Resolve("SPEAKER_00"),
		r.Resolve("SPEAKER_02"),
	}
	want := []string{"HABLANTE_1", "HABLANTE_2", "HABLANTE_1", "HABLANTE_3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if !reflect.DeepEqual(r.Minted(), []string{"HABLANTE_1", "HABLANTE_2", "HABLANTE_3"}) {
		t.Errorf("unexpected minted list %v", r.Minted())
	}

	// every mint is persisted right away
	reopened := OpenRegistry(s, nil)
	if id, ok := reopened.Lookup("SPEAKER_02"); !ok || id != "HABLANTE_3" {
		t.Errorf("expected persisted mapping, got %q %v", id, ok)
	}
}

func TestResolveContinuesAfterHandEditedMax(t *testing.T) {
	s := store.NewMemory()
	store.Save(s, RegistryKey, map[string]string{"X": "HABLANTE_5", "Y": "HABLANTE_2"})
	r := OpenRegistry(s, nil)
	if got := r.Resolve("Z"); got != "HABLANTE_6" {
		t.Errorf("expected HABLANTE_6, got %s", got)
	}
}

func TestResolveReuseNeverAltersMapping(t *testing.T) {
	s := store.NewMemory()
	store.Save(s, RegistryKey, map[string]string{"SPEAKER_00": "HABLANTE_4"})
	r := OpenRegistry(s, nil)

	if got := r.Resolve("SPEAKER_00"); got != "HABLANTE_4" {
		t.Errorf("expected reuse, got %s", got)
	}
	if len(r.Minted()) != 0 {
		t.Errorf("expected nothing minted, got %v", r.Minted())
	}
	if r.Len() != 1 {
		t.Errorf("expected one label, got %d", r.Len())
	}
}

func TestResolveUnknownNeverRegistered(t *testing.T) {
	s := store.NewMemory()
	r := OpenRegistry(s, nil)
	for _, label := range []string{"", Unknown} {
		if got := r.Resolve(label); got != Unknown {
			t.Errorf("label %q: expected %s, got %s", label, Unknown, got)
		}
	}
	if r.Len() != 0 {
		t.Errorf("expected empty registry, got %v", r.Snapshot())
	}
	if _, err := s.Get(RegistryKey); err == nil {
		t.Error("registry should not have been written")
	}
}

func TestResolveKeepsMappingWhenSaveFails(t *testing.T) {
	s := store.NewMemory()
	s.FailPuts = true
	r := OpenRegistry(s, nil)
	if got := r.Resolve("SPEAKER_00"); got != "HABLANTE_1" {
		t.Fatalf("expected HABLANTE_1, got %s", got)
	}
	if got := r.Resolve("SPEAKER_00"); got != "HABLANTE_1" {
		t.Errorf("in-memory mapping lost after failed save: %s", got)
	}
}

func TestGlobalsAndAliases(t *testing.T) {
	s := store.NewMemory()
	store.Save(s, RegistryKey, map[string]string{
		"SPEAKER_00": "HABLANTE_10",
		"SPEAKER_01": "HABLANTE_2",
		"part2_A":    "HABLANTE_2",
	})
	r := OpenRegistry(s, nil)

	if got := r.Globals(); !reflect.DeepEqual(got, []string{"HABLANTE_2", "HABLANTE_10"}) {
		t.Errorf("unexpected globals %v", got)
	}
	if got := r.Aliases("HABLANTE_2"); !reflect.DeepEqual(got, []string{"SPEAKER_01", "part2_A"}) {
		t.Errorf("unexpected aliases %v", got)
	}
}

func TestDisplayName(t *testing.T) {
	s := store.NewMemory()
	store.Save(s, NamesKey, map[string]string{"HABLANTE_1": "Ana Gómez"})
	n := OpenNames(s, nil)

	tests := []struct {
		id   string
		want string
	}{
		{Unknown, UnknownLabel},
		{"", UnknownLabel},
		{"HABLANTE_1", "Ana Gómez"},
		{"HABLANTE_7", "HABLANTE 7"},
		{"RARO", "HABLANTE RARO"},
	}
	for _, tc := range tests {
		if got := n.DisplayName(tc.id); got != tc.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tc.id, got, tc.want)
		}
	}
}

func TestNamesSaveAndReset(t *testing.T) {
	s := store.NewMemory()
	r := OpenRegistry(s, nil)
	r.Resolve("SPEAKER_00")

	n := OpenNames(s, nil)
	n.Set("HABLANTE_1", "Luis")
	if !n.Save() {
		t.Fatal("save failed")
	}
	if got, _ := OpenNames(s, nil).Get("HABLANTE_1"); got != "Luis" {
		t.Errorf("expected persisted name, got %q", got)
	}

	if err := Reset(s); err != nil {
		t.Fatal(err)
	}
	if OpenRegistry(s, nil).Len() != 0 || OpenNames(s, nil).Len() != 0 {
		t.Error("expected both registries cleared")
	}
	if got := OpenRegistry(s, nil).Resolve("SPEAKER_09"); got != "HABLANTE_1" {
		t.Errorf("expected numbering to restart, got %s", got)
	}
}

func TestSuggestionsRoundTrip(t *testing.T) {
	s := store.NewMemory()
	if got := LoadSuggestions(s); len(got) != 0 {
		t.Errorf("expected empty, got %v", got)
	}
	SaveSuggestions(s, map[string]string{"HABLANTE_1": "Marta Ruiz"})
	if got := LoadSuggestions(s); got["HABLANTE_1"] != "Marta Ruiz" {
		t.Errorf("got %v", got)
	}
}
