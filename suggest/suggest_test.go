package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/mpgigat/actas-repfora/clients"
)

const transcript = `INTERVIENE HABLANTE 1: Buenos días, soy María López y presido la sesión.

INTERVIENE HABLANTE 2: gracias presidenta, aquí Juan Pérez Gómez para el acta.

INTERVIENE HABLANTE 1: Continúo con Ana Ruiz como invitada.

INTERVIENE HABLANTE DESCONOCIDO: habla Pedro Sánchez desde el fondo.

INTERVIENE HABLANTE 3: sin nombres propios aquí.`

func TestRegexNames(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"soy María López y Ana", []string{"María López"}},
		{"Ángel Núñez, Luis Pérez", []string{"Ángel Núñez", "Luis Pérez"}},
		{"ÉlMismo no", nil},
		{"todo en minúsculas", nil},
	}
	for _, tc := range tests {
		got, err := Regex{}.Names(context.Background(), tc.in)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("Names(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestSuggestWithRegex(t *testing.T) {
	got := Suggest(context.Background(), transcript, 0, nil)
	// "Buenos días" is a single capitalized word; HABLANTE_3 has no name.
	want := map[string]string{
		"HABLANTE_1": "María López",
		"HABLANTE_2": "Juan Pérez Gómez",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSuggestWindow(t *testing.T) {
	text := "INTERVIENE HABLANTE 4: uno dos tres cuatro Rosa Díaz"
	if got := Suggest(context.Background(), text, 4, nil); len(got) != 0 {
		t.Errorf("expected name outside the window to be ignored, got %v", got)
	}
	if got := Suggest(context.Background(), text, 6, nil); got["HABLANTE_4"] != "Rosa Díaz" {
		t.Errorf("got %v", got)
	}
}

func TestSuggestCaseInsensitiveMarker(t *testing.T) {
	got := Suggest(context.Background(), "interviene hablante 7: con Marta Gil", 40, nil)
	if got["HABLANTE_7"] != "Marta Gil" {
		t.Errorf("got %v", got)
	}
}

func TestSuggestEmpty(t *testing.T) {
	if got := Suggest(context.Background(), "", 40, nil); len(got) != 0 {
		t.Errorf("got %v", got)
	}
}

type stubExtractor struct {
	names []string
	err   error
	calls int
}

func (s *stubExtractor) Names(context.Context, string) ([]string, error) {
	s.calls++
	return s.names, s.err
}

func TestChain(t *testing.T) {
	failing := &stubExtractor{err: errors.New("sidecar down")}
	empty := &stubExtractor{}
	named := &stubExtractor{names: []string{"Laura Vega"}}

	got, _ := Chain{Extractors: []Extractor{failing, named}}.Names(context.Background(), "x")
	if !reflect.DeepEqual(got, []string{"Laura Vega"}) {
		t.Errorf("expected fall through after failure, got %v", got)
	}

	named.calls = 0
	got, _ = Chain{Extractors: []Extractor{empty, named}}.Names(context.Background(), "x")
	if len(got) != 0 || named.calls != 0 {
		t.Errorf("a successful extractor decides even with no names, got %v", got)
	}

	got, err := Chain{Extractors: []Extractor{failing}}.Names(context.Background(), "x")
	if err != nil || got != nil {
		t.Errorf("all failing should yield nothing, got %v %v", got, err)
	}
}

func TestSuggestDedupesAndSkipsBlank(t *testing.T) {
	ex := &stubExtractor{names: []string{" ", "Sofía Mora", "Sofía Mora", "Otro Nombre"}}
	got := Suggest(context.Background(), "INTERVIENE HABLANTE 2: texto", 40, ex)
	if got["HABLANTE_2"] != "Sofía Mora" {
		t.Errorf("got %v", got)
	}
}

func TestSuggestWithEntitiesSidecar(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req clients.EntitiesReq
		json.NewDecoder(r.Body).Decode(&req)
		resp := clients.EntitiesResp{}
		if strings.Contains(req.Text, "María") {
			resp.Entities = []clients.Entity{
				{Text: "Bogotá", Label: "LOC"},
				{Text: "María", Label: "PER"},
			}
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	chain := NewChain(clients.NewHTTP(), srv.URL, "es", nil)
	got := Suggest(context.Background(), transcript, 40, chain)
	if got["HABLANTE_1"] != "María" {
		t.Errorf("expected sidecar person entity, got %v", got)
	}
	if _, ok := got["HABLANTE_2"]; ok {
		t.Errorf("sidecar found no person for HABLANTE_2, got %v", got)
	}
}

func TestSuggestFallsBackWhenSidecarFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	chain := NewChain(clients.NewHTTP(), srv.URL, "es", nil)
	got := Suggest(context.Background(), transcript, 40, chain)
	if got["HABLANTE_2"] != "Juan Pérez Gómez" {
		t.Errorf("expected regex fallback, got %v", got)
	}
}

func TestFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "acta_transcripcion.txt")
	if err := os.WriteFile(p, []byte(transcript), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := File(context.Background(), p, 40, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("got %v", got)
	}

	if _, err := File(context.Background(), filepath.Join(t.TempDir(), "missing.txt"), 40, nil); err == nil {
		t.Error("expected an error for a missing file")
	}
}
