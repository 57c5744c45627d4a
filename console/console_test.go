package console

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/mpgigat/actas-repfora/speakers"
	"github.com/mpgigat/actas-repfora/store"
)

func seeded(t *testing.T) *store.Memory {
	t.Helper()
	s := store.NewMemory()
	store.Save(s, speakers.RegistryKey, map[string]string{
		"SPEAKER_00": "HABLANTE_1",
		"SPEAKER_01": "HABLANTE_2",
		"SPEAKER_02": "HABLANTE_1",
		"SPEAKER_03": "HABLANTE_10",
	})
	return s
}

func names(s store.Store) map[string]string {
	return store.Load(s, speakers.NamesKey, map[string]string{})
}

func TestAssign(t *testing.T) {
	tests := []struct {
		name        string
		existing    map[string]string
		suggestions map[string]string
		input       string
		want        map[string]string
		saved       bool
	}{
		{
			name:        "accept suggestion and override",
			suggestions: map[string]string{"HABLANTE_1": "Ana Gómez"},
			input:       "\nLuis Pérez\n\n",
			want:        map[string]string{"HABLANTE_1": "Ana Gómez", "HABLANTE_2": "Luis Pérez"},
			saved:       true,
		},
		{
			name:     "enter keeps current name",
			existing: map[string]string{"HABLANTE_2": "Rosa"},
			input:    "\n\n\n",
			want:     map[string]string{"HABLANTE_2": "Rosa"},
		},
		{
			name:  "salir stops early",
			input: "Marta\nSALIR\nNo Llega\n",
			want:  map[string]string{"HABLANTE_1": "Marta"},
			saved: true,
		},
		{
			name:  "end of input stops",
			input: "Marta",
			want:  map[string]string{"HABLANTE_1": "Marta"},
			saved: true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := seeded(t)
			if tc.existing != nil {
				store.Save(s, speakers.NamesKey, tc.existing)
			}
			if tc.suggestions != nil {
				speakers.SaveSuggestions(s, tc.suggestions)
			}
			var out bytes.Buffer
			c := New(s, strings.NewReader(tc.input), &out, nil)
			if err := c.Assign(context.Background()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got := names(s)
			if len(tc.want) == 0 && len(got) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("names = %v, want %v", got, tc.want)
			}
			if saved := strings.Contains(out.String(), "Nombres guardados correctamente"); saved != tc.saved {
				t.Errorf("saved message = %v, output:\n%s", saved, out.String())
			}
		})
	}
}

func TestAssignOrdersNumerically(t *testing.T) {
	s := seeded(t)
	var out bytes.Buffer
	c := New(s, strings.NewReader("a\nb\nc\n"), &out, nil)
	if err := c.Assign(context.Background()); err != nil {
		t.Fatal(err)
	}
	want := map[string]string{"HABLANTE_1": "a", "HABLANTE_2": "b", "HABLANTE_10": "c"}
	if got := names(s); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v", got)
	}
}

func TestAssignGeneratesSuggestions(t *testing.T) {
	s := seeded(t)
	var out bytes.Buffer
	c := New(s, strings.NewReader("\n"), &out, nil)
	c.Transcript = "acta_transcripcion.txt"
	calls := 0
	c.Suggest = func(_ context.Context, path string) (map[string]string, error) {
		calls++
		if path != "acta_transcripcion.txt" {
			t.Errorf("unexpected path %s", path)
		}
		return map[string]string{"HABLANTE_1": "Elena Ríos"}, nil
	}
	if err := c.Assign(context.Background()); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("expected one suggestion run, got %d", calls)
	}
	if got := speakers.LoadSuggestions(s); got["HABLANTE_1"] != "Elena Ríos" {
		t.Errorf("suggestions not cached: %v", got)
	}
	if got := names(s); got["HABLANTE_1"] != "Elena Ríos" {
		t.Errorf("suggestion not accepted: %v", got)
	}
}

func TestAssignSuggestionFailureIsPrinted(t *testing.T) {
	s := seeded(t)
	var out bytes.Buffer
	c := New(s, strings.NewReader(""), &out, nil)
	c.Transcript = "missing.txt"
	c.Suggest = func(context.Context, string) (map[string]string, error) {
		return nil, errors.New("no such file")
	}
	if err := c.Assign(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Error al generar sugerencias: no such file") {
		t.Errorf("output:\n%s", out.String())
	}
}

func TestAssignReportsSaveFailure(t *testing.T) {
	s := seeded(t)
	s.FailPuts = true
	var out bytes.Buffer
	if err := New(s, strings.NewReader("Nombre\n"), &out, nil).Assign(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Error al guardar nombres") {
		t.Errorf("output:\n%s", out.String())
	}
}

func TestListAndStats(t *testing.T) {
	s := seeded(t)
	store.Save(s, speakers.NamesKey, map[string]string{"HABLANTE_1": "Ana"})
	var out bytes.Buffer
	c := New(s, strings.NewReader(""), &out, nil)

	c.List()
	for _, want := range []string{
		"HABLANTE_1 -> Ana",
		"Detectado como: SPEAKER_00, SPEAKER_02",
		"HABLANTE_10 -> HABLANTE 10",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("list output missing %q:\n%s", want, out.String())
		}
	}

	out.Reset()
	c.Stats()
	for _, want := range []string{
		"Hablantes únicos detectados: 3",
		"Total de detecciones locales: 4",
		"Hablantes con nombres personalizados: 1",
		"Ana: 2 detecciones",
		"HABLANTE 2: 1 detecciones",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("stats output missing %q:\n%s", want, out.String())
		}
	}
}

func TestEmptyRegistry(t *testing.T) {
	var out bytes.Buffer
	c := New(store.NewMemory(), strings.NewReader(""), &out, nil)
	c.List()
	c.Stats()
	if !strings.Contains(out.String(), "No hay hablantes detectados") || !strings.Contains(out.String(), "No hay datos") {
		t.Errorf("output:\n%s", out.String())
	}
}

func TestReset(t *testing.T) {
	tests := []struct {
		input   string
		cleared bool
	}{
		{"CONFIRMAR\n", true},
		{"confirmar\n", false},
		{" CONFIRMAR\n", false},
		{"", false},
	}
	for _, tc := range tests {
		s := seeded(t)
		store.Save(s, speakers.NamesKey, map[string]string{"HABLANTE_1": "Ana"})
		var out bytes.Buffer
		if err := New(s, strings.NewReader(tc.input), &out, nil).Reset(); err != nil {
			t.Fatal(err)
		}
		_, regErr := s.Get(speakers.RegistryKey)
		_, namesErr := s.Get(speakers.NamesKey)
		cleared := errors.Is(regErr, store.ErrNotFound) && errors.Is(namesErr, store.ErrNotFound)
		if cleared != tc.cleared {
			t.Errorf("input %q: cleared = %v", tc.input, cleared)
		}
	}
}

func TestRunMenu(t *testing.T) {
	s := seeded(t)
	var out bytes.Buffer
	input := "9\n1\n3\n4\nno\n5\n1\n"
	if err := New(s, strings.NewReader(input), &out, nil).Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	for _, want := range []string{"Opción no válida", "HABLANTES DETECTADOS", "ESTADÍSTICAS", "Operación cancelada", "¡Hasta luego!"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in output", want)
		}
	}
	if strings.Count(got, "HABLANTES DETECTADOS") != 1 {
		t.Error("menu kept running after exit")
	}
}

func TestRunEndsOnEOF(t *testing.T) {
	var out bytes.Buffer
	if err := New(store.NewMemory(), strings.NewReader("3\n"), &out, nil).Run(context.Background()); err != nil {
		t.Fatal(err)
	}
}
