// Package console is the interactive speaker manager: it lists global
// speaker ids, lets an operator name them and resets the registries.
package console

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mpgigat/actas-repfora/logging"
	"github.com/mpgigat/actas-repfora/output"
	"github.com/mpgigat/actas-repfora/speakers"
	"github.com/mpgigat/actas-repfora/store"
)

// ConfirmPhrase must be typed exactly for a reset to go ahead.
const ConfirmPhrase = "CONFIRMAR"

const quitWord = "salir"

// SuggestFunc produces name suggestions from a rendered transcript.
type SuggestFunc func(ctx context.Context, transcriptPath string) (map[string]string, error)

type Console struct {
	store store.Store
	in    *bufio.Reader
	out   *output.Formatter
	log   *logrus.Entry

	// Transcript, when set, is used to generate suggestions before naming
	// if none are cached.
	Transcript string
	Suggest    SuggestFunc
}

func New(s store.Store, in io.Reader, out io.Writer, log *logrus.Entry) *Console {
	return &Console{
		store: s,
		in:    bufio.NewReader(in),
		out:   output.NewFormatter(out),
		log:   logging.OrNop(log),
	}
}

// readLine returns the next input line without its line ending. io.EOF is
// returned only when no more input is available at all.
func (c *Console) readLine(prompt string) (string, error) {
	c.out.Prompt(prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Run shows the menu until the operator exits or input ends.
func (c *Console) Run(ctx context.Context) error {
	c.out.Header("🎭 GESTOR DE NOMBRES DE HABLANTES")
	for {
		c.out.Line("\nOpciones disponibles:")
		c.out.Line("1. Ver hablantes detectados")
		c.out.Line("2. Asignar nombres a hablantes")
		c.out.Line("3. Ver estadísticas")
		c.out.Line("4. Limpiar mapeo (CUIDADO)")
		c.out.Line("5. Salir")

		opt, err := c.readLine("\nElige una opción (1-5): ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch strings.TrimSpace(opt) {
		case "1":
			c.List()
		case "2":
			if err := c.Assign(ctx); err != nil {
				return err
			}
		case "3":
			c.Stats()
		case "4":
			if err := c.Reset(); err != nil {
				return err
			}
		case "5":
			c.out.Line("¡Hasta luego!")
			return nil
		default:
			c.out.Error("Opción no válida")
		}
	}
}

func (c *Console) open() (*speakers.Registry, *speakers.Names) {
	return speakers.OpenRegistry(c.store, c.log), speakers.OpenNames(c.store, c.log)
}

func (c *Console) noSpeakers() {
	c.out.Info("No hay hablantes detectados aún. Ejecuta primero una transcripción.")
}

// List prints every global id with its local aliases and current name.
func (c *Console) List() {
	reg, names := c.open()
	if reg.Len() == 0 {
		c.noSpeakers()
		return
	}

	c.out.Header("HABLANTES DETECTADOS:")
	for _, id := range reg.Globals() {
		c.out.Line("\n%s -> %s", id, names.DisplayName(id))
		c.out.Line("   Detectado como: %s", strings.Join(reg.Aliases(id), ", "))
	}
}

// Assign walks the global ids asking for a name. Enter accepts the
// suggestion or keeps the current name; "salir" or the end of input stops.
func (c *Console) Assign(ctx context.Context) error {
	reg, names := c.open()
	suggestions := speakers.LoadSuggestions(c.store)

	if c.Transcript != "" && len(suggestions) == 0 && c.Suggest != nil {
		generated, err := c.Suggest(ctx, c.Transcript)
		if err != nil {
			c.out.Error("Error al generar sugerencias: " + err.Error())
		} else {
			suggestions = generated
			if !speakers.SaveSuggestions(c.store, suggestions) {
				c.log.WithField("key", speakers.SuggestionsKey).Warn("could not save suggestions")
			}
			if len(suggestions) > 0 {
				c.out.Success("Sugerencias generadas automáticamente")
			}
		}
	}

	if reg.Len() == 0 {
		c.noSpeakers()
		return nil
	}

	c.out.Header("ASIGNAR NOMBRES A HABLANTES")
	c.out.Line("Presiona Enter para mantener el nombre actual")
	c.out.Line("Escribe '%s' para terminar", quitWord)

	changed := false
	for _, id := range reg.Globals() {
		suggestion := suggestions[id]
		c.out.Line("\n%s", id)
		c.out.Line("Detectado como: %s", strings.Join(reg.Aliases(id), ", "))
		c.out.Line("Nombre actual: %s", names.DisplayName(id))

		prompt := "Nuevo nombre (Enter para mantener): "
		if suggestion != "" {
			prompt = "Nuevo nombre [" + suggestion + "]: "
		}
		answer, err := c.readLine(prompt)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		answer = strings.TrimSpace(answer)
		if strings.EqualFold(answer, quitWord) {
			break
		}
		chosen := answer
		if chosen == "" {
			chosen = suggestion
		}
		if chosen == "" {
			continue
		}
		names.Set(id, chosen)
		changed = true
		c.out.Success(id + " -> " + chosen)
	}

	if !changed {
		c.out.Info("No se realizaron cambios")
		return nil
	}
	if names.Save() {
		c.out.Success("Nombres guardados correctamente")
	} else {
		c.out.Error("Error al guardar nombres")
	}
	return nil
}

// Stats prints identity counts and the detections per global id.
func (c *Console) Stats() {
	reg, names := c.open()
	if reg.Len() == 0 {
		c.out.Info("No hay datos de hablantes disponibles")
		return
	}

	globals := reg.Globals()
	c.out.Header("ESTADÍSTICAS DE HABLANTES")
	c.out.Line("Hablantes únicos detectados: %d", len(globals))
	c.out.Line("Total de detecciones locales: %d", reg.Len())
	c.out.Line("Hablantes con nombres personalizados: %d", names.Len())

	c.out.Line("\nDistribución por hablante:")
	for _, id := range globals {
		c.out.Line("  %s: %d detecciones", names.DisplayName(id), len(reg.Aliases(id)))
	}
}

// Reset deletes the registry and the names after the exact confirmation
// phrase. Anything else, including the end of input, cancels.
func (c *Console) Reset() error {
	c.out.Warning("¡ADVERTENCIA!")
	c.out.Line("Esto eliminará todo el mapeo de hablantes y empezará desde cero.")
	c.out.Line("Solo hazlo si quieres resetear completamente el sistema.")

	answer, err := c.readLine("\n¿Estás seguro? Escribe '" + ConfirmPhrase + "' para continuar: ")
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if answer != ConfirmPhrase {
		c.out.Info("Operación cancelada")
		return nil
	}

	if err := speakers.Reset(c.store); err != nil {
		c.out.Error("Error al eliminar archivos: " + err.Error())
		return nil
	}
	c.log.Info("speaker registry reset")
	c.out.Success("Mapeo eliminado. El próximo audio empezará con HABLANTE 1")
	return nil
}
