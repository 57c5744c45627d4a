package output

import (
	"fmt"
	"io"
	"strings"
	"time"
)

type Formatter struct {
	w io.Writer
}

func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

func (f *Formatter) Transcribing(audio string) {
	fmt.Fprintf(f.w, "🎙️  Transcribiendo %s...\n", audio)
}

func (f *Formatter) TranscribeDone(path string, turns int, d time.Duration) {
	fmt.Fprintf(f.w, "✅ Transcripción guardada: %s (%d intervenciones, %s)\n", path, turns, formatDuration(d))
}

func (f *Formatter) NewSpeakers(ids []string) {
	if len(ids) == 0 {
		return
	}
	fmt.Fprintf(f.w, "🆕 Hablantes nuevos: %s\n", strings.Join(ids, ", "))
}

func (f *Formatter) Header(title string) {
	fmt.Fprintf(f.w, "\n%s\n%s\n", title, strings.Repeat("=", 50))
}

func (f *Formatter) Line(format string, args ...any) {
	fmt.Fprintf(f.w, format+"\n", args...)
}

func (f *Formatter) Error(msg string) {
	fmt.Fprintf(f.w, "❌ %s\n", msg)
}

func (f *Formatter) Info(msg string) {
	fmt.Fprintf(f.w, "ℹ️  %s\n", msg)
}

func (f *Formatter) Success(msg string) {
	fmt.Fprintf(f.w, "✓ %s\n", msg)
}

func (f *Formatter) Warning(msg string) {
	fmt.Fprintf(f.w, "⚠️  %s\n", msg)
}

func (f *Formatter) Prompt(msg string) {
	fmt.Fprint(f.w, msg)
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
