// Package metadata pulls the header fields of a training-committee act out
// of a recording's file name and its transcript.
package metadata

import (
	"regexp"
	"strings"
	"time"
)

// Info is what could be detected. Empty fields were not found.
type Info struct {
	Project     string   `json:"proyecto"`
	Date        string   `json:"fecha"`
	Program     string   `json:"programa,omitempty"`
	Ficha       string   `json:"ficha,omitempty"`
	Apprentices []string `json:"aprendices,omitempty"`
	Instructor  string   `json:"instructor,omitempty"`
	Acta        string   `json:"acta"`
}

var (
	projectSuffixRe = regexp.MustCompile(`(_transcripcion|_parte_\d+|_completa)`)
	spacesRe        = regexp.MustCompile(`\s+`)

	programRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)programa\s+([^.]{15,150})`),
		regexp.MustCompile(`(?i)técnico\s+en\s+([^.]{10,100})`),
		regexp.MustCompile(`(?i)del\s+programa\s+([^.]{10,100})`),
	}
	fichaRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)ficha\s*:?\s*(\d+[-\d]*)`),
		regexp.MustCompile(`(?i)de\s+la\s+ficha\s+(\d+)`),
		regexp.MustCompile(`(?i)ficha\s+número\s+(\d+)`),
	}
	apprenticeRes = []*regexp.Regexp{
		regexp.MustCompile(`aprendiz\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,4})`),
		regexp.MustCompile(`del\s+aprendiz\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,4})`),
		regexp.MustCompile(`estudiante\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,4})`),
	}
	dateRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d{1,2}\s+de\s+\w+\s+de\s+\d{4})`),
		regexp.MustCompile(`(\d{1,2}/\d{1,2}/\d{4})`),
		regexp.MustCompile(`(?i)fecha[:\s]+([^.]{10,30})`),
	}
	instructorRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)instructor\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,4})`),
		regexp.MustCompile(`(?i)profesora?\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,4})`),
	}
)

// programs known by a keyword of the recording's file name.
var programs = []struct {
	keywords []string
	name     string
}{
	{[]string{"fotovoltaicos"}, "Técnico en Mantenimiento e Instalación de Sistemas Solares Fotovoltaicos"},
	{[]string{"adso"}, "Análisis y Desarrollo de Software"},
	{[]string{"asistencia", "administrativa"}, "Técnico en Asistencia Administrativa"},
	{[]string{"agrotronica", "agrotrónica"}, "Técnico en Agrotrónica"},
}

// Project strips the transcript and part suffixes from a base file name.
func Project(name string) string {
	return projectSuffixRe.ReplaceAllString(name, "")
}

// Extract detects what it can from name (a base file name without
// extension) and text. now supplies the default date and the act number.
func Extract(name, text string, now time.Time) Info {
	info := Info{
		Project: Project(name),
		Date:    now.Format("2/1/2006"),
		Acta:    "CEyS-" + now.Format("060102"),
	}

	if text != "" {
		if m := firstMatch(programRes, text); m != "" {
			info.Program = spacesRe.ReplaceAllString(m, " ")
		}
		info.Ficha = firstMatch(fichaRes, text)
		info.Apprentices = allMatches(apprenticeRes, text)
		if m := firstMatch(dateRes, text); m != "" {
			info.Date = m
		}
		info.Instructor = firstMatch(instructorRes, text)
	}

	if info.Program == "" {
		lower := strings.ToLower(name)
	known:
		for _, p := range programs {
			for _, k := range p.keywords {
				if strings.Contains(lower, k) {
					info.Program = p.name
					break known
				}
			}
		}
	}
	return info
}

func firstMatch(res []*regexp.Regexp, text string) string {
	for _, re := range res {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

func allMatches(res []*regexp.Regexp, text string) []string {
	seen := map[string]bool{}
	var out []string
	for _, re := range res {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			name := strings.TrimSpace(m[1])
			if seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}
