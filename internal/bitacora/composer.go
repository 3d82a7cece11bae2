package bitacora

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Entry sources, in the canonical order of the official document
const (
	SourceIncident = "INCIDENT"
	SourceManual   = "MANUAL"
	SourceMobile   = "MOBILE"
	SourceSystem   = "SYSTEM"
)

var canonicalSources = []string{SourceIncident, SourceManual, SourceMobile, SourceSystem}

var sectionTitles = map[string]string{
	SourceIncident: "INCIDENCIAS",
	SourceManual:   "NOTAS DE BITÁCORA",
	SourceMobile:   "REGISTROS DE CAMPO (MÓVIL)",
	SourceSystem:   "EVENTOS DEL SISTEMA",
}

// GenerationLinePrefix starts the only line of a composed document that changes between runs
const GenerationLinePrefix = "Fecha y hora de generación: "

// UntitledPlaceholder replaces a missing entry title
const UntitledPlaceholder = "(Sin título)"

const (
	heavyRule = "============================================================"
	lightRule = "------------------------------------------------------------"
)

// DocumentEntry is the composer's view of a log entry
type DocumentEntry struct {
	ID         uint
	Source     string
	Title      string
	Author     string
	Content    string
	PhotoCount int
	CreatedAt  time.Time
}

// Document is everything the official text is rendered from
type Document struct {
	ProjectName string
	Location    string
	Date        string
	Entries     []DocumentEntry
}

// Section is one non-empty source group, already in chronological order
type Section struct {
	Source  string
	Title   string
	Entries []DocumentEntry
}

// Composer renders a day's entries into the canonical BESOP text
type Composer struct {
	loc *time.Location
}

// NewComposer creates a composer that prints times in loc
func NewComposer(loc *time.Location) *Composer {
	if loc == nil {
		loc = time.UTC
	}
	return &Composer{loc: loc}
}

// Sections groups entries by source (canonical order first, unknown sources after
// in order of first appearance) and sorts each group oldest first.
func Sections(entries []DocumentEntry) []Section {
	groups := make(map[string][]DocumentEntry)
	var encountered []string
	for _, e := range entries {
		if _, ok := groups[e.Source]; !ok {
			encountered = append(encountered, e.Source)
		}
		groups[e.Source] = append(groups[e.Source], e)
	}

	order := make([]string, 0, len(encountered))
	for _, s := range canonicalSources {
		if _, ok := groups[s]; ok {
			order = append(order, s)
		}
	}
	for _, s := range encountered {
		if _, known := sectionTitles[s]; !known {
			order = append(order, s)
		}
	}

	sections := make([]Section, 0, len(order))
	for _, source := range order {
		group := append([]DocumentEntry(nil), groups[source]...)
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].CreatedAt.Equal(group[j].CreatedAt) {
				return group[i].ID < group[j].ID
			}
			return group[i].CreatedAt.Before(group[j].CreatedAt)
		})
		title, ok := sectionTitles[source]
		if !ok {
			title = "OTROS REGISTROS (" + source + ")"
		}
		sections = append(sections, Section{Source: source, Title: title, Entries: group})
	}
	return sections
}

// Compose renders the official text. The output depends only on doc, except for
// the final generation line built from generatedAt.
func (c *Composer) Compose(doc Document, generatedAt time.Time) string {
	var b strings.Builder

	c.writePreamble(&b, doc)

	sections := Sections(doc.Entries)
	if len(sections) == 0 {
		b.WriteString("Sin entradas registradas para esta fecha.\n\n")
	}

	seq := 0
	for i, section := range sections {
		fmt.Fprintf(&b, "%d. %s\n", i+1, section.Title)
		b.WriteString(lightRule + "\n")
		for _, e := range section.Entries {
			seq++
			c.writeEntry(&b, seq, e)
		}
	}

	b.WriteString(heavyRule + "\n")
	fmt.Fprintf(&b, "Total de entradas registradas: %d (%s)\n", seq, CountInWords(seq))
	b.WriteString("AVISO LEGAL: Al cerrar el día, este documento y las entradas que lo\n")
	b.WriteString("integran quedan sellados y no podrán modificarse ni eliminarse.\n")
	b.WriteString(GenerationLinePrefix + generatedAt.In(c.loc).Format("2006-01-02 15:04:05 MST") + "\n")

	return b.String()
}

func (c *Composer) writePreamble(b *strings.Builder, doc Document) {
	location := strings.TrimSpace(doc.Location)
	if location == "" {
		location = "No especificada"
	}

	b.WriteString("BITÁCORA ELECTRÓNICA DE OBRA (BESOP)\n")
	b.WriteString("REGISTRO OFICIAL DE CIERRE DIARIO\n")
	b.WriteString(heavyRule + "\n")
	fmt.Fprintf(b, "Proyecto: %s\n", doc.ProjectName)
	fmt.Fprintf(b, "Ubicación: %s\n", location)
	fmt.Fprintf(b, "Fecha: %s\n", LongDate(doc.Date))
	b.WriteString(lightRule + "\n")
	b.WriteString("Se hace constar que las siguientes entradas fueron asentadas en la\n")
	b.WriteString("bitácora de obra durante la fecha indicada, en el orden en que ocurrieron.\n")
	b.WriteString(heavyRule + "\n\n")
}

func (c *Composer) writeEntry(b *strings.Builder, seq int, e DocumentEntry) {
	title := strings.TrimSpace(e.Title)
	if title == "" {
		title = UntitledPlaceholder
	}
	author := strings.TrimSpace(e.Author)
	if author == "" {
		author = "Usuario desconocido"
	}

	fmt.Fprintf(b, "[%d] %s | %s\n", seq, e.CreatedAt.In(c.loc).Format("15:04"), title)
	fmt.Fprintf(b, "Autor: %s\n", author)
	b.WriteString(strings.TrimSpace(e.Content) + "\n")
	if e.PhotoCount == 1 {
		b.WriteString("(1 fotografía adjunta)\n")
	} else if e.PhotoCount > 1 {
		fmt.Fprintf(b, "(%d fotografías adjuntas)\n", e.PhotoCount)
	}
	b.WriteString("\n")
}

// StripGenerationLine removes the trailing generation timestamp line so two renders
// of the same day can be compared, and so it never takes part in the integrity hash.
// Only the last non-blank line is considered; the same prefix elsewhere is content.
func StripGenerationLine(text string) string {
	lines := strings.Split(text, "\n")
	last := len(lines) - 1
	for last >= 0 && strings.TrimSpace(lines[last]) == "" {
		last--
	}
	if last < 0 || !strings.HasPrefix(lines[last], GenerationLinePrefix) {
		return text
	}
	return strings.Join(append(lines[:last:last], lines[last+1:]...), "\n")
}

var (
	spanishWeekdays = [...]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"}
	spanishMonths   = [...]string{"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio",
		"agosto", "septiembre", "octubre", "noviembre", "diciembre"}
)

// LongDate renders "2025-03-01" as "2025-03-01 (sábado 1 de marzo de 2025)"
func LongDate(date string) string {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	return fmt.Sprintf("%s (%s %d de %s de %d)",
		date, spanishWeekdays[d.Weekday()], d.Day(), spanishMonths[d.Month()-1], d.Year())
}
