// Package render prints variants as worksheets and answer keys.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/abhisek/worksheets/internal/template"
	"github.com/abhisek/worksheets/internal/variant"
)

// Format is an output format for worksheets.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
)

// ParseFormat accepts "text", "txt", "markdown" or "md".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown format %q: must be text or markdown", s)
}

// Ext returns the file extension, including the dot.
func (f Format) Ext() string {
	if f == FormatMarkdown {
		return ".md"
	}
	return ".txt"
}

// Options control worksheet output.
type Options struct {
	Format Format

	// ShowSeed prints the variant seed under the title so a sheet can be
	// regenerated.
	ShowSeed bool
}

// Worksheet writes the variant's tasks in presentation order. A section
// heading is printed whenever the section changes, so a shuffled variant
// shows one heading per run of tasks from the same section.
func Worksheet(w io.Writer, t template.Template, v variant.Variant, opts Options) error {
	p := &printer{w: w, format: opts.Format}

	p.title(titleOf(t))
	if t.Header != "" {
		p.para(t.Header)
	}
	p.meta(variantLine(v, opts.ShowSeed))

	prev := ""
	for i, a := range v.Assignments {
		if i == 0 || a.SectionLabel != prev {
			p.heading(a.SectionLabel)
			prev = a.SectionLabel
		}
		p.item(a.OrderIndex+1, a.Task.Content)
	}
	return p.err
}

// AnswerKey writes one line per task: number, answer and task id.
func AnswerKey(w io.Writer, t template.Template, v variant.Variant, opts Options) error {
	p := &printer{w: w, format: opts.Format}

	p.title("Answer key: " + titleOf(t))
	p.meta(variantLine(v, opts.ShowSeed))
	p.blank()

	for _, a := range v.Assignments {
		answer := a.Task.Answer
		if answer == "" {
			answer = "(no answer)"
		}
		p.item(a.OrderIndex+1, fmt.Sprintf("%s  [%s]", answer, a.Task.ID))
	}
	return p.err
}

func titleOf(t template.Template) string {
	if t.Title != "" {
		return t.Title
	}
	return t.ID
}

func variantLine(v variant.Variant, showSeed bool) string {
	line := fmt.Sprintf("Variant %d", v.Index+1)
	if showSeed {
		line += fmt.Sprintf(" (seed %s)", v.Seed)
	}
	return line
}

// printer writes format-specific blocks and keeps the first write error.
type printer struct {
	w      io.Writer
	format Format
	err    error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) blank() { p.printf("\n") }

func (p *printer) title(s string) {
	if p.format == FormatMarkdown {
		p.printf("# %s\n\n", s)
		return
	}
	p.printf("%s\n%s\n\n", s, strings.Repeat("=", len([]rune(s))))
}

func (p *printer) para(s string) { p.printf("%s\n\n", s) }

func (p *printer) meta(s string) {
	if p.format == FormatMarkdown {
		p.printf("_%s_\n", s)
		return
	}
	p.printf("%s\n", s)
}

func (p *printer) heading(s string) {
	if p.format == FormatMarkdown {
		p.printf("\n## %s\n\n", s)
		return
	}
	p.printf("\n%s\n%s\n", s, strings.Repeat("-", len([]rune(s))))
}

// item prints a numbered entry; continuation lines are indented under the
// text.
func (p *printer) item(n int, text string) {
	prefix := fmt.Sprintf("%d. ", n)
	indent := strings.Repeat(" ", len(prefix))
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	p.printf("%s%s\n", prefix, lines[0])
	for _, l := range lines[1:] {
		p.printf("%s%s\n", indent, l)
	}
}
