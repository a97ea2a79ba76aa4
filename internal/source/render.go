package source

import (
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

// RenderOpts controls span rendering.
type RenderOpts struct {
	Color bool
	Tabs  int // indentation, two spaces per tab
}

var caretColor = color.New(color.FgRed, color.Bold)

// RenderSpan prints the source line(s) enclosing span, and for spans that
// start and end on the same line adds a caret underline beneath the covered
// columns. The underline is cosmetic; multi-line spans get no underline.
func RenderSpan(f *File, span Span, opts RenderOpts) string {
	if span.IsNone() || span.File != f.ID {
		return ""
	}
	begin := f.Position(span.Start)
	end := f.Position(span.End)

	// Enclosing lines: scan back from Start to the previous newline (or
	// start of file), forward from End to the next newline (or EOF).
	lineStart := span.Start
	for lineStart > 0 && f.Content[lineStart-1] != '\n' {
		lineStart--
	}
	lineEnd := span.End
	for lineEnd < f.Len() && f.Content[lineEnd] != '\n' {
		lineEnd++
	}

	indent := strings.Repeat("  ", opts.Tabs)
	var b strings.Builder
	b.WriteString(indent)
	b.Write(f.Content[lineStart:lineEnd])

	if begin.Line == end.Line {
		b.WriteByte('\n')
		b.WriteString(indent)
		pad := runewidth.StringWidth(string(f.Content[lineStart:span.Start]))
		b.WriteString(strings.Repeat(" ", pad))
		width := runewidth.StringWidth(string(f.Content[span.Start:span.End]))
		if width < 1 {
			width = 1
		}
		carets := strings.Repeat("^", width)
		if opts.Color {
			carets = caretColor.Sprint(carets)
		}
		b.WriteString(carets)
	}
	return b.String()
}
