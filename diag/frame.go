package diag

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

var (
	headColor  = color.New(color.FgRed, color.Bold)
	caretColor = color.New(color.FgRed)
)

// Render formats the diagnostic as a code frame over the original source:
//
//	Error: <message>:
//	 --> <filename>:<line>:<col>
//
//	  | <context line n-1>
//	n | <context line>
//	  |       ^^^^^ <annotation>
//	  | <context line n+1>
//
// Colour is applied through the fatih/color package, which honours NO_COLOR
// and non-terminal output on its own; callers can force it off by setting
// color.NoColor.
func (d *Diagnostic) Render(source, filename string) string {
	lines := strings.Split(source, "\n")
	span := d.Primary.Span

	var b strings.Builder
	b.WriteString(headColor.Sprintf("Error: %s:", d.Message))
	b.WriteString(fmt.Sprintf("\n --> %s:%d:%d\n\n", filename, span.Start.Line, span.Start.Column))

	lineNo := span.Start.Line // 1-based
	gutter := len(fmt.Sprintf("%d", lineNo+1))

	writeLine := func(no int) {
		if no < 1 || no > len(lines) {
			return
		}
		b.WriteString(fmt.Sprintf("%*s | %s\n", gutter, "", lines[no-1]))
	}

	writeLine(lineNo - 1)
	if lineNo >= 1 && lineNo <= len(lines) {
		b.WriteString(fmt.Sprintf("%*d | %s\n", gutter, lineNo, lines[lineNo-1]))
	}

	// Caret run under the span, clipped to the first line it covers.
	caretStart := span.Start.Column - 1
	caretLen := span.End.Column - span.Start.Column
	if span.End.Line != span.Start.Line && lineNo >= 1 && lineNo <= len(lines) {
		caretLen = len(lines[lineNo-1]) - caretStart
	}
	if caretLen < 1 {
		caretLen = 1
	}
	carets := caretColor.Sprint(strings.Repeat("^", caretLen))
	annotation := d.Primary.Message
	if annotation != "" {
		annotation = " " + annotation
	}
	b.WriteString(fmt.Sprintf("%*s | %s%s%s\n", gutter, "", strings.Repeat(" ", caretStart), carets, annotation))

	writeLine(lineNo + 1)
	return b.String()
}
