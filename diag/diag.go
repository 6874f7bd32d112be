// Package diag defines source positions, spans and the Diagnostic value the
// compiler reports on malformed input. A Diagnostic renders to a code frame
// pointing at the faulting span; see Render.
package diag

// Position is a point in source text. Offset is a 0-based byte offset; Line
// and Column are 1-based.
type Position struct {
	Offset int
	Line   int
	Column int
}

// Location is a half-open span [Start, End) over source text.
type Location struct {
	Start Position
	End   Position
}

// Union merges two spans into the smallest span covering both.
func Union(a, b Location) Location {
	out := a
	if b.Start.Offset < a.Start.Offset {
		out.Start = b.Start
	}
	if b.End.Offset > a.End.Offset {
		out.End = b.End
	}
	return out
}

// LastChar narrows a span to its closing character, e.g. to point at an
// unterminated block's "}".
func LastChar(l Location) Location {
	start := l.End
	if start.Offset > l.Start.Offset {
		start.Offset--
		if start.Column > 1 {
			start.Column--
		}
	}
	return Location{Start: start, End: l.End}
}

// Annotation is a span plus the message printed under its caret run.
type Annotation struct {
	Span    Location
	Message string
}

// Diagnostic is a user-visible compile error. Primary locates the fault;
// Related spans, when present, add secondary context.
type Diagnostic struct {
	Message string
	Primary Annotation
	Related []Annotation
}

// Error implements error over the one-line form; use Render for the full
// code frame.
func (d *Diagnostic) Error() string {
	return d.Message
}

// Errorf builds a Diagnostic against a single span.
func Errorf(span Location, annotation, message string) *Diagnostic {
	return &Diagnostic{
		Message: message,
		Primary: Annotation{Span: span, Message: annotation},
	}
}
