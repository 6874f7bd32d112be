package diag

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"
)

func pos(offset, line, column int) Position {
	return Position{Offset: offset, Line: line, Column: column}
}

func TestUnion(t *testing.T) {
	a := Location{Start: pos(4, 1, 5), End: pos(9, 1, 10)}
	b := Location{Start: pos(12, 2, 1), End: pos(15, 2, 4)}

	merged := Union(a, b)
	require.Equal(t, a.Start, merged.Start)
	require.Equal(t, b.End, merged.End)

	// Order of arguments does not matter.
	require.Equal(t, merged, Union(b, a))

	// Union with itself is itself.
	require.Equal(t, a, Union(a, a))
}

func TestLastChar(t *testing.T) {
	block := Location{Start: pos(0, 1, 1), End: pos(10, 1, 11)}
	last := LastChar(block)
	require.Equal(t, 9, last.Start.Offset)
	require.Equal(t, 10, last.Start.Column)
	require.Equal(t, block.End, last.End)
}

func TestDiagnostic_Error(t *testing.T) {
	d := Errorf(Location{}, "here", "Something went wrong")
	require.EqualError(t, d, "Something went wrong")
}

func TestDiagnostic_Render(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	source := "fn f(): i32 {\n  missing\n}\n"
	span := Location{Start: pos(16, 2, 3), End: pos(23, 2, 10)}
	d := Errorf(span, "not found in this scope", `Undefined name "missing"`)

	require.Equal(t, `Error: Undefined name "missing":
 --> main.mood:2:3

  | fn f(): i32 {
2 |   missing
  |   ^^^^^^^ not found in this scope
  | }
`, d.Render(source, "main.mood"))
}
