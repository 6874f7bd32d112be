package mood_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/moodlang/mood"
	"github.com/moodlang/mood/diag"
)

// run compiles the source and calls its exported test function in a fresh
// wazero runtime.
func run(t *testing.T, source string) int32 {
	t.Helper()
	bin, err := mood.Compile(source)
	require.NoError(t, err)

	ctx := context.Background()
	runtime := wazero.NewRuntime(ctx)
	defer runtime.Close(ctx)

	mod, err := runtime.Instantiate(ctx, bin)
	require.NoError(t, err)
	fn := mod.ExportedFunction("test")
	require.NotNil(t, fn)
	res, err := fn.Call(ctx)
	require.NoError(t, err)
	require.Len(t, res, 1)
	return api.DecodeI32(res[0])
}

func TestCompile_endToEnd(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		expected int32
	}{
		{
			name:     "function call",
			source:   `pub fn add(a: i32, b: i32): i32 { a + b } pub fn test(): i32 { add(1_i32, 2_i32) }`,
			expected: 3,
		},
		{
			name:     "star binds tighter than plus",
			source:   `pub fn test(): i32 { 2_i32 + 3_i32 * 4_i32 }`,
			expected: 14,
		},
		{
			name: "struct passed by address",
			source: `struct Box { w: i32, h: i32 }
fn area(b: Box): i32 { b.w * b.h }
pub fn test(): i32 { let a: Box = Box { w: 10_i32, h: 20_i32 }; area(a) }`,
			expected: 200,
		},
		{
			name: "call sites get distinct result slots",
			source: `struct Foo { x: i32 }
fn other(x: i32): Foo { Foo { x: x } }
pub fn test(): i32 { let foo: Foo = other(10_i32); other(20_i32); foo.x }`,
			expected: 10,
		},
		{
			name:     "booleans lower to i32",
			source:   `pub fn test(): i32 { 1_i32 == 1_i32 }`,
			expected: 1,
		},
		{
			name:     "false equality",
			source:   `pub fn test(): i32 { 1_i32 == 2_i32 }`,
			expected: 0,
		},
		{
			name:     "parentheses override precedence",
			source:   `pub fn test(): i32 { (2_i32 + 3_i32) * 4_i32 }`,
			expected: 20,
		},
		{
			name: "enum tags are declaration indices",
			source: `enum Color { Red, Green, Blue }
fn pick(): Color { Color::Blue }
pub fn test(): i32 { let c: Color = pick(); c == Color::Blue }`,
			expected: 1,
		},
		{
			name: "f64 locals and fields",
			source: `struct Point { x: f64, y: f64 }
fn squash(p: Point): i32 { p.x == 1.5_f64 }
pub fn test(): i32 { let p: Point = Point { x: 1.5_f64, y: 2.0_f64 }; squash(p) }`,
			expected: 1,
		},
		{
			name: "struct result bound then read",
			source: `struct Foo { x: i32 }
fn make(v: i32): Foo { Foo { x: v } }
pub fn test(): i32 { let f: Foo = make(41_i32); f.x + 1_i32 }`,
			expected: 42,
		},
		{
			name: "nested struct fields copy by value",
			source: `struct Inner { v: i32 }
struct Outer { a: Inner, b: i32 }
pub fn test(): i32 { let i: Inner = Inner { v: 5_i32 }; let o: Outer = Outer { a: i, b: 2_i32 }; o.b }`,
			expected: 2,
		},
		{
			name: "forward call",
			source: `pub fn test(): i32 { later(3_i32) }
fn later(x: i32): i32 { x + 1_i32 }`,
			expected: 4,
		},
	}

	for _, tt := range tests {
		tc := tt

		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, run(t, tc.source))
		})
	}
}

func TestCompile_binaryHeader(t *testing.T) {
	bin, err := mood.Compile("pub fn test(): i32 { 0_i32 }")
	require.NoError(t, err)
	require.Equal(t, []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}, bin[:8])
}

func TestCompile_diagnostics(t *testing.T) {
	source := `enum Maybe { Some(i32), None } pub fn test(): i32 { let x: Maybe = Maybe::Some(10_i32, 20_i32, 30_i32); 10_i32 }`
	_, err := mood.Compile(source)
	require.Error(t, err)

	var d *diag.Diagnostic
	require.True(t, errors.As(err, &d))
	require.Equal(t,
		`Variant "Some" is not a unit variant. Expected a single value argument, but got 3.`,
		d.Message)
	require.Equal(t, "20_i32, 30_i32",
		source[d.Primary.Span.Start.Offset:d.Primary.Span.End.Offset])

	rendered := d.Render(source, "main.mood")
	require.True(t, strings.Contains(rendered, " --> main.mood:1:"))
	require.True(t, strings.Contains(rendered, "^"))
}

func TestCompile_syntaxError(t *testing.T) {
	_, err := mood.Compile("pub fn test(): i32 { 1 }")
	var d *diag.Diagnostic
	require.True(t, errors.As(err, &d))
	require.Contains(t, d.Message, "_i32 or _f64")
}
