// Package mood compiles Mood source text to WebAssembly binary modules.
//
// Mood is a small statically typed expression language. A program is a
// sequence of struct, enum and function declarations; public functions
// become Wasm exports. Compile runs the whole pipeline: lexing, parsing,
// type checking, shadow-stack frame planning and binary emission.
package mood

import (
	"github.com/moodlang/mood/internal/emit"
	"github.com/moodlang/mood/internal/layout"
	"github.com/moodlang/mood/internal/lex"
	"github.com/moodlang/mood/internal/parse"
	"github.com/moodlang/mood/internal/types"
)

// Compile turns source into a Wasm binary. On malformed input the error is
// a *diag.Diagnostic locating the fault; use its Render method with the
// original source for a code frame.
func Compile(source string) ([]byte, error) {
	tokens, derr := lex.Lex(source)
	if derr != nil {
		return nil, derr
	}
	parsed, derr := parse.Parse(tokens)
	if derr != nil {
		return nil, derr
	}
	table, derr := types.Check(parsed.Program, len(parsed.Nodes))
	if derr != nil {
		return nil, derr
	}
	sizes := layout.Plan(parsed.Program, table)
	return emit.Emit(parsed.Program, table, sizes), nil
}
