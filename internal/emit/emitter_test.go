package emit

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/moodlang/mood/internal/layout"
	"github.com/moodlang/mood/internal/lex"
	"github.com/moodlang/mood/internal/parse"
	"github.com/moodlang/mood/internal/types"
	"github.com/moodlang/mood/wasm"
	"github.com/moodlang/mood/wasm/leb128"
)

func compile(t *testing.T, src string) []byte {
	t.Helper()
	tokens, err := lex.Lex(src)
	require.Nil(t, err)
	parsed, err := parse.Parse(tokens)
	require.Nil(t, err)
	table, err := types.Check(parsed.Program, len(parsed.Nodes))
	require.Nil(t, err)
	return Emit(parsed.Program, table, layout.Plan(parsed.Program, table))
}

// sections splits a binary into id -> body, checking canonical order.
func sections(t *testing.T, bin []byte) map[wasm.SectionID][]byte {
	t.Helper()
	require.GreaterOrEqual(t, len(bin), 8)

	out := map[wasm.SectionID][]byte{}
	r := bytes.NewReader(bin[8:])
	prev := -1
	for r.Len() > 0 {
		id, err := r.ReadByte()
		require.NoError(t, err)
		require.Greater(t, int(id), prev, "sections out of order")
		prev = int(id)

		size, _, err := leb128.DecodeUint32(r)
		require.NoError(t, err)
		body := make([]byte, size)
		_, err = r.Read(body)
		require.NoError(t, err)
		out[id] = body
	}
	return out
}

func TestEmit_header(t *testing.T) {
	bin := compile(t, "pub fn test(): i32 { 1_i32 }")
	require.Equal(t, []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}, bin[:8])
}

func TestEmit_typeDeduplication(t *testing.T) {
	bin := compile(t, `
fn a(x: i32): i32 { x }
fn b(x: i32): i32 { x }
fn c(x: i32): i32 { x }
pub fn test(): i32 { a(1_i32) + b(2_i32) + c(3_i32) }
`)
	typeSection := sections(t, bin)[wasm.SectionIDType]
	count, _, err := leb128.DecodeUint32(bytes.NewReader(typeSection))
	require.NoError(t, err)
	// (i32)->i32 shared by a, b and c, plus ()->i32 for test.
	require.Equal(t, uint32(2), count)
}

func TestEmit_exports(t *testing.T) {
	bin := compile(t, `
fn helper(): i32 { 1_i32 }
pub fn first(): i32 { helper() }
pub fn second(): i32 { 2_i32 }
`)
	body := sections(t, bin)[wasm.SectionIDExport]
	r := bytes.NewReader(body)
	count, _, err := leb128.DecodeUint32(r)
	require.NoError(t, err)
	require.Equal(t, uint32(2), count) // only pub functions export

	names := map[string]bool{}
	for i := uint32(0); i < count; i++ {
		nameLen, _, err := leb128.DecodeUint32(r)
		require.NoError(t, err)
		name := make([]byte, nameLen)
		_, err = r.Read(name)
		require.NoError(t, err)
		kind, err := r.ReadByte()
		require.NoError(t, err)
		require.Equal(t, wasm.ExportKindFunc, kind)
		_, _, err = leb128.DecodeUint32(r) // function index
		require.NoError(t, err)
		names[string(name)] = true
	}
	require.True(t, names["first"])
	require.True(t, names["second"])
	require.False(t, names["helper"])
}

func TestEmit_memoryAndFramePointer(t *testing.T) {
	bin := compile(t, `
struct Box { w: i32 }
pub fn test(): i32 { let b: Box = Box { w: 7_i32 }; b.w }
`)
	secs := sections(t, bin)

	require.Equal(t, []byte{0x01, 0x00, 0x01}, secs[wasm.SectionIDMemory]) // one memory, min 1 page

	global := secs[wasm.SectionIDGlobal]
	require.Equal(t, byte(0x01), global[0])          // one global
	require.Equal(t, wasm.ValueTypeI32, global[1])   // frame pointer is i32
	require.Equal(t, byte(0x01), global[2])          // mutable
	require.Equal(t, wasm.OpcodeI32Const, global[3]) // constant init
	v, _, err := leb128.DecodeInt32(bytes.NewReader(global[4:]))
	require.NoError(t, err)
	require.Equal(t, int32(65536), v) // stack base at the top of page one
}

func TestEmit_scalarFunctionsSkipTheFrame(t *testing.T) {
	bin := compile(t, "pub fn test(): i32 { 2_i32 + 3_i32 }")
	secs := sections(t, bin)

	// No aggregates: the body must not touch the frame pointer.
	code := secs[wasm.SectionIDCode]
	require.NotContains(t, code, wasm.OpcodeGlobalSet)
}

func TestEmit_structEqualityUnimplemented(t *testing.T) {
	require.Panics(t, func() {
		compile(t, `
struct Box { w: i32 }
pub fn test(): i32 { let a: Box = Box { w: 1_i32 }; let b: Box = Box { w: 1_i32 }; a == b }
`)
	})
}

func TestEmit_valueVariantUnimplemented(t *testing.T) {
	require.Panics(t, func() {
		compile(t, `
enum Maybe { Some(i32), None }
pub fn test(): i32 { let x: Maybe = Maybe::Some(1_i32); 1_i32 }
`)
	})
}
