package wasm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExpressionContext_instructions(t *testing.T) {
	tests := []struct {
		name     string
		emit     func(e *ExpressionContext)
		expected []byte
	}{
		{
			name:     "i32.const zero",
			emit:     func(e *ExpressionContext) { e.I32Const(0) },
			expected: []byte{OpcodeI32Const, 0x00},
		},
		{
			name:     "i32.const negative",
			emit:     func(e *ExpressionContext) { e.I32Const(-1) },
			expected: []byte{OpcodeI32Const, 0x7f},
		},
		{
			name:     "i32.const multi byte",
			emit:     func(e *ExpressionContext) { e.I32Const(624485) },
			expected: []byte{OpcodeI32Const, 0xe5, 0x8e, 0x26},
		},
		{
			name:     "f64.const",
			emit:     func(e *ExpressionContext) { e.F64Const(1.0) },
			expected: []byte{OpcodeF64Const, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xf0, 0x3f},
		},
		{
			name:     "local.get",
			emit:     func(e *ExpressionContext) { e.LocalGet(3) },
			expected: []byte{OpcodeLocalGet, 0x03},
		},
		{
			name:     "global.set",
			emit:     func(e *ExpressionContext) { e.GlobalSet(0) },
			expected: []byte{OpcodeGlobalSet, 0x00},
		},
		{
			name:     "i32.load with align and offset",
			emit:     func(e *ExpressionContext) { e.I32Load(2, 8) },
			expected: []byte{OpcodeI32Load, 0x02, 0x08},
		},
		{
			name:     "i32.store",
			emit:     func(e *ExpressionContext) { e.I32Store(2, 4) },
			expected: []byte{OpcodeI32Store, 0x02, 0x04},
		},
		{
			name:     "f64.store",
			emit:     func(e *ExpressionContext) { e.F64Store(3, 16) },
			expected: []byte{OpcodeF64Store, 0x03, 0x10},
		},
		{
			name:     "memory.size",
			emit:     func(e *ExpressionContext) { e.MemorySize() },
			expected: []byte{OpcodeMemorySize, 0x00},
		},
		{
			name:     "memory.copy",
			emit:     func(e *ExpressionContext) { e.MemoryCopy() },
			expected: []byte{OpcodeMiscPrefix, 0x0a, 0x00, 0x00},
		},
		{
			name:     "call",
			emit:     func(e *ExpressionContext) { e.Call(130) },
			expected: []byte{OpcodeCall, 0x82, 0x01},
		},
		{
			name:     "call_indirect",
			emit:     func(e *ExpressionContext) { e.CallIndirect(2) },
			expected: []byte{OpcodeCallIndirect, 0x02, 0x00},
		},
		{
			name:     "br_table",
			emit:     func(e *ExpressionContext) { e.BrTable([]uint32{1, 2}, 0) },
			expected: []byte{OpcodeBrTable, 0x02, 0x01, 0x02, 0x00},
		},
		{
			name: "empty block",
			emit: func(e *ExpressionContext) {
				e.Block(BlockTypeEmpty, func(e *ExpressionContext) { e.Nop() })
			},
			expected: []byte{OpcodeBlock, 0x40, OpcodeNop, OpcodeEnd},
		},
		{
			name: "loop with result type",
			emit: func(e *ExpressionContext) {
				e.Loop(BlockTypeI32, func(e *ExpressionContext) { e.I32Const(1) })
			},
			expected: []byte{OpcodeLoop, byte(ValueTypeI32), OpcodeI32Const, 0x01, OpcodeEnd},
		},
		{
			name: "if without else",
			emit: func(e *ExpressionContext) {
				e.If(BlockTypeEmpty, func(e *ExpressionContext) { e.Drop() }, nil)
			},
			expected: []byte{OpcodeIf, 0x40, OpcodeDrop, OpcodeEnd},
		},
		{
			name: "if with else",
			emit: func(e *ExpressionContext) {
				e.If(BlockTypeI32,
					func(e *ExpressionContext) { e.I32Const(1) },
					func(e *ExpressionContext) { e.I32Const(0) })
			},
			expected: []byte{
				OpcodeIf, byte(ValueTypeI32),
				OpcodeI32Const, 0x01,
				OpcodeElse,
				OpcodeI32Const, 0x00,
				OpcodeEnd,
			},
		},
		{
			name: "arithmetic and comparisons",
			emit: func(e *ExpressionContext) {
				e.I32Add()
				e.I32Sub()
				e.I32Mul()
				e.I32Eq()
				e.F64Add()
				e.F64Sub()
				e.F64Mul()
				e.F64Eq()
				e.I32TruncF64S()
			},
			expected: []byte{0x6a, 0x6b, 0x6c, 0x46, 0xa0, 0xa1, 0xa2, 0x61, 0xaa},
		},
		{
			name: "control",
			emit: func(e *ExpressionContext) {
				e.Unreachable()
				e.Br(0)
				e.BrIf(1)
				e.Return()
				e.Select()
				e.MemoryGrow()
			},
			expected: []byte{0x00, 0x0c, 0x00, 0x0d, 0x01, 0x0f, 0x1b, 0x40, 0x00},
		},
	}

	for _, tt := range tests {
		tc := tt

		t.Run(tc.name, func(t *testing.T) {
			var e ExpressionContext
			tc.emit(&e)
			require.Equal(t, tc.expected, e.Bytes())
		})
	}
}
