package wasm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModuleBuilder_Compile(t *testing.T) {
	i32 := ValueTypeI32

	tests := []struct {
		name     string
		build    func(m *ModuleBuilder)
		expected []byte
	}{
		{
			name:     "empty",
			build:    func(m *ModuleBuilder) {},
			expected: append(append([]byte{}, magic...), version...),
		},
		{
			name: "one exported function",
			build: func(m *ModuleBuilder) {
				idx, fn := m.DeclareFunction([]ValueType{i32, i32}, []ValueType{i32})
				fn.LocalGet(0)
				fn.LocalGet(1)
				fn.I32Add()
				m.ExportFunction("add", idx)
			},
			expected: append(append(append([]byte{}, magic...), version...),
				SectionIDType, 0x07, // 7 bytes in this section
				0x01,                         // 1 type
				0x60, 0x02, i32, i32, 0x01, i32, // func=0x60 2 params and 1 result
				SectionIDFunction, 0x02, 0x01, 0x00, // 1 function of type[0]
				SectionIDExport, 0x07, // 7 bytes in this section
				0x01,                // 1 export
				0x03, 'a', 'd', 'd', // name
				ExportKindFunc, 0x00, // func[0]
				SectionIDCode, 0x09, // 9 bytes in this section
				0x01,       // 1 code entry
				0x07,       // 7 bytes in this entry
				0x00,       // no locals
				OpcodeLocalGet, 0x00,
				OpcodeLocalGet, 0x01,
				OpcodeI32Add,
				OpcodeEnd),
		},
		{
			name: "memory and mutable global",
			build: func(m *ModuleBuilder) {
				m.DefineMemory(1, 0)
				m.DeclareGlobal(i32, true, func(e *ExpressionContext) { e.I32Const(65536) })
			},
			expected: append(append(append([]byte{}, magic...), version...),
				SectionIDMemory, 0x03, 0x01, 0x00, 0x01, // 1 memory, min=1 page, no max
				SectionIDGlobal, 0x08, // 8 bytes in this section
				0x01,      // 1 global
				i32, 0x01, // mutable i32
				OpcodeI32Const, 0x80, 0x80, 0x04, // 65536
				OpcodeEnd),
		},
	}

	for _, tt := range tests {
		tc := tt

		t.Run(tc.name, func(t *testing.T) {
			m := NewModuleBuilder()
			tc.build(m)
			require.Equal(t, tc.expected, m.Compile())
		})
	}
}

func TestModuleBuilder_typeInterning(t *testing.T) {
	m := NewModuleBuilder()
	sig := []ValueType{ValueTypeI32, ValueTypeI32}

	first, _ := m.DeclareFunction(sig, []ValueType{ValueTypeI32})
	second, _ := m.DeclareFunction(sig, []ValueType{ValueTypeI32})
	third, _ := m.DeclareFunction(nil, []ValueType{ValueTypeF64})

	require.Equal(t, Index(0), first)
	require.Equal(t, Index(1), second)
	require.Equal(t, Index(2), third)
	require.Equal(t, 2, len(m.types)) // identical signatures share one type
	require.Equal(t, m.funcs[0].typeIndex, m.funcs[1].typeIndex)
	require.NotEqual(t, m.funcs[0].typeIndex, m.funcs[2].typeIndex)
}

func TestModuleBuilder_DefineMemory_twicePanics(t *testing.T) {
	m := NewModuleBuilder()
	require.Equal(t, Index(0), m.DefineMemory(1, 0))
	require.Panics(t, func() { m.DefineMemory(1, 0) })
}

func TestFunctionContext_DefineLocal(t *testing.T) {
	m := NewModuleBuilder()
	_, fn := m.DeclareFunction([]ValueType{ValueTypeI32, ValueTypeF64}, nil)

	require.Equal(t, Index(2), fn.DefineLocal(ValueTypeI32))
	require.Equal(t, Index(3), fn.DefineLocal(ValueTypeI32))
	require.Equal(t, Index(4), fn.DefineLocal(ValueTypeF64))
}

func TestEncodeCodeEntry_coalescesLocals(t *testing.T) {
	m := NewModuleBuilder()
	_, fn := m.DeclareFunction(nil, nil)
	fn.DefineLocal(ValueTypeI32)
	fn.DefineLocal(ValueTypeI32)
	fn.DefineLocal(ValueTypeF64)
	fn.DefineLocal(ValueTypeI32)

	require.Equal(t, []byte{
		0x03,                   // 3 local runs
		0x02, ValueTypeI32,
		0x01, ValueTypeF64,
		0x01, ValueTypeI32,
		OpcodeEnd,
	}, encodeCodeEntry(fn))
}
