// Package wasm builds WebAssembly binary modules. A ModuleBuilder collects
// function types, functions, globals, memories and exports, then Compile
// writes them out in the canonical section order of the WebAssembly 1.0
// binary format (plus the bulk-memory memory.copy instruction).
package wasm

// Index is an offset into one of a module's index spaces: function types,
// functions, globals or memories.
type Index = uint32

// ValueType is a WebAssembly value type, encoded as in the binary format.
type ValueType = byte

const (
	ValueTypeI32 ValueType = 0x7f
	ValueTypeI64 ValueType = 0x7e
	ValueTypeF32 ValueType = 0x7d
	ValueTypeF64 ValueType = 0x7c
)

// BlockType encodes the result shape of a block, loop or if: either empty
// or a single value type. Function-type indices are not supported.
type BlockType byte

const BlockTypeEmpty BlockType = 0x40

const (
	BlockTypeI32 = BlockType(ValueTypeI32)
	BlockTypeI64 = BlockType(ValueTypeI64)
	BlockTypeF32 = BlockType(ValueTypeF32)
	BlockTypeF64 = BlockType(ValueTypeF64)
)

// SectionID identifies a module section. Sections are emitted in ascending
// ID order; absent sections are simply not written.
type SectionID = byte

const (
	SectionIDCustom   SectionID = 0
	SectionIDType     SectionID = 1
	SectionIDImport   SectionID = 2
	SectionIDFunction SectionID = 3
	SectionIDTable    SectionID = 4
	SectionIDMemory   SectionID = 5
	SectionIDGlobal   SectionID = 6
	SectionIDExport   SectionID = 7
	SectionIDStart    SectionID = 8
	SectionIDElement  SectionID = 9
	SectionIDCode     SectionID = 10
	SectionIDData     SectionID = 11
)

// ExportKind is the kind byte of an export record.
type ExportKind = byte

const (
	ExportKindFunc   ExportKind = 0x00
	ExportKindTable  ExportKind = 0x01
	ExportKindMemory ExportKind = 0x02
	ExportKindGlobal ExportKind = 0x03
)

// FunctionType is a function signature. The type section deduplicates by
// structural equality over Params and Results.
type FunctionType struct {
	Params  []ValueType
	Results []ValueType
}

// key is the interning key for structural equality.
func (t *FunctionType) key() string {
	return string(t.Params) + "|" + string(t.Results)
}

// Export is one record of the export section.
type Export struct {
	Name  string
	Kind  ExportKind
	Index Index
}

// Global is a module global: a value type, mutability and a constant init
// expression.
type Global struct {
	Type    ValueType
	Mutable bool
	init    []byte
}

// Memory holds the limits of the module's linear memory, in 64KiB pages.
// Max is ignored when HasMax is false.
type Memory struct {
	Min    uint32
	Max    uint32
	HasMax bool
}
