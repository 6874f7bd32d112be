package wasm

// Opcode is a single-byte WebAssembly instruction opcode.
type Opcode = byte

const (
	// Control instructions.
	OpcodeUnreachable  Opcode = 0x00
	OpcodeNop          Opcode = 0x01
	OpcodeBlock        Opcode = 0x02
	OpcodeLoop         Opcode = 0x03
	OpcodeIf           Opcode = 0x04
	OpcodeElse         Opcode = 0x05
	OpcodeEnd          Opcode = 0x0b
	OpcodeBr           Opcode = 0x0c
	OpcodeBrIf         Opcode = 0x0d
	OpcodeBrTable      Opcode = 0x0e
	OpcodeReturn       Opcode = 0x0f
	OpcodeCall         Opcode = 0x10
	OpcodeCallIndirect Opcode = 0x11

	// Parametric instructions.
	OpcodeDrop   Opcode = 0x1a
	OpcodeSelect Opcode = 0x1b

	// Variable instructions.
	OpcodeLocalGet  Opcode = 0x20
	OpcodeLocalSet  Opcode = 0x21
	OpcodeLocalTee  Opcode = 0x22
	OpcodeGlobalGet Opcode = 0x23
	OpcodeGlobalSet Opcode = 0x24

	// Memory instructions.
	OpcodeI32Load    Opcode = 0x28
	OpcodeF64Load    Opcode = 0x2b
	OpcodeI32Store   Opcode = 0x36
	OpcodeF64Store   Opcode = 0x39
	OpcodeMemorySize Opcode = 0x3f
	OpcodeMemoryGrow Opcode = 0x40

	// Numeric instructions.
	OpcodeI32Const     Opcode = 0x41
	OpcodeF64Const     Opcode = 0x44
	OpcodeI32Eq        Opcode = 0x46
	OpcodeF64Eq        Opcode = 0x61
	OpcodeI32Add       Opcode = 0x6a
	OpcodeI32Sub       Opcode = 0x6b
	OpcodeI32Mul       Opcode = 0x6c
	OpcodeF64Add       Opcode = 0xa0
	OpcodeF64Sub       Opcode = 0xa1
	OpcodeF64Mul       Opcode = 0xa2
	OpcodeI32TruncF64S Opcode = 0xaa

	// OpcodeMiscPrefix prefixes the two-byte bulk-memory instructions,
	// e.g. memory.copy (0xfc 0x0a).
	OpcodeMiscPrefix Opcode = 0xfc
)

// miscMemoryCopy is the sub-opcode of memory.copy under OpcodeMiscPrefix.
const miscMemoryCopy byte = 0x0a
