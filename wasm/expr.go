package wasm

import (
	"encoding/binary"
	"math"

	"github.com/moodlang/mood/wasm/leb128"
)

// ExpressionContext is an append-only instruction buffer. One method exists
// per supported instruction; each appends the opcode plus its LEB128 (or,
// for f64.const, IEEE-754) encoded immediates. The enclosing function (or
// global init expression) closes the buffer with the end byte when the
// module is compiled.
type ExpressionContext struct {
	buf []byte
}

func (e *ExpressionContext) emit(op Opcode) {
	e.buf = append(e.buf, op)
}

func (e *ExpressionContext) emitU32(op Opcode, v uint32) {
	e.buf = append(e.buf, op)
	e.buf = append(e.buf, leb128.EncodeUint32(v)...)
}

// Unreachable traps.
func (e *ExpressionContext) Unreachable() { e.emit(OpcodeUnreachable) }

// Nop does nothing.
func (e *ExpressionContext) Nop() { e.emit(OpcodeNop) }

// Block opens a block of the given type, lets body append its instructions,
// then closes it with end.
func (e *ExpressionContext) Block(bt BlockType, body func(*ExpressionContext)) {
	e.buf = append(e.buf, OpcodeBlock, byte(bt))
	body(e)
	e.emit(OpcodeEnd)
}

// Loop opens a loop block, lets body append its instructions, then closes
// it with end.
func (e *ExpressionContext) Loop(bt BlockType, body func(*ExpressionContext)) {
	e.buf = append(e.buf, OpcodeLoop, byte(bt))
	body(e)
	e.emit(OpcodeEnd)
}

// If opens an if block. A nil otherwise omits the else branch.
func (e *ExpressionContext) If(bt BlockType, then, otherwise func(*ExpressionContext)) {
	e.buf = append(e.buf, OpcodeIf, byte(bt))
	then(e)
	if otherwise != nil {
		e.emit(OpcodeElse)
		otherwise(e)
	}
	e.emit(OpcodeEnd)
}

// Br branches to the label depth levels out.
func (e *ExpressionContext) Br(depth uint32) { e.emitU32(OpcodeBr, depth) }

// BrIf conditionally branches to the label depth levels out.
func (e *ExpressionContext) BrIf(depth uint32) { e.emitU32(OpcodeBrIf, depth) }

// BrTable branches through a jump table, falling back to defaultDepth.
func (e *ExpressionContext) BrTable(depths []uint32, defaultDepth uint32) {
	e.emit(OpcodeBrTable)
	e.buf = append(e.buf, leb128.EncodeUint32(uint32(len(depths)))...)
	for _, d := range depths {
		e.buf = append(e.buf, leb128.EncodeUint32(d)...)
	}
	e.buf = append(e.buf, leb128.EncodeUint32(defaultDepth)...)
}

// Return returns from the enclosing function.
func (e *ExpressionContext) Return() { e.emit(OpcodeReturn) }

// Call calls the function at the given index.
func (e *ExpressionContext) Call(fn Index) { e.emitU32(OpcodeCall, fn) }

// CallIndirect calls through table zero with the given type index.
func (e *ExpressionContext) CallIndirect(typeIndex Index) {
	e.emitU32(OpcodeCallIndirect, typeIndex)
	e.buf = append(e.buf, 0x00) // table index
}

// Drop discards the top of the stack.
func (e *ExpressionContext) Drop() { e.emit(OpcodeDrop) }

// Select picks one of the two values below the condition.
func (e *ExpressionContext) Select() { e.emit(OpcodeSelect) }

// LocalGet pushes the local at the given index.
func (e *ExpressionContext) LocalGet(local Index) { e.emitU32(OpcodeLocalGet, local) }

// LocalSet pops into the local at the given index.
func (e *ExpressionContext) LocalSet(local Index) { e.emitU32(OpcodeLocalSet, local) }

// LocalTee stores the top of the stack into the local, leaving it pushed.
func (e *ExpressionContext) LocalTee(local Index) { e.emitU32(OpcodeLocalTee, local) }

// GlobalGet pushes the global at the given index.
func (e *ExpressionContext) GlobalGet(global Index) { e.emitU32(OpcodeGlobalGet, global) }

// GlobalSet pops into the global at the given index.
func (e *ExpressionContext) GlobalSet(global Index) { e.emitU32(OpcodeGlobalSet, global) }

func (e *ExpressionContext) emitMemArg(op Opcode, align, offset uint32) {
	e.buf = append(e.buf, op)
	e.buf = append(e.buf, leb128.EncodeUint32(align)...)
	e.buf = append(e.buf, leb128.EncodeUint32(offset)...)
}

// I32Load loads an i32 from memory at the popped address plus offset.
func (e *ExpressionContext) I32Load(align, offset uint32) { e.emitMemArg(OpcodeI32Load, align, offset) }

// F64Load loads an f64 from memory at the popped address plus offset.
func (e *ExpressionContext) F64Load(align, offset uint32) { e.emitMemArg(OpcodeF64Load, align, offset) }

// I32Store stores an i32 to memory at the address below it plus offset.
func (e *ExpressionContext) I32Store(align, offset uint32) {
	e.emitMemArg(OpcodeI32Store, align, offset)
}

// F64Store stores an f64 to memory at the address below it plus offset.
func (e *ExpressionContext) F64Store(align, offset uint32) {
	e.emitMemArg(OpcodeF64Store, align, offset)
}

// MemorySize pushes the current size of memory zero, in pages.
func (e *ExpressionContext) MemorySize() { e.buf = append(e.buf, OpcodeMemorySize, 0x00) }

// MemoryGrow grows memory zero by the popped number of pages.
func (e *ExpressionContext) MemoryGrow() { e.buf = append(e.buf, OpcodeMemoryGrow, 0x00) }

// MemoryCopy copies n bytes from src to dest within memory zero, consuming
// dest, src and n from the stack. This is the bulk-memory instruction
// 0xfc 0x0a followed by the two memory indices.
func (e *ExpressionContext) MemoryCopy() {
	e.buf = append(e.buf, OpcodeMiscPrefix, miscMemoryCopy, 0x00, 0x00)
}

// I32Const pushes a constant i32.
func (e *ExpressionContext) I32Const(v int32) {
	e.buf = append(e.buf, OpcodeI32Const)
	e.buf = append(e.buf, leb128.EncodeInt32(v)...)
}

// F64Const pushes a constant f64, encoded as a little-endian IEEE-754
// double.
func (e *ExpressionContext) F64Const(v float64) {
	e.buf = append(e.buf, OpcodeF64Const)
	e.buf = binary.LittleEndian.AppendUint64(e.buf, math.Float64bits(v))
}

// I32Eq pops two i32 and pushes 1 if equal, else 0.
func (e *ExpressionContext) I32Eq() { e.emit(OpcodeI32Eq) }

// F64Eq pops two f64 and pushes 1 if equal, else 0.
func (e *ExpressionContext) F64Eq() { e.emit(OpcodeF64Eq) }

// I32Add pops two i32 and pushes their sum.
func (e *ExpressionContext) I32Add() { e.emit(OpcodeI32Add) }

// I32Sub pops two i32 and pushes their difference.
func (e *ExpressionContext) I32Sub() { e.emit(OpcodeI32Sub) }

// I32Mul pops two i32 and pushes their product.
func (e *ExpressionContext) I32Mul() { e.emit(OpcodeI32Mul) }

// F64Add pops two f64 and pushes their sum.
func (e *ExpressionContext) F64Add() { e.emit(OpcodeF64Add) }

// F64Sub pops two f64 and pushes their difference.
func (e *ExpressionContext) F64Sub() { e.emit(OpcodeF64Sub) }

// F64Mul pops two f64 and pushes their product.
func (e *ExpressionContext) F64Mul() { e.emit(OpcodeF64Mul) }

// I32TruncF64S truncates the popped f64 toward zero into a signed i32.
func (e *ExpressionContext) I32TruncF64S() { e.emit(OpcodeI32TruncF64S) }

// Bytes returns the instructions appended so far, without a closing end
// byte.
func (e *ExpressionContext) Bytes() []byte { return e.buf }
