// Package emit lowers a type-checked Mood program onto the wasm
// ModuleBuilder. Aggregates live on a shadow stack in linear memory,
// addressed through a mutable frame-pointer global; everything else lives
// in Wasm locals.
package emit

import (
	"fmt"
	"strconv"

	"github.com/moodlang/mood/internal/ast"
	"github.com/moodlang/mood/internal/layout"
	"github.com/moodlang/mood/internal/types"
	"github.com/moodlang/mood/wasm"
)

// stackBase is the initial frame pointer: the top of the single 64KiB
// memory page. Frames grow downward from here.
const stackBase = 65536

const (
	alignI32 = 2
	alignF64 = 3
)

type function struct {
	index wasm.Index
	sig   *types.Function
	decl  *ast.FunctionDeclaration
}

type emitter struct {
	table     *types.TypeTable
	sizes     layout.StackSizes
	module    *wasm.ModuleBuilder
	fp        wasm.Index
	functions map[string]*function
}

// Emit drives the ModuleBuilder over the typed program and compiles the
// result. The type checker must have accepted the program: anything Emit
// cannot lower is an invariant failure, reported by panicking.
func Emit(program *ast.Program, table *types.TypeTable, sizes layout.StackSizes) []byte {
	e := &emitter{
		table:     table,
		sizes:     sizes,
		module:    wasm.NewModuleBuilder(),
		functions: map[string]*function{},
	}
	e.module.DefineMemory(1, 0)
	e.fp = e.module.DeclareGlobal(wasm.ValueTypeI32, true, func(x *wasm.ExpressionContext) {
		x.I32Const(stackBase)
	})

	// Declare every function first so calls can reference functions that
	// appear later in the file.
	type declared struct {
		fn      *function
		context *wasm.FunctionContext
	}
	var order []declared
	for _, decl := range program.Declarations {
		fn, ok := decl.(*ast.FunctionDeclaration)
		if !ok {
			continue
		}
		sig := table.Get(fn.ID()).(*types.Function)
		idx, fc := e.module.DeclareFunction(loweredParams(sig), []wasm.ValueType{valueTypeOf(sig.Result)})
		d := &function{index: idx, sig: sig, decl: fn}
		e.functions[fn.Name.Name] = d
		order = append(order, declared{fn: d, context: fc})
		if fn.Pub {
			e.module.ExportFunction(fn.Name.Name, idx)
		}
	}

	for _, d := range order {
		e.emitFunction(d.fn, d.context)
	}
	return e.module.Compile()
}

// loweredParams is the Wasm-level parameter list: a function returning a
// struct by value takes a leading i32 carrying the caller-provided
// destination address.
func loweredParams(sig *types.Function) []wasm.ValueType {
	var params []wasm.ValueType
	if returnsStruct(sig) {
		params = append(params, wasm.ValueTypeI32)
	}
	for _, p := range sig.Params {
		params = append(params, valueTypeOf(p))
	}
	return params
}

func returnsStruct(sig *types.Function) bool {
	_, ok := sig.Result.(*types.Struct)
	return ok
}

// valueTypeOf maps a Mood type to its Wasm value slot: f64 stays f64,
// structs are i32 addresses, enums are i32 tags, i32 and bool are i32.
// Any other type has no value slot and panics.
func valueTypeOf(t types.Type) wasm.ValueType {
	switch t.(type) {
	case *types.F64:
		return wasm.ValueTypeF64
	case *types.I32, *types.Bool, *types.Struct, *types.Enum:
		return wasm.ValueTypeI32
	default:
		panic(fmt.Sprintf("emit: %s has no value representation", t))
	}
}

// funcEmitter holds the per-function state: the local name map, the frame
// size fixed by the layout pass, and the bump offset of the next aggregate
// slot within the frame.
type funcEmitter struct {
	*emitter
	fn          *wasm.FunctionContext
	sig         *types.Function
	locals      map[string]wasm.Index
	frameSize   uint32
	stackOffset uint32
}

func (e *emitter) emitFunction(d *function, fc *wasm.FunctionContext) {
	decl, sig := d.decl, d.sig
	f := &funcEmitter{
		emitter:   e,
		fn:        fc,
		sig:       sig,
		locals:    map[string]wasm.Index{},
		frameSize: e.sizes[decl.ID()],
	}

	paramBase := wasm.Index(0)
	if returnsStruct(sig) {
		paramBase = 1 // local 0 is the destination address
	}
	for i, param := range decl.Parameters {
		f.locals[param.Name.Name] = paramBase + wasm.Index(i)
	}

	// Prologue: claim this function's exact frame.
	if f.frameSize > 0 {
		fc.GlobalGet(e.fp)
		fc.I32Const(int32(f.frameSize))
		fc.I32Sub()
		fc.GlobalSet(e.fp)
	}

	f.emitExpr(decl.Body)

	// Epilogue: spill the return value, release the frame, reload. A
	// by-value struct result is first copied into the caller's slot and
	// returned as that address.
	if returnsStruct(sig) {
		src := fc.DefineLocal(wasm.ValueTypeI32)
		fc.LocalSet(src)
		fc.LocalGet(0)
		fc.LocalGet(src)
		fc.I32Const(int32(types.SizeOf(sig.Result)))
		fc.MemoryCopy()
		f.releaseFrame()
		fc.LocalGet(0)
	} else if f.frameSize > 0 {
		spill := fc.DefineLocal(valueTypeOf(sig.Result))
		fc.LocalSet(spill)
		f.releaseFrame()
		fc.LocalGet(spill)
	}
}

func (f *funcEmitter) releaseFrame() {
	if f.frameSize == 0 {
		return
	}
	f.fn.GlobalGet(f.fp)
	f.fn.I32Const(int32(f.frameSize))
	f.fn.I32Add()
	f.fn.GlobalSet(f.fp)
}

// allocate reserves size bytes in the frame and returns the slot's offset
// from the frame pointer. The layout pass sized the frame to cover every
// allocation, so running out is a planner bug.
func (f *funcEmitter) allocate(size uint32) uint32 {
	offset := f.stackOffset
	f.stackOffset += size
	if f.stackOffset > f.frameSize {
		panic(fmt.Sprintf("emit: frame overflow: %d bytes allocated of %d planned", f.stackOffset, f.frameSize))
	}
	return offset
}

// pushFrameAddress pushes FP + offset.
func (f *funcEmitter) pushFrameAddress(offset uint32) {
	f.fn.GlobalGet(f.fp)
	f.fn.I32Const(int32(offset))
	f.fn.I32Add()
}

func (f *funcEmitter) emitExpr(e ast.Expr) {
	switch e := e.(type) {
	case *ast.BlockExpression:
		last := len(e.Expressions) - 1
		for i, child := range e.Expressions {
			f.emitExpr(child)
			if i < last && f.table.Get(child.ID()) != types.TypeEmpty {
				f.fn.Drop()
			}
		}
	case *ast.Literal:
		f.emitLiteral(e)
	case *ast.Identifier:
		idx, ok := f.locals[e.Name]
		if !ok {
			panic(fmt.Sprintf("emit: %q is not a local", e.Name))
		}
		f.fn.LocalGet(idx)
	case *ast.BinaryExpression:
		f.emitBinary(e)
	case *ast.VariableDeclaration:
		idx := f.fn.DefineLocal(valueTypeOf(f.table.Get(e.ID())))
		f.locals[e.Name.Name] = idx
		f.emitExpr(e.Value)
		f.fn.LocalTee(idx)
	case *ast.CallExpression:
		f.emitCall(e)
	case *ast.StructConstruction:
		f.emitStructConstruction(e)
	case *ast.MemberExpression:
		f.emitMember(e)
	case *ast.ExpressionPath:
		f.emitExpressionPath(e)
	default:
		panic(fmt.Sprintf("emit: unexpected expression %T", e))
	}
}

func (f *funcEmitter) emitLiteral(e *ast.Literal) {
	switch f.table.Get(e.ID()) {
	case types.TypeI32:
		v, err := strconv.ParseInt(e.Value, 10, 32)
		if err != nil {
			panic(fmt.Sprintf("emit: i32 literal %q: %v", e.Value, err))
		}
		f.fn.I32Const(int32(v))
	case types.TypeF64:
		v, err := strconv.ParseFloat(e.Value, 64)
		if err != nil {
			panic(fmt.Sprintf("emit: f64 literal %q: %v", e.Value, err))
		}
		f.fn.F64Const(v)
	case types.TypeBool:
		if e.Value == "true" {
			f.fn.I32Const(1)
		} else {
			f.fn.I32Const(0)
		}
	default:
		panic(fmt.Sprintf("emit: literal %q has no constant form", e.Value))
	}
}

func (f *funcEmitter) emitBinary(e *ast.BinaryExpression) {
	f.emitExpr(e.Left)
	f.emitExpr(e.Right)

	operand := f.table.Get(e.Left.ID())
	switch e.Operator {
	case "+":
		if operand == types.TypeF64 {
			f.fn.F64Add()
		} else {
			f.fn.I32Add()
		}
	case "*":
		if operand == types.TypeF64 {
			f.fn.F64Mul()
		} else {
			f.fn.I32Mul()
		}
	case "==":
		switch operand.(type) {
		case *types.F64:
			f.fn.F64Eq()
		case *types.Struct:
			panic("emit: struct equality is not implemented")
		default:
			// i32, bool and enum tags all compare as i32.
			f.fn.I32Eq()
		}
	default:
		panic(fmt.Sprintf("emit: unexpected operator %q", e.Operator))
	}
}

func (f *funcEmitter) emitCall(e *ast.CallExpression) {
	callee, ok := f.functions[e.Callee.Name]
	if !ok {
		panic(fmt.Sprintf("emit: call to unknown function %q", e.Callee.Name))
	}

	// A struct result needs a slot in this frame; its address rides as
	// the implicit first argument.
	var slot uint32
	var size uint32
	structResult := returnsStruct(callee.sig)
	if structResult {
		size = types.SizeOf(callee.sig.Result)
		slot = f.allocate(size)
		f.pushFrameAddress(slot)
	}
	for _, arg := range e.Args {
		f.emitExpr(arg)
	}
	f.fn.Call(callee.index)

	if structResult {
		// Copy the returned bytes into this call site's own slot, so
		// results of separate calls stay distinct.
		src := f.fn.DefineLocal(wasm.ValueTypeI32)
		f.fn.LocalSet(src)
		f.pushFrameAddress(slot)
		f.fn.LocalGet(src)
		f.fn.I32Const(int32(size))
		f.fn.MemoryCopy()
		f.pushFrameAddress(slot)
	}
}

func (f *funcEmitter) emitStructConstruction(e *ast.StructConstruction) {
	st := f.table.Get(e.ID()).(*types.Struct)
	base := f.allocate(st.Size)

	values := map[string]ast.Expr{}
	for _, init := range e.Fields {
		values[init.Name.Name] = init.Value
	}

	// Fields are written in declaration order, which is also layout
	// order.
	for _, field := range st.Fields {
		value := values[field.Name]
		switch field.Type.(type) {
		case *types.F64:
			f.pushFrameAddress(base)
			f.emitExpr(value)
			f.fn.F64Store(alignF64, field.Offset)
		case *types.Struct:
			f.pushFrameAddress(base + field.Offset)
			f.emitExpr(value)
			f.fn.I32Const(int32(types.SizeOf(field.Type)))
			f.fn.MemoryCopy()
		default:
			// i32, bool and enum tags store as i32.
			f.pushFrameAddress(base)
			f.emitExpr(value)
			f.fn.I32Store(alignI32, field.Offset)
		}
	}
	f.pushFrameAddress(base)
}

func (f *funcEmitter) emitMember(e *ast.MemberExpression) {
	f.emitExpr(e.Object)

	st := f.table.Get(e.Object.ID()).(*types.Struct)
	field, ok := st.Field(e.Field.Name)
	if !ok {
		panic(fmt.Sprintf("emit: struct %q has no field %q", st.Name, e.Field.Name))
	}
	switch field.Type.(type) {
	case *types.F64:
		f.fn.F64Load(alignF64, field.Offset)
	case *types.Struct:
		f.fn.I32Const(int32(field.Offset))
		f.fn.I32Add()
	default:
		f.fn.I32Load(alignI32, field.Offset)
	}
}

func (f *funcEmitter) emitExpressionPath(e *ast.ExpressionPath) {
	enum := f.table.Get(e.ID()).(*types.Enum)
	variant, index, ok := enum.Variant(e.Variant.Name)
	if !ok {
		panic(fmt.Sprintf("emit: enum %q has no variant %q", enum.Name, e.Variant.Name))
	}
	if variant.Payload != nil {
		panic("emit: value-bearing enum variants are not implemented")
	}
	f.fn.I32Const(int32(index))
}
