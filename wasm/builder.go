package wasm

import "fmt"

// FunctionContext is the body of one declared function: its instruction
// buffer plus the list of locals defined beyond the parameters. It is
// frozen when the enclosing ModuleBuilder compiles.
type FunctionContext struct {
	ExpressionContext

	typeIndex  Index
	paramCount uint32
	locals     []ValueType
}

// DefineLocal appends a local of the given type and returns its absolute
// index, i.e. the parameter count plus the number of locals defined so far.
func (f *FunctionContext) DefineLocal(t ValueType) Index {
	idx := f.paramCount + uint32(len(f.locals))
	f.locals = append(f.locals, t)
	return idx
}

// ModuleBuilder accumulates the declarations of one module. It is
// constructed empty, mutated by the Declare/Export/Define calls, then
// finalised exactly once by Compile.
type ModuleBuilder struct {
	types       []*FunctionType
	typeIndexes map[string]Index
	funcs       []*FunctionContext
	globals     []*Global
	memory      *Memory
	exports     []*Export
}

// NewModuleBuilder returns an empty builder.
func NewModuleBuilder() *ModuleBuilder {
	return &ModuleBuilder{typeIndexes: map[string]Index{}}
}

// typeIndex interns a function type, returning the index of the existing
// entry when one with the same parameter and result sequences was already
// declared.
func (m *ModuleBuilder) typeIndex(t *FunctionType) Index {
	key := t.key()
	if idx, ok := m.typeIndexes[key]; ok {
		return idx
	}
	idx := Index(len(m.types))
	m.types = append(m.types, t)
	m.typeIndexes[key] = idx
	return idx
}

// DeclareFunction adds a function with the given signature and returns its
// index along with the context its body is written into.
func (m *ModuleBuilder) DeclareFunction(params, results []ValueType) (Index, *FunctionContext) {
	fc := &FunctionContext{
		typeIndex:  m.typeIndex(&FunctionType{Params: params, Results: results}),
		paramCount: uint32(len(params)),
	}
	idx := Index(len(m.funcs))
	m.funcs = append(m.funcs, fc)
	return idx, fc
}

// ExportFunction appends an export record for the given function index.
func (m *ModuleBuilder) ExportFunction(name string, fn Index) {
	m.exports = append(m.exports, &Export{Name: name, Kind: ExportKindFunc, Index: fn})
}

// DeclareGlobal adds a global whose constant init expression is produced by
// init; the callback must append exactly one constant instruction.
func (m *ModuleBuilder) DeclareGlobal(t ValueType, mutable bool, init func(*ExpressionContext)) Index {
	var e ExpressionContext
	init(&e)
	idx := Index(len(m.globals))
	m.globals = append(m.globals, &Global{Type: t, Mutable: mutable, init: e.buf})
	return idx
}

// DefineMemory defines the module's linear memory with the given limits,
// in pages. max == 0 means no maximum. Wasm core allows one memory, so a
// second definition is a programmer error.
func (m *ModuleBuilder) DefineMemory(min, max uint32) Index {
	if m.memory != nil {
		panic(fmt.Sprintf("wasm: memory already defined with min=%d pages", m.memory.Min))
	}
	m.memory = &Memory{Min: min, Max: max, HasMax: max != 0}
	return 0
}
