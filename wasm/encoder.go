package wasm

import "github.com/moodlang/mood/wasm/leb128"

var (
	magic   = []byte{0x00, 0x61, 0x73, 0x6d}
	version = []byte{0x01, 0x00, 0x00, 0x00}
)

// Compile writes the module out as WebAssembly binary bytes. Sections
// appear in canonical order; a section with no entries is not emitted.
// The builder must not be mutated afterwards.
func (m *ModuleBuilder) Compile() []byte {
	out := append([]byte{}, magic...)
	out = append(out, version...)
	if len(m.types) > 0 {
		out = appendSection(out, SectionIDType, m.encodeTypeSection())
	}
	if len(m.funcs) > 0 {
		out = appendSection(out, SectionIDFunction, m.encodeFunctionSection())
	}
	if m.memory != nil {
		out = appendSection(out, SectionIDMemory, m.encodeMemorySection())
	}
	if len(m.globals) > 0 {
		out = appendSection(out, SectionIDGlobal, m.encodeGlobalSection())
	}
	if len(m.exports) > 0 {
		out = appendSection(out, SectionIDExport, m.encodeExportSection())
	}
	if len(m.funcs) > 0 {
		out = appendSection(out, SectionIDCode, m.encodeCodeSection())
	}
	return out
}

// appendSection writes a section id, the LEB128 byte length of the body,
// then the body.
func appendSection(out []byte, id SectionID, body []byte) []byte {
	out = append(out, id)
	out = append(out, leb128.EncodeUint32(uint32(len(body)))...)
	return append(out, body...)
}

func (m *ModuleBuilder) encodeTypeSection() []byte {
	buf := leb128.EncodeUint32(uint32(len(m.types)))
	for _, t := range m.types {
		buf = append(buf, 0x60) // functype
		buf = append(buf, leb128.EncodeUint32(uint32(len(t.Params)))...)
		buf = append(buf, t.Params...)
		buf = append(buf, leb128.EncodeUint32(uint32(len(t.Results)))...)
		buf = append(buf, t.Results...)
	}
	return buf
}

func (m *ModuleBuilder) encodeFunctionSection() []byte {
	buf := leb128.EncodeUint32(uint32(len(m.funcs)))
	for _, f := range m.funcs {
		buf = append(buf, leb128.EncodeUint32(f.typeIndex)...)
	}
	return buf
}

func (m *ModuleBuilder) encodeMemorySection() []byte {
	buf := leb128.EncodeUint32(1)
	if m.memory.HasMax {
		buf = append(buf, 0x01)
		buf = append(buf, leb128.EncodeUint32(m.memory.Min)...)
		buf = append(buf, leb128.EncodeUint32(m.memory.Max)...)
	} else {
		buf = append(buf, 0x00)
		buf = append(buf, leb128.EncodeUint32(m.memory.Min)...)
	}
	return buf
}

func (m *ModuleBuilder) encodeGlobalSection() []byte {
	buf := leb128.EncodeUint32(uint32(len(m.globals)))
	for _, g := range m.globals {
		buf = append(buf, g.Type)
		if g.Mutable {
			buf = append(buf, 0x01)
		} else {
			buf = append(buf, 0x00)
		}
		buf = append(buf, g.init...)
		buf = append(buf, OpcodeEnd)
	}
	return buf
}

func (m *ModuleBuilder) encodeExportSection() []byte {
	buf := leb128.EncodeUint32(uint32(len(m.exports)))
	for _, e := range m.exports {
		buf = append(buf, leb128.EncodeUint32(uint32(len(e.Name)))...)
		buf = append(buf, e.Name...)
		buf = append(buf, e.Kind)
		buf = append(buf, leb128.EncodeUint32(e.Index)...)
	}
	return buf
}

func (m *ModuleBuilder) encodeCodeSection() []byte {
	buf := leb128.EncodeUint32(uint32(len(m.funcs)))
	for _, f := range m.funcs {
		body := encodeCodeEntry(f)
		buf = append(buf, leb128.EncodeUint32(uint32(len(body)))...)
		buf = append(buf, body...)
	}
	return buf
}

// encodeCodeEntry writes one code-section entry: local declarations with
// runs of identical types coalesced into (count, type) records, the
// instruction bytes, then end.
func encodeCodeEntry(f *FunctionContext) []byte {
	type localRun struct {
		count uint32
		typ   ValueType
	}
	var runs []localRun
	for _, t := range f.locals {
		if n := len(runs); n > 0 && runs[n-1].typ == t {
			runs[n-1].count++
		} else {
			runs = append(runs, localRun{count: 1, typ: t})
		}
	}

	buf := leb128.EncodeUint32(uint32(len(runs)))
	for _, r := range runs {
		buf = append(buf, leb128.EncodeUint32(r.count)...)
		buf = append(buf, r.typ)
	}
	buf = append(buf, f.buf...)
	return append(buf, OpcodeEnd)
}
