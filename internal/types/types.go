// Package types defines the Mood type system: the symbol-type sum, the
// scoped symbol table, the node-id-keyed type table and the type checker.
package types

import (
	"fmt"
	"strings"
)

// Type is the closed sum of symbol types. All primitive variants are
// singletons, so two types are the same exactly when they are ==.
type Type interface {
	String() string
	typeNode()
}

type (
	// I32 is the 32-bit signed integer type.
	I32 struct{}
	// F64 is the 64-bit float type.
	F64 struct{}
	// Bool is the boolean type, lowered to i32.
	Bool struct{}
	// Nil is the type of an absent value.
	Nil struct{}
	// Empty is the type of an expressionless block and of Program.
	Empty struct{}
)

// Function is the type of a callable symbol.
type Function struct {
	Params []Type
	Result Type
}

// Field is one struct field with its resolved type and byte offset from
// the struct base.
type Field struct {
	Name   string
	Type   Type
	Offset uint32
}

// Struct is a declared struct type. Fields are in declaration order, which
// fixes both equality and layout. Size is the sum of the field sizes.
type Struct struct {
	Name   string
	Fields []*Field
	Size   uint32
}

// Variant is one enum variant; Payload is nil for a unit variant.
type Variant struct {
	Name    string
	Payload Type
}

// Enum is a declared enum type. Size is the largest variant payload plus
// four bytes of tag.
type Enum struct {
	Name     string
	Variants []*Variant
	Size     uint32
}

// Singleton instances of the primitive types.
var (
	TypeI32   = &I32{}
	TypeF64   = &F64{}
	TypeBool  = &Bool{}
	TypeNil   = &Nil{}
	TypeEmpty = &Empty{}
)

func (*I32) typeNode()      {}
func (*F64) typeNode()      {}
func (*Bool) typeNode()     {}
func (*Nil) typeNode()      {}
func (*Empty) typeNode()    {}
func (*Function) typeNode() {}
func (*Struct) typeNode()   {}
func (*Enum) typeNode()     {}

func (*I32) String() string   { return "i32" }
func (*F64) String() string   { return "f64" }
func (*Bool) String() string  { return "bool" }
func (*Nil) String() string   { return "nil" }
func (*Empty) String() string { return "()" }

func (t *Function) String() string {
	params := make([]string, len(t.Params))
	for i, p := range t.Params {
		params[i] = p.String()
	}
	return fmt.Sprintf("fn(%s): %s", strings.Join(params, ", "), t.Result)
}

func (t *Struct) String() string { return t.Name }

func (t *Enum) String() string { return t.Name }

// Field returns the declared field with the given name.
func (t *Struct) Field(name string) (*Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// Variant returns the variant with the given name and its declaration
// index.
func (t *Enum) Variant(name string) (*Variant, int, bool) {
	for i, v := range t.Variants {
		if v.Name == name {
			return v, i, true
		}
	}
	return nil, 0, false
}

// IsNumeric reports whether t supports + and *.
func IsNumeric(t Type) bool { return t == TypeI32 || t == TypeF64 }

// IsEqualityComparable reports whether t supports ==.
func IsEqualityComparable(t Type) bool {
	switch t.(type) {
	case *I32, *F64, *Bool, *Struct, *Enum:
		return true
	default:
		return false
	}
}

// IsAggregate reports whether values of t live in linear memory rather
// than a Wasm value slot.
func IsAggregate(t Type) bool {
	switch t.(type) {
	case *Struct, *Enum:
		return true
	default:
		return false
	}
}

// SizeOf is the byte size of a representable type: bool and i32 take four
// bytes, f64 eight, aggregates their computed size. Function, nil and
// empty have no runtime representation; asking for their size is a bug.
func SizeOf(t Type) uint32 {
	switch t := t.(type) {
	case *Bool, *I32:
		return 4
	case *F64:
		return 8
	case *Struct:
		return t.Size
	case *Enum:
		return t.Size
	default:
		panic(fmt.Sprintf("types: %s has no byte size", t))
	}
}
