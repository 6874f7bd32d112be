// Package ast defines the Mood syntax tree. Every node carries a dense
// integer NodeID assigned by the parser and the source span it was parsed
// from; the type and layout tables are keyed by NodeID.
package ast

import "github.com/moodlang/mood/diag"

// NodeID identifies a node within one compilation unit. IDs are dense:
// the parser assigns 0..n-1 with no gaps.
type NodeID int

// Node is implemented by every syntax node.
type Node interface {
	ID() NodeID
	Span() diag.Location
}

// Expr is the subset of nodes that produce a value when emitted.
type Expr interface {
	Node
	exprNode()
}

// Meta is embedded in every node and supplies ID and Span.
type Meta struct {
	NodeID NodeID
	Loc    diag.Location
}

func (m Meta) ID() NodeID          { return m.NodeID }
func (m Meta) Span() diag.Location { return m.Loc }

// Program is the root: a sequence of struct, enum and function
// declarations.
type Program struct {
	Meta
	Declarations []Node
}

// FunctionDeclaration is `pub? fn name(params): result { body }`.
type FunctionDeclaration struct {
	Meta
	Pub        bool
	Name       *Identifier
	Parameters []*Parameter
	ReturnType *Identifier
	Body       *BlockExpression
}

// Parameter is one `name: type` entry of a function header.
type Parameter struct {
	Meta
	Name *Identifier
	Type *Identifier
}

// StructField is one `name: type` entry of a struct declaration.
type StructField struct {
	Name *Identifier
	Type *Identifier
}

// StructDeclaration is `struct Name { fields }`. Field order is
// significant: it fixes both logical equality and physical byte offsets.
type StructDeclaration struct {
	Meta
	Name   *Identifier
	Fields []*StructField
}

// EnumVariant is one variant of an enum declaration; Payload is nil for a
// unit variant.
type EnumVariant struct {
	Name    *Identifier
	Payload *Identifier
}

// EnumDeclaration is `enum Name { variants }`.
type EnumDeclaration struct {
	Meta
	Name     *Identifier
	Variants []*EnumVariant
}

// Identifier is a bare name, also used for type annotations.
type Identifier struct {
	Meta
	Name string
}

// Literal is a numeric literal with its `_i32`/`_f64` suffix annotation,
// or `true`/`false` annotated as bool. Value holds the literal text,
// including the fractional part if present.
type Literal struct {
	Meta
	Value      string
	Annotation *Identifier
}

// BinaryExpression is `left op right` where op is +, * or ==.
type BinaryExpression struct {
	Meta
	Operator string
	Left     Expr
	Right    Expr
}

// CallExpression is `callee(args)`.
type CallExpression struct {
	Meta
	Callee *Identifier
	Args   []Expr
}

// ExpressionPath is `Enum::Variant` or `Enum::Variant(args)`. HasArgs
// distinguishes `Variant()` from a bare `Variant`.
type ExpressionPath struct {
	Meta
	Head    *Identifier
	Variant *Identifier
	HasArgs bool
	Args    []Expr
}

// BlockExpression is `{ e1; e2; ... }`; its value is the last
// expression's.
type BlockExpression struct {
	Meta
	Expressions []Expr
}

// VariableDeclaration is `let name: type = value`.
type VariableDeclaration struct {
	Meta
	Name  *Identifier
	Type  *Identifier
	Value Expr
}

// FieldInit is one `name: value` entry of a struct construction.
type FieldInit struct {
	Name  *Identifier
	Value Expr
}

// StructConstruction is `Name { field: value, ... }`.
type StructConstruction struct {
	Meta
	Name   *Identifier
	Fields []*FieldInit
}

// MemberExpression is `object.field`.
type MemberExpression struct {
	Meta
	Object Expr
	Field  *Identifier
}

func (*Identifier) exprNode()          {}
func (*Literal) exprNode()             {}
func (*BinaryExpression) exprNode()    {}
func (*CallExpression) exprNode()      {}
func (*ExpressionPath) exprNode()      {}
func (*BlockExpression) exprNode()     {}
func (*VariableDeclaration) exprNode() {}
func (*StructConstruction) exprNode()  {}
func (*MemberExpression) exprNode()    {}
