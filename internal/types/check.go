package types

import (
	"fmt"
	"strings"

	"github.com/moodlang/mood/diag"
	"github.com/moodlang/mood/internal/ast"
)

// Check type-checks a program, returning the populated type table. Top
// level function signatures are declared before any body is checked, so
// functions may call forward (and themselves); struct and enum
// declarations stay order-dependent. The first error aborts the check.
func Check(program *ast.Program, numNodes int) (*TypeTable, *diag.Diagnostic) {
	c := &checker{
		table:      NewTypeTable(numNodes),
		scope:      NewScope(builtinScope()),
		signatures: map[*ast.FunctionDeclaration]*Function{},
	}

	// First pass: declarations in source order. Function bodies wait for
	// the second pass.
	for _, decl := range program.Declarations {
		var err *diag.Diagnostic
		switch decl := decl.(type) {
		case *ast.StructDeclaration:
			err = c.declareStruct(decl)
		case *ast.EnumDeclaration:
			err = c.declareEnum(decl)
		case *ast.FunctionDeclaration:
			err = c.declareFunction(decl)
		}
		if err != nil {
			return nil, err
		}
	}

	for _, decl := range program.Declarations {
		fn, ok := decl.(*ast.FunctionDeclaration)
		if !ok {
			continue
		}
		if err := c.checkFunctionBody(fn); err != nil {
			return nil, err
		}
	}

	c.table.Define(program.ID(), TypeEmpty)
	return c.table, nil
}

type checker struct {
	table      *TypeTable
	scope      *Scope
	signatures map[*ast.FunctionDeclaration]*Function
}

// resolveValueType resolves a type annotation to a type that can carry a
// runtime value.
func (c *checker) resolveValueType(annotation *ast.Identifier) (Type, *diag.Diagnostic) {
	t, ok := c.scope.Lookup(annotation.Name)
	if !ok {
		return nil, diag.Errorf(annotation.Span(), "not found in this scope",
			fmt.Sprintf("Undefined type %q", annotation.Name))
	}
	switch t.(type) {
	case *I32, *F64, *Bool, *Struct, *Enum:
		return t, nil
	default:
		return nil, diag.Errorf(annotation.Span(), "not usable as a value type",
			fmt.Sprintf("Type %s cannot carry a value", t))
	}
}

func (c *checker) declareStruct(decl *ast.StructDeclaration) *diag.Diagnostic {
	st := &Struct{Name: decl.Name.Name}
	var offset uint32
	for _, field := range decl.Fields {
		fieldType, err := c.resolveValueType(field.Type)
		if err != nil {
			return err
		}
		st.Fields = append(st.Fields, &Field{Name: field.Name.Name, Type: fieldType, Offset: offset})
		offset += SizeOf(fieldType)
	}
	st.Size = offset
	c.scope.Define(st.Name, st)
	c.table.Define(decl.ID(), TypeEmpty)
	return nil
}

func (c *checker) declareEnum(decl *ast.EnumDeclaration) *diag.Diagnostic {
	en := &Enum{Name: decl.Name.Name}
	var largest uint32
	for _, variant := range decl.Variants {
		v := &Variant{Name: variant.Name.Name}
		if variant.Payload != nil {
			payload, err := c.resolveValueType(variant.Payload)
			if err != nil {
				return err
			}
			v.Payload = payload
			if size := SizeOf(payload); size > largest {
				largest = size
			}
		}
		en.Variants = append(en.Variants, v)
	}
	en.Size = largest + 4 // tag
	c.scope.Define(en.Name, en)
	c.table.Define(decl.ID(), TypeEmpty)
	return nil
}

func (c *checker) declareFunction(decl *ast.FunctionDeclaration) *diag.Diagnostic {
	fn := &Function{}
	for _, param := range decl.Parameters {
		paramType, err := c.resolveValueType(param.Type)
		if err != nil {
			return err
		}
		fn.Params = append(fn.Params, paramType)
	}
	result, err := c.resolveValueType(decl.ReturnType)
	if err != nil {
		return err
	}
	fn.Result = result

	c.scope.Define(decl.Name.Name, fn)
	c.signatures[decl] = fn
	c.table.Define(decl.ID(), fn)
	return nil
}

func (c *checker) checkFunctionBody(decl *ast.FunctionDeclaration) *diag.Diagnostic {
	fn := c.signatures[decl]

	outer := c.scope
	c.scope = NewScope(outer)
	defer func() { c.scope = outer }()

	for i, param := range decl.Parameters {
		c.scope.Define(param.Name.Name, fn.Params[i])
		c.table.Define(param.ID(), fn.Params[i])
	}
	return c.expectType(decl.Body, fn.Result)
}

// expectType checks the expression against the expected type. A mismatch
// on a non-empty block is reported against the block's last expression,
// which is what determines its type.
func (c *checker) expectType(e ast.Expr, expected Type) *diag.Diagnostic {
	got, err := c.check(e)
	if err != nil {
		return err
	}
	if compatible(expected, got) {
		return nil
	}
	blame := ast.Node(e)
	if block, ok := e.(*ast.BlockExpression); ok && len(block.Expressions) > 0 {
		blame = block.Expressions[len(block.Expressions)-1]
	}
	return typeMismatch(blame.Span(), expected, got)
}

// compatible reports whether a value of type got satisfies expected. bool
// is represented as an i32 at runtime and the two are accepted for each
// other wherever a value is expected.
func compatible(expected, got Type) bool {
	if got == expected {
		return true
	}
	return (expected == TypeI32 && got == TypeBool) || (expected == TypeBool && got == TypeI32)
}

func typeMismatch(span diag.Location, expected, got Type) *diag.Diagnostic {
	return diag.Errorf(span, fmt.Sprintf("expected %s, found %s", expected, got),
		fmt.Sprintf("Expected type %s, but found %s", expected, got))
}

// check resolves the type of an expression, recording it in the type table
// before returning.
func (c *checker) check(e ast.Expr) (Type, *diag.Diagnostic) {
	var typ Type
	var err *diag.Diagnostic

	switch e := e.(type) {
	case *ast.BlockExpression:
		typ = TypeEmpty
		for _, child := range e.Expressions {
			if typ, err = c.check(child); err != nil {
				return nil, err
			}
		}
	case *ast.VariableDeclaration:
		if typ, err = c.resolveValueType(e.Type); err != nil {
			return nil, err
		}
		if err = c.expectType(e.Value, typ); err != nil {
			return nil, err
		}
		c.scope.Define(e.Name.Name, typ)
	case *ast.BinaryExpression:
		typ, err = c.checkBinary(e)
	case *ast.CallExpression:
		typ, err = c.checkCall(e)
	case *ast.ExpressionPath:
		typ, err = c.checkExpressionPath(e)
	case *ast.MemberExpression:
		typ, err = c.checkMember(e)
	case *ast.StructConstruction:
		typ, err = c.checkStructConstruction(e)
	case *ast.Identifier:
		var ok bool
		if typ, ok = c.scope.Lookup(e.Name); !ok {
			return nil, diag.Errorf(e.Span(), "not found in this scope",
				fmt.Sprintf("Undefined name %q", e.Name))
		}
	case *ast.Literal:
		typ = literalType(e)
	default:
		panic(fmt.Sprintf("types: unexpected expression %T", e))
	}
	if err != nil {
		return nil, err
	}

	c.table.Define(e.ID(), typ)
	return typ, nil
}

func literalType(lit *ast.Literal) Type {
	switch lit.Annotation.Name {
	case "i32":
		return TypeI32
	case "f64":
		return TypeF64
	case "bool":
		return TypeBool
	default:
		panic(fmt.Sprintf("types: literal annotated %q", lit.Annotation.Name))
	}
}

func (c *checker) checkBinary(e *ast.BinaryExpression) (Type, *diag.Diagnostic) {
	left, err := c.check(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := c.check(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Operator {
	case "+", "*":
		if !IsNumeric(left) {
			return nil, nonNumeric(e.Left.Span(), e.Operator, left)
		}
		if !IsNumeric(right) {
			return nil, nonNumeric(e.Right.Span(), e.Operator, right)
		}
		if left != right {
			return nil, typeMismatch(e.Right.Span(), left, right)
		}
		return left, nil
	case "==":
		if !IsEqualityComparable(left) {
			return nil, diag.Errorf(e.Left.Span(), "not comparable",
				fmt.Sprintf("Values of type %s cannot be compared for equality", left))
		}
		if left != right {
			return nil, typeMismatch(e.Right.Span(), left, right)
		}
		return TypeBool, nil
	default:
		panic(fmt.Sprintf("types: unexpected operator %q", e.Operator))
	}
}

func nonNumeric(span diag.Location, operator string, t Type) *diag.Diagnostic {
	return diag.Errorf(span, "not a numeric operand",
		fmt.Sprintf("Operator %q requires i32 or f64 operands, but found %s", operator, t))
}

func (c *checker) checkCall(e *ast.CallExpression) (Type, *diag.Diagnostic) {
	callee, ok := c.scope.Lookup(e.Callee.Name)
	if !ok {
		return nil, diag.Errorf(e.Callee.Span(), "not found in this scope",
			fmt.Sprintf("Undefined name %q", e.Callee.Name))
	}
	fn, ok := callee.(*Function)
	if !ok {
		return nil, diag.Errorf(e.Callee.Span(), "not a function",
			fmt.Sprintf("%q is not callable", e.Callee.Name))
	}
	if len(e.Args) != len(fn.Params) {
		return nil, diag.Errorf(e.Span(), "wrong number of arguments",
			fmt.Sprintf("Function %q expects %d arguments, but got %d",
				e.Callee.Name, len(fn.Params), len(e.Args)))
	}
	for i, arg := range e.Args {
		if err := c.expectType(arg, fn.Params[i]); err != nil {
			return nil, err
		}
	}
	return fn.Result, nil
}

func (c *checker) checkExpressionPath(e *ast.ExpressionPath) (Type, *diag.Diagnostic) {
	head, ok := c.scope.Lookup(e.Head.Name)
	if !ok {
		return nil, diag.Errorf(e.Head.Span(), "not found in this scope",
			fmt.Sprintf("Undefined name %q", e.Head.Name))
	}
	enum, ok := head.(*Enum)
	if !ok {
		return nil, diag.Errorf(e.Head.Span(), "not an enum",
			fmt.Sprintf("%q is not an enum", e.Head.Name))
	}
	variant, _, ok := enum.Variant(e.Variant.Name)
	if !ok {
		return nil, diag.Errorf(e.Variant.Span(), "no such variant",
			fmt.Sprintf("Enum %q has no variant %q", enum.Name, e.Variant.Name))
	}

	if variant.Payload == nil {
		if e.HasArgs {
			return nil, diag.Errorf(e.Variant.Span(), "unit variants take no arguments",
				fmt.Sprintf("Variant %q is a unit variant and takes no value argument", variant.Name))
		}
		return enum, nil
	}

	switch {
	case !e.HasArgs || len(e.Args) == 0:
		return nil, diag.Errorf(e.Variant.Span(), "missing the value argument",
			fmt.Sprintf("Variant %q requires a single value argument", variant.Name))
	case len(e.Args) > 1:
		span := e.Args[1].Span()
		for _, arg := range e.Args[2:] {
			span = diag.Union(span, arg.Span())
		}
		return nil, diag.Errorf(span, "expected a single value argument",
			fmt.Sprintf("Variant %q is not a unit variant. Expected a single value argument, but got %d.",
				variant.Name, len(e.Args)))
	}
	if err := c.expectType(e.Args[0], variant.Payload); err != nil {
		return nil, err
	}
	return enum, nil
}

func (c *checker) checkMember(e *ast.MemberExpression) (Type, *diag.Diagnostic) {
	object, err := c.check(e.Object)
	if err != nil {
		return nil, err
	}
	st, ok := object.(*Struct)
	if !ok {
		return nil, diag.Errorf(e.Object.Span(), "not a struct",
			fmt.Sprintf("Type %s is not a struct", object))
	}
	field, ok := st.Field(e.Field.Name)
	if !ok {
		return nil, diag.Errorf(e.Field.Span(), "no such field",
			fmt.Sprintf("Struct %q has no field %q", st.Name, e.Field.Name))
	}
	return field.Type, nil
}

func (c *checker) checkStructConstruction(e *ast.StructConstruction) (Type, *diag.Diagnostic) {
	named, ok := c.scope.Lookup(e.Name.Name)
	if !ok {
		return nil, diag.Errorf(e.Name.Span(), "not found in this scope",
			fmt.Sprintf("Undefined type %q", e.Name.Name))
	}
	st, ok := named.(*Struct)
	if !ok {
		return nil, diag.Errorf(e.Name.Span(), "not a struct",
			fmt.Sprintf("%q is not a struct", e.Name.Name))
	}

	provided := map[string]bool{}
	for _, init := range e.Fields {
		field, ok := st.Field(init.Name.Name)
		if !ok {
			return nil, diag.Errorf(init.Name.Span(), "no such field",
				fmt.Sprintf("Struct %q has no field %q", st.Name, init.Name.Name))
		}
		if err := c.expectType(init.Value, field.Type); err != nil {
			return nil, err
		}
		provided[field.Name] = true
	}

	var missing []string
	for _, field := range st.Fields {
		if !provided[field.Name] {
			missing = append(missing, field.Name)
		}
	}
	if len(missing) > 0 {
		return nil, diag.Errorf(e.Span(), "missing fields",
			fmt.Sprintf("Missing fields in construction of %q: %s",
				st.Name, strings.Join(missing, ", ")))
	}
	return st, nil
}
