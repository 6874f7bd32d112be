// Package layout plans shadow-stack frames: for every function it sums the
// bytes of aggregate values its body materialises in linear memory.
// Primitives contribute nothing; they live in Wasm locals.
package layout

import (
	"github.com/moodlang/mood/internal/ast"
	"github.com/moodlang/mood/internal/types"
)

// StackSizes maps a function declaration's node ID to the frame bytes its
// body needs. The walk is conservative: it never undercounts what the
// emitter allocates, so the emitter can use the sum as the exact frame
// size to reserve.
type StackSizes map[ast.NodeID]uint32

// Plan walks every function in the program.
func Plan(program *ast.Program, table *types.TypeTable) StackSizes {
	sizes := StackSizes{}
	for _, decl := range program.Declarations {
		if fn, ok := decl.(*ast.FunctionDeclaration); ok {
			sizes[fn.ID()] = exprSize(fn.Body, table)
		}
	}
	return sizes
}

// exprSize is the aggregate byte contribution of one expression tree.
func exprSize(e ast.Expr, table *types.TypeTable) uint32 {
	switch e := e.(type) {
	case *ast.BlockExpression:
		var sum uint32
		for _, child := range e.Expressions {
			sum += exprSize(child, table)
		}
		return sum
	case *ast.BinaryExpression:
		return exprSize(e.Left, table) + exprSize(e.Right, table)
	case *ast.VariableDeclaration:
		return aggregateSize(e, table) + exprSize(e.Value, table)
	case *ast.CallExpression:
		sum := aggregateSize(e, table)
		for _, arg := range e.Args {
			sum += exprSize(arg, table)
		}
		return sum
	case *ast.StructConstruction:
		sum := aggregateSize(e, table)
		for _, field := range e.Fields {
			sum += exprSize(field.Value, table)
		}
		return sum
	case *ast.ExpressionPath:
		sum := aggregateSize(e, table)
		for _, arg := range e.Args {
			sum += exprSize(arg, table)
		}
		return sum
	case *ast.MemberExpression:
		return aggregateSize(e, table) + exprSize(e.Object, table)
	case *ast.Literal, *ast.Identifier:
		return aggregateSize(e, table)
	default:
		return 0
	}
}

func aggregateSize(e ast.Expr, table *types.TypeTable) uint32 {
	t := table.Get(e.ID())
	if !types.IsAggregate(t) {
		return 0
	}
	return types.SizeOf(t)
}
