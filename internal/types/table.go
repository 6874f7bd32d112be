package types

import (
	"fmt"

	"github.com/moodlang/mood/internal/ast"
)

// TypeTable maps node IDs to resolved types. IDs are dense, so the table
// is a slice sized to the parser's node count; slots for nodes the checker
// never types (e.g. annotation identifiers) stay nil.
type TypeTable struct {
	entries []Type
}

// NewTypeTable sizes a table for numNodes dense IDs.
func NewTypeTable(numNodes int) *TypeTable {
	return &TypeTable{entries: make([]Type, numNodes)}
}

// Define records the resolved type of a node.
func (t *TypeTable) Define(id ast.NodeID, typ Type) {
	t.entries[id] = typ
}

// Get returns the resolved type of a node. The checker is contractually
// responsible for typing every node the emitter visits, so a missing entry
// is a compiler bug.
func (t *TypeTable) Get(id ast.NodeID) Type {
	typ := t.entries[id]
	if typ == nil {
		panic(fmt.Sprintf("types: node %d has no type table entry", id))
	}
	return typ
}

// Has reports whether the node has an entry.
func (t *TypeTable) Has(id ast.NodeID) bool {
	return int(id) < len(t.entries) && t.entries[id] != nil
}
