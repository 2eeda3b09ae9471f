package semantic

import (
	"github.com/dekarrin/zkcircuit/internal/ast"
	"github.com/dekarrin/zkcircuit/internal/scope"
	"github.com/dekarrin/zkcircuit/internal/types"
)

// CheckedFn is one function or method whose body has been fully checked.
type CheckedFn struct {
	Name      string
	Qualifier string // owning contract/struct name, or "" for free functions
	Sig       *types.Function
	Params    []scope.Item
	Body      *Value // always a BlockExpr-shaped Value
	ItemID    uint64
}

// Program is the output of analyzing one compilation unit: every declared
// type plus every checked function body, ready for the bytecode generator.
type Program struct {
	Arena *scope.Arena
	Root  scope.ScopeID

	Structs   map[string]*types.Struct
	Contracts map[string]*types.Contract
	Enums     map[string]*types.Enum
	Functions []*CheckedFn

	// EntryOrder names top-level items in declaration order. Analyze leaves
	// it empty; the generator assigns entry-point addresses in the order of
	// Functions instead.
	EntryOrder []string
}

// sourceItem pairs a raw ast item with the module path it was declared
// under. No analyzer pass builds one.
type sourceItem struct {
	path []string
	item ast.Stmt
}
