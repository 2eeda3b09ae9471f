// Package semantic implements the analyzer described in spec.md §3/§4.3:
// it walks a parsed ast.File, resolves every name through a scope.Arena,
// checks and folds every expression into the Element tree, and produces a
// Program the bytecode generator consumes. Errors are collected rather than
// aborting on the first one, the way the teacher's tunascript checker
// reports every problem it can find in a single pass.
package semantic

import (
	"github.com/dekarrin/zkcircuit/internal/ast"
	"github.com/dekarrin/zkcircuit/internal/scope"
	"github.com/dekarrin/zkcircuit/internal/types"
)

// Analyzer holds the state threaded through one compilation unit's checking
// pass.
type Analyzer struct {
	arena *scope.Arena
	root  scope.ScopeID

	structs   map[string]*types.Struct
	contracts map[string]*types.Contract
	enums     map[string]*types.Enum

	currentSelf types.ITyped // set while checking a method body

	pending    []*fnWork
	checkedFns []*CheckedFn

	errs []error
}

// fnWork is one function/method body queued by the declare pass to be
// type-checked once every type name in the unit is known.
type fnWork struct {
	node      *ast.FnStmt
	sig       *types.Function
	qualifier string
	self      types.ITyped
	sc        scope.ScopeID
	itemID    uint64
}

// NewAnalyzer creates an Analyzer with a fresh scope arena.
func NewAnalyzer() *Analyzer {
	arena := scope.NewArena()
	return &Analyzer{
		arena:     arena,
		root:      arena.Root(),
		structs:   map[string]*types.Struct{},
		contracts: map[string]*types.Contract{},
		enums:     map[string]*types.Enum{},
	}
}

func (a *Analyzer) errorf(err error) {
	a.errs = append(a.errs, err)
}

// Analyze checks every item of file and returns the resulting Program
// together with every error collected along the way. A non-empty error
// slice means prog is only partially trustworthy (spec.md §7: semantic
// errors are reported, not fatal to the whole pass) but is still returned
// so callers such as the REPL can inspect what did resolve.
func (a *Analyzer) Analyze(file *ast.File) (*Program, []error) {
	a.declarePass(file.Items, a.root)
	a.checkFunctionBodies()

	prog := &Program{
		Arena:     a.arena,
		Root:      a.root,
		Structs:   a.structs,
		Contracts: a.contracts,
		Enums:     a.enums,
		Functions: a.checkedFns,
	}
	return prog, a.errs
}

// Analyze is the package-level convenience entry point most callers use.
func Analyze(file *ast.File) (*Program, []error) {
	return NewAnalyzer().Analyze(file)
}
