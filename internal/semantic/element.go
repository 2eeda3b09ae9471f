package semantic

import (
	"math/big"

	"github.com/dekarrin/zkcircuit/internal/source"
	"github.com/dekarrin/zkcircuit/internal/types"
)

// Element is one checked node of the semantic tree built alongside the
// syntax tree: every ast.Expr resolves to exactly one Element variant
// (*Value or *Place), per spec.md §3's
// "element tree" description. The bytecode generator walks Elements, never
// raw ast nodes, since an Element already carries a resolved ITyped and
// (for places) an addressing mode.
type Element interface {
	Location() source.Location
	Type() types.ITyped
	elementNode()
}

// Value is a checked expression that produces a value but is not
// assignable: literals, arithmetic, calls, casts, control expressions.
type Value struct {
	Loc source.Location
	Typ types.ITyped

	// Node is the original syntax this value was checked from, kept for the
	// generator's emission pass.
	Node interface{}

	// ConstInt is non-nil when this value was fully constant-folded to an
	// integer or field element (spec.md §4.3's constant folding).
	ConstInt *big.Int

	// ConstBool is set together with ConstIsBool when the value folded to a
	// compile-time known boolean.
	ConstBool   bool
	ConstIsBool bool

	// ItemID is set for a LetStmt/ConstStmt Value, carrying the scope item
	// id the generator must reuse for every later read of that name.
	ItemID uint64

	Children []Element
}

func (v *Value) Location() source.Location { return v.Loc }
func (v *Value) Type() types.ITyped        { return v.Typ }
func (*Value) elementNode()                {}

// Place is a checked expression that designates storage a value can be
// written to: a local variable, a field of a struct/contract, an array
// element, or contract storage.
type Place struct {
	Loc    source.Location
	Typ    types.ITyped
	Memory MemoryTag

	// ItemID is the scope item id of the root variable this place derefs
	// from.
	ItemID uint64

	Base  Element // nil for a bare identifier place
	Field string  // set for struct/contract field access
	Index Element // set for array indexing
}

func (p *Place) Location() source.Location { return p.Loc }
func (p *Place) Type() types.ITyped        { return p.Typ }
func (*Place) elementNode()                {}

// MemoryTag mirrors scope.MemoryKind at the element-tree level so the
// generator doesn't need to import the scope package.
type MemoryTag int

const (
	MemStack MemoryTag = iota
	MemContractStorage
	MemConstant
)
