// Package scope implements the name-resolution tree described in spec.md
// §3/§9: a ScopeArena owns every Scope by value, and scopes reference their
// parent by an opaque ScopeId index rather than a pointer, so the tree
// never needs the cyclic parent/child references the original design used.
package scope

import (
	"math/big"

	"github.com/dekarrin/zkcircuit/internal/types"
)

// MemoryKind tags where an Item's storage lives at runtime.
type MemoryKind int

const (
	MemoryStack MemoryKind = iota
	MemoryContractStorage
	MemoryConstant
)

// Item is one named thing a Scope can hold: a variable, constant,
// function, type, or nested module.
type Item struct {
	// ID is a globally unique, monotonically increasing identifier,
	// assigned by the Arena's append-only counter (spec.md §5).
	ID   uint64
	Name string
	Kind ItemKind

	Type   types.ITyped
	Memory MemoryKind

	// Function is set when Kind == ItemFunction.
	Function *types.Function

	// ModuleScope is set when Kind == ItemModule.
	ModuleScope ScopeID

	// ConstValue holds the folded value of an ItemConstant, computed once at
	// declaration time (spec.md §4.3 constant folding).
	ConstValue *big.Int
}

type ItemKind int

const (
	ItemVariable ItemKind = iota
	ItemConstant
	ItemFunction
	ItemType
	ItemModule
)

// ScopeID is an opaque index into a ScopeArena.
type ScopeID int

// NoScope (-1) means "no parent" (only the root scope has this as its
// Parent).
const NoScope ScopeID = -1

// Scope is one node of the name-resolution tree.
type Scope struct {
	Parent ScopeID
	Items  map[string]*Item
}

// Arena owns every Scope created during one compilation unit, plus the
// append-only item-id counter spec.md §5 requires to stay unique across
// that unit.
type Arena struct {
	scopes  []Scope
	nextID  uint64
}

// NewArena creates an Arena containing a single root scope.
func NewArena() *Arena {
	a := &Arena{}
	a.scopes = append(a.scopes, Scope{Parent: NoScope, Items: map[string]*Item{}})
	return a
}

// Root returns the id of the arena's root scope.
func (a *Arena) Root() ScopeID {
	return 0
}

// New creates a child scope of parent and returns its id.
func (a *Arena) New(parent ScopeID) ScopeID {
	a.scopes = append(a.scopes, Scope{Parent: parent, Items: map[string]*Item{}})
	return ScopeID(len(a.scopes) - 1)
}

func (a *Arena) get(id ScopeID) *Scope {
	return &a.scopes[id]
}

// NextItemID returns a fresh, globally unique item id.
func (a *Arena) NextItemID() uint64 {
	id := a.nextID
	a.nextID++
	return id
}

// Declare adds item to the scope, returning true if it shadowed an existing
// name in that exact scope (callers should warn, not error, per spec.md
// §4.3: "shadowing warns, does not error").
func (a *Arena) Declare(id ScopeID, item *Item) (shadowed bool) {
	s := a.get(id)
	_, shadowed = s.Items[item.Name]
	s.Items[item.Name] = item
	return shadowed
}

// Resolve walks from id toward the root looking for name, returning the
// first Item found and the scope it was declared in.
func (a *Arena) Resolve(id ScopeID, name string) (*Item, ScopeID, bool) {
	cur := id
	for cur != NoScope {
		s := a.get(cur)
		if item, ok := s.Items[name]; ok {
			return item, cur, true
		}
		cur = s.Parent
	}
	return nil, NoScope, false
}

// ResolvePath walks a dotted/double-colon path ["mod", "item"] by first
// resolving the leading module name in id, then each subsequent segment in
// that module's own scope.
func (a *Arena) ResolvePath(id ScopeID, path []string) (*Item, bool) {
	if len(path) == 0 {
		return nil, false
	}

	item, _, ok := a.Resolve(id, path[0])
	if !ok {
		return nil, false
	}

	cur := item
	for _, seg := range path[1:] {
		if cur.Kind != ItemModule {
			return nil, false
		}
		next, _, ok := a.Resolve(cur.ModuleScope, seg)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}
