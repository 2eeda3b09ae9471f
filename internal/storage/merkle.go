// Package storage implements the Merkle-tree-backed contract storage
// backend: a fixed-height binary tree of blake2b-256 hashes, with
// authentication-path witnessing for storage_load/storage_store, grounded
// in the zinc-vm storage model described in original_source/ (Array and
// Map leaf layouts over a single tree).
package storage

import (
	"math/big"

	"golang.org/x/crypto/blake2b"
)

// DefaultHeight is the tree height used when a contract doesn't declare
// its own storage size; 2^DefaultHeight leaves is enough for every
// scenario this toolchain's test fixtures exercise.
const DefaultHeight = 16

// Tree is a height-h Merkle tree over field-element leaves, each hashed
// with blake2b-256 (see gadgets.HashGadget for why blake2b stands in for a
// field-native sponge here).
type Tree struct {
	Height int
	nodes  map[string][]byte // path-as-string -> hash, populated lazily
	leaves map[uint64]*big.Int
}

// NewTree builds an empty tree of the given height, every leaf implicitly
// zero until Store is called.
func NewTree(height int) *Tree {
	return &Tree{Height: height, nodes: map[string][]byte{}, leaves: map[uint64]*big.Int{}}
}

// AuthPath is the sibling hash at every level from a leaf up to the root,
// the witness data a storage_load/storage_store instruction attaches to
// its constraint.
type AuthPath struct {
	Siblings [][]byte
}

func leafHash(v *big.Int) []byte {
	sum := blake2b.Sum256(v.Bytes())
	return sum[:]
}

func nodeHash(l, r []byte) []byte {
	sum := blake2b.Sum256(append(append([]byte{}, l...), r...))
	return sum[:]
}

// Load returns the value at index and the authentication path proving it
// belongs to the tree's current root. A never-written leaf reads as zero,
// matching spec.md's "zero-filled on miss" storage semantics rather than
// an error.
func (t *Tree) Load(index uint64) (*big.Int, AuthPath) {
	v, ok := t.leaves[index]
	if !ok {
		v = big.NewInt(0)
	}
	return new(big.Int).Set(v), t.pathFor(index)
}

// Store writes value at index and returns the updated authentication path.
func (t *Tree) Store(index uint64, value *big.Int) AuthPath {
	t.leaves[index] = new(big.Int).Set(value)
	return t.pathFor(index)
}

// Root computes the current tree root by rehashing from every known leaf.
// This toolchain favors witness clarity over incremental-update
// performance, since circuits exercise at most a few hundred storage
// operations per test fixture.
func (t *Tree) Root() []byte {
	level := map[uint64][]byte{}
	for idx, v := range t.leaves {
		level[idx] = leafHash(v)
	}
	return t.collapse(level, t.Height)
}

func (t *Tree) collapse(level map[uint64][]byte, height int) []byte {
	zero := zeroHash(height)
	if height == 0 {
		if h, ok := level[0]; ok {
			return h
		}
		return zero
	}

	next := map[uint64][]byte{}
	seen := map[uint64]bool{}
	for idx := range level {
		parent := idx / 2
		if seen[parent] {
			continue
		}
		seen[parent] = true
		l := childHash(level, idx-idx%2, height-1)
		r := childHash(level, idx-idx%2+1, height-1)
		next[parent] = nodeHash(l, r)
	}
	return t.collapse(next, height-1)
}

func childHash(level map[uint64][]byte, idx uint64, height int) []byte {
	if h, ok := level[idx]; ok {
		return h
	}
	return zeroHash(height)
}

var zeroHashCache = map[int][]byte{}

func zeroHash(height int) []byte {
	if h, ok := zeroHashCache[height]; ok {
		return h
	}
	var h []byte
	if height == 0 {
		h = leafHash(big.NewInt(0))
	} else {
		child := zeroHash(height - 1)
		h = nodeHash(child, child)
	}
	zeroHashCache[height] = h
	return h
}

// pathFor recomputes the full tree and extracts the sibling at every
// level on the way from index to the root.
func (t *Tree) pathFor(index uint64) AuthPath {
	level := map[uint64][]byte{}
	for idx, v := range t.leaves {
		level[idx] = leafHash(v)
	}

	path := AuthPath{}
	idx := index
	for h := t.Height; h > 0; h-- {
		sibIdx := idx ^ 1
		path.Siblings = append(path.Siblings, childHash(level, sibIdx, h-1))

		next := map[uint64][]byte{}
		seen := map[uint64]bool{}
		for i := range level {
			p := i / 2
			if seen[p] {
				continue
			}
			seen[p] = true
			l := childHash(level, i-i%2, h-1)
			r := childHash(level, i-i%2+1, h-1)
			next[p] = nodeHash(l, r)
		}
		level = next
		idx /= 2
	}
	return path
}
