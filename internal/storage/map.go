package storage

import "math/big"

// MTreeMap is the key-value storage leaf type: a Tree addressed by a
// hashed key rather than a sequential index, with Go-map-like get/
// contains/insert/remove semantics layered over the zero-filled Tree
// primitive.
type MTreeMap struct {
	tree    *Tree
	present map[uint64]bool
}

func NewMTreeMap(height int) *MTreeMap {
	return &MTreeMap{tree: NewTree(height), present: map[uint64]bool{}}
}

func keyIndex(key *big.Int, height int) uint64 {
	mod := new(big.Int).Lsh(big.NewInt(1), uint(height))
	return new(big.Int).Mod(key, mod).Uint64()
}

// Get returns the value at key and whether it was ever inserted; a miss
// returns (zero, false) without touching the tree, matching spec.md's
// "get returns found=false on miss, value undefined" contract.
func (m *MTreeMap) Get(key *big.Int) (*big.Int, bool) {
	idx := keyIndex(key, m.tree.Height)
	if !m.present[idx] {
		return big.NewInt(0), false
	}
	v, _ := m.tree.Load(idx)
	return v, true
}

func (m *MTreeMap) Contains(key *big.Int) bool {
	_, ok := m.Get(key)
	return ok
}

func (m *MTreeMap) Insert(key, value *big.Int) AuthPath {
	idx := keyIndex(key, m.tree.Height)
	m.present[idx] = true
	return m.tree.Store(idx, value)
}

func (m *MTreeMap) Remove(key *big.Int) AuthPath {
	idx := keyIndex(key, m.tree.Height)
	delete(m.present, idx)
	return m.tree.Store(idx, big.NewInt(0))
}
