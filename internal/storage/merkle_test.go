package storage

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Tree_ZeroFilledOnMiss(t *testing.T) {
	tr := NewTree(4)
	v, _ := tr.Load(3)
	assert.Equal(t, big.NewInt(0), v)
}

func Test_Tree_StoreChangesRoot(t *testing.T) {
	tr := NewTree(4)
	before := tr.Root()
	tr.Store(2, big.NewInt(42))
	after := tr.Root()
	assert.NotEqual(t, before, after)
}

func Test_MTreeMap_GetMissFalse(t *testing.T) {
	m := NewMTreeMap(4)
	_, ok := m.Get(big.NewInt(7))
	assert.False(t, ok)
}

func Test_MTreeMap_InsertThenGet(t *testing.T) {
	m := NewMTreeMap(4)
	m.Insert(big.NewInt(7), big.NewInt(99))
	v, ok := m.Get(big.NewInt(7))
	assert.True(t, ok)
	assert.Equal(t, big.NewInt(99), v)
}

func Test_MTreeMap_RemoveClearsPresence(t *testing.T) {
	m := NewMTreeMap(4)
	m.Insert(big.NewInt(1), big.NewInt(5))
	m.Remove(big.NewInt(1))
	_, ok := m.Get(big.NewInt(1))
	assert.False(t, ok)
}
