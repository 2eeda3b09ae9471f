package gadgets

import (
	"math/big"
	"testing"

	"github.com/dekarrin/zkcircuit/internal/vmstate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_HashGadget_IsDeterministicAndOrderSensitive(t *testing.T) {
	eval := vmstate.NewEvalStack()
	eval.Push(vmstate.NewFieldScalar(big.NewInt(1)))
	eval.Push(vmstate.NewFieldScalar(big.NewInt(2)))
	require.NoError(t, HashGadget{}.Call(eval, nil))
	ab := eval.Pop().Value

	eval.Push(vmstate.NewFieldScalar(big.NewInt(1)))
	eval.Push(vmstate.NewFieldScalar(big.NewInt(2)))
	require.NoError(t, HashGadget{}.Call(eval, nil))
	ab2 := eval.Pop().Value
	assert.Equal(t, 0, ab.Cmp(ab2), "hash must be deterministic for the same ordered inputs")

	eval.Push(vmstate.NewFieldScalar(big.NewInt(2)))
	eval.Push(vmstate.NewFieldScalar(big.NewInt(1)))
	require.NoError(t, HashGadget{}.Call(eval, nil))
	ba := eval.Pop().Value
	assert.NotEqual(t, 0, ab.Cmp(ba), "hash(a,b) must differ from hash(b,a)")
}

func Test_ToBitsFromBitsGadget_RoundTrip(t *testing.T) {
	cases := []struct {
		name     string
		val      int64
		bitWidth int
		signed   bool
	}{
		{"zero", 0, 8, false},
		{"all-ones-byte", 0xFF, 8, false},
		{"mid-byte", 0b01010101, 8, false},
		{"wide", 0x1234, 16, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			eval := vmstate.NewEvalStack()
			eval.Push(vmstate.Scalar{Value: big.NewInt(c.val), Typ: vmstate.ScalarType{BitWidth: c.bitWidth, Signed: c.signed}, Known: true})

			require.NoError(t, ToBitsGadget{BitWidth: c.bitWidth}.Call(eval, nil))
			require.Equal(t, c.bitWidth, eval.Len())

			require.NoError(t, FromBitsGadget{BitWidth: c.bitWidth, Signed: c.signed}.Call(eval, nil))
			require.Equal(t, 1, eval.Len())
			assert.Equal(t, c.val, eval.Pop().Value.Int64())
		})
	}
}

func Test_ToBitsGadget_LittleEndianBitOrder(t *testing.T) {
	eval := vmstate.NewEvalStack()
	eval.Push(vmstate.NewIntScalar(0b00000010, false, 8)) // bit 1 set
	require.NoError(t, ToBitsGadget{BitWidth: 8}.Call(eval, nil))

	bits := make([]bool, 8)
	for i := 7; i >= 0; i-- {
		bits[i] = eval.Pop().IsTruthy()
	}
	for i, b := range bits {
		if i == 1 {
			assert.True(t, b, "bit 1 should be set")
		} else {
			assert.False(t, b, "bit %d should be clear", i)
		}
	}
}

func Test_AssertZeroGadget_PassesOnZero(t *testing.T) {
	eval := vmstate.NewEvalStack()
	eval.Push(vmstate.NewIntScalar(0, false, 8))
	assert.NoError(t, AssertZeroGadget{}.Call(eval, nil))
}

func Test_AssertZeroGadget_FailsOnNonZero(t *testing.T) {
	eval := vmstate.NewEvalStack()
	eval.Push(vmstate.NewIntScalar(1, false, 8))
	assert.Error(t, AssertZeroGadget{}.Call(eval, nil))
}

func Test_DivRem_SatisfiesDefiningRelation(t *testing.T) {
	q, rem, err := DivRem(big.NewInt(17), big.NewInt(5))
	require.NoError(t, err)
	assert.Equal(t, int64(3), q.Int64())
	assert.Equal(t, int64(2), rem.Int64())
}

func Test_DivRem_DivisionByZeroIsError(t *testing.T) {
	_, _, err := DivRem(big.NewInt(17), big.NewInt(0))
	assert.Error(t, err)
}

func Test_Compare_UnsignedOrdering(t *testing.T) {
	lt, eq := Compare(big.NewInt(3), big.NewInt(5), 8, false)
	assert.True(t, lt)
	assert.False(t, eq)

	lt, eq = Compare(big.NewInt(5), big.NewInt(5), 8, false)
	assert.False(t, lt)
	assert.True(t, eq)

	lt, eq = Compare(big.NewInt(200), big.NewInt(5), 8, false)
	assert.False(t, lt)
	assert.False(t, eq)
}

func Test_HashGadget_UnderflowIsStructuredError(t *testing.T) {
	eval := vmstate.NewEvalStack()
	eval.Push(vmstate.NewFieldScalar(big.NewInt(1)))
	assert.Error(t, HashGadget{}.Call(eval, nil))
}

func Test_Registry_ContainsHashAndAssertZeroOnly(t *testing.T) {
	reg := Registry()
	_, hasHash := reg[NativeSha256]
	_, hasAssert := reg[NativeAssertZero]
	_, hasToBits := reg[NativeToBits]
	assert.True(t, hasHash)
	assert.True(t, hasAssert)
	assert.False(t, hasToBits, "to_bits is dispatched by the VM directly from instruction operands, not through the registry")
}
