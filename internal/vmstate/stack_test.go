package vmstate

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_EvalStack_PushPopOrder(t *testing.T) {
	s := NewEvalStack()
	s.Push(NewIntScalar(1, false, 8))
	s.Push(NewIntScalar(2, false, 8))
	assert.Equal(t, int64(2), s.Pop().Value.Int64())
	assert.Equal(t, int64(1), s.Pop().Value.Int64())
	assert.True(t, s.Empty())
}

func Test_EvalStack_ForkIsIndependent(t *testing.T) {
	s := NewEvalStack()
	s.Push(NewIntScalar(5, false, 8))

	fork := s.Fork()
	fork.Push(NewIntScalar(6, false, 8))

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 2, fork.Len())
}

func Test_EvalStack_MergeReplacesContents(t *testing.T) {
	s := NewEvalStack()
	s.Push(NewIntScalar(1, false, 8))

	fork := s.Fork()
	fork.Push(NewIntScalar(2, false, 8))
	s.Merge(fork)

	require.Equal(t, 2, s.Len())
	assert.Equal(t, int64(2), s.Pop().Value.Int64())
	assert.Equal(t, int64(1), s.Pop().Value.Int64())
}

func Test_EvalStack_MuxSelectsThenOrElseBySlot(t *testing.T) {
	then := NewEvalStack()
	then.Push(NewIntScalar(1, false, 8))
	then.Push(NewIntScalar(2, false, 8))

	els := NewEvalStack()
	els.Push(NewIntScalar(10, false, 8))
	els.Push(NewIntScalar(20, false, 8))

	merged, err := then.Mux(NewBoolScalar(true), els)
	require.NoError(t, err)
	assert.Equal(t, int64(2), merged.Pop().Value.Int64())
	assert.Equal(t, int64(1), merged.Pop().Value.Int64())

	merged, err = then.Mux(NewBoolScalar(false), els)
	require.NoError(t, err)
	assert.Equal(t, int64(20), merged.Pop().Value.Int64())
	assert.Equal(t, int64(10), merged.Pop().Value.Int64())
}

func Test_EvalStack_MuxRejectsMismatchedDepths(t *testing.T) {
	then := NewEvalStack()
	then.Push(NewIntScalar(1, false, 8))

	els := NewEvalStack()
	els.Push(NewIntScalar(1, false, 8))
	els.Push(NewIntScalar(2, false, 8))

	_, err := then.Mux(NewBoolScalar(true), els)
	assert.Error(t, err)
}

func Test_DataStack_MuxSelectsThenOrElseBySlot(t *testing.T) {
	then := NewDataStack(1)
	then.Set(0, NewIntScalar(1, false, 8))

	els := NewDataStack(1)
	els.Set(0, NewIntScalar(2, false, 8))

	merged := then.Mux(NewBoolScalar(true), els)
	v, ok := merged.Get(0)
	require.True(t, ok)
	assert.Equal(t, int64(1), v.Value.Int64())

	merged = then.Mux(NewBoolScalar(false), els)
	v, ok = merged.Get(0)
	require.True(t, ok)
	assert.Equal(t, int64(2), v.Value.Int64())
}

func Test_DataStack_MuxPassesThroughSlotOnlyOneArmWrote(t *testing.T) {
	then := NewDataStack(1)
	then.Set(0, NewIntScalar(9, false, 8))
	els := NewDataStack(0)

	merged := then.Mux(NewBoolScalar(false), els)
	v, ok := merged.Get(0)
	require.True(t, ok)
	assert.Equal(t, int64(9), v.Value.Int64())
}

func Test_DataStack_GetUninitializedSlotIsMiss(t *testing.T) {
	d := NewDataStack(4)
	_, ok := d.Get(2)
	assert.False(t, ok)
}

func Test_DataStack_SetThenGet(t *testing.T) {
	d := NewDataStack(4)
	d.Set(2, NewIntScalar(42, false, 8))
	v, ok := d.Get(2)
	require.True(t, ok)
	assert.Equal(t, int64(42), v.Value.Int64())
}

func Test_DataStack_SetGrowsBeyondInitialSize(t *testing.T) {
	d := NewDataStack(1)
	d.Set(5, NewIntScalar(9, false, 8))
	v, ok := d.Get(5)
	require.True(t, ok)
	assert.Equal(t, int64(9), v.Value.Int64())
}

func Test_DataStack_ForkClonesUnderlyingValues(t *testing.T) {
	d := NewDataStack(1)
	d.Set(0, NewIntScalar(1, false, 8))

	fork := d.Fork()
	v, _ := fork.Get(0)
	v.Value.SetInt64(99)

	orig, _ := d.Get(0)
	assert.Equal(t, int64(1), orig.Value.Int64())
}

func Test_ConditionStack_AmbientIsTrueWhenEmpty(t *testing.T) {
	c := NewConditionStack()
	assert.True(t, c.Ambient())
}

func Test_ConditionStack_AmbientIsFalseIfAnyConditionFalse(t *testing.T) {
	c := NewConditionStack()
	c.Push(NewBoolScalar(true))
	c.Push(NewBoolScalar(false))
	assert.False(t, c.Ambient())
}

func Test_ConditionStack_AmbientIsTrueWhenAllTrue(t *testing.T) {
	c := NewConditionStack()
	c.Push(NewBoolScalar(true))
	c.Push(NewBoolScalar(true))
	assert.True(t, c.Ambient())
}

func Test_FrameStack_PeekReturnsPointerIntoBackingSlice(t *testing.T) {
	f := NewFrameStack()
	f.Push(Frame{ReturnAddress: -1})

	f.Peek().Blocks.Push(Block{IsLoop: true, LoopEnd: 3})
	assert.Equal(t, 1, f.Peek().Blocks.Len())
	assert.Equal(t, 3, f.Peek().Blocks.Peek().LoopEnd)
}

func Test_FrameStack_PushPop(t *testing.T) {
	f := NewFrameStack()
	f.Push(Frame{ReturnAddress: 10})
	f.Push(Frame{ReturnAddress: 20})
	assert.Equal(t, 20, f.Pop().ReturnAddress)
	assert.Equal(t, 10, f.Pop().ReturnAddress)
}

func Test_Scalar_IsTruthy(t *testing.T) {
	assert.True(t, NewIntScalar(1, false, 8).IsTruthy())
	assert.False(t, NewIntScalar(0, false, 8).IsTruthy())
	assert.False(t, Scalar{Value: big.NewInt(1), Known: false}.IsTruthy())
}

func Test_Scalar_Clone(t *testing.T) {
	s := NewIntScalar(7, true, 16)
	c := s.Clone()
	c.Value.SetInt64(99)
	assert.Equal(t, int64(7), s.Value.Int64())
	assert.Equal(t, int64(99), c.Value.Int64())
}
