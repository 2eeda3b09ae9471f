package vm

import (
	"math/big"
	"testing"

	"github.com/dekarrin/zkcircuit/internal/bytecode"
	"github.com/dekarrin/zkcircuit/internal/gadgets"
	"github.com/dekarrin/zkcircuit/internal/generator"
	"github.com/dekarrin/zkcircuit/internal/lexer"
	"github.com/dekarrin/zkcircuit/internal/parser"
	"github.com/dekarrin/zkcircuit/internal/semantic"
	"github.com/dekarrin/zkcircuit/internal/vmstate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, src string) *bytecode.Program {
	t.Helper()
	lx := lexer.New(t.Name(), src)
	stream := lexer.NewStream(lx)
	f, err := parser.ParseFile(t.Name(), stream)
	require.NoError(t, err)

	prog, errs := semantic.Analyze(f)
	require.Empty(t, errs)

	bc, err := generator.Generate(prog, bytecode.KindCircuit)
	require.NoError(t, err)
	return bc
}

func runEntry(t *testing.T, prog *bytecode.Program, args []vmstate.Scalar, entryName string) ([]vmstate.Scalar, error) {
	t.Helper()
	var entry bytecode.EntryMetadata
	found := false
	for _, e := range prog.Entries {
		if e.Name == entryName {
			entry = e
			found = true
		}
	}
	require.True(t, found, "no such entry %q", entryName)

	v := New(prog, gadgets.Registry())
	for _, a := range args {
		v.eval.Push(a)
	}
	return v.Run(entry)
}

func Test_VM_SimpleArithmetic(t *testing.T) {
	prog := compile(t, `fn main(a: u8, b: u8) -> u8 { a + b }`)
	out, err := runEntry(t, prog, []vmstate.Scalar{
		vmstate.NewIntScalar(3, false, 8),
		vmstate.NewIntScalar(4, false, 8),
	}, "main")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int64(7), out[0].Value.Int64())
}

// Test_VM_LoopTripCount guards the loop_end decrement-then-check fix: a
// "for i in 0..5" must execute its body exactly 5 times, not 4 or 6.
func Test_VM_LoopTripCount(t *testing.T) {
	prog := compile(t, `fn main() -> u8 {
		let mut s: u8 = 0;
		for i in 0..5 { s = s + 1; }
		s
	}`)
	out, err := runEntry(t, prog, nil, "main")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int64(5), out[0].Value.Int64())
}

func Test_VM_LoopTripCountZero(t *testing.T) {
	prog := compile(t, `fn main() -> u8 {
		let mut s: u8 = 0;
		for i in 0..0 { s = s + 1; }
		s
	}`)
	out, err := runEntry(t, prog, nil, "main")
	require.NoError(t, err)
	require.Equal(t, int64(0), out[0].Value.Int64())
}

func Test_VM_MultiParamFunctionCallOrdering(t *testing.T) {
	// Regression test for the reverse-order parameter store fix: if a, b,
	// c were stored in declaration order against arguments pushed in call
	// order, every parameter but the last would receive the wrong value.
	prog := compile(t, `
		fn sub3(a: u8, b: u8, c: u8) -> u8 { a - b - c }
		fn main() -> u8 { sub3(10, 3, 2) }
	`)
	out, err := runEntry(t, prog, nil, "main")
	require.NoError(t, err)
	assert.Equal(t, int64(5), out[0].Value.Int64())
}

func Test_VM_ArrayElementReadWrite(t *testing.T) {
	prog := compile(t, `fn main() -> u8 {
		let mut arr: [u8; 3] = [10, 20, 30];
		arr[1] = 99;
		arr[1]
	}`)
	out, err := runEntry(t, prog, nil, "main")
	require.NoError(t, err)
	assert.Equal(t, int64(99), out[0].Value.Int64())
}

func Test_VM_ContractStorageRoundTrip(t *testing.T) {
	prog := compile(t, `
		contract Acct { balance: u248 }
		impl Acct {
			fn set(self, v: u248) { self.balance = v; }
			fn get(self) -> u248 { self.balance }
		}
	`)

	entryByName := func(name string) bytecode.EntryMetadata {
		for _, e := range prog.Entries {
			if e.Name == name {
				return e
			}
		}
		t.Fatalf("no such entry %q", name)
		return bytecode.EntryMetadata{}
	}

	// Storage lives on the VM instance (one VM per contract witness), so
	// set and get have to run against the same instance to observe each
	// other's effect.
	v := New(prog, gadgets.Registry())
	v.eval.Push(vmstate.NewIntScalar(42, false, 248))
	_, err := v.Run(entryByName("Acct::set"))
	require.NoError(t, err)

	tree := v.storageTree("balance")
	val, ok := tree.Get(big.NewInt(0))
	require.True(t, ok)
	assert.Equal(t, int64(42), val.Int64())

	out, err := v.Run(entryByName("Acct::get"))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int64(42), out[0].Value.Int64())
}

func Test_VM_RequireFailureRaisesUnsatisfiedConstraint(t *testing.T) {
	prog := compile(t, `fn main(x: u8) { require(x > 0, "must be positive"); }`)
	_, err := runEntry(t, prog, []vmstate.Scalar{vmstate.NewIntScalar(0, false, 8)}, "main")
	require.Error(t, err)
}

func Test_VM_RequirePassesSilently(t *testing.T) {
	prog := compile(t, `fn main(x: u8) { require(x > 0, "must be positive"); }`)
	_, err := runEntry(t, prog, []vmstate.Scalar{vmstate.NewIntScalar(5, false, 8)}, "main")
	require.NoError(t, err)
}

func Test_VM_HashNativeCall(t *testing.T) {
	prog := compile(t, `fn main(a: field, b: field) -> field { hash(a, b) }`)
	out, err := runEntry(t, prog, []vmstate.Scalar{
		vmstate.NewFieldScalar(big.NewInt(1)),
		vmstate.NewFieldScalar(big.NewInt(2)),
	}, "main")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.NotEqual(t, int64(0), out[0].Value.Sign())
}

func Test_VM_ToBitsFromBitsRoundTrip(t *testing.T) {
	prog := compile(t, `fn main(x: u8) -> u8 { from_bits(to_bits(x)) }`)
	out, err := runEntry(t, prog, []vmstate.Scalar{vmstate.NewIntScalar(0b10110101, false, 8)}, "main")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int64(0b10110101), out[0].Value.Int64())
}

func Test_VM_IfElseBranching(t *testing.T) {
	prog := compile(t, `fn main(x: u8) -> u8 { if x > 10 { 1 } else { 0 } }`)

	out, err := runEntry(t, prog, []vmstate.Scalar{vmstate.NewIntScalar(20, false, 8)}, "main")
	require.NoError(t, err)
	assert.Equal(t, int64(1), out[0].Value.Int64())

	out, err = runEntry(t, prog, []vmstate.Scalar{vmstate.NewIntScalar(2, false, 8)}, "main")
	require.NoError(t, err)
	assert.Equal(t, int64(0), out[0].Value.Int64())
}

func Test_VM_CompositeReturnValueIsNotTruncated(t *testing.T) {
	prog := compile(t, `fn main() -> [u8; 3] { [1, 2, 3] }`)
	out, err := runEntry(t, prog, nil, "main")
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{out[0].Value.Int64(), out[1].Value.Int64(), out[2].Value.Int64()})
}

func Test_VM_StructLiteralFieldsReadBack(t *testing.T) {
	prog := compile(t, `
		struct Point { x: u8, y: u8 }
		fn main() -> u8 {
			let p: Point = Point { x: 10, y: 20 };
			p.y
		}
	`)
	out, err := runEntry(t, prog, nil, "main")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int64(20), out[0].Value.Int64())
}

func Test_VM_MapStorageFieldGetContainsInsertRemove(t *testing.T) {
	prog := compile(t, `
		contract Ledger { balances: map[field]field }
		impl Ledger {
			fn deposit(self, k: field, v: field) { self.balances.insert(k, v); }
			fn balance_of(self, k: field) -> field { self.balances.get(k) }
			fn has(self, k: field) -> bool { self.balances.contains(k) }
			fn clear(self, k: field) { self.balances.remove(k); }
		}
	`)

	entryByName := func(name string) bytecode.EntryMetadata {
		for _, e := range prog.Entries {
			if e.Name == name {
				return e
			}
		}
		t.Fatalf("no such entry %q", name)
		return bytecode.EntryMetadata{}
	}

	v := New(prog, gadgets.Registry())

	v.eval.Push(vmstate.NewFieldScalar(big.NewInt(7)))
	v.eval.Push(vmstate.NewFieldScalar(big.NewInt(42)))
	_, err := v.Run(entryByName("Ledger::deposit"))
	require.NoError(t, err)

	v.eval.Push(vmstate.NewFieldScalar(big.NewInt(7)))
	out, err := v.Run(entryByName("Ledger::has"))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, out[0].IsTruthy())

	v.eval.Push(vmstate.NewFieldScalar(big.NewInt(7)))
	out, err = v.Run(entryByName("Ledger::balance_of"))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int64(42), out[0].Value.Int64())

	v.eval.Push(vmstate.NewFieldScalar(big.NewInt(7)))
	_, err = v.Run(entryByName("Ledger::clear"))
	require.NoError(t, err)

	v.eval.Push(vmstate.NewFieldScalar(big.NewInt(7)))
	out, err = v.Run(entryByName("Ledger::has"))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.False(t, out[0].IsTruthy())
}

// Test_VM_IfElseBothArmsWitnessDataStackSideEffects guards true dual-arm
// execution (spec.md §4.7/§9): both arms run a let binding into the same
// slot, and the post-EndIf value must match whichever arm the condition
// selects, for both witnessed conditions.
func Test_VM_IfElseBothArmsWitnessDataStackSideEffects(t *testing.T) {
	prog := compile(t, `fn main(x: u8) -> u8 {
		let mut s: u8 = 0;
		if x > 10 {
			s = 1;
		} else {
			s = 2;
		}
		s
	}`)

	out, err := runEntry(t, prog, []vmstate.Scalar{vmstate.NewIntScalar(20, false, 8)}, "main")
	require.NoError(t, err)
	assert.Equal(t, int64(1), out[0].Value.Int64())

	out, err = runEntry(t, prog, []vmstate.Scalar{vmstate.NewIntScalar(2, false, 8)}, "main")
	require.NoError(t, err)
	assert.Equal(t, int64(2), out[0].Value.Int64())
}

func Test_VM_RangeCheckOverflowRaisesValueOverflow(t *testing.T) {
	prog := bytecode.NewProgram(bytecode.KindCircuit)
	prog.DataStackPointer = 0
	prog.Instructions = []bytecode.Instruction{
		{Op: bytecode.OpPush, Int: 250, BitWidth: 8},
		{Op: bytecode.OpPush, Int: 250, BitWidth: 8},
		{Op: bytecode.OpAdd},
		{Op: bytecode.OpExit, Int: 1},
	}
	entry := bytecode.EntryMetadata{Address: 0, OutputSize: 1}

	v := New(prog, gadgets.Registry())
	_, err := v.Run(entry)
	require.Error(t, err)
}

func Test_VM_PopOnEmptyStackIsStructuredUnderflowError(t *testing.T) {
	prog := bytecode.NewProgram(bytecode.KindCircuit)
	prog.Instructions = []bytecode.Instruction{
		{Op: bytecode.OpPop},
	}
	entry := bytecode.EntryMetadata{Address: 0}

	v := New(prog, gadgets.Registry())
	_, err := v.Run(entry)
	require.Error(t, err)
}

func Test_VM_DivisionByZeroIsRuntimeError(t *testing.T) {
	prog := compile(t, `fn main(a: u8, b: u8) -> u8 { a / b }`)
	_, err := runEntry(t, prog, []vmstate.Scalar{
		vmstate.NewIntScalar(4, false, 8),
		vmstate.NewIntScalar(0, false, 8),
	}, "main")
	require.Error(t, err)
}

func Test_VM_UninitializedSlotReadIsMalformedBytecode(t *testing.T) {
	prog := bytecode.NewProgram(bytecode.KindCircuit)
	prog.DataStackPointer = 1
	prog.Instructions = []bytecode.Instruction{
		{Op: bytecode.OpLoad, Int: 0},
		{Op: bytecode.OpExit, Int: 1},
	}
	entry := bytecode.EntryMetadata{Address: 0, OutputSize: 1}

	v := New(prog, gadgets.Registry())
	_, err := v.Run(entry)
	require.Error(t, err)
}

func Test_VM_LoadStoreSequencePreservesElementOrder(t *testing.T) {
	prog := bytecode.NewProgram(bytecode.KindCircuit)
	prog.DataStackPointer = 3
	prog.Instructions = []bytecode.Instruction{
		{Op: bytecode.OpPush, Int: 1},
		{Op: bytecode.OpPush, Int: 2},
		{Op: bytecode.OpPush, Int: 3},
		{Op: bytecode.OpStoreSequence, Addr: 0, Int: 3},
		{Op: bytecode.OpLoadSequence, Addr: 0, Int: 3},
		{Op: bytecode.OpExit, Int: 3},
	}
	entry := bytecode.EntryMetadata{Address: 0, OutputSize: 3}

	v := New(prog, gadgets.Registry())
	out, err := v.Run(entry)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{out[0].Value.Int64(), out[1].Value.Int64(), out[2].Value.Int64()})
}
