package generator

import (
	"testing"

	"github.com/dekarrin/zkcircuit/internal/bytecode"
	"github.com/dekarrin/zkcircuit/internal/gadgets"
	"github.com/dekarrin/zkcircuit/internal/lexer"
	"github.com/dekarrin/zkcircuit/internal/parser"
	"github.com/dekarrin/zkcircuit/internal/semantic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateSource(t *testing.T, src string) (*bytecode.Program, error) {
	t.Helper()
	lx := lexer.New(t.Name(), src)
	stream := lexer.NewStream(lx)
	f, err := parser.ParseFile(t.Name(), stream)
	require.NoError(t, err)

	prog, errs := semantic.Analyze(f)
	require.Empty(t, errs)

	return Generate(prog, bytecode.KindCircuit)
}

func countOp(instrs []bytecode.Instruction, op bytecode.Opcode) int {
	n := 0
	for _, ins := range instrs {
		if ins.Op == op {
			n++
		}
	}
	return n
}

func Test_Generate_SimpleArithmetic(t *testing.T) {
	prog, err := generateSource(t, `fn main(a: u8, b: u8) -> u8 { a + b }`)
	require.NoError(t, err)
	require.Len(t, prog.Entries, 1)
	assert.Equal(t, "main", prog.Entries[0].Name)
	assert.Equal(t, 1, countOp(prog.Instructions, bytecode.OpAdd))
}

// Test_Generate_EntryHasCallExitPrologue guards against Run-ing straight
// into a function body, whose trailing Return would walk off the end of
// the instruction stream instead of cleanly producing outputs.
func Test_Generate_EntryHasCallExitPrologue(t *testing.T) {
	prog, err := generateSource(t, `fn main(a: u8, b: u8) -> u8 { a + b }`)
	require.NoError(t, err)
	require.Len(t, prog.Entries, 1)

	entryAddr := prog.Entries[0].Address
	require.Less(t, entryAddr+1, len(prog.Instructions))
	assert.Equal(t, bytecode.OpCall, prog.Instructions[entryAddr].Op)
	assert.Equal(t, bytecode.OpExit, prog.Instructions[entryAddr+1].Op)
	assert.Equal(t, int64(1), prog.Instructions[entryAddr+1].Int)
	assert.Equal(t, prog.FunctionAddresses["main"], prog.Instructions[entryAddr].Addr)
}

// Test_Generate_LoopJumpsToBodyStart guards against the regression where
// LoopEnd's jump target pointed at LoopBegin itself: that would re-push a
// fresh Block with the original trip count on every iteration instead of
// decrementing the one already on the frame's block stack.
func Test_Generate_LoopJumpsToBodyStart(t *testing.T) {
	prog, err := generateSource(t, `fn main() -> u8 {
		let mut s: u8 = 0;
		for i in 0..5 { s = s + i as u8; }
		s
	}`)
	require.NoError(t, err)

	var beginPC, endPC int
	for i, ins := range prog.Instructions {
		if ins.Op == bytecode.OpLoopBegin {
			beginPC = i
		}
		if ins.Op == bytecode.OpLoopEnd {
			endPC = i
		}
	}
	require.NotZero(t, endPC)
	assert.Equal(t, int64(5), prog.Instructions[beginPC].Int)
	assert.Greater(t, prog.Instructions[endPC].Addr, beginPC, "loop-end must jump into the body, not back to loop_begin")
	assert.NotEqual(t, beginPC, prog.Instructions[endPC].Addr)
}

func Test_Generate_ConstantArrayIndexResolvesToFlatSlot(t *testing.T) {
	prog, err := generateSource(t, `fn main() -> u8 {
		let arr: [u8; 3] = [1, 2, 3];
		arr[1]
	}`)
	require.NoError(t, err)
	// A resolved constant-index load becomes a single OpLoad, not a
	// push-zero placeholder.
	assert.Equal(t, 0, countOp(prog.Instructions, bytecode.OpPush)-3, "expected exactly the 3 literal pushes for the array plus none for a stub")
	require.GreaterOrEqual(t, countOp(prog.Instructions, bytecode.OpLoad), 1)
}

func Test_Generate_ContractFieldAccessUsesStorageOps(t *testing.T) {
	prog, err := generateSource(t, `
		contract Acct { balance: u248 }
		impl Acct {
			fn get(self) -> u248 { self.balance }
			fn set(self, v: u248) { self.balance = v; }
		}
	`)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, countOp(prog.Instructions, bytecode.OpStorageLoad), 1)
	assert.GreaterOrEqual(t, countOp(prog.Instructions, bytecode.OpStorageStore), 1)

	for _, ins := range prog.Instructions {
		if ins.Op == bytecode.OpStorageLoad || ins.Op == bytecode.OpStorageStore {
			assert.Equal(t, "balance", ins.Str)
		}
	}
}

func Test_Generate_MapFieldMethodsUseDedicatedOpcodes(t *testing.T) {
	prog, err := generateSource(t, `
		contract Ledger { balances: map[field]field }
		impl Ledger {
			fn deposit(self, k: field, v: field) { self.balances.insert(k, v); }
			fn balance_of(self, k: field) -> field { self.balances.get(k) }
			fn has(self, k: field) -> bool { self.balances.contains(k) }
			fn clear(self, k: field) { self.balances.remove(k); }
		}
	`)
	require.NoError(t, err)
	assert.Equal(t, 1, countOp(prog.Instructions, bytecode.OpMapInsert))
	assert.Equal(t, 1, countOp(prog.Instructions, bytecode.OpMapGet))
	assert.Equal(t, 1, countOp(prog.Instructions, bytecode.OpMapContains))
	assert.Equal(t, 1, countOp(prog.Instructions, bytecode.OpMapRemove))

	for _, ins := range prog.Instructions {
		switch ins.Op {
		case bytecode.OpMapGet, bytecode.OpMapContains, bytecode.OpMapInsert, bytecode.OpMapRemove:
			assert.Equal(t, "balances", ins.Str)
		}
	}
}

func Test_Generate_RequireLowersToAssertZeroNative(t *testing.T) {
	prog, err := generateSource(t, `fn main(x: u8) { require(x > 0, "must be positive"); }`)
	require.NoError(t, err)

	found := false
	for _, ins := range prog.Instructions {
		if ins.Op == bytecode.OpCallNative && ins.Int == gadgets.NativeAssertZero {
			found = true
		}
	}
	assert.True(t, found, "require must lower to an assert_zero native call")
}

func Test_Generate_HashBuiltinEmitsNativeCall(t *testing.T) {
	prog, err := generateSource(t, `fn main(a: field, b: field) -> field { hash(a, b) }`)
	require.NoError(t, err)

	found := false
	for _, ins := range prog.Instructions {
		if ins.Op == bytecode.OpCallNative && ins.Int == gadgets.NativeSha256 {
			found = true
		}
	}
	assert.True(t, found)
}

func Test_Generate_ToBitsFromBitsRoundTripEmitsNatives(t *testing.T) {
	prog, err := generateSource(t, `fn main(x: u8) -> u8 { from_bits(to_bits(x)) }`)
	require.NoError(t, err)

	var toBits, fromBits *bytecode.Instruction
	for i, ins := range prog.Instructions {
		if ins.Op == bytecode.OpCallNative && ins.Int == gadgets.NativeToBits {
			toBits = &prog.Instructions[i]
		}
		if ins.Op == bytecode.OpCallNative && ins.Int == gadgets.NativeFromBits {
			fromBits = &prog.Instructions[i]
		}
	}
	require.NotNil(t, toBits)
	require.NotNil(t, fromBits)
	assert.Equal(t, 8, toBits.BitWidth)
	assert.Equal(t, 8, fromBits.BitWidth)
}

// Test_Generate_UnitStatementsEmitNoSpuriousPop guards a regression where
// a block ending in (or containing) a unit-typed statement — let, plain
// assignment, require — picked up an extra OpPop that nothing had pushed,
// underflowing the eval stack at run time.
func Test_Generate_UnitStatementsEmitNoSpuriousPop(t *testing.T) {
	prog, err := generateSource(t, `fn main() -> u8 {
		let mut s: u8 = 0;
		s = s + 1;
		s
	}`)
	require.NoError(t, err)
	assert.Equal(t, 0, countOp(prog.Instructions, bytecode.OpPop))
}

// Test_Generate_CompositeReturnExitsWithFullSize guards against an Exit
// sized to 1 regardless of the return type's actual flat width, which
// would silently truncate an array/struct return to its first element.
func Test_Generate_CompositeReturnExitsWithFullSize(t *testing.T) {
	prog, err := generateSource(t, `fn main() -> [u8; 3] { [1, 2, 3] }`)
	require.NoError(t, err)
	require.Len(t, prog.Entries, 1)
	assert.Equal(t, 3, prog.Entries[0].OutputSize)

	entryAddr := prog.Entries[0].Address
	assert.Equal(t, int64(3), prog.Instructions[entryAddr+1].Int)
}

// Test_Generate_StructLiteralFieldOrderMatchesDeclaration guards the flat
// offset a field access resolves to against the type's declared field
// order.
func Test_Generate_StructLiteralFieldOrderMatchesDeclaration(t *testing.T) {
	prog, err := generateSource(t, `
		struct Point { x: u8, y: u8 }
		fn main() -> u8 {
			let p: Point = Point { x: 10, y: 20 };
			p.y
		}
	`)
	require.NoError(t, err)

	// p.y is declared second, so it must resolve to base+1.
	var storeSeq *bytecode.Instruction
	for i, ins := range prog.Instructions {
		if ins.Op == bytecode.OpStoreSequence {
			storeSeq = &prog.Instructions[i]
		}
	}
	require.NotNil(t, storeSeq)

	var load *bytecode.Instruction
	for i, ins := range prog.Instructions {
		if ins.Op == bytecode.OpLoad {
			load = &prog.Instructions[i]
		}
	}
	require.NotNil(t, load)
	assert.Equal(t, int64(storeSeq.Addr)+1, load.Int)
}

// Test_Generate_StructLiteralOutOfOrderFieldsIsSemanticError guards
// scenario S5: a literal whose fields are present with correct types but
// written out of declared order must be rejected, not silently reordered.
func Test_Generate_StructLiteralOutOfOrderFieldsIsSemanticError(t *testing.T) {
	lx := lexer.New(t.Name(), `
		struct Point { x: u8, y: u8 }
		fn main() -> u8 {
			let p: Point = Point { y: 20, x: 10 };
			p.y
		}
	`)
	stream := lexer.NewStream(lx)
	f, err := parser.ParseFile(t.Name(), stream)
	require.NoError(t, err)

	_, errs := semantic.Analyze(f)
	require.NotEmpty(t, errs, "fields written out of declared order must be a semantic error")
}

// Test_Generate_EmitsDebugMarkers guards scenario S1: a function body
// must open with a FileMarker and FunctionMarker before any of its
// arithmetic lowers, so a trace through the entry's Call can recover
// source position.
func Test_Generate_EmitsDebugMarkers(t *testing.T) {
	prog, err := generateSource(t, `fn main(a: u8, b: u8) -> u8 { a + b }`)
	require.NoError(t, err)

	fnAddr, ok := prog.FunctionAddresses["main"]
	require.True(t, ok)

	require.Less(t, fnAddr+1, len(prog.Instructions))

	// Parameters are stored back into their slots before any marker, so
	// the markers appear somewhere before the body's Add, never after.
	var addPC int = -1
	var sawFile, sawFunction bool
	var functionName string
	for i := fnAddr; i < len(prog.Instructions); i++ {
		ins := prog.Instructions[i]
		if ins.Op == bytecode.OpAdd {
			addPC = i
			break
		}
		if ins.Op == bytecode.OpFileMarker {
			sawFile = true
		}
		if ins.Op == bytecode.OpFunctionMarker {
			sawFunction = true
			functionName = ins.Str
		}
	}
	require.NotEqual(t, -1, addPC, "expected to find the body's Add instruction")
	assert.True(t, sawFile, "expected a FileMarker before the function body's arithmetic")
	assert.True(t, sawFunction, "expected a FunctionMarker before the function body's arithmetic")
	assert.Equal(t, "main", functionName)
}

func Test_Generate_UnresolvedCallIsAnError(t *testing.T) {
	lx := lexer.New(t.Name(), `fn main() -> u8 { missing_fn() }`)
	stream := lexer.NewStream(lx)
	f, err := parser.ParseFile(t.Name(), stream)
	require.NoError(t, err)

	prog, errs := semantic.Analyze(f)
	require.NotEmpty(t, errs, "calling an undeclared function is itself a semantic error")
	_ = prog
}
