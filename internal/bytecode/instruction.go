// Package bytecode defines the instruction set and Program container the
// generator emits and the VM executes, along with deterministic binary
// encoding via github.com/dekarrin/rezi (spec.md §8 invariant I1: two
// compiles of the same source produce byte-identical bytecode).
package bytecode

import "fmt"

// Opcode identifies one instruction. Values are stable across versions of
// this package since they appear in the binary encoding.
type Opcode int

const (
	// Stack/memory
	OpPush Opcode = iota
	OpPop
	OpCopy
	OpSlice
	OpLoad
	OpLoadSequence
	OpLoadByIndex
	OpStore
	OpStoreSequence
	OpStoreByIndex

	// Arithmetic
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpRem
	OpNeg

	// Comparison
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe

	// Boolean
	OpNot
	OpAnd
	OpOr
	OpXor

	// Bitwise
	OpBitAnd
	OpBitOr
	OpBitXor
	OpBitNot
	OpShl
	OpShr

	// Casting
	OpCast

	// Control flow
	OpIf
	OpElse
	OpEndIf
	OpLoopBegin
	OpLoopEnd
	OpCall
	OpReturn
	OpExit

	// Contract storage
	OpStorageLoad
	OpStorageStore

	// Map-typed contract storage fields
	OpMapGet
	OpMapContains
	OpMapInsert
	OpMapRemove

	// Stdlib / native gadgets
	OpCallNative

	// Debug markers
	OpFileMarker
	OpFunctionMarker
	OpLineMarker
	OpColumnMarker
)

func (o Opcode) String() string {
	names := [...]string{
		"push", "pop", "copy", "slice", "load", "load_sequence", "load_by_index",
		"store", "store_sequence", "store_by_index",
		"add", "sub", "mul", "div", "rem", "neg",
		"eq", "ne", "lt", "le", "gt", "ge",
		"not", "and", "or", "xor",
		"bit_and", "bit_or", "bit_xor", "bit_not", "shl", "shr",
		"cast",
		"if", "else", "end_if", "loop_begin", "loop_end", "call", "return", "exit",
		"storage_load", "storage_store",
		"map_get", "map_contains", "map_insert", "map_remove",
		"call_native",
		"file_marker", "function_marker", "line_marker", "column_marker",
	}
	if int(o) < 0 || int(o) >= len(names) {
		return fmt.Sprintf("opcode(%d)", o)
	}
	return names[o]
}

// Instruction is one decoded bytecode instruction. Operand fields are
// interpreted according to Op; unused fields are left at their zero value,
// which keeps the rezi encoding of every instruction fixed-shape.
type Instruction struct {
	Op Opcode

	// Int is the generic integer operand: a literal value for Push, a data
	// slot for Load/Store, an element count for LoadSequence/StoreSequence
	// and Exit, a trip count for LoopBegin, a field offset for
	// StorageLoad/StorageStore, a native-call id for CallNative, or a source
	// line (LineMarker) / column (ColumnMarker).
	Int int64

	// Addr is a resolved program counter: the callee for Call (after the
	// function_addresses patch pass), the end of the arm for If/Else, and
	// the first body instruction for LoopEnd. LoadSequence/StoreSequence use
	// it as their base data slot instead.
	Addr int

	// Str carries a marker's file path (FileMarker), function name
	// (FunctionMarker), or a storage field name (StorageLoad/StorageStore,
	// MapGet/MapContains/MapInsert/MapRemove).
	Str string

	// Signed/BitWidth give the integer type of a Push literal or a Cast
	// target, and the bit width of a ToBits/FromBits CallNative.
	// Arithmetic and comparison instructions carry no type here; the VM
	// takes it from the operand scalars.
	Signed   bool
	BitWidth int
}
