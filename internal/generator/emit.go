package generator

import (
	"github.com/dekarrin/zkcircuit/internal/ast"
	"github.com/dekarrin/zkcircuit/internal/bytecode"
	"github.com/dekarrin/zkcircuit/internal/gadgets"
	"github.com/dekarrin/zkcircuit/internal/semantic"
	"github.com/dekarrin/zkcircuit/internal/types"
)

// emitElement lowers one checked element, leaving its resulting value (if
// any) on top of the evaluation stack.
func (g *gen) emitElement(el semantic.Element) {
	g.markLocation(el.Location())
	switch e := el.(type) {
	case *semantic.Place:
		g.emitLoad(e)
	case *semantic.Value:
		g.emitValue(e)
	}
}

func (g *gen) emitValue(v *semantic.Value) {
	if v.ConstInt != nil {
		typ := scalarTypeOf(v.Typ)
		g.emit(bytecode.Instruction{Op: bytecode.OpPush, Int: v.ConstInt.Int64(), Signed: typ.signed, BitWidth: typ.bitWidth})
		return
	}
	if v.ConstIsBool {
		val := int64(0)
		if v.ConstBool {
			val = 1
		}
		g.emit(bytecode.Instruction{Op: bytecode.OpPush, Int: val})
		return
	}

	switch n := v.Node.(type) {
	case *ast.BlockExpr:
		g.emitBlockChildren(v)
		return
	case *ast.LetStmt:
		_ = n
		g.emitElement(v.Children[0])
		size := typeSize(v.Children[0].Type())
		slot := g.declareSlot(v.ItemID, size)
		if size <= 1 {
			g.emit(bytecode.Instruction{Op: bytecode.OpStore, Int: int64(slot)})
		} else {
			g.emit(bytecode.Instruction{Op: bytecode.OpStoreSequence, Addr: slot, Int: int64(size)})
		}
		return
	case *ast.BinaryExpr:
		if n.Op == ast.OpAssign {
			g.emitAssign(v)
			return
		}
		g.emitElement(v.Children[0])
		g.emitElement(v.Children[1])
		g.emit(bytecode.Instruction{Op: binaryOpcode(n.Op)})
		return
	case *ast.UnaryExpr:
		g.emitElement(v.Children[0])
		g.emit(bytecode.Instruction{Op: unaryOpcode(n.Op)})
		return
	case *ast.CastExpr:
		g.emitElement(v.Children[0])
		typ := scalarTypeOf(v.Typ)
		g.emit(bytecode.Instruction{Op: bytecode.OpCast, Signed: typ.signed, BitWidth: typ.bitWidth})
		return
	case *ast.RequireStmt:
		g.emitElement(v.Children[0])
		g.emit(bytecode.Instruction{Op: bytecode.OpNot})
		g.emit(bytecode.Instruction{Op: bytecode.OpCallNative, Int: gadgets.NativeAssertZero})
		return
	case *ast.IfExpr:
		g.emitIf(v, n)
		return
	case *ast.ForExpr:
		g.emitFor(v, n)
		return
	case *ast.CallExpr:
		if fa, ok := n.Callee.(*ast.FieldAccess); ok && g.emitMapMethodCall(v, fa) {
			return
		}
		if ident, ok := n.Callee.(*ast.Identifier); ok && g.emitBuiltinNative(v, ident.Name) {
			return
		}
		g.emitCall(v)
		return
	case *ast.DebugStmt:
		for _, c := range v.Children {
			g.emitElement(c)
			g.emit(bytecode.Instruction{Op: bytecode.OpPop})
		}
		return
	default:
		for _, c := range v.Children {
			g.emitElement(c)
		}
	}
}

func (g *gen) emitBlockChildren(v *semantic.Value) {
	for i, c := range v.Children {
		g.emitElement(c)
		last := i == len(v.Children)-1
		// A statement whose own type is unit (let, assignment, require,
		// debug, for) never leaves a residual on the eval stack, so there
		// is nothing to pop even when it's the block's trailing child.
		if c.Type().Equal(types.Unit{}) {
			continue
		}
		if !last {
			g.emit(bytecode.Instruction{Op: bytecode.OpPop})
		}
	}
}

func (g *gen) emitAssign(v *semantic.Value) {
	place, ok := v.Children[0].(*semantic.Place)
	if !ok {
		return
	}
	g.emitElement(v.Children[1])
	g.emitStore(place)
}

// emitBuiltinNative lowers a call to one of the stdlib native gadgets
// (hash/to_bits/from_bits), which the semantic analyzer resolves specially
// rather than through the ordinary function-call type-check (checkCall's
// checkBuiltinCall). It reports false for any other callee name so the
// caller falls through to an ordinary user-function call.
func (g *gen) emitBuiltinNative(v *semantic.Value, name string) bool {
	switch name {
	case "hash":
		g.emitElement(v.Children[0])
		g.emitElement(v.Children[1])
		g.emit(bytecode.Instruction{Op: bytecode.OpCallNative, Int: gadgets.NativeSha256})
		return true
	case "to_bits":
		g.emitElement(v.Children[0])
		shape := scalarTypeOf(v.Children[0].Type())
		g.emit(bytecode.Instruction{Op: bytecode.OpCallNative, Int: gadgets.NativeToBits, BitWidth: shape.bitWidth})
		return true
	case "from_bits":
		g.emitElement(v.Children[0])
		arr, _ := v.Children[0].Type().(types.Array)
		shape := scalarTypeOf(v.Typ)
		g.emit(bytecode.Instruction{Op: bytecode.OpCallNative, Int: gadgets.NativeFromBits, BitWidth: arr.Size, Signed: shape.signed})
		return true
	default:
		return false
	}
}

// emitMapMethodCall lowers a get/contains/insert/remove call on a map-typed
// storage field to its dedicated opcode. The semantic analyzer (see
// checkMapMethodCall) leaves the field's *semantic.Place as Children[0], and
// storagePath's own base case means a self-rooted field's Place.Field is
// already the exact name the VM's per-field Merkle tree is keyed by, so no
// offset resolution is needed here the way emitLoad/emitStore require for
// flat fields.
func (g *gen) emitMapMethodCall(v *semantic.Value, fa *ast.FieldAccess) bool {
	switch fa.Field {
	case "get", "contains", "insert", "remove":
	default:
		return false
	}
	place, ok := v.Children[0].(*semantic.Place)
	if !ok || place.Memory != semantic.MemContractStorage {
		return false
	}
	name := place.Field

	switch fa.Field {
	case "get":
		g.emitElement(v.Children[1])
		g.emit(bytecode.Instruction{Op: bytecode.OpMapGet, Str: name})
	case "contains":
		g.emitElement(v.Children[1])
		g.emit(bytecode.Instruction{Op: bytecode.OpMapContains, Str: name})
	case "insert":
		g.emitElement(v.Children[1])
		g.emitElement(v.Children[2])
		g.emit(bytecode.Instruction{Op: bytecode.OpMapInsert, Str: name})
	case "remove":
		g.emitElement(v.Children[1])
		g.emit(bytecode.Instruction{Op: bytecode.OpMapRemove, Str: name})
	}
	return true
}

func (g *gen) emitIf(v *semantic.Value, n *ast.IfExpr) {
	g.emitElement(v.Children[0])
	ifPC := g.emit(bytecode.Instruction{Op: bytecode.OpIf})

	g.emitElement(v.Children[1])

	var elsePC int
	hasElse := n.Else != nil
	if hasElse {
		elsePC = g.emit(bytecode.Instruction{Op: bytecode.OpElse})
	}

	thenEnd := len(g.out.Instructions)
	g.out.Instructions[ifPC].Addr = thenEnd

	if hasElse {
		g.emitElement(v.Children[2])
		endPC := len(g.out.Instructions)
		g.out.Instructions[elsePC].Addr = endPC
	}

	g.emit(bytecode.Instruction{Op: bytecode.OpEndIf})
}

func (g *gen) emitFor(v *semantic.Value, n *ast.ForExpr) {
	// Loop bounds are required to be compile-time constants (spec.md
	// §4.3), so the generator unrolls the trip count into LoopBegin's
	// operand rather than re-evaluating the range expression each pass.
	from, _ := v.Children[0].(*semantic.Value)
	to, _ := v.Children[1].(*semantic.Value)
	trips := int64(0)
	if from != nil && to != nil && from.ConstInt != nil && to.ConstInt != nil {
		trips = to.ConstInt.Int64() - from.ConstInt.Int64()
		if n.Inclusive {
			trips++
		}
	}
	// LoopEnd only jumps back while the count stays positive, so once
	// LoopBegin is reached the body runs at least once; a loop with no
	// trips is therefore not emitted at all.
	if trips <= 0 {
		return
	}

	g.emit(bytecode.Instruction{Op: bytecode.OpLoopBegin, Int: trips})
	bodyStart := len(g.out.Instructions)
	g.emitElement(v.Children[2])
	g.emit(bytecode.Instruction{Op: bytecode.OpLoopEnd, Addr: bodyStart})
}

func (g *gen) emitCall(v *semantic.Value) {
	for _, c := range v.Children[1:] {
		g.emitElement(c)
	}

	callee, _ := v.Children[0].(*semantic.Value)
	name := calleeName(callee)
	pc := g.emit(bytecode.Instruction{Op: bytecode.OpCall})
	g.callSites[pc] = name
}

func calleeName(callee *semantic.Value) string {
	if callee == nil {
		return ""
	}
	if id, ok := callee.Node.(*ast.Identifier); ok {
		return id.Name
	}
	return ""
}

type scalarShape struct {
	signed   bool
	bitWidth int
}

func scalarTypeOf(t types.ITyped) scalarShape {
	if it, ok := types.IsInteger(t); ok {
		return scalarShape{signed: it.Signed, bitWidth: it.BitWidth}
	}
	return scalarShape{}
}

func binaryOpcode(op ast.BinaryOp) bytecode.Opcode {
	switch op {
	case ast.OpAdd:
		return bytecode.OpAdd
	case ast.OpSub:
		return bytecode.OpSub
	case ast.OpMul:
		return bytecode.OpMul
	case ast.OpDiv:
		return bytecode.OpDiv
	case ast.OpRem:
		return bytecode.OpRem
	case ast.OpEq:
		return bytecode.OpEq
	case ast.OpNe:
		return bytecode.OpNe
	case ast.OpLt:
		return bytecode.OpLt
	case ast.OpLe:
		return bytecode.OpLe
	case ast.OpGt:
		return bytecode.OpGt
	case ast.OpGe:
		return bytecode.OpGe
	case ast.OpAnd:
		return bytecode.OpAnd
	case ast.OpOr:
		return bytecode.OpOr
	case ast.OpXor:
		return bytecode.OpXor
	case ast.OpBitAnd:
		return bytecode.OpBitAnd
	case ast.OpBitOr:
		return bytecode.OpBitOr
	case ast.OpBitXor:
		return bytecode.OpBitXor
	case ast.OpShl:
		return bytecode.OpShl
	case ast.OpShr:
		return bytecode.OpShr
	default:
		return bytecode.OpAdd
	}
}

func unaryOpcode(op ast.UnaryOp) bytecode.Opcode {
	switch op {
	case ast.OpNeg:
		return bytecode.OpNeg
	case ast.OpNot:
		return bytecode.OpNot
	case ast.OpBitNot:
		return bytecode.OpBitNot
	default:
		return bytecode.OpNot
	}
}
