package generator

import (
	"github.com/dekarrin/zkcircuit/internal/bytecode"
	"github.com/dekarrin/zkcircuit/internal/semantic"
)

// placeAddr is the compile-time-resolved address of a Place: either a run
// of contiguous stack data slots, or a contract-storage field name plus a
// constant sub-offset into it. ok is false for a place that involves a
// runtime-only index, which this toolchain's flat slot/offset addressing
// can't reach: the bytecode defines LoadByIndex/StoreByIndex, but the
// generator never emits them and the VM does not execute them.
type placeAddr struct {
	ok      bool
	storage bool
	field   string
	offset  int64
	slot    int
}

func (g *gen) resolvePlace(p *semantic.Place) placeAddr {
	if p.Memory == semantic.MemContractStorage {
		field, offset, ok := g.storagePath(p)
		return placeAddr{ok: ok, storage: true, field: field, offset: offset}
	}
	slot, ok := g.stackSlot(p)
	return placeAddr{ok: ok, slot: slot}
}

func (g *gen) stackSlot(p *semantic.Place) (int, bool) {
	switch {
	case p.Base == nil:
		return g.slotFor(p.ItemID), true
	case p.Field != "":
		base, ok := p.Base.(*semantic.Place)
		if !ok {
			return 0, false
		}
		baseSlot, ok := g.stackSlot(base)
		if !ok {
			return 0, false
		}
		off, ok := fieldOffsetOf(base.Typ, p.Field)
		if !ok {
			return 0, false
		}
		return baseSlot + off, true
	case p.Index != nil:
		base, ok := p.Base.(*semantic.Place)
		if !ok {
			return 0, false
		}
		baseSlot, ok := g.stackSlot(base)
		if !ok {
			return 0, false
		}
		idx, ok := constIntOf(p.Index)
		if !ok {
			return 0, false
		}
		return baseSlot + int(idx)*typeSize(elementTypeOf(base.Typ)), true
	default:
		return 0, false
	}
}

// storagePath walks p's Base chain to the bare contract-storage root (the
// place a self/Self-implicit expression checks to), returning the
// top-level storage field name it hangs off of and a flat sub-offset for
// any field/index access nested under that field.
func (g *gen) storagePath(p *semantic.Place) (string, int64, bool) {
	switch {
	case p.Field != "":
		base, ok := p.Base.(*semantic.Place)
		if !ok {
			return "", 0, false
		}
		if base.Base == nil && base.Field == "" && base.Index == nil {
			return p.Field, 0, true
		}
		rootField, baseOff, ok := g.storagePath(base)
		if !ok {
			return "", 0, false
		}
		off, ok := fieldOffsetOf(base.Typ, p.Field)
		if !ok {
			return "", 0, false
		}
		return rootField, baseOff + int64(off), true
	case p.Index != nil:
		base, ok := p.Base.(*semantic.Place)
		if !ok {
			return "", 0, false
		}
		rootField, baseOff, ok := g.storagePath(base)
		if !ok {
			return "", 0, false
		}
		idx, ok := constIntOf(p.Index)
		if !ok {
			return "", 0, false
		}
		return rootField, baseOff + idx*int64(typeSize(elementTypeOf(base.Typ))), true
	default:
		return "", 0, false
	}
}

func constIntOf(el semantic.Element) (int64, bool) {
	v, ok := el.(*semantic.Value)
	if !ok || v.ConstInt == nil {
		return 0, false
	}
	return v.ConstInt.Int64(), true
}

// emitLoad pushes the value(s) addressed by p onto the evaluation stack, in
// the same element-order a composite literal's own lowering uses.
func (g *gen) emitLoad(p *semantic.Place) {
	addr := g.resolvePlace(p)
	size := typeSize(p.Typ)

	if !addr.ok {
		if p.Base != nil {
			g.emitElement(p.Base)
			g.emit(bytecode.Instruction{Op: bytecode.OpPop})
		}
		g.emit(bytecode.Instruction{Op: bytecode.OpPush})
		return
	}

	if addr.storage {
		if size <= 1 {
			g.emit(bytecode.Instruction{Op: bytecode.OpStorageLoad, Str: addr.field, Int: addr.offset})
			return
		}
		for i := 0; i < size; i++ {
			g.emit(bytecode.Instruction{Op: bytecode.OpStorageLoad, Str: addr.field, Int: addr.offset + int64(i)})
		}
		return
	}

	if size <= 1 {
		g.emit(bytecode.Instruction{Op: bytecode.OpLoad, Int: int64(addr.slot)})
		return
	}
	g.emit(bytecode.Instruction{Op: bytecode.OpLoadSequence, Addr: addr.slot, Int: int64(size)})
}

// emitStore pops the value(s) already pushed on top of the evaluation stack
// (in emitLoad's order) and writes them to the address p resolves to.
func (g *gen) emitStore(p *semantic.Place) {
	addr := g.resolvePlace(p)
	size := typeSize(p.Typ)

	if !addr.ok {
		g.emit(bytecode.Instruction{Op: bytecode.OpPop})
		return
	}

	if addr.storage {
		if size <= 1 {
			g.emit(bytecode.Instruction{Op: bytecode.OpStorageStore, Str: addr.field, Int: addr.offset})
			return
		}
		for i := size - 1; i >= 0; i-- {
			g.emit(bytecode.Instruction{Op: bytecode.OpStorageStore, Str: addr.field, Int: addr.offset + int64(i)})
		}
		return
	}

	if size <= 1 {
		g.emit(bytecode.Instruction{Op: bytecode.OpStore, Int: int64(addr.slot)})
		return
	}
	g.emit(bytecode.Instruction{Op: bytecode.OpStoreSequence, Addr: addr.slot, Int: int64(size)})
}
