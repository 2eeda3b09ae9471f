package vmstate

import (
	"github.com/dekarrin/zkcircuit/internal/source"
	"github.com/dekarrin/zkcircuit/internal/util"
	"github.com/dekarrin/zkcircuit/internal/zkerrors"
)

// EvalStack is the VM's expression-evaluation stack: plain LIFO pushes and
// pops of witnessed Scalars, built on the teacher's generic Stack.
type EvalStack struct {
	s util.Stack[Scalar]
}

func NewEvalStack() *EvalStack { return &EvalStack{} }

func (e *EvalStack) Push(v Scalar) { e.s.Push(v) }
func (e *EvalStack) Pop() Scalar    { return e.s.Pop() }
func (e *EvalStack) Peek() Scalar   { return e.s.Peek() }
func (e *EvalStack) Len() int       { return e.s.Len() }
func (e *EvalStack) Empty() bool    { return e.s.Empty() }

// Fork returns an independent copy of the stack's current contents, used
// when the VM enters an If/Else branch so each arm can be evaluated
// without disturbing the other. Loops do not fork.
func (e *EvalStack) Fork() *EvalStack {
	clone := make([]Scalar, e.s.Len())
	for i, v := range e.s.Of {
		clone[i] = v.Clone()
	}
	return &EvalStack{s: util.Stack[Scalar]{Of: clone}}
}

// Merge replaces this stack's contents with other's, the step that closes
// a fork once the VM has decided which branch's effects to keep (or, for
// an If with both arms witnessed during setup, after condition-multiplexing
// every slot between the two).
func (e *EvalStack) Merge(other *EvalStack) {
	e.s.Of = other.s.Of
}

// Mux multiplexes this stack (the "then" arm's result) against other (the
// "else" arm's result) slot by slot, per spec.md §9's Testable invariant #4:
// the data stack after EndIf must equal cond ? then : else, cell by cell,
// for both witnessed arms. The two arms must have left the same depth
// behind — a witnessed program never lets one arm grow or shrink the stack
// relative to the other — or the bytecode is malformed.
func (e *EvalStack) Mux(cond Scalar, other *EvalStack) (*EvalStack, error) {
	if e.s.Len() != other.s.Len() {
		return nil, zkerrors.New(zkerrors.KindMalformedBytecode, source.Location{},
			&zkerrors.MalformedBytecodeDetail{Kind: zkerrors.BranchStacksDoNotMatch},
			"branch arms left mismatched eval stack depths: %d vs %d", e.s.Len(), other.s.Len())
	}
	out := make([]Scalar, e.s.Len())
	for i := range out {
		out[i] = muxScalar(cond, e.s.Of[i], other.s.Of[i])
	}
	return &EvalStack{s: util.Stack[Scalar]{Of: out}}, nil
}

// DataSlot is one addressable cell of the data stack: either holding a
// value, or not yet written (spec.md §6's UninitializedStorageAccess).
type DataSlot struct {
	Value       Scalar
	Initialized bool
}

// DataStack is the VM's addressable local/parameter storage, indexed by
// the generator's VariableAddresses rather than pushed/popped positionally.
type DataStack struct {
	slots []DataSlot
}

func NewDataStack(size int) *DataStack {
	return &DataStack{slots: make([]DataSlot, size)}
}

func (d *DataStack) Get(addr int) (Scalar, bool) {
	if addr < 0 || addr >= len(d.slots) || !d.slots[addr].Initialized {
		return Scalar{}, false
	}
	return d.slots[addr].Value, true
}

func (d *DataStack) Set(addr int, v Scalar) {
	if addr >= len(d.slots) {
		grown := make([]DataSlot, addr+1)
		copy(grown, d.slots)
		d.slots = grown
	}
	d.slots[addr] = DataSlot{Value: v, Initialized: true}
}

// Fork returns an independent copy of every slot.
func (d *DataStack) Fork() *DataStack {
	clone := make([]DataSlot, len(d.slots))
	for i, s := range d.slots {
		if s.Initialized {
			clone[i] = DataSlot{Value: s.Value.Clone(), Initialized: true}
		}
	}
	return &DataStack{slots: clone}
}

func (d *DataStack) Merge(other *DataStack) {
	d.slots = other.slots
}

// Mux multiplexes this stack (the "then" arm) against other (the "else"
// arm) slot by slot. Slots either arm never initialized stay uninitialized;
// a slot only one arm wrote passes that arm's value through unconditionally
// under cond's complement not mattering, since the other arm's read of an
// uninitialized slot would itself be the error the bytecode should raise.
func (d *DataStack) Mux(cond Scalar, other *DataStack) *DataStack {
	n := len(d.slots)
	if len(other.slots) > n {
		n = len(other.slots)
	}
	out := make([]DataSlot, n)
	for i := 0; i < n; i++ {
		var then, els DataSlot
		if i < len(d.slots) {
			then = d.slots[i]
		}
		if i < len(other.slots) {
			els = other.slots[i]
		}
		switch {
		case then.Initialized && els.Initialized:
			out[i] = DataSlot{Value: muxScalar(cond, then.Value, els.Value), Initialized: true}
		case then.Initialized:
			out[i] = then
		case els.Initialized:
			out[i] = els
		}
	}
	return &DataStack{slots: out}
}

// muxScalar selects then when cond is truthy, else otherwise — the
// per-cell operation spec.md §9 describes as "multiplexed by the branch
// condition." Values are cloned so neither arm's fork is left aliased into
// the merged result.
func muxScalar(cond Scalar, then, els Scalar) Scalar {
	if cond.IsTruthy() {
		return then.Clone()
	}
	return els.Clone()
}

// ConditionStack tracks the ambient, AND-accumulated condition under which
// the instructions currently executing are witnessed, so a nested If's
// constraint is multiplied by every enclosing branch's condition
// (spec.md §6).
type ConditionStack struct {
	s util.Stack[Scalar]
}

func NewConditionStack() *ConditionStack { return &ConditionStack{} }

func (c *ConditionStack) Push(v Scalar) { c.s.Push(v) }
func (c *ConditionStack) Pop() Scalar    { return c.s.Pop() }
func (c *ConditionStack) Len() int       { return c.s.Len() }

// Ambient ANDs every condition currently on the stack, true (1) if empty.
func (c *ConditionStack) Ambient() bool {
	for _, v := range c.s.Of {
		if !v.IsTruthy() {
			return false
		}
	}
	return true
}

// Block is one entry of the frame stack's block list: either a Loop
// (tracking its current iteration bound) or a Branch. A Branch block
// captures the stacks as they stood just before the If (Base*) so the
// "else" arm (or, if there is no Else, EndIf itself) can rewind to the
// same starting point the "then" arm saw, and the stacks as they stood
// just after the "then" arm (Then*) so EndIf can multiplex the two arms'
// results by Cond.
type Block struct {
	IsLoop     bool
	LoopEnd    int
	BranchSeen bool

	Cond     Scalar
	BaseEval *EvalStack
	BaseData *DataStack
	ThenEval *EvalStack
	ThenData *DataStack
}

// Frame is one call frame: its return address and the nested
// loop/branch blocks currently open within it.
type Frame struct {
	ReturnAddress int
	Blocks        util.Stack[Block]
}

// FrameStack is the VM's call stack.
type FrameStack struct {
	s util.Stack[Frame]
}

func NewFrameStack() *FrameStack { return &FrameStack{} }

func (f *FrameStack) Push(fr Frame) { f.s.Push(fr) }
func (f *FrameStack) Pop() Frame    { return f.s.Pop() }
func (f *FrameStack) Peek() *Frame  { return &f.s.Of[f.s.Len()-1] }
func (f *FrameStack) Len() int      { return f.s.Len() }
