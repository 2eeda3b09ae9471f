// Package generator lowers a checked semantic.Program into a
// bytecode.Program: a flat instruction stream, a function-address table
// resolved in a second pass (Call operands start as placeholders keyed by
// function name, since a callee's address isn't known until every
// function before it has been emitted), and per-entry Call/Exit framing
// (spec.md §5's description of an entry point as a prologue Call into the
// shared body plus a trailing Exit).
package generator

import (
	"sort"

	"github.com/dekarrin/zkcircuit/internal/bytecode"
	"github.com/dekarrin/zkcircuit/internal/semantic"
	"github.com/dekarrin/zkcircuit/internal/source"
	"github.com/dekarrin/zkcircuit/internal/types"
)

// Generate lowers prog into a ready-to-run bytecode.Program.
func Generate(prog *semantic.Program, kind bytecode.Kind) (*bytecode.Program, error) {
	g := &gen{
		out:       bytecode.NewProgram(kind),
		callSites: map[int]string{},
		lastFile:  -1,
	}

	for _, name := range sortedNames(prog.Contracts) {
		ct := prog.Contracts[name]
		fields := make([]string, len(ct.Fields))
		for i, f := range ct.Fields {
			fields[i] = f.Name
		}
		g.out.ContractStorageFields[name] = fields
	}

	for _, fn := range prog.Functions {
		g.emitFunction(fn)
	}

	// Second pass: patch every Call's placeholder address now that all
	// function bodies (and thus their start addresses) are known.
	for pc, name := range g.callSites {
		addr, ok := g.out.FunctionAddresses[name]
		if !ok {
			return nil, unresolvedCall(name)
		}
		ins := g.out.Instructions[pc]
		ins.Addr = addr
		g.out.Instructions[pc] = ins
	}

	g.out.DataStackPointer = g.nextSlot

	// Every function, free or a contract method, gets its own entry
	// prologue: a Call into the shared body followed by an Exit sized to
	// its return value, so VM.Run can terminate cleanly instead of
	// Return-ing off the end of the instruction stream into the sentinel
	// frame it starts with. A contract method's self receiver never
	// occupies a stack slot (it resolves directly to a storage field, see
	// place.go), so it contributes nothing to InputSize.
	for _, fn := range prog.Functions {
		name := fn.Name
		if fn.Qualifier != "" {
			name = fn.Qualifier + "::" + fn.Name
		}
		fnAddr := g.out.FunctionAddresses[name]
		entryAddr := len(g.out.Instructions)
		outSize := outputSize(fn.Sig.ReturnType)
		g.emit(bytecode.Instruction{Op: bytecode.OpCall, Addr: fnAddr})
		g.emit(bytecode.Instruction{Op: bytecode.OpExit, Int: int64(outSize)})
		g.out.Entries = append(g.out.Entries, bytecode.EntryMetadata{
			Name: name, Address: entryAddr,
			InputSize:   len(fn.Sig.Params),
			OutputSize:  outSize,
			IsContract:  fn.Qualifier != "",
			ContractTag: fn.Qualifier,
		})
	}

	return g.out, nil
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func outputSize(t types.ITyped) int {
	if t == nil || t.Equal(types.Unit{}) {
		return 0
	}
	return typeSize(t)
}

type gen struct {
	out       *bytecode.Program
	callSites map[int]string // pc of each Call instruction -> callee name
	nextSlot  int

	// lastFile/lastFunc/lastLine/lastCol track the most recently emitted
	// debug marker, so emitElement only emits a fresh one when the
	// checked tree's position actually moved (spec.md §4.4).
	lastFile int
	lastFunc string
	lastLine int
	lastCol  int
}

func (g *gen) emit(ins bytecode.Instruction) int {
	g.out.Instructions = append(g.out.Instructions, ins)
	return len(g.out.Instructions) - 1
}

// markLocation emits whichever of FileMarker/LineMarker/ColumnMarker have
// changed since the last call, per spec.md §4.4's "insert on location
// change" rule. A zero Location (synthetic nodes) is left unmarked.
func (g *gen) markLocation(loc source.Location) {
	if !loc.IsSet() {
		return
	}
	if loc.FileIndex != g.lastFile {
		g.emit(bytecode.Instruction{Op: bytecode.OpFileMarker, Str: source.Global().Path(loc.FileIndex)})
		g.lastFile = loc.FileIndex
		g.lastLine = 0
		g.lastCol = 0
	}
	if loc.Line != g.lastLine {
		g.emit(bytecode.Instruction{Op: bytecode.OpLineMarker, Int: int64(loc.Line)})
		g.lastLine = loc.Line
		g.lastCol = 0
	}
	if loc.Column != g.lastCol {
		g.emit(bytecode.Instruction{Op: bytecode.OpColumnMarker, Int: int64(loc.Column)})
		g.lastCol = loc.Column
	}
}

// markFunction emits a FunctionMarker the first time name is entered (or
// re-entered after another function's body has been emitted in between).
func (g *gen) markFunction(name string) {
	if name == g.lastFunc {
		return
	}
	g.emit(bytecode.Instruction{Op: bytecode.OpFunctionMarker, Str: name})
	g.lastFunc = name
}

func (g *gen) emitFunction(fn *semantic.CheckedFn) {
	name := fn.Name
	if fn.Qualifier != "" {
		name = fn.Qualifier + "::" + fn.Name
	}
	addr := len(g.out.Instructions)
	g.out.FunctionAddresses[name] = addr

	// Arguments are pushed by the caller in declaration order, so the last
	// parameter ends up on top of the stack; store them back into their
	// slots in reverse to match.
	for i := len(fn.Params) - 1; i >= 0; i-- {
		p := fn.Params[i]
		size := typeSize(p.Type)
		slot := g.declareSlot(p.ID, size)
		if size <= 1 {
			g.emit(bytecode.Instruction{Op: bytecode.OpStore, Int: int64(slot)})
		} else {
			g.emit(bytecode.Instruction{Op: bytecode.OpStoreSequence, Addr: slot, Int: int64(size)})
		}
	}

	g.markLocation(fn.Body.Location())
	g.markFunction(name)
	g.emitElement(fn.Body)
	g.emit(bytecode.Instruction{Op: bytecode.OpReturn})
}

// declareSlot reserves size contiguous data-stack slots for scope item id
// the first time it's seen, returning the base slot of that reservation (or
// the existing one on a repeat declaration).
func (g *gen) declareSlot(id uint64, size int) int {
	if slot, ok := g.out.VariableAddresses[id]; ok {
		return slot
	}
	if size < 1 {
		size = 1
	}
	slot := g.nextSlot
	g.nextSlot += size
	g.out.VariableAddresses[id] = slot
	return slot
}

// slotFor looks up (or, for an item that was never sized at declaration
// time, lazily reserves a single scalar slot for) id's data-stack address.
func (g *gen) slotFor(id uint64) int {
	if slot, ok := g.out.VariableAddresses[id]; ok {
		return slot
	}
	return g.declareSlot(id, 1)
}

func unresolvedCall(name string) error {
	return &unresolvedCallError{name: name}
}

type unresolvedCallError struct{ name string }

func (e *unresolvedCallError) Error() string {
	return "unresolved call to " + e.name
}
