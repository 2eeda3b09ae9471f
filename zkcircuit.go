// Package zkcircuit is the library entry point cmd/zkc and cmd/zvm are thin
// wrappers around, the way github.com/dekarrin/tunaq's root Engine is the
// thing cmd/tqi drives: everything a caller needs to go from a project
// manifest on disk to a compiled Program, and from a compiled Program to a
// witnessed run, lives here rather than in the command packages themselves.
package zkcircuit

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/dekarrin/zkcircuit/internal/bytecode"
	"github.com/dekarrin/zkcircuit/internal/config"
	"github.com/dekarrin/zkcircuit/internal/gadgets"
	"github.com/dekarrin/zkcircuit/internal/generator"
	"github.com/dekarrin/zkcircuit/internal/lexer"
	"github.com/dekarrin/zkcircuit/internal/parser"
	"github.com/dekarrin/zkcircuit/internal/semantic"
	"github.com/dekarrin/zkcircuit/internal/vm"
	"github.com/dekarrin/zkcircuit/internal/vmstate"
)

// Project wraps a loaded manifest with the directory it was loaded from, so
// the entry source path in the manifest (which is relative to the manifest
// file, not the process's working directory) resolves correctly.
type Project struct {
	Manifest *config.Manifest
	dir      string
}

// OpenProject loads the manifest at manifestPath and resolves its entry
// source relative to the manifest's own directory.
func OpenProject(manifestPath string) (*Project, error) {
	m, err := config.Load(manifestPath)
	if err != nil {
		return nil, err
	}
	return &Project{Manifest: m, dir: filepath.Dir(manifestPath)}, nil
}

// Compile lexes, parses, and semantically checks the project's entry
// source, then lowers it to bytecode. Semantic errors are returned as a
// slice rather than a single error, matching semantic.Analyze, since a
// single source file can carry many independent diagnostics worth
// reporting together.
func (p *Project) Compile() (*bytecode.Program, []error) {
	entryPath := filepath.Join(p.dir, p.Manifest.Entry)
	src, err := os.ReadFile(entryPath)
	if err != nil {
		return nil, []error{fmt.Errorf("reading entry source %s: %w", entryPath, err)}
	}

	lx := lexer.New(entryPath, string(src))
	stream := lexer.NewStream(lx)
	f, err := parser.ParseFile(entryPath, stream)
	if err != nil {
		return nil, []error{err}
	}

	prog, errs := semantic.Analyze(f)
	if len(errs) > 0 {
		return nil, errs
	}

	bc, err := generator.Generate(prog, bytecode.KindCircuit)
	if err != nil {
		return nil, []error{err}
	}
	return bc, nil
}

// WriteBytecode encodes prog and writes it to the project's configured
// output path, creating the containing directory if needed.
func (p *Project) WriteBytecode(prog *bytecode.Program) (string, error) {
	out := p.Manifest.Output.BytecodePath
	if out == "" {
		out = "out.zkbin"
	}
	out = filepath.Join(p.dir, out)
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	data, err := bytecode.Encode(prog)
	if err != nil {
		return "", fmt.Errorf("encoding bytecode: %w", err)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", out, err)
	}
	return out, nil
}

// PublishAddresses assigns one process-external contract address per
// distinct contract type among prog's entries. A scope item id (plain
// uint64 counter, see internal/scope) identifies a declaration within one
// compile; a published address has to stay distinct across separately
// compiled and republished versions of the same contract, which a
// monotonic counter restarted by every compiler invocation cannot
// guarantee, so this step mints a uuid per contract type instead.
func PublishAddresses(prog *bytecode.Program) map[string]uuid.UUID {
	addrs := map[string]uuid.UUID{}
	for _, e := range prog.Entries {
		if !e.IsContract {
			continue
		}
		if _, ok := addrs[e.ContractTag]; ok {
			continue
		}
		addrs[e.ContractTag] = uuid.New()
	}
	return addrs
}

// Runtime is a loaded, ready-to-run Program together with the VM state that
// must persist across multiple entry invocations against the same contract
// instance (storage).
type Runtime struct {
	Program *bytecode.Program
	vm      *vm.VM
}

// LoadRuntime reads and decodes a compiled Program from path.
func LoadRuntime(path string) (*Runtime, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bytecode %s: %w", path, err)
	}
	prog, err := bytecode.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding bytecode %s: %w", path, err)
	}
	return &Runtime{Program: prog, vm: vm.New(prog, gadgets.Registry())}, nil
}

// Entry looks up a named entry point.
func (r *Runtime) Entry(name string) (bytecode.EntryMetadata, bool) {
	for _, e := range r.Program.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return bytecode.EntryMetadata{}, false
}

// Run witnesses one call to entry with args pushed in declaration order.
// Reusing the same Runtime across calls lets a contract's storage carry
// over between, e.g., a "set" call and a following "get" call.
func (r *Runtime) Run(entry bytecode.EntryMetadata, args []vmstate.Scalar) ([]vmstate.Scalar, error) {
	for _, a := range args {
		r.vm.PushInput(a)
	}
	return r.vm.Run(entry)
}

// UnitTestResult is one UnitTestEntry's witnessed outcome, compared against
// the expected pass/fail and output the program recorded at compile time.
type UnitTestResult struct {
	Name   string
	Passed bool
	Got    []string
	Err    error
}

// RunUnitTests witnesses every UnitTestEntry in the Runtime's Program, each
// against a fresh VM instance since a unit test has no caller-supplied
// storage to carry over. step, if non-nil, is called after each test so a
// caller (the zvm CLI's interactive mode) can report progress as it goes.
func (r *Runtime) RunUnitTests(step func(UnitTestResult)) []UnitTestResult {
	results := make([]UnitTestResult, 0, len(r.Program.UnitTests))
	for _, ut := range r.Program.UnitTests {
		entry, ok := r.Entry(ut.Name)
		if !ok {
			res := UnitTestResult{Name: ut.Name, Err: fmt.Errorf("no entry named %q", ut.Name)}
			results = append(results, res)
			if step != nil {
				step(res)
			}
			continue
		}

		fresh := vm.New(r.Program, gadgets.Registry())
		out, err := fresh.Run(entry)

		res := UnitTestResult{Name: ut.Name, Err: err}
		if err == nil {
			got := make([]string, len(out))
			for i, s := range out {
				got[i] = s.Value.String()
			}
			res.Got = got
			res.Passed = ut.ExpectedPass && stringsEqual(got, ut.ExpectedOut)
		} else {
			res.Passed = !ut.ExpectedPass
		}

		results = append(results, res)
		if step != nil {
			step(res)
		}
	}
	return results
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
