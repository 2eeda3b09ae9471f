package bytecode

// Kind discriminates the three program shapes a compile can produce,
// mirroring the zinc-bytecode Program enum in original_source/: a bare
// circuit (one entry point, no contract state), a contract (multiple
// entry points sharing storage), or a unit test (an entry point plus
// expected-result metadata for the VM's stepping/assert mode).
type Kind int

const (
	KindCircuit Kind = iota
	KindContract
	KindUnitTest
)

// EntryMetadata describes one callable entry point's calling convention:
// how many input/output field elements its witness template has, and at
// which instruction its body begins once function_addresses is resolved.
type EntryMetadata struct {
	Name        string
	InputSize   int
	OutputSize  int
	Address     int
	IsContract  bool
	ContractTag string // contract type name, set when IsContract
}

// UnitTestEntry is the expected-result metadata attached to a KindUnitTest
// program, letting zvm's `test` subcommand assert on witnessed output
// without an external fixture file.
type UnitTestEntry struct {
	Name         string
	ExpectedPass bool
	ExpectedOut  []string // decimal field-element strings
}

// Program is the full output of one compile: a flat instruction stream
// shared by every entry point, plus the tables the generator and VM need
// to address into it.
type Program struct {
	Kind Kind

	Instructions []Instruction

	// FunctionAddresses maps a function/method name (or, for a method,
	// "Contract::method") to its resolved instruction index.
	FunctionAddresses map[string]int

	// VariableAddresses maps a scope item id to its data-stack slot,
	// assigned by the generator in declaration order.
	VariableAddresses map[uint64]int

	DataStackPointer int

	Entries   []EntryMetadata
	UnitTests []UnitTestEntry

	// ContractStorageFields lists, per contract name, the field names in
	// declaration order (including the implicit address/balances fields),
	// letting storage_load/storage_store resolve a field name to a Merkle
	// leaf index.
	ContractStorageFields map[string][]string
}

// NewProgram returns an empty Program of the given kind with its maps
// initialized.
func NewProgram(kind Kind) *Program {
	return &Program{
		Kind:                  kind,
		FunctionAddresses:     map[string]int{},
		VariableAddresses:     map[uint64]int{},
		ContractStorageFields: map[string][]string{},
	}
}
