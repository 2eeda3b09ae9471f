package zkcircuit

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/zkcircuit/internal/vmstate"
)

func writeProject(t *testing.T, manifest, entry string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "zkc.toml"), []byte(manifest), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.zk"), []byte(entry), 0o644))
	return filepath.Join(dir, "zkc.toml")
}

const sampleManifest = `
format = "zkc-project"
name = "example"
entry = "main.zk"

[output]
bytecode_path = "out/main.zkbin"
`

func Test_Project_CompileAndWriteBytecode(t *testing.T) {
	manifestPath := writeProject(t, sampleManifest, `fn main(a: u8, b: u8) -> u8 { a + b }`)

	proj, err := OpenProject(manifestPath)
	require.NoError(t, err)

	prog, errs := proj.Compile()
	require.Empty(t, errs)

	out, err := proj.WriteBytecode(prog)
	require.NoError(t, err)
	assert.FileExists(t, out)

	rt, err := LoadRuntime(out)
	require.NoError(t, err)

	entry, ok := rt.Entry("main")
	require.True(t, ok)

	result, err := rt.Run(entry, []vmstate.Scalar{
		vmstate.NewIntScalar(3, false, 8),
		vmstate.NewIntScalar(4, false, 8),
	})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, int64(7), result[0].Value.Int64())
}

func Test_Project_CompileReportsSemanticErrors(t *testing.T) {
	manifestPath := writeProject(t, sampleManifest, `fn main() -> u8 { missing_fn() }`)

	proj, err := OpenProject(manifestPath)
	require.NoError(t, err)

	_, errs := proj.Compile()
	assert.NotEmpty(t, errs)
}

func Test_PublishAddresses_OneUUIDPerContractType(t *testing.T) {
	manifestPath := writeProject(t, sampleManifest, `
		contract Acct { balance: u248 }
		impl Acct {
			fn set(self, v: u248) { self.balance = v; }
			fn get(self) -> u248 { self.balance }
		}
	`)

	proj, err := OpenProject(manifestPath)
	require.NoError(t, err)
	prog, errs := proj.Compile()
	require.Empty(t, errs)

	addrs := PublishAddresses(prog)
	require.Len(t, addrs, 1)
	addr, ok := addrs["Acct"]
	require.True(t, ok)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", addr.String())
}

func Test_Runtime_ContractStorageCarriesOverBetweenCalls(t *testing.T) {
	manifestPath := writeProject(t, sampleManifest, `
		contract Acct { balance: u248 }
		impl Acct {
			fn set(self, v: u248) { self.balance = v; }
			fn get(self) -> u248 { self.balance }
		}
	`)

	proj, err := OpenProject(manifestPath)
	require.NoError(t, err)
	prog, errs := proj.Compile()
	require.Empty(t, errs)
	out, err := proj.WriteBytecode(prog)
	require.NoError(t, err)

	rt, err := LoadRuntime(out)
	require.NoError(t, err)

	setEntry, ok := rt.Entry("Acct::set")
	require.True(t, ok)
	_, err = rt.Run(setEntry, []vmstate.Scalar{vmstate.NewFieldScalar(big.NewInt(42))})
	require.NoError(t, err)

	getEntry, ok := rt.Entry("Acct::get")
	require.True(t, ok)
	result, err := rt.Run(getEntry, nil)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, int64(42), result[0].Value.Int64())
}

func Test_RunUnitTests_ReportsEachResult(t *testing.T) {
	manifestPath := writeProject(t, sampleManifest, `fn main(a: u8, b: u8) -> u8 { a + b }`)

	proj, err := OpenProject(manifestPath)
	require.NoError(t, err)
	prog, errs := proj.Compile()
	require.Empty(t, errs)
	out, err := proj.WriteBytecode(prog)
	require.NoError(t, err)

	rt, err := LoadRuntime(out)
	require.NoError(t, err)

	var seen []UnitTestResult
	results := rt.RunUnitTests(func(r UnitTestResult) { seen = append(seen, r) })
	assert.Equal(t, len(results), len(seen), "step callback must fire once per result")
}
