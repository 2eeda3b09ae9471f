package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "zkc.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func Test_Load_ValidManifest(t *testing.T) {
	path := writeManifest(t, `
format = "zkc-project"
name = "example"
entry = "main.zk"
sources = ["main.zk", "lib.zk"]

[consts]
BALANCES_SIZE = 4

[output]
bytecode_path = "out/main.zkbin"
witness_path = "out/witness.json"
`)

	m, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "main.zk", m.Entry)
	require.Equal(t, int64(4), m.Consts["BALANCES_SIZE"])
	require.Equal(t, "out/main.zkbin", m.Output.BytecodePath)
}

func Test_Load_RejectsWrongFormat(t *testing.T) {
	path := writeManifest(t, `format = "something-else"`)
	_, err := Load(path)
	require.Error(t, err)
}

func Test_Load_RequiresEntry(t *testing.T) {
	path := writeManifest(t, `format = "zkc-project"`)
	_, err := Load(path)
	require.Error(t, err)
}
