// Package config loads the TOML project manifest a circuit/contract
// source tree is built from, in the spirit of the teacher's tqw package:
// a small typed struct decoded with github.com/BurntSushi/toml, with a
// format/type header checked before the rest of the document is trusted.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

const ManifestFormat = "zkc-project"

// Header is the common prefix every manifest file must carry, checked
// before the remaining fields are decoded.
type Header struct {
	Format string `toml:"format"`
}

// Manifest describes one compilable project: its entry source file, the
// dependency search path, and build-time constants (e.g. BALANCES_SIZE)
// injected into the root scope before analysis.
type Manifest struct {
	Format  string           `toml:"format"`
	Name    string           `toml:"name"`
	Entry   string           `toml:"entry"`
	Sources []string         `toml:"sources"`
	Consts  map[string]int64 `toml:"consts"`
	Output  OutputConfig     `toml:"output"`
}

// OutputConfig controls where the compiler writes its bytecode and
// witness-template artifacts.
type OutputConfig struct {
	BytecodePath string `toml:"bytecode_path"`
	WitnessPath  string `toml:"witness_path"`
}

// Load decodes a manifest from path, rejecting any file whose format
// header doesn't match ManifestFormat.
func Load(path string) (*Manifest, error) {
	var hdr Header
	if _, err := toml.DecodeFile(path, &hdr); err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	if hdr.Format != ManifestFormat {
		return nil, fmt.Errorf("%s: unrecognized manifest format %q (expected %q)", path, hdr.Format, ManifestFormat)
	}

	var m Manifest
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return nil, fmt.Errorf("decoding manifest %s: %w", path, err)
	}
	if m.Entry == "" {
		return nil, fmt.Errorf("%s: manifest must set entry", path)
	}
	return &m, nil
}
