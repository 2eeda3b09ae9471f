// Package source tracks source file identity and text position across the
// lexer, parser, semantic analyzer, bytecode generator and VM, so that every
// subsystem error can be reported against the same (file, line, column)
// coordinate without each layer inventing its own.
package source

import (
	"fmt"
	"sync"
)

// Location is a position in a registered source file. The zero Location
// (FileIndex 0, Line 0, Column 0) means "no location" and is used for
// synthetic nodes that have no source text, such as implicit contract
// fields.
type Location struct {
	FileIndex int
	Line      int // 1-indexed
	Column    int // 1-indexed
}

// IsSet returns whether the Location refers to an actual position.
func (l Location) IsSet() bool {
	return l.Line != 0
}

func (l Location) String() string {
	if !l.IsSet() {
		return "<generated>"
	}
	return fmt.Sprintf("%s:%d:%d", registryInstance.Path(l.FileIndex), l.Line, l.Column)
}

// Registry is a process-wide, append-only map from file index to file path.
// It is filled during a single compilation phase before any bytecode is
// emitted, matching the teacher's assumption that shared, write-once,
// read-many registries need no locking discipline beyond a single mutex
// guarding the append.
type Registry struct {
	mu    sync.Mutex
	paths []string
}

var registryInstance = &Registry{}

// Global returns the process-wide file registry.
func Global() *Registry {
	return registryInstance
}

// Register appends path to the registry and returns its new, stable file
// index. Registration is idempotent per distinct path within one call
// sequence is not required; callers register each compiled file exactly
// once.
func (r *Registry) Register(path string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
	return len(r.paths) - 1
}

// Path returns the path registered under idx, or "<unknown>" if idx is out
// of range (which should never happen for a Location produced by this
// package).
func (r *Registry) Path(idx int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if idx < 0 || idx >= len(r.paths) {
		return "<unknown>"
	}
	return r.paths[idx]
}
