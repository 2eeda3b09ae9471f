// Package zkerrors defines the one-error-kind-per-subsystem taxonomy used
// throughout the compiler and VM: LexicalError, SyntaxError, SemanticError,
// MalformedBytecode and RuntimeError. Every kind carries a source.Location
// and, following the teacher's tqerrors pattern, a short human-facing
// message distinct from the precise Error() string.
package zkerrors

import (
	"fmt"

	"github.com/dekarrin/zkcircuit/internal/source"
)

// Kind identifies which subsystem raised an error, for exhaustive switches
// in the CLI and any future API boundary.
type Kind int

const (
	KindLexical Kind = iota
	KindSyntax
	KindSemantic
	KindMalformedBytecode
	KindRuntime
)

func (k Kind) String() string {
	switch k {
	case KindLexical:
		return "lexical error"
	case KindSyntax:
		return "syntax error"
	case KindSemantic:
		return "semantic error"
	case KindMalformedBytecode:
		return "malformed bytecode"
	case KindRuntime:
		return "runtime error"
	default:
		return "error"
	}
}

// Error is the common shape every subsystem error implements. Variant holds
// the subsystem-specific detail (e.g. *LexicalDetail, *RuntimeDetail).
type Error struct {
	Kind    Kind
	Loc     source.Location
	Message string
	Human   string
	SrcLine string
	Variant any
	Wrapped error
}

func (e *Error) Error() string {
	if !e.Loc.IsSet() {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Loc, e.Message)
}

// Unwrap lets errors.Is/As reach a wrapped cause.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// HumanMessage gives the short, friendly rendering a CLI should show an
// operator, falling back to Error() if none was set, mirroring the
// teacher's tqerrors.GameMessage.
func (e *Error) HumanMessage() string {
	if e.Human != "" {
		return e.Human
	}
	return e.Error()
}

// FullMessage shows the offending source line, a cursor to the column, and
// the error message beneath it, the way tunascript.SyntaxError.FullMessage
// does.
func (e *Error) FullMessage() string {
	msg := e.Error()
	if e.SrcLine != "" {
		msg = source.LineWithCursor(e.SrcLine, e.Loc.Column) + "\n" + msg
	}
	return msg
}

// New builds an Error of the given kind at loc.
func New(kind Kind, loc source.Location, variant any, format string, a ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Loc:     loc,
		Message: fmt.Sprintf(format, a...),
		Variant: variant,
	}
}

// WithHuman attaches a human-facing message and returns the same error for
// chaining at the call site.
func (e *Error) WithHuman(format string, a ...interface{}) *Error {
	e.Human = fmt.Sprintf(format, a...)
	return e
}

// WithSourceLine attaches the raw source line text for cursor rendering.
func (e *Error) WithSourceLine(line string) *Error {
	e.SrcLine = line
	return e
}
