package semantic

import (
	"github.com/dekarrin/zkcircuit/internal/source"
	"github.com/dekarrin/zkcircuit/internal/types"
	"github.com/dekarrin/zkcircuit/internal/zkerrors"
)

func (a *Analyzer) typeMismatch(loc source.Location, want, got types.ITyped) error {
	return zkerrors.New(zkerrors.KindSemantic, loc,
		&zkerrors.SemanticDetail{Element: &zkerrors.ElementError{
			Kind: zkerrors.TypeMismatch,
			Args: map[string]any{"want": want.String(), "got": got.String()},
		}},
		"type mismatch: expected %s, found %s", want, got)
}

func (a *Analyzer) operatorMismatch(loc source.Location, op string, l, r types.ITyped) error {
	return zkerrors.New(zkerrors.KindSemantic, loc,
		&zkerrors.SemanticDetail{Element: &zkerrors.ElementError{Kind: zkerrors.OperatorTypeMismatch}},
		"operator %s not defined for %s and %s", op, l, r)
}

func (a *Analyzer) unknownIdent(loc source.Location, name string) error {
	return zkerrors.New(zkerrors.KindSemantic, loc,
		&zkerrors.SemanticDetail{Scope: &zkerrors.ScopeError{Name: name}},
		"unknown identifier %q", name)
}

func (a *Analyzer) notAPlace(loc source.Location) error {
	return zkerrors.New(zkerrors.KindSemantic, loc,
		&zkerrors.SemanticDetail{Element: &zkerrors.ElementError{Kind: zkerrors.NotAPlace}},
		"expression does not designate an assignable place")
}

func (a *Analyzer) invalidCast(loc source.Location, from, to types.ITyped) error {
	return zkerrors.New(zkerrors.KindSemantic, loc,
		&zkerrors.SemanticDetail{Element: &zkerrors.ElementError{Kind: zkerrors.InvalidCast}},
		"cannot cast %s to %s", from, to)
}
