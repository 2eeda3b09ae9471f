package semantic

import "github.com/dekarrin/zkcircuit/internal/types"

// invalidType stands in for the type of an expression that already failed
// to check, so one error doesn't cascade into a pile of unrelated "type
// mismatch" follow-ons against whatever was expected there.
type invalidType struct{}

func (invalidType) Kind() types.Kind    { return types.KindUnit }
func (invalidType) String() string      { return "<invalid>" }
func (invalidType) Equal(types.ITyped) bool { return true }
