package semantic

import (
	"github.com/dekarrin/zkcircuit/internal/ast"
	"github.com/dekarrin/zkcircuit/internal/scope"
	"github.com/dekarrin/zkcircuit/internal/types"
	"github.com/dekarrin/zkcircuit/internal/zkerrors"
)

// checkBuiltinCall type-checks a call to one of the stdlib native gadgets
// (spec.md's hash/to_bits/from_bits primitives, grounded on the gadgets
// package's HashGadget/ToBitsGadget/FromBitsGadget). These don't fit the
// ordinary *types.Function signature check since to_bits/from_bits are
// parametrized per call site by bit width, so checkCall tries this first
// and only falls through to a user-defined-function lookup when name
// doesn't match a builtin.
func (a *Analyzer) checkBuiltinCall(e *ast.CallExpr, name string, args []Element) (*Value, bool) {
	switch name {
	case "hash":
		if len(args) != 2 || !isNumeric(args[0].Type()) || !isNumeric(args[1].Type()) {
			a.errorf(zkerrors.New(zkerrors.KindSemantic, e.Loc, nil, "hash expects two numeric arguments"))
			return &Value{Loc: e.Loc, Typ: invalidType{}, Node: e, Children: args}, true
		}
		return &Value{Loc: e.Loc, Typ: types.Field{}, Node: e, Children: args}, true

	case "to_bits":
		if len(args) != 1 {
			a.errorf(zkerrors.New(zkerrors.KindSemantic, e.Loc, nil, "to_bits expects one argument"))
			return &Value{Loc: e.Loc, Typ: invalidType{}, Node: e, Children: args}, true
		}
		it, ok := types.IsInteger(args[0].Type())
		if !ok {
			a.errorf(a.typeMismatch(e.Loc, types.Integer{BitWidth: 32}, args[0].Type()))
			return &Value{Loc: e.Loc, Typ: invalidType{}, Node: e, Children: args}, true
		}
		return &Value{Loc: e.Loc, Typ: types.Array{Element: types.Bool{}, Size: it.BitWidth}, Node: e, Children: args}, true

	case "from_bits":
		if len(args) != 1 {
			a.errorf(zkerrors.New(zkerrors.KindSemantic, e.Loc, nil, "from_bits expects one argument"))
			return &Value{Loc: e.Loc, Typ: invalidType{}, Node: e, Children: args}, true
		}
		arr, ok := args[0].Type().(types.Array)
		if !ok || !arr.Element.Equal(types.Bool{}) {
			a.errorf(zkerrors.New(zkerrors.KindSemantic, e.Loc, nil, "from_bits expects a [bool; N] argument"))
			return &Value{Loc: e.Loc, Typ: invalidType{}, Node: e, Children: args}, true
		}
		return &Value{Loc: e.Loc, Typ: types.Integer{Signed: false, BitWidth: arr.Size}, Node: e, Children: args}, true

	default:
		return nil, false
	}
}

// checkMapMethodCall type-checks a call whose callee is a field access
// ending in get/contains/insert/remove on a map-typed storage field. A
// types.Map has no user-defined methods of its own (it has no literal
// syntax either, see checkStructLiteral), so this is the only way its
// contents are ever read or written; checkCall tries it right after
// checkBuiltinCall and only falls through to an ordinary callee lookup
// when fa.Operand doesn't resolve to a map.
func (a *Analyzer) checkMapMethodCall(e *ast.CallExpr, fa *ast.FieldAccess, args []Element, sc scope.ScopeID) (Element, bool) {
	switch fa.Field {
	case "get", "contains", "insert", "remove":
	default:
		return nil, false
	}

	base := a.checkExpr(fa.Operand, sc)
	mp, ok := base.Type().(types.Map)
	if !ok {
		return nil, false
	}
	place, ok := base.(*Place)
	if !ok {
		a.errorf(zkerrors.New(zkerrors.KindSemantic, e.Loc, nil, "map method call requires a storage field"))
		return &Value{Loc: e.Loc, Typ: invalidType{}, Node: e}, true
	}

	children := append([]Element{place}, args...)
	switch fa.Field {
	case "get":
		if len(args) != 1 || !args[0].Type().Equal(mp.Key) {
			a.errorf(zkerrors.New(zkerrors.KindSemantic, e.Loc, nil, "get expects one %s argument", mp.Key))
		}
		return &Value{Loc: e.Loc, Typ: mp.Value, Node: e, Children: children}, true
	case "contains":
		if len(args) != 1 || !args[0].Type().Equal(mp.Key) {
			a.errorf(zkerrors.New(zkerrors.KindSemantic, e.Loc, nil, "contains expects one %s argument", mp.Key))
		}
		return &Value{Loc: e.Loc, Typ: types.Bool{}, Node: e, Children: children}, true
	case "insert":
		if len(args) != 2 || !args[0].Type().Equal(mp.Key) || !args[1].Type().Equal(mp.Value) {
			a.errorf(zkerrors.New(zkerrors.KindSemantic, e.Loc, nil, "insert expects (%s, %s) arguments", mp.Key, mp.Value))
		}
		return &Value{Loc: e.Loc, Typ: types.Unit{}, Node: e, Children: children}, true
	default: // "remove"
		if len(args) != 1 || !args[0].Type().Equal(mp.Key) {
			a.errorf(zkerrors.New(zkerrors.KindSemantic, e.Loc, nil, "remove expects one %s argument", mp.Key))
		}
		return &Value{Loc: e.Loc, Typ: types.Unit{}, Node: e, Children: children}, true
	}
}
