package semantic

import (
	"strconv"
	"strings"

	"github.com/dekarrin/zkcircuit/internal/ast"
	"github.com/dekarrin/zkcircuit/internal/scope"
	"github.com/dekarrin/zkcircuit/internal/source"
	"github.com/dekarrin/zkcircuit/internal/types"
	"github.com/dekarrin/zkcircuit/internal/zkerrors"
)

// resolveTypeExpr turns a parsed type annotation into a concrete ITyped,
// resolving named struct/contract/enum types through the scope and folding
// array-size expressions with evalConstInt.
func (a *Analyzer) resolveTypeExpr(te *ast.TypeExpr, sc scope.ScopeID) (types.ITyped, error) {
	switch {
	case te.MapKey != nil:
		key, err := a.resolveTypeExpr(te.MapKey, sc)
		if err != nil {
			return nil, err
		}
		val, err := a.resolveTypeExpr(te.MapValue, sc)
		if err != nil {
			return nil, err
		}
		return types.Map{Key: key, Value: val}, nil

	case te.ArrayElem != nil:
		elem, err := a.resolveTypeExpr(te.ArrayElem, sc)
		if err != nil {
			return nil, err
		}
		n, err := a.evalConstInt(te.ArraySize, sc)
		if err != nil {
			return nil, err
		}
		return types.Array{Element: elem, Size: int(n.Int64())}, nil

	case te.Tuple != nil:
		members := make([]types.ITyped, len(te.Tuple))
		for i, m := range te.Tuple {
			mt, err := a.resolveTypeExpr(m, sc)
			if err != nil {
				return nil, err
			}
			members[i] = mt
		}
		return types.Tuple{Members: members}, nil

	default:
		return a.resolveNamedType(te.Name, te.Loc, sc)
	}
}

func (a *Analyzer) resolveNamedType(name string, loc source.Location, sc scope.ScopeID) (types.ITyped, error) {
	switch name {
	case "bool":
		return types.Bool{}, nil
	case "field":
		return types.Field{}, nil
	case "()":
		return types.Unit{}, nil
	}

	if it, ok := integerTypeFromName(name); ok {
		return it, nil
	}

	if item, _, ok := a.arena.Resolve(sc, name); ok && item.Kind == scope.ItemType {
		return item.Type, nil
	}

	return nil, zkerrors.New(zkerrors.KindSemantic, loc, nil, "unknown type %q", name)
}

// integerTypeFromName parses names like "u8", "i248", "u160".
func integerTypeFromName(name string) (types.Integer, bool) {
	if len(name) < 2 {
		return types.Integer{}, false
	}
	signed := false
	switch name[0] {
	case 'u':
		signed = false
	case 'i':
		signed = true
	default:
		return types.Integer{}, false
	}
	rest := name[1:]
	if rest == "" || strings.ContainsAny(rest, ".") {
		return types.Integer{}, false
	}
	bits, err := strconv.Atoi(rest)
	if err != nil || bits < 1 || bits > types.MaxIntegerBits {
		return types.Integer{}, false
	}
	return types.Integer{Signed: signed, BitWidth: bits}, true
}
