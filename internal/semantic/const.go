package semantic

import (
	"math/big"

	"github.com/dekarrin/zkcircuit/internal/ast"
	"github.com/dekarrin/zkcircuit/internal/scope"
	"github.com/dekarrin/zkcircuit/internal/zkerrors"
)

// evalConstInt folds expr to a compile-time integer, following spec.md
// §4.3: array sizes, const declarations, and enum discriminants are all
// required to be foldable at this level (identifiers, literals, and the
// arithmetic/comparison operators over them).
func (a *Analyzer) evalConstInt(expr ast.Expr, sc scope.ScopeID) (*big.Int, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		if e.Kind != ast.LitInteger {
			return nil, zkerrors.New(zkerrors.KindSemantic, e.Loc, nil, "expected an integer constant")
		}
		n := new(big.Int)
		base := e.IntBase
		if base == 0 {
			base = 10
		}
		if _, ok := n.SetString(e.IntValue, base); !ok {
			return nil, zkerrors.New(zkerrors.KindSemantic, e.Loc, nil, "malformed integer literal %q", e.IntValue)
		}
		return n, nil

	case *ast.Identifier:
		item, _, ok := a.arena.Resolve(sc, e.Name)
		if !ok || item.Kind != scope.ItemConstant || item.ConstValue == nil {
			return nil, zkerrors.New(zkerrors.KindSemantic, e.Loc,
				&zkerrors.SemanticDetail{Scope: &zkerrors.ScopeError{Name: e.Name}},
				"%q is not a compile-time constant", e.Name)
		}
		return new(big.Int).Set(item.ConstValue), nil

	case *ast.UnaryExpr:
		v, err := a.evalConstInt(e.Operand, sc)
		if err != nil {
			return nil, err
		}
		switch e.Op {
		case ast.OpNeg:
			return new(big.Int).Neg(v), nil
		case ast.OpBitNot:
			return new(big.Int).Not(v), nil
		default:
			return nil, zkerrors.New(zkerrors.KindSemantic, e.Loc, nil, "operator not valid in a constant expression")
		}

	case *ast.BinaryExpr:
		l, err := a.evalConstInt(e.Left, sc)
		if err != nil {
			return nil, err
		}
		r, err := a.evalConstInt(e.Right, sc)
		if err != nil {
			return nil, err
		}
		out := new(big.Int)
		switch e.Op {
		case ast.OpAdd:
			out.Add(l, r)
		case ast.OpSub:
			out.Sub(l, r)
		case ast.OpMul:
			out.Mul(l, r)
		case ast.OpDiv:
			if r.Sign() == 0 {
				return nil, zkerrors.New(zkerrors.KindSemantic, e.Loc,
					&zkerrors.SemanticDetail{Element: &zkerrors.ElementError{Kind: zkerrors.DivisionByZeroConstant}},
					"division by zero in constant expression")
			}
			out.Quo(l, r)
		case ast.OpRem:
			if r.Sign() == 0 {
				return nil, zkerrors.New(zkerrors.KindSemantic, e.Loc,
					&zkerrors.SemanticDetail{Element: &zkerrors.ElementError{Kind: zkerrors.DivisionByZeroConstant}},
					"division by zero in constant expression")
			}
			out.Rem(l, r)
		case ast.OpBitAnd:
			out.And(l, r)
		case ast.OpBitOr:
			out.Or(l, r)
		case ast.OpBitXor:
			out.Xor(l, r)
		case ast.OpShl:
			out.Lsh(l, uint(r.Int64()))
		case ast.OpShr:
			out.Rsh(l, uint(r.Int64()))
		default:
			return nil, zkerrors.New(zkerrors.KindSemantic, e.Loc, nil, "operator not valid in a constant expression")
		}
		return out, nil

	default:
		return nil, zkerrors.New(zkerrors.KindSemantic, expr.Location(), nil, "expression is not a compile-time constant")
	}
}
