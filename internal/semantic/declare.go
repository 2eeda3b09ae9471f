package semantic

import (
	"github.com/dekarrin/zkcircuit/internal/ast"
	"github.com/dekarrin/zkcircuit/internal/scope"
	"github.com/dekarrin/zkcircuit/internal/types"
	"github.com/dekarrin/zkcircuit/internal/zkerrors"
)

// declarePass registers every name introduced at this level before checking
// any expression, so mutually-referencing types, out-of-order functions,
// and forward use of later-declared items all resolve (spec.md §9's
// two-phase forward-declaration pass).
func (a *Analyzer) declarePass(items []ast.Stmt, sc scope.ScopeID) {
	// Phase 1: register bare type names so field/parameter types can refer
	// to a struct/contract/enum declared later in the same scope.
	for _, it := range items {
		switch n := it.(type) {
		case *ast.StructStmt:
			st := &types.Struct{Name: n.Name}
			a.structs[n.Name] = st
			a.declareItem(sc, n.Name, scope.ItemType, st)
		case *ast.ContractStmt:
			ct := &types.Contract{Name: n.Name, Methods: map[string]*types.Function{}}
			a.contracts[n.Name] = ct
			a.declareItem(sc, n.Name, scope.ItemType, ct)
		case *ast.EnumStmt:
			en := &types.Enum{Name: n.Name}
			a.enums[n.Name] = en
			a.declareItem(sc, n.Name, scope.ItemType, en)
		}
	}

	// Phase 2: fill in bodies now that every name in this scope resolves.
	for _, it := range items {
		switch n := it.(type) {
		case *ast.StructStmt:
			a.fillStructFields(n, sc)
		case *ast.ContractStmt:
			a.fillContractFields(n, sc)
		case *ast.EnumStmt:
			a.fillEnumVariants(n, sc)
		case *ast.TypeStmt:
			ty, err := a.resolveTypeExpr(n.Alias, sc)
			if err != nil {
				a.errorf(err)
				continue
			}
			a.declareItem(sc, n.Name, scope.ItemType, ty)
		case *ast.ConstStmt:
			a.declareConst(n, sc)
		case *ast.UseStmt:
			// Nothing is registered for a use import: Resolve looks a name
			// up only in the current scope and its parents, so `use` does
			// not bring an item into scope under its short name.
		case *ast.ModStmt:
			childSc := a.arena.New(sc)
			item := &scope.Item{
				ID:          a.arena.NextItemID(),
				Name:        n.Name,
				Kind:        scope.ItemModule,
				ModuleScope: childSc,
			}
			a.arena.Declare(sc, item)
			a.declarePass(n.Items, childSc)
		case *ast.FnStmt:
			a.declareFn(n, sc, "", nil)
		case *ast.ImplStmt:
			a.declareImpl(n, sc)
		}
	}
}

func (a *Analyzer) declareItem(sc scope.ScopeID, name string, kind scope.ItemKind, ty types.ITyped) {
	item := &scope.Item{ID: a.arena.NextItemID(), Name: name, Kind: kind, Type: ty}
	a.arena.Declare(sc, item)
}

func (a *Analyzer) fillStructFields(n *ast.StructStmt, sc scope.ScopeID) {
	st := a.structs[n.Name]
	for _, f := range n.Fields {
		ty, err := a.resolveTypeExpr(f.Type, sc)
		if err != nil {
			a.errorf(err)
			continue
		}
		st.Fields = append(st.Fields, types.FieldDecl{Name: f.Name, Type: ty})
	}
}

func (a *Analyzer) fillContractFields(n *ast.ContractStmt, sc scope.ScopeID) {
	ct := a.contracts[n.Name]
	ct.Fields = append(ct.Fields, types.ImplicitContractFields...)

	// The balances array length is a project-wide constant; in the absence
	// of a dedicated declaration this unit defaults to one balance slot per
	// address, resolved below if a BALANCES_SIZE constant is in scope.
	balancesSize := 1
	if item, _, ok := a.arena.Resolve(sc, "BALANCES_SIZE"); ok && item.Kind == scope.ItemConstant && item.ConstValue != nil {
		balancesSize = int(item.ConstValue.Int64())
	}
	ct.BalancesSize = balancesSize
	ct.Fields = append(ct.Fields, types.FieldDecl{
		Name: "balances",
		Type: types.Array{Element: types.Integer{Signed: false, BitWidth: types.MaxIntegerBits}, Size: balancesSize},
	})

	for _, f := range n.Fields {
		ty, err := a.resolveTypeExpr(f.Type, sc)
		if err != nil {
			a.errorf(err)
			continue
		}
		ct.Fields = append(ct.Fields, types.FieldDecl{Name: f.Name, Type: ty})
	}
}

func (a *Analyzer) fillEnumVariants(n *ast.EnumStmt, sc scope.ScopeID) {
	en := a.enums[n.Name]
	en.BaseType = types.Integer{Signed: false, BitWidth: 32}
	if n.BaseType != nil {
		ty, err := a.resolveTypeExpr(n.BaseType, sc)
		if err != nil {
			a.errorf(err)
		} else if it, ok := types.IsInteger(ty); ok {
			en.BaseType = it
		}
	}

	next := int64(0)
	for _, v := range n.Variants {
		val := next
		if v.Value != nil {
			folded, err := a.evalConstInt(v.Value, sc)
			if err != nil {
				a.errorf(err)
			} else {
				val = folded.Int64()
			}
		}
		en.Variants = append(en.Variants, types.EnumVariant{Name: v.Name, Value: val})
		next = val + 1
	}
}

func (a *Analyzer) declareConst(n *ast.ConstStmt, sc scope.ScopeID) {
	val, err := a.evalConstInt(n.Value, sc)
	if err != nil {
		a.errorf(err)
		return
	}
	var ty types.ITyped = types.Field{}
	if n.Type != nil {
		ty, err = a.resolveTypeExpr(n.Type, sc)
		if err != nil {
			a.errorf(err)
			return
		}
	}
	item := &scope.Item{ID: a.arena.NextItemID(), Name: n.Name, Kind: scope.ItemConstant, Type: ty, Memory: scope.MemoryConstant, ConstValue: val}
	a.arena.Declare(sc, item)
}

func (a *Analyzer) declareFn(n *ast.FnStmt, sc scope.ScopeID, qualifier string, self types.ITyped) {
	sig := &types.Function{Name: n.Name, TakesSelf: n.TakesSelf}
	for _, p := range n.Params {
		ty, err := a.resolveTypeExpr(p.Type, sc)
		if err != nil {
			a.errorf(err)
			continue
		}
		sig.Params = append(sig.Params, ty)
	}
	if n.ReturnType != nil {
		ty, err := a.resolveTypeExpr(n.ReturnType, sc)
		if err != nil {
			a.errorf(err)
		} else {
			sig.ReturnType = ty
		}
	} else {
		sig.ReturnType = types.Unit{}
	}

	itemID := a.arena.NextItemID()
	name := n.Name
	if qualifier != "" {
		name = qualifier + "::" + n.Name
		if ct, ok := a.contracts[qualifier]; ok {
			ct.Methods[n.Name] = sig
		}
	}

	item := &scope.Item{ID: itemID, Name: name, Kind: scope.ItemFunction, Function: sig}
	a.arena.Declare(sc, item)

	a.pending = append(a.pending, &fnWork{node: n, sig: sig, qualifier: qualifier, self: self, sc: sc, itemID: itemID})
}

func (a *Analyzer) declareImpl(n *ast.ImplStmt, sc scope.ScopeID) {
	var self types.ITyped
	if ct, ok := a.contracts[n.TypeName]; ok {
		self = ct
	} else if st, ok := a.structs[n.TypeName]; ok {
		self = st
	} else {
		a.errorf(zkerrors.New(zkerrors.KindSemantic, n.Loc, nil, "unknown type %q in impl block", n.TypeName))
		return
	}
	for _, m := range n.Methods {
		a.declareFn(m, sc, n.TypeName, self)
	}
}
