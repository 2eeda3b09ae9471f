package semantic

import (
	"math/big"

	"github.com/dekarrin/zkcircuit/internal/ast"
	"github.com/dekarrin/zkcircuit/internal/scope"
	"github.com/dekarrin/zkcircuit/internal/types"
	"github.com/dekarrin/zkcircuit/internal/zkerrors"
)

// checkExpr type-checks expr and returns the Element it resolves to. On
// error, it records the error and returns a Value of invalidType so the
// caller can keep walking without a nil-pointer panic.
func (a *Analyzer) checkExpr(expr ast.Expr, sc scope.ScopeID) Element {
	switch e := expr.(type) {
	case *ast.Literal:
		return a.checkLiteral(e, sc)
	case *ast.Identifier:
		return a.checkIdentifier(e, sc)
	case *ast.SelfExpr:
		return a.checkSelf(e, sc)
	case *ast.BinaryExpr:
		return a.checkBinary(e, sc)
	case *ast.UnaryExpr:
		return a.checkUnary(e, sc)
	case *ast.CastExpr:
		return a.checkCast(e, sc)
	case *ast.FieldAccess:
		return a.checkFieldAccess(e, sc)
	case *ast.TupleIndex:
		return a.checkTupleIndex(e, sc)
	case *ast.IndexExpr:
		return a.checkIndex(e, sc)
	case *ast.SliceExpr:
		return a.checkSlice(e, sc)
	case *ast.CallExpr:
		return a.checkCall(e, sc)
	case *ast.PathExpr:
		return a.checkPath(e, sc)
	case *ast.ArrayLiteral:
		return a.checkArrayLiteral(e, sc)
	case *ast.TupleLiteral:
		return a.checkTupleLiteral(e, sc)
	case *ast.StructLiteral:
		return a.checkStructLiteral(e, sc)
	case *ast.BlockExpr:
		return a.checkBlock(e, sc)
	case *ast.IfExpr:
		return a.checkIf(e, sc)
	case *ast.MatchExpr:
		return a.checkMatch(e, sc)
	case *ast.ForExpr:
		return a.checkFor(e, sc)
	default:
		a.errorf(zkerrors.New(zkerrors.KindSemantic, expr.Location(), nil, "unsupported expression"))
		return &Value{Loc: expr.Location(), Typ: invalidType{}}
	}
}

func (a *Analyzer) checkLiteral(e *ast.Literal, sc scope.ScopeID) Element {
	switch e.Kind {
	case ast.LitBoolean:
		return &Value{Loc: e.Loc, Typ: types.Bool{}, Node: e, ConstIsBool: true, ConstBool: e.BoolValue}
	case ast.LitString:
		return &Value{Loc: e.Loc, Typ: types.Array{Element: types.Integer{BitWidth: 8}, Size: len(e.StrValue)}, Node: e}
	case ast.LitInteger:
		n, err := a.evalConstInt(e, sc)
		if err != nil {
			a.errorf(err)
			return &Value{Loc: e.Loc, Typ: invalidType{}}
		}
		// An integer literal with no explicit bit-suffix takes the
		// toolchain's default 32-bit unsigned type rather than field,
		// since field values carry no ordering and most literals end up
		// compared, indexed, or used as loop bounds.
		ty := types.ITyped(types.Integer{Signed: false, BitWidth: 32})
		if e.BitWidth != 0 {
			ty = types.Integer{Signed: e.Signed, BitWidth: e.BitWidth}
		}
		return &Value{Loc: e.Loc, Typ: ty, Node: e, ConstInt: n}
	default:
		a.errorf(zkerrors.New(zkerrors.KindSemantic, e.Loc, nil, "unsupported literal"))
		return &Value{Loc: e.Loc, Typ: invalidType{}}
	}
}

func (a *Analyzer) checkIdentifier(e *ast.Identifier, sc scope.ScopeID) Element {
	item, _, ok := a.arena.Resolve(sc, e.Name)
	if !ok {
		a.errorf(a.unknownIdent(e.Loc, e.Name))
		return &Value{Loc: e.Loc, Typ: invalidType{}}
	}

	switch item.Kind {
	case scope.ItemConstant:
		return &Value{Loc: e.Loc, Typ: item.Type, Node: e, ConstInt: item.ConstValue}
	case scope.ItemVariable:
		return &Place{Loc: e.Loc, Typ: item.Type, Memory: memTagOf(item.Memory), ItemID: item.ID}
	case scope.ItemFunction:
		return &Value{Loc: e.Loc, Typ: item.Function, Node: e}
	default:
		a.errorf(zkerrors.New(zkerrors.KindSemantic, e.Loc, nil, "%q is not a value", e.Name))
		return &Value{Loc: e.Loc, Typ: invalidType{}}
	}
}

func memTagOf(m scope.MemoryKind) MemoryTag {
	switch m {
	case scope.MemoryContractStorage:
		return MemContractStorage
	case scope.MemoryConstant:
		return MemConstant
	default:
		return MemStack
	}
}

func (a *Analyzer) checkSelf(e *ast.SelfExpr, sc scope.ScopeID) Element {
	if a.currentSelf == nil {
		a.errorf(zkerrors.New(zkerrors.KindSemantic, e.Loc, nil, "self is not valid outside a method"))
		return &Value{Loc: e.Loc, Typ: invalidType{}}
	}
	if e.IsTypeSelf {
		return &Value{Loc: e.Loc, Typ: a.currentSelf, Node: e}
	}
	return &Place{Loc: e.Loc, Typ: a.currentSelf, Memory: MemContractStorage}
}

var comparisonOps = map[ast.BinaryOp]bool{ast.OpLt: true, ast.OpLe: true, ast.OpGt: true, ast.OpGe: true}
var equalityOps = map[ast.BinaryOp]bool{ast.OpEq: true, ast.OpNe: true}
var boolOps = map[ast.BinaryOp]bool{ast.OpAnd: true, ast.OpOr: true, ast.OpXor: true}
var arithOps = map[ast.BinaryOp]bool{ast.OpAdd: true, ast.OpSub: true, ast.OpMul: true, ast.OpDiv: true, ast.OpRem: true}
var bitOps = map[ast.BinaryOp]bool{ast.OpBitAnd: true, ast.OpBitOr: true, ast.OpBitXor: true, ast.OpShl: true, ast.OpShr: true}
var assignOps = map[ast.BinaryOp]bool{
	ast.OpAssign: true, ast.OpAddAssign: true, ast.OpSubAssign: true,
	ast.OpMulAssign: true, ast.OpDivAssign: true, ast.OpRemAssign: true,
}

func opName(op ast.BinaryOp) string {
	names := map[ast.BinaryOp]string{
		ast.OpAssign: "=", ast.OpAddAssign: "+=", ast.OpSubAssign: "-=", ast.OpMulAssign: "*=",
		ast.OpDivAssign: "/=", ast.OpRemAssign: "%=", ast.OpOr: "||", ast.OpXor: "^^", ast.OpAnd: "&&",
		ast.OpEq: "==", ast.OpNe: "!=", ast.OpLt: "<", ast.OpLe: "<=", ast.OpGt: ">", ast.OpGe: ">=",
		ast.OpAdd: "+", ast.OpSub: "-", ast.OpMul: "*", ast.OpDiv: "/", ast.OpRem: "%",
		ast.OpBitAnd: "&", ast.OpBitOr: "|", ast.OpBitXor: "^", ast.OpShl: "<<", ast.OpShr: ">>",
	}
	return names[op]
}

func (a *Analyzer) checkBinary(e *ast.BinaryExpr, sc scope.ScopeID) Element {
	if assignOps[e.Op] {
		return a.checkAssign(e, sc)
	}

	left := a.checkExpr(e.Left, sc)
	right := a.checkExpr(e.Right, sc)
	lt, rt := left.Type(), right.Type()

	result := &Value{Loc: e.Loc, Node: e, Children: []Element{left, right}}

	switch {
	case boolOps[e.Op]:
		if !lt.Equal(types.Bool{}) || !rt.Equal(types.Bool{}) {
			a.errorf(a.operatorMismatch(e.Loc, opName(e.Op), lt, rt))
			result.Typ = invalidType{}
			return result
		}
		result.Typ = types.Bool{}

	case equalityOps[e.Op]:
		if !lt.Equal(rt) {
			a.errorf(a.operatorMismatch(e.Loc, opName(e.Op), lt, rt))
			result.Typ = invalidType{}
			return result
		}
		result.Typ = types.Bool{}

	case comparisonOps[e.Op]:
		if !lt.Equal(rt) || !isOrderable(lt) {
			a.errorf(a.operatorMismatch(e.Loc, opName(e.Op), lt, rt))
			result.Typ = invalidType{}
			return result
		}
		result.Typ = types.Bool{}

	case arithOps[e.Op], bitOps[e.Op]:
		if !lt.Equal(rt) || !isNumeric(lt) {
			a.errorf(a.operatorMismatch(e.Loc, opName(e.Op), lt, rt))
			result.Typ = invalidType{}
			return result
		}
		result.Typ = lt
		if e.Op == ast.OpDiv || e.Op == ast.OpRem {
			if lv, ok := left.(*Value); ok && lv.ConstInt != nil {
				if rv, ok := right.(*Value); ok && rv.ConstInt != nil && rv.ConstInt.Sign() == 0 {
					a.errorf(zkerrors.New(zkerrors.KindSemantic, e.Loc,
						&zkerrors.SemanticDetail{Element: &zkerrors.ElementError{Kind: zkerrors.DivisionByZeroConstant}},
						"division by zero"))
				}
			}
		}
		if lv, ok := left.(*Value); ok && lv.ConstInt != nil {
			if rv, ok := right.(*Value); ok && rv.ConstInt != nil {
				result.ConstInt = foldArith(e.Op, lv.ConstInt, rv.ConstInt)
			}
		}

	default:
		a.errorf(zkerrors.New(zkerrors.KindSemantic, e.Loc, nil, "unsupported operator"))
		result.Typ = invalidType{}
	}

	return result
}

func foldArith(op ast.BinaryOp, l, r *big.Int) *big.Int {
	out := new(big.Int)
	switch op {
	case ast.OpAdd:
		out.Add(l, r)
	case ast.OpSub:
		out.Sub(l, r)
	case ast.OpMul:
		out.Mul(l, r)
	case ast.OpDiv:
		if r.Sign() == 0 {
			return nil
		}
		out.Quo(l, r)
	case ast.OpRem:
		if r.Sign() == 0 {
			return nil
		}
		out.Rem(l, r)
	default:
		return nil
	}
	return out
}

func isNumeric(t types.ITyped) bool {
	if _, ok := t.(types.Field); ok {
		return true
	}
	_, ok := types.IsInteger(t)
	return ok
}

func isOrderable(t types.ITyped) bool {
	_, ok := types.IsInteger(t)
	return ok
}

func (a *Analyzer) checkAssign(e *ast.BinaryExpr, sc scope.ScopeID) Element {
	lhs := a.checkExpr(e.Left, sc)
	place, ok := lhs.(*Place)
	if !ok {
		a.errorf(a.notAPlace(e.Left.Location()))
	}
	rhs := a.checkExpr(e.Right, sc)

	if ok && e.Op == ast.OpAssign && !place.Typ.Equal(rhs.Type()) {
		a.errorf(a.typeMismatch(e.Loc, place.Typ, rhs.Type()))
	} else if ok && e.Op != ast.OpAssign && (!isNumeric(place.Typ) || !place.Typ.Equal(rhs.Type())) {
		a.errorf(a.operatorMismatch(e.Loc, opName(e.Op), place.Typ, rhs.Type()))
	}

	return &Value{Loc: e.Loc, Typ: types.Unit{}, Node: e, Children: []Element{lhs, rhs}}
}

func (a *Analyzer) checkUnary(e *ast.UnaryExpr, sc scope.ScopeID) Element {
	operand := a.checkExpr(e.Operand, sc)
	t := operand.Type()

	v := &Value{Loc: e.Loc, Node: e, Children: []Element{operand}}
	switch e.Op {
	case ast.OpNeg:
		if !isNumeric(t) {
			a.errorf(a.operatorMismatch(e.Loc, "-", t, t))
			v.Typ = invalidType{}
			return v
		}
		v.Typ = t
		if ov, ok := operand.(*Value); ok && ov.ConstInt != nil {
			v.ConstInt = new(big.Int).Neg(ov.ConstInt)
		}
	case ast.OpNot:
		if !t.Equal(types.Bool{}) {
			a.errorf(a.operatorMismatch(e.Loc, "!", t, t))
			v.Typ = invalidType{}
			return v
		}
		v.Typ = types.Bool{}
	case ast.OpBitNot:
		if !isNumeric(t) {
			a.errorf(a.operatorMismatch(e.Loc, "~", t, t))
			v.Typ = invalidType{}
			return v
		}
		v.Typ = t
	}
	return v
}

func (a *Analyzer) checkCast(e *ast.CastExpr, sc scope.ScopeID) Element {
	operand := a.checkExpr(e.Operand, sc)
	target, err := a.resolveTypeExpr(e.TargetTy, sc)
	if err != nil {
		a.errorf(err)
		return &Value{Loc: e.Loc, Typ: invalidType{}}
	}

	from := operand.Type()
	validCast := isNumeric(from) && isNumeric(target) || from.Equal(types.Bool{}) && isNumeric(target)
	if !validCast {
		a.errorf(a.invalidCast(e.Loc, from, target))
		return &Value{Loc: e.Loc, Typ: invalidType{}, Children: []Element{operand}}
	}

	v := &Value{Loc: e.Loc, Typ: target, Node: e, Children: []Element{operand}}
	if ov, ok := operand.(*Value); ok && ov.ConstInt != nil {
		v.ConstInt = ov.ConstInt
	}
	return v
}

func (a *Analyzer) checkFieldAccess(e *ast.FieldAccess, sc scope.ScopeID) Element {
	operand := a.checkExpr(e.Operand, sc)
	fields, ok := fieldsOf(operand.Type())
	if !ok {
		a.errorf(zkerrors.New(zkerrors.KindSemantic, e.Loc, nil, "%s has no fields", operand.Type()))
		return &Value{Loc: e.Loc, Typ: invalidType{}}
	}
	for _, f := range fields {
		if f.Name == e.Field {
			return &Place{Loc: e.Loc, Typ: f.Type, Base: operand, Field: e.Field,
				Memory: placeMemory(operand)}
		}
	}
	a.errorf(zkerrors.New(zkerrors.KindSemantic, e.Loc,
		&zkerrors.SemanticDetail{Element: &zkerrors.ElementError{Kind: zkerrors.FieldExpected, Args: map[string]any{"name": e.Field}}},
		"no field %q on %s", e.Field, operand.Type()))
	return &Value{Loc: e.Loc, Typ: invalidType{}}
}

func fieldsOf(t types.ITyped) ([]types.FieldDecl, bool) {
	switch tt := t.(type) {
	case *types.Struct:
		return tt.Fields, true
	case *types.Contract:
		return tt.Fields, true
	default:
		return nil, false
	}
}

func placeMemory(base Element) MemoryTag {
	if p, ok := base.(*Place); ok {
		return p.Memory
	}
	return MemStack
}

func (a *Analyzer) checkTupleIndex(e *ast.TupleIndex, sc scope.ScopeID) Element {
	operand := a.checkExpr(e.Operand, sc)
	tup, ok := operand.Type().(types.Tuple)
	if !ok || e.Index < 0 || e.Index >= len(tup.Members) {
		a.errorf(zkerrors.New(zkerrors.KindSemantic, e.Loc, nil, "no tuple field .%d on %s", e.Index, operand.Type()))
		return &Value{Loc: e.Loc, Typ: invalidType{}}
	}
	return &Place{Loc: e.Loc, Typ: tup.Members[e.Index], Base: operand, Memory: placeMemory(operand)}
}

func (a *Analyzer) checkIndex(e *ast.IndexExpr, sc scope.ScopeID) Element {
	operand := a.checkExpr(e.Operand, sc)
	idx := a.checkExpr(e.Index, sc)

	arr, ok := operand.Type().(types.Array)
	if !ok {
		a.errorf(zkerrors.New(zkerrors.KindSemantic, e.Loc, nil, "cannot index into %s", operand.Type()))
		return &Value{Loc: e.Loc, Typ: invalidType{}}
	}
	if _, ok := types.IsInteger(idx.Type()); !ok {
		a.errorf(a.typeMismatch(e.Index.Location(), types.Integer{BitWidth: 32}, idx.Type()))
	}

	if iv, ok := idx.(*Value); ok && iv.ConstInt != nil {
		i := iv.ConstInt.Int64()
		if i < 0 || i >= int64(arr.Size) {
			a.errorf(zkerrors.New(zkerrors.KindSemantic, e.Loc,
				&zkerrors.SemanticDetail{Element: &zkerrors.ElementError{
					Kind: zkerrors.ArrayIndexOutOfRange,
					Args: map[string]any{"index": i, "size": arr.Size},
				}},
				"index %d out of range for array of size %d", i, arr.Size))
		}
	}

	return &Place{Loc: e.Loc, Typ: arr.Element, Base: operand, Index: idx, Memory: placeMemory(operand)}
}

func (a *Analyzer) checkSlice(e *ast.SliceExpr, sc scope.ScopeID) Element {
	operand := a.checkExpr(e.Operand, sc)
	arr, ok := operand.Type().(types.Array)
	if !ok {
		a.errorf(zkerrors.New(zkerrors.KindSemantic, e.Loc, nil, "cannot slice %s", operand.Type()))
		return &Value{Loc: e.Loc, Typ: invalidType{}}
	}

	start, errS := a.evalConstInt(e.Start, sc)
	end, errE := a.evalConstInt(e.End, sc)
	if errS != nil {
		a.errorf(errS)
		return &Value{Loc: e.Loc, Typ: invalidType{}}
	}
	if errE != nil {
		a.errorf(errE)
		return &Value{Loc: e.Loc, Typ: invalidType{}}
	}

	s, en := start.Int64(), end.Int64()
	if e.Inclusive {
		en++
	}

	if s < 0 || s > int64(arr.Size) {
		a.errorf(zkerrors.New(zkerrors.KindSemantic, e.Loc,
			&zkerrors.SemanticDetail{Element: &zkerrors.ElementError{Kind: zkerrors.ArraySliceStartOutOfRange}},
			"slice start %d out of range for array of size %d", s, arr.Size))
		return &Value{Loc: e.Loc, Typ: invalidType{}}
	}
	if en < 0 || en > int64(arr.Size) {
		a.errorf(zkerrors.New(zkerrors.KindSemantic, e.Loc,
			&zkerrors.SemanticDetail{Element: &zkerrors.ElementError{
				Kind: zkerrors.ArraySliceEndOutOfRange,
				Args: map[string]any{"index": en, "size": arr.Size},
			}},
			"slice end %d out of range for array of size %d", en, arr.Size))
		return &Value{Loc: e.Loc, Typ: invalidType{}}
	}
	if en < s {
		a.errorf(zkerrors.New(zkerrors.KindSemantic, e.Loc,
			&zkerrors.SemanticDetail{Element: &zkerrors.ElementError{Kind: zkerrors.ArraySliceEndLesserThanStart}},
			"slice end %d is before start %d", en, s))
		return &Value{Loc: e.Loc, Typ: invalidType{}}
	}

	return &Value{Loc: e.Loc, Typ: types.Array{Element: arr.Element, Size: int(en - s)}, Node: e, Children: []Element{operand}}
}

func (a *Analyzer) checkCall(e *ast.CallExpr, sc scope.ScopeID) Element {
	args := make([]Element, len(e.Args))
	for i, arg := range e.Args {
		args[i] = a.checkExpr(arg, sc)
	}

	if ident, ok := e.Callee.(*ast.Identifier); ok {
		if v, handled := a.checkBuiltinCall(e, ident.Name, args); handled {
			return v
		}
	}

	if fa, ok := e.Callee.(*ast.FieldAccess); ok {
		if v, handled := a.checkMapMethodCall(e, fa, args, sc); handled {
			return v
		}
	}

	callee := a.checkExpr(e.Callee, sc)
	fn, ok := callee.Type().(*types.Function)
	if !ok {
		a.errorf(zkerrors.New(zkerrors.KindSemantic, e.Loc, nil, "expression is not callable"))
		return &Value{Loc: e.Loc, Typ: invalidType{}, Children: args}
	}

	if len(args) != len(fn.Params) {
		a.errorf(zkerrors.New(zkerrors.KindSemantic, e.Loc, nil,
			"%s expects %d argument(s), found %d", fn.Name, len(fn.Params), len(args)))
	} else {
		for i, p := range fn.Params {
			if !args[i].Type().Equal(p) {
				a.errorf(a.typeMismatch(e.Args[i].Location(), p, args[i].Type()))
			}
		}
	}

	return &Value{Loc: e.Loc, Typ: fn.ReturnType, Node: e, Children: append([]Element{callee}, args...)}
}

func (a *Analyzer) checkPath(e *ast.PathExpr, sc scope.ScopeID) Element {
	segs := pathSegments(e)
	item, ok := a.arena.ResolvePath(sc, segs)
	if !ok {
		a.errorf(a.unknownIdent(e.Loc, segs[len(segs)-1]))
		return &Value{Loc: e.Loc, Typ: invalidType{}}
	}
	switch item.Kind {
	case scope.ItemConstant:
		return &Value{Loc: e.Loc, Typ: item.Type, ConstInt: item.ConstValue}
	case scope.ItemFunction:
		return &Value{Loc: e.Loc, Typ: item.Function}
	default:
		return &Value{Loc: e.Loc, Typ: item.Type}
	}
}

func pathSegments(e *ast.PathExpr) []string {
	var segs []string
	cur := ast.Expr(e)
	for {
		p, ok := cur.(*ast.PathExpr)
		if !ok {
			break
		}
		segs = append([]string{p.Right}, segs...)
		cur = p.Left
	}
	if id, ok := cur.(*ast.Identifier); ok {
		segs = append([]string{id.Name}, segs...)
	} else if s, ok := cur.(*ast.SelfExpr); ok && s.IsTypeSelf {
		segs = append([]string{"Self"}, segs...)
	}
	return segs
}

func (a *Analyzer) checkArrayLiteral(e *ast.ArrayLiteral, sc scope.ScopeID) Element {
	if e.Repeated != nil {
		val := a.checkExpr(e.Repeated, sc)
		n, err := a.evalConstInt(e.RepeatCount, sc)
		if err != nil {
			a.errorf(err)
			return &Value{Loc: e.Loc, Typ: invalidType{}}
		}
		return &Value{Loc: e.Loc, Typ: types.Array{Element: val.Type(), Size: int(n.Int64())}, Node: e, Children: []Element{val}}
	}

	elems := make([]Element, len(e.Elements))
	var elemType types.ITyped = invalidType{}
	for i, el := range e.Elements {
		elems[i] = a.checkExpr(el, sc)
		if i == 0 {
			elemType = elems[i].Type()
		} else if !elems[i].Type().Equal(elemType) {
			a.errorf(a.typeMismatch(el.Location(), elemType, elems[i].Type()))
		}
	}
	return &Value{Loc: e.Loc, Typ: types.Array{Element: elemType, Size: len(elems)}, Node: e, Children: elems}
}

func (a *Analyzer) checkTupleLiteral(e *ast.TupleLiteral, sc scope.ScopeID) Element {
	elems := make([]Element, len(e.Elements))
	members := make([]types.ITyped, len(e.Elements))
	for i, el := range e.Elements {
		elems[i] = a.checkExpr(el, sc)
		members[i] = elems[i].Type()
	}
	return &Value{Loc: e.Loc, Typ: types.Tuple{Members: members}, Node: e, Children: elems}
}

// checkStructLiteral validates a `Type { field: value, ... }` expression,
// producing the FieldExpected/FieldInvalidType errors spec.md §4.3
// describes for a contract literal whose field set doesn't match its
// declaration.
func (a *Analyzer) checkStructLiteral(e *ast.StructLiteral, sc scope.ScopeID) Element {
	typeName := e.TypeName
	var decl types.ITyped
	var fields []types.FieldDecl

	if typeName == "Self" {
		if a.currentSelf == nil {
			a.errorf(zkerrors.New(zkerrors.KindSemantic, e.Loc, nil, "Self is not valid outside a method"))
			return &Value{Loc: e.Loc, Typ: invalidType{}}
		}
		decl = a.currentSelf
		fields, _ = fieldsOf(a.currentSelf)
	} else if st, ok := a.structs[typeName]; ok {
		decl = st
		fields = st.Fields
	} else if ct, ok := a.contracts[typeName]; ok {
		decl = ct
		fields = ct.Fields
	} else {
		a.errorf(zkerrors.New(zkerrors.KindSemantic, e.Loc, nil, "unknown type %q", typeName))
		return &Value{Loc: e.Loc, Typ: invalidType{}}
	}

	given := map[string]Element{}
	for _, f := range e.Fields {
		given[f.Name] = a.checkExpr(f.Value, sc)
	}

	// A map-typed field has no literal syntax of its own — it starts empty
	// and is only ever read/written through get/contains/insert/remove — so
	// it's excluded from both the declared-order check and the flattened
	// children a composite literal pushes.
	litFields := make([]types.FieldDecl, 0, len(fields))
	for _, fd := range fields {
		if fd.Type.Kind() == types.KindMap {
			continue
		}
		litFields = append(litFields, fd)
	}
	fields = litFields

	// Fields must also appear in declared order: a literal that has the
	// right names and types but writes them out of sequence is still
	// rejected, per spec.md §4.3. Only the first mismatch is reported,
	// since shifting one field out of place cascades into every field
	// after it.
	for i, fd := range fields {
		if i >= len(e.Fields) {
			break
		}
		if e.Fields[i].Name != fd.Name {
			a.errorf(zkerrors.New(zkerrors.KindSemantic, e.Fields[i].Loc,
				&zkerrors.SemanticDetail{Element: &zkerrors.ElementError{Kind: zkerrors.FieldExpected, Args: map[string]any{
					"position": i + 1,
					"expected": fd.Name,
					"found":    e.Fields[i].Name,
				}}},
				"field %d: expected %q, found %q (fields must appear in declared order)", i+1, fd.Name, e.Fields[i].Name))
			break
		}
	}

	// Children are assembled in the type's declared field order rather
	// than the literal's written order, since the generator's flat
	// field-offset layout (fieldOffsetOf) is computed against declaration
	// order: a literal that writes its fields out of order still has to
	// push its values in the order loads/stores expect to find them.
	children := make([]Element, 0, len(fields))
	for _, fd := range fields {
		val, ok := given[fd.Name]
		if !ok {
			a.errorf(zkerrors.New(zkerrors.KindSemantic, e.Loc,
				&zkerrors.SemanticDetail{Element: &zkerrors.ElementError{Kind: zkerrors.FieldExpected, Args: map[string]any{"name": fd.Name}}},
				"missing field %q in literal of type %s", fd.Name, typeName))
			continue
		}
		if !val.Type().Equal(fd.Type) {
			a.errorf(zkerrors.New(zkerrors.KindSemantic, val.Location(),
				&zkerrors.SemanticDetail{Element: &zkerrors.ElementError{Kind: zkerrors.FieldInvalidType, Args: map[string]any{"name": fd.Name}}},
				"field %q: expected %s, found %s", fd.Name, fd.Type, val.Type()))
		}
		children = append(children, val)
		delete(given, fd.Name)
	}
	for extra := range given {
		a.errorf(zkerrors.New(zkerrors.KindSemantic, e.Loc,
			&zkerrors.SemanticDetail{Element: &zkerrors.ElementError{Kind: zkerrors.FieldExpected, Args: map[string]any{"name": extra}}},
			"no such field %q on %s", extra, typeName))
	}

	return &Value{Loc: e.Loc, Typ: decl, Node: e, Children: children}
}
