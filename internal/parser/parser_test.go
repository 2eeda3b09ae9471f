package parser

import (
	"testing"

	"github.com/dekarrin/zkcircuit/internal/ast"
	"github.com/dekarrin/zkcircuit/internal/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseSource(t *testing.T, src string) *ast.File {
	t.Helper()
	lx := lexer.New(t.Name(), src)
	stream := lexer.NewStream(lx)
	f, err := ParseFile(t.Name(), stream)
	require.NoError(t, err)
	return f
}

func Test_Parser_S1_Arithmetic(t *testing.T) {
	f := parseSource(t, `fn main(a: u8, b: u8) -> u8 { a + b }`)
	require.Len(t, f.Items, 1)

	fn, ok := f.Items[0].(*ast.FnStmt)
	require.True(t, ok)
	assert.Equal(t, "main", fn.Name)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "a", fn.Params[0].Name)
	assert.Equal(t, "u8", fn.Params[0].Type.Name)
	require.NotNil(t, fn.ReturnType)
	assert.Equal(t, "u8", fn.ReturnType.Name)

	require.NotNil(t, fn.Body.TrailingExpr)
	bin, ok := fn.Body.TrailingExpr.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.OpAdd, bin.Op)
	assert.Equal(t, "a", bin.Left.(*ast.Identifier).Name)
	assert.Equal(t, "b", bin.Right.(*ast.Identifier).Name)
}

func Test_Parser_S2_Conditional(t *testing.T) {
	f := parseSource(t, `fn main(c: bool, x: u8, y: u8) -> u8 { if c { x } else { y } }`)
	fn := f.Items[0].(*ast.FnStmt)
	ifExpr, ok := fn.Body.TrailingExpr.(*ast.IfExpr)
	require.True(t, ok)
	assert.Equal(t, "c", ifExpr.Cond.(*ast.Identifier).Name)
	assert.Equal(t, "x", ifExpr.Then.TrailingExpr.(*ast.Identifier).Name)
	elseBlock, ok := ifExpr.Else.(*ast.BlockExpr)
	require.True(t, ok)
	assert.Equal(t, "y", elseBlock.TrailingExpr.(*ast.Identifier).Name)
}

func Test_Parser_S3_LoopSum(t *testing.T) {
	f := parseSource(t, `fn main() -> u8 {
		let mut s: u8 = 0;
		for i in 0..5 { s = s + i as u8; }
		s
	}`)
	fn := f.Items[0].(*ast.FnStmt)
	require.Len(t, fn.Body.Statements, 2)

	let, ok := fn.Body.Statements[0].(*ast.LetStmt)
	require.True(t, ok)
	assert.True(t, let.Mutable)

	loop, ok := fn.Body.Statements[1].(*ast.LoopStmt)
	require.True(t, ok)
	assert.Equal(t, "i", loop.For.Ident)
	assert.False(t, loop.For.Inclusive)

	assign, ok := loop.For.Body.Statements[0].(*ast.ExpressionStmt)
	require.True(t, ok)
	bin := assign.Expr.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpAssign, bin.Op)
	rhs := bin.Right.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpAdd, rhs.Op)
	cast := rhs.Right.(*ast.CastExpr)
	assert.Equal(t, "u8", cast.TargetTy.Name)
}

func Test_Parser_S4_Require(t *testing.T) {
	f := parseSource(t, `fn main(x: u8) { require(x < 10, "too big"); }`)
	fn := f.Items[0].(*ast.FnStmt)
	req, ok := fn.Body.Statements[0].(*ast.RequireStmt)
	require.True(t, ok)
	assert.Equal(t, "too big", req.Message)
	cmp := req.Cond.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpLt, cmp.Op)
}

func Test_Parser_ContractFieldLiteral(t *testing.T) {
	f := parseSource(t, `
		contract T { a: u8, b: u8 }
		fn make() -> T { Self { a: 5, c: 10 } }
	`)
	require.Len(t, f.Items, 2)
	contract := f.Items[0].(*ast.ContractStmt)
	assert.Equal(t, "T", contract.Name)
	require.Len(t, contract.Fields, 2)

	fn := f.Items[1].(*ast.FnStmt)
	lit := fn.Body.TrailingExpr.(*ast.StructLiteral)
	assert.Equal(t, "Self", lit.TypeName)
	require.Len(t, lit.Fields, 2)
	assert.Equal(t, "c", lit.Fields[1].Name)
}

func Test_Parser_MapFieldType(t *testing.T) {
	f := parseSource(t, `contract Ledger { balances: map[field]field }`)
	contract := f.Items[0].(*ast.ContractStmt)
	require.Len(t, contract.Fields, 1)
	typ := contract.Fields[0].Type
	require.NotNil(t, typ.MapKey)
	require.NotNil(t, typ.MapValue)
	assert.Equal(t, "field", typ.MapKey.Name)
	assert.Equal(t, "field", typ.MapValue.Name)
}

func Test_Parser_ArraySlice(t *testing.T) {
	f := parseSource(t, `const A: [u8; 2] = [1, 2, 3, 4, 5][0..6];`)
	c := f.Items[0].(*ast.ConstStmt)
	slice := c.Value.(*ast.SliceExpr)
	arr := slice.Operand.(*ast.ArrayLiteral)
	assert.Len(t, arr.Elements, 5)
	assert.False(t, slice.Inclusive)
}

func Test_Parser_Precedence(t *testing.T) {
	f := parseSource(t, `fn main() -> field { 1 + 2 * 3 == 7 && true }`)
	fn := f.Items[0].(*ast.FnStmt)
	top := fn.Body.TrailingExpr.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpAnd, top.Op)

	eq := top.Left.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpEq, eq.Op)

	add := eq.Left.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpAdd, add.Op)
	mul := add.Right.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpMul, mul.Op)
}

func Test_Parser_SyntaxError(t *testing.T) {
	lx := lexer.New(t.Name(), `fn main( -> u8 { 1 }`)
	stream := lexer.NewStream(lx)
	_, err := ParseFile(t.Name(), stream)
	assert.Error(t, err)
}
