// Package ast defines the syntax tree the parser produces: expression trees
// of Operand/Operator nodes in reverse-Polish order, and the statement
// variants spec.md §3 lists (Let, Const, Loop, Require, Debug, Expression,
// Fn, Mod, Use, Impl, Struct, Enum, Contract, Type), plus the type-syntax
// nodes (named, array, tuple) parsed wherever a type annotation appears.
package ast

import "github.com/dekarrin/zkcircuit/internal/source"

// TypeExpr is the syntax-level (unchecked) spelling of a type: a bare name,
// an array "[T; N]", a tuple "(T1, T2, ...)", or a map "map[K]V". The
// semantic analyzer resolves this into a checked types.Type.
type TypeExpr struct {
	Loc source.Location

	// Name is set for a named type ("u8", "bool", "field", or a
	// user-defined struct/enum/contract name), optionally followed by a
	// bit-length-bearing integer keyword like "u248".
	Name string

	// Array element/size is set when this is "[Elem; Size]". Size is a
	// constant expression (usually an integer literal).
	ArrayElem *TypeExpr
	ArraySize Expr

	// Tuple members is set when this is "(T1, T2, ...)".
	Tuple []*TypeExpr

	// MapKey/MapValue are set when this is "map[K]V".
	MapKey   *TypeExpr
	MapValue *TypeExpr
}
