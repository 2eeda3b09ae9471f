package ast

import "github.com/dekarrin/zkcircuit/internal/source"

// Stmt is one statement inside a block or at module top level, per the
// variant list in spec.md §3.
type Stmt interface {
	Location() source.Location
	stmtNode()
}

// LetStmt is "let [mut] name[: Type] = expr;".
type LetStmt struct {
	Loc      source.Location
	Mutable  bool
	Name     string
	Type     *TypeExpr // nil if inferred
	Value    Expr
}

func (l *LetStmt) Location() source.Location { return l.Loc }
func (*LetStmt) stmtNode()                   {}

// ConstStmt is "const NAME: Type = expr;" (compile-time evaluated).
type ConstStmt struct {
	Loc   source.Location
	Name  string
	Type  *TypeExpr
	Value Expr
}

func (c *ConstStmt) Location() source.Location { return c.Loc }
func (*ConstStmt) stmtNode()                   {}

// LoopStmt wraps a for-expression used in statement position.
type LoopStmt struct {
	Loc  source.Location
	For  *ForExpr
}

func (l *LoopStmt) Location() source.Location { return l.Loc }
func (*LoopStmt) stmtNode()                   {}

// RequireStmt is "require(cond, message);".
type RequireStmt struct {
	Loc     source.Location
	Cond    Expr
	Message string
}

func (r *RequireStmt) Location() source.Location { return r.Loc }
func (*RequireStmt) stmtNode()                   {}

// DebugStmt is "debug(expr, ...);". The generator evaluates each argument
// and pops it again; nothing is printed.
type DebugStmt struct {
	Loc  source.Location
	Args []Expr
}

func (d *DebugStmt) Location() source.Location { return d.Loc }
func (*DebugStmt) stmtNode()                   {}

// ExpressionStmt is a bare expression used for its side effect, terminated
// by ";".
type ExpressionStmt struct {
	Loc  source.Location
	Expr Expr
}

func (e *ExpressionStmt) Location() source.Location { return e.Loc }
func (*ExpressionStmt) stmtNode()                   {}

// Param is one function parameter.
type Param struct {
	Loc  source.Location
	Name string
	Type *TypeExpr
}

// FnStmt is a function or method declaration.
type FnStmt struct {
	Loc        source.Location
	Name       string
	Public     bool
	TakesSelf  bool
	Params     []Param
	ReturnType *TypeExpr // nil means unit
	Body       *BlockExpr
}

func (f *FnStmt) Location() source.Location { return f.Loc }
func (*FnStmt) stmtNode()                   {}

// ModStmt declares a nested module "mod name { items }".
type ModStmt struct {
	Loc   source.Location
	Name  string
	Items []Stmt
}

func (m *ModStmt) Location() source.Location { return m.Loc }
func (*ModStmt) stmtNode()                   {}

// UseStmt imports a path into scope: "use mod::item;".
type UseStmt struct {
	Loc  source.Location
	Path []string
}

func (u *UseStmt) Location() source.Location { return u.Loc }
func (*UseStmt) stmtNode()                   {}

// ImplStmt attaches methods to a named type: "impl TypeName { fn ... }".
type ImplStmt struct {
	Loc      source.Location
	TypeName string
	Methods  []*FnStmt
}

func (i *ImplStmt) Location() source.Location { return i.Loc }
func (*ImplStmt) stmtNode()                   {}

// StructFieldDecl declares one field of a struct/contract.
type StructFieldDecl struct {
	Loc  source.Location
	Name string
	Type *TypeExpr
}

// StructStmt declares a structure type.
type StructStmt struct {
	Loc    source.Location
	Name   string
	Fields []StructFieldDecl
}

func (s *StructStmt) Location() source.Location { return s.Loc }
func (*StructStmt) stmtNode()                   {}

// EnumVariant is one "Name = value" entry of an enum.
type EnumVariant struct {
	Loc   source.Location
	Name  string
	Value Expr // nil means "previous + 1", starting at 0
}

// EnumStmt declares an enumeration type.
type EnumStmt struct {
	Loc      source.Location
	Name     string
	BaseType *TypeExpr // nil means inferred unsigned width
	Variants []EnumVariant
}

func (e *EnumStmt) Location() source.Location { return e.Loc }
func (*EnumStmt) stmtNode()                   {}

// ContractStmt declares a contract type. Unlike StructStmt, the semantic
// analyzer prepends the implicit `address: u160` and `balances: [u248; N]`
// fields (spec.md §3/§4.3) rather than the parser, since the balances
// array's length depends on a project-wide constant, not syntax.
type ContractStmt struct {
	Loc    source.Location
	Name   string
	Fields []StructFieldDecl
}

func (c *ContractStmt) Location() source.Location { return c.Loc }
func (*ContractStmt) stmtNode()                   {}

// TypeStmt is a type alias: "type Name = Type;".
type TypeStmt struct {
	Loc   source.Location
	Name  string
	Alias *TypeExpr
}

func (t *TypeStmt) Location() source.Location { return t.Loc }
func (*TypeStmt) stmtNode()                   {}

// File is the root of one parsed source file: a flat list of top-level
// items (Fn, Mod, Use, Impl, Struct, Enum, Contract, Type, Const).
type File struct {
	Path  string
	Items []Stmt
}
