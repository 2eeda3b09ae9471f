package parser

import (
	"github.com/dekarrin/zkcircuit/internal/ast"
	"github.com/dekarrin/zkcircuit/internal/lexer"
)

// parseExpr is the entry point, starting at the loosest (assignment) tier.
func (p *Parser) parseExpr() (ast.Expr, error) {
	return p.parseAssignment()
}

// tierRule is one entry of a left-associative binary-operator tier: the
// symbol or keyword that introduces it, and the ast.BinaryOp it produces.
type tierRule struct {
	symbol string
	op     ast.BinaryOp
}

// binaryTier implements "(a) parse an operand by delegating to the next
// tighter level, (b) peek a matching operator; if present record it, consume
// it, and loop to parse a right operand, then build the operator node
// (producing RPN when walked post-order); otherwise finish," per spec.md
// §4.2.
func (p *Parser) binaryTier(rules []tierRule, next func() (ast.Expr, error)) (ast.Expr, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}

	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}

		matched := false
		var matchedOp ast.BinaryOp
		for _, r := range rules {
			if tok.IsSymbol(r.symbol) {
				matched = true
				matchedOp = r.op
				break
			}
		}
		if !matched {
			return left, nil
		}

		opTok, err := p.next()
		if err != nil {
			return nil, err
		}

		right, err := next()
		if err != nil {
			return nil, err
		}

		left = &ast.BinaryExpr{Loc: opTok.Loc, Op: matchedOp, Left: left, Right: right}
	}
}

func (p *Parser) parseAssignment() (ast.Expr, error) {
	return p.binaryTier([]tierRule{
		{"=", ast.OpAssign},
		{"+=", ast.OpAddAssign},
		{"-=", ast.OpSubAssign},
		{"*=", ast.OpMulAssign},
		{"/=", ast.OpDivAssign},
		{"%=", ast.OpRemAssign},
	}, p.parseOr)
}

func (p *Parser) parseOr() (ast.Expr, error) {
	return p.binaryTier([]tierRule{{"||", ast.OpOr}}, p.parseXor)
}

func (p *Parser) parseXor() (ast.Expr, error) {
	return p.binaryTier([]tierRule{{"^", ast.OpXor}}, p.parseAnd)
}

func (p *Parser) parseAnd() (ast.Expr, error) {
	return p.binaryTier([]tierRule{{"&&", ast.OpAnd}}, p.parseEquality)
}

func (p *Parser) parseEquality() (ast.Expr, error) {
	return p.binaryTier([]tierRule{
		{"==", ast.OpEq},
		{"!=", ast.OpNe},
	}, p.parseComparison)
}

func (p *Parser) parseComparison() (ast.Expr, error) {
	return p.binaryTier([]tierRule{
		{"<", ast.OpLt},
		{"<=", ast.OpLe},
		{">", ast.OpGt},
		{">=", ast.OpGe},
	}, p.parseAddSub)
}

func (p *Parser) parseAddSub() (ast.Expr, error) {
	return p.binaryTier([]tierRule{
		{"+", ast.OpAdd},
		{"-", ast.OpSub},
	}, p.parseMulDivRem)
}

func (p *Parser) parseMulDivRem() (ast.Expr, error) {
	return p.binaryTier([]tierRule{
		{"*", ast.OpMul},
		{"/", ast.OpDiv},
		{"%", ast.OpRem},
	}, p.parseCast)
}

// parseCast implements the right-associative "as" operator, whose
// right-hand argument is a type rather than an expression.
func (p *Parser) parseCast() (ast.Expr, error) {
	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for p.atKeyword("as") {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		ty, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		operand = &ast.CastExpr{Loc: tok.Loc, Operand: operand, TargetTy: ty}
	}

	return operand, nil
}

// parseUnary handles the prefix unary operators (negation "-" and boolean
// not "!"), which bind tighter than casting but looser than postfix. No
// bitwise-not operator is parsed.
func (p *Parser) parseUnary() (ast.Expr, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}

	var op ast.UnaryOp
	matched := true
	switch {
	case tok.IsSymbol("-"):
		op = ast.OpNeg
	case tok.IsSymbol("!"):
		op = ast.OpNot
	default:
		matched = false
	}

	if !matched {
		return p.parsePostfix()
	}

	opTok, err := p.next()
	if err != nil {
		return nil, err
	}
	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &ast.UnaryExpr{Loc: opTok.Loc, Op: op, Operand: operand}, nil
}

// parsePostfix handles the postfix tier: field access ".", indexing "[]",
// calls "(...)", and path resolution "::", all left-associative and
// chainable on the same operand.
func (p *Parser) parsePostfix() (ast.Expr, error) {
	operand, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}

		switch {
		case tok.IsSymbol("."):
			if _, err := p.next(); err != nil {
				return nil, err
			}
			nameTok, err := p.next()
			if err != nil {
				return nil, err
			}
			if nameTok.Class == lexer.ClassIntegerLiteral {
				operand = &ast.TupleIndex{Loc: tok.Loc, Operand: operand, Index: mustAtoi(nameTok.Lexeme)}
			} else if nameTok.Class == lexer.ClassIdentifier {
				operand = &ast.FieldAccess{Loc: tok.Loc, Operand: operand, Field: nameTok.Lexeme}
			} else {
				return nil, p.unexpected(nameTok, "field name", "tuple index")
			}
		case tok.IsSymbol("::"):
			if _, err := p.next(); err != nil {
				return nil, err
			}
			nameTok, err := p.expectIdentifier()
			if err != nil {
				return nil, err
			}
			operand = &ast.PathExpr{Loc: tok.Loc, Left: operand, Right: nameTok.Lexeme}
		case tok.IsSymbol("["):
			operand, err = p.parseIndexOrSlice(operand, tok)
			if err != nil {
				return nil, err
			}
		case tok.IsSymbol("("):
			operand, err = p.parseCall(operand, tok)
			if err != nil {
				return nil, err
			}
		default:
			return operand, nil
		}
	}
}

func (p *Parser) parseIndexOrSlice(operand ast.Expr, open lexer.Token) (ast.Expr, error) {
	if _, err := p.next(); err != nil { // consume "["
		return nil, err
	}

	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if p.atSymbol("..") || p.atSymbol("..=") {
		incTok, err := p.next()
		if err != nil {
			return nil, err
		}
		inclusive := incTok.Lexeme == "..="
		end, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectSymbol("]"); err != nil {
			return nil, err
		}
		return &ast.SliceExpr{Loc: open.Loc, Operand: operand, Start: first, End: end, Inclusive: inclusive}, nil
	}

	if _, err := p.expectSymbol("]"); err != nil {
		return nil, err
	}
	return &ast.IndexExpr{Loc: open.Loc, Operand: operand, Index: first}, nil
}

func (p *Parser) parseCall(callee ast.Expr, open lexer.Token) (ast.Expr, error) {
	if _, err := p.next(); err != nil { // consume "("
		return nil, err
	}

	var args []ast.Expr
	if !p.atSymbol(")") {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.atSymbol(",") {
				if _, err := p.next(); err != nil {
					return nil, err
				}
				if p.atSymbol(")") {
					break
				}
				continue
			}
			break
		}
	}
	if _, err := p.expectSymbol(")"); err != nil {
		return nil, err
	}

	return &ast.CallExpr{Loc: open.Loc, Callee: callee, Args: args}, nil
}

func mustAtoi(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
	}
	return n
}
