package parser

import (
	"strings"

	"github.com/dekarrin/zkcircuit/internal/ast"
	"github.com/dekarrin/zkcircuit/internal/lexer"
	"github.com/dekarrin/zkcircuit/internal/source"
)

// parsePrimary parses the innermost operand: a literal, identifier or
// struct literal, `self`, a parenthesized/tuple expression, an array
// literal, or one of the block-like expressions (block, if, match, for).
func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}

	switch {
	case tok.Class == lexer.ClassIntegerLiteral:
		return p.parseIntegerLiteral()
	case tok.Class == lexer.ClassBooleanLiteral:
		if _, err := p.next(); err != nil {
			return nil, err
		}
		return &ast.Literal{Loc: tok.Loc, Kind: ast.LitBoolean, BoolValue: tok.Lexeme == "true"}, nil
	case tok.Class == lexer.ClassStringLiteral:
		if _, err := p.next(); err != nil {
			return nil, err
		}
		unquoted := tok.Lexeme
		if len(unquoted) >= 2 {
			unquoted = unquoted[1 : len(unquoted)-1]
		}
		return &ast.Literal{Loc: tok.Loc, Kind: ast.LitString, StrValue: unquoted}, nil
	case tok.IsKeyword("self"):
		if _, err := p.next(); err != nil {
			return nil, err
		}
		return &ast.SelfExpr{Loc: tok.Loc}, nil
	case tok.IsKeyword("Self"):
		if _, err := p.next(); err != nil {
			return nil, err
		}
		if !p.noStructLit && p.atSymbol("{") {
			return p.parseStructLiteralBody("Self", tok.Loc)
		}
		return &ast.SelfExpr{Loc: tok.Loc, IsTypeSelf: true}, nil
	case tok.IsKeyword("if"):
		return p.parseIf()
	case tok.IsKeyword("match"):
		return p.parseMatch()
	case tok.IsKeyword("for"):
		return p.parseFor()
	case tok.Class == lexer.ClassIdentifier:
		return p.parseIdentOrStructLiteral()
	case tok.IsSymbol("{"):
		return p.parseBlock()
	case tok.IsSymbol("("):
		return p.parseParenOrTuple()
	case tok.IsSymbol("["):
		return p.parseArrayLiteral()
	default:
		return nil, p.unexpected(tok, "expression")
	}
}

func (p *Parser) parseIntegerLiteral() (ast.Expr, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	base := 10
	switch tok.Base {
	case lexer.Base16:
		base = 16
	case lexer.Base2:
		base = 2
	case lexer.Base8:
		base = 8
	}
	digits := strings.ReplaceAll(tok.Lexeme, "_", "")
	if base != 10 {
		digits = digits[2:]
	}
	return &ast.Literal{Loc: tok.Loc, Kind: ast.LitInteger, IntValue: digits, IntBase: base}, nil
}

func (p *Parser) parseIdentOrStructLiteral() (ast.Expr, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	if !p.noStructLit && p.atSymbol("{") {
		return p.parseStructLiteralBody(tok.Lexeme, tok.Loc)
	}
	return &ast.Identifier{Loc: tok.Loc, Name: tok.Lexeme}, nil
}

func (p *Parser) parseStructLiteralBody(typeName string, _ source.Location) (ast.Expr, error) {
	openTok, err := p.expectSymbol("{")
	if err != nil {
		return nil, err
	}

	var fields []ast.StructField
	for !p.atSymbol("}") {
		nameTok, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectSymbol(":"); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		fields = append(fields, ast.StructField{Loc: nameTok.Loc, Name: nameTok.Lexeme, Value: val})

		if p.atSymbol(",") {
			if _, err := p.next(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if _, err := p.expectSymbol("}"); err != nil {
		return nil, err
	}

	return &ast.StructLiteral{Loc: openTok.Loc, TypeName: typeName, Fields: fields}, nil
}

func (p *Parser) parseParenOrTuple() (ast.Expr, error) {
	openTok, err := p.expectSymbol("(")
	if err != nil {
		return nil, err
	}

	if p.atSymbol(")") {
		if _, err := p.next(); err != nil {
			return nil, err
		}
		return &ast.TupleLiteral{Loc: openTok.Loc}, nil
	}

	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if !p.atSymbol(",") {
		if _, err := p.expectSymbol(")"); err != nil {
			return nil, err
		}
		return first, nil
	}

	elems := []ast.Expr{first}
	for p.atSymbol(",") {
		if _, err := p.next(); err != nil {
			return nil, err
		}
		if p.atSymbol(")") {
			break
		}
		next, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, next)
	}
	if _, err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	return &ast.TupleLiteral{Loc: openTok.Loc, Elements: elems}, nil
}

func (p *Parser) parseArrayLiteral() (ast.Expr, error) {
	openTok, err := p.expectSymbol("[")
	if err != nil {
		return nil, err
	}

	if p.atSymbol("]") {
		if _, err := p.next(); err != nil {
			return nil, err
		}
		return &ast.ArrayLiteral{Loc: openTok.Loc}, nil
	}

	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if p.atSymbol(";") {
		if _, err := p.next(); err != nil {
			return nil, err
		}
		count, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectSymbol("]"); err != nil {
			return nil, err
		}
		return &ast.ArrayLiteral{Loc: openTok.Loc, Repeated: first, RepeatCount: count}, nil
	}

	elems := []ast.Expr{first}
	for p.atSymbol(",") {
		if _, err := p.next(); err != nil {
			return nil, err
		}
		if p.atSymbol("]") {
			break
		}
		next, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, next)
	}
	if _, err := p.expectSymbol("]"); err != nil {
		return nil, err
	}
	return &ast.ArrayLiteral{Loc: openTok.Loc, Elements: elems}, nil
}
