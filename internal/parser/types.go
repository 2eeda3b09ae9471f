package parser

import (
	"github.com/dekarrin/zkcircuit/internal/ast"
	"github.com/dekarrin/zkcircuit/internal/lexer"
)

// parseTypeExpr parses a type annotation: a bare name (possibly a
// bit-length-bearing integer keyword like "u248"), an array "[T; N]", a
// tuple "(T1, T2, ...)", or a map "map[K]V".
func (p *Parser) parseTypeExpr() (*ast.TypeExpr, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}

	switch {
	case tok.IsSymbol("["):
		if _, err := p.next(); err != nil {
			return nil, err
		}
		elem, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectSymbol(";"); err != nil {
			return nil, err
		}
		size, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectSymbol("]"); err != nil {
			return nil, err
		}
		return &ast.TypeExpr{Loc: tok.Loc, ArrayElem: elem, ArraySize: size}, nil

	case tok.IsSymbol("("):
		if _, err := p.next(); err != nil {
			return nil, err
		}
		var members []*ast.TypeExpr
		for !p.atSymbol(")") {
			m, err := p.parseTypeExpr()
			if err != nil {
				return nil, err
			}
			members = append(members, m)
			if p.atSymbol(",") {
				if _, err := p.next(); err != nil {
					return nil, err
				}
				continue
			}
			break
		}
		if _, err := p.expectSymbol(")"); err != nil {
			return nil, err
		}
		return &ast.TypeExpr{Loc: tok.Loc, Tuple: members}, nil

	default:
		nameTok, err := p.next()
		if err != nil {
			return nil, err
		}
		if nameTok.Class != lexer.ClassIdentifier && nameTok.Class != lexer.ClassKeyword {
			return nil, p.unexpected(nameTok, "type name")
		}
		if nameTok.Lexeme == "map" && p.atSymbol("[") {
			if _, err := p.next(); err != nil {
				return nil, err
			}
			key, err := p.parseTypeExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expectSymbol("]"); err != nil {
				return nil, err
			}
			val, err := p.parseTypeExpr()
			if err != nil {
				return nil, err
			}
			return &ast.TypeExpr{Loc: nameTok.Loc, MapKey: key, MapValue: val}, nil
		}
		return &ast.TypeExpr{Loc: nameTok.Loc, Name: nameTok.Lexeme}, nil
	}
}
