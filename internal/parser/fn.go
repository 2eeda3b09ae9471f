package parser

import "github.com/dekarrin/zkcircuit/internal/ast"

// parseFn parses "[pub] fn name(self?, param: Type, ...) [-> Type] { body }".
func (p *Parser) parseFn() (*ast.FnStmt, error) {
	fnTok, err := p.expectKeyword("fn")
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}

	if _, err := p.expectSymbol("("); err != nil {
		return nil, err
	}

	fn := &ast.FnStmt{Loc: fnTok.Loc, Name: nameTok.Lexeme}

	if p.atKeyword("self") {
		if _, err := p.next(); err != nil {
			return nil, err
		}
		fn.TakesSelf = true
		if p.atSymbol(",") {
			if _, err := p.next(); err != nil {
				return nil, err
			}
		}
	}

	for !p.atSymbol(")") {
		paramTok, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectSymbol(":"); err != nil {
			return nil, err
		}
		ty, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		fn.Params = append(fn.Params, ast.Param{Loc: paramTok.Loc, Name: paramTok.Lexeme, Type: ty})

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

	if p.atSymbol("->") {
		if _, err := p.next(); err != nil {
			return nil, err
		}
		ty, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		fn.ReturnType = ty
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	fn.Body = body

	return fn, nil
}
