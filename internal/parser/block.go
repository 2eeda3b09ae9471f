package parser

import "github.com/dekarrin/zkcircuit/internal/ast"

// parseBlock parses "{ stmt* trailingExpr? }". A statement is distinguished
// from the trailing expression by whether it is followed by ";" (statement)
// or "}" (trailing expression, becomes the block's value).
func (p *Parser) parseBlock() (*ast.BlockExpr, error) {
	openTok, err := p.expectSymbol("{")
	if err != nil {
		return nil, err
	}

	block := &ast.BlockExpr{Loc: openTok.Loc}

	for !p.atSymbol("}") {
		if p.startsStatement() {
			stmt, err := p.parseStmt()
			if err != nil {
				return nil, err
			}
			block.Statements = append(block.Statements, stmt)
			continue
		}

		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		if p.atSymbol(";") {
			if _, err := p.next(); err != nil {
				return nil, err
			}
			block.Statements = append(block.Statements, &ast.ExpressionStmt{Loc: expr.Location(), Expr: expr})
			continue
		}

		block.TrailingExpr = expr
		break
	}

	if _, err := p.expectSymbol("}"); err != nil {
		return nil, err
	}
	return block, nil
}

// condExpr parses an expression with struct literals disabled, for use as
// an if/match/for condition or scrutinee that is immediately followed by a
// block.
func (p *Parser) condExpr() (ast.Expr, error) {
	prev := p.noStructLit
	p.noStructLit = true
	defer func() { p.noStructLit = prev }()
	return p.parseExpr()
}

func (p *Parser) parseIf() (ast.Expr, error) {
	ifTok, err := p.expectKeyword("if")
	if err != nil {
		return nil, err
	}

	cond, err := p.condExpr()
	if err != nil {
		return nil, err
	}

	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	node := &ast.IfExpr{Loc: ifTok.Loc, Cond: cond, Then: then}

	if p.atKeyword("else") {
		if _, err := p.next(); err != nil {
			return nil, err
		}
		if p.atKeyword("if") {
			elseIf, err := p.parseIf()
			if err != nil {
				return nil, err
			}
			node.Else = elseIf
		} else {
			elseBlock, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			node.Else = elseBlock
		}
	}

	return node, nil
}

func (p *Parser) parseMatch() (ast.Expr, error) {
	matchTok, err := p.expectKeyword("match")
	if err != nil {
		return nil, err
	}

	scrutinee, err := p.condExpr()
	if err != nil {
		return nil, err
	}

	if _, err := p.expectSymbol("{"); err != nil {
		return nil, err
	}

	node := &ast.MatchExpr{Loc: matchTok.Loc, Scrutinee: scrutinee}

	for !p.atSymbol("}") {
		armTok, err := p.peek()
		if err != nil {
			return nil, err
		}

		var pattern ast.Expr
		if p.atWildcard() {
			if _, err := p.next(); err != nil {
				return nil, err
			}
		} else {
			pattern, err = p.parseExpr()
			if err != nil {
				return nil, err
			}
		}

		if _, err := p.expectSymbol("=>"); err != nil {
			return nil, err
		}

		body, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		node.Arms = append(node.Arms, ast.MatchArm{Loc: armTok.Loc, Pattern: pattern, Body: body})

		if p.atSymbol(",") {
			if _, err := p.next(); err != nil {
				return nil, err
			}
		}
	}

	if _, err := p.expectSymbol("}"); err != nil {
		return nil, err
	}
	return node, nil
}

func (p *Parser) parseFor() (ast.Expr, error) {
	forTok, err := p.expectKeyword("for")
	if err != nil {
		return nil, err
	}

	identTok, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}

	if _, err := p.expectKeyword("in"); err != nil {
		return nil, err
	}

	from, err := p.condExpr()
	if err != nil {
		return nil, err
	}

	inclusive := false
	if p.atSymbol("..=") {
		inclusive = true
		if _, err := p.next(); err != nil {
			return nil, err
		}
	} else if _, err := p.expectSymbol(".."); err != nil {
		return nil, err
	}

	to, err := p.condExpr()
	if err != nil {
		return nil, err
	}

	var filter ast.Expr
	if p.atKeyword("while") {
		if _, err := p.next(); err != nil {
			return nil, err
		}
		filter, err = p.condExpr()
		if err != nil {
			return nil, err
		}
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	return &ast.ForExpr{
		Loc: forTok.Loc, Ident: identTok.Lexeme,
		RangeFrom: from, RangeTo: to, Inclusive: inclusive,
		Filter: filter, Body: body,
	}, nil
}
