package parser

import "github.com/dekarrin/zkcircuit/internal/ast"

// parseItem parses one top-level (or mod-nested) item.
func (p *Parser) parseItem() (ast.Stmt, error) {
	public := false
	if p.atKeyword("pub") {
		if _, err := p.next(); err != nil {
			return nil, err
		}
		public = true
	}

	tok, err := p.peek()
	if err != nil {
		return nil, err
	}

	switch tok.Lexeme {
	case "fn":
		fn, err := p.parseFn()
		if err != nil {
			return nil, err
		}
		fn.Public = public
		return fn, nil
	case "mod":
		return p.parseMod()
	case "use":
		return p.parseUse()
	case "impl":
		return p.parseImpl()
	case "struct":
		return p.parseStruct()
	case "enum":
		return p.parseEnum()
	case "contract":
		return p.parseContract()
	case "type":
		return p.parseTypeAlias()
	case "const":
		return p.parseConstStmt()
	default:
		return nil, p.unexpected(tok, "fn", "mod", "use", "impl", "struct", "enum", "contract", "type", "const")
	}
}

func (p *Parser) parseMod() (ast.Stmt, error) {
	modTok, err := p.expectKeyword("mod")
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectSymbol("{"); err != nil {
		return nil, err
	}

	mod := &ast.ModStmt{Loc: modTok.Loc, Name: nameTok.Lexeme}
	for !p.atSymbol("}") {
		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		mod.Items = append(mod.Items, item)
	}
	if _, err := p.expectSymbol("}"); err != nil {
		return nil, err
	}
	return mod, nil
}

func (p *Parser) parseUse() (ast.Stmt, error) {
	useTok, err := p.expectKeyword("use")
	if err != nil {
		return nil, err
	}

	first, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	path := []string{first.Lexeme}

	for p.atSymbol("::") {
		if _, err := p.next(); err != nil {
			return nil, err
		}
		nameTok, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		path = append(path, nameTok.Lexeme)
	}

	if _, err := p.expectSymbol(";"); err != nil {
		return nil, err
	}
	return &ast.UseStmt{Loc: useTok.Loc, Path: path}, nil
}

func (p *Parser) parseImpl() (ast.Stmt, error) {
	implTok, err := p.expectKeyword("impl")
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectSymbol("{"); err != nil {
		return nil, err
	}

	impl := &ast.ImplStmt{Loc: implTok.Loc, TypeName: nameTok.Lexeme}
	for !p.atSymbol("}") {
		public := false
		if p.atKeyword("pub") {
			if _, err := p.next(); err != nil {
				return nil, err
			}
			public = true
		}
		fn, err := p.parseFn()
		if err != nil {
			return nil, err
		}
		fn.Public = public
		impl.Methods = append(impl.Methods, fn)
	}
	if _, err := p.expectSymbol("}"); err != nil {
		return nil, err
	}
	return impl, nil
}

func (p *Parser) parseFieldDeclList() ([]ast.StructFieldDecl, error) {
	if _, err := p.expectSymbol("{"); err != nil {
		return nil, err
	}

	var fields []ast.StructFieldDecl
	for !p.atSymbol("}") {
		nameTok, err := p.expectIdentifier()
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
		fields = append(fields, ast.StructFieldDecl{Loc: nameTok.Loc, Name: nameTok.Lexeme, Type: ty})

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
	return fields, nil
}

func (p *Parser) parseStruct() (ast.Stmt, error) {
	kwTok, err := p.expectKeyword("struct")
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	fields, err := p.parseFieldDeclList()
	if err != nil {
		return nil, err
	}
	return &ast.StructStmt{Loc: kwTok.Loc, Name: nameTok.Lexeme, Fields: fields}, nil
}

func (p *Parser) parseContract() (ast.Stmt, error) {
	kwTok, err := p.expectKeyword("contract")
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	fields, err := p.parseFieldDeclList()
	if err != nil {
		return nil, err
	}
	return &ast.ContractStmt{Loc: kwTok.Loc, Name: nameTok.Lexeme, Fields: fields}, nil
}

func (p *Parser) parseEnum() (ast.Stmt, error) {
	kwTok, err := p.expectKeyword("enum")
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}

	var baseTy *ast.TypeExpr
	if p.atSymbol(":") {
		if _, err := p.next(); err != nil {
			return nil, err
		}
		baseTy, err = p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.expectSymbol("{"); err != nil {
		return nil, err
	}

	enumStmt := &ast.EnumStmt{Loc: kwTok.Loc, Name: nameTok.Lexeme, BaseType: baseTy}
	for !p.atSymbol("}") {
		variantTok, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		var val ast.Expr
		if p.atSymbol("=") {
			if _, err := p.next(); err != nil {
				return nil, err
			}
			val, err = p.parseExpr()
			if err != nil {
				return nil, err
			}
		}
		enumStmt.Variants = append(enumStmt.Variants, ast.EnumVariant{Loc: variantTok.Loc, Name: variantTok.Lexeme, Value: val})

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
	return enumStmt, nil
}

func (p *Parser) parseTypeAlias() (ast.Stmt, error) {
	kwTok, err := p.expectKeyword("type")
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectSymbol("="); err != nil {
		return nil, err
	}
	ty, err := p.parseTypeExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectSymbol(";"); err != nil {
		return nil, err
	}
	return &ast.TypeStmt{Loc: kwTok.Loc, Name: nameTok.Lexeme, Alias: ty}, nil
}
