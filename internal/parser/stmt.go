package parser

import (
	"github.com/dekarrin/zkcircuit/internal/ast"
	"github.com/dekarrin/zkcircuit/internal/lexer"
)

// startsStatement reports whether the current lookahead begins one of the
// keyword-led statements (let/const/for/require/debug/fn) rather than a
// bare trailing/intermediate expression.
func (p *Parser) startsStatement() bool {
	tok, err := p.peek()
	if err != nil {
		return false
	}
	if tok.Class != lexer.ClassKeyword {
		return false
	}
	switch tok.Lexeme {
	case "let", "const", "for", "require", "debug", "fn":
		return true
	default:
		return false
	}
}

func (p *Parser) parseStmt() (ast.Stmt, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}

	switch tok.Lexeme {
	case "let":
		return p.parseLet()
	case "const":
		return p.parseConstStmt()
	case "for":
		forExpr, err := p.parseFor()
		if err != nil {
			return nil, err
		}
		fe := forExpr.(*ast.ForExpr)
		return &ast.LoopStmt{Loc: fe.Loc, For: fe}, nil
	case "require":
		return p.parseRequire()
	case "debug":
		return p.parseDebug()
	case "fn":
		return p.parseFn()
	default:
		return nil, p.unexpected(tok, "statement")
	}
}

func (p *Parser) parseLet() (ast.Stmt, error) {
	letTok, err := p.expectKeyword("let")
	if err != nil {
		return nil, err
	}

	mutable := false
	if p.atKeyword("mut") {
		mutable = true
		if _, err := p.next(); err != nil {
			return nil, err
		}
	}

	nameTok, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}

	var ty *ast.TypeExpr
	if p.atSymbol(":") {
		if _, err := p.next(); err != nil {
			return nil, err
		}
		ty, err = p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.expectSymbol("="); err != nil {
		return nil, err
	}

	val, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if _, err := p.expectSymbol(";"); err != nil {
		return nil, err
	}

	return &ast.LetStmt{Loc: letTok.Loc, Mutable: mutable, Name: nameTok.Lexeme, Type: ty, Value: val}, nil
}

func (p *Parser) parseConstStmt() (ast.Stmt, error) {
	constTok, err := p.expectKeyword("const")
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}

	var ty *ast.TypeExpr
	if p.atSymbol(":") {
		if _, err := p.next(); err != nil {
			return nil, err
		}
		ty, err = p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.expectSymbol("="); err != nil {
		return nil, err
	}
	val, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectSymbol(";"); err != nil {
		return nil, err
	}

	return &ast.ConstStmt{Loc: constTok.Loc, Name: nameTok.Lexeme, Type: ty, Value: val}, nil
}

func (p *Parser) parseRequire() (ast.Stmt, error) {
	reqTok, err := p.expectKeyword("require")
	if err != nil {
		return nil, err
	}
	if _, err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	msg := ""
	if p.atSymbol(",") {
		if _, err := p.next(); err != nil {
			return nil, err
		}
		msgTok, err := p.next()
		if err != nil {
			return nil, err
		}
		if msgTok.Class != lexer.ClassStringLiteral {
			return nil, p.unexpected(msgTok, "string literal")
		}
		msg = msgTok.Lexeme
		if len(msg) >= 2 {
			msg = msg[1 : len(msg)-1]
		}
	}

	if _, err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	if _, err := p.expectSymbol(";"); err != nil {
		return nil, err
	}

	return &ast.RequireStmt{Loc: reqTok.Loc, Cond: cond, Message: msg}, nil
}

func (p *Parser) parseDebug() (ast.Stmt, error) {
	dbgTok, err := p.expectKeyword("debug")
	if err != nil {
		return nil, err
	}
	if _, err := p.expectSymbol("("); err != nil {
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
				continue
			}
			break
		}
	}
	if _, err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	if _, err := p.expectSymbol(";"); err != nil {
		return nil, err
	}
	return &ast.DebugStmt{Loc: dbgTok.Loc, Args: args}, nil
}
