package parser

import (
	"github.com/dekarrin/zkcircuit/internal/lexer"
	"github.com/dekarrin/zkcircuit/internal/zkerrors"
)

func (p *Parser) errf(tok lexer.Token, hint string, expected []string, format string, a ...interface{}) error {
	e := zkerrors.New(zkerrors.KindSyntax, tok.Loc, &zkerrors.SyntaxDetail{
		Expected: expected,
		Found:    tok.Lexeme,
		Hint:     hint,
	}, format, a...)
	return e
}

func (p *Parser) unexpected(tok lexer.Token, expected ...string) error {
	found := tok.Lexeme
	if tok.Class == lexer.ClassEOF {
		found = "end of file"
	}
	return p.errf(tok, "", expected, "unexpected %s %q", tok.Class, found)
}
