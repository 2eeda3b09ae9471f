package lexer

import (
	"github.com/dekarrin/zkcircuit/internal/source"
	"github.com/dekarrin/zkcircuit/internal/zkerrors"
)

func lexErr(kind zkerrors.LexicalKind, loc source.Location, line string, format string, a ...interface{}) error {
	e := zkerrors.New(zkerrors.KindLexical, loc, &zkerrors.LexicalDetail{Kind: kind}, format, a...)
	return e.WithSourceLine(line)
}
