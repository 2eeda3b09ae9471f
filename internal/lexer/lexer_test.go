package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func allTokens(t *testing.T, src string) []Token {
	t.Helper()
	lx := New(t.Name(), src)
	var toks []Token
	for {
		tok, err := lx.Next()
		if !assert.NoError(t, err) {
			return toks
		}
		toks = append(toks, tok)
		if tok.Class == ClassEOF {
			break
		}
	}
	return toks
}

func classes(toks []Token) []Class {
	cs := make([]Class, len(toks))
	for i, tok := range toks {
		cs[i] = tok.Class
	}
	return cs
}

func Test_Lexer_ClassSequence(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		expect []Class
	}{
		{name: "empty", input: "", expect: []Class{ClassEOF}},
		{name: "decimal literal", input: "248", expect: []Class{ClassIntegerLiteral, ClassEOF}},
		{name: "hex literal", input: "0xFF", expect: []Class{ClassIntegerLiteral, ClassEOF}},
		{name: "binary literal", input: "0b1010", expect: []Class{ClassIntegerLiteral, ClassEOF}},
		{name: "octal literal", input: "0o17", expect: []Class{ClassIntegerLiteral, ClassEOF}},
		{name: "bool literal", input: "true", expect: []Class{ClassBooleanLiteral, ClassEOF}},
		{name: "keyword", input: "let", expect: []Class{ClassKeyword, ClassEOF}},
		{name: "identifier", input: "result", expect: []Class{ClassIdentifier, ClassEOF}},
		{name: "string literal", input: `"too big"`, expect: []Class{ClassStringLiteral, ClassEOF}},
		{name: "line comment", input: "// hi\n1", expect: []Class{ClassComment, ClassIntegerLiteral, ClassEOF}},
		{name: "block comment", input: "/* hi */ 1", expect: []Class{ClassComment, ClassIntegerLiteral, ClassEOF}},
		{
			name:  "function signature symbols",
			input: "fn main(a: u8, b: u8) -> u8 {",
			expect: []Class{
				ClassKeyword, ClassIdentifier, ClassSymbol,
				ClassIdentifier, ClassSymbol, ClassIdentifier, ClassSymbol,
				ClassIdentifier, ClassSymbol, ClassIdentifier, ClassSymbol,
				ClassSymbol, ClassIdentifier, ClassSymbol, ClassEOF,
			},
		},
		{name: "range symbols", input: "0..5", expect: []Class{ClassIntegerLiteral, ClassSymbol, ClassIntegerLiteral, ClassEOF}},
		{name: "path symbol", input: "Self::new", expect: []Class{ClassKeyword, ClassSymbol, ClassIdentifier, ClassEOF}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			toks := allTokens(t, tc.input)
			assert.Equal(t, tc.expect, classes(toks))
		})
	}
}

func Test_Lexer_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{name: "unterminated string", input: `"abc`},
		{name: "unterminated block comment", input: `/* abc`},
		{name: "unknown character", input: "`"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			lx := New(t.Name(), tc.input)
			var err error
			for err == nil {
				var tok Token
				tok, err = lx.Next()
				if tok.Class == ClassEOF {
					break
				}
			}
			assert.Error(t, err)
		})
	}
}

func Test_Lexer_TracksLineAndColumn(t *testing.T) {
	lx := New(t.Name(), "a\nbb cc")
	tok1, err := lx.Next()
	assert.NoError(t, err)
	assert.Equal(t, 1, tok1.Loc.Line)
	assert.Equal(t, 1, tok1.Loc.Column)

	tok2, err := lx.Next()
	assert.NoError(t, err)
	assert.Equal(t, 2, tok2.Loc.Line)
	assert.Equal(t, 1, tok2.Loc.Column)

	tok3, err := lx.Next()
	assert.NoError(t, err)
	assert.Equal(t, 2, tok3.Loc.Line)
	assert.Equal(t, 4, tok3.Loc.Column)
}
