// Package parser is a hand-written recursive-descent parser over a
// lexer.Stream. Binary expressions are parsed by a chain of tier functions,
// one per precedence level (assignment < or < xor < and < equality <
// comparison < add/sub < mul/div/rem < casting < unary < postfix), each
// delegating to the next tighter tier for its operands and looping to
// consume same-tier operators left-associatively — producing a tree that is
// already in the reverse-Polish order the bytecode generator walks.
//
// The parser keeps no internal lookahead buffer of its own: lexer.Stream
// already caches one token so repeated Peek calls do not re-scan, which is
// the same "one token of lookahead" guarantee spec.md describes, expressed
// as a property of the stream rather than threaded through every parse
// function's return value.
package parser

import (
	"github.com/dekarrin/zkcircuit/internal/ast"
	"github.com/dekarrin/zkcircuit/internal/lexer"
)

// Parser parses one source file's token stream into an ast.File.
type Parser struct {
	path   string
	stream *lexer.Stream

	// noStructLit suppresses parsing "Ident { ... }" as a struct literal
	// while parsing the condition of an if/match/for, the same ambiguity
	// the language's condition-before-brace grammar must resolve.
	noStructLit bool
}

// New builds a Parser over the given token stream.
func New(path string, stream *lexer.Stream) *Parser {
	return &Parser{path: path, stream: stream}
}

// ParseFile parses an entire source file: a flat sequence of top-level
// items, until EOF.
func ParseFile(path string, stream *lexer.Stream) (*ast.File, error) {
	p := New(path, stream)
	f := &ast.File{Path: path}

	for {
		tok, err := p.stream.Peek()
		if err != nil {
			return nil, err
		}
		if tok.Class == lexer.ClassEOF {
			break
		}
		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		f.Items = append(f.Items, item)
	}

	return f, nil
}

func (p *Parser) peek() (lexer.Token, error) {
	return p.stream.Peek()
}

func (p *Parser) next() (lexer.Token, error) {
	return p.stream.Next()
}

func (p *Parser) atSymbol(sym string) bool {
	tok, err := p.peek()
	return err == nil && tok.IsSymbol(sym)
}

func (p *Parser) atKeyword(kw string) bool {
	tok, err := p.peek()
	return err == nil && tok.IsKeyword(kw)
}

func (p *Parser) expectSymbol(sym string) (lexer.Token, error) {
	tok, err := p.next()
	if err != nil {
		return tok, err
	}
	if !tok.IsSymbol(sym) {
		return tok, p.unexpected(tok, sym)
	}
	return tok, nil
}

func (p *Parser) expectKeyword(kw string) (lexer.Token, error) {
	tok, err := p.next()
	if err != nil {
		return tok, err
	}
	if !tok.IsKeyword(kw) {
		return tok, p.unexpected(tok, kw)
	}
	return tok, nil
}

func (p *Parser) atWildcard() bool {
	tok, err := p.peek()
	return err == nil && tok.Class == lexer.ClassIdentifier && tok.Lexeme == "_"
}

func (p *Parser) expectIdentifier() (lexer.Token, error) {
	tok, err := p.next()
	if err != nil {
		return tok, err
	}
	if tok.Class != lexer.ClassIdentifier {
		return tok, p.unexpected(tok, "identifier")
	}
	return tok, nil
}
