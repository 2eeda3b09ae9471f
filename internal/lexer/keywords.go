package lexer

// keywords is the reserved-word set. A word that lexes as an Identifier but
// matches an entry here is re-classed as ClassKeyword.
var keywords = map[string]bool{
	"let": true, "mut": true, "const": true, "static": true,
	"fn": true, "mod": true, "use": true, "impl": true,
	"struct": true, "enum": true, "contract": true, "type": true,
	"if": true, "else": true, "match": true, "for": true, "while": true,
	"in": true, "loop": true, "require": true, "debug": true,
	"as": true, "return": true, "pub": true, "self": true, "Self": true,
	"true": true, "false": true,
	"map": true,
}

// symbols is checked longest-match-first; order matters.
var symbols = []string{
	"::", "->", "=>", "..=", "..", "==", "!=", "<=", ">=", "&&", "||",
	"+=", "-=", "*=", "/=", "%=",
	"(", ")", "{", "}", "[", "]", ",", ";", ":", ".",
	"+", "-", "*", "/", "%", "=", "<", ">", "!", "&", "|", "^",
}
