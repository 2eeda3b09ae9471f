package lexer

// Stream wraps a Lexer with a single token of lookahead, pulling tokens from
// the underlying scanner on demand (comments are produced by the Lexer but
// silently skipped here, since only the parser's diagnostics ever want to
// see them, and nothing in this toolchain does yet).
type Stream struct {
	lx      *Lexer
	lookVal Token
	lookErr error
	primed  bool
}

// NewStream builds a Stream over lx.
func NewStream(lx *Lexer) *Stream {
	return &Stream{lx: lx}
}

func (s *Stream) fill() {
	if s.primed {
		return
	}
	for {
		tok, err := s.lx.Next()
		if err != nil {
			s.lookErr = err
			s.primed = true
			return
		}
		if tok.Class == ClassComment {
			continue
		}
		s.lookVal = tok
		s.primed = true
		return
	}
}

// Peek returns the next token without consuming it.
func (s *Stream) Peek() (Token, error) {
	s.fill()
	return s.lookVal, s.lookErr
}

// Next consumes and returns the next token.
func (s *Stream) Next() (Token, error) {
	s.fill()
	tok, err := s.lookVal, s.lookErr
	s.primed = false
	return tok, err
}
