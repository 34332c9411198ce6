package scanner

import "github.com/mna/ember/lang/token"

// string scans a "..." literal. No escape processing is performed; an
// embedded newline or a missing closing quote is an error.
func (s *Scanner) string() token.Token {
	for s.peek() != '"' && !s.atEnd() {
		if s.peek() == '\n' {
			return s.errorToken("Unterminated string.")
		}
		s.cur++
	}

	if s.atEnd() {
		return s.errorToken("Unterminated string.")
	}

	s.cur++ // closing quote
	tok := s.make(token.STRING)
	// Lexeme without the surrounding quotes, for the compiler's convenience.
	tok.Lexeme = string(s.src[s.start+1 : s.cur-1])
	return tok
}
