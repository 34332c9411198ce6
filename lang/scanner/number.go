package scanner

import "github.com/mna/ember/lang/token"

// number scans an unsigned decimal literal with an optional fractional
// part. Exponents are not supported (spec non-goal: all numbers are f64
// literals without scientific notation).
func (s *Scanner) number() token.Token {
	for isDigit(s.peek()) {
		s.cur++
	}

	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.cur++ // consume '.'
		for isDigit(s.peek()) {
			s.cur++
		}
	}

	return s.make(token.NUMBER)
}
