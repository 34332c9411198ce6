package scanner

import "github.com/mna/ember/lang/token"

// identifier scans an [A-Za-z_][A-Za-z_0-9]* run and classifies it as a
// keyword or a plain identifier. The keyword check is a hand-written trie
// over the first byte, mirroring the dispatch the original C lexer builds
// with nested switch statements rather than a map lookup on the hot path.
func (s *Scanner) identifier() token.Token {
	for isAlpha(s.peek()) || isDigit(s.peek()) {
		s.cur++
	}
	return s.make(s.identifierKind())
}

func (s *Scanner) identifierKind() token.Kind {
	lexeme := s.src[s.start:s.cur]
	switch lexeme[0] {
	case 'a':
		return s.checkKeyword(lexeme, "and", token.AND)
	case 'c':
		return s.checkKeyword(lexeme, "class", token.CLASS)
	case 'e':
		return s.checkKeyword(lexeme, "else", token.ELSE)
	case 'f':
		if len(lexeme) > 1 {
			switch lexeme[1] {
			case 'a':
				return s.checkKeyword(lexeme, "false", token.FALSE)
			case 'o':
				return s.checkKeyword(lexeme, "for", token.FOR)
			case 'u':
				return s.checkKeyword(lexeme, "fun", token.FUN)
			}
		}
	case 'i':
		return s.checkKeyword(lexeme, "if", token.IF)
	case 'n':
		return s.checkKeyword(lexeme, "nil", token.NIL)
	case 'o':
		return s.checkKeyword(lexeme, "or", token.OR)
	case 'p':
		return s.checkKeyword(lexeme, "print", token.PRINT)
	case 'r':
		return s.checkKeyword(lexeme, "return", token.RETURN)
	case 's':
		return s.checkKeyword(lexeme, "super", token.SUPER)
	case 't':
		if len(lexeme) > 1 {
			switch lexeme[1] {
			case 'h':
				return s.checkKeyword(lexeme, "this", token.THIS)
			case 'r':
				return s.checkKeyword(lexeme, "true", token.TRUE)
			}
		}
	case 'v':
		return s.checkKeyword(lexeme, "var", token.VAR)
	case 'w':
		return s.checkKeyword(lexeme, "while", token.WHILE)
	}
	return token.IDENT
}

func (s *Scanner) checkKeyword(lexeme []byte, want string, kind token.Kind) token.Kind {
	if string(lexeme) == want {
		return kind
	}
	return token.IDENT
}
