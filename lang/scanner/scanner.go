// Package scanner tokenizes ember source text on demand for lang/compiler.
package scanner

import (
	"github.com/mna/ember/lang/token"
)

// Scanner tokenizes a single source buffer for the compiler to consume one
// token at a time via Next.
type Scanner struct {
	src   []byte
	start int // start of the current token
	cur   int // offset of the next unread byte
	line  int
}

// Init initializes (or resets) the scanner to tokenize src.
func (s *Scanner) Init(src []byte) {
	s.src = src
	s.start = 0
	s.cur = 0
	s.line = 1
}

// Next scans and returns the next token in the source, or a token of Kind
// EOF once the source is exhausted.
func (s *Scanner) Next() token.Token {
	s.skipWhitespaceAndComments()
	s.start = s.cur

	if s.atEnd() {
		return s.make(token.EOF)
	}

	c := s.advance()
	switch {
	case isAlpha(c):
		return s.identifier()
	case isDigit(c):
		return s.number()
	}

	switch c {
	case '(':
		return s.make(token.LPAREN)
	case ')':
		return s.make(token.RPAREN)
	case '{':
		return s.make(token.LBRACE)
	case '}':
		return s.make(token.RBRACE)
	case '[':
		return s.make(token.LBRACK)
	case ']':
		return s.make(token.RBRACK)
	case ',':
		return s.make(token.COMMA)
	case '.':
		return s.make(token.DOT)
	case ';':
		return s.make(token.SEMI)
	case ':':
		return s.make(token.COLON)
	case '?':
		return s.make(token.QUEST)
	case '-':
		return s.make(token.MINUS)
	case '+':
		return s.make(token.PLUS)
	case '/':
		return s.make(token.SLASH)
	case '*':
		return s.make(token.STAR)
	case '%':
		return s.make(token.PERCENT)
	case '!':
		return s.make(s.either('=', token.BANG_EQ, token.BANG))
	case '=':
		return s.make(s.either('=', token.EQ_EQ, token.EQ))
	case '<':
		return s.make(s.either('=', token.LT_EQ, token.LT))
	case '>':
		return s.make(s.either('=', token.GT_EQ, token.GT))
	case '"':
		return s.string()
	}

	return s.errorToken("Unexpected character.")
}

func (s *Scanner) atEnd() bool { return s.cur >= len(s.src) }

func (s *Scanner) advance() byte {
	c := s.src[s.cur]
	s.cur++
	return c
}

func (s *Scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.src[s.cur]
}

func (s *Scanner) peekNext() byte {
	if s.cur+1 >= len(s.src) {
		return 0
	}
	return s.src[s.cur+1]
}

func (s *Scanner) match(want byte) bool {
	if s.atEnd() || s.src[s.cur] != want {
		return false
	}
	s.cur++
	return true
}

func (s *Scanner) either(want byte, yes, no token.Kind) token.Kind {
	if s.match(want) {
		return yes
	}
	return no
}

func (s *Scanner) skipWhitespaceAndComments() {
	for {
		switch s.peek() {
		case ' ', '\r', '\t':
			s.cur++
		case '\n':
			s.line++
			s.cur++
		case '/':
			if s.peekNext() == '/' {
				for s.peek() != '\n' && !s.atEnd() {
					s.cur++
				}
			} else if s.peekNext() == '*' {
				s.skipBlockComment()
			} else {
				return
			}
		default:
			return
		}
	}
}

func (s *Scanner) skipBlockComment() {
	s.cur += 2 // consume "/*"
	for !s.atEnd() {
		if s.peek() == '*' && s.peekNext() == '/' {
			s.cur += 2
			return
		}
		if s.peek() == '\n' {
			s.line++
		}
		s.cur++
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func (s *Scanner) make(kind token.Kind) token.Token {
	return token.Token{
		Kind:   kind,
		Start:  s.start,
		End:    s.cur,
		Line:   s.line,
		Lexeme: string(s.src[s.start:s.cur]),
	}
}

func (s *Scanner) errorToken(msg string) token.Token {
	return token.Token{
		Kind:    token.ILLEGAL,
		Start:   s.start,
		End:     s.cur,
		Line:    s.line,
		Message: msg,
	}
}
