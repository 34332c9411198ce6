package scanner_test

import (
	"testing"

	"github.com/mna/ember/lang/scanner"
	"github.com/mna/ember/lang/token"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, src string) []token.Token {
	t.Helper()
	var s scanner.Scanner
	s.Init([]byte(src))
	var toks []token.Token
	for {
		tok := s.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func TestBasicTokens(t *testing.T) {
	toks := scanAll(t, `var a = 1 + 2.5; // comment
print a;`)
	kinds := make([]token.Kind, len(toks))
	for i, tok := range toks {
		kinds[i] = tok.Kind
	}
	require.Equal(t, []token.Kind{
		token.VAR, token.IDENT, token.EQ, token.NUMBER, token.PLUS, token.NUMBER, token.SEMI,
		token.PRINT, token.IDENT, token.SEMI, token.EOF,
	}, kinds)
}

func TestStringLiteral(t *testing.T) {
	toks := scanAll(t, `"hello world"`)
	require.Equal(t, token.STRING, toks[0].Kind)
	require.Equal(t, "hello world", toks[0].Lexeme)
}

func TestUnterminatedString(t *testing.T) {
	toks := scanAll(t, `"hello`)
	require.Equal(t, token.ILLEGAL, toks[0].Kind)
}

func TestBlockComment(t *testing.T) {
	toks := scanAll(t, "/* multi\nline */ nil")
	require.Equal(t, token.NIL, toks[0].Kind)
	require.Equal(t, 2, toks[0].Line)
}

func TestKeywords(t *testing.T) {
	toks := scanAll(t, "class super this fun return")
	kinds := make([]token.Kind, 0, 5)
	for _, tok := range toks[:5] {
		kinds = append(kinds, tok.Kind)
	}
	require.Equal(t, []token.Kind{token.CLASS, token.SUPER, token.THIS, token.FUN, token.RETURN}, kinds)
}

func TestTwoCharOperators(t *testing.T) {
	toks := scanAll(t, "!= == <= >= < > = !")
	kinds := make([]token.Kind, 0, 8)
	for _, tok := range toks[:8] {
		kinds = append(kinds, tok.Kind)
	}
	require.Equal(t, []token.Kind{
		token.BANG_EQ, token.EQ_EQ, token.LT_EQ, token.GT_EQ, token.LT, token.GT, token.EQ, token.BANG,
	}, kinds)
}
