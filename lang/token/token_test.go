package token_test

import (
	"testing"

	"github.com/mna/ember/lang/token"
	"github.com/stretchr/testify/require"
)

func TestKeywords(t *testing.T) {
	require.Equal(t, token.CLASS, token.Keywords["class"])
	require.Equal(t, token.AND, token.Keywords["and"])
	_, ok := token.Keywords["notakeyword"]
	require.False(t, ok)
}

func TestKindString(t *testing.T) {
	require.Equal(t, "+", token.PLUS.String())
	require.Equal(t, "class", token.CLASS.String())
}

func TestPos(t *testing.T) {
	p := token.MakePos(12, 3)
	line, col := p.LineCol()
	require.Equal(t, 12, line)
	require.Equal(t, 3, col)
	require.False(t, p.Unknown())
	require.True(t, token.Pos(0).Unknown())
}
