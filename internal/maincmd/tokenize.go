package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/ember/lang/scanner"
	"github.com/mna/ember/lang/token"
	"github.com/mna/mainer"
)

func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return TokenizeFiles(stdio, args...)
}

func TokenizeFiles(stdio mainer.Stdio, files ...string) error {
	var lastErr error
	for _, file := range files {
		source, err := os.ReadFile(file)
		if err != nil {
			lastErr = wrapIOError(err)
			printError(stdio, lastErr)
			continue
		}

		var s scanner.Scanner
		s.Init(source)
		for {
			tok := s.Next()
			fmt.Fprintf(stdio.Stdout, "%d: %s", tok.Line, tok.Kind)
			if tok.Lexeme != "" {
				fmt.Fprintf(stdio.Stdout, " %q", tok.Lexeme)
			}
			fmt.Fprintln(stdio.Stdout)
			if tok.Kind == token.EOF || tok.Kind == token.ILLEGAL {
				if tok.Kind == token.ILLEGAL {
					lastErr = fmt.Errorf("%s:%d: %s", file, tok.Line, tok.Message)
					printError(stdio, lastErr)
				}
				break
			}
		}
	}
	return lastErr
}
