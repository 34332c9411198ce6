package machine

import (
	"fmt"
)

// RuntimeError is returned by Interpret and RunChunk when the interpreter
// loop aborts: a type mismatch, arity mismatch, undefined variable or
// property, division by zero, or stack overflow. Its Error text is the
// message alone; the message and the call-stack trace (kept in Trace) have
// already been written to the thread's Stderr.
type RuntimeError struct {
	Message string
	Trace   []string
}

func (e *RuntimeError) Error() string { return e.Message }

// runtimeError formats msg, writes it and a stack trace (innermost frame
// first, source lines decoded via each frame's chunk line table) to
// th.Stderr, and returns the error that unwinds the interpreter loop.
func (th *Thread) runtimeError(format string, args ...any) *RuntimeError {
	msg := fmt.Sprintf(format, args...)
	rerr := &RuntimeError{Message: msg}

	fmt.Fprintln(th.Stderr, msg)
	for i := th.frameCount - 1; i >= 0; i-- {
		fr := &th.frames[i]
		fn := fr.closure.Fn
		line := fn.Chunk.LineFor(fr.ip - 1)
		name := fn.Name
		if name == "" {
			name = "script"
		}
		traceLine := fmt.Sprintf("[line %d] in %s", line, name)
		rerr.Trace = append(rerr.Trace, traceLine)
		fmt.Fprintln(th.Stderr, traceLine)
	}

	th.resetStack()
	return rerr
}
