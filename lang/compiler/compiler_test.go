package compiler_test

import (
	"testing"

	"github.com/mna/ember/lang/compiler"
	"github.com/stretchr/testify/require"
)

func TestCompileSimpleExpression(t *testing.T) {
	fn, errs := compiler.Compile([]byte(`print 1 + 2 * 3;`))
	require.Empty(t, errs)
	require.NotNil(t, fn)
	require.Contains(t, compiler.Disassemble(&fn.Chunk, "test"), "constant")
}

func TestCompileReportsDuplicateLocal(t *testing.T) {
	_, errs := compiler.Compile([]byte(`{ var a = 1; var a = 2; }`))
	require.NotEmpty(t, errs)
}

func TestCompileReportsReturnAtTopLevel(t *testing.T) {
	_, errs := compiler.Compile([]byte(`return 1;`))
	require.NotEmpty(t, errs)
}

func TestCompileReportsInvalidAssignmentTarget(t *testing.T) {
	_, errs := compiler.Compile([]byte(`1 + 2 = 3;`))
	require.NotEmpty(t, errs)
}

func TestCompilePanicModeResyncsAtStatementBoundary(t *testing.T) {
	// two independent syntax errors, each in its own statement: both must be
	// reported, proving panic mode clears at the semicolon instead of
	// swallowing every error after the first.
	_, errs := compiler.Compile([]byte(`var ; var ;`))
	require.GreaterOrEqual(t, len(errs), 2)
}

func TestCompileAcceptsInheritanceSyntax(t *testing.T) {
	fn, errs := compiler.Compile([]byte(`class A {} class B < A {}`))
	require.Empty(t, errs)
	require.NotNil(t, fn)
}
