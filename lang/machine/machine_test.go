package machine_test

import (
	"bytes"
	"testing"

	"github.com/mna/ember/lang/machine"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, source string) (string, error) {
	t.Helper()
	th := machine.New()
	var out bytes.Buffer
	th.Stdout = &out
	err := th.Interpret([]byte(source))
	return out.String(), err
}

func TestArithmeticPrecedence(t *testing.T) {
	out, err := run(t, `print 1 + 2 * 3;`)
	require.NoError(t, err)
	require.Equal(t, "7\n", out)
}

func TestStringInterningEquality(t *testing.T) {
	out, err := run(t, `var a = "hi"; var b = "hi"; print a == b;`)
	require.NoError(t, err)
	require.Equal(t, "true\n", out)
}

func TestClosureCapturesMutableState(t *testing.T) {
	src := `
fun mk() {
  var i = 0;
  fun inc() { i = i+1; return i; }
  return inc;
}
var f = mk();
print f();
print f();
print f();
`
	out, err := run(t, src)
	require.NoError(t, err)
	require.Equal(t, "1\n2\n3\n", out)
}

func TestArrayLiteralAndIndexAssign(t *testing.T) {
	out, err := run(t, `var xs=[1,2,3]; xs[1]=9; print xs;`)
	require.NoError(t, err)
	require.Equal(t, "[ 1, 9, 3 ]\n", out)
}

func TestClassMethodAndFieldAccess(t *testing.T) {
	src := `
class A { greet(){ print "hi "+this.name; } }
var a=A();
a.name="x";
a.greet();
`
	out, err := run(t, src)
	require.NoError(t, err)
	require.Equal(t, "hi x\n", out)
}

func TestInheritanceSyntaxAccepted(t *testing.T) {
	src := `
class B{}
class C<B{}
fun f(){return C;}
print f()();
`
	out, err := run(t, src)
	require.NoError(t, err)
	require.Equal(t, "<C instance>\n", out)
}

func TestGCStressMatchesNormalOutput(t *testing.T) {
	src := `
fun mk() {
  var i = 0;
  fun inc() { i = i+1; return i; }
  return inc;
}
var f = mk();
var xs = [];
var n = 0;
while (n < 50) {
  xs = xs + [f()];
  n = n + 1;
}
print xs;
`
	baseline, err := run(t, src)
	require.NoError(t, err)

	th := machine.New()
	th.GCStress = true
	var out bytes.Buffer
	th.Stdout = &out
	require.NoError(t, th.Interpret([]byte(src)))
	require.Equal(t, baseline, out.String())
}

func TestDivisionByZeroIsRuntimeError(t *testing.T) {
	th := machine.New()
	var out, errOut bytes.Buffer
	th.Stdout = &out
	th.Stderr = &errOut
	err := th.Interpret([]byte(`print 1/0;`))
	require.Error(t, err)
	require.Contains(t, errOut.String(), "Division by zero.")
}

func TestUndefinedVariableIsRuntimeError(t *testing.T) {
	th := machine.New()
	var errOut bytes.Buffer
	th.Stderr = &errOut
	err := th.Interpret([]byte(`print nope;`))
	require.Error(t, err)
	require.Contains(t, errOut.String(), "Undefined variable 'nope'.")
}

func TestNativeBuiltins(t *testing.T) {
	out, err := run(t, `print len("hello"); print len([1,2,3]); print sqrt(16);`)
	require.NoError(t, err)
	require.Equal(t, "5\n3\n4\n", out)
}
