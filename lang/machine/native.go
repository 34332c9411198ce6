package machine

import (
	"bufio"
	"fmt"
	"math"
	"time"

	"github.com/mna/ember/lang/value"
)

// installNatives seeds globals with the language's fixed set of built-in
// routines: clock, sqrt, input, len.
func installNatives(th *Thread) {
	th.defineNative("clock", 0, th.natClock)
	th.defineNative("sqrt", 1, th.natSqrt)
	th.defineNative("input", 0, th.natInput)
	th.defineNative("len", 1, th.natLen)
}

func (th *Thread) defineNative(name string, arity int, fn value.NativeFunc) {
	n := value.NewNative(name, arity, fn)
	th.allocate(n)
	key := th.internString([]byte(name))
	th.globals.Set(key, value.NewObject(n))
}

func (th *Thread) natClock(args []value.Value) (value.Value, error) {
	return value.Number(time.Since(th.startTime).Seconds()), nil
}

func (th *Thread) natSqrt(args []value.Value) (value.Value, error) {
	if !args[0].IsNumber() {
		return value.Nil, fmt.Errorf("sqrt() argument must be a number.")
	}
	return value.Number(math.Sqrt(args[0].AsNumber())), nil
}

func (th *Thread) natInput(args []value.Value) (value.Value, error) {
	scanner := bufio.NewScanner(th.Stdin)
	if !scanner.Scan() {
		return value.NewObject(th.internString(nil)), nil
	}
	return value.NewObject(th.internString(scanner.Bytes())), nil
}

func (th *Thread) natLen(args []value.Value) (value.Value, error) {
	if arr, ok := asArray(args[0]); ok {
		return value.Number(float64(len(arr.Elems))), nil
	}
	if str, ok := asString(args[0]); ok {
		return value.Number(float64(str.Len())), nil
	}
	return value.Nil, fmt.Errorf("len() argument must be a string or array.")
}
