package machine

import (
	"fmt"

	"github.com/mna/ember/lang/compiler"
	"github.com/mna/ember/lang/value"
)

func readU24(code []byte, ip int) int {
	return int(code[ip])<<16 | int(code[ip+1])<<8 | int(code[ip+2])
}

// Interpret compiles and runs source on a fresh top-level call frame. It
// returns a RuntimeError if execution aborted, or nil on normal
// completion; on compile errors it writes every one of them to th.Stderr
// and returns the first compiler.CompileError without running anything.
func (th *Thread) Interpret(source []byte) error {
	fn, errs := compiler.Compile(source)
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(th.Stderr, e.Error())
		}
		return errs[0]
	}

	return th.RunChunk(&fn.Chunk)
}

// RunChunk wraps chunk in a zero-arity top-level function and runs it
// directly, skipping compilation. Used by the asm command to drive
// hand-assembled instruction sequences through the same call/GC/error
// machinery as compiled source.
func (th *Thread) RunChunk(chunk *value.Chunk) error {
	fn := value.NewFunction("", 0)
	fn.Chunk = *chunk

	closure := value.NewClosure(fn)
	th.allocate(closure)
	th.push(value.NewObject(closure))
	if rerr := th.call(closure, 0); rerr != nil {
		return rerr
	}
	return th.run()
}

// run is the threaded-dispatch interpreter loop: decode, dispatch, repeat
// until the outermost call frame returns or a runtime error aborts it.
func (th *Thread) run() error {
	fr := &th.frames[th.frameCount-1]
	code := fr.closure.Fn.Chunk.Code
	constants := fr.closure.Fn.Chunk.Constants

	for {
		if th.gcPending {
			th.collectGarbage()
			th.gcPending = false
		}

		th.steps++
		if th.MaxSteps > 0 && th.steps > th.MaxSteps {
			return th.runtimeError("Execution aborted: step limit exceeded.")
		}
		if th.Ctx != nil && th.steps&0xff == 0 {
			if err := th.Ctx.Err(); err != nil {
				return th.runtimeError("Execution aborted: %s.", err)
			}
		}

		op := compiler.Opcode(code[fr.ip])
		fr.ip++

		switch op {
		case compiler.OP_CONSTANT:
			idx := int(code[fr.ip])
			fr.ip++
			th.push(th.loadConstant(constants[idx]))

		case compiler.OP_CONSTANT_LONG:
			idx := readU24(code, fr.ip)
			fr.ip += 3
			th.push(th.loadConstant(constants[idx]))

		case compiler.OP_NIL:
			th.push(value.Nil)
		case compiler.OP_TRUE:
			th.push(value.Bool(true))
		case compiler.OP_FALSE:
			th.push(value.Bool(false))

		case compiler.OP_POP:
			th.pop()
		case compiler.OP_POPN:
			n := readU24(code, fr.ip)
			fr.ip += 3
			th.sp -= n

		case compiler.OP_ADD:
			b, a := th.pop(), th.pop()
			v, rerr := th.add(a, b)
			if rerr != nil {
				return rerr
			}
			th.push(v)
		case compiler.OP_SUB:
			b, a := th.pop(), th.pop()
			v, rerr := th.sub(a, b)
			if rerr != nil {
				return rerr
			}
			th.push(v)
		case compiler.OP_MUL:
			b, a := th.pop(), th.pop()
			v, rerr := th.mul(a, b)
			if rerr != nil {
				return rerr
			}
			th.push(v)
		case compiler.OP_DIV:
			b, a := th.pop(), th.pop()
			v, rerr := th.div(a, b)
			if rerr != nil {
				return rerr
			}
			th.push(v)
		case compiler.OP_MOD:
			b, a := th.pop(), th.pop()
			v, rerr := th.mod(a, b)
			if rerr != nil {
				return rerr
			}
			th.push(v)
		case compiler.OP_NEGATE:
			a := th.pop()
			if !a.IsNumber() {
				return th.runtimeError("Operand must be a number.")
			}
			th.push(value.Number(-a.AsNumber()))

		case compiler.OP_NOT:
			th.push(value.Bool(!th.pop().Truthy()))

		case compiler.OP_EQUAL:
			b, a := th.pop(), th.pop()
			th.push(value.Bool(a.Equal(b)))
		case compiler.OP_NOT_EQUAL:
			b, a := th.pop(), th.pop()
			th.push(value.Bool(!a.Equal(b)))
		case compiler.OP_LESS:
			b, a := th.pop(), th.pop()
			v, rerr := th.compare(func(a, b float64) bool { return a < b }, a, b)
			if rerr != nil {
				return rerr
			}
			th.push(v)
		case compiler.OP_LESS_EQUAL:
			b, a := th.pop(), th.pop()
			v, rerr := th.compare(func(a, b float64) bool { return a <= b }, a, b)
			if rerr != nil {
				return rerr
			}
			th.push(v)
		case compiler.OP_GREATER:
			b, a := th.pop(), th.pop()
			v, rerr := th.compare(func(a, b float64) bool { return a > b }, a, b)
			if rerr != nil {
				return rerr
			}
			th.push(v)
		case compiler.OP_GREATER_EQUAL:
			b, a := th.pop(), th.pop()
			v, rerr := th.compare(func(a, b float64) bool { return a >= b }, a, b)
			if rerr != nil {
				return rerr
			}
			th.push(v)

		case compiler.OP_PRINT:
			v := th.pop()
			fmt.Fprintln(th.Stdout, v.String())

		case compiler.OP_DEFINE_GLOBAL, compiler.OP_DEFINE_GLOBAL_LONG:
			name := th.constantString(code, fr, op, compiler.OP_DEFINE_GLOBAL, constants)
			th.globals.Set(name, th.peek(0))
			th.pop()

		case compiler.OP_GET_GLOBAL, compiler.OP_GET_GLOBAL_LONG:
			name := th.constantString(code, fr, op, compiler.OP_GET_GLOBAL, constants)
			v, ok := th.globals.Get(name)
			if !ok {
				return th.runtimeError("Undefined variable '%s'.", name.String())
			}
			th.push(v)

		case compiler.OP_SET_GLOBAL, compiler.OP_SET_GLOBAL_LONG:
			name := th.constantString(code, fr, op, compiler.OP_SET_GLOBAL, constants)
			if _, ok := th.globals.Get(name); !ok {
				return th.runtimeError("Undefined variable '%s'.", name.String())
			}
			th.globals.Set(name, th.peek(0))

		case compiler.OP_GET_LOCAL:
			idx := readU24(code, fr.ip)
			fr.ip += 3
			th.push(th.stack[fr.slots+idx])
		case compiler.OP_SET_LOCAL:
			idx := readU24(code, fr.ip)
			fr.ip += 3
			th.stack[fr.slots+idx] = th.peek(0)

		case compiler.OP_GET_UPVALUE:
			idx := readU24(code, fr.ip)
			fr.ip += 3
			th.push(*fr.closure.Upvalues[idx].Location)
		case compiler.OP_SET_UPVALUE:
			idx := readU24(code, fr.ip)
			fr.ip += 3
			*fr.closure.Upvalues[idx].Location = th.peek(0)

		case compiler.OP_CLOSE_UPVALUE:
			th.closeUpvalues(&th.stack[th.sp-1])
			th.pop()

		case compiler.OP_ARRAY, compiler.OP_ARRAY_LONG:
			var n int
			if op == compiler.OP_ARRAY {
				n = int(code[fr.ip])
				fr.ip++
			} else {
				n = readU24(code, fr.ip)
				fr.ip += 3
			}
			elems := make([]value.Value, n)
			copy(elems, th.stack[th.sp-n:th.sp])
			th.sp -= n
			arr := value.NewArray(elems)
			th.allocate(arr)
			th.push(value.NewObject(arr))

		case compiler.OP_GET_INDEX:
			idx, recv := th.pop(), th.pop()
			v, rerr := th.getIndex(recv, idx)
			if rerr != nil {
				return rerr
			}
			th.push(v)
		case compiler.OP_SET_INDEX:
			val, idx, recv := th.pop(), th.pop(), th.pop()
			if rerr := th.setIndex(recv, idx, val); rerr != nil {
				return rerr
			}
			th.push(val)

		case compiler.OP_JUMP:
			offset := readU24(code, fr.ip)
			fr.ip += 3
			fr.ip += offset
		case compiler.OP_JUMP_IF_FALSE:
			offset := readU24(code, fr.ip)
			fr.ip += 3
			if !th.peek(0).Truthy() {
				fr.ip += offset
			}
		case compiler.OP_LOOP:
			offset := readU24(code, fr.ip)
			fr.ip += 3
			fr.ip -= offset

		case compiler.OP_CALL:
			argCount := int(code[fr.ip])
			fr.ip++
			if rerr := th.callValue(th.peek(argCount), argCount); rerr != nil {
				return rerr
			}
			fr = &th.frames[th.frameCount-1]
			code = fr.closure.Fn.Chunk.Code
			constants = fr.closure.Fn.Chunk.Constants

		case compiler.OP_CLOSURE, compiler.OP_CLOSURE_LONG:
			var idx int
			if op == compiler.OP_CLOSURE {
				idx = int(code[fr.ip])
				fr.ip++
			} else {
				idx = readU24(code, fr.ip)
				fr.ip += 3
			}
			fnVal := constants[idx].AsObject().(*value.Function)
			closure := value.NewClosure(fnVal)
			th.allocate(closure)
			for i := 0; i < fnVal.UpvalueCount; i++ {
				isLocal := code[fr.ip] != 0
				fr.ip++
				index := readU24(code, fr.ip)
				fr.ip += 3
				if isLocal {
					closure.Upvalues[i] = th.captureUpvalue(&th.stack[fr.slots+index])
				} else {
					closure.Upvalues[i] = fr.closure.Upvalues[index]
				}
			}
			th.push(value.NewObject(closure))

		case compiler.OP_RETURN:
			result := th.pop()
			th.closeUpvalues(&th.stack[fr.slots])
			th.frameCount--
			if th.frameCount == 0 {
				th.pop()
				return nil
			}
			th.sp = fr.slots
			th.push(result)
			fr = &th.frames[th.frameCount-1]
			code = fr.closure.Fn.Chunk.Code
			constants = fr.closure.Fn.Chunk.Constants

		case compiler.OP_CLASS:
			nameConst := int(code[fr.ip])
			fr.ip++
			name := th.loadConstant(constants[nameConst]).AsObject().(*value.String)
			class := value.NewClass(name)
			th.allocate(class)
			th.push(value.NewObject(class))

		case compiler.OP_METHOD:
			nameConst := int(code[fr.ip])
			fr.ip++
			name := th.loadConstant(constants[nameConst]).AsObject().(*value.String)
			method := th.pop().AsObject().(*value.Closure)
			class := th.peek(0).AsObject().(*value.Class)
			class.Methods.Set(name, value.NewObject(method))
			if name.String() == "init" {
				class.Init = method
			}

		case compiler.OP_INHERIT:
			superVal := th.peek(1)
			superClass, ok := superVal.AsObject().(*value.Class)
			if !ok {
				return th.runtimeError("Superclass must be a class.")
			}
			subClass := th.peek(0).AsObject().(*value.Class)
			superClass.Methods.Iterate(func(name *value.String, v value.Value) bool {
				subClass.Methods.Set(name, v)
				return true
			})
			subClass.Init = superClass.Init
			th.pop()

		case compiler.OP_GET_PROP, compiler.OP_GET_PROP_LONG:
			name := th.constantString(code, fr, op, compiler.OP_GET_PROP, constants)
			v, rerr := th.getProperty(th.peek(0), name)
			if rerr != nil {
				return rerr
			}
			th.pop()
			th.push(v)

		case compiler.OP_SET_PROP, compiler.OP_SET_PROP_LONG:
			name := th.constantString(code, fr, op, compiler.OP_SET_PROP, constants)
			val := th.peek(0)
			recv := th.peek(1)
			if rerr := th.setProperty(recv, name, val); rerr != nil {
				return rerr
			}
			th.pop()
			th.pop()
			th.push(val)

		case compiler.OP_INVOKE:
			nameConst := int(code[fr.ip])
			fr.ip++
			argCount := int(code[fr.ip])
			fr.ip++
			name := th.loadConstant(constants[nameConst]).AsObject().(*value.String)
			if rerr := th.invoke(name, argCount); rerr != nil {
				return rerr
			}
			fr = &th.frames[th.frameCount-1]
			code = fr.closure.Fn.Chunk.Code
			constants = fr.closure.Fn.Chunk.Constants

		case compiler.OP_GET_SUPER:
			nameConst := int(code[fr.ip])
			fr.ip++
			name := th.loadConstant(constants[nameConst]).AsObject().(*value.String)
			superClass := th.pop().AsObject().(*value.Class)
			receiver := th.pop()
			method, ok := superClass.BindMethod(name)
			if !ok {
				return th.runtimeError("Undefined property '%s'.", name.String())
			}
			bound := value.NewBoundMethod(receiver, method)
			th.allocate(bound)
			th.push(value.NewObject(bound))

		case compiler.OP_SUPER_INVOKE:
			nameConst := int(code[fr.ip])
			fr.ip++
			argCount := int(code[fr.ip])
			fr.ip++
			name := th.loadConstant(constants[nameConst]).AsObject().(*value.String)
			superClass := th.pop().AsObject().(*value.Class)
			if rerr := th.invokeFromClass(superClass, name, argCount); rerr != nil {
				return rerr
			}
			fr = &th.frames[th.frameCount-1]
			code = fr.closure.Fn.Chunk.Code
			constants = fr.closure.Fn.Chunk.Constants

		default:
			return th.runtimeError("internal error: unimplemented opcode %s", op)
		}
	}
}

// loadConstant re-canonicalizes string constants through the intern table
// on every load, since the compiler has no VM to intern against: two
// occurrences of the same literal text in a chunk's constant pool are
// distinct, uninterned *String objects until a load brings them through
// here.
func (th *Thread) loadConstant(v value.Value) value.Value {
	if v.IsObj() {
		if s, ok := v.AsObject().(*value.String); ok {
			return value.NewObject(th.internString(s.Chars))
		}
	}
	return v
}

// constantString reads a short or long constant-pool index depending on
// which of the two opcodes shortOp/op matches, and returns the interned
// string at that index.
func (th *Thread) constantString(code []byte, fr *CallFrame, op, shortOp compiler.Opcode, constants []value.Value) *value.String {
	var idx int
	if op == shortOp {
		idx = int(code[fr.ip])
		fr.ip++
	} else {
		idx = readU24(code, fr.ip)
		fr.ip += 3
	}
	return th.loadConstant(constants[idx]).AsObject().(*value.String)
}
