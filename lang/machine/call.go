package machine

import "github.com/mna/ember/lang/value"

// callValue implements CALL(n)'s dispatch table: closures push a frame,
// natives run immediately, classes instantiate (routing through init if
// present), and bound methods rebind their receiver before calling through.
func (th *Thread) callValue(callee value.Value, argCount int) *RuntimeError {
	if !callee.IsObj() {
		return th.runtimeError("Can only call functions and classes.")
	}
	switch obj := callee.AsObject().(type) {
	case *value.Closure:
		return th.call(obj, argCount)
	case *value.Native:
		return th.callNative(obj, argCount)
	case *value.Class:
		return th.instantiate(obj, argCount)
	case *value.BoundMethod:
		th.stack[th.sp-argCount-1] = obj.Receiver
		return th.call(obj.Method, argCount)
	default:
		return th.runtimeError("Can only call functions and classes.")
	}
}

func (th *Thread) call(closure *value.Closure, argCount int) *RuntimeError {
	if argCount != closure.Fn.Arity {
		return th.runtimeError("Expected %d arguments but got %d.", closure.Fn.Arity, argCount)
	}
	if th.frameCount == len(th.frames) {
		return th.runtimeError("Stack overflow.")
	}
	fr := &th.frames[th.frameCount]
	th.frameCount++
	fr.closure = closure
	fr.ip = 0
	fr.slots = th.sp - argCount - 1
	return nil
}

func (th *Thread) callNative(native *value.Native, argCount int) *RuntimeError {
	if argCount != native.Arity {
		return th.runtimeError("Expected %d arguments but got %d.", native.Arity, argCount)
	}
	args := th.stack[th.sp-argCount : th.sp]
	result, err := native.Fn(args)
	if err != nil {
		return th.runtimeError("%s", err.Error())
	}
	th.sp -= argCount + 1
	th.push(result)
	return nil
}

func (th *Thread) instantiate(class *value.Class, argCount int) *RuntimeError {
	inst := value.NewInstance(class)
	th.allocate(inst)
	th.stack[th.sp-argCount-1] = value.NewObject(inst)

	if class.Init != nil {
		return th.call(class.Init, argCount)
	}
	if argCount != 0 {
		return th.runtimeError("Expected 0 arguments but got %d.", argCount)
	}
	return nil
}

// invoke is the fused get-then-call path for `recv.name(args)`: if name is
// a field holding a callable value, call it; otherwise resolve a method on
// the receiver's class and call it directly, skipping BoundMethod
// allocation entirely.
func (th *Thread) invoke(name *value.String, argCount int) *RuntimeError {
	receiver := th.peek(argCount)
	if !receiver.IsObj() {
		return th.runtimeError("Only instances have methods.")
	}
	inst, ok := receiver.AsObject().(*value.Instance)
	if !ok {
		return th.runtimeError("Only instances have methods.")
	}

	if field, ok := inst.Fields.Get(name); ok {
		th.stack[th.sp-argCount-1] = field
		return th.callValue(field, argCount)
	}
	return th.invokeFromClass(inst.Class, name, argCount)
}

func (th *Thread) invokeFromClass(class *value.Class, name *value.String, argCount int) *RuntimeError {
	method, ok := class.BindMethod(name)
	if !ok {
		return th.runtimeError("Undefined property '%s'.", name.String())
	}
	return th.call(method, argCount)
}
