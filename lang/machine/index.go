package machine

import "github.com/mna/ember/lang/value"

// wrapIndex normalizes a float index to a non-negative int index modulo n,
// matching GET_INDEX/SET_INDEX's "modulo length" array semantics.
func wrapIndex(idx float64, n int) int {
	i := int(idx) % n
	if i < 0 {
		i += n
	}
	return i
}

func (th *Thread) getIndex(receiver, index value.Value) (value.Value, *RuntimeError) {
	if arr, ok := asArray(receiver); ok {
		if !index.IsNumber() {
			return value.Nil, th.runtimeError("Array index must be a number.")
		}
		if len(arr.Elems) == 0 {
			return value.Nil, th.runtimeError("Cannot index into an empty array.")
		}
		return arr.Elems[wrapIndex(index.AsNumber(), len(arr.Elems))], nil
	}
	if str, ok := asString(receiver); ok {
		if !index.IsNumber() {
			return value.Nil, th.runtimeError("String index must be a number.")
		}
		if str.Len() == 0 {
			return value.Nil, th.runtimeError("Cannot index into an empty string.")
		}
		i := wrapIndex(index.AsNumber(), str.Len())
		return value.NewObject(th.internString(str.Chars[i : i+1])), nil
	}
	if receiver.IsObj() {
		if inst, ok := receiver.AsObject().(*value.Instance); ok {
			key, ok := asString(index)
			if !ok {
				return value.Nil, th.runtimeError("Instance field key must be a string.")
			}
			v, ok := inst.Fields.Get(key)
			if !ok {
				return value.Nil, th.runtimeError("Undefined property '%s'.", key.String())
			}
			return v, nil
		}
	}
	return value.Nil, th.runtimeError("Only arrays, strings and instances support indexing.")
}

func (th *Thread) setIndex(receiver, index, val value.Value) *RuntimeError {
	if arr, ok := asArray(receiver); ok {
		if !index.IsNumber() {
			return th.runtimeError("Array index must be a number.")
		}
		if len(arr.Elems) == 0 {
			return th.runtimeError("Cannot index into an empty array.")
		}
		arr.Elems[wrapIndex(index.AsNumber(), len(arr.Elems))] = val
		return nil
	}
	if str, ok := asString(receiver); ok {
		if !index.IsNumber() {
			return th.runtimeError("String index must be a number.")
		}
		repl, ok := asString(val)
		if !ok || repl.Len() != 1 {
			return th.runtimeError("String index assignment requires a single-character string.")
		}
		if str.Len() == 0 {
			return th.runtimeError("Cannot index into an empty string.")
		}
		i := wrapIndex(index.AsNumber(), str.Len())

		// Strings mutate like arrays: SET_INDEX edits the receiver's bytes
		// in place so every alias of this *String observes the change, the
		// same reference semantics arrays get. The intern table is kept in
		// sync with the new content so future lookups by content still
		// resolve correctly; a collision with a distinct already-interned
		// string of the resulting content is the one case where two
		// objects end up holding equal bytes (documented in DESIGN.md).
		oldKey := string(str.Chars)
		str.Chars[i] = repl.Chars[0]
		newKey := string(str.Chars)
		if newKey != oldKey {
			if th.strings[oldKey] == str {
				delete(th.strings, oldKey)
			}
			if _, exists := th.strings[newKey]; !exists {
				th.strings[newKey] = str
			}
		}
		return nil
	}
	if receiver.IsObj() {
		if inst, ok := receiver.AsObject().(*value.Instance); ok {
			key, ok := asString(index)
			if !ok {
				return th.runtimeError("Instance field key must be a string.")
			}
			inst.Fields.Set(key, val)
			return nil
		}
	}
	return th.runtimeError("Only arrays, strings and instances support index assignment.")
}

func (th *Thread) getProperty(receiver value.Value, name *value.String) (value.Value, *RuntimeError) {
	if !receiver.IsObj() {
		return value.Nil, th.runtimeError("Only instances have properties.")
	}
	inst, ok := receiver.AsObject().(*value.Instance)
	if !ok {
		return value.Nil, th.runtimeError("Only instances have properties.")
	}
	if v, ok := inst.Fields.Get(name); ok {
		return v, nil
	}
	if method, ok := inst.Class.BindMethod(name); ok {
		bound := value.NewBoundMethod(receiver, method)
		th.allocate(bound)
		return value.NewObject(bound), nil
	}
	return value.Nil, th.runtimeError("Undefined property '%s'.", name.String())
}

func (th *Thread) setProperty(receiver value.Value, name *value.String, val value.Value) *RuntimeError {
	if !receiver.IsObj() {
		return th.runtimeError("Only instances have properties.")
	}
	inst, ok := receiver.AsObject().(*value.Instance)
	if !ok {
		return th.runtimeError("Only instances have properties.")
	}
	inst.Fields.Set(name, val)
	return nil
}
