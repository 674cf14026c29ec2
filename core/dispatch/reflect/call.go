package reflect

import (
	"fmt"
	"reflect"

	"github.com/anoideaopen/latebinding/core/dispatch"
	"github.com/anoideaopen/latebinding/core/stringsx"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Call invokes a method on a given value using reflection. The method is looked
// up by its name first, then by its capitalised name, so "sum" finds Sum.
//
// Each parameter is converted to the type the method expects with ValueOf.
// Parameters passed by reference must target pointer arguments: the method
// receives a fresh cell initialised with the supplied value (or the supplied
// pointer itself when it already has the right type), and the value left in
// the cell is reported in the reply at the same position.
//
// A trailing error result is not part of the reply value: when it is non-nil
// Call returns it wrapped in a dispatch.TargetError. Methods returning nothing
// reply with a nil value, a single result is returned as is, several results
// are returned as []any.
//
// Example:
//
//	type Calculator struct{}
//
//	func (c *Calculator) MulFiveRef(x *int32) {
//	    *x *= 5
//	}
//
//	func main() {
//	    reply, err := Call(&Calculator{}, "MulFiveRef", dispatch.Param{Value: 10, ByRef: true})
//	    if err != nil {
//	        log.Fatalf("Error invoking method: %v", err)
//	    }
//	    fmt.Println(reply.Params[0]) // Output: 50
//	}
func Call(v any, method string, params ...dispatch.Param) (dispatch.Reply, error) {
	if v == nil {
		return dispatch.Reply{}, dispatch.ErrNilTarget
	}

	methodVal, ok := methodByName(reflect.ValueOf(v), method)
	if !ok {
		return dispatch.Reply{}, fmt.Errorf("%w: method %s", dispatch.ErrMemberNotFound, method)
	}

	return callFunc(methodVal, method, params)
}

// methodByName looks up a method by its name, then by its capitalised name.
// Methods declared on the pointer receiver are found for addressable values.
func methodByName(v reflect.Value, name string) (reflect.Value, bool) {
	for _, candidate := range stringsx.Candidates(name, "") {
		if m := v.MethodByName(candidate); m.IsValid() {
			return m, true
		}
		if v.Kind() != reflect.Pointer && v.CanAddr() {
			if m := v.Addr().MethodByName(candidate); m.IsValid() {
				return m, true
			}
		}
	}

	return reflect.Value{}, false
}

// callFunc calls fn, which may be a method value or a plain function.
func callFunc(fn reflect.Value, name string, params []dispatch.Param) (dispatch.Reply, error) {
	fnType := fn.Type()

	in, cells, err := arguments(fnType, name, params)
	if err != nil {
		return dispatch.Reply{}, err
	}

	if err = CheckArguments(name, in); err != nil {
		return dispatch.Reply{}, err
	}

	out, err := invoke(fn, name, in)
	if err != nil {
		return dispatch.Reply{}, err
	}

	value, err := results(name, fnType, out)
	if err != nil {
		return dispatch.Reply{}, err
	}

	reply := dispatch.Reply{
		Value:  value,
		Params: make([]any, len(params)),
	}
	for i, p := range params {
		if cells[i].IsValid() {
			reply.Params[i] = cells[i].Elem().Interface()
			continue
		}
		reply.Params[i] = p.Value
	}

	return reply, nil
}

// arguments converts params to the input types of fnType. The second result
// holds the reference cells, aligned with params; positions passed by value
// hold the zero reflect.Value.
func arguments(fnType reflect.Type, name string, params []dispatch.Param) ([]reflect.Value, []reflect.Value, error) {
	numIn := fnType.NumIn()
	variadic := fnType.IsVariadic()

	if (!variadic && len(params) != numIn) || (variadic && len(params) < numIn-1) {
		return nil, nil, fmt.Errorf(
			"%w: found %d but expected %d: call %s",
			dispatch.ErrArgumentCount,
			len(params),
			numIn,
			name,
		)
	}

	var (
		in    = make([]reflect.Value, len(params))
		cells = make([]reflect.Value, len(params))
		err   error
	)
	for i, p := range params {
		argType := inputType(fnType, i)

		if p.ByRef {
			if cells[i], err = refCell(p.Value, argType); err != nil {
				return nil, nil, fmt.Errorf("%w: call %s, argument %d", err, name, i)
			}
			in[i] = cells[i]
			continue
		}

		if in[i], err = ValueOf(p.Value, argType); err != nil {
			return nil, nil, fmt.Errorf("%w: call %s, argument %d", err, name, i)
		}
	}

	return in, cells, nil
}

// inputType returns the type of the i-th argument, unpacking the variadic tail.
func inputType(fnType reflect.Type, i int) reflect.Type {
	last := fnType.NumIn() - 1
	if fnType.IsVariadic() && i >= last {
		return fnType.In(last).Elem()
	}

	return fnType.In(i)
}

// refCell prepares the output cell of a by-reference argument.
func refCell(v any, t reflect.Type) (reflect.Value, error) {
	if t.Kind() != reflect.Pointer {
		return reflect.Value{}, NewValueError(v, t, fmt.Errorf("by-reference argument requires a pointer parameter"))
	}

	if v != nil {
		if val := reflect.ValueOf(v); val.Type() == t && !val.IsNil() {
			return val, nil
		}
	}

	elem, err := ValueOf(v, t.Elem())
	if err != nil {
		return reflect.Value{}, err
	}

	cell := reflect.New(t.Elem())
	cell.Elem().Set(elem)

	return cell, nil
}

// invoke calls fn and turns a panic into a dispatch.TargetError.
func invoke(fn reflect.Value, name string, in []reflect.Value) (out []reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = &dispatch.TargetError{Member: name, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	return fn.Call(in), nil
}

func results(name string, fnType reflect.Type, out []reflect.Value) (any, error) {
	if returnsError(fnType) {
		if errVal := out[len(out)-1]; !errVal.IsNil() {
			return nil, &dispatch.TargetError{Member: name, Err: errVal.Interface().(error)} //nolint:forcetypeassert
		}

		out = out[:len(out)-1]
	}

	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0].Interface(), nil
	default:
		values := make([]any, len(out))
		for i, res := range out {
			values[i] = res.Interface()
		}
		return values, nil
	}
}

func returnsError(fnType reflect.Type) bool {
	numOut := fnType.NumOut()
	return numOut > 0 && fnType.Out(numOut-1) == errorType
}
