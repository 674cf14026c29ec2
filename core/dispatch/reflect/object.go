package reflect

import (
	"context"
	"fmt"
	"reflect"

	"github.com/anoideaopen/latebinding/core/dispatch"
)

// BackendName is reported by Object.Backend.
const BackendName = "reflect"

// Object dispatches requests against a plain Go value.
type Object struct {
	target any
	value  reflect.Value
}

// New wraps v for dispatching. Struct and array values are copied behind a
// new pointer so their fields, elements and pointer-receiver methods become
// reachable; Target then returns that pointer.
func New(v any) (*Object, error) {
	if v == nil {
		return nil, dispatch.ErrNilTarget
	}

	val := reflect.ValueOf(v)
	switch val.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if val.IsNil() {
			return nil, fmt.Errorf("%w: nil %s", dispatch.ErrNilTarget, val.Type())
		}
	case reflect.Struct, reflect.Array:
		ptr := reflect.New(val.Type())
		ptr.Elem().Set(val)
		val = ptr
	}

	return &Object{
		target: val.Interface(),
		value:  val,
	}, nil
}

// Target returns the wrapped value.
func (o *Object) Target() any {
	return o.target
}

// Backend returns BackendName.
func (o *Object) Backend() string {
	return BackendName
}

// Dispatch performs req on the wrapped value.
//
// Methods are called with Call. Properties are read through a method named
// after the property or prefixed with "Get" and written through a method
// prefixed with "Set". The indexer of maps, slices and arrays is served
// natively. Fields are accessed directly.
func (o *Object) Dispatch(_ context.Context, req dispatch.Request) (dispatch.Reply, error) {
	if err := req.Validate(); err != nil {
		return dispatch.Reply{}, err
	}

	native := req.Kind.IsProperty() && req.Name == dispatch.IndexerName && isContainer(o.value)

	switch req.Kind {
	case dispatch.Method:
		return Call(o.target, req.Name, req.Params...)
	case dispatch.PropertyGet:
		if native {
			return getIndex(o.value, req)
		}
		return getProperty(o.value, req)
	case dispatch.PropertySet:
		if native {
			return setIndex(o.value, req)
		}
		return setProperty(o.value, req)
	case dispatch.FieldGet:
		return getField(o.value, req)
	case dispatch.FieldSet:
		return setField(o.value, req)
	default:
		return dispatch.Reply{}, fmt.Errorf("%w: %s", dispatch.ErrUnsupportedKind, req.Kind)
	}
}

// Members lists the methods, properties and fields of the wrapped value.
func (o *Object) Members() []dispatch.Member {
	var members []dispatch.Member

	for _, name := range Methods(o.target) {
		members = append(members, dispatch.Member{Name: name, Kind: dispatch.Method})
	}

	for _, name := range Properties(o.target) {
		members = append(members, dispatch.Member{Name: name, Kind: dispatch.PropertyGet})
	}

	for _, name := range Fields(o.target) {
		members = append(members, dispatch.Member{Name: name, Kind: dispatch.FieldGet})
	}

	return members
}
