//go:build windows

package ole

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/anoideaopen/latebinding/core/dispatch"
	goole "github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
)

// S_FALSE is returned by CoInitializeEx when COM is already initialised on
// the calling thread.
const sFalse = 1

// Object dispatches requests through the IDispatch interface of a COM object.
type Object struct {
	disp *goole.IDispatch
}

func newObject(disp *goole.IDispatch) *Object {
	return &Object{disp: disp}
}

// Target returns the IDispatch interface of the object.
func (o *Object) Target() any {
	return o.disp
}

// Backend returns BackendName.
func (o *Object) Backend() string {
	return BackendName
}

// Release releases the IDispatch interface.
func (o *Object) Release() {
	if o.disp != nil {
		o.disp.Release()
		o.disp = nil
	}
}

// Dispatch performs req through IDispatch::Invoke. COM objects have no
// fields, so field kinds are unsupported. Parameters passed by reference are
// sent as VT_BYREF variants and read back after the call. Dispatch results
// are wrapped in a new Object; other results are converted to Go values.
func (o *Object) Dispatch(_ context.Context, req dispatch.Request) (dispatch.Reply, error) {
	if err := req.Validate(); err != nil {
		return dispatch.Reply{}, err
	}

	if o.disp == nil {
		return dispatch.Reply{}, dispatch.ErrNilTarget
	}

	args, cells := arguments(req.Params)

	var (
		result *goole.VARIANT
		err    error
	)
	switch req.Kind {
	case dispatch.Method:
		result, err = oleutil.CallMethod(o.disp, req.Name, args...)
	case dispatch.PropertyGet:
		result, err = oleutil.GetProperty(o.disp, req.Name, args...)
	case dispatch.PropertySet:
		result, err = oleutil.PutProperty(o.disp, req.Name, args...)
	default:
		return dispatch.Reply{}, fmt.Errorf("%w: %s on a COM object", dispatch.ErrUnsupportedKind, req.Kind)
	}
	if err != nil {
		return dispatch.Reply{}, nativeError(req.Name, err)
	}

	reply := dispatch.Reply{
		Value:  fromVariant(result),
		Params: make([]any, len(req.Params)),
	}
	for i, p := range req.Params {
		if cells[i].IsValid() {
			reply.Params[i] = cells[i].Elem().Interface()
			continue
		}
		reply.Params[i] = p.Value
	}

	return reply, nil
}

// arguments prepares the Invoke arguments. Bound objects are passed as their
// IDispatch interface; by-reference values are passed through a pointer cell.
func arguments(params []dispatch.Param) ([]any, []reflect.Value) {
	args := make([]any, len(params))
	cells := make([]reflect.Value, len(params))

	for i, p := range params {
		value := p.Value
		if target, ok := value.(dispatch.Object); ok {
			if disp, isDisp := target.Target().(*goole.IDispatch); isDisp {
				value = disp
			}
		}

		if !p.ByRef || value == nil {
			args[i] = value
			continue
		}

		cell := reflect.New(reflect.TypeOf(value))
		cell.Elem().Set(reflect.ValueOf(value))
		cells[i] = cell
		args[i] = cell.Interface()
	}

	return args, cells
}

func fromVariant(v *goole.VARIANT) any {
	if v == nil {
		return nil
	}

	if v.VT == goole.VT_DISPATCH {
		if disp := v.ToIDispatch(); disp != nil {
			return newObject(disp)
		}
		return nil
	}
	defer func() { _ = v.Clear() }()

	return v.Value()
}

func resolveProgID(progID string) error {
	if _, err := goole.ClassIDFrom(progID); err != nil {
		return fmt.Errorf("%w: %s: %w", dispatch.ErrTypeNotFound, progID, nativeError(progID, err))
	}

	return nil
}

func create(progID string) (dispatch.Object, error) {
	if err := goole.CoInitializeEx(0, goole.COINIT_APARTMENTTHREADED); err != nil {
		var oleErr *goole.OleError
		if !errors.As(err, &oleErr) || oleErr.Code() != sFalse {
			return nil, nativeError("CoInitializeEx", err)
		}
	}

	unknown, err := oleutil.CreateObject(progID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", dispatch.ErrTypeNotFound, progID, nativeError(progID, err))
	}
	defer unknown.Release()

	disp, err := unknown.QueryInterface(goole.IID_IDispatch)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", dispatch.ErrNoConstructor, progID, nativeError(progID, err))
	}

	return newObject(disp), nil
}

// nativeError converts an OLE error to a dispatch.NativeError carrying the
// HRESULT. Exceptions raised by the object report their description.
func nativeError(member string, err error) error {
	var oleErr *goole.OleError
	if !errors.As(err, &oleErr) {
		return &dispatch.TargetError{Member: member, Err: err}
	}

	message := oleErr.Description()
	if message == "" {
		message = oleErr.String()
	}

	return &dispatch.NativeError{
		Source:  NativeSource,
		Code:    int64(int32(uint32(oleErr.Code()))),
		Message: message,
		Err:     err,
	}
}
