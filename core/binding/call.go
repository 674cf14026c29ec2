package binding

import (
	"context"
	"fmt"

	"github.com/anoideaopen/latebinding/core/dispatch"
)

type selector int

const (
	selectMethod selector = iota
	selectProperty
	selectField
	selectIndex
)

func (s selector) String() string {
	switch s {
	case selectMethod:
		return "method"
	case selectProperty:
		return "property"
	case selectField:
		return "field"
	case selectIndex:
		return "indexer"
	default:
		return "unknown"
	}
}

func (s selector) getKind() dispatch.Kind {
	if s == selectField {
		return dispatch.FieldGet
	}

	return dispatch.PropertyGet
}

func (s selector) setKind() dispatch.Kind {
	if s == selectField {
		return dispatch.FieldSet
	}

	return dispatch.PropertySet
}

// Result is the outcome of a method call.
type Result struct {
	// Value is the value returned by the method, nil when it returns nothing.
	Value any
	// Params holds every argument after the call: positions passed by
	// reference carry the values written by the method, the others the
	// values supplied.
	Params []any
}

// Call is one operation selected on a Binding. It is owned by its caller and
// is not safe for concurrent use.
type Call struct {
	binding *Binding
	sel     selector
	name    string
	params  *Parameters
}

func newCall(b *Binding, sel selector, name string) *Call {
	return &Call{
		binding: b,
		sel:     sel,
		name:    name,
		params:  NewParameters(),
	}
}

// Name returns the selected member name.
func (c *Call) Name() string {
	return c.name
}

// Parameters returns the parameters added so far.
func (c *Call) Parameters() *Parameters {
	return c.params
}

// AddParameter appends an argument passed by value.
func (c *Call) AddParameter(v any) *Call {
	c.params.AddParameter(v)
	return c
}

// AddRefParameter appends an argument passed by reference. Its value after
// the call is reported in Result.Params.
func (c *Call) AddRefParameter(v any) *Call {
	c.params.AddRefParameter(v)
	return c
}

// Invoke calls the selected method.
func (c *Call) Invoke(ctx context.Context) (*Result, error) {
	if c.sel != selectMethod {
		return nil, fmt.Errorf("%w: invoke on %s %s", ErrKindMismatch, c.sel, c.name)
	}

	reply, err := c.binding.dispatch(ctx, c.request(dispatch.Method))
	if err != nil {
		return nil, err
	}

	return &Result{Value: reply.Value, Params: reply.Params}, nil
}

// InvokeValue calls the selected method and returns its value.
func (c *Call) InvokeValue(ctx context.Context) (any, error) {
	res, err := c.Invoke(ctx)
	if err != nil {
		return nil, err
	}

	return res.Value, nil
}

// Get reads the selected property, field or indexer.
func (c *Call) Get(ctx context.Context) (any, error) {
	if c.sel == selectMethod {
		return nil, fmt.Errorf("%w: get on method %s", ErrKindMismatch, c.name)
	}

	reply, err := c.binding.dispatch(ctx, c.request(c.sel.getKind()))
	if err != nil {
		return nil, err
	}

	return reply.Value, nil
}

// Set writes the selected property, field or indexer. The value follows the
// parameters already added, so for an indexer it comes after the index values.
// A nil value sets the zero value.
func (c *Call) Set(ctx context.Context, value any) error {
	if c.sel == selectMethod {
		return fmt.Errorf("%w: set on method %s", ErrKindMismatch, c.name)
	}

	_, err := c.binding.dispatch(ctx, c.request(c.sel.setKind(), dispatch.Param{Value: value}))
	return err
}

func (c *Call) request(kind dispatch.Kind, extra ...dispatch.Param) dispatch.Request {
	return dispatch.Request{
		Name:   c.name,
		Kind:   kind,
		Params: append(c.params.Params(), extra...),
	}
}
