package binding

import (
	"context"
	"errors"
	"fmt"
)

// Invoker is a stateful fluent facade over a Binding. It holds at most one
// pending operation: selecting an operation arms it, and the terminal call
// (Invoke, Get or Set) performs it and clears the state, whether the call
// succeeds or fails.
//
// Sequencing errors are latched by the selecting calls and reported by the
// next terminal call, so chains need no intermediate error checks:
//
//	sum, err := binding.InvokerInvoke[int32](ctx, inv.Method("Sum").AddParameter(15).AddParameter(17))
//
// An Invoker must be used by one goroutine at a time.
type Invoker struct {
	binding    *Binding
	pending    *Call
	err        error
	lastParams []any
}

// NewInvoker returns an idle invoker over b.
func NewInvoker(b *Binding) *Invoker {
	return &Invoker{binding: b}
}

// BindInvoker binds obj and returns an idle invoker over the binding.
func BindInvoker(obj any, opts ...Option) (*Invoker, error) {
	b, err := Bind(obj, opts...)
	if err != nil {
		return nil, err
	}

	return NewInvoker(b), nil
}

// Binding returns the underlying binding.
func (i *Invoker) Binding() *Binding {
	return i.binding
}

// Target returns the bound value.
func (i *Invoker) Target() any {
	return i.binding.Target()
}

// Method arms a method call.
func (i *Invoker) Method(name string) *Invoker {
	return i.arm(selectMethod, name)
}

// Property arms a property access.
func (i *Invoker) Property(name string) *Invoker {
	return i.arm(selectProperty, name)
}

// Field arms a field access.
func (i *Invoker) Field(name string) *Invoker {
	return i.arm(selectField, name)
}

// Index arms an indexer access with the given index values.
func (i *Invoker) Index(values ...any) *Invoker {
	if i.arm(selectIndex, i.binding.opts.indexerName); i.err == nil {
		for _, v := range values {
			i.pending.AddParameter(v)
		}
	}

	return i
}

// AddParameter appends an argument passed by value to the armed operation.
func (i *Invoker) AddParameter(v any) *Invoker {
	if i.check() {
		i.pending.AddParameter(v)
	}

	return i
}

// AddRefParameter appends an argument passed by reference to the armed
// operation. Its value after the call is reported by LastCallParameters.
func (i *Invoker) AddRefParameter(v any) *Invoker {
	if i.check() {
		i.pending.AddRefParameter(v)
	}

	return i
}

// Armed reports whether an operation is pending.
func (i *Invoker) Armed() bool {
	return i.pending != nil
}

// Err returns the latched sequencing error, if any.
func (i *Invoker) Err() error {
	return i.err
}

// LastCallParameters returns every argument of the latest successful method
// call as it was after the call. It is nil after a failed call.
func (i *Invoker) LastCallParameters() []any {
	return append([]any(nil), i.lastParams...)
}

// Invoke calls the armed method and returns an invoker bound to its result,
// or nil when the method returned nothing.
func (i *Invoker) Invoke(ctx context.Context) (*Invoker, error) {
	v, err := i.InvokeValue(ctx)
	if err != nil {
		return nil, err
	}

	return i.wrap(v)
}

// InvokeValue calls the armed method and returns its raw result.
func (i *Invoker) InvokeValue(ctx context.Context) (any, error) {
	call, err := i.take()
	if err != nil {
		return nil, err
	}

	i.lastParams = nil

	res, err := call.Invoke(ctx)
	if err != nil {
		return nil, err
	}

	i.lastParams = res.Params

	return res.Value, nil
}

// Get reads the armed property, field or indexer and returns an invoker
// bound to the value, or nil when the value is nil.
func (i *Invoker) Get(ctx context.Context) (*Invoker, error) {
	v, err := i.GetValue(ctx)
	if err != nil {
		return nil, err
	}

	return i.wrap(v)
}

// GetValue reads the armed property, field or indexer and returns the raw value.
func (i *Invoker) GetValue(ctx context.Context) (any, error) {
	call, err := i.take()
	if err != nil {
		return nil, err
	}

	return call.Get(ctx)
}

// Set writes the armed property, field or indexer.
func (i *Invoker) Set(ctx context.Context, value any) error {
	call, err := i.take()
	if err != nil {
		return err
	}

	return call.Set(ctx, value)
}

func (i *Invoker) arm(sel selector, name string) *Invoker {
	switch {
	case i.err != nil:
	case i.pending != nil:
		i.err = fmt.Errorf("%w: %s %s is pending", ErrAlreadyDefined, i.pending.sel, i.pending.name)
	default:
		i.pending = newCall(i.binding, sel, name)
	}

	return i
}

func (i *Invoker) check() bool {
	if i.err != nil {
		return false
	}

	if i.pending == nil {
		i.err = fmt.Errorf("%w: parameter added while idle", ErrNoOperationDefined)
		return false
	}

	return true
}

// take returns the pending operation and clears the state.
func (i *Invoker) take() (*Call, error) {
	call, err := i.pending, i.err
	i.pending, i.err = nil, nil

	if err != nil {
		return nil, err
	}

	if call == nil {
		return nil, ErrNoOperationDefined
	}

	return call, nil
}

func (i *Invoker) wrap(v any) (*Invoker, error) {
	if v == nil {
		return nil, nil
	}

	b, err := i.binding.rebind(v)
	if errors.Is(err, ErrNilTarget) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return NewInvoker(b), nil
}
