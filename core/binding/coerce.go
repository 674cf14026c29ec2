package binding

import (
	"context"
	"fmt"
	"reflect"

	rbackend "github.com/anoideaopen/latebinding/core/dispatch/reflect"
	"google.golang.org/protobuf/proto"
)

var messageType = reflect.TypeOf((*proto.Message)(nil)).Elem()

// As converts a raw result to T. A nil result yields the zero value of T.
// Numbers are converted when no precision is lost, and protobuf messages are
// converted between their generated and dynamic forms. Anything else fails
// with ErrInvalidCast.
func As[T any](v any) (T, error) {
	var zero T

	if v == nil {
		return zero, nil
	}

	if t, ok := v.(T); ok {
		return t, nil
	}

	target := reflect.TypeOf((*T)(nil)).Elem()

	if msg, ok := v.(proto.Message); ok && target.Implements(messageType) && target.Kind() == reflect.Pointer {
		out, err := convertMessage(msg, target)
		if err != nil {
			return zero, err
		}
		return out.(T), nil //nolint:forcetypeassert
	}

	out, err := rbackend.Convert(v, target)
	if err != nil {
		return zero, fmt.Errorf("%w: %T to %s: %w", ErrInvalidCast, v, target, err)
	}

	return out.Interface().(T), nil //nolint:forcetypeassert
}

func convertMessage(msg proto.Message, target reflect.Type) (any, error) {
	dst := reflect.New(target.Elem()).Interface().(proto.Message) //nolint:forcetypeassert

	srcName := msg.ProtoReflect().Descriptor().FullName()
	if dstName := dst.ProtoReflect().Descriptor().FullName(); srcName != dstName {
		return nil, fmt.Errorf("%w: message %s to %s", ErrInvalidCast, srcName, dstName)
	}

	raw, err := proto.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCast, err)
	}

	if err = proto.Unmarshal(raw, dst); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCast, err)
	}

	return dst, nil
}

// InvokeAs calls the method selected by c and converts its result to T.
func InvokeAs[T any](ctx context.Context, c *Call) (T, error) {
	v, err := c.InvokeValue(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	return As[T](v)
}

// GetAs reads the member selected by c and converts the value to T.
func GetAs[T any](ctx context.Context, c *Call) (T, error) {
	v, err := c.Get(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	return As[T](v)
}

// InvokerInvoke calls the method armed on i and converts its result to T.
func InvokerInvoke[T any](ctx context.Context, i *Invoker) (T, error) {
	v, err := i.InvokeValue(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	return As[T](v)
}

// InvokerGet reads the member armed on i and converts the value to T.
func InvokerGet[T any](ctx context.Context, i *Invoker) (T, error) {
	v, err := i.GetValue(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	return As[T](v)
}
