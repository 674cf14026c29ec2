package binding

import (
	"context"
	"fmt"
	"reflect"

	dgrpc "github.com/anoideaopen/latebinding/core/dispatch/grpc"
	"github.com/anoideaopen/latebinding/core/dispatch/ole"
	rbackend "github.com/anoideaopen/latebinding/core/dispatch/reflect"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/reflect/protoreflect"
)

var defaultFactory = NewFactory()

// Factory creates bindings that share the same options.
type Factory struct {
	opts       []Option
	automation *ole.Factory
}

// NewFactory returns a factory applying opts to every binding it creates.
func NewFactory(opts ...Option) *Factory {
	return &Factory{
		opts:       opts,
		automation: ole.NewFactory(),
	}
}

// Bind binds an existing value.
func (f *Factory) Bind(obj any) (*Binding, error) {
	return Bind(obj, f.opts...)
}

// BindNew creates an instance of typ through the registry and binds it. A
// registered constructor receives args; a type without one is created as a
// zero value and accepts no arguments.
func (f *Factory) BindNew(ctx context.Context, typ reflect.Type, args ...any) (*Binding, error) {
	if typ == nil {
		return nil, fmt.Errorf("%w: type is nil", ErrTypeNotFound)
	}

	o, err := newOptions(f.opts...)
	if err != nil {
		return nil, err
	}

	object, err := o.registry.Construct(ctx, typ, args...)
	if err != nil {
		return nil, fmt.Errorf("constructing %s: %w", typ, err)
	}

	return newBinding(object, o), nil
}

// BindNewByName creates an instance of the type registered under module and
// typeName and binds it.
func (f *Factory) BindNewByName(ctx context.Context, module, typeName string, args ...any) (*Binding, error) {
	if module == "" {
		return nil, fmt.Errorf("%w: module", ErrEmptyName)
	}
	if typeName == "" {
		return nil, fmt.Errorf("%w: type", ErrEmptyName)
	}

	o, err := newOptions(f.opts...)
	if err != nil {
		return nil, err
	}

	typ, err := o.registry.Lookup(module, typeName)
	if err != nil {
		return nil, err
	}

	return f.BindNew(ctx, typ, args...)
}

// BindAutomation creates the COM automation object registered under progID
// and binds it. It fails with ErrUnsupportedPlatform outside Windows.
func (f *Factory) BindAutomation(ctx context.Context, progID string) (*Binding, error) {
	o, err := newOptions(f.opts...)
	if err != nil {
		return nil, err
	}

	typ, err := f.automation.ResolveProgID(progID)
	if err != nil {
		return nil, err
	}

	object, err := f.automation.Construct(ctx, typ)
	if err != nil {
		return nil, err
	}

	return newBinding(object, o), nil
}

// BindService binds the gRPC service described by sd on conn. Methods of the
// binding are unary calls of the service.
func (f *Factory) BindService(conn grpc.ClientConnInterface, sd protoreflect.ServiceDescriptor, opts ...dgrpc.Option) (*Binding, error) {
	o, err := newOptions(f.opts...)
	if err != nil {
		return nil, err
	}

	object, err := dgrpc.New(conn, sd, append([]dgrpc.Option{dgrpc.WithTracingHandler(o.tracing)}, opts...)...)
	if err != nil {
		return nil, err
	}

	return newBinding(object, o), nil
}

// BindNew creates an instance of typ and binds it with the default options.
func BindNew(ctx context.Context, typ reflect.Type, args ...any) (*Binding, error) {
	return defaultFactory.BindNew(ctx, typ, args...)
}

// BindNewByName creates an instance of a registered type and binds it with the
// default options.
func BindNewByName(ctx context.Context, module, typeName string, args ...any) (*Binding, error) {
	return defaultFactory.BindNewByName(ctx, module, typeName, args...)
}

// BindAutomation creates a COM automation object and binds it with the
// default options.
func BindAutomation(ctx context.Context, progID string) (*Binding, error) {
	return defaultFactory.BindAutomation(ctx, progID)
}

// BindService binds a gRPC service with the default options.
func BindService(conn grpc.ClientConnInterface, sd protoreflect.ServiceDescriptor, opts ...dgrpc.Option) (*Binding, error) {
	return defaultFactory.BindService(conn, sd, opts...)
}

// Register adds a constructor to the default registry, making its type
// available to BindNew and BindNewByName.
func Register(module, typeName string, ctor any) error {
	return rbackend.DefaultRegistry.Register(module, typeName, ctor)
}
