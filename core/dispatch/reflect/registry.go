package reflect

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/anoideaopen/latebinding/core/dispatch"
)

var errBadConstructor = errors.New("constructor must be a func returning a value and an optional error")

// DefaultRegistry is the registry used by the package level factory functions.
var DefaultRegistry = NewRegistry()

type typeKey struct {
	module string
	name   string
}

type registration struct {
	t    reflect.Type
	ctor reflect.Value
}

// Registry resolves types by module and name and constructs their instances.
// Go cannot load a type from its name at run time, so types are registered
// up front.
type Registry struct {
	mu     sync.RWMutex
	byName map[typeKey]reflect.Type
	byType map[reflect.Type]registration
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[typeKey]reflect.Type),
		byType: make(map[reflect.Type]registration),
	}
}

// Register adds a type together with its constructor. The constructor is a
// function whose first result is the new instance, optionally followed by an
// error. When name is empty the name of the constructed type is used.
func (r *Registry) Register(module, name string, ctor any) error {
	fn := reflect.ValueOf(ctor)
	if fn.Kind() != reflect.Func || fn.IsNil() {
		return fmt.Errorf("%w: got %T", errBadConstructor, ctor)
	}

	fnType := fn.Type()
	switch {
	case fnType.NumOut() == 1 && !returnsError(fnType):
	case fnType.NumOut() == 2 && returnsError(fnType): //nolint:gomnd
	default:
		return fmt.Errorf("%w: got %s", errBadConstructor, fnType)
	}

	t := elemType(fnType.Out(0))
	if name == "" {
		name = t.Name()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.byName[typeKey{module: module, name: name}] = t
	r.byType[t] = registration{t: t, ctor: fn}

	return nil
}

// RegisterType adds a type without a constructor. Its instances are created
// as zero values.
func (r *Registry) RegisterType(module string, t reflect.Type) {
	t = elemType(t)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.byName[typeKey{module: module, name: t.Name()}] = t
	if _, ok := r.byType[t]; !ok {
		r.byType[t] = registration{t: t}
	}
}

// Lookup returns the type registered under module and name.
func (r *Registry) Lookup(module, name string) (reflect.Type, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byName[typeKey{module: module, name: name}]
	if !ok {
		return nil, fmt.Errorf("%w: %s in module '%s'", dispatch.ErrTypeNotFound, name, module)
	}

	return t, nil
}

// Construct creates an instance of t and wraps it for dispatching. A
// registered constructor receives args converted with ValueOf. Types without
// a constructor can only be created without arguments, as zero values.
func (r *Registry) Construct(_ context.Context, t dispatch.Type, args ...any) (dispatch.Object, error) {
	rt, ok := t.(reflect.Type)
	if !ok || rt == nil {
		return nil, fmt.Errorf("%w: %T is not a Go type", dispatch.ErrTypeNotFound, t)
	}
	rt = elemType(rt)

	r.mu.RLock()
	reg, registered := r.byType[rt]
	r.mu.RUnlock()

	if !registered || !reg.ctor.IsValid() {
		if len(args) != 0 {
			return nil, fmt.Errorf("%w: %s with %d arguments", dispatch.ErrNoConstructor, rt, len(args))
		}
		return New(reflect.New(rt).Interface())
	}

	params := make([]dispatch.Param, len(args))
	for i, arg := range args {
		params[i] = dispatch.Param{Value: arg}
	}

	reply, err := callFunc(reg.ctor, "New"+rt.Name(), params)
	if err != nil {
		return nil, err
	}

	return New(reply.Value)
}

func elemType(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer {
		return t.Elem()
	}

	return t
}
