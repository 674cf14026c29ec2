package dispatch

import (
	"context"
	"fmt"
	"slices"
)

// Param is one positional argument of a request.
type Param struct {
	Value any  // The value supplied by the caller.
	ByRef bool // The member may write a new value back into this position.
}

// Request describes a single member access.
type Request struct {
	Name   string  // Member name.
	Kind   Kind    // Kind of access.
	Params []Param // Positional parameters in call order.
}

// Values returns the parameter values in call order.
func (r Request) Values() []any {
	values := make([]any, len(r.Params))
	for i, p := range r.Params {
		values[i] = p.Value
	}

	return values
}

// ReferenceFlags returns a slice aligned with Values telling which positions
// are passed by reference.
func (r Request) ReferenceFlags() []bool {
	flags := make([]bool, len(r.Params))
	for i, p := range r.Params {
		flags[i] = p.ByRef
	}

	return flags
}

// HasRef reports whether at least one parameter is passed by reference.
func (r Request) HasRef() bool {
	for _, p := range r.Params {
		if p.ByRef {
			return true
		}
	}

	return false
}

// Validate checks the parts of the request every backend relies on.
func (r Request) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("%w: %s", ErrEmptyName, r.Kind)
	}

	if !slices.Contains(Kinds(), r.Kind) {
		return fmt.Errorf("%w: %d", ErrUnsupportedKind, int(r.Kind))
	}

	if r.Kind.IsSet() && len(r.Params) == 0 {
		return fmt.Errorf("%w: found 0 but expected at least 1: %s %s", ErrArgumentCount, r.Kind, r.Name)
	}

	return nil
}

// Reply is the answer of a backend to a Request.
type Reply struct {
	Value  any   // Raw result; nil when the member returns nothing.
	Params []any // One entry per request parameter, by-reference positions updated.
}

// NewReply returns a reply for req whose output slots echo the supplied values.
func NewReply(req Request, value any) Reply {
	return Reply{
		Value:  value,
		Params: req.Values(),
	}
}

// Member describes a member discovered on a target.
type Member struct {
	Name string // Name as it can be passed in a Request.
	Kind Kind   // Method for methods, FieldGet for fields, PropertyGet for properties.
}

// Object is a target whose members can be resolved and invoked by name.
type Object interface {
	// Target returns the underlying object calls are dispatched against.
	Target() any

	// Backend returns a short name of the backend, used in logs and spans.
	Backend() string

	// Dispatch resolves and performs the member access described by req.
	Dispatch(ctx context.Context, req Request) (Reply, error)
}

// Inspector is implemented by objects able to list their members.
type Inspector interface {
	Members() []Member
}

// Type is an opaque type descriptor understood by a Constructor.
type Type interface {
	Name() string
}

// Constructor creates new dispatchable instances of a type.
type Constructor interface {
	Construct(ctx context.Context, t Type, args ...any) (Object, error)
}

// Resolver maps automation program identifiers to type descriptors.
type Resolver interface {
	ResolveProgID(progID string) (Type, error)
}
