package binding

import (
	"context"
	"errors"
	"fmt"

	"github.com/anoideaopen/latebinding/core/dispatch"
	"github.com/anoideaopen/latebinding/core/dispatch/protomsg"
	rbackend "github.com/anoideaopen/latebinding/core/dispatch/reflect"
	"github.com/anoideaopen/latebinding/core/telemetry"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/protobuf/proto"
)

// Binding ties a target object to a dispatch backend. A Binding is immutable
// and safe for concurrent use; every operation selected on it returns its own
// Call.
type Binding struct {
	id     uuid.UUID
	object dispatch.Object
	opts   options
}

// Bind binds obj. The backend is chosen from the value: a dispatch.Object is
// used as it is, a proto.Message is bound by its fields, and any other value
// is bound with reflection.
func Bind(obj any, opts ...Option) (*Binding, error) {
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}

	object, err := objectOf(obj)
	if err != nil {
		return nil, err
	}

	return newBinding(object, o), nil
}

func newBinding(object dispatch.Object, o options) *Binding {
	return &Binding{
		id:     uuid.New(),
		object: object,
		opts:   o,
	}
}

func objectOf(obj any) (dispatch.Object, error) {
	switch v := obj.(type) {
	case nil:
		return nil, ErrNilTarget
	case *Binding:
		if v == nil {
			return nil, ErrNilTarget
		}
		return v.object, nil
	case dispatch.Object:
		return v, nil
	case proto.Message:
		return protomsg.New(v)
	default:
		return rbackend.New(v)
	}
}

// ID returns the identifier of the binding used in logs and traces.
func (b *Binding) ID() string {
	return b.id.String()
}

// Object returns the backend object.
func (b *Binding) Object() dispatch.Object {
	return b.object
}

// Target returns the bound value.
func (b *Binding) Target() any {
	return b.object.Target()
}

// Method selects a method.
func (b *Binding) Method(name string) *Call {
	return newCall(b, selectMethod, name)
}

// Property selects a property.
func (b *Binding) Property(name string) *Call {
	return newCall(b, selectProperty, name)
}

// Field selects a field.
func (b *Binding) Field(name string) *Call {
	return newCall(b, selectField, name)
}

// Index selects the indexer. The index values become the first parameters.
func (b *Binding) Index(values ...any) *Call {
	c := newCall(b, selectIndex, b.opts.indexerName)
	for _, v := range values {
		c.params.AddParameter(v)
	}

	return c
}

// Members lists the members of the target when the backend can enumerate
// them, and nil otherwise.
func (b *Binding) Members() []dispatch.Member {
	if inspector, ok := b.object.(dispatch.Inspector); ok {
		return inspector.Members()
	}

	return nil
}

// rebind binds a result with the options of b.
func (b *Binding) rebind(v any) (*Binding, error) {
	object, err := objectOf(v)
	if err != nil {
		return nil, err
	}

	return newBinding(object, b.opts), nil
}

// dispatch sends req to the backend. Native errors are returned as they are,
// every other failure as an *OperationError.
func (b *Binding) dispatch(ctx context.Context, req dispatch.Request) (dispatch.Reply, error) {
	if b == nil || b.object == nil {
		return dispatch.Reply{}, ErrNilTarget
	}

	if req.Name == "" {
		return dispatch.Reply{}, fmt.Errorf("%w: %s", ErrEmptyName, req.Kind)
	}

	if ctx == nil {
		ctx = context.Background()
	}

	log := b.opts.logger.WithFields(logrus.Fields{
		"binding": b.ID(),
		"member":  req.Name,
		"kind":    req.Kind.String(),
		"backend": b.object.Backend(),
		"by_ref":  req.HasRef(),
	})

	ctx, span := b.opts.tracing.StartNewSpan(ctx, "latebinding."+req.Kind.String(),
		trace.WithAttributes(
			telemetry.BindingID(b.ID()),
			telemetry.Member(req.Name),
			telemetry.OperationKind(req.Kind),
			telemetry.Backend(b.object.Backend()),
		),
	)
	defer span.End()

	log.WithField("lookup", req.Kind.LookupMode()).Debug("dispatching")

	reply, err := b.object.Dispatch(ctx, req)
	if err != nil && b.opts.fieldFallback && memberMissing(err) {
		if fieldKind, ok := req.Kind.FieldKind(); ok {
			log.Debug("property not found, retrying as field")
			span.AddEvent("field fallback")

			fieldReq := req
			fieldReq.Kind = fieldKind
			reply, err = b.object.Dispatch(ctx, fieldReq)
		}
	}

	if err != nil {
		err = translate(req, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.WithError(err).Warn("operation call failed")
		return dispatch.Reply{}, err
	}

	if len(reply.Params) != len(req.Params) {
		reply.Params = req.Values()
	}

	return reply, nil
}

// memberMissing reports whether err says the backend found no member to
// access. Errors raised by the member itself never qualify, even when they
// wrap ErrMemberNotFound.
func memberMissing(err error) bool {
	var (
		targetErr *dispatch.TargetError
		nativeErr *dispatch.NativeError
	)
	if errors.As(err, &targetErr) || errors.As(err, &nativeErr) {
		return false
	}

	return errors.Is(err, dispatch.ErrMemberNotFound)
}
