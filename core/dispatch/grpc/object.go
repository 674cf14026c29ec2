// Package grpc implements the dispatch backend for gRPC services.
//
// A service is described by its protoreflect.ServiceDescriptor, so no
// generated client is needed: requests and replies are dynamic messages
// built from the method descriptors. Only unary methods can be invoked.
package grpc

import (
	"context"
	"fmt"
	"reflect"

	"github.com/anoideaopen/latebinding/core/dispatch"
	rbackend "github.com/anoideaopen/latebinding/core/dispatch/reflect"
	"github.com/anoideaopen/latebinding/core/stringsx"
	"github.com/anoideaopen/latebinding/core/telemetry"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// BackendName is reported by Object.Backend.
const BackendName = "grpc"

// NativeSource is the source of the native errors reported by this backend.
const NativeSource = "grpc"

var messageType = reflect.TypeOf((*proto.Message)(nil)).Elem()

// Option configures an Object.
type Option func(*Object)

// WithTracingHandler sets the handler injecting the trace context into the
// outgoing metadata. The global propagator is used by default.
func WithTracingHandler(th *telemetry.TracingHandler) Option {
	return func(o *Object) {
		o.tracing = th
	}
}

// WithCallOptions sets options applied to every call.
func WithCallOptions(opts ...grpc.CallOption) Option {
	return func(o *Object) {
		o.callOpts = append(o.callOpts, opts...)
	}
}

// Object dispatches method requests as unary calls of a gRPC service.
type Object struct {
	conn     grpc.ClientConnInterface
	service  protoreflect.ServiceDescriptor
	tracing  *telemetry.TracingHandler
	callOpts []grpc.CallOption
}

// New binds the service described by sd on conn.
func New(conn grpc.ClientConnInterface, sd protoreflect.ServiceDescriptor, opts ...Option) (*Object, error) {
	if conn == nil || sd == nil {
		return nil, dispatch.ErrNilTarget
	}

	o := &Object{
		conn:    conn,
		service: sd,
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.tracing == nil {
		o.tracing = telemetry.NewTracingHandler(nil, nil)
	}

	return o, nil
}

// Target returns the client connection.
func (o *Object) Target() any {
	return o.conn
}

// Backend returns BackendName.
func (o *Object) Backend() string {
	return BackendName
}

// Service returns the descriptor of the bound service.
func (o *Object) Service() protoreflect.ServiceDescriptor {
	return o.service
}

// Dispatch performs a unary call. The single optional parameter is the
// request: a message of the input type, its protojson text, or nil for an
// empty request. The reply value is a dynamic message of the output type.
// Status errors are returned as dispatch.NativeError with the status code.
func (o *Object) Dispatch(ctx context.Context, req dispatch.Request) (dispatch.Reply, error) {
	if err := req.Validate(); err != nil {
		return dispatch.Reply{}, err
	}

	if req.Kind != dispatch.Method {
		return dispatch.Reply{}, fmt.Errorf("%w: %s on service %s", dispatch.ErrUnsupportedKind, req.Kind, o.service.FullName())
	}

	md, err := o.method(req.Name)
	if err != nil {
		return dispatch.Reply{}, err
	}

	if len(req.Params) > 1 {
		return dispatch.Reply{}, fmt.Errorf(
			"%w: found %d but expected at most 1: call %s",
			dispatch.ErrArgumentCount,
			len(req.Params),
			md.FullName(),
		)
	}

	var value any
	if len(req.Params) == 1 {
		value = req.Params[0].Value
	}

	in, err := input(md.Input(), value)
	if err != nil {
		return dispatch.Reply{}, fmt.Errorf("%w: call %s", err, md.FullName())
	}

	out := dynamicpb.NewMessage(md.Output())
	fullMethod := fmt.Sprintf("/%s/%s", o.service.FullName(), md.Name())

	if err = o.conn.Invoke(o.tracing.OutgoingContext(ctx), fullMethod, in, out, o.callOpts...); err != nil {
		return dispatch.Reply{}, nativeError(string(md.Name()), err)
	}

	return dispatch.NewReply(req, out), nil
}

// Members lists the unary methods of the service.
func (o *Object) Members() []dispatch.Member {
	var members []dispatch.Member

	methods := o.service.Methods()
	for i := 0; i < methods.Len(); i++ {
		md := methods.Get(i)
		if md.IsStreamingClient() || md.IsStreamingServer() {
			continue
		}
		members = append(members, dispatch.Member{Name: string(md.Name()), Kind: dispatch.Method})
	}

	return members
}

func (o *Object) method(name string) (protoreflect.MethodDescriptor, error) {
	for _, candidate := range stringsx.Candidates(name, "") {
		md := o.service.Methods().ByName(protoreflect.Name(candidate))
		if md == nil {
			continue
		}

		if md.IsStreamingClient() || md.IsStreamingServer() {
			return nil, fmt.Errorf("%w: streaming method %s", dispatch.ErrUnsupportedKind, md.FullName())
		}

		return md, nil
	}

	return nil, fmt.Errorf("%w: method %s of %s", dispatch.ErrMemberNotFound, name, o.service.FullName())
}

// input builds the request message of the given type.
func input(desc protoreflect.MessageDescriptor, value any) (proto.Message, error) {
	switch v := value.(type) {
	case nil:
		return dynamicpb.NewMessage(desc), nil

	case proto.Message:
		if got := v.ProtoReflect().Descriptor().FullName(); got != desc.FullName() {
			return nil, rbackend.NewValueError(value, messageType, fmt.Errorf("expected message %s, got %s", desc.FullName(), got))
		}
		return v, nil

	case string:
		msg := dynamicpb.NewMessage(desc)
		if err := protojson.Unmarshal([]byte(v), msg); err != nil {
			return nil, rbackend.NewValueError(value, messageType, err)
		}
		return msg, nil

	default:
		return nil, rbackend.NewValueError(value, messageType, nil)
	}
}

func nativeError(method string, err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return &dispatch.TargetError{Member: method, Err: err}
	}

	return &dispatch.NativeError{
		Source:  NativeSource,
		Code:    int64(st.Code()),
		Message: st.Message(),
		Err:     err,
	}
}
