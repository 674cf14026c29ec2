// Package protomsg implements the dispatch backend for protobuf messages.
//
// Fields are resolved through protoreflect by their proto name, their JSON
// name or their Go name, so "type_url", "typeUrl" and "TypeUrl" all name the
// same field. Methods of generated messages are served by the reflect backend.
package protomsg

import (
	"context"
	"fmt"

	"github.com/anoideaopen/latebinding/core/dispatch"
	rbackend "github.com/anoideaopen/latebinding/core/dispatch/reflect"
	"github.com/anoideaopen/latebinding/core/stringsx"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// BackendName is reported by Object.Backend.
const BackendName = "protomsg"

// Object dispatches requests against a protobuf message.
type Object struct {
	msg     proto.Message
	methods *rbackend.Object
}

// New wraps msg for dispatching.
func New(msg proto.Message) (*Object, error) {
	if msg == nil || !msg.ProtoReflect().IsValid() {
		return nil, dispatch.ErrNilTarget
	}

	methods, err := rbackend.New(msg)
	if err != nil {
		return nil, err
	}

	return &Object{
		msg:     msg,
		methods: methods,
	}, nil
}

// Target returns the wrapped message.
func (o *Object) Target() any {
	return o.msg
}

// Backend returns BackendName.
func (o *Object) Backend() string {
	return BackendName
}

// Dispatch performs req on the wrapped message. Properties and fields are the
// same thing for a message: both resolve to a proto field.
func (o *Object) Dispatch(ctx context.Context, req dispatch.Request) (dispatch.Reply, error) {
	if err := req.Validate(); err != nil {
		return dispatch.Reply{}, err
	}

	switch {
	case req.Kind == dispatch.Method:
		return o.methods.Dispatch(ctx, req)
	case req.Kind.IsGet():
		return o.get(req)
	case req.Kind.IsSet():
		return o.set(req)
	default:
		return dispatch.Reply{}, fmt.Errorf("%w: %s", dispatch.ErrUnsupportedKind, req.Kind)
	}
}

// Members lists the fields of the message as properties, followed by the
// methods of the generated type.
func (o *Object) Members() []dispatch.Member {
	var members []dispatch.Member

	fields := o.msg.ProtoReflect().Descriptor().Fields()
	for i := 0; i < fields.Len(); i++ {
		members = append(members, dispatch.Member{
			Name: string(fields.Get(i).Name()),
			Kind: dispatch.PropertyGet,
		})
	}

	for _, member := range o.methods.Members() {
		if member.Kind == dispatch.Method {
			members = append(members, member)
		}
	}

	return members
}

// field resolves a field by its proto name, JSON name or Go name.
func (o *Object) field(name string) (protoreflect.FieldDescriptor, error) {
	fields := o.msg.ProtoReflect().Descriptor().Fields()

	if fd := fields.ByName(protoreflect.Name(name)); fd != nil {
		return fd, nil
	}

	for _, candidate := range []string{name, stringsx.LowerFirstChar(name)} {
		if fd := fields.ByJSONName(candidate); fd != nil {
			return fd, nil
		}
	}

	if fd := fields.ByName(protoreflect.Name(stringsx.LowerFirstChar(name))); fd != nil {
		return fd, nil
	}

	return nil, fmt.Errorf("%w: field %s of %s", dispatch.ErrMemberNotFound, name, o.msg.ProtoReflect().Descriptor().FullName())
}

// resolve returns the field addressed by req and the remaining parameters.
// The synthetic indexer name takes the field name as its first parameter.
func (o *Object) resolve(req dispatch.Request) (protoreflect.FieldDescriptor, []dispatch.Param, error) {
	name, params := req.Name, req.Params

	if name == dispatch.IndexerName && len(params) > 0 {
		if fd, err := o.field(name); err == nil {
			return fd, params, nil
		}

		fieldName, ok := params[0].Value.(string)
		if !ok {
			return nil, nil, fmt.Errorf("%w: indexer expects a field name, got %T", dispatch.ErrInvalidArgumentValue, params[0].Value)
		}
		name, params = fieldName, params[1:]
	}

	fd, err := o.field(name)
	if err != nil {
		return nil, nil, err
	}

	return fd, params, nil
}

func (o *Object) get(req dispatch.Request) (dispatch.Reply, error) {
	fd, params, err := o.resolve(req)
	if err != nil {
		return dispatch.Reply{}, err
	}

	m := o.msg.ProtoReflect()

	switch len(params) {
	case 0:
		if fd.Message() != nil && !fd.IsList() && !fd.IsMap() && !m.Has(fd) {
			return dispatch.NewReply(req, nil), nil
		}
		return dispatch.NewReply(req, fromValue(fd, m.Get(fd))), nil

	case 1:
		value, err := element(fd, m.Get(fd), params[0].Value)
		if err != nil {
			return dispatch.Reply{}, err
		}
		return dispatch.NewReply(req, value), nil

	default:
		return dispatch.Reply{}, fmt.Errorf(
			"%w: found %d but expected at most 1: field %s",
			dispatch.ErrArgumentCount,
			len(params),
			fd.Name(),
		)
	}
}

func (o *Object) set(req dispatch.Request) (dispatch.Reply, error) {
	fd, params, err := o.resolve(req)
	if err != nil {
		return dispatch.Reply{}, err
	}

	if len(params) == 0 {
		return dispatch.Reply{}, fmt.Errorf("%w: found 0 but expected at least 1: field %s", dispatch.ErrArgumentCount, fd.Name())
	}

	var (
		m       = o.msg.ProtoReflect()
		indexes = params[:len(params)-1]
		value   = params[len(params)-1].Value
	)

	switch len(indexes) {
	case 0:
		if value == nil {
			m.Clear(fd)
			break
		}
		v, err := fieldValue(m, fd, value)
		if err != nil {
			return dispatch.Reply{}, err
		}
		m.Set(fd, v)

	case 1:
		if err = setElement(m, fd, indexes[0].Value, value); err != nil {
			return dispatch.Reply{}, err
		}

	default:
		return dispatch.Reply{}, fmt.Errorf(
			"%w: found %d but expected at most 2: field %s",
			dispatch.ErrArgumentCount,
			len(params),
			fd.Name(),
		)
	}

	return dispatch.NewReply(req, nil), nil
}
