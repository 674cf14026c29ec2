package protomsg

import (
	"fmt"
	"reflect"

	"github.com/anoideaopen/latebinding/core/dispatch"
	rbackend "github.com/anoideaopen/latebinding/core/dispatch/reflect"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
)

var (
	boolType    = reflect.TypeOf(false)
	int32Type   = reflect.TypeOf(int32(0))
	int64Type   = reflect.TypeOf(int64(0))
	uint32Type  = reflect.TypeOf(uint32(0))
	uint64Type  = reflect.TypeOf(uint64(0))
	float32Type = reflect.TypeOf(float32(0))
	float64Type = reflect.TypeOf(float64(0))
	stringType  = reflect.TypeOf("")
	bytesType   = reflect.TypeOf([]byte(nil))
	intType     = reflect.TypeOf(0)
)

// fromValue converts a field value to a Go value. Lists become []any, maps
// become map[any]any, enums their number as int32 and messages proto.Message.
func fromValue(fd protoreflect.FieldDescriptor, v protoreflect.Value) any {
	switch {
	case fd.IsList():
		list := v.List()
		out := make([]any, list.Len())
		for i := range out {
			out[i] = fromScalar(fd, list.Get(i))
		}
		return out

	case fd.IsMap():
		out := make(map[any]any, v.Map().Len())
		v.Map().Range(func(k protoreflect.MapKey, val protoreflect.Value) bool {
			out[k.Interface()] = fromScalar(fd.MapValue(), val)
			return true
		})
		return out

	default:
		return fromScalar(fd, v)
	}
}

func fromScalar(fd protoreflect.FieldDescriptor, v protoreflect.Value) any {
	switch fd.Kind() {
	case protoreflect.EnumKind:
		return int32(v.Enum())
	case protoreflect.MessageKind, protoreflect.GroupKind:
		return v.Message().Interface()
	default:
		return v.Interface()
	}
}

// element reads one entry of a list or map field. A missing map key yields nil.
func element(fd protoreflect.FieldDescriptor, v protoreflect.Value, index any) (any, error) {
	switch {
	case fd.IsList():
		i, err := position(fd, index, v.List().Len())
		if err != nil {
			return nil, err
		}
		return fromScalar(fd, v.List().Get(i)), nil

	case fd.IsMap():
		key, err := scalarValue(fd.MapKey(), index, nil)
		if err != nil {
			return nil, err
		}
		val := v.Map().Get(key.MapKey())
		if !val.IsValid() {
			return nil, nil
		}
		return fromScalar(fd.MapValue(), val), nil

	default:
		return nil, fmt.Errorf("%w: field %s is not a list or a map", dispatch.ErrArgumentCount, fd.Name())
	}
}

// setElement writes one entry of a list or map field. Setting a map entry to
// nil deletes it.
func setElement(m protoreflect.Message, fd protoreflect.FieldDescriptor, index, value any) error {
	switch {
	case fd.IsList():
		list := m.Mutable(fd).List()
		i, err := position(fd, index, list.Len())
		if err != nil {
			return err
		}
		v, err := scalarValue(fd, value, list.NewElement)
		if err != nil {
			return err
		}
		list.Set(i, v)

	case fd.IsMap():
		mp := m.Mutable(fd).Map()
		key, err := scalarValue(fd.MapKey(), index, nil)
		if err != nil {
			return err
		}
		if value == nil {
			mp.Clear(key.MapKey())
			return nil
		}
		v, err := scalarValue(fd.MapValue(), value, mp.NewValue)
		if err != nil {
			return err
		}
		mp.Set(key.MapKey(), v)

	default:
		return fmt.Errorf("%w: field %s is not a list or a map", dispatch.ErrArgumentCount, fd.Name())
	}

	return nil
}

func position(fd protoreflect.FieldDescriptor, index any, length int) (int, error) {
	iv, err := rbackend.ValueOf(index, intType)
	if err != nil {
		return 0, err
	}

	i := int(iv.Int())
	if i < 0 || i >= length {
		return 0, &dispatch.TargetError{
			Member: string(fd.Name()),
			Err:    fmt.Errorf("index %d out of range [0:%d]", i, length),
		}
	}

	return i, nil
}

// fieldValue converts a Go value to a value of the whole field: slices for
// lists, maps for map fields, single values otherwise.
func fieldValue(m protoreflect.Message, fd protoreflect.FieldDescriptor, value any) (protoreflect.Value, error) {
	rv := reflect.ValueOf(value)

	switch {
	case fd.IsList():
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return protoreflect.Value{}, rbackend.NewValueError(value, rv.Type(), fmt.Errorf("list field %s expects a slice", fd.Name()))
		}
		fv := m.NewField(fd)
		list := fv.List()
		for i := 0; i < rv.Len(); i++ {
			v, err := scalarValue(fd, rv.Index(i).Interface(), list.NewElement)
			if err != nil {
				return protoreflect.Value{}, err
			}
			list.Append(v)
		}
		return fv, nil

	case fd.IsMap():
		if rv.Kind() != reflect.Map {
			return protoreflect.Value{}, rbackend.NewValueError(value, rv.Type(), fmt.Errorf("map field %s expects a map", fd.Name()))
		}
		fv := m.NewField(fd)
		mp := fv.Map()
		iter := rv.MapRange()
		for iter.Next() {
			k, err := scalarValue(fd.MapKey(), iter.Key().Interface(), nil)
			if err != nil {
				return protoreflect.Value{}, err
			}
			v, err := scalarValue(fd.MapValue(), iter.Value().Interface(), mp.NewValue)
			if err != nil {
				return protoreflect.Value{}, err
			}
			mp.Set(k.MapKey(), v)
		}
		return fv, nil

	default:
		return scalarValue(fd, value, func() protoreflect.Value { return m.NewField(fd) })
	}
}

// scalarValue converts a single Go value to the kind of fd. newMessage
// allocates the destination of message values.
func scalarValue(fd protoreflect.FieldDescriptor, value any, newMessage func() protoreflect.Value) (protoreflect.Value, error) {
	convert := func(t reflect.Type) (any, error) {
		v, err := rbackend.ValueOf(value, t)
		if err != nil {
			return nil, err
		}
		return v.Interface(), nil
	}

	var (
		v   any
		err error
	)
	switch fd.Kind() {
	case protoreflect.BoolKind:
		v, err = convert(boolType)
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		v, err = convert(int32Type)
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		v, err = convert(int64Type)
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		v, err = convert(uint32Type)
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		v, err = convert(uint64Type)
	case protoreflect.FloatKind:
		v, err = convert(float32Type)
	case protoreflect.DoubleKind:
		v, err = convert(float64Type)
	case protoreflect.StringKind:
		v, err = convert(stringType)
	case protoreflect.BytesKind:
		v, err = convert(bytesType)
	case protoreflect.EnumKind:
		return enumValue(fd, value)
	case protoreflect.MessageKind, protoreflect.GroupKind:
		return messageValue(fd, value, newMessage)
	default:
		return protoreflect.Value{}, fmt.Errorf("%w: field %s of kind %s", dispatch.ErrUnsupportedKind, fd.Name(), fd.Kind())
	}
	if err != nil {
		return protoreflect.Value{}, fmt.Errorf("%w: field %s", err, fd.Name())
	}

	return protoreflect.ValueOf(v), nil
}

// enumValue accepts a generated enum, a value name or a number.
func enumValue(fd protoreflect.FieldDescriptor, value any) (protoreflect.Value, error) {
	switch v := value.(type) {
	case protoreflect.Enum:
		return protoreflect.ValueOfEnum(v.Number()), nil
	case string:
		if ev := fd.Enum().Values().ByName(protoreflect.Name(v)); ev != nil {
			return protoreflect.ValueOfEnum(ev.Number()), nil
		}
	}

	n, err := rbackend.ValueOf(value, int32Type)
	if err != nil {
		return protoreflect.Value{}, fmt.Errorf("%w: enum %s", err, fd.Enum().FullName())
	}

	return protoreflect.ValueOfEnum(protoreflect.EnumNumber(n.Int())), nil
}

// messageValue accepts a message of the field type or its protojson text.
// Messages of a different Go type with the same full name are copied through
// their wire representation.
func messageValue(fd protoreflect.FieldDescriptor, value any, newMessage func() protoreflect.Value) (protoreflect.Value, error) {
	dst := newMessage().Message()
	fullName := fd.Message().FullName()

	switch v := value.(type) {
	case proto.Message:
		src := v.ProtoReflect()
		if src.Descriptor().FullName() != fullName {
			return protoreflect.Value{}, rbackend.NewValueError(value, reflect.TypeOf(dst.Interface()),
				fmt.Errorf("expected message %s, got %s", fullName, src.Descriptor().FullName()))
		}
		if src.Type() == dst.Type() {
			return protoreflect.ValueOfMessage(src), nil
		}
		raw, err := proto.Marshal(v)
		if err != nil {
			return protoreflect.Value{}, err
		}
		if err = proto.Unmarshal(raw, dst.Interface()); err != nil {
			return protoreflect.Value{}, err
		}
		return protoreflect.ValueOfMessage(dst), nil

	case string:
		if err := protojson.Unmarshal([]byte(v), dst.Interface()); err != nil {
			return protoreflect.Value{}, rbackend.NewValueError(value, reflect.TypeOf(dst.Interface()), err)
		}
		return protoreflect.ValueOfMessage(dst), nil

	default:
		return protoreflect.Value{}, rbackend.NewValueError(value, reflect.TypeOf(dst.Interface()), nil)
	}
}
