package reflect

import (
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"unicode/utf8"

	"github.com/anoideaopen/latebinding/core/dispatch"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

var (
	bytesType   = reflect.TypeOf([]byte(nil))
	errOverflow = errors.New("value out of range")
)

// ValueOf converts an argument to a reflect.Value of the specified type.
//
// The conversion follows these steps:
//  1. nil becomes the zero value of t.
//  2. Values assignable to t (or to the element of a pointer type t, or
//     pointers whose element is assignable to t) are used as they are.
//  3. Strings are parsed with ParseValue.
//  4. Numeric values are converted between numeric kinds when no precision
//     is lost; named types sharing an underlying kind are converted.
//  5. Anything else is reported as a ValueError.
func ValueOf(v any, t reflect.Type) (reflect.Value, error) {
	if out, ok, err := convert(v, t); ok || err != nil {
		return out, err
	}

	if s, ok := v.(string); ok {
		return ParseValue(s, t)
	}

	return reflect.Value{}, NewValueError(v, t, nil)
}

// Convert is ValueOf without string parsing: it only performs assignments and
// lossless conversions, which makes it suitable for coercing results.
func Convert(v any, t reflect.Type) (reflect.Value, error) {
	out, ok, err := convert(v, t)
	if err != nil {
		return reflect.Value{}, err
	}
	if !ok {
		return reflect.Value{}, NewValueError(v, t, nil)
	}

	return out, nil
}

func convert(v any, t reflect.Type) (reflect.Value, bool, error) {
	if v == nil {
		return reflect.Zero(t), true, nil
	}

	val := reflect.ValueOf(v)
	valType := val.Type()

	switch {
	case valType.AssignableTo(t):
		return val, true, nil

	case t.Kind() == reflect.Pointer && valType.AssignableTo(t.Elem()):
		out := reflect.New(t.Elem())
		out.Elem().Set(val)
		return out, true, nil

	case valType.Kind() == reflect.Pointer && !val.IsNil() && valType.Elem().AssignableTo(t):
		return val.Elem(), true, nil
	}

	if t.Kind() == reflect.Pointer {
		inner, ok, err := convert(v, t.Elem())
		if !ok || err != nil {
			return reflect.Value{}, ok, err
		}
		out := reflect.New(t.Elem())
		out.Elem().Set(inner)
		return out, true, nil
	}

	switch {
	case isNumber(valType.Kind()) && isNumber(t.Kind()):
		out, err := convertNumber(val, t)
		return out, true, err

	case valType.Kind() == t.Kind() && valType.ConvertibleTo(t) && !isNumber(t.Kind()):
		return val.Convert(t), true, nil
	}

	return reflect.Value{}, false, nil
}

func isNumber(k reflect.Kind) bool {
	return isInt(k) || isUint(k) || isFloat(k)
}

func isInt(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	default:
		return false
	}
}

func isUint(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	default:
		return false
	}
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

// convertNumber converts between numeric kinds and rejects lossy conversions.
func convertNumber(val reflect.Value, t reflect.Type) (reflect.Value, error) {
	out := reflect.New(t).Elem()
	k := val.Kind()

	switch {
	case isInt(t.Kind()):
		var n int64
		switch {
		case isInt(k):
			n = val.Int()
		case isUint(k):
			if val.Uint() > math.MaxInt64 {
				return reflect.Value{}, NewValueError(val.Interface(), t, errOverflow)
			}
			n = int64(val.Uint())
		default:
			f := val.Float()
			if f != math.Trunc(f) || f < math.MinInt64 || f > math.MaxInt64 {
				return reflect.Value{}, NewValueError(val.Interface(), t, errOverflow)
			}
			n = int64(f)
		}
		if out.OverflowInt(n) {
			return reflect.Value{}, NewValueError(val.Interface(), t, errOverflow)
		}
		out.SetInt(n)

	case isUint(t.Kind()):
		var n uint64
		switch {
		case isInt(k):
			if val.Int() < 0 {
				return reflect.Value{}, NewValueError(val.Interface(), t, errOverflow)
			}
			n = uint64(val.Int())
		case isUint(k):
			n = val.Uint()
		default:
			f := val.Float()
			if f != math.Trunc(f) || f < 0 || f > math.MaxUint64 {
				return reflect.Value{}, NewValueError(val.Interface(), t, errOverflow)
			}
			n = uint64(f)
		}
		if out.OverflowUint(n) {
			return reflect.Value{}, NewValueError(val.Interface(), t, errOverflow)
		}
		out.SetUint(n)

	default:
		var f float64
		switch {
		case isInt(k):
			f = float64(val.Int())
		case isUint(k):
			f = float64(val.Uint())
		default:
			f = val.Float()
		}
		if out.OverflowFloat(f) {
			return reflect.Value{}, NewValueError(val.Interface(), t, errOverflow)
		}
		out.SetFloat(f)
	}

	return out, nil
}

// ParseValue converts a string representation of an argument to a reflect.Value of the specified type.
// The function follows these steps:
//  1. Checks if the target type is a string, a pointer to a string or []byte and handles these cases directly.
//  2. Attempts to unmarshal the string as JSON if it is valid JSON, using protojson for proto.Message
//     types. Note that simple values such as numbers, booleans, and null are also valid JSON.
//  3. Attempts to unmarshal the string using the encoding.TextUnmarshaler interface if implemented.
//  4. Attempts to unmarshal the string as a binary proto.Message if implemented.
//  5. Attempts to unmarshal the string using the encoding.BinaryUnmarshaler interface if implemented.
//  6. Returns a ValueError if none of the above methods succeed.
func ParseValue(s string, t reflect.Type) (reflect.Value, error) {
	argRaw := []byte(s)
	argPointer := t.Kind() == reflect.Pointer

	var (
		argValue reflect.Value
		outValue reflect.Value
	)
	if argPointer {
		argValue = reflect.New(t.Elem())
		outValue = argValue
	} else {
		argValue = reflect.New(t)
		outValue = argValue.Elem()
	}

	switch {
	case t.Kind() == reflect.String:
		outValue.SetString(s)
		return outValue, nil
	case argPointer && t.Elem().Kind() == reflect.String:
		argValue.Elem().SetString(s)
		return outValue, nil
	case t == bytesType:
		outValue.SetBytes(argRaw)
		return outValue, nil
	case t.Kind() == reflect.Interface && reflect.TypeOf(s).Implements(t):
		outValue.Set(reflect.ValueOf(s))
		return outValue, nil
	}

	argInterface := argValue.Interface()

	var lastErr error
	if json.Valid(argRaw) {
		if protoMessage, ok := argInterface.(proto.Message); ok {
			lastErr = protojson.Unmarshal(argRaw, protoMessage)
		} else {
			lastErr = json.Unmarshal(argRaw, argInterface)
		}
		if lastErr == nil {
			return outValue, nil
		}
	}

	if unmarshaler, ok := argInterface.(encoding.TextUnmarshaler); ok && utf8.ValidString(s) {
		if lastErr = unmarshaler.UnmarshalText(argRaw); lastErr == nil {
			return outValue, nil
		}
	}

	if protoMessage, ok := argInterface.(proto.Message); ok {
		if lastErr = proto.Unmarshal(argRaw, protoMessage); lastErr == nil {
			return outValue, nil
		}
	}

	if unmarshaler, ok := argInterface.(encoding.BinaryUnmarshaler); ok {
		if lastErr = unmarshaler.UnmarshalBinary(argRaw); lastErr == nil {
			return outValue, nil
		}
	}

	return reflect.Value{}, NewValueError(s, t, lastErr)
}

// ValueError wraps both external and internal errors, providing additional
// context about the argument and the target type involved in the error.
type ValueError struct {
	external error
	internal error
	arg, t   string
}

// Error returns a formatted error message indicating the conversion failure.
func (e ValueError) Error() string {
	if e.external == nil {
		return fmt.Sprintf("%v: '%s': for type '%s'", e.internal, e.arg, e.t)
	}

	return fmt.Sprintf("%v: '%s': for type '%s': '%v'", e.internal, e.arg, e.t, e.external)
}

// Is checks if the target error matches the internal error.
func (e ValueError) Is(target error) bool {
	return e.internal == target
}

// Unwrap returns the external error, if any.
func (e ValueError) Unwrap() error {
	return e.external
}

// NewValueError constructs an error for an invalid argument value conversion.
func NewValueError(arg any, t reflect.Type, errOrNil error) error {
	return ValueError{
		external: errOrNil,
		internal: dispatch.ErrInvalidArgumentValue,
		arg:      fmt.Sprint(arg),
		t:        t.String(),
	}
}
