package reflect

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/anoideaopen/latebinding/core/dispatch"
	"github.com/anoideaopen/latebinding/core/stringsx"
)

// TagName is the struct tag used to give a field an alternative member name.
const TagName = "latebinding"

var intType = reflect.TypeOf(0)

// method looks up a method by its exact name. Methods declared on the pointer
// receiver are found for addressable values.
func method(v reflect.Value, name string) (reflect.Value, bool) {
	if m := v.MethodByName(name); m.IsValid() {
		return m, true
	}

	if v.Kind() != reflect.Pointer && v.CanAddr() {
		if m := v.Addr().MethodByName(name); m.IsValid() {
			return m, true
		}
	}

	return reflect.Value{}, false
}

// indirect follows non-nil pointers and interfaces down to a concrete value.
func indirect(v reflect.Value) reflect.Value {
	for (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) && !v.IsNil() {
		v = v.Elem()
	}

	return v
}

// isContainer reports whether v can be indexed natively.
func isContainer(v reflect.Value) bool {
	switch indirect(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return true
	default:
		return false
	}
}

// getProperty reads a property through its getter: a method named after the
// property or prefixed with "Get". Getter parameters are the request
// parameters, which is how indexers receive their index values.
func getProperty(v reflect.Value, req dispatch.Request) (dispatch.Reply, error) {
	for _, name := range stringsx.Candidates(req.Name, "", "Get") {
		m, ok := method(v, name)
		if !ok || !isGetter(m.Type()) {
			continue
		}

		return callFunc(m, name, req.Params)
	}

	return dispatch.Reply{}, fmt.Errorf("%w: property %s", dispatch.ErrMemberNotFound, req.Name)
}

// setProperty writes a property through its "Set" prefixed setter. The value
// is the last request parameter, preceded by the index values if any.
func setProperty(v reflect.Value, req dispatch.Request) (dispatch.Reply, error) {
	for _, name := range stringsx.Candidates(req.Name, "Set") {
		m, ok := method(v, name)
		if !ok {
			continue
		}

		reply, err := callFunc(m, name, req.Params)
		if err != nil {
			return dispatch.Reply{}, err
		}
		reply.Value = nil

		return reply, nil
	}

	return dispatch.Reply{}, fmt.Errorf("%w: property %s", dispatch.ErrMemberNotFound, req.Name)
}

// isGetter reports whether a method returns at least one value besides a
// trailing error.
func isGetter(fnType reflect.Type) bool {
	numOut := fnType.NumOut()
	if returnsError(fnType) {
		numOut--
	}

	return numOut > 0
}

// fieldByName finds an exported field of the struct behind v. The name is
// matched exactly first, then against the latebinding tag, then ignoring the
// case of the first character.
func fieldByName(v reflect.Value, name string) (reflect.Value, bool, error) {
	s := indirect(v)
	if s.Kind() != reflect.Struct {
		return reflect.Value{}, false, nil
	}

	fields := reflect.VisibleFields(s.Type())
	matchers := []func(reflect.StructField) bool{
		func(f reflect.StructField) bool { return f.Name == name },
		func(f reflect.StructField) bool {
			tag, _, _ := strings.Cut(f.Tag.Get(TagName), ",")
			return tag != "" && tag == name
		},
		func(f reflect.StructField) bool { return stringsx.EqualFoldFirst(f.Name, name) },
	}

	for _, match := range matchers {
		for _, f := range fields {
			if !f.IsExported() || !match(f) {
				continue
			}

			fv, err := s.FieldByIndexErr(f.Index)
			if err != nil {
				return reflect.Value{}, true, &dispatch.TargetError{Member: f.Name, Err: err}
			}

			return fv, true, nil
		}
	}

	return reflect.Value{}, false, nil
}

func getField(v reflect.Value, req dispatch.Request) (dispatch.Reply, error) {
	if len(req.Params) != 0 {
		return dispatch.Reply{}, fmt.Errorf(
			"%w: found %d but expected 0: field %s",
			dispatch.ErrArgumentCount,
			len(req.Params),
			req.Name,
		)
	}

	fv, ok, err := fieldByName(v, req.Name)
	if err != nil {
		return dispatch.Reply{}, err
	}
	if !ok {
		return dispatch.Reply{}, fmt.Errorf("%w: field %s", dispatch.ErrMemberNotFound, req.Name)
	}

	return dispatch.NewReply(req, fv.Interface()), nil
}

func setField(v reflect.Value, req dispatch.Request) (dispatch.Reply, error) {
	if len(req.Params) != 1 {
		return dispatch.Reply{}, fmt.Errorf(
			"%w: found %d but expected 1: field %s",
			dispatch.ErrArgumentCount,
			len(req.Params),
			req.Name,
		)
	}

	fv, ok, err := fieldByName(v, req.Name)
	if err != nil {
		return dispatch.Reply{}, err
	}
	if !ok {
		return dispatch.Reply{}, fmt.Errorf("%w: field %s", dispatch.ErrMemberNotFound, req.Name)
	}

	if !fv.CanSet() {
		return dispatch.Reply{}, &dispatch.TargetError{
			Member: req.Name,
			Err:    fmt.Errorf("field of %s is not settable", v.Type()),
		}
	}

	value, err := ValueOf(req.Params[0].Value, fv.Type())
	if err != nil {
		return dispatch.Reply{}, fmt.Errorf("%w: field %s", err, req.Name)
	}
	fv.Set(value)

	return dispatch.NewReply(req, nil), nil
}

// getIndex reads an element of a map, slice or array. Each parameter indexes
// one level of nested containers. A missing map key yields the zero value.
func getIndex(v reflect.Value, req dispatch.Request) (dispatch.Reply, error) {
	if len(req.Params) == 0 {
		return dispatch.Reply{}, fmt.Errorf("%w: found 0 but expected at least 1: indexer", dispatch.ErrArgumentCount)
	}

	cur := v
	for _, p := range req.Params {
		var err error
		if cur, err = element(cur, p.Value); err != nil {
			return dispatch.Reply{}, err
		}
	}

	return dispatch.NewReply(req, cur.Interface()), nil
}

// setIndex writes an element of a map, slice or array. The value is the last
// request parameter, preceded by one index per level.
func setIndex(v reflect.Value, req dispatch.Request) (dispatch.Reply, error) {
	if len(req.Params) < 2 { //nolint:gomnd
		return dispatch.Reply{}, fmt.Errorf(
			"%w: found %d but expected at least 2: indexer",
			dispatch.ErrArgumentCount,
			len(req.Params),
		)
	}

	var (
		indexes = req.Params[:len(req.Params)-1]
		value   = req.Params[len(req.Params)-1].Value
		cur     = v
		err     error
	)
	for _, p := range indexes[:len(indexes)-1] {
		if cur, err = element(cur, p.Value); err != nil {
			return dispatch.Reply{}, err
		}
	}

	cur = indirect(cur)
	last := indexes[len(indexes)-1].Value

	switch cur.Kind() {
	case reflect.Map:
		if cur.IsNil() {
			return dispatch.Reply{}, &dispatch.TargetError{Member: dispatch.IndexerName, Err: fmt.Errorf("assignment to nil map")}
		}
		key, err := ValueOf(last, cur.Type().Key())
		if err != nil {
			return dispatch.Reply{}, err
		}
		elem, err := ValueOf(value, cur.Type().Elem())
		if err != nil {
			return dispatch.Reply{}, err
		}
		cur.SetMapIndex(key, elem)

	case reflect.Slice, reflect.Array:
		i, err := position(last, cur.Len())
		if err != nil {
			return dispatch.Reply{}, err
		}
		target := cur.Index(i)
		if !target.CanSet() {
			return dispatch.Reply{}, &dispatch.TargetError{
				Member: dispatch.IndexerName,
				Err:    fmt.Errorf("element of %s is not settable", cur.Type()),
			}
		}
		elem, err := ValueOf(value, target.Type())
		if err != nil {
			return dispatch.Reply{}, err
		}
		target.Set(elem)

	default:
		return dispatch.Reply{}, fmt.Errorf("%w: %s is not indexable", dispatch.ErrArgumentCount, cur.Type())
	}

	return dispatch.NewReply(req, nil), nil
}

// element returns one element of the container behind v.
func element(v reflect.Value, index any) (reflect.Value, error) {
	v = indirect(v)

	switch v.Kind() {
	case reflect.Map:
		key, err := ValueOf(index, v.Type().Key())
		if err != nil {
			return reflect.Value{}, err
		}
		if elem := v.MapIndex(key); elem.IsValid() {
			return elem, nil
		}
		return reflect.Zero(v.Type().Elem()), nil

	case reflect.Slice, reflect.Array:
		i, err := position(index, v.Len())
		if err != nil {
			return reflect.Value{}, err
		}
		return v.Index(i), nil

	default:
		return reflect.Value{}, fmt.Errorf("%w: %s is not indexable", dispatch.ErrArgumentCount, v.Type())
	}
}

func position(index any, length int) (int, error) {
	iv, err := ValueOf(index, intType)
	if err != nil {
		return 0, err
	}

	i := int(iv.Int())
	if i < 0 || i >= length {
		return 0, &dispatch.TargetError{
			Member: dispatch.IndexerName,
			Err:    fmt.Errorf("index %d out of range [0:%d]", i, length),
		}
	}

	return i, nil
}
