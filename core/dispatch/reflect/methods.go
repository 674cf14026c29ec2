package reflect

import (
	"reflect"
	"sort"
	"strings"
)

// Methods inspects the type of the given value 'v' using reflection and returns a slice of strings
// containing the names of all methods that are defined on its type. This function only considers
// exported methods (those starting with an uppercase letter) due to Go's visibility rules in reflection.
//
// Parameters:
//   - v: The value whose type's methods are to be listed.
//
// Returns:
//   - []string: A sorted slice containing the names of all methods associated with the type of 'v'.
func Methods(v any) []string {
	methodNames := make([]string, 0)

	t := reflect.TypeOf(v)
	if t == nil {
		return methodNames
	}

	for i := 0; i < t.NumMethod(); i++ {
		methodNames = append(methodNames, t.Method(i).Name)
	}

	sort.Strings(methodNames)

	return methodNames
}

// Properties returns the sorted names of the properties of v: every "Set"
// prefixed method that has a matching getter, named either after the property
// or with a "Get" prefix.
func Properties(v any) []string {
	t := reflect.TypeOf(v)
	if t == nil {
		return nil
	}

	var properties []string
	for i := 0; i < t.NumMethod(); i++ {
		name, ok := strings.CutPrefix(t.Method(i).Name, "Set")
		if !ok || name == "" {
			continue
		}

		for _, getter := range []string{name, "Get" + name} {
			if m, found := t.MethodByName(getter); found && isGetter(m.Func.Type()) {
				properties = append(properties, name)
				break
			}
		}
	}

	sort.Strings(properties)

	return properties
}

// Fields returns the sorted names of the exported fields of the struct behind v.
func Fields(v any) []string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}

	var fields []string
	for _, f := range reflect.VisibleFields(t) {
		if f.IsExported() && !f.Anonymous {
			fields = append(fields, f.Name)
		}
	}

	sort.Strings(fields)

	return fields
}
