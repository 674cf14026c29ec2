package reflect

import (
	"fmt"
	"reflect"

	"github.com/anoideaopen/latebinding/core/dispatch"
)

// Checker is an interface that can be implemented by argument types that can
// check themselves before they are handed to a member.
type Checker interface {
	Check() error
}

// CheckArguments runs Check on every converted argument implementing Checker.
// Nil pointers and interfaces are skipped.
func CheckArguments(method string, in []reflect.Value) error {
	for i, value := range in {
		switch value.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
			if value.IsNil() {
				continue
			}
		}

		if !value.CanInterface() {
			continue
		}

		checker, ok := value.Interface().(Checker)
		if !ok {
			continue
		}

		if err := checker.Check(); err != nil {
			return fmt.Errorf(
				"%w: validation failed: '%v': call %s, argument %d",
				dispatch.ErrInvalidArgumentValue,
				err.Error(),
				method,
				i,
			)
		}
	}

	return nil
}
