package binding

import (
	"errors"
	"fmt"

	"github.com/anoideaopen/latebinding/core/dispatch"
	"github.com/anoideaopen/latebinding/core/dispatch/ole"
)

// Configuration errors.
var (
	ErrNilTarget           = dispatch.ErrNilTarget
	ErrNoConstructor       = dispatch.ErrNoConstructor
	ErrTypeNotFound        = dispatch.ErrTypeNotFound
	ErrUnsupportedPlatform = ole.ErrUnsupportedPlatform
)

// Argument errors.
var (
	ErrEmptyName            = dispatch.ErrEmptyName
	ErrArgumentCount        = dispatch.ErrArgumentCount
	ErrInvalidArgumentValue = dispatch.ErrInvalidArgumentValue
)

// Protocol sequencing errors.
var (
	ErrAlreadyDefined     = errors.New("operation already defined")
	ErrNoOperationDefined = errors.New("no operation defined")
	ErrKindMismatch       = errors.New("operation kind mismatch")
)

var (
	// ErrOperationCallFailed is the class of every dispatch failure that is
	// not a native error.
	ErrOperationCallFailed = errors.New("operation call failed")

	// ErrInvalidCast is returned when a result cannot be converted to the
	// requested type.
	ErrInvalidCast = errors.New("invalid cast")
)

// OperationError reports a failed member access. It matches
// ErrOperationCallFailed and unwraps to the backend error.
type OperationError struct {
	Kind   dispatch.Kind
	Member string
	Err    error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%v: %s %s: %v", ErrOperationCallFailed, e.Kind, e.Member, e.Err)
}

// Is reports ErrOperationCallFailed as the error class.
func (e *OperationError) Is(target error) bool {
	return target == ErrOperationCallFailed
}

// Unwrap returns the backend error.
func (e *OperationError) Unwrap() error {
	return e.Err
}

// translate keeps native errors as they are and wraps everything else.
func translate(req dispatch.Request, err error) error {
	var nativeErr *dispatch.NativeError
	if errors.As(err, &nativeErr) {
		return nativeErr
	}

	return &OperationError{
		Kind:   req.Kind,
		Member: req.Name,
		Err:    err,
	}
}
