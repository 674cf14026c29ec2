package dispatch

import (
	"errors"
	"fmt"
)

// Configuration errors.
var (
	ErrNilTarget     = errors.New("target object is not set")
	ErrTypeNotFound  = errors.New("type not found")
	ErrNoConstructor = errors.New("type has no usable constructor")
)

// Argument and resolution errors.
var (
	ErrEmptyName            = errors.New("empty member name")
	ErrMemberNotFound       = errors.New("member not found")
	ErrArgumentCount        = errors.New("incorrect number of arguments")
	ErrInvalidArgumentValue = errors.New("invalid argument value")
	ErrUnsupportedKind      = errors.New("unsupported operation kind")
	ErrTargetFailed         = errors.New("member invocation failed")
)

// TargetError is returned when the resolved member itself failed: it returned
// a non-nil error or panicked.
type TargetError struct {
	Member string
	Err    error
}

func (e *TargetError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrTargetFailed, e.Member, e.Err)
}

// Is reports ErrTargetFailed as the error class.
func (e *TargetError) Is(target error) bool {
	return target == ErrTargetFailed
}

// Unwrap returns the member error.
func (e *TargetError) Unwrap() error {
	return e.Err
}

// NativeError carries an error code produced by the backend's native layer,
// such as a COM HRESULT or a gRPC status code.
type NativeError struct {
	Source  string // Native layer, e.g. "com" or "grpc".
	Code    int64  // Native error code.
	Message string // Native error message.
	Err     error  // Original native error, if any.
}

func (e *NativeError) Error() string {
	if e.Source == "com" {
		return fmt.Sprintf("%s error 0x%08X: %s", e.Source, uint32(e.Code), e.Message)
	}

	return fmt.Sprintf("%s error %d: %s", e.Source, e.Code, e.Message)
}

// Unwrap returns the original native error.
func (e *NativeError) Unwrap() error {
	return e.Err
}
