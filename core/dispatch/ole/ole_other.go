//go:build !windows

package ole

import (
	"context"
	"fmt"
	"runtime"

	"github.com/anoideaopen/latebinding/core/dispatch"
)

// Object is never created outside Windows.
type Object struct{}

// Target returns nil.
func (o *Object) Target() any {
	return nil
}

// Backend returns BackendName.
func (o *Object) Backend() string {
	return BackendName
}

// Dispatch fails with ErrUnsupportedPlatform.
func (o *Object) Dispatch(context.Context, dispatch.Request) (dispatch.Reply, error) {
	return dispatch.Reply{}, unsupported()
}

// Release does nothing.
func (o *Object) Release() {}

func resolveProgID(string) error {
	return unsupported()
}

func create(string) (dispatch.Object, error) {
	return nil, unsupported()
}

func unsupported() error {
	return fmt.Errorf("%w: %s", ErrUnsupportedPlatform, runtime.GOOS)
}
