// Package ole implements the dispatch backend for COM automation objects.
//
// Objects are created from their programmatic identifier, such as
// "Excel.Application", and driven through IDispatch. COM exists on Windows
// only; elsewhere every constructor fails with ErrUnsupportedPlatform.
//
// COM objects are bound to the thread that created them. Callers must create
// and use an object from a goroutine locked to its OS thread with
// runtime.LockOSThread.
package ole

import (
	"context"
	"errors"
	"fmt"

	"github.com/anoideaopen/latebinding/core/dispatch"
)

// BackendName is reported by Object.Backend.
const BackendName = "ole"

// NativeSource is the source of the native errors reported by this backend.
const NativeSource = "com"

// ErrUnsupportedPlatform is returned when COM automation is not available.
var ErrUnsupportedPlatform = errors.New("COM automation is not supported on this platform")

// ProgID names a COM class by its programmatic identifier.
type ProgID string

// Name returns the identifier.
func (p ProgID) Name() string {
	return string(p)
}

// Factory resolves programmatic identifiers and creates automation objects.
type Factory struct{}

// NewFactory returns a COM object factory.
func NewFactory() *Factory {
	return &Factory{}
}

// ResolveProgID checks that progID names a registered COM class.
func (f *Factory) ResolveProgID(progID string) (dispatch.Type, error) {
	if progID == "" {
		return nil, fmt.Errorf("%w: program identifier", dispatch.ErrEmptyName)
	}

	if err := resolveProgID(progID); err != nil {
		return nil, err
	}

	return ProgID(progID), nil
}

// Construct creates an instance of the COM class t. Automation classes are
// created without arguments.
func (f *Factory) Construct(_ context.Context, t dispatch.Type, args ...any) (dispatch.Object, error) {
	progID, ok := t.(ProgID)
	if !ok {
		return nil, fmt.Errorf("%w: %T is not a program identifier", dispatch.ErrTypeNotFound, t)
	}

	if len(args) != 0 {
		return nil, fmt.Errorf("%w: %s with %d arguments", dispatch.ErrNoConstructor, progID, len(args))
	}

	return create(string(progID))
}
