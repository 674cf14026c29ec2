// Package reflect implements the dispatch backend for plain Go values.
//
// Members are resolved with the reflect package. A member name matches an
// exported Go identifier either exactly or once its first character is
// capitalised, so "sum" and "Sum" both resolve the method Sum.
//
// Arguments are converted to the parameter types with ValueOf: assignable
// values pass through, numbers are converted when no precision is lost and
// strings are decoded as JSON, protojson, text or binary representations.
//
// Go has no way to load a type from its name, so constructible types are
// declared in a Registry before they can be created by name.
package reflect
