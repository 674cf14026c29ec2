package dispatch

// Kind represents the category of member access requested from a backend.
type Kind int

// Constants representing the different kinds of member access.
const (
	Method      Kind = iota // Invoke a method.
	PropertyGet             // Read a property (or an indexer).
	PropertySet             // Write a property (or an indexer).
	FieldGet                // Read a field.
	FieldSet                // Write a field.
)

// IndexerName is the synthetic member name used for indexer access.
const IndexerName = "Item"

// Kinds returns every access kind in declaration order.
func Kinds() []Kind {
	return []Kind{Method, PropertyGet, PropertySet, FieldGet, FieldSet}
}

func (k Kind) String() string {
	switch k {
	case Method:
		return "method"
	case PropertyGet:
		return "property_get"
	case PropertySet:
		return "property_set"
	case FieldGet:
		return "field_get"
	case FieldSet:
		return "field_set"
	default:
		return "unknown"
	}
}

// LookupMode returns the member lookup mode a backend performs for the kind.
func (k Kind) LookupMode() string {
	switch k {
	case Method:
		return "InvokeMethod"
	case PropertyGet:
		return "GetProperty"
	case PropertySet:
		return "SetProperty"
	case FieldGet:
		return "GetField"
	case FieldSet:
		return "SetField"
	default:
		return "Default"
	}
}

// IsGet reports whether the kind reads a property or a field.
func (k Kind) IsGet() bool {
	return k == PropertyGet || k == FieldGet
}

// IsSet reports whether the kind writes a property or a field.
func (k Kind) IsSet() bool {
	return k == PropertySet || k == FieldSet
}

// IsProperty reports whether the kind accesses a property.
func (k Kind) IsProperty() bool {
	return k == PropertyGet || k == PropertySet
}

// FieldKind returns the field access matching a property access.
// The second result is false for kinds that are not property accesses.
func (k Kind) FieldKind() (Kind, bool) {
	switch k {
	case PropertyGet:
		return FieldGet, true
	case PropertySet:
		return FieldSet, true
	default:
		return k, false
	}
}
