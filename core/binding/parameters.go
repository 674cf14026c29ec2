package binding

import "github.com/anoideaopen/latebinding/core/dispatch"

// Parameters accumulates the positional arguments of one operation. Any value
// is accepted, nil included.
type Parameters struct {
	entries []dispatch.Param
}

// NewParameters returns an empty parameter list.
func NewParameters() *Parameters {
	return &Parameters{}
}

// AddParameter appends a value passed by value.
func (p *Parameters) AddParameter(v any) *Parameters {
	p.entries = append(p.entries, dispatch.Param{Value: v})
	return p
}

// AddRefParameter appends a value passed by reference.
func (p *Parameters) AddRefParameter(v any) *Parameters {
	p.entries = append(p.entries, dispatch.Param{Value: v, ByRef: true})
	return p
}

// Values returns the values in insertion order.
func (p *Parameters) Values() []any {
	values := make([]any, len(p.entries))
	for i, e := range p.entries {
		values[i] = e.Value
	}

	return values
}

// ReferenceFlags returns a slice aligned with Values telling which positions
// are passed by reference.
func (p *Parameters) ReferenceFlags() []bool {
	flags := make([]bool, len(p.entries))
	for i, e := range p.entries {
		flags[i] = e.ByRef
	}

	return flags
}

// Params returns a copy of the entries.
func (p *Parameters) Params() []dispatch.Param {
	if len(p.entries) == 0 {
		return nil
	}

	return append([]dispatch.Param(nil), p.entries...)
}

// Len returns the number of entries.
func (p *Parameters) Len() int {
	return len(p.entries)
}

// Clear discards all entries.
func (p *Parameters) Clear() {
	p.entries = nil
}
