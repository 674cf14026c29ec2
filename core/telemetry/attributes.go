package telemetry

import (
	"github.com/anoideaopen/latebinding/core/dispatch"
	"go.opentelemetry.io/otel/attribute"
)

// OperationKind returns the span attribute describing the kind of access.
func OperationKind(k dispatch.Kind) attribute.KeyValue {
	return attribute.String("operation_kind", k.String())
}

// Member returns the span attribute naming the accessed member.
func Member(name string) attribute.KeyValue {
	return attribute.String("member", name)
}

// Backend returns the span attribute naming the dispatch backend.
func Backend(name string) attribute.KeyValue {
	return attribute.String("backend", name)
}

// BindingID returns the span attribute identifying the binding.
func BindingID(id string) attribute.KeyValue {
	return attribute.String("binding_id", id)
}
