package telemetry

import (
	"google.golang.org/grpc/metadata"
)

// MetadataCarrier adapts gRPC metadata to propagation.TextMapCarrier.
type MetadataCarrier metadata.MD

// Get returns the first value stored for key.
func (c MetadataCarrier) Get(key string) string {
	values := metadata.MD(c).Get(key)
	if len(values) == 0 {
		return ""
	}

	return values[0]
}

// Set replaces the values stored for key.
func (c MetadataCarrier) Set(key, value string) {
	metadata.MD(c).Set(key, value)
}

// Keys lists the stored keys.
func (c MetadataCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}

	return keys
}
