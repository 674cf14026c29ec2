package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/metadata"
)

// TracerName is the instrumentation name of the library tracer.
const TracerName = "github.com/anoideaopen/latebinding"

// TracingHandler starts spans and moves trace context across process
// boundaries.
type TracingHandler struct {
	Tracer      trace.Tracer
	Propagators propagation.TextMapPropagator
}

// NewTracingHandler creates a handler using the given provider and
// propagator. Nil arguments are replaced by the global ones.
func NewTracingHandler(tp trace.TracerProvider, propagators propagation.TextMapPropagator) *TracingHandler {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if propagators == nil {
		propagators = otel.GetTextMapPropagator()
	}

	return &TracingHandler{
		Tracer:      tp.Tracer(TracerName),
		Propagators: propagators,
	}
}

// StartNewSpan starts new span
func (th *TracingHandler) StartNewSpan(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if ctx == nil {
		ctx = context.Background()
	}

	return th.Tracer.Start(ctx, spanName, opts...)
}

// OutgoingContext returns ctx with the trace context of ctx appended to the
// outgoing gRPC metadata.
func (th *TracingHandler) OutgoingContext(ctx context.Context) context.Context {
	md, ok := metadata.FromOutgoingContext(ctx)
	if ok {
		md = md.Copy()
	} else {
		md = metadata.MD{}
	}

	th.Propagators.Inject(ctx, MetadataCarrier(md))

	return metadata.NewOutgoingContext(ctx, md)
}

// IncomingContext extracts the trace context carried by incoming gRPC metadata.
func (th *TracingHandler) IncomingContext(ctx context.Context) context.Context {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ctx
	}

	return th.Propagators.Extract(ctx, MetadataCarrier(md))
}
