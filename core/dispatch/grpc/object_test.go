package grpc

import (
	"context"
	"net"
	"testing"

	"github.com/anoideaopen/latebinding/core/dispatch"
	"github.com/anoideaopen/latebinding/core/telemetry"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/known/durationpb"
)

const bufSize = 1024 * 1024

var healthService = healthpb.File_grpc_health_v1_health_proto.Services().ByName("Health")

// startServer serves the health service on an in-memory listener. The
// returned channel receives the metadata of every incoming call.
func startServer(t *testing.T, register bool) (*grpc.ClientConn, *health.Server, <-chan metadata.MD) {
	t.Helper()

	incoming := make(chan metadata.MD, 16)
	lis := bufconn.Listen(bufSize)
	srv := grpc.NewServer(grpc.UnaryInterceptor(func(
		ctx context.Context,
		req any,
		_ *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		md, _ := metadata.FromIncomingContext(ctx)
		incoming <- md
		return handler(ctx, req)
	}))

	hs := health.NewServer()
	if register {
		healthpb.RegisterHealthServer(srv, hs)
	}

	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn, hs, incoming
}

func call(t *testing.T, obj *Object, kind dispatch.Kind, name string, values ...any) (any, error) {
	t.Helper()

	params := make([]dispatch.Param, len(values))
	for i, v := range values {
		params[i] = dispatch.Param{Value: v}
	}

	reply, err := obj.Dispatch(context.Background(), dispatch.Request{Name: name, Kind: kind, Params: params})
	return reply.Value, err
}

func servingStatus(t *testing.T, v any) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()

	raw, err := proto.Marshal(v.(proto.Message))
	require.NoError(t, err)

	resp := &healthpb.HealthCheckResponse{}
	require.NoError(t, proto.Unmarshal(raw, resp))

	return resp.GetStatus()
}

func TestNew(t *testing.T) {
	_, err := New(nil, healthService)
	require.ErrorIs(t, err, dispatch.ErrNilTarget)

	conn, _, _ := startServer(t, true)
	_, err = New(conn, nil)
	require.ErrorIs(t, err, dispatch.ErrNilTarget)

	obj, err := New(conn, healthService)
	require.NoError(t, err)
	require.Equal(t, BackendName, obj.Backend())
	require.Same(t, conn, obj.Target())
	require.Equal(t, protoreflect.FullName("grpc.health.v1.Health"), obj.Service().FullName())
	require.Contains(t, obj.Members(), dispatch.Member{Name: "Check", Kind: dispatch.Method})
	require.NotContains(t, obj.Members(), dispatch.Member{Name: "Watch", Kind: dispatch.Method})
}

func TestUnaryCall(t *testing.T) {
	conn, hs, _ := startServer(t, true)
	hs.SetServingStatus("billing", healthpb.HealthCheckResponse_NOT_SERVING)

	obj, err := New(conn, healthService)
	require.NoError(t, err)

	v, err := call(t, obj, dispatch.Method, "Check")
	require.NoError(t, err)
	require.Equal(t, healthpb.HealthCheckResponse_SERVING, servingStatus(t, v))

	v, err = call(t, obj, dispatch.Method, "check", `{"service":"billing"}`)
	require.NoError(t, err)
	require.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, servingStatus(t, v))

	v, err = call(t, obj, dispatch.Method, "Check", &healthpb.HealthCheckRequest{Service: "billing"})
	require.NoError(t, err)
	require.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, servingStatus(t, v))
}

func TestStatusErrors(t *testing.T) {
	conn, _, _ := startServer(t, true)
	obj, err := New(conn, healthService)
	require.NoError(t, err)

	_, err = call(t, obj, dispatch.Method, "Check", `{"service":"unknown"}`)
	var nativeErr *dispatch.NativeError
	require.ErrorAs(t, err, &nativeErr)
	require.Equal(t, NativeSource, nativeErr.Source)
	require.Equal(t, int64(codes.NotFound), nativeErr.Code)

	conn, _, _ = startServer(t, false)
	obj, err = New(conn, healthService)
	require.NoError(t, err)

	_, err = call(t, obj, dispatch.Method, "Check")
	require.ErrorAs(t, err, &nativeErr)
	require.Equal(t, int64(codes.Unimplemented), nativeErr.Code)
}

func TestRejectedRequests(t *testing.T) {
	conn, _, _ := startServer(t, true)
	obj, err := New(conn, healthService)
	require.NoError(t, err)

	tests := []struct {
		name    string
		kind    dispatch.Kind
		member  string
		values  []any
		wantErr error
	}{
		{name: "streaming", kind: dispatch.Method, member: "Watch", wantErr: dispatch.ErrUnsupportedKind},
		{name: "unknown method", kind: dispatch.Method, member: "Ping", wantErr: dispatch.ErrMemberNotFound},
		{name: "property", kind: dispatch.PropertyGet, member: "Check", wantErr: dispatch.ErrUnsupportedKind},
		{name: "two params", kind: dispatch.Method, member: "Check", values: []any{nil, nil}, wantErr: dispatch.ErrArgumentCount},
		{name: "wrong message", kind: dispatch.Method, member: "Check", values: []any{durationpb.New(0)}, wantErr: dispatch.ErrInvalidArgumentValue},
		{name: "bad json", kind: dispatch.Method, member: "Check", values: []any{`{"svc":1}`}, wantErr: dispatch.ErrInvalidArgumentValue},
		{name: "not a message", kind: dispatch.Method, member: "Check", values: []any{42}, wantErr: dispatch.ErrInvalidArgumentValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := call(t, obj, tt.kind, tt.member, tt.values...)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTraceContextPropagation(t *testing.T) {
	conn, _, incoming := startServer(t, true)

	th := telemetry.NewTracingHandler(sdktrace.NewTracerProvider(), propagation.TraceContext{})
	obj, err := New(conn, healthService, WithTracingHandler(th))
	require.NoError(t, err)

	ctx, span := th.StartNewSpan(context.Background(), "client")
	defer span.End()

	_, err = obj.Dispatch(ctx, dispatch.Request{Name: "Check", Kind: dispatch.Method})
	require.NoError(t, err)

	md := <-incoming
	require.NotEmpty(t, md.Get("traceparent"))
	require.Contains(t, md.Get("traceparent")[0], span.SpanContext().TraceID().String())
}
