package binding_test

import (
	"context"
	"testing"

	"github.com/anoideaopen/latebinding/core/binding"
	"github.com/anoideaopen/latebinding/core/dispatch"
	rbackend "github.com/anoideaopen/latebinding/core/dispatch/reflect"
	"github.com/stretchr/testify/require"
)

func newInvoker(t *testing.T, opts ...binding.Option) *binding.Invoker {
	t.Helper()

	return binding.NewInvoker(bindTestType(t, opts...))
}

func TestInvokerScenarios(t *testing.T) {
	ctx := context.Background()

	t.Run("field round trip", func(t *testing.T) {
		inv := newInvoker(t)

		v, err := binding.InvokerGet[int](ctx, inv.Field("myField"))
		require.NoError(t, err)
		require.Equal(t, 27, v)

		require.NoError(t, inv.Field("myField").Set(ctx, -50))

		v, err = binding.InvokerGet[int](ctx, inv.Field("myField"))
		require.NoError(t, err)
		require.Equal(t, -50, v)
	})

	t.Run("sum", func(t *testing.T) {
		inv := newInvoker(t)

		v, err := binding.InvokerInvoke[int](ctx, inv.Method("Sum").AddParameter(15).AddParameter(17))
		require.NoError(t, err)
		require.Equal(t, 32, v)
		require.Equal(t, []any{15, 17}, inv.LastCallParameters())
	})

	t.Run("by reference", func(t *testing.T) {
		inv := newInvoker(t)

		_, err := inv.Method("MulFiveRef").AddRefParameter(10).InvokeValue(ctx)
		require.NoError(t, err)

		out, err := binding.As[int](inv.LastCallParameters()[0])
		require.NoError(t, err)
		require.Equal(t, 50, out)

		_, err = inv.Method("MulTenRef").AddRefParameter(1).AddRefParameter(2).InvokeValue(ctx)
		require.NoError(t, err)
		require.Equal(t, []any{int32(10), int32(20)}, inv.LastCallParameters())
	})

	t.Run("unknown method", func(t *testing.T) {
		inv := newInvoker(t)

		_, err := inv.Method("blerz").Invoke(ctx)
		require.ErrorIs(t, err, binding.ErrOperationCallFailed)
		require.False(t, inv.Armed())
		require.Nil(t, inv.LastCallParameters())

		v, err := binding.InvokerInvoke[int32](ctx, inv.Method("Sum").AddParameter(1).AddParameter(1))
		require.NoError(t, err)
		require.Equal(t, int32(2), v)
	})
}

func TestInvokerRecoversFromBadCalls(t *testing.T) {
	ctx := context.Background()
	inv := newInvoker(t)

	_, err := inv.Method("NoSuchMethod").InvokeValue(ctx)
	require.Error(t, err)

	_, err = inv.Method("Sum").AddParameter(1).AddParameter(2).InvokeValue(ctx)
	require.NoError(t, err)

	_, err = inv.Property("NoSuchProperty").GetValue(ctx)
	require.Error(t, err)

	_, err = inv.Property("MyProp").GetValue(ctx)
	require.NoError(t, err)

	err = inv.Field("NoSuchField").Set(ctx, 1)
	require.Error(t, err)

	_, err = inv.Field("MyField").GetValue(ctx)
	require.NoError(t, err)
}

func TestInvokerSequencing(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		run     func(inv *binding.Invoker) error
		wantErr error
	}{
		{
			name: "two operations",
			run: func(inv *binding.Invoker) error {
				_, err := inv.Method("Sum").Property("MyProp").GetValue(ctx)
				return err
			},
			wantErr: binding.ErrAlreadyDefined,
		},
		{
			name: "invoke while idle",
			run: func(inv *binding.Invoker) error {
				_, err := inv.InvokeValue(ctx)
				return err
			},
			wantErr: binding.ErrNoOperationDefined,
		},
		{
			name: "set while idle",
			run: func(inv *binding.Invoker) error {
				return inv.Set(ctx, 1)
			},
			wantErr: binding.ErrNoOperationDefined,
		},
		{
			name: "parameter while idle",
			run: func(inv *binding.Invoker) error {
				_, err := inv.AddParameter(1).Method("SimpleMethod").InvokeValue(ctx)
				return err
			},
			wantErr: binding.ErrNoOperationDefined,
		},
		{
			name: "reference parameter while idle",
			run: func(inv *binding.Invoker) error {
				_, err := inv.AddRefParameter(1).InvokeValue(ctx)
				return err
			},
			wantErr: binding.ErrNoOperationDefined,
		},
		{
			name: "invoke a property",
			run: func(inv *binding.Invoker) error {
				_, err := inv.Property("MyProp").InvokeValue(ctx)
				return err
			},
			wantErr: binding.ErrKindMismatch,
		},
		{
			name: "get a method",
			run: func(inv *binding.Invoker) error {
				_, err := inv.Method("Sum").GetValue(ctx)
				return err
			},
			wantErr: binding.ErrKindMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := newInvoker(t)

			require.ErrorIs(t, tt.run(inv), tt.wantErr)
			require.False(t, inv.Armed())
			require.NoError(t, inv.Err())

			_, err := inv.Method("SimpleMethod").InvokeValue(ctx)
			require.NoError(t, err)
		})
	}
}

func TestInvokerLatchesFirstError(t *testing.T) {
	inv := newInvoker(t)

	inv.AddParameter(1)
	require.ErrorIs(t, inv.Err(), binding.ErrNoOperationDefined)

	inv.Method("Sum")
	require.False(t, inv.Armed())
	require.ErrorIs(t, inv.Err(), binding.ErrNoOperationDefined)

	_, err := inv.InvokeValue(context.Background())
	require.ErrorIs(t, err, binding.ErrNoOperationDefined)
	require.NoError(t, inv.Err())
}

func TestInvokerChaining(t *testing.T) {
	ctx := context.Background()
	inv := newInvoker(t)

	selection, err := inv.Method("Selection").Invoke(ctx)
	require.NoError(t, err)
	require.NotNil(t, selection)
	require.IsType(t, &Selection{}, selection.Target())

	text, err := binding.InvokerInvoke[string](ctx, selection.Method("TypeText").AddParameter("hello"))
	require.NoError(t, err)
	require.Equal(t, "hello", text)

	nothing, err := inv.Method("Nothing").Invoke(ctx)
	require.NoError(t, err)
	require.Nil(t, nothing)

	none, err := inv.Method("SimpleMethod").Invoke(ctx)
	require.NoError(t, err)
	require.Nil(t, none)

	prop, err := inv.Property("MyProp").Get(ctx)
	require.NoError(t, err)
	require.Equal(t, int32(27), prop.Target())
}

func TestInvokerIndexer(t *testing.T) {
	ctx := context.Background()
	inv := newInvoker(t)

	require.NoError(t, inv.Index(3).Set(ctx, "y"))

	v, err := binding.InvokerGet[string](ctx, inv.Index(3))
	require.NoError(t, err)
	require.Equal(t, "value:y", v)

	_, err = inv.Index(1).Index(2).GetValue(ctx)
	require.ErrorIs(t, err, binding.ErrAlreadyDefined)
}

func TestBindInvoker(t *testing.T) {
	_, err := binding.BindInvoker(nil)
	require.ErrorIs(t, err, binding.ErrNilTarget)

	target := &Counter{Count: 1}
	inv, err := binding.BindInvoker(target, binding.WithFieldFallback())
	require.NoError(t, err)
	require.Same(t, target, inv.Target())
	require.Equal(t, rbackend.BackendName, inv.Binding().Object().Backend())

	v, err := inv.Property("Count").GetValue(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, v)

	_, err = inv.Method("Count").InvokeValue(context.Background())
	require.ErrorIs(t, err, dispatch.ErrMemberNotFound)
}
