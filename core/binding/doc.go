// Package binding is a fluent facade for late-bound member access: methods,
// properties, fields and indexers are selected by name at run time and
// dispatched to a backend chosen when the target is bound.
//
// Plain Go values are served by reflection, protobuf messages by their
// fields, gRPC services by unary calls and, on Windows, COM automation
// objects through IDispatch.
//
// Every selection on a Binding returns its own Call:
//
//	b, err := binding.Bind(&Calculator{})
//	sum, err := binding.InvokeAs[int32](ctx, b.Method("Sum").AddParameter(15).AddParameter(17))
//
//	res, err := b.Method("MulFiveRef").AddRefParameter(10).Invoke(ctx)
//	fmt.Println(res.Params[0]) // 50
//
// Invoker keeps a single pending operation instead, for callers that drive an
// object step by step:
//
//	inv := binding.NewInvoker(b)
//	if err := inv.Field("myField").Set(ctx, -50); err != nil {
//	    return err
//	}
//
// Dispatch failures are reported as *OperationError, matching
// ErrOperationCallFailed, except native backend errors such as COM HRESULTs
// and gRPC status codes, which are returned as *dispatch.NativeError.
package binding
