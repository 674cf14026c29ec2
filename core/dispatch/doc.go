// Package dispatch defines the contract between the late-binding facade and
// the backends that actually resolve and invoke members by name.
//
// A backend receives a Request describing one member access: the member name,
// the Kind of access (method call, property or field get/set) and an ordered
// list of positional parameters. Each parameter carries its value and a flag
// telling whether it is passed by reference. The backend answers with a Reply
// holding the raw result and one output slot per parameter:
//
//	reply, err := object.Dispatch(ctx, dispatch.Request{
//	    Name: "MulFiveRef",
//	    Kind: dispatch.Method,
//	    Params: []dispatch.Param{
//	        {Value: 10, ByRef: true},
//	    },
//	})
//	// reply.Params[0] == int32(50)
//
// By-reference parameters are never aliased. Positions passed by value echo
// the supplied value, positions passed by reference carry whatever the member
// left in its output cell.
//
// Indexer access is a property access named IndexerName whose parameters are
// the index values. For a set, the value to store is the last parameter.
//
// Backends report failures with the sentinel errors of this package so the
// facade can classify them without knowing the backend:
//
//   - ErrMemberNotFound when no member of the requested kind has that name;
//   - ErrArgumentCount and ErrInvalidArgumentValue for argument mismatches;
//   - ErrUnsupportedKind when the backend cannot perform that access at all;
//   - TargetError when the member itself failed;
//   - NativeError for backend-native error codes (COM HRESULT, gRPC status).
package dispatch
