package daemon

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const serviceName = "jvmproc.v1.JVMProc"

// JVMProcServer is the daemon side of the jvmproc.v1.JVMProc service.
type JVMProcServer interface {
	Ping(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error)
	List(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	Refresh(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	Lookup(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
	Connect(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
}

// JVMProcClient is the client API of the jvmproc.v1.JVMProc service.
type JVMProcClient interface {
	Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	List(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error)
	Refresh(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error)
	Lookup(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error)
	Connect(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type jvmProcClient struct {
	cc grpc.ClientConnInterface
}

// NewJVMProcClient wraps a connection to the daemon.
func NewJVMProcClient(cc grpc.ClientConnInterface) JVMProcClient {
	return &jvmProcClient{cc: cc}
}

func fullMethod(name string) string {
	return "/" + serviceName + "/" + name
}

func (c *jvmProcClient) Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, fullMethod("Ping"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *jvmProcClient) List(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, fullMethod("List"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *jvmProcClient) Refresh(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, fullMethod("Refresh"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *jvmProcClient) Lookup(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("Lookup"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *jvmProcClient) Connect(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("Connect"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// unary adapts a typed server method to a grpc.MethodHandler.
func unary[In, Out any](method string, newIn func() In, call func(JVMProcServer, context.Context, In) (Out, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := newIn()
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(JVMProcServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(JVMProcServer), ctx, req.(In))
			})
		},
	}
}

func newEmpty() *emptypb.Empty         { return new(emptypb.Empty) }
func newInt64() *wrapperspb.Int64Value { return new(wrapperspb.Int64Value) }

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*JVMProcServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Ping", newEmpty, JVMProcServer.Ping),
		unary("List", newEmpty, JVMProcServer.List),
		unary("Refresh", newEmpty, JVMProcServer.Refresh),
		unary("Lookup", newInt64, JVMProcServer.Lookup),
		unary("Connect", newInt64, JVMProcServer.Connect),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "jvmproc/v1/jvmproc.proto",
}

// RegisterJVMProcServer registers srv on s.
func RegisterJVMProcServer(s grpc.ServiceRegistrar, srv JVMProcServer) {
	s.RegisterService(&serviceDesc, srv)
}
