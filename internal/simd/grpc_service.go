package simd

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// WaveServiceName is the fully-qualified gRPC service name.
const WaveServiceName = "wavesim.v1.WaveService"

// WaveServiceServer is the server API for wavesim.v1.WaveService. Every
// method takes and returns a google.protobuf.Struct, so the service needs no
// generated message types.
type WaveServiceServer interface {
	Compile(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Validate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Optimize(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Run(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetRun(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(WaveServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(WaveServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + WaveServiceName + "/" + name,
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(WaveServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// WaveServiceDesc is the grpc.ServiceDesc for wavesim.v1.WaveService.
var WaveServiceDesc = grpc.ServiceDesc{
	ServiceName: WaveServiceName,
	HandlerType: (*WaveServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("Compile", WaveServiceServer.Compile),
		unaryHandler("Validate", WaveServiceServer.Validate),
		unaryHandler("Optimize", WaveServiceServer.Optimize),
		unaryHandler("Run", WaveServiceServer.Run),
		unaryHandler("GetRun", WaveServiceServer.GetRun),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "wavesim/v1/wave.proto",
}

// RegisterWaveServiceServer registers srv on s.
func RegisterWaveServiceServer(s grpc.ServiceRegistrar, srv WaveServiceServer) {
	s.RegisterService(&WaveServiceDesc, srv)
}
